package config

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Value 配置叶子值
// 区分三种状态：已设置（可能是空字符串）与缺失。零值即缺失。
type Value struct {
	value string
	set   bool
}

// Absent 返回缺失标记
func Absent() Value {
	return Value{}
}

// Set 返回已设置的值
func Set(s string) Value {
	return Value{value: s, set: true}
}

// IsAbsent 是否缺失
func (v Value) IsAbsent() bool {
	return !v.set
}

// Get 返回值以及是否已设置
func (v Value) Get() (string, bool) {
	return v.value, v.set
}

// Or 缺失时返回 def
func (v Value) Or(def string) string {
	if !v.set {
		return def
	}
	return v.value
}

// String 缺失时返回 "<absent>"
func (v Value) String() string {
	if !v.set {
		return "<absent>"
	}
	return v.value
}

// Redacted 隐藏已设置的值，缺失保持缺失
func (v Value) Redacted() Value {
	if !v.set {
		return v
	}
	return Set("******")
}

// MarshalJSON 缺失编码为 null
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.set {
		return []byte("null"), nil
	}
	return json.Marshal(v.value)
}

// UnmarshalJSON null 解码为缺失
func (v *Value) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*v = Absent()
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*v = Set(s)
	return nil
}

// MarshalYAML 缺失编码为 null
func (v Value) MarshalYAML() (any, error) {
	if !v.set {
		return nil, nil
	}
	return v.value, nil
}

// UnmarshalYAML null 解码为缺失
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		*v = Absent()
		return nil
	}
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	*v = Set(s)
	return nil
}
