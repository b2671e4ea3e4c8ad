package config

import (
	"encoding/json"
	"fmt"
)

// ToTree 将描述符转换为通用嵌套 map（宿主框架看到的形状）
// 使用 JSON 序列化/反序列化，缺失值变为 nil
func ToTree(descriptor any) (map[string]any, error) {
	data, err := json.Marshal(descriptor)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal descriptor: %w", err)
	}

	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to unmarshal descriptor: %w", err)
	}
	return tree, nil
}

// GetPath 通过路径获取值（支持 "a:b:c" 或 "a.b.c"）
// 第二个返回值表示路径是否存在；存在但值为 nil 表示缺失标记
func GetPath(tree map[string]any, path string) (any, bool) {
	if path == "" {
		return tree, true
	}

	current := any(tree)
	for _, part := range globalPathCache.GetPathSegments(path) {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		if current, ok = m[part]; !ok {
			return nil, false
		}
	}
	return current, true
}
