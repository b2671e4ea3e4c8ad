package config

import (
	"os"
	"sort"
)

// Lookup 环境变量查询能力
// 只读，不修改任何进程状态
type Lookup interface {
	// Lookup 返回变量值以及变量是否存在
	Lookup(name string) (string, bool)
}

// LookupFunc 函数适配器
type LookupFunc func(name string) (string, bool)

// Lookup 实现 Lookup 接口
func (f LookupFunc) Lookup(name string) (string, bool) {
	return f(name)
}

// OS 返回读取进程环境变量的 Lookup
func OS() Lookup {
	return LookupFunc(os.LookupEnv)
}

// Map 固定快照，构建后不再变化
type Map map[string]string

// Lookup 实现 Lookup 接口
func (m Map) Lookup(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// Names 返回排序后的变量名
func (m Map) Names() []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// clone 返回副本
func (m Map) clone() Map {
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
