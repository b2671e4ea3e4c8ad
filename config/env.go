package config

// Env 配置文件中 env(name, default) 的实现
// 每个叶子值都通过显式传入的 Lookup 取得，从不直接读取进程环境
type Env struct {
	lookup Lookup
}

// NewEnv 创建 Env，lookup 为 nil 时视为空环境
func NewEnv(lookup Lookup) Env {
	if lookup == nil {
		lookup = Map(nil)
	}
	return Env{lookup: lookup}
}

// Get 变量存在时返回其值（空字符串也算存在），否则返回缺失标记
func (e Env) Get(name string) Value {
	if v, ok := e.lookup.Lookup(name); ok {
		return Set(v)
	}
	return Absent()
}

// GetDefault 变量存在时返回其值，否则返回 def
func (e Env) GetDefault(name, def string) Value {
	if v, ok := e.lookup.Lookup(name); ok {
		return Set(v)
	}
	return Set(def)
}
