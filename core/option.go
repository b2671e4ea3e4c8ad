package core

// Option 在 Build 之前修改 Runtime：追加配置源、日志提供者、钩子或数据库选项
// 按传入顺序应用，返回错误时中止构建
type Option func(rt *Runtime) error
