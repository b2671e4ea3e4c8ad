package cmsconfig

import (
	"os"

	"github.com/gocrud/cmsconfig/config"
	"github.com/gocrud/cmsconfig/core"
	"github.com/gocrud/cmsconfig/database"
	"github.com/gocrud/cmsconfig/logging"
)

// WithEnvironment 添加进程环境变量配置源（默认已添加，无前缀）
func WithEnvironment(prefix string) core.Option {
	return func(rt *core.Runtime) error {
		rt.Sources.AddEnvironmentVariables(prefix)
		return nil
	}
}

// WithConfigFile 按扩展名添加文件配置源
func WithConfigFile(path string, optional bool) core.Option {
	return func(rt *core.Runtime) error {
		rt.Sources.AddFile(path, optional)
		return nil
	}
}

// WithValues 添加内存配置源，常用于测试
func WithValues(values map[string]string) core.Option {
	return func(rt *core.Runtime) error {
		rt.Sources.AddInMemory(values)
		return nil
	}
}

// WithEtcd 添加 etcd 配置源
func WithEtcd(opts config.EtcdOptions) core.Option {
	return func(rt *core.Runtime) error {
		rt.Sources.AddEtcd(opts)
		return nil
	}
}

// WithRedis 添加 redis 配置源
func WithRedis(opts config.RedisOptions) core.Option {
	return func(rt *core.Runtime) error {
		rt.Sources.AddRedis(opts)
		return nil
	}
}

// WithStrict 启动时校验必需值
func WithStrict() core.Option {
	return func(rt *core.Runtime) error {
		rt.Strict = true
		return nil
	}
}

// WithLogging 配置日志
func WithLogging(configure func(*logging.LoggingBuilder)) core.Option {
	return func(rt *core.Runtime) error {
		configure(rt.Logging)
		return nil
	}
}

// WithDatabase 设置默认数据库的打开选项
func WithDatabase(opts ...func(*database.Options)) core.Option {
	return func(rt *core.Runtime) error {
		rt.DatabaseOptions = append(rt.DatabaseOptions, opts...)
		return nil
	}
}

// WithHooks 追加 register 与 bootstrap 钩子，nil 表示跳过
func WithHooks(register, bootstrap core.Hook) core.Option {
	return func(rt *core.Runtime) error {
		if register != nil {
			rt.Lifecycle.OnRegister(register)
		}
		if bootstrap != nil {
			rt.Lifecycle.OnBootstrap(bootstrap)
		}
		return nil
	}
}

// defaultLogging 未配置日志时输出到 stderr
func defaultLogging(rt *core.Runtime) {
	if !rt.Logging.HasProviders() {
		rt.Logging.AddConsole(logging.ConsoleLoggerOptions{
			Formatter: logging.NewTextFormatter(),
			Output:    os.Stderr,
		})
	}
}
