package core

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/multierr"

	"github.com/gocrud/cmsconfig/config"
	"github.com/gocrud/cmsconfig/configure"
	"github.com/gocrud/cmsconfig/database"
	"github.com/gocrud/cmsconfig/logging"
)

// Runtime 宿主状态容器，钩子通过它访问配置、日志和数据库
type Runtime struct {
	// Sources 配置源，Build 时加载为快照
	Sources *config.ConfigurationBuilder

	// Logging 日志构建器
	Logging *logging.LoggingBuilder

	// Strict 启用后缺失的必需值会让启动失败
	Strict bool

	// DatabaseOptions 打开默认数据库时使用的选项
	DatabaseOptions []func(*database.Options)

	// Snapshot 构建后的环境快照
	Snapshot config.Map

	// Configuration 解析后的配置，构建后只读
	Configuration configure.Configuration

	// Logger 运行时日志
	Logger logging.Logger

	// Databases 已打开的数据库连接
	Databases *database.Factory

	// Lifecycle 生命周期管理
	Lifecycle *Lifecycle

	// shutdownCh 用于通知应用退出
	shutdownCh   chan struct{}
	shutdownOnce sync.Once
}

// NewRuntime 创建一个新的运行时实例
func NewRuntime() *Runtime {
	return &Runtime{
		Sources:    config.NewConfigurationBuilder(),
		Logging:    logging.NewLoggingBuilder(),
		Databases:  database.NewFactory(),
		Lifecycle:  NewLifecycle(),
		shutdownCh: make(chan struct{}),
	}
}

// Apply 应用多个 Option
func (rt *Runtime) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(rt); err != nil {
			return err
		}
	}
	return nil
}

// Build 加载配置源并解析配置
// 非严格模式下缺失值原样保留，由使用方处理
func (rt *Runtime) Build() error {
	factory := rt.Logging.Build()
	rt.Logger = factory.CreateLogger("Runtime")

	snapshot, err := rt.Sources.Build()
	if err != nil {
		return err
	}
	rt.Snapshot = snapshot
	rt.Configuration = configure.Resolve(snapshot)

	rt.Logger.Info("Configuration resolved",
		logging.Field{Key: "sources", Value: len(rt.Sources.Sources())},
		logging.Field{Key: "database", Value: rt.Configuration.Database.Connection.Connection.Filename.String()},
		logging.Field{Key: "email_provider", Value: rt.Configuration.Plugins.Email.Config.Provider})

	if err := rt.Configuration.Validate(); err != nil {
		if rt.Strict {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		for _, e := range multierr.Errors(err) {
			rt.Logger.Warn("Configuration incomplete", logging.Field{Key: "error", Value: e.Error()})
		}
	}

	return nil
}

// Start 执行生命周期钩子
func (rt *Runtime) Start() error {
	if rt.Logger == nil {
		return fmt.Errorf("runtime: Build must be called before Start")
	}
	return rt.Lifecycle.Start(rt)
}

// Stop 执行停止钩子并记录错误
func (rt *Runtime) Stop(ctx context.Context) error {
	err := rt.Lifecycle.Stop(ctx)
	if rt.Logger == nil {
		return err
	}
	for _, e := range multierr.Errors(err) {
		rt.Logger.Error("Stop hook failed", logging.Field{Key: "error", Value: e.Error()})
	}
	return err
}

// Shutdown 请求应用退出，可并发多次调用
func (rt *Runtime) Shutdown() {
	rt.shutdownOnce.Do(func() {
		close(rt.shutdownCh)
	})
}

// Done 返回一个通道，当应用需要退出时该通道会关闭
func (rt *Runtime) Done() <-chan struct{} {
	return rt.shutdownCh
}
