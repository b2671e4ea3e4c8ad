package cmsconfig

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gocrud/cmsconfig/core"
	"github.com/gocrud/cmsconfig/logging"
)

// DefaultDatabase 默认数据库连接名
const DefaultDatabase = "default"

// New 构建运行时并执行生命周期钩子，不阻塞
// 进程环境变量总是最先加载，之后的配置源覆盖它
func New(opts ...core.Option) (*core.Runtime, error) {
	rt := core.NewRuntime()
	rt.Sources.AddEnvironmentVariables("")

	// 1. 默认钩子先于选项追加的钩子：register -> 打开数据库 -> bootstrap
	rt.Lifecycle.OnRegister(Register)
	rt.Lifecycle.OnInit(openDatabase)
	rt.Lifecycle.OnBootstrap(Bootstrap)

	// 2. 应用所有选项
	if err := rt.Apply(opts...); err != nil {
		return nil, err
	}
	defaultLogging(rt)

	// 3. 加载配置源并解析
	if err := rt.Build(); err != nil {
		return nil, err
	}

	if err := rt.Start(); err != nil {
		_ = rt.Stop(context.Background())
		return nil, err
	}

	rt.Logger.Info("Application bootstrapped",
		logging.Field{Key: "phase", Value: rt.Lifecycle.Phase().String()})
	return rt, nil
}

// Run 启动应用程序并阻塞，直到收到退出信号或 Shutdown
func Run(opts ...core.Option) error {
	rt, err := New(opts...)
	if err != nil {
		return err
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		rt.Logger.Info("Received shutdown signal", logging.Field{Key: "signal", Value: sig.String()})
	case <-rt.Done():
		rt.Logger.Info("Application stop requested")
	}

	// 给定 5 秒超时时间用于清理
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return rt.Stop(ctx)
}

// openDatabase 按解析的配置打开默认数据库并注册关闭钩子
func openDatabase(rt *core.Runtime) error {
	if _, err := rt.Databases.Register(DefaultDatabase, rt.Configuration.Database, rt.DatabaseOptions...); err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	rt.Logger.Info("Database registered",
		logging.Field{Key: "name", Value: DefaultDatabase},
		logging.Field{Key: "client", Value: rt.Configuration.Database.Connection.Client})

	rt.Lifecycle.OnStop(func(ctx context.Context) error {
		rt.Logger.Info("Closing database connections")
		return rt.Databases.Close()
	})
	return nil
}
