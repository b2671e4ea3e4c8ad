package core

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/multierr"
)

// ErrAlreadyStarted 生命周期只能启动一次
var ErrAlreadyStarted = errors.New("lifecycle already started")

// Hook 生命周期钩子（register、bootstrap），接收运行时句柄，不返回值
type Hook func(rt *Runtime)

// Phase 生命周期阶段
type Phase int

const (
	PhaseCreated Phase = iota
	PhaseRegistered
	PhaseInitialized
	PhaseBootstrapped
	PhaseStopped
)

// String 返回阶段名称
func (p Phase) String() string {
	switch p {
	case PhaseCreated:
		return "created"
	case PhaseRegistered:
		return "registered"
	case PhaseInitialized:
		return "initialized"
	case PhaseBootstrapped:
		return "bootstrapped"
	case PhaseStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Lifecycle 管理应用程序的生命周期
// Start 按顺序执行：register 钩子 -> 插件初始化 -> bootstrap 钩子
type Lifecycle struct {
	onRegister  []Hook
	onInit      []func(*Runtime) error
	onBootstrap []Hook
	onStop      []func(context.Context) error
	phase       Phase
	mu          sync.Mutex
}

// NewLifecycle 创建新的生命周期管理器
func NewLifecycle() *Lifecycle {
	return &Lifecycle{
		onRegister:  make([]Hook, 0),
		onInit:      make([]func(*Runtime) error, 0),
		onBootstrap: make([]Hook, 0),
		onStop:      make([]func(context.Context) error, 0),
	}
}

// OnRegister 注册 register 钩子
func (l *Lifecycle) OnRegister(hook Hook) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onRegister = append(l.onRegister, hook)
}

// OnInit 注册插件初始化步骤，在 register 之后、bootstrap 之前执行
func (l *Lifecycle) OnInit(fn func(*Runtime) error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onInit = append(l.onInit, fn)
}

// OnBootstrap 注册 bootstrap 钩子
func (l *Lifecycle) OnBootstrap(hook Hook) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onBootstrap = append(l.onBootstrap, hook)
}

// OnStop 注册停止钩子
func (l *Lifecycle) OnStop(fn func(context.Context) error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onStop = append(l.onStop, fn)
}

// Phase 当前阶段
func (l *Lifecycle) Phase() Phase {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.phase
}

// Start 启动生命周期，每个钩子恰好执行一次
// 初始化失败时不执行 bootstrap
func (l *Lifecycle) Start(rt *Runtime) error {
	l.mu.Lock()
	if l.phase != PhaseCreated {
		l.mu.Unlock()
		return ErrAlreadyStarted
	}
	register := append([]Hook(nil), l.onRegister...)
	inits := append([]func(*Runtime) error(nil), l.onInit...)
	bootstrap := append([]Hook(nil), l.onBootstrap...)
	// 先占位，钩子执行期间再次 Start 也会被拒绝
	l.phase = PhaseRegistered
	l.mu.Unlock()

	for _, hook := range register {
		hook(rt)
	}

	for _, fn := range inits {
		if err := fn(rt); err != nil {
			return fmt.Errorf("plugin initialization failed: %w", err)
		}
	}
	l.setPhase(PhaseInitialized)

	for _, hook := range bootstrap {
		hook(rt)
	}
	l.setPhase(PhaseBootstrapped)

	return nil
}

// Stop 倒序执行停止钩子，出错时继续执行其余钩子
func (l *Lifecycle) Stop(ctx context.Context) error {
	l.mu.Lock()
	stops := append([]func(context.Context) error(nil), l.onStop...)
	l.phase = PhaseStopped
	l.mu.Unlock()

	var err error
	for i := len(stops) - 1; i >= 0; i-- {
		err = multierr.Append(err, stops[i](ctx))
	}
	return err
}

func (l *Lifecycle) setPhase(p Phase) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.phase = p
}
