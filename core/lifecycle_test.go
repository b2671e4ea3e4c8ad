package core

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/gocrud/cmsconfig/logging"
)

func newTestRuntime(t *testing.T) *Runtime {
	t.Helper()
	rt := NewRuntime()
	rt.Logging.AddConsole(logging.ConsoleLoggerOptions{Formatter: &logging.TextFormatter{}, Output: &testWriter{t: t}})
	require.NoError(t, rt.Build())
	return rt
}

type testWriter struct{ t *testing.T }

func (w *testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func TestLifecycle_Order(t *testing.T) {
	rt := newTestRuntime(t)

	var calls []string
	rt.Lifecycle.OnBootstrap(func(*Runtime) { calls = append(calls, "bootstrap") })
	rt.Lifecycle.OnRegister(func(r *Runtime) {
		assert.Same(t, rt, r)
		calls = append(calls, "register")
	})
	rt.Lifecycle.OnInit(func(*Runtime) error {
		calls = append(calls, "init")
		return nil
	})

	require.NoError(t, rt.Start())
	assert.Equal(t, []string{"register", "init", "bootstrap"}, calls)
	assert.Equal(t, PhaseBootstrapped, rt.Lifecycle.Phase())
}

func TestLifecycle_ExactlyOnce(t *testing.T) {
	rt := newTestRuntime(t)

	registers, bootstraps := 0, 0
	rt.Lifecycle.OnRegister(func(*Runtime) { registers++ })
	rt.Lifecycle.OnBootstrap(func(*Runtime) { bootstraps++ })

	require.NoError(t, rt.Start())
	err := rt.Start()
	assert.True(t, errors.Is(err, ErrAlreadyStarted))
	assert.Equal(t, 1, registers)
	assert.Equal(t, 1, bootstraps)
}

func TestLifecycle_InitFailureSkipsBootstrap(t *testing.T) {
	rt := newTestRuntime(t)

	bootstrapped := false
	rt.Lifecycle.OnInit(func(*Runtime) error { return errors.New("boom") })
	rt.Lifecycle.OnBootstrap(func(*Runtime) { bootstrapped = true })

	err := rt.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plugin initialization failed")
	assert.False(t, bootstrapped)
}

func TestLifecycle_StopReverseAndAggregated(t *testing.T) {
	rt := newTestRuntime(t)

	var order []int
	rt.Lifecycle.OnStop(func(context.Context) error { order = append(order, 1); return errors.New("first") })
	rt.Lifecycle.OnStop(func(context.Context) error { order = append(order, 2); return nil })
	rt.Lifecycle.OnStop(func(context.Context) error { order = append(order, 3); return errors.New("third") })

	err := rt.Stop(context.Background())
	assert.Equal(t, []int{3, 2, 1}, order)
	assert.Len(t, multierr.Errors(err), 2)
	assert.Equal(t, PhaseStopped, rt.Lifecycle.Phase())
}

func TestRuntime_StartRequiresBuild(t *testing.T) {
	assert.Error(t, NewRuntime().Start())
}

func TestRuntime_StrictBuild(t *testing.T) {
	rt := NewRuntime()
	rt.Strict = true
	rt.Sources.AddInMemory(map[string]string{})
	err := rt.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestRuntime_Shutdown(t *testing.T) {
	rt := NewRuntime()
	rt.Shutdown()
	rt.Shutdown()

	select {
	case <-rt.Done():
	default:
		t.Fatal("Done should be closed")
	}
}

func TestRuntime_ConcurrentShutdown(t *testing.T) {
	rt := NewRuntime()

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			rt.Shutdown()
		}()
	}

	assert.NotPanics(t, func() {
		close(start)
		wg.Wait()
	})
	<-rt.Done()
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "bootstrapped", PhaseBootstrapped.String())
	assert.Equal(t, "unknown", Phase(42).String())
}
