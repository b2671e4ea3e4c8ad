package cmsconfig

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/gocrud/cmsconfig/core"
	"github.com/gocrud/cmsconfig/database"
	"github.com/gocrud/cmsconfig/logging"
)

type Page struct {
	gorm.Model
	Slug string
}

func quietLogging() core.Option {
	return WithLogging(func(b *logging.LoggingBuilder) {
		b.AddConsole(logging.ConsoleLoggerOptions{Output: io.Discard})
	})
}

func TestHooks_EmptyBodies(t *testing.T) {
	before := os.Environ()
	rt := core.NewRuntime()

	start := time.Now()
	Register(rt)
	Bootstrap(rt)

	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, before, os.Environ())
	assert.Equal(t, core.PhaseCreated, rt.Lifecycle.Phase())
}

func TestNew_OpensDatabaseBetweenHooks(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), ".tmp", "data.db")

	var registerSawDB, bootstrapSawDB bool
	rt, err := New(
		quietLogging(),
		WithValues(map[string]string{"DATABASE_FILENAME": dbPath}),
		WithDatabase(database.WithAutoMigrate(&Page{})),
		WithHooks(
			func(rt *core.Runtime) {
				_, registerSawDB = rt.Databases.Get(DefaultDatabase)
			},
			func(rt *core.Runtime) {
				_, bootstrapSawDB = rt.Databases.Get(DefaultDatabase)
			},
		),
	)
	require.NoError(t, err)
	defer rt.Stop(context.Background())

	assert.False(t, registerSawDB, "register runs before plugin initialization")
	assert.True(t, bootstrapSawDB, "bootstrap runs after plugin initialization")
	assert.Equal(t, core.PhaseBootstrapped, rt.Lifecycle.Phase())
	assert.Equal(t, dbPath, rt.Configuration.Database.Connection.Connection.Filename.String())

	db, ok := rt.Databases.Get(DefaultDatabase)
	require.True(t, ok)
	require.NoError(t, db.Create(&Page{Slug: "home"}).Error)
}

func TestNew_ConfigFileOverridesEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SMTP_FROM_EMAIL", "env@example.com")

	file := filepath.Join(dir, "app.yaml")
	require.NoError(t, os.WriteFile(file, []byte("smtp:\n  from:\n    email: file@example.com\n"), 0o644))

	rt, err := New(
		quietLogging(),
		WithValues(map[string]string{"DATABASE_FILENAME": filepath.Join(dir, "data.db")}),
		WithConfigFile(file, false),
	)
	require.NoError(t, err)
	defer rt.Stop(context.Background())

	assert.Equal(t, "file@example.com", rt.Configuration.Plugins.Email.Config.Settings.DefaultFrom.String())
}

func TestNew_StrictFailsOnAbsentCredentials(t *testing.T) {
	t.Setenv("SENDGRID_API_KEY", "")
	os.Unsetenv("SENDGRID_API_KEY")
	t.Setenv("SMTP_FROM_EMAIL", "")
	os.Unsetenv("SMTP_FROM_EMAIL")

	_, err := New(
		quietLogging(),
		WithValues(map[string]string{"DATABASE_FILENAME": filepath.Join(t.TempDir(), "data.db")}),
		WithStrict(),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SENDGRID_API_KEY")
}

func TestRun_StopsOnShutdown(t *testing.T) {
	dir := t.TempDir()
	errCh := make(chan error, 1)

	go func() {
		errCh <- Run(
			quietLogging(),
			WithValues(map[string]string{"DATABASE_FILENAME": filepath.Join(dir, "data.db")}),
			WithHooks(nil, func(rt *core.Runtime) {
				// 启动完成后立即请求退出
				go rt.Shutdown()
			}),
		)
	}()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after Shutdown")
	}
}
