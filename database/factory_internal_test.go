package database

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/gocrud/cmsconfig/config"
	dbconf "github.com/gocrud/cmsconfig/configure/database"
)

func TestFactory_CloseKeepsEachError(t *testing.T) {
	f := NewFactory()

	desc := dbconf.Resolve(config.NewEnv(config.Map{
		dbconf.FilenameEnv: filepath.Join(t.TempDir(), "ok.db"),
	}))
	_, err := f.Register("ok", desc)
	require.NoError(t, err)

	// 没有连接池的实例，DB() 返回 gorm.ErrInvalidDB
	f.dbs["broken-a"] = &gorm.DB{Config: &gorm.Config{}}
	f.dbs["broken-b"] = &gorm.DB{Config: &gorm.Config{}}

	err = f.Close()
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrInvalidDB))
	assert.Len(t, multierr.Errors(err), 2)
	assert.Contains(t, err.Error(), "broken-a")
	assert.Contains(t, err.Error(), "broken-b")

	_, ok := f.Get("ok")
	assert.False(t, ok, "factory is emptied after close")
	assert.NoError(t, f.Close())
}
