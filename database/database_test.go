package database_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/gocrud/cmsconfig/config"
	dbconf "github.com/gocrud/cmsconfig/configure/database"
	"github.com/gocrud/cmsconfig/database"
)

type Article struct {
	gorm.Model
	Title string
}

func descriptorFor(filename string) dbconf.Descriptor {
	return dbconf.Resolve(config.NewEnv(config.Map{dbconf.FilenameEnv: filename}))
}

func TestOpen_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ".tmp", "data.db")

	db, err := database.Open(descriptorFor(path), database.WithAutoMigrate(&Article{}))
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	require.NoError(t, db.Create(&Article{Title: "hello"}).Error)

	var got Article
	require.NoError(t, db.First(&got).Error)
	assert.Equal(t, "hello", got.Title)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestOpen_Pool(t *testing.T) {
	db, err := database.Open(descriptorFor(filepath.Join(t.TempDir(), "pool.db")), database.WithPool(2, 5, 0))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	assert.Equal(t, 5, sqlDB.Stats().MaxOpenConnections)
}

func TestOpen_Errors(t *testing.T) {
	desc := descriptorFor("x.db")
	desc.Connection.Client = "postgres"
	_, err := database.Open(desc)
	assert.True(t, errors.Is(err, config.ErrUnsupportedClient))

	desc = descriptorFor("x.db")
	desc.Connection.Connection.Filename = config.Absent()
	_, err = database.Open(desc)
	assert.True(t, errors.Is(err, config.ErrMissingValue))
}

func TestFactory(t *testing.T) {
	factory := database.NewFactory()
	desc := descriptorFor(filepath.Join(t.TempDir(), "factory.db"))

	_, err := factory.Register("default", desc)
	require.NoError(t, err)

	_, err = factory.Register("default", desc)
	assert.Error(t, err, "duplicate name")

	db, ok := factory.Get("default")
	assert.True(t, ok)
	assert.NotNil(t, db)

	count := 0
	factory.Each(func(name string, db *gorm.DB) { count++ })
	assert.Equal(t, 1, count)

	require.NoError(t, factory.Close())
	_, ok = factory.Get("default")
	assert.False(t, ok)
}
