package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/multierr"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gocrud/cmsconfig/config"
	dbconf "github.com/gocrud/cmsconfig/configure/database"
)

// Open 按解析后的数据库配置打开连接
func Open(desc dbconf.Descriptor, opts ...func(*Options)) (*gorm.DB, error) {
	options := NewDefaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	conn := desc.Connection
	if conn.Client != dbconf.ClientSQLite {
		return nil, fmt.Errorf("database: client %q: %w", conn.Client, config.ErrUnsupportedClient)
	}

	filename, ok := conn.Connection.Filename.Get()
	if !ok || filename == "" {
		return nil, fmt.Errorf("database: filename (%s): %w", dbconf.FilenameEnv, config.ErrMissingValue)
	}

	if err := ensureDir(filename); err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(filename), options.GormConfig)
	if err != nil {
		return nil, fmt.Errorf("database: failed to open %s: %w", filename, err)
	}

	// 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database: failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(options.MaxIdleConns)
	sqlDB.SetMaxOpenConns(options.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(options.MaxLifetime)

	if len(options.AutoMigrate) > 0 {
		if err := db.AutoMigrate(options.AutoMigrate...); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("database: auto migrate failed: %w", err)
		}
	}

	return db, nil
}

// ensureDir 创建数据库文件所在目录，内存库与 file: URI 除外
func ensureDir(filename string) error {
	if filename == ":memory:" || strings.HasPrefix(filename, "file:") {
		return nil
	}
	dir := filepath.Dir(filename)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// Factory 命名数据库连接集合
type Factory struct {
	dbs map[string]*gorm.DB
	mu  sync.RWMutex
}

// NewFactory 创建数据库工厂
func NewFactory() *Factory {
	return &Factory{
		dbs: make(map[string]*gorm.DB),
	}
}

// Register 打开并注册连接
func (f *Factory) Register(name string, desc dbconf.Descriptor, opts ...func(*Options)) (*gorm.DB, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.dbs[name]; exists {
		return nil, fmt.Errorf("database '%s' already registered", name)
	}

	db, err := Open(desc, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to register database '%s': %w", name, err)
	}

	f.dbs[name] = db
	return db, nil
}

// Get 获取命名连接
func (f *Factory) Get(name string) (*gorm.DB, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	db, ok := f.dbs[name]
	return db, ok
}

// Each 遍历所有数据库实例
func (f *Factory) Each(fn func(name string, db *gorm.DB)) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for name, db := range f.dbs {
		fn(name, db)
	}
}

// Close 关闭所有数据库连接
func (f *Factory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var errs []error
	for name, db := range f.dbs {
		sqlDB, err := db.DB()
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to get sql.DB for '%s': %w", name, err))
			continue
		}
		if err := sqlDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database '%s': %w", name, err))
		}
	}

	f.dbs = make(map[string]*gorm.DB)

	return multierr.Combine(errs...)
}
