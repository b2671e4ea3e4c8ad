package database

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Options 数据库连接选项
type Options struct {
	GormConfig   *gorm.Config
	MaxIdleConns int
	MaxOpenConns int
	MaxLifetime  time.Duration
	AutoMigrate  []any // 需要自动迁移的模型
}

// NewDefaultOptions 创建默认配置
func NewDefaultOptions() *Options {
	return &Options{
		GormConfig:   &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
		MaxIdleConns: 10,
		MaxOpenConns: 100,
		MaxLifetime:  time.Hour,
		AutoMigrate:  make([]any, 0),
	}
}

// WithAutoMigrate 追加自动迁移模型
func WithAutoMigrate(models ...any) func(*Options) {
	return func(o *Options) {
		o.AutoMigrate = append(o.AutoMigrate, models...)
	}
}

// WithPool 设置连接池
func WithPool(maxIdle, maxOpen int, lifetime time.Duration) func(*Options) {
	return func(o *Options) {
		o.MaxIdleConns = maxIdle
		o.MaxOpenConns = maxOpen
		o.MaxLifetime = lifetime
	}
}
