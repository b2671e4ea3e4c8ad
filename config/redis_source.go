package config

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions redis 配置选项
type RedisOptions struct {
	Addr        string        // 服务器地址
	Password    string        // 密码（可选）
	DB          int           // 数据库编号
	Key         string        // 保存配置的 hash 键
	Timeout     time.Duration // 读取超时时间（默认 5 秒）
	DialTimeout time.Duration // 拨号超时时间（默认 5 秒）
}

// AddRedis 添加 redis 配置源
func (b *ConfigurationBuilder) AddRedis(opts RedisOptions) *ConfigurationBuilder {
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 5 * time.Second
	}
	return b.Add(&RedisSource{Options: opts})
}

// RedisSource redis hash 配置源，每个字段对应一个变量
type RedisSource struct {
	Options RedisOptions
}

func (s *RedisSource) Name() string {
	return fmt.Sprintf("Redis(%s/%s)", s.Options.Addr, s.Options.Key)
}

func (s *RedisSource) Load() (map[string]string, error) {
	if s.Options.Key == "" {
		return nil, fmt.Errorf("redis hash key is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:        s.Options.Addr,
		Password:    s.Options.Password,
		DB:          s.Options.DB,
		DialTimeout: s.Options.DialTimeout,
	})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), s.Options.Timeout)
	defer cancel()

	result, err := client.HGetAll(ctx, s.Options.Key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get config from redis: %w", err)
	}
	return result, nil
}
