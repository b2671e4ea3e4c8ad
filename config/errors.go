package config

import "errors"

var (
	// ErrMissingValue 必需的配置值缺失
	ErrMissingValue = errors.New("missing required value")
	// ErrUnsupportedClient 不支持的数据库客户端
	ErrUnsupportedClient = errors.New("unsupported database client")
)
