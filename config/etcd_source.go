package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// EtcdOptions etcd 配置选项
type EtcdOptions struct {
	Endpoints   []string      // etcd 服务器地址列表
	Username    string        // 用户名（可选）
	Password    string        // 密码（可选）
	Prefix      string        // 键前缀（可选）
	Timeout     time.Duration // 读取超时时间（默认 5 秒）
	DialTimeout time.Duration // 拨号超时时间（默认 5 秒）
}

// AddEtcd 添加 etcd 配置源
func (b *ConfigurationBuilder) AddEtcd(opts EtcdOptions) *ConfigurationBuilder {
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 5 * time.Second
	}
	return b.Add(&EtcdSource{Options: opts})
}

// EtcdSource etcd 配置源
// 键 /cms/smtp/from/email（前缀 /cms）映射为 SMTP_FROM_EMAIL
type EtcdSource struct {
	Options EtcdOptions
}

func (s *EtcdSource) Name() string {
	return fmt.Sprintf("Etcd(%v)", s.Options.Endpoints)
}

func (s *EtcdSource) Load() (map[string]string, error) {
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   s.Options.Endpoints,
		Username:    s.Options.Username,
		Password:    s.Options.Password,
		DialTimeout: s.Options.DialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create etcd client: %w", err)
	}
	defer cli.Close()

	ctx, cancel := context.WithTimeout(context.Background(), s.Options.Timeout)
	defer cancel()

	prefix := etcdDirPrefix(s.Options.Prefix)
	resp, err := cli.Get(ctx, prefix, clientv3.WithPrefix())
	if err != nil {
		return nil, fmt.Errorf("failed to get config from etcd: %w", err)
	}

	result := make(map[string]string, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		if name := etcdKeyToName(string(kv.Key), prefix); name != "" {
			result[name] = string(kv.Value)
		}
	}

	return result, nil
}

// etcdDirPrefix 将前缀规范为以 / 结尾的目录，/cms 不匹配 /cms-staging
func etcdDirPrefix(prefix string) string {
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix
}

// etcdKeyToName 去掉前缀，路径分隔符转为 _ 并大写
// 不在前缀目录下的键返回空串
func etcdKeyToName(key, prefix string) string {
	prefix = etcdDirPrefix(prefix)
	if !strings.HasPrefix(key, prefix) {
		return ""
	}
	key = strings.Trim(strings.TrimPrefix(key, prefix), "/")
	if key == "" {
		return ""
	}
	return strings.ToUpper(strings.ReplaceAll(key, "/", "_"))
}
