package configure

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/gocrud/cmsconfig/config"
	"github.com/gocrud/cmsconfig/configure/database"
	"github.com/gocrud/cmsconfig/configure/email"
)

// Configuration 运行时配置，宿主框架启动时只读
type Configuration struct {
	Database database.Descriptor `json:"database" yaml:"database"`
	Plugins  email.Descriptor    `json:"plugins" yaml:"plugins"`
}

// Resolve 解析所有配置关注点
// 纯函数：同一快照多次调用结果相等，且从不失败
func Resolve(lookup config.Lookup) Configuration {
	env := config.NewEnv(lookup)
	return Configuration{
		Database: database.Resolve(env),
		Plugins:  email.Resolve(env),
	}
}

// Tree 返回通用嵌套 map 视图
func (c Configuration) Tree() map[string]any {
	tree, err := config.ToTree(c)
	if err != nil {
		// 描述符只包含字符串和布尔值，序列化不会失败
		panic(err)
	}
	return tree
}

// Get 按路径读取，例如 "plugins:email:config:provider"
func (c Configuration) Get(path string) (any, bool) {
	return config.GetPath(c.Tree(), path)
}

// Redacted 返回隐藏凭据后的副本
func (c Configuration) Redacted() Configuration {
	c.Plugins = c.Plugins.Redacted()
	return c
}

// Validate 启动时快速失败检查
// 默认不调用：缺失值原样传递给使用方
func (c Configuration) Validate() error {
	var err error

	conn := c.Database.Connection
	if conn.Client != database.ClientSQLite {
		err = multierr.Append(err, fmt.Errorf("database.connection.client %q: %w", conn.Client, config.ErrUnsupportedClient))
	}
	if conn.Connection.Filename.IsAbsent() {
		err = multierr.Append(err, fmt.Errorf("database.connection.connection.filename (%s): %w", database.FilenameEnv, config.ErrMissingValue))
	}

	mail := c.Plugins.Email.Config
	if mail.ProviderOptions.APIKey.IsAbsent() {
		err = multierr.Append(err, fmt.Errorf("plugins.email.config.providerOptions.apiKey (%s): %w", email.APIKeyEnv, config.ErrMissingValue))
	}
	if mail.Settings.DefaultFrom.IsAbsent() {
		err = multierr.Append(err, fmt.Errorf("plugins.email.config.settings.defaultFrom (%s): %w", email.DefaultFromEnv, config.ErrMissingValue))
	}

	return err
}
