package database

import "github.com/gocrud/cmsconfig/config"

const (
	// FilenameEnv 数据库文件路径变量
	FilenameEnv = "DATABASE_FILENAME"
	// DefaultFilename 未设置 FilenameEnv 时使用的相对路径
	DefaultFilename = ".tmp/data.db"
	// ClientSQLite 文件型 SQL 引擎
	ClientSQLite = "sqlite"
)

// Descriptor 数据库配置（顶层键 connection）
type Descriptor struct {
	Connection Connection `json:"connection" yaml:"connection"`
}

// Connection 数据库连接描述
type Connection struct {
	Client           string           `json:"client" yaml:"client"`
	Connection       ConnectionParams `json:"connection" yaml:"connection"`
	UseNullAsDefault bool             `json:"useNullAsDefault" yaml:"useNullAsDefault"`
}

// ConnectionParams 连接参数
type ConnectionParams struct {
	Filename config.Value `json:"filename" yaml:"filename"`
}

// Resolve 从环境解析数据库配置
func Resolve(env config.Env) Descriptor {
	return Descriptor{
		Connection: Connection{
			Client: ClientSQLite,
			Connection: ConnectionParams{
				Filename: env.GetDefault(FilenameEnv, DefaultFilename),
			},
			UseNullAsDefault: true,
		},
	}
}
