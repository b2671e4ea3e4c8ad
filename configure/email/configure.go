package email

import "github.com/gocrud/cmsconfig/config"

const (
	APIKeyEnv         = "SENDGRID_API_KEY"
	DefaultFromEnv    = "SMTP_FROM_EMAIL"
	DefaultReplyToEnv = "SMTP_REPLY_TO_EMAIL"

	// ProviderSendgrid 事务邮件服务商
	ProviderSendgrid = "sendgrid"
)

// Descriptor 插件配置（顶层键 email）
type Descriptor struct {
	Email Plugin `json:"email" yaml:"email"`
}

// Plugin 邮件插件
type Plugin struct {
	Config PluginConfig `json:"config" yaml:"config"`
}

// PluginConfig 邮件插件配置
type PluginConfig struct {
	Provider        string          `json:"provider" yaml:"provider"`
	ProviderOptions ProviderOptions `json:"providerOptions" yaml:"providerOptions"`
	Settings        Settings        `json:"settings" yaml:"settings"`
}

// ProviderOptions 服务商参数
type ProviderOptions struct {
	APIKey config.Value `json:"apiKey" yaml:"apiKey"`
}

// Settings 默认发件设置
type Settings struct {
	DefaultFrom    config.Value `json:"defaultFrom" yaml:"defaultFrom"`
	DefaultReplyTo config.Value `json:"defaultReplyTo" yaml:"defaultReplyTo"`
}

// Resolve 从环境解析邮件插件配置
// 凭据不设默认值，未设置时为缺失标记
func Resolve(env config.Env) Descriptor {
	return Descriptor{
		Email: Plugin{
			Config: PluginConfig{
				Provider: ProviderSendgrid,
				ProviderOptions: ProviderOptions{
					APIKey: env.Get(APIKeyEnv),
				},
				Settings: Settings{
					DefaultFrom:    env.Get(DefaultFromEnv),
					DefaultReplyTo: env.Get(DefaultReplyToEnv),
				},
			},
		},
	}
}

// Redacted 返回隐藏凭据后的副本
func (d Descriptor) Redacted() Descriptor {
	d.Email.Config.ProviderOptions.APIKey = d.Email.Config.ProviderOptions.APIKey.Redacted()
	return d
}
