package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"gopkg.in/yaml.v3"

	"github.com/gocrud/cmsconfig"
	"github.com/gocrud/cmsconfig/config"
	"github.com/gocrud/cmsconfig/configure"
	"github.com/gocrud/cmsconfig/core"
	"github.com/gocrud/cmsconfig/logging"
)

// cli 命令行参数
type cli struct {
	configFiles   []string
	envPrefix     string
	etcdEndpoints []string
	etcdPrefix    string
	redisAddr     string
	redisKey      string
	logLevel      string
	logFormat     string

	format      string
	showSecrets bool
	strict      bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run 解析参数并执行子命令，extra 追加到 start 的运行时选项之后
func run(args []string, stdout, stderr io.Writer, extra ...core.Option) int {
	var c cli

	app := kingpin.New("cmsconfig", "Resolve and run the CMS backend configuration")
	app.UsageWriter(stderr)
	app.ErrorWriter(stderr)
	app.Terminate(nil)

	app.Flag("config", "Configuration file (.yaml, .yml, .toml or dotenv); repeatable, later files win").StringsVar(&c.configFiles)
	app.Flag("env-prefix", "Only read environment variables with this prefix (stripped)").StringVar(&c.envPrefix)
	app.Flag("etcd-endpoint", "etcd endpoint to read variables from; repeatable").StringsVar(&c.etcdEndpoints)
	app.Flag("etcd-prefix", "etcd key prefix").Default("/cms").StringVar(&c.etcdPrefix)
	app.Flag("redis-addr", "redis address to read variables from").StringVar(&c.redisAddr)
	app.Flag("redis-key", "redis hash holding variables").Default("cms:env").StringVar(&c.redisKey)
	app.Flag("log-level", "Minimum log level").Default("info").StringVar(&c.logLevel)
	app.Flag("log-format", "Log output format").Default("text").EnumVar(&c.logFormat, "text", "json", "zap")

	resolveCmd := app.Command("resolve", "Print the resolved configuration")
	resolveCmd.Flag("format", "Output format").Default("yaml").EnumVar(&c.format, "yaml", "json")
	resolveCmd.Flag("show-secrets", "Print credentials instead of masking them").BoolVar(&c.showSecrets)

	checkCmd := app.Command("check", "Fail when required values are absent")

	startCmd := app.Command("start", "Run register and bootstrap, then wait for a signal")
	startCmd.Flag("strict", "Fail fast on absent required values").BoolVar(&c.strict)

	command, err := app.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "cmsconfig: %v\n", err)
		return 2
	}

	switch command {
	case resolveCmd.FullCommand():
		return c.resolve(stdout, stderr)
	case checkCmd.FullCommand():
		return c.check(stdout, stderr)
	case startCmd.FullCommand():
		return c.start(stderr, extra...)
	}
	return 2
}

// sources 按命令行组装配置源，顺序：环境变量、文件、etcd、redis
func (c *cli) sources() *config.ConfigurationBuilder {
	b := config.NewConfigurationBuilder().AddEnvironmentVariables(c.envPrefix)
	for _, path := range c.configFiles {
		b.AddFile(path)
	}
	if len(c.etcdEndpoints) > 0 {
		b.AddEtcd(config.EtcdOptions{Endpoints: c.etcdEndpoints, Prefix: c.etcdPrefix})
	}
	if c.redisAddr != "" {
		b.AddRedis(config.RedisOptions{Addr: c.redisAddr, Key: c.redisKey})
	}
	return b
}

func (c *cli) resolveConfiguration(stderr io.Writer) (configure.Configuration, bool) {
	snapshot, err := c.sources().Build()
	if err != nil {
		fmt.Fprintf(stderr, "cmsconfig: %v\n", err)
		return configure.Configuration{}, false
	}
	return configure.Resolve(snapshot), true
}

func (c *cli) resolve(stdout, stderr io.Writer) int {
	cfg, ok := c.resolveConfiguration(stderr)
	if !ok {
		return 1
	}
	if !c.showSecrets {
		cfg = cfg.Redacted()
	}

	var err error
	switch c.format {
	case "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		err = enc.Encode(cfg)
	default:
		enc := yaml.NewEncoder(stdout)
		enc.SetIndent(2)
		err = enc.Encode(cfg)
		if err == nil {
			err = enc.Close()
		}
	}
	if err != nil {
		fmt.Fprintf(stderr, "cmsconfig: encode: %v\n", err)
		return 1
	}
	return 0
}

func (c *cli) check(stdout, stderr io.Writer) int {
	cfg, ok := c.resolveConfiguration(stderr)
	if !ok {
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "cmsconfig: invalid configuration: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, "configuration OK")
	return 0
}

func (c *cli) start(stderr io.Writer, extra ...core.Option) int {
	level, err := logging.ParseLevel(c.logLevel)
	if err != nil {
		fmt.Fprintf(stderr, "cmsconfig: %v\n", err)
		return 2
	}

	opts := []core.Option{
		func(rt *core.Runtime) error {
			// 用命令行组装的配置源替换默认配置源
			rt.Sources = c.sources()
			return nil
		},
		cmsconfig.WithLogging(func(b *logging.LoggingBuilder) {
			b.SetMinimumLevel(level)
		}),
	}

	switch c.logFormat {
	case "json":
		opts = append(opts, cmsconfig.WithLogging(func(b *logging.LoggingBuilder) {
			b.AddJsonConsole(stderr)
		}))
	case "zap":
		provider, err := logging.NewZapLoggerProvider()
		if err != nil {
			fmt.Fprintf(stderr, "cmsconfig: %v\n", err)
			return 1
		}
		defer func() { _ = provider.Sync() }()
		opts = append(opts, cmsconfig.WithLogging(func(b *logging.LoggingBuilder) {
			b.AddZap(provider)
		}))
	}

	if c.strict {
		opts = append(opts, cmsconfig.WithStrict())
	}
	opts = append(opts, extra...)

	if err := cmsconfig.Run(opts...); err != nil {
		fmt.Fprintf(stderr, "cmsconfig: %v\n", err)
		return 1
	}
	return 0
}
