package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ConfigurationSource 配置源接口
// Load 返回变量名到字符串值的映射
type ConfigurationSource interface {
	Load() (map[string]string, error)
	Name() string
}

// ConfigurationBuilder 配置构建器
// 后添加的配置源覆盖先添加的
type ConfigurationBuilder struct {
	sources []ConfigurationSource
	mu      sync.RWMutex
}

// NewConfigurationBuilder 创建配置构建器
func NewConfigurationBuilder() *ConfigurationBuilder {
	return &ConfigurationBuilder{
		sources: make([]ConfigurationSource, 0),
	}
}

// Add 添加配置源
func (b *ConfigurationBuilder) Add(source ConfigurationSource) *ConfigurationBuilder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sources = append(b.sources, source)
	return b
}

// AddEnvironmentVariables 添加环境变量配置源
func (b *ConfigurationBuilder) AddEnvironmentVariables(prefix string) *ConfigurationBuilder {
	return b.Add(&EnvironmentVariableSource{Prefix: prefix})
}

// AddInMemory 添加内存配置源
func (b *ConfigurationBuilder) AddInMemory(data map[string]string) *ConfigurationBuilder {
	return b.Add(&InMemorySource{Data: data})
}

// AddYamlFile 添加 YAML 文件配置源
func (b *ConfigurationBuilder) AddYamlFile(path string, optional ...bool) *ConfigurationBuilder {
	isOptional := len(optional) > 0 && optional[0]
	return b.Add(&YamlFileSource{Path: path, Optional: isOptional})
}

// AddTomlFile 添加 TOML 文件配置源
func (b *ConfigurationBuilder) AddTomlFile(path string, optional ...bool) *ConfigurationBuilder {
	isOptional := len(optional) > 0 && optional[0]
	return b.Add(&TomlFileSource{Path: path, Optional: isOptional})
}

// AddEnvFile 添加 dotenv 文件配置源
func (b *ConfigurationBuilder) AddEnvFile(path string, optional ...bool) *ConfigurationBuilder {
	isOptional := len(optional) > 0 && optional[0]
	return b.Add(&EnvFileSource{Path: path, Optional: isOptional})
}

// AddFile 按扩展名选择文件配置源
func (b *ConfigurationBuilder) AddFile(path string, optional ...bool) *ConfigurationBuilder {
	switch {
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		return b.AddYamlFile(path, optional...)
	case strings.HasSuffix(path, ".toml"):
		return b.AddTomlFile(path, optional...)
	default:
		return b.AddEnvFile(path, optional...)
	}
}

// Sources 返回已添加的配置源
func (b *ConfigurationBuilder) Sources() []ConfigurationSource {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]ConfigurationSource, len(b.sources))
	copy(out, b.sources)
	return out
}

// Build 按顺序加载所有配置源，返回不可变快照
func (b *ConfigurationBuilder) Build() (Map, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	result := make(Map)
	for _, source := range b.sources {
		data, err := source.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load config source %s: %w", source.Name(), err)
		}
		for k, v := range data {
			result[k] = v
		}
	}

	return result, nil
}

// EnvironmentVariableSource 环境变量配置源
type EnvironmentVariableSource struct {
	Prefix string
}

func (s *EnvironmentVariableSource) Name() string {
	return fmt.Sprintf("EnvironmentVariables(%s)", s.Prefix)
}

func (s *EnvironmentVariableSource) Load() (map[string]string, error) {
	result := make(map[string]string)

	for _, env := range os.Environ() {
		key, value, ok := strings.Cut(env, "=")
		if !ok {
			continue
		}

		if s.Prefix != "" {
			if !strings.HasPrefix(key, s.Prefix) {
				continue
			}
			key = strings.TrimPrefix(key, s.Prefix)
		}

		if key == "" {
			continue
		}
		result[key] = value
	}

	return result, nil
}

// InMemorySource 内存配置源
type InMemorySource struct {
	Data map[string]string
}

func (s *InMemorySource) Name() string {
	return "InMemory"
}

func (s *InMemorySource) Load() (map[string]string, error) {
	// 返回副本
	return Map(s.Data).clone(), nil
}

// YamlFileSource YAML 文件配置源
// 嵌套键以 _ 连接并转为大写，例如 database.filename -> DATABASE_FILENAME
type YamlFileSource struct {
	Path     string
	Optional bool
}

func (s *YamlFileSource) Name() string {
	return fmt.Sprintf("YamlFile(%s)", s.Path)
}

func (s *YamlFileSource) Load() (map[string]string, error) {
	data, err := readOptional(s.Path, s.Optional)
	if err != nil || data == nil {
		return make(map[string]string), err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	result := make(map[string]string)
	if err := flatten("", raw, result); err != nil {
		return nil, err
	}
	return result, nil
}

// TomlFileSource TOML 文件配置源，展开规则同 YamlFileSource
type TomlFileSource struct {
	Path     string
	Optional bool
}

func (s *TomlFileSource) Name() string {
	return fmt.Sprintf("TomlFile(%s)", s.Path)
}

func (s *TomlFileSource) Load() (map[string]string, error) {
	data, err := readOptional(s.Path, s.Optional)
	if err != nil || data == nil {
		return make(map[string]string), err
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	result := make(map[string]string)
	if err := flatten("", raw, result); err != nil {
		return nil, err
	}
	return result, nil
}

// EnvFileSource dotenv 文件配置源
type EnvFileSource struct {
	Path     string
	Optional bool
}

func (s *EnvFileSource) Name() string {
	return fmt.Sprintf("EnvFile(%s)", s.Path)
}

func (s *EnvFileSource) Load() (map[string]string, error) {
	data, err := readOptional(s.Path, s.Optional)
	if err != nil || data == nil {
		return make(map[string]string), err
	}
	result, err := godotenv.UnmarshalBytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse env file: %w", err)
	}
	return result, nil
}

// readOptional 读取文件，可选文件不存在时返回 nil
func readOptional(path string, optional bool) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// flatten 将嵌套 map 展开为环境变量风格的键
// 按键排序遍历；展开后重名（如 database_filename 与 database.filename）返回错误
func flatten(prefix string, src map[string]any, dst map[string]string) error {
	keys := make([]string, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		key := strings.ToUpper(k)
		if prefix != "" {
			key = prefix + "_" + key
		}

		switch val := src[k].(type) {
		case map[string]any:
			if err := flatten(key, val, dst); err != nil {
				return err
			}
			continue
		case nil:
			// null 表示未设置
			continue
		case string:
			if _, exists := dst[key]; exists {
				return fmt.Errorf("duplicate key %s", key)
			}
			dst[key] = val
		default:
			if _, exists := dst[key]; exists {
				return fmt.Errorf("duplicate key %s", key)
			}
			dst[key] = fmt.Sprintf("%v", val)
		}
	}
	return nil
}
