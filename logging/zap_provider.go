package logging

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLoggerProvider 基于 zap 的日志提供者
type ZapLoggerProvider struct {
	base  *zap.Logger
	level zap.AtomicLevel
	mu    sync.RWMutex
}

// NewZapLoggerProvider 使用生产配置创建 JSON 输出的 zap 提供者
func NewZapLoggerProvider() (*ZapLoggerProvider, error) {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)

	cfg := zap.NewProductionConfig()
	cfg.Level = level
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	base, err := cfg.Build(zap.AddCallerSkip(2))
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}
	return &ZapLoggerProvider{base: base, level: level}, nil
}

// NewZapLoggerProviderFrom 包装已有的 zap.Logger（测试中常用 zaptest/observer）
func NewZapLoggerProviderFrom(base *zap.Logger) *ZapLoggerProvider {
	return &ZapLoggerProvider{base: base, level: zap.NewAtomicLevelAt(zapcore.DebugLevel)}
}

func (p *ZapLoggerProvider) CreateLogger(category string) Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return &zapLogger{provider: p, logger: p.base.Named(category)}
}

func (p *ZapLoggerProvider) SetMinimumLevel(level LogLevel) {
	p.level.SetLevel(toZapLevel(level))
}

// Sync 刷新缓冲
func (p *ZapLoggerProvider) Sync() error {
	return p.base.Sync()
}

// zapLogger 将 Field 转为 zap.Any
type zapLogger struct {
	provider *ZapLoggerProvider
	logger   *zap.Logger
}

func (l *zapLogger) Trace(msg string, fields ...Field) { l.Log(LogLevelTrace, msg, fields...) }
func (l *zapLogger) Debug(msg string, fields ...Field) { l.Log(LogLevelDebug, msg, fields...) }
func (l *zapLogger) Info(msg string, fields ...Field)  { l.Log(LogLevelInfo, msg, fields...) }
func (l *zapLogger) Warn(msg string, fields ...Field)  { l.Log(LogLevelWarn, msg, fields...) }
func (l *zapLogger) Error(msg string, fields ...Field) { l.Log(LogLevelError, msg, fields...) }

// Fatal zap 自身负责退出进程
func (l *zapLogger) Fatal(msg string, fields ...Field) {
	l.logger.Fatal(msg, toZapFields(fields)...)
}

func (l *zapLogger) Log(level LogLevel, msg string, fields ...Field) {
	if level == LogLevelFatal {
		l.Fatal(msg, fields...)
		return
	}
	if ce := l.logger.Check(toZapLevel(level), msg); ce != nil {
		ce.Write(toZapFields(fields)...)
	}
}

func (l *zapLogger) WithFields(fields ...Field) Logger {
	return &zapLogger{provider: l.provider, logger: l.logger.With(toZapFields(fields)...)}
}

func (l *zapLogger) WithCategory(category string) Logger {
	return &zapLogger{provider: l.provider, logger: l.provider.base.Named(category)}
}

func toZapFields(fields []Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}

// toZapLevel zap 没有 TRACE，按 DEBUG 处理
func toZapLevel(level LogLevel) zapcore.Level {
	switch level {
	case LogLevelTrace, LogLevelDebug:
		return zapcore.DebugLevel
	case LogLevelWarn:
		return zapcore.WarnLevel
	case LogLevelError:
		return zapcore.ErrorLevel
	case LogLevelFatal:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}
