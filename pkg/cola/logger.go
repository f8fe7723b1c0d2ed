// Package cola holds the types shared by step definitions, hooks and the
// runner.
package cola

import (
	"log/slog"

	"go.uber.org/zap"
)

// Logger is the interface for structured logging.
// Compatible with *slog.Logger and other structured loggers.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// ResolveLogger returns the logger a run should use for cfg.
func ResolveLogger(cfg *Config) Logger {
	switch {
	case cfg == nil:
		return slog.Default()
	case cfg.DisableLog:
		return NoopLogger()
	case cfg.Logger != nil:
		return cfg.Logger
	default:
		return slog.Default()
	}
}

// NoopLogger returns a logger that discards all messages.
func NoopLogger() Logger {
	return noopLogger{}
}

type noopLogger struct{}

func (noopLogger) Debug(msg string, args ...any) {}
func (noopLogger) Info(msg string, args ...any)  {}
func (noopLogger) Warn(msg string, args ...any)  {}
func (noopLogger) Error(msg string, args ...any) {}

// NewZapLogger adapts a zap logger. Arguments are alternating keys and
// values, as with slog.
func NewZapLogger(logger *zap.Logger) Logger {
	return &zapLogger{sugar: logger.Sugar()}
}

type zapLogger struct {
	sugar *zap.SugaredLogger
}

func (z *zapLogger) Debug(msg string, args ...any) { z.sugar.Debugw(msg, args...) }
func (z *zapLogger) Info(msg string, args ...any)  { z.sugar.Infow(msg, args...) }
func (z *zapLogger) Warn(msg string, args ...any)  { z.sugar.Warnw(msg, args...) }
func (z *zapLogger) Error(msg string, args ...any) { z.sugar.Errorw(msg, args...) }
