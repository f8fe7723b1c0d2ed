package cola

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewZapLogger(t *testing.T) {
	t.Run("forwards messages with key value pairs", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		logger := NewZapLogger(zap.New(core))

		logger.Debug("step bound", "step", "Given I have 3 items", "arguments", 1)
		logger.Info("scenario passed", "scenario", "Buying")
		logger.Warn("slow step")
		logger.Error("step failed", "error", "boom")

		entries := logs.All()
		require.Len(t, entries, 4)
		require.Equal(t, "step bound", entries[0].Message)
		require.Equal(t, zapcore.DebugLevel, entries[0].Level)
		require.Equal(t, "Given I have 3 items", entries[0].ContextMap()["step"])
		require.Equal(t, zapcore.ErrorLevel, entries[3].Level)
	})
}

func TestResolveLogger(t *testing.T) {
	t.Run("defaults to slog", func(t *testing.T) {
		require.Equal(t, Logger(slog.Default()), ResolveLogger(nil))
		require.Equal(t, Logger(slog.Default()), ResolveLogger(&Config{}))
	})

	t.Run("disabled logging discards messages", func(t *testing.T) {
		require.Equal(t, NoopLogger(), ResolveLogger(&Config{DisableLog: true, Logger: slog.Default()}))
	})

	t.Run("uses the configured logger", func(t *testing.T) {
		core, _ := observer.New(zapcore.InfoLevel)
		logger := NewZapLogger(zap.New(core))
		require.Same(t, logger, ResolveLogger(&Config{Logger: logger}))
	})
}
