package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLoggerProvider_Disabled(t *testing.T) {
	core, _ := observer.New(zapcore.DebugLevel)
	base := zap.New(core)

	lp, err := NewLoggerProvider(context.Background(), Config{}, base)
	require.NoError(t, err)

	assert.False(t, lp.IsEnabled())
	assert.Same(t, base, lp.Bridge(base, zapcore.InfoLevel))
	assert.NoError(t, lp.Shutdown(context.Background()))
}

func TestLevelFilterCore(t *testing.T) {
	inner, logs := observer.New(zapcore.DebugLevel)
	core := &levelFilterCore{Core: inner, minLevel: zapcore.WarnLevel}
	logger := zap.New(core)

	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn")
	logger.With(zap.String("cep", "01001000")).Error("error")

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, "warn", entries[0].Message)
	assert.Equal(t, "error", entries[1].Message)
	assert.Equal(t, "01001000", entries[1].ContextMap()["cep"])

	assert.False(t, core.Enabled(zapcore.InfoLevel))
	assert.True(t, core.Enabled(zapcore.ErrorLevel))
}

func TestLevelFilterCore_RespectsInnerLevel(t *testing.T) {
	inner, logs := observer.New(zapcore.ErrorLevel)
	logger := zap.New(&levelFilterCore{Core: inner, minLevel: zapcore.DebugLevel})

	logger.Warn("warn")
	logger.Error("error")

	assert.Equal(t, 1, logs.Len())
}
