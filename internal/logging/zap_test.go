package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger_LevelsAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapLogger(zap.New(core))
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", "two")
	log.Warn(ctx, "wrn")
	log.Error(ctx, "err")

	entries := logs.AllUntimed()
	require.Len(t, entries, 4)

	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, int64(1), entries[0].ContextMap()["a"])
	assert.Equal(t, "two", entries[1].ContextMap()["b"])
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
}

func TestZapLogger_With(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := NewZapLogger(zap.New(core)).With("operation", "signin")

	log.Info(context.Background(), "done", "origin", "remote")

	entries := logs.FilterMessage("done").AllUntimed()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "signin", fields["operation"])
	assert.Equal(t, "remote", fields["origin"])
}

func TestZapLogger_WithTestLogger(t *testing.T) {
	log := NewZapLogger(zaptest.NewLogger(t))
	log.Info(context.Background(), "works under go test", "k", "v")
}

func TestNewZap_Builds(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		l, err := NewZap(format, "debug")
		require.NoError(t, err)
		require.NotNil(t, l)
	}

	l, err := NewZap("json", "nonsense")
	require.NoError(t, err)
	require.NotNil(t, l)
}
