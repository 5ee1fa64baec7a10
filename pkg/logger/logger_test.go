package logger

import (
	"context"
	"path/filepath"
	"testing"

	"CommunityBoard/config"
	"CommunityBoard/pkg/ctxmeta"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestBuild(t *testing.T) {
	t.Run("invalid_level_falls_back_to_info", func(t *testing.T) {
		cfg := config.DefaultLoggerConfig()
		cfg.Level = "nope"
		l, err := Build(cfg)
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
		assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("rolling_file_enabled", func(t *testing.T) {
		cfg := config.DefaultLoggerConfig()
		cfg.File = filepath.Join(t.TempDir(), "logs", "board.log")
		l, err := Build(cfg)
		require.NoError(t, err)
		l.Info("hello")
		assert.NoError(t, l.Sync())
	})
}

func TestContextFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ReplaceGlobal(zap.New(core))
	defer ReplaceGlobal(zap.NewNop())

	ctx := ctxmeta.WithUserUUID(ctxmeta.WithTraceID(context.Background(), "t-1"), "u-1")
	Info(ctx, "dispatch", String("kind", "LIKE"))
	Info(nil, "no ctx") //nolint:staticcheck

	entries := logs.All()
	require.Len(t, entries, 2)
	fields := entries[0].ContextMap()
	assert.Equal(t, "t-1", fields["trace_id"])
	assert.Equal(t, "u-1", fields["user_uuid"])
	assert.Equal(t, "LIKE", fields["kind"])
	assert.NotContains(t, entries[1].ContextMap(), "trace_id")
}
