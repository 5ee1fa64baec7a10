package async

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"CommunityBoard/config"
	"CommunityBoard/pkg/ctxmeta"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSafe(t *testing.T) {
	t.Run("runs_inline_without_pool", func(t *testing.T) {
		var ran atomic.Bool
		RunSafe(context.Background(), func(ctx context.Context) { ran.Store(true) }, time.Second)
		assert.True(t, ran.Load())
	})

	t.Run("detaches_from_cancelled_parent", func(t *testing.T) {
		parent, cancel := context.WithCancel(ctxmeta.WithTraceID(context.Background(), "t-9"))
		cancel()

		var trace string
		var ctxErr error
		RunSafe(parent, func(ctx context.Context) {
			trace = ctxmeta.TraceID(ctx)
			ctxErr = ctx.Err()
		}, time.Second)
		assert.Equal(t, "t-9", trace)
		assert.NoError(t, ctxErr)
	})

	t.Run("recovers_panic", func(t *testing.T) {
		assert.NotPanics(t, func() {
			RunSafe(context.Background(), func(ctx context.Context) { panic("boom") }, time.Second)
		})
	})

	t.Run("uses_pool_when_initialized", func(t *testing.T) {
		require.NoError(t, Init(config.DefaultAsyncConfig()))
		defer func() { _ = Release() }()

		done := make(chan struct{})
		RunSafe(context.Background(), func(ctx context.Context) { close(done) }, time.Second)
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("task not executed")
		}
	})
}
