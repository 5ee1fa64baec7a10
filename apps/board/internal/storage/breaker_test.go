package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"CommunityBoard/pkg/logger"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStore struct {
	StoreFunc  func(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) (string, error)
	DeleteFunc func(ctx context.Context, location string) error
	ExistsFunc func(ctx context.Context, location string) (bool, error)
}

func (f *fakeStore) Store(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) (string, error) {
	return f.StoreFunc(ctx, objectName, r, size, contentType)
}

func (f *fakeStore) Delete(ctx context.Context, location string) error {
	return f.DeleteFunc(ctx, location)
}

func (f *fakeStore) Exists(ctx context.Context, location string) (bool, error) {
	return f.ExistsFunc(ctx, location)
}

func TestBreakerStore(t *testing.T) {
	logger.ReplaceGlobal(zap.NewNop())
	ctx := context.Background()

	t.Run("passes_through_success", func(t *testing.T) {
		store := NewBreakerStore(&fakeStore{
			StoreFunc: func(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) (string, error) {
				return "loc/" + objectName, nil
			},
			ExistsFunc: func(ctx context.Context, location string) (bool, error) { return true, nil },
		}, "ok", BreakerSettings{})

		loc, err := store.Store(ctx, "a", strings.NewReader("x"), 1, "text/plain")
		require.NoError(t, err)
		assert.Equal(t, "loc/a", loc)

		ok, err := store.Exists(ctx, loc)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("errors_wrap_storage_failure", func(t *testing.T) {
		store := NewBreakerStore(&fakeStore{
			DeleteFunc: func(ctx context.Context, location string) error { return errors.New("boom") },
		}, "wrap", BreakerSettings{})

		err := store.Delete(ctx, "x")
		assert.ErrorIs(t, err, ErrStorageFailure)
	})

	t.Run("opens_after_failures", func(t *testing.T) {
		calls := 0
		store := NewBreakerStore(&fakeStore{
			DeleteFunc: func(ctx context.Context, location string) error {
				calls++
				return errors.New("down")
			},
		}, "trip", BreakerSettings{MinRequests: 2, FailureRate: 0.5, Timeout: time.Minute})

		for i := 0; i < 2; i++ {
			require.Error(t, store.Delete(ctx, "x"))
		}
		assert.Equal(t, gobreaker.StateOpen, store.(*breakerStore).State())

		err := store.Delete(ctx, "x")
		assert.ErrorIs(t, err, ErrStorageFailure)
		assert.ErrorIs(t, err, gobreaker.ErrOpenState)
		assert.Equal(t, 2, calls)
	})
}
