package mq

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"CommunityBoard/pkg/kafka"
	"CommunityBoard/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStore struct {
	DeleteFunc func(ctx context.Context, location string) error
}

func (f *fakeStore) Store(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) (string, error) {
	return objectName, nil
}

func (f *fakeStore) Delete(ctx context.Context, location string) error {
	return f.DeleteFunc(ctx, location)
}

func (f *fakeStore) Exists(ctx context.Context, location string) (bool, error) {
	return false, nil
}

type fakeQueue struct {
	tasks []OrphanBlobTask
	err   error
}

func (q *fakeQueue) Enqueue(ctx context.Context, task OrphanBlobTask) error {
	if q.err != nil {
		return q.err
	}
	q.tasks = append(q.tasks, task)
	return nil
}

func orphanMessage(t *testing.T, task OrphanBlobTask) kafka.Message {
	t.Helper()
	data, err := json.Marshal(task)
	require.NoError(t, err)
	return kafka.Message{Key: []byte(task.Location), Value: data}
}

func TestOrphanConsumer_Handle(t *testing.T) {
	logger.ReplaceGlobal(zap.NewNop())
	ctx := context.Background()

	t.Run("delete_succeeds", func(t *testing.T) {
		var deleted string
		queue := &fakeQueue{}
		c := NewOrphanConsumer(nil, &fakeStore{DeleteFunc: func(ctx context.Context, location string) error {
			deleted = location
			return nil
		}}, queue)

		err := c.Handle(ctx, orphanMessage(t, BuildOrphanTask("articles/1/a", 1, "a", errors.New("x"))))
		require.NoError(t, err)
		assert.Equal(t, "articles/1/a", deleted)
		assert.Empty(t, queue.tasks)
	})

	t.Run("failure_requeues_with_retry_count", func(t *testing.T) {
		queue := &fakeQueue{}
		c := NewOrphanConsumer(nil, &fakeStore{DeleteFunc: func(ctx context.Context, location string) error {
			return errors.New("down")
		}}, queue)
		c.backoff = 0

		err := c.Handle(ctx, orphanMessage(t, BuildOrphanTask("articles/1/a", 1, "a", nil)))
		require.NoError(t, err)
		require.Len(t, queue.tasks, 1)
		assert.Equal(t, 1, queue.tasks[0].RetryCount)
	})

	t.Run("gives_up_after_max_retries", func(t *testing.T) {
		queue := &fakeQueue{}
		c := NewOrphanConsumer(nil, &fakeStore{DeleteFunc: func(ctx context.Context, location string) error {
			return errors.New("down")
		}}, queue)
		c.backoff = 0

		task := BuildOrphanTask("articles/1/a", 1, "a", nil)
		task.RetryCount = task.MaxRetries - 1
		require.NoError(t, c.Handle(ctx, orphanMessage(t, task)))
		assert.Empty(t, queue.tasks)
	})

	t.Run("requeue_error_is_returned", func(t *testing.T) {
		queue := &fakeQueue{err: ErrQueueDisabled}
		c := NewOrphanConsumer(nil, &fakeStore{DeleteFunc: func(ctx context.Context, location string) error {
			return errors.New("down")
		}}, queue)
		c.backoff = 0

		err := c.Handle(ctx, orphanMessage(t, BuildOrphanTask("x", 1, "x", nil)))
		assert.ErrorIs(t, err, ErrQueueDisabled)
	})

	t.Run("bad_payload", func(t *testing.T) {
		c := NewOrphanConsumer(nil, &fakeStore{}, &fakeQueue{})
		assert.Error(t, c.Handle(ctx, kafka.Message{Value: []byte("{")}))
	})
}
