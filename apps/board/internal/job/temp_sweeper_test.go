package job

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"CommunityBoard/apps/board/internal/repository"
	"CommunityBoard/apps/board/internal/repository/repotest"
	"CommunityBoard/apps/board/internal/service"
	rediskey "CommunityBoard/consts/redisKey"
	"CommunityBoard/model"
	"CommunityBoard/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memStore struct {
	mu    sync.Mutex
	blobs map[string]bool
}

func (s *memStore) Store(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[objectName] = true
	return objectName, nil
}

func (s *memStore) Delete(ctx context.Context, location string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, location)
	return nil
}

func (s *memStore) Exists(ctx context.Context, location string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blobs[location], nil
}

func TestTempSweeper_SweepOnce(t *testing.T) {
	logger.ReplaceGlobal(zap.NewNop())
	ctx := context.Background()

	db := repotest.NewDB(t)
	mr, rdb := repotest.NewRedis(t)
	store := &memStore{blobs: map[string]bool{}}
	attachRepo := repository.NewAttachmentRepository(db)
	manager := service.NewAttachmentManager(attachRepo, store, nil)

	article := &model.Article{Title: "t", Content: "c", AuthorUuid: "alice"}
	require.NoError(t, repository.NewArticleRepository(db, nil).Create(ctx, article))

	file := func(name string) *service.FileInput {
		return &service.FileInput{FileName: name, Size: 1, Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader([]byte("x"))), nil
		}}
	}
	temps, err := manager.UploadTemporary(ctx, article, []*service.FileInput{file("a.txt"), file("b.txt"), file("c.txt")})
	require.NoError(t, err)
	perm, err := manager.UploadPermanent(ctx, article, []*service.FileInput{file("p.txt")})
	require.NoError(t, err)

	// a、b 已过期，c 仍在编辑窗口内
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, db.Model(&model.Attachment{}).
		Where("id IN ?", []int64{temps[0].Id, temps[1].Id, perm[0].Id}).
		UpdateColumn("created_at", old).Error)

	sweeper := NewTempSweeper(repository.NewTransactor(db), attachRepo, manager, rdb, 24*time.Hour, time.Minute, 1)

	t.Run("skips_when_locked_elsewhere", func(t *testing.T) {
		require.NoError(t, mr.Set(rediskey.SweeperLockKey(), "other"))
		n, err := sweeper.SweepOnce(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
		mr.Del(rediskey.SweeperLockKey())
	})

	t.Run("removes_stale_temporaries_in_batches", func(t *testing.T) {
		n, err := sweeper.SweepOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		list, err := attachRepo.ListByArticle(ctx, article.Id)
		require.NoError(t, err)
		require.Len(t, list, 2)
		for _, att := range list {
			assert.NotEqual(t, temps[0].Id, att.Id)
			assert.NotEqual(t, temps[1].Id, att.Id)
		}
		assert.False(t, store.blobs[temps[0].Location])
		assert.True(t, store.blobs[temps[2].Location])
		assert.True(t, store.blobs[perm[0].Location])
		assert.False(t, mr.Exists(rediskey.SweeperLockKey()))
	})
}
