package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"CommunityBoard/apps/board/internal/event"
	"CommunityBoard/apps/board/internal/repository"
	"CommunityBoard/apps/board/internal/repository/repotest"
	"CommunityBoard/apps/board/internal/storage"
	"CommunityBoard/apps/board/mq"
	"CommunityBoard/model"
	"CommunityBoard/pkg/logger"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// memStore 内存对象存储，可注入失败
type memStore struct {
	mu         sync.Mutex
	blobs      map[string][]byte
	storeCalls int
	// failOnStore 第 n 次 Store 调用失败（从 1 开始，0 表示不失败）
	failOnStore int
	failDelete  bool
}

func newMemStore() *memStore {
	return &memStore{blobs: make(map[string][]byte)}
}

func (s *memStore) Store(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.storeCalls++
	if s.failOnStore > 0 && s.storeCalls == s.failOnStore {
		return "", fmt.Errorf("%w: injected", storage.ErrStorageFailure)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.blobs[objectName] = data
	return objectName, nil
}

func (s *memStore) Delete(ctx context.Context, location string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDelete {
		return fmt.Errorf("%w: injected", storage.ErrStorageFailure)
	}
	delete(s.blobs, location)
	return nil
}

func (s *memStore) Exists(ctx context.Context, location string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blobs[location]
	return ok, nil
}

func (s *memStore) has(location string) bool {
	ok, _ := s.Exists(context.Background(), location)
	return ok
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blobs)
}

// recordingQueue 记录孤儿任务
type recordingQueue struct {
	mu    sync.Mutex
	tasks []mq.OrphanBlobTask
}

func (q *recordingQueue) Enqueue(ctx context.Context, task mq.OrphanBlobTask) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, task)
	return nil
}

// recordingPublisher 记录事件，可注入失败
type recordingPublisher struct {
	mu     sync.Mutex
	events []mq.NotificationEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, evt mq.NotificationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, evt)
	return nil
}

var _ event.Publisher = (*recordingPublisher)(nil)

// testEnv 基于 SQLite 的完整服务装配
type testEnv struct {
	db        *gorm.DB
	redis     *redis.Client
	store     *memStore
	orphans   *recordingQueue
	publisher *recordingPublisher

	tx          repository.ITransactor
	articleRepo repository.IArticleRepository
	attachRepo  repository.IAttachmentRepository
	notifyRepo  repository.INotificationRepository
	friendRepo  repository.IFriendRepository
	userRepo    repository.IUserRepository

	attachments   *AttachmentManager
	articles      *ArticleService
	notifications *NotificationService
	friends       *FriendService
	comments      *CommentService
	likes         *LikeService
}

func newTestEnv(t *testing.T, withRedis bool) *testEnv {
	t.Helper()
	logger.ReplaceGlobal(zap.NewNop())

	env := &testEnv{
		db:        repotest.NewDB(t),
		store:     newMemStore(),
		orphans:   &recordingQueue{},
		publisher: &recordingPublisher{},
	}
	if withRedis {
		_, env.redis = repotest.NewRedis(t)
	}

	env.tx = repository.NewTransactor(env.db)
	env.articleRepo = repository.NewArticleRepository(env.db, env.redis)
	env.attachRepo = repository.NewAttachmentRepository(env.db)
	env.notifyRepo = repository.NewNotificationRepository(env.db, env.redis)
	env.friendRepo = repository.NewFriendRepository(env.db)
	env.userRepo = repository.NewUserRepository(env.db, env.redis)

	env.attachments = NewAttachmentManager(env.attachRepo, env.store, env.orphans)
	env.articles = NewArticleService(env.tx, env.articleRepo, env.attachments)
	env.notifications = NewNotificationService(env.notifyRepo, env.articleRepo, env.userRepo, env.publisher)
	env.friends = NewFriendService(env.tx, env.friendRepo, env.notifyRepo, env.userRepo, env.notifications)
	env.comments = NewCommentService(env.articleRepo, env.notifications)
	env.likes = NewLikeService(env.tx, env.articleRepo, env.notifications)
	return env
}

func (e *testEnv) addUser(t *testing.T, uuid string) {
	t.Helper()
	require.NoError(t, e.userRepo.Create(context.Background(), &model.UserInfo{
		Uuid:     uuid,
		Nickname: uuid + "-nick",
		Email:    uuid + "@example.com",
	}))
}

func (e *testEnv) attachmentsOf(t *testing.T, articleID int64) []*model.Attachment {
	t.Helper()
	list, err := e.attachRepo.ListByArticle(context.Background(), articleID)
	require.NoError(t, err)
	return list
}

func fileOf(name, body string) *FileInput {
	return &FileInput{
		FileName:    name,
		ContentType: "text/plain",
		Size:        int64(len(body)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader([]byte(body))), nil
		},
	}
}

func tokenRef(token string) string {
	return fmt.Sprintf("<p>file uuidFileName=%s</p>", token)
}

func byToken(list []*model.Attachment) map[string]*model.Attachment {
	m := make(map[string]*model.Attachment, len(list))
	for _, a := range list {
		m[a.UuidFileName] = a
	}
	return m
}

var errBoom = errors.New("boom")
