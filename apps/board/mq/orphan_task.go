package mq

import (
	"context"
	"errors"
	"time"

	"CommunityBoard/pkg/kafka"
)

// ==================== 孤儿对象清理任务 ====================

// OrphanBlobTask 存放在 Kafka 里的待删除对象。
// 附件记录已经删除但对象删除失败时产生，由 OrphanConsumer 重试。
type OrphanBlobTask struct {
	Location  string `json:"location"`
	ArticleID int64  `json:"article_id"`
	Token     string `json:"token"`

	// 元数据（用于追踪和重试控制）
	TraceID     string    `json:"trace_id,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	RetryCount  int       `json:"retry_count"`
	MaxRetries  int       `json:"max_retries"`
	OriginalErr string    `json:"original_err"`
}

// DefaultOrphanMaxRetries 默认最大重试次数
const DefaultOrphanMaxRetries = 5

// BuildOrphanTask 构造孤儿对象清理任务
func BuildOrphanTask(location string, articleID int64, token string, cause error) OrphanBlobTask {
	task := OrphanBlobTask{
		Location:   location,
		ArticleID:  articleID,
		Token:      token,
		Timestamp:  time.Now(),
		MaxRetries: DefaultOrphanMaxRetries,
	}
	if cause != nil {
		task.OriginalErr = cause.Error()
	}
	return task
}

// ErrQueueDisabled 未配置 Kafka
var ErrQueueDisabled = errors.New("orphan queue disabled")

// OrphanQueue 孤儿对象任务队列
type OrphanQueue interface {
	Enqueue(ctx context.Context, task OrphanBlobTask) error
}

type kafkaOrphanQueue struct {
	producer *kafka.Producer
}

// NewOrphanQueue 基于 Kafka 生产者的孤儿任务队列；producer 为 nil 时入队返回 ErrQueueDisabled
func NewOrphanQueue(producer *kafka.Producer) OrphanQueue {
	return &kafkaOrphanQueue{producer: producer}
}

func (q *kafkaOrphanQueue) Enqueue(ctx context.Context, task OrphanBlobTask) error {
	if q.producer == nil {
		return ErrQueueDisabled
	}
	return q.producer.SendJSON(ctx, task.Location, task)
}
