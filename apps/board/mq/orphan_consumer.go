package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"CommunityBoard/apps/board/internal/storage"
	"CommunityBoard/pkg/ctxmeta"
	"CommunityBoard/pkg/kafka"
	"CommunityBoard/pkg/logger"
)

// OrphanConsumer 消费孤儿对象任务，重试删除对象存储中的残留文件
type OrphanConsumer struct {
	consumer *kafka.Consumer
	store    storage.Store
	queue    OrphanQueue
	backoff  time.Duration
}

// NewOrphanConsumer 创建孤儿对象消费者。queue 用于失败后重新投递。
func NewOrphanConsumer(consumer *kafka.Consumer, store storage.Store, queue OrphanQueue) *OrphanConsumer {
	return &OrphanConsumer{consumer: consumer, store: store, queue: queue, backoff: time.Second}
}

// Start 阻塞消费直到 ctx 取消
func (c *OrphanConsumer) Start(ctx context.Context) error {
	logger.Info(ctx, "孤儿对象清理消费者启动")
	return c.consumer.Run(ctx, c.Handle, func(msg kafka.Message, err error) {
		logger.Error(ctx, "孤儿对象任务处理失败",
			logger.String("key", string(msg.Key)),
			logger.ErrorField("error", err),
		)
	})
}

// Handle 处理单条任务。删除失败且未超过重试上限时重新入队。
func (c *OrphanConsumer) Handle(ctx context.Context, msg kafka.Message) error {
	var task OrphanBlobTask
	if err := json.Unmarshal(msg.Value, &task); err != nil {
		// 无法解析的消息直接丢弃
		return fmt.Errorf("decode orphan task: %w", err)
	}
	if task.TraceID != "" {
		ctx = ctxmeta.WithTraceID(ctx, task.TraceID)
	}

	err := c.store.Delete(ctx, task.Location)
	if err == nil {
		logger.Info(ctx, "孤儿对象已清理",
			logger.String("location", task.Location),
			logger.Int("retry_count", task.RetryCount),
		)
		return nil
	}

	if task.RetryCount+1 >= task.MaxRetries {
		logger.Error(ctx, "孤儿对象重试次数耗尽，放弃清理",
			logger.String("location", task.Location),
			logger.Int64("article_id", task.ArticleID),
			logger.String("token", task.Token),
			logger.String("original_err", task.OriginalErr),
			logger.ErrorField("error", err),
		)
		return nil
	}

	// 线性退避，避免对象存储故障时快速空转
	wait := c.backoff * time.Duration(task.RetryCount+1)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
	}

	task.RetryCount++
	task.Timestamp = time.Now()
	if qErr := c.queue.Enqueue(ctx, task); qErr != nil {
		return fmt.Errorf("requeue orphan task: %w", qErr)
	}
	logger.Warn(ctx, "孤儿对象删除失败，已重新入队",
		logger.String("location", task.Location),
		logger.Int("retry_count", task.RetryCount),
		logger.ErrorField("error", err),
	)
	return nil
}
