package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
)

// Message 透出 kafka-go 的消息类型，调用方无需直接依赖 kafka-go
type Message = kafka.Message

// HandlerFunc 消息处理函数。返回错误时消息仍会提交，由业务自行决定是否重投。
type HandlerFunc func(ctx context.Context, msg Message) error

// ConsumerConfig 消费者参数
type ConsumerConfig struct {
	Brokers        []string
	Topic          string
	GroupID        string
	MinBytes       int
	MaxBytes       int
	CommitInterval time.Duration
	Logger         kafka.Logger
	ErrorLogger    kafka.Logger
}

// Consumer 消费组封装：Fetch -> Handle -> Commit
type Consumer struct {
	reader *kafka.Reader
}

// NewConsumer 创建消费者
func NewConsumer(cfg ConsumerConfig) *Consumer {
	minBytes := cfg.MinBytes
	if minBytes <= 0 {
		minBytes = 1
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 10e6
	}
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        cfg.Brokers,
			Topic:          cfg.Topic,
			GroupID:        cfg.GroupID,
			MinBytes:       minBytes,
			MaxBytes:       maxBytes,
			CommitInterval: cfg.CommitInterval,
			Logger:         cfg.Logger,
			ErrorLogger:    cfg.ErrorLogger,
		}),
	}
}

// Run 阻塞消费直到 ctx 取消。
// onError 用于记录处理失败（可为 nil），处理失败不会阻塞后续消息。
func (c *Consumer) Run(ctx context.Context, handle HandlerFunc, onError func(msg Message, err error)) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
				return nil
			}
			return err
		}

		if err := handle(ctx, msg); err != nil && onError != nil {
			onError(msg, err)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// Close 关闭消费者
func (c *Consumer) Close() error {
	return c.reader.Close()
}
