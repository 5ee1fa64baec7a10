package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
)

// ErrProducerClosed 生产者已关闭
var ErrProducerClosed = errors.New("kafka producer closed")

// Producer 单 topic 生产者封装
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// ProducerOption 生产者可选项
type ProducerOption func(w *kafka.Writer)

// WithWriteTimeout 设置写超时
func WithWriteTimeout(d time.Duration) ProducerOption {
	return func(w *kafka.Writer) {
		if d > 0 {
			w.WriteTimeout = d
		}
	}
}

// WithBatchTimeout 设置批量发送等待时间
func WithBatchTimeout(d time.Duration) ProducerOption {
	return func(w *kafka.Writer) {
		if d > 0 {
			w.BatchTimeout = d
		}
	}
}

// WithMaxAttempts 设置最大重试次数
func WithMaxAttempts(n int) ProducerOption {
	return func(w *kafka.Writer) {
		if n > 0 {
			w.MaxAttempts = n
		}
	}
}

// WithLogger 设置错误日志
func WithLogger(l kafka.Logger) ProducerOption {
	return func(w *kafka.Writer) {
		w.ErrorLogger = l
	}
}

// NewProducer 创建生产者。按 key 哈希分区，保证同一 key 的消息有序。
func NewProducer(brokers []string, topic string, opts ...ProducerOption) *Producer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	for _, opt := range opts {
		opt(w)
	}
	return &Producer{writer: w, topic: topic}
}

// Topic 返回目标 topic
func (p *Producer) Topic() string { return p.topic }

// Send 发送原始消息
func (p *Producer) Send(ctx context.Context, key, value []byte) error {
	if p == nil || p.writer == nil {
		return ErrProducerClosed
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   key,
		Value: value,
		Time:  time.Now(),
	})
}

// SendJSON 将 v 序列化为 JSON 后发送
func (p *Producer) SendJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.Send(ctx, []byte(key), data)
}

// Close 关闭生产者，等待缓冲区中的消息发送完
func (p *Producer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
