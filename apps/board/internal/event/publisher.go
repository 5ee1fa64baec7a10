// Package event 通知事件发布端口。board 只负责产出事件，推送由 connect 服务完成。
package event

import (
	"context"
	"errors"

	"CommunityBoard/apps/board/mq"
	"CommunityBoard/pkg/kafka"
)

// ErrPublisherDisabled 未配置事件通道
var ErrPublisherDisabled = errors.New("event publisher disabled")

// Publisher 通知事件发布者
type Publisher interface {
	Publish(ctx context.Context, evt mq.NotificationEvent) error
}

type kafkaPublisher struct {
	producer *kafka.Producer
}

// NewKafkaPublisher 基于 Kafka 的事件发布者，消息 key 为接收人 UUID
func NewKafkaPublisher(producer *kafka.Producer) Publisher {
	return &kafkaPublisher{producer: producer}
}

func (p *kafkaPublisher) Publish(ctx context.Context, evt mq.NotificationEvent) error {
	if p.producer == nil {
		return ErrPublisherDisabled
	}
	return p.producer.SendJSON(ctx, evt.Recipient, evt)
}

// PublisherFunc 函数适配器
type PublisherFunc func(ctx context.Context, evt mq.NotificationEvent) error

func (f PublisherFunc) Publish(ctx context.Context, evt mq.NotificationEvent) error {
	return f(ctx, evt)
}

// Nop 丢弃所有事件，用于未部署推送通道的环境
var Nop Publisher = PublisherFunc(func(context.Context, mq.NotificationEvent) error { return nil })
