package svc

import (
	"context"
	"encoding/json"
	"fmt"

	"CommunityBoard/apps/board/mq"
	"CommunityBoard/model"
	"CommunityBoard/pkg/ctxmeta"
	"CommunityBoard/pkg/kafka"
	"CommunityBoard/pkg/logger"
)

// Pusher 按用户推送下行帧，返回成功入队的设备数
type Pusher interface {
	SendToUser(userUUID string, msg []byte) int
}

// Mailer 离线邮件兜底
type Mailer interface {
	Enabled() bool
	Send(ctx context.Context, to, subject, body string) error
}

// NotificationPayload 推送给客户端的通知内容
type NotificationPayload struct {
	NotificationID int64  `json:"notificationId"`
	AlarmType      string `json:"alarmType"`
	Message        string `json:"message"`
	TargetID       int64  `json:"targetId"`
	MakeID         string `json:"makeId"`
	CreatedAt      int64  `json:"createdAt"`
}

// EventConsumer 消费 board 的通知事件并推送到在线设备。
// 投递尽力而为：接收人不在线时事件丢弃，好友申请在配置了邮件时发邮件提醒。
type EventConsumer struct {
	consumer *kafka.Consumer
	pusher   Pusher
	codec    *ConnectService
	mailer   Mailer
}

// NewEventConsumer 创建通知事件消费者，mailer 可为 nil
func NewEventConsumer(consumer *kafka.Consumer, pusher Pusher, codec *ConnectService, mailer Mailer) *EventConsumer {
	return &EventConsumer{consumer: consumer, pusher: pusher, codec: codec, mailer: mailer}
}

// Start 阻塞消费直到 ctx 取消
func (c *EventConsumer) Start(ctx context.Context) error {
	logger.Info(ctx, "通知事件消费者启动")
	return c.consumer.Run(ctx, c.Handle, func(msg kafka.Message, err error) {
		logger.Warn(ctx, "通知事件处理失败",
			logger.String("key", string(msg.Key)),
			logger.ErrorField("error", err),
		)
	})
}

// Handle 处理单条通知事件
func (c *EventConsumer) Handle(ctx context.Context, msg kafka.Message) error {
	var evt mq.NotificationEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		return fmt.Errorf("decode notification event: %w", err)
	}
	if evt.TraceID != "" {
		ctx = ctxmeta.WithTraceID(ctx, evt.TraceID)
	}

	frame, err := c.codec.MarshalEnvelope(EnvelopeNotification, &NotificationPayload{
		NotificationID: evt.NotificationID,
		AlarmType:      evt.AlarmType,
		Message:        evt.Message,
		TargetID:       evt.TargetID,
		MakeID:         evt.MakeID,
		CreatedAt:      evt.CreatedAt.UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("marshal notification frame: %w", err)
	}

	if sent := c.pusher.SendToUser(evt.Recipient, frame); sent > 0 {
		logger.Debug(ctx, "通知已推送",
			logger.String("recipient", evt.Recipient),
			logger.Int("devices", sent),
		)
		return nil
	}
	return c.fallback(ctx, &evt)
}

// fallback 接收人离线时的兜底：仅好友申请发邮件
func (c *EventConsumer) fallback(ctx context.Context, evt *mq.NotificationEvent) error {
	if evt.AlarmType != model.AlarmTypeFriendRequest || evt.RecipientEmail == "" {
		return nil
	}
	if c.mailer == nil || !c.mailer.Enabled() {
		return nil
	}
	if err := c.mailer.Send(ctx, evt.RecipientEmail, "新的好友申请", evt.Message); err != nil {
		return err
	}
	logger.Info(ctx, "好友申请邮件已发送", logger.String("recipient", evt.Recipient))
	return nil
}
