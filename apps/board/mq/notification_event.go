package mq

import "time"

// NotificationEvent 通知事件，board 写入 Kafka，connect 消费后推送给在线设备。
// 以 Recipient 作为消息 key，同一接收人的事件保持有序。
type NotificationEvent struct {
	EventID        int64     `json:"event_id"`
	AlarmType      string    `json:"alarm_type"`
	Recipient      string    `json:"recipient"`
	RecipientEmail string    `json:"recipient_email,omitempty"`
	Message        string    `json:"message"`
	TargetID       int64     `json:"target_id"`
	MakeID         string    `json:"make_id"`
	NotificationID int64     `json:"notification_id"`
	CreatedAt      time.Time `json:"created_at"`
	TraceID        string    `json:"trace_id,omitempty"`
}
