package svc

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"CommunityBoard/apps/board/mq"
	"CommunityBoard/model"
	"CommunityBoard/pkg/kafka"
	"CommunityBoard/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePusher struct {
	online map[string]int
	frames map[string][][]byte
}

func (p *fakePusher) SendToUser(userUUID string, msg []byte) int {
	if p.frames == nil {
		p.frames = make(map[string][][]byte)
	}
	n := p.online[userUUID]
	if n > 0 {
		p.frames[userUUID] = append(p.frames[userUUID], msg)
	}
	return n
}

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	enabled bool
	err     error
	sent    []sentMail
}

func (m *fakeMailer) Enabled() bool { return m.enabled }

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func eventMessage(t *testing.T, evt mq.NotificationEvent) kafka.Message {
	t.Helper()
	raw, err := json.Marshal(evt)
	require.NoError(t, err)
	return kafka.Message{Key: []byte(evt.Recipient), Value: raw}
}

func TestEventConsumerHandle(t *testing.T) {
	logger.ReplaceGlobal(zap.NewNop())
	created := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("pushes_to_online_user", func(t *testing.T) {
		pusher := &fakePusher{online: map[string]int{"bob": 2}}
		mailer := &fakeMailer{enabled: true}
		c := NewEventConsumer(nil, pusher, NewConnectService(nil), mailer)

		err := c.Handle(context.Background(), eventMessage(t, mq.NotificationEvent{
			AlarmType:      model.AlarmTypeLike,
			Recipient:      "bob",
			Message:        "alice 赞了你的帖子",
			TargetID:       3,
			MakeID:         "alice",
			NotificationID: 9,
			CreatedAt:      created,
		}))
		require.NoError(t, err)
		require.Len(t, pusher.frames["bob"], 1)
		assert.Empty(t, mailer.sent)

		var frame struct {
			Type string              `json:"type"`
			Data NotificationPayload `json:"data"`
		}
		require.NoError(t, json.Unmarshal(pusher.frames["bob"][0], &frame))
		assert.Equal(t, EnvelopeNotification, frame.Type)
		assert.Equal(t, int64(9), frame.Data.NotificationID)
		assert.Equal(t, created.UnixMilli(), frame.Data.CreatedAt)
	})

	t.Run("mails_offline_friend_request", func(t *testing.T) {
		pusher := &fakePusher{}
		mailer := &fakeMailer{enabled: true}
		c := NewEventConsumer(nil, pusher, NewConnectService(nil), mailer)

		err := c.Handle(context.Background(), eventMessage(t, mq.NotificationEvent{
			AlarmType:      model.AlarmTypeFriendRequest,
			Recipient:      "bob",
			RecipientEmail: "bob@example.com",
			Message:        "alice 请求添加你为好友",
		}))
		require.NoError(t, err)
		require.Len(t, mailer.sent, 1)
		assert.Equal(t, "bob@example.com", mailer.sent[0].to)
	})

	t.Run("offline_other_kinds_are_dropped", func(t *testing.T) {
		mailer := &fakeMailer{enabled: true}
		c := NewEventConsumer(nil, &fakePusher{}, NewConnectService(nil), mailer)

		err := c.Handle(context.Background(), eventMessage(t, mq.NotificationEvent{
			AlarmType:      model.AlarmTypeComment,
			Recipient:      "bob",
			RecipientEmail: "bob@example.com",
		}))
		require.NoError(t, err)
		assert.Empty(t, mailer.sent)
	})

	t.Run("mail_disabled", func(t *testing.T) {
		mailer := &fakeMailer{enabled: false}
		c := NewEventConsumer(nil, &fakePusher{}, NewConnectService(nil), mailer)

		err := c.Handle(context.Background(), eventMessage(t, mq.NotificationEvent{
			AlarmType:      model.AlarmTypeFriendRequest,
			Recipient:      "bob",
			RecipientEmail: "bob@example.com",
		}))
		require.NoError(t, err)
		assert.Empty(t, mailer.sent)
	})

	t.Run("mail_failure_is_returned", func(t *testing.T) {
		mailer := &fakeMailer{enabled: true, err: errors.New("smtp down")}
		c := NewEventConsumer(nil, &fakePusher{}, NewConnectService(nil), mailer)

		err := c.Handle(context.Background(), eventMessage(t, mq.NotificationEvent{
			AlarmType:      model.AlarmTypeFriendRequest,
			Recipient:      "bob",
			RecipientEmail: "bob@example.com",
		}))
		assert.Error(t, err)
	})

	t.Run("bad_payload", func(t *testing.T) {
		c := NewEventConsumer(nil, &fakePusher{}, NewConnectService(nil), nil)
		err := c.Handle(context.Background(), kafka.Message{Value: []byte("{")})
		assert.Error(t, err)
	})
}
