package mail

import (
	"context"
	"errors"
	"fmt"

	"CommunityBoard/config"

	"gopkg.in/gomail.v2"
)

// ErrDisabled 未配置 SMTP
var ErrDisabled = errors.New("mail sender disabled")

// Sender SMTP 发送器
type Sender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSender 根据配置创建发送器，Host 为空时返回 nil
func NewSender(cfg config.MailConfig) *Sender {
	if cfg.Host == "" {
		return nil
	}
	return &Sender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// Enabled 是否可用
func (s *Sender) Enabled() bool {
	return s != nil && s.dialer != nil
}

// Send 发送纯文本邮件。gomail 不感知 ctx，这里只在发送前检查是否已取消。
func (s *Sender) Send(ctx context.Context, to, subject, body string) error {
	if !s.Enabled() {
		return ErrDisabled
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}
	return nil
}
