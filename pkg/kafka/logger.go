package kafka

import (
	"fmt"

	"go.uber.org/zap"
)

// ZapLoggerAdapter 把 kafka-go 的 Printf 风格日志接入 zap
type ZapLoggerAdapter struct {
	l       *zap.Logger
	isError bool
}

// NewZapLoggerAdapter 普通日志（debug 级别，kafka-go 的常规日志非常多）
func NewZapLoggerAdapter(l *zap.Logger) *ZapLoggerAdapter {
	return &ZapLoggerAdapter{l: l}
}

// NewZapErrorLoggerAdapter 错误日志
func NewZapErrorLoggerAdapter(l *zap.Logger) *ZapLoggerAdapter {
	return &ZapLoggerAdapter{l: l, isError: true}
}

// Printf 实现 kafka.Logger
func (a *ZapLoggerAdapter) Printf(format string, args ...interface{}) {
	if a == nil || a.l == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if a.isError {
		a.l.Error(msg, zap.String("component", "kafka"))
		return
	}
	a.l.Debug(msg, zap.String("component", "kafka"))
}
