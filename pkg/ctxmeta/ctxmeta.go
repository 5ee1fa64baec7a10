// Package ctxmeta 统一管理在 context 中透传的请求元数据。
package ctxmeta

import (
	"context"

	"github.com/gin-gonic/gin"
)

type ctxKey string

const (
	keyTraceID  ctxKey = "trace_id"
	keyUserUUID ctxKey = "user_uuid"
	keyDeviceID ctxKey = "device_id"
	keyClientIP ctxKey = "client_ip"
)

// Gin 上下文中使用的键名，与中间件 c.Set 保持一致。
const (
	GinTraceID  = "trace_id"
	GinUserUUID = "user_uuid"
	GinDeviceID = "device_id"
	GinClientIP = "client_ip"
)

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, keyTraceID, traceID)
}

func WithUserUUID(ctx context.Context, userUUID string) context.Context {
	return context.WithValue(ctx, keyUserUUID, userUUID)
}

func WithDeviceID(ctx context.Context, deviceID string) context.Context {
	return context.WithValue(ctx, keyDeviceID, deviceID)
}

func WithClientIP(ctx context.Context, clientIP string) context.Context {
	return context.WithValue(ctx, keyClientIP, clientIP)
}

func TraceID(ctx context.Context) string  { return stringValue(ctx, keyTraceID) }
func UserUUID(ctx context.Context) string { return stringValue(ctx, keyUserUUID) }
func DeviceID(ctx context.Context) string { return stringValue(ctx, keyDeviceID) }
func ClientIP(ctx context.Context) string { return stringValue(ctx, keyClientIP) }

// TraceIDFromGin 读取 TraceLogger 中间件写入的 trace_id
func TraceIDFromGin(c *gin.Context) string {
	return c.GetString(GinTraceID)
}

// FromGin 把 gin.Context 中的元数据复制到 request context，供 service 层使用。
func FromGin(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	if v := c.GetString(GinTraceID); v != "" {
		ctx = WithTraceID(ctx, v)
	}
	if v := c.GetString(GinUserUUID); v != "" {
		ctx = WithUserUUID(ctx, v)
	}
	if v := c.GetString(GinDeviceID); v != "" {
		ctx = WithDeviceID(ctx, v)
	}
	if v := c.GetString(GinClientIP); v != "" {
		ctx = WithClientIP(ctx, v)
	}
	return ctx
}

// Detach 只保留元数据，丢弃父 ctx 的取消信号与超时。
// 用于请求结束后仍需继续执行的后台任务。
func Detach(parent context.Context) context.Context {
	ctx := context.Background()
	if parent == nil {
		return ctx
	}
	if v := TraceID(parent); v != "" {
		ctx = WithTraceID(ctx, v)
	}
	if v := UserUUID(parent); v != "" {
		ctx = WithUserUUID(ctx, v)
	}
	if v := DeviceID(parent); v != "" {
		ctx = WithDeviceID(ctx, v)
	}
	if v := ClientIP(parent); v != "" {
		ctx = WithClientIP(ctx, v)
	}
	return ctx
}

func stringValue(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}
