package util

import (
	"CommunityBoard/pkg/ctxmeta"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const HeaderXRequestID = "X-Request-ID"

// TraceLogger 生成或透传 trace_id，写入 gin 上下文与响应头
func TraceLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceId := c.GetHeader(HeaderXRequestID)
		if traceId == "" {
			traceId = uuid.New().String()
		}
		c.Set(ctxmeta.GinTraceID, traceId)
		c.Header(HeaderXRequestID, traceId)
		c.Next()
	}
}

// NewUUID 生成新的 UUID
func NewUUID() string {
	return uuid.New().String()
}
