package middleware

import (
	"net/http"

	"CommunityBoard/consts"
	"CommunityBoard/pkg/result"

	"github.com/gin-gonic/gin"
)

// BodyLimitMiddleware 限制请求体大小
// Content-Length 已超限时直接拒绝，其余情况由 MaxBytesReader 在读取时截断
func BodyLimitMiddleware(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			result.Abort(c, http.StatusRequestEntityTooLarge, consts.CodeBodyTooLarge)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
