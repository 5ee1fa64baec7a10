package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"CommunityBoard/consts"
	"CommunityBoard/pkg/ctxmeta"
	"CommunityBoard/pkg/logger"
	"CommunityBoard/pkg/result"

	"github.com/gin-gonic/gin"
)

// GinLogger 请求日志。只记录服务端错误(5xx)和慢请求，正常请求只打 Debug
func GinLogger(slowThreshold time.Duration) gin.HandlerFunc {
	if slowThreshold <= 0 {
		slowThreshold = 2 * time.Second
	}
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		ctx := ctxmeta.FromGin(c)
		cost := time.Since(start)
		status := c.Writer.Status()

		if status >= http.StatusInternalServerError || cost > slowThreshold {
			logger.Warn(ctx, "慢请求或服务端错误",
				logger.Int("status", status),
				logger.String("method", c.Request.Method),
				logger.String("path", path),
				logger.String("query", query),
				logger.String("ip", ClientIPFromGinContext(c)),
				logger.String("user-agent", c.Request.UserAgent()),
				logger.String("errors", c.Errors.ByType(gin.ErrorTypePrivate).String()),
				logger.Duration("cost", cost),
			)
			return
		}
		logger.Debug(ctx, "请求完成",
			logger.Int("status", status),
			logger.String("method", c.Request.Method),
			logger.String("path", path),
			logger.Duration("cost", cost),
		)
	}
}

// Recovery 捕获 panic，返回统一的内部错误响应
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error(ctxmeta.FromGin(c), "请求处理 panic",
					logger.Any("panic", r),
					logger.String("path", c.Request.URL.Path),
					logger.String("stack", string(debug.Stack())),
				)
				result.Abort(c, http.StatusInternalServerError, consts.CodeInternalError)
			}
		}()
		c.Next()
	}
}
