package middleware

import (
	"net"
	"strings"

	"CommunityBoard/pkg/ctxmeta"

	"github.com/gin-gonic/gin"
)

const (
	headerXRealIP       = "X-Real-IP"
	headerXForwardedFor = "X-Forwarded-For"
)

// GetClientIP 从 Gin Context 中获取客户端真实 IP
// 优先级：X-Real-IP > X-Forwarded-For > RemoteAddr
func GetClientIP(c *gin.Context) string {
	if ip := strings.TrimSpace(c.GetHeader(headerXRealIP)); ip != "" && net.ParseIP(ip) != nil {
		return ip
	}
	if xff := c.GetHeader(headerXForwardedFor); xff != "" {
		// 取第一个 IP（原始客户端）
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); net.ParseIP(ip) != nil {
			return ip
		}
	}
	return c.ClientIP()
}

// ClientIPMiddleware 注入客户端 IP
func ClientIPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ctxmeta.GinClientIP, GetClientIP(c))
		c.Next()
	}
}

// ClientIPFromGinContext 从 Gin Context 获取 IP
func ClientIPFromGinContext(c *gin.Context) string {
	if ip := c.GetString(ctxmeta.GinClientIP); ip != "" {
		return ip
	}
	return c.ClientIP()
}
