package server

import (
	"context"
	"net/http"

	"CommunityBoard/apps/connect/internal/handler"
	"CommunityBoard/config"
	"CommunityBoard/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server connect 服务的 HTTP 入口
type Server struct {
	httpServer *http.Server
}

// New 构建路由：/health 探针，/metrics 指标，/ws 接入
func New(cfg config.ConnectConfig, wsHandler *handler.WSHandler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           NewEngine(wsHandler),
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
		},
	}
}

// NewEngine 构建 gin 路由
func NewEngine(wsHandler *handler.WSHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(util.TraceLogger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/ws", wsHandler.ServeWS)
	return r
}

// Start 启动监听，优雅关闭时返回 http.ErrServerClosed
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown 优雅停机
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
