package router

import (
	"net/http"
	"time"

	"CommunityBoard/apps/board/internal/handler"
	"CommunityBoard/apps/board/internal/middleware"
	"CommunityBoard/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers 路由依赖的处理器
type Handlers struct {
	Article      *handler.ArticleHandler
	Interaction  *handler.InteractionHandler
	Notification *handler.NotificationHandler
	Friend       *handler.FriendHandler
}

// Options 路由级配置
type Options struct {
	RequestTimeout   time.Duration // 普通接口超时
	UploadTimeout    time.Duration // 带附件接口超时
	SlowThreshold    time.Duration // 慢请求日志阈值
	MaxMultipartSize int64         // 带附件接口的请求体上限
	AllowedOrigins   []string      // 为空表示允许任意来源
	Limiter          *middleware.UserLimiter
}

// InitRouter 初始化路由
func InitRouter(h *Handlers, opts Options) *gin.Engine {
	r := gin.New()

	// 恢复中间件
	r.Use(middleware.Recovery())

	// 追踪中间件 (生成 trace_id)
	r.Use(util.TraceLogger())

	// 客户端 IP 中间件
	r.Use(middleware.ClientIPMiddleware())

	// 日志中间件
	r.Use(middleware.GinLogger(opts.SlowThreshold))

	// Prometheus 监控中间件
	r.Use(middleware.MetricsMiddleware())

	// 跨域中间件
	r.Use(middleware.CorsMiddleware(opts.AllowedOrigins...))

	// 健康检查（无需认证）
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Prometheus 指标暴露接口
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware())
	api.Use(middleware.UserRateLimitMiddleware(opts.Limiter))

	// 附件上传接口单独放宽超时与请求体
	upload := api.Group("")
	upload.Use(middleware.TimeoutMiddleware(opts.UploadTimeout))
	upload.Use(middleware.BodyLimitMiddleware(opts.MaxMultipartSize))
	{
		upload.POST("/articles", h.Article.Create)
		upload.PUT("/articles/:id", h.Article.Update)
		upload.POST("/articles/:id/attachments", h.Article.UploadAttachments)
	}

	normal := api.Group("")
	normal.Use(middleware.TimeoutMiddleware(opts.RequestTimeout))
	{
		// 帖子
		articles := normal.Group("/articles")
		{
			articles.GET("/mine", h.Article.ListMine)
			articles.GET("/:id", h.Article.Get)
			articles.DELETE("/:id", h.Article.Delete)
			articles.POST("/:id/edit/finalize", h.Article.FinalizeEdit)
			articles.POST("/:id/edit/cancel", h.Article.CancelEdit)
			articles.POST("/:id/like", h.Interaction.ToggleLike)
			articles.POST("/:id/comments", h.Interaction.AddComment)
		}

		// 通知
		notifications := normal.Group("/notifications")
		{
			notifications.GET("", h.Notification.List)
			notifications.GET("/unread", h.Notification.GetUnread)
			notifications.GET("/unread/count", h.Notification.GetUnreadCount)
			notifications.POST("/read-all", h.Notification.MarkAllAsRead)
			notifications.POST("/:id/read", h.Notification.MarkAsRead)
			notifications.DELETE("/:id", h.Notification.Delete)
		}

		// 好友
		friends := normal.Group("/friends")
		{
			friends.GET("", h.Friend.List)
			friends.POST("/requests", h.Friend.SendRequest)
			friends.POST("/requests/:notificationId/accept", h.Friend.Accept)
			friends.POST("/requests/:notificationId/reject", h.Friend.Reject)
			friends.DELETE("/:uuid", h.Friend.Delete)
		}
	}

	return r
}
