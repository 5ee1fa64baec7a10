package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"CommunityBoard/apps/connect/internal/handler"
	"CommunityBoard/apps/connect/internal/manager"
	"CommunityBoard/apps/connect/internal/server"
	"CommunityBoard/apps/connect/internal/svc"
	"CommunityBoard/config"
	"CommunityBoard/pkg/ctxmeta"
	"CommunityBoard/pkg/kafka"
	"CommunityBoard/pkg/logger"
	"CommunityBoard/pkg/mail"
	pkgredis "CommunityBoard/pkg/redis"
	"CommunityBoard/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	configPath := flag.String("config", "config.yaml", "配置文件路径")
	flag.Parse()

	// connect 不是从 HTTP 请求起步，先放一个固定 trace_id 串联启动日志
	ctx := ctxmeta.WithTraceID(context.Background(), "connect-main")

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 1) 日志
	l, err := logger.Build(cfg.Logger)
	if err != nil {
		fmt.Printf("初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	logger.ReplaceGlobal(l)
	defer func() {
		_ = l.Sync()
	}()

	util.InitJWT(cfg.JWT)

	// 2) Redis 不可用时仍可启动，只是不记录设备活跃时间
	var redisClient *redis.Client
	if rc, err := pkgredis.Build(cfg.Redis); err != nil {
		logger.Warn(ctx, "Connect 服务 Redis 初始化失败，降级为无 Redis 模式",
			logger.ErrorField("error", err),
		)
	} else {
		redisClient = rc
		pkgredis.ReplaceGlobal(rc)
		defer func() { _ = rc.Close() }()
		logger.Info(ctx, "Connect 服务 Redis 初始化成功", logger.String("addr", cfg.Redis.Addr))
	}

	// 3) 核心依赖
	connManager := manager.NewConnectionManager()
	connectSvc := svc.NewConnectService(redisClient)
	wsHandler := handler.NewWSHandler(connManager, connectSvc, cfg.Connect.AllowedOrigins...)

	mailer := mail.NewSender(cfg.Mail)
	if !mailer.Enabled() {
		logger.Info(ctx, "未配置 SMTP，离线好友申请不发送邮件")
	}
	consumer := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers:        cfg.Kafka.Brokers,
		Topic:          cfg.Kafka.NotificationTopic,
		GroupID:        cfg.Connect.GroupID,
		MinBytes:       cfg.Kafka.ConsumerConfig.MinBytes,
		MaxBytes:       cfg.Kafka.ConsumerConfig.MaxBytes,
		CommitInterval: cfg.Kafka.ConsumerConfig.CommitInterval,
		ErrorLogger:    kafka.NewZapErrorLoggerAdapter(l),
	})
	defer func() { _ = consumer.Close() }()
	eventConsumer := svc.NewEventConsumer(consumer, connManager, connectSvc, mailer)

	bgCtx, stopBackground := context.WithCancel(ctx)
	defer stopBackground()
	go func() {
		if err := eventConsumer.Start(bgCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error(ctx, "通知事件消费者退出", logger.ErrorField("error", err))
		}
	}()

	// 4) HTTP 服务
	gin.SetMode(gin.ReleaseMode)
	srv := server.New(cfg.Connect, wsHandler)
	go func() {
		logger.Info(ctx, "Connect 服务启动中", logger.String("addr", cfg.Connect.Addr))
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "Connect 服务启动失败", logger.ErrorField("error", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// 5) 先停消费与断开连接，再关闭 HTTP 服务
	logger.Info(ctx, "Connect 服务开始优雅停机")
	stopBackground()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	connManager.Shutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Connect 服务优雅停机失败", logger.ErrorField("error", err))
		return
	}
	logger.Info(ctx, "Connect 服务已退出")
}
