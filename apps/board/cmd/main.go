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

	"CommunityBoard/apps/board/internal/event"
	"CommunityBoard/apps/board/internal/handler"
	"CommunityBoard/apps/board/internal/job"
	"CommunityBoard/apps/board/internal/middleware"
	"CommunityBoard/apps/board/internal/repository"
	"CommunityBoard/apps/board/internal/router"
	"CommunityBoard/apps/board/internal/service"
	"CommunityBoard/apps/board/internal/storage"
	"CommunityBoard/apps/board/mq"
	"CommunityBoard/config"
	"CommunityBoard/model"
	"CommunityBoard/pkg/async"
	"CommunityBoard/pkg/ctxmeta"
	"CommunityBoard/pkg/kafka"
	"CommunityBoard/pkg/logger"
	pkgminio "CommunityBoard/pkg/minio"
	"CommunityBoard/pkg/mysql"
	pkgredis "CommunityBoard/pkg/redis"
	"CommunityBoard/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	configPath := flag.String("config", "config.yaml", "配置文件路径")
	flag.Parse()

	ctx := ctxmeta.WithTraceID(context.Background(), "board-main")

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	l, err := logger.Build(cfg.Logger)
	if err != nil {
		fmt.Printf("初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	logger.ReplaceGlobal(l)
	defer func() {
		// Sync 在 os.Stdout 上可能返回错误，可以忽略
		_ = logger.L().Sync()
	}()

	logger.Info(ctx, "Board 服务初始化中...")

	// 3. 全局组件
	if err := async.Init(cfg.Async); err != nil {
		logger.Fatal(ctx, "初始化协程池失败", logger.ErrorField("error", err))
	}
	defer func() {
		if err := async.Release(); err != nil {
			logger.Warn(ctx, "释放协程池超时", logger.ErrorField("error", err))
		}
	}()
	util.InitJWT(cfg.JWT)
	if err := util.InitSnowflake(cfg.Board.NodeID); err != nil {
		logger.Fatal(ctx, "初始化雪花ID失败", logger.ErrorField("error", err))
	}

	// 4. MySQL
	db, err := mysql.Build(cfg.MySQL)
	if err != nil {
		logger.Fatal(ctx, "初始化 MySQL 失败", logger.ErrorField("error", err))
	}
	mysql.ReplaceGlobal(db)
	defer func() {
		if err := mysql.Close(db); err != nil {
			logger.Error(ctx, "关闭 MySQL 失败", logger.ErrorField("error", err))
		}
	}()
	if err := db.AutoMigrate(model.All()...); err != nil {
		logger.Fatal(ctx, "数据表迁移失败", logger.ErrorField("error", err))
	}
	logger.Info(ctx, "MySQL 初始化成功", logger.String("host", cfg.MySQL.Host))

	// 5. Redis 失败不阻塞启动：缓存直连数据库，限流降级为进程内，去重锁放行
	var redisClient *redis.Client
	if rc, err := pkgredis.Build(cfg.Redis); err != nil {
		logger.Error(ctx, "初始化 Redis 失败，降级运行", logger.ErrorField("error", err))
	} else {
		redisClient = rc
		pkgredis.ReplaceGlobal(rc)
		defer func() { _ = rc.Close() }()
		logger.Info(ctx, "Redis 初始化成功", logger.String("addr", cfg.Redis.Addr))
	}

	// 6. 对象存储，外层包一层熔断
	minioClient, err := pkgminio.Build(cfg.MinIO)
	if err != nil {
		logger.Fatal(ctx, "初始化 MinIO 失败", logger.ErrorField("error", err))
	}
	store := storage.NewBreakerStore(storage.NewMinIOStore(minioClient), "minio", storage.DefaultBreakerSettings())
	logger.Info(ctx, "MinIO 初始化成功", logger.String("bucket", cfg.MinIO.BucketName))

	// 7. Kafka：通知事件与孤儿对象清理
	producerOpts := []kafka.ProducerOption{
		kafka.WithBatchTimeout(cfg.Kafka.ProducerConfig.BatchTimeout),
		kafka.WithWriteTimeout(cfg.Kafka.ProducerConfig.WriteTimeout),
		kafka.WithMaxAttempts(cfg.Kafka.ProducerConfig.MaxAttempts),
		kafka.WithLogger(kafka.NewZapErrorLoggerAdapter(l)),
	}
	notifyProducer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.NotificationTopic, producerOpts...)
	defer func() { _ = notifyProducer.Close() }()
	orphanProducer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.OrphanBlobTopic, producerOpts...)
	defer func() { _ = orphanProducer.Close() }()

	publisher := event.NewKafkaPublisher(notifyProducer)
	orphanQueue := mq.NewOrphanQueue(orphanProducer)
	orphanReader := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers:        cfg.Kafka.Brokers,
		Topic:          cfg.Kafka.OrphanBlobTopic,
		GroupID:        cfg.Kafka.ConsumerConfig.GroupID,
		MinBytes:       cfg.Kafka.ConsumerConfig.MinBytes,
		MaxBytes:       cfg.Kafka.ConsumerConfig.MaxBytes,
		CommitInterval: cfg.Kafka.ConsumerConfig.CommitInterval,
		ErrorLogger:    kafka.NewZapErrorLoggerAdapter(l),
	})
	defer func() { _ = orphanReader.Close() }()
	orphanConsumer := mq.NewOrphanConsumer(orphanReader, store, orphanQueue)

	// 8. Repository / Service（依赖注入）
	tx := repository.NewTransactor(db)
	userRepo := repository.NewUserRepository(db, redisClient)
	articleRepo := repository.NewArticleRepository(db, redisClient)
	attachRepo := repository.NewAttachmentRepository(db)
	notifyRepo := repository.NewNotificationRepository(db, redisClient)
	friendRepo := repository.NewFriendRepository(db)

	attachments := service.NewAttachmentManager(attachRepo, store, orphanQueue)
	attachments.SetOrphanMaxRetries(cfg.Board.OrphanMaxRetries)

	articleService := service.NewArticleService(tx, articleRepo, attachments)
	notificationService := service.NewNotificationService(notifyRepo, articleRepo, userRepo, publisher)
	friendService := service.NewFriendService(tx, friendRepo, notifyRepo, userRepo, notificationService)
	commentService := service.NewCommentService(articleRepo, notificationService)
	likeService := service.NewLikeService(tx, articleRepo, notificationService)
	logger.Info(ctx, "服务层初始化完成")

	// 9. 后台任务
	bgCtx, stopBackground := context.WithCancel(ctx)
	defer stopBackground()

	sweeper := job.NewTempSweeper(tx, attachRepo, attachments, redisClient,
		cfg.Board.TemporaryTTL, cfg.Board.SweepInterval, cfg.Board.SweepBatch)
	go sweeper.Run(bgCtx)

	go func() {
		if err := orphanConsumer.Start(bgCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error(ctx, "孤儿对象消费者退出", logger.ErrorField("error", err))
		}
	}()

	// 10. 路由
	gin.SetMode(gin.ReleaseMode)
	r := router.InitRouter(&router.Handlers{
		Article:      handler.NewArticleHandler(articleService, cfg.MinIO.MaxFileSize),
		Interaction:  handler.NewInteractionHandler(commentService, likeService),
		Notification: handler.NewNotificationHandler(notificationService),
		Friend:       handler.NewFriendHandler(friendService),
	}, router.Options{
		RequestTimeout:   cfg.Board.RequestTimeout,
		UploadTimeout:    cfg.Board.UploadTimeout,
		SlowThreshold:    cfg.Board.SlowRequest,
		MaxMultipartSize: cfg.Board.MaxMultipartSize,
		AllowedOrigins:   cfg.Board.AllowedOrigins,
		Limiter:          middleware.NewUserLimiter(cfg.Board.RateLimit, cfg.Board.RateBurst, redisClient),
	})
	r.MaxMultipartMemory = 8 << 20

	srv := &http.Server{
		Addr:              cfg.Board.Addr,
		Handler:           r,
		ReadHeaderTimeout: cfg.Board.ReadHeaderTimeout,
	}

	go func() {
		logger.Info(ctx, "Board 服务启动", logger.String("addr", cfg.Board.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(ctx, "HTTP 服务启动失败", logger.ErrorField("error", err))
		}
	}()

	// 11. 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx, "正在关闭 Board 服务...")

	stopBackground()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "HTTP 服务关闭失败", logger.ErrorField("error", err))
	}
	logger.Info(ctx, "Board 服务已关闭")
}
