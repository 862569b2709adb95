package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pre-exam/config"
	"pre-exam/internal/handler"
	"pre-exam/internal/model"
	"pre-exam/internal/repository"
	"pre-exam/internal/service"
	dbPkg "pre-exam/pkg/db"
	"pre-exam/pkg/jwt"
	"pre-exam/pkg/logger"
	"pre-exam/pkg/pubsub"
	"pre-exam/pkg/redis"
	"pre-exam/pkg/websocket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("加载配置失败: " + err.Error())
	}

	// 2. 初始化日志系统
	log, err := logger.InitLogger(cfg.Log)
	if err != nil {
		panic("初始化日志失败: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("=== PreExam 社交服务启动 ===")
	log.Info("服务器配置信息",
		zap.String("port", cfg.Server.Port),
		zap.String("database_driver", cfg.Database.Driver),
		zap.String("database_host", cfg.Database.Host),
		zap.String("database_name", cfg.Database.Database),
		zap.Duration("jwt_expire_time", cfg.JWT.ExpireTime),
		zap.String("log_level", cfg.Log.Level),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
		zap.Bool("nats_enabled", cfg.NATS.Enabled),
	)

	// 3. 初始化数据库连接
	orm, err := dbPkg.InitDB(cfg.Database)
	if err != nil {
		log.Fatal("数据库连接失败", zap.Error(err))
	}
	defer func() {
		if err := dbPkg.CloseDB(); err != nil {
			log.Error("关闭数据库连接失败", zap.Error(err))
		}
	}()
	log.Info("数据库连接成功")

	// 3.1 自动迁移表结构
	if err := dbPkg.AutoMigrate(model.Models()...); err != nil {
		log.Fatal("自动迁移失败", zap.Error(err))
	}
	log.Info("自动迁移完成")

	// 3.2 Redis（可选），失败时回退到数据库
	var counter service.UnreadCounter
	if cfg.Redis.Enabled {
		if err := redis.InitRedis(cfg.Redis); err != nil {
			log.Warn("Redis连接失败，在线状态与未读计数回退到数据库", zap.Error(err))
		} else {
			counter = redis.NotificationCounter{}
			defer func() { _ = redis.Close() }()
			log.Info("Redis连接成功")
		}
	}

	// 3.3 推送通道：本地 broker，启用 NATS 时跨实例扇出
	local := pubsub.NewLocalBroker(cfg.WebSocket.SendBuffer)
	var broker pubsub.Broker = local
	if cfg.NATS.Enabled {
		nb, err := pubsub.NewNATSBroker(cfg.NATS, local)
		if err != nil {
			log.Fatal("NATS连接失败", zap.Error(err))
		}
		defer func() { _ = nb.Close() }()
		broker = nb
		log.Info("NATS连接成功", zap.Strings("servers", cfg.NATS.Servers))
	}

	// 3.4 初始化业务服务
	jwtSvc := jwt.NewJWTService(cfg.JWT)
	userRepo := repository.NewUserRepository(orm)
	friendRepo := repository.NewFriendRepository(orm)
	notificationRepo := repository.NewNotificationRepository(orm)

	userSvc := service.NewUserService(userRepo, jwtSvc)
	notificationSvc := service.NewNotificationService(notificationRepo, broker, counter)
	friendSvc := service.NewFriendService(friendRepo, userRepo, notificationSvc)
	socialSvc := service.NewSocialService(friendRepo, userRepo)
	wsHandler := websocket.NewHandler(jwtSvc, broker, userSvc, cfg.WebSocket)

	// 4. 设置Gin模式
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	// 5. 创建Gin路由
	router := gin.New()
	router.Use(logger.RequestLogger())         // 请求日志
	router.Use(logger.ErrorLoggerMiddleware()) // panic 恢复

	// 6. 绑定路由
	routes := &handler.Routes{
		Auth:          jwtSvc.AuthMiddleware(),
		Active:        handler.RequireActive(userSvc),
		Users:         handler.NewUserHandler(userSvc),
		Friends:       handler.NewFriendHandler(friendSvc, socialSvc),
		Notifications: handler.NewNotificationHandler(notificationSvc),
		Health:        handler.NewHealthHandler(local),
		WebSocket:     wsHandler.Serve,
	}
	routes.Register(router)

	// 7. 创建HTTP服务器
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 8. 启动HTTP服务器
	go func() {
		log.Info("HTTP服务器启动", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP服务器启动失败", zap.Error(err))
		}
	}()

	// 9. 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("正在关闭服务器...")

	// 设置关闭超时
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 关闭HTTP服务器
	if err := server.Shutdown(ctx); err != nil {
		log.Error("HTTP服务器关闭失败", zap.Error(err))
	}

	log.Info("服务器已安全关闭")
}
