package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"openmind/internal/config"
	"openmind/internal/handler"
	"openmind/internal/middleware"
	"openmind/internal/repository"
	"openmind/internal/service"
	"openmind/internal/webhook"
	"openmind/pkg/database"
	"openmind/pkg/log"
	"openmind/pkg/token"
)

func main() {
	config.Init("configs/config.yaml")
	cfg := config.Conf

	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()

	log.Info("Server started")

	database.InitMySQL(cfg.Database.MySQL.DSN)
	if err := database.RunMigrate(); err != nil {
		log.Fatal("Failed to run migrations", err)
		return
	}
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)

	jwtManager := token.NewJWTManager(
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.AccessTokenExpireHours)*time.Hour,
		time.Duration(cfg.JWT.RefreshTokenExpireDays)*24*time.Hour,
	)
	hook := webhook.NewClient(cfg.Webhook)

	// 仓储层：读走 MySQL，意见的写入全部由外部 Webhook 承接
	opinionRepo := repository.NewOpinionRepository(database.DB)
	lookupRepo := repository.NewLookupRepository(database.DB)
	userRepo := repository.NewUserRepository(database.DB)
	historyRepo := repository.NewHistoryRepository(database.DB)

	refreshInterval := time.Duration(cfg.Stats.RefreshIntervalSecond) * time.Second

	authService := service.NewAuthService(hook, userRepo, database.RDB, jwtManager)
	opinionService := service.NewOpinionService(opinionRepo, lookupRepo, userRepo, historyRepo, hook)
	exportService := service.NewExportService()
	userService := service.NewUserService(hook)
	statsService := service.NewStatsService(
		opinionRepo, lookupRepo, userRepo, database.RDB,
		cfg.Stats.TotalEmployeePopulation, cfg.Stats.RecentActivityLimit,
		2*refreshInterval,
	)

	authHandler := handler.NewAuthHandler(authService)
	opinionHandler := handler.NewOpinionHandler(opinionService)
	adminHandler := handler.NewAdminHandler(opinionService, exportService, userService)
	dashboardHandler := handler.NewDashboardHandler(statsService)

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "ok"})
	})

	// 公开路由：登录和注册
	r.POST("/api/auth/login", authHandler.Login)
	r.POST("/api/auth/register", authHandler.Register)

	// 登录用户路由
	authorized := r.Group("/api", middleware.AuthMiddleware(jwtManager))
	{
		authorized.POST("/auth/logout", authHandler.Logout)
		authorized.GET("/profile", authHandler.Profile)
		authorized.GET("/opinions", opinionHandler.List)
		authorized.GET("/opinions/:id", opinionHandler.Detail)
		authorized.POST("/opinions", opinionHandler.Submit)
	}

	// 管理员路由：两层中间件，先认证再查角色
	admin := r.Group("/api/admin", middleware.AuthMiddleware(jwtManager), middleware.AdminAuthMiddleware())
	{
		admin.GET("/dashboard", dashboardHandler.Stats)
		admin.GET("/dashboard/ws", dashboardHandler.Live)
		admin.GET("/opinions/search", adminHandler.Search)
		admin.PUT("/opinions/:id", adminHandler.Update)
		admin.GET("/opinions/export", adminHandler.Export)
		admin.GET("/users", adminHandler.Users)
	}

	// 后台刷新循环：周期重算仪表盘快照并推送给 WebSocket 订阅者
	refreshCtx, stopRefresher := context.WithCancel(context.Background())
	go statsService.Run(refreshCtx, refreshInterval)

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	stopRefresher()

	// 设置一个5秒的超时上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 关闭 HTTP 服务器
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}

	log.Info("服务已优雅关闭")
}
