package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"worklog_go/internal/config"
	"worklog_go/internal/handler"
	"worklog_go/internal/repository"
	"worklog_go/internal/router"
	"worklog_go/internal/service"
	"worklog_go/pkg/database"
	"worklog_go/pkg/llm"
	"worklog_go/pkg/log"
	"worklog_go/pkg/metrics"
	"worklog_go/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动 HTTP 服务",
	RunE:  runServe,
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg := bootstrap()
	defer log.Sync()

	log.Info("Server starting")

	var (
		db        *gorm.DB
		blacklist token.Blacklist
	)
	if cfg.MockMode {
		db = database.InitSQLite()
		blacklist = token.NewMemoryBlacklist()
	} else {
		db = database.InitMySQL(cfg.Database.MySQL.DataSourceName(), database.PoolOptions{
			MaxIdleConns:    cfg.Database.MySQL.MaxIdleConns,
			MaxOpenConns:    cfg.Database.MySQL.MaxOpenConns,
			ConnMaxLifetime: cfg.Database.MySQL.ConnMaxLifetime,
		})
		if err := database.RunSQLMigrations(context.Background(), db); err != nil {
			log.Fatal("Failed to run migrations", err)
			return err
		}
		rdb := database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
		blacklist = token.NewRedisBlacklist(rdb)
	}

	provider, err := llm.New(llm.Options{
		ArkAPIKey:  cfg.AI.ArkAPIKey,
		ArkBaseURL: cfg.AI.ArkBaseURL,
		ArkModel:   cfg.AI.ArkModel,
		APIURL:     cfg.AI.APIURL,
		APIKey:     cfg.AI.APIKey,
		Model:      cfg.AI.Model,
		Timeout:    cfg.AI.Timeout,
		Local:      cfg.MockMode,
	})
	if err != nil {
		if !errors.Is(err, llm.ErrNotConfigured) {
			return err
		}
		log.Warnf("AI 服务未配置，/ai_analyze 将返回 503")
	} else {
		log.Infof("AI provider: %s", provider.Name())
	}

	var reg *prometheus.Registry
	if cfg.Metrics.Enabled {
		reg = metrics.InitRegistry()
	}

	if cfg.Server.UploadDir != "" {
		if err := os.MkdirAll(cfg.Server.UploadDir, 0755); err != nil {
			log.Fatal("Failed to create upload directory", err)
		}
	}

	accessTTL, refreshTTL := jwtDurations(cfg.JWT)
	jwtManager := token.NewJWTManager(cfg.JWT.Secret, accessTTL, refreshTTL)

	// 仓储层
	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrgRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	logRepo := repository.NewWorkLogRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	aiRepo := repository.NewAIAnalysisRepository(db)

	// 服务层
	userService := service.NewUserService(userRepo, jwtManager, blacklist)
	orgService := service.NewOrgService(orgRepo, userRepo)
	taskService := service.NewTaskService(taskRepo, userRepo, orgRepo, orgService)
	logService := service.NewWorkLogService(logRepo, taskRepo, userRepo)
	statsService := service.NewStatsService(logRepo, taskRepo, orgService)
	aiService := service.NewAIService(provider, aiRepo)
	messageService := service.NewMessageService(messageRepo)
	adminService := service.NewAdminService(userRepo, orgRepo)

	gin.SetMode(cfg.Server.Mode)
	r := router.New(cfg.Server, cfg.Metrics, router.Handlers{
		User:    handler.NewUserHandler(userService),
		Org:     handler.NewOrgHandler(orgService),
		Task:    handler.NewTaskHandler(taskService),
		WorkLog: handler.NewWorkLogHandler(logService, cfg.Server.UploadDir, cfg.Server.UploadURL),
		Stats:   handler.NewStatsHandler(statsService, aiService),
		Message: handler.NewMessageHandler(messageService),
		Admin:   handler.NewAdminHandler(adminService),
	}, router.Deps{
		JWTManager:  jwtManager,
		UserService: userService,
		Registry:    reg,
		HealthCheck: pingDB(db),
	})

	return listenAndServe(cfg.Server, r)
}

func pingDB(db *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

// listenAndServe 启动 HTTP 服务器并在收到 SIGINT/SIGTERM 后优雅停机。
func listenAndServe(cfg config.ServerConfig, h http.Handler) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: h,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		log.Error("HTTP 服务监听失败", err)
		return err
	case <-quit:
	}
	log.Info("接收到停机信号，正在关闭服务...")

	// 设置一个5秒的超时上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("HTTP 服务器关闭失败: %v", err)
		return err
	}

	log.Info("服务已优雅关闭")
	return nil
}
