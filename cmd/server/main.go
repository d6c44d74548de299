package main

import (
	"fmt"
	"os"
	"time"

	"worklog_go/internal/config"
	"worklog_go/pkg/log"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "worklog",
	Short: "任务与工作日志管理服务",
	// 不带子命令时直接启动 HTTP 服务
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "配置文件路径")
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// bootstrap 加载配置并初始化日志，所有子命令共用。
func bootstrap() config.Config {
	config.Init(configPath)
	cfg := config.Conf

	log.InitWithRotation(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath, log.Rotation{
		MaxSizeMB:  cfg.Log.Maxsize,
		MaxBackups: cfg.Log.Maxbackups,
		MaxAgeDays: cfg.Log.Maxage,
		Compress:   cfg.Log.Compress,
	})
	return cfg
}

func jwtDurations(cfg config.JWTConfig) (time.Duration, time.Duration) {
	access := time.Duration(cfg.AccessTokenExpireHours) * time.Hour
	refresh := time.Duration(cfg.RefreshTokenExpireDays) * 24 * time.Hour
	return access, refresh
}
