// Package config 负责加载和管理应用程序的配置。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// 全局配置变量，存储从配置文件加载的所有设置。
var Conf Config

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	AI       AIConfig       `mapstructure:"ai"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	// MockMode 为 true 时使用内存 sqlite + 本地 AI，不依赖 MySQL/Redis
	MockMode bool `mapstructure:"mock_mode"`
}

// ServerConfig 存储服务器相关的配置。
type ServerConfig struct {
	Port        string   `mapstructure:"port"`
	Mode        string   `mapstructure:"mode"`
	APIPrefix   string   `mapstructure:"api_prefix"`
	UploadDir   string   `mapstructure:"upload_dir"`
	UploadURL   string   `mapstructure:"upload_url"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
	Maxsize    int    `mapstructure:"maxsize"`
	Maxbackups int    `mapstructure:"maxbackups"`
	Maxage     int    `mapstructure:"maxage"`
	Compress   bool   `mapstructure:"compress"`
}

type DatabaseConfig struct {
	MySQL MySQLConfig `mapstructure:"mysql"`
	Redis RedisConfig `mapstructure:"redis"`
}

// MySQLConfig 既支持完整 DSN，也支持按字段拼装（兼容 DB_HOST 等环境变量）。
type MySQLConfig struct {
	DSN             string        `mapstructure:"dsn"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	Charset         string        `mapstructure:"charset"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret                 string `mapstructure:"secret"`
	AccessTokenExpireHours int    `mapstructure:"access_token_expire_hours"`
	RefreshTokenExpireDays int    `mapstructure:"refresh_token_expire_days"`
}

// AIConfig 对应两类外部模型调用方式：Ark（OpenAI 兼容 SDK）与通用 HTTP 接口。
type AIConfig struct {
	ArkAPIKey  string        `mapstructure:"ark_api_key"`
	ArkBaseURL string        `mapstructure:"ark_base_url"`
	ArkModel   string        `mapstructure:"ark_model"`
	APIURL     string        `mapstructure:"api_url"`
	APIKey     string        `mapstructure:"api_key"`
	Model      string        `mapstructure:"model"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// 旧部署沿用的环境变量名 -> 配置键
var envBindings = map[string]string{
	"database.mysql.host":     "DB_HOST",
	"database.mysql.port":     "DB_PORT",
	"database.mysql.user":     "DB_USER",
	"database.mysql.password": "DB_PASSWORD",
	"database.mysql.name":     "DB_NAME",
	"database.mysql.charset":  "DB_CHARSET",
	"database.redis.addr":     "REDIS_ADDR",
	"jwt.secret":              "JWT_SECRET",
	"ai.ark_api_key":          "ARK_API_KEY",
	"ai.ark_base_url":         "ARK_BASE_URL",
	"ai.ark_model":            "ARK_MODEL",
	"ai.api_url":              "AI_API_URL",
	"ai.api_key":              "AI_API_KEY",
	"ai.model":                "AI_MODEL",
	"mock_mode":               "MOCK_MODE",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "5000")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.api_prefix", "/api")
	v.SetDefault("server.upload_dir", "uploads")
	v.SetDefault("server.upload_url", "/uploads")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.maxsize", 100)
	v.SetDefault("log.maxbackups", 7)
	v.SetDefault("log.maxage", 30)
	v.SetDefault("database.mysql.host", "localhost")
	v.SetDefault("database.mysql.port", 3306)
	v.SetDefault("database.mysql.user", "root")
	v.SetDefault("database.mysql.name", "task_management_system")
	v.SetDefault("database.mysql.charset", "utf8mb4")
	v.SetDefault("database.mysql.max_idle_conns", 10)
	v.SetDefault("database.mysql.max_open_conns", 100)
	v.SetDefault("database.mysql.conn_max_lifetime", time.Hour)
	v.SetDefault("jwt.access_token_expire_hours", 24)
	v.SetDefault("jwt.refresh_token_expire_days", 7)
	v.SetDefault("ai.ark_base_url", "https://ark.cn-beijing.volces.com/api/v3")
	v.SetDefault("ai.ark_model", "deepseek-v3-1-terminus")
	v.SetDefault("ai.timeout", 15*time.Second)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// Init 从指定路径读取 YAML 配置文件，叠加环境变量后解析到 Conf。
// 配置文件不存在时只使用默认值和环境变量。
func Init(configPath string) {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}
	Conf = *cfg
}

// Load 与 Init 相同，但返回结果而不是写全局变量，便于测试。
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// DataSourceName 返回 MySQL DSN：优先使用显式 dsn，否则按字段拼装。
func (c MySQLConfig) DataSourceName() string {
	if c.DSN != "" {
		return c.DSN
	}
	params := url.Values{}
	params.Set("charset", c.Charset)
	params.Set("parseTime", "true")
	params.Set("loc", "Local")
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s", c.User, c.Password, c.Host, c.Port, c.Name, params.Encode())
}
