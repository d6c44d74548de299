// Package database 提供 MySQL/SQLite 连接、迁移与 GORM 实例的初始化。
package database

import (
	"time"

	"worklog_go/internal/model"
	"worklog_go/pkg/log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"moul.io/zapgorm2"
)

// DB 全局 GORM 数据库实例，在 InitMySQL / InitSQLite 成功后可用。
var DB *gorm.DB

// PoolOptions 连接池参数。
type PoolOptions struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// InitMySQL 根据 DSN 连接 MySQL 并初始化全局 DB，失败时调用 log.Fatal 退出进程。
// 每个请求从连接池获取连接，语句结束后归还。
func InitMySQL(dsn string, pool PoolOptions) *gorm.DB {
	var err error
	DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: newGormLogger()})
	if err != nil {
		log.Fatal("Failed to connect to MySQL", err)
	}
	log.Info("Connected to MySQL")

	sqlDB, err := DB.DB()
	if err != nil {
		log.Fatal("Failed to get SQL DB", err)
	}
	if pool.MaxIdleConns <= 0 {
		pool.MaxIdleConns = 10
	}
	if pool.MaxOpenConns <= 0 {
		pool.MaxOpenConns = 100
	}
	if pool.ConnMaxLifetime <= 0 {
		pool.ConnMaxLifetime = time.Hour
	}
	sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)

	log.Info("MySQL initialized successfully")
	return DB
}

// newGormLogger 把 gorm 日志接到 zap；日志未初始化时（如单测）保持静默。
func newGormLogger() gormlogger.Interface {
	zl := log.GetLogger()
	if zl == nil {
		return gormlogger.Default.LogMode(gormlogger.Silent)
	}
	l := zapgorm2.New(zl)
	l.IgnoreRecordNotFoundError = true
	l.SlowThreshold = 200 * time.Millisecond
	return l.LogMode(gormlogger.Warn)
}

// Models 返回需要建表的全部模型，供 AutoMigrate 使用。
func Models() []interface{} {
	return []interface{}{
		&model.Role{},
		&model.Department{},
		&model.Team{},
		&model.User{},
		&model.Task{},
		&model.WorkLog{},
		&model.Message{},
		&model.AIAnalysis{},
	}
}

// RunMigrate 通过 AutoMigrate 建表，用于 mock 模式的 sqlite 库。
// MySQL 使用 RunSQLMigrations 执行版本化迁移。
func RunMigrate(db *gorm.DB) error {
	log.Info("Running migrations...")

	if err := db.AutoMigrate(Models()...); err != nil {
		log.Errorf("Failed to run migrations: %v", err)
		return err
	}

	log.Info("Migrations completed successfully")
	return nil
}
