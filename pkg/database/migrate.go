package database

import (
	"context"
	"embed"

	"worklog_go/pkg/log"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

func prepareGoose() error {
	goose.SetBaseFS(migrationsFS)
	goose.SetTableName("schema_migrations")
	return goose.SetDialect("mysql")
}

// RunSQLMigrations 执行 MySQL 版本化迁移（goose up）。
func RunSQLMigrations(ctx context.Context, db *gorm.DB) error {
	if err := prepareGoose(); err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	log.Info("Running SQL migrations...")
	if err := goose.UpContext(ctx, sqlDB, migrationsDir); err != nil {
		log.Errorf("goose up: %v", err)
		return err
	}
	log.Info("SQL migrations completed successfully")
	return nil
}

// RollbackSQLMigration 回滚最近一个版本（goose down）。
func RollbackSQLMigration(ctx context.Context, db *gorm.DB) error {
	if err := prepareGoose(); err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return goose.DownContext(ctx, sqlDB, migrationsDir)
}
