package main

import (
	"context"

	"worklog_go/pkg/database"
	"worklog_go/pkg/log"

	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "执行内嵌的 SQL 迁移",
		RunE:  runMigration,
	}
	migrateRollback bool
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "回滚最近一个迁移版本")
}

func runMigration(_ *cobra.Command, _ []string) error {
	cfg := bootstrap()
	defer log.Sync()

	if cfg.MockMode {
		log.Info("Mock mode uses in-memory sqlite, nothing to migrate")
		return nil
	}

	db := database.InitMySQL(cfg.Database.MySQL.DataSourceName(), database.PoolOptions{})
	ctx := context.Background()
	if migrateRollback {
		return database.RollbackSQLMigration(ctx, db)
	}
	return database.RunSQLMigrations(ctx, db)
}
