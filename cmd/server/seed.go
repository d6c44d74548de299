package main

import (
	"context"

	"worklog_go/pkg/database"
	"worklog_go/pkg/log"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "写入演示组织、账号、任务和日志",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg := bootstrap()
		defer log.Sync()

		if cfg.MockMode {
			log.Info("Mock mode seeds on startup, nothing to do")
			return nil
		}
		db := database.InitMySQL(cfg.Database.MySQL.DataSourceName(), database.PoolOptions{})
		if err := database.RunSQLMigrations(context.Background(), db); err != nil {
			return err
		}
		return database.SeedDemo(db)
	},
}
