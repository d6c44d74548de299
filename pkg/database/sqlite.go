package database

import (
	"fmt"

	"worklog_go/pkg/log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// OpenSQLite 打开一个 sqlite 库。name 为空时使用共享内存库。
// 内存库只允许一个连接，保证所有语句看到同一份数据。
func OpenSQLite(name string) (*gorm.DB, error) {
	if name == "" {
		name = "worklog"
	}
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: newGormLogger()})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// InitSQLite 初始化 mock 模式使用的内存库：建表并写入演示数据。
func InitSQLite() *gorm.DB {
	db, err := OpenSQLite("")
	if err != nil {
		log.Fatal("Failed to open sqlite", err)
	}
	if err := RunMigrate(db); err != nil {
		log.Fatal("Failed to migrate sqlite", err)
	}
	if err := SeedDemo(db); err != nil {
		log.Fatal("Failed to seed demo data", err)
	}
	DB = db
	log.Info("Mock mode: in-memory sqlite initialized")
	return db
}
