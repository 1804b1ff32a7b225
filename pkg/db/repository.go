// pkg/db/repository.go
package db

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/smith3v/family-medicine-manager/pkg/config"
	"github.com/smith3v/family-medicine-manager/pkg/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const busyTimeoutMillis = 5000

// DB is shared by the command handlers and the reminder poller. SQLite commits
// each statement atomically and the pool holds a single connection, so readers
// never observe a half-written row.
var DB *gorm.DB

func InitDB(cfg config.DatabaseConfig) error {
	path := cfg.Path
	if path == "" {
		path = config.Default().Database.Path
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		logger.Error("failed to create data directory", "path", filepath.Dir(path), "error", err)
		return err
	}

	gdb, err := Open(fileDSN(path), config.AppConfig.Logging.GormLevel)
	if err != nil {
		logger.Error("failed to open database", "path", path, "error", err)
		return err
	}
	if err := Migrate(gdb); err != nil {
		logger.Error("failed to migrate database", "error", err)
		return err
	}

	DB = gdb
	logger.Debug("database ready", "path", path)
	return nil
}

// Open connects to a SQLite DSN with the slog-backed gorm logger.
func Open(dsn string, gormLevel string) (*gorm.DB, error) {
	gormLogger, gormErr := newGormLogger(gormLevel)
	if gormErr != nil {
		logger.Error("invalid gorm log level", "value", gormLevel, "error", gormErr)
	}
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return gdb, nil
}

func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	DB = nil
	return sqlDB.Close()
}

func Migrate(gdb *gorm.DB) error {
	if gdb == nil {
		return nil
	}
	if err := gdb.AutoMigrate(&Medication{}, &Setting{}); err != nil {
		return err
	}
	return seedDefaultSettings(gdb)
}

// seedDefaultSettings inserts the defaults without touching values the user
// has already chosen.
func seedDefaultSettings(gdb *gorm.DB) error {
	defaults := DefaultSettings()
	return gdb.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_name"}},
		DoNothing: true,
	}).Create(&defaults).Error
}

func fileDSN(path string) string {
	return fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on", filepath.ToSlash(path), busyTimeoutMillis)
}
