package db

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"eventsink/internal/config"
)

// Connect opens a GORM database for the postgres or sqlite driver and
// migrates the event and key tables.
func Connect(cfg *config.Config, log *slog.Logger) (*gorm.DB, error) {
	if log == nil {
		log = slog.Default()
	}
	var dialector gorm.Dialector
	gcfg := &gorm.Config{
		Logger: logger.NewSlogLogger(log, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			IgnoreRecordNotFoundError: true,
			LogLevel:                  logger.Warn,
		}),
	}

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		dsn := strings.TrimSpace(cfg.DatabaseURL)
		if dsn == "" {
			return nil, errors.New("APP_DATABASE_URL is required (PostgreSQL URL)")
		}
		if !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
			return nil, errors.New("APP_DATABASE_URL must be a postgres:// or postgresql:// URL")
		}
		dialector = postgres.Open(dsn)
		// PrepareStmt: true prevents the GORM postgres migrator from forcing simple protocol
		// for "SELECT * FROM table LIMIT 1", which would otherwise trigger "insufficient arguments".
		gcfg.PrepareStmt = true
	case config.DriverSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("APP_SQLITE_PATH is required for the sqlite driver")
		}
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, errors.New("store driver " + cfg.StoreDriver + " is not a SQL driver")
	}

	db, err := gorm.Open(dialector, gcfg)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db, cfg.EventTable, cfg.KeyTable); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the event and key tables under the given names.
func Migrate(db *gorm.DB, eventTable, keyTable string) error {
	if err := db.Table(eventTable).AutoMigrate(&Event{}); err != nil {
		return err
	}
	return db.Table(keyTable).AutoMigrate(&APIKey{})
}

// EnsureBootstrapAPIKey makes sure the key from config exists and is bound
// to the configured source. It is a no-op unless both are set.
func EnsureBootstrapAPIKey(db *gorm.DB, cfg *config.Config) error {
	if cfg.BootstrapAPIKey == "" || cfg.BootstrapSrc == "" {
		return nil
	}

	var existing APIKey
	res := db.Table(cfg.KeyTable).Where(map[string]any{"key": cfg.BootstrapAPIKey}).Limit(1).Find(&existing)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		if existing.Src == cfg.BootstrapSrc {
			return nil
		}
		return db.Table(cfg.KeyTable).Where(map[string]any{"key": cfg.BootstrapAPIKey}).
			Update("src", cfg.BootstrapSrc).Error
	}

	return db.Table(cfg.KeyTable).Create(&APIKey{Key: cfg.BootstrapAPIKey, Src: cfg.BootstrapSrc}).Error
}
