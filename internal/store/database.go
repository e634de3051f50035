package store

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pdtgct/music-fingerprint/internal/config"
)

// Open connects to the backend named by cfg.StoreBackend and runs
// AutoMigrate for Page, following the teacher's Initialize/Migrate split
// (database.go) but collapsed into one call since this module has a
// single model.
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		dialector = postgres.Open(cfg.StoreDSN)
	case config.BackendSQLite:
		dialector = sqlite.Open(cfg.StoreDSN)
	default:
		return nil, fmt.Errorf("store: unknown backend %q", cfg.StoreBackend)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("store: failed to connect: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("store: failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Page{}); err != nil {
		return nil, fmt.Errorf("store: failed to migrate: %w", err)
	}

	return db, nil
}
