// Package db opens the gorm connection for the configured engine.
package db

import (
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/headless-tools/headless-tools-cms/internal/config"
	"github.com/headless-tools/headless-tools-cms/internal/db/dsn"
	"github.com/headless-tools/headless-tools-cms/internal/db/models"
	gormlog "github.com/headless-tools/headless-tools-cms/internal/logger/adapter/gorm"
)

// ErrUnknownEngine is returned for an engine without a gorm driver.
var ErrUnknownEngine = errors.New("unknown database engine")

// Dialector returns the gorm dialector of the configured engine.
func Dialector(cfg *config.DB) (gorm.Dialector, error) {
	switch cfg.Engine {
	case config.DBEngineMySQL:
		return mysql.Open(dsn.MySQL(cfg)), nil
	case config.DBEnginePostgres:
		return postgres.Open(dsn.Postgres(cfg)), nil
	case config.DBEngineSQLite, "":
		return sqlite.Open(dsn.SQLite(cfg)), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEngine, cfg.Engine)
	}
}

// Open connects to the database. Queries are logged through zerolog.
func Open(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := Dialector(&cfg.DB)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlog.New(cfg.Log.SlowQueryThreshold),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.DB.Engine, err)
	}

	if cfg.DB.Engine == config.DBEngineSQLite {
		// sqlite allows a single writer
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("sqlite pool: %w", err)
		}

		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

// Migrate creates or updates all tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	return nil
}

// Ping checks the connection.
func Ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Ping()
}
