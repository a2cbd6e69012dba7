// Package daemon wires the database, the session storage and the supervised services.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/rs/zerolog/log"
	"github.com/thejerf/suture/v4"
	"gorm.io/gorm"

	"github.com/headless-tools/headless-tools-cms/internal/analytics"
	"github.com/headless-tools/headless-tools-cms/internal/config"
	"github.com/headless-tools/headless-tools-cms/internal/db"
	"github.com/headless-tools/headless-tools-cms/internal/db/dsn"
	"github.com/headless-tools/headless-tools-cms/internal/logger"
	"github.com/headless-tools/headless-tools-cms/internal/web"
	"github.com/headless-tools/headless-tools-cms/internal/web/session"
)

// SessionTable holds the sessions of the mysql and postgres storages.
const SessionTable = "fiber_sessions"

// ErrConfigNil is returned by New without a config.
var ErrConfigNil = errors.New("config is nil")

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	db         *gorm.DB
	storage    fiber.Storage
	webService *web.Service
	sweeper    *analytics.Sweeper
}

// OpenDB initializes the logger, connects to the configured database and migrates it.
func OpenDB(cfg *config.Config) (*gorm.DB, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}

	if err := logger.Init(cfg.Log); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	conn, err := db.Open(cfg)
	if err != nil {
		return nil, err
	}

	if err = db.Migrate(conn); err != nil {
		return nil, err
	}

	log.Info().Str("engine", cfg.DB.Engine).Msg("database ready")

	return conn, nil
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) (*Daemon, error) {
	conn, err := OpenDB(cfg)
	if err != nil {
		return nil, err
	}

	if err = seed(cfg, conn); err != nil {
		return nil, err
	}

	storage := newSessionStorage(cfg, conn)
	session.Init(storage)

	d := &Daemon{
		cfg:        cfg,
		db:         conn,
		storage:    storage,
		webService: web.New(cfg, conn),
	}

	if cfg.Analytics.Enabled {
		d.sweeper = analytics.NewSweeper(conn, cfg.Analytics.RetentionDays, cfg.Analytics.SweepInterval)
	}

	return d, nil
}

// newSessionStorage picks the session storage of the database engine. SQLite keeps
// its sessions in a gorm table, there is no fiber storage for it.
func newSessionStorage(cfg *config.Config, conn *gorm.DB) fiber.Storage {
	switch cfg.DB.Engine {
	case config.DBEngineMySQL:
		return sessionmysql.New(sessionmysql.Config{
			ConnectionURI: dsn.MySQL(&cfg.DB),
			Table:         SessionTable,
		})
	case config.DBEnginePostgres:
		return sessionpostgres.New(sessionpostgres.Config{
			ConnectionURI: dsn.Postgres(&cfg.DB),
			Table:         SessionTable,
		})
	default:
		return session.NewGormStorage(conn, session.DefaultGCInterval)
	}
}

// Start runs the supervised services until ctx is cancelled or SIGINT/SIGTERM arrives.
func (d *Daemon) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sup := suture.New("headless-tools-cms", suture.Spec{
		EventHook:      eventHook,
		FailureBackoff: 15 * time.Second, //nolint:mnd
		Timeout:        time.Duration(d.cfg.Webserver.ShutDownTime+15) * time.Second, //nolint:mnd
	})

	sup.Add(d.webService)

	if d.sweeper != nil {
		sup.Add(d.sweeper)
	}

	log.Info().Str("version", d.cfg.Version).Str("environment", d.cfg.Environment).Msg("starting services")

	err := sup.Serve(ctx)

	log.Info().Msg("shutdown request")

	if cerr := d.storage.Close(); cerr != nil {
		log.Error().Err(cerr).Msg("closing session storage")
	}

	if sqlDB, derr := d.db.DB(); derr == nil {
		_ = sqlDB.Close()
	}

	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}

// eventHook logs the supervisor events through zerolog.
func eventHook(e suture.Event) {
	switch e.Type() {
	case suture.EventTypeServicePanic, suture.EventTypeServiceTerminate:
		log.Error().Fields(e.Map()).Msg(e.String())
	case suture.EventTypeBackoff:
		log.Warn().Fields(e.Map()).Msg(e.String())
	default:
		log.Info().Fields(e.Map()).Msg(e.String())
	}
}
