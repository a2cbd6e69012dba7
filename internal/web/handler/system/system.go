// Package system provides the index, health, system info and stats endpoints.
package system

import (
	"runtime"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/headless-tools/headless-tools-cms/internal/config"
	database "github.com/headless-tools/headless-tools-cms/internal/db"
	eventstore "github.com/headless-tools/headless-tools-cms/internal/db/controller/analytics"
	"github.com/headless-tools/headless-tools-cms/internal/db/controller/media"
	"github.com/headless-tools/headless-tools-cms/internal/db/controller/tool"
	"github.com/headless-tools/headless-tools-cms/internal/db/controller/user"
	"github.com/headless-tools/headless-tools-cms/internal/web/handler"
)

const (
	// InfoPath answers the static system description.
	InfoPath = handler.APIPath + "/system/info"
	// StatsPath answers the document counts.
	StatsPath = handler.APIPath + "/system/stats"
	// DocsPath answers the OpenAPI document.
	DocsPath = handler.RootPath + "api-docs"

	statusEnabled  = "enabled"
	statusDisabled = "disabled"
)

// Collections served by the API.
var Collections = []string{"users", "tools", "media", "analytics"} //nolint:gochecknoglobals

// Service is the system handler service.
type Service struct {
	cfg     *config.Config
	db      *gorm.DB
	started time.Time

	// Alive reports false while the server drains before shutdown. Nil means always alive.
	Alive func() bool
}

// Handler is the exported instance.
var Handler = Service{} //nolint:gochecknoglobals

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.started = time.Now()

	app.Get(handler.RootPath, s.Index)
	app.Get(cfg.Webserver.HealthURI, s.Health)
	app.Get(InfoPath, s.Info)
	app.Get(StatsPath, s.Stats)
	app.Get(DocsPath, s.Docs)
}

func (s *Service) uptime() float64 {
	return time.Since(s.started).Seconds()
}

func enabled(on bool) string {
	if on {
		return statusEnabled
	}

	return statusDisabled
}

// Index describes the API and its entry points.
func (s *Service) Index(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"name":        s.cfg.Title,
		"version":     s.cfg.Version,
		"environment": s.cfg.Environment,
		"frontend":    s.cfg.Webserver.FrontendURL,
		"endpoints": fiber.Map{
			"health":    s.cfg.Webserver.HealthURI,
			"docs":      DocsPath,
			"metrics":   "/metrics",
			"users":     handler.APIPath + "/users",
			"tools":     handler.APIPath + "/tools",
			"media":     handler.APIPath + "/media",
			"analytics": handler.APIPath + "/analytics",
			"settings":  handler.APIPath + "/globals/settings",
			"tracking":  "/analytics/track",
			"system":    fiber.Map{"info": InfoPath, "stats": StatsPath},
		},
	})
}

// Health reports the state of the server and its database. It answers 503 while the database
// is unreachable or the server is draining.
func (s *Service) Health(c *fiber.Ctx) error {
	status, code, dbState := "healthy", fiber.StatusOK, "connected"

	if err := database.Ping(s.db); err != nil {
		log.Error().Err(err).Msg("health check: database ping failed")

		status, code, dbState = "unhealthy", fiber.StatusServiceUnavailable, "disconnected"
	}

	if s.Alive != nil && !s.Alive() {
		status, code = "shutting down", fiber.StatusServiceUnavailable
	}

	a := s.cfg.Analytics

	return c.Status(code).JSON(fiber.Map{
		"status":      status,
		"timestamp":   time.Now().UTC(),
		"uptime":      s.uptime(),
		"version":     s.cfg.Version,
		"environment": s.cfg.Environment,
		"database":    dbState,
		"services": fiber.Map{
			"analytics": enabled(a.Enabled),
			"realtime":  enabled(a.Enabled && a.RealTimeEnabled),
			"retention": enabled(a.Enabled && a.RetentionDays > 0),
			"apiDocs":   statusEnabled,
		},
	})
}

// Info describes the running system.
func (s *Service) Info(c *fiber.Ctx) error {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return c.JSON(fiber.Map{
		"name":        s.cfg.Title,
		"version":     s.cfg.Version,
		"environment": s.cfg.Environment,
		"collections": Collections,
		"globals":     []string{"settings"},
		"database":    s.cfg.DB.Engine,
		"runtime": fiber.Map{
			"go":         runtime.Version(),
			"os":         runtime.GOOS,
			"arch":       runtime.GOARCH,
			"goroutines": runtime.NumGoroutine(),
			"heapAlloc":  mem.HeapAlloc,
		},
		"startedAt": s.started.UTC(),
		"uptime":    s.uptime(),
	})
}

// Stats counts the documents of every collection. A failing count is reported as 0.
func (s *Service) Stats(c *fiber.Ctx) error {
	counters := map[string]func() (int64, error){
		"users": func() (int64, error) { return user.Count(s.db) },
		"tools": func() (int64, error) { return tool.Count(s.db) },
		"media": func() (int64, error) { return media.Count(s.db) },
		"analytics": func() (int64, error) {
			return eventstore.Count(c.UserContext(), s.db, eventstore.Query{})
		},
	}

	var (
		collections = make(map[string]int64, len(counters))
		total       int64
		health      = "good"
	)

	for _, name := range Collections {
		n, err := counters[name]()
		if err != nil {
			log.Error().Err(err).Str("collection", name).Msg("failed to count documents")

			n, health = 0, "degraded"
		}

		collections[name] = n
		total += n
	}

	return c.JSON(fiber.Map{
		"collections":    collections,
		"totalDocuments": total,
		"systemHealth":   health,
	})
}
