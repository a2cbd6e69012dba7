package web

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/headless-tools/headless-tools-cms/internal/auth"
	"github.com/headless-tools/headless-tools-cms/internal/config"
	accesslog "github.com/headless-tools/headless-tools-cms/internal/logger/adapter/fiber"
	"github.com/headless-tools/headless-tools-cms/internal/web/handler"
	"github.com/headless-tools/headless-tools-cms/internal/web/handler/analytics"
	"github.com/headless-tools/headless-tools-cms/internal/web/handler/login"
	"github.com/headless-tools/headless-tools-cms/internal/web/handler/logout"
	"github.com/headless-tools/headless-tools-cms/internal/web/handler/media"
	"github.com/headless-tools/headless-tools-cms/internal/web/handler/settings"
	"github.com/headless-tools/headless-tools-cms/internal/web/handler/system"
	"github.com/headless-tools/headless-tools-cms/internal/web/handler/tool"
	"github.com/headless-tools/headless-tools-cms/internal/web/handler/user"
	authmw "github.com/headless-tools/headless-tools-cms/internal/web/middleware/auth"
)

// MetricsPath serves the prometheus metrics.
const MetricsPath = "/metrics"

// ErrNotFound is answered for unknown routes.
var ErrNotFound = fiber.NewError(fiber.StatusNotFound, "route not found")

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
}

// handlers register their own routes with permission checks.
func handlers() []handler.Service {
	return []handler.Service{
		&system.Handler,
		&login.Handler,
		&logout.Handler,
		&user.Handler,
		&tool.Handler,
		&media.Handler,
		&analytics.Handler,
		&settings.Handler,
	}
}

// New creates a new web service with the given configuration.
func New(cfg *config.Config, db *gorm.DB) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
			BodyLimit:      cfg.Webserver.BodyLimit,
			JSONEncoder:    json.Marshal,
			JSONDecoder:    json.Unmarshal,
			ErrorHandler:   handler.ErrorHandler(cfg.IsProduction()),
		},
	)

	service := &Service{
		cfg:          cfg,
		App:          app,
		db:           db,
		fastShutDown: cfg.DevMode,
	}
	service.alive.Store(true)

	app.Use(requestid.New())
	app.Use(accesslog.New(accesslog.Config{
		Config:        cfg.Log,
		CheckAliveURI: cfg.Webserver.HealthURI,
	}))
	app.Use(recover.New(recover.Config{EnableStackTrace: cfg.DevMode}))
	app.Use(helmet.New())
	app.Use(cors.New(corsConfig(cfg.Webserver)))
	app.Use(compress.New())
	app.Use(limiter.New(limiterConfig(cfg.Webserver.RateLimit)))

	// resolves the session to the current user, rejection is left to the routes
	app.Use(authmw.Middleware(auth.NewService(db), cfg.Webserver.Session.CookieName))

	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	system.Handler.Alive = service.alive.Load

	for _, h := range handlers() {
		h.Init(app, cfg, db)
	}

	app.Use(func(_ *fiber.Ctx) error {
		return ErrNotFound
	})

	return service
}

func corsConfig(ws config.Webserver) cors.Config {
	origins := ws.CORSOrigins
	if len(origins) == 0 && ws.FrontendURL != "" {
		origins = []string{ws.FrontendURL}
	}

	if len(origins) == 0 {
		return cors.ConfigDefault
	}

	joined := strings.Join(origins, ",")

	return cors.Config{
		AllowOrigins:     joined,
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization",
		AllowCredentials: joined != "*",
	}
}

func limiterConfig(rl config.RateLimit) limiter.Config {
	return limiter.Config{
		Next: func(c *fiber.Ctx) bool {
			if !rl.Enabled {
				return true
			}

			for _, prefix := range rl.SkipPrefixes {
				if strings.HasPrefix(c.Path(), prefix) {
					return true
				}
			}

			return false
		},
		Max:        rl.Max,
		Expiration: rl.Window,
		LimitReached: func(_ *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "too many requests, please try again later")
		},
	}
}

// String implements fmt.Stringer for the supervisor logs.
func (s *Service) String() string {
	return "web-server"
}

// Serve runs the http server until ctx is done, then shuts it down gracefully.
func (s *Service) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.Webserver.Port)
	listenErr := make(chan error, 1)

	go func() {
		log.Info().Str("addr", addr).Msg("http server listening")

		listenErr <- s.App.Listen(addr)
	}()

	select {
	case err := <-listenErr:
		if err == nil {
			err = errors.New("http server stopped unexpectedly")
		}

		return err
	case <-ctx.Done():
	}

	s.shutdown()
	<-listenErr

	return ctx.Err()
}

// shutdown drains the server. Unless fast shutdown is set the health check answers 503
// for Webserver.ShutDownTime seconds first, so load balancers can remove this instance.
func (s *Service) shutdown() {
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	log.Info().Msg("stopping http server ...")

	if err := s.App.ShutdownWithTimeout(10 * time.Second); err != nil { //nolint:mnd
		log.Error().Err(err).Msg("http server shutdown")
	}

	log.Info().Msg("http server was stopped")
}
