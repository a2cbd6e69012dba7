// Package logout provides the session logout endpoint of the API.
package logout

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/headless-tools/headless-tools-cms/internal/config"
	"github.com/headless-tools/headless-tools-cms/internal/web/handler"
	"github.com/headless-tools/headless-tools-cms/internal/web/session"
)

// Path is the path of the logout endpoint.
const Path = handler.APIPath + "/users/logout"

// Service is the logout handler service.
type Service struct {
	cfg *config.Config
}

// Handler is the logout handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init initializes the logout handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, _ *gorm.DB) {
	if app == nil || cfg == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg

	app.Post(Path, s.Logout)
}

// Logout deletes the session of the request and clears the cookie. It succeeds without a session.
func (s *Service) Logout(c *fiber.Ctx) error {
	cookieName := s.cfg.Webserver.Session.CookieName

	if sessionID := session.FromRequest(c, cookieName); sessionID != "" {
		if err := session.Delete(sessionID); err != nil {
			log.Error().Err(err).Msg("failed to delete session")
		}
	}

	// Clear the session cookie
	c.Cookie(&fiber.Cookie{
		Name:     cookieName,
		Value:    "",
		MaxAge:   -1,
		Secure:   !s.cfg.DevMode,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return handler.OK(c, fiber.Map{"message": "logged out"})
}
