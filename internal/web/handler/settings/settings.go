// Package settings provides the endpoints of the site settings global.
package settings

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/headless-tools/headless-tools-cms/internal/auth"
	"github.com/headless-tools/headless-tools-cms/internal/config"
	"github.com/headless-tools/headless-tools-cms/internal/db/controller/sitesettings"
	"github.com/headless-tools/headless-tools-cms/internal/fields"
	"github.com/headless-tools/headless-tools-cms/internal/web/handler"
)

// Path is the path of the settings global.
const Path = handler.APIPath + "/globals/settings"

// Service is the settings handler service.
type Service struct {
	cfg *config.Config
	db  *gorm.DB
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

	app.Get(Path, s.Get)
	app.Post(Path, auth.RequirePermission(auth.PermSettingsWrite), s.Post)
}

// Get returns the settings. Secrets are only shown to users that may write the settings.
func (s *Service) Get(c *fiber.Ctx) error {
	var settings sitesettings.Settings
	if err := settings.Load(s.db); err != nil {
		return err
	}

	if !auth.HasPermissionInContext(c, auth.PermSettingsWrite) {
		settings = settings.Redact()
	}

	return c.JSON(settings)
}

// Post merges the body into the stored settings and saves them. Redacted secrets keep their value.
func (s *Service) Post(c *fiber.Ctx) error {
	var prev sitesettings.Settings
	if err := prev.Load(s.db); err != nil {
		return err
	}

	settings := prev
	if err := c.BodyParser(&settings); err != nil {
		return handler.ErrInvalidBody
	}

	settings.KeepSecrets(prev)

	if errs := fields.Validate(&settings); errs != nil {
		return &handler.ValidationError{Fields: errs}
	}

	if err := settings.Save(s.db); err != nil {
		log.Error().Err(err).Msg("failed to save site settings")
		return err
	}

	log.Info().Uint64("user_id", auth.CurrentUser(c).ID).Msg("site settings saved")

	return handler.OK(c, fiber.Map{"result": settings, "message": "settings saved"})
}
