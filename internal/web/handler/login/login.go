package login

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/headless-tools/headless-tools-cms/internal/auth"
	"github.com/headless-tools/headless-tools-cms/internal/config"
	"github.com/headless-tools/headless-tools-cms/internal/fields"
	"github.com/headless-tools/headless-tools-cms/internal/web/handler"
	"github.com/headless-tools/headless-tools-cms/internal/web/session"
)

const (
	// Path is the path of the login endpoint.
	Path = handler.APIPath + "/users/login"
)

// Service is the login handler service.
type Service struct {
	cfg   *config.Config
	db    *gorm.DB
	local *auth.LocalProvider
}

// Handler is the login handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init initializes the login handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.local = auth.NewLocalProvider(db)

	app.Post(Path, s.Post)
}

// Post authenticates the credentials of the body and opens a session. The session id is set as
// cookie and returned as token for clients that send it as bearer token.
func (s *Service) Post(c *fiber.Ctx) error {
	creds := new(auth.Credentials)

	if err := c.BodyParser(creds); err != nil {
		return ErrInvalidFormData
	}

	if errs := fields.Validate(creds); errs != nil {
		return &handler.ValidationError{Fields: errs}
	}

	u, err := s.local.Authenticate(*creds)
	if err != nil {
		log.Info().Err(err).Str("email", creds.Email).Msg("login failed")
		return handler.Translate(err)
	}

	sessionID, err := session.GenerateSessionID()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate session ID")
		return ErrInternalServerError
	}

	expiry := s.cfg.Webserver.Session.ExpiryTime

	userSession := &session.Data{
		UserID:    u.ID,
		Role:      u.Role,
		CreatedAt: time.Now().UTC(),
	}

	if err = userSession.Write(sessionID, expiry); err != nil {
		log.Error().Err(err).Msg("failed to write session")
		return ErrInternalServerError
	}

	// set login cookie
	cookieSettings := &fiber.Cookie{
		Name:     s.cfg.Webserver.Session.CookieName,
		Value:    sessionID,
		MaxAge:   int(expiry.Seconds()),
		Secure:   true,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	}

	if s.cfg.DevMode {
		cookieSettings.Secure = false
	}

	c.Cookie(cookieSettings)

	log.Info().Uint64("user_id", u.ID).Msg("user logged in")

	return handler.OK(c, fiber.Map{
		"message": "login successful",
		"user":    u,
		"token":   sessionID,
		"exp":     time.Now().Add(expiry).Unix(),
	})
}
