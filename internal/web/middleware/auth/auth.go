package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/headless-tools/headless-tools-cms/internal/auth"
	"github.com/headless-tools/headless-tools-cms/internal/db/controller/user"
	"github.com/headless-tools/headless-tools-cms/internal/web/session"
)

// Middleware resolves the session of a request to its user and stores it with auth.SetCurrentUser.
// Requests without a valid session continue anonymously, the routes decide whether that is enough.
func Middleware(authService *auth.Service, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := session.FromRequest(c, cookieName)
		if sessionID == "" {
			return c.Next()
		}

		sessData := new(session.Data)
		if err := sessData.Read(sessionID); err != nil {
			if !errors.Is(err, session.ErrNotFound) {
				log.Error().Err(err).Msg("failed to read session")
			}

			return c.Next()
		}

		u, err := authService.ActiveUser(sessData.UserID)

		switch {
		case errors.Is(err, user.ErrUserNotFound), errors.Is(err, auth.ErrUserAccountDisabled):
			// the account is gone or disabled, the session is worthless
			if err = session.Delete(sessionID); err != nil {
				log.Error().Err(err).Msg("failed to delete session")
			}
		case err != nil:
			return err
		default:
			auth.SetCurrentUser(c, u)
		}

		return c.Next()
	}
}
