package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/headless-tools/headless-tools-cms/internal/db/models"
)

// LocalUser is the fiber.Locals key of the authenticated *models.User.
const LocalUser = "currentUser"

var (
	// ErrUnauthorized is answered when a route needs a logged-in user.
	ErrUnauthorized = fiber.NewError(fiber.StatusUnauthorized, "authentication required")

	// ErrForbidden is answered when the user lacks the permission of a route.
	ErrForbidden = fiber.NewError(fiber.StatusForbidden, "you don't have permission to access this resource")
)

// CurrentUser returns the authenticated user of the request or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	u, _ := c.Locals(LocalUser).(*models.User)
	return u
}

// SetCurrentUser stores the authenticated user of the request.
func SetCurrentUser(c *fiber.Ctx, u *models.User) {
	c.Locals(LocalUser, u)
}

// HasPermissionInContext checks if the current user has a permission.
func HasPermissionInContext(c *fiber.Ctx, permission string) bool {
	u := CurrentUser(c)
	return u != nil && RoleHasPermission(u.Role, permission)
}

// RequireAuthenticated rejects requests without a logged-in user.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentUser(c) == nil {
			return ErrUnauthorized
		}

		return c.Next()
	}
}

// RequirePermission creates Fiber middleware that requires a specific permission.
func RequirePermission(permission string) fiber.Handler {
	return RequireAnyPermission(permission)
}

// RequireAnyPermission creates Fiber middleware that requires at least one of the given permissions.
func RequireAnyPermission(permissions ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := CurrentUser(c)
		if u == nil {
			return ErrUnauthorized
		}

		for _, perm := range permissions {
			if RoleHasPermission(u.Role, perm) {
				return c.Next()
			}
		}

		log.Warn().Uint64("user_id", u.ID).Strs("permissions", permissions).
			Msg("User lacks required permissions")

		return ErrForbidden
	}
}
