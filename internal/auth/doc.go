// Package auth provides authentication and authorization for the API.
//
// Accounts are local users stored in the database with Argon2id password
// hashes and optional TOTP two-factor codes. Authorization is role based:
// every role (admin, editor, user) carries a fixed set of permissions and
// routes are guarded by permission checks.
//
// # Authentication
//
// LocalProvider authenticates an email and password, checks that the account
// is active and, when two-factor authentication is enabled, that a valid TOTP
// code was supplied. A successful login stamps lastLoginAt and increments the
// login counter.
//
// # Authorization
//
// Service resolves users and their permissions:
//   - HasPermission: check a single permission of a user
//   - HasAnyPermission: check that at least one permission is granted
//   - GetUserPermissions: list the permissions of a user
//
// # Middleware
//
// RequireAuthenticated, RequirePermission and RequireAnyPermission guard fiber
// routes. They read the user that the session middleware stored in the request
// locals, see CurrentUser.
//
//	authService := auth.NewService(db)
//
//	api.Delete("/tools/:id", auth.RequirePermission(auth.PermToolsDelete), handler)
package auth
