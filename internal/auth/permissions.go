package auth

import "github.com/headless-tools/headless-tools-cms/internal/db/models"

// Permission constants define the available permissions in the system.
const (
	// PermToolsWrite allows creating and editing tools.
	PermToolsWrite = "tools.write"
	// PermToolsDelete allows deleting tools.
	PermToolsDelete = "tools.delete"

	// PermMediaWrite allows uploading and editing media metadata.
	PermMediaWrite = "media.write"
	// PermMediaDelete allows deleting media.
	PermMediaDelete = "media.delete"

	// PermAnalyticsRead allows listing stored analytics events.
	PermAnalyticsRead = "analytics.read"
	// PermAnalyticsDelete allows deleting analytics events.
	PermAnalyticsDelete = "analytics.delete"

	// PermUsersManage allows listing, editing and deleting any user account, including role and active flag.
	PermUsersManage = "users.manage"

	// PermSettingsWrite allows saving the site settings and reading their secrets.
	PermSettingsWrite = "settings.write"
)

// rolePermissions maps every role to its permissions.
var rolePermissions = map[models.Role][]string{ //nolint:gochecknoglobals
	models.RoleAdmin: {
		PermToolsWrite, PermToolsDelete,
		PermMediaWrite, PermMediaDelete,
		PermAnalyticsRead, PermAnalyticsDelete,
		PermUsersManage,
		PermSettingsWrite,
	},
	models.RoleEditor: {
		PermToolsWrite,
		PermMediaWrite,
		PermAnalyticsRead,
	},
	models.RoleUser: {
		PermMediaWrite,
	},
}

// RolePermissions returns the permissions of a role. Unknown roles have none.
func RolePermissions(role models.Role) []string {
	perms := rolePermissions[role]

	out := make([]string, len(perms))
	copy(out, perms)

	return out
}

// RoleHasPermission reports whether role grants permission.
func RoleHasPermission(role models.Role, permission string) bool {
	for _, p := range rolePermissions[role] {
		if p == permission {
			return true
		}
	}

	return false
}
