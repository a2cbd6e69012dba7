package settings

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/headless-tools/headless-tools-cms/internal/db/controller/sitesettings"
	"github.com/headless-tools/headless-tools-cms/internal/db/models"
	"github.com/headless-tools/headless-tools-cms/internal/web/handler/handlertest"
)

func TestSettings(t *testing.T) {
	env := handlertest.New(t, handlertest.Config(), new(Service))

	admin := env.Login(t, env.CreateUser(t, "admin@example.com", models.RoleAdmin))
	editor := env.Login(t, env.CreateUser(t, "editor@example.com", models.RoleEditor))

	resp := env.Do(t, http.MethodGet, Path, nil, "")
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "local", resp.Body["storageConfig"].(map[string]any)["provider"])

	update := fiber.Map{
		"siteInfo":    fiber.Map{"siteName": "Tools"},
		"emailConfig": fiber.Map{"smtp": fiber.Map{"host": "smtp.example.com", "port": 465, "password": "s3cret"}},
	}

	assert.Equal(t, http.StatusUnauthorized, env.Do(t, http.MethodPost, Path, update, "").Status)
	assert.Equal(t, http.StatusForbidden, env.Do(t, http.MethodPost, Path, update, editor).Status)

	resp = env.Do(t, http.MethodPost, Path, update, admin)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "settings saved", resp.Body["message"])

	// public reads hide the secret, admins see it
	resp = env.Do(t, http.MethodGet, Path, nil, "")
	smtp := resp.Body["emailConfig"].(map[string]any)["smtp"].(map[string]any)
	assert.Equal(t, sitesettings.Redacted, smtp["password"])
	assert.Equal(t, "smtp.example.com", smtp["host"])

	resp = env.Do(t, http.MethodGet, Path, nil, admin)
	smtp = resp.Body["emailConfig"].(map[string]any)["smtp"].(map[string]any)
	assert.Equal(t, "s3cret", smtp["password"])

	// saving a redacted document back keeps the secret
	resp = env.Do(t, http.MethodPost, Path, fiber.Map{
		"emailConfig": fiber.Map{"smtp": fiber.Map{"password": sitesettings.Redacted}},
		"features":    fiber.Map{"maintenanceMode": true},
	}, admin)
	require.Equal(t, http.StatusOK, resp.Status)

	var stored sitesettings.Settings
	require.NoError(t, stored.Load(env.DB))
	assert.Equal(t, "s3cret", stored.EmailConfig.SMTP.Password)
	assert.True(t, stored.Features.MaintenanceMode)
	assert.Equal(t, "Tools", stored.SiteInfo.SiteName)
	assert.NotNil(t, stored.SystemInfo.LastUpdated)

	resp = env.Do(t, http.MethodPost, Path, fiber.Map{"siteInfo": fiber.Map{"siteName": ""}}, admin)
	assert.Equal(t, http.StatusBadRequest, resp.Status)
}
