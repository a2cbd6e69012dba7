package media

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/headless-tools/headless-tools-cms/internal/db/models"
	"github.com/headless-tools/headless-tools-cms/internal/web/handler/handlertest"
)

func TestMediaLifecycle(t *testing.T) {
	env := handlertest.New(t, handlertest.Config(), new(Service))

	owner := env.CreateUser(t, "owner@example.com", models.RoleUser)
	token := env.Login(t, owner)
	admin := env.Login(t, env.CreateUser(t, "admin@example.com", models.RoleAdmin))

	body := fiber.Map{"filename": "logo.png", "mimeType": "image/png", "filesize": 2048, "category": "icon"}

	assert.Equal(t, http.StatusUnauthorized, env.Do(t, http.MethodPost, Path, body, "").Status)

	resp := env.Do(t, http.MethodPost, Path, body, token)
	require.Equal(t, http.StatusCreated, resp.Status)

	doc := resp.Body["doc"].(map[string]any)
	assert.InDelta(t, float64(owner.ID), doc["uploadedBy"], 0)
	assert.Equal(t, true, doc["isPublic"])

	id := strconv.Itoa(int(doc["id"].(float64)))

	resp = env.Do(t, http.MethodGet, Path+"/"+id+"?download=true", nil, "")
	require.Equal(t, http.StatusOK, resp.Status)
	assert.InDelta(t, 1, resp.Body["downloadCount"], 0)

	bad := fiber.Map{"filename": "run.exe", "mimeType": "application/x-msdownload"}
	assert.Equal(t, http.StatusBadRequest, env.Do(t, http.MethodPost, Path, bad, token).Status)

	resp = env.Do(t, http.MethodPatch, Path+"/"+id, fiber.Map{"isPublic": false, "alt": "Logo"}, token)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "Logo", resp.Body["doc"].(map[string]any)["alt"])

	assert.Equal(t, http.StatusNotFound, env.Do(t, http.MethodGet, Path+"/"+id, nil, "").Status)
	assert.Equal(t, http.StatusOK, env.Do(t, http.MethodGet, Path+"/"+id, nil, token).Status)

	resp = env.Do(t, http.MethodGet, Path, nil, "")
	require.Equal(t, http.StatusOK, resp.Status)
	assert.InDelta(t, 0, resp.Body["totalDocs"], 0)

	resp = env.Do(t, http.MethodGet, Path+"?mimeType=image/", nil, token)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.InDelta(t, 1, resp.Body["totalDocs"], 0)

	assert.Equal(t, http.StatusForbidden, env.Do(t, http.MethodDelete, Path+"/"+id, nil, token).Status)
	assert.Equal(t, http.StatusOK, env.Do(t, http.MethodDelete, Path+"/"+id, nil, admin).Status)
}
