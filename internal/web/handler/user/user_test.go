package user

import (
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/headless-tools/headless-tools-cms/internal/db/controller/sitesettings"
	"github.com/headless-tools/headless-tools-cms/internal/db/controller/user"
	"github.com/headless-tools/headless-tools-cms/internal/db/models"
	"github.com/headless-tools/headless-tools-cms/internal/web/handler/handlertest"
)

func registration(email string) fiber.Map {
	return fiber.Map{
		"email":     email,
		"password":  "long-enough-secret",
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"role":      "admin",
		"isActive":  false,
	}
}

func userPath(u *models.User) string {
	return Path + "/" + strconv.FormatUint(u.ID, 10)
}

func TestRegister(t *testing.T) {
	env := handlertest.New(t, handlertest.Config(), new(Service))

	resp := env.Do(t, http.MethodPost, Path, registration("ada@example.com"), "")
	require.Equal(t, http.StatusCreated, resp.Status)

	doc := resp.Body["doc"].(map[string]any)
	assert.Equal(t, "user", doc["role"], "anonymous registration can't pick a role")
	assert.Equal(t, true, doc["isActive"])
	assert.NotContains(t, doc, "password")

	resp = env.Do(t, http.MethodPost, Path, registration("ADA@example.com"), "")
	assert.Equal(t, http.StatusConflict, resp.Status)

	short := registration("grace@example.com")
	short["password"] = "short"
	resp = env.Do(t, http.MethodPost, Path, short, "")
	assert.Equal(t, http.StatusBadRequest, resp.Status)

	admin := env.Login(t, env.CreateUser(t, "admin@example.com", models.RoleAdmin))

	resp = env.Do(t, http.MethodPost, Path, registration("editor@example.com"), admin)
	require.Equal(t, http.StatusCreated, resp.Status)
	doc = resp.Body["doc"].(map[string]any)
	assert.Equal(t, "admin", doc["role"])
	assert.Equal(t, false, doc["isActive"])
}

func TestRegisterIgnoresTOTPFlag(t *testing.T) {
	env := handlertest.New(t, handlertest.Config(), new(Service))

	body := registration("ada@example.com")
	body["totpEnabled"] = true

	resp := env.Do(t, http.MethodPost, Path, body, "")
	require.Equal(t, http.StatusCreated, resp.Status)
	assert.Equal(t, false, resp.Body["doc"].(map[string]any)["totpEnabled"])

	stored, err := user.GetByEmail(env.DB, "ada@example.com")
	require.NoError(t, err)
	assert.False(t, stored.TOTPEnabled)
	assert.Empty(t, stored.TOTPSecret)
}

func TestRegisterDisabled(t *testing.T) {
	env := handlertest.New(t, handlertest.Config(), new(Service))

	site := sitesettings.Default()
	site.Features.UserRegistration = false
	require.NoError(t, site.Save(env.DB))

	resp := env.Do(t, http.MethodPost, Path, registration("ada@example.com"), "")
	assert.Equal(t, http.StatusForbidden, resp.Status)
}

func TestAccess(t *testing.T) {
	env := handlertest.New(t, handlertest.Config(), new(Service))

	alice := env.CreateUser(t, "alice@example.com", models.RoleUser)
	bob := env.CreateUser(t, "bob@example.com", models.RoleEditor)
	admin := env.Login(t, env.CreateUser(t, "admin@example.com", models.RoleAdmin))
	aliceToken := env.Login(t, alice)

	assert.Equal(t, http.StatusUnauthorized, env.Do(t, http.MethodGet, Path+"/me", nil, "").Status)

	resp := env.Do(t, http.MethodGet, Path+"/me", nil, aliceToken)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "alice@example.com", resp.Body["user"].(map[string]any)["email"])

	assert.Equal(t, http.StatusOK, env.Do(t, http.MethodGet, userPath(alice), nil, aliceToken).Status)
	assert.Equal(t, http.StatusForbidden, env.Do(t, http.MethodGet, userPath(bob), nil, aliceToken).Status)
	assert.Equal(t, http.StatusOK, env.Do(t, http.MethodGet, userPath(bob), nil, admin).Status)

	assert.Equal(t, http.StatusForbidden, env.Do(t, http.MethodGet, Path, nil, aliceToken).Status)

	resp = env.Do(t, http.MethodGet, Path+"?role=editor", nil, admin)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.InDelta(t, 1, resp.Body["totalDocs"], 0)

	assert.Equal(t, http.StatusForbidden, env.Do(t, http.MethodDelete, userPath(bob), nil, aliceToken).Status)
	assert.Equal(t, http.StatusOK, env.Do(t, http.MethodDelete, userPath(bob), nil, admin).Status)
	assert.Equal(t, http.StatusNotFound, env.Do(t, http.MethodGet, userPath(bob), nil, admin).Status)
}

func TestUpdate(t *testing.T) {
	env := handlertest.New(t, handlertest.Config(), new(Service))

	alice := env.CreateUser(t, "alice@example.com", models.RoleUser)
	token := env.Login(t, alice)
	admin := env.Login(t, env.CreateUser(t, "admin@example.com", models.RoleAdmin))

	resp := env.Do(t, http.MethodPatch, userPath(alice), fiber.Map{"bio": "hello", "role": "admin"}, token)
	require.Equal(t, http.StatusOK, resp.Status)

	doc := resp.Body["doc"].(map[string]any)
	assert.Equal(t, "hello", doc["bio"])
	assert.Equal(t, "user", doc["role"], "users can't promote themselves")
	assert.Equal(t, "Test", doc["firstName"])

	resp = env.Do(t, http.MethodPatch, userPath(alice), fiber.Map{"password": "brand-new-secret", "oldPassword": "wrong"}, token)
	assert.Equal(t, http.StatusBadRequest, resp.Status)

	resp = env.Do(t, http.MethodPatch, userPath(alice),
		fiber.Map{"password": "brand-new-secret", "oldPassword": handlertest.Password}, token)
	require.Equal(t, http.StatusOK, resp.Status)

	stored, err := user.Get(env.DB, alice.ID)
	require.NoError(t, err)
	assert.True(t, stored.VerifyPassword("brand-new-secret"))

	resp = env.Do(t, http.MethodPatch, userPath(alice), fiber.Map{"role": "editor", "password": "admin-reset-secret"}, admin)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "editor", resp.Body["doc"].(map[string]any)["role"])

	stored, err = user.Get(env.DB, alice.ID)
	require.NoError(t, err)
	assert.True(t, stored.VerifyPassword("admin-reset-secret"))
}

func TestUpdateRollsBackPassword(t *testing.T) {
	env := handlertest.New(t, handlertest.Config(), new(Service))

	alice := env.CreateUser(t, "alice@example.com", models.RoleUser)
	env.CreateUser(t, "bob@example.com", models.RoleUser)
	token := env.Login(t, alice)

	resp := env.Do(t, http.MethodPatch, userPath(alice), fiber.Map{
		"email":       "bob@example.com",
		"oldPassword": handlertest.Password,
		"password":    "brand-new-secret",
	}, token)
	require.Equal(t, http.StatusConflict, resp.Status)

	stored, err := user.Get(env.DB, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", stored.Email)
	assert.True(t, stored.VerifyPassword(handlertest.Password), "old password still valid")
	assert.False(t, stored.VerifyPassword("brand-new-secret"))
}

func TestTOTPEnrolment(t *testing.T) {
	env := handlertest.New(t, handlertest.Config(), new(Service))

	alice := env.CreateUser(t, "alice@example.com", models.RoleUser)
	token := env.Login(t, alice)

	resp := env.Do(t, http.MethodPost, Path+"/me/totp/verify", fiber.Map{"code": "123456"}, token)
	assert.Equal(t, http.StatusBadRequest, resp.Status, "verify before enrolment")

	resp = env.Do(t, http.MethodPost, Path+"/me/totp", nil, token)
	require.Equal(t, http.StatusOK, resp.Status)

	secret := resp.Body["secret"].(string)
	assert.Contains(t, resp.Body["url"], "otpauth://")

	resp = env.Do(t, http.MethodPost, Path+"/me/totp/verify", fiber.Map{"code": "12"}, token)
	assert.Equal(t, http.StatusBadRequest, resp.Status)

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)

	resp = env.Do(t, http.MethodPost, Path+"/me/totp/verify", fiber.Map{"code": code}, token)
	require.Equal(t, http.StatusOK, resp.Status)

	resp = env.Do(t, http.MethodGet, Path+"/me", nil, token)
	assert.Equal(t, true, resp.Body["user"].(map[string]any)["totpEnabled"])

	resp = env.Do(t, http.MethodDelete, Path+"/me/totp", nil, token)
	assert.Equal(t, http.StatusBadRequest, resp.Status, "disable without code")

	resp = env.Do(t, http.MethodDelete, Path+"/me/totp", fiber.Map{"code": "000000"}, token)
	assert.Equal(t, http.StatusUnauthorized, resp.Status, "disable with wrong code")

	stored, err := user.Get(env.DB, alice.ID)
	require.NoError(t, err)
	assert.True(t, stored.TOTPEnabled)

	code, err = totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)

	resp = env.Do(t, http.MethodDelete, Path+"/me/totp", fiber.Map{"code": code}, token)
	require.Equal(t, http.StatusOK, resp.Status)

	stored, err = user.Get(env.DB, alice.ID)
	require.NoError(t, err)
	assert.False(t, stored.TOTPEnabled)
}
