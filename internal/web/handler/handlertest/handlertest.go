// Package handlertest builds fiber apps backed by an in-memory database for handler tests.
package handlertest

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/headless-tools/headless-tools-cms/internal/auth"
	"github.com/headless-tools/headless-tools-cms/internal/config"
	"github.com/headless-tools/headless-tools-cms/internal/db/controller/user"
	"github.com/headless-tools/headless-tools-cms/internal/db/dbtest"
	"github.com/headless-tools/headless-tools-cms/internal/db/models"
	"github.com/headless-tools/headless-tools-cms/internal/web/handler"
	authmw "github.com/headless-tools/headless-tools-cms/internal/web/middleware/auth"
	"github.com/headless-tools/headless-tools-cms/internal/web/session"
)

// Password of the users created by CreateUser.
const Password = "correct-horse-battery"

// CookieName of the session cookie in Config.
const CookieName = "htc_session"

// Config returns a development config with analytics switched on.
func Config() *config.Config {
	return &config.Config{
		DevMode:     true,
		Environment: config.EnvDevelopment,
		Title:       "headless-tools-cms",
		Version:     "2.0.0",
		DB:          config.DB{Engine: config.DBEngineSQLite},
		Webserver: config.Webserver{
			URL:       "http://localhost:3000",
			HealthURI: "/health",
			Session:   config.Session{ExpiryTime: time.Hour, CookieName: CookieName},
		},
		Analytics: config.Analytics{Enabled: true, RealTimeEnabled: true, RetentionDays: 90},
		TOTP:      config.TOTP{Issuer: "headless-tools-cms"},
	}
}

// Env is an app with its database.
type Env struct {
	App *fiber.App
	DB  *gorm.DB
	Cfg *config.Config
}

// New creates the app with the error handler and session middleware of the server and
// initializes the given handlers on it.
func New(t *testing.T, cfg *config.Config, services ...handler.Service) *Env {
	t.Helper()

	db := dbtest.Open(t)

	storage := session.NewGormStorage(db, time.Hour)
	t.Cleanup(func() { _ = storage.Close() })
	session.Init(storage)

	app := fiber.New(fiber.Config{
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: handler.ErrorHandler(false),
	})
	app.Use(authmw.Middleware(auth.NewService(db), cfg.Webserver.Session.CookieName))

	for _, s := range services {
		s.Init(app, cfg, db)
	}

	return &Env{App: app, DB: db, Cfg: cfg}
}

// CreateUser stores an active user with Password.
func (e *Env) CreateUser(t *testing.T, email string, role models.Role) *models.User {
	t.Helper()

	u := &models.User{Email: email, FirstName: "Test", LastName: "User", Role: role}
	require.NoError(t, user.Create(e.DB, u, Password))

	return u
}

// Login opens a session for u and returns its token.
func (e *Env) Login(t *testing.T, u *models.User) string {
	t.Helper()

	id, err := session.GenerateSessionID()
	require.NoError(t, err)

	data := &session.Data{UserID: u.ID, Role: u.Role, CreatedAt: time.Now().UTC()}
	require.NoError(t, data.Write(id, time.Hour))

	return id
}

// Response is a decoded JSON answer.
type Response struct {
	Status int
	Header http.Header
	Body   map[string]any
}

// Do sends a request with an optional JSON body and bearer token.
func (e *Env) Do(t *testing.T, method, target string, body any, token string) Response {
	t.Helper()

	var reader io.Reader

	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := e.App.Test(req, -1)
	require.NoError(t, err)

	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := Response{Status: resp.StatusCode, Header: resp.Header}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out.Body), "body: %s", raw)
	}

	return out
}
