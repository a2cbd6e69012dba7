package session

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/headless-tools/headless-tools-cms/internal/db/dbtest"
	"github.com/headless-tools/headless-tools-cms/internal/db/models"
)

func newStorage(t *testing.T) *GormStorage {
	t.Helper()

	s := NewGormStorage(dbtest.Open(t), time.Hour)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestGormStorage(t *testing.T) {
	s := newStorage(t)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set("a", []byte("one"), time.Minute))
	require.NoError(t, s.Set("forever", []byte("x"), 0))

	got, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), got)

	// overwrite
	require.NoError(t, s.Set("a", []byte("two"), time.Minute))
	got, err = s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), got)

	got, err = s.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	now = now.Add(2 * time.Minute)

	got, err = s.Get("a")
	require.NoError(t, err)
	assert.Nil(t, got, "expired")

	n, err := s.DeleteExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err = s.Get("forever")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), got)

	require.NoError(t, s.Delete("forever"))
	got, err = s.Get("forever")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.Set("b", []byte("b"), 0))
	require.NoError(t, s.Reset())

	got, err = s.Get("b")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "close is idempotent")
}

func TestDataRoundTrip(t *testing.T) {
	Init(newStorage(t))

	id, err := GenerateSessionID()
	require.NoError(t, err)
	assert.Len(t, id, 64)

	in := &Data{UserID: 7, Role: models.RoleEditor, CreatedAt: time.Now().UTC().Truncate(time.Second)}
	require.NoError(t, in.Write(id, time.Minute))

	out := new(Data)
	require.NoError(t, out.Read(id))
	assert.Equal(t, in.UserID, out.UserID)
	assert.Equal(t, in.Role, out.Role)
	assert.True(t, in.CreatedAt.Equal(out.CreatedAt))

	require.NoError(t, Delete(id))
	require.ErrorIs(t, new(Data).Read(id), ErrNotFound)
	require.ErrorIs(t, new(Data).Read(""), ErrNotFound)
}

func TestInitNilStoragePanics(t *testing.T) {
	assert.Panics(t, func() { Init(nil) })
}

func TestFromRequest(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(FromRequest(c, "session"))
	})

	tests := []struct {
		name   string
		header map[string]string
		want   string
	}{
		{"none", nil, ""},
		{"cookie", map[string]string{"Cookie": "session=abc"}, "abc"},
		{"bearer", map[string]string{"Authorization": "Bearer tok"}, "tok"},
		{"cookie wins", map[string]string{"Cookie": "session=abc", "Authorization": "Bearer tok"}, "abc"},
		{"other scheme", map[string]string{"Authorization": "Basic xyz"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/", nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(body))
		})
	}
}
