package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/headless-tools/headless-tools-cms/internal/auth"
	"github.com/headless-tools/headless-tools-cms/internal/db/controller/tool"
	"github.com/headless-tools/headless-tools-cms/internal/fields"
)

func TestTranslate(t *testing.T) {
	assert.NoError(t, Translate(nil))

	var fErr *fiber.Error

	require.ErrorAs(t, Translate(fmt.Errorf("load: %w", tool.ErrToolNotFound)), &fErr)
	assert.Equal(t, fiber.StatusNotFound, fErr.Code)

	require.ErrorAs(t, Translate(auth.ErrUserAccountDisabled), &fErr)
	assert.Equal(t, fiber.StatusForbidden, fErr.Code)

	plain := errors.New("disk full")
	assert.Same(t, plain, Translate(plain))
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		hideInternal bool
		status       int
		message      string
	}{
		{"fiber error", fiber.ErrTeapot, false, fiber.StatusTeapot, "I'm a teapot"},
		{"domain error", tool.ErrToolExists, false, fiber.StatusConflict, tool.ErrToolExists.Error()},
		{"duplicate key", gorm.ErrDuplicatedKey, false, fiber.StatusConflict, "duplicate value"},
		{
			"validation",
			&ValidationError{Fields: []fields.ErrorResponse{{FailedField: "Name", Tag: "required"}}},
			false, fiber.StatusBadRequest, "validation failed",
		},
		{"internal shown", errors.New("disk full"), false, fiber.StatusInternalServerError, "disk full"},
		{"internal hidden", errors.New("disk full"), true, fiber.StatusInternalServerError, "Something went wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(tt.hideInternal)})
			app.Get("/", func(_ *fiber.Ctx) error { return tt.err })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)

			defer resp.Body.Close()

			raw, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			var body map[string]any
			require.NoError(t, json.Unmarshal(raw, &body))

			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.message, body["message"])
			assert.Equal(t, http.StatusText(tt.status), body["error"])
			assert.NotEmpty(t, body["timestamp"])
		})
	}
}
