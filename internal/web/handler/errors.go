package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/headless-tools/headless-tools-cms/internal/analytics"
	"github.com/headless-tools/headless-tools-cms/internal/auth"
	eventstore "github.com/headless-tools/headless-tools-cms/internal/db/controller/analytics"
	"github.com/headless-tools/headless-tools-cms/internal/db/controller/media"
	"github.com/headless-tools/headless-tools-cms/internal/db/controller/setting"
	"github.com/headless-tools/headless-tools-cms/internal/db/controller/tool"
	"github.com/headless-tools/headless-tools-cms/internal/db/controller/user"
	"github.com/headless-tools/headless-tools-cms/internal/fields"
)

var (
	// ErrInvalidID is answered for a path id that is not a positive integer.
	ErrInvalidID = fiber.NewError(fiber.StatusBadRequest, "invalid id")

	// ErrInvalidBody is answered for a body that can't be decoded.
	ErrInvalidBody = fiber.NewError(fiber.StatusBadRequest, "invalid request body")
)

// ValidationError is answered with status 400 and the failed fields.
type ValidationError struct {
	Fields []fields.ErrorResponse
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// statusOf maps the domain errors to http status codes.
var statusOf = []struct { //nolint:gochecknoglobals
	err    error
	status int
}{
	{tool.ErrToolNotFound, fiber.StatusNotFound},
	{media.ErrMediaNotFound, fiber.StatusNotFound},
	{user.ErrUserNotFound, fiber.StatusNotFound},
	{eventstore.ErrEventNotFound, fiber.StatusNotFound},
	{setting.ErrSettingNotFound, fiber.StatusNotFound},

	{tool.ErrToolExists, fiber.StatusConflict},
	{media.ErrMediaExists, fiber.StatusConflict},
	{user.ErrEmailTaken, fiber.StatusConflict},
	{auth.ErrTOTPAlreadyEnabled, fiber.StatusConflict},

	{media.ErrMimeTypeNotAllowed, fiber.StatusBadRequest},
	{fields.ErrEmptySlug, fiber.StatusBadRequest},
	{analytics.ErrEmptyBatch, fiber.StatusBadRequest},
	{auth.ErrInvalidOldPassword, fiber.StatusBadRequest},
	{auth.ErrTOTPNotEnrolled, fiber.StatusBadRequest},
	{auth.ErrInvalidTOTPCode, fiber.StatusUnauthorized},

	{auth.ErrInvalidCredentials, fiber.StatusUnauthorized},
	{auth.ErrTOTPRequired, fiber.StatusUnauthorized},
	{auth.ErrUserAccountDisabled, fiber.StatusForbidden},
}

// Translate turns a domain error into a *fiber.Error carrying its status. Other errors are returned
// unchanged and end up as 500.
func Translate(err error) error {
	if err == nil {
		return nil
	}

	for _, m := range statusOf {
		if errors.Is(err, m.err) {
			return fiber.NewError(m.status, err.Error())
		}
	}

	return err
}

// HiddenErrorMessage replaces the message of unexpected errors in production.
const HiddenErrorMessage = "Something went wrong"

// ErrorHandler answers every error with the JSON error envelope. With hideInternal set
// the message of a 500 is replaced by a generic one.
func ErrorHandler(hideInternal bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		err = Translate(err)

		var (
			code = fiber.StatusInternalServerError
			body = fiber.Map{
				"success":   false,
				"timestamp": time.Now().UTC(),
			}
			vErr *ValidationError
			fErr *fiber.Error
		)

		switch {
		case errors.As(err, &vErr):
			code = fiber.StatusBadRequest
			body["message"] = vErr.Error()
			body["details"] = vErr.Fields
		case errors.As(err, &fErr):
			code = fErr.Code
			body["message"] = fErr.Message
		case errors.Is(err, gorm.ErrDuplicatedKey):
			code = fiber.StatusConflict
			body["message"] = "duplicate value"
		default:
			log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")

			body["message"] = err.Error()
			if hideInternal {
				body["message"] = HiddenErrorMessage
			}
		}

		body["error"] = utils.StatusMessage(code)

		return c.Status(code).JSON(body)
	}
}
