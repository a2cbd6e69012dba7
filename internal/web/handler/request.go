package handler

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/headless-tools/headless-tools-cms/internal/db/controller/paging"
	"github.com/headless-tools/headless-tools-cms/internal/fields"
)

// OK answers 200 with data merged into a success envelope.
func OK(c *fiber.Ctx, data fiber.Map) error {
	return Reply(c, fiber.StatusOK, data)
}

// Reply answers status with data merged into a success envelope.
func Reply(c *fiber.Ctx, status int, data fiber.Map) error {
	out := fiber.Map{"success": true}
	for k, v := range data {
		out[k] = v
	}

	return c.Status(status).JSON(out)
}

// ParseBody decodes the request body into out and validates it.
func ParseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return ErrInvalidBody
	}

	if errs := fields.Validate(out); errs != nil {
		return &ValidationError{Fields: errs}
	}

	return nil
}

// ParamID parses a positive integer path parameter.
func ParamID(c *fiber.Ctx, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidID
	}

	return id, nil
}

// QueryID parses an optional positive integer query parameter. Empty means nil.
func QueryID(c *fiber.Ctx, name string) (*uint64, error) {
	v := c.Query(name)
	if v == "" {
		return nil, nil //nolint:nilnil
	}

	id, err := strconv.ParseUint(v, 10, 64)
	if err != nil || id == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}

	return &id, nil
}

// QueryTime parses an optional RFC 3339 or YYYY-MM-DD query parameter. Empty means nil.
func QueryTime(c *fiber.Ctx, name string) (*time.Time, error) {
	v := c.Query(name)
	if v == "" {
		return nil, nil //nolint:nilnil
	}

	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, v); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}

	return nil, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
}

// QueryBool parses an optional boolean query parameter. Empty means nil.
func QueryBool(c *fiber.Ctx, name string) (*bool, error) {
	v := c.Query(name)
	if v == "" {
		return nil, nil //nolint:nilnil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}

	return &b, nil
}

// Paging reads the page and limit query parameters.
func Paging(c *fiber.Ctx) paging.Params {
	return paging.Params{
		Page:  c.QueryInt("page", 1),
		Limit: c.QueryInt("limit", paging.DefaultLimit),
	}.Normalize()
}
