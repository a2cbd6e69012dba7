// Package login provides the session login endpoint of the API.
//
// This file defines exported error values used throughout the login flow.
package login

import "github.com/gofiber/fiber/v2"

var (
	// ErrInvalidFormData is returned when the submitted login body cannot be parsed.
	ErrInvalidFormData = fiber.NewError(fiber.StatusBadRequest, "invalid form data")

	// ErrInternalServerError is returned for unexpected failures during the login process.
	ErrInternalServerError = fiber.NewError(fiber.StatusInternalServerError, "internal server error")
)
