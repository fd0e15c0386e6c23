package web

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/univhr/hrcore/internal/apperr"
)

const internalErrorMessage = "Internal server error"

// StatusCode maps the kind of err to an HTTP status.
func StatusCode(err error) int {
	var fe *fiber.Error

	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, apperr.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, apperr.ErrUnauthenticated):
		return fiber.StatusUnauthorized
	case errors.Is(err, apperr.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, apperr.ErrConflict), errors.Is(err, apperr.ErrIntegrity):
		return fiber.StatusConflict
	case errors.Is(err, apperr.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, apperr.ErrInsufficientCredits):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler renders every error returned by a handler as {"error", "kind", "fields"}.
// Unexpected errors are logged and answered with a generic message.
func ErrorHandler(c fiber.Ctx, err error) error {
	status := StatusCode(err)
	body := fiber.Map{"error": err.Error(), "kind": apperr.KindName(err)}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		body["error"] = fe.Message
		body["kind"] = "http"
	}

	var ae *apperr.Error
	if errors.As(err, &ae) && len(ae.Fields) > 0 {
		body["fields"] = ae.Fields
	}

	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
		body["error"] = internalErrorMessage
	}

	return c.Status(status).JSON(body)
}
