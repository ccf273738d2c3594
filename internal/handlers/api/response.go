package api

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"serptrack/internal/provider"
)

// jsonSuccess returns a 200 response with data wrapped in the standard envelope.
func jsonSuccess(c fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"data":   data,
	})
}

// jsonError returns an error response with the given HTTP status code.
func jsonError(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"status": "error",
		"error":  message,
	})
}

// providerError maps check failures onto the API taxonomy: configuration
// problems get an actionable 503, upstream trouble a retry-later 502. Both
// stay distinct from a legitimate "not found" result, which is a 200.
func providerError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, provider.ErrNotConfigured):
		return jsonError(c, fiber.StatusServiceUnavailable,
			"ranking provider is not configured; contact support")
	case errors.Is(err, provider.ErrUpstream):
		return jsonError(c, fiber.StatusBadGateway,
			"the search provider is unavailable; try again later")
	default:
		return jsonError(c, fiber.StatusInternalServerError, "ranking check failed")
	}
}
