package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"serptrack/internal/config"
	"serptrack/internal/db"
	"serptrack/internal/models"
	"serptrack/internal/ranking"
	"serptrack/internal/validation"
)

// LookupHandler serves the unauthenticated instant keyword lookup.
type LookupHandler struct {
	db  *db.DB
	svc *ranking.Service
	cfg *config.Config
}

// NewLookupHandler creates a new lookup handler.
func NewLookupHandler(database *db.DB, svc *ranking.Service, cfg *config.Config) *LookupHandler {
	return &LookupHandler{db: database, svc: svc, cfg: cfg}
}

// Lookup performs one ephemeral check for an anonymous visitor. Usage is
// counted per client IP; past the threshold the caller is told to register.
// Nothing here is persisted beyond the counter.
func (h *LookupHandler) Lookup(c fiber.Ctx) error {
	var req ranking.InstantLookupRequest
	if err := c.Bind().Body(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.Location == "" {
		req.Location = "us"
	}
	if req.Device == "" {
		req.Device = models.DeviceDesktop
	}

	if valid, msg := validation.ValidateKeywordText(req.Keyword); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}
	if valid, msg := validation.ValidateDomainURL(req.Domain); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}
	if valid, msg := validation.ValidateDevice(req.Device); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}
	if valid, msg := validation.ValidateLocation(req.Location); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}
	req.Location = validation.NormalizeLocation(req.Location)

	count, err := h.db.IncrementIPLimit(c.Context(), c.IP(), h.cfg.LookupWindow)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "lookup failed")
	}
	if count > h.cfg.LookupLimit {
		// Expected control flow for the anonymous endpoint, not an error.
		return jsonError(c, fiber.StatusTooManyRequests,
			"free lookup limit reached; sign up for an account to keep tracking keywords")
	}

	result, err := h.svc.InstantLookup(c.Context(), req)
	if err != nil {
		slog.Error("instant lookup failed", "keyword", req.Keyword, "error", err)
		return providerError(c, err)
	}
	return jsonSuccess(c, result)
}
