package api

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"serptrack/internal/middleware"
	"serptrack/internal/scheduler"
)

// RefreshHandler triggers an on-demand check of the caller's keywords.
type RefreshHandler struct {
	sched *scheduler.Scheduler
}

// NewRefreshHandler creates a new refresh handler.
func NewRefreshHandler(sched *scheduler.Scheduler) *RefreshHandler {
	return &RefreshHandler{sched: sched}
}

// RefreshAll starts a background run over the caller's active keywords.
// Returns 202 once the run is started, 409 if one is already going.
func (h *RefreshHandler) RefreshAll(c fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	if err := h.sched.StartUserRun(user.ID); err != nil {
		if errors.Is(err, scheduler.ErrRunInProgress) {
			return jsonError(c, fiber.StatusConflict, "a refresh is already running")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to start refresh")
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "ok", "data": fiber.Map{"started": true}})
}
