package api

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"serptrack/internal/db"
	"serptrack/internal/middleware"
)

const defaultNotificationLimit = 50

// NotificationHandler serves ranking-change notifications.
type NotificationHandler struct {
	db *db.DB
}

// NewNotificationHandler creates a new notification handler.
func NewNotificationHandler(database *db.DB) *NotificationHandler {
	return &NotificationHandler{db: database}
}

// List returns the caller's notifications, newest first. Pass ?unread=true
// to restrict to unread ones.
func (h *NotificationHandler) List(c fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	unreadOnly := fiber.Query(c, "unread", false)
	limit := fiber.Query(c, "limit", defaultNotificationLimit)
	if limit <= 0 || limit > 200 {
		limit = defaultNotificationLimit
	}

	notifications, err := h.db.ListNotificationsByUser(c.Context(), user.ID, unreadOnly, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to list notifications")
	}
	return jsonSuccess(c, notifications)
}

// MarkRead marks a single notification as read.
func (h *NotificationHandler) MarkRead(c fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid notification id")
	}

	if err := h.db.MarkNotificationRead(c.Context(), id, user.ID); err != nil {
		if errors.Is(err, db.ErrNotificationNotFound) {
			return jsonError(c, fiber.StatusNotFound, "notification not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to update notification")
	}
	return jsonSuccess(c, fiber.Map{"id": id, "is_read": true})
}

// MarkAllRead marks every unread notification of the caller as read.
func (h *NotificationHandler) MarkAllRead(c fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	if err := h.db.MarkAllNotificationsRead(c.Context(), user.ID); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to update notifications")
	}
	return jsonSuccess(c, fiber.Map{"status": "ok"})
}
