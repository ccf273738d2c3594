package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification type constants
const (
	NotificationPositionFound    = "position_found"
	NotificationPositionLost     = "position_lost"
	NotificationPositionImproved = "position_improved"
	NotificationPositionDeclined = "position_declined"
)

// Notification is a typed position-change event. Rows are created only by
// the ranking diff path and are immutable except for the read flag.
type Notification struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	KeywordID   uuid.UUID `json:"keyword_id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	OldPosition *int      `json:"old_position"`
	NewPosition *int      `json:"new_position"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}
