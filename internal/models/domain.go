package models

import (
	"time"

	"github.com/google/uuid"
)

// Domain is a tracked site. The URL string is immutable after creation;
// changing it means delete and recreate.
type Domain struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	URL       string    `json:"url"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
