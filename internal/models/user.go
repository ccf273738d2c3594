package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a minimal owner record. Identity is established by the upstream
// authenticating proxy; this service only stores the reference.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
