package models

import (
	"time"

	"github.com/google/uuid"
)

// Device type constants
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
)

// Keyword is a tracked (text, domain, location, device) observation.
type Keyword struct {
	ID        uuid.UUID `json:"id"`
	DomainID  uuid.UUID `json:"domain_id"`
	UserID    uuid.UUID `json:"user_id"`
	Text      string    `json:"text"`
	Location  string    `json:"location"`
	Device    string    `json:"device"`
	IsActive  bool      `json:"is_active"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// KeywordWithDomain pairs a keyword with its owning domain for batch checks.
type KeywordWithDomain struct {
	Keyword Keyword `json:"keyword"`
	Domain  Domain  `json:"domain"`
}
