package models

import "time"

// IPLimit is a per-IP counter for the unauthenticated instant-lookup
// endpoint. The count resets when the last request falls outside the
// configured window.
type IPLimit struct {
	IP            string    `json:"ip"`
	Count         int       `json:"count"`
	LastRequestAt time.Time `json:"last_request_at"`
}
