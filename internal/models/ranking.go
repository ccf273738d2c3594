package models

import (
	"time"

	"github.com/google/uuid"
)

// Ranking is one append-only history row for a keyword check. A nil Position
// is a persisted "not found in the top 100", not a missing value. Rows are
// never updated or deleted individually; the latest row for a keyword is the
// most recent by CheckedAt.
type Ranking struct {
	ID        uuid.UUID `json:"id"`
	KeywordID uuid.UUID `json:"keyword_id"`
	Position  *int      `json:"position"`
	CheckedAt time.Time `json:"checked_at"`
}

// Found reports whether the domain was present in the checked window.
func (r *Ranking) Found() bool {
	return r.Position != nil
}
