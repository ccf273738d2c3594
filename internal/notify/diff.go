// Package notify turns two successive ranking positions into at most one
// typed notification event.
package notify

import (
	"fmt"

	"serptrack/internal/models"
)

// Event describes a position change worth telling the user about.
type Event struct {
	Type        string
	Title       string
	Message     string
	OldPosition *int
	NewPosition *int
}

// Diff compares the previous and current position for a keyword and returns
// the event for the transition, or nil when nothing changed. A nil position
// means "not found in the checked window". Lower positions are better.
//
// Callers must invoke Diff at most once per (keyword, check execution) pair;
// each returned event becomes exactly one notification row.
func Diff(previous, current *int, keywordText string) *Event {
	switch {
	case previous == nil && current == nil:
		return nil
	case previous == nil && current != nil:
		return &Event{
			Type:        models.NotificationPositionFound,
			Title:       "Keyword ranked",
			Message:     fmt.Sprintf("%q entered the search results at position %d", keywordText, *current),
			NewPosition: intPtr(*current),
		}
	case previous != nil && current == nil:
		return &Event{
			Type:        models.NotificationPositionLost,
			Title:       "Keyword dropped out",
			Message:     fmt.Sprintf("%q is no longer in the top 100 (was position %d)", keywordText, *previous),
			OldPosition: intPtr(*previous),
		}
	case *previous == *current:
		return nil
	case *current < *previous:
		return &Event{
			Type:        models.NotificationPositionImproved,
			Title:       "Position improved",
			Message:     fmt.Sprintf("%q moved up from position %d to %d", keywordText, *previous, *current),
			OldPosition: intPtr(*previous),
			NewPosition: intPtr(*current),
		}
	default:
		return &Event{
			Type:        models.NotificationPositionDeclined,
			Title:       "Position declined",
			Message:     fmt.Sprintf("%q moved down from position %d to %d", keywordText, *previous, *current),
			OldPosition: intPtr(*previous),
			NewPosition: intPtr(*current),
		}
	}
}

// intPtr copies v so events never alias caller-owned pointers.
func intPtr(v int) *int {
	return &v
}
