package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/meetsync/internal/core/domain"
)

// EventStore persists classified calendar events keyed by event id.
// Upsert is last-write-wins: re-syncing the same provider event replaces
// all fields rather than duplicating the row.
type EventStore interface {
	// Upsert inserts or replaces the event row keyed on EventID.
	Upsert(ctx context.Context, event *domain.CalendarEvent) error

	// Get retrieves one event by id. Returns domain.ErrNotFound when the
	// row does not exist.
	Get(ctx context.Context, eventID string) (*domain.CalendarEvent, error)

	// ListRange returns events with StartTime in [from, to), ascending
	// by StartTime.
	ListRange(ctx context.Context, from, to time.Time) ([]domain.CalendarEvent, error)

	// SetProposalStatus updates the proposal status for one event.
	// Returns domain.ErrNotFound when the row does not exist.
	SetProposalStatus(ctx context.Context, eventID string, status domain.ProposalStatus) error

	// Close releases the underlying connection pool.
	Close() error
}
