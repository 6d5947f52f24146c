package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/meetsync/internal/core/domain"
)

// MeetingReader serves previously synced events to the dashboard.
type MeetingReader interface {
	// ListWindow returns events with a start time in
	// [startDate, startDate + days), ascending by start time.
	ListWindow(ctx context.Context, startDate time.Time, days int) ([]domain.CalendarEvent, error)

	// Get returns one event by id.
	Get(ctx context.Context, eventID string) (*domain.CalendarEvent, error)
}
