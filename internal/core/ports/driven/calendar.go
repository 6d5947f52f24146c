package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/meetsync/internal/core/domain"
)

// CalendarGateway lists events from the external calendar provider.
// Implementations handle authentication, pagination and rate limiting
// internally; a failure here aborts the sync run (no cached fallback).
type CalendarGateway interface {
	// ListUpcoming returns raw events with a start time in [from, to),
	// ascending by start time, with recurring events expanded into
	// instances.
	ListUpcoming(ctx context.Context, from, to time.Time) ([]domain.RawEvent, error)
}
