package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/meetsync/internal/core/domain"
	"github.com/custodia-labs/meetsync/internal/core/ports/driven"
	"github.com/custodia-labs/meetsync/internal/core/ports/driving"
)

var _ driving.MeetingReader = (*MeetingService)(nil)

// MeetingService serves synced events out of the store.
type MeetingService struct {
	store driven.EventStore
}

// NewMeetingService creates a meeting reader backed by the event store.
func NewMeetingService(store driven.EventStore) *MeetingService {
	return &MeetingService{store: store}
}

// ListWindow returns events starting in [startDate, startDate + days),
// ascending. days <= 0 means DefaultWindowDays.
func (s *MeetingService) ListWindow(ctx context.Context, startDate time.Time, days int) ([]domain.CalendarEvent, error) {
	if days <= 0 {
		days = DefaultWindowDays
	}
	until := startDate.AddDate(0, 0, days)

	events, err := s.store.ListRange(ctx, startDate, until)
	if err != nil {
		return nil, fmt.Errorf("listing meetings: %w", err)
	}
	return events, nil
}

// Get returns one event by id.
func (s *MeetingService) Get(ctx context.Context, eventID string) (*domain.CalendarEvent, error) {
	if eventID == "" {
		return nil, fmt.Errorf("%w: event id is required", domain.ErrInvalidInput)
	}
	event, err := s.store.Get(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("getting meeting %s: %w", eventID, err)
	}
	return event, nil
}
