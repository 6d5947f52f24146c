// Package memory provides in-memory store implementations, used for
// development and tests where a real database is unnecessary.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/meetsync/internal/core/domain"
	"github.com/custodia-labs/meetsync/internal/core/ports/driven"
)

// Ensure EventStore implements the interface.
var _ driven.EventStore = (*EventStore)(nil)

// EventStore is an in-memory implementation of driven.EventStore.
type EventStore struct {
	mu     sync.RWMutex
	events map[string]domain.CalendarEvent
}

// NewEventStore creates a new in-memory event store.
func NewEventStore() *EventStore {
	return &EventStore{
		events: make(map[string]domain.CalendarEvent),
	}
}

// Upsert inserts or replaces the event keyed on EventID.
func (s *EventStore) Upsert(_ context.Context, event *domain.CalendarEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.EventID] = *event
	return nil
}

// Get retrieves one event by id.
func (s *EventStore) Get(_ context.Context, eventID string) (*domain.CalendarEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	event, ok := s.events[eventID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &event, nil
}

// ListRange returns events with StartTime in [from, to), ascending.
func (s *EventStore) ListRange(_ context.Context, from, to time.Time) ([]domain.CalendarEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var events []domain.CalendarEvent
	for _, event := range s.events {
		if !event.StartTime.Before(from) && event.StartTime.Before(to) {
			events = append(events, event)
		}
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].StartTime.Before(events[j].StartTime)
	})

	return events, nil
}

// SetProposalStatus updates the proposal status for one event.
func (s *EventStore) SetProposalStatus(_ context.Context, eventID string, status domain.ProposalStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	event, ok := s.events[eventID]
	if !ok {
		return domain.ErrNotFound
	}
	event.ProposalStatus = status
	s.events[eventID] = event
	return nil
}

// Close is a no-op for the in-memory store.
func (s *EventStore) Close() error {
	return nil
}
