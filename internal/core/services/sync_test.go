package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/meetsync/internal/core/domain"
)

type mockTokenProvider struct {
	token string
	err   error
}

func (m *mockTokenProvider) GetToken(_ context.Context) (string, error) {
	return m.token, m.err
}

func (m *mockTokenProvider) Strategy() string { return "oauth" }

type mockCalendar struct {
	events  []domain.RawEvent
	err     error
	block   chan struct{} // when non-nil, ListUpcoming waits on it
	started chan struct{}
}

func (m *mockCalendar) ListUpcoming(_ context.Context, _, _ time.Time) ([]domain.RawEvent, error) {
	if m.started != nil {
		close(m.started)
	}
	if m.block != nil {
		<-m.block
	}
	return m.events, m.err
}

type mockEventStore struct {
	mu        sync.Mutex
	events    map[string]*domain.CalendarEvent
	upsertErr error
}

func newMockEventStore() *mockEventStore {
	return &mockEventStore{events: map[string]*domain.CalendarEvent{}}
}

func (m *mockEventStore) Upsert(_ context.Context, event *domain.CalendarEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	clone := *event
	m.events[event.EventID] = &clone
	return nil
}

func (m *mockEventStore) Get(_ context.Context, eventID string) (*domain.CalendarEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	event, ok := m.events[eventID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *event
	return &clone, nil
}

func (m *mockEventStore) ListRange(_ context.Context, from, to time.Time) ([]domain.CalendarEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.CalendarEvent
	for _, e := range m.events {
		if !e.StartTime.Before(from) && e.StartTime.Before(to) {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m *mockEventStore) SetProposalStatus(_ context.Context, eventID string, status domain.ProposalStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	event, ok := m.events[eventID]
	if !ok {
		return domain.ErrNotFound
	}
	event.ProposalStatus = status
	return nil
}

func (m *mockEventStore) Close() error { return nil }

func (m *mockEventStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

func newSyncFixture(calendar *mockCalendar, store *mockEventStore) *SyncService {
	return NewSyncService(
		&mockTokenProvider{token: "tok"},
		calendar,
		store,
		newTestClassifier(),
		7,
	)
}

func TestSyncCountsAndPersists(t *testing.T) {
	calendar := &mockCalendar{events: []domain.RawEvent{
		rawEvent("株式会社Acme - 定例会議", 45, "a@acme.co.jp", "me@internal.com"),
		rawEvent("Quick chat", 10), // dropped: too short
		rawEvent("Planning", 30, "me@internal.com"),
	}}
	store := newMockEventStore()
	svc := newSyncFixture(calendar, store)

	report, err := svc.Sync(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, report.EventsCount)
	assert.Equal(t, 2, report.SyncedCount)
	assert.Equal(t, 1, report.SkippedCount)
	assert.Equal(t, 0, report.ErrorCount)
	assert.False(t, report.LastSync.IsZero())
	assert.Equal(t, 2, store.count())
}

func TestSyncIsIdempotent(t *testing.T) {
	calendar := &mockCalendar{events: []domain.RawEvent{
		rawEvent("Planning", 30, "a@acme.co.jp"),
	}}
	store := newMockEventStore()
	svc := newSyncFixture(calendar, store)

	_, err := svc.Sync(context.Background())
	require.NoError(t, err)
	report, err := svc.Sync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.SyncedCount)
	assert.Equal(t, 1, store.count(), "re-sync replaces, never duplicates")
}

func TestSyncAuthFailureAborts(t *testing.T) {
	svc := NewSyncService(
		&mockTokenProvider{err: errors.New("invalid_grant")},
		&mockCalendar{},
		newMockEventStore(),
		newTestClassifier(),
		7,
	)

	report, err := svc.Sync(context.Background())

	assert.Nil(t, report)
	assert.ErrorIs(t, err, domain.ErrAuthInvalid)
}

func TestSyncFetchFailureAborts(t *testing.T) {
	store := newMockEventStore()
	svc := newSyncFixture(&mockCalendar{err: errors.New("boom")}, store)

	report, err := svc.Sync(context.Background())

	assert.Nil(t, report)
	assert.ErrorIs(t, err, domain.ErrFetchFailed)
	assert.Equal(t, 0, store.count())
}

func TestSyncUpsertFailuresAreCounted(t *testing.T) {
	calendar := &mockCalendar{events: []domain.RawEvent{
		rawEvent("Planning", 30, "a@acme.co.jp"),
		rawEvent("Review", 30, "b@acme.co.jp"),
	}}
	store := newMockEventStore()
	store.upsertErr = errors.New("connection reset")
	svc := newSyncFixture(calendar, store)

	report, err := svc.Sync(context.Background())

	require.NoError(t, err, "per-event store failures do not abort the run")
	assert.Equal(t, 2, report.ErrorCount)
	assert.Equal(t, 0, report.SyncedCount)
}

func TestSyncRejectsConcurrentRuns(t *testing.T) {
	calendar := &mockCalendar{
		block:   make(chan struct{}),
		started: make(chan struct{}),
	}
	svc := newSyncFixture(calendar, newMockEventStore())

	done := make(chan error, 1)
	go func() {
		_, err := svc.Sync(context.Background())
		done <- err
	}()

	<-calendar.started
	_, err := svc.Sync(context.Background())
	assert.ErrorIs(t, err, domain.ErrSyncInProgress)

	close(calendar.block)
	require.NoError(t, <-done)
}

func TestSyncLastReport(t *testing.T) {
	svc := newSyncFixture(&mockCalendar{}, newMockEventStore())

	assert.Nil(t, svc.LastReport())

	_, err := svc.Sync(context.Background())
	require.NoError(t, err)

	report := svc.LastReport()
	require.NotNil(t, report)
	assert.Equal(t, 0, report.EventsCount)
}
