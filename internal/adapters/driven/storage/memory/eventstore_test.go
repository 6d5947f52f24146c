package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/meetsync/internal/core/domain"
)

func testEvent(id string, start time.Time) *domain.CalendarEvent {
	return &domain.CalendarEvent{
		EventID:        id,
		Summary:        "Meeting " + id,
		StartTime:      start,
		EndTime:        start.Add(30 * time.Minute),
		ProposalStatus: domain.ProposalPending,
	}
}

func TestEventStore_UpsertAndGet(t *testing.T) {
	store := NewEventStore()
	ctx := context.Background()
	start := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	require.NoError(t, store.Upsert(ctx, testEvent("e1", start)))

	got, err := store.Get(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "Meeting e1", got.Summary)

	// Upsert with the same id replaces the row.
	updated := testEvent("e1", start)
	updated.Summary = "Renamed"
	require.NoError(t, store.Upsert(ctx, updated))

	got, err = store.Get(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Summary)
}

func TestEventStore_GetNotFound(t *testing.T) {
	store := NewEventStore()

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEventStore_GetReturnsCopy(t *testing.T) {
	store := NewEventStore()
	ctx := context.Background()
	start := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	require.NoError(t, store.Upsert(ctx, testEvent("e1", start)))

	first, err := store.Get(ctx, "e1")
	require.NoError(t, err)
	first.Summary = "mutated"

	second, err := store.Get(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "Meeting e1", second.Summary)
}

func TestEventStore_ListRange(t *testing.T) {
	store := NewEventStore()
	ctx := context.Background()
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	// Inserted out of order on purpose.
	require.NoError(t, store.Upsert(ctx, testEvent("late", base.Add(48*time.Hour))))
	require.NoError(t, store.Upsert(ctx, testEvent("first", base)))
	require.NoError(t, store.Upsert(ctx, testEvent("second", base.Add(2*time.Hour))))
	require.NoError(t, store.Upsert(ctx, testEvent("before", base.Add(-time.Hour))))

	events, err := store.ListRange(ctx, base, base.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "first", events[0].EventID)
	assert.Equal(t, "second", events[1].EventID)
}

func TestEventStore_ListRangeExclusiveUpperBound(t *testing.T) {
	store := NewEventStore()
	ctx := context.Background()
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	require.NoError(t, store.Upsert(ctx, testEvent("boundary", base.Add(24*time.Hour))))

	events, err := store.ListRange(ctx, base, base.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestEventStore_SetProposalStatus(t *testing.T) {
	store := NewEventStore()
	ctx := context.Background()
	start := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	require.NoError(t, store.Upsert(ctx, testEvent("e1", start)))
	require.NoError(t, store.SetProposalStatus(ctx, "e1", domain.ProposalGenerated))

	got, err := store.Get(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, domain.ProposalGenerated, got.ProposalStatus)

	err = store.SetProposalStatus(ctx, "missing", domain.ProposalGenerated)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
