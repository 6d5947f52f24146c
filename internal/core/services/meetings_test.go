package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/meetsync/internal/core/domain"
)

func TestListWindow(t *testing.T) {
	store := newMockEventStore()
	svc := NewMeetingService(store)
	ctx := context.Background()

	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	for i, offset := range []time.Duration{0, 24 * time.Hour, 10 * 24 * time.Hour} {
		raw := rawEvent("Planning", 30)
		raw.ProviderID = raw.ProviderID + string(rune('a'+i))
		raw.Start = base.Add(offset)
		raw.End = raw.Start.Add(30 * time.Minute)
		event, ok := newTestClassifier().Classify(&raw, base)
		require.True(t, ok)
		require.NoError(t, store.Upsert(ctx, event))
	}

	events, err := svc.ListWindow(ctx, base, 7)
	require.NoError(t, err)
	assert.Len(t, events, 2, "event outside the window is excluded")
}

func TestGetMeeting(t *testing.T) {
	store := newMockEventStore()
	svc := NewMeetingService(store)
	ctx := context.Background()

	event := seedEvent(t, store)

	got, err := svc.Get(ctx, event.EventID)
	require.NoError(t, err)
	assert.Equal(t, event.EventID, got.EventID)

	_, err = svc.Get(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Get(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
