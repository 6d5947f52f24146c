package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/meetsync/internal/core/domain"
)

func newTestClassifier() *Classifier {
	return NewClassifier(ClassifierConfig{
		InternalDomains: []string{"internal.com"},
	})
}

func rawEvent(summary string, minutes int, emails ...string) domain.RawEvent {
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	attendees := make([]domain.Attendee, len(emails))
	for i, e := range emails {
		attendees[i] = domain.Attendee{Email: e}
	}
	return domain.RawEvent{
		ProviderID: "evt-" + summary,
		Summary:    summary,
		Start:      start,
		End:        start.Add(time.Duration(minutes) * time.Minute),
		Attendees:  attendees,
	}
}

func TestClassifyImportantExternalMeeting(t *testing.T) {
	c := newTestClassifier()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	raw := rawEvent("株式会社Acme - 定例会議", 45, "a@acme.co.jp", "me@internal.com")
	event, ok := c.Classify(&raw, now)

	require.True(t, ok)
	require.NotNil(t, event)
	assert.Equal(t, 45, event.DurationMinutes)
	assert.Len(t, event.ExternalAttendees, 1)
	assert.Equal(t, "a@acme.co.jp", event.ExternalAttendees[0].Email)
	assert.True(t, event.IsImportant)
	assert.Equal(t, "株式会社Acme", event.CompanyName)
	assert.Equal(t, domain.ProposalPending, event.ProposalStatus)
	assert.Equal(t, now, event.SyncedAt)
}

func TestClassifySkipsInvalidEvents(t *testing.T) {
	c := newTestClassifier()
	now := time.Now()
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		raw  domain.RawEvent
	}{
		{
			name: "missing provider id",
			raw:  domain.RawEvent{Start: start, End: start.Add(30 * time.Minute)},
		},
		{
			name: "missing start",
			raw:  domain.RawEvent{ProviderID: "e1", End: start.Add(30 * time.Minute)},
		},
		{
			name: "missing end",
			raw:  domain.RawEvent{ProviderID: "e2", Start: start},
		},
		{
			name: "too short",
			raw:  rawEvent("Quick chat", 10),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, ok := c.Classify(&tt.raw, now)
			assert.False(t, ok)
			assert.Nil(t, event)
		})
	}
}

func TestClassifyDurationBoundaries(t *testing.T) {
	c := newTestClassifier()
	now := time.Now()

	// Exactly the minimum survives.
	raw := rawEvent("Standup", 15, "me@internal.com")
	event, ok := c.Classify(&raw, now)
	require.True(t, ok)
	assert.Equal(t, 15, event.DurationMinutes)
	assert.False(t, event.IsImportant)

	// Long but internal-only is not important.
	raw = rawEvent("Planning", 60, "me@internal.com", "you@internal.com")
	event, ok = c.Classify(&raw, now)
	require.True(t, ok)
	assert.Empty(t, event.ExternalAttendees)
	assert.False(t, event.IsImportant)

	// Short external meeting is not important either.
	raw = rawEvent("Intro", 20, "a@acme.co.jp")
	event, ok = c.Classify(&raw, now)
	require.True(t, ok)
	assert.Len(t, event.ExternalAttendees, 1)
	assert.False(t, event.IsImportant)
}

func TestClassifyConfigurableThresholds(t *testing.T) {
	c := NewClassifier(ClassifierConfig{
		InternalDomains:          []string{"internal.com"},
		MinDurationMinutes:       30,
		ImportantDurationMinutes: 60,
	})
	now := time.Now()

	raw := rawEvent("Sync", 20, "a@acme.co.jp")
	_, ok := c.Classify(&raw, now)
	assert.False(t, ok, "below raised minimum")

	raw = rawEvent("Review", 45, "a@acme.co.jp")
	event, ok := c.Classify(&raw, now)
	require.True(t, ok)
	assert.False(t, event.IsImportant, "below raised importance cutoff")

	raw = rawEvent("Workshop", 90, "a@acme.co.jp")
	event, ok = c.Classify(&raw, now)
	require.True(t, ok)
	assert.True(t, event.IsImportant)
}

func TestCompanyNameRuleTable(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		name    string
		summary string
		want    string
	}{
		{"jp prefix", "株式会社Acme 定例", "株式会社Acme"},
		{"jp suffix", "アクメ株式会社 打ち合わせ", "アクメ株式会社"},
		{"jp suffix exact", "テスト株式会社", "テスト株式会社"},
		{"en suffix", "Acme Inc. kickoff", "Acme Inc."},
		{"lenticular bracket", "【アクメ】定例会議", "アクメ"},
		{"square bracket", "[Acme] weekly", "Acme"},
		{"corner bracket", "「アクメ」相談", "アクメ"},
		{"with", "Intro call with Acme", "Acme"},
		{"at sign", "打ち合わせ @ Acme", "Acme"},
		{"dash", "定例 - アクメ", "アクメ"},
		{"prefix beats bracket", "【無視】株式会社Acme", "株式会社Acme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.companyName(tt.summary, nil)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompanyNameDomainFallback(t *testing.T) {
	c := newTestClassifier()

	// No rule matches the summary; the first external corporate domain wins.
	external := []domain.Attendee{
		{Email: "someone@gmail.com"},
		{Email: "a@acme.co.jp"},
	}
	assert.Equal(t, "Acme", c.companyName("Weekly catchup", external))

	// Public mail providers alone never name a company.
	external = []domain.Attendee{{Email: "someone@gmail.com"}}
	assert.Equal(t, "Weekly catchup", c.companyName("Weekly catchup", external))
}

func TestCompanyNameSummaryFallback(t *testing.T) {
	c := newTestClassifier()

	long := "とても長い会議の名前でルールにはまったく一致しないものですから切り詰められます"
	got := c.companyName(long, nil)
	assert.Equal(t, string([]rune(long)[:companyNameMaxLen]), got)
	assert.Len(t, []rune(got), companyNameMaxLen)

	assert.Equal(t, UnknownCompany, c.companyName("", nil))
	assert.Equal(t, UnknownCompany, c.companyName("   ", nil))
}

func TestClassifyNormalisesAttendees(t *testing.T) {
	c := newTestClassifier()
	now := time.Now()

	raw := rawEvent("Planning", 30, "ME@Internal.com")
	raw.Attendees[0].Name = ""
	event, ok := c.Classify(&raw, now)

	require.True(t, ok)
	require.Len(t, event.Attendees, 1)
	assert.Equal(t, "me@internal.com", event.Attendees[0].Email)
	assert.Equal(t, "me", event.Attendees[0].Name)
	assert.Equal(t, "needsAction", event.Attendees[0].ResponseStatus)
	assert.Empty(t, event.ExternalAttendees)
}

func TestClassifyStableEventID(t *testing.T) {
	c := newTestClassifier()
	now := time.Now()

	raw := rawEvent("Planning", 30)
	first, ok := c.Classify(&raw, now)
	require.True(t, ok)
	second, ok := c.Classify(&raw, now.Add(time.Hour))
	require.True(t, ok)

	assert.Equal(t, first.EventID, second.EventID)
	assert.Len(t, first.EventID, 32, "hex md5 digest")

	other := rawEvent("Other", 30)
	third, ok := c.Classify(&other, now)
	require.True(t, ok)
	assert.NotEqual(t, first.EventID, third.EventID)
}
