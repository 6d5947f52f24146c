package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttendeeDomain(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  string
	}{
		{"normal address", "alice@acme.co.jp", "acme.co.jp"},
		{"no at sign", "not-an-email", ""},
		{"empty", "", ""},
		{"trailing at", "weird@", ""},
		{"multiple at signs uses last", "a@b@example.com", "example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Attendee{Email: tt.email}
			assert.Equal(t, tt.want, a.Domain())
		})
	}
}

func TestProposalStatusValid(t *testing.T) {
	assert.True(t, ProposalPending.Valid())
	assert.True(t, ProposalGenerated.Valid())
	assert.True(t, ProposalCompleted.Valid())
	assert.False(t, ProposalStatus("draft").Valid())
	assert.False(t, ProposalStatus("").Valid())
}

func TestHasExternalAttendees(t *testing.T) {
	e := &CalendarEvent{}
	assert.False(t, e.HasExternalAttendees())

	e.ExternalAttendees = []Attendee{{Email: "a@acme.co.jp"}}
	assert.True(t, e.HasExternalAttendees())
}
