package domain

import "time"

// ProposalStatus tracks the proposal lifecycle for an event.
type ProposalStatus string

const (
	// ProposalPending means no proposal has been generated yet.
	ProposalPending ProposalStatus = "pending"
	// ProposalGenerated means a proposal draft has been produced or delegated.
	ProposalGenerated ProposalStatus = "generated"
	// ProposalCompleted means the proposal was delivered to the customer.
	ProposalCompleted ProposalStatus = "completed"
)

// Valid reports whether the status is one of the known values.
func (s ProposalStatus) Valid() bool {
	switch s {
	case ProposalPending, ProposalGenerated, ProposalCompleted:
		return true
	}
	return false
}

// Attendee is a meeting participant as reported by the calendar provider.
type Attendee struct {
	// Email is the participant's address. Always lowercase.
	Email string `json:"email"`

	// Name is the display name, falling back to the email local part.
	Name string `json:"name"`

	// ResponseStatus is the provider RSVP state (accepted, declined,
	// tentative, needsAction).
	ResponseStatus string `json:"response_status"`

	// IsOrganizer marks the meeting organiser.
	IsOrganizer bool `json:"is_organizer"`
}

// Domain returns the part of the email after '@', or "" if malformed.
func (a Attendee) Domain() string {
	for i := len(a.Email) - 1; i >= 0; i-- {
		if a.Email[i] == '@' {
			return a.Email[i+1:]
		}
	}
	return ""
}

// RawEvent is a provider event before classification. Fields mirror what
// the calendar API returns; optional fields are zero-valued when absent.
type RawEvent struct {
	// ProviderID is the calendar provider's event id.
	ProviderID string

	// Summary is the event title.
	Summary string

	// Description is the free-text body.
	Description string

	// Location is the free-text location.
	Location string

	// MeetingURL is the conference link (hangoutLink), if any.
	MeetingURL string

	// OrganizerEmail is the organiser's address, if known.
	OrganizerEmail string

	// Status is the provider status (confirmed, tentative, cancelled).
	Status string

	// Start and End are resolved timestamps. A zero value means the
	// provider supplied neither a dateTime nor a date for that bound.
	Start time.Time
	End   time.Time

	// Attendees is the participant list in provider order.
	Attendees []Attendee
}

// CalendarEvent is a classified meeting, one row in the event store.
// EventID uniquely identifies the row; re-syncing the same provider event
// replaces all fields (last-write-wins upsert).
type CalendarEvent struct {
	// EventID is the stable identifier derived from the provider event id.
	EventID string

	Summary     string
	Description string
	Location    string
	MeetingURL  string

	// OrganizerEmail is the organiser's address.
	OrganizerEmail string

	// StartTime and EndTime bound the meeting. Both are always set;
	// events missing either bound are dropped during classification.
	StartTime time.Time
	EndTime   time.Time

	// Attendees is the full participant list in provider order.
	Attendees []Attendee

	// ExternalAttendees is the subset of Attendees whose email domain is
	// not in the configured internal-domain allowlist.
	ExternalAttendees []Attendee

	// DurationMinutes is (EndTime - StartTime) rounded to minutes.
	DurationMinutes int

	// IsImportant is true when the meeting is long enough to matter and
	// has at least one external attendee.
	IsImportant bool

	// CompanyName is the best-effort counterparty name inferred from the
	// summary or the first external attendee's domain. Heuristic only.
	CompanyName string

	// ProposalStatus tracks proposal generation for this meeting.
	ProposalStatus ProposalStatus

	// SyncedAt is when this row was last written.
	SyncedAt time.Time
}

// HasExternalAttendees reports whether any attendee is external.
func (e *CalendarEvent) HasExternalAttendees() bool {
	return len(e.ExternalAttendees) > 0
}
