package calendar

import (
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/custodia-labs/meetsync/internal/core/domain"
)

// EventToRaw converts a Google Calendar event to a RawEvent.
// Time bounds that the provider omits stay zero-valued; the classifier
// decides what to do with them.
func EventToRaw(event *calendar.Event) domain.RawEvent {
	return domain.RawEvent{
		ProviderID:     event.Id,
		Summary:        event.Summary,
		Description:    event.Description,
		Location:       event.Location,
		MeetingURL:     event.HangoutLink,
		OrganizerEmail: getOrganiserEmail(event),
		Status:         event.Status,
		Start:          resolveEventTime(event.Start),
		End:            resolveEventTime(event.End),
		Attendees:      mapAttendees(event.Attendees),
	}
}

// resolveEventTime resolves one time bound, preferring the timed form
// over the all-day date form.
func resolveEventTime(t *calendar.EventDateTime) time.Time {
	if t == nil {
		return time.Time{}
	}
	if t.DateTime != "" {
		if parsed, err := time.Parse(time.RFC3339, t.DateTime); err == nil {
			return parsed
		}
		return time.Time{}
	}
	if t.Date != "" {
		if parsed, err := time.Parse("2006-01-02", t.Date); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// mapAttendees converts the attendee list, skipping rooms and other
// resources so they never count as meeting participants.
func mapAttendees(attendees []*calendar.EventAttendee) []domain.Attendee {
	if len(attendees) == 0 {
		return nil
	}
	out := make([]domain.Attendee, 0, len(attendees))
	for _, a := range attendees {
		if a == nil || a.Resource || a.Email == "" {
			continue
		}
		out = append(out, domain.Attendee{
			Email:          a.Email,
			Name:           a.DisplayName,
			ResponseStatus: a.ResponseStatus,
			IsOrganizer:    a.Organizer,
		})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// getOrganiserEmail extracts the organiser email from an event.
func getOrganiserEmail(event *calendar.Event) string {
	if event.Organizer != nil { //nolint:misspell // Google API field name
		return event.Organizer.Email //nolint:misspell // Google API field name
	}
	return ""
}

// ShouldSyncEvent checks if an event should enter the pipeline.
// Cancelled instances of recurring events arrive with status "cancelled"
// and no useful payload.
func ShouldSyncEvent(event *calendar.Event) bool {
	return event != nil && event.Id != "" && event.Status != "cancelled"
}
