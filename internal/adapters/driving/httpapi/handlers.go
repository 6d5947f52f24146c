package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/custodia-labs/meetsync/internal/core/domain"
	"github.com/custodia-labs/meetsync/internal/core/ports/driving"
	"github.com/custodia-labs/meetsync/internal/logger"
)

// handler holds the driving services behind the HTTP routes.
type handler struct {
	meetings  driving.MeetingReader
	sync      driving.SyncService
	proposals driving.ProposalService
}

// meetingDTO is the wire shape of one meeting. Field names match the
// dashboard's expectations, hence snake_case.
type meetingDTO struct {
	EventID           string            `json:"event_id"`
	Summary           string            `json:"summary"`
	Description       string            `json:"description,omitempty"`
	Location          string            `json:"location,omitempty"`
	MeetingURL        string            `json:"meeting_url,omitempty"`
	OrganizerEmail    string            `json:"organizer_email,omitempty"`
	StartTime         time.Time         `json:"start_time"`
	EndTime           time.Time         `json:"end_time"`
	Attendees         []domain.Attendee `json:"attendees"`
	ExternalAttendees []domain.Attendee `json:"external_attendees"`
	DurationMinutes   int               `json:"duration_minutes"`
	IsImportant       bool              `json:"is_important"`
	CompanyName       string            `json:"company_name"`
	ProposalStatus    string            `json:"proposal_status"`
	SyncedAt          time.Time         `json:"synced_at"`
}

func toMeetingDTO(e *domain.CalendarEvent) meetingDTO {
	dto := meetingDTO{
		EventID:           e.EventID,
		Summary:           e.Summary,
		Description:       e.Description,
		Location:          e.Location,
		MeetingURL:        e.MeetingURL,
		OrganizerEmail:    e.OrganizerEmail,
		StartTime:         e.StartTime,
		EndTime:           e.EndTime,
		Attendees:         e.Attendees,
		ExternalAttendees: e.ExternalAttendees,
		DurationMinutes:   e.DurationMinutes,
		IsImportant:       e.IsImportant,
		CompanyName:       e.CompanyName,
		ProposalStatus:    string(e.ProposalStatus),
		SyncedAt:          e.SyncedAt,
	}
	if dto.Attendees == nil {
		dto.Attendees = []domain.Attendee{}
	}
	if dto.ExternalAttendees == nil {
		dto.ExternalAttendees = []domain.Attendee{}
	}
	return dto
}

// healthCheck handles GET /healthz.
func (h *handler) healthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// listMeetings handles GET /meetings?startDate=YYYY-MM-DD&days=N.
//
// Store failures degrade to an empty list rather than an error payload:
// the dashboard renders an empty state instead of breaking.
func (h *handler) listMeetings(w http.ResponseWriter, r *http.Request) {
	startDate := time.Now().UTC().Truncate(24 * time.Hour)
	if raw := r.URL.Query().Get("startDate"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "startDate must be YYYY-MM-DD")
			return
		}
		startDate = parsed
	}

	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		days = parsed
	}

	events, err := h.meetings.ListWindow(r.Context(), startDate, days)
	if err != nil {
		logger.Warn("Listing meetings failed, degrading to empty list: %v", err)
		events = nil
	}

	dtos := make([]meetingDTO, 0, len(events))
	for i := range events {
		dtos = append(dtos, toMeetingDTO(&events[i]))
	}

	writeJSON(w, http.StatusOK, map[string]any{"meetings": dtos})
}

// getMeeting handles GET /meetings/{id}.
func (h *handler) getMeeting(w http.ResponseWriter, r *http.Request) {
	event, err := h.meetings.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "meeting not found")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "invalid meeting id")
		default:
			logger.Warn("Getting meeting failed: %v", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, toMeetingDTO(event))
}

// syncResponse is the POST /calendar/sync response body.
type syncResponse struct {
	Success      bool   `json:"success"`
	EventsCount  int    `json:"eventsCount"`
	SavedCount   int    `json:"savedCount"`
	SkippedCount int    `json:"skippedCount"`
	ErrorCount   int    `json:"errorCount"`
	LastSync     string `json:"lastSync"`
	Error        string `json:"error,omitempty"`
}

// triggerSync handles POST /calendar/sync.
func (h *handler) triggerSync(w http.ResponseWriter, r *http.Request) {
	report, err := h.sync.Sync(r.Context())
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, domain.ErrSyncInProgress):
			status = http.StatusConflict
		case errors.Is(err, domain.ErrAuthRequired), errors.Is(err, domain.ErrAuthInvalid):
			status = http.StatusServiceUnavailable
		case errors.Is(err, domain.ErrFetchFailed):
			status = http.StatusBadGateway
		}
		logger.Warn("Calendar sync failed: %v", err)
		writeJSON(w, status, syncResponse{Success: false, Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, syncResponse{
		Success:      true,
		EventsCount:  report.EventsCount,
		SavedCount:   report.SyncedCount,
		SkippedCount: report.SkippedCount,
		ErrorCount:   report.ErrorCount,
		LastSync:     report.LastSync.Format(time.RFC3339),
	})
}

// proposalRequest is the POST /generate-proposal request body.
type proposalRequest struct {
	EventID        string   `json:"event_id"`
	CompanyName    string   `json:"company_name"`
	CompanyURLs    []string `json:"company_urls,omitempty"`
	PreviewMode    bool     `json:"preview_mode,omitempty"`
	GenerateSlides bool     `json:"generate_slides,omitempty"`
}

// proposalResponse is the POST /generate-proposal response body.
type proposalResponse struct {
	Success    bool   `json:"success"`
	Proposal   string `json:"proposal,omitempty"`
	Delegated  bool   `json:"delegated,omitempty"`
	Message    string `json:"message,omitempty"`
	SlideURL   string `json:"slide_url,omitempty"`
	SlideCount int    `json:"slide_count,omitempty"`
}

// generateProposal handles POST /generate-proposal.
func (h *handler) generateProposal(w http.ResponseWriter, r *http.Request) {
	if h.proposals == nil {
		writeError(w, http.StatusServiceUnavailable, "proposal generation not configured")
		return
	}

	var req proposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := h.proposals.Generate(r.Context(), driving.ProposalRequest{
		EventID:        req.EventID,
		CompanyName:    req.CompanyName,
		CompanyURLs:    req.CompanyURLs,
		PreviewMode:    req.PreviewMode,
		GenerateSlides: req.GenerateSlides,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "meeting not found")
		case errors.Is(err, domain.ErrGenerationFailed):
			logger.Warn("Proposal generation failed: %v", err)
			writeError(w, http.StatusBadGateway, "proposal generation failed")
		default:
			logger.Warn("Proposal request failed: %v", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, proposalResponse{
		Success:    true,
		Proposal:   result.Preview,
		Delegated:  result.Delegated,
		Message:    result.Message,
		SlideURL:   result.SlideURL,
		SlideCount: result.SlideCount,
	})
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("Writing response failed: %v", err)
	}
}

// writeError writes a JSON error body {"error": msg}.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
