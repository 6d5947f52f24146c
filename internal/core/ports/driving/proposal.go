package driving

import "context"

// ProposalService drafts sales proposals for meetings with external
// attendees, either inline (preview) or by delegating to the workflow
// engine.
type ProposalService interface {
	// Generate handles one proposal request. In preview mode the draft
	// text is returned inline; otherwise the request is delegated and
	// the result describes the acknowledgement. On success the event's
	// proposal status advances to generated.
	Generate(ctx context.Context, req ProposalRequest) (*ProposalResult, error)
}

// ProposalRequest describes one proposal-generation request.
type ProposalRequest struct {
	// EventID identifies the meeting. Required.
	EventID string

	// CompanyName is the counterparty name. Required.
	CompanyName string

	// CompanyURLs are optional research links (max 10).
	CompanyURLs []string

	// PreviewMode returns draft text inline instead of delegating.
	PreviewMode bool

	// GenerateSlides also requests a slide deck (delegated mode only).
	GenerateSlides bool
}

// ProposalResult is the outcome of a proposal request.
type ProposalResult struct {
	// Preview holds the inline draft text in preview mode.
	Preview string

	// Delegated is true when the request was handed to the workflow
	// engine; the artifact arrives out-of-band.
	Delegated bool

	// Message is the engine's acknowledgement message, if any.
	Message string

	// SlideURL and SlideCount are set when the engine generated a deck
	// synchronously.
	SlideURL   string
	SlideCount int
}
