package driven

import "context"

// WorkflowClient delegates proposal and slide generation to an external
// workflow engine (n8n). The engine works asynchronously: a successful
// trigger is only an acknowledgement, the artifact is delivered
// out-of-band (typically by email).
type WorkflowClient interface {
	// TriggerProposal posts the request to the proposal-generation
	// webhook and returns the engine's acknowledgement.
	TriggerProposal(ctx context.Context, req WorkflowRequest) (*WorkflowAck, error)
}

// WorkflowRequest is the payload for the proposal-generation workflow.
type WorkflowRequest struct {
	// RequestID correlates the trigger with the delivered artifact.
	RequestID string `json:"request_id"`

	// EventID identifies the meeting the proposal is for.
	EventID string `json:"event_id"`

	// CompanyName is the counterparty the proposal addresses.
	CompanyName string `json:"company_name"`

	// CompanyURLs are optional research links passed to the workflow.
	CompanyURLs []string `json:"company_urls,omitempty"`

	// GenerateSlides also requests a slide deck.
	GenerateSlides bool `json:"generate_slides,omitempty"`
}

// WorkflowAck is the engine's response to a trigger. The engine may return
// an empty body, in which case adapters synthesise a default success ack.
type WorkflowAck struct {
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
	SlideURL   string `json:"slide_url,omitempty"`
	SlideCount int    `json:"slide_count,omitempty"`
}
