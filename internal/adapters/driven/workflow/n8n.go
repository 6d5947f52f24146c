// Package workflow provides a client for the n8n workflow engine.
package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/meetsync/internal/core/ports/driven"
	"github.com/custodia-labs/meetsync/internal/logger"
)

// Ensure N8NClient implements the interface.
var _ driven.WorkflowClient = (*N8NClient)(nil)

// Default configuration values.
const (
	DefaultTimeout = 30 * time.Second

	// proposalWebhookPath is the n8n webhook route that starts the
	// proposal-generation workflow.
	proposalWebhookPath = "/webhook/generate-proposal"
)

// Config holds configuration for the n8n workflow client.
type Config struct {
	// BaseURL is the n8n instance URL (required), e.g. https://n8n.example.com.
	BaseURL string

	// APIKey is sent as X-N8N-API-KEY when set.
	APIKey string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// N8NClient triggers workflows over n8n webhooks.
type N8NClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewN8NClient creates a new n8n workflow client.
func NewN8NClient(cfg Config) (*N8NClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("n8n: base URL is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &N8NClient{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
	}, nil
}

// TriggerProposal posts the request to the proposal-generation webhook.
// n8n webhooks configured without a response node reply with an empty
// body; that counts as a successful trigger.
func (c *N8NClient) TriggerProposal(ctx context.Context, req driven.WorkflowRequest) (*driven.WorkflowAck, error) {
	jsonBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+proposalWebhookPath,
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("X-N8N-API-KEY", c.apiKey)
	}

	logger.Debug("Triggering proposal workflow for event %s (request %s)", req.EventID, req.RequestID)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("n8n error (status %d): %s", resp.StatusCode, string(body))
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return &driven.WorkflowAck{
			Success: true,
			Message: "Workflow triggered",
		}, nil
	}

	// n8n's default webhook reply is {"message":"Workflow was started"}
	// with no success field; only an explicit success:false or an error
	// field turns a 2xx into a rejection.
	var reply struct {
		Success    *bool  `json:"success"`
		Message    string `json:"message"`
		Error      string `json:"error"`
		SlideURL   string `json:"slide_url"`
		SlideCount int    `json:"slide_count"`
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		// A 2xx with an unparseable body still means the webhook fired.
		logger.Warn("Unparseable n8n response, treating trigger as accepted: %v", err)
		return &driven.WorkflowAck{
			Success: true,
			Message: strings.TrimSpace(string(body)),
		}, nil
	}

	ack := &driven.WorkflowAck{
		Success:    reply.Success == nil || *reply.Success,
		Message:    reply.Message,
		SlideURL:   reply.SlideURL,
		SlideCount: reply.SlideCount,
	}
	if reply.Error != "" {
		ack.Success = false
		if ack.Message == "" {
			ack.Message = reply.Error
		}
	}
	return ack, nil
}
