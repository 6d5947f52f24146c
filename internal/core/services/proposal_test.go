package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/meetsync/internal/core/domain"
	"github.com/custodia-labs/meetsync/internal/core/ports/driven"
	"github.com/custodia-labs/meetsync/internal/core/ports/driving"
)

type mockLLM struct {
	response   string
	err        error
	lastPrompt string
	lastOpts   driven.GenerateOptions
}

func (m *mockLLM) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.lastPrompt = prompt
	m.lastOpts = opts
	return m.response, m.err
}

func (m *mockLLM) ModelName() string { return "gemini-2.0-flash" }
func (m *mockLLM) Close() error      { return nil }

type mockWorkflow struct {
	ack     *driven.WorkflowAck
	err     error
	lastReq driven.WorkflowRequest
}

func (m *mockWorkflow) TriggerProposal(_ context.Context, req driven.WorkflowRequest) (*driven.WorkflowAck, error) {
	m.lastReq = req
	return m.ack, m.err
}

func seedEvent(t *testing.T, store *mockEventStore) *domain.CalendarEvent {
	t.Helper()
	raw := rawEvent("株式会社Acme - 定例会議", 45, "a@acme.co.jp", "me@internal.com")
	event, ok := newTestClassifier().Classify(&raw, raw.Start)
	require.True(t, ok)
	require.NoError(t, store.Upsert(context.Background(), event))
	return event
}

func TestGeneratePreview(t *testing.T) {
	store := newMockEventStore()
	event := seedEvent(t, store)
	llm := &mockLLM{response: "ドラフト本文"}
	svc := NewProposalService(store, llm, &mockWorkflow{})

	result, err := svc.Generate(context.Background(), driving.ProposalRequest{
		EventID:     event.EventID,
		CompanyName: "株式会社Acme",
		PreviewMode: true,
	})

	require.NoError(t, err)
	assert.Equal(t, "ドラフト本文", result.Preview)
	assert.False(t, result.Delegated)
	assert.Equal(t, previewMaxTokens, llm.lastOpts.MaxTokens)
	assert.InDelta(t, previewTemperature, llm.lastOpts.Temperature, 0.001)
	assert.Contains(t, llm.lastPrompt, "株式会社Acme")
	assert.Contains(t, llm.lastPrompt, event.Summary)

	stored, err := store.Get(context.Background(), event.EventID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProposalGenerated, stored.ProposalStatus)
}

func TestGenerateDelegatesToWorkflow(t *testing.T) {
	store := newMockEventStore()
	event := seedEvent(t, store)
	workflow := &mockWorkflow{ack: &driven.WorkflowAck{
		Success:    true,
		Message:    "queued",
		SlideURL:   "https://slides.example.com/deck",
		SlideCount: 8,
	}}
	svc := NewProposalService(store, &mockLLM{}, workflow)

	result, err := svc.Generate(context.Background(), driving.ProposalRequest{
		EventID:        event.EventID,
		CompanyName:    "株式会社Acme",
		CompanyURLs:    []string{"https://acme.co.jp"},
		GenerateSlides: true,
	})

	require.NoError(t, err)
	assert.True(t, result.Delegated)
	assert.Equal(t, "queued", result.Message)
	assert.Equal(t, 8, result.SlideCount)

	assert.Equal(t, event.EventID, workflow.lastReq.EventID)
	assert.NotEmpty(t, workflow.lastReq.RequestID)
	assert.True(t, workflow.lastReq.GenerateSlides)

	stored, err := store.Get(context.Background(), event.EventID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProposalGenerated, stored.ProposalStatus)
}

func TestGenerateWorkflowFailure(t *testing.T) {
	store := newMockEventStore()
	event := seedEvent(t, store)

	tests := []struct {
		name     string
		workflow *mockWorkflow
	}{
		{"transport error", &mockWorkflow{err: errors.New("connection refused")}},
		{"rejected", &mockWorkflow{ack: &driven.WorkflowAck{Success: false, Message: "no workflow"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewProposalService(store, nil, tt.workflow)
			_, err := svc.Generate(context.Background(), driving.ProposalRequest{
				EventID:     event.EventID,
				CompanyName: "Acme",
			})
			assert.ErrorIs(t, err, domain.ErrGenerationFailed)

			stored, getErr := store.Get(context.Background(), event.EventID)
			require.NoError(t, getErr)
			assert.Equal(t, domain.ProposalPending, stored.ProposalStatus)
		})
	}
}

func TestGenerateUnknownEvent(t *testing.T) {
	svc := NewProposalService(newMockEventStore(), &mockLLM{}, &mockWorkflow{})

	_, err := svc.Generate(context.Background(), driving.ProposalRequest{
		EventID:     "missing",
		CompanyName: "Acme",
	})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGenerateValidation(t *testing.T) {
	store := newMockEventStore()
	seedEvent(t, store)
	svc := NewProposalService(store, &mockLLM{}, &mockWorkflow{})

	tests := []struct {
		name string
		req  driving.ProposalRequest
	}{
		{"missing event id", driving.ProposalRequest{CompanyName: "Acme"}},
		{"event id too long", driving.ProposalRequest{EventID: strings.Repeat("a", 101), CompanyName: "Acme"}},
		{"missing company name", driving.ProposalRequest{EventID: "e1"}},
		{"company name too long", driving.ProposalRequest{EventID: "e1", CompanyName: strings.Repeat("あ", 201)}},
		{"company name markup", driving.ProposalRequest{EventID: "e1", CompanyName: "<script>Acme"}},
		{"too many urls", driving.ProposalRequest{
			EventID: "e1", CompanyName: "Acme",
			CompanyURLs: make([]string, 11),
		}},
		{"non-http url", driving.ProposalRequest{
			EventID: "e1", CompanyName: "Acme",
			CompanyURLs: []string{"ftp://acme.co.jp"},
		}},
		{"url too long", driving.ProposalRequest{
			EventID: "e1", CompanyName: "Acme",
			CompanyURLs: []string{"https://acme.co.jp/" + strings.Repeat("x", 2000)},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Generate(context.Background(), tt.req)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestGeneratePreviewWithoutLLM(t *testing.T) {
	store := newMockEventStore()
	event := seedEvent(t, store)
	svc := NewProposalService(store, nil, &mockWorkflow{})

	_, err := svc.Generate(context.Background(), driving.ProposalRequest{
		EventID:     event.EventID,
		CompanyName: "Acme",
		PreviewMode: true,
	})

	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
}
