package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/meetsync/internal/core/domain"
	"github.com/custodia-labs/meetsync/internal/core/ports/driven"
	"github.com/custodia-labs/meetsync/internal/core/ports/driving"
	"github.com/custodia-labs/meetsync/internal/logger"
)

// Request validation limits.
const (
	maxEventIDLen     = 100
	maxCompanyNameLen = 200
	maxCompanyURLs    = 10
	maxCompanyURLLen  = 2000

	previewMaxTokens   = 1000
	previewTemperature = 0.7
)

var _ driving.ProposalService = (*ProposalService)(nil)

// ProposalService drafts proposals inline via the LLM (preview mode) or
// delegates generation to the workflow engine.
type ProposalService struct {
	store    driven.EventStore
	llm      driven.LLMService
	workflow driven.WorkflowClient
}

// NewProposalService creates a proposal service. llm and workflow are each
// optional; a request requiring a missing dependency fails with
// ErrGenerationFailed.
func NewProposalService(store driven.EventStore, llm driven.LLMService, workflow driven.WorkflowClient) *ProposalService {
	return &ProposalService{store: store, llm: llm, workflow: workflow}
}

// Generate handles one proposal request.
func (s *ProposalService) Generate(ctx context.Context, req driving.ProposalRequest) (*driving.ProposalResult, error) {
	if err := validateProposalRequest(req); err != nil {
		return nil, err
	}

	event, err := s.store.Get(ctx, req.EventID)
	if err != nil {
		return nil, fmt.Errorf("looking up event %s: %w", req.EventID, err)
	}

	var result *driving.ProposalResult
	if req.PreviewMode {
		result, err = s.preview(ctx, event, req)
	} else {
		result, err = s.delegate(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	if err := s.store.SetProposalStatus(ctx, req.EventID, domain.ProposalGenerated); err != nil {
		logger.Warn("Proposal generated but status update failed for %s: %v", req.EventID, err)
	}

	return result, nil
}

// preview drafts the proposal text inline via the LLM.
func (s *ProposalService) preview(ctx context.Context, event *domain.CalendarEvent, req driving.ProposalRequest) (*driving.ProposalResult, error) {
	if s.llm == nil {
		return nil, fmt.Errorf("%w: no LLM configured for preview mode", domain.ErrGenerationFailed)
	}

	prompt := buildProposalPrompt(event, req.CompanyName, req.CompanyURLs)

	logger.Debug("Drafting proposal preview for %s with %s", req.EventID, s.llm.ModelName())

	text, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   previewMaxTokens,
		Temperature: previewTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}

	return &driving.ProposalResult{Preview: text}, nil
}

// delegate hands the request to the workflow engine.
func (s *ProposalService) delegate(ctx context.Context, req driving.ProposalRequest) (*driving.ProposalResult, error) {
	if s.workflow == nil {
		return nil, fmt.Errorf("%w: no workflow engine configured", domain.ErrGenerationFailed)
	}

	ack, err := s.workflow.TriggerProposal(ctx, driven.WorkflowRequest{
		RequestID:      uuid.NewString(),
		EventID:        req.EventID,
		CompanyName:    req.CompanyName,
		CompanyURLs:    req.CompanyURLs,
		GenerateSlides: req.GenerateSlides,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}
	if !ack.Success {
		return nil, fmt.Errorf("%w: workflow rejected the request: %s", domain.ErrGenerationFailed, ack.Message)
	}

	return &driving.ProposalResult{
		Delegated:  true,
		Message:    ack.Message,
		SlideURL:   ack.SlideURL,
		SlideCount: ack.SlideCount,
	}, nil
}

// buildProposalPrompt assembles the drafting prompt from the meeting row
// and the request. Output language follows the meeting context (Japanese
// business format).
func buildProposalPrompt(event *domain.CalendarEvent, companyName string, urls []string) string {
	var b strings.Builder
	b.WriteString("あなたは営業提案書の作成を支援するアシスタントです。\n")
	b.WriteString("以下の商談情報をもとに、提案書のドラフトを作成してください。\n\n")
	fmt.Fprintf(&b, "会社名: %s\n", companyName)
	fmt.Fprintf(&b, "商談タイトル: %s\n", event.Summary)
	fmt.Fprintf(&b, "日時: %s (%d分)\n", event.StartTime.Format("2006-01-02 15:04"), event.DurationMinutes)
	if event.Description != "" {
		fmt.Fprintf(&b, "議題: %s\n", event.Description)
	}
	if len(event.ExternalAttendees) > 0 {
		names := make([]string, len(event.ExternalAttendees))
		for i, a := range event.ExternalAttendees {
			names[i] = a.Name
		}
		fmt.Fprintf(&b, "先方参加者: %s\n", strings.Join(names, ", "))
	}
	if len(urls) > 0 {
		fmt.Fprintf(&b, "参考URL: %s\n", strings.Join(urls, ", "))
	}
	b.WriteString("\n提案書は、課題認識・提案内容・期待効果・次のステップの4部構成としてください。")
	return b.String()
}

// validateProposalRequest enforces the request limits. Company names may
// not contain markup characters since they are echoed into documents.
func validateProposalRequest(req driving.ProposalRequest) error {
	if req.EventID == "" || len(req.EventID) > maxEventIDLen {
		return fmt.Errorf("%w: event id must be 1-%d characters", domain.ErrInvalidInput, maxEventIDLen)
	}

	name := strings.TrimSpace(req.CompanyName)
	if name == "" || len([]rune(name)) > maxCompanyNameLen {
		return fmt.Errorf("%w: company name must be 1-%d characters", domain.ErrInvalidInput, maxCompanyNameLen)
	}
	if strings.ContainsAny(name, `<>'"`) {
		return fmt.Errorf("%w: company name contains invalid characters", domain.ErrInvalidInput)
	}

	if len(req.CompanyURLs) > maxCompanyURLs {
		return fmt.Errorf("%w: at most %d company urls", domain.ErrInvalidInput, maxCompanyURLs)
	}
	for _, raw := range req.CompanyURLs {
		if len(raw) > maxCompanyURLLen {
			return fmt.Errorf("%w: company url exceeds %d characters", domain.ErrInvalidInput, maxCompanyURLLen)
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: company url must be http(s)", domain.ErrInvalidInput)
		}
	}

	return nil
}
