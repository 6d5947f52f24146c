package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/meetsync/internal/core/domain"
	"github.com/custodia-labs/meetsync/internal/core/ports/driven"
	"github.com/custodia-labs/meetsync/internal/core/ports/driving"
	"github.com/custodia-labs/meetsync/internal/logger"
)

// DefaultWindowDays is the default upcoming window for a sync run.
const DefaultWindowDays = 7

// Ensure SyncService implements the interface.
var _ driving.SyncService = (*SyncService)(nil)

// SyncService runs the calendar-sync pipeline: credential, fetch the
// upcoming window, classify each event, upsert the survivors.
//
// Runs are sequential by design. The per-event upsert loop is not
// parallelised; expected volume is small (<=100 events per run).
type SyncService struct {
	tokens     driven.TokenProvider
	calendar   driven.CalendarGateway
	store      driven.EventStore
	classifier *Classifier
	windowDays int

	mu         sync.Mutex
	running    bool
	lastReport *domain.SyncReport
}

// NewSyncService creates a sync service. windowDays <= 0 means
// DefaultWindowDays.
func NewSyncService(
	tokens driven.TokenProvider,
	calendar driven.CalendarGateway,
	store driven.EventStore,
	classifier *Classifier,
	windowDays int,
) *SyncService {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	return &SyncService{
		tokens:     tokens,
		calendar:   calendar,
		store:      store,
		classifier: classifier,
		windowDays: windowDays,
	}
}

// Sync runs one pipeline pass. Credential and fetch failures abort the
// run; classify drops and upsert failures are counted in the report.
func (s *SyncService) Sync(ctx context.Context) (*domain.SyncReport, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, domain.ErrSyncInProgress
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	// 1. Credential. A failure here is fatal for the run.
	if s.tokens == nil {
		return nil, domain.ErrAuthRequired
	}
	if _, err := s.tokens.GetToken(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAuthInvalid, err)
	}

	// 2. Fetch the upcoming window.
	now := time.Now()
	until := now.AddDate(0, 0, s.windowDays)

	logger.Info("Fetching calendar events from %s to %s",
		now.Format(time.RFC3339), until.Format(time.RFC3339))

	rawEvents, err := s.calendar.ListUpcoming(ctx, now, until)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrFetchFailed, err)
	}

	report := &domain.SyncReport{EventsCount: len(rawEvents)}

	// 3. Classify and upsert, one event at a time. No transactionality
	// across events: a crash mid-batch heals on the next run because the
	// upsert is idempotent by key.
	for i := range rawEvents {
		event, ok := s.classifier.Classify(&rawEvents[i], now)
		if !ok {
			logger.Debug("Skipping %q: missing time bounds or too short", rawEvents[i].Summary)
			report.SkippedCount++
			continue
		}

		if err := s.store.Upsert(ctx, event); err != nil {
			logger.Warn("Upsert failed for %s: %v", event.EventID, err)
			report.ErrorCount++
			continue
		}

		logger.Debug("Synced %q (%d min) - %s", event.Summary, event.DurationMinutes, event.CompanyName)
		report.SyncedCount++
	}

	report.LastSync = time.Now()

	logger.Info("Sync complete: %d fetched, %d synced, %d skipped, %d errors",
		report.EventsCount, report.SyncedCount, report.SkippedCount, report.ErrorCount)

	s.mu.Lock()
	s.lastReport = report
	s.mu.Unlock()

	return report, nil
}

// LastReport returns the most recent completed run's report, or nil.
func (s *SyncService) LastReport() *domain.SyncReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastReport == nil {
		return nil
	}
	report := *s.lastReport
	return &report
}
