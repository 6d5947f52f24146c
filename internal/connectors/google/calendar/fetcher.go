// Package calendar implements the Google Calendar gateway.
//
// The fetcher lists events in a time window with recurring events expanded
// into instances, maps them to raw events, and leaves classification to
// the core. Authentication is delegated to a TokenProvider via the shared
// google package.
package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/meetsync/internal/connectors/google"
	"github.com/custodia-labs/meetsync/internal/core/domain"
	"github.com/custodia-labs/meetsync/internal/core/ports/driven"
	"github.com/custodia-labs/meetsync/internal/logger"
)

var _ driven.CalendarGateway = (*Fetcher)(nil)

// Fetcher lists upcoming events from one Google calendar.
type Fetcher struct {
	provider driven.TokenProvider
	limiter  *google.RateLimiter
	config   *Config
}

// NewFetcher creates a calendar fetcher. A nil config uses defaults.
func NewFetcher(provider driven.TokenProvider, config *Config) *Fetcher {
	if config == nil {
		config = DefaultConfig()
	}
	return &Fetcher{
		provider: provider,
		limiter:  google.NewRateLimiter(),
		config:   config,
	}
}

// ListUpcoming returns raw events with a start time in [from, to),
// ascending by start time.
func (f *Fetcher) ListUpcoming(ctx context.Context, from, to time.Time) ([]domain.RawEvent, error) {
	ts := google.NewTokenSource(ctx, f.provider)
	svc, err := google.NewCalendarService(ctx, ts)
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}

	var events []domain.RawEvent
	pageToken := ""

	for {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		call := svc.Events.List(f.config.CalendarID).
			TimeMin(from.Format(time.RFC3339)).
			TimeMax(to.Format(time.RFC3339)).
			SingleEvents(f.config.SingleEvents).
			OrderBy("startTime").
			MaxResults(f.config.MaxResults).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			if google.IsRateLimited(err) {
				f.limiter.RecordRateLimitError(google.RetryAfterSeconds(err))
			}
			if google.IsUnauthorized(err) {
				return nil, fmt.Errorf("%w: %w", domain.ErrAuthInvalid, google.WrapError(err))
			}
			return nil, fmt.Errorf("list events: %w", google.WrapError(err))
		}

		for _, item := range resp.Items {
			if !ShouldSyncEvent(item) {
				continue
			}
			events = append(events, EventToRaw(item))
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
		logger.Debug("Fetching next calendar page (%d events so far)", len(events))
	}

	return events, nil
}
