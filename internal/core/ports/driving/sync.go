package driving

import (
	"context"

	"github.com/custodia-labs/meetsync/internal/core/domain"
)

// SyncService coordinates one calendar sync run: credential, fetch,
// classify, upsert.
type SyncService interface {
	// Sync fetches the configured upcoming window, classifies each event
	// and upserts the survivors. Auth and fetch failures abort the run;
	// per-event classify/write failures are counted in the report.
	// Returns domain.ErrSyncInProgress when a run is already active.
	Sync(ctx context.Context) (*domain.SyncReport, error)

	// LastReport returns the most recent run's report, or nil when no
	// run has completed yet.
	LastReport() *domain.SyncReport
}
