package driving

import (
	"context"

	"github.com/custodia-labs/meetsync/internal/core/domain"
)

// Scheduler runs background tasks (periodic calendar sync) on an interval.
type Scheduler interface {
	// Start begins the scheduler loop. Blocks until the context is
	// cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the scheduler, waiting for any running
	// task to complete.
	Stop() error

	// TaskHistory returns recent results for a task, most recent first.
	TaskHistory(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error)
}
