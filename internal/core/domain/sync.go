package domain

import "time"

// SyncReport summarises one sync run. Per-event failures never abort the
// batch; they are accumulated here instead.
type SyncReport struct {
	// EventsCount is how many raw events the provider returned.
	EventsCount int

	// SyncedCount is how many classified events were upserted.
	SyncedCount int

	// SkippedCount is how many events were dropped by the classifier
	// (missing time bounds or below the minimum duration).
	SkippedCount int

	// ErrorCount is how many upserts failed.
	ErrorCount int

	// LastSync is when the run finished.
	LastSync time.Time
}
