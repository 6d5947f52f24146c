// Package domain defines the core business entities for Meetsync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - CalendarEvent: A classified meeting persisted in the event store
//   - Attendee: A meeting participant with internal/external standing
//   - RawEvent: The provider-shaped event before classification
//   - SyncReport: The per-run outcome summary
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
