// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - CalendarGateway: Lists upcoming events from the calendar provider
//   - TokenProvider: Supplies a valid bearer credential
//   - EventStore: Classified event persistence (Postgres or in-memory)
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Drafts proposal text inline (preview mode)
//   - WorkflowClient: Delegates proposal/slide generation to n8n
//   - CredentialStore: Persists rotated OAuth tokens between runs
//   - SchedulerStore: Background task state (serve mode only)
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
