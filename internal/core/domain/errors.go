package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSyncInProgress indicates a sync is already running.
	ErrSyncInProgress = errors.New("sync in progress")

	// Authentication errors. Fatal for the run: the operator must fix
	// the credential before the next sync can succeed.

	// ErrAuthRequired indicates no credential strategy is configured.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthInvalid indicates the credentials were rejected by the
	// provider (revoked grant, bad client secret).
	ErrAuthInvalid = errors.New("authentication invalid")

	// ErrTokenRefreshFailed indicates the token refresh operation failed.
	ErrTokenRefreshFailed = errors.New("token refresh failed")

	// Fetch and write errors.

	// ErrFetchFailed indicates the calendar API was unreachable or
	// rejected the listing call. Aborts the sync run.
	ErrFetchFailed = errors.New("calendar fetch failed")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrGenerationFailed indicates the proposal/slide generation
	// upstream returned an error or a malformed response. No retry.
	ErrGenerationFailed = errors.New("proposal generation failed")
)
