// Package google provides shared infrastructure for the Google Calendar
// connector.
//
// This package contains:
//   - TokenSource adapter to bridge Meetsync's TokenProvider to oauth2.TokenSource
//   - A service factory for creating the Calendar API client
//   - Error handling for common Google API errors (401, 403, 404, 429)
//   - Rate limiting to respect Google API quotas
//
// # Usage
//
// The calendar connector uses this package to create an authenticated
// API client:
//
//	ts := google.NewTokenSource(ctx, tokenProvider)
//	svc, err := google.NewCalendarService(ctx, ts)
//
// # OAuth2 Scopes
//
// The connector uses these scopes:
//   - https://www.googleapis.com/auth/userinfo.email (non-sensitive)
//   - https://www.googleapis.com/auth/calendar.readonly (sensitive)
package google
