// Package auth implements token providers for the Google Calendar API.
//
// Two strategies are supported: a service-account key (headless, preferred
// when present) and a stored OAuth refresh token. The factory picks one
// based on which credentials are available.
package auth

import (
	"fmt"
	"os"

	"github.com/custodia-labs/meetsync/internal/core/domain"
	"github.com/custodia-labs/meetsync/internal/core/ports/driven"
	"github.com/custodia-labs/meetsync/internal/logger"
)

// Options configures token provider selection.
type Options struct {
	// ServiceAccountKeyPath points at a service-account key file.
	// When set and readable, the service-account strategy wins.
	ServiceAccountKeyPath string

	// Subject optionally impersonates a user (domain-wide delegation).
	Subject string

	// ClientID and ClientSecret identify the OAuth app for the
	// refresh-token strategy.
	ClientID     string
	ClientSecret string

	// Credentials stores the rotating OAuth tokens.
	Credentials driven.CredentialStore
}

// NewTokenProvider creates the appropriate TokenProvider for the
// available credentials. Returns domain.ErrAuthRequired when neither
// strategy can be configured.
func NewTokenProvider(opts Options) (driven.TokenProvider, error) {
	if opts.ServiceAccountKeyPath != "" {
		keyJSON, err := os.ReadFile(opts.ServiceAccountKeyPath)
		if err != nil {
			return nil, fmt.Errorf("read service account key: %w", err)
		}
		provider, err := NewServiceAccountProvider(keyJSON, opts.Subject)
		if err != nil {
			return nil, err
		}
		logger.Debug("Using service account authentication")
		return provider, nil
	}

	if opts.ClientID != "" && opts.ClientSecret != "" && opts.Credentials != nil {
		if opts.Credentials.Get(driven.CredentialRefreshToken) == "" {
			return nil, fmt.Errorf("%w: run 'meetsync auth login' first", domain.ErrAuthRequired)
		}
		logger.Debug("Using OAuth refresh-token authentication")
		return NewOAuthProvider(opts.ClientID, opts.ClientSecret, opts.Credentials), nil
	}

	return nil, fmt.Errorf("%w: no service account key or OAuth client configured", domain.ErrAuthRequired)
}
