package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	calendarapi "google.golang.org/api/calendar/v3"

	"github.com/custodia-labs/meetsync/internal/core/domain"
	"github.com/custodia-labs/meetsync/internal/core/ports/driven"
)

// Ensure ServiceAccountProvider implements the TokenProvider interface.
var _ driven.TokenProvider = (*ServiceAccountProvider)(nil)

// ServiceAccountProvider signs JWTs with a service-account key and trades
// them for access tokens. No user interaction and no stored refresh token;
// preferred for headless deployments.
type ServiceAccountProvider struct {
	config *jwt.Config

	mu          sync.Mutex
	cachedToken string
	cacheExpiry time.Time
}

// NewServiceAccountProvider creates a token provider from a service-account
// key file's JSON contents. subject optionally impersonates a user in a
// domain-wide-delegation setup.
func NewServiceAccountProvider(keyJSON []byte, subject string) (*ServiceAccountProvider, error) {
	config, err := google.JWTConfigFromJSON(keyJSON, calendarapi.CalendarReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("%w: parse service account key: %w", domain.ErrAuthInvalid, err)
	}
	config.Subject = subject

	return &ServiceAccountProvider{config: config}, nil
}

// Strategy returns "service_account".
func (p *ServiceAccountProvider) Strategy() string { return "service_account" }

// GetToken returns a valid access token, signing a fresh JWT as needed.
func (p *ServiceAccountProvider) GetToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cachedToken != "" && time.Now().Before(p.cacheExpiry) {
		return p.cachedToken, nil
	}

	token, err := p.config.TokenSource(ctx).Token()
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrTokenRefreshFailed, err)
	}

	p.cachedToken = token.AccessToken
	if !token.Expiry.IsZero() {
		p.cacheExpiry = token.Expiry.Add(-1 * time.Minute)
	} else {
		p.cacheExpiry = time.Now().Add(30 * time.Minute)
	}

	return p.cachedToken, nil
}
