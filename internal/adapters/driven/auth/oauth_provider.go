package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/meetsync/internal/core/domain"
	"github.com/custodia-labs/meetsync/internal/core/ports/driven"
	"github.com/custodia-labs/meetsync/internal/logger"
)

// GoogleTokenURL is Google's OAuth2 token endpoint.
const GoogleTokenURL = "https://oauth2.googleapis.com/token"

// Ensure OAuthProvider implements the TokenProvider interface.
var _ driven.TokenProvider = (*OAuthProvider)(nil)

// OAuthProvider provides OAuth access tokens with automatic refresh.
// The refresh token lives in the credential store; rotated tokens are
// written back after each successful exchange.
type OAuthProvider struct {
	clientID     string
	clientSecret string
	tokenURL     string
	credentials  driven.CredentialStore

	mu            sync.RWMutex
	cachedToken   string
	cacheExpiry   time.Time
	refreshBuffer time.Duration
}

// NewOAuthProvider creates a token provider for OAuth-based authentication.
func NewOAuthProvider(clientID, clientSecret string, credentials driven.CredentialStore) *OAuthProvider {
	return &OAuthProvider{
		clientID:      clientID,
		clientSecret:  clientSecret,
		tokenURL:      GoogleTokenURL,
		credentials:   credentials,
		refreshBuffer: 5 * time.Minute,
	}
}

// Strategy returns "oauth".
func (p *OAuthProvider) Strategy() string { return "oauth" }

// GetToken returns a valid access token, refreshing if necessary.
func (p *OAuthProvider) GetToken(ctx context.Context) (string, error) {
	// Fast path: check cache with read lock
	p.mu.RLock()
	if p.cachedToken != "" && time.Now().Before(p.cacheExpiry) {
		token := p.cachedToken
		p.mu.RUnlock()
		return token, nil
	}
	p.mu.RUnlock()

	// Slow path: need refresh, acquire write lock
	p.mu.Lock()
	defer p.mu.Unlock()

	// Double-check after acquiring write lock
	if p.cachedToken != "" && time.Now().Before(p.cacheExpiry) {
		return p.cachedToken, nil
	}

	// A stored token that is still comfortably valid can be reused without
	// a round trip.
	if token := p.credentials.Get(driven.CredentialAccessToken); token != "" {
		if expiry := p.storedExpiry(); !expiry.IsZero() && time.Until(expiry) > p.refreshBuffer {
			p.cachedToken = token
			p.cacheExpiry = expiry.Add(-p.refreshBuffer)
			return token, nil
		}
	}

	refreshToken := p.credentials.Get(driven.CredentialRefreshToken)
	if refreshToken == "" {
		return "", fmt.Errorf("%w: no refresh token stored", domain.ErrAuthRequired)
	}

	token, expiry, err := p.refresh(ctx, refreshToken)
	if err != nil {
		return "", err
	}

	p.cachedToken = token
	if !expiry.IsZero() {
		p.cacheExpiry = expiry.Add(-p.refreshBuffer)
	} else {
		p.cacheExpiry = time.Now().Add(1 * time.Hour)
	}

	return p.cachedToken, nil
}

// InvalidateCache clears the cached token.
func (p *OAuthProvider) InvalidateCache() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cachedToken = ""
	p.cacheExpiry = time.Time{}
}

// SetTokenURL overrides the token endpoint. Used in tests.
func (p *OAuthProvider) SetTokenURL(u string) { p.tokenURL = u }

// storedExpiry parses the persisted expiry timestamp, zero when absent.
func (p *OAuthProvider) storedExpiry() time.Time {
	raw := p.credentials.Get(driven.CredentialTokenExpiry)
	if raw == "" {
		return time.Time{}
	}
	expiry, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return expiry
}

// refresh exchanges the refresh token and persists the rotated credential.
func (p *OAuthProvider) refresh(ctx context.Context, refreshToken string) (string, time.Time, error) {
	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", refreshToken)
	data.Set("client_id", p.clientID)
	data.Set("client_secret", p.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", time.Time{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %w", domain.ErrTokenRefreshFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		// A revoked or expired refresh token is unrecoverable: the user
		// must re-authorise.
		if strings.Contains(string(body), "invalid_grant") {
			return "", time.Time{}, fmt.Errorf("%w: refresh token revoked or expired", domain.ErrAuthInvalid)
		}
		return "", time.Time{}, fmt.Errorf("%w: status %d", domain.ErrTokenRefreshFailed, resp.StatusCode)
	}

	var tokenResp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		TokenType    string `json:"token_type"`
		ExpiresIn    int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", time.Time{}, fmt.Errorf("decode token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", time.Time{}, fmt.Errorf("%w: empty access token in response", domain.ErrTokenRefreshFailed)
	}

	var expiry time.Time
	if tokenResp.ExpiresIn > 0 {
		expiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	}

	p.persist(tokenResp.AccessToken, tokenResp.RefreshToken, expiry)

	return tokenResp.AccessToken, expiry, nil
}

// persist writes the rotated credential back. Persistence failures are
// logged, not fatal: the in-memory token still works for this run.
func (p *OAuthProvider) persist(accessToken, refreshToken string, expiry time.Time) {
	if err := p.credentials.Set(driven.CredentialAccessToken, accessToken); err != nil {
		logger.Warn("Failed to persist access token: %v", err)
	}
	// Google only returns a new refresh token when it rotates.
	if refreshToken != "" {
		if err := p.credentials.Set(driven.CredentialRefreshToken, refreshToken); err != nil {
			logger.Warn("Failed to persist refresh token: %v", err)
		}
	}
	if !expiry.IsZero() {
		if err := p.credentials.Set(driven.CredentialTokenExpiry, expiry.Format(time.RFC3339)); err != nil {
			logger.Warn("Failed to persist token expiry: %v", err)
		}
	}
}
