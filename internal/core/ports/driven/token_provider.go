package driven

import "context"

// TokenProvider provides access tokens for authenticated API calls.
// Implementations handle token refresh transparently: the service-account
// strategy signs a fresh JWT as needed, the OAuth strategy exchanges the
// stored refresh token and persists the rotated credential.
type TokenProvider interface {
	// GetToken returns a valid access token.
	// If the current token is expired, it will be refreshed automatically.
	GetToken(ctx context.Context) (string, error)

	// Strategy returns the credential strategy in use ("service_account"
	// or "oauth"). Informational, used in logs and status output.
	Strategy() string
}
