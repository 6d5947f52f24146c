package driven

// CredentialStore persists a rotating OAuth credential for reuse across
// runs. The OAuth token provider writes the rotated access/refresh tokens
// through this interface after each successful exchange.
//
// Single-writer contract: implementations do a read-modify-write of the
// backing store and assume no concurrent process mutates it. Running two
// syncs against the same store at once can lose a rotation.
type CredentialStore interface {
	// Get returns the stored value for a key, or "" when absent.
	Get(key string) string

	// Set persists one key/value pair.
	Set(key, value string) error
}

// Well-known credential store keys.
const (
	CredentialAccessToken  = "GOOGLE_ACCESS_TOKEN"
	CredentialRefreshToken = "GOOGLE_REFRESH_TOKEN"
	CredentialTokenExpiry  = "GOOGLE_TOKEN_EXPIRY"
)
