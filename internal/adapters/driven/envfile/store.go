// Package envfile implements the credential store on top of a dotenv file.
//
// The file doubles as the configuration source for local development, so
// tokens rotated at runtime land next to the static settings. Writes are
// read-modify-write under a mutex; see the CredentialStore contract for
// the single-writer assumption.
package envfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/meetsync/internal/core/ports/driven"
)

// Ensure Store implements the CredentialStore interface.
var _ driven.CredentialStore = (*Store)(nil)

// Store persists key/value credentials in a dotenv file.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a credential store backed by the file at path.
// The file does not need to exist yet.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Get returns the stored value for a key, or "" when the key or the file
// is absent.
func (s *Store) Get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := godotenv.Read(s.path)
	if err != nil {
		return ""
	}
	return values[key]
}

// Set persists one key/value pair, preserving the other entries.
// The file is written with 0600: it holds tokens.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := godotenv.Read(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("read env file: %w", err)
		}
		values = map[string]string{}
	}
	values[key] = value

	content, err := godotenv.Marshal(values)
	if err != nil {
		return fmt.Errorf("marshal env file: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create env dir: %w", err)
		}
	}

	if err := os.WriteFile(s.path, []byte(content+"\n"), 0o600); err != nil {
		return fmt.Errorf("write env file: %w", err)
	}
	return nil
}
