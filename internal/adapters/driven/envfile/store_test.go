package envfile

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/meetsync/internal/core/ports/driven"
)

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	store := NewStore(path)

	// Missing file reads as empty.
	assert.Empty(t, store.Get(driven.CredentialAccessToken))

	require.NoError(t, store.Set(driven.CredentialAccessToken, "tok-1"))
	require.NoError(t, store.Set(driven.CredentialRefreshToken, "refresh-1"))

	assert.Equal(t, "tok-1", store.Get(driven.CredentialAccessToken))
	assert.Equal(t, "refresh-1", store.Get(driven.CredentialRefreshToken))

	// Updating one key preserves the others.
	require.NoError(t, store.Set(driven.CredentialAccessToken, "tok-2"))
	assert.Equal(t, "tok-2", store.Get(driven.CredentialAccessToken))
	assert.Equal(t, "refresh-1", store.Get(driven.CredentialRefreshToken))
}

func TestStorePreservesExistingEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("N8N_API_KEY=secret\n"), 0o600))

	store := NewStore(path)
	require.NoError(t, store.Set(driven.CredentialAccessToken, "tok"))

	assert.Equal(t, "secret", store.Get("N8N_API_KEY"))
	assert.Equal(t, "tok", store.Get(driven.CredentialAccessToken))
}

func TestStoreFileMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on Windows")
	}

	path := filepath.Join(t.TempDir(), ".env")
	store := NewStore(path)
	require.NoError(t, store.Set(driven.CredentialAccessToken, "tok"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStoreCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", ".env")
	store := NewStore(path)

	require.NoError(t, store.Set("KEY", "value"))
	assert.Equal(t, "value", store.Get("KEY"))
}
