package api

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadStore_Expiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	s := NewDownloadStore()
	s.now = func() time.Time { return now }

	path := filepath.Join(t.TempDir(), "export.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	token, expiresAt := s.put(path, "export.xlsx", DownloadTTL)
	assert.Len(t, token, 32)
	assert.Equal(t, now.Add(10*time.Minute), expiresAt)

	item, ok := s.get(token)
	require.True(t, ok)
	assert.Equal(t, "export.xlsx", item.filename)
	assert.Equal(t, 1, s.Len())

	now = now.Add(11 * time.Minute)
	_, ok = s.get(token)
	assert.False(t, ok, "expired token must not resolve")
	assert.Equal(t, 0, s.Len())
}

func TestDownloadStore_PurgeExpired(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	s := NewDownloadStore()
	s.now = func() time.Time { return now }

	s.put("/tmp/old.xlsx", "old.xlsx", time.Minute)
	fresh, _ := s.put("/tmp/new.xlsx", "new.xlsx", time.Hour)

	now = now.Add(2 * time.Minute)
	assert.Equal(t, []string{"/tmp/old.xlsx"}, s.PurgeExpired())
	assert.Empty(t, s.PurgeExpired())

	_, ok := s.get(fresh)
	assert.True(t, ok)
}

func TestDownloadStore_TokensAreUnique(t *testing.T) {
	t.Parallel()

	s := NewDownloadStore()
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		token, _ := s.put("f", "f.xlsx", time.Minute)
		require.False(t, seen[token])
		seen[token] = true
	}
}
