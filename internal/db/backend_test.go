package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/timecapsule/internal/config"
	"github.com/hpungsan/timecapsule/internal/errors"
	"github.com/hpungsan/timecapsule/internal/store"
)

// TestBackend_StoreDurability drives the capsule store against SQLite and
// reopens it from scratch after each mutation.
func TestBackend_StoreDurability(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "capsules.db")
	cfg := config.DefaultConfig()

	open := func() *store.Store {
		b, err := Open(dbPath, cfg)
		require.NoError(t, err)
		s, err := store.Open(b)
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		return s
	}

	s := open()
	a, err := s.Store("alpha", "2020-01-01")
	require.NoError(t, err)
	b, err := s.Store("beta", "2999-01-01")
	require.NoError(t, err)

	s = open()
	require.Equal(t, 2, s.Len())
	list, err := s.List()
	require.NoError(t, err)
	require.Equal(t, a, list[0].ID)
	require.Equal(t, b, list[1].ID)

	require.NoError(t, s.Delete(a))

	s = open()
	require.Equal(t, 1, s.Len())
	_, err = s.Fetch(a)
	require.True(t, errors.Is(err, errors.ErrNotFound))

	res, err := s.Fetch(b)
	require.NoError(t, err)
	require.False(t, res.Due)
}
