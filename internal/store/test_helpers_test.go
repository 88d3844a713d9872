package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// backendFactories opens each Backend implementation in a fresh location.
var backendFactories = map[Kind]func(t *testing.T) Backend{
	KindSQLite: func(t *testing.T) Backend {
		b, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
		require.NoError(t, err)
		return b
	},
	KindBolt: func(t *testing.T) Backend {
		b, err := OpenBolt(filepath.Join(t.TempDir(), "test.bolt"))
		require.NoError(t, err)
		return b
	},
}

// forEachBackend runs fn once per backend kind.
func forEachBackend(t *testing.T, fn func(t *testing.T, b Backend)) {
	t.Helper()
	for _, kind := range []Kind{KindSQLite, KindBolt} {
		t.Run(string(kind), func(t *testing.T) {
			b := backendFactories[kind](t)
			t.Cleanup(func() { b.Close() })
			fn(t, b)
		})
	}
}

// createTestStore creates a store over an in-memory SQLite database.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	b, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	s := New(b)
	t.Cleanup(func() { s.Close() })
	return s
}
