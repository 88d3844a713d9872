package engine

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/sumdb/internal/ir"
	"github.com/roach88/sumdb/internal/store"
	"github.com/roach88/sumdb/internal/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestEngine creates an engine over an in-memory SQLite store.
func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	s, err := store.Open(store.KindSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return New(s, append([]Option{WithLogger(discardLogger())}, opts...)...)
}

// seed defines the user and pet fixtures and inserts their rows.
func seed(t *testing.T, e *Engine) {
	t.Helper()
	ctx := context.Background()
	for _, table := range []ir.Table{testutil.UserTable(), testutil.PetTable()} {
		_, err := e.DefineTable(ctx, table)
		require.NoError(t, err)
	}
	for _, ins := range append(testutil.UserRows(), testutil.PetRows()...) {
		_, err := e.Insert(ctx, ins)
		require.NoError(t, err)
	}
}

func columns(names ...ir.ColumnName) ir.ProjectColumns {
	return ir.ProjectColumns{Columns: names}
}
