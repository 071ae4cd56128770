package sqlite_test

import (
	"context"
	"testing"

	"github.com/fwojciec/attrdump/sqlite"
	"github.com/stretchr/testify/require"
)

func TestDB_Open(t *testing.T) {
	t.Parallel()

	t.Run("creates schema on first open", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB(":memory:")
		err := db.Open()
		require.NoError(t, err)
		defer db.Close()

		// Verify tables exist by querying them
		ctx := context.Background()

		var runCount int
		err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs").Scan(&runCount)
		require.NoError(t, err)

		var valueCount int
		err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM run_values").Scan(&valueCount)
		require.NoError(t, err)
	})

	t.Run("returns error for invalid path", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB("/nonexistent/path/db.sqlite")
		err := db.Open()
		require.Error(t, err)
	})

	t.Run("reopening keeps existing runs", func(t *testing.T) {
		t.Parallel()

		dbPath := t.TempDir() + "/reopen.db"
		db := sqlite.NewDB(dbPath)
		require.NoError(t, db.Open())
		_, err := db.ExecContext(context.Background(),
			`INSERT INTO runs (id, attribute, base_url, status, started_at) VALUES ('r1', 'id', 'http://x', 'running', '2026-01-01T00:00:00Z')`)
		require.NoError(t, err)
		require.NoError(t, db.Close())

		db = sqlite.NewDB(dbPath)
		require.NoError(t, db.Open())
		defer db.Close()

		var n int
		require.NoError(t, db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM runs").Scan(&n))
		require.Equal(t, 1, n)
	})

	t.Run("enables WAL mode for file-based databases", func(t *testing.T) {
		t.Parallel()

		dbPath := t.TempDir() + "/test.db"
		db := sqlite.NewDB(dbPath)
		err := db.Open()
		require.NoError(t, err)
		defer db.Close()

		ctx := context.Background()
		var journalMode string
		err = db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&journalMode)
		require.NoError(t, err)
		require.Equal(t, "wal", journalMode)
	})
}
