package sqlite

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/fwojciec/attrdump"
)

// Compile-time interface verification.
var (
	_ attrdump.Sink         = (*ValueSink)(nil)
	_ attrdump.ValueService = (*ValueService)(nil)
)

// DefaultAppendTimeout bounds a single ValueSink.Append.
const DefaultAppendTimeout = 30 * time.Second

// ValueSink mirrors appended values into the run_values table of one run.
// Each Append is stored in a single transaction, bounded by ctx and
// DefaultAppendTimeout.
type ValueSink struct {
	mu     sync.Mutex
	ctx    context.Context
	db     *DB
	runID  string
	closed bool
}

// NewValueSink creates a sink writing values for runID. Canceling ctx aborts
// pending and future appends.
func NewValueSink(ctx context.Context, db *DB, runID string) *ValueSink {
	return &ValueSink{ctx: ctx, db: db, runID: runID}
}

// Append inserts values.
func (s *ValueSink) Append(values []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return attrdump.Errorf(attrdump.EINVALID, "append to closed value sink")
	}
	if len(values) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(s.ctx, DefaultAppendTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO run_values (run_id, value) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, v := range values {
		if _, err := stmt.ExecContext(ctx, s.runID, v); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Close stops further appends. The database stays open.
func (s *ValueSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// ValueService implements attrdump.ValueService using SQLite.
type ValueService struct {
	db *DB
}

// NewValueService creates a new ValueService.
func NewValueService(db *DB) *ValueService {
	return &ValueService{db: db}
}

// DistinctValues returns the sorted unique values mirrored for a run.
func (s *ValueService) DistinctValues(ctx context.Context, runID string) ([]string, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM runs WHERE id = ?`, runID).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, attrdump.Errorf(attrdump.ENOTFOUND, "run not found")
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT value FROM run_values
		WHERE run_id = ?
		ORDER BY value
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
