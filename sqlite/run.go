package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/fwojciec/attrdump"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ attrdump.RunService = (*RunService)(nil)

// RunService implements attrdump.RunService using SQLite.
type RunService struct {
	db *DB
}

// NewRunService creates a new RunService.
func NewRunService(db *DB) *RunService {
	return &RunService{db: db}
}

const runColumns = `id, attribute, base_url, output, status, initial_count, final_count,
	pages, growth_pages, value_count, duplicates, error, started_at, finished_at`

// CreateRun stores a new run with a generated ID.
func (s *RunService) CreateRun(ctx context.Context, run *attrdump.Run) error {
	if err := run.Validate(); err != nil {
		return err
	}

	run.ID = uuid.New().String()
	run.StartedAt = time.Now().UTC()
	if run.Status == "" {
		run.Status = attrdump.RunStatusRunning
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, string(run.Attribute), run.BaseURL, run.Output, run.Status,
		run.InitialCount, run.FinalCount, run.Pages, run.GrowthPages, run.Values, run.Duplicates, run.Error,
		run.StartedAt.Format(time.RFC3339Nano), formatTime(run.FinishedAt))

	return err
}

// FinishRun stores the counters and status of a run.
// FinishedAt is set to now if it is zero.
func (s *RunService) FinishRun(ctx context.Context, run *attrdump.Run) error {
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET status = ?, initial_count = ?, final_count = ?, pages = ?, growth_pages = ?,
			value_count = ?, duplicates = ?, error = ?, finished_at = ?
		WHERE id = ?
	`, run.Status, run.InitialCount, run.FinalCount, run.Pages, run.GrowthPages,
		run.Values, run.Duplicates, run.Error, formatTime(run.FinishedAt), run.ID)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return attrdump.Errorf(attrdump.ENOTFOUND, "run not found")
	}
	return nil
}

// FindRunByID retrieves a run by ID.
func (s *RunService) FindRunByID(ctx context.Context, id string) (*attrdump.Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, attrdump.Errorf(attrdump.ENOTFOUND, "run not found")
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// FindRuns retrieves runs matching the filter, most recent first.
func (s *RunService) FindRuns(ctx context.Context, filter attrdump.RunFilter) ([]*attrdump.Run, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + runColumns + " FROM runs WHERE 1=1")

	if filter.Attribute != nil {
		query.WriteString(" AND attribute = ?")
		args = append(args, string(*filter.Attribute))
	}

	query.WriteString(" ORDER BY started_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*attrdump.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*attrdump.Run, error) {
	var run attrdump.Run
	var attribute, startedAt, finishedAt string

	if err := row.Scan(&run.ID, &attribute, &run.BaseURL, &run.Output, &run.Status,
		&run.InitialCount, &run.FinalCount, &run.Pages, &run.GrowthPages, &run.Values,
		&run.Duplicates, &run.Error, &startedAt, &finishedAt); err != nil {
		return nil, err
	}
	run.Attribute = attrdump.Attribute(attribute)

	var err error
	if run.StartedAt, err = parseRFC3339(startedAt, "started_at"); err != nil {
		return nil, err
	}
	if finishedAt != "" {
		if run.FinishedAt, err = parseRFC3339(finishedAt, "finished_at"); err != nil {
			return nil, err
		}
	}
	return &run, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
