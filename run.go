package attrdump

import (
	"context"
	"time"
)

// Run status values.
const (
	RunStatusRunning  = "running"
	RunStatusFinished = "finished"
	RunStatusFailed   = "failed"
)

// Run records one crawl invocation. It is history, not resumable progress.
type Run struct {
	ID           string    `json:"id"`
	Attribute    Attribute `json:"attribute"`
	BaseURL      string    `json:"baseUrl"`
	Output       string    `json:"output"`
	Status       string    `json:"status"`
	InitialCount int       `json:"initialCount"`
	FinalCount   int       `json:"finalCount"`
	Pages        int       `json:"pages"`
	GrowthPages  int       `json:"growthPages"`
	Values       int       `json:"values"`
	Duplicates   int       `json:"duplicates"`
	Error        string    `json:"error"`
	StartedAt    time.Time `json:"startedAt"`
	FinishedAt   time.Time `json:"finishedAt"`
}

// Validate returns an error if the run contains invalid fields.
func (r *Run) Validate() error {
	if err := r.Attribute.Validate(); err != nil {
		return err
	}
	if r.BaseURL == "" {
		return Errorf(EINVALID, "run base URL required")
	}
	return nil
}

// RunService records crawl runs.
type RunService interface {
	// CreateRun stores a new run, assigning ID and StartedAt.
	CreateRun(ctx context.Context, run *Run) error

	// FinishRun stores the final counters and status of a run.
	// Returns ENOTFOUND if the run does not exist.
	FinishRun(ctx context.Context, run *Run) error

	// FindRunByID retrieves a run by ID.
	// Returns ENOTFOUND if the run does not exist.
	FindRunByID(ctx context.Context, id string) (*Run, error)

	// FindRuns retrieves runs, most recent first.
	FindRuns(ctx context.Context, filter RunFilter) ([]*Run, error)
}

// RunFilter represents a filter for FindRuns.
type RunFilter struct {
	Attribute *Attribute `json:"attribute"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// ValueService reads values mirrored into storage during a run.
type ValueService interface {
	// DistinctValues returns the unique values written for a run, sorted.
	DistinctValues(ctx context.Context, runID string) ([]string, error)
}
