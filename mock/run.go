package mock

import (
	"context"

	"github.com/fwojciec/attrdump"
)

var _ attrdump.RunService = (*RunService)(nil)

// RunService is a mock implementation of attrdump.RunService.
type RunService struct {
	CreateRunFn   func(ctx context.Context, run *attrdump.Run) error
	FinishRunFn   func(ctx context.Context, run *attrdump.Run) error
	FindRunByIDFn func(ctx context.Context, id string) (*attrdump.Run, error)
	FindRunsFn    func(ctx context.Context, filter attrdump.RunFilter) ([]*attrdump.Run, error)
}

func (s *RunService) CreateRun(ctx context.Context, run *attrdump.Run) error {
	return s.CreateRunFn(ctx, run)
}

func (s *RunService) FinishRun(ctx context.Context, run *attrdump.Run) error {
	return s.FinishRunFn(ctx, run)
}

func (s *RunService) FindRunByID(ctx context.Context, id string) (*attrdump.Run, error) {
	return s.FindRunByIDFn(ctx, id)
}

func (s *RunService) FindRuns(ctx context.Context, filter attrdump.RunFilter) ([]*attrdump.Run, error) {
	return s.FindRunsFn(ctx, filter)
}

var _ attrdump.ValueService = (*ValueService)(nil)

// ValueService is a mock implementation of attrdump.ValueService.
type ValueService struct {
	DistinctValuesFn func(ctx context.Context, runID string) ([]string, error)
}

func (s *ValueService) DistinctValues(ctx context.Context, runID string) ([]string, error) {
	return s.DistinctValuesFn(ctx, runID)
}
