package operations

import (
	"context"
	"time"
)

// Step is one unit of a cleaning run
type Step interface {
	// ID returns the unique identifier for this step
	ID() string

	// Name returns the human-readable name for this step
	Name() string

	// Execute runs the step against the shared run state
	Execute(ctx context.Context, state *RunState) error
}

// StepStatus represents the outcome of a step
type StepStatus string

const (
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	StepStatusCanceled  StepStatus = "canceled"
)

// StepExecution records one executed step
type StepExecution struct {
	StepID    string     `json:"step_id"`
	StepName  string     `json:"step_name"`
	StartTime time.Time  `json:"start_time"`
	EndTime   time.Time  `json:"end_time"`
	Duration  string     `json:"duration"`
	Status    StepStatus `json:"status"`
	Error     string     `json:"error,omitempty"`
}

func newStepExecution(step Step, start, end time.Time, status StepStatus, err error) StepExecution {
	exec := StepExecution{
		StepID:    step.ID(),
		StepName:  step.Name(),
		StartTime: start,
		EndTime:   end,
		Duration:  end.Sub(start).String(),
		Status:    status,
	}
	if err != nil {
		exec.Error = err.Error()
	}
	return exec
}
