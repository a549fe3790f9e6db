package operations

import (
	"time"

	"movrec/pkg/contracts/domain"
)

// RunState carries the table and statistics between steps of one run
type RunState struct {
	RunID     string
	StartTime time.Time

	// Inputs holds the files the load step read, in load order
	Inputs []string
	// Outputs holds the files written so far, in write order
	Outputs []string

	Table       *domain.Table
	Load        domain.LoadStats
	Dedup       domain.DedupReport
	Sanitize    domain.SanitizeStats
	OutputFile  string
	RowsWritten int
}

// NewRunState creates the state of a run
func NewRunState(runID string) *RunState {
	return &RunState{
		RunID:     runID,
		StartTime: time.Now(),
	}
}

// AddOutput records a written file
func (s *RunState) AddOutput(path string) {
	s.Outputs = append(s.Outputs, path)
}

// Report summarises the run so far
func (s *RunState) Report() domain.RunReport {
	return domain.RunReport{
		RunID:       s.RunID,
		GeneratedAt: time.Now().UTC(),
		OutputFile:  s.OutputFile,
		RowsWritten: s.RowsWritten,
		Load:        s.Load,
		Dedup:       s.Dedup,
		Sanitize:    s.Sanitize,
	}
}
