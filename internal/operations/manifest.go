package operations

import (
	"fmt"
	"io"
	"time"

	"movrec/internal/errors"
	"movrec/internal/exporter"
	"movrec/internal/files"
	"movrec/pkg/contracts/domain"
)

// Run statuses recorded in the manifest
const (
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// FileDigest identifies the content of an input or output file
type FileDigest struct {
	Path    string `json:"path"`
	Size    int64  `json:"size"`
	BLAKE2b string `json:"blake2b_256"`
}

// RunManifest records what a run read, what it produced and how each step went
type RunManifest struct {
	RunID     string           `json:"run_id"`
	Version   string           `json:"version"`
	Status    string           `json:"status"`
	Error     string           `json:"error,omitempty"`
	StartTime time.Time        `json:"start_time"`
	EndTime   time.Time        `json:"end_time"`
	Duration  string           `json:"duration"`
	Inputs    []FileDigest     `json:"inputs"`
	Outputs   []FileDigest     `json:"outputs"`
	Steps     []StepExecution  `json:"steps"`
	Report    domain.RunReport `json:"report"`
}

// NewRunManifest builds the manifest of a finished run. runErr is the error
// returned by the runner, nil on success.
func NewRunManifest(state *RunState, steps []StepExecution, version string, runErr error) *RunManifest {
	end := time.Now()
	m := &RunManifest{
		RunID:     state.RunID,
		Version:   version,
		Status:    RunStatusCompleted,
		StartTime: state.StartTime,
		EndTime:   end,
		Duration:  end.Sub(state.StartTime).String(),
		Inputs:    []FileDigest{},
		Outputs:   []FileDigest{},
		Steps:     steps,
		Report:    state.Report(),
	}
	if runErr != nil {
		m.Status = RunStatusFailed
		m.Error = runErr.Error()
	}
	return m
}

// Digest hashes the run's input and output files
func (m *RunManifest) Digest(manager *files.Manager, inputs, outputs []string) error {
	var err error
	if m.Inputs, err = digestAll(manager, inputs); err != nil {
		return err
	}
	if m.Outputs, err = digestAll(manager, outputs); err != nil {
		return err
	}
	return nil
}

func digestAll(manager *files.Manager, paths []string) ([]FileDigest, error) {
	digests := make([]FileDigest, 0, len(paths))
	for _, path := range paths {
		sum, size, err := manager.Checksum(path)
		if err != nil {
			return nil, errors.NewStorageError(fmt.Sprintf("failed to checksum %s", path), err).
				WithContext("path", path)
		}
		digests = append(digests, FileDigest{Path: path, Size: size, BLAKE2b: sum})
	}
	return digests, nil
}

// Write replaces the file at path with the manifest
func (m *RunManifest) Write(manager *files.Manager, path string) error {
	err := manager.WriteAtomic(path, func(out io.Writer) error {
		return exporter.EncodeJSON(out, m)
	})
	if err != nil {
		return errors.NewStorageError(fmt.Sprintf("failed to write manifest %s", path), err).
			WithContext("path", path)
	}
	return nil
}
