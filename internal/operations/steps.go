package operations

import (
	"context"

	"movrec/internal/dataprocessing"
	"movrec/internal/errors"
	"movrec/internal/exporter"
	"movrec/internal/files"
	"movrec/internal/infrastructure"
	"movrec/internal/storage"
)

// Step identifiers
const (
	StepIDLoad        = "load"
	StepIDDeduplicate = "deduplicate"
	StepIDSanitize    = "sanitize"
	StepIDExport      = "export"
	StepIDReport      = "report"
	StepIDWorkbook    = "workbook"
)

// LoadStep reads the input files into the run's table. Files found in Dir
// are appended after the explicit Files.
type LoadStep struct {
	Loader    *dataprocessing.Loader
	Discovery *files.Discovery
	Files     []string
	Dir       string
	Pattern   string
	Metrics   *infrastructure.PipelineMetrics
}

func (s *LoadStep) ID() string   { return StepIDLoad }
func (s *LoadStep) Name() string { return "Load review files" }

// Execute loads every input file
func (s *LoadStep) Execute(ctx context.Context, state *RunState) error {
	paths := append([]string(nil), s.Files...)
	if s.Dir != "" {
		found, err := s.Discovery.FindFilesByPattern(s.Dir, s.Pattern)
		if err != nil {
			return errors.NewFileNotFoundError(s.Dir, err)
		}
		paths = append(paths, files.Paths(found)...)
	}
	if len(paths) == 0 {
		return errors.NewAppValidationError("no input files to load").
			WithContext("dir", s.Dir).
			WithContext("pattern", s.Pattern)
	}

	table, stats, err := s.Loader.LoadAll(ctx, paths)
	if err != nil {
		return err
	}

	for _, f := range stats.Files {
		s.Metrics.RecordFileLoaded(ctx, f.Path, f.RowsRead, f.RowsDropped)
	}
	s.Metrics.RecordLoaded(ctx, stats.RowsLoaded)

	state.Inputs = paths
	state.Table = table
	state.Load = stats
	return nil
}

// DeduplicateStep removes repeated rows from the table
type DeduplicateStep struct {
	Deduplicator *dataprocessing.Deduplicator
	Metrics      *infrastructure.PipelineMetrics
}

func (s *DeduplicateStep) ID() string   { return StepIDDeduplicate }
func (s *DeduplicateStep) Name() string { return "Remove duplicate rows" }

// Execute replaces the table with its distinct rows
func (s *DeduplicateStep) Execute(ctx context.Context, state *RunState) error {
	table, report, err := s.Deduplicator.Resolve(state.Table)
	if err != nil {
		return err
	}

	s.Metrics.RecordDuplicates(ctx, report.DuplicateCount)
	infrastructure.AddSpanEvent(ctx, "duplicates_resolved")

	state.Table = table
	state.Dedup = report
	return nil
}

// SanitizeStep strips non-ASCII characters from one column
type SanitizeStep struct {
	Sanitizer *dataprocessing.Sanitizer
	Column    string
	Metrics   *infrastructure.PipelineMetrics
}

func (s *SanitizeStep) ID() string   { return StepIDSanitize }
func (s *SanitizeStep) Name() string { return "Sanitize text column" }

// Execute sanitizes the configured column
func (s *SanitizeStep) Execute(ctx context.Context, state *RunState) error {
	table, stats, err := s.Sanitizer.Sanitize(state.Table, s.Column)
	if err != nil {
		return err
	}

	s.Metrics.RecordSanitized(ctx, stats.Column, stats.ValuesChanged, stats.RunesDropped)

	state.Table = table
	state.Sanitize = stats
	return nil
}

// ExportStep writes the cleaned table as an indexed TSV
type ExportStep struct {
	Writer  *exporter.TableWriter
	Path    string
	Metrics *infrastructure.PipelineMetrics
}

func (s *ExportStep) ID() string   { return StepIDExport }
func (s *ExportStep) Name() string { return "Write TSV output" }

// Execute writes the output file
func (s *ExportStep) Execute(ctx context.Context, state *RunState) error {
	n, err := s.Writer.WriteTable(s.Path, state.Table)
	if err != nil {
		return err
	}

	s.Metrics.RecordWritten(ctx, "tsv", n)

	state.OutputFile = s.Path
	state.RowsWritten = n
	state.AddOutput(s.Path)
	return nil
}

// ReportStep writes the JSON run report
type ReportStep struct {
	Writer *exporter.ReportWriter
	Path   string
}

func (s *ReportStep) ID() string   { return StepIDReport }
func (s *ReportStep) Name() string { return "Write run report" }

// Execute writes the report of the run so far
func (s *ReportStep) Execute(ctx context.Context, state *RunState) error {
	if err := s.Writer.Write(s.Path, state.Report()); err != nil {
		return err
	}
	state.AddOutput(s.Path)
	return nil
}

// WorkbookStep writes the XLSX workbook
type WorkbookStep struct {
	Exporter *exporter.WorkbookExporter
	Path     string
	Metrics  *infrastructure.PipelineMetrics
}

func (s *WorkbookStep) ID() string   { return StepIDWorkbook }
func (s *WorkbookStep) Name() string { return "Write XLSX workbook" }

// Execute writes the workbook
func (s *WorkbookStep) Execute(ctx context.Context, state *RunState) error {
	if err := s.Exporter.Export(s.Path, state.Table, state.Report()); err != nil {
		return err
	}

	s.Metrics.RecordWritten(ctx, "xlsx", state.Table.Len())
	state.AddOutput(s.Path)
	return nil
}

// SinkStep stores the table in a database sink. Its ID is the sink name.
type SinkStep struct {
	Sink    storage.Sink
	Path    string // database file, empty for network sinks
	Metrics *infrastructure.PipelineMetrics
}

func (s *SinkStep) ID() string   { return s.Sink.Name() }
func (s *SinkStep) Name() string { return "Store table in " + s.Sink.Name() }

// Execute writes the table to the sink
func (s *SinkStep) Execute(ctx context.Context, state *RunState) error {
	n, err := s.Sink.Write(ctx, state.Table)
	if err != nil {
		return err
	}

	s.Metrics.RecordWritten(ctx, s.Sink.Name(), n)
	if s.Path != "" {
		state.AddOutput(s.Path)
	}
	return nil
}
