package exporter

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"movrec/internal/errors"
	"movrec/internal/files"
	"movrec/pkg/contracts/domain"
)

// ReportWriter writes the run report as indented JSON
type ReportWriter struct {
	files  *files.Manager
	logger *slog.Logger
}

// NewReportWriter creates a new report writer
func NewReportWriter(manager *files.Manager, logger *slog.Logger) *ReportWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportWriter{files: manager, logger: logger}
}

// Write replaces the file at path with report
func (w *ReportWriter) Write(path string, report domain.RunReport) error {
	err := w.files.WriteAtomic(path, func(out io.Writer) error {
		return EncodeJSON(out, report)
	})
	if err != nil {
		return errors.NewStorageError(fmt.Sprintf("failed to write report %s", path), err).
			WithContext("path", path)
	}

	w.logger.Info("Wrote run report", slog.String("path", path))
	return nil
}

// EncodeJSON writes v as two-space indented JSON followed by a newline
func EncodeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
