package exporter

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"movrec/internal/errors"
	"movrec/internal/files"
	"movrec/pkg/contracts/domain"
)

// Workbook sheet names
const (
	SheetReviews    = "reviews"
	SheetDuplicates = "duplicates"
	SheetSummary    = "summary"
)

// WorkbookExporter writes the cleaned table and the run statistics to an XLSX workbook
type WorkbookExporter struct {
	files  *files.Manager
	logger *slog.Logger
}

// NewWorkbookExporter creates a new workbook exporter
func NewWorkbookExporter(manager *files.Manager, logger *slog.Logger) *WorkbookExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookExporter{files: manager, logger: logger}
}

// Export writes three sheets: the indexed table, duplicates per key and a
// summary of the run counters
func (e *WorkbookExporter) Export(path string, table *domain.Table, report domain.RunReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetReviews); err != nil {
		return e.fail(path, err)
	}
	if err := writeReviewSheet(f, table); err != nil {
		return e.fail(path, err)
	}
	if err := writeDuplicatesSheet(f, report.Dedup); err != nil {
		return e.fail(path, err)
	}
	if err := writeSummarySheet(f, report); err != nil {
		return e.fail(path, err)
	}

	err := e.files.WriteAtomic(path, func(w io.Writer) error {
		return f.Write(w)
	})
	if err != nil {
		return e.fail(path, err)
	}

	e.logger.Info("Wrote workbook",
		slog.String("path", path),
		slog.Int("rows", table.Len()),
		slog.Int("duplicate_keys", len(report.Dedup.ByKey)))
	return nil
}

func (e *WorkbookExporter) fail(path string, err error) error {
	return errors.NewStorageError(fmt.Sprintf("failed to write workbook %s", path), err).
		WithContext("path", path)
}

func writeReviewSheet(f *excelize.File, table *domain.Table) error {
	sw, err := f.NewStreamWriter(SheetReviews)
	if err != nil {
		return err
	}

	header := make([]interface{}, 0, table.Schema.Width()+1)
	header = append(header, "")
	for _, name := range table.Schema.Names() {
		header = append(header, name)
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for i, record := range table.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := make([]interface{}, 0, len(record)+1)
		row = append(row, i)
		for _, v := range record {
			row = append(row, v)
		}
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}

	return sw.Flush()
}

func writeDuplicatesSheet(f *excelize.File, report domain.DedupReport) error {
	if _, err := f.NewSheet(SheetDuplicates); err != nil {
		return err
	}

	if err := f.SetSheetRow(SheetDuplicates, "A1", &[]interface{}{report.KeyColumn, "duplicates"}); err != nil {
		return err
	}
	for i, kc := range report.ByKey {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetDuplicates, cell, &[]interface{}{kc.Key, kc.Count}); err != nil {
			return err
		}
	}
	return nil
}

func writeSummarySheet(f *excelize.File, report domain.RunReport) error {
	if _, err := f.NewSheet(SheetSummary); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"run_id", report.RunID},
		{"generated_at", report.GeneratedAt.UTC().Format("2006-01-02T15:04:05Z")},
		{"rows_read", report.Load.RowsRead},
		{"rows_dropped", report.Load.RowsDropped},
		{"rows_loaded", report.Load.RowsLoaded},
		{"all_unique", report.Dedup.AllUnique},
		{"duplicates", report.Dedup.DuplicateCount},
		{"sanitized_column", report.Sanitize.Column},
		{"values_sanitized", report.Sanitize.ValuesChanged},
		{"runes_dropped", report.Sanitize.RunesDropped},
		{"rows_written", report.RowsWritten},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetSummary, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
