package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"movrec/internal/errors"
	"movrec/internal/files"
	"movrec/pkg/contracts/domain"
)

// WriteOptions configures delimited table output
type WriteOptions struct {
	Comma       rune   // field delimiter, tab when zero
	IndexHeader string // header of the leading row index column
	BOMPrefix   bool   // Add UTF-8 BOM for Excel compatibility
}

// DefaultTSVOptions writes a tab-separated table with an unnamed index column
func DefaultTSVOptions() WriteOptions {
	return WriteOptions{Comma: '\t'}
}

// TableWriter writes a domain.Table as one delimited file with a header row
// and a leading 0-based row index
type TableWriter struct {
	files   *files.Manager
	options WriteOptions
	logger  *slog.Logger
}

// NewTableWriter creates a new table writer
func NewTableWriter(manager *files.Manager, options WriteOptions, logger *slog.Logger) *TableWriter {
	if logger == nil {
		logger = slog.Default()
	}
	if options.Comma == 0 {
		options.Comma = '\t'
	}
	return &TableWriter{files: manager, options: options, logger: logger}
}

// WriteTable replaces the file at path with the table and returns the number
// of data rows written
func (w *TableWriter) WriteTable(path string, table *domain.Table) (int, error) {
	w.logger.Info("Writing table",
		slog.String("path", path),
		slog.Int("record_count", table.Len()))

	err := w.files.WriteAtomic(path, func(out io.Writer) error {
		stream, err := NewStreamWriter(out, w.options, table.Schema.Names())
		if err != nil {
			return err
		}
		for _, record := range table.Rows {
			if err := stream.WriteRecord(record); err != nil {
				return err
			}
		}
		return stream.Flush()
	})
	if err != nil {
		return 0, errors.NewStorageError(fmt.Sprintf("failed to write table to %s", path), err).
			WithContext("path", path)
	}

	return table.Len(), nil
}

// StreamWriter writes indexed records one at a time
type StreamWriter struct {
	writer *csv.Writer
	index  int
	row    []string
}

// NewStreamWriter writes the header row to out and returns a writer for the records
func NewStreamWriter(out io.Writer, options WriteOptions, headers []string) (*StreamWriter, error) {
	if options.BOMPrefix {
		if _, err := out.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return nil, fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)
	if options.Comma != 0 {
		writer.Comma = options.Comma
	}

	header := make([]string, 0, len(headers)+1)
	header = append(header, options.IndexHeader)
	header = append(header, headers...)
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write headers: %w", err)
	}

	return &StreamWriter{writer: writer, row: make([]string, 0, len(headers)+1)}, nil
}

// WriteRecord writes record prefixed with the next row index
func (s *StreamWriter) WriteRecord(record domain.Record) error {
	s.row = append(s.row[:0], strconv.Itoa(s.index))
	s.row = append(s.row, record...)
	if err := s.writer.Write(s.row); err != nil {
		return fmt.Errorf("failed to write record %d: %w", s.index, err)
	}
	s.index++
	return nil
}

// Flush writes any buffered data and reports the first write error
func (s *StreamWriter) Flush() error {
	s.writer.Flush()
	return s.writer.Error()
}
