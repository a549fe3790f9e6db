package dataprocessing

import (
	"context"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"movrec/internal/errors"
	"movrec/pkg/contracts/domain"
)

// naValues are the field values treated as missing. The set matches the
// default NA markers of the tools the review exports were produced with.
var naValues = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// IsMissing reports whether a raw field value counts as a missing value
func IsMissing(value string) bool {
	_, ok := naValues[value]
	return ok
}

// hasMissingValues checks whether any field of the record is missing
func hasMissingValues(record domain.Record) bool {
	for _, v := range record {
		if IsMissing(v) {
			return true
		}
	}
	return false
}

// Loader reads headerless tab-separated review files into one table
type Loader struct {
	schema *domain.Schema
	logger *slog.Logger
}

// NewLoader creates a loader that assigns the schema's columns to every row
func NewLoader(schema *domain.Schema, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{schema: schema, logger: logger}
}

// LoadAll reads every file in order and appends its rows to one table.
// Rows holding a missing value are dropped once all files are consumed.
// A file that does not exist yields a FILE_NOT_FOUND error and a row whose
// width differs from the schema yields SCHEMA_MISMATCH.
func (l *Loader) LoadAll(ctx context.Context, paths []string) (*domain.Table, domain.LoadStats, error) {
	stats := domain.LoadStats{Files: make([]domain.FileLoadStats, 0, len(paths))}
	raw := domain.NewTable(l.schema)
	fileOf := make([]int, 0)

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		records, err := l.readFile(path)
		if err != nil {
			return nil, stats, err
		}

		raw.Append(records...)
		for range records {
			fileOf = append(fileOf, i)
		}
		stats.Files = append(stats.Files, domain.FileLoadStats{Path: path, RowsRead: len(records)})
		stats.RowsRead += len(records)

		l.logger.InfoContext(ctx, "Loaded review file",
			slog.String("path", path),
			slog.Int("rows", len(records)))
	}

	table := domain.NewTable(l.schema)
	for i, record := range raw.Rows {
		if hasMissingValues(record) {
			stats.Files[fileOf[i]].RowsDropped++
			stats.RowsDropped++
			continue
		}
		table.Append(record)
	}
	stats.RowsLoaded = table.Len()

	l.logger.InfoContext(ctx, "Loaded all review files",
		slog.Int("files", len(paths)),
		slog.Int("rows_read", stats.RowsRead),
		slog.Int("rows_dropped", stats.RowsDropped),
		slog.Int("rows_loaded", stats.RowsLoaded))

	return table, stats, nil
}

// readFile parses one file into records of exactly schema width
func (l *Loader) readFile(path string) ([]domain.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.NewFileNotFoundError(path, err)
		}
		return nil, errors.NewStorageError(fmt.Sprintf("failed to open %s", path), err).
			WithContext("path", path)
	}
	defer file.Close()

	return l.parse(path, file)
}

// parse reads tab-separated rows from r. path is only used for error context.
func (l *Loader) parse(path string, r io.Reader) ([]domain.Record, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1 // width is checked against the schema below

	width := l.schema.Width()
	records := make([]domain.Record, 0)
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if stderrors.As(err, &parseErr) {
				return nil, errors.NewParsingError(fmt.Sprintf("failed to parse %s", path), err).
					WithContext("path", path).
					WithContext("line", parseErr.Line)
			}
			return nil, errors.NewStorageError(fmt.Sprintf("failed to read %s", path), err).
				WithContext("path", path)
		}

		if len(fields) != width {
			line, _ := reader.FieldPos(0)
			return nil, errors.NewSchemaMismatchError(
				fmt.Sprintf("%s line %d has %d fields, schema has %d columns", path, line, len(fields), width)).
				WithContext("path", path).
				WithContext("line", line).
				WithContext("fields", len(fields)).
				WithContext("columns", width)
		}

		records = append(records, domain.Record(fields))
	}

	return records, nil
}
