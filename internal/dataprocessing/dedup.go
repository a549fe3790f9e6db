package dataprocessing

import (
	"fmt"
	"log/slog"
	"sort"

	"movrec/internal/errors"
	"movrec/pkg/contracts/domain"
)

// Deduplicator removes rows that are fully identical to an earlier row
type Deduplicator struct {
	keyColumn string
	logger    *slog.Logger
}

// NewDeduplicator creates a deduplicator that groups removed duplicates by keyColumn
func NewDeduplicator(keyColumn string, logger *slog.Logger) *Deduplicator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Deduplicator{keyColumn: keyColumn, logger: logger}
}

// DuplicateMask marks every row that is fully equal to an earlier row.
// The first occurrence of each distinct row is never marked.
func DuplicateMask(table *domain.Table) []bool {
	mask := make([]bool, table.Len())
	seen := make(map[string]struct{}, table.Len())
	for i, record := range table.Rows {
		key := record.Key()
		if _, ok := seen[key]; ok {
			mask[i] = true
			continue
		}
		seen[key] = struct{}{}
	}
	return mask
}

// Resolve returns a copy of the table without duplicate rows together with a
// report of what was removed. Uniqueness is judged on the full row, globally.
func (d *Deduplicator) Resolve(table *domain.Table) (*domain.Table, domain.DedupReport, error) {
	keyIdx := table.Schema.IndexOf(d.keyColumn)
	if keyIdx < 0 {
		return nil, domain.DedupReport{}, errors.NewSchemaMismatchError(
			fmt.Sprintf("key column %q is not part of the schema", d.keyColumn)).
			WithContext("column", d.keyColumn)
	}

	mask := DuplicateMask(table)

	out := domain.NewTable(table.Schema)
	counts := make(map[string]int)
	order := make([]string, 0)
	for i, record := range table.Rows {
		if !mask[i] {
			out.Append(record.Clone())
			continue
		}
		key := record[keyIdx]
		if _, ok := counts[key]; !ok {
			order = append(order, key)
		}
		counts[key]++
	}

	byKey := make([]domain.KeyCount, 0, len(order))
	for _, key := range order {
		byKey = append(byKey, domain.KeyCount{Key: key, Count: counts[key]})
	}
	// stable so equal counts keep first-appearance order
	sort.SliceStable(byKey, func(i, j int) bool {
		return byKey[i].Count > byKey[j].Count
	})

	report := domain.DedupReport{
		KeyColumn:      d.keyColumn,
		TotalRows:      table.Len(),
		UniqueRows:     out.Len(),
		DuplicateCount: table.Len() - out.Len(),
		ByKey:          byKey,
	}
	report.AllUnique = report.DuplicateCount == 0

	d.logReport(report)

	return out, report, nil
}

func (d *Deduplicator) logReport(report domain.DedupReport) {
	d.logger.Info("All unique rows", slog.Bool("all_unique", report.AllUnique))
	if report.AllUnique {
		return
	}

	d.logger.Info("Number of duplicates", slog.Int("duplicates", report.DuplicateCount))
	for _, kc := range report.ByKey {
		d.logger.Info("Duplicates by key",
			slog.String("key_column", report.KeyColumn),
			slog.String("key", kc.Key),
			slog.Int("count", kc.Count))
	}
}
