package dataprocessing

import (
	"fmt"
	"log/slog"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"

	"movrec/internal/errors"
	"movrec/pkg/contracts/domain"
)

// Sanitizer restricts a text column to 7-bit ASCII.
//
// The transform is lossy: every rune above U+007F, and every byte that is not
// valid UTF-8, is dropped without replacement. "café🎬" becomes "caf".
type Sanitizer struct {
	logger *slog.Logger
}

// NewSanitizer creates a new text sanitizer
func NewSanitizer(logger *slog.Logger) *Sanitizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sanitizer{logger: logger}
}

// nonASCII matches runes outside ASCII. Invalid UTF-8 decodes to
// utf8.RuneError, which is above MaxASCII and is removed as well.
var nonASCII = runes.Predicate(func(r rune) bool {
	return r > unicode.MaxASCII
})

// ToASCII drops every non-ASCII rune from s
func ToASCII(s string) string {
	out, _, err := transform.String(runes.Remove(nonASCII), s)
	if err != nil {
		// runes.Remove only fails on short buffers, which transform.String grows
		return asciiFallback(s)
	}
	return out
}

func asciiFallback(s string) string {
	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] < utf8.RuneSelf {
			b = append(b, s[i])
		}
	}
	return string(b)
}

// Sanitize returns a copy of the table with column filtered to ASCII. The
// column must exist and be of text kind.
func (s *Sanitizer) Sanitize(table *domain.Table, column string) (*domain.Table, domain.SanitizeStats, error) {
	stats := domain.SanitizeStats{Column: column}

	col, ok := table.Schema.Column(column)
	if !ok {
		return nil, stats, errors.NewSchemaMismatchError(
			fmt.Sprintf("column %q is not part of the schema", column)).
			WithContext("column", column)
	}
	if col.Kind != domain.KindText {
		return nil, stats, errors.NewTypeMismatchError(
			fmt.Sprintf("column %q holds %s values, only text columns can be sanitized", column, col.Kind)).
			WithContext("column", column).
			WithContext("kind", string(col.Kind))
	}

	idx := table.Schema.IndexOf(column)
	out := table.Clone()
	for _, record := range out.Rows {
		before := record[idx]
		after := ToASCII(before)
		if after == before {
			continue
		}
		record[idx] = after
		stats.ValuesChanged++
		stats.RunesDropped += utf8.RuneCountInString(before) - utf8.RuneCountInString(after)
	}

	s.logger.Info("Sanitized text column",
		slog.String("column", column),
		slog.Int("values_changed", stats.ValuesChanged),
		slog.Int("runes_dropped", stats.RunesDropped))

	return out, stats, nil
}
