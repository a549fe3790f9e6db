package dataprocessing

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movrec/internal/errors"
	"movrec/internal/shared/testutil"
	"movrec/pkg/contracts/domain"
)

func reviewLine(values ...string) string {
	return strings.Join(values, "\t")
}

func writeTSV(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

var (
	rowAlice = reviewLine("alice", "Heat", "1995", "tense and long", "8.5", "2023-01-02", "False", "12")
	rowBob   = reviewLine("bob", "Alien", "1979", "still scary", "9.0", "2023-02-11", "True", "3")
	rowCarol = reviewLine("carol", "Amélie", "2001", "charmant ☺", "7.5", "2023-03-20", "False", "0")
)

func TestIsMissing(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{value: "", want: true},
		{value: "NaN", want: true},
		{value: "nan", want: true},
		{value: "NA", want: true},
		{value: "N/A", want: true},
		{value: "null", want: true},
		{value: "None", want: true},
		{value: "<NA>", want: true},
		{value: "0", want: false},
		{value: "none", want: false},
		{value: " ", want: false},
		{value: "alice", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, IsMissing(tt.value))
		})
	}
}

func TestLoader_LoadAll_ConcatenatesInFileOrder(t *testing.T) {
	dir := t.TempDir()
	first := writeTSV(t, dir, "first.tsv", rowAlice, rowBob)
	second := writeTSV(t, dir, "second.tsv", rowCarol)

	logger, handler := testutil.NewTestLogger(t)
	loader := NewLoader(domain.ReviewSchema(), logger)

	table, stats, err := loader.LoadAll(context.Background(), []string{first, second})
	require.NoError(t, err)

	require.Equal(t, 3, table.Len())
	assert.Equal(t, "alice", table.Rows[0][0])
	assert.Equal(t, "bob", table.Rows[1][0])
	assert.Equal(t, "carol", table.Rows[2][0])
	assert.Equal(t, domain.ReviewColumns, table.Schema.Names())

	assert.Equal(t, 3, stats.RowsRead)
	assert.Equal(t, 3, stats.RowsLoaded)
	assert.Equal(t, 0, stats.RowsDropped)
	require.Len(t, stats.Files, 2)
	assert.Equal(t, first, stats.Files[0].Path)
	assert.Equal(t, 2, stats.Files[0].RowsRead)
	assert.Equal(t, 1, stats.Files[1].RowsRead)

	testutil.AssertLogContains(t, handler, slog.LevelInfo, "Loaded all review files")
	testutil.AssertLogAttr(t, handler, "rows_loaded", int64(3))
}

func TestLoader_LoadAll_DropsRowsWithMissingValues(t *testing.T) {
	dir := t.TempDir()
	path := writeTSV(t, dir, "reviews.tsv",
		rowAlice,
		reviewLine("dave", "Jaws", "1975", "", "6.0", "2023-04-01", "False", "1"),
		reviewLine("erin", "Up", "2009", "sweet", "NaN", "2023-05-01", "True", "4"),
		rowBob,
	)

	loader := NewLoader(domain.ReviewSchema(), nil)
	table, stats, err := loader.LoadAll(context.Background(), []string{path})
	require.NoError(t, err)

	require.Equal(t, 2, table.Len())
	assert.Equal(t, "alice", table.Rows[0][0])
	assert.Equal(t, "bob", table.Rows[1][0])
	assert.Equal(t, 4, stats.RowsRead)
	assert.Equal(t, 2, stats.RowsDropped)
	assert.Equal(t, 2, stats.Files[0].RowsDropped)
}

func TestLoader_LoadAll_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	empty := writeTSV(t, dir, "empty.tsv")
	full := writeTSV(t, dir, "full.tsv", rowBob)

	loader := NewLoader(domain.ReviewSchema(), nil)
	table, stats, err := loader.LoadAll(context.Background(), []string{empty, full})
	require.NoError(t, err)

	assert.Equal(t, 1, table.Len())
	assert.Equal(t, 0, stats.Files[0].RowsRead)
}

func TestLoader_LoadAll_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		setup    func() []string
		wantType errors.ErrorType
	}{
		{
			name: "missing file",
			setup: func() []string {
				return []string{writeTSV(t, dir, "ok.tsv", rowAlice), filepath.Join(dir, "missing.tsv")}
			},
			wantType: errors.ErrTypeFileNotFound,
		},
		{
			name: "too few fields",
			setup: func() []string {
				return []string{writeTSV(t, dir, "short.tsv", rowAlice, reviewLine("bob", "Alien", "1979"))}
			},
			wantType: errors.ErrTypeSchemaMismatch,
		},
		{
			name: "too many fields",
			setup: func() []string {
				return []string{writeTSV(t, dir, "wide.tsv", rowAlice+"\textra")}
			},
			wantType: errors.ErrTypeSchemaMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := NewLoader(domain.ReviewSchema(), nil)
			table, _, err := loader.LoadAll(context.Background(), tt.setup())
			require.Error(t, err)
			assert.Nil(t, table)
			assert.Equal(t, tt.wantType, errors.TypeOf(err))
		})
	}
}

func TestLoader_SchemaMismatchReportsLine(t *testing.T) {
	loader := NewLoader(domain.ReviewSchema(), nil)
	input := strings.Join([]string{rowAlice, rowBob, "only\ttwo"}, "\n")

	_, err := loader.parse("inline.tsv", strings.NewReader(input))
	require.Error(t, err)

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.ErrTypeSchemaMismatch, appErr.Type)
	assert.Equal(t, 3, appErr.Context["line"])
	assert.Equal(t, 2, appErr.Context["fields"])
	assert.Equal(t, 8, appErr.Context["columns"])
}

func TestLoader_LoadAll_CanceledContext(t *testing.T) {
	dir := t.TempDir()
	path := writeTSV(t, dir, "reviews.tsv", rowAlice)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewLoader(domain.ReviewSchema(), nil).LoadAll(ctx, []string{path})
	assert.ErrorIs(t, err, context.Canceled)
}
