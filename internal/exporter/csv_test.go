package exporter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movrec/internal/errors"
	"movrec/internal/files"
	"movrec/pkg/contracts/domain"
)

func sampleTable() *domain.Table {
	table := domain.NewTable(domain.ReviewSchema())
	table.Append(
		domain.Record{"alice", "Heat", "1995", "caf", "8.5", "2023-01-02", "False", "12"},
		domain.Record{"bob", "Alien", "1979", "still scary", "9.0", "2023-02-11", "True", "3"},
	)
	return table
}

func TestTableWriter_WriteTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "movie_data.tsv")
	writer := NewTableWriter(files.NewManager(nil), DefaultTSVOptions(), nil)

	n, err := writer.WriteTable(path, sampleTable())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	expected := strings.Join([]string{
		"\tuser_name\tmovie_name\trelease_year\tuser_review\tuser_rating\treview_date\trewatched\treview_likes",
		"0\talice\tHeat\t1995\tcaf\t8.5\t2023-01-02\tFalse\t12",
		"1\tbob\tAlien\t1979\tstill scary\t9.0\t2023-02-11\tTrue\t3",
		"",
	}, "\n")
	assert.Equal(t, expected, string(content))
}

func TestTableWriter_EmptyTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.tsv")
	writer := NewTableWriter(files.NewManager(nil), WriteOptions{}, nil)

	n, err := writer.WriteTable(path, domain.NewTable(domain.NewSchema("a", "b")))
	require.NoError(t, err)
	assert.Zero(t, n)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "\ta\tb\n", string(content))
}

func TestTableWriter_Options(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	writer := NewTableWriter(files.NewManager(nil), WriteOptions{
		Comma:       ',',
		IndexHeader: "index",
		BOMPrefix:   true,
	}, nil)

	table := domain.NewTable(domain.NewSchema("name", "note"))
	table.Append(domain.Record{"alice", "one, two"})

	_, err := writer.WriteTable(path, table)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "\xEF\xBB\xBFindex,name,note\n0,alice,\"one, two\"\n", string(content))
}

func TestTableWriter_QuotesEmbeddedDelimiters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.tsv")
	writer := NewTableWriter(files.NewManager(nil), DefaultTSVOptions(), nil)

	table := domain.NewTable(domain.NewSchema("note"))
	table.Append(domain.Record{"tab\there"}, domain.Record{`say "hi"`})

	_, err := writer.WriteTable(path, table)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "\tnote\n0\t\"tab\there\"\n1\t\"say \"\"hi\"\"\"\n", string(content))
}

func TestTableWriter_UnwritablePath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	writer := NewTableWriter(files.NewManager(nil), DefaultTSVOptions(), nil)
	_, err := writer.WriteTable(filepath.Join(blocker, "out.tsv"), sampleTable())

	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeStorage))
}
