package exporter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movrec/internal/files"
	"movrec/pkg/contracts/domain"
)

func sampleReport() domain.RunReport {
	return domain.RunReport{
		RunID:       "3f0c9b4e-5d0a-4d55-9a63-0c1f2b7a8e11",
		GeneratedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		OutputFile:  "data/movie_data.tsv",
		RowsWritten: 2,
		Load: domain.LoadStats{
			Files:       []domain.FileLoadStats{{Path: "a.tsv", RowsRead: 4, RowsDropped: 1}},
			RowsRead:    4,
			RowsDropped: 1,
			RowsLoaded:  3,
		},
		Dedup: domain.DedupReport{
			KeyColumn:      domain.ColumnUserName,
			TotalRows:      3,
			UniqueRows:     2,
			DuplicateCount: 1,
			ByKey:          []domain.KeyCount{{Key: "alice", Count: 1}},
		},
		Sanitize: domain.SanitizeStats{Column: domain.ColumnUserReview, ValuesChanged: 1, RunesDropped: 2},
	}
}

func TestReportWriter_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	report := sampleReport()

	require.NoError(t, NewReportWriter(files.NewManager(nil), nil).Write(path, report))

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded domain.RunReport
	require.NoError(t, json.Unmarshal(content, &decoded))
	assert.Equal(t, report, decoded)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(content, &raw))
	dedup := raw["dedup"].(map[string]any)
	assert.Equal(t, false, dedup["all_unique"])
	assert.Equal(t, float64(1), dedup["duplicate_count"])
	assert.Contains(t, string(content), "\n  \"run_id\"")
}
