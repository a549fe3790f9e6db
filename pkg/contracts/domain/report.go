package domain

import (
	"time"
)

// FileLoadStats describes what the loader read from a single input file
type FileLoadStats struct {
	Path        string `json:"path"`
	RowsRead    int    `json:"rows_read"`
	RowsDropped int    `json:"rows_dropped"`
}

// LoadStats summarises a load over all input files
type LoadStats struct {
	Files       []FileLoadStats `json:"files"`
	RowsRead    int             `json:"rows_read"`
	RowsDropped int             `json:"rows_dropped"`
	RowsLoaded  int             `json:"rows_loaded"`
}

// KeyCount is the number of removed duplicates sharing one key value
type KeyCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// DedupReport describes the outcome of duplicate resolution
type DedupReport struct {
	KeyColumn      string     `json:"key_column"`
	TotalRows      int        `json:"total_rows"`
	UniqueRows     int        `json:"unique_rows"`
	DuplicateCount int        `json:"duplicate_count"`
	AllUnique      bool       `json:"all_unique"`
	ByKey          []KeyCount `json:"by_key"`
}

// SanitizeStats describes what the text sanitizer dropped
type SanitizeStats struct {
	Column        string `json:"column"`
	ValuesChanged int    `json:"values_changed"`
	RunesDropped  int    `json:"runes_dropped"`
}

// RunReport is the JSON summary written after a cleaning run
type RunReport struct {
	RunID       string        `json:"run_id"`
	GeneratedAt time.Time     `json:"generated_at"`
	OutputFile  string        `json:"output_file"`
	RowsWritten int           `json:"rows_written"`
	Load        LoadStats     `json:"load"`
	Dedup       DedupReport   `json:"dedup"`
	Sanitize    SanitizeStats `json:"sanitize"`
}
