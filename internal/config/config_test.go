package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movrec/internal/errors"
	"movrec/pkg/contracts/domain"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, []string{"data/movrec_mtan.tsv", "data/movrec_emre.tsv"}, cfg.Pipeline.InputFiles)
	assert.Equal(t, "data/movie_data.tsv", cfg.Pipeline.OutputFile)
	assert.Equal(t, domain.ReviewColumns, cfg.Pipeline.Columns)
	assert.Equal(t, domain.ColumnUserReview, cfg.Pipeline.SanitizeColumn)
	assert.Equal(t, domain.ColumnUserName, cfg.Pipeline.DuplicateKey)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "none", cfg.Telemetry.TraceExporter)
	assert.False(t, cfg.Storage.Postgres.Enabled)

	require.NoError(t, cfg.Validate())

	// the defaults must not alias the shared column list
	cfg.Pipeline.Columns[0] = "changed"
	assert.Equal(t, domain.ColumnUserName, domain.ReviewColumns[0])
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		env         map[string]string
		overrides   []Override
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults only",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, Default(), cfg)
			},
		},
		{
			name: "file overlays defaults",
			file: `
pipeline:
  input_files: [a.tsv, b.tsv, c.tsv]
  output_file: out/clean.tsv
logging:
  level: debug
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"a.tsv", "b.tsv", "c.tsv"}, cfg.Pipeline.InputFiles)
				assert.Equal(t, "out/clean.tsv", cfg.Pipeline.OutputFile)
				assert.Equal(t, "debug", cfg.Logging.Level)
				// untouched keys keep their defaults
				assert.Equal(t, domain.ColumnUserReview, cfg.Pipeline.SanitizeColumn)
				assert.Equal(t, "json", cfg.Logging.Format)
			},
		},
		{
			name: "env wins over file",
			file: `
pipeline:
  output_file: from-file.tsv
`,
			env: map[string]string{
				"MOVREC_PIPELINE_OUTPUT_FILE":                "from-env.tsv",
				"MOVREC_PIPELINE_INPUT_FILES":                "x.tsv,y.tsv",
				"MOVREC_TELEMETRY_TRACE_EXPORTER":            "stdout",
				"MOVREC_STORAGE_SQLITE_PATH":                 "data/reviews.db",
				"MOVREC_STORAGE_POSTGRES_DATABASE_MAX_CONNS": "8",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "from-env.tsv", cfg.Pipeline.OutputFile)
				assert.Equal(t, []string{"x.tsv", "y.tsv"}, cfg.Pipeline.InputFiles)
				assert.Equal(t, "stdout", cfg.Telemetry.TraceExporter)
				assert.Equal(t, "data/reviews.db", cfg.Storage.SQLitePath)
				assert.Equal(t, 8, cfg.Storage.Postgres.Database.MaxConns)
			},
		},
		{
			name: "unprefixed variables are ignored",
			env: map[string]string{
				"USER":  "someone",
				"LEVEL": "error",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Empty(t, cfg.Storage.Postgres.Database.User)
				assert.Equal(t, "info", cfg.Logging.Level)
			},
		},
		{
			name: "overrides win over env",
			env: map[string]string{
				"MOVREC_PIPELINE_SANITIZE_COLUMN": "movie_name",
			},
			overrides: []Override{
				func(c *Config) { c.Pipeline.SanitizeColumn = "user_review" },
				func(c *Config) { c.Pipeline.ReportFile = "report.json" },
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "user_review", cfg.Pipeline.SanitizeColumn)
				assert.Equal(t, "report.json", cfg.Pipeline.ReportFile)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			}

			cfg, err := Load(path, tt.overrides...)
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrTypeConfig))
	})

	t.Run("unknown key", func(t *testing.T) {
		path := writeConfigFile(t, "pipeline:\n  outptu_file: typo.tsv\n")
		_, err := Load(path)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrTypeConfig))
	})

	t.Run("bad env value", func(t *testing.T) {
		t.Setenv("MOVREC_STORAGE_POSTGRES_ENABLED", "maybe")
		_, err := Load("")
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrTypeConfig))
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{
			name:    "no output file",
			mutate:  func(c *Config) { c.Pipeline.OutputFile = "" },
			wantMsg: "pipeline.output_file is required",
		},
		{
			name: "no inputs at all",
			mutate: func(c *Config) {
				c.Pipeline.InputFiles = nil
				c.Pipeline.InputDir = ""
			},
			wantMsg: "pipeline.input_files is required when InputDir is empty",
		},
		{
			name:    "duplicate columns",
			mutate:  func(c *Config) { c.Pipeline.Columns = []string{"a", "b", "a"} },
			wantMsg: "pipeline.columns must not contain duplicates",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "loud" },
			wantMsg: "logging.level must be one of: debug, info, warn, error",
		},
		{
			name:    "bad trace exporter",
			mutate:  func(c *Config) { c.Telemetry.TraceExporter = "jaeger" },
			wantMsg: "telemetry.trace_exporter must be one of: none, stdout",
		},
		{
			name: "postgres without database name",
			mutate: func(c *Config) {
				c.Storage.Postgres.Enabled = true
				c.Storage.Postgres.Database.User = "movrec"
			},
			wantMsg: "storage.postgres.database.name is required",
		},
		{
			name: "postgres min above max",
			mutate: func(c *Config) {
				c.Storage.Postgres.Enabled = true
				c.Storage.Postgres.Database.Name = "reviews"
				c.Storage.Postgres.Database.User = "movrec"
				c.Storage.Postgres.Database.MinConns = 5
				c.Storage.Postgres.Database.MaxConns = 2
			},
			wantMsg: "storage.postgres.database.min_conns (5) cannot exceed max_conns (2)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrTypeConfig))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestValidate_InputDirInsteadOfFiles(t *testing.T) {
	cfg := Default()
	cfg.Pipeline.InputFiles = nil
	cfg.Pipeline.InputDir = "data"

	assert.NoError(t, cfg.Validate())

	cfg.Pipeline.InputPattern = ""
	assert.Error(t, cfg.Validate())
}

func TestValidate_PostgresComplete(t *testing.T) {
	cfg := Default()
	cfg.Storage.Postgres.Enabled = true
	cfg.Storage.Postgres.Database.Name = "reviews"
	cfg.Storage.Postgres.Database.User = "movrec"

	assert.NoError(t, cfg.Validate())
}
