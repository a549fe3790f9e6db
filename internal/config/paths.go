package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths resolves every file location of a run against one base directory.
// Relative paths in the configuration are relative to BaseDir, which is the
// working directory unless set otherwise.
type Paths struct {
	BaseDir string

	InputFiles   []string
	InputDir     string
	OutputFile   string
	ReportFile   string
	WorkbookFile string
	ManifestFile string
	MetricsFile  string
	SQLiteFile   string
	LogFile      string
}

// NewPaths resolves the file locations of cfg. An empty baseDir means the
// current working directory.
func NewPaths(cfg *Config, baseDir string) (*Paths, error) {
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		baseDir = wd
	}

	p := &Paths{BaseDir: filepath.Clean(baseDir)}

	p.InputFiles = make([]string, 0, len(cfg.Pipeline.InputFiles))
	for _, f := range cfg.Pipeline.InputFiles {
		p.InputFiles = append(p.InputFiles, p.Resolve(f))
	}
	p.InputDir = p.Resolve(cfg.Pipeline.InputDir)
	p.OutputFile = p.Resolve(cfg.Pipeline.OutputFile)
	p.ReportFile = p.Resolve(cfg.Pipeline.ReportFile)
	p.WorkbookFile = p.Resolve(cfg.Pipeline.WorkbookFile)
	p.ManifestFile = p.Resolve(cfg.Pipeline.ManifestFile)
	p.MetricsFile = p.Resolve(cfg.Telemetry.MetricsFile)
	p.SQLiteFile = p.Resolve(cfg.Storage.SQLitePath)
	p.LogFile = p.Resolve(cfg.Logging.FilePath)

	return p, nil
}

// Resolve makes path absolute against BaseDir. Empty paths stay empty so
// that optional outputs remain switched off.
func (p *Paths) Resolve(path string) string {
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(p.BaseDir, path)
}

// Outputs returns every configured output file, in the order they are produced
func (p *Paths) Outputs() []string {
	outputs := make([]string, 0, 6)
	for _, f := range []string{p.OutputFile, p.ReportFile, p.WorkbookFile, p.SQLiteFile, p.MetricsFile, p.ManifestFile} {
		if f != "" {
			outputs = append(outputs, f)
		}
	}
	return outputs
}

// EnsureDirectories creates the parent directory of every output file
func (p *Paths) EnsureDirectories() error {
	logger := slog.Default()

	for _, f := range p.Outputs() {
		dir := filepath.Dir(f)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		logger.Debug("Ensured directory exists", slog.String("directory", dir))
	}

	return nil
}

// LogPathResolution logs the resolved locations of a run
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Path resolution summary",
		slog.String("base_dir", p.BaseDir),
		slog.Group("inputs",
			slog.Any("files", p.InputFiles),
			slog.String("dir", p.InputDir),
		),
		slog.Group("outputs",
			slog.String("table", p.OutputFile),
			slog.String("report", p.ReportFile),
			slog.String("workbook", p.WorkbookFile),
			slog.String("manifest", p.ManifestFile),
			slog.String("metrics", p.MetricsFile),
			slog.String("sqlite", p.SQLiteFile),
		))
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
