package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"movrec/internal/config"
	"movrec/internal/dataprocessing"
	"movrec/internal/exporter"
	"movrec/internal/files"
	"movrec/internal/infrastructure"
	"movrec/internal/operations"
	"movrec/internal/storage"
	"movrec/internal/validation"
	"movrec/pkg/contracts"
	"movrec/pkg/contracts/domain"
)

// Options controls how an Application is built
type Options struct {
	// ConfigPath is the YAML file to load, searched for when empty
	ConfigPath string
	// BaseDir resolves relative paths, the working directory when empty
	BaseDir string
	// Console receives console log output, os.Stderr when nil
	Console io.Writer
	// Overrides are applied after file and environment configuration
	Overrides []config.Override
}

// Application wires configuration, logging, telemetry and the cleaning steps
// of one run
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.PipelineMetrics
	SystemMetrics *infrastructure.SystemMetrics
	Files         *files.Manager
	Runner        *operations.Runner

	sinks     []storage.Sink
	startTime time.Time
}

// NewApplication loads the configuration and builds every component of a run
func NewApplication(ctx context.Context, opts Options) (*Application, error) {
	startTime := time.Now()

	cfg, err := config.Load(opts.ConfigPath, opts.Overrides...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	paths, err := config.NewPaths(cfg, opts.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	cfg.Logging.FilePath = paths.LogFile

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	logger, err := infrastructure.NewLogger(cfg.Logging, console)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	slog.SetDefault(logger)

	logger.InfoContext(ctx, "Application starting",
		slog.String("version", contracts.Version),
		slog.String("commit", contracts.GitCommit))
	paths.LogPathResolution(logger)

	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	if err := validation.NewFileValidator(logger).ValidateOutputs(paths.Outputs()); err != nil {
		return nil, err
	}

	providers, err := infrastructure.InitializeOTel(infrastructure.NewOTelConfig(cfg.Telemetry, contracts.Version), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	metrics, err := infrastructure.CreatePipelineMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}
	systemMetrics, err := infrastructure.NewSystemMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create system metrics: %w", err)
	}

	a := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: providers,
		Metrics:       metrics,
		SystemMetrics: systemMetrics,
		Files:         files.NewManager(logger),
		startTime:     startTime,
	}

	if err := a.buildRunner(ctx); err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	return a, nil
}

// buildRunner registers the cleaning steps and every configured output
func (a *Application) buildRunner(ctx context.Context) error {
	pipeline := a.Config.Pipeline
	schema := domain.NewSchema(pipeline.Columns...)

	a.Runner = operations.NewRunner(a.Logger, a.OTelProviders.Tracer, a.Metrics)
	a.Runner.Add(
		&operations.LoadStep{
			Loader:    dataprocessing.NewLoader(schema, a.Logger),
			Discovery: files.NewDiscovery(a.Paths.BaseDir),
			Files:     a.Paths.InputFiles,
			Dir:       a.Paths.InputDir,
			Pattern:   pipeline.InputPattern,
			Metrics:   a.Metrics,
		},
		&operations.DeduplicateStep{
			Deduplicator: dataprocessing.NewDeduplicator(pipeline.DuplicateKey, a.Logger),
			Metrics:      a.Metrics,
		},
	)
	if pipeline.SanitizeColumn != "" {
		a.Runner.Add(&operations.SanitizeStep{
			Sanitizer: dataprocessing.NewSanitizer(a.Logger),
			Column:    pipeline.SanitizeColumn,
			Metrics:   a.Metrics,
		})
	}
	a.Runner.Add(&operations.ExportStep{
		Writer:  exporter.NewTableWriter(a.Files, exporter.DefaultTSVOptions(), a.Logger),
		Path:    a.Paths.OutputFile,
		Metrics: a.Metrics,
	})

	if a.Paths.ReportFile != "" {
		a.Runner.Add(&operations.ReportStep{
			Writer: exporter.NewReportWriter(a.Files, a.Logger),
			Path:   a.Paths.ReportFile,
		})
	}
	if a.Paths.WorkbookFile != "" {
		a.Runner.Add(&operations.WorkbookStep{
			Exporter: exporter.NewWorkbookExporter(a.Files, a.Logger),
			Path:     a.Paths.WorkbookFile,
			Metrics:  a.Metrics,
		})
	}

	if a.Paths.SQLiteFile != "" {
		sink, err := storage.NewSQLiteSink(a.Paths.SQLiteFile, a.Config.Storage.Table, a.Logger)
		if err != nil {
			return err
		}
		a.sinks = append(a.sinks, sink)
		a.Runner.Add(&operations.SinkStep{Sink: sink, Path: a.Paths.SQLiteFile, Metrics: a.Metrics})
	}
	if a.Config.Storage.Postgres.Enabled {
		sink, err := storage.NewPostgresSink(ctx, a.Config.Storage.Postgres.Database, a.Config.Storage.Table, a.Logger)
		if err != nil {
			return err
		}
		a.sinks = append(a.sinks, sink)
		a.Runner.Add(&operations.SinkStep{Sink: sink, Metrics: a.Metrics})
	}

	return nil
}

// Run executes one cleaning run. The metrics textfile and the manifest are
// written even when a step fails, so a failed run still leaves a record.
func (a *Application) Run(ctx context.Context) error {
	runID := infrastructure.NewRunID()
	ctx = infrastructure.WithRunID(ctx, runID)
	state := operations.NewRunState(runID)

	runErr := a.Runner.Run(ctx, state)

	stats := a.SystemMetrics.Collect(ctx, a.startTime)
	a.Logger.InfoContext(ctx, "Run resources", slog.Any("system", stats))

	if a.Paths.MetricsFile != "" {
		if err := a.OTelProviders.WriteMetricsTextfile(a.Paths.MetricsFile); err != nil {
			a.Logger.ErrorContext(ctx, "Failed to write metrics", slog.String("error", err.Error()))
		} else {
			state.AddOutput(a.Paths.MetricsFile)
		}
	}

	if a.Paths.ManifestFile != "" {
		if err := a.writeManifest(state, runErr); err != nil {
			a.Logger.ErrorContext(ctx, "Failed to write manifest", slog.String("error", err.Error()))
			if runErr == nil {
				return err
			}
		}
	}

	if runErr != nil {
		return runErr
	}

	a.Logger.InfoContext(ctx, "Run finished",
		slog.String("output", state.OutputFile),
		slog.Int("rows_written", state.RowsWritten),
		slog.Int("duplicates", state.Dedup.DuplicateCount))
	return nil
}

func (a *Application) writeManifest(state *operations.RunState, runErr error) error {
	manifest := operations.NewRunManifest(state, a.Runner.Executions(), contracts.Version, runErr)
	if err := manifest.Digest(a.Files, state.Inputs, state.Outputs); err != nil {
		return err
	}
	return manifest.Write(a.Files, a.Paths.ManifestFile)
}

// Close releases the sinks, flushes telemetry and closes the log file
func (a *Application) Close(ctx context.Context) error {
	var errs []error

	for _, sink := range a.sinks {
		if err := sink.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s sink: %w", sink.Name(), err))
		}
	}
	a.sinks = nil

	if a.OTelProviders != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		errs = append(errs, fmt.Errorf("close log file: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}
