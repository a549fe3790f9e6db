package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PipelineMetrics holds the instruments of a cleaning run
type PipelineMetrics struct {
	RowsRead          metric.Int64Counter
	RowsDropped       metric.Int64Counter
	RowsLoaded        metric.Int64Counter
	DuplicatesRemoved metric.Int64Counter
	ValuesSanitized   metric.Int64Counter
	RunesDropped      metric.Int64Counter
	RowsWritten       metric.Int64Counter
	StepExecutions    metric.Int64Counter
	StepDuration      metric.Float64Histogram
	RunDuration       metric.Float64Histogram
}

// CreatePipelineMetrics creates the pipeline instruments on meter
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	rowsRead, err := meter.Int64Counter(
		"movrec_rows_read_total",
		metric.WithDescription("Rows read from review files, per file"),
	)
	if err != nil {
		return nil, err
	}

	rowsDropped, err := meter.Int64Counter(
		"movrec_rows_dropped_total",
		metric.WithDescription("Rows dropped because they held a missing value"),
	)
	if err != nil {
		return nil, err
	}

	rowsLoaded, err := meter.Int64Counter(
		"movrec_rows_loaded_total",
		metric.WithDescription("Rows kept after loading"),
	)
	if err != nil {
		return nil, err
	}

	duplicatesRemoved, err := meter.Int64Counter(
		"movrec_duplicates_removed_total",
		metric.WithDescription("Rows removed as exact duplicates of an earlier row"),
	)
	if err != nil {
		return nil, err
	}

	valuesSanitized, err := meter.Int64Counter(
		"movrec_values_sanitized_total",
		metric.WithDescription("Values changed by ASCII sanitization"),
	)
	if err != nil {
		return nil, err
	}

	runesDropped, err := meter.Int64Counter(
		"movrec_runes_dropped_total",
		metric.WithDescription("Non-ASCII runes removed by sanitization"),
	)
	if err != nil {
		return nil, err
	}

	rowsWritten, err := meter.Int64Counter(
		"movrec_rows_written_total",
		metric.WithDescription("Rows written, per sink"),
	)
	if err != nil {
		return nil, err
	}

	stepExecutions, err := meter.Int64Counter(
		"movrec_step_executions_total",
		metric.WithDescription("Pipeline step executions by status"),
	)
	if err != nil {
		return nil, err
	}

	stepDuration, err := meter.Float64Histogram(
		"movrec_step_duration_seconds",
		metric.WithDescription("Pipeline step duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	runDuration, err := meter.Float64Histogram(
		"movrec_run_duration_seconds",
		metric.WithDescription("Whole run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		RowsRead:          rowsRead,
		RowsDropped:       rowsDropped,
		RowsLoaded:        rowsLoaded,
		DuplicatesRemoved: duplicatesRemoved,
		ValuesSanitized:   valuesSanitized,
		RunesDropped:      runesDropped,
		RowsWritten:       rowsWritten,
		StepExecutions:    stepExecutions,
		StepDuration:      stepDuration,
		RunDuration:       runDuration,
	}, nil
}

func statusAttr(success bool) attribute.KeyValue {
	if success {
		return attribute.String("status", "success")
	}
	return attribute.String("status", "failure")
}

// RecordStep records one step execution. A nil receiver records nothing.
func (m *PipelineMetrics) RecordStep(ctx context.Context, stepID string, duration time.Duration, success bool) {
	if m == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("step", stepID), statusAttr(success))
	m.StepExecutions.Add(ctx, 1, attrs)
	m.StepDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordRun records the duration of a whole run
func (m *PipelineMetrics) RecordRun(ctx context.Context, duration time.Duration, success bool) {
	if m == nil {
		return
	}
	m.RunDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(statusAttr(success)))
}

// RecordFileLoaded records the rows read from and dropped for one input file
func (m *PipelineMetrics) RecordFileLoaded(ctx context.Context, path string, read, dropped int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("file", path))
	m.RowsRead.Add(ctx, int64(read), attrs)
	m.RowsDropped.Add(ctx, int64(dropped), attrs)
}

// RecordLoaded records the number of rows kept by the loader
func (m *PipelineMetrics) RecordLoaded(ctx context.Context, rows int) {
	if m == nil {
		return
	}
	m.RowsLoaded.Add(ctx, int64(rows))
}

// RecordDuplicates records removed duplicates
func (m *PipelineMetrics) RecordDuplicates(ctx context.Context, removed int) {
	if m == nil {
		return
	}
	m.DuplicatesRemoved.Add(ctx, int64(removed))
}

// RecordSanitized records the effect of sanitizing column
func (m *PipelineMetrics) RecordSanitized(ctx context.Context, column string, values, runes int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("column", column))
	m.ValuesSanitized.Add(ctx, int64(values), attrs)
	m.RunesDropped.Add(ctx, int64(runes), attrs)
}

// RecordWritten records rows delivered to a sink such as "tsv" or "sqlite"
func (m *PipelineMetrics) RecordWritten(ctx context.Context, sink string, rows int) {
	if m == nil {
		return
	}
	m.RowsWritten.Add(ctx, int64(rows), metric.WithAttributes(attribute.String("sink", sink)))
}
