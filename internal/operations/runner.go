package operations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"movrec/internal/infrastructure"
)

// Runner executes steps one after another and stops at the first failure.
// Each step depends on the table produced by the one before it.
type Runner struct {
	steps      []Step
	tracer     trace.Tracer
	metrics    *infrastructure.PipelineMetrics
	logger     *slog.Logger
	executions []StepExecution
}

// NewRunner creates a runner. A nil tracer disables spans and nil metrics
// record nothing.
func NewRunner(logger *slog.Logger, tracer trace.Tracer, metrics *infrastructure.PipelineMetrics) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(infrastructure.InstrumentationName)
	}
	return &Runner{tracer: tracer, metrics: metrics, logger: logger}
}

// Add appends steps to the run
func (r *Runner) Add(steps ...Step) {
	r.steps = append(r.steps, steps...)
}

// Steps returns the IDs of the registered steps, in execution order
func (r *Runner) Steps() []string {
	ids := make([]string, len(r.steps))
	for i, s := range r.steps {
		ids[i] = s.ID()
	}
	return ids
}

// Executions returns the steps executed by the last Run
func (r *Runner) Executions() []StepExecution {
	out := make([]StepExecution, len(r.executions))
	copy(out, r.executions)
	return out
}

// Run executes every step against state
func (r *Runner) Run(ctx context.Context, state *RunState) error {
	r.executions = r.executions[:0]
	start := time.Now()

	if infrastructure.GetRunID(ctx) == "" {
		ctx = infrastructure.WithRunID(ctx, state.RunID)
	}

	ctx, span := r.tracer.Start(ctx, "movrec.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", state.RunID),
			attribute.Int("run.steps", len(r.steps)),
		),
	)
	defer span.End()

	r.logger.InfoContext(ctx, "run_start",
		slog.Any("steps", r.Steps()))

	err := r.runSteps(ctx, state)
	duration := time.Since(start)
	r.metrics.RecordRun(ctx, duration, err == nil)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.logger.ErrorContext(ctx, "run_error",
			slog.String("step", GetErrorStep(err)),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return err
	}

	span.SetStatus(codes.Ok, "")
	r.logger.InfoContext(ctx, "run_complete",
		slog.Duration("duration", duration),
		slog.Int("rows_written", state.RowsWritten))
	return nil
}

func (r *Runner) runSteps(ctx context.Context, state *RunState) error {
	for _, step := range r.steps {
		if err := ctx.Err(); err != nil {
			return NewCancellationError(step.ID(), err)
		}
		if err := r.executeStep(ctx, state, step); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) executeStep(ctx context.Context, state *RunState, step Step) error {
	ctx, span := r.tracer.Start(ctx, fmt.Sprintf("movrec.step.%s", step.ID()),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", state.RunID),
			attribute.String("step.id", step.ID()),
			attribute.String("step.name", step.Name()),
		),
	)
	defer span.End()

	r.logger.InfoContext(ctx, "step_start",
		slog.String("step", step.ID()))

	start := time.Now()
	err := step.Execute(ctx, state)
	end := time.Now()
	duration := end.Sub(start)

	r.metrics.RecordStep(ctx, step.ID(), duration, err == nil)

	if err != nil {
		err = WrapError(err, step.ID())
		status := StepStatusFailed
		if IsCancellation(err) {
			status = StepStatusCanceled
		}
		r.executions = append(r.executions, newStepExecution(step, start, end, status, err))

		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.logger.ErrorContext(ctx, "step_error",
			slog.String("step", step.ID()),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return err
	}

	r.executions = append(r.executions, newStepExecution(step, start, end, StepStatusCompleted, nil))
	span.SetStatus(codes.Ok, "")
	r.logger.InfoContext(ctx, "step_complete",
		slog.String("step", step.ID()),
		slog.Duration("duration", duration))
	return nil
}
