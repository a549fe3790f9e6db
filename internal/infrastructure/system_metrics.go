package infrastructure

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// SystemMetrics records a runtime snapshot at the end of a run. A batch job
// exits right after, so one sample is all the textfile needs.
type SystemMetrics struct {
	memoryInUse     metric.Int64Gauge
	memoryAllocated metric.Int64Gauge
	memorySystem    metric.Int64Gauge
	gcCount         metric.Int64Gauge
	goRoutines      metric.Int64Gauge
	processUptime   metric.Float64Gauge
}

// NewSystemMetrics creates the runtime gauges on meter
func NewSystemMetrics(meter metric.Meter) (*SystemMetrics, error) {
	memoryInUse, err := meter.Int64Gauge(
		"movrec_memory_in_use_bytes",
		metric.WithDescription("Heap bytes in use at the end of the run"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	memoryAllocated, err := meter.Int64Gauge(
		"movrec_memory_allocated_bytes",
		metric.WithDescription("Cumulative heap bytes allocated during the run"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	memorySystem, err := meter.Int64Gauge(
		"movrec_memory_system_bytes",
		metric.WithDescription("Memory obtained from the OS in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	gcCount, err := meter.Int64Gauge(
		"movrec_gc_count",
		metric.WithDescription("Completed garbage collection cycles"),
	)
	if err != nil {
		return nil, err
	}

	goRoutines, err := meter.Int64Gauge(
		"movrec_goroutines",
		metric.WithDescription("Number of goroutines"),
	)
	if err != nil {
		return nil, err
	}

	processUptime, err := meter.Float64Gauge(
		"movrec_process_uptime_seconds",
		metric.WithDescription("Process uptime in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &SystemMetrics{
		memoryInUse:     memoryInUse,
		memoryAllocated: memoryAllocated,
		memorySystem:    memorySystem,
		gcCount:         gcCount,
		goRoutines:      goRoutines,
		processUptime:   processUptime,
	}, nil
}

// SystemStats holds one runtime sample
type SystemStats struct {
	MemoryInUse     int64
	MemoryAllocated int64
	MemorySystem    int64
	GCCount         uint32
	GoRoutines      int64
	ProcessUptime   time.Duration
}

// Collect samples the Go runtime and records the gauges
func (sm *SystemMetrics) Collect(ctx context.Context, startTime time.Time) SystemStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	stats := SystemStats{
		MemoryInUse:     int64(memStats.Alloc),
		MemoryAllocated: int64(memStats.TotalAlloc),
		MemorySystem:    int64(memStats.Sys),
		GCCount:         memStats.NumGC,
		GoRoutines:      int64(runtime.NumGoroutine()),
		ProcessUptime:   time.Since(startTime),
	}

	sm.memoryInUse.Record(ctx, stats.MemoryInUse)
	sm.memoryAllocated.Record(ctx, stats.MemoryAllocated)
	sm.memorySystem.Record(ctx, stats.MemorySystem)
	sm.gcCount.Record(ctx, int64(stats.GCCount))
	sm.goRoutines.Record(ctx, stats.GoRoutines)
	sm.processUptime.Record(ctx, stats.ProcessUptime.Seconds())

	return stats
}

// LogValue renders the sample for structured logging
func (s SystemStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("memory_in_use_mb", s.MemoryInUse/1024/1024),
		slog.Int64("memory_allocated_mb", s.MemoryAllocated/1024/1024),
		slog.Int64("memory_system_mb", s.MemorySystem/1024/1024),
		slog.Any("gc_count", s.GCCount),
		slog.Int64("goroutines", s.GoRoutines),
		slog.Duration("uptime", s.ProcessUptime),
	)
}
