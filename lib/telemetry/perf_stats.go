package telemetry

import (
	"context"
	"log/slog"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/process"
	"go.opentelemetry.io/otel"
)

var meter = otel.Meter("go.perf_stats")
var cpuGauge, _ = meter.Float64Gauge("cpu_usage")
var memoryGauge, _ = meter.Int64Gauge("allocated_mb")
var rssGauge, _ = meter.Int64Gauge("rss_mb")
var goroutineGauge, _ = meter.Int64Gauge("goroutine_count")

// RecordPerfStats records a single snapshot of the process resource usage,
// it is called once at the end of a run instead of on a ticker since a
// batch only lives for a few seconds.
func RecordPerfStats(ctx context.Context) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	// interval 0 compares against the last call (or boot), which is enough for a single point
	cpuUsage, err := cpu.PercentWithContext(ctx, 0, false)
	if err == nil && len(cpuUsage) > 0 {
		cpuGauge.Record(ctx, cpuUsage[0])
	} else if err != nil {
		slog.DebugContext(ctx, "failed to read cpu usage", "err", err)
	}

	proc, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
	if err == nil {
		info, err := proc.MemoryInfoWithContext(ctx)
		if err == nil {
			rssGauge.Record(ctx, int64(info.RSS/1_000_000))
		}
	}

	memoryGauge.Record(ctx, int64(memStats.Alloc/1_000_000))
	goroutineGauge.Record(ctx, int64(runtime.NumGoroutine()))

	slog.DebugContext(
		ctx, "perf stats",
		"allocated_mb", memStats.Alloc/1_000_000,
		"goroutines", runtime.NumGoroutine(),
	)
}
