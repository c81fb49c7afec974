package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SyncMetrics records ingestion job outcomes
type SyncMetrics struct {
	runs     metric.Int64Counter
	records  metric.Int64Counter
	creators metric.Int64Counter
	duration metric.Float64Histogram
}

// NewSyncMetrics registers the ingestion instruments on meter
func NewSyncMetrics(meter metric.Meter) (*SyncMetrics, error) {
	runs, err := meter.Int64Counter("creatorhub_sync_runs_total",
		metric.WithDescription("Sync job runs by job and final status"),
		metric.WithUnit("{run}"))
	if err != nil {
		return nil, err
	}
	records, err := meter.Int64Counter("creatorhub_sync_records_total",
		metric.WithDescription("Rows written by sync jobs"),
		metric.WithUnit("{record}"))
	if err != nil {
		return nil, err
	}
	creators, err := meter.Int64Counter("creatorhub_sync_creators_total",
		metric.WithDescription("Per-creator sync results by status"),
		metric.WithUnit("{creator}"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("creatorhub_sync_duration_seconds",
		metric.WithDescription("Sync job wall time"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(1, 5, 15, 30, 60, 120, 300, 600, 1800))
	if err != nil {
		return nil, err
	}
	return &SyncMetrics{runs: runs, records: records, creators: creators, duration: duration}, nil
}

// RecordRun counts a finished run and its duration
func (m *SyncMetrics) RecordRun(ctx context.Context, job, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("job", job), attribute.String("status", status))
	m.runs.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String("job", job)))
}

// RecordCreator counts one per-creator result
func (m *SyncMetrics) RecordCreator(ctx context.Context, job, status string) {
	if m == nil {
		return
	}
	m.creators.Add(ctx, 1, metric.WithAttributes(attribute.String("job", job), attribute.String("status", status)))
}

// RecordRecords counts rows written under a named counter such as "inserted"
func (m *SyncMetrics) RecordRecords(ctx context.Context, job, kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.records.Add(ctx, int64(n), metric.WithAttributes(attribute.String("job", job), attribute.String("kind", kind)))
}
