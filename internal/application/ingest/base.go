package ingest

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/creatorhub/backend/internal/domain/earnings"
	"github.com/creatorhub/backend/internal/infrastructure/logger"
	"github.com/creatorhub/backend/internal/infrastructure/storage"
	"github.com/creatorhub/backend/internal/infrastructure/telemetry"
)

// Base carries what every sync service shares: the raw payload archive,
// run metrics, logging and the clock
type Base struct {
	archiver storage.Archiver
	metrics  *telemetry.SyncMetrics
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures a sync service
type Option func(*Base)

// WithArchiver archives the raw vendor payloads fetched during a run
func WithArchiver(a storage.Archiver) Option {
	return func(b *Base) {
		if a != nil {
			b.archiver = a
		}
	}
}

// WithMetrics records run, creator and record counters
func WithMetrics(m *telemetry.SyncMetrics) Option {
	return func(b *Base) {
		b.metrics = m
	}
}

// WithLogger sets the service logger
func WithLogger(l *zap.Logger) Option {
	return func(b *Base) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(b *Base) {
		if now != nil {
			b.now = now
		}
	}
}

func newBase(opts []Option) Base {
	b := Base{
		archiver: storage.NopArchiver{},
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// run tracks a single job execution
type run struct {
	base   *Base
	ctx    context.Context
	span   trace.Span
	report *RunReport
	log    *zap.Logger
}

func (b *Base) start(ctx context.Context, job string) *run {
	ctx = logger.WithJob(ctx, job)
	ctx, span := telemetry.StartSpan(ctx, "ingest."+job, "job", job)
	r := &run{
		base:   b,
		ctx:    ctx,
		span:   span,
		report: newRunReport(job, b.now().UTC()),
	}
	r.log = logger.Enrich(ctx, b.logger)
	r.log.Info("Sync started")
	return r
}

// add records a result and its counters
func (r *run) add(res CreatorResult) {
	r.report.Add(res)
	job := r.report.Job
	r.base.metrics.RecordCreator(r.ctx, job, res.Status)
	for kind, n := range res.Counts {
		r.base.metrics.RecordRecords(r.ctx, job, kind, n)
	}

	fields := []zap.Field{zap.String("status", res.Status)}
	if res.Creator != "" {
		fields = append(fields, zap.String("creator_id", res.Creator))
	}
	if res.Table != "" {
		fields = append(fields, zap.String("table", res.Table))
	}
	if res.Error != "" {
		fields = append(fields, zap.String("error", res.Error))
	}
	if res.Status == StatusError {
		r.log.Warn("Sync unit failed", fields...)
		return
	}
	r.log.Debug("Sync unit finished", fields...)
}

// archive stores a raw payload; failures are logged and never fail the run
func (r *run) archive(ctx context.Context, platform, creatorID string, payload any) {
	key, err := r.base.archiver.Archive(ctx, storage.Archive{
		Platform:  platform,
		CreatorID: creatorID,
		Job:       r.report.Job,
		FetchedAt: r.base.now(),
		Payload:   payload,
	})
	if err != nil {
		r.log.Warn("Failed to archive raw payload",
			zap.String("platform", platform),
			zap.String("creator_id", creatorID),
			zap.Error(err))
		return
	}
	if key != "" {
		r.log.Debug("Archived raw payload", zap.String("key", key))
	}
}

// finish closes the run. A non-nil err is a job-level failure.
func (r *run) finish(err error) (*RunReport, error) {
	rep := r.report
	rep.FinishedAt = r.base.now().UTC()
	elapsed := rep.FinishedAt.Sub(rep.StartedAt)

	outcome := rep.Outcome()
	if err != nil {
		outcome = OutcomeFailed
	}
	r.base.metrics.RecordRun(r.ctx, rep.Job, outcome, elapsed)

	telemetry.SetCounts(r.span, map[string]int{
		"synced":  rep.Synced,
		"errors":  rep.Errors,
		"skipped": rep.Skipped,
	})
	telemetry.EndSpan(r.span, err)

	if err != nil {
		r.log.Error("Sync failed", zap.Error(err), zap.Duration("elapsed", elapsed))
		return rep, err
	}
	r.log.Info("Sync finished",
		zap.String("outcome", outcome),
		zap.Int("synced", rep.Synced),
		zap.Int("errors", rep.Errors),
		zap.Int("skipped", rep.Skipped),
		zap.Duration("elapsed", elapsed))
	return rep, nil
}

// keepValidSales drops sales the store would reject
func (r *run) keepValidSales(sales []earnings.Sale) []earnings.Sale {
	out := sales[:0]
	for _, s := range sales {
		if err := s.Validate(); err != nil {
			r.log.Debug("Dropping invalid sale", zap.String("external_order_id", s.ExternalOrderID), zap.Error(err))
			continue
		}
		out = append(out, s)
	}
	return out
}
