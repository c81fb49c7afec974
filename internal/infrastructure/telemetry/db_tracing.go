package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds database tracing configuration
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool // include bind variables; development only
	SlowQueryThresh time.Duration
	DBName          string
}

type dbStartKey struct{}

// RegisterDBTracing installs otelgorm plus slow-query marking on db.
// It does nothing when disabled.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.DBName == "" {
		cfg.DBName = "postgresql"
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBName)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	slow := slowQueryMarker{thresh: cfg.SlowQueryThresh, logger: logger}
	cb := db.Callback()
	err := errors.Join(
		cb.Create().Before("gorm:create").Register("creatorhub:start_create", markStart),
		cb.Create().After("gorm:create").Register("creatorhub:slow_create", slow.check),
		cb.Query().Before("gorm:query").Register("creatorhub:start_query", markStart),
		cb.Query().After("gorm:query").Register("creatorhub:slow_query", slow.check),
		cb.Update().Before("gorm:update").Register("creatorhub:start_update", markStart),
		cb.Update().After("gorm:update").Register("creatorhub:slow_update", slow.check),
		cb.Delete().Before("gorm:delete").Register("creatorhub:start_delete", markStart),
		cb.Delete().After("gorm:delete").Register("creatorhub:slow_delete", slow.check),
		cb.Row().Before("gorm:row").Register("creatorhub:start_row", markStart),
		cb.Row().After("gorm:row").Register("creatorhub:slow_row", slow.check),
		cb.Raw().Before("gorm:raw").Register("creatorhub:start_raw", markStart),
		cb.Raw().After("gorm:raw").Register("creatorhub:slow_raw", slow.check),
	)
	if err != nil {
		return err
	}
	logger.Info("Database tracing enabled", zap.Duration("slow_query_threshold", cfg.SlowQueryThresh))
	return nil
}

func markStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, dbStartKey{}, time.Now())
	}
}

type slowQueryMarker struct {
	thresh time.Duration
	logger *zap.Logger
}

func (m slowQueryMarker) check(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	start, ok := ctx.Value(dbStartKey{}).(time.Time)
	if !ok {
		return
	}
	elapsed := time.Since(start)
	if elapsed <= m.thresh {
		return
	}
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
	}
	m.logger.Warn("slow query",
		zap.String("table", db.Statement.Table),
		zap.Duration("elapsed", elapsed),
		zap.Duration("threshold", m.thresh),
	)
}
