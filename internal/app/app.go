package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/creatorhub/backend/internal/infrastructure/cache"
	"github.com/creatorhub/backend/internal/infrastructure/config"
	"github.com/creatorhub/backend/internal/infrastructure/logger"
	"github.com/creatorhub/backend/internal/infrastructure/persistence"
	"github.com/creatorhub/backend/internal/infrastructure/storage"
	"github.com/creatorhub/backend/internal/infrastructure/telemetry"
)

const meterName = "github.com/creatorhub/backend/ingest"

// Observability is the process logger plus the telemetry providers it exports through
type Observability struct {
	Logger    *zap.Logger
	Telemetry *telemetry.Providers
}

// NewObservability creates the zap logger, then the OpenTelemetry providers,
// then re-creates the logger with the OTel log bridge attached when log export is on.
func NewObservability(ctx context.Context, cfg *config.Config) (*Observability, error) {
	logCfg := &logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	log, err := logger.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	providers, err := telemetry.Setup(ctx, cfg.Telemetry, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	if providers.Logs.IsEnabled() {
		bridged, err := logger.New(logCfg, providers.Logs.Core(logger.ParseLevel(cfg.Log.Level)))
		if err != nil {
			return nil, errors.Join(fmt.Errorf("failed to initialize logger: %w", err), providers.Shutdown(ctx))
		}
		log = bridged
	}
	return &Observability{Logger: log, Telemetry: providers}, nil
}

// Shutdown flushes the providers and the logger
func (o *Observability) Shutdown(ctx context.Context) error {
	err := o.Telemetry.Shutdown(ctx)
	_ = logger.Sync(o.Logger)
	return err
}

// Container owns the connections opened at startup and the services built over them
type Container struct {
	Config   *config.Config
	Logger   *zap.Logger
	Database *persistence.Database
	Cache    *cache.Factory
	Clients  *Clients
	Services *Services
}

// Open connects to the database and Redis and builds every service
func Open(ctx context.Context, cfg *config.Config, obs *Observability) (*Container, error) {
	log := obs.Logger

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		return nil, err
	}
	log.Info("Database connected successfully")

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBName:          cfg.Database.DBName,
	}, log); err != nil {
		log.Warn("Failed to register database tracing", zap.Error(err))
	}

	c := &Container{
		Config:   cfg,
		Logger:   log,
		Database: db,
		Cache:    cache.NewFactory(cfg.Redis, cache.WithLogger(log)),
	}

	locker, err := c.Cache.CreateLocker(ctx)
	if err != nil {
		return nil, errors.Join(err, c.Close())
	}
	tokens, err := c.Cache.CreateTokenStore(ctx, cfg.Instagram.AccessToken)
	if err != nil {
		return nil, errors.Join(err, c.Close())
	}
	archiver, err := storage.New(&cfg.Storage, storage.WithLogger(log))
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to create payload archiver: %w", err), c.Close())
	}
	metrics, err := telemetry.NewSyncMetrics(obs.Telemetry.Meter.Meter(meterName))
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to create sync metrics: %w", err), c.Close())
	}

	c.Clients, err = NewClients(cfg, tokens, log)
	if err != nil {
		return nil, errors.Join(err, c.Close())
	}
	c.Services = NewServices(cfg, Deps{
		DB:       db.DB,
		Locker:   locker,
		Tokens:   tokens,
		Archiver: archiver,
		Metrics:  metrics,
	}, c.Clients, log)

	log.Info("Services initialized", zap.Strings("jobs", c.Services.Runner.Jobs()))
	return c, nil
}

// Close releases Redis and the database
func (c *Container) Close() error {
	var errs []error
	if c.Cache != nil {
		errs = append(errs, c.Cache.Close())
	}
	if c.Database != nil {
		errs = append(errs, c.Database.Close())
	}
	return errors.Join(errs...)
}
