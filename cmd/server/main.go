package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/creatorhub/backend/internal/app"
	"github.com/creatorhub/backend/internal/infrastructure/auth"
	"github.com/creatorhub/backend/internal/infrastructure/config"
	"github.com/creatorhub/backend/internal/infrastructure/logger"
	"github.com/creatorhub/backend/internal/infrastructure/scheduler"
	"github.com/creatorhub/backend/internal/infrastructure/telemetry"
	"github.com/creatorhub/backend/internal/interfaces/http/handler"
	"github.com/creatorhub/backend/internal/interfaces/http/middleware"
	"github.com/creatorhub/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	obs, err := app.NewObservability(ctx, cfg)
	if err != nil {
		panic(err.Error())
	}
	log := obs.Logger
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()

	log.Info("Starting CreatorHub Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.Int("creators", len(cfg.Creators)),
	)

	container, err := app.Open(ctx, cfg, obs)
	if err != nil {
		log.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer func() {
		if err := container.Close(); err != nil {
			log.Error("Error closing connections", zap.Error(err))
		}
	}()
	svc := container.Services

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to register validators", zap.Error(err))
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Order: request id, recovery, access log, tracing, metrics, profiling,
	// security headers, CORS, body limit, rate limit
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanAttributes())
	httpMetrics, err := telemetry.NewHTTPMetrics(obs.Telemetry.Meter.Meter("github.com/creatorhub/backend/http"))
	if err != nil {
		log.Warn("Failed to create HTTP metrics", zap.Error(err))
	} else {
		engine.Use(httpMetrics.Middleware())
	}
	engine.Use(middleware.ProfilingWithConfig(middleware.ProfilingConfig{
		Enabled:   cfg.Telemetry.ProfilingEnabled,
		SkipPaths: []string{"/health"},
	}))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfigFromHTTP(cfg.HTTP)))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		go rateLimiter.Run(ctx)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	jwtService := auth.NewJWTService(cfg.JWT)
	router.Mount(engine, router.Handlers{
		Earnings: handler.NewEarningsHandler(svc.Earnings),
		Creators: handler.NewCreatorHandler(svc.Social, svc.ShopMy, svc.Earnings),
		Me:       handler.NewMeHandler(),
		LTK:      handler.NewLTKProxyHandler(svc.LTKTokens, svc.LTK, cfg.HTTP.MaxBodySize),
		Cron:     handler.NewCronHandler(svc.Runner),
		Admin:    handler.NewAdminHandler(svc.Admin, svc.Runner, svc.Instagram),
		Health:   handler.NewHealthHandler(container.Database),
	}, router.Guards{
		Auth: middleware.JWTAuthMiddleware(jwtService, log),
		Role: middleware.ResolveRole(svc.Access, log),
		Cron: middleware.CronAuth(cfg.Cron.Secret),
	})

	// In-process cron, for deployments without an external scheduler
	if cfg.Scheduler.Enabled {
		stopScheduler, err := startScheduler(ctx, cfg.Scheduler, svc.Executor(), log)
		if err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
		defer stopScheduler()
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		os.Exit(1)
	}
	log.Info("Server exited gracefully")
}

// startScheduler starts the worker pool and the cron trigger feeding it.
// The returned func stops both.
func startScheduler(ctx context.Context, cfg config.SchedulerConfig, exec scheduler.JobExecutor, log *zap.Logger) (func(), error) {
	triggerCfg, err := scheduler.CronTriggerConfigFrom(cfg)
	if err != nil {
		return nil, err
	}
	sched := scheduler.NewScheduler(scheduler.Config{
		WorkerCount: cfg.WorkerCount,
		QueueSize:   cfg.QueueSize,
		JobTimeout:  cfg.JobTimeout,
		MaxRetries:  cfg.MaxRetries,
		RetryDelay:  cfg.RetryDelay,
	}, exec, log)
	if err := sched.Start(ctx); err != nil {
		return nil, err
	}
	trigger := scheduler.NewCronTrigger(triggerCfg, sched, log)
	if err := trigger.Start(ctx); err != nil {
		_ = sched.Stop(context.Background())
		return nil, err
	}

	return func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := trigger.Stop(stopCtx); err != nil {
			log.Warn("Failed to stop cron trigger", zap.Error(err))
		}
		if err := sched.Stop(stopCtx); err != nil {
			log.Warn("Failed to stop scheduler", zap.Error(err))
		}
	}, nil
}
