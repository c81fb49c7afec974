package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/creatorhub/backend/internal/domain/integration"
	"github.com/creatorhub/backend/internal/infrastructure/config"
)

// Locker guards named jobs against concurrent runs
type Locker interface {
	// Acquire returns a token identifying this hold, and false if key is already held
	Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	// Release frees key only while it is still held under token
	Release(ctx context.Context, key, token string) error
}

// Factory builds Redis-backed stores, falling back to in-memory ones
type Factory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	client                redis.UniversalClient
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to in-memory stores when Redis is unavailable.
// Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// WithClient uses an existing client instead of dialing one
func WithClient(client redis.UniversalClient) FactoryOption {
	return func(f *Factory) {
		f.client = client
	}
}

// NewFactory creates a new factory
func NewFactory(cfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Client returns a connected Redis client, dialing and pinging it on first use.
// An empty host means Redis is not configured.
func (f *Factory) Client(ctx context.Context) (redis.UniversalClient, error) {
	if f.client != nil {
		return f.client, nil
	}
	if f.redisConfig.Host == "" {
		return nil, fmt.Errorf("redis not configured")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     f.redisConfig.Addr(),
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	f.client = client
	return client, nil
}

// CreateLocker returns a Redis locker, or an in-memory one when Redis is unavailable
func (f *Factory) CreateLocker(ctx context.Context) (Locker, error) {
	client, err := f.Client(ctx)
	if err == nil {
		f.logger.Info("using Redis job locks")
		return NewRedisLocker(client, ""), nil
	}
	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for job locks but unavailable: %w", err)
	}
	f.logger.Warn("Redis unavailable, falling back to in-memory job locks. "+
		"Jobs may run concurrently across instances.",
		zap.Error(err),
	)
	return NewInMemoryLocker(), nil
}

// CreateTokenStore returns a Redis token store seeded with seed, or an in-memory one
func (f *Factory) CreateTokenStore(ctx context.Context, seed string) (integration.TokenStore, error) {
	client, err := f.Client(ctx)
	if err == nil {
		f.logger.Info("using Redis token store")
		return NewRedisTokenStore(client, "", seed), nil
	}
	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for token store but unavailable: %w", err)
	}
	f.logger.Warn("Redis unavailable, refreshed Instagram tokens will not survive a restart",
		zap.Error(err),
	)
	return NewInMemoryTokenStore(seed), nil
}

// Close closes the Redis client if one was dialed
func (f *Factory) Close() error {
	if f.client == nil {
		return nil
	}
	return f.client.Close()
}
