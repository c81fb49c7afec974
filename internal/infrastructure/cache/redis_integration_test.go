//go:build integration

package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/creatorhub/backend/internal/infrastructure/config"
)

func startRedis(t *testing.T) config.RedisConfig {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	return config.RedisConfig{Host: host, Port: port.Int()}
}

func TestRedis_LockerAndTokenStore(t *testing.T) {
	cfg := startRedis(t)
	ctx := context.Background()

	f := NewFactory(cfg, WithInMemoryFallback(false))
	defer f.Close()

	locker, err := f.CreateLocker(ctx)
	require.NoError(t, err)
	require.IsType(t, &RedisLocker{}, locker)

	token, ok, err := locker.Acquire(ctx, "collect", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = locker.Acquire(ctx, "collect", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second acquire must fail while held")

	client, err := f.Client(ctx)
	require.NoError(t, err)
	ttl, err := client.TTL(ctx, DefaultLockPrefix+"collect").Result()
	require.NoError(t, err)
	assert.True(t, ttl > 0 && ttl <= time.Minute)

	require.NoError(t, locker.Release(ctx, "collect", "stale-token"))
	_, ok, err = locker.Acquire(ctx, "collect", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "release with a foreign token keeps the lock")

	require.NoError(t, locker.Release(ctx, "collect", token))
	_, ok, err = locker.Acquire(ctx, "collect", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	store, err := f.CreateTokenStore(ctx, "seed")
	require.NoError(t, err)
	tok, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "seed", tok)

	require.NoError(t, store.Set(ctx, "refreshed"))

	// a second store on the same Redis sees the refreshed token
	other := NewRedisTokenStore(redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)}), "", "seed")
	tok, err = other.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "refreshed", tok)
}
