package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/creatorhub/backend/internal/domain/integration"
)

// DefaultTokenKey is the Redis key holding the current Instagram token
const DefaultTokenKey = "creatorhub:instagram:access_token"

// InMemoryTokenStore holds the token in process memory, seeded from config
type InMemoryTokenStore struct {
	mu    sync.RWMutex
	token string
}

// NewInMemoryTokenStore creates a store holding seed
func NewInMemoryTokenStore(seed string) *InMemoryTokenStore {
	return &InMemoryTokenStore{token: seed}
}

// Get returns the current token
func (s *InMemoryTokenStore) Get(context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

// Set replaces the current token
func (s *InMemoryTokenStore) Set(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

// RedisTokenStore keeps the token in Redis so a refresh survives restarts and
// is seen by every instance. It falls back to the seed until the first Set.
type RedisTokenStore struct {
	client redis.UniversalClient
	key    string
	seed   string
}

// NewRedisTokenStore creates a store under key
func NewRedisTokenStore(client redis.UniversalClient, key, seed string) *RedisTokenStore {
	if key == "" {
		key = DefaultTokenKey
	}
	return &RedisTokenStore{client: client, key: key, seed: seed}
}

// Get returns the stored token, or the seed when none has been stored
func (s *RedisTokenStore) Get(ctx context.Context) (string, error) {
	tok, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return s.seed, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return tok, nil
}

// Set stores token without expiry; the weekly refresh replaces it
func (s *RedisTokenStore) Set(ctx context.Context, token string) error {
	if err := s.client.Set(ctx, s.key, token, 0).Err(); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

var (
	_ integration.TokenStore = (*InMemoryTokenStore)(nil)
	_ integration.TokenStore = (*RedisTokenStore)(nil)
)
