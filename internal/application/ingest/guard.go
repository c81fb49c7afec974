package ingest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/creatorhub/backend/internal/infrastructure/cache"
)

// DefaultLockTTL bounds how long a crashed run can block the next one
const DefaultLockTTL = 30 * time.Minute

// JobFunc runs one job
type JobFunc func(ctx context.Context) (*RunReport, error)

// RunGuard keeps a job from running twice at once, across instances when
// the locker is Redis-backed
type RunGuard struct {
	locker cache.Locker
	ttl    time.Duration
	logger *zap.Logger
}

// NewRunGuard creates a guard over locker
func NewRunGuard(locker cache.Locker, ttl time.Duration, logger *zap.Logger) *RunGuard {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RunGuard{locker: locker, ttl: ttl, logger: logger}
}

func lockKey(job string) string {
	return "job:" + job
}

// Do runs fn while holding the lock for job.
// It returns ErrJobAlreadyRunning when another run holds the lock.
func (g *RunGuard) Do(ctx context.Context, job string, fn JobFunc) (*RunReport, error) {
	token, ok, err := g.locker.Acquire(ctx, lockKey(job), g.ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock for %s: %w", job, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobAlreadyRunning, job)
	}
	defer func() {
		if err := g.locker.Release(context.WithoutCancel(ctx), lockKey(job), token); err != nil {
			g.logger.Warn("Failed to release job lock", zap.String("job", job), zap.Error(err))
		}
	}()
	return fn(ctx)
}
