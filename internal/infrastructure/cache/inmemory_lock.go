package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// entry is a held lock with its owner token and expiry
type entry struct {
	token     string
	expiresAt time.Time
}

// InMemoryLocker implements Locker with a process-local map.
// It is suitable for single-instance deployments and tests.
type InMemoryLocker struct {
	mu        sync.Mutex
	entries   map[string]entry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryLocker creates a locker and starts its expiry sweeper
func NewInMemoryLocker() *InMemoryLocker {
	l := &InMemoryLocker{
		entries:  make(map[string]entry),
		stopChan: make(chan struct{}),
	}
	l.wg.Add(1)
	go l.cleanupLoop()
	return l
}

// Acquire takes key for ttl. It returns false if key is held and not yet expired.
func (l *InMemoryLocker) Acquire(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if e, ok := l.entries[key]; ok && now.Before(e.expiresAt) {
		return "", false, nil
	}
	token := uuid.NewString()
	l.entries[key] = entry{token: token, expiresAt: now.Add(ttl)}
	return token, true, nil
}

// Release frees key if it is held under token; anything else is a no-op
func (l *InMemoryLocker) Release(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.entries[key]; ok && e.token == token {
		delete(l.entries, key)
	}
	return nil
}

// Close stops the sweeper. Safe to call multiple times.
func (l *InMemoryLocker) Close() error {
	l.closeOnce.Do(func() {
		close(l.stopChan)
		l.wg.Wait()
	})
	return nil
}

func (l *InMemoryLocker) cleanupLoop() {
	defer l.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopChan:
			return
		case <-ticker.C:
			l.cleanup()
		}
	}
}

func (l *InMemoryLocker) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for key, e := range l.entries {
		if now.After(e.expiresAt) {
			delete(l.entries, key)
		}
	}
}

// Size returns the number of held or not-yet-swept locks
func (l *InMemoryLocker) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

var _ Locker = (*InMemoryLocker)(nil)
