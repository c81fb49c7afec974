package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func waitForStatus(t *testing.T, s *Scheduler, job *Job, want JobStatus) Job {
	t.Helper()
	var got Job
	require.Eventually(t, func() bool {
		var err error
		got, err = s.GetJob(job.ID)
		return err == nil && got.Status == want
	}, 2*time.Second, 5*time.Millisecond, "job never reached %s", want)
	return got
}

func newStarted(t *testing.T, cfg Config, exec JobExecutor) *Scheduler {
	t.Helper()
	s := NewScheduler(cfg, exec, zap.NewNop())
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	})
	return s
}

func TestScheduler_RunsJobs(t *testing.T) {
	s := newStarted(t, Config{}, ExecutorFunc(func(_ context.Context, job *Job) (Outcome, error) {
		switch job.Type {
		case "partial":
			return Outcome{Synced: 1, Errors: 1}, nil
		case "broken":
			return Outcome{}, errors.New("missing credentials")
		}
		return Outcome{Synced: 2}, nil
	}))

	ok, err := s.Submit("shopmy_sync", TriggerManual)
	require.NoError(t, err)
	partial, err := s.Submit("partial", TriggerManual)
	require.NoError(t, err)
	broken, err := s.Submit("broken", TriggerCron)
	require.NoError(t, err)

	assert.Equal(t, 2, waitForStatus(t, s, ok, JobStatusSuccess).Outcome.Synced)
	waitForStatus(t, s, partial, JobStatusPartial)
	got := waitForStatus(t, s, broken, JobStatusFailed)
	assert.Equal(t, "missing credentials", got.Error)

	history := s.GetJobHistory(0)
	require.Len(t, history, 3)
	assert.Equal(t, broken.ID, history[0].ID, "newest first")
	assert.Len(t, s.GetJobHistory(1), 1)
}

func TestScheduler_RunsSequentiallyWithOneWorker(t *testing.T) {
	var running, maxRunning int32
	var wg sync.WaitGroup
	wg.Add(3)
	s := newStarted(t, Config{WorkerCount: 1}, ExecutorFunc(func(context.Context, *Job) (Outcome, error) {
		defer wg.Done()
		n := atomic.AddInt32(&running, 1)
		for {
			m := atomic.LoadInt32(&maxRunning)
			if n <= m || atomic.CompareAndSwapInt32(&maxRunning, m, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return Outcome{}, nil
	}))

	for i := 0; i < 3; i++ {
		_, err := s.Submit("ltk_sync", TriggerManual)
		require.NoError(t, err)
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&maxRunning))
}

func TestScheduler_QueueFull(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	s := newStarted(t, Config{WorkerCount: 1, QueueSize: 1}, ExecutorFunc(func(ctx context.Context, _ *Job) (Outcome, error) {
		started <- struct{}{}
		select {
		case <-release:
		case <-ctx.Done():
		}
		return Outcome{}, nil
	}))
	defer close(release)

	_, err := s.Submit("a", TriggerManual)
	require.NoError(t, err)
	<-started
	_, err = s.Submit("b", TriggerManual)
	require.NoError(t, err)
	_, err = s.Submit("c", TriggerManual)
	assert.ErrorIs(t, err, ErrJobQueueFull)
}

func TestScheduler_NotRunning(t *testing.T) {
	s := NewScheduler(Config{}, ExecutorFunc(func(context.Context, *Job) (Outcome, error) {
		return Outcome{}, nil
	}), nil)
	_, err := s.Submit("ltk_sync", TriggerManual)
	assert.ErrorIs(t, err, ErrSchedulerNotRunning)
	assert.NoError(t, s.Stop(context.Background()))
	assert.False(t, s.IsRunning())
}

func TestScheduler_JobTimeout(t *testing.T) {
	s := newStarted(t, Config{JobTimeout: 20 * time.Millisecond}, ExecutorFunc(func(ctx context.Context, _ *Job) (Outcome, error) {
		<-ctx.Done()
		return Outcome{}, ctx.Err()
	}))
	job, err := s.Submit("collect", TriggerManual)
	require.NoError(t, err)
	got := waitForStatus(t, s, job, JobStatusFailed)
	assert.Contains(t, got.Error, "deadline exceeded")
}

func TestScheduler_Retry(t *testing.T) {
	var calls int32
	s := newStarted(t, Config{MaxRetries: 2, RetryDelay: time.Millisecond}, ExecutorFunc(func(context.Context, *Job) (Outcome, error) {
		if atomic.AddInt32(&calls, 1) < 3 {
			return Outcome{}, errors.New("unavailable")
		}
		return Outcome{Synced: 1}, nil
	}))
	job, err := s.Submit("mavely_sync", TriggerCron)
	require.NoError(t, err)

	got := waitForStatus(t, s, job, JobStatusSuccess)
	assert.Equal(t, 2, got.RetryCount)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Len(t, s.GetJobHistory(0), 1, "a retried job is recorded once")
}

func TestScheduler_PanicIsFailure(t *testing.T) {
	s := newStarted(t, Config{}, ExecutorFunc(func(context.Context, *Job) (Outcome, error) {
		panic("nil map")
	}))
	job, err := s.Submit("collect", TriggerManual)
	require.NoError(t, err)
	got := waitForStatus(t, s, job, JobStatusFailed)
	assert.Contains(t, got.Error, "panicked")
}

func TestScheduler_StopCancelsRunningJob(t *testing.T) {
	started := make(chan struct{})
	s := NewScheduler(Config{}, ExecutorFunc(func(ctx context.Context, _ *Job) (Outcome, error) {
		close(started)
		<-ctx.Done()
		return Outcome{}, ctx.Err()
	}), nil)
	require.NoError(t, s.Start(context.Background()))
	job, err := s.Submit("collect", TriggerManual)
	require.NoError(t, err)
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))

	got, err := s.GetJob(job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusCancelled, got.Status)
}

func TestScheduler_HistoryBounded(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(5)
	s := newStarted(t, Config{HistorySize: 3}, ExecutorFunc(func(context.Context, *Job) (Outcome, error) {
		wg.Done()
		return Outcome{}, nil
	}))
	for i := 0; i < 5; i++ {
		_, err := s.Submit("ltk_sync", TriggerManual)
		require.NoError(t, err)
	}
	wg.Wait()
	assert.Len(t, s.GetJobHistory(0), 3)

	_, err := s.GetJob(uuid.Nil)
	assert.ErrorIs(t, err, ErrJobNotFound)
}
