package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JobExecutor runs one job and reports its outcome
type JobExecutor interface {
	Execute(ctx context.Context, job *Job) (Outcome, error)
}

// ExecutorFunc adapts a function to JobExecutor
type ExecutorFunc func(ctx context.Context, job *Job) (Outcome, error)

// Execute calls f
func (f ExecutorFunc) Execute(ctx context.Context, job *Job) (Outcome, error) {
	return f(ctx, job)
}

// Config holds scheduler configuration
type Config struct {
	WorkerCount int
	QueueSize   int
	JobTimeout  time.Duration
	MaxRetries  int
	RetryDelay  time.Duration
	HistorySize int
}

// DefaultConfig runs jobs one at a time and reports failures once
func DefaultConfig() Config {
	return Config{
		WorkerCount: 1,
		QueueSize:   16,
		JobTimeout:  15 * time.Minute,
		MaxRetries:  0,
		RetryDelay:  time.Minute,
		HistorySize: 100,
	}
}

func (c *Config) normalize() {
	d := DefaultConfig()
	if c.WorkerCount <= 0 {
		c.WorkerCount = d.WorkerCount
	}
	if c.QueueSize <= 0 {
		c.QueueSize = d.QueueSize
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = d.JobTimeout
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.HistorySize <= 0 {
		c.HistorySize = d.HistorySize
	}
}

// Scheduler executes submitted jobs on a fixed worker pool
type Scheduler struct {
	config   Config
	executor JobExecutor
	logger   *zap.Logger

	jobs    chan *Job
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool

	historyMu sync.RWMutex
	history   []*Job
}

// NewScheduler creates a scheduler
func NewScheduler(config Config, executor JobExecutor, logger *zap.Logger) *Scheduler {
	config.normalize()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		config:   config,
		executor: executor,
		logger:   logger,
	}
}

// Config returns the effective configuration
func (s *Scheduler) Config() Config {
	return s.config
}

// Start launches the workers
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	s.running = true
	s.jobs = make(chan *Job, s.config.QueueSize)

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	for i := 0; i < s.config.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i, s.jobs)
	}

	s.logger.Info("Sync scheduler started",
		zap.Int("workers", s.config.WorkerCount),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop cancels running jobs and waits for workers until ctx expires
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.cancel()
	close(s.jobs)
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Sync scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Sync scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether jobs are being accepted
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Submit queues a new job of the given type
func (s *Scheduler) Submit(jobType JobType, trigger string) (*Job, error) {
	job := NewJob(jobType, trigger, s.config.MaxRetries)
	if err := s.SubmitJob(job); err != nil {
		return nil, err
	}
	return job, nil
}

// SubmitJob queues job without blocking
func (s *Scheduler) SubmitJob(job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return ErrSchedulerNotRunning
	}
	select {
	case s.jobs <- job:
		s.record(job)
		s.logger.Debug("Job submitted",
			zap.String("job_id", job.ID.String()),
			zap.String("job_type", string(job.Type)),
		)
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrJobQueueFull, job.Type)
	}
}

func (s *Scheduler) worker(ctx context.Context, id int, jobs <-chan *Job) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			s.processJob(ctx, job, id)
		}
	}
}

func (s *Scheduler) processJob(ctx context.Context, job *Job, workerID int) {
	s.update(job, (*Job).Start)
	log := s.logger.With(
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("job_type", string(job.Type)),
	)
	log.Info("Processing job")

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	outcome, err := s.execute(jobCtx, job)
	if err != nil {
		s.update(job, func(j *Job) { j.Fail(err) })
		log.Error("Job failed", zap.Error(err))
		if job.ShouldRetry() {
			s.retry(ctx, job)
		}
		return
	}

	s.update(job, func(j *Job) { j.Finish(outcome) })
	log.Info("Job finished",
		zap.String("status", string(job.Status)),
		zap.Int("synced", outcome.Synced),
		zap.Int("errors", outcome.Errors),
	)
}

// execute shields the worker from executor panics
func (s *Scheduler) execute(ctx context.Context, job *Job) (outcome Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return s.executor.Execute(ctx, job)
}

func (s *Scheduler) retry(ctx context.Context, job *Job) {
	var delay time.Duration
	s.update(job, func(j *Job) { delay = j.ScheduleRetry(s.config.RetryDelay) })
	s.logger.Info("Job scheduled for retry",
		zap.String("job_id", job.ID.String()),
		zap.Int("retry_count", job.RetryCount),
		zap.Duration("delay", delay),
	)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			s.update(job, func(j *Job) { j.Fail(context.Canceled) })
		case <-timer.C:
			if err := s.SubmitJob(job); err != nil {
				s.update(job, func(j *Job) { j.Fail(err) })
				s.logger.Warn("Failed to re-queue job for retry",
					zap.String("job_id", job.ID.String()), zap.Error(err))
			}
		}
	}()
}

// update mutates a job under the history lock
func (s *Scheduler) update(job *Job, fn func(*Job)) {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()
	fn(job)
}

func (s *Scheduler) record(job *Job) {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()
	for _, j := range s.history {
		if j == job {
			return
		}
	}
	s.history = append(s.history, job)
	if over := len(s.history) - s.config.HistorySize; over > 0 {
		s.history = append([]*Job(nil), s.history[over:]...)
	}
}

// GetJobHistory returns up to limit jobs, newest first. limit <= 0 returns all.
func (s *Scheduler) GetJobHistory(limit int) []Job {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()
	n := len(s.history)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]Job, 0, limit)
	for i := n - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.history[i].snapshot())
	}
	return out
}

// GetJob returns a job from the history
func (s *Scheduler) GetJob(id uuid.UUID) (Job, error) {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()
	for _, j := range s.history {
		if j.ID == id {
			return j.snapshot(), nil
		}
	}
	return Job{}, ErrJobNotFound
}
