package scheduler

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/creatorhub/backend/internal/infrastructure/config"
)

// DailySchedule runs a job once a day at Hour:Minute UTC, optionally only on Weekday
type DailySchedule struct {
	Job     JobType
	Hour    int
	Minute  int
	Weekday *time.Weekday
}

// at returns the scheduled instant on the UTC day of now
func (d DailySchedule) at(now time.Time) time.Time {
	y, m, day := now.Date()
	return time.Date(y, m, day, d.Hour, d.Minute, 0, 0, time.UTC)
}

// IntervalSchedule runs a job at every multiple of Every since midnight UTC
type IntervalSchedule struct {
	Job   JobType
	Every time.Duration
}

// CronTriggerConfig holds the schedules checked by CronTrigger
type CronTriggerConfig struct {
	Daily     []DailySchedule
	Intervals []IntervalSchedule
	// CheckInterval is how often schedules are evaluated
	CheckInterval time.Duration
}

// ParseClock parses "HH:MM" in 24h format
func ParseClock(s string) (hour, minute int, err error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSchedule, s)
	}
	hour, err = strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("%w: hour in %q", ErrInvalidSchedule, s)
	}
	minute, err = strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: minute in %q", ErrInvalidSchedule, s)
	}
	return hour, minute, nil
}

// CronTriggerConfigFrom builds schedules from configuration.
// The token refresh runs weekly on cfg.TokenRefreshWeekday; stories run every cfg.StoriesEvery.
func CronTriggerConfigFrom(cfg config.SchedulerConfig) (CronTriggerConfig, error) {
	out := CronTriggerConfig{CheckInterval: cfg.CheckEvery}
	if out.CheckInterval <= 0 {
		out.CheckInterval = time.Minute
	}

	jobs := make([]string, 0, len(cfg.Schedules))
	for job := range cfg.Schedules {
		jobs = append(jobs, job)
	}
	sort.Strings(jobs)
	for _, job := range jobs {
		at := cfg.Schedules[job]
		if at == "" {
			continue
		}
		h, m, err := ParseClock(at)
		if err != nil {
			return CronTriggerConfig{}, fmt.Errorf("schedule %s: %w", job, err)
		}
		d := DailySchedule{Job: JobType(job), Hour: h, Minute: m}
		if d.Job == JobTokenRefresh {
			wd := time.Weekday(cfg.TokenRefreshWeekday % 7)
			d.Weekday = &wd
		}
		out.Daily = append(out.Daily, d)
	}
	if cfg.StoriesEvery > 0 {
		out.Intervals = append(out.Intervals, IntervalSchedule{Job: JobStories, Every: cfg.StoriesEvery})
	}
	return out, nil
}

// Submitter queues jobs; *Scheduler implements it
type Submitter interface {
	Submit(jobType JobType, trigger string) (*Job, error)
}

// CronTrigger submits jobs when their schedule comes due
type CronTrigger struct {
	config    CronTriggerConfig
	submitter Submitter
	logger    *zap.Logger
	now       func() time.Time

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
	// lastDaily holds the UTC date each daily job last fired; lastSlot the interval slot
	lastDaily map[JobType]string
	lastSlot  map[JobType]time.Time
}

// NewCronTrigger creates a cron trigger
func NewCronTrigger(config CronTriggerConfig, submitter Submitter, logger *zap.Logger) *CronTrigger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.CheckInterval <= 0 {
		config.CheckInterval = time.Minute
	}
	return &CronTrigger{
		config:    config,
		submitter: submitter,
		logger:    logger,
		now:       time.Now,
		lastDaily: map[JobType]string{},
		lastSlot:  map[JobType]time.Time{},
	}
}

// Start starts the check loop
func (c *CronTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return nil
	}
	c.running = true

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.wg.Add(1)
	go c.runLoop(ctx)

	c.logger.Info("Cron trigger started",
		zap.Int("daily_schedules", len(c.config.Daily)),
		zap.Int("interval_schedules", len(c.config.Intervals)),
		zap.Duration("check_interval", c.config.CheckInterval),
	)
	return nil
}

// Stop stops the check loop
func (c *CronTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = false
	c.cancel()
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		c.logger.Info("Cron trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *CronTrigger) runLoop(ctx context.Context) {
	defer c.wg.Done()
	ticker := time.NewTicker(c.config.CheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Tick(c.now())
		}
	}
}

// window is how late a check may run and still fire a schedule
func (c *CronTrigger) window() time.Duration {
	return 2 * c.config.CheckInterval
}

// Due returns the jobs due at now and marks them fired
func (c *CronTrigger) Due(now time.Time) []JobType {
	now = now.UTC()
	today := now.Format("2006-01-02")

	c.mu.Lock()
	defer c.mu.Unlock()

	var due []JobType
	for _, d := range c.config.Daily {
		if c.lastDaily[d.Job] == today {
			continue
		}
		if d.Weekday != nil && now.Weekday() != *d.Weekday {
			continue
		}
		at := d.at(now)
		if now.Before(at) || now.Sub(at) >= c.window() {
			continue
		}
		c.lastDaily[d.Job] = today
		due = append(due, d.Job)
	}
	for _, iv := range c.config.Intervals {
		slot := now.Truncate(iv.Every)
		if c.lastSlot[iv.Job].Equal(slot) || now.Sub(slot) >= c.window() {
			continue
		}
		c.lastSlot[iv.Job] = slot
		due = append(due, iv.Job)
	}
	return due
}

// Tick submits every job due at now
func (c *CronTrigger) Tick(now time.Time) {
	for _, job := range c.Due(now) {
		if _, err := c.submitter.Submit(job, TriggerCron); err != nil {
			c.logger.Error("Failed to submit scheduled job",
				zap.String("job_type", string(job)), zap.Error(err))
			continue
		}
		c.logger.Info("Scheduled job submitted", zap.String("job_type", string(job)))
	}
}
