// Package scheduler runs sync jobs on a worker pool and triggers them on daily and interval schedules.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// JobType names a sync job, e.g. "shopmy_sync"
type JobType string

// Jobs with non-daily schedules
const (
	JobTokenRefresh JobType = "instagram_token_refresh"
	JobStories      JobType = "instagram_stories"
)

// JobStatus represents the status of a job
type JobStatus string

const (
	JobStatusPending   JobStatus = "PENDING"
	JobStatusRunning   JobStatus = "RUNNING"
	JobStatusSuccess   JobStatus = "SUCCESS"
	JobStatusPartial   JobStatus = "PARTIAL"
	JobStatusFailed    JobStatus = "FAILED"
	JobStatusCancelled JobStatus = "CANCELLED"
)

// IsTerminal returns true once the job can no longer change state
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusSuccess, JobStatusPartial, JobStatusFailed, JobStatusCancelled:
		return true
	default:
		return false
	}
}

// MaxRetryDelay caps the exponential retry backoff
const MaxRetryDelay = 30 * time.Minute

// Trigger sources
const (
	TriggerCron   = "cron"
	TriggerManual = "manual"
)

// Outcome summarizes a finished run for status classification
type Outcome struct {
	Synced int `json:"synced"`
	Errors int `json:"errors"`
}

// Job is one submitted run of a sync job
type Job struct {
	ID          uuid.UUID  `json:"id"`
	Type        JobType    `json:"type"`
	Trigger     string     `json:"trigger"`
	Status      JobStatus  `json:"status"`
	Error       string     `json:"error,omitempty"`
	Outcome     Outcome    `json:"outcome"`
	SubmittedAt time.Time  `json:"submittedAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	RetryCount  int        `json:"retryCount"`
	MaxRetries  int        `json:"maxRetries"`
	NextRetryAt *time.Time `json:"nextRetryAt,omitempty"`
}

// NewJob creates a pending job
func NewJob(jobType JobType, trigger string, maxRetries int) *Job {
	return &Job{
		ID:          uuid.New(),
		Type:        jobType,
		Trigger:     trigger,
		Status:      JobStatusPending,
		SubmittedAt: time.Now().UTC(),
		MaxRetries:  maxRetries,
	}
}

// Start marks the job as running
func (j *Job) Start() {
	now := time.Now().UTC()
	j.Status = JobStatusRunning
	j.StartedAt = &now
	j.CompletedAt = nil
	j.Error = ""
}

// Finish classifies the run: any creator error with at least one success is PARTIAL,
// errors with no success are FAILED, otherwise SUCCESS.
func (j *Job) Finish(o Outcome) {
	now := time.Now().UTC()
	j.Outcome = o
	j.CompletedAt = &now
	switch {
	case o.Errors == 0:
		j.Status = JobStatusSuccess
	case o.Synced > 0:
		j.Status = JobStatusPartial
	default:
		j.Status = JobStatusFailed
		j.Error = "all creators failed"
	}
}

// Fail marks the job as failed, or cancelled when err is a context cancellation
func (j *Job) Fail(err error) {
	now := time.Now().UTC()
	j.CompletedAt = &now
	j.Error = err.Error()
	if errors.Is(err, context.Canceled) {
		j.Status = JobStatusCancelled
		return
	}
	j.Status = JobStatusFailed
}

// ShouldRetry returns true if the job failed and has retries left
func (j *Job) ShouldRetry() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// RetryDelay returns base doubled per previous retry, capped at MaxRetryDelay
func (j *Job) RetryDelay(base time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	delay := base
	for i := 0; i < j.RetryCount; i++ {
		delay *= 2
		if delay >= MaxRetryDelay {
			return MaxRetryDelay
		}
	}
	return min(delay, MaxRetryDelay)
}

// ScheduleRetry resets the job to pending and returns how long to wait before resubmitting
func (j *Job) ScheduleRetry(base time.Duration) time.Duration {
	delay := j.RetryDelay(base)
	j.RetryCount++
	j.Status = JobStatusPending
	next := time.Now().UTC().Add(delay)
	j.NextRetryAt = &next
	j.Error = ""
	return delay
}

// snapshot returns a copy safe to hand out of the scheduler
func (j *Job) snapshot() Job {
	return *j
}
