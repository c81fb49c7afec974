package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when trying to submit a job to a stopped scheduler
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrJobQueueFull is returned when the job queue is full
	ErrJobQueueFull = errors.New("job queue is full")

	// ErrJobNotFound is returned when a job is not in the history
	ErrJobNotFound = errors.New("job not found")

	// ErrInvalidSchedule is returned for a malformed HH:MM schedule
	ErrInvalidSchedule = errors.New("invalid schedule")
)
