package ingest

import (
	"context"
	"fmt"
	"sort"
)

// Runner dispatches job names to their services behind a RunGuard
type Runner struct {
	guard *RunGuard
	jobs  map[string]JobFunc
}

// NewRunner creates a runner with no jobs registered
func NewRunner(guard *RunGuard) *Runner {
	return &Runner{guard: guard, jobs: make(map[string]JobFunc)}
}

// Register binds job to fn, replacing any earlier binding
func (r *Runner) Register(job string, fn JobFunc) {
	r.jobs[job] = fn
}

// Jobs lists the registered job names in order
func (r *Runner) Jobs() []string {
	out := make([]string, 0, len(r.jobs))
	for job := range r.jobs {
		out = append(out, job)
	}
	sort.Strings(out)
	return out
}

// Has returns true if job is registered
func (r *Runner) Has(job string) bool {
	_, ok := r.jobs[job]
	return ok
}

// Run executes a registered job
func (r *Runner) Run(ctx context.Context, job string) (*RunReport, error) {
	fn, ok := r.jobs[job]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJob, job)
	}
	return r.guard.Do(ctx, job, fn)
}

// RunFunc executes an ad-hoc job, such as a parameterized backfill, under the same guard
func (r *Runner) RunFunc(ctx context.Context, job string, fn JobFunc) (*RunReport, error) {
	return r.guard.Do(ctx, job, fn)
}
