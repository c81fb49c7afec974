// Package ingest runs the scheduled pulls from the social and affiliate networks.
// Each job loops over creators sequentially; a failing creator is recorded in the
// run report and the loop moves on.
package ingest

import (
	"time"
)

// Job names, shared by the cron routes, the scheduler and the backfill CLI
const (
	JobShopMySync         = "shopmy_sync"
	JobMavelySync         = "mavely_sync"
	JobMavelyGraphQLSync  = "mavely_graphql_sync"
	JobLTKSync            = "ltk_sync"
	JobInstagramCollect   = "instagram_collect"
	JobInstagramStories   = "instagram_stories"
	JobTokenRefresh       = "instagram_token_refresh"
	JobAirtableBackfill   = "airtable_backfill"
	JobIGBackfill         = "ig_backfill"
	JobHistoricalBackfill = "historical_backfill"
)

// Result statuses
const (
	StatusOK       = "ok"
	StatusOKPublic = "ok (public)"
	StatusSkipped  = "skipped"
	StatusError    = "error"
)

// Run outcomes, as recorded in metrics
const (
	OutcomeSuccess = "success"
	OutcomePartial = "partial"
	OutcomeFailed  = "failed"
)

// CreatorResult is the outcome of one unit of work in a run, usually one creator
type CreatorResult struct {
	Creator string         `json:"creator,omitempty"`
	Table   string         `json:"table,omitempty"`
	Status  string         `json:"status"`
	Error   string         `json:"error,omitempty"`
	Counts  map[string]int `json:"counts,omitempty"`
}

// IsOK returns true for ok and ok (public)
func (r CreatorResult) IsOK() bool {
	return r.Status == StatusOK || r.Status == StatusOKPublic
}

func okResult(creatorID string, counts map[string]int) CreatorResult {
	return CreatorResult{Creator: creatorID, Status: StatusOK, Counts: counts}
}

func skippedResult(creatorID, reason string) CreatorResult {
	return CreatorResult{Creator: creatorID, Status: StatusSkipped, Error: reason}
}

func errorResult(creatorID string, err error) CreatorResult {
	return CreatorResult{Creator: creatorID, Status: StatusError, Error: err.Error()}
}

// RunReport summarizes one job run
type RunReport struct {
	Job        string          `json:"job"`
	StartedAt  time.Time       `json:"startedAt"`
	FinishedAt time.Time       `json:"finishedAt"`
	Period     string          `json:"period,omitempty"`
	Synced     int             `json:"synced"`
	Errors     int             `json:"errors"`
	Skipped    int             `json:"skipped"`
	Results    []CreatorResult `json:"results"`
}

func newRunReport(job string, startedAt time.Time) *RunReport {
	return &RunReport{Job: job, StartedAt: startedAt, Results: []CreatorResult{}}
}

// Add appends a result and updates the totals
func (r *RunReport) Add(res CreatorResult) {
	r.Results = append(r.Results, res)
	switch {
	case res.IsOK():
		r.Synced++
	case res.Status == StatusSkipped:
		r.Skipped++
	default:
		r.Errors++
	}
}

// Outcome classifies the run: failed when every attempted unit errored
func (r *RunReport) Outcome() string {
	switch {
	case r.Errors == 0:
		return OutcomeSuccess
	case r.Synced > 0:
		return OutcomePartial
	default:
		return OutcomeFailed
	}
}

// Count sums a named counter across results
func (r *RunReport) Count(name string) int {
	total := 0
	for _, res := range r.Results {
		total += res.Counts[name]
	}
	return total
}
