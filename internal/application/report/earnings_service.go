// Package report serves the dashboard read queries with role-based scoping.
// Reads a role may not see return empty results instead of errors.
package report

import (
	"context"
	"io"
	"time"

	"github.com/creatorhub/backend/internal/domain/access"
	"github.com/creatorhub/backend/internal/domain/earnings"
	"github.com/creatorhub/backend/internal/domain/report"
)

// Option configures a report service
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the clock used to compute reporting windows
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func newOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// since returns the lower synced_at bound for a window of days; zero or negative means the default
func (o options) since(days int) time.Time {
	if days <= 0 {
		days = report.DefaultDays
	}
	return o.now().UTC().AddDate(0, 0, -days)
}

// EarningsService answers the ledger and sales queries
type EarningsService struct {
	options
	repo report.EarningsReportRepository
}

// NewEarningsService creates a new EarningsService
func NewEarningsService(repo report.EarningsReportRepository, opts ...Option) *EarningsService {
	return &EarningsService{
		options: newOptions(opts),
		repo:    repo,
	}
}

// Summary returns per-platform totals for a creator over the last days
func (s *EarningsService) Summary(ctx context.Context, role access.ResolvedRole, creatorID string, days int) ([]report.PlatformSummary, error) {
	if !access.CanAccessCreator(role, creatorID) {
		return []report.PlatformSummary{}, nil
	}
	return s.repo.Summary(ctx, creatorID, s.since(days))
}

// History returns a creator's ledger rows over the last days. An empty platform means all.
func (s *EarningsService) History(ctx context.Context, role access.ResolvedRole, creatorID string, platform earnings.Platform, days int) ([]report.HistoryPoint, error) {
	if !access.CanAccessCreator(role, creatorID) {
		return []report.HistoryPoint{}, nil
	}
	return s.repo.History(ctx, creatorID, platform, s.since(days))
}

// Sales returns a page of sales. Without a creator the page spans every creator the role may see.
func (s *EarningsService) Sales(ctx context.Context, role access.ResolvedRole, filter report.SalesFilter) (report.SalesPage, error) {
	filter, ok := scopeSales(role, filter)
	if !ok {
		return report.EmptySalesPage(), nil
	}
	filter.Normalize()
	return s.repo.Sales(ctx, filter)
}

// Export writes the matching sales as CSV, newest first
func (s *EarningsService) Export(ctx context.Context, role access.ResolvedRole, filter report.SalesFilter, w io.Writer) error {
	filter, ok := scopeSales(role, filter)
	if !ok {
		return WriteSalesCSV(w, nil)
	}
	rows, err := s.repo.ExportSales(ctx, filter)
	if err != nil {
		return err
	}
	return WriteSalesCSV(w, rows)
}

// TopProducts returns a creator's best products by revenue
func (s *EarningsService) TopProducts(ctx context.Context, role access.ResolvedRole, creatorID string, limit int) ([]report.ProductRow, error) {
	if !access.CanAccessCreator(role, creatorID) {
		return []report.ProductRow{}, nil
	}
	if limit <= 0 {
		limit = report.DefaultTopProducts
	}
	return s.repo.TopProducts(ctx, creatorID, limit)
}

// Aggregate totals the ledger across every creator the role may see
func (s *EarningsService) Aggregate(ctx context.Context, role access.ResolvedRole, days int) (report.AggregateEarnings, error) {
	return s.repo.Aggregate(ctx, s.since(days), access.AccessibleCreatorIDs(role))
}

// Breakdown returns each platform's share of revenue for one creator, or for every
// creator the role may see when creatorID is empty
func (s *EarningsService) Breakdown(ctx context.Context, role access.ResolvedRole, creatorID string, days int) ([]report.PlatformShare, error) {
	ids := access.AccessibleCreatorIDs(role)
	if creatorID != "" {
		if !access.CanAccessCreator(role, creatorID) {
			return []report.PlatformShare{}, nil
		}
		ids = []string{creatorID}
	}
	rows, err := s.repo.ByPlatform(ctx, ids, s.since(days))
	if err != nil {
		return nil, err
	}
	return report.Shares(rows), nil
}

// scopeSales restricts a filter to what role may see; false means nothing is visible
func scopeSales(role access.ResolvedRole, f report.SalesFilter) (report.SalesFilter, bool) {
	if f.CreatorID != "" {
		if !access.CanAccessCreator(role, f.CreatorID) {
			return f, false
		}
		f.CreatorIDs = nil
		return f, true
	}
	f.CreatorIDs = access.AccessibleCreatorIDs(role)
	if f.CreatorIDs != nil && len(f.CreatorIDs) == 0 {
		return f, false
	}
	return f, true
}
