package ingest

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/creatorhub/backend/internal/domain/creator"
	"github.com/creatorhub/backend/internal/domain/earnings"
	"github.com/creatorhub/backend/internal/domain/integration"
)

// ErrNoBackfillMonths is returned when the requested window holds no month
var ErrNoBackfillMonths = errors.New("ingest: backfill window is empty")

// HistoricalPlatforms are the platforms the historical backfill can import
var HistoricalPlatforms = []earnings.Platform{
	earnings.PlatformLTK,
	earnings.PlatformMavely,
	earnings.PlatformShopMy,
}

// HistoricalRequest selects what the historical backfill imports
type HistoricalRequest struct {
	// CreatorID defaults to the first owned creator
	CreatorID string
	// Platforms defaults to HistoricalPlatforms
	Platforms []earnings.Platform
	From      time.Time
	To        time.Time
}

// HistoricalVendors are the vendor clients used by the historical backfill
type HistoricalVendors struct {
	ShopMy         integration.ShopMyClient
	ShopMyAccounts ShopMyAccounts
	Mavely         integration.MavelyClient
	MavelyLogin    MavelyCredentials
	LTK            integration.LTKClient
	LTKTokens      integration.LTKTokenSource
}

// HistoricalRepositories are the stores written by the historical backfill
type HistoricalRepositories struct {
	Creators creator.Repository
	Ledger   earnings.LedgerRepository
	Sales    earnings.SalesRepository
}

// HistoricalBackfillService rebuilds monthly ledger rows and sales from the vendor APIs
type HistoricalBackfillService struct {
	Base
	vendors HistoricalVendors
	repos   HistoricalRepositories
	pace    time.Duration
}

// NewHistoricalBackfillService creates a new HistoricalBackfillService.
// pace spaces vendor calls; zero means the default of 200ms.
func NewHistoricalBackfillService(vendors HistoricalVendors, repos HistoricalRepositories, pace time.Duration, opts ...Option) *HistoricalBackfillService {
	if pace <= 0 {
		pace = defaultBackfillPace
	}
	return &HistoricalBackfillService{
		Base:    newBase(opts),
		vendors: vendors,
		repos:   repos,
		pace:    pace,
	}
}

// Run imports each requested platform month by month. Ledger rows are overwritten.
func (s *HistoricalBackfillService) Run(ctx context.Context, req HistoricalRequest) (*RunReport, error) {
	r := s.start(ctx, JobHistoricalBackfill)

	months := earnings.Months(req.From, req.To)
	if len(months) == 0 {
		return r.finish(ErrNoBackfillMonths)
	}
	r.report.Period = earnings.Period{Start: months[0].Start, End: months[len(months)-1].End}.String()

	c, err := s.target(r.ctx, req.CreatorID)
	if err != nil {
		return r.finish(err)
	}

	platforms := req.Platforms
	if len(platforms) == 0 {
		platforms = HistoricalPlatforms
	}
	limiter := rate.NewLimiter(rate.Every(s.pace), 1)

	for _, p := range HistoricalPlatforms {
		if !slices.Contains(platforms, p) {
			continue
		}
		var res CreatorResult
		switch p {
		case earnings.PlatformLTK:
			res = s.backfillLTK(r, limiter, *c, months)
		case earnings.PlatformMavely:
			res = s.backfillMavely(r, limiter, *c, months)
		case earnings.PlatformShopMy:
			res = s.backfillShopMy(r, *c, months)
		}
		res.Table = p.String()
		if err := r.ctx.Err(); err != nil {
			return r.finish(err)
		}
		r.add(res)
	}
	return r.finish(nil)
}

func (s *HistoricalBackfillService) target(ctx context.Context, creatorID string) (*creator.Creator, error) {
	if creatorID != "" {
		return s.repos.Creators.Get(ctx, creatorID)
	}
	owned, err := s.repos.Creators.ListOwned(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list owned creators: %w", err)
	}
	if len(owned) == 0 {
		return nil, ErrNoOwnedCreators
	}
	return &owned[0], nil
}

func (s *HistoricalBackfillService) backfillLTK(r *run, limiter *rate.Limiter, c creator.Creator, months []earnings.Period) CreatorResult {
	if c.LTKPublisherID == "" {
		return skippedResult(c.ID, "no ltk publisher id")
	}
	tokens, err := s.vendors.LTKTokens.LTKTokens(r.ctx)
	if err != nil {
		return errorResult(c.ID, err)
	}

	var earned, sold, failed int
	for _, m := range months {
		if err := limiter.Wait(r.ctx); err != nil {
			return errorResult(c.ID, err)
		}
		now := s.now()
		data, err := s.vendors.LTK.PerformanceSummary(r.ctx, tokens, c.LTKPublisherID, m)
		if err != nil {
			failed++
			s.monthFailed(r, earnings.PlatformLTK, m, err)
			continue
		}
		n, err := s.repos.Ledger.Upsert(r.ctx, []earnings.Record{earnings.LTKPerformanceRecord(c.ID, m, data, now)}, earnings.ConflictUpdate)
		if err != nil {
			return errorResult(c.ID, err)
		}
		earned += int(n)

		items, err := s.vendors.LTK.ItemsSold(r.ctx, tokens, m)
		if err != nil {
			s.monthFailed(r, earnings.PlatformLTK, m, fmt.Errorf("items sold: %w", err))
		}
		r.archive(r.ctx, earnings.PlatformLTK.String(), c.ID, map[string]any{
			"period":      m.String(),
			"performance": data,
			"itemsSold":   items,
		})

		sales := make([]earnings.Sale, 0, len(items))
		for _, item := range items {
			if sale, ok := earnings.LTKItemSale(c.ID, item, now); ok {
				sales = append(sales, sale)
			}
		}
		inserted, err := s.repos.Sales.InsertIgnore(r.ctx, r.keepValidSales(sales))
		if err != nil {
			return errorResult(c.ID, err)
		}
		sold += int(inserted)
	}
	return okResult(c.ID, map[string]int{"earnings": earned, "sales": sold, "failedMonths": failed})
}

func (s *HistoricalBackfillService) backfillMavely(r *run, limiter *rate.Limiter, c creator.Creator, months []earnings.Period) CreatorResult {
	login := s.vendors.MavelyLogin
	if login.Email == "" || login.Password == "" {
		return skippedResult(c.ID, "mavely credentials are not set")
	}
	token, err := s.vendors.Mavely.Token(r.ctx, login.Email, login.Password)
	if err != nil {
		return errorResult(c.ID, err)
	}

	var earned, failed int
	for _, m := range months {
		if err := limiter.Wait(r.ctx); err != nil {
			return errorResult(c.ID, err)
		}
		metrics, err := s.vendors.Mavely.MetricsTotals(r.ctx, token, m)
		if errors.Is(err, integration.ErrPlatformAuthFailed) || errors.Is(err, integration.ErrPlatformTokenExpired) {
			if token, err = s.vendors.Mavely.Token(r.ctx, login.Email, login.Password); err == nil {
				metrics, err = s.vendors.Mavely.MetricsTotals(r.ctx, token, m)
			}
		}
		if err != nil {
			failed++
			s.monthFailed(r, earnings.PlatformMavely, m, err)
			continue
		}
		r.archive(r.ctx, earnings.PlatformMavely.String(), c.ID, map[string]any{
			"period":  m.String(),
			"metrics": metrics,
		})
		n, err := s.repos.Ledger.Upsert(r.ctx, []earnings.Record{earnings.MavelyTotalsRecord(c.ID, m, metrics, s.now())}, earnings.ConflictUpdate)
		if err != nil {
			return errorResult(c.ID, err)
		}
		earned += int(n)
	}
	return okResult(c.ID, map[string]int{"earnings": earned, "failedMonths": failed})
}

// backfillShopMy needs a single payout summary: it carries every month and the recent commissions
func (s *HistoricalBackfillService) backfillShopMy(r *run, c creator.Creator, months []earnings.Period) CreatorResult {
	if c.ShopMyUserID == "" {
		return skippedResult(c.ID, "no shopmy user id")
	}
	account, ok := s.vendors.ShopMyAccounts.AccountFor(c.ID)
	if !ok || account.Email == "" || account.Password == "" {
		return skippedResult(c.ID, "shopmy credentials are not set")
	}

	session, err := s.vendors.ShopMy.Login(r.ctx, account.Email, account.Password)
	if err != nil {
		return errorResult(c.ID, err)
	}
	summary, err := s.vendors.ShopMy.PayoutSummary(r.ctx, session, c.ShopMyUserID)
	if err != nil {
		return errorResult(c.ID, err)
	}
	r.archive(r.ctx, earnings.PlatformShopMy.String(), c.ID, summary)

	now := s.now()
	first, last := months[0].Start, months[len(months)-1].End

	all, errs := earnings.ShopMyMonthlyRecords(c.ID, summary.Months, now)
	for _, err := range errs {
		r.log.Warn("Skipping ShopMy month", zap.Error(err))
	}
	records := make([]earnings.Record, 0, len(all))
	for _, rec := range all {
		if rec.Period.Start.Before(first) || rec.Period.Start.After(last) {
			continue
		}
		records = append(records, rec)
	}
	earned, err := s.repos.Ledger.Upsert(r.ctx, records, earnings.ConflictUpdate)
	if err != nil {
		return errorResult(c.ID, err)
	}

	sales := make([]earnings.Sale, 0, len(summary.NormalCommissions))
	for _, nc := range summary.NormalCommissions {
		if sale, ok := earnings.ShopMyHistoricalSale(c.ID, nc, now); ok {
			sales = append(sales, sale)
		}
	}
	sold, err := s.repos.Sales.InsertIgnore(r.ctx, r.keepValidSales(sales))
	if err != nil {
		return errorResult(c.ID, err)
	}
	return okResult(c.ID, map[string]int{"earnings": int(earned), "sales": int(sold)})
}

func (s *HistoricalBackfillService) monthFailed(r *run, platform earnings.Platform, m earnings.Period, err error) {
	r.log.Warn("Backfill month failed",
		zap.String("platform", platform.String()),
		zap.String("period", m.String()),
		zap.Error(err))
}
