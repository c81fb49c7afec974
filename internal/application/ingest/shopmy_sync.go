package ingest

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/creatorhub/backend/internal/domain/creator"
	"github.com/creatorhub/backend/internal/domain/earnings"
	"github.com/creatorhub/backend/internal/domain/integration"
	"github.com/creatorhub/backend/internal/infrastructure/config"
	"github.com/creatorhub/backend/internal/infrastructure/logger"
)

// ShopMyAccounts finds the login used for a creator
type ShopMyAccounts interface {
	AccountFor(creatorID string) (config.ShopMyAccount, bool)
}

// ShopMyRepositories are the stores written by the ShopMy sync
type ShopMyRepositories struct {
	Creators    creator.Repository
	Ledger      earnings.LedgerRepository
	Sales       earnings.SalesRepository
	ShopMy      earnings.ShopMyRepository
	Connections earnings.ConnectionRepository
}

// ShopMySyncService pulls payout summaries and brand rates for owned creators
type ShopMySyncService struct {
	Base
	client   integration.ShopMyClient
	accounts ShopMyAccounts
	repos    ShopMyRepositories
}

// NewShopMySyncService creates a new ShopMySyncService
func NewShopMySyncService(client integration.ShopMyClient, accounts ShopMyAccounts, repos ShopMyRepositories, opts ...Option) *ShopMySyncService {
	return &ShopMySyncService{
		Base:     newBase(opts),
		client:   client,
		accounts: accounts,
		repos:    repos,
	}
}

// Run syncs every owned creator that has a ShopMy user id
func (s *ShopMySyncService) Run(ctx context.Context) (*RunReport, error) {
	r := s.start(ctx, JobShopMySync)

	owned, err := s.repos.Creators.ListOwned(r.ctx)
	if err != nil {
		return r.finish(fmt.Errorf("failed to list owned creators: %w", err))
	}

	for _, c := range owned {
		if c.ShopMyUserID == "" {
			continue
		}
		r.add(s.syncCreator(logger.WithCreatorID(r.ctx, c.ID), r, c))
	}
	return r.finish(nil)
}

func (s *ShopMySyncService) syncCreator(ctx context.Context, r *run, c creator.Creator) CreatorResult {
	account, ok := s.accounts.AccountFor(c.ID)
	if !ok {
		return skippedResult(c.ID, "no shopmy account matches this creator")
	}
	if account.Email == "" || account.Password == "" {
		return skippedResult(c.ID, "shopmy credentials are not set")
	}

	session, err := s.client.Login(ctx, account.Email, account.Password)
	if err != nil {
		return errorResult(c.ID, err)
	}

	var (
		summary *integration.ShopMyPayoutSummary
		rates   []earnings.Fields
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary, err = s.client.PayoutSummary(gctx, session, c.ShopMyUserID)
		return err
	})
	g.Go(func() error {
		var err error
		rates, err = s.client.BrandRates(gctx, session, c.ShopMyUserID)
		return err
	})
	if err := g.Wait(); err != nil {
		return errorResult(c.ID, err)
	}

	r.archive(ctx, earnings.PlatformShopMy.String(), c.ID, map[string]any{
		"payoutSummary": summary,
		"brandRates":    rates,
	})

	counts, err := s.store(ctx, r, c, summary, rates)
	if err != nil {
		return errorResult(c.ID, err)
	}
	return okResult(c.ID, counts)
}

func (s *ShopMySyncService) store(ctx context.Context, r *run, c creator.Creator, summary *integration.ShopMyPayoutSummary, rates []earnings.Fields) (map[string]int, error) {
	now := s.now()

	sales := make([]earnings.Sale, 0, len(summary.NormalCommissions))
	for _, nc := range summary.NormalCommissions {
		if sale, ok := earnings.ShopMySale(c.ID, nc, now); ok {
			sales = append(sales, sale)
		}
	}
	inserted, err := s.repos.Sales.InsertIgnore(ctx, r.keepValidSales(sales))
	if err != nil {
		return nil, err
	}

	opps := make([]earnings.ShopMyOpportunityCommission, 0, len(summary.OpportunityCommissions))
	for _, oc := range summary.OpportunityCommissions {
		if opp, ok := earnings.ShopMyOpportunity(c.ID, oc); ok {
			opps = append(opps, opp)
		}
	}
	if err := s.repos.ShopMy.UpsertOpportunityCommissions(ctx, opps); err != nil {
		return nil, err
	}

	payments := make([]earnings.ShopMyPayment, 0, len(summary.Payments))
	for _, p := range summary.Payments {
		if payment, ok := earnings.ShopMyPaymentFrom(c.ID, p); ok {
			payments = append(payments, payment)
		}
	}
	if err := s.repos.ShopMy.UpsertPayments(ctx, payments); err != nil {
		return nil, err
	}

	brandRates := make([]earnings.ShopMyBrandRate, 0, len(rates))
	for _, br := range rates {
		if rate, ok := earnings.ShopMyBrandRateFrom(c.ID, br); ok {
			brandRates = append(brandRates, rate)
		}
	}
	if err := s.repos.ShopMy.UpsertBrandRates(ctx, brandRates); err != nil {
		return nil, err
	}

	rec := earnings.ShopMySummaryRecord(c.ID, earnings.ShopMySummary{
		Normal:        summary.NormalCommissions,
		OpCount:       len(summary.OpportunityCommissions),
		PaymentsCount: len(summary.Payments),
		TodayAmount:   summary.TodayAmount,
	}, now)
	if _, err := s.repos.Ledger.Upsert(ctx, []earnings.Record{rec}, earnings.ConflictUpdate); err != nil {
		return nil, err
	}

	if err := s.repos.Connections.Touch(ctx, earnings.Connection{
		CreatorID:    c.ID,
		Platform:     earnings.PlatformShopMy,
		IsConnected:  true,
		ExternalID:   c.ShopMyUserID,
		LastSyncedAt: now,
	}); err != nil {
		return nil, err
	}

	return map[string]int{
		"sales":       int(inserted),
		"commissions": len(opps),
		"payments":    len(payments),
		"brandRates":  len(brandRates),
		"earnings":    1,
	}, nil
}
