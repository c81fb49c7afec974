package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/creatorhub/backend/internal/domain/creator"
	"github.com/creatorhub/backend/internal/domain/earnings"
	"github.com/creatorhub/backend/internal/domain/integration"
	"github.com/creatorhub/backend/internal/infrastructure/logger"
)

// LTKRepositories are the stores written by the LTK sync
type LTKRepositories struct {
	Creators    creator.Repository
	Ledger      earnings.LedgerRepository
	Connections earnings.ConnectionRepository
}

// LTKSyncService pulls the rolling earnings and engagement summaries for owned creators
type LTKSyncService struct {
	Base
	client integration.LTKClient
	tokens integration.LTKTokenSource
	repos  LTKRepositories
}

// NewLTKSyncService creates a new LTKSyncService
func NewLTKSyncService(client integration.LTKClient, tokens integration.LTKTokenSource, repos LTKRepositories, opts ...Option) *LTKSyncService {
	return &LTKSyncService{
		Base:   newBase(opts),
		client: client,
		tokens: tokens,
		repos:  repos,
	}
}

// Run syncs each rolling range for every owned creator with an LTK publisher id
func (s *LTKSyncService) Run(ctx context.Context) (*RunReport, error) {
	r := s.start(ctx, JobLTKSync)

	tokens, err := s.tokens.LTKTokens(r.ctx)
	if err != nil {
		return r.finish(err)
	}

	owned, err := s.repos.Creators.ListOwned(r.ctx)
	if err != nil {
		return r.finish(fmt.Errorf("failed to list owned creators: %w", err))
	}

	for _, c := range owned {
		if c.LTKPublisherID == "" {
			r.add(skippedResult(c.ID, "no ltk publisher id"))
			continue
		}
		r.add(s.syncCreator(logger.WithCreatorID(r.ctx, c.ID), r, c, tokens))
	}
	return r.finish(nil)
}

// rangeSummaries fetches both summaries for a range. Each call settles on its
// own: a failed call yields a nil payload and its error.
func (s *LTKSyncService) rangeSummaries(ctx context.Context, tokens integration.LTKTokens, label string) (earningsBody, engagementBody earnings.Fields, errs []error) {
	var earnErr, engErr error
	var g errgroup.Group
	g.Go(func() error {
		earningsBody, earnErr = s.client.EarningsSummary(ctx, tokens, label)
		return nil
	})
	g.Go(func() error {
		engagementBody, engErr = s.client.EngagementSummary(ctx, tokens, label)
		return nil
	})
	_ = g.Wait()

	if earnErr != nil {
		earningsBody = nil
		errs = append(errs, earnErr)
	}
	if engErr != nil {
		engagementBody = nil
		errs = append(errs, engErr)
	}
	return earningsBody, engagementBody, errs
}

func (s *LTKSyncService) syncCreator(ctx context.Context, r *run, c creator.Creator, tokens integration.LTKTokens) CreatorResult {
	now := s.now()
	records := make([]earnings.Record, 0, len(earnings.LTKRanges))
	payload := make(map[string]any, len(earnings.LTKRanges))

	for _, rng := range earnings.LTKRanges {
		earn, eng, errs := s.rangeSummaries(ctx, tokens, rng.Label)
		for _, err := range errs {
			r.log.Warn("LTK summary call failed",
				zap.String("creator_id", c.ID),
				zap.String("range", rng.Label),
				zap.Error(err))
		}
		rec, ok := earnings.LTKRangeRecord(c.ID, rng, earn, eng, now)
		if !ok {
			continue
		}
		payload[rng.Label] = map[string]any{"earnings": earn, "engagement": eng}
		records = append(records, rec)
	}
	if len(payload) > 0 {
		r.archive(ctx, earnings.PlatformLTK.String(), c.ID, payload)
	}

	upserted, err := s.repos.Ledger.Upsert(ctx, records, earnings.ConflictUpdate)
	if err != nil {
		return errorResult(c.ID, err)
	}

	if len(records) > 0 {
		if err := s.repos.Connections.Touch(ctx, earnings.Connection{
			CreatorID:    c.ID,
			Platform:     earnings.PlatformLTK,
			IsConnected:  true,
			ExternalID:   c.LTKPublisherID,
			LastSyncedAt: now,
		}); err != nil {
			return errorResult(c.ID, err)
		}
	}

	return okResult(c.ID, map[string]int{"upserted": int(upserted)})
}
