package ingest

import (
	"context"
	"fmt"

	"github.com/creatorhub/backend/internal/domain/creator"
	"github.com/creatorhub/backend/internal/domain/earnings"
	"github.com/creatorhub/backend/internal/domain/integration"
	"github.com/creatorhub/backend/internal/infrastructure/logger"
)

// Airtable mirror columns
const (
	mavelyRecordedAtField = "Recorded At"
)

// ---------------------------------------------------------------------------
// Airtable mirror
// ---------------------------------------------------------------------------

// MavelyMirrorService copies Mavely earnings from the Airtable mirror into the ledger.
// Existing ledger rows are never overwritten.
type MavelyMirrorService struct {
	Base
	airtable   integration.AirtableClient
	table      string
	creatorMap map[string]string
	creators   creator.Repository
	ledger     earnings.LedgerRepository
}

// NewMavelyMirrorService creates a new MavelyMirrorService.
// creatorMap maps the mirror's "Creator ID" column to creator ids and takes
// precedence over the ids stored on creators.
func NewMavelyMirrorService(
	airtable integration.AirtableClient,
	table string,
	creatorMap map[string]string,
	creators creator.Repository,
	ledger earnings.LedgerRepository,
	opts ...Option,
) *MavelyMirrorService {
	return &MavelyMirrorService{
		Base:       newBase(opts),
		airtable:   airtable,
		table:      table,
		creatorMap: creatorMap,
		creators:   creators,
		ledger:     ledger,
	}
}

// Run reads the mirror newest first and inserts rows missing from the ledger
func (s *MavelyMirrorService) Run(ctx context.Context) (*RunReport, error) {
	r := s.start(ctx, JobMavelySync)
	now := s.now()

	owned, err := s.creators.ListOwned(r.ctx)
	if err != nil {
		return r.finish(fmt.Errorf("failed to list owned creators: %w", err))
	}
	resolver := s.resolver(owned)

	rows, err := s.airtable.ListRecords(r.ctx, s.table, integration.AirtableListOptions{
		SortField: mavelyRecordedAtField,
		SortDesc:  true,
	})
	if err != nil {
		return r.finish(fmt.Errorf("failed to read mavely mirror: %w", err))
	}
	r.archive(r.ctx, earnings.PlatformMavely.String(), "", rows)

	cutoff := earnings.Date(now).AddDate(0, 0, -earnings.MavelyMirrorCutoffDays)
	seen := make(map[string]struct{}, len(rows))
	records := make([]earnings.Record, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		rec, ok := earnings.MavelyAirtableRecord(row.Fields, resolver, cutoff, now)
		if !ok || rec.Validate() != nil {
			skipped++
			continue
		}
		// newest row wins; later rows for the same period are older
		if _, dup := seen[rec.Key()]; dup {
			skipped++
			continue
		}
		seen[rec.Key()] = struct{}{}
		records = append(records, rec)
	}

	inserted, err := s.ledger.Upsert(r.ctx, records, earnings.ConflictIgnore)
	if err != nil {
		return r.finish(err)
	}
	skipped += len(records) - int(inserted)

	r.add(CreatorResult{
		Table:  s.table,
		Status: StatusOK,
		Counts: map[string]int{"inserted": int(inserted), "skipped": skipped},
	})
	return r.finish(nil)
}

// resolver maps mirror creator ids to owned creators, falling back to the first owned creator
func (s *MavelyMirrorService) resolver(owned []creator.Creator) earnings.CreatorResolver {
	byVendorID := make(map[string]string, len(owned)+len(s.creatorMap))
	fallback := ""
	for _, c := range owned {
		if fallback == "" {
			fallback = c.ID
		}
		if c.MavelyCreatorID != "" {
			byVendorID[c.MavelyCreatorID] = c.ID
		}
	}
	for vendorID, id := range s.creatorMap {
		byVendorID[vendorID] = id
	}
	return earnings.NewCreatorResolver(byVendorID, fallback)
}

// ---------------------------------------------------------------------------
// GraphQL
// ---------------------------------------------------------------------------

// MavelyCredentials is the creator-app login
type MavelyCredentials struct {
	Email    string
	Password string
}

// MavelyRepositories are the stores written by the Mavely GraphQL sync
type MavelyRepositories struct {
	Creators    creator.Repository
	Mavely      earnings.MavelyRepository
	Products    earnings.ProductRepository
	Connections earnings.ConnectionRepository
}

// MavelyGraphQLService syncs per-link metrics and transactions for attribution
type MavelyGraphQLService struct {
	Base
	client      integration.MavelyClient
	credentials MavelyCredentials
	windowDays  int
	repos       MavelyRepositories
}

// NewMavelyGraphQLService creates a new MavelyGraphQLService. windowDays defaults to 90.
func NewMavelyGraphQLService(client integration.MavelyClient, credentials MavelyCredentials, windowDays int, repos MavelyRepositories, opts ...Option) *MavelyGraphQLService {
	if windowDays <= 0 {
		windowDays = earnings.MavelyMirrorCutoffDays
	}
	return &MavelyGraphQLService{
		Base:        newBase(opts),
		client:      client,
		credentials: credentials,
		windowDays:  windowDays,
		repos:       repos,
	}
}

// Run logs in once and syncs the trailing window for every owned creator
func (s *MavelyGraphQLService) Run(ctx context.Context) (*RunReport, error) {
	r := s.start(ctx, JobMavelyGraphQLSync)

	if s.credentials.Email == "" || s.credentials.Password == "" {
		return r.finish(fmt.Errorf("%w: mavely email and password", integration.ErrCredentialsMissing))
	}

	owned, err := s.repos.Creators.ListOwned(r.ctx)
	if err != nil {
		return r.finish(fmt.Errorf("failed to list owned creators: %w", err))
	}
	if len(owned) == 0 {
		return r.finish(ErrNoOwnedCreators)
	}

	token, err := s.client.Token(r.ctx, s.credentials.Email, s.credentials.Password)
	if err != nil {
		return r.finish(fmt.Errorf("mavely login: %w", err))
	}

	period := earnings.TrailingPeriod(s.now(), s.windowDays)
	r.report.Period = period.String()

	for _, c := range owned {
		r.add(s.syncCreator(logger.WithCreatorID(r.ctx, c.ID), r, c, token, period))
	}
	return r.finish(nil)
}

func (s *MavelyGraphQLService) syncCreator(ctx context.Context, r *run, c creator.Creator, token string, period earnings.Period) CreatorResult {
	links, err := s.client.LinkMetrics(ctx, token, period)
	if err != nil {
		return errorResult(c.ID, err)
	}
	txs, err := s.client.Transactions(ctx, token, period)
	if err != nil {
		return errorResult(c.ID, err)
	}
	r.archive(ctx, earnings.PlatformMavely.String(), c.ID, map[string]any{
		"period":       period.String(),
		"links":        links,
		"transactions": txs,
	})

	products := make([]earnings.Product, 0, len(links))
	for i := range links {
		links[i].CreatorID = c.ID
		links[i].Period = period
		if p, ok := earnings.ProductFromMavelyLink(links[i]); ok {
			products = append(products, p)
		}
	}
	if err := s.repos.Mavely.UpsertLinks(ctx, links); err != nil {
		return errorResult(c.ID, err)
	}
	if err := s.repos.Products.Upsert(ctx, products); err != nil {
		return errorResult(c.ID, err)
	}

	for i := range txs {
		txs[i].CreatorID = c.ID
	}
	inserted, skipped, err := s.repos.Mavely.InsertTransactions(ctx, txs)
	if err != nil {
		return errorResult(c.ID, err)
	}

	if err := s.repos.Connections.Touch(ctx, earnings.Connection{
		CreatorID:    c.ID,
		Platform:     earnings.PlatformMavely,
		IsConnected:  true,
		ExternalID:   c.MavelyCreatorID,
		LastSyncedAt: s.now(),
	}); err != nil {
		return errorResult(c.ID, err)
	}

	return okResult(c.ID, map[string]int{
		"linksUpserted":    len(links),
		"productsUpserted": len(products),
		"txInserted":       int(inserted),
		"txSkipped":        int(skipped),
	})
}
