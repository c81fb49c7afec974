// Package app wires configuration, persistence, vendor clients and
// application services into the objects the server and CLIs run.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/creatorhub/backend/internal/application/ingest"
	reportapp "github.com/creatorhub/backend/internal/application/report"
	"github.com/creatorhub/backend/internal/domain/creator"
	"github.com/creatorhub/backend/internal/domain/integration"
	"github.com/creatorhub/backend/internal/infrastructure/affiliate"
	"github.com/creatorhub/backend/internal/infrastructure/cache"
	"github.com/creatorhub/backend/internal/infrastructure/config"
	"github.com/creatorhub/backend/internal/infrastructure/instagram"
	"github.com/creatorhub/backend/internal/infrastructure/persistence"
	"github.com/creatorhub/backend/internal/infrastructure/scheduler"
	"github.com/creatorhub/backend/internal/infrastructure/storage"
	"github.com/creatorhub/backend/internal/infrastructure/telemetry"
	"github.com/creatorhub/backend/internal/infrastructure/vendorhttp"
)

// Deps are the infrastructure pieces services are built on
type Deps struct {
	DB       *gorm.DB
	Locker   cache.Locker
	Tokens   integration.TokenStore
	Archiver storage.Archiver
	Metrics  *telemetry.SyncMetrics
}

// Services holds the application services and the job runner
type Services struct {
	Runner     *ingest.Runner
	Instagram  *ingest.InstagramService
	Historical *ingest.HistoricalBackfillService

	Earnings *reportapp.EarningsService
	Social   *reportapp.SocialService
	ShopMy   *reportapp.ShopMyService
	Admin    *reportapp.AdminService
	Access   *reportapp.AccessService

	LTK       integration.LTKClient
	LTKTokens integration.LTKTokenSource

	backfill config.BackfillConfig
}

// Clients are the outbound vendor clients
type Clients struct {
	Instagram integration.InstagramClient
	ShopMy    integration.ShopMyClient
	Mavely    integration.MavelyClient
	LTK       integration.LTKClient
	Airtable  integration.AirtableClient
}

// NewClients creates one rate-limited transport per vendor and the clients over them.
// Without an Airtable token the Airtable-backed jobs fail with ErrPlatformNotConfigured.
func NewClients(cfg *config.Config, tokens integration.TokenStore, log *zap.Logger) (*Clients, error) {
	ig, err := instagram.NewClient(instagram.Config{BaseURL: cfg.Instagram.BaseURL},
		vendorhttp.New("instagram", cfg.Vendor, log), tokens, log)
	if err != nil {
		return nil, fmt.Errorf("instagram client: %w", err)
	}
	shopmy, err := affiliate.NewShopMyClient(affiliate.ShopMyConfig{
		BaseURL: cfg.ShopMy.BaseURL,
		Origin:  cfg.ShopMy.Origin,
	}, vendorhttp.New("shopmy", cfg.Vendor, log))
	if err != nil {
		return nil, fmt.Errorf("shopmy client: %w", err)
	}
	mavely, err := affiliate.NewMavelyClient(affiliate.MavelyConfig{
		AuthURL:  cfg.Mavely.AuthURL,
		GraphURL: cfg.Mavely.GraphURL,
	}, vendorhttp.New("mavely", cfg.Vendor, log))
	if err != nil {
		return nil, fmt.Errorf("mavely client: %w", err)
	}
	ltk, err := affiliate.NewLTKClient(affiliate.LTKConfig{
		BaseURL:    cfg.LTK.BaseURL,
		GatewayURL: cfg.LTK.GatewayURL,
		Origin:     cfg.LTK.Origin,
	}, vendorhttp.New("ltk", cfg.Vendor, log))
	if err != nil {
		return nil, fmt.Errorf("ltk client: %w", err)
	}

	var airtable integration.AirtableClient = affiliate.DisabledAirtable{}
	if cfg.Airtable.Token != "" {
		client, err := affiliate.NewAirtableClient(affiliate.AirtableConfig{
			BaseURL: cfg.Airtable.BaseURL,
			Token:   cfg.Airtable.Token,
			BaseID:  cfg.Airtable.BaseID,
		}, vendorhttp.New("airtable", cfg.Vendor, log))
		if err != nil {
			return nil, fmt.Errorf("airtable client: %w", err)
		}
		airtable = client
	} else {
		log.Warn("Airtable token not configured; Mavely mirror, LTK tokens and Airtable backfill are disabled")
	}

	return &Clients{Instagram: ig, ShopMy: shopmy, Mavely: mavely, LTK: ltk, Airtable: airtable}, nil
}

// Roster converts the configured creator roster
func Roster(cfgs []config.CreatorConfig) []creator.Creator {
	out := make([]creator.Creator, 0, len(cfgs))
	for _, c := range cfgs {
		out = append(out, creator.Creator{
			ID:          c.ID,
			IGUserID:    c.IGUserID,
			Username:    c.Username,
			DisplayName: c.DisplayName,
			IsOwned:     c.IsOwned,
		})
	}
	return out
}

// NewServices builds the repositories, the ingestion services and the report services,
// and registers every scheduled job on a runner guarded by deps.Locker.
func NewServices(cfg *config.Config, deps Deps, clients *Clients, log *zap.Logger) *Services {
	db := deps.DB
	creators := persistence.NewGormCreatorRepository(db)
	ledger := persistence.NewGormLedgerRepository(db)
	sales := persistence.NewGormSalesRepository(db)
	products := persistence.NewGormProductRepository(db)
	connections := persistence.NewGormConnectionRepository(db)
	shopmyRepo := persistence.NewGormShopMyRepository(db)
	mavelyRepo := persistence.NewGormMavelyRepository(db)
	shopmyReports := persistence.NewGormShopMyReportRepository(db)

	opts := []ingest.Option{
		ingest.WithLogger(log),
		ingest.WithArchiver(deps.Archiver),
		ingest.WithMetrics(deps.Metrics),
	}
	ltkTokens := affiliate.NewAirtableLTKTokens(clients.Airtable, cfg.LTK.CredentialsTable)
	mavelyLogin := ingest.MavelyCredentials{Email: cfg.Mavely.Email, Password: cfg.Mavely.Password}

	ig := ingest.NewInstagramService(clients.Instagram, creators, Roster(cfg.Creators), deps.Tokens,
		ingest.InstagramSettings{
			BusinessAccountID: cfg.Instagram.BusinessAccountID,
			MediaLimit:        cfg.Instagram.MediaLimit,
			AppID:             cfg.Instagram.AppID,
			AppSecret:         cfg.Instagram.AppSecret,
			BackfillPageSize:  cfg.Instagram.BackfillPageSize,
			BackfillPace:      cfg.Backfill.Pace,
		}, opts...)
	shopmy := ingest.NewShopMySyncService(clients.ShopMy, cfg.ShopMy, ingest.ShopMyRepositories{
		Creators:    creators,
		Ledger:      ledger,
		Sales:       sales,
		ShopMy:      shopmyRepo,
		Connections: connections,
	}, opts...)
	mirror := ingest.NewMavelyMirrorService(clients.Airtable, cfg.Mavely.AirtableTable, cfg.Mavely.CreatorMap,
		creators, ledger, opts...)
	mavely := ingest.NewMavelyGraphQLService(clients.Mavely, mavelyLogin, cfg.Mavely.WindowDays,
		ingest.MavelyRepositories{
			Creators:    creators,
			Mavely:      mavelyRepo,
			Products:    products,
			Connections: connections,
		}, opts...)
	ltk := ingest.NewLTKSyncService(clients.LTK, ltkTokens, ingest.LTKRepositories{
		Creators:    creators,
		Ledger:      ledger,
		Connections: connections,
	}, opts...)
	airtableBackfill := ingest.NewAirtableBackfillService(clients.Airtable, ledger, cfg.Backfill.Pace, opts...)
	historical := ingest.NewHistoricalBackfillService(ingest.HistoricalVendors{
		ShopMy:         clients.ShopMy,
		ShopMyAccounts: cfg.ShopMy,
		Mavely:         clients.Mavely,
		MavelyLogin:    mavelyLogin,
		LTK:            clients.LTK,
		LTKTokens:      ltkTokens,
	}, ingest.HistoricalRepositories{
		Creators: creators,
		Ledger:   ledger,
		Sales:    sales,
	}, cfg.Backfill.Pace, opts...)

	s := &Services{
		Runner:     ingest.NewRunner(ingest.NewRunGuard(deps.Locker, cfg.Scheduler.LockTTL, log)),
		Instagram:  ig,
		Historical: historical,
		Earnings:   reportapp.NewEarningsService(persistence.NewGormEarningsReportRepository(db)),
		Social:     reportapp.NewSocialService(persistence.NewGormSocialReportRepository(db)),
		ShopMy:     reportapp.NewShopMyService(shopmyReports),
		Admin:      reportapp.NewAdminService(creators, shopmyRepo, shopmyReports),
		Access:     reportapp.NewAccessService(persistence.NewGormUserRoleRepository(db)),
		LTK:        clients.LTK,
		LTKTokens:  ltkTokens,
		backfill:   cfg.Backfill,
	}

	s.Runner.Register(ingest.JobInstagramCollect, ig.Collect)
	s.Runner.Register(ingest.JobInstagramStories, ig.Stories)
	s.Runner.Register(ingest.JobTokenRefresh, ig.RefreshToken)
	s.Runner.Register(ingest.JobShopMySync, shopmy.Run)
	s.Runner.Register(ingest.JobMavelySync, mirror.Run)
	s.Runner.Register(ingest.JobMavelyGraphQLSync, mavely.Run)
	s.Runner.Register(ingest.JobLTKSync, ltk.Run)
	s.Runner.Register(ingest.JobAirtableBackfill, airtableBackfill.Run)
	s.Runner.Register(ingest.JobHistoricalBackfill, func(ctx context.Context) (*ingest.RunReport, error) {
		return historical.Run(ctx, s.HistoricalRequest(time.Now().UTC()))
	})
	return s
}

// HistoricalRequest is the configured backfill window. The creator defaults to the first owned one.
func (s *Services) HistoricalRequest(now time.Time) ingest.HistoricalRequest {
	from, to := s.backfill.BackfillMonths(now)
	return ingest.HistoricalRequest{From: from, To: to}
}

// Executor adapts the runner to the scheduler's worker pool
func (s *Services) Executor() scheduler.ExecutorFunc {
	return func(ctx context.Context, job *scheduler.Job) (scheduler.Outcome, error) {
		rep, err := s.Runner.Run(ctx, string(job.Type))
		if rep == nil {
			return scheduler.Outcome{}, err
		}
		return scheduler.Outcome{Synced: rep.Synced, Errors: rep.Errors}, err
	}
}
