package handler

import (
	"context"
	"io"

	"github.com/creatorhub/backend/internal/application/ingest"
	"github.com/creatorhub/backend/internal/domain/access"
	"github.com/creatorhub/backend/internal/domain/creator"
	"github.com/creatorhub/backend/internal/domain/earnings"
	"github.com/creatorhub/backend/internal/domain/report"
)

// EarningsReader is implemented by reportapp.EarningsService
type EarningsReader interface {
	Summary(ctx context.Context, role access.ResolvedRole, creatorID string, days int) ([]report.PlatformSummary, error)
	History(ctx context.Context, role access.ResolvedRole, creatorID string, platform earnings.Platform, days int) ([]report.HistoryPoint, error)
	Sales(ctx context.Context, role access.ResolvedRole, filter report.SalesFilter) (report.SalesPage, error)
	Export(ctx context.Context, role access.ResolvedRole, filter report.SalesFilter, w io.Writer) error
	TopProducts(ctx context.Context, role access.ResolvedRole, creatorID string, limit int) ([]report.ProductRow, error)
	Aggregate(ctx context.Context, role access.ResolvedRole, days int) (report.AggregateEarnings, error)
	Breakdown(ctx context.Context, role access.ResolvedRole, creatorID string, days int) ([]report.PlatformShare, error)
}

// SocialReader is implemented by reportapp.SocialService
type SocialReader interface {
	Creators(ctx context.Context, role access.ResolvedRole) ([]report.CreatorSummary, error)
	Stats(ctx context.Context, role access.ResolvedRole) (report.AggregateStats, error)
	Compare(ctx context.Context, role access.ResolvedRole, ids []string) ([]report.ComparisonRow, error)
	Overview(ctx context.Context, role access.ResolvedRole, creatorID string) (*report.CreatorOverview, error)
	History(ctx context.Context, role access.ResolvedRole, creatorID string, days int) ([]report.HistoryRow, error)
	TopPosts(ctx context.Context, role access.ResolvedRole, creatorID string, limit int) ([]report.AttributedPost, error)
	RecentPosts(ctx context.Context, role access.ResolvedRole, creatorID string, limit int) ([]report.AttributedPost, error)
	PostsByViews(ctx context.Context, role access.ResolvedRole, creatorID string, days int) ([]report.AttributedPost, error)
	AttributedPosts(ctx context.Context, role access.ResolvedRole, creatorID string) ([]report.AttributedPost, error)
}

// ShopMyReader is implemented by reportapp.ShopMyService
type ShopMyReader interface {
	Summary(ctx context.Context, role access.ResolvedRole, creatorID string) ([]report.HistoryPoint, error)
	Commissions(ctx context.Context, role access.ResolvedRole, creatorID string) (report.ShopMyCommissions, error)
	Payments(ctx context.Context, role access.ResolvedRole, creatorID string) ([]report.PaymentRow, error)
	BrandRates(ctx context.Context, role access.ResolvedRole, creatorID string) ([]report.BrandRateRow, error)
}

// AdminOperations is implemented by reportapp.AdminService
type AdminOperations interface {
	OwnedPlatformIDs(ctx context.Context) ([]creator.Creator, error)
	SetPlatformIDs(ctx context.Context, creatorID string, ids creator.PlatformIDs) (*creator.Creator, error)
	VerifyShopMy(ctx context.Context, creatorID string) (report.ShopMyVerify, error)
	ResetShopMy(ctx context.Context, creatorID string) (report.ShopMyReset, error)
}

// JobRunner is implemented by ingest.Runner
type JobRunner interface {
	Run(ctx context.Context, job string) (*ingest.RunReport, error)
	RunFunc(ctx context.Context, job string, fn ingest.JobFunc) (*ingest.RunReport, error)
}

// MediaBackfiller is implemented by ingest.InstagramService
type MediaBackfiller interface {
	Backfill(ctx context.Context, creatorID string, limit int) (*ingest.RunReport, error)
}

// Pinger reports database reachability
type Pinger interface {
	Ping(ctx context.Context) error
}
