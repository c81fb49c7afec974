package report

import (
	"context"
	"time"

	"github.com/creatorhub/backend/internal/domain/earnings"
)

// EarningsReportRepository answers ledger and sales queries.
// since is the lower bound on synced_at; a nil creatorIDs slice means all creators.
type EarningsReportRepository interface {
	Summary(ctx context.Context, creatorID string, since time.Time) ([]PlatformSummary, error)
	History(ctx context.Context, creatorID string, platform earnings.Platform, since time.Time) ([]HistoryPoint, error)
	Sales(ctx context.Context, filter SalesFilter) (SalesPage, error)
	ExportSales(ctx context.Context, filter SalesFilter) ([]SaleRow, error)
	TopProducts(ctx context.Context, creatorID string, limit int) ([]ProductRow, error)
	Aggregate(ctx context.Context, since time.Time, creatorIDs []string) (AggregateEarnings, error)
	ByPlatform(ctx context.Context, creatorIDs []string, since time.Time) ([]PlatformSummary, error)
}

// SocialReportRepository answers creator and media queries
type SocialReportRepository interface {
	CreatorsSummary(ctx context.Context, creatorIDs []string) ([]CreatorSummary, error)
	CreatorOverview(ctx context.Context, creatorID string) (*CreatorOverview, error)
	CreatorHistory(ctx context.Context, creatorID string, since time.Time) ([]HistoryRow, error)
	TopPosts(ctx context.Context, creatorID string, limit int) ([]AttributedPost, error)
	RecentPosts(ctx context.Context, creatorID string, limit int) ([]AttributedPost, error)
	RecentPostsByViews(ctx context.Context, creatorID string, since time.Time) ([]AttributedPost, error)
	Compare(ctx context.Context, creatorIDs []string) ([]ComparisonRow, error)
	AggregateStats(ctx context.Context, creatorIDs []string) (AggregateStats, error)
	AttributedPosts(ctx context.Context, creatorID string) ([]AttributedPost, error)
}

// ShopMyReportRepository answers the ShopMy detail views
type ShopMyReportRepository interface {
	Summary(ctx context.Context, creatorID string, limit int) ([]HistoryPoint, error)
	Commissions(ctx context.Context, creatorID string, limit int) (ShopMyCommissions, error)
	Payments(ctx context.Context, creatorID string) ([]PaymentRow, error)
	BrandRates(ctx context.Context, creatorID string) ([]BrandRateRow, error)
	Verify(ctx context.Context, creatorID string, samples int) (ShopMyVerify, error)
}
