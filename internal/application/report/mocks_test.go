package report

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/creatorhub/backend/internal/domain/access"
	"github.com/creatorhub/backend/internal/domain/creator"
	"github.com/creatorhub/backend/internal/domain/earnings"
	"github.com/creatorhub/backend/internal/domain/report"
)

var testNow = time.Date(2025, 3, 4, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

var (
	internalRole = access.ResolvedRole{Role: access.RoleInternal, AssignedCreatorIDs: []string{}}
	creatorRole  = access.ResolvedRole{Role: access.RoleCreator, CreatorID: "alice", AssignedCreatorIDs: []string{}}
	clientRole   = access.ResolvedRole{Role: access.RoleClient, AssignedCreatorIDs: []string{"alice", "bob"}}
	noneRole     = access.DefaultRole()
)

// MockEarningsReportRepository is a mock implementation of report.EarningsReportRepository
type MockEarningsReportRepository struct {
	mock.Mock
}

func (m *MockEarningsReportRepository) Summary(ctx context.Context, creatorID string, since time.Time) ([]report.PlatformSummary, error) {
	args := m.Called(ctx, creatorID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.PlatformSummary), args.Error(1)
}

func (m *MockEarningsReportRepository) History(ctx context.Context, creatorID string, platform earnings.Platform, since time.Time) ([]report.HistoryPoint, error) {
	args := m.Called(ctx, creatorID, platform, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.HistoryPoint), args.Error(1)
}

func (m *MockEarningsReportRepository) Sales(ctx context.Context, filter report.SalesFilter) (report.SalesPage, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(report.SalesPage), args.Error(1)
}

func (m *MockEarningsReportRepository) ExportSales(ctx context.Context, filter report.SalesFilter) ([]report.SaleRow, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.SaleRow), args.Error(1)
}

func (m *MockEarningsReportRepository) TopProducts(ctx context.Context, creatorID string, limit int) ([]report.ProductRow, error) {
	args := m.Called(ctx, creatorID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.ProductRow), args.Error(1)
}

func (m *MockEarningsReportRepository) Aggregate(ctx context.Context, since time.Time, creatorIDs []string) (report.AggregateEarnings, error) {
	args := m.Called(ctx, since, creatorIDs)
	return args.Get(0).(report.AggregateEarnings), args.Error(1)
}

func (m *MockEarningsReportRepository) ByPlatform(ctx context.Context, creatorIDs []string, since time.Time) ([]report.PlatformSummary, error) {
	args := m.Called(ctx, creatorIDs, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.PlatformSummary), args.Error(1)
}

// MockSocialReportRepository is a mock implementation of report.SocialReportRepository
type MockSocialReportRepository struct {
	mock.Mock
}

func (m *MockSocialReportRepository) CreatorsSummary(ctx context.Context, creatorIDs []string) ([]report.CreatorSummary, error) {
	args := m.Called(ctx, creatorIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.CreatorSummary), args.Error(1)
}

func (m *MockSocialReportRepository) CreatorOverview(ctx context.Context, creatorID string) (*report.CreatorOverview, error) {
	args := m.Called(ctx, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.CreatorOverview), args.Error(1)
}

func (m *MockSocialReportRepository) CreatorHistory(ctx context.Context, creatorID string, since time.Time) ([]report.HistoryRow, error) {
	args := m.Called(ctx, creatorID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.HistoryRow), args.Error(1)
}

func (m *MockSocialReportRepository) posts(args mock.Arguments) ([]report.AttributedPost, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.AttributedPost), args.Error(1)
}

func (m *MockSocialReportRepository) TopPosts(ctx context.Context, creatorID string, limit int) ([]report.AttributedPost, error) {
	return m.posts(m.Called(ctx, creatorID, limit))
}

func (m *MockSocialReportRepository) RecentPosts(ctx context.Context, creatorID string, limit int) ([]report.AttributedPost, error) {
	return m.posts(m.Called(ctx, creatorID, limit))
}

func (m *MockSocialReportRepository) RecentPostsByViews(ctx context.Context, creatorID string, since time.Time) ([]report.AttributedPost, error) {
	return m.posts(m.Called(ctx, creatorID, since))
}

func (m *MockSocialReportRepository) Compare(ctx context.Context, creatorIDs []string) ([]report.ComparisonRow, error) {
	args := m.Called(ctx, creatorIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.ComparisonRow), args.Error(1)
}

func (m *MockSocialReportRepository) AggregateStats(ctx context.Context, creatorIDs []string) (report.AggregateStats, error) {
	args := m.Called(ctx, creatorIDs)
	return args.Get(0).(report.AggregateStats), args.Error(1)
}

func (m *MockSocialReportRepository) AttributedPosts(ctx context.Context, creatorID string) ([]report.AttributedPost, error) {
	return m.posts(m.Called(ctx, creatorID))
}

// MockShopMyReportRepository is a mock implementation of report.ShopMyReportRepository
type MockShopMyReportRepository struct {
	mock.Mock
}

func (m *MockShopMyReportRepository) Summary(ctx context.Context, creatorID string, limit int) ([]report.HistoryPoint, error) {
	args := m.Called(ctx, creatorID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.HistoryPoint), args.Error(1)
}

func (m *MockShopMyReportRepository) Commissions(ctx context.Context, creatorID string, limit int) (report.ShopMyCommissions, error) {
	args := m.Called(ctx, creatorID, limit)
	return args.Get(0).(report.ShopMyCommissions), args.Error(1)
}

func (m *MockShopMyReportRepository) Payments(ctx context.Context, creatorID string) ([]report.PaymentRow, error) {
	args := m.Called(ctx, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.PaymentRow), args.Error(1)
}

func (m *MockShopMyReportRepository) BrandRates(ctx context.Context, creatorID string) ([]report.BrandRateRow, error) {
	args := m.Called(ctx, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.BrandRateRow), args.Error(1)
}

func (m *MockShopMyReportRepository) Verify(ctx context.Context, creatorID string, samples int) (report.ShopMyVerify, error) {
	args := m.Called(ctx, creatorID, samples)
	return args.Get(0).(report.ShopMyVerify), args.Error(1)
}

// MockCreatorRepository is a mock implementation of creator.Repository
type MockCreatorRepository struct {
	mock.Mock
}

func (m *MockCreatorRepository) EnsureExists(ctx context.Context, c creator.Creator) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCreatorRepository) UpdateProfile(ctx context.Context, id string, p creator.Profile) error {
	return m.Called(ctx, id, p).Error(0)
}

func (m *MockCreatorRepository) SetPlatformIDs(ctx context.Context, id string, ids creator.PlatformIDs) (*creator.Creator, error) {
	args := m.Called(ctx, id, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*creator.Creator), args.Error(1)
}

func (m *MockCreatorRepository) Get(ctx context.Context, id string) (*creator.Creator, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*creator.Creator), args.Error(1)
}

func (m *MockCreatorRepository) List(ctx context.Context) ([]creator.Creator, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]creator.Creator), args.Error(1)
}

func (m *MockCreatorRepository) ListOwned(ctx context.Context) ([]creator.Creator, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]creator.Creator), args.Error(1)
}

func (m *MockCreatorRepository) InsertSnapshotIgnore(ctx context.Context, s creator.Snapshot) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockCreatorRepository) UpsertMedia(ctx context.Context, source creator.MediaSource, media []creator.MediaSnapshot) error {
	return m.Called(ctx, source, media).Error(0)
}

// MockAccessRepository is a mock implementation of access.Repository
type MockAccessRepository struct {
	mock.Mock
}

func (m *MockAccessRepository) FindByUserID(ctx context.Context, userID string) (*access.UserRole, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*access.UserRole), args.Error(1)
}

// MockShopMyRepository is a mock implementation of earnings.ShopMyRepository
type MockShopMyRepository struct {
	mock.Mock
}

func (m *MockShopMyRepository) UpsertOpportunityCommissions(ctx context.Context, rows []earnings.ShopMyOpportunityCommission) error {
	return m.Called(ctx, rows).Error(0)
}

func (m *MockShopMyRepository) UpsertPayments(ctx context.Context, rows []earnings.ShopMyPayment) error {
	return m.Called(ctx, rows).Error(0)
}

func (m *MockShopMyRepository) UpsertBrandRates(ctx context.Context, rows []earnings.ShopMyBrandRate) error {
	return m.Called(ctx, rows).Error(0)
}

func (m *MockShopMyRepository) ResetCreator(ctx context.Context, creatorID string) (earnings.ShopMyResetCounts, error) {
	args := m.Called(ctx, creatorID)
	return args.Get(0).(earnings.ShopMyResetCounts), args.Error(1)
}
