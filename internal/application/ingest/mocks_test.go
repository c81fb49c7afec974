package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/creatorhub/backend/internal/domain/creator"
	"github.com/creatorhub/backend/internal/domain/earnings"
	"github.com/creatorhub/backend/internal/domain/integration"
	"github.com/creatorhub/backend/internal/infrastructure/storage"
)

var testNow = time.Date(2025, 3, 4, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

// ---------------------------------------------------------------------------
// Repositories
// ---------------------------------------------------------------------------

// MockCreatorRepository is a mock implementation of creator.Repository
type MockCreatorRepository struct {
	mock.Mock
}

func (m *MockCreatorRepository) EnsureExists(ctx context.Context, c creator.Creator) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCreatorRepository) UpdateProfile(ctx context.Context, id string, p creator.Profile) error {
	args := m.Called(ctx, id, p)
	return args.Error(0)
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
	return args.Get(0).([]creator.Creator), args.Error(1)
}

func (m *MockCreatorRepository) ListOwned(ctx context.Context) ([]creator.Creator, error) {
	args := m.Called(ctx)
	return args.Get(0).([]creator.Creator), args.Error(1)
}

func (m *MockCreatorRepository) InsertSnapshotIgnore(ctx context.Context, s creator.Snapshot) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockCreatorRepository) UpsertMedia(ctx context.Context, source creator.MediaSource, media []creator.MediaSnapshot) error {
	args := m.Called(ctx, source, media)
	return args.Error(0)
}

// MockLedgerRepository is a mock implementation of earnings.LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Upsert(ctx context.Context, records []earnings.Record, policy earnings.ConflictPolicy) (int64, error) {
	args := m.Called(ctx, records, policy)
	return args.Get(0).(int64), args.Error(1)
}

// MockSalesRepository is a mock implementation of earnings.SalesRepository
type MockSalesRepository struct {
	mock.Mock
}

func (m *MockSalesRepository) InsertIgnore(ctx context.Context, sales []earnings.Sale) (int64, error) {
	args := m.Called(ctx, sales)
	return args.Get(0).(int64), args.Error(1)
}

// MockProductRepository is a mock implementation of earnings.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Upsert(ctx context.Context, products []earnings.Product) error {
	args := m.Called(ctx, products)
	return args.Error(0)
}

// MockConnectionRepository is a mock implementation of earnings.ConnectionRepository
type MockConnectionRepository struct {
	mock.Mock
}

func (m *MockConnectionRepository) Touch(ctx context.Context, conn earnings.Connection) error {
	args := m.Called(ctx, conn)
	return args.Error(0)
}

// MockShopMyRepository is a mock implementation of earnings.ShopMyRepository
type MockShopMyRepository struct {
	mock.Mock
}

func (m *MockShopMyRepository) UpsertOpportunityCommissions(ctx context.Context, rows []earnings.ShopMyOpportunityCommission) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}

func (m *MockShopMyRepository) UpsertPayments(ctx context.Context, rows []earnings.ShopMyPayment) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}

func (m *MockShopMyRepository) UpsertBrandRates(ctx context.Context, rows []earnings.ShopMyBrandRate) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}

func (m *MockShopMyRepository) ResetCreator(ctx context.Context, creatorID string) (earnings.ShopMyResetCounts, error) {
	args := m.Called(ctx, creatorID)
	return args.Get(0).(earnings.ShopMyResetCounts), args.Error(1)
}

// MockMavelyRepository is a mock implementation of earnings.MavelyRepository
type MockMavelyRepository struct {
	mock.Mock
}

func (m *MockMavelyRepository) UpsertLinks(ctx context.Context, links []earnings.MavelyLink) error {
	args := m.Called(ctx, links)
	return args.Error(0)
}

func (m *MockMavelyRepository) InsertTransactions(ctx context.Context, txs []earnings.MavelyTransaction) (int64, int64, error) {
	args := m.Called(ctx, txs)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

// ---------------------------------------------------------------------------
// Vendor clients
// ---------------------------------------------------------------------------

// MockShopMyClient is a mock implementation of integration.ShopMyClient
type MockShopMyClient struct {
	mock.Mock
}

func (m *MockShopMyClient) Login(ctx context.Context, email, password string) (*integration.ShopMySession, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.ShopMySession), args.Error(1)
}

func (m *MockShopMyClient) PayoutSummary(ctx context.Context, session *integration.ShopMySession, userID string) (*integration.ShopMyPayoutSummary, error) {
	args := m.Called(ctx, session, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.ShopMyPayoutSummary), args.Error(1)
}

func (m *MockShopMyClient) BrandRates(ctx context.Context, session *integration.ShopMySession, userID string) ([]earnings.Fields, error) {
	args := m.Called(ctx, session, userID)
	return args.Get(0).([]earnings.Fields), args.Error(1)
}

// MockMavelyClient is a mock implementation of integration.MavelyClient
type MockMavelyClient struct {
	mock.Mock
}

func (m *MockMavelyClient) Token(ctx context.Context, email, password string) (string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Error(1)
}

func (m *MockMavelyClient) LinkMetrics(ctx context.Context, token string, p earnings.Period) ([]earnings.MavelyLink, error) {
	args := m.Called(ctx, token, p)
	return args.Get(0).([]earnings.MavelyLink), args.Error(1)
}

func (m *MockMavelyClient) Transactions(ctx context.Context, token string, p earnings.Period) ([]earnings.MavelyTransaction, error) {
	args := m.Called(ctx, token, p)
	return args.Get(0).([]earnings.MavelyTransaction), args.Error(1)
}

func (m *MockMavelyClient) MetricsTotals(ctx context.Context, token string, p earnings.Period) (earnings.Fields, error) {
	args := m.Called(ctx, token, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(earnings.Fields), args.Error(1)
}

// MockLTKClient is a mock implementation of integration.LTKClient
type MockLTKClient struct {
	mock.Mock
}

func (m *MockLTKClient) EarningsSummary(ctx context.Context, tokens integration.LTKTokens, rangeLabel string) (earnings.Fields, error) {
	args := m.Called(ctx, tokens, rangeLabel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(earnings.Fields), args.Error(1)
}

func (m *MockLTKClient) EngagementSummary(ctx context.Context, tokens integration.LTKTokens, rangeLabel string) (earnings.Fields, error) {
	args := m.Called(ctx, tokens, rangeLabel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(earnings.Fields), args.Error(1)
}

func (m *MockLTKClient) PerformanceSummary(ctx context.Context, tokens integration.LTKTokens, publisherID string, p earnings.Period) (earnings.Fields, error) {
	args := m.Called(ctx, tokens, publisherID, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(earnings.Fields), args.Error(1)
}

func (m *MockLTKClient) ItemsSold(ctx context.Context, tokens integration.LTKTokens, p earnings.Period) ([]earnings.Fields, error) {
	args := m.Called(ctx, tokens, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]earnings.Fields), args.Error(1)
}

func (m *MockLTKClient) Proxy(ctx context.Context, tokens integration.LTKTokens, req integration.ProxyRequest) (*integration.ProxyResponse, error) {
	args := m.Called(ctx, tokens, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.ProxyResponse), args.Error(1)
}

// MockLTKTokenSource is a mock implementation of integration.LTKTokenSource
type MockLTKTokenSource struct {
	mock.Mock
}

func (m *MockLTKTokenSource) LTKTokens(ctx context.Context) (integration.LTKTokens, error) {
	args := m.Called(ctx)
	return args.Get(0).(integration.LTKTokens), args.Error(1)
}

// MockAirtableClient is a mock implementation of integration.AirtableClient
type MockAirtableClient struct {
	mock.Mock
}

func (m *MockAirtableClient) ListPage(ctx context.Context, table string, opts integration.AirtableListOptions) (*integration.AirtablePage, error) {
	args := m.Called(ctx, table, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.AirtablePage), args.Error(1)
}

func (m *MockAirtableClient) ListRecords(ctx context.Context, table string, opts integration.AirtableListOptions) ([]integration.AirtableRecord, error) {
	args := m.Called(ctx, table, opts)
	return args.Get(0).([]integration.AirtableRecord), args.Error(1)
}

func (m *MockAirtableClient) LatestRecord(ctx context.Context, table, sortField string) (*integration.AirtableRecord, error) {
	args := m.Called(ctx, table, sortField)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.AirtableRecord), args.Error(1)
}

// MockInstagramClient is a mock implementation of integration.InstagramClient
type MockInstagramClient struct {
	mock.Mock
}

func (m *MockInstagramClient) OwnedProfile(ctx context.Context, igUserID string) (*integration.IGProfile, error) {
	args := m.Called(ctx, igUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.IGProfile), args.Error(1)
}

func (m *MockInstagramClient) OwnedMedia(ctx context.Context, igUserID string, limit int) ([]integration.IGMedia, error) {
	args := m.Called(ctx, igUserID, limit)
	return args.Get(0).([]integration.IGMedia), args.Error(1)
}

func (m *MockInstagramClient) MediaPage(ctx context.Context, igUserID, after string, pageSize int) (*integration.IGMediaPage, error) {
	args := m.Called(ctx, igUserID, after, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.IGMediaPage), args.Error(1)
}

func (m *MockInstagramClient) MediaInsights(ctx context.Context, mediaID, productType string) integration.IGMediaInsights {
	args := m.Called(ctx, mediaID, productType)
	return args.Get(0).(integration.IGMediaInsights)
}

func (m *MockInstagramClient) AccountInsights(ctx context.Context, igUserID string) integration.IGAccountInsights {
	args := m.Called(ctx, igUserID)
	return args.Get(0).(integration.IGAccountInsights)
}

func (m *MockInstagramClient) BusinessDiscovery(ctx context.Context, ourIGUserID, username string) (*integration.IGDiscovery, error) {
	args := m.Called(ctx, ourIGUserID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.IGDiscovery), args.Error(1)
}

func (m *MockInstagramClient) Stories(ctx context.Context, igUserID string) ([]integration.IGStory, error) {
	args := m.Called(ctx, igUserID)
	return args.Get(0).([]integration.IGStory), args.Error(1)
}

func (m *MockInstagramClient) StoryInsights(ctx context.Context, storyID string) (integration.IGStoryInsights, error) {
	args := m.Called(ctx, storyID)
	return args.Get(0).(integration.IGStoryInsights), args.Error(1)
}

func (m *MockInstagramClient) ExchangeToken(ctx context.Context, appID, appSecret, current string) (string, error) {
	args := m.Called(ctx, appID, appSecret, current)
	return args.String(0), args.Error(1)
}

// MockTokenStore is a mock implementation of integration.TokenStore
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) Get(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockTokenStore) Set(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// ---------------------------------------------------------------------------
// Archiver
// ---------------------------------------------------------------------------

// recordingArchiver keeps every archived payload
type recordingArchiver struct {
	mu       sync.Mutex
	archives []storage.Archive
	err      error
}

func (a *recordingArchiver) Archive(_ context.Context, arc storage.Archive) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return "", a.err
	}
	a.archives = append(a.archives, arc)
	return arc.Key("raw"), nil
}

func (a *recordingArchiver) platforms() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.archives))
	for _, arc := range a.archives {
		out = append(out, arc.Platform)
	}
	return out
}

func intPtr(v int) *int { return &v }
