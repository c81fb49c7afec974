package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/creatorhub/backend/internal/application/ingest"
	"github.com/creatorhub/backend/internal/domain/access"
	"github.com/creatorhub/backend/internal/domain/creator"
	"github.com/creatorhub/backend/internal/domain/earnings"
	"github.com/creatorhub/backend/internal/domain/integration"
	"github.com/creatorhub/backend/internal/domain/report"
	"github.com/creatorhub/backend/internal/interfaces/http/dto"
	"github.com/creatorhub/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := middleware.SetupValidator(); err != nil {
		panic(err)
	}
}

var (
	internalRole = access.ResolvedRole{Role: access.RoleInternal, AssignedCreatorIDs: []string{}}
	creatorRole  = access.ResolvedRole{Role: access.RoleCreator, CreatorID: "alice", AssignedCreatorIDs: []string{}}
	clientRole   = access.ResolvedRole{Role: access.RoleClient, AssignedCreatorIDs: []string{"alice", "bob"}}
)

// setupTestRouter returns a router whose requests carry the given role and user
func setupTestRouter(role access.ResolvedRole) *gin.Engine {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("request_id", "req-test")
		c.Set(middleware.JWTUserIDKey, "user_test")
		c.Set(middleware.RoleKey, role)
		c.Next()
	})
	return router
}

// decodeResponse unmarshals the envelope and returns it with the raw data
func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) (dto.Response, json.RawMessage) {
	t.Helper()
	var envelope struct {
		dto.Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope.Response, envelope.Data
}

// MockEarningsReader implements EarningsReader for testing
type MockEarningsReader struct {
	mock.Mock
}

func (m *MockEarningsReader) Summary(ctx context.Context, role access.ResolvedRole, creatorID string, days int) ([]report.PlatformSummary, error) {
	args := m.Called(ctx, role, creatorID, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.PlatformSummary), args.Error(1)
}

func (m *MockEarningsReader) History(ctx context.Context, role access.ResolvedRole, creatorID string, platform earnings.Platform, days int) ([]report.HistoryPoint, error) {
	args := m.Called(ctx, role, creatorID, platform, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.HistoryPoint), args.Error(1)
}

func (m *MockEarningsReader) Sales(ctx context.Context, role access.ResolvedRole, filter report.SalesFilter) (report.SalesPage, error) {
	args := m.Called(ctx, role, filter)
	return args.Get(0).(report.SalesPage), args.Error(1)
}

func (m *MockEarningsReader) Export(ctx context.Context, role access.ResolvedRole, filter report.SalesFilter, w io.Writer) error {
	args := m.Called(ctx, role, filter, w)
	if s, ok := args.Get(0).(string); ok {
		_, _ = io.WriteString(w, s)
	}
	return args.Error(1)
}

func (m *MockEarningsReader) TopProducts(ctx context.Context, role access.ResolvedRole, creatorID string, limit int) ([]report.ProductRow, error) {
	args := m.Called(ctx, role, creatorID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.ProductRow), args.Error(1)
}

func (m *MockEarningsReader) Aggregate(ctx context.Context, role access.ResolvedRole, days int) (report.AggregateEarnings, error) {
	args := m.Called(ctx, role, days)
	return args.Get(0).(report.AggregateEarnings), args.Error(1)
}

func (m *MockEarningsReader) Breakdown(ctx context.Context, role access.ResolvedRole, creatorID string, days int) ([]report.PlatformShare, error) {
	args := m.Called(ctx, role, creatorID, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.PlatformShare), args.Error(1)
}

// MockSocialReader implements SocialReader for testing
type MockSocialReader struct {
	mock.Mock
}

func (m *MockSocialReader) Creators(ctx context.Context, role access.ResolvedRole) ([]report.CreatorSummary, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.CreatorSummary), args.Error(1)
}

func (m *MockSocialReader) Stats(ctx context.Context, role access.ResolvedRole) (report.AggregateStats, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(report.AggregateStats), args.Error(1)
}

func (m *MockSocialReader) Compare(ctx context.Context, role access.ResolvedRole, ids []string) ([]report.ComparisonRow, error) {
	args := m.Called(ctx, role, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.ComparisonRow), args.Error(1)
}

func (m *MockSocialReader) Overview(ctx context.Context, role access.ResolvedRole, creatorID string) (*report.CreatorOverview, error) {
	args := m.Called(ctx, role, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.CreatorOverview), args.Error(1)
}

func (m *MockSocialReader) History(ctx context.Context, role access.ResolvedRole, creatorID string, days int) ([]report.HistoryRow, error) {
	args := m.Called(ctx, role, creatorID, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.HistoryRow), args.Error(1)
}

func (m *MockSocialReader) posts(args mock.Arguments) ([]report.AttributedPost, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.AttributedPost), args.Error(1)
}

func (m *MockSocialReader) TopPosts(ctx context.Context, role access.ResolvedRole, creatorID string, limit int) ([]report.AttributedPost, error) {
	return m.posts(m.Called(ctx, role, creatorID, limit))
}

func (m *MockSocialReader) RecentPosts(ctx context.Context, role access.ResolvedRole, creatorID string, limit int) ([]report.AttributedPost, error) {
	return m.posts(m.Called(ctx, role, creatorID, limit))
}

func (m *MockSocialReader) PostsByViews(ctx context.Context, role access.ResolvedRole, creatorID string, days int) ([]report.AttributedPost, error) {
	return m.posts(m.Called(ctx, role, creatorID, days))
}

func (m *MockSocialReader) AttributedPosts(ctx context.Context, role access.ResolvedRole, creatorID string) ([]report.AttributedPost, error) {
	return m.posts(m.Called(ctx, role, creatorID))
}

// MockShopMyReader implements ShopMyReader for testing
type MockShopMyReader struct {
	mock.Mock
}

func (m *MockShopMyReader) Summary(ctx context.Context, role access.ResolvedRole, creatorID string) ([]report.HistoryPoint, error) {
	args := m.Called(ctx, role, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.HistoryPoint), args.Error(1)
}

func (m *MockShopMyReader) Commissions(ctx context.Context, role access.ResolvedRole, creatorID string) (report.ShopMyCommissions, error) {
	args := m.Called(ctx, role, creatorID)
	return args.Get(0).(report.ShopMyCommissions), args.Error(1)
}

func (m *MockShopMyReader) Payments(ctx context.Context, role access.ResolvedRole, creatorID string) ([]report.PaymentRow, error) {
	args := m.Called(ctx, role, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.PaymentRow), args.Error(1)
}

func (m *MockShopMyReader) BrandRates(ctx context.Context, role access.ResolvedRole, creatorID string) ([]report.BrandRateRow, error) {
	args := m.Called(ctx, role, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.BrandRateRow), args.Error(1)
}

// MockAdminOperations implements AdminOperations for testing
type MockAdminOperations struct {
	mock.Mock
}

func (m *MockAdminOperations) OwnedPlatformIDs(ctx context.Context) ([]creator.Creator, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]creator.Creator), args.Error(1)
}

func (m *MockAdminOperations) SetPlatformIDs(ctx context.Context, creatorID string, ids creator.PlatformIDs) (*creator.Creator, error) {
	args := m.Called(ctx, creatorID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*creator.Creator), args.Error(1)
}

func (m *MockAdminOperations) VerifyShopMy(ctx context.Context, creatorID string) (report.ShopMyVerify, error) {
	args := m.Called(ctx, creatorID)
	return args.Get(0).(report.ShopMyVerify), args.Error(1)
}

func (m *MockAdminOperations) ResetShopMy(ctx context.Context, creatorID string) (report.ShopMyReset, error) {
	args := m.Called(ctx, creatorID)
	return args.Get(0).(report.ShopMyReset), args.Error(1)
}

// MockJobRunner implements JobRunner for testing. RunFunc invokes fn so the
// wrapped service call is exercised.
type MockJobRunner struct {
	mock.Mock
}

func (m *MockJobRunner) Run(ctx context.Context, job string) (*ingest.RunReport, error) {
	args := m.Called(ctx, job)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ingest.RunReport), args.Error(1)
}

func (m *MockJobRunner) RunFunc(ctx context.Context, job string, fn ingest.JobFunc) (*ingest.RunReport, error) {
	args := m.Called(ctx, job)
	if err := args.Error(0); err != nil {
		return nil, err
	}
	return fn(ctx)
}

// MockMediaBackfiller implements MediaBackfiller for testing
type MockMediaBackfiller struct {
	mock.Mock
}

func (m *MockMediaBackfiller) Backfill(ctx context.Context, creatorID string, limit int) (*ingest.RunReport, error) {
	args := m.Called(ctx, creatorID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ingest.RunReport), args.Error(1)
}

// MockPinger implements Pinger for testing
type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockLTKTokenSource implements integration.LTKTokenSource for testing
type MockLTKTokenSource struct {
	mock.Mock
}

func (m *MockLTKTokenSource) LTKTokens(ctx context.Context) (integration.LTKTokens, error) {
	args := m.Called(ctx)
	return args.Get(0).(integration.LTKTokens), args.Error(1)
}

// MockLTKClient implements integration.LTKClient for testing. Only Proxy is expected.
type MockLTKClient struct {
	mock.Mock
}

func (m *MockLTKClient) EarningsSummary(ctx context.Context, tokens integration.LTKTokens, rangeLabel string) (earnings.Fields, error) {
	args := m.Called(ctx, tokens, rangeLabel)
	return nil, args.Error(1)
}

func (m *MockLTKClient) EngagementSummary(ctx context.Context, tokens integration.LTKTokens, rangeLabel string) (earnings.Fields, error) {
	args := m.Called(ctx, tokens, rangeLabel)
	return nil, args.Error(1)
}

func (m *MockLTKClient) PerformanceSummary(ctx context.Context, tokens integration.LTKTokens, publisherID string, p earnings.Period) (earnings.Fields, error) {
	args := m.Called(ctx, tokens, publisherID, p)
	return nil, args.Error(1)
}

func (m *MockLTKClient) ItemsSold(ctx context.Context, tokens integration.LTKTokens, p earnings.Period) ([]earnings.Fields, error) {
	args := m.Called(ctx, tokens, p)
	return nil, args.Error(1)
}

func (m *MockLTKClient) Proxy(ctx context.Context, tokens integration.LTKTokens, req integration.ProxyRequest) (*integration.ProxyResponse, error) {
	args := m.Called(ctx, tokens, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.ProxyResponse), args.Error(1)
}
