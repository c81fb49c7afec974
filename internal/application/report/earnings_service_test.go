package report

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/creatorhub/backend/internal/domain/access"
	"github.com/creatorhub/backend/internal/domain/earnings"
	"github.com/creatorhub/backend/internal/domain/report"
)

func newEarningsService(repo *MockEarningsReportRepository) *EarningsService {
	return NewEarningsService(repo, WithClock(fixedClock))
}

func TestEarningsService_Summary(t *testing.T) {
	ctx := context.Background()

	t.Run("default window", func(t *testing.T) {
		repo := new(MockEarningsReportRepository)
		rows := []report.PlatformSummary{{Platform: earnings.PlatformMavely, TotalRevenue: decimal.NewFromInt(10)}}
		repo.On("Summary", ctx, "alice", testNow.AddDate(0, 0, -30)).Return(rows, nil)

		got, err := newEarningsService(repo).Summary(ctx, creatorRole, "alice", 0)
		require.NoError(t, err)
		assert.Equal(t, rows, got)
		repo.AssertExpectations(t)
	})

	t.Run("explicit window", func(t *testing.T) {
		repo := new(MockEarningsReportRepository)
		repo.On("Summary", ctx, "bob", testNow.AddDate(0, 0, -7)).Return([]report.PlatformSummary{}, nil)

		_, err := newEarningsService(repo).Summary(ctx, internalRole, "bob", 7)
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("denied creator is empty", func(t *testing.T) {
		repo := new(MockEarningsReportRepository)

		got, err := newEarningsService(repo).Summary(ctx, creatorRole, "bob", 30)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
		repo.AssertNotCalled(t, "Summary", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestEarningsService_History(t *testing.T) {
	ctx := context.Background()
	repo := new(MockEarningsReportRepository)
	points := []report.HistoryPoint{{Platform: earnings.PlatformLTK}}
	repo.On("History", ctx, "alice", earnings.PlatformLTK, testNow.AddDate(0, 0, -90)).Return(points, nil)

	svc := newEarningsService(repo)
	got, err := svc.History(ctx, clientRole, "alice", earnings.PlatformLTK, 90)
	require.NoError(t, err)
	assert.Equal(t, points, got)

	got, err = svc.History(ctx, clientRole, "carol", "", 90)
	require.NoError(t, err)
	assert.Empty(t, got)
	repo.AssertExpectations(t)
}

func TestEarningsService_Sales(t *testing.T) {
	ctx := context.Background()

	t.Run("creator filter", func(t *testing.T) {
		repo := new(MockEarningsReportRepository)
		want := report.SalesFilter{CreatorID: "alice", Page: 1, Limit: report.DefaultSalesLimit}
		page := report.SalesPage{Data: []report.SaleRow{{ID: 1}}, Total: 1, Page: 1, TotalPages: 1}
		repo.On("Sales", ctx, want).Return(page, nil)

		got, err := newEarningsService(repo).Sales(ctx, creatorRole, report.SalesFilter{CreatorID: "alice"})
		require.NoError(t, err)
		assert.Equal(t, page, got)
		repo.AssertExpectations(t)
	})

	t.Run("no creator scopes to accessible ids", func(t *testing.T) {
		repo := new(MockEarningsReportRepository)
		want := report.SalesFilter{CreatorIDs: []string{"alice", "bob"}, Platform: "shopmy", Page: 2, Limit: 20}
		repo.On("Sales", ctx, want).Return(report.EmptySalesPage(), nil)

		_, err := newEarningsService(repo).Sales(ctx, clientRole, report.SalesFilter{Platform: "shopmy", Page: 2, Limit: 20})
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("internal is unrestricted", func(t *testing.T) {
		repo := new(MockEarningsReportRepository)
		want := report.SalesFilter{Page: 1, Limit: report.DefaultSalesLimit}
		repo.On("Sales", ctx, want).Return(report.EmptySalesPage(), nil)

		_, err := newEarningsService(repo).Sales(ctx, internalRole, report.SalesFilter{})
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("denied returns empty page", func(t *testing.T) {
		for name, tc := range map[string]struct {
			role   access.ResolvedRole
			filter report.SalesFilter
		}{
			"other creator":      {role: creatorRole, filter: report.SalesFilter{CreatorID: "bob"}},
			"creator without id": {role: noneRole, filter: report.SalesFilter{}},
		} {
			t.Run(name, func(t *testing.T) {
				repo := new(MockEarningsReportRepository)
				got, err := newEarningsService(repo).Sales(ctx, tc.role, tc.filter)
				require.NoError(t, err)
				assert.Equal(t, report.EmptySalesPage(), got)
				repo.AssertNotCalled(t, "Sales", mock.Anything, mock.Anything)
			})
		}
	})
}

func TestEarningsService_Export(t *testing.T) {
	ctx := context.Background()

	t.Run("writes csv", func(t *testing.T) {
		repo := new(MockEarningsReportRepository)
		rows := []report.SaleRow{{
			Platform:         earnings.PlatformShopMy,
			SaleDate:         time.Date(2025, 2, 1, 23, 0, 0, 0, time.UTC),
			ProductName:      `Linen "Wide" Pant`,
			Brand:            "Aritzia, Inc",
			Status:           earnings.StatusPending,
			CommissionAmount: decimal.RequireFromString("4.5"),
			OrderValue:       decimal.RequireFromString("90"),
		}}
		repo.On("ExportSales", ctx, report.SalesFilter{CreatorID: "alice"}).Return(rows, nil)

		var buf bytes.Buffer
		require.NoError(t, newEarningsService(repo).Export(ctx, internalRole, report.SalesFilter{CreatorID: "alice"}, &buf))
		assert.Equal(t,
			"Date,Platform,Product,Brand,Status,Commission,Order Value\n"+
				`2025-02-01,shopmy,"Linen ""Wide"" Pant","Aritzia, Inc",pending,4.50,90.00`,
			buf.String())
	})

	t.Run("denied writes header only", func(t *testing.T) {
		repo := new(MockEarningsReportRepository)
		var buf bytes.Buffer
		require.NoError(t, newEarningsService(repo).Export(ctx, creatorRole, report.SalesFilter{CreatorID: "bob"}, &buf))
		assert.Equal(t, "Date,Platform,Product,Brand,Status,Commission,Order Value", buf.String())
		repo.AssertNotCalled(t, "ExportSales", mock.Anything, mock.Anything)
	})

	t.Run("repository error", func(t *testing.T) {
		repo := new(MockEarningsReportRepository)
		repo.On("ExportSales", ctx, mock.Anything).Return(nil, errors.New("db down"))
		var buf bytes.Buffer
		err := newEarningsService(repo).Export(ctx, internalRole, report.SalesFilter{}, &buf)
		assert.EqualError(t, err, "db down")
		assert.Empty(t, buf.String())
	})
}

func TestEarningsService_TopProducts(t *testing.T) {
	ctx := context.Background()
	repo := new(MockEarningsReportRepository)
	repo.On("TopProducts", ctx, "alice", report.DefaultTopProducts).Return([]report.ProductRow{{ID: 3}}, nil)

	svc := newEarningsService(repo)
	got, err := svc.TopProducts(ctx, creatorRole, "alice", 0)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = svc.TopProducts(ctx, creatorRole, "bob", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
	repo.AssertExpectations(t)
}

func TestEarningsService_Aggregate(t *testing.T) {
	ctx := context.Background()
	since := testNow.AddDate(0, 0, -30)

	repo := new(MockEarningsReportRepository)
	repo.On("Aggregate", ctx, since, []string(nil)).Return(report.AggregateEarnings{TotalOrders: 7}, nil).Once()
	repo.On("Aggregate", ctx, since, []string{"alice", "bob"}).Return(report.AggregateEarnings{TotalOrders: 2}, nil).Once()

	svc := newEarningsService(repo)
	all, err := svc.Aggregate(ctx, internalRole, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 7, all.TotalOrders)

	scoped, err := svc.Aggregate(ctx, clientRole, 30)
	require.NoError(t, err)
	assert.EqualValues(t, 2, scoped.TotalOrders)
	repo.AssertExpectations(t)
}

func TestEarningsService_Breakdown(t *testing.T) {
	ctx := context.Background()
	since := testNow.AddDate(0, 0, -30)
	rows := []report.PlatformSummary{
		{Platform: earnings.PlatformLTK, TotalRevenue: decimal.NewFromInt(3)},
		{Platform: earnings.PlatformMavely, TotalRevenue: decimal.NewFromInt(1)},
	}

	t.Run("single creator", func(t *testing.T) {
		repo := new(MockEarningsReportRepository)
		repo.On("ByPlatform", ctx, []string{"alice"}, since).Return(rows, nil)

		got, err := newEarningsService(repo).Breakdown(ctx, internalRole, "alice", 0)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "75.00", got[0].Percentage.StringFixed(2))
		assert.Equal(t, "25.00", got[1].Percentage.StringFixed(2))
	})

	t.Run("accessible set", func(t *testing.T) {
		repo := new(MockEarningsReportRepository)
		repo.On("ByPlatform", ctx, []string{"alice"}, since).Return(rows, nil)

		_, err := newEarningsService(repo).Breakdown(ctx, creatorRole, "", 30)
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("denied creator", func(t *testing.T) {
		repo := new(MockEarningsReportRepository)
		got, err := newEarningsService(repo).Breakdown(ctx, creatorRole, "bob", 30)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
