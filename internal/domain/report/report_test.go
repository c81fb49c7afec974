package report

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creatorhub/backend/internal/domain/earnings"
)

func TestShares(t *testing.T) {
	t.Run("percentages to 2dp", func(t *testing.T) {
		rows := []PlatformSummary{
			{Platform: earnings.PlatformMavely, TotalRevenue: decimal.NewFromInt(2)},
			{Platform: earnings.PlatformLTK, TotalRevenue: decimal.NewFromInt(1)},
		}
		got := Shares(rows)
		require.Len(t, got, 2)
		assert.Equal(t, "66.67", got[0].Percentage.StringFixed(2))
		assert.Equal(t, "33.33", got[1].Percentage.StringFixed(2))
	})

	t.Run("zero total", func(t *testing.T) {
		got := Shares([]PlatformSummary{{Platform: earnings.PlatformShopMy, TotalRevenue: decimal.Zero}})
		require.Len(t, got, 1)
		assert.True(t, got[0].Percentage.IsZero())
	})
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 20))
	assert.Equal(t, 1, TotalPages(20, 20))
	assert.Equal(t, 2, TotalPages(21, 20))
	assert.Equal(t, 0, TotalPages(5, 0))
}

func TestSalesFilter_Normalize(t *testing.T) {
	f := SalesFilter{}
	f.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, DefaultSalesLimit, f.Limit)
	assert.Equal(t, 0, f.Offset())

	f = SalesFilter{Page: 3, Limit: 20}
	f.Normalize()
	assert.Equal(t, 40, f.Offset())
}

func TestEmptySalesPage(t *testing.T) {
	p := EmptySalesPage()
	assert.NotNil(t, p.Data)
	assert.Equal(t, 1, p.Page)
	assert.Zero(t, p.TotalPages)
}
