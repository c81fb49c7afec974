// Package report holds the read models served by the dashboard queries.
// These are CQRS read models optimized for querying; they are never written back.
package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/creatorhub/backend/internal/domain/earnings"
)

// DefaultDays is the reporting window when none is given
const DefaultDays = 30

// ---------------------------------------------------------------------------
// Ledger aggregates
// ---------------------------------------------------------------------------

// PlatformSummary totals the ledger for one platform
type PlatformSummary struct {
	Platform        earnings.Platform `json:"platform"`
	TotalRevenue    decimal.Decimal   `json:"totalRevenue"`
	TotalCommission decimal.Decimal   `json:"totalCommission"`
	TotalClicks     int64             `json:"totalClicks"`
	TotalOrders     int64             `json:"totalOrders"`
}

// HistoryPoint is one ledger row in a time series
type HistoryPoint struct {
	Platform    earnings.Platform `json:"platform"`
	PeriodStart time.Time         `json:"periodStart"`
	PeriodEnd   time.Time         `json:"periodEnd"`
	Revenue     decimal.Decimal   `json:"revenue"`
	Commission  decimal.Decimal   `json:"commission"`
	Clicks      int               `json:"clicks"`
	Orders      int               `json:"orders"`
	Status      earnings.Status   `json:"status"`
	SyncedAt    time.Time         `json:"syncedAt"`
}

// AggregateEarnings totals the ledger across creators
type AggregateEarnings struct {
	TotalRevenue    decimal.Decimal   `json:"totalRevenue"`
	TotalCommission decimal.Decimal   `json:"totalCommission"`
	TotalClicks     int64             `json:"totalClicks"`
	TotalOrders     int64             `json:"totalOrders"`
	ByPlatform      []PlatformSummary `json:"byPlatform"`
}

// PlatformShare is a platform's share of total revenue
type PlatformShare struct {
	Platform   earnings.Platform `json:"platform"`
	Revenue    decimal.Decimal   `json:"revenue"`
	Percentage decimal.Decimal   `json:"percentage"` // 0-100, 2dp
}

// Shares computes each platform's percentage of total revenue.
// Percentages are round(rev/total*10000)/100; all zero when the total is zero.
func Shares(rows []PlatformSummary) []PlatformShare {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.TotalRevenue)
	}
	out := make([]PlatformShare, 0, len(rows))
	for _, r := range rows {
		pct := decimal.Zero
		if total.IsPositive() {
			pct = r.TotalRevenue.Div(total).Mul(decimal.NewFromInt(10000)).Round(0).Div(decimal.NewFromInt(100))
		}
		out = append(out, PlatformShare{Platform: r.Platform, Revenue: r.TotalRevenue, Percentage: pct})
	}
	return out
}

// ---------------------------------------------------------------------------
// Sales
// ---------------------------------------------------------------------------

// DefaultSalesLimit is the page size when none is given
const DefaultSalesLimit = 25

// MaxExportRows caps a CSV export
const MaxExportRows = 10000

// SaleRow is a stored sale
type SaleRow struct {
	ID               int64             `json:"id"`
	CreatorID        string            `json:"creatorId"`
	Platform         earnings.Platform `json:"platform"`
	SaleDate         time.Time         `json:"saleDate"`
	ProductName      string            `json:"productName"`
	ProductSKU       string            `json:"productSku"`
	Brand            string            `json:"brand"`
	CommissionAmount decimal.Decimal   `json:"commissionAmount"`
	OrderValue       decimal.Decimal   `json:"orderValue"`
	Status           earnings.Status   `json:"status"`
	ExternalOrderID  string            `json:"externalOrderId"`
	CreatedAt        time.Time         `json:"createdAt"`
}

// SalesFilter selects sales. CreatorIDs nil means unrestricted; empty means none.
type SalesFilter struct {
	CreatorID  string
	CreatorIDs []string
	Platform   string
	Status     string
	Search     string
	Page       int
	Limit      int
}

// Normalize applies paging defaults
func (f *SalesFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultSalesLimit
	}
}

// Offset returns the row offset of the requested page
func (f SalesFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// SalesPage is a page of sales
type SalesPage struct {
	Data       []SaleRow `json:"data"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	TotalPages int       `json:"totalPages"`
}

// EmptySalesPage is returned when the caller may not see the requested creator
func EmptySalesPage() SalesPage {
	return SalesPage{Data: []SaleRow{}, Total: 0, Page: 1, TotalPages: 0}
}

// TotalPages returns ceil(total/limit)
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// ProductRow is a stored product rollup
type ProductRow struct {
	ID             int64             `json:"id"`
	CreatorID      string            `json:"creatorId"`
	Platform       earnings.Platform `json:"platform"`
	ProductName    string            `json:"productName"`
	Brand          string            `json:"brand"`
	ImageURL       string            `json:"imageUrl"`
	TotalRevenue   decimal.Decimal   `json:"totalRevenue"`
	TotalClicks    int               `json:"totalClicks"`
	TotalSales     int               `json:"totalSales"`
	ConversionRate decimal.Decimal   `json:"conversionRate"`
	LastUpdated    time.Time         `json:"lastUpdated"`
}
