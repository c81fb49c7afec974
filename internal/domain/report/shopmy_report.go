package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/creatorhub/backend/internal/domain/earnings"
)

// Row caps for the shopmy summary, commissions and verify views
const (
	ShopMySummaryLimit      = 90
	ShopMyCommissionsLimit  = 100
	ShopMyVerifySampleLimit = 5
)

// OpportunityRow is a stored opportunity commission
type OpportunityRow struct {
	ID               int64           `json:"id"`
	CreatorID        string          `json:"creatorId"`
	ExternalID       string          `json:"externalId"`
	Title            string          `json:"title"`
	CommissionAmount decimal.Decimal `json:"commissionAmount"`
	Status           string          `json:"status"`
	SyncedAt         time.Time       `json:"syncedAt"`
}

// PaymentRow is a stored payout
type PaymentRow struct {
	ID         int64           `json:"id"`
	CreatorID  string          `json:"creatorId"`
	ExternalID string          `json:"externalId"`
	Amount     decimal.Decimal `json:"amount"`
	Source     string          `json:"source"`
	SentAt     *time.Time      `json:"sentAt"`
	SyncedAt   time.Time       `json:"syncedAt"`
}

// BrandRateRow is a stored brand rate
type BrandRateRow struct {
	ID            int64               `json:"id"`
	CreatorID     string              `json:"creatorId"`
	Brand         string              `json:"brand"`
	Rate          decimal.NullDecimal `json:"rate"`
	RateReturning decimal.NullDecimal `json:"rateReturning"`
	SyncedAt      time.Time           `json:"syncedAt"`
}

// ShopMyCommissions are the recent sales and opportunity commissions
type ShopMyCommissions struct {
	Sales                  []SaleRow        `json:"sales"`
	OpportunityCommissions []OpportunityRow `json:"opportunityCommissions"`
}

// ShopMyVerifyCounts are row counts per ShopMy table
type ShopMyVerifyCounts struct {
	NormalSales            int64 `json:"normalSales"`
	OpportunityCommissions int64 `json:"opportunityCommissions"`
	Payments               int64 `json:"payments"`
	BrandRates             int64 `json:"brandRates"`
}

// ShopMyVerifyTotals sum the ShopMy sales
type ShopMyVerifyTotals struct {
	TotalCommission decimal.Decimal `json:"totalCommission"`
	TotalSales      int64           `json:"totalSales"`
}

// ShopMyVerifySamples are the first rows of each table
type ShopMyVerifySamples struct {
	Sales                  []SaleRow        `json:"sales"`
	OpportunityCommissions []OpportunityRow `json:"opportunityCommissions"`
	Payments               []PaymentRow     `json:"payments"`
	BrandRates             []BrandRateRow   `json:"brandRates"`
}

// ShopMyVerify is a diagnostic view of a creator's stored ShopMy data
type ShopMyVerify struct {
	CreatorID string              `json:"creatorId"`
	Counts    ShopMyVerifyCounts  `json:"counts"`
	Totals    ShopMyVerifyTotals  `json:"totals"`
	Samples   ShopMyVerifySamples `json:"samples"`
}

// ShopMyReset reports what a reset removed
type ShopMyReset struct {
	Cleared earnings.ShopMyResetCounts `json:"cleared"`
}
