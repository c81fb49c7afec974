package earnings

import (
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Record is the canonical earnings tuple
// ---------------------------------------------------------------------------

// Record is one row of the canonical ledger, unique per creator/platform/period
type Record struct {
	CreatorID  string          `json:"creator_id"`
	Platform   Platform        `json:"platform"`
	Period     Period          `json:"-"`
	Revenue    decimal.Decimal `json:"revenue"`
	Commission decimal.Decimal `json:"commission"`
	Clicks     int             `json:"clicks"`
	Orders     int             `json:"orders"`
	Status     Status          `json:"status"`
	RawPayload string          `json:"raw_payload,omitempty"`
	SyncedAt   time.Time       `json:"synced_at"`
}

// Validate checks the record before it is written to the ledger
func (r Record) Validate() error {
	if r.CreatorID == "" {
		return ErrMissingCreator
	}
	if !r.Platform.IsValid() {
		return ErrInvalidPlatform
	}
	if err := r.Period.Validate(); err != nil {
		return err
	}
	if r.Clicks < 0 || r.Orders < 0 {
		return ErrNegativeCount
	}
	return nil
}

// Key returns the composite uniqueness key of the record
func (r Record) Key() string {
	return r.CreatorID + "|" + r.Platform.String() + "|" + r.Period.StartString() + "|" + r.Period.EndString()
}

// ---------------------------------------------------------------------------
// Sale is an individual attributed order
// ---------------------------------------------------------------------------

// Sale is an individual order reported by an affiliate network.
// It is unique per (platform, external order id).
type Sale struct {
	CreatorID        string          `json:"creator_id"`
	Platform         Platform        `json:"platform"`
	SaleDate         time.Time       `json:"sale_date"`
	ProductName      string          `json:"product_name,omitempty"`
	ProductSKU       string          `json:"product_sku,omitempty"`
	Brand            string          `json:"brand,omitempty"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
	OrderValue       decimal.Decimal `json:"order_value"`
	Status           Status          `json:"status"`
	ExternalOrderID  string          `json:"external_order_id"`
}

// Validate checks the sale before insertion
func (s Sale) Validate() error {
	if s.CreatorID == "" {
		return ErrMissingCreator
	}
	if !s.Platform.IsValid() {
		return ErrInvalidPlatform
	}
	if s.ExternalOrderID == "" {
		return ErrMissingExternalID
	}
	return nil
}

// ---------------------------------------------------------------------------
// Product and Connection
// ---------------------------------------------------------------------------

// Product is a per-creator product performance rollup
type Product struct {
	CreatorID      string          `json:"creator_id"`
	Platform       Platform        `json:"platform"`
	ProductName    string          `json:"product_name"`
	Brand          string          `json:"brand,omitempty"`
	ImageURL       string          `json:"image_url,omitempty"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	TotalClicks    int             `json:"total_clicks"`
	TotalSales     int             `json:"total_sales"`
	ConversionRate decimal.Decimal `json:"conversion_rate"`
}

// Connection records that a creator is connected to a platform
type Connection struct {
	CreatorID    string    `json:"creator_id"`
	Platform     Platform  `json:"platform"`
	IsConnected  bool      `json:"is_connected"`
	ExternalID   string    `json:"external_id,omitempty"`
	LastSyncedAt time.Time `json:"last_synced_at"`
}

// ---------------------------------------------------------------------------
// ShopMy detail records
// ---------------------------------------------------------------------------

// ShopMyOpportunityCommission is a flat commission from a ShopMy brand opportunity
type ShopMyOpportunityCommission struct {
	CreatorID        string          `json:"creator_id"`
	ExternalID       string          `json:"external_id"`
	Title            string          `json:"title,omitempty"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
	// Status is ShopMy's display text, kept verbatim
	Status string `json:"status,omitempty"`
}

// ShopMyPayment is a payout sent to the creator
type ShopMyPayment struct {
	CreatorID  string          `json:"creator_id"`
	ExternalID string          `json:"external_id"`
	Amount     decimal.Decimal `json:"amount"`
	Source     string          `json:"source"`
	SentAt     *time.Time      `json:"sent_at,omitempty"`
}

// ShopMyBrandRate is the commission rate a brand pays the creator
type ShopMyBrandRate struct {
	CreatorID     string              `json:"creator_id"`
	Brand         string              `json:"brand"`
	Rate          decimal.NullDecimal `json:"rate"`
	RateReturning decimal.NullDecimal `json:"rate_returning"`
}

// ShopMyResetCounts reports rows removed by a ShopMy reset
type ShopMyResetCounts struct {
	Sales       int64 `json:"sales"`
	Commissions int64 `json:"commissions"`
	Payments    int64 `json:"payments"`
	BrandRates  int64 `json:"brandRates"`
}

// ---------------------------------------------------------------------------
// Mavely detail records
// ---------------------------------------------------------------------------

// MavelyLink is per-link performance over a sync window
type MavelyLink struct {
	CreatorID  string          `json:"creator_id"`
	LinkID     string          `json:"mavely_link_id"`
	LinkURL    string          `json:"link_url,omitempty"`
	Title      string          `json:"title,omitempty"`
	ImageURL   string          `json:"image_url,omitempty"`
	Brand      string          `json:"brand,omitempty"`
	Period     Period          `json:"-"`
	Clicks     int             `json:"clicks"`
	Orders     int             `json:"orders"`
	Commission decimal.Decimal `json:"commission"`
	Revenue    decimal.Decimal `json:"revenue"`
}

// MavelyTransaction is an individual Mavely order
type MavelyTransaction struct {
	CreatorID        string          `json:"creator_id"`
	TransactionID    string          `json:"mavely_transaction_id"`
	LinkID           string          `json:"mavely_link_id,omitempty"`
	LinkURL          string          `json:"link_url,omitempty"`
	Referrer         string          `json:"referrer,omitempty"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
	OrderValue       decimal.Decimal `json:"order_value"`
	SaleDate         *time.Time      `json:"sale_date,omitempty"`
	Status           string          `json:"status,omitempty"`
}
