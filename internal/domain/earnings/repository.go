package earnings

import "context"

// ConflictPolicy selects what a ledger upsert does when the composite key already exists
type ConflictPolicy int

const (
	// ConflictUpdate overwrites the measures of the existing row
	ConflictUpdate ConflictPolicy = iota
	// ConflictIgnore keeps the existing row untouched
	ConflictIgnore
)

// String returns the string representation of ConflictPolicy
func (p ConflictPolicy) String() string {
	if p == ConflictIgnore {
		return "ignore"
	}
	return "update"
}

// LedgerRepository writes canonical records keyed by (creator_id, platform, period_start, period_end)
type LedgerRepository interface {
	// Upsert writes records and returns the number of rows inserted or changed
	Upsert(ctx context.Context, records []Record, policy ConflictPolicy) (int64, error)
}

// SalesRepository writes individual orders keyed by (platform, external_order_id)
type SalesRepository interface {
	// InsertIgnore inserts sales, skipping those already present, and returns the number inserted
	InsertIgnore(ctx context.Context, sales []Sale) (int64, error)
}

// ProductRepository writes product rollups keyed by (creator_id, platform, product_name)
type ProductRepository interface {
	Upsert(ctx context.Context, products []Product) error
}

// ConnectionRepository tracks platform connections keyed by (creator_id, platform)
type ConnectionRepository interface {
	// Touch marks the creator connected and stamps last_synced_at
	Touch(ctx context.Context, conn Connection) error
}

// ShopMyRepository stores ShopMy-specific detail
type ShopMyRepository interface {
	UpsertOpportunityCommissions(ctx context.Context, rows []ShopMyOpportunityCommission) error
	UpsertPayments(ctx context.Context, rows []ShopMyPayment) error
	UpsertBrandRates(ctx context.Context, rows []ShopMyBrandRate) error
	// ResetCreator removes all ShopMy detail and sales for a creator
	ResetCreator(ctx context.Context, creatorID string) (ShopMyResetCounts, error)
}

// MavelyRepository stores Mavely link metrics and transactions
type MavelyRepository interface {
	UpsertLinks(ctx context.Context, links []MavelyLink) error
	// InsertTransactions returns the number inserted and the number already present
	InsertTransactions(ctx context.Context, txs []MavelyTransaction) (inserted, skipped int64, err error)
}
