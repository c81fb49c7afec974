package persistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/creatorhub/backend/internal/domain/earnings"
	"github.com/creatorhub/backend/internal/infrastructure/persistence/models"
)

const upsertBatchSize = 100

// columns builds a conflict target
func columns(names ...string) []clause.Column {
	cols := make([]clause.Column, len(names))
	for i, n := range names {
		cols[i] = clause.Column{Name: n}
	}
	return cols
}

// ---------------------------------------------------------------------------
// Ledger
// ---------------------------------------------------------------------------

// ledgerUpdateColumns are overwritten when a ledger key already exists
var ledgerUpdateColumns = []string{"revenue", "commission", "clicks", "orders", "raw_payload", "synced_at"}

// GormLedgerRepository implements earnings.LedgerRepository
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// Upsert writes records keyed by (creator_id, platform, period_start, period_end).
// Duplicate keys within one call collapse to the last record.
func (r *GormLedgerRepository) Upsert(ctx context.Context, records []earnings.Record, policy earnings.ConflictPolicy) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	index := make(map[string]int, len(records))
	rows := make([]*models.PlatformEarningModel, 0, len(records))
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			return 0, fmt.Errorf("ledger record %s: %w", rec.Key(), err)
		}
		m := models.PlatformEarningModelFromDomain(rec)
		if i, dup := index[rec.Key()]; dup {
			rows[i] = m
			continue
		}
		index[rec.Key()] = len(rows)
		rows = append(rows, m)
	}

	onConflict := clause.OnConflict{
		Columns: columns("creator_id", "platform", "period_start", "period_end"),
	}
	if policy == earnings.ConflictIgnore {
		onConflict.DoNothing = true
	} else {
		onConflict.DoUpdates = clause.AssignmentColumns(ledgerUpdateColumns)
	}

	result := r.db.WithContext(ctx).Clauses(onConflict).CreateInBatches(rows, upsertBatchSize)
	if result.Error != nil {
		return 0, fmt.Errorf("upsert platform_earnings (%s): %w", policy, result.Error)
	}
	return result.RowsAffected, nil
}

// ---------------------------------------------------------------------------
// Sales
// ---------------------------------------------------------------------------

// GormSalesRepository implements earnings.SalesRepository
type GormSalesRepository struct {
	db *gorm.DB
}

// NewGormSalesRepository creates a new GormSalesRepository
func NewGormSalesRepository(db *gorm.DB) *GormSalesRepository {
	return &GormSalesRepository{db: db}
}

// InsertIgnore inserts sales keyed by (platform, external_order_id), skipping existing ones
func (r *GormSalesRepository) InsertIgnore(ctx context.Context, sales []earnings.Sale) (int64, error) {
	if len(sales) == 0 {
		return 0, nil
	}
	seen := make(map[string]struct{}, len(sales))
	rows := make([]*models.SaleModel, 0, len(sales))
	for _, s := range sales {
		if err := s.Validate(); err != nil {
			return 0, fmt.Errorf("sale %s: %w", s.ExternalOrderID, err)
		}
		key := s.Platform.String() + "|" + s.ExternalOrderID
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		rows = append(rows, models.SaleModelFromDomain(s))
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   columns("platform", "external_order_id"),
			DoNothing: true,
		}).
		CreateInBatches(rows, upsertBatchSize)
	if result.Error != nil {
		return 0, fmt.Errorf("insert sales: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// ---------------------------------------------------------------------------
// Products
// ---------------------------------------------------------------------------

// GormProductRepository implements earnings.ProductRepository
type GormProductRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db, now: time.Now}
}

// Upsert writes rollups keyed by (creator_id, platform, product_name)
func (r *GormProductRepository) Upsert(ctx context.Context, products []earnings.Product) error {
	if len(products) == 0 {
		return nil
	}
	now := r.now()
	index := make(map[string]int, len(products))
	rows := make([]*models.ProductModel, 0, len(products))
	for _, p := range products {
		key := p.CreatorID + "|" + p.Platform.String() + "|" + p.ProductName
		m := models.ProductModelFromDomain(p, now)
		if i, dup := index[key]; dup {
			rows[i] = m
			continue
		}
		index[key] = len(rows)
		rows = append(rows, m)
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: columns("creator_id", "platform", "product_name"),
			DoUpdates: clause.AssignmentColumns([]string{
				"brand", "image_url", "total_revenue", "total_clicks",
				"total_sales", "conversion_rate", "last_updated",
			}),
		}).
		CreateInBatches(rows, upsertBatchSize).Error
	if err != nil {
		return fmt.Errorf("upsert products: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Connections
// ---------------------------------------------------------------------------

// GormConnectionRepository implements earnings.ConnectionRepository
type GormConnectionRepository struct {
	db *gorm.DB
}

// NewGormConnectionRepository creates a new GormConnectionRepository
func NewGormConnectionRepository(db *gorm.DB) *GormConnectionRepository {
	return &GormConnectionRepository{db: db}
}

// Touch marks the creator connected to the platform and stamps last_synced_at.
// An empty ExternalID keeps the stored one.
func (r *GormConnectionRepository) Touch(ctx context.Context, conn earnings.Connection) error {
	update := []string{"is_connected", "last_synced_at"}
	if conn.ExternalID != "" {
		update = append(update, "external_id")
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   columns("creator_id", "platform"),
			DoUpdates: clause.AssignmentColumns(update),
		}).
		Create(models.PlatformConnectionModelFromDomain(conn)).Error
	if err != nil {
		return fmt.Errorf("touch platform_connections %s/%s: %w", conn.CreatorID, conn.Platform, err)
	}
	return nil
}

var (
	_ earnings.LedgerRepository     = (*GormLedgerRepository)(nil)
	_ earnings.SalesRepository      = (*GormSalesRepository)(nil)
	_ earnings.ProductRepository    = (*GormProductRepository)(nil)
	_ earnings.ConnectionRepository = (*GormConnectionRepository)(nil)
)
