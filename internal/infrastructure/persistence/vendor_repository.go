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

// GormShopMyRepository implements earnings.ShopMyRepository
type GormShopMyRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormShopMyRepository creates a new GormShopMyRepository
func NewGormShopMyRepository(db *gorm.DB) *GormShopMyRepository {
	return &GormShopMyRepository{db: db, now: time.Now}
}

// UpsertOpportunityCommissions writes commissions keyed by external_id
func (r *GormShopMyRepository) UpsertOpportunityCommissions(ctx context.Context, rows []earnings.ShopMyOpportunityCommission) error {
	if len(rows) == 0 {
		return nil
	}
	now := r.now()
	byID := make(map[string]int, len(rows))
	out := make([]*models.ShopMyOpportunityCommissionModel, 0, len(rows))
	for _, c := range rows {
		m := models.ShopMyOpportunityCommissionModelFromDomain(c, now)
		if i, dup := byID[c.ExternalID]; dup {
			out[i] = m
			continue
		}
		byID[c.ExternalID] = len(out)
		out = append(out, m)
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   columns("external_id"),
			DoUpdates: clause.AssignmentColumns([]string{"title", "commission_amount", "status", "synced_at"}),
		}).
		CreateInBatches(out, upsertBatchSize).Error
	if err != nil {
		return fmt.Errorf("upsert shopmy_opportunity_commissions: %w", err)
	}
	return nil
}

// UpsertPayments writes payments keyed by external_id
func (r *GormShopMyRepository) UpsertPayments(ctx context.Context, rows []earnings.ShopMyPayment) error {
	if len(rows) == 0 {
		return nil
	}
	now := r.now()
	byID := make(map[string]int, len(rows))
	out := make([]*models.ShopMyPaymentModel, 0, len(rows))
	for _, p := range rows {
		m := models.ShopMyPaymentModelFromDomain(p, now)
		if i, dup := byID[p.ExternalID]; dup {
			out[i] = m
			continue
		}
		byID[p.ExternalID] = len(out)
		out = append(out, m)
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   columns("external_id"),
			DoUpdates: clause.AssignmentColumns([]string{"amount", "source", "sent_at", "synced_at"}),
		}).
		CreateInBatches(out, upsertBatchSize).Error
	if err != nil {
		return fmt.Errorf("upsert shopmy_payments: %w", err)
	}
	return nil
}

// UpsertBrandRates writes rates keyed by (creator_id, brand)
func (r *GormShopMyRepository) UpsertBrandRates(ctx context.Context, rows []earnings.ShopMyBrandRate) error {
	if len(rows) == 0 {
		return nil
	}
	now := r.now()
	byKey := make(map[string]int, len(rows))
	out := make([]*models.ShopMyBrandRateModel, 0, len(rows))
	for _, br := range rows {
		key := br.CreatorID + "|" + br.Brand
		m := models.ShopMyBrandRateModelFromDomain(br, now)
		if i, dup := byKey[key]; dup {
			out[i] = m
			continue
		}
		byKey[key] = len(out)
		out = append(out, m)
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   columns("creator_id", "brand"),
			DoUpdates: clause.AssignmentColumns([]string{"rate", "rate_returning", "synced_at"}),
		}).
		CreateInBatches(out, upsertBatchSize).Error
	if err != nil {
		return fmt.Errorf("upsert shopmy_brand_rates: %w", err)
	}
	return nil
}

// ResetCreator deletes the creator's ShopMy sales, commissions, payments and rates in one transaction
func (r *GormShopMyRepository) ResetCreator(ctx context.Context, creatorID string) (earnings.ShopMyResetCounts, error) {
	var counts earnings.ShopMyResetCounts
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("creator_id = ? AND platform = ?", creatorID, earnings.PlatformShopMy.String()).
			Delete(&models.SaleModel{})
		if res.Error != nil {
			return fmt.Errorf("delete sales: %w", res.Error)
		}
		counts.Sales = res.RowsAffected

		res = tx.Where("creator_id = ?", creatorID).Delete(&models.ShopMyOpportunityCommissionModel{})
		if res.Error != nil {
			return fmt.Errorf("delete opportunity commissions: %w", res.Error)
		}
		counts.Commissions = res.RowsAffected

		res = tx.Where("creator_id = ?", creatorID).Delete(&models.ShopMyPaymentModel{})
		if res.Error != nil {
			return fmt.Errorf("delete payments: %w", res.Error)
		}
		counts.Payments = res.RowsAffected

		res = tx.Where("creator_id = ?", creatorID).Delete(&models.ShopMyBrandRateModel{})
		if res.Error != nil {
			return fmt.Errorf("delete brand rates: %w", res.Error)
		}
		counts.BrandRates = res.RowsAffected
		return nil
	})
	if err != nil {
		return earnings.ShopMyResetCounts{}, fmt.Errorf("reset shopmy for %s: %w", creatorID, err)
	}
	return counts, nil
}

// GormMavelyRepository implements earnings.MavelyRepository
type GormMavelyRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormMavelyRepository creates a new GormMavelyRepository
func NewGormMavelyRepository(db *gorm.DB) *GormMavelyRepository {
	return &GormMavelyRepository{db: db, now: time.Now}
}

// UpsertLinks writes link metrics keyed by (creator_id, mavely_link_id, period_start, period_end)
func (r *GormMavelyRepository) UpsertLinks(ctx context.Context, links []earnings.MavelyLink) error {
	if len(links) == 0 {
		return nil
	}
	now := r.now()
	byKey := make(map[string]int, len(links))
	out := make([]*models.MavelyLinkModel, 0, len(links))
	for _, l := range links {
		key := l.CreatorID + "|" + l.LinkID + "|" + l.Period.String()
		m := models.MavelyLinkModelFromDomain(l, now)
		if i, dup := byKey[key]; dup {
			out[i] = m
			continue
		}
		byKey[key] = len(out)
		out = append(out, m)
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: columns("creator_id", "mavely_link_id", "period_start", "period_end"),
			DoUpdates: clause.AssignmentColumns([]string{
				"link_url", "title", "image_url", "brand", "clicks", "orders",
				"commission", "revenue", "synced_at",
			}),
		}).
		CreateInBatches(out, upsertBatchSize).Error
	if err != nil {
		return fmt.Errorf("upsert mavely_links: %w", err)
	}
	return nil
}

// InsertTransactions inserts transactions keyed by mavely_transaction_id, skipping existing ones
func (r *GormMavelyRepository) InsertTransactions(ctx context.Context, txs []earnings.MavelyTransaction) (inserted, skipped int64, err error) {
	if len(txs) == 0 {
		return 0, 0, nil
	}
	seen := make(map[string]struct{}, len(txs))
	out := make([]*models.MavelyTransactionModel, 0, len(txs))
	for _, t := range txs {
		if _, dup := seen[t.TransactionID]; dup || t.TransactionID == "" {
			continue
		}
		seen[t.TransactionID] = struct{}{}
		out = append(out, models.MavelyTransactionModelFromDomain(t))
	}
	if len(out) == 0 {
		return 0, int64(len(txs)), nil
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   columns("mavely_transaction_id"),
			DoNothing: true,
		}).
		CreateInBatches(out, upsertBatchSize)
	if result.Error != nil {
		return 0, 0, fmt.Errorf("insert mavely_transactions: %w", result.Error)
	}
	return result.RowsAffected, int64(len(txs)) - result.RowsAffected, nil
}

var (
	_ earnings.ShopMyRepository = (*GormShopMyRepository)(nil)
	_ earnings.MavelyRepository = (*GormMavelyRepository)(nil)
)
