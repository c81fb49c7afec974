package persistence

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/creatorhub/backend/internal/domain/earnings"
	"github.com/creatorhub/backend/internal/domain/report"
	"github.com/creatorhub/backend/internal/infrastructure/persistence/models"
)

// GormShopMyReportRepository implements report.ShopMyReportRepository
type GormShopMyReportRepository struct {
	db *gorm.DB
}

// NewGormShopMyReportRepository creates a new GormShopMyReportRepository
func NewGormShopMyReportRepository(db *gorm.DB) *GormShopMyReportRepository {
	return &GormShopMyReportRepository{db: db}
}

func (r *GormShopMyReportRepository) shopmySales(ctx context.Context, creatorID string) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("sales").
		Where("creator_id = ? AND platform = ?", creatorID, string(earnings.PlatformShopMy))
}

// Summary returns the newest ShopMy ledger rows
func (r *GormShopMyReportRepository) Summary(ctx context.Context, creatorID string, limit int) ([]report.HistoryPoint, error) {
	if limit <= 0 {
		limit = report.ShopMySummaryLimit
	}
	return scanHistory(r.db.WithContext(ctx).
		Where("creator_id = ? AND platform = ?", creatorID, string(earnings.PlatformShopMy)).
		Order("period_start DESC").
		Limit(limit))
}

// Commissions returns the newest ShopMy sales and opportunity commissions
func (r *GormShopMyReportRepository) Commissions(ctx context.Context, creatorID string, limit int) (report.ShopMyCommissions, error) {
	if limit <= 0 {
		limit = report.ShopMyCommissionsLimit
	}
	sales, err := scanSales(r.shopmySales(ctx, creatorID).Order("sale_date DESC").Limit(limit))
	if err != nil {
		return report.ShopMyCommissions{}, err
	}
	opps, err := r.opportunities(ctx, creatorID, limit)
	if err != nil {
		return report.ShopMyCommissions{}, err
	}
	return report.ShopMyCommissions{Sales: sales, OpportunityCommissions: opps}, nil
}

func (r *GormShopMyReportRepository) opportunities(ctx context.Context, creatorID string, limit int) ([]report.OpportunityRow, error) {
	var rows []models.ShopMyOpportunityCommissionModel
	err := r.db.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("synced_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]report.OpportunityRow, len(rows))
	for i, m := range rows {
		out[i] = report.OpportunityRow{
			ID:               m.ID,
			CreatorID:        m.CreatorID,
			ExternalID:       m.ExternalID,
			Title:            m.Title,
			CommissionAmount: m.CommissionAmount,
			Status:           m.Status,
			SyncedAt:         m.SyncedAt.UTC(),
		}
	}
	return out, nil
}

func (r *GormShopMyReportRepository) payments(ctx context.Context, creatorID string, limit int) ([]report.PaymentRow, error) {
	q := r.db.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("sent_at IS NULL").
		Order("sent_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []models.ShopMyPaymentModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]report.PaymentRow, len(rows))
	for i, m := range rows {
		out[i] = report.PaymentRow{
			ID:         m.ID,
			CreatorID:  m.CreatorID,
			ExternalID: m.ExternalID,
			Amount:     m.Amount,
			Source:     m.Source,
			SentAt:     utcOrNil(m.SentAt),
			SyncedAt:   m.SyncedAt.UTC(),
		}
	}
	return out, nil
}

// Payments returns every payout, newest first
func (r *GormShopMyReportRepository) Payments(ctx context.Context, creatorID string) ([]report.PaymentRow, error) {
	return r.payments(ctx, creatorID, 0)
}

func (r *GormShopMyReportRepository) brandRates(ctx context.Context, creatorID string, limit int) ([]report.BrandRateRow, error) {
	q := r.db.WithContext(ctx).Where("creator_id = ?", creatorID).Order("brand ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []models.ShopMyBrandRateModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]report.BrandRateRow, len(rows))
	for i, m := range rows {
		out[i] = report.BrandRateRow{
			ID:            m.ID,
			CreatorID:     m.CreatorID,
			Brand:         m.Brand,
			Rate:          m.Rate,
			RateReturning: m.RateReturning,
			SyncedAt:      m.SyncedAt.UTC(),
		}
	}
	return out, nil
}

// BrandRates returns brand rates ordered by brand
func (r *GormShopMyReportRepository) BrandRates(ctx context.Context, creatorID string) ([]report.BrandRateRow, error) {
	return r.brandRates(ctx, creatorID, 0)
}

// Verify counts, totals and samples everything stored for a creator's ShopMy account
func (r *GormShopMyReportRepository) Verify(ctx context.Context, creatorID string, samples int) (report.ShopMyVerify, error) {
	if samples <= 0 {
		samples = report.ShopMyVerifySampleLimit
	}
	v := report.ShopMyVerify{CreatorID: creatorID}

	var totals struct {
		TotalCommission decimal.Decimal
		TotalSales      int64
	}
	err := r.shopmySales(ctx, creatorID).
		Select("COALESCE(SUM(commission_amount), 0) AS total_commission, COUNT(*) AS total_sales").
		Scan(&totals).Error
	if err != nil {
		return v, err
	}
	v.Counts.NormalSales = totals.TotalSales
	v.Totals = report.ShopMyVerifyTotals{TotalCommission: totals.TotalCommission, TotalSales: totals.TotalSales}

	counts := []struct {
		model any
		dst   *int64
	}{
		{&models.ShopMyOpportunityCommissionModel{}, &v.Counts.OpportunityCommissions},
		{&models.ShopMyPaymentModel{}, &v.Counts.Payments},
		{&models.ShopMyBrandRateModel{}, &v.Counts.BrandRates},
	}
	for _, c := range counts {
		if err := r.db.WithContext(ctx).Model(c.model).Where("creator_id = ?", creatorID).Count(c.dst).Error; err != nil {
			return v, err
		}
	}

	if v.Samples.Sales, err = scanSales(r.shopmySales(ctx, creatorID).Order("sale_date DESC").Limit(samples)); err != nil {
		return v, err
	}
	if v.Samples.OpportunityCommissions, err = r.opportunities(ctx, creatorID, samples); err != nil {
		return v, err
	}
	if v.Samples.Payments, err = r.payments(ctx, creatorID, samples); err != nil {
		return v, err
	}
	if v.Samples.BrandRates, err = r.brandRates(ctx, creatorID, samples); err != nil {
		return v, err
	}
	return v, nil
}

var _ report.ShopMyReportRepository = (*GormShopMyReportRepository)(nil)
