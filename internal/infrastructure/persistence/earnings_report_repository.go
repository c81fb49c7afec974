package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/creatorhub/backend/internal/domain/earnings"
	"github.com/creatorhub/backend/internal/domain/report"
)

// GormEarningsReportRepository implements report.EarningsReportRepository
type GormEarningsReportRepository struct {
	db *gorm.DB
}

// NewGormEarningsReportRepository creates a new GormEarningsReportRepository
func NewGormEarningsReportRepository(db *gorm.DB) *GormEarningsReportRepository {
	return &GormEarningsReportRepository{db: db}
}

type platformTotalsRow struct {
	Platform        string
	TotalRevenue    decimal.Decimal
	TotalCommission decimal.Decimal
	TotalClicks     int64
	TotalOrders     int64
}

func (row platformTotalsRow) toReport() report.PlatformSummary {
	return report.PlatformSummary{
		Platform:        earnings.Platform(row.Platform),
		TotalRevenue:    row.TotalRevenue,
		TotalCommission: row.TotalCommission,
		TotalClicks:     row.TotalClicks,
		TotalOrders:     row.TotalOrders,
	}
}

const platformTotalsSelect = `platform,
	COALESCE(SUM(revenue), 0) AS total_revenue,
	COALESCE(SUM(commission), 0) AS total_commission,
	COALESCE(SUM(clicks), 0) AS total_clicks,
	COALESCE(SUM(orders), 0) AS total_orders`

func (r *GormEarningsReportRepository) platformTotals(q *gorm.DB) ([]report.PlatformSummary, error) {
	var rows []platformTotalsRow
	err := q.Table("platform_earnings").
		Select(platformTotalsSelect).
		Group("platform").
		Order("total_revenue DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]report.PlatformSummary, len(rows))
	for i, row := range rows {
		out[i] = row.toReport()
	}
	return out, nil
}

// Summary returns per-platform totals for one creator
func (r *GormEarningsReportRepository) Summary(ctx context.Context, creatorID string, since time.Time) ([]report.PlatformSummary, error) {
	return r.platformTotals(r.db.WithContext(ctx).
		Where("creator_id = ? AND synced_at >= ?", creatorID, since.UTC()))
}

// ByPlatform returns per-platform totals across creatorIDs; nil means all creators
func (r *GormEarningsReportRepository) ByPlatform(ctx context.Context, creatorIDs []string, since time.Time) ([]report.PlatformSummary, error) {
	if creatorIDs != nil && len(creatorIDs) == 0 {
		return []report.PlatformSummary{}, nil
	}
	q := r.db.WithContext(ctx).Where("synced_at >= ?", since.UTC())
	if creatorIDs != nil {
		q = q.Where("creator_id IN ?", creatorIDs)
	}
	return r.platformTotals(q)
}

// Aggregate totals the ledger across creatorIDs with a per-platform breakdown
func (r *GormEarningsReportRepository) Aggregate(ctx context.Context, since time.Time, creatorIDs []string) (report.AggregateEarnings, error) {
	rows, err := r.ByPlatform(ctx, creatorIDs, since)
	if err != nil {
		return report.AggregateEarnings{}, err
	}
	agg := report.AggregateEarnings{
		TotalRevenue:    decimal.Zero,
		TotalCommission: decimal.Zero,
		ByPlatform:      rows,
	}
	for _, row := range rows {
		agg.TotalRevenue = agg.TotalRevenue.Add(row.TotalRevenue)
		agg.TotalCommission = agg.TotalCommission.Add(row.TotalCommission)
		agg.TotalClicks += row.TotalClicks
		agg.TotalOrders += row.TotalOrders
	}
	return agg, nil
}

type historyRow struct {
	Platform    string
	PeriodStart time.Time
	PeriodEnd   time.Time
	Revenue     decimal.Decimal
	Commission  decimal.Decimal
	Clicks      int
	Orders      int
	Status      string
	SyncedAt    time.Time
}

func (row historyRow) toReport() report.HistoryPoint {
	return report.HistoryPoint{
		Platform:    earnings.Platform(row.Platform),
		PeriodStart: row.PeriodStart.UTC(),
		PeriodEnd:   row.PeriodEnd.UTC(),
		Revenue:     row.Revenue,
		Commission:  row.Commission,
		Clicks:      row.Clicks,
		Orders:      row.Orders,
		Status:      earnings.Status(row.Status),
		SyncedAt:    row.SyncedAt.UTC(),
	}
}

func scanHistory(q *gorm.DB) ([]report.HistoryPoint, error) {
	var rows []historyRow
	err := q.Table("platform_earnings").
		Select("platform, period_start, period_end, revenue, commission, clicks, orders, status, synced_at").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]report.HistoryPoint, len(rows))
	for i, row := range rows {
		out[i] = row.toReport()
	}
	return out, nil
}

// History returns ledger rows ordered by period start; an empty platform means all
func (r *GormEarningsReportRepository) History(ctx context.Context, creatorID string, platform earnings.Platform, since time.Time) ([]report.HistoryPoint, error) {
	q := r.db.WithContext(ctx).Where("creator_id = ? AND synced_at >= ?", creatorID, since.UTC())
	if platform != "" {
		q = q.Where("platform = ?", string(platform))
	}
	return scanHistory(q.Order("period_start ASC"))
}

type saleRow struct {
	ID               int64
	CreatorID        string
	Platform         string
	SaleDate         time.Time
	ProductName      string
	ProductSKU       string `gorm:"column:product_sku"`
	Brand            string
	CommissionAmount decimal.Decimal
	OrderValue       decimal.Decimal
	Status           string
	ExternalOrderID  string
	CreatedAt        time.Time
}

func (row saleRow) toReport() report.SaleRow {
	return report.SaleRow{
		ID:               row.ID,
		CreatorID:        row.CreatorID,
		Platform:         earnings.Platform(row.Platform),
		SaleDate:         row.SaleDate.UTC(),
		ProductName:      row.ProductName,
		ProductSKU:       row.ProductSKU,
		Brand:            row.Brand,
		CommissionAmount: row.CommissionAmount,
		OrderValue:       row.OrderValue,
		Status:           earnings.Status(row.Status),
		ExternalOrderID:  row.ExternalOrderID,
		CreatedAt:        row.CreatedAt.UTC(),
	}
}

const saleColumns = `id, creator_id, platform, sale_date, product_name, product_sku, brand,
	commission_amount, order_value, status, external_order_id, created_at`

func scanSales(q *gorm.DB) ([]report.SaleRow, error) {
	var rows []saleRow
	if err := q.Select(saleColumns).Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]report.SaleRow, len(rows))
	for i, row := range rows {
		out[i] = row.toReport()
	}
	return out, nil
}

// salesQuery applies the filter; ok is false when the filter can match nothing
func (r *GormEarningsReportRepository) salesQuery(ctx context.Context, f report.SalesFilter) (q *gorm.DB, ok bool) {
	if f.CreatorIDs != nil && len(f.CreatorIDs) == 0 {
		return nil, false
	}
	q = r.db.WithContext(ctx).Table("sales")
	if f.CreatorID != "" {
		q = q.Where("creator_id = ?", f.CreatorID)
	}
	if f.CreatorIDs != nil {
		q = q.Where("creator_id IN ?", f.CreatorIDs)
	}
	if f.Platform != "" {
		q = q.Where("platform = ?", f.Platform)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("(LOWER(product_name) LIKE ? OR LOWER(brand) LIKE ?)", like, like)
	}
	return q, true
}

// Sales returns one page of sales, newest first
func (r *GormEarningsReportRepository) Sales(ctx context.Context, f report.SalesFilter) (report.SalesPage, error) {
	f.Normalize()
	q, ok := r.salesQuery(ctx, f)
	if !ok {
		return report.EmptySalesPage(), nil
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return report.SalesPage{}, err
	}
	data, err := scanSales(q.Order("sale_date DESC").Order("id DESC").Limit(f.Limit).Offset(f.Offset()))
	if err != nil {
		return report.SalesPage{}, err
	}
	return report.SalesPage{
		Data:       data,
		Total:      total,
		Page:       f.Page,
		TotalPages: report.TotalPages(total, f.Limit),
	}, nil
}

// ExportSales returns up to report.MaxExportRows sales, newest first
func (r *GormEarningsReportRepository) ExportSales(ctx context.Context, f report.SalesFilter) ([]report.SaleRow, error) {
	q, ok := r.salesQuery(ctx, f)
	if !ok {
		return []report.SaleRow{}, nil
	}
	return scanSales(q.Order("sale_date DESC").Order("id DESC").Limit(report.MaxExportRows))
}

type productRow struct {
	ID             int64
	CreatorID      string
	Platform       string
	ProductName    string
	Brand          string
	ImageURL       string
	TotalRevenue   decimal.Decimal
	TotalClicks    int
	TotalSales     int
	ConversionRate decimal.Decimal
	LastUpdated    time.Time
}

// TopProducts returns a creator's products by total revenue
func (r *GormEarningsReportRepository) TopProducts(ctx context.Context, creatorID string, limit int) ([]report.ProductRow, error) {
	if limit <= 0 {
		limit = report.DefaultTopProducts
	}
	var rows []productRow
	err := r.db.WithContext(ctx).
		Table("products").
		Select("id, creator_id, platform, product_name, brand, image_url, total_revenue, total_clicks, total_sales, conversion_rate, last_updated").
		Where("creator_id = ?", creatorID).
		Order("total_revenue DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]report.ProductRow, len(rows))
	for i, row := range rows {
		out[i] = report.ProductRow{
			ID:             row.ID,
			CreatorID:      row.CreatorID,
			Platform:       earnings.Platform(row.Platform),
			ProductName:    row.ProductName,
			Brand:          row.Brand,
			ImageURL:       row.ImageURL,
			TotalRevenue:   row.TotalRevenue,
			TotalClicks:    row.TotalClicks,
			TotalSales:     row.TotalSales,
			ConversionRate: row.ConversionRate,
			LastUpdated:    row.LastUpdated.UTC(),
		}
	}
	return out, nil
}

var _ report.EarningsReportRepository = (*GormEarningsReportRepository)(nil)
