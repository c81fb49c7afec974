package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/creatorhub/backend/internal/domain/earnings"
)

// PlatformEarningModel is the canonical ledger row
type PlatformEarningModel struct {
	SerialModel
	CreatorID   string          `gorm:"type:varchar(64);not null;uniqueIndex:uq_platform_earnings_key,priority:1"`
	Platform    string          `gorm:"type:varchar(16);not null;uniqueIndex:uq_platform_earnings_key,priority:2"`
	PeriodStart time.Time       `gorm:"type:date;not null;uniqueIndex:uq_platform_earnings_key,priority:3"`
	PeriodEnd   time.Time       `gorm:"type:date;not null;uniqueIndex:uq_platform_earnings_key,priority:4"`
	Revenue     decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Commission  decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Clicks      int             `gorm:"not null;default:0"`
	Orders      int             `gorm:"not null;default:0"`
	Status      string          `gorm:"type:varchar(16);not null;default:'open'"`
	RawPayload  string          `gorm:"type:jsonb"`
	SyncedAt    time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (PlatformEarningModel) TableName() string {
	return "platform_earnings"
}

// PlatformEarningModelFromDomain maps a canonical record
func PlatformEarningModelFromDomain(r earnings.Record) *PlatformEarningModel {
	payload := r.RawPayload
	if payload == "" {
		payload = "{}"
	}
	return &PlatformEarningModel{
		CreatorID:   r.CreatorID,
		Platform:    r.Platform.String(),
		PeriodStart: utc(r.Period.Start),
		PeriodEnd:   utc(r.Period.End),
		Revenue:     r.Revenue.Round(2),
		Commission:  r.Commission.Round(2),
		Clicks:      r.Clicks,
		Orders:      r.Orders,
		Status:      r.Status.String(),
		RawPayload:  payload,
		SyncedAt:    utc(r.SyncedAt),
	}
}

// ToDomain converts the row back to a canonical record
func (m *PlatformEarningModel) ToDomain() earnings.Record {
	return earnings.Record{
		CreatorID:  m.CreatorID,
		Platform:   earnings.Platform(m.Platform),
		Period:     earnings.Period{Start: earnings.Date(m.PeriodStart), End: earnings.Date(m.PeriodEnd)},
		Revenue:    m.Revenue,
		Commission: m.Commission,
		Clicks:     m.Clicks,
		Orders:     m.Orders,
		Status:     earnings.ParseStatus(m.Status),
		RawPayload: m.RawPayload,
		SyncedAt:   m.SyncedAt,
	}
}

// SaleModel is an individual attributed order
type SaleModel struct {
	SerialModel
	CreatorID        string          `gorm:"type:varchar(64);not null;index"`
	Platform         string          `gorm:"type:varchar(16);not null;uniqueIndex:uq_sales_platform_order,priority:1"`
	SaleDate         time.Time       `gorm:"not null;index"`
	ProductName      string          `gorm:"type:text;not null;default:''"`
	ProductSKU       string          `gorm:"column:product_sku;type:varchar(255);not null;default:''"`
	Brand            string          `gorm:"type:varchar(255);not null;default:''"`
	CommissionAmount decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	OrderValue       decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Status           string          `gorm:"type:varchar(16);not null;default:'open'"`
	ExternalOrderID  string          `gorm:"type:varchar(255);not null;uniqueIndex:uq_sales_platform_order,priority:2"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// SaleModelFromDomain maps a sale
func SaleModelFromDomain(s earnings.Sale) *SaleModel {
	return &SaleModel{
		CreatorID:        s.CreatorID,
		Platform:         s.Platform.String(),
		SaleDate:         utc(s.SaleDate),
		ProductName:      s.ProductName,
		ProductSKU:       s.ProductSKU,
		Brand:            s.Brand,
		CommissionAmount: s.CommissionAmount.Round(2),
		OrderValue:       s.OrderValue.Round(2),
		Status:           s.Status.String(),
		ExternalOrderID:  s.ExternalOrderID,
	}
}

// ProductModel is a per-creator product rollup
type ProductModel struct {
	SerialModel
	CreatorID      string          `gorm:"type:varchar(64);not null;uniqueIndex:uq_products_key,priority:1"`
	Platform       string          `gorm:"type:varchar(16);not null;uniqueIndex:uq_products_key,priority:2"`
	ProductName    string          `gorm:"type:text;not null;uniqueIndex:uq_products_key,priority:3"`
	Brand          string          `gorm:"type:varchar(255);not null;default:''"`
	ImageURL       string          `gorm:"type:text;not null;default:''"`
	TotalRevenue   decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	TotalClicks    int             `gorm:"not null;default:0"`
	TotalSales     int             `gorm:"not null;default:0"`
	ConversionRate decimal.Decimal `gorm:"type:numeric(6,2);not null;default:0"`
	LastUpdated    time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ProductModelFromDomain maps a product rollup
func ProductModelFromDomain(p earnings.Product, now time.Time) *ProductModel {
	return &ProductModel{
		CreatorID:      p.CreatorID,
		Platform:       p.Platform.String(),
		ProductName:    p.ProductName,
		Brand:          p.Brand,
		ImageURL:       p.ImageURL,
		TotalRevenue:   p.TotalRevenue.Round(2),
		TotalClicks:    p.TotalClicks,
		TotalSales:     p.TotalSales,
		ConversionRate: p.ConversionRate.Round(2),
		LastUpdated:    utc(now),
	}
}

// PlatformConnectionModel records a creator's connection to a platform
type PlatformConnectionModel struct {
	SerialModel
	CreatorID    string `gorm:"type:varchar(64);not null;uniqueIndex:uq_platform_connections_key,priority:1"`
	Platform     string `gorm:"type:varchar(16);not null;uniqueIndex:uq_platform_connections_key,priority:2"`
	IsConnected  bool   `gorm:"not null;default:false"`
	ExternalID   string `gorm:"type:varchar(255);not null;default:''"`
	LastSyncedAt *time.Time
}

// TableName returns the table name for GORM
func (PlatformConnectionModel) TableName() string {
	return "platform_connections"
}

// PlatformConnectionModelFromDomain maps a connection
func PlatformConnectionModelFromDomain(c earnings.Connection) *PlatformConnectionModel {
	synced := utc(c.LastSyncedAt)
	return &PlatformConnectionModel{
		CreatorID:    c.CreatorID,
		Platform:     c.Platform.String(),
		IsConnected:  c.IsConnected,
		ExternalID:   c.ExternalID,
		LastSyncedAt: &synced,
	}
}
