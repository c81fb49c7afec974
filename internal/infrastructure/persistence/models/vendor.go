package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/creatorhub/backend/internal/domain/earnings"
)

// ShopMyOpportunityCommissionModel is a flat brand-opportunity commission
type ShopMyOpportunityCommissionModel struct {
	SerialModel
	CreatorID        string          `gorm:"type:varchar(64);not null;index"`
	ExternalID       string          `gorm:"type:varchar(255);not null;uniqueIndex"`
	Title            string          `gorm:"type:text;not null;default:''"`
	CommissionAmount decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Status           string          `gorm:"type:varchar(64);not null;default:''"`
	SyncedAt         time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ShopMyOpportunityCommissionModel) TableName() string {
	return "shopmy_opportunity_commissions"
}

// ShopMyOpportunityCommissionModelFromDomain maps an opportunity commission
func ShopMyOpportunityCommissionModelFromDomain(c earnings.ShopMyOpportunityCommission, now time.Time) *ShopMyOpportunityCommissionModel {
	return &ShopMyOpportunityCommissionModel{
		CreatorID:        c.CreatorID,
		ExternalID:       c.ExternalID,
		Title:            c.Title,
		CommissionAmount: c.CommissionAmount.Round(2),
		Status:           c.Status,
		SyncedAt:         utc(now),
	}
}

// ShopMyPaymentModel is a payout sent to the creator
type ShopMyPaymentModel struct {
	SerialModel
	CreatorID  string          `gorm:"type:varchar(64);not null;index"`
	ExternalID string          `gorm:"type:varchar(255);not null;uniqueIndex"`
	Amount     decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Source     string          `gorm:"type:varchar(32);not null;default:'PAYPAL'"`
	SentAt     *time.Time
	SyncedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ShopMyPaymentModel) TableName() string {
	return "shopmy_payments"
}

// ShopMyPaymentModelFromDomain maps a payment
func ShopMyPaymentModelFromDomain(p earnings.ShopMyPayment, now time.Time) *ShopMyPaymentModel {
	return &ShopMyPaymentModel{
		CreatorID:  p.CreatorID,
		ExternalID: p.ExternalID,
		Amount:     p.Amount.Round(2),
		Source:     p.Source,
		SentAt:     utcPtr(p.SentAt),
		SyncedAt:   utc(now),
	}
}

// ShopMyBrandRateModel is a brand's commission rate for the creator
type ShopMyBrandRateModel struct {
	SerialModel
	CreatorID     string              `gorm:"type:varchar(64);not null;uniqueIndex:uq_shopmy_brand_rates_key,priority:1"`
	Brand         string              `gorm:"type:varchar(255);not null;uniqueIndex:uq_shopmy_brand_rates_key,priority:2"`
	Rate          decimal.NullDecimal `gorm:"type:numeric(6,2)"`
	RateReturning decimal.NullDecimal `gorm:"type:numeric(6,2)"`
	SyncedAt      time.Time           `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ShopMyBrandRateModel) TableName() string {
	return "shopmy_brand_rates"
}

// ShopMyBrandRateModelFromDomain maps a brand rate
func ShopMyBrandRateModelFromDomain(r earnings.ShopMyBrandRate, now time.Time) *ShopMyBrandRateModel {
	return &ShopMyBrandRateModel{
		CreatorID:     r.CreatorID,
		Brand:         r.Brand,
		Rate:          r.Rate,
		RateReturning: r.RateReturning,
		SyncedAt:      utc(now),
	}
}

// MavelyLinkModel is per-link performance over a sync window
type MavelyLinkModel struct {
	SerialModel
	CreatorID    string          `gorm:"type:varchar(64);not null;uniqueIndex:uq_mavely_links_key,priority:1"`
	MavelyLinkID string          `gorm:"type:varchar(255);not null;uniqueIndex:uq_mavely_links_key,priority:2"`
	PeriodStart  time.Time       `gorm:"type:date;not null;uniqueIndex:uq_mavely_links_key,priority:3"`
	PeriodEnd    time.Time       `gorm:"type:date;not null;uniqueIndex:uq_mavely_links_key,priority:4"`
	LinkURL      string          `gorm:"type:text;not null;default:'';index"`
	Title        string          `gorm:"type:text;not null;default:''"`
	ImageURL     string          `gorm:"type:text;not null;default:''"`
	Brand        string          `gorm:"type:varchar(255);not null;default:''"`
	Clicks       int             `gorm:"not null;default:0"`
	Orders       int             `gorm:"not null;default:0"`
	Commission   decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Revenue      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	SyncedAt     time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (MavelyLinkModel) TableName() string {
	return "mavely_links"
}

// MavelyLinkModelFromDomain maps a link metric row
func MavelyLinkModelFromDomain(l earnings.MavelyLink, now time.Time) *MavelyLinkModel {
	return &MavelyLinkModel{
		CreatorID:    l.CreatorID,
		MavelyLinkID: l.LinkID,
		PeriodStart:  utc(l.Period.Start),
		PeriodEnd:    utc(l.Period.End),
		LinkURL:      l.LinkURL,
		Title:        l.Title,
		ImageURL:     l.ImageURL,
		Brand:        l.Brand,
		Clicks:       l.Clicks,
		Orders:       l.Orders,
		Commission:   l.Commission.Round(2),
		Revenue:      l.Revenue.Round(2),
		SyncedAt:     utc(now),
	}
}

// MavelyTransactionModel is an individual Mavely order
type MavelyTransactionModel struct {
	SerialModel
	CreatorID           string          `gorm:"type:varchar(64);not null;index"`
	MavelyTransactionID string          `gorm:"type:varchar(255);not null;uniqueIndex"`
	MavelyLinkID        string          `gorm:"type:varchar(255);not null;default:''"`
	LinkURL             string          `gorm:"type:text;not null;default:''"`
	Referrer            string          `gorm:"type:text;not null;default:''"`
	CommissionAmount    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	OrderValue          decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	SaleDate            *time.Time
	Status              string `gorm:"type:varchar(64);not null;default:''"`
}

// TableName returns the table name for GORM
func (MavelyTransactionModel) TableName() string {
	return "mavely_transactions"
}

// MavelyTransactionModelFromDomain maps a transaction
func MavelyTransactionModelFromDomain(t earnings.MavelyTransaction) *MavelyTransactionModel {
	return &MavelyTransactionModel{
		CreatorID:           t.CreatorID,
		MavelyTransactionID: t.TransactionID,
		MavelyLinkID:        t.LinkID,
		LinkURL:             t.LinkURL,
		Referrer:            t.Referrer,
		CommissionAmount:    t.CommissionAmount.Round(2),
		OrderValue:          t.OrderValue.Round(2),
		SaleDate:            utcPtr(t.SaleDate),
		Status:              t.Status,
	}
}

// All lists every model, in dependency order, for AutoMigrate in tests
func All() []any {
	return []any{
		&CreatorModel{},
		&CreatorSnapshotModel{},
		&MediaSnapshotModel{},
		&PlatformEarningModel{},
		&SaleModel{},
		&ProductModel{},
		&PlatformConnectionModel{},
		&UserRoleModel{},
		&ShopMyOpportunityCommissionModel{},
		&ShopMyPaymentModel{},
		&ShopMyBrandRateModel{},
		&MavelyLinkModel{},
		&MavelyTransactionModel{},
	}
}
