package earnings

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultPaymentSource is recorded when ShopMy omits a payout source
const DefaultPaymentSource = "PAYPAL"

// ShopMyMonthKeyLayout is the layout of keys in the payout summary months map, e.g. "1/31/25"
const ShopMyMonthKeyLayout = "1/2/06"

// MapShopMyStatus maps a ShopMy commission onto Status.
// isPaid wins; otherwise the display text (or raw status) is matched by substring.
func MapShopMyStatus(isPaid bool, statusDisplay, status string) Status {
	if isPaid {
		return StatusPaid
	}
	s := statusDisplay
	if s == "" {
		s = status
	}
	s = strings.ToLower(s)
	switch {
	case strings.Contains(s, "paid"):
		return StatusPaid
	case strings.Contains(s, "pending"), strings.Contains(s, "processing"):
		return StatusPending
	case strings.Contains(s, "reversed"), strings.Contains(s, "cancel"):
		return StatusReversed
	default:
		return StatusOpen
	}
}

// ShopMyLockStatus maps the isPaid/isLocked flags used by historical commissions
func ShopMyLockStatus(isPaid, isLocked bool) Status {
	switch {
	case isPaid:
		return StatusPaid
	case isLocked:
		return StatusPending
	default:
		return StatusOpen
	}
}

// shopMyCommission returns the creator's earned amount for a normal commission.
// amountEarned is already numeric; commission_amount is a "$1,200.00" style string.
func shopMyCommission(c Fields) decimal.Decimal {
	if c.Has("amountEarned") {
		return c.Amount("amountEarned")
	}
	return c.Amount("commission_amount")
}

// ShopMySale maps a payout summary normal commission to a Sale.
// It reports false when the commission has no usable external id.
func ShopMySale(creatorID string, c Fields, now time.Time) (Sale, bool) {
	ext := c.String("id", "order_id", "transaction_id")
	if ext == "" {
		return Sale{}, false
	}
	saleDate, ok := c.Time("transaction_date", "created_at")
	if !ok {
		saleDate = now.UTC()
	}
	return Sale{
		CreatorID:        creatorID,
		Platform:         PlatformShopMy,
		SaleDate:         saleDate,
		ProductName:      c.String("Product_title", "product_title", "productTitle", "name"),
		Brand:            c.String("merchant", "brand"),
		CommissionAmount: shopMyCommission(c),
		OrderValue:       c.Amount("order_amount"),
		Status:           MapShopMyStatus(c.Bool("isPaid"), c.String("statusDisplay"), c.String("status")),
		ExternalOrderID:  ext,
	}, true
}

// ShopMyHistoricalSale maps a commission for the historical backfill, where
// status comes from the isPaid/isLocked flags rather than display text.
func ShopMyHistoricalSale(creatorID string, c Fields, now time.Time) (Sale, bool) {
	ext := c.String("id", "commission_id")
	if ext == "" {
		return Sale{}, false
	}
	saleDate, ok := c.Time("transaction_date")
	if !ok {
		saleDate = now.UTC()
	}
	return Sale{
		CreatorID:        creatorID,
		Platform:         PlatformShopMy,
		SaleDate:         saleDate,
		ProductName:      c.String("Product_title", "title"),
		Brand:            c.String("merchant"),
		CommissionAmount: shopMyCommission(c),
		OrderValue:       c.Amount("order_amount"),
		Status:           ShopMyLockStatus(c.Bool("isPaid"), c.Bool("isLocked")),
		ExternalOrderID:  ext,
	}, true
}

// ShopMyOpportunity maps an opportunity commission. Rows without an id are skipped.
func ShopMyOpportunity(creatorID string, f Fields) (ShopMyOpportunityCommission, bool) {
	ext := f.String("id")
	if ext == "" {
		return ShopMyOpportunityCommission{}, false
	}
	return ShopMyOpportunityCommission{
		CreatorID:        creatorID,
		ExternalID:       ext,
		Title:            f.String("title", "name"),
		CommissionAmount: f.Amount("commission_amount", "amount"),
		Status:           f.String("statusDisplay", "status"),
	}, true
}

// ShopMyPaymentFrom maps a payout. Rows without an id are skipped.
func ShopMyPaymentFrom(creatorID string, f Fields) (ShopMyPayment, bool) {
	ext := f.String("id")
	if ext == "" {
		return ShopMyPayment{}, false
	}
	p := ShopMyPayment{
		CreatorID:  creatorID,
		ExternalID: ext,
		Amount:     f.Amount("amount"),
		Source:     f.String("source"),
	}
	if p.Source == "" {
		p.Source = DefaultPaymentSource
	}
	if t, ok := f.Time("sent_at"); ok {
		p.SentAt = &t
	}
	return p, true
}

// ShopMyBrandRateFrom maps a custom rate. The brand may be an object
// {name|brand_name} or a plain string; rates without a brand name are skipped.
func ShopMyBrandRateFrom(creatorID string, f Fields) (ShopMyBrandRate, bool) {
	brand := ""
	if obj := f.Object("brand"); obj != nil {
		brand = obj.String("name", "brand_name")
	} else {
		brand = f.String("brand")
	}
	if brand == "" {
		return ShopMyBrandRate{}, false
	}
	r := ShopMyBrandRate{CreatorID: creatorID, Brand: brand}
	if f.Has("rate") {
		r.Rate = decimal.NewNullDecimal(f.Amount("rate"))
	}
	if f.Has("rate_returning") {
		r.RateReturning = decimal.NewNullDecimal(f.Amount("rate_returning"))
	}
	return r, true
}

// ShopMySummary is the subset of a payout summary that feeds the daily ledger row
type ShopMySummary struct {
	Normal        []Fields
	OpCount       int
	PaymentsCount int
	TodayAmount   any
}

// ShopMySummaryRecord builds the single-day ledger row for today's payout summary
func ShopMySummaryRecord(creatorID string, s ShopMySummary, now time.Time) Record {
	total := decimal.Zero
	for _, c := range s.Normal {
		total = total.Add(shopMyCommission(c))
	}
	total = total.Round(2)
	return Record{
		CreatorID:  creatorID,
		Platform:   PlatformShopMy,
		Period:     DayPeriod(now),
		Revenue:    total,
		Commission: total,
		Orders:     len(s.Normal),
		Status:     StatusOpen,
		RawPayload: MarshalPayload(map[string]any{
			"todayAmount":   s.TodayAmount,
			"normalCount":   len(s.Normal),
			"opCount":       s.OpCount,
			"paymentsCount": s.PaymentsCount,
		}),
		SyncedAt: now.UTC(),
	}
}

// ParseShopMyMonthKey parses a months map key such as "10/31/25" into its calendar month
func ParseShopMyMonthKey(key string) (Period, error) {
	t, err := time.Parse(ShopMyMonthKeyLayout, strings.TrimSpace(key))
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidMonthKey, key)
	}
	return MonthPeriod(t.Year(), t.Month()), nil
}

// ShopMyMonthlyRecords builds one monthly ledger row per months map entry.
// Malformed keys are skipped and returned as errors; output is ordered by period.
func ShopMyMonthlyRecords(creatorID string, months map[string]Fields, now time.Time) ([]Record, []error) {
	keys := make([]string, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var (
		out  []Record
		errs []error
	)
	for _, k := range keys {
		p, err := ParseShopMyMonthKey(k)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		totals := months[k]
		amount := totals.Amount("user_payout_total")
		out = append(out, Record{
			CreatorID:  creatorID,
			Platform:   PlatformShopMy,
			Period:     p,
			Revenue:    amount,
			Commission: amount,
			Status:     StatusOpen,
			RawPayload: totals.JSON(),
			SyncedAt:   now.UTC(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period.Start.Before(out[j].Period.Start) })
	return out, errs
}
