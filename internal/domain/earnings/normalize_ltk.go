package earnings

import (
	"time"

	"github.com/shopspring/decimal"
)

// LTKRange is a rolling summary window exposed by the LTK creator API
type LTKRange struct {
	Label string
	Days  int
}

// LTKRanges are the windows synced on every run
var LTKRanges = []LTKRange{
	{Label: "last_7_days", Days: 7},
	{Label: "last_30_days", Days: 30},
}

// ltkCommission reads "commissions", which LTK sends either as a number or as {total|amount}
func ltkCommission(earnings Fields) decimal.Decimal {
	if earnings == nil {
		return decimal.Zero
	}
	if obj := earnings.Object("commissions"); obj != nil {
		return obj.Amount("total", "amount")
	}
	return earnings.Amount("commissions")
}

// LTKRangeRecord builds the ledger row for one rolling range.
// Either summary may be nil when its call failed; the range is dropped only when both are.
func LTKRangeRecord(creatorID string, r LTKRange, earnings, engagement Fields, now time.Time) (Record, bool) {
	if earnings == nil && engagement == nil {
		return Record{}, false
	}
	commission := ltkCommission(earnings)
	revenue := commission
	if engagement.Has("total_sales") {
		revenue = engagement.Amount("total_sales")
	}
	return Record{
		CreatorID:  creatorID,
		Platform:   PlatformLTK,
		Period:     TrailingPeriod(now, r.Days),
		Revenue:    revenue,
		Commission: commission,
		Clicks:     engagement.Int("product_clicks", "total_visits"),
		Orders:     engagement.Int("orders"),
		Status:     StatusOpen,
		RawPayload: MarshalPayload(map[string]any{
			"earnings":   earnings,
			"engagement": engagement,
		}),
		SyncedAt: now.UTC(),
	}, true
}

// LTKPerformanceRecord builds a monthly ledger row from a performance_summary "data" object
func LTKPerformanceRecord(creatorID string, p Period, data Fields, now time.Time) Record {
	net := data.Amount("net_commissions")
	return Record{
		CreatorID:  creatorID,
		Platform:   PlatformLTK,
		Period:     p,
		Revenue:    net,
		Commission: net,
		Clicks:     data.Int("clicks"),
		Orders:     data.Int("orders"),
		Status:     StatusOpen,
		RawPayload: data.JSON(),
		SyncedAt:   now.UTC(),
	}
}

// LTKItemSale maps an items_sold entry to a Sale.
// The same product sells many times, so the event timestamp is folded into the external id.
func LTKItemSale(creatorID string, item Fields, now time.Time) (Sale, bool) {
	ext := item.String("product_id", "publisher_id")
	if ext == "" {
		return Sale{}, false
	}
	ts := item.String("event_timestamp")
	if ts != "" {
		ext += ":" + ts
	}
	saleDate, ok := item.Time("event_timestamp")
	if !ok {
		saleDate = now.UTC()
	}
	commission := decimal.Zero
	if amt := item.Object("amount"); amt != nil {
		commission = amt.Amount("value")
	}
	return Sale{
		CreatorID:        creatorID,
		Platform:         PlatformLTK,
		SaleDate:         saleDate,
		ProductName:      item.String("product_title"),
		Brand:            item.String("advertiser_display_name"),
		CommissionAmount: commission,
		OrderValue:       decimal.Zero,
		Status:           ParseStatus(item.String("status")),
		ExternalOrderID:  ext,
	}, true
}
