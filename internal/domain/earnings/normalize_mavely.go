package earnings

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MavelyMirrorCutoffDays bounds how far back the Airtable mirror is read
const MavelyMirrorCutoffDays = 90

// CreatorResolver maps a vendor creator id to an internal creator id
type CreatorResolver struct {
	byVendorID map[string]string
	fallback   string
}

// NewCreatorResolver builds a resolver; unknown vendor ids resolve to fallback.
// Vendor ids match case-insensitively.
func NewCreatorResolver(byVendorID map[string]string, fallback string) CreatorResolver {
	m := make(map[string]string, len(byVendorID))
	for k, v := range byVendorID {
		m[strings.ToLower(k)] = v
	}
	return CreatorResolver{byVendorID: m, fallback: fallback}
}

// Resolve returns the internal creator id for vendorID, or the fallback
func (r CreatorResolver) Resolve(vendorID string) string {
	if vendorID != "" {
		if id, ok := r.byVendorID[strings.ToLower(vendorID)]; ok {
			return id
		}
	}
	return r.fallback
}

// MavelyAirtableRecord maps a row of the Airtable Mavely mirror.
// Rows missing a period or earnings, older than cutoff, or with no resolvable creator are skipped.
func MavelyAirtableRecord(f Fields, resolver CreatorResolver, cutoff, now time.Time) (Record, bool) {
	startStr := f.String("Period Start")
	endStr := f.String("Period End")
	if startStr == "" || endStr == "" || !f.Has("Normalized Earnings") {
		return Record{}, false
	}
	start, ok := ParseTime(startStr)
	if !ok {
		return Record{}, false
	}
	end, ok := ParseTime(endStr)
	if !ok {
		return Record{}, false
	}
	if start.Before(cutoff) {
		return Record{}, false
	}
	creatorID := resolver.Resolve(f.String("Creator ID"))
	if creatorID == "" {
		return Record{}, false
	}
	amount := f.Amount("Normalized Earnings")
	return Record{
		CreatorID:  creatorID,
		Platform:   PlatformMavely,
		Period:     Period{Start: Date(start), End: Date(end)},
		Revenue:    amount,
		Commission: amount,
		Status:     StatusOpen,
		RawPayload: RawJSON(f.String("Raw Payload")),
		SyncedAt:   now.UTC(),
	}, true
}

// MavelyTotalsRecord builds a monthly ledger row from creatorAnalyticsMetricsTotals metrics
func MavelyTotalsRecord(creatorID string, p Period, metrics Fields, now time.Time) Record {
	commission := metrics.Amount("commission")
	return Record{
		CreatorID:  creatorID,
		Platform:   PlatformMavely,
		Period:     p,
		Revenue:    commission,
		Commission: commission,
		Clicks:     metrics.Int("clicksCount"),
		Orders:     metrics.Int("salesCount"),
		Status:     StatusOpen,
		RawPayload: metrics.JSON(),
		SyncedAt:   now.UTC(),
	}
}

// ConversionRate returns orders/clicks as a 2dp percentage, or zero without clicks
func ConversionRate(orders, clicks int) decimal.Decimal {
	if clicks <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(orders)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(clicks))).
		Round(2)
}

// ProductFromMavelyLink derives the product rollup for a link.
// Links without a title fall back to their URL; links with neither are skipped.
func ProductFromMavelyLink(l MavelyLink) (Product, bool) {
	name := l.Title
	if name == "" {
		name = l.LinkURL
	}
	if name == "" {
		return Product{}, false
	}
	return Product{
		CreatorID:      l.CreatorID,
		Platform:       PlatformMavely,
		ProductName:    name,
		Brand:          l.Brand,
		ImageURL:       l.ImageURL,
		TotalRevenue:   l.Revenue.Round(2),
		TotalClicks:    l.Clicks,
		TotalSales:     l.Orders,
		ConversionRate: ConversionRate(l.Orders, l.Clicks),
	}, true
}
