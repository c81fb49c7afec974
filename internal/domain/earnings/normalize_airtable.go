package earnings

import "time"

// UnknownCreatorID is assigned to backfill rows that name no creator
const UnknownCreatorID = "unknown"

// BackfillTable is an Airtable earnings table and the platform it holds
type BackfillTable struct {
	Name     string
	Platform Platform
}

// BackfillTables are the Airtable tables imported by the admin backfill, in import order
var BackfillTables = []BackfillTable{
	{Name: "Mavely_Earnings", Platform: PlatformMavely},
	{Name: "ShopMy_Earnings", Platform: PlatformShopMy},
	{Name: "LTK_Earnings", Platform: PlatformLTK},
	{Name: "Amazon_Earnings", Platform: PlatformAmazon},
}

// AirtableBackfillRecord maps a row of an Airtable earnings table.
// Both Title Case and snake_case column names are accepted; a missing period defaults to today.
func AirtableBackfillRecord(platform Platform, f Fields, now time.Time) Record {
	creatorID := f.String("Creator", "creator_id")
	if creatorID == "" {
		creatorID = UnknownCreatorID
	}
	today := Date(now)
	start, ok := f.Time("Period Start", "period_start")
	if !ok {
		start = today
	}
	end, ok := f.Time("Period End", "period_end")
	if !ok {
		end = today
	}
	return Record{
		CreatorID:  creatorID,
		Platform:   platform,
		Period:     Period{Start: Date(start), End: Date(end)},
		Revenue:    f.Amount("Revenue", "revenue"),
		Commission: f.Amount("Commission", "commission"),
		Clicks:     f.Int("Clicks", "clicks"),
		Orders:     f.Int("Orders", "orders"),
		Status:     ParseStatus(f.String("Status", "status")),
		RawPayload: f.JSON(),
		SyncedAt:   now.UTC(),
	}
}
