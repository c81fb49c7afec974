package dto

import (
	"strings"

	"github.com/creatorhub/backend/internal/domain/creator"
	"github.com/creatorhub/backend/internal/domain/earnings"
	"github.com/creatorhub/backend/internal/domain/report"
)

// DaysQuery selects a trailing window; zero means the service default
type DaysQuery struct {
	CreatorID string `form:"creatorId"`
	Days      int    `form:"days" binding:"omitempty,min=1,max=3650"`
}

// HistoryQuery selects a ledger time series
type HistoryQuery struct {
	CreatorID string `form:"creatorId"`
	Platform  string `form:"platform" binding:"omitempty,platform"`
	Days      int    `form:"days" binding:"omitempty,min=1,max=3650"`
}

// PlatformValue returns the parsed platform, or "" for all platforms
func (q HistoryQuery) PlatformValue() earnings.Platform {
	p, err := earnings.ParsePlatform(q.Platform)
	if err != nil {
		return ""
	}
	return p
}

// SalesQuery filters the paginated sales list and the CSV export
type SalesQuery struct {
	CreatorID string `form:"creatorId"`
	Platform  string `form:"platform" binding:"omitempty,platform"`
	Status    string `form:"status" binding:"omitempty,earnings_status"`
	Search    string `form:"search" binding:"omitempty,max=200"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

// ToFilter converts the query to a report.SalesFilter with lower-cased enums
func (q SalesQuery) ToFilter() report.SalesFilter {
	return report.SalesFilter{
		CreatorID: strings.TrimSpace(q.CreatorID),
		Platform:  strings.ToLower(strings.TrimSpace(q.Platform)),
		Status:    strings.ToLower(strings.TrimSpace(q.Status)),
		Search:    strings.TrimSpace(q.Search),
		Page:      q.Page,
		Limit:     q.Limit,
	}
}

// LimitQuery caps a list endpoint; zero means the service default
type LimitQuery struct {
	CreatorID string `form:"creatorId"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

// CompareQuery lists creators to compare as ?ids=a,b,c
type CompareQuery struct {
	IDs string `form:"ids" binding:"required"`
}

// CreatorIDs splits the comma separated ids
func (q CompareQuery) CreatorIDs() []string {
	return strings.Split(q.IDs, ",")
}

// CreatorQuery names the creator an admin operation applies to
type CreatorQuery struct {
	CreatorID string `form:"creatorId" binding:"required"`
}

// IGBackfillQuery selects the Instagram media backfill target
type IGBackfillQuery struct {
	Creator string `form:"creator" binding:"required"`
	Limit   int    `form:"limit" binding:"omitempty,min=1,max=1000"`
}

// DefaultIGBackfillLimit is the media page budget when none is given
const DefaultIGBackfillLimit = 200

// LimitOrDefault returns the limit, defaulting to DefaultIGBackfillLimit
func (q IGBackfillQuery) LimitOrDefault() int {
	if q.Limit <= 0 {
		return DefaultIGBackfillLimit
	}
	return q.Limit
}

// PlatformIDsRequest is the PATCH body of set-creator-platform-ids.
// Omitted fields are left unchanged.
type PlatformIDsRequest struct {
	CreatorID          string  `json:"creatorId" binding:"required"`
	MavelyCreatorID    *string `json:"mavelyCreatorId" binding:"omitempty,max=64"`
	ShopMyUserID       *string `json:"shopmyUserId" binding:"omitempty,max=64"`
	LTKPublisherID     *string `json:"ltkPublisherId" binding:"omitempty,max=64"`
	AmazonAssociateTag *string `json:"amazonAssociateTag" binding:"omitempty,max=64"`
}

// ToPlatformIDs converts the body to creator.PlatformIDs
func (r PlatformIDsRequest) ToPlatformIDs() creator.PlatformIDs {
	return creator.PlatformIDs{
		MavelyCreatorID:    r.MavelyCreatorID,
		ShopMyUserID:       r.ShopMyUserID,
		LTKPublisherID:     r.LTKPublisherID,
		AmazonAssociateTag: r.AmazonAssociateTag,
	}
}
