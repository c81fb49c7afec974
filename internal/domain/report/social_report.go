package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/creatorhub/backend/internal/domain/creator"
)

// Social view defaults
const (
	DefaultTopPosts      = 10
	DefaultRecentPosts   = 25
	DefaultViewsDays     = 7
	DefaultTopProducts   = 10
	DefaultIGBackfillMax = 200
)

// CreatorSummary is a creator with their latest snapshot
type CreatorSummary struct {
	ID                string     `json:"id"`
	Username          string     `json:"username"`
	DisplayName       string     `json:"displayName"`
	ProfilePictureURL string     `json:"profilePictureUrl"`
	Biography         string     `json:"biography"`
	IsOwned           bool       `json:"isOwned"`
	FollowersCount    *int       `json:"followersCount"`
	FollowsCount      *int       `json:"followsCount"`
	MediaCount        *int       `json:"mediaCount"`
	CapturedAt        *time.Time `json:"capturedAt"`
}

// CreatorOverview is a creator with their two most recent snapshots
type CreatorOverview struct {
	Creator  *creator.Creator  `json:"creator"`
	Latest   *creator.Snapshot `json:"latest"`
	Previous *creator.Snapshot `json:"previous"`
}

// HistoryRow is a point in a creator's follower history
type HistoryRow struct {
	CapturedAt           time.Time `json:"capturedAt"`
	FollowersCount       *int      `json:"followersCount"`
	Reach28d             *int      `json:"reach28d"`
	AccountsEngaged28d   *int      `json:"accountsEngaged28d"`
	TotalInteractions28d *int      `json:"totalInteractions28d"`
}

// ComparisonRow compares creators on their latest snapshot
type ComparisonRow struct {
	CreatorID            string `json:"creatorId"`
	Username             string `json:"username"`
	DisplayName          string `json:"displayName"`
	FollowersCount       *int   `json:"followersCount"`
	MediaCount           *int   `json:"mediaCount"`
	Reach28d             *int   `json:"reach28d"`
	AccountsEngaged28d   *int   `json:"accountsEngaged28d"`
	TotalInteractions28d *int   `json:"totalInteractions28d"`
}

// AggregateStats are roster-wide totals
type AggregateStats struct {
	TotalCreators  int64 `json:"totalCreators"`
	TotalFollowers int64 `json:"totalFollowers"`
}

// AttributedPost is a post joined to the Mavely link found in it
type AttributedPost struct {
	creator.MediaSnapshot
	LinkRevenue    decimal.Decimal `json:"linkRevenue"`
	LinkCommission decimal.Decimal `json:"linkCommission"`
	LinkClicks     int64           `json:"linkClicks"`
	LinkOrders     int64           `json:"linkOrders"`
}
