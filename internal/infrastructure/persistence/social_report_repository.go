package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/creatorhub/backend/internal/domain/creator"
	"github.com/creatorhub/backend/internal/domain/report"
	"github.com/creatorhub/backend/internal/infrastructure/persistence/models"
)

// Correlated subqueries selecting the newest row; portable across postgres and sqlite.
const (
	latestCreatorSnapshot = "s.captured_at = (SELECT MAX(s2.captured_at) FROM creator_snapshots s2 WHERE s2.creator_id = c.id)"
	latestMediaSnapshot   = "m.captured_at = (SELECT MAX(m2.captured_at) FROM media_snapshots m2 WHERE m2.media_ig_id = m.media_ig_id)"
	// each mavely_links row is a cumulative window total; only the newest window of a link counts
	latestLinkWindow = "ml.period_end = (SELECT MAX(ml2.period_end) FROM mavely_links ml2 " +
		"WHERE ml2.creator_id = ml.creator_id AND ml2.mavely_link_id = ml.mavely_link_id)"
)

// GormSocialReportRepository implements report.SocialReportRepository
type GormSocialReportRepository struct {
	db *gorm.DB
}

// NewGormSocialReportRepository creates a new GormSocialReportRepository
func NewGormSocialReportRepository(db *gorm.DB) *GormSocialReportRepository {
	return &GormSocialReportRepository{db: db}
}

type creatorLatestRow struct {
	ID                   string
	Username             string
	DisplayName          string
	ProfilePictureURL    string
	Biography            string
	IsOwned              bool
	FollowersCount       *int
	FollowsCount         *int
	MediaCount           *int
	Reach28d             *int `gorm:"column:reach_28d"`
	AccountsEngaged28d   *int `gorm:"column:accounts_engaged_28d"`
	TotalInteractions28d *int `gorm:"column:total_interactions_28d"`
	CapturedAt           *time.Time
}

// latest joins each creator to their newest snapshot; nil ids means all creators
func (r *GormSocialReportRepository) latest(ctx context.Context, creatorIDs []string) ([]creatorLatestRow, error) {
	q := r.db.WithContext(ctx).
		Table("creators AS c").
		Select(`c.id, c.username, c.display_name, c.profile_picture_url, c.biography, c.is_owned,
			s.followers_count, s.follows_count, s.media_count, s.reach_28d,
			s.accounts_engaged_28d, s.total_interactions_28d, s.captured_at`).
		Joins("LEFT JOIN creator_snapshots s ON s.creator_id = c.id AND " + latestCreatorSnapshot)
	if creatorIDs != nil {
		q = q.Where("c.id IN ?", creatorIDs)
	}
	var rows []creatorLatestRow
	err := q.Order("COALESCE(s.followers_count, -1) DESC").Order("c.id ASC").Scan(&rows).Error
	return rows, err
}

// CreatorsSummary returns creators with their latest snapshot, most followed first
func (r *GormSocialReportRepository) CreatorsSummary(ctx context.Context, creatorIDs []string) ([]report.CreatorSummary, error) {
	if creatorIDs != nil && len(creatorIDs) == 0 {
		return []report.CreatorSummary{}, nil
	}
	rows, err := r.latest(ctx, creatorIDs)
	if err != nil {
		return nil, err
	}
	out := make([]report.CreatorSummary, len(rows))
	for i, row := range rows {
		out[i] = report.CreatorSummary{
			ID:                row.ID,
			Username:          row.Username,
			DisplayName:       row.DisplayName,
			ProfilePictureURL: row.ProfilePictureURL,
			Biography:         row.Biography,
			IsOwned:           row.IsOwned,
			FollowersCount:    row.FollowersCount,
			FollowsCount:      row.FollowsCount,
			MediaCount:        row.MediaCount,
			CapturedAt:        utcOrNil(row.CapturedAt),
		}
	}
	return out, nil
}

// Compare returns the latest metrics for each requested creator
func (r *GormSocialReportRepository) Compare(ctx context.Context, creatorIDs []string) ([]report.ComparisonRow, error) {
	if len(creatorIDs) == 0 {
		return []report.ComparisonRow{}, nil
	}
	rows, err := r.latest(ctx, creatorIDs)
	if err != nil {
		return nil, err
	}
	out := make([]report.ComparisonRow, len(rows))
	for i, row := range rows {
		out[i] = report.ComparisonRow{
			CreatorID:            row.ID,
			Username:             row.Username,
			DisplayName:          row.DisplayName,
			FollowersCount:       row.FollowersCount,
			MediaCount:           row.MediaCount,
			Reach28d:             row.Reach28d,
			AccountsEngaged28d:   row.AccountsEngaged28d,
			TotalInteractions28d: row.TotalInteractions28d,
		}
	}
	return out, nil
}

// AggregateStats counts creators and sums their latest follower counts
func (r *GormSocialReportRepository) AggregateStats(ctx context.Context, creatorIDs []string) (report.AggregateStats, error) {
	if creatorIDs != nil && len(creatorIDs) == 0 {
		return report.AggregateStats{}, nil
	}
	rows, err := r.latest(ctx, creatorIDs)
	if err != nil {
		return report.AggregateStats{}, err
	}
	stats := report.AggregateStats{TotalCreators: int64(len(rows))}
	for _, row := range rows {
		if row.FollowersCount != nil {
			stats.TotalFollowers += int64(*row.FollowersCount)
		}
	}
	return stats, nil
}

// CreatorOverview returns the creator with their two most recent snapshots
func (r *GormSocialReportRepository) CreatorOverview(ctx context.Context, creatorID string) (*report.CreatorOverview, error) {
	var c models.CreatorModel
	if err := r.db.WithContext(ctx).First(&c, "id = ?", creatorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, creator.ErrCreatorNotFound
		}
		return nil, err
	}

	var snaps []models.CreatorSnapshotModel
	err := r.db.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("captured_at DESC").
		Limit(2).
		Find(&snaps).Error
	if err != nil {
		return nil, err
	}

	overview := &report.CreatorOverview{Creator: c.ToDomain()}
	if len(snaps) > 0 {
		latest := snaps[0].ToDomain()
		overview.Latest = &latest
	}
	if len(snaps) > 1 {
		previous := snaps[1].ToDomain()
		overview.Previous = &previous
	}
	return overview, nil
}

// CreatorHistory returns snapshots captured since the given time, oldest first
func (r *GormSocialReportRepository) CreatorHistory(ctx context.Context, creatorID string, since time.Time) ([]report.HistoryRow, error) {
	var snaps []models.CreatorSnapshotModel
	err := r.db.WithContext(ctx).
		Where("creator_id = ? AND captured_at >= ?", creatorID, since.UTC()).
		Order("captured_at ASC").
		Find(&snaps).Error
	if err != nil {
		return nil, err
	}
	out := make([]report.HistoryRow, len(snaps))
	for i, s := range snaps {
		out[i] = report.HistoryRow{
			CapturedAt:           s.CapturedAt.UTC(),
			FollowersCount:       s.FollowersCount,
			Reach28d:             s.Reach28d,
			AccountsEngaged28d:   s.AccountsEngaged28d,
			TotalInteractions28d: s.TotalInteractions28d,
		}
	}
	return out, nil
}

// attributedRow is a media snapshot joined to its summed Mavely link metrics
type attributedRow struct {
	models.MediaSnapshotModel
	LinkRevenue    decimal.Decimal
	LinkCommission decimal.Decimal
	LinkClicks     int64
	LinkOrders     int64
}

func (row *attributedRow) toReport() report.AttributedPost {
	return report.AttributedPost{
		MediaSnapshot:  row.ToDomain(),
		LinkRevenue:    row.LinkRevenue,
		LinkCommission: row.LinkCommission,
		LinkClicks:     row.LinkClicks,
		LinkOrders:     row.LinkOrders,
	}
}

// posts selects the latest snapshot of each of a creator's posts, joined to the
// latest-window totals of the Mavely links sharing its URL
func (r *GormSocialReportRepository) posts(ctx context.Context, creatorID string) *gorm.DB {
	links := r.db.WithContext(ctx).
		Table("mavely_links AS ml").
		Select(`ml.link_url,
			SUM(ml.revenue) AS revenue, SUM(ml.commission) AS commission,
			SUM(ml.clicks) AS clicks, SUM(ml.orders) AS orders`).
		Where("ml.creator_id = ? AND ml.link_url <> ''", creatorID).
		Where(latestLinkWindow).
		Group("ml.link_url")

	return r.db.WithContext(ctx).
		Table("media_snapshots AS m").
		Select(`m.*,
			COALESCE(l.revenue, 0) AS link_revenue,
			COALESCE(l.commission, 0) AS link_commission,
			COALESCE(l.clicks, 0) AS link_clicks,
			COALESCE(l.orders, 0) AS link_orders`).
		Joins("LEFT JOIN (?) AS l ON l.link_url = m.link_url AND m.link_url <> ''", links).
		Where("m.creator_id = ?", creatorID).
		Where(latestMediaSnapshot)
}

func scanPosts(q *gorm.DB) ([]report.AttributedPost, error) {
	var rows []attributedRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]report.AttributedPost, len(rows))
	for i := range rows {
		out[i] = rows[i].toReport()
	}
	return out, nil
}

// TopPosts returns a creator's most liked posts
func (r *GormSocialReportRepository) TopPosts(ctx context.Context, creatorID string, limit int) ([]report.AttributedPost, error) {
	if limit <= 0 {
		limit = report.DefaultTopPosts
	}
	return scanPosts(r.posts(ctx, creatorID).
		Order("COALESCE(m.like_count, 0) DESC").
		Order("m.media_ig_id ASC").
		Limit(limit))
}

// RecentPosts returns a creator's newest posts
func (r *GormSocialReportRepository) RecentPosts(ctx context.Context, creatorID string, limit int) ([]report.AttributedPost, error) {
	if limit <= 0 {
		limit = report.DefaultRecentPosts
	}
	return scanPosts(r.posts(ctx, creatorID).
		Order("m.posted_at IS NULL").
		Order("m.posted_at DESC").
		Limit(limit))
}

// RecentPostsByViews returns posts published since the given time by reach, then likes
func (r *GormSocialReportRepository) RecentPostsByViews(ctx context.Context, creatorID string, since time.Time) ([]report.AttributedPost, error) {
	return scanPosts(r.posts(ctx, creatorID).
		Where("m.posted_at >= ?", since.UTC()).
		Order("COALESCE(m.reach, 0) DESC").
		Order("COALESCE(m.like_count, 0) DESC"))
}

// AttributedPosts returns posts carrying an affiliate link, highest link revenue first
func (r *GormSocialReportRepository) AttributedPosts(ctx context.Context, creatorID string) ([]report.AttributedPost, error) {
	return scanPosts(r.posts(ctx, creatorID).
		Where("m.link_url <> ''").
		Order("link_revenue DESC").
		Order("m.posted_at IS NULL").
		Order("m.posted_at DESC"))
}

func utcOrNil(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

var _ report.SocialReportRepository = (*GormSocialReportRepository)(nil)
