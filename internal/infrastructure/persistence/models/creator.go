package models

import (
	"time"

	"github.com/creatorhub/backend/internal/domain/creator"
)

// CreatorModel is a tracked creator
type CreatorModel struct {
	ID                 string    `gorm:"type:varchar(64);primaryKey"`
	IGUserID           string    `gorm:"column:ig_user_id;type:varchar(64);not null;default:''"`
	Username           string    `gorm:"type:varchar(255);not null;default:''"`
	DisplayName        string    `gorm:"type:varchar(255);not null;default:''"`
	ProfilePictureURL  string    `gorm:"type:text;not null;default:''"`
	Biography          string    `gorm:"type:text;not null;default:''"`
	IsOwned            bool      `gorm:"not null;default:false"`
	MavelyCreatorID    string    `gorm:"type:varchar(255);not null;default:''"`
	ShopMyUserID       string    `gorm:"column:shopmy_user_id;type:varchar(255);not null;default:''"`
	LTKPublisherID     string    `gorm:"column:ltk_publisher_id;type:varchar(255);not null;default:''"`
	AmazonAssociateTag string    `gorm:"type:varchar(255);not null;default:''"`
	CreatedAt          time.Time `gorm:"not null"`
	UpdatedAt          time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CreatorModel) TableName() string {
	return "creators"
}

// ToDomain converts the row to a domain Creator
func (m *CreatorModel) ToDomain() *creator.Creator {
	return &creator.Creator{
		ID:                 m.ID,
		IGUserID:           m.IGUserID,
		Username:           m.Username,
		DisplayName:        m.DisplayName,
		ProfilePictureURL:  m.ProfilePictureURL,
		Biography:          m.Biography,
		IsOwned:            m.IsOwned,
		MavelyCreatorID:    m.MavelyCreatorID,
		ShopMyUserID:       m.ShopMyUserID,
		LTKPublisherID:     m.LTKPublisherID,
		AmazonAssociateTag: m.AmazonAssociateTag,
		CreatedAt:          m.CreatedAt,
	}
}

// CreatorModelFromDomain maps a domain Creator
func CreatorModelFromDomain(c creator.Creator) *CreatorModel {
	return &CreatorModel{
		ID:                 c.ID,
		IGUserID:           c.IGUserID,
		Username:           c.Username,
		DisplayName:        c.DisplayName,
		ProfilePictureURL:  c.ProfilePictureURL,
		Biography:          c.Biography,
		IsOwned:            c.IsOwned,
		MavelyCreatorID:    c.MavelyCreatorID,
		ShopMyUserID:       c.ShopMyUserID,
		LTKPublisherID:     c.LTKPublisherID,
		AmazonAssociateTag: c.AmazonAssociateTag,
	}
}

// CreatorSnapshotModel is one day's account metrics
type CreatorSnapshotModel struct {
	SerialModel
	CreatorID            string    `gorm:"type:varchar(64);not null;uniqueIndex:uq_creator_snapshots_day,priority:1"`
	CapturedAt           time.Time `gorm:"type:date;not null;uniqueIndex:uq_creator_snapshots_day,priority:2"`
	FollowersCount       *int
	FollowsCount         *int
	MediaCount           *int
	Reach28d             *int `gorm:"column:reach_28d"`
	AccountsEngaged28d   *int `gorm:"column:accounts_engaged_28d"`
	TotalInteractions28d *int `gorm:"column:total_interactions_28d"`
	FollowsUnfollows28d  *int `gorm:"column:follows_unfollows_28d"`
}

// TableName returns the table name for GORM
func (CreatorSnapshotModel) TableName() string {
	return "creator_snapshots"
}

// CreatorSnapshotModelFromDomain maps a snapshot
func CreatorSnapshotModelFromDomain(s creator.Snapshot) *CreatorSnapshotModel {
	return &CreatorSnapshotModel{
		CreatorID:            s.CreatorID,
		CapturedAt:           utc(s.CapturedAt),
		FollowersCount:       s.FollowersCount,
		FollowsCount:         s.FollowsCount,
		MediaCount:           s.MediaCount,
		Reach28d:             s.Reach28d,
		AccountsEngaged28d:   s.AccountsEngaged28d,
		TotalInteractions28d: s.TotalInteractions28d,
		FollowsUnfollows28d:  s.FollowsUnfollows28d,
	}
}

// ToDomain converts the row to a domain Snapshot
func (m *CreatorSnapshotModel) ToDomain() creator.Snapshot {
	return creator.Snapshot{
		CreatorID:            m.CreatorID,
		CapturedAt:           m.CapturedAt,
		FollowersCount:       m.FollowersCount,
		FollowsCount:         m.FollowsCount,
		MediaCount:           m.MediaCount,
		Reach28d:             m.Reach28d,
		AccountsEngaged28d:   m.AccountsEngaged28d,
		TotalInteractions28d: m.TotalInteractions28d,
		FollowsUnfollows28d:  m.FollowsUnfollows28d,
	}
}

// MediaSnapshotModel is a post or story captured on a day
type MediaSnapshotModel struct {
	SerialModel
	CreatorID                 string    `gorm:"type:varchar(64);not null;index"`
	MediaIGID                 string    `gorm:"column:media_ig_id;type:varchar(64);not null;uniqueIndex:uq_media_snapshots_day,priority:1"`
	CapturedAt                time.Time `gorm:"type:date;not null;uniqueIndex:uq_media_snapshots_day,priority:2"`
	MediaType                 string    `gorm:"type:varchar(32);not null;default:''"`
	MediaProductType          string    `gorm:"type:varchar(32);not null;default:''"`
	Caption                   string    `gorm:"type:text;not null;default:''"`
	Permalink                 string    `gorm:"type:text;not null;default:''"`
	MediaURL                  string    `gorm:"type:text;not null;default:''"`
	ThumbnailURL              string    `gorm:"type:text;not null;default:''"`
	PostedAt                  *time.Time
	LikeCount                 *int
	CommentsCount             *int
	Reach                     *int
	Saved                     *int
	Shares                    *int
	TotalInteractions         *int
	ReelsAvgWatchTimeMs       *int
	ReelsVideoViewTotalTimeMs *int64
	ViewsCount                *int
	LinkURL                   string `gorm:"type:text;not null;default:'';index"`
}

// TableName returns the table name for GORM
func (MediaSnapshotModel) TableName() string {
	return "media_snapshots"
}

// MediaSnapshotModelFromDomain maps a media snapshot
func MediaSnapshotModelFromDomain(s creator.MediaSnapshot) *MediaSnapshotModel {
	return &MediaSnapshotModel{
		CreatorID:                 s.CreatorID,
		MediaIGID:                 s.MediaIGID,
		CapturedAt:                utc(s.CapturedAt),
		MediaType:                 s.MediaType,
		MediaProductType:          s.MediaProductType,
		Caption:                   s.Caption,
		Permalink:                 s.Permalink,
		MediaURL:                  s.MediaURL,
		ThumbnailURL:              s.ThumbnailURL,
		PostedAt:                  utcPtr(s.PostedAt),
		LikeCount:                 s.LikeCount,
		CommentsCount:             s.CommentsCount,
		Reach:                     s.Reach,
		Saved:                     s.Saved,
		Shares:                    s.Shares,
		TotalInteractions:         s.TotalInteractions,
		ReelsAvgWatchTimeMs:       s.ReelsAvgWatchTimeMs,
		ReelsVideoViewTotalTimeMs: s.ReelsVideoViewTotalTimeMs,
		ViewsCount:                s.ViewsCount,
		LinkURL:                   s.LinkURL,
	}
}

// ToDomain converts the row to a domain MediaSnapshot
func (m *MediaSnapshotModel) ToDomain() creator.MediaSnapshot {
	return creator.MediaSnapshot{
		CreatorID:                 m.CreatorID,
		MediaIGID:                 m.MediaIGID,
		CapturedAt:                m.CapturedAt,
		MediaType:                 m.MediaType,
		MediaProductType:          m.MediaProductType,
		Caption:                   m.Caption,
		Permalink:                 m.Permalink,
		MediaURL:                  m.MediaURL,
		ThumbnailURL:              m.ThumbnailURL,
		PostedAt:                  m.PostedAt,
		LikeCount:                 m.LikeCount,
		CommentsCount:             m.CommentsCount,
		Reach:                     m.Reach,
		Saved:                     m.Saved,
		Shares:                    m.Shares,
		TotalInteractions:         m.TotalInteractions,
		ReelsAvgWatchTimeMs:       m.ReelsAvgWatchTimeMs,
		ReelsVideoViewTotalTimeMs: m.ReelsVideoViewTotalTimeMs,
		ViewsCount:                m.ViewsCount,
		LinkURL:                   m.LinkURL,
	}
}
