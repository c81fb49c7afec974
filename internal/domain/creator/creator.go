package creator

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCreatorNotFound = errors.New("creator: creator not found")
	ErrNoPlatformIDs   = errors.New("creator: no platform ids provided")
	ErrMissingIGUserID = errors.New("creator: instagram user id is required")
)

// ---------------------------------------------------------------------------
// Creator
// ---------------------------------------------------------------------------

// Creator is a tracked social account and its affiliate network identities
type Creator struct {
	ID                 string    `json:"id"`
	IGUserID           string    `json:"igUserId"`
	Username           string    `json:"username"`
	DisplayName        string    `json:"displayName,omitempty"`
	ProfilePictureURL  string    `json:"profilePictureUrl,omitempty"`
	Biography          string    `json:"biography,omitempty"`
	IsOwned            bool      `json:"isOwned"`
	MavelyCreatorID    string    `json:"mavelyCreatorId,omitempty"`
	ShopMyUserID       string    `json:"shopmyUserId,omitempty"`
	LTKPublisherID     string    `json:"ltkPublisherId,omitempty"`
	AmazonAssociateTag string    `json:"amazonAssociateTag,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
}

// Profile holds the fields refreshed from the social API on every collect
type Profile struct {
	DisplayName       string
	ProfilePictureURL string
	Biography         string
}

// PlatformIDs is a partial update of a creator's affiliate identities.
// Nil and empty fields are left unchanged.
type PlatformIDs struct {
	MavelyCreatorID    *string `json:"mavelyCreatorId,omitempty"`
	ShopMyUserID       *string `json:"shopmyUserId,omitempty"`
	LTKPublisherID     *string `json:"ltkPublisherId,omitempty"`
	AmazonAssociateTag *string `json:"amazonAssociateTag,omitempty"`
}

// IsEmpty returns true if no field carries a value
func (p PlatformIDs) IsEmpty() bool {
	return len(p.Columns()) == 0
}

// Columns returns the column/value pairs to update
func (p PlatformIDs) Columns() map[string]any {
	cols := make(map[string]any, 4)
	set := func(col string, v *string) {
		if v != nil && *v != "" {
			cols[col] = *v
		}
	}
	set("mavely_creator_id", p.MavelyCreatorID)
	set("shopmy_user_id", p.ShopMyUserID)
	set("ltk_publisher_id", p.LTKPublisherID)
	set("amazon_associate_tag", p.AmazonAssociateTag)
	return cols
}

// ---------------------------------------------------------------------------
// Snapshots
// ---------------------------------------------------------------------------

// Snapshot is a creator's account metrics captured once per day
type Snapshot struct {
	CreatorID            string    `json:"creatorId"`
	CapturedAt           time.Time `json:"capturedAt"`
	FollowersCount       *int      `json:"followersCount"`
	FollowsCount         *int      `json:"followsCount"`
	MediaCount           *int      `json:"mediaCount"`
	Reach28d             *int      `json:"reach28d"`
	AccountsEngaged28d   *int      `json:"accountsEngaged28d"`
	TotalInteractions28d *int      `json:"totalInteractions28d"`
	FollowsUnfollows28d  *int      `json:"followsUnfollows28d"`
}

// MediaSource identifies which collector produced a media snapshot.
// Each source refreshes a different set of columns on conflict.
type MediaSource string

const (
	MediaSourceOwned    MediaSource = "owned"
	MediaSourcePublic   MediaSource = "public"
	MediaSourceStory    MediaSource = "story"
	MediaSourceBackfill MediaSource = "backfill"
)

// ProductTypeStory marks stories stored as media snapshots
const ProductTypeStory = "STORY"

// ProductTypeReels marks reels, which expose watch-time insights
const ProductTypeReels = "REELS"

// MediaSnapshot is a post (or story) with its metrics on a capture day
type MediaSnapshot struct {
	CreatorID                 string     `json:"creatorId"`
	MediaIGID                 string     `json:"mediaIgId"`
	CapturedAt                time.Time  `json:"capturedAt"`
	MediaType                 string     `json:"mediaType,omitempty"`
	MediaProductType          string     `json:"mediaProductType,omitempty"`
	Caption                   string     `json:"caption,omitempty"`
	Permalink                 string     `json:"permalink,omitempty"`
	MediaURL                  string     `json:"mediaUrl,omitempty"`
	ThumbnailURL              string     `json:"thumbnailUrl,omitempty"`
	PostedAt                  *time.Time `json:"postedAt,omitempty"`
	LikeCount                 *int       `json:"likeCount"`
	CommentsCount             *int       `json:"commentsCount"`
	Reach                     *int       `json:"reach"`
	Saved                     *int       `json:"saved"`
	Shares                    *int       `json:"shares"`
	TotalInteractions         *int       `json:"totalInteractions"`
	ReelsAvgWatchTimeMs       *int       `json:"reelsAvgWatchTimeMs"`
	ReelsVideoViewTotalTimeMs *int64     `json:"reelsVideoViewTotalTimeMs"`
	ViewsCount                *int       `json:"viewsCount"`
	LinkURL                   string     `json:"linkUrl,omitempty"`
}

// IsStory returns true if the snapshot is a story
func (m MediaSnapshot) IsStory() bool {
	return m.MediaProductType == ProductTypeStory
}

// ---------------------------------------------------------------------------
// Repository
// ---------------------------------------------------------------------------

// Repository persists creators and their snapshots
type Repository interface {
	// EnsureExists inserts the creator if absent; existing rows are untouched
	EnsureExists(ctx context.Context, c Creator) error
	UpdateProfile(ctx context.Context, id string, p Profile) error
	// SetPlatformIDs returns ErrCreatorNotFound for unknown ids
	SetPlatformIDs(ctx context.Context, id string, ids PlatformIDs) (*Creator, error)
	Get(ctx context.Context, id string) (*Creator, error)
	List(ctx context.Context) ([]Creator, error)
	ListOwned(ctx context.Context) ([]Creator, error)

	// InsertSnapshotIgnore keeps the first snapshot of the day
	InsertSnapshotIgnore(ctx context.Context, s Snapshot) error
	// UpsertMedia refreshes the columns owned by source when the snapshot exists
	UpsertMedia(ctx context.Context, source MediaSource, media []MediaSnapshot) error
}
