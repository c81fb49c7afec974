package integration

import "context"

// IGProfile is an Instagram account profile
type IGProfile struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Username          string `json:"username"`
	ProfilePictureURL string `json:"profile_picture_url"`
	Biography         string `json:"biography"`
	FollowersCount    *int   `json:"followers_count"`
	FollowsCount      *int   `json:"follows_count"`
	MediaCount        *int   `json:"media_count"`
}

// IGMedia is a post as returned by the media edge
type IGMedia struct {
	ID               string `json:"id"`
	Caption          string `json:"caption"`
	MediaType        string `json:"media_type"`
	MediaProductType string `json:"media_product_type"`
	MediaURL         string `json:"media_url"`
	ThumbnailURL     string `json:"thumbnail_url"`
	LikeCount        *int   `json:"like_count"`
	CommentsCount    *int   `json:"comments_count"`
	Permalink        string `json:"permalink"`
	Timestamp        string `json:"timestamp"`
}

// IGMediaPage is one page of the media edge
type IGMediaPage struct {
	Data []IGMedia
	// After is the next cursor, empty on the last page
	After string
}

// IGMediaInsights are per-post insights; nil means the metric was not returned
type IGMediaInsights struct {
	Reach                   *int
	Saved                   *int
	Shares                  *int
	TotalInteractions       *int
	ReelsAvgWatchTime       *int
	ReelsVideoViewTotalTime *int64
	Views                   *int
}

// IGAccountInsights are account-level totals
type IGAccountInsights struct {
	Reach               *int
	AccountsEngaged     *int
	TotalInteractions   *int
	FollowsAndUnfollows *int
}

// IGStory is an active story
type IGStory struct {
	ID           string `json:"id"`
	Caption      string `json:"caption"`
	MediaType    string `json:"media_type"`
	MediaURL     string `json:"media_url"`
	ThumbnailURL string `json:"thumbnail_url"`
	Timestamp    string `json:"timestamp"`
}

// IGStoryInsights are story insights; nil means the metric was not returned
type IGStoryInsights struct {
	Reach      *int
	Replies    *int
	Navigation *int
	Views      *int
}

// IGDiscovery is the business discovery view of a public account
type IGDiscovery struct {
	Profile IGProfile
	Media   []IGMedia
}

// InstagramClient is the port for the Instagram Graph API.
// Insight calls never fail; they return empty insights instead.
type InstagramClient interface {
	OwnedProfile(ctx context.Context, igUserID string) (*IGProfile, error)
	OwnedMedia(ctx context.Context, igUserID string, limit int) ([]IGMedia, error)
	MediaPage(ctx context.Context, igUserID, after string, pageSize int) (*IGMediaPage, error)
	MediaInsights(ctx context.Context, mediaID, productType string) IGMediaInsights
	AccountInsights(ctx context.Context, igUserID string) IGAccountInsights
	BusinessDiscovery(ctx context.Context, ourIGUserID, username string) (*IGDiscovery, error)
	Stories(ctx context.Context, igUserID string) ([]IGStory, error)
	StoryInsights(ctx context.Context, storyID string) (IGStoryInsights, error)
	ExchangeToken(ctx context.Context, appID, appSecret, current string) (string, error)
}

// TokenStore holds the current long-lived Instagram access token
type TokenStore interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
}
