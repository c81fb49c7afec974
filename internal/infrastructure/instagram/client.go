// Package instagram implements the Instagram Graph API port.
package instagram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/creatorhub/backend/internal/domain/integration"
	"github.com/creatorhub/backend/internal/infrastructure/vendorhttp"
)

// Graph API defaults
const (
	DefaultBaseURL     = "https://graph.facebook.com/v21.0"
	DefaultMediaLimit  = 25
	DefaultPageSize    = 50
	ProductTypeReels   = "REELS"
	errorCodeBadToken  = 190
	profileFields      = "id,name,username,profile_picture_url,biography,followers_count,follows_count,media_count"
	mediaFields        = "id,caption,media_type,media_product_type,media_url,thumbnail_url,like_count,comments_count,permalink,timestamp"
	storyFields        = "id,caption,media_type,media_url,thumbnail_url,timestamp"
	mediaMetrics       = "reach,saved,shares,total_interactions"
	reelsMetrics       = mediaMetrics + ",ig_reels_avg_watch_time,ig_reels_video_view_total_time,views"
	accountMetrics     = "reach,accounts_engaged,total_interactions,follows_and_unfollows"
	storyMetrics       = "reach,replies,navigation,views"
	discoveryMediaSize = 25
)

// ErrConfigMissingBaseURL is returned for a config without a base url
var ErrConfigMissingBaseURL = errors.New("instagram: base url is required")

// Config holds Graph API settings
type Config struct {
	BaseURL string
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrConfigMissingBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	return nil
}

// Client implements integration.InstagramClient.
// The access token is read from the token store on every call.
type Client struct {
	config    Config
	transport *vendorhttp.Transport
	tokens    integration.TokenStore
	logger    *zap.Logger
}

// NewClient creates a Graph API client
func NewClient(config Config, transport *vendorhttp.Transport, tokens integration.TokenStore, logger *zap.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{config: config, transport: transport, tokens: tokens, logger: logger}, nil
}

// graphError is the error object of a failed Graph call
type graphError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// get calls path with query plus the access token and decodes the answer into out
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	token, err := c.tokens.Get(ctx)
	if err != nil {
		return fmt.Errorf("instagram token: %w", err)
	}
	if token == "" {
		return fmt.Errorf("%w: instagram access token", integration.ErrCredentialsMissing)
	}
	return c.getWithToken(ctx, path, query, token, out)
}

func (c *Client) getWithToken(ctx context.Context, path string, query url.Values, token string, out any) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("access_token", token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("instagram: failed to create request: %w", err)
	}

	resp, err := c.transport.Do(req)
	if err != nil {
		return err
	}
	if statusErr := resp.Err(); statusErr != nil {
		var ge graphError
		if resp.Decode(&ge) == nil && ge.Error.Message != "" {
			if ge.Error.Code == errorCodeBadToken {
				return fmt.Errorf("%w: %s", integration.ErrPlatformTokenExpired, ge.Error.Message)
			}
			return fmt.Errorf("instagram %s: %w: %s", path, statusErr, ge.Error.Message)
		}
		return fmt.Errorf("instagram %s: %w", path, statusErr)
	}
	return resp.Decode(out)
}

// OwnedProfile fetches the profile of an account we hold a token for
func (c *Client) OwnedProfile(ctx context.Context, igUserID string) (*integration.IGProfile, error) {
	var p integration.IGProfile
	if err := c.get(ctx, "/"+igUserID, url.Values{"fields": {profileFields}}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

type mediaEnvelope struct {
	Data   []integration.IGMedia `json:"data"`
	Paging struct {
		Cursors struct {
			After string `json:"after"`
		} `json:"cursors"`
		Next string `json:"next"`
	} `json:"paging"`
}

// OwnedMedia fetches the most recent posts
func (c *Client) OwnedMedia(ctx context.Context, igUserID string, limit int) ([]integration.IGMedia, error) {
	if limit <= 0 {
		limit = DefaultMediaLimit
	}
	var env mediaEnvelope
	q := url.Values{"fields": {mediaFields}, "limit": {strconv.Itoa(limit)}}
	if err := c.get(ctx, "/"+igUserID+"/media", q, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		env.Data = []integration.IGMedia{}
	}
	return env.Data, nil
}

// MediaPage fetches one page of the media edge; After is empty on the last page
func (c *Client) MediaPage(ctx context.Context, igUserID, after string, pageSize int) (*integration.IGMediaPage, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	q := url.Values{"fields": {mediaFields}, "limit": {strconv.Itoa(pageSize)}}
	if after != "" {
		q.Set("after", after)
	}
	var env mediaEnvelope
	if err := c.get(ctx, "/"+igUserID+"/media", q, &env); err != nil {
		return nil, err
	}
	page := &integration.IGMediaPage{Data: env.Data}
	if env.Paging.Next != "" {
		page.After = env.Paging.Cursors.After
	}
	return page, nil
}

type insightValues struct {
	Data []struct {
		Name   string `json:"name"`
		Values []struct {
			Value any `json:"value"`
		} `json:"values"`
		TotalValue *struct {
			Value any `json:"value"`
		} `json:"total_value"`
	} `json:"data"`
}

// values flattens insight metrics by name; total_value wins over the first period value
func (iv insightValues) values() map[string]int64 {
	out := make(map[string]int64, len(iv.Data))
	for _, m := range iv.Data {
		var raw any
		switch {
		case m.TotalValue != nil:
			raw = m.TotalValue.Value
		case len(m.Values) > 0:
			raw = m.Values[0].Value
		default:
			out[m.Name] = 0
			continue
		}
		out[m.Name] = toInt64(raw)
	}
	return out
}

func toInt64(v any) int64 {
	n, ok := v.(json.Number)
	if !ok {
		return 0
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return int64(f)
	}
	return 0
}

func intPtr(m map[string]int64, key string) *int {
	v, ok := m[key]
	if !ok {
		return nil
	}
	i := int(v)
	return &i
}

func int64Ptr(m map[string]int64, key string) *int64 {
	v, ok := m[key]
	if !ok {
		return nil
	}
	return &v
}

// MediaInsights fetches per-post insights. Reels add watch-time and view metrics.
// Failures are logged and yield empty insights.
func (c *Client) MediaInsights(ctx context.Context, mediaID, productType string) integration.IGMediaInsights {
	metrics := mediaMetrics
	if strings.EqualFold(productType, ProductTypeReels) {
		metrics = reelsMetrics
	}
	var iv insightValues
	if err := c.get(ctx, "/"+mediaID+"/insights", url.Values{"metric": {metrics}}, &iv); err != nil {
		c.logger.Debug("media insights unavailable", zap.String("media_id", mediaID), zap.Error(err))
		return integration.IGMediaInsights{}
	}
	v := iv.values()
	return integration.IGMediaInsights{
		Reach:                   intPtr(v, "reach"),
		Saved:                   intPtr(v, "saved"),
		Shares:                  intPtr(v, "shares"),
		TotalInteractions:       intPtr(v, "total_interactions"),
		ReelsAvgWatchTime:       intPtr(v, "ig_reels_avg_watch_time"),
		ReelsVideoViewTotalTime: int64Ptr(v, "ig_reels_video_view_total_time"),
		Views:                   intPtr(v, "views"),
	}
}

// AccountInsights fetches daily account totals; failures yield empty insights
func (c *Client) AccountInsights(ctx context.Context, igUserID string) integration.IGAccountInsights {
	q := url.Values{
		"metric":      {accountMetrics},
		"period":      {"day"},
		"metric_type": {"total_value"},
	}
	var iv insightValues
	if err := c.get(ctx, "/"+igUserID+"/insights", q, &iv); err != nil {
		c.logger.Debug("account insights unavailable", zap.String("ig_user_id", igUserID), zap.Error(err))
		return integration.IGAccountInsights{}
	}
	v := iv.values()
	return integration.IGAccountInsights{
		Reach:               intPtr(v, "reach"),
		AccountsEngaged:     intPtr(v, "accounts_engaged"),
		TotalInteractions:   intPtr(v, "total_interactions"),
		FollowsAndUnfollows: intPtr(v, "follows_and_unfollows"),
	}
}

// BusinessDiscovery reads a public account through our business account
func (c *Client) BusinessDiscovery(ctx context.Context, ourIGUserID, username string) (*integration.IGDiscovery, error) {
	fields := fmt.Sprintf(
		"business_discovery.username(%s){username,name,profile_picture_url,biography,followers_count,follows_count,media_count,media.limit(%d){%s}}",
		username, discoveryMediaSize, mediaFields)
	var env struct {
		BD *struct {
			integration.IGProfile
			Media *struct {
				Data []integration.IGMedia `json:"data"`
			} `json:"media"`
		} `json:"business_discovery"`
	}
	if err := c.get(ctx, "/"+ourIGUserID, url.Values{"fields": {fields}}, &env); err != nil {
		return nil, err
	}
	if env.BD == nil {
		return nil, fmt.Errorf("%w: business_discovery missing for %s", integration.ErrPlatformInvalidResponse, username)
	}
	out := &integration.IGDiscovery{Profile: env.BD.IGProfile, Media: []integration.IGMedia{}}
	// discovery profiles carry no id of their own
	out.Profile.ID = ""
	if env.BD.Media != nil && env.BD.Media.Data != nil {
		out.Media = env.BD.Media.Data
	}
	return out, nil
}

// Stories fetches the account's active stories
func (c *Client) Stories(ctx context.Context, igUserID string) ([]integration.IGStory, error) {
	var env struct {
		Data []integration.IGStory `json:"data"`
	}
	if err := c.get(ctx, "/"+igUserID+"/stories", url.Values{"fields": {storyFields}}, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		env.Data = []integration.IGStory{}
	}
	return env.Data, nil
}

// StoryInsights fetches story insights. Very recent stories often have none yet,
// so callers treat an error as empty insights.
func (c *Client) StoryInsights(ctx context.Context, storyID string) (integration.IGStoryInsights, error) {
	var iv insightValues
	if err := c.get(ctx, "/"+storyID+"/insights", url.Values{"metric": {storyMetrics}}, &iv); err != nil {
		return integration.IGStoryInsights{}, err
	}
	v := iv.values()
	return integration.IGStoryInsights{
		Reach:      intPtr(v, "reach"),
		Replies:    intPtr(v, "replies"),
		Navigation: intPtr(v, "navigation"),
		Views:      intPtr(v, "views"),
	}, nil
}

// ExchangeToken trades the current long-lived token for a fresh one
func (c *Client) ExchangeToken(ctx context.Context, appID, appSecret, current string) (string, error) {
	if appID == "" || appSecret == "" || current == "" {
		return "", integration.ErrCredentialsMissing
	}
	q := url.Values{
		"grant_type":        {"fb_exchange_token"},
		"client_id":         {appID},
		"client_secret":     {appSecret},
		"fb_exchange_token": {current},
	}
	var out struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := c.getWithToken(ctx, "/oauth/access_token", q, current, &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("%w: exchange returned no access_token", integration.ErrPlatformInvalidResponse)
	}
	return out.AccessToken, nil
}

var _ integration.InstagramClient = (*Client)(nil)
