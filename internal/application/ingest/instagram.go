package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/creatorhub/backend/internal/domain/creator"
	"github.com/creatorhub/backend/internal/domain/earnings"
	"github.com/creatorhub/backend/internal/domain/integration"
	"github.com/creatorhub/backend/internal/infrastructure/logger"
)

const (
	platformInstagram = "instagram"

	defaultMediaLimit       = 25
	defaultBackfillPageSize = 50
	defaultBackfillPace     = 200 * time.Millisecond
)

// ErrNoIGUserID is returned when a backfill targets a creator without an Instagram user id
var ErrNoIGUserID = errors.New("ingest: creator has no instagram user id")

// InstagramSettings configures the Instagram jobs
type InstagramSettings struct {
	// BusinessAccountID is our account, used for business discovery of public creators
	BusinessAccountID string
	MediaLimit        int
	AppID             string
	AppSecret         string
	BackfillPageSize  int
	BackfillPace      time.Duration
}

func (s *InstagramSettings) setDefaults() {
	if s.MediaLimit <= 0 {
		s.MediaLimit = defaultMediaLimit
	}
	if s.BackfillPageSize <= 0 {
		s.BackfillPageSize = defaultBackfillPageSize
	}
	if s.BackfillPace <= 0 {
		s.BackfillPace = defaultBackfillPace
	}
}

// InstagramService collects profiles, posts, stories and account insights
type InstagramService struct {
	Base
	client   integration.InstagramClient
	creators creator.Repository
	roster   []creator.Creator
	tokens   integration.TokenStore
	settings InstagramSettings
}

// NewInstagramService creates a new InstagramService for the given roster
func NewInstagramService(
	client integration.InstagramClient,
	creators creator.Repository,
	roster []creator.Creator,
	tokens integration.TokenStore,
	settings InstagramSettings,
	opts ...Option,
) *InstagramService {
	settings.setDefaults()
	return &InstagramService{
		Base:     newBase(opts),
		client:   client,
		creators: creators,
		roster:   roster,
		tokens:   tokens,
		settings: settings,
	}
}

// ---------------------------------------------------------------------------
// Collect
// ---------------------------------------------------------------------------

// Collect refreshes every roster creator. Owned accounts are read through their
// own token; the rest through business discovery.
func (s *InstagramService) Collect(ctx context.Context) (*RunReport, error) {
	r := s.start(ctx, JobInstagramCollect)

	for _, c := range s.roster {
		cctx := logger.WithCreatorID(r.ctx, c.ID)
		if err := s.creators.EnsureExists(cctx, c); err != nil {
			r.add(errorResult(c.ID, err))
			continue
		}
		switch {
		case c.IsOwned && c.IGUserID != "":
			r.add(s.collectOwned(cctx, r, c))
		case c.IsOwned:
			r.add(skippedResult(c.ID, "no igUserId"))
		default:
			r.add(s.collectPublic(cctx, r, c))
		}
	}
	return r.finish(nil)
}

func (s *InstagramService) collectOwned(ctx context.Context, r *run, c creator.Creator) CreatorResult {
	var (
		profile  *integration.IGProfile
		media    []integration.IGMedia
		insights integration.IGAccountInsights
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile, err = s.client.OwnedProfile(gctx, c.IGUserID)
		return err
	})
	g.Go(func() error {
		var err error
		media, err = s.client.OwnedMedia(gctx, c.IGUserID, s.settings.MediaLimit)
		return err
	})
	g.Go(func() error {
		insights = s.client.AccountInsights(gctx, c.IGUserID)
		return nil
	})
	if err := g.Wait(); err != nil {
		return errorResult(c.ID, err)
	}

	now := s.now()
	capturedAt := earnings.Date(now)

	if err := s.creators.UpdateProfile(ctx, c.ID, profileOf(c, profile)); err != nil {
		return errorResult(c.ID, err)
	}
	if err := s.creators.InsertSnapshotIgnore(ctx, creator.Snapshot{
		CreatorID:            c.ID,
		CapturedAt:           capturedAt,
		FollowersCount:       profile.FollowersCount,
		FollowsCount:         profile.FollowsCount,
		MediaCount:           profile.MediaCount,
		Reach28d:             insights.Reach,
		AccountsEngaged28d:   insights.AccountsEngaged,
		TotalInteractions28d: insights.TotalInteractions,
		FollowsUnfollows28d:  insights.FollowsAndUnfollows,
	}); err != nil {
		return errorResult(c.ID, err)
	}

	snapshots := make([]creator.MediaSnapshot, 0, len(media))
	mediaInsights := make(map[string]integration.IGMediaInsights, len(media))
	for _, m := range media {
		ins := s.client.MediaInsights(ctx, m.ID, m.MediaProductType)
		mediaInsights[m.ID] = ins
		snap := mediaSnapshot(c.ID, capturedAt, m)
		applyInsights(&snap, ins)
		snapshots = append(snapshots, snap)
	}

	r.archive(ctx, platformInstagram, c.ID, map[string]any{
		"profile":         profile,
		"accountInsights": insights,
		"media":           media,
		"mediaInsights":   mediaInsights,
	})

	if err := s.creators.UpsertMedia(ctx, creator.MediaSourceOwned, snapshots); err != nil {
		return errorResult(c.ID, err)
	}
	return okResult(c.ID, map[string]int{"media": len(snapshots)})
}

func (s *InstagramService) collectPublic(ctx context.Context, r *run, c creator.Creator) CreatorResult {
	if s.settings.BusinessAccountID == "" {
		return errorResult(c.ID, fmt.Errorf("%w: business account id", integration.ErrCredentialsMissing))
	}
	d, err := s.client.BusinessDiscovery(ctx, s.settings.BusinessAccountID, c.Username)
	if err != nil {
		return errorResult(c.ID, err)
	}
	r.archive(ctx, platformInstagram, c.ID, d)

	capturedAt := earnings.Date(s.now())
	if err := s.creators.UpdateProfile(ctx, c.ID, profileOf(c, &d.Profile)); err != nil {
		return errorResult(c.ID, err)
	}
	if err := s.creators.InsertSnapshotIgnore(ctx, creator.Snapshot{
		CreatorID:      c.ID,
		CapturedAt:     capturedAt,
		FollowersCount: d.Profile.FollowersCount,
		MediaCount:     d.Profile.MediaCount,
	}); err != nil {
		return errorResult(c.ID, err)
	}

	snapshots := make([]creator.MediaSnapshot, 0, len(d.Media))
	for _, m := range d.Media {
		snapshots = append(snapshots, mediaSnapshot(c.ID, capturedAt, m))
	}
	if err := s.creators.UpsertMedia(ctx, creator.MediaSourcePublic, snapshots); err != nil {
		return errorResult(c.ID, err)
	}

	res := okResult(c.ID, map[string]int{"media": len(snapshots)})
	res.Status = StatusOKPublic
	return res
}

// ---------------------------------------------------------------------------
// Stories
// ---------------------------------------------------------------------------

// Stories stores the active stories of owned creators as STORY media
func (s *InstagramService) Stories(ctx context.Context) (*RunReport, error) {
	r := s.start(ctx, JobInstagramStories)

	for _, c := range s.roster {
		if !c.IsOwned {
			continue
		}
		if c.IGUserID == "" {
			r.add(skippedResult(c.ID, "no igUserId"))
			continue
		}
		r.add(s.collectStories(logger.WithCreatorID(r.ctx, c.ID), r, c))
	}
	return r.finish(nil)
}

func (s *InstagramService) collectStories(ctx context.Context, r *run, c creator.Creator) CreatorResult {
	stories, err := s.client.Stories(ctx, c.IGUserID)
	if err != nil {
		return errorResult(c.ID, err)
	}

	capturedAt := earnings.Date(s.now())
	snapshots := make([]creator.MediaSnapshot, 0, len(stories))
	storyInsights := make(map[string]integration.IGStoryInsights, len(stories))
	for _, st := range stories {
		snap := creator.MediaSnapshot{
			CreatorID:        c.ID,
			MediaIGID:        st.ID,
			CapturedAt:       capturedAt,
			MediaType:        st.MediaType,
			MediaProductType: creator.ProductTypeStory,
			Caption:          st.Caption,
			MediaURL:         st.MediaURL,
			ThumbnailURL:     st.ThumbnailURL,
			PostedAt:         postedAt(st.Timestamp),
			LinkURL:          earnings.ExtractAffiliateLink(st.Caption),
		}
		ins, err := s.client.StoryInsights(ctx, st.ID)
		if err != nil {
			r.log.Debug("Story insights unavailable", zap.String("story_id", st.ID), zap.Error(err))
		} else {
			storyInsights[st.ID] = ins
			snap.Reach = ins.Reach
			snap.Shares = ins.Navigation
			snap.TotalInteractions = ins.Replies
			snap.ViewsCount = ins.Views
		}
		snapshots = append(snapshots, snap)
	}

	r.archive(ctx, platformInstagram, c.ID, map[string]any{
		"stories":  stories,
		"insights": storyInsights,
	})

	if err := s.creators.UpsertMedia(ctx, creator.MediaSourceStory, snapshots); err != nil {
		return errorResult(c.ID, err)
	}
	return okResult(c.ID, map[string]int{"stories": len(snapshots)})
}

// ---------------------------------------------------------------------------
// Token refresh
// ---------------------------------------------------------------------------

// RefreshToken exchanges the current long-lived token for a fresh one
func (s *InstagramService) RefreshToken(ctx context.Context) (*RunReport, error) {
	r := s.start(ctx, JobTokenRefresh)

	current, err := s.tokens.Get(r.ctx)
	if err != nil {
		return r.finish(fmt.Errorf("failed to read instagram token: %w", err))
	}
	if current == "" {
		return r.finish(fmt.Errorf("%w: instagram access token", integration.ErrCredentialsMissing))
	}

	fresh, err := s.client.ExchangeToken(r.ctx, s.settings.AppID, s.settings.AppSecret, current)
	if err != nil {
		return r.finish(err)
	}
	if err := s.tokens.Set(r.ctx, fresh); err != nil {
		return r.finish(fmt.Errorf("failed to store instagram token: %w", err))
	}

	r.add(CreatorResult{Status: StatusOK, Counts: map[string]int{"tokenRefreshed": 1}})
	return r.finish(nil)
}

// ---------------------------------------------------------------------------
// Backfill
// ---------------------------------------------------------------------------

// Backfill pages through a creator's full media history. limit <= 0 fetches everything.
func (s *InstagramService) Backfill(ctx context.Context, creatorID string, limit int) (*RunReport, error) {
	r := s.start(ctx, JobIGBackfill)
	ctx = logger.WithCreatorID(r.ctx, creatorID)

	c, err := s.creators.Get(ctx, creatorID)
	if err != nil {
		return r.finish(err)
	}
	if c.IGUserID == "" {
		return r.finish(fmt.Errorf("%w: %s", ErrNoIGUserID, creatorID))
	}

	limiter := rate.NewLimiter(rate.Every(s.settings.BackfillPace), 1)
	capturedAt := earnings.Date(s.now())

	var (
		after    string
		fetched  int
		upserted int
	)
	for {
		if err := limiter.Wait(ctx); err != nil {
			return r.finish(err)
		}

		pageSize := s.settings.BackfillPageSize
		if limit > 0 && limit-fetched < pageSize {
			pageSize = limit - fetched
		}
		page, err := s.client.MediaPage(ctx, c.IGUserID, after, pageSize)
		if err != nil {
			r.add(errorResult(c.ID, err))
			break
		}
		fetched += len(page.Data)

		snapshots := make([]creator.MediaSnapshot, 0, len(page.Data))
		for _, m := range page.Data {
			snapshots = append(snapshots, mediaSnapshot(c.ID, capturedAt, m))
		}
		if err := s.creators.UpsertMedia(ctx, creator.MediaSourceBackfill, snapshots); err != nil {
			r.add(errorResult(c.ID, err))
			break
		}
		upserted += len(snapshots)

		r.log.Debug("Backfill page stored",
			zap.Int("page_size", len(page.Data)),
			zap.Int("total_fetched", fetched))

		if page.After == "" || len(page.Data) == 0 || (limit > 0 && fetched >= limit) {
			break
		}
		after = page.After
	}

	if r.report.Errors == 0 {
		r.add(okResult(c.ID, map[string]int{"upserted": upserted, "totalFetched": fetched}))
	}
	return r.finish(nil)
}

// ---------------------------------------------------------------------------
// Mapping
// ---------------------------------------------------------------------------

func profileOf(c creator.Creator, p *integration.IGProfile) creator.Profile {
	name := p.Name
	if name == "" {
		name = c.DisplayName
	}
	return creator.Profile{
		DisplayName:       name,
		ProfilePictureURL: p.ProfilePictureURL,
		Biography:         p.Biography,
	}
}

func mediaSnapshot(creatorID string, capturedAt time.Time, m integration.IGMedia) creator.MediaSnapshot {
	return creator.MediaSnapshot{
		CreatorID:        creatorID,
		MediaIGID:        m.ID,
		CapturedAt:       capturedAt,
		MediaType:        m.MediaType,
		MediaProductType: m.MediaProductType,
		Caption:          m.Caption,
		Permalink:        m.Permalink,
		MediaURL:         m.MediaURL,
		ThumbnailURL:     m.ThumbnailURL,
		PostedAt:         postedAt(m.Timestamp),
		LikeCount:        m.LikeCount,
		CommentsCount:    m.CommentsCount,
		LinkURL:          earnings.ExtractAffiliateLink(m.Caption),
	}
}

func applyInsights(snap *creator.MediaSnapshot, ins integration.IGMediaInsights) {
	snap.Reach = ins.Reach
	snap.Saved = ins.Saved
	snap.Shares = ins.Shares
	snap.TotalInteractions = ins.TotalInteractions
	snap.ReelsAvgWatchTimeMs = ins.ReelsAvgWatchTime
	snap.ReelsVideoViewTotalTimeMs = ins.ReelsVideoViewTotalTime
	snap.ViewsCount = ins.Views
}

func postedAt(ts string) *time.Time {
	t, ok := earnings.ParseTime(ts)
	if !ok {
		return nil
	}
	return &t
}
