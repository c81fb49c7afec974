package report

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/creatorhub/backend/internal/domain/creator"
	"github.com/creatorhub/backend/internal/domain/report"
)

func TestSocialService_Creators(t *testing.T) {
	ctx := context.Background()
	repo := new(MockSocialReportRepository)
	repo.On("CreatorsSummary", ctx, []string(nil)).Return([]report.CreatorSummary{{ID: "alice"}, {ID: "bob"}}, nil)
	repo.On("CreatorsSummary", ctx, []string{"alice"}).Return([]report.CreatorSummary{{ID: "alice"}}, nil)

	svc := NewSocialService(repo, WithClock(fixedClock))

	all, err := svc.Creators(ctx, internalRole)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	own, err := svc.Creators(ctx, creatorRole)
	require.NoError(t, err)
	assert.Len(t, own, 1)
	repo.AssertExpectations(t)
}

func TestSocialService_Stats(t *testing.T) {
	ctx := context.Background()
	repo := new(MockSocialReportRepository)
	repo.On("AggregateStats", ctx, []string{"alice", "bob"}).Return(report.AggregateStats{TotalCreators: 2, TotalFollowers: 1500}, nil)

	got, err := NewSocialService(repo).Stats(ctx, clientRole)
	require.NoError(t, err)
	assert.EqualValues(t, 1500, got.TotalFollowers)
}

func TestSocialService_Compare(t *testing.T) {
	ctx := context.Background()
	repo := new(MockSocialReportRepository)
	repo.On("Compare", ctx, []string{"alice", "bob"}).Return([]report.ComparisonRow{{CreatorID: "alice"}, {CreatorID: "bob"}}, nil)

	got, err := NewSocialService(repo).Compare(ctx, clientRole, []string{"alice", "", "carol", "bob"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	repo.AssertExpectations(t)
}

func TestSocialService_CreatorScoped(t *testing.T) {
	ctx := context.Background()

	t.Run("overview", func(t *testing.T) {
		repo := new(MockSocialReportRepository)
		overview := &report.CreatorOverview{Creator: &creator.Creator{ID: "alice"}}
		repo.On("CreatorOverview", ctx, "alice").Return(overview, nil)

		got, err := NewSocialService(repo).Overview(ctx, creatorRole, "alice")
		require.NoError(t, err)
		assert.Same(t, overview, got)
	})

	t.Run("history window", func(t *testing.T) {
		repo := new(MockSocialReportRepository)
		repo.On("CreatorHistory", ctx, "alice", testNow.AddDate(0, 0, -30)).Return([]report.HistoryRow{}, nil)

		_, err := NewSocialService(repo, WithClock(fixedClock)).History(ctx, internalRole, "alice", 0)
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("post defaults", func(t *testing.T) {
		repo := new(MockSocialReportRepository)
		repo.On("TopPosts", ctx, "alice", report.DefaultTopPosts).Return([]report.AttributedPost{}, nil)
		repo.On("RecentPosts", ctx, "alice", report.DefaultRecentPosts).Return([]report.AttributedPost{}, nil)
		repo.On("RecentPostsByViews", ctx, "alice", testNow.AddDate(0, 0, -report.DefaultViewsDays)).Return([]report.AttributedPost{}, nil)
		repo.On("AttributedPosts", ctx, "alice").Return([]report.AttributedPost{}, nil)

		svc := NewSocialService(repo, WithClock(fixedClock))
		_, err := svc.TopPosts(ctx, creatorRole, "alice", 0)
		require.NoError(t, err)
		_, err = svc.RecentPosts(ctx, creatorRole, "alice", 0)
		require.NoError(t, err)
		_, err = svc.PostsByViews(ctx, creatorRole, "alice", 0)
		require.NoError(t, err)
		_, err = svc.AttributedPosts(ctx, creatorRole, "alice")
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("denied", func(t *testing.T) {
		repo := new(MockSocialReportRepository)
		svc := NewSocialService(repo)

		_, err := svc.Overview(ctx, creatorRole, "bob")
		assert.ErrorIs(t, err, ErrAccessDenied)
		_, err = svc.History(ctx, clientRole, "carol", 30)
		assert.ErrorIs(t, err, ErrAccessDenied)
		_, err = svc.TopPosts(ctx, noneRole, "alice", 10)
		assert.ErrorIs(t, err, ErrAccessDenied)
		_, err = svc.RecentPosts(ctx, creatorRole, "bob", 10)
		assert.ErrorIs(t, err, ErrAccessDenied)
		_, err = svc.PostsByViews(ctx, creatorRole, "bob", 7)
		assert.ErrorIs(t, err, ErrAccessDenied)
		_, err = svc.AttributedPosts(ctx, creatorRole, "bob")
		assert.ErrorIs(t, err, ErrAccessDenied)
		repo.AssertNotCalled(t, "CreatorOverview", mock.Anything, mock.Anything)
	})
}
