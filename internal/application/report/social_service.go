package report

import (
	"context"
	"errors"

	"github.com/creatorhub/backend/internal/domain/access"
	"github.com/creatorhub/backend/internal/domain/report"
)

// ErrAccessDenied is returned by creator-scoped reads the role may not see
var ErrAccessDenied = errors.New("report: access to creator denied")

// SocialService answers the creator, snapshot and post queries
type SocialService struct {
	options
	repo report.SocialReportRepository
}

// NewSocialService creates a new SocialService
func NewSocialService(repo report.SocialReportRepository, opts ...Option) *SocialService {
	return &SocialService{
		options: newOptions(opts),
		repo:    repo,
	}
}

// Creators lists the creators the role may see with their latest snapshot
func (s *SocialService) Creators(ctx context.Context, role access.ResolvedRole) ([]report.CreatorSummary, error) {
	return s.repo.CreatorsSummary(ctx, access.AccessibleCreatorIDs(role))
}

// Stats totals creators and followers across the creators the role may see
func (s *SocialService) Stats(ctx context.Context, role access.ResolvedRole) (report.AggregateStats, error) {
	return s.repo.AggregateStats(ctx, access.AccessibleCreatorIDs(role))
}

// Compare returns the latest metrics for ids. Ids the role may not see are dropped.
func (s *SocialService) Compare(ctx context.Context, role access.ResolvedRole, ids []string) ([]report.ComparisonRow, error) {
	visible := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && access.CanAccessCreator(role, id) {
			visible = append(visible, id)
		}
	}
	return s.repo.Compare(ctx, visible)
}

// Overview returns the creator with their two most recent snapshots
func (s *SocialService) Overview(ctx context.Context, role access.ResolvedRole, creatorID string) (*report.CreatorOverview, error) {
	if !access.CanAccessCreator(role, creatorID) {
		return nil, ErrAccessDenied
	}
	return s.repo.CreatorOverview(ctx, creatorID)
}

// History returns the creator's snapshots over the last days
func (s *SocialService) History(ctx context.Context, role access.ResolvedRole, creatorID string, days int) ([]report.HistoryRow, error) {
	if !access.CanAccessCreator(role, creatorID) {
		return nil, ErrAccessDenied
	}
	return s.repo.CreatorHistory(ctx, creatorID, s.since(days))
}

// TopPosts returns the creator's most liked posts
func (s *SocialService) TopPosts(ctx context.Context, role access.ResolvedRole, creatorID string, limit int) ([]report.AttributedPost, error) {
	if !access.CanAccessCreator(role, creatorID) {
		return nil, ErrAccessDenied
	}
	if limit <= 0 {
		limit = report.DefaultTopPosts
	}
	return s.repo.TopPosts(ctx, creatorID, limit)
}

// RecentPosts returns the creator's newest posts
func (s *SocialService) RecentPosts(ctx context.Context, role access.ResolvedRole, creatorID string, limit int) ([]report.AttributedPost, error) {
	if !access.CanAccessCreator(role, creatorID) {
		return nil, ErrAccessDenied
	}
	if limit <= 0 {
		limit = report.DefaultRecentPosts
	}
	return s.repo.RecentPosts(ctx, creatorID, limit)
}

// PostsByViews returns posts from the last days ordered by reach
func (s *SocialService) PostsByViews(ctx context.Context, role access.ResolvedRole, creatorID string, days int) ([]report.AttributedPost, error) {
	if !access.CanAccessCreator(role, creatorID) {
		return nil, ErrAccessDenied
	}
	if days <= 0 {
		days = report.DefaultViewsDays
	}
	return s.repo.RecentPostsByViews(ctx, creatorID, s.since(days))
}

// AttributedPosts returns the creator's posts that carry a tracked affiliate link
func (s *SocialService) AttributedPosts(ctx context.Context, role access.ResolvedRole, creatorID string) ([]report.AttributedPost, error) {
	if !access.CanAccessCreator(role, creatorID) {
		return nil, ErrAccessDenied
	}
	return s.repo.AttributedPosts(ctx, creatorID)
}
