package report

import (
	"context"
	"fmt"

	"github.com/creatorhub/backend/internal/domain/access"
)

// AccessService resolves identity-provider users to dashboard roles
type AccessService struct {
	repo access.Repository
}

// NewAccessService creates a new AccessService
func NewAccessService(repo access.Repository) *AccessService {
	return &AccessService{repo: repo}
}

// Resolve returns the user's effective role. Users with no assignment get access.DefaultRole.
func (s *AccessService) Resolve(ctx context.Context, userID string) (access.ResolvedRole, error) {
	row, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return access.ResolvedRole{}, fmt.Errorf("failed to load role for %s: %w", userID, err)
	}
	return access.Resolve(row), nil
}
