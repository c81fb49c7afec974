package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/creatorhub/backend/internal/domain/creator"
	"github.com/creatorhub/backend/internal/domain/earnings"
	"github.com/creatorhub/backend/internal/domain/report"
)

// ErrCreatorIDRequired is returned when an admin operation names no creator
var ErrCreatorIDRequired = errors.New("report: creatorId is required")

// AdminService maintains creator identities and stored ShopMy data
type AdminService struct {
	creators     creator.Repository
	shopmy       earnings.ShopMyRepository
	shopmyReport report.ShopMyReportRepository
}

// NewAdminService creates a new AdminService
func NewAdminService(creators creator.Repository, shopmy earnings.ShopMyRepository, shopmyReport report.ShopMyReportRepository) *AdminService {
	return &AdminService{
		creators:     creators,
		shopmy:       shopmy,
		shopmyReport: shopmyReport,
	}
}

// OwnedPlatformIDs lists the owned creators with their affiliate identities
func (s *AdminService) OwnedPlatformIDs(ctx context.Context) ([]creator.Creator, error) {
	owned, err := s.creators.ListOwned(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list owned creators: %w", err)
	}
	return owned, nil
}

// SetPlatformIDs updates the non-empty identities of a creator
func (s *AdminService) SetPlatformIDs(ctx context.Context, creatorID string, ids creator.PlatformIDs) (*creator.Creator, error) {
	if creatorID == "" {
		return nil, ErrCreatorIDRequired
	}
	if ids.IsEmpty() {
		return nil, creator.ErrNoPlatformIDs
	}
	return s.creators.SetPlatformIDs(ctx, creatorID, ids)
}

// VerifyShopMy returns counts, totals and sample rows of the creator's ShopMy data
func (s *AdminService) VerifyShopMy(ctx context.Context, creatorID string) (report.ShopMyVerify, error) {
	if creatorID == "" {
		return report.ShopMyVerify{}, ErrCreatorIDRequired
	}
	return s.shopmyReport.Verify(ctx, creatorID, report.ShopMyVerifySampleLimit)
}

// ResetShopMy deletes the creator's ShopMy sales and detail rows so the next sync rebuilds them
func (s *AdminService) ResetShopMy(ctx context.Context, creatorID string) (report.ShopMyReset, error) {
	if creatorID == "" {
		return report.ShopMyReset{}, ErrCreatorIDRequired
	}
	counts, err := s.shopmy.ResetCreator(ctx, creatorID)
	if err != nil {
		return report.ShopMyReset{}, err
	}
	return report.ShopMyReset{Cleared: counts}, nil
}
