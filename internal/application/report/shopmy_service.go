package report

import (
	"context"

	"github.com/creatorhub/backend/internal/domain/access"
	"github.com/creatorhub/backend/internal/domain/report"
)

// ShopMyService answers the ShopMy detail views of a creator
type ShopMyService struct {
	repo report.ShopMyReportRepository
}

// NewShopMyService creates a new ShopMyService
func NewShopMyService(repo report.ShopMyReportRepository) *ShopMyService {
	return &ShopMyService{repo: repo}
}

// Summary returns the latest ShopMy ledger rows
func (s *ShopMyService) Summary(ctx context.Context, role access.ResolvedRole, creatorID string) ([]report.HistoryPoint, error) {
	if !access.CanAccessCreator(role, creatorID) {
		return nil, ErrAccessDenied
	}
	return s.repo.Summary(ctx, creatorID, report.ShopMySummaryLimit)
}

// Commissions returns the latest ShopMy sales and opportunity commissions
func (s *ShopMyService) Commissions(ctx context.Context, role access.ResolvedRole, creatorID string) (report.ShopMyCommissions, error) {
	if !access.CanAccessCreator(role, creatorID) {
		return report.ShopMyCommissions{}, ErrAccessDenied
	}
	return s.repo.Commissions(ctx, creatorID, report.ShopMyCommissionsLimit)
}

// Payments returns the creator's payouts, newest first
func (s *ShopMyService) Payments(ctx context.Context, role access.ResolvedRole, creatorID string) ([]report.PaymentRow, error) {
	if !access.CanAccessCreator(role, creatorID) {
		return nil, ErrAccessDenied
	}
	return s.repo.Payments(ctx, creatorID)
}

// BrandRates returns the creator's brand rates by brand
func (s *ShopMyService) BrandRates(ctx context.Context, role access.ResolvedRole, creatorID string) ([]report.BrandRateRow, error) {
	if !access.CanAccessCreator(role, creatorID) {
		return nil, ErrAccessDenied
	}
	return s.repo.BrandRates(ctx, creatorID)
}
