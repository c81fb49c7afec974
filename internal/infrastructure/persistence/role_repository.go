package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/creatorhub/backend/internal/domain/access"
	"github.com/creatorhub/backend/internal/infrastructure/persistence/models"
)

// GormUserRoleRepository implements access.Repository using GORM
type GormUserRoleRepository struct {
	db *gorm.DB
}

// NewGormUserRoleRepository creates a new GormUserRoleRepository
func NewGormUserRoleRepository(db *gorm.DB) *GormUserRoleRepository {
	return &GormUserRoleRepository{db: db}
}

// FindByUserID returns the stored assignment, or nil if the user has none
func (r *GormUserRoleRepository) FindByUserID(ctx context.Context, userID string) (*access.UserRole, error) {
	var m models.UserRoleModel
	if err := r.db.WithContext(ctx).First(&m, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

var _ access.Repository = (*GormUserRoleRepository)(nil)
