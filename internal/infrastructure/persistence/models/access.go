package models

import (
	"time"

	"github.com/creatorhub/backend/internal/domain/access"
)

// UserRoleModel assigns a dashboard role to an identity-provider user
type UserRoleModel struct {
	UserID             string    `gorm:"type:varchar(255);primaryKey"`
	Role               string    `gorm:"type:varchar(16);not null;default:'creator'"`
	CreatorID          string    `gorm:"type:varchar(64);not null;default:''"`
	AssignedCreatorIDs string    `gorm:"type:text;not null;default:''"`
	CreatedAt          time.Time `gorm:"not null"`
	UpdatedAt          time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (UserRoleModel) TableName() string {
	return "user_roles"
}

// ToDomain converts the row to a domain UserRole
func (m *UserRoleModel) ToDomain() *access.UserRole {
	return &access.UserRole{
		UserID:             m.UserID,
		Role:               access.Role(m.Role),
		CreatorID:          m.CreatorID,
		AssignedCreatorIDs: m.AssignedCreatorIDs,
	}
}
