package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/creatorhub/backend/internal/domain/access"
	"github.com/creatorhub/backend/internal/interfaces/http/middleware"
)

// RoleResponse is the caller's identity and effective access
type RoleResponse struct {
	UserID             string      `json:"userId"`
	Role               access.Role `json:"role"`
	CreatorID          string      `json:"creatorId,omitempty"`
	AssignedCreatorIDs []string    `json:"assignedCreatorIds"`
}

// MeHandler reports who the caller is
type MeHandler struct {
	BaseHandler
}

// NewMeHandler creates a new MeHandler
func NewMeHandler() *MeHandler {
	return &MeHandler{}
}

// Role handles GET /api/v1/me/role
func (h *MeHandler) Role(c *gin.Context) {
	role := h.role(c)
	assigned := role.AssignedCreatorIDs
	if assigned == nil {
		assigned = []string{}
	}
	h.Success(c, RoleResponse{
		UserID:             middleware.GetJWTUserID(c),
		Role:               role.Role,
		CreatorID:          role.CreatorID,
		AssignedCreatorIDs: assigned,
	})
}
