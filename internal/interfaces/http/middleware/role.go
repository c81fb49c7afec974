package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/creatorhub/backend/internal/domain/access"
	"github.com/creatorhub/backend/internal/interfaces/http/dto"
)

// RoleKey holds the caller's access.ResolvedRole in the gin context
const RoleKey = "resolved_role"

// RoleResolver maps an authenticated user to a dashboard role
type RoleResolver interface {
	Resolve(ctx context.Context, userID string) (access.ResolvedRole, error)
}

// ResolveRole loads the caller's role after JWT authentication. Users without
// an assignment get access.DefaultRole; a store failure answers 500.
func ResolveRole(resolver RoleResolver, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		userID := GetJWTUserID(c)
		if userID == "" {
			abortWithError(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}

		role, err := resolver.Resolve(c.Request.Context(), userID)
		if err != nil {
			log.Error("Failed to resolve role", zap.String("user_id", userID), zap.Error(err))
			abortWithError(c, dto.ErrCodeInternal, "Failed to resolve role")
			return
		}

		c.Set(RoleKey, role)
		c.Next()
	}
}

// GetRole returns the role stored by ResolveRole
func GetRole(c *gin.Context) (access.ResolvedRole, bool) {
	v, ok := c.Get(RoleKey)
	if !ok {
		return access.ResolvedRole{}, false
	}
	role, ok := v.(access.ResolvedRole)
	return role, ok
}

// MustGetRole returns the stored role, or access.DefaultRole when none was resolved
func MustGetRole(c *gin.Context) access.ResolvedRole {
	if role, ok := GetRole(c); ok {
		return role
	}
	return access.DefaultRole()
}
