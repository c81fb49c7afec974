package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"github.com/creatorhub/backend/internal/interfaces/http/dto"
)

// CronAuth guards the cron and admin routes with "Authorization: Bearer <secret>".
// The comparison runs in constant time. An empty secret rejects every request.
func CronAuth(secret string) gin.HandlerFunc {
	want := []byte(secret)
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok || len(want) == 0 || subtle.ConstantTimeCompare([]byte(token), want) != 1 {
			abortWithError(c, dto.ErrCodeUnauthorized, "Unauthorized")
			return
		}
		c.Next()
	}
}
