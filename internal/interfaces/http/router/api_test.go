package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creatorhub/backend/internal/domain/access"
	"github.com/creatorhub/backend/internal/interfaces/http/handler"
	"github.com/creatorhub/backend/internal/interfaces/http/middleware"
)

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

func mountTestAPI(t *testing.T) (*gin.Engine, *Router) {
	t.Helper()
	engine := gin.New()
	h := Handlers{
		Earnings: handler.NewEarningsHandler(nil),
		Creators: handler.NewCreatorHandler(nil, nil, nil),
		Me:       handler.NewMeHandler(),
		LTK:      handler.NewLTKProxyHandler(nil, nil, 1<<20),
		Cron:     handler.NewCronHandler(nil),
		Admin:    handler.NewAdminHandler(nil, nil, nil),
		Health:   handler.NewHealthHandler(okPinger{}),
	}
	g := Guards{
		Auth: func(c *gin.Context) {
			if c.GetHeader("Authorization") == "" {
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}
			c.Set(middleware.JWTUserIDKey, "user_1")
			c.Next()
		},
		Role: func(c *gin.Context) {
			c.Set(middleware.RoleKey, access.ResolvedRole{Role: access.RoleInternal, AssignedCreatorIDs: []string{}})
			c.Next()
		},
		Cron: middleware.CronAuth("s3cret"),
	}
	return engine, Mount(engine, h, g)
}

func TestMount_Routes(t *testing.T) {
	_, r := mountTestAPI(t)

	have := make(map[string]bool)
	for _, route := range r.Routes() {
		have[route.Method+" "+route.Path] = true
	}

	for _, want := range []string{
		"GET /api/v1/me/role",
		"GET /api/v1/earnings",
		"GET /api/v1/earnings/summary",
		"GET /api/v1/earnings/history",
		"GET /api/v1/earnings/breakdown",
		"GET /api/v1/earnings/aggregate",
		"GET /api/v1/earnings/export",
		"GET /api/v1/creators",
		"GET /api/v1/creators/compare",
		"GET /api/v1/creators/:id",
		"GET /api/v1/creators/:id/history",
		"GET /api/v1/creators/:id/posts/top",
		"GET /api/v1/creators/:id/posts/recent",
		"GET /api/v1/creators/:id/posts/by-views",
		"GET /api/v1/creators/:id/posts/attributed",
		"GET /api/v1/creators/:id/products/top",
		"GET /api/v1/creators/:id/shopmy/summary",
		"GET /api/v1/creators/:id/shopmy/commissions",
		"GET /api/v1/creators/:id/shopmy/payments",
		"GET /api/v1/creators/:id/shopmy/brand-rates",
		"GET /api/v1/stats",
		"GET /api/v1/ltk/*path",
		"POST /api/v1/ltk/*path",
		"GET /api/cron/collect",
		"GET /api/cron/collect-stories",
		"GET /api/cron/refresh-token",
		"GET /api/cron/shopmy-sync",
		"GET /api/cron/mavely-sync",
		"GET /api/cron/mavely-graphql-sync",
		"GET /api/cron/ltk-sync",
		"GET /api/admin/backfill",
		"GET /api/admin/ig-backfill",
		"GET /api/admin/set-creator-platform-ids",
		"PATCH /api/admin/set-creator-platform-ids",
		"GET /api/admin/shopmy-verify",
		"DELETE /api/admin/shopmy-reset",
	} {
		assert.True(t, have[want], "missing route %s", want)
	}
}

func TestMount_Guards(t *testing.T) {
	engine, _ := mountTestAPI(t)

	serve := func(method, target, auth string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(method, target, nil)
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		engine.ServeHTTP(w, req)
		return w
	}

	t.Run("health is public", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, serve(http.MethodGet, "/health", "").Code)
	})

	t.Run("dashboard needs a user", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, serve(http.MethodGet, "/api/v1/me/role", "").Code)

		w := serve(http.MethodGet, "/api/v1/me/role", "Bearer user-token")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"role":"internal"`)
	})

	t.Run("cron needs the secret", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, serve(http.MethodGet, "/api/cron/ltk-sync", "").Code)
		assert.Equal(t, http.StatusUnauthorized, serve(http.MethodGet, "/api/cron/ltk-sync", "Bearer wrong").Code)
	})

	t.Run("admin needs the secret", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, serve(http.MethodDelete, "/api/admin/shopmy-reset?creatorId=alice", "Bearer user-token").Code)
	})
}
