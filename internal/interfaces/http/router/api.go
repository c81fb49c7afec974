package router

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/creatorhub/backend/internal/interfaces/http/handler"
)

// Handlers are the endpoint handlers mounted by Mount
type Handlers struct {
	Earnings *handler.EarningsHandler
	Creators *handler.CreatorHandler
	Me       *handler.MeHandler
	LTK      *handler.LTKProxyHandler
	Cron     *handler.CronHandler
	Admin    *handler.AdminHandler
	Health   *handler.HealthHandler
}

// Guards are the per-surface access middleware. Dashboard routes need an
// authenticated user with a resolved role; cron and admin routes need the
// shared scheduler secret.
type Guards struct {
	Auth gin.HandlerFunc
	Role gin.HandlerFunc
	Cron gin.HandlerFunc
}

// Mount builds the route tree on engine and returns the configured router
func Mount(engine *gin.Engine, h Handlers, g Guards) *Router {
	engine.GET("/health", h.Health.Check)

	r := NewRouter(engine, WithAPIVersion("v1"))
	r.Use(g.Auth, g.Role)

	r.Register(NewDomainGroup("me", "/me").
		GET("/role", h.Me.Role))

	earnings := NewDomainGroup("earnings", "/earnings").
		GET("", h.Earnings.ListSales).
		GET("/summary", h.Earnings.Summary).
		GET("/history", h.Earnings.History).
		GET("/breakdown", h.Earnings.Breakdown).
		GET("/aggregate", h.Earnings.Aggregate).
		GET("/export", h.Earnings.Export)
	r.Register(earnings)

	creators := NewDomainGroup("creators", "/creators").
		GET("", h.Creators.List).
		GET("/compare", h.Creators.Compare).
		GET("/:id", h.Creators.Get).
		GET("/:id/history", h.Creators.History).
		GET("/:id/products/top", h.Creators.TopProducts)
	creators.Group("posts", "/:id/posts").
		GET("/top", h.Creators.TopPosts).
		GET("/recent", h.Creators.RecentPosts).
		GET("/by-views", h.Creators.PostsByViews).
		GET("/attributed", h.Creators.AttributedPosts)
	creators.Group("shopmy", "/:id/shopmy").
		GET("/summary", h.Creators.ShopMySummary).
		GET("/commissions", h.Creators.ShopMyCommissions).
		GET("/payments", h.Creators.ShopMyPayments).
		GET("/brand-rates", h.Creators.ShopMyBrandRates)
	r.Register(creators)

	r.Register(NewDomainGroup("stats", "/stats").
		GET("", h.Creators.Stats))

	r.Register(NewDomainGroup("ltk", "/ltk").
		Handle(http.MethodGet, "/*path", h.LTK.Forward).
		Handle(http.MethodPost, "/*path", h.LTK.Forward))

	cron := NewDomainGroup("cron", "/cron").Use(g.Cron)
	for _, p := range sortedCronPaths() {
		cron.GET("/"+p, h.Cron.Trigger(handler.CronRoutes[p]))
	}
	r.Mount(cron)

	r.Mount(NewDomainGroup("admin", "/admin").Use(g.Cron).
		GET("/backfill", h.Admin.Backfill).
		GET("/ig-backfill", h.Admin.IGBackfill).
		GET("/set-creator-platform-ids", h.Admin.PlatformIDs).
		PATCH("/set-creator-platform-ids", h.Admin.SetPlatformIDs).
		GET("/shopmy-verify", h.Admin.VerifyShopMy).
		DELETE("/shopmy-reset", h.Admin.ResetShopMy))

	r.Setup()
	return r
}

func sortedCronPaths() []string {
	paths := make([]string, 0, len(handler.CronRoutes))
	for p := range handler.CronRoutes {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}
