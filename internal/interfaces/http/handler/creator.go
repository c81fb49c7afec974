package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/creatorhub/backend/internal/interfaces/http/dto"
)

// CreatorHandler serves the social analytics, product and ShopMy detail views.
// Creator-scoped routes answer 403 when the caller may not see the creator.
type CreatorHandler struct {
	BaseHandler
	social   SocialReader
	shopmy   ShopMyReader
	earnings EarningsReader
}

// NewCreatorHandler creates a new CreatorHandler
func NewCreatorHandler(social SocialReader, shopmy ShopMyReader, earnings EarningsReader) *CreatorHandler {
	return &CreatorHandler{social: social, shopmy: shopmy, earnings: earnings}
}

// List handles GET /api/v1/creators
func (h *CreatorHandler) List(c *gin.Context) {
	rows, err := h.social.Creators(c.Request.Context(), h.role(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// Stats handles GET /api/v1/stats
func (h *CreatorHandler) Stats(c *gin.Context) {
	stats, err := h.social.Stats(c.Request.Context(), h.role(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// Compare handles GET /api/v1/creators/compare?ids=a,b
func (h *CreatorHandler) Compare(c *gin.Context) {
	var q dto.CompareQuery
	if !h.bindQuery(c, &q) {
		return
	}

	rows, err := h.social.Compare(c.Request.Context(), h.role(c), q.CreatorIDs())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// Get handles GET /api/v1/creators/:id
func (h *CreatorHandler) Get(c *gin.Context) {
	overview, err := h.social.Overview(c.Request.Context(), h.role(c), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, overview)
}

// History handles GET /api/v1/creators/:id/history
func (h *CreatorHandler) History(c *gin.Context) {
	var q dto.DaysQuery
	if !h.bindQuery(c, &q) {
		return
	}

	rows, err := h.social.History(c.Request.Context(), h.role(c), c.Param("id"), q.Days)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// TopPosts handles GET /api/v1/creators/:id/posts/top
func (h *CreatorHandler) TopPosts(c *gin.Context) {
	var q dto.LimitQuery
	if !h.bindQuery(c, &q) {
		return
	}

	posts, err := h.social.TopPosts(c.Request.Context(), h.role(c), c.Param("id"), q.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, posts)
}

// RecentPosts handles GET /api/v1/creators/:id/posts/recent
func (h *CreatorHandler) RecentPosts(c *gin.Context) {
	var q dto.LimitQuery
	if !h.bindQuery(c, &q) {
		return
	}

	posts, err := h.social.RecentPosts(c.Request.Context(), h.role(c), c.Param("id"), q.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, posts)
}

// PostsByViews handles GET /api/v1/creators/:id/posts/by-views
func (h *CreatorHandler) PostsByViews(c *gin.Context) {
	var q dto.DaysQuery
	if !h.bindQuery(c, &q) {
		return
	}

	posts, err := h.social.PostsByViews(c.Request.Context(), h.role(c), c.Param("id"), q.Days)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, posts)
}

// AttributedPosts handles GET /api/v1/creators/:id/posts/attributed
func (h *CreatorHandler) AttributedPosts(c *gin.Context) {
	posts, err := h.social.AttributedPosts(c.Request.Context(), h.role(c), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, posts)
}

// TopProducts handles GET /api/v1/creators/:id/products/top.
// Products follow the earnings rule: no access yields an empty list.
func (h *CreatorHandler) TopProducts(c *gin.Context) {
	var q dto.LimitQuery
	if !h.bindQuery(c, &q) {
		return
	}

	rows, err := h.earnings.TopProducts(c.Request.Context(), h.role(c), c.Param("id"), q.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// ShopMySummary handles GET /api/v1/creators/:id/shopmy/summary
func (h *CreatorHandler) ShopMySummary(c *gin.Context) {
	rows, err := h.shopmy.Summary(c.Request.Context(), h.role(c), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// ShopMyCommissions handles GET /api/v1/creators/:id/shopmy/commissions
func (h *CreatorHandler) ShopMyCommissions(c *gin.Context) {
	rows, err := h.shopmy.Commissions(c.Request.Context(), h.role(c), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// ShopMyPayments handles GET /api/v1/creators/:id/shopmy/payments
func (h *CreatorHandler) ShopMyPayments(c *gin.Context) {
	rows, err := h.shopmy.Payments(c.Request.Context(), h.role(c), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// ShopMyBrandRates handles GET /api/v1/creators/:id/shopmy/brand-rates
func (h *CreatorHandler) ShopMyBrandRates(c *gin.Context) {
	rows, err := h.shopmy.BrandRates(c.Request.Context(), h.role(c), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}
