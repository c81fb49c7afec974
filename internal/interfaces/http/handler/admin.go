package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/creatorhub/backend/internal/application/ingest"
	"github.com/creatorhub/backend/internal/interfaces/http/dto"
)

// AdminHandler serves the operator endpoints under /api/admin
type AdminHandler struct {
	BaseHandler
	admin  AdminOperations
	runner JobRunner
	media  MediaBackfiller
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(admin AdminOperations, runner JobRunner, media MediaBackfiller) *AdminHandler {
	return &AdminHandler{admin: admin, runner: runner, media: media}
}

// Backfill handles GET /api/admin/backfill, importing the Airtable history
func (h *AdminHandler) Backfill(c *gin.Context) {
	rep, err := h.runner.Run(c.Request.Context(), ingest.JobAirtableBackfill)
	h.respondRun(c, rep, err)
}

// IGBackfill handles GET /api/admin/ig-backfill?creator=&limit=
func (h *AdminHandler) IGBackfill(c *gin.Context) {
	var q dto.IGBackfillQuery
	if !h.bindQuery(c, &q) {
		return
	}

	limit := q.LimitOrDefault()
	rep, err := h.runner.RunFunc(c.Request.Context(), ingest.JobIGBackfill, func(ctx context.Context) (*ingest.RunReport, error) {
		return h.media.Backfill(ctx, q.Creator, limit)
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rep)
}

// PlatformIDs handles GET /api/admin/set-creator-platform-ids
func (h *AdminHandler) PlatformIDs(c *gin.Context) {
	rows, err := h.admin.OwnedPlatformIDs(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// SetPlatformIDs handles PATCH /api/admin/set-creator-platform-ids
func (h *AdminHandler) SetPlatformIDs(c *gin.Context) {
	var req dto.PlatformIDsRequest
	if !h.bindJSON(c, &req) {
		return
	}

	updated, err := h.admin.SetPlatformIDs(c.Request.Context(), req.CreatorID, req.ToPlatformIDs())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, updated)
}

// VerifyShopMy handles GET /api/admin/shopmy-verify?creatorId=
func (h *AdminHandler) VerifyShopMy(c *gin.Context) {
	var q dto.CreatorQuery
	if !h.bindQuery(c, &q) {
		return
	}

	out, err := h.admin.VerifyShopMy(c.Request.Context(), q.CreatorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, out)
}

// ResetShopMy handles DELETE /api/admin/shopmy-reset?creatorId=
func (h *AdminHandler) ResetShopMy(c *gin.Context) {
	var q dto.CreatorQuery
	if !h.bindQuery(c, &q) {
		return
	}

	out, err := h.admin.ResetShopMy(c.Request.Context(), q.CreatorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, out)
}
