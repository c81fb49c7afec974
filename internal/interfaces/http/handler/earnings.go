package handler

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	reportapp "github.com/creatorhub/backend/internal/application/report"
	"github.com/creatorhub/backend/internal/interfaces/http/dto"
)

// EarningsHandler serves the ledger and sales views. Callers without access to
// the requested creator get empty results rather than 403.
type EarningsHandler struct {
	BaseHandler
	earnings EarningsReader
	now      func() time.Time
}

// NewEarningsHandler creates a new EarningsHandler
func NewEarningsHandler(earnings EarningsReader) *EarningsHandler {
	return &EarningsHandler{earnings: earnings, now: time.Now}
}

// ListSales handles GET /api/v1/earnings
func (h *EarningsHandler) ListSales(c *gin.Context) {
	var q dto.SalesQuery
	if !h.bindQuery(c, &q) {
		return
	}

	filter := q.ToFilter()
	page, err := h.earnings.Sales(c.Request.Context(), h.role(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	filter.Normalize()
	h.SuccessWithMeta(c, page.Data, page.Total, page.Page, filter.Limit)
}

// Summary handles GET /api/v1/earnings/summary
func (h *EarningsHandler) Summary(c *gin.Context) {
	var q dto.DaysQuery
	if !h.bindQuery(c, &q) {
		return
	}
	if q.CreatorID == "" {
		h.BadRequest(c, "creatorId is required")
		return
	}

	rows, err := h.earnings.Summary(c.Request.Context(), h.role(c), q.CreatorID, q.Days)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// History handles GET /api/v1/earnings/history
func (h *EarningsHandler) History(c *gin.Context) {
	var q dto.HistoryQuery
	if !h.bindQuery(c, &q) {
		return
	}
	if q.CreatorID == "" {
		h.BadRequest(c, "creatorId is required")
		return
	}

	points, err := h.earnings.History(c.Request.Context(), h.role(c), q.CreatorID, q.PlatformValue(), q.Days)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, points)
}

// Breakdown handles GET /api/v1/earnings/breakdown
func (h *EarningsHandler) Breakdown(c *gin.Context) {
	var q dto.DaysQuery
	if !h.bindQuery(c, &q) {
		return
	}

	shares, err := h.earnings.Breakdown(c.Request.Context(), h.role(c), q.CreatorID, q.Days)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shares)
}

// Aggregate handles GET /api/v1/earnings/aggregate
func (h *EarningsHandler) Aggregate(c *gin.Context) {
	var q dto.DaysQuery
	if !h.bindQuery(c, &q) {
		return
	}

	agg, err := h.earnings.Aggregate(c.Request.Context(), h.role(c), q.Days)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, agg)
}

// Export handles GET /api/v1/earnings/export. The CSV is buffered so a
// failed query still gets a JSON error instead of a truncated download.
func (h *EarningsHandler) Export(c *gin.Context) {
	var q dto.SalesQuery
	if !h.bindQuery(c, &q) {
		return
	}

	var buf bytes.Buffer
	if err := h.earnings.Export(c.Request.Context(), h.role(c), q.ToFilter(), &buf); err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+reportapp.ExportFilename(h.now())+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
