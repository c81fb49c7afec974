package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/creatorhub/backend/internal/application/ingest"
	"github.com/creatorhub/backend/internal/interfaces/http/dto"
)

// CronRoutes maps the scheduler-facing paths under /api/cron to job names
var CronRoutes = map[string]string{
	"collect":             ingest.JobInstagramCollect,
	"collect-stories":     ingest.JobInstagramStories,
	"refresh-token":       ingest.JobTokenRefresh,
	"shopmy-sync":         ingest.JobShopMySync,
	"mavely-sync":         ingest.JobMavelySync,
	"mavely-graphql-sync": ingest.JobMavelyGraphQLSync,
	"ltk-sync":            ingest.JobLTKSync,
}

// CronHandler triggers ingestion jobs on behalf of the external scheduler
type CronHandler struct {
	BaseHandler
	runner JobRunner
}

// NewCronHandler creates a new CronHandler
func NewCronHandler(runner JobRunner) *CronHandler {
	return &CronHandler{runner: runner}
}

// Trigger returns a handler that runs job and answers with its run report
func (h *CronHandler) Trigger(job string) gin.HandlerFunc {
	return func(c *gin.Context) {
		rep, err := h.runner.Run(c.Request.Context(), job)
		h.respondRun(c, rep, err)
	}
}

// respondRun writes a job outcome. Finding no creators to sync is not a failure.
func (h *BaseHandler) respondRun(c *gin.Context, rep *ingest.RunReport, err error) {
	switch {
	case err == nil:
		c.JSON(http.StatusOK, dto.NewSuccessResponse(rep))
	case errors.Is(err, ingest.ErrNoOwnedCreators) && rep != nil:
		c.JSON(http.StatusOK, dto.NewSuccessResponse(rep))
	default:
		h.HandleError(c, err)
	}
}
