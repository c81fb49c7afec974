// Package handler implements the dashboard, cron and admin HTTP endpoints.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/creatorhub/backend/internal/application/ingest"
	reportapp "github.com/creatorhub/backend/internal/application/report"
	"github.com/creatorhub/backend/internal/domain/access"
	"github.com/creatorhub/backend/internal/domain/creator"
	"github.com/creatorhub/backend/internal/domain/integration"
	"github.com/creatorhub/backend/internal/domain/shared"
	"github.com/creatorhub/backend/internal/infrastructure/logger"
	"github.com/creatorhub/backend/internal/interfaces/http/dto"
	"github.com/creatorhub/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return c.GetHeader(middleware.HeaderRequestID)
}

// role returns the caller's resolved role
func (h *BaseHandler) role(c *gin.Context) access.ResolvedRole {
	return middleware.MustGetRole(c)
}

// bindQuery binds and validates query parameters, answering 400 on failure
func (h *BaseHandler) bindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// bindJSON binds and validates a JSON body, answering 400 on failure
func (h *BaseHandler) bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// ErrorWithCode sends an error response, deriving status code from error code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.ErrorWithCode(c, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.ErrorWithCode(c, dto.ErrCodeNotFound, message)
}

// Forbidden sends a 403 forbidden response
func (h *BaseHandler) Forbidden(c *gin.Context, message string) {
	h.ErrorWithCode(c, dto.ErrCodeForbidden, message)
}

// Conflict sends a 409 conflict response
func (h *BaseHandler) Conflict(c *gin.Context, message string) {
	h.ErrorWithCode(c, dto.ErrCodeConflict, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.ErrorWithCode(c, dto.ErrCodeInternal, message)
}

// HandleError maps service errors to HTTP responses. Unknown errors are
// logged and answered with a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	switch {
	case errors.Is(err, reportapp.ErrAccessDenied):
		h.Forbidden(c, "Access to this creator is not allowed")
	case errors.Is(err, creator.ErrCreatorNotFound):
		h.NotFound(c, "Creator not found")
	case errors.Is(err, reportapp.ErrCreatorIDRequired):
		h.BadRequest(c, "creatorId is required")
	case errors.Is(err, creator.ErrNoPlatformIDs):
		h.BadRequest(c, "No platform ids given")
	case errors.Is(err, ingest.ErrJobAlreadyRunning):
		h.Conflict(c, "Job is already running")
	case errors.Is(err, ingest.ErrNoIGUserID), errors.Is(err, ingest.ErrCreatorNotEligible):
		h.BadRequest(c, "Creator is not eligible for this job")
	case errors.Is(err, ingest.ErrUnknownJob):
		h.NotFound(c, "Unknown job")
	case errors.Is(err, integration.ErrCredentialsMissing),
		errors.Is(err, integration.ErrPlatformNotConfigured):
		h.ErrorWithCode(c, dto.ErrCodeUpstream, "Platform is not configured")
	case errors.As(err, &domainErr):
		h.ErrorWithCode(c, dto.NormalizeErrorCode(domainErr.Code), domainErr.Message)
	default:
		logger.GetGinLogger(c).Error("Request failed", zap.Error(err))
		h.InternalError(c, "An unexpected error occurred")
	}
}
