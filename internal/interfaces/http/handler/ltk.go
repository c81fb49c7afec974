package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/creatorhub/backend/internal/domain/integration"
	"github.com/creatorhub/backend/internal/infrastructure/logger"
	"github.com/creatorhub/backend/internal/interfaces/http/dto"
)

// LTKProxyHandler forwards dashboard requests to the LTK analytics gateway
// with the current LTK tokens attached.
type LTKProxyHandler struct {
	BaseHandler
	tokens  integration.LTKTokenSource
	client  integration.LTKClient
	maxBody int64
}

// NewLTKProxyHandler creates a new LTKProxyHandler
func NewLTKProxyHandler(tokens integration.LTKTokenSource, client integration.LTKClient, maxBody int64) *LTKProxyHandler {
	return &LTKProxyHandler{tokens: tokens, client: client, maxBody: maxBody}
}

// Forward handles GET|POST /api/v1/ltk/*path. The upstream status, content type
// and body pass through unchanged.
func (h *LTKProxyHandler) Forward(c *gin.Context) {
	req := integration.ProxyRequest{
		Method:      c.Request.Method,
		Path:        c.Param("path"),
		RawQuery:    c.Request.URL.RawQuery,
		ContentType: c.ContentType(),
	}
	if c.Request.Method == http.MethodPost && c.Request.Body != nil {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, h.maxBody))
		if err != nil {
			h.BadRequest(c, "Failed to read request body")
			return
		}
		req.Body = body
	}

	ctx := c.Request.Context()
	tokens, err := h.tokens.LTKTokens(ctx)
	if err != nil {
		h.proxyError(c, err)
		return
	}
	resp, err := h.client.Proxy(ctx, tokens, req)
	if err != nil {
		h.proxyError(c, err)
		return
	}
	c.Data(resp.StatusCode, resp.ContentType, resp.Body)
}

func (h *LTKProxyHandler) proxyError(c *gin.Context, err error) {
	logger.GetGinLogger(c).Error("LTK proxy failed",
		zap.String("path", c.Param("path")),
		zap.Error(err))
	h.ErrorWithCode(c, dto.ErrCodeInternal, "LTK request failed")
}
