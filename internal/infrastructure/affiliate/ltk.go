package affiliate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/creatorhub/backend/internal/domain/earnings"
	"github.com/creatorhub/backend/internal/domain/integration"
	"github.com/creatorhub/backend/internal/infrastructure/vendorhttp"
)

// LTK gateway query defaults
const (
	ltkItemsSoldLimit = "500"
	ltkCurrency       = "USD"
	ltkPlatforms      = "rs,ltk"
)

// Errors for LTK configuration
var (
	ErrLTKConfigMissingBaseURL    = errors.New("ltk: creator api base url is required")
	ErrLTKConfigMissingGatewayURL = errors.New("ltk: gateway url is required")
)

// LTKConfig holds LTK API settings
type LTKConfig struct {
	// BaseURL is the creator API, e.g. https://creator-api-gateway.shopltk.com/v1
	BaseURL string
	// GatewayURL is the analytics gateway, e.g. https://api-gateway.rewardstyle.com
	GatewayURL string
	// Origin is sent as Origin and Referer on gateway calls; optional
	Origin string
}

// Validate validates the LTK configuration
func (c *LTKConfig) Validate() error {
	if c.BaseURL == "" {
		return ErrLTKConfigMissingBaseURL
	}
	if c.GatewayURL == "" {
		return ErrLTKConfigMissingGatewayURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	c.GatewayURL = strings.TrimRight(c.GatewayURL, "/")
	c.Origin = strings.TrimRight(c.Origin, "/")
	return nil
}

// LTKClient implements integration.LTKClient
type LTKClient struct {
	config    LTKConfig
	transport *vendorhttp.Transport
}

// NewLTKClient creates an LTK client
func NewLTKClient(config LTKConfig, transport *vendorhttp.Transport) (*LTKClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &LTKClient{config: config, transport: transport}, nil
}

func (c *LTKClient) newRequest(ctx context.Context, tokens integration.LTKTokens, method, rawURL string, body []byte) (*http.Request, error) {
	if tokens.AccessToken == "" || tokens.IDToken == "" {
		return nil, integration.ErrSessionTokenMissing
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, fmt.Errorf("ltk: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	req.Header.Set("x-id-token", tokens.IDToken)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *LTKClient) getFields(ctx context.Context, tokens integration.LTKTokens, rawURL string, gateway bool) (earnings.Fields, error) {
	req, err := c.newRequest(ctx, tokens, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if gateway && c.config.Origin != "" {
		req.Header.Set("Origin", c.config.Origin)
		req.Header.Set("Referer", c.config.Origin+"/")
	}
	var out earnings.Fields
	if err := c.transport.DoJSON(req, &out); err != nil {
		return nil, fmt.Errorf("ltk %s: %w", req.URL.Path, err)
	}
	if out == nil {
		out = earnings.Fields{}
	}
	return out, nil
}

// EarningsSummary fetches the creator API earnings summary for a rolling range label
func (c *LTKClient) EarningsSummary(ctx context.Context, tokens integration.LTKTokens, rangeLabel string) (earnings.Fields, error) {
	q := url.Values{"range": {rangeLabel}}
	return c.getFields(ctx, tokens, c.config.BaseURL+"/earnings/summary?"+q.Encode(), false)
}

// EngagementSummary fetches the creator API engagement summary for a rolling range label
func (c *LTKClient) EngagementSummary(ctx context.Context, tokens integration.LTKTokens, rangeLabel string) (earnings.Fields, error) {
	q := url.Values{"range": {rangeLabel}}
	return c.getFields(ctx, tokens, c.config.BaseURL+"/engagement/summary?"+q.Encode(), false)
}

// PerformanceSummary fetches gateway performance for a calendar period and returns its data object
func (c *LTKClient) PerformanceSummary(ctx context.Context, tokens integration.LTKTokens, publisherID string, p earnings.Period) (earnings.Fields, error) {
	q := url.Values{
		"start_date":    {p.StartString() + "T00:00:00Z"},
		"end_date":      {p.EndString() + "T23:59:59Z"},
		"publisher_ids": {publisherID},
		"platform":      {ltkPlatforms},
		"timezone":      {"UTC"},
	}
	body, err := c.getFields(ctx, tokens, c.config.GatewayURL+"/api/creator-analytics/v1/performance_summary?"+q.Encode(), true)
	if err != nil {
		return nil, err
	}
	if data := body.Object("data"); data != nil {
		return data, nil
	}
	return earnings.Fields{}, nil
}

// ItemsSold fetches individual items sold in a calendar period
func (c *LTKClient) ItemsSold(ctx context.Context, tokens integration.LTKTokens, p earnings.Period) ([]earnings.Fields, error) {
	q := url.Values{
		"limit":    {ltkItemsSoldLimit},
		"start":    {p.StartString() + "T00:00:00.000Z"},
		"end":      {p.EndString() + "T23:59:59.000Z"},
		"currency": {ltkCurrency},
	}
	body, err := c.getFields(ctx, tokens, c.config.GatewayURL+"/api/creator-analytics/v1/items_sold/?"+q.Encode(), true)
	if err != nil {
		return nil, err
	}
	items := body.List("items_sold")
	if items == nil {
		items = []earnings.Fields{}
	}
	return items, nil
}

// Proxy forwards a request to the gateway with the LTK auth headers and returns the raw answer.
// Non-2xx answers are returned as-is rather than as errors.
func (c *LTKClient) Proxy(ctx context.Context, tokens integration.LTKTokens, in integration.ProxyRequest) (*integration.ProxyResponse, error) {
	method := in.Method
	if method == "" {
		method = http.MethodGet
	}
	path := "/" + strings.TrimLeft(in.Path, "/")
	target := c.config.GatewayURL + path
	if in.RawQuery != "" {
		target += "?" + in.RawQuery
	}
	req, err := c.newRequest(ctx, tokens, method, target, in.Body)
	if err != nil {
		return nil, err
	}
	if in.ContentType != "" {
		req.Header.Set("Content-Type", in.ContentType)
	}

	resp, err := c.transport.Do(req)
	if err != nil {
		return nil, err
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	return &integration.ProxyResponse{
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Body:        resp.Body,
	}, nil
}

var _ integration.LTKClient = (*LTKClient)(nil)
