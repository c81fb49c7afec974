package affiliate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/creatorhub/backend/internal/domain/earnings"
	"github.com/creatorhub/backend/internal/domain/integration"
	"github.com/creatorhub/backend/internal/infrastructure/vendorhttp"
)

// ShopMyCSRFCookie is the cookie carrying the CSRF token after login
const ShopMyCSRFCookie = "shopmy_csrf_token"

// Errors for ShopMy configuration
var (
	ErrShopMyConfigMissingBaseURL = errors.New("shopmy: base url is required")
	ErrShopMyConfigMissingOrigin  = errors.New("shopmy: origin is required")
)

var uuidPattern = regexp.MustCompile(`(?i)[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)

// ShopMyConfig holds ShopMy API settings
type ShopMyConfig struct {
	BaseURL string
	// Origin is sent as Origin and, with a trailing slash, as Referer
	Origin string
}

// Validate validates the ShopMy configuration
func (c *ShopMyConfig) Validate() error {
	if c.BaseURL == "" {
		return ErrShopMyConfigMissingBaseURL
	}
	if c.Origin == "" {
		return ErrShopMyConfigMissingOrigin
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	c.Origin = strings.TrimRight(c.Origin, "/")
	return nil
}

// ShopMyClient implements integration.ShopMyClient
type ShopMyClient struct {
	config    ShopMyConfig
	transport *vendorhttp.Transport
}

// NewShopMyClient creates a ShopMy client
func NewShopMyClient(config ShopMyConfig, transport *vendorhttp.Transport) (*ShopMyClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &ShopMyClient{config: config, transport: transport}, nil
}

// Login opens a cookie session. Sessions are short-lived, so callers log in once per run.
func (c *ShopMyClient) Login(ctx context.Context, email, password string) (*integration.ShopMySession, error) {
	if email == "" || password == "" {
		return nil, integration.ErrCredentialsMissing
	}
	body, err := json.Marshal(map[string]string{"username": email, "password": password})
	if err != nil {
		return nil, fmt.Errorf("shopmy: failed to encode login: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/Auth/session", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("shopmy: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", c.config.Origin)
	req.Header.Set("Referer", c.config.Origin+"/")

	resp, err := c.transport.Do(req)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, fmt.Errorf("shopmy login: %w", err)
	}
	return sessionFromCookies(resp.Header)
}

// sessionFromCookies builds the Cookie header from every Set-Cookie pair and
// extracts the CSRF UUID from the URL-decoded csrf cookie
func sessionFromCookies(h http.Header) (*integration.ShopMySession, error) {
	cookies := (&http.Response{Header: h}).Cookies()
	pairs := make([]string, 0, len(cookies))
	var rawCSRF string
	found := false
	for _, ck := range cookies {
		pairs = append(pairs, ck.Name+"="+ck.Value)
		if ck.Name == ShopMyCSRFCookie {
			rawCSRF = ck.Value
			found = true
		}
	}
	if !found {
		return nil, integration.ErrCSRFTokenMissing
	}
	if decoded, err := url.QueryUnescape(rawCSRF); err == nil {
		rawCSRF = decoded
	}
	csrf := rawCSRF
	if m := uuidPattern.FindString(rawCSRF); m != "" {
		csrf = m
	}
	return &integration.ShopMySession{
		CookieHeader: strings.Join(pairs, "; "),
		CSRFToken:    csrf,
	}, nil
}

// get performs an authenticated GET and returns the raw body
func (c *ShopMyClient) get(ctx context.Context, session *integration.ShopMySession, path string) (*vendorhttp.Response, error) {
	if session == nil {
		return nil, integration.ErrSessionTokenMissing
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("shopmy: failed to create request: %w", err)
	}
	req.Header.Set("x-csrf-token", session.CSRFToken)
	req.Header.Set("x-session-id", strconv.FormatInt(time.Now().UnixMilli(), 10))
	req.Header.Set("Origin", c.config.Origin)
	req.Header.Set("Referer", c.config.Origin+"/")
	req.Header.Set("Cookie", session.CookieHeader)

	resp, err := c.transport.Do(req)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, fmt.Errorf("shopmy %s: %w", path, err)
	}
	return resp, nil
}

// payoutSummaryWire keeps months raw because ShopMy has sent both an object and an array
type payoutSummaryWire struct {
	NormalCommissions      []earnings.Fields `json:"normal_commissions"`
	OpportunityCommissions []earnings.Fields `json:"opportunity_commissions"`
	Payments               []earnings.Fields `json:"payments"`
	Months                 json.RawMessage   `json:"months"`
	TodayAmount            any               `json:"todayAmount"`
}

// PayoutSummary fetches the creator's payout summary, unwrapping an optional data envelope
func (c *ShopMyClient) PayoutSummary(ctx context.Context, session *integration.ShopMySession, userID string) (*integration.ShopMyPayoutSummary, error) {
	resp, err := c.get(ctx, session, "/api/Payouts/payout_summary/"+url.PathEscape(userID))
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := resp.Decode(&envelope); err != nil {
		return nil, err
	}
	payload := &vendorhttp.Response{Body: resp.Body}
	if len(envelope.Data) > 0 && !bytes.Equal(envelope.Data, []byte("null")) {
		payload.Body = envelope.Data
	}

	var wire payoutSummaryWire
	if err := payload.Decode(&wire); err != nil {
		return nil, err
	}

	out := &integration.ShopMyPayoutSummary{
		NormalCommissions:      wire.NormalCommissions,
		OpportunityCommissions: wire.OpportunityCommissions,
		Payments:               wire.Payments,
		TodayAmount:            wire.TodayAmount,
	}
	if trimmed := bytes.TrimSpace(wire.Months); len(trimmed) > 0 && trimmed[0] == '{' {
		months := map[string]earnings.Fields{}
		if err := (&vendorhttp.Response{Body: trimmed}).Decode(&months); err != nil {
			return nil, err
		}
		out.Months = months
	}
	return out, nil
}

// BrandRates fetches custom brand rates; the API answers with an array or {rates: []}
func (c *ShopMyClient) BrandRates(ctx context.Context, session *integration.ShopMySession, userID string) ([]earnings.Fields, error) {
	resp, err := c.get(ctx, session, "/api/CustomRates/all_rates/"+url.PathEscape(userID))
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(resp.Body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var rates []earnings.Fields
		if err := resp.Decode(&rates); err != nil {
			return nil, err
		}
		return rates, nil
	}
	var wrapped struct {
		Rates []earnings.Fields `json:"rates"`
	}
	if err := resp.Decode(&wrapped); err != nil {
		return nil, err
	}
	if wrapped.Rates == nil {
		return []earnings.Fields{}, nil
	}
	return wrapped.Rates, nil
}

var _ integration.ShopMyClient = (*ShopMyClient)(nil)
