package affiliate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/creatorhub/backend/internal/domain/earnings"
	"github.com/creatorhub/backend/internal/domain/integration"
	"github.com/creatorhub/backend/internal/infrastructure/vendorhttp"
)

// Mavely GraphQL client identity headers
const (
	mavelyClientName     = "@mavely/creator-app"
	mavelyClientVersion  = "1.4.2"
	mavelyClientRevision = "71e8d2f8"
	mavelyUserAgent      = "Mozilla/5.0"

	// MavelyPageSize is the page size of both paginated queries
	MavelyPageSize = 100

	// mavelyExcludedBrand is Amazon deep-linking, which Mavely reports but does not pay out
	mavelyExcludedBrand = "amazon-deep-linking"
)

// Errors for Mavely configuration
var (
	ErrMavelyConfigMissingAuthURL  = errors.New("mavely: auth url is required")
	ErrMavelyConfigMissingGraphURL = errors.New("mavely: graph url is required")
)

const mavelyLinkMetricsQuery = `
query ($v1: CreatorAnalyticsWhereInput!, $v2: CreatorAnalyticsOrderByInput, $v3: Int, $v4: Int) {
  creatorAnalyticsMetricsByEntity(where: $v1, orderBy: $v2, first: $v3, skip: $v4) {
    affiliateLinkMetrics {
      affiliateLink { id link metaTitle metaImage brand { id name } }
      metrics { clicksCount commission sales salesCount conversion }
    }
  }
}`

const mavelyReportsQuery = `
query ($v1: ReportWhereInput, $v2: ReportOrderByInput, $v3: Int, $v4: Int, $v5: String) {
  allReports(where: $v1, orderBy: $v2, first: $v3, skip: $v4, after: $v5) {
    pageInfo { hasNextPage endCursor }
    edges { node { id date status saleAmount userCommission type productName referrer link { id link } } }
  }
}`

const mavelyTotalsQuery = `
query ($v1: CreatorAnalyticsWhereInput!) {
  creatorAnalyticsMetricsTotals(where: $v1) {
    metrics { clicksCount commission sales salesCount conversion }
  }
}`

// MavelyConfig holds Mavely settings
type MavelyConfig struct {
	// AuthURL is the NextAuth site issuing session tokens
	AuthURL string
	// GraphURL is the GraphQL endpoint
	GraphURL string
}

// Validate validates the Mavely configuration
func (c *MavelyConfig) Validate() error {
	if c.AuthURL == "" {
		return ErrMavelyConfigMissingAuthURL
	}
	if c.GraphURL == "" {
		return ErrMavelyConfigMissingGraphURL
	}
	c.AuthURL = strings.TrimRight(c.AuthURL, "/")
	return nil
}

// MavelyClient implements integration.MavelyClient
type MavelyClient struct {
	config    MavelyConfig
	transport *vendorhttp.Transport
}

// NewMavelyClient creates a Mavely client
func NewMavelyClient(config MavelyConfig, transport *vendorhttp.Transport) (*MavelyClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &MavelyClient{config: config, transport: transport}, nil
}

// Token runs the NextAuth credentials flow and returns the GraphQL bearer token.
// Each call uses a fresh cookie jar and never follows redirects.
func (c *MavelyClient) Token(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", integration.ErrCredentialsMissing
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return "", fmt.Errorf("mavely: cookie jar: %w", err)
	}
	client := &http.Client{
		Timeout: c.transport.Client().Timeout,
		Jar:     jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	// 1. csrf token and cookie
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.AuthURL+"/api/auth/csrf", nil)
	if err != nil {
		return "", fmt.Errorf("mavely: failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", mavelyUserAgent)
	resp, err := c.transport.DoWith(client, req)
	if err != nil {
		return "", err
	}
	if err := resp.Err(); err != nil {
		return "", fmt.Errorf("mavely csrf: %w", err)
	}
	var csrf struct {
		CSRFToken string `json:"csrfToken"`
	}
	if err := resp.Decode(&csrf); err != nil {
		return "", err
	}
	if csrf.CSRFToken == "" {
		return "", fmt.Errorf("%w: mavely csrf", integration.ErrCSRFTokenMissing)
	}

	// 2. credentials sign-in; the answer is a redirect or JSON and only its cookies matter
	form := url.Values{
		"csrfToken": {csrf.CSRFToken},
		"email":     {email},
		"password":  {password},
		"redirect":  {"false"},
		"json":      {"true"},
	}
	req, err = http.NewRequestWithContext(ctx, http.MethodPost, c.config.AuthURL+"/api/auth/callback/credentials", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("mavely: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", mavelyUserAgent)
	if _, err := c.transport.DoWith(client, req); err != nil {
		return "", err
	}

	// 3. session
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, c.config.AuthURL+"/api/auth/session", nil)
	if err != nil {
		return "", fmt.Errorf("mavely: failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", mavelyUserAgent)
	resp, err = c.transport.DoWith(client, req)
	if err != nil {
		return "", err
	}
	if err := resp.Err(); err != nil {
		return "", fmt.Errorf("mavely session: %w", err)
	}
	var session struct {
		Token string `json:"token"`
	}
	if err := resp.Decode(&session); err != nil {
		return "", err
	}
	if session.Token == "" {
		return "", fmt.Errorf("%w: mavely session has no token", integration.ErrPlatformAuthFailed)
	}
	return session.Token, nil
}

type graphQLError struct {
	Message string `json:"message"`
}

// graphql posts a query and decodes data into out
func (c *MavelyClient) graphql(ctx context.Context, token, query string, variables map[string]any, out any) error {
	if token == "" {
		return integration.ErrSessionTokenMissing
	}
	body, err := json.Marshal(map[string]any{"query": query, "variables": variables})
	if err != nil {
		return fmt.Errorf("mavely: failed to encode query: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.GraphURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("mavely: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("client-name", mavelyClientName)
	req.Header.Set("client-version", mavelyClientVersion)
	req.Header.Set("client-revision", mavelyClientRevision)

	resp, err := c.transport.Do(req)
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return fmt.Errorf("mavely graphql: %w", err)
	}
	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphQLError  `json:"errors"`
	}
	if err := resp.Decode(&envelope); err != nil {
		return err
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("%w: %s", integration.ErrPlatformQueryFailed, envelope.Errors[0].Message)
	}
	if len(envelope.Data) == 0 || bytes.Equal(envelope.Data, []byte("null")) {
		return fmt.Errorf("%w: mavely returned no data", integration.ErrPlatformInvalidResponse)
	}
	return (&vendorhttp.Response{Body: envelope.Data}).Decode(out)
}

type mavelyLinkRow struct {
	AffiliateLink *struct {
		ID        string `json:"id"`
		Link      string `json:"link"`
		MetaTitle string `json:"metaTitle"`
		MetaImage string `json:"metaImage"`
		Brand     *struct {
			Name string `json:"name"`
		} `json:"brand"`
	} `json:"affiliateLink"`
	Metrics earnings.Fields `json:"metrics"`
}

// LinkMetrics returns per-link metrics for the period, paging by offset until a short page
func (c *MavelyClient) LinkMetrics(ctx context.Context, token string, p earnings.Period) ([]earnings.MavelyLink, error) {
	var out []earnings.MavelyLink
	for skip := 0; ; skip += MavelyPageSize {
		var data struct {
			Metrics struct {
				Rows []mavelyLinkRow `json:"affiliateLinkMetrics"`
			} `json:"creatorAnalyticsMetricsByEntity"`
		}
		vars := map[string]any{
			"v1": map[string]any{
				"cstDateStr_gte": p.StartString(),
				"cstDateStr_lte": p.EndString(),
				"entity":         "LINK",
			},
			"v2": "sales_DESC",
			"v3": MavelyPageSize,
			"v4": skip,
		}
		if err := c.graphql(ctx, token, mavelyLinkMetricsQuery, vars, &data); err != nil {
			return nil, err
		}

		for _, row := range data.Metrics.Rows {
			if row.AffiliateLink == nil {
				continue
			}
			l := earnings.MavelyLink{
				LinkID:     row.AffiliateLink.ID,
				LinkURL:    row.AffiliateLink.Link,
				Title:      row.AffiliateLink.MetaTitle,
				ImageURL:   row.AffiliateLink.MetaImage,
				Period:     p,
				Clicks:     row.Metrics.Int("clicksCount"),
				Orders:     row.Metrics.Int("salesCount"),
				Commission: row.Metrics.Amount("commission"),
				Revenue:    row.Metrics.Amount("sales"),
			}
			if row.AffiliateLink.Brand != nil {
				l.Brand = row.AffiliateLink.Brand.Name
			}
			out = append(out, l)
		}
		if len(data.Metrics.Rows) < MavelyPageSize {
			return out, nil
		}
	}
}

type mavelyReportNode struct {
	ID             string `json:"id"`
	Date           string `json:"date"`
	Status         string `json:"status"`
	SaleAmount     any    `json:"saleAmount"`
	UserCommission any    `json:"userCommission"`
	Referrer       string `json:"referrer"`
	Link           *struct {
		ID   string `json:"id"`
		Link string `json:"link"`
	} `json:"link"`
}

// Transactions returns individual orders for the period, following the cursor
func (c *MavelyClient) Transactions(ctx context.Context, token string, p earnings.Period) ([]earnings.MavelyTransaction, error) {
	var (
		out    []earnings.MavelyTransaction
		cursor any
	)
	for {
		var data struct {
			Reports struct {
				PageInfo struct {
					HasNextPage bool   `json:"hasNextPage"`
					EndCursor   string `json:"endCursor"`
				} `json:"pageInfo"`
				Edges []struct {
					Node mavelyReportNode `json:"node"`
				} `json:"edges"`
			} `json:"allReports"`
		}
		vars := map[string]any{
			"v1": map[string]any{"date_gte": p.StartString(), "date_lte": p.EndString()},
			"v2": "date_DESC",
			"v3": MavelyPageSize,
			"v4": 0,
			"v5": cursor,
		}
		if err := c.graphql(ctx, token, mavelyReportsQuery, vars, &data); err != nil {
			return nil, err
		}

		for _, e := range data.Reports.Edges {
			n := e.Node
			tx := earnings.MavelyTransaction{
				TransactionID:    n.ID,
				Referrer:         n.Referrer,
				CommissionAmount: earnings.ParseAmount(n.UserCommission),
				OrderValue:       earnings.ParseAmount(n.SaleAmount),
				Status:           n.Status,
			}
			if n.Link != nil {
				tx.LinkID = n.Link.ID
				tx.LinkURL = n.Link.Link
			}
			if t, ok := earnings.ParseTime(n.Date); ok {
				tx.SaleDate = &t
			}
			out = append(out, tx)
		}
		if !data.Reports.PageInfo.HasNextPage || data.Reports.PageInfo.EndCursor == "" {
			return out, nil
		}
		cursor = data.Reports.PageInfo.EndCursor
	}
}

// MetricsTotals returns account totals for the period, excluding Amazon deep links
func (c *MavelyClient) MetricsTotals(ctx context.Context, token string, p earnings.Period) (earnings.Fields, error) {
	var data struct {
		Totals struct {
			Metrics earnings.Fields `json:"metrics"`
		} `json:"creatorAnalyticsMetricsTotals"`
	}
	vars := map[string]any{
		"v1": map[string]any{
			"cstDateStr_gte": p.StartString(),
			"cstDateStr_lte": p.EndString(),
			"brand":          map[string]any{"slug_not": mavelyExcludedBrand},
		},
	}
	if err := c.graphql(ctx, token, mavelyTotalsQuery, vars, &data); err != nil {
		return nil, err
	}
	if data.Totals.Metrics == nil {
		return earnings.Fields{}, nil
	}
	return data.Totals.Metrics, nil
}

var _ integration.MavelyClient = (*MavelyClient)(nil)
