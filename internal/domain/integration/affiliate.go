package integration

import (
	"context"

	"github.com/creatorhub/backend/internal/domain/earnings"
)

// ---------------------------------------------------------------------------
// ShopMy
// ---------------------------------------------------------------------------

// ShopMySession is an authenticated cookie session
type ShopMySession struct {
	CookieHeader string
	CSRFToken    string
}

// ShopMyPayoutSummary is the payout_summary payload, unwrapped from its data envelope
type ShopMyPayoutSummary struct {
	NormalCommissions      []earnings.Fields          `json:"normal_commissions"`
	OpportunityCommissions []earnings.Fields          `json:"opportunity_commissions"`
	Payments               []earnings.Fields          `json:"payments"`
	Months                 map[string]earnings.Fields `json:"months"`
	TodayAmount            any                        `json:"todayAmount"`
}

// ShopMyClient is the port for the ShopMy creator API
type ShopMyClient interface {
	Login(ctx context.Context, email, password string) (*ShopMySession, error)
	PayoutSummary(ctx context.Context, session *ShopMySession, userID string) (*ShopMyPayoutSummary, error)
	BrandRates(ctx context.Context, session *ShopMySession, userID string) ([]earnings.Fields, error)
}

// ---------------------------------------------------------------------------
// Mavely
// ---------------------------------------------------------------------------

// MavelyClient is the port for the Mavely creator GraphQL API.
// Returned links and transactions carry no creator id; the caller assigns it.
type MavelyClient interface {
	Token(ctx context.Context, email, password string) (string, error)
	LinkMetrics(ctx context.Context, token string, p earnings.Period) ([]earnings.MavelyLink, error)
	Transactions(ctx context.Context, token string, p earnings.Period) ([]earnings.MavelyTransaction, error)
	MetricsTotals(ctx context.Context, token string, p earnings.Period) (earnings.Fields, error)
}

// ---------------------------------------------------------------------------
// LTK
// ---------------------------------------------------------------------------

// LTKTokens are the bearer and id tokens for the LTK APIs
type LTKTokens struct {
	AccessToken string
	IDToken     string
}

// ProxyRequest is a request forwarded to the LTK gateway
type ProxyRequest struct {
	Method      string
	Path        string
	RawQuery    string
	Body        []byte
	ContentType string
}

// ProxyResponse is the gateway's raw answer
type ProxyResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// LTKClient is the port for the LTK creator API and analytics gateway
type LTKClient interface {
	EarningsSummary(ctx context.Context, tokens LTKTokens, rangeLabel string) (earnings.Fields, error)
	EngagementSummary(ctx context.Context, tokens LTKTokens, rangeLabel string) (earnings.Fields, error)
	PerformanceSummary(ctx context.Context, tokens LTKTokens, publisherID string, p earnings.Period) (earnings.Fields, error)
	ItemsSold(ctx context.Context, tokens LTKTokens, p earnings.Period) ([]earnings.Fields, error)
	Proxy(ctx context.Context, tokens LTKTokens, req ProxyRequest) (*ProxyResponse, error)
}

// LTKTokenSource supplies the current LTK tokens
type LTKTokenSource interface {
	LTKTokens(ctx context.Context) (LTKTokens, error)
}

// ---------------------------------------------------------------------------
// Airtable
// ---------------------------------------------------------------------------

// AirtableRecord is a single row
type AirtableRecord struct {
	ID          string          `json:"id"`
	CreatedTime string          `json:"createdTime"`
	Fields      earnings.Fields `json:"fields"`
}

// AirtablePage is one page of a list call
type AirtablePage struct {
	Records []AirtableRecord `json:"records"`
	Offset  string           `json:"offset"`
}

// AirtableListOptions control a list call
type AirtableListOptions struct {
	PageSize   int
	MaxRecords int
	SortField  string
	// SortDesc sorts SortField descending
	SortDesc bool
	Offset   string
}

// AirtableClient is the port for the Airtable REST API
type AirtableClient interface {
	ListPage(ctx context.Context, table string, opts AirtableListOptions) (*AirtablePage, error)
	// ListRecords follows offsets until the table is exhausted
	ListRecords(ctx context.Context, table string, opts AirtableListOptions) ([]AirtableRecord, error)
	// LatestRecord returns nil, nil for an empty table
	LatestRecord(ctx context.Context, table, sortField string) (*AirtableRecord, error)
}
