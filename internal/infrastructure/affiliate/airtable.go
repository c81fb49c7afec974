package affiliate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/creatorhub/backend/internal/domain/integration"
	"github.com/creatorhub/backend/internal/infrastructure/vendorhttp"
)

// AirtablePageSize is the page size requested by ListRecords
const AirtablePageSize = 100

// Errors for Airtable configuration
var (
	ErrAirtableConfigMissingBaseURL = errors.New("airtable: base url is required")
	ErrAirtableConfigMissingToken   = errors.New("airtable: api token is required")
	ErrAirtableConfigMissingBaseID  = errors.New("airtable: base id is required")
)

// AirtableConfig holds Airtable REST settings
type AirtableConfig struct {
	BaseURL string
	Token   string
	BaseID  string
}

// Validate validates the Airtable configuration
func (c *AirtableConfig) Validate() error {
	if c.BaseURL == "" {
		return ErrAirtableConfigMissingBaseURL
	}
	if c.Token == "" {
		return ErrAirtableConfigMissingToken
	}
	if c.BaseID == "" {
		return ErrAirtableConfigMissingBaseID
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	return nil
}

// AirtableClient implements integration.AirtableClient
type AirtableClient struct {
	config    AirtableConfig
	transport *vendorhttp.Transport
}

// NewAirtableClient creates an Airtable client
func NewAirtableClient(config AirtableConfig, transport *vendorhttp.Transport) (*AirtableClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &AirtableClient{config: config, transport: transport}, nil
}

func listQuery(opts integration.AirtableListOptions) url.Values {
	q := url.Values{}
	if opts.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(opts.PageSize))
	}
	if opts.MaxRecords > 0 {
		q.Set("maxRecords", strconv.Itoa(opts.MaxRecords))
	}
	if opts.SortField != "" {
		q.Set("sort[0][field]", opts.SortField)
		dir := "asc"
		if opts.SortDesc {
			dir = "desc"
		}
		q.Set("sort[0][direction]", dir)
	}
	if opts.Offset != "" {
		q.Set("offset", opts.Offset)
	}
	return q
}

// ListPage fetches a single page of a table
func (c *AirtableClient) ListPage(ctx context.Context, table string, opts integration.AirtableListOptions) (*integration.AirtablePage, error) {
	if table == "" {
		return nil, fmt.Errorf("%w: airtable table", integration.ErrPlatformNotConfigured)
	}
	target := fmt.Sprintf("%s/%s/%s", c.config.BaseURL, url.PathEscape(c.config.BaseID), url.PathEscape(table))
	if q := listQuery(opts); len(q) > 0 {
		target += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("airtable: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.Token)

	var page integration.AirtablePage
	if err := c.transport.DoJSON(req, &page); err != nil {
		return nil, fmt.Errorf("airtable %s: %w", table, err)
	}
	if page.Records == nil {
		page.Records = []integration.AirtableRecord{}
	}
	return &page, nil
}

// ListRecords follows offsets until the table is exhausted or MaxRecords is reached
func (c *AirtableClient) ListRecords(ctx context.Context, table string, opts integration.AirtableListOptions) ([]integration.AirtableRecord, error) {
	if opts.PageSize <= 0 {
		opts.PageSize = AirtablePageSize
	}
	var out []integration.AirtableRecord
	for {
		page, err := c.ListPage(ctx, table, opts)
		if err != nil {
			return out, err
		}
		out = append(out, page.Records...)
		if page.Offset == "" || (opts.MaxRecords > 0 && len(out) >= opts.MaxRecords) {
			return out, nil
		}
		opts.Offset = page.Offset
	}
}

// LatestRecord returns the newest record by sortField, nil for an empty table
func (c *AirtableClient) LatestRecord(ctx context.Context, table, sortField string) (*integration.AirtableRecord, error) {
	page, err := c.ListPage(ctx, table, integration.AirtableListOptions{
		MaxRecords: 1,
		SortField:  sortField,
		SortDesc:   true,
	})
	if err != nil {
		return nil, err
	}
	if len(page.Records) == 0 {
		return nil, nil
	}
	return &page.Records[0], nil
}

var _ integration.AirtableClient = (*AirtableClient)(nil)

// DisabledAirtable stands in when no Airtable token is configured.
// Every call fails with integration.ErrPlatformNotConfigured.
type DisabledAirtable struct{}

// ListPage implements integration.AirtableClient
func (DisabledAirtable) ListPage(context.Context, string, integration.AirtableListOptions) (*integration.AirtablePage, error) {
	return nil, fmt.Errorf("%w: airtable", integration.ErrPlatformNotConfigured)
}

// ListRecords implements integration.AirtableClient
func (DisabledAirtable) ListRecords(context.Context, string, integration.AirtableListOptions) ([]integration.AirtableRecord, error) {
	return nil, fmt.Errorf("%w: airtable", integration.ErrPlatformNotConfigured)
}

// LatestRecord implements integration.AirtableClient
func (DisabledAirtable) LatestRecord(context.Context, string, string) (*integration.AirtableRecord, error) {
	return nil, fmt.Errorf("%w: airtable", integration.ErrPlatformNotConfigured)
}

var _ integration.AirtableClient = DisabledAirtable{}

// LTK credentials table columns
const (
	LTKAccessTokenField   = "Access_Token"
	LTKIDTokenField       = "ID_Token"
	LTKLastRefreshedField = "Last_Refreshed"
)

// AirtableLTKTokens reads LTK tokens from the newest row of the credentials table.
// An external job refreshes that row; this side only reads it.
type AirtableLTKTokens struct {
	client integration.AirtableClient
	table  string
}

// NewAirtableLTKTokens creates a token source over table
func NewAirtableLTKTokens(client integration.AirtableClient, table string) *AirtableLTKTokens {
	return &AirtableLTKTokens{client: client, table: table}
}

// LTKTokens implements integration.LTKTokenSource
func (s *AirtableLTKTokens) LTKTokens(ctx context.Context) (integration.LTKTokens, error) {
	rec, err := s.client.LatestRecord(ctx, s.table, LTKLastRefreshedField)
	if err != nil {
		return integration.LTKTokens{}, fmt.Errorf("ltk tokens: %w", err)
	}
	if rec == nil {
		return integration.LTKTokens{}, fmt.Errorf("%w: no rows in %s", integration.ErrCredentialsMissing, s.table)
	}
	tokens := integration.LTKTokens{
		AccessToken: rec.Fields.String(LTKAccessTokenField),
		IDToken:     rec.Fields.String(LTKIDTokenField),
	}
	if tokens.AccessToken == "" || tokens.IDToken == "" {
		return integration.LTKTokens{}, fmt.Errorf("%w: ltk tokens incomplete", integration.ErrCredentialsMissing)
	}
	return tokens, nil
}

var _ integration.LTKTokenSource = (*AirtableLTKTokens)(nil)
