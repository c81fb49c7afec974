// Package vendorhttp is the shared outbound HTTP layer for vendor clients.
// Every request is paced by a rate limiter and guarded by a per-vendor
// circuit breaker; responses are read into memory with a size cap.
package vendorhttp

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/creatorhub/backend/internal/domain/integration"
	"github.com/creatorhub/backend/internal/infrastructure/config"
)

// MaxResponseSize is the maximum response body read from a vendor (10MB)
const MaxResponseSize = 10 * 1024 * 1024

// errServerStatus marks a 5xx answer so the breaker counts it as a failure
var errServerStatus = errors.New("vendorhttp: server error status")

// Response is a fully-read vendor response
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Err maps the status code to an integration error, nil for 2xx
func (r *Response) Err() error {
	switch {
	case r.StatusCode >= 200 && r.StatusCode < 300:
		return nil
	case r.StatusCode == http.StatusUnauthorized || r.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: HTTP %d", integration.ErrPlatformAuthFailed, r.StatusCode)
	case r.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: HTTP %d", integration.ErrPlatformRateLimited, r.StatusCode)
	case r.StatusCode >= 500:
		return fmt.Errorf("%w: %w: HTTP %d", integration.ErrPlatformRequestFailed, integration.ErrPlatformUnavailable, r.StatusCode)
	default:
		return fmt.Errorf("%w: HTTP %d", integration.ErrPlatformRequestFailed, r.StatusCode)
	}
}

// Decode unmarshals the body into out, keeping untyped numbers as json.Number
func (r *Response) Decode(out any) error {
	dec := json.NewDecoder(bytes.NewReader(r.Body))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: %v", integration.ErrPlatformInvalidResponse, err)
	}
	return nil
}

// Transport sends requests for a single vendor
type Transport struct {
	name    string
	client  *http.Client
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[*Response]
	logger  *zap.Logger
}

// New creates a transport named after its vendor.
// A zero RequestInterval disables pacing.
func New(name string, cfg config.VendorConfig, logger *zap.Logger) *Transport {
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := rate.Inf
	if cfg.RequestInterval > 0 {
		limit = rate.Every(cfg.RequestInterval)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	maxFailures := cfg.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	log := logger.With(zap.String("vendor", name))

	cb := gobreaker.NewCircuitBreaker[*Response](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !(errors.Is(err, errServerStatus) || errors.Is(err, integration.ErrPlatformUnavailable))
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change",
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Transport{
		name:    name,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, burst),
		cb:      cb,
		logger:  log,
	}
}

// Name returns the vendor name
func (t *Transport) Name() string { return t.name }

// Client returns the default HTTP client
func (t *Transport) Client() *http.Client { return t.client }

// State returns the breaker state
func (t *Transport) State() gobreaker.State { return t.cb.State() }

// Do sends req with the default client.
// The returned response may carry any status; use Response.Err to map it.
func (t *Transport) Do(req *http.Request) (*Response, error) {
	return t.DoWith(t.client, req)
}

// DoWith sends req with client, sharing this transport's limiter and breaker
func (t *Transport) DoWith(client *http.Client, req *http.Request) (*Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrPlatformUnavailable, err)
	}

	start := time.Now()
	resp, err := t.cb.Execute(func() (*Response, error) {
		r, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", integration.ErrPlatformUnavailable, err)
		}
		defer r.Body.Close()

		body, err := io.ReadAll(io.LimitReader(r.Body, MaxResponseSize))
		if err != nil {
			return nil, fmt.Errorf("%w: read body: %v", integration.ErrPlatformUnavailable, err)
		}
		out := &Response{StatusCode: r.StatusCode, Header: r.Header, Body: body}
		if r.StatusCode >= 500 {
			return out, errServerStatus
		}
		return out, nil
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %s", integration.ErrPlatformCircuitOpen, t.name)
	}
	if errors.Is(err, errServerStatus) {
		err = nil
	}
	if err != nil {
		t.logger.Debug("vendor request failed",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Error(err))
		return nil, err
	}

	t.logger.Debug("vendor request",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))
	return resp, nil
}

// DoJSON sends req, maps a non-2xx status to an error and decodes the body into out
func (t *Transport) DoJSON(req *http.Request, out any) error {
	resp, err := t.Do(req)
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return resp.Decode(out)
}
