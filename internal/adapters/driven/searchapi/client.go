// Package searchapi provides the search endpoint adapter for the external
// crawl-and-search service.
//
// A search is a form-encoded POST to {BaseURL}/search. The service answers
// with JSON: {"success": true, "results": [...]} on success or
// {"success": false, "error": "..."} when it gives up.
package searchapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-querystring/query"

	"github.com/custodia-labs/sitesearch-cli/internal/core/domain"
	"github.com/custodia-labs/sitesearch-cli/internal/core/ports/driven"
	"github.com/custodia-labs/sitesearch-cli/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.SearchEndpoint = (*Client)(nil)

// Default configuration values.
const (
	DefaultBaseURL           = "http://localhost:8080"
	DefaultTimeout           = 120 * time.Second
	DefaultRequestsPerMinute = 10
	DefaultUserAgent         = "sitesearch"

	searchPath = "/search"

	// maxErrorBody caps how much of a failed response is read for its message.
	maxErrorBody = 4 << 10
)

// Config holds configuration for the search service client.
type Config struct {
	// BaseURL is the service base URL (default: http://localhost:8080).
	BaseURL string

	// Timeout bounds one search round-trip (default: 120s).
	Timeout time.Duration

	// RequestsPerMinute throttles searches. Zero uses the default;
	// negative disables throttling.
	RequestsPerMinute int

	// UserAgent is sent with every request (default: sitesearch).
	UserAgent string

	// HTTPClient overrides the transport. Its Timeout is replaced by Timeout.
	HTTPClient *http.Client
}

// ConfigFromSettings builds a Config from application settings.
func ConfigFromSettings(s domain.EndpointSettings) Config {
	rpm := s.RequestsPerMinute
	if rpm == 0 {
		rpm = -1 // explicit 0 in settings means no throttle
	}
	return Config{
		BaseURL:           s.URL,
		Timeout:           s.Timeout,
		RequestsPerMinute: rpm,
		UserAgent:         s.UserAgent,
	}
}

// Client talks to the search service.
type Client struct {
	client    *http.Client
	baseURL   string
	userAgent string
	limiter   *RateLimiter
	now       func() time.Time
}

// NewClient creates a new search service client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerMinute == 0 {
		cfg.RequestsPerMinute = DefaultRequestsPerMinute
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	httpClient := &http.Client{}
	if cfg.HTTPClient != nil {
		clone := *cfg.HTTPClient
		httpClient = &clone
	}
	httpClient.Timeout = cfg.Timeout

	return &Client{
		client:    httpClient,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		limiter:   NewRateLimiter(cfg.RequestsPerMinute),
		now:       time.Now,
	}
}

// BaseURL returns the service base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Search sends one crawl request and waits for the complete response.
func (c *Client) Search(ctx context.Context, req domain.CrawlRequest) (*domain.CrawlResponse, error) {
	values, err := query.Values(newSearchForm(req))
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, transportError("wait for rate limit", 0, err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+searchPath,
		strings.NewReader(values.Encode()),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	logger.Debug("POST %s (resume=%t, visited=%d)", httpReq.URL, req.IsResume, len(req.VisitedURLs))
	start := c.now()

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, transportError("send request", 0, err)
	}
	defer resp.Body.Close()

	logger.Debug("Response %d after %s", resp.StatusCode, c.now().Sub(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.statusError(resp)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, transportError("decode response", resp.StatusCode, err)
	}

	if !body.Success {
		msg := body.Error
		if msg == "" {
			msg = "search failed without an error message"
		}
		return nil, &domain.UpstreamError{Message: msg}
	}

	return body.toDomain(c.now()), nil
}

// statusError maps a non-2xx response to a transport error.
func (c *Client) statusError(resp *http.Response) error {
	msg := readErrorMessage(resp.Body)

	if resp.StatusCode == http.StatusTooManyRequests {
		cause := domain.ErrRateLimited
		if backoff := c.limiter.Observe(resp); backoff > 0 {
			logger.Warn("Rate limited, backing off %s", backoff)
		}
		if msg != "" {
			return &domain.TransportError{
				Op: "search", StatusCode: resp.StatusCode, Retryable: true,
				Err: fmt.Errorf("%w: %s", cause, msg),
			}
		}
		return &domain.TransportError{Op: "search", StatusCode: resp.StatusCode, Retryable: true, Err: cause}
	}

	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &domain.TransportError{
		Op:         "search",
		StatusCode: resp.StatusCode,
		Retryable:  resp.StatusCode >= 500,
		Err:        errors.New(msg),
	}
}

// readErrorMessage extracts the service's error message from a failed
// response, falling back to the raw body.
func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}

	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		return body.Error
	}
	return strings.TrimSpace(string(raw))
}

// transportError wraps a failure that produced no usable response.
// Timeouts are retryable; cancellation is not.
func transportError(op string, status int, err error) error {
	retryable := errors.Is(err, context.DeadlineExceeded)
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		retryable = true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		retryable = true
	}
	return &domain.TransportError{Op: op, StatusCode: status, Retryable: retryable, Err: err}
}
