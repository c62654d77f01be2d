// Package source provides Remote Data Source adapters for table
// controllers: a paginated HTTP source, an unpaginated collection source
// and the HTTP client they share.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/pitabwire/touchline/internal/observability"
	"github.com/pitabwire/touchline/model"
)

// DefaultTimeout bounds a request when no timeout is configured.
const DefaultTimeout = 10 * time.Second

const maxBodyBytes = 10 << 20

// Client issues GET requests to one Remote Data Source and classifies
// every failure as a transport, HTTP status or decode error.
type Client struct {
	name    string
	baseURL string
	http    *http.Client
	breaker *Breaker
	logger  *zap.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithBreaker guards the client with a circuit breaker.
func WithBreaker(b *Breaker) ClientOption {
	return func(c *Client) { c.breaker = b }
}

func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client for the source at baseURL. Requests carry
// trace context through an otelhttp transport.
func NewClient(name, baseURL string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("source: parse base url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("source: base url %q must be absolute", baseURL)
	}

	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxConnsPerHost:     50,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	c := &Client{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: otelhttp.NewTransport(transport),
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Name returns the configured source name.
func (c *Client) Name() string { return c.name }

// Breaker returns the client's breaker, or nil.
func (c *Client) Breaker() *Breaker { return c.breaker }

// HealthCheck reports the source as unhealthy while its breaker is open.
// It never calls the source.
func (c *Client) HealthCheck(_ context.Context) error {
	if c.breaker != nil && c.breaker.State() == BreakerOpen {
		return fmt.Errorf("source %s: %w", c.name, ErrBreakerOpen)
	}
	return nil
}

// GetJSON fetches path with query and decodes the body into into. Any
// returned error is a *model.FetchError. The body of a non-2xx response is
// not read.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, into any) (err error) {
	ctx, span := observability.StartSpan(ctx, "source.get",
		observability.AttrSource.String(c.name),
		observability.AttrSourcePath.String(path),
	)
	defer func() { observability.EndSpanWithError(span, err) }()

	if c.breaker != nil {
		if berr := c.breaker.Allow(); berr != nil {
			c.logger.Warn("source unavailable",
				zap.String("source", c.name),
				zap.String("path", path),
			)
			return model.NewTransportError(fmt.Errorf("source %s: %w", c.name, berr))
		}
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return model.NewTransportError(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.recordFailure()
		return model.NewTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Only 5xx count against the breaker; 4xx are not infrastructure failures.
		if resp.StatusCode >= 500 {
			c.recordFailure()
		} else {
			c.recordSuccess()
		}
		return model.NewHTTPStatusError(resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.recordFailure()
		return model.NewTransportError(fmt.Errorf("read response: %w", err))
	}
	c.recordSuccess()

	c.logger.Debug("source response",
		zap.String("source", c.name),
		zap.String("url", reqURL),
		zap.Int("bytes", len(body)),
		zap.Duration("duration", time.Since(start)),
	)

	if err := json.Unmarshal(body, into); err != nil {
		return model.NewDecodeError(err)
	}
	return nil
}

func (c *Client) recordFailure() {
	if c.breaker != nil {
		c.breaker.RecordFailure()
	}
}

func (c *Client) recordSuccess() {
	if c.breaker != nil {
		c.breaker.RecordSuccess()
	}
}
