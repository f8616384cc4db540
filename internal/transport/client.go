package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"tscribe/internal/api"
	"tscribe/internal/config"
	"tscribe/internal/services"
)

const (
	defaultTimeout        = 30 * time.Second
	defaultProcessTimeout = 15 * time.Minute
	defaultUserAgent      = "tscribe/0.1.0"
	// RequestIDHeader carries the per-call correlation id.
	RequestIDHeader = "X-Request-ID"
)

// Client is the configured HTTP transport for the backend. Deadlines are
// applied per request from api.Request.Deadline; the underlying http.Client
// carries no Timeout of its own.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	headers        http.Header
	userAgent      string
	timeout        time.Duration
	processTimeout time.Duration
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithHeader adds a default header sent on every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		if strings.TrimSpace(key) != "" {
			c.headers.Set(key, value)
		}
	}
}

// WithProcessTimeout sets the deadline for api.DeadlineProcessing calls.
func WithProcessTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.processTimeout = timeout
		}
	}
}

// WithUserAgent replaces the default User-Agent header.
func WithUserAgent(agent string) Option {
	return func(c *Client) {
		if agent = strings.TrimSpace(agent); agent != "" {
			c.userAgent = agent
		}
	}
}

// NewClient constructs a client rooted at baseURL. timeout bounds ordinary
// calls; processing calls use the longer of timeout and the process timeout.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := &Client{
		baseURL:        strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient:     &http.Client{},
		headers:        http.Header{},
		userAgent:      defaultUserAgent,
		timeout:        timeout,
		processTimeout: defaultProcessTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	if client.processTimeout < client.timeout {
		client.processTimeout = client.timeout
	}
	return client
}

// NewFromConfig builds a client from the [api] config section.
func NewFromConfig(cfg *config.Config, opts ...Option) *Client {
	base := []Option{WithUserAgent(cfg.API.UserAgent), WithProcessTimeout(cfg.ProcessTimeout())}
	for key, value := range cfg.API.Headers {
		base = append(base, WithHeader(key, value))
	}
	return NewClient(cfg.API.BaseURL, cfg.RequestTimeout(), append(base, opts...)...)
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Timeout returns the deadline applied to req. Zero means the caller's
// context is the only bound.
func (c *Client) Timeout(req api.Request) time.Duration {
	switch req.Deadline {
	case api.DeadlineProcessing:
		return c.processTimeout
	case api.DeadlineNone:
		return 0
	default:
		return c.timeout
	}
}

// URL resolves req to an absolute URL.
func (c *Client) URL(req api.Request) string {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}
	return target
}

// NewHTTPRequest builds the outbound request for req, including default
// headers, the correlation id from ctx, and trace context.
func (c *Client) NewHTTPRequest(ctx context.Context, req api.Request) (*http.Request, error) {
	var body io.Reader
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "transport", req.Operation, "encode request body", err)
		}
		body = bytes.NewReader(encoded)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, c.URL(req), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for key, values := range c.headers {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}
	httpReq.Header.Set("User-Agent", c.userAgent)
	if req.Download {
		httpReq.Header.Set("Accept", "*/*")
	} else {
		httpReq.Header.Set("Accept", "application/json")
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		httpReq.Header.Set(RequestIDHeader, rid)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))
	return httpReq, nil
}

// Send performs exactly one HTTP call for req. The request deadline keeps
// running until the response body is closed.
func (c *Client) Send(ctx context.Context, req api.Request) (*http.Response, error) {
	cancel := context.CancelFunc(func() {})
	if timeout := c.Timeout(req); timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	}
	httpReq, err := c.NewHTTPRequest(ctx, req)
	if err != nil {
		cancel()
		return nil, err
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		cancel()
		return nil, err
	}
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}
