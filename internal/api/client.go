package api

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/diogo/folio/internal/models"
)

// Transport is the single-call chat transport used by the conversation controller
type Transport interface {
	Send(ctx context.Context, text string, history []models.WireMessage) (string, error)
}

// Client talks to the portfolio frontend API
type Client struct {
	httpClient   *http.Client
	baseURL      string
	chatPath     string
	timeout      time.Duration
	headers      map[string]string
	logger       zerolog.Logger
	contentCache ContentCache

	mu     sync.RWMutex
	closed bool
}

// Ensure Client implements Transport
var _ Transport = (*Client)(nil)

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithBaseURL sets the API base URL (scheme and host, no trailing slash)
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithChatPath overrides the chat endpoint path
func WithChatPath(path string) ClientOption {
	return func(c *Client) {
		if path != "" {
			c.chatPath = path
		}
	}
}

// WithTimeout sets the per-call timeout. Non-positive values keep the default.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithHeader adds a header sent on every request
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// WithLogger sets the client logger
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithContentCache replaces the per-client memory cache used by FetchContent
func WithContentCache(cache ContentCache) ClientOption {
	return func(c *Client) {
		if cache != nil {
			c.contentCache = cache
		}
	}
}

// NewClient creates a new Client
func NewClient(opts ...ClientOption) *Client {
	client := &Client{
		// Timeouts are applied per call through the request context.
		httpClient:   &http.Client{},
		baseURL:      models.DefaultBaseURL,
		chatPath:     models.EndpointChat,
		timeout:      models.DefaultChatTimeout,
		headers:      models.DefaultHeaders(),
		logger:       zerolog.Nop(),
		contentCache: newMemoryCache(),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// BaseURL returns the configured base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Timeout returns the per-call timeout
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// ChatEndpoint returns the full chat endpoint URL
func (c *Client) ChatEndpoint() string {
	return c.baseURL + c.chatPath
}

// Close marks the client closed and releases idle connections
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.httpClient.CloseIdleConnections()
}

// IsClosed returns whether the client is closed
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// applyHeaders sets client-wide headers and any per-call headers from ctx
func (c *Client) applyHeaders(ctx context.Context, req *http.Request) {
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	for key, values := range headersFromContext(ctx) {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
}

type headersKey struct{}

// ContextWithHeaders attaches extra request headers to ctx.
// The relay uses this to pass the caller's Authorization header upstream.
func ContextWithHeaders(ctx context.Context, h http.Header) context.Context {
	if len(h) == 0 {
		return ctx
	}
	return context.WithValue(ctx, headersKey{}, h.Clone())
}

func headersFromContext(ctx context.Context) http.Header {
	h, _ := ctx.Value(headersKey{}).(http.Header)
	return h
}
