// Package employeeclient calls the employee lookup endpoint of a running label server.
package employeeclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/etiqueta/backend/internal/domain/employee"
	"github.com/etiqueta/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const maxPayloadBytes = 16 << 10

// Config holds client settings
type Config struct {
	// BaseURL is the API root, e.g. http://localhost:3000/api
	BaseURL string
	Timeout time.Duration
}

// Client fetches employee contacts over HTTP. Requests are never retried.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Client
func New(cfg Config, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LookupEmployee returns the contact for code.
// Any non-2xx answer is reported as shared.ErrNotFound; other errors are transport failures.
func (c *Client) LookupEmployee(ctx context.Context, code string) (*employee.Contact, error) {
	endpoint := c.baseURL + "/entregador/" + url.PathEscape(code)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build employee request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("employee request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("employee not found",
			zap.String("code", code),
			zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: employee %q (status %d)", shared.ErrNotFound, code, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read employee response: %w", err)
	}
	var contact employee.Contact
	if err := json.Unmarshal(body, &contact); err != nil {
		return nil, fmt.Errorf("failed to decode employee response: %w", err)
	}
	return &contact, nil
}
