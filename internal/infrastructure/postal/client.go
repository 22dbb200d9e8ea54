package postal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/etiqueta/backend/internal/infrastructure/telemetry"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when the directory has no record for the code
	ErrNotFound = errors.New("postal code not found")
	// ErrInvalidCode is returned for inputs that do not normalize to 8 digits
	ErrInvalidCode = errors.New("postal code must have 8 digits")
)

// maxPayloadBytes bounds the directory response read into memory
const maxPayloadBytes = 64 << 10

// Lookup resolves a postal code to an address
type Lookup interface {
	// Lookup returns ErrNotFound for unknown codes; any other error is a transport failure
	Lookup(ctx context.Context, code string) (*Address, error)
}

// ClientConfig holds directory client settings
type ClientConfig struct {
	// URLTemplate contains one %s replaced by the 8-digit code
	URLTemplate     string
	Timeout         time.Duration
	BreakerFailures uint32
	BreakerOpenFor  time.Duration
	BreakerHalfOpen uint32
}

// Client queries the directory over HTTP behind a circuit breaker.
// No request is ever retried.
type Client struct {
	httpClient  *http.Client
	urlTemplate string
	breaker     *gobreaker.CircuitBreaker
	metrics     *telemetry.Metrics
	logger      *zap.Logger
}

// ClientOption is a functional option for configuring Client
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records lookup outcomes and breaker transitions
func WithMetrics(m *telemetry.Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a directory client
func NewClient(cfg ClientConfig, opts ...ClientOption) *Client {
	if cfg.URLTemplate == "" {
		cfg.URLTemplate = "https://viacep.com.br/ws/%s/json/"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerOpenFor <= 0 {
		cfg.BreakerOpenFor = 30 * time.Second
	}
	if cfg.BreakerHalfOpen == 0 {
		cfg.BreakerHalfOpen = 1
	}

	c := &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		urlTemplate: cfg.URLTemplate,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	failures := cfg.BreakerFailures
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "postal-directory",
		MaxRequests: cfg.BreakerHalfOpen,
		Timeout:     cfg.BreakerOpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			// An unknown code is a valid answer, not a directory failure
			return err == nil || errors.Is(err, ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
			c.metrics.SetPostalBreakerState(context.Background(), int(to))
		},
	})

	return c
}

// Lookup normalizes code and fetches its address
func (c *Client) Lookup(ctx context.Context, code string) (*Address, error) {
	digits := NormalizePostalCode(code)
	if !IsValidPostalCode(digits) {
		return nil, ErrInvalidCode
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, digits)
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			c.metrics.RecordPostalLookup(ctx, telemetry.OutcomeNotFound)
		case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
			c.metrics.RecordPostalLookup(ctx, telemetry.OutcomeUnavailable)
			c.logger.Warn("postal directory unavailable", zap.String("state", c.breaker.State().String()))
			return nil, fmt.Errorf("postal directory unavailable: %w", err)
		default:
			c.metrics.RecordPostalLookup(ctx, telemetry.OutcomeFailure)
		}
		return nil, err
	}
	c.metrics.RecordPostalLookup(ctx, telemetry.OutcomeSuccess)
	return result.(*Address), nil
}

// State returns the circuit breaker state
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

func (c *Client) fetch(ctx context.Context, digits string) (*Address, error) {
	url := fmt.Sprintf(c.urlTemplate, digits)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build postal request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("postal request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("postal directory returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read postal response: %w", err)
	}

	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode postal response: %w", err)
	}
	if payload.Erro {
		return nil, ErrNotFound
	}

	c.logger.Debug("postal code resolved", zap.String("cep", digits))
	return payload.Address(), nil
}

// Ensure Client implements Lookup
var _ Lookup = (*Client)(nil)
