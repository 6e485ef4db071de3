// Package resilience wraps outbound HTTP calls to the public weather,
// hazard, and geocoding APIs with retries, per-request timeouts, and a
// circuit breaker per upstream.
package resilience

import (
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

// Predefined errors for resilient operations.
var (
	// ErrUpstreamOpen is returned when the upstream's circuit breaker is open.
	ErrUpstreamOpen = errors.New("upstream circuit open")
)

// ClientConfig holds configuration for the resilient HTTP client.
type ClientConfig struct {
	// Name identifies the upstream for circuit breaker naming.
	Name string

	// Timeout bounds each individual HTTP attempt. Default: 10s.
	Timeout time.Duration

	// MaxRetries is the number of retry attempts after the first try.
	// Default: 3.
	MaxRetries uint64

	// RetryBaseInterval is the initial backoff interval. Default: 100ms.
	RetryBaseInterval time.Duration

	// RetryMaxInterval caps the backoff interval. Default: 5s.
	RetryMaxInterval time.Duration

	// BreakerTimeout is how long the breaker stays open before probing the
	// upstream again. Default: 60s.
	BreakerTimeout time.Duration
}

// DefaultClientConfig returns defaults suitable for the public APIs this
// module talks to.
func DefaultClientConfig(name string) ClientConfig {
	return ClientConfig{
		Name:              name,
		Timeout:           10 * time.Second,
		MaxRetries:        3,
		RetryBaseInterval: 100 * time.Millisecond,
		RetryMaxInterval:  5 * time.Second,
		BreakerTimeout:    60 * time.Second,
	}
}

// Client is an HTTP client that retries transient failures with exponential
// backoff and stops calling an upstream once its circuit breaker trips.
type Client struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	config     ClientConfig
}

// NewClient creates a new resilient HTTP client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBaseInterval == 0 {
		cfg.RetryBaseInterval = 100 * time.Millisecond
	}
	if cfg.RetryMaxInterval == 0 {
		cfg.RetryMaxInterval = 5 * time.Second
	}
	if cfg.BreakerTimeout == 0 {
		cfg.BreakerTimeout = 60 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.5
		},
	})

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    breaker,
		config:     cfg,
	}
}

// serverError marks a 5xx response so it both trips the breaker and is
// retried.
type serverError struct {
	statusCode int
}

func (e *serverError) Error() string {
	return "server error: " + http.StatusText(e.statusCode)
}

// Do executes the request. Network errors and 5xx responses are retried with
// exponential backoff up to MaxRetries; 4xx responses are returned as-is.
// When the breaker for this upstream is open, Do fails immediately with
// ErrUpstreamOpen.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.config.RetryBaseInterval
	bo.MaxInterval = c.config.RetryMaxInterval
	bo.MaxElapsedTime = 0 // retries are bounded by MaxRetries, not wall time

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.config.MaxRetries), ctx)

	var lastResp *http.Response

	attempt := func() error {
		resp, err := c.breaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // caller closes
			r, doErr := c.httpClient.Do(req.Clone(ctx))
			if doErr != nil {
				return nil, doErr
			}
			if r.StatusCode >= 500 {
				return r, &serverError{statusCode: r.StatusCode}
			}
			return r, nil
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(ErrUpstreamOpen)
			}
			if resp != nil {
				lastResp = resp
			}
			return err
		}
		lastResp = resp
		return nil
	}

	if err := backoff.Retry(attempt, policy); err != nil {
		// A 5xx that exhausted retries still carries a usable response;
		// hand it to the caller so status handling stays in one place.
		if lastResp != nil {
			return lastResp, nil
		}
		return nil, err
	}
	return lastResp, nil
}

// State exposes the breaker state for diagnostics.
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

// Interface guard for the transport-like contract clients depend on.
var _ interface {
	Do(*http.Request) (*http.Response, error)
} = (*Client)(nil)
