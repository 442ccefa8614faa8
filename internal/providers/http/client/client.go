package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/infrastructure/resilience"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

// Options configures a Client.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	// RateLimit is requests per second; zero or less means unlimited.
	RateLimit float64
	Breaker   resilience.Settings
}

// DefaultOptions returns the client defaults.
func DefaultOptions() Options {
	return Options{
		Timeout:   30 * time.Second,
		UserAgent: "Switchboard-Experiments/1.0",
		Breaker: resilience.Settings{
			FailureThreshold: 5,
			OpenTimeout:      5 * time.Minute,
		},
	}
}

// Client wraps resty with rate limiting and a circuit breaker. It never
// retries: one call to Get is one request on the wire.
type Client struct {
	Resty   *resty.Client
	Limiter *rate.Limiter
	Breaker *resilience.Breaker
	Mu      sync.RWMutex
}

// errServerStatus marks 5xx responses as breaker failures without
// turning them into transport errors for the caller.
var errServerStatus = errors.New("server error status")

// NewClient creates an HTTP client for the configuration endpoint.
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	// Only the pooled transport is borrowed; retries stay disabled.
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.Logger = nil

	restyClient := resty.New()
	restyClient.
		SetTimeout(opts.Timeout).
		SetRetryCount(0).
		SetTransport(retryClient.HTTPClient.Transport)
	if opts.UserAgent != "" {
		restyClient.SetHeader("User-Agent", opts.UserAgent)
	}

	breakerSettings := opts.Breaker
	breakerSettings.IsFailure = func(err error) bool {
		return err != nil && !errors.Is(err, context.Canceled)
	}

	return &Client{
		Resty:   restyClient,
		Limiter: newLimiter(opts.RateLimit),
		Breaker: resilience.New("experiments-config", breakerSettings),
	}
}

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// SetRateLimit configures rate limiting (requests per second)
func (c *Client) SetRateLimit(rps float64) {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	c.Limiter = newLimiter(rps)
}

// SetHeader adds a default header
func (c *Client) SetHeader(key, value string) {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	c.Resty.SetHeader(key, value)
}

// Request creates a new request after the breaker and rate limiter admit it.
func (c *Client) Request(ctx context.Context) (*resty.Request, error) {
	if c.Breaker.State() == resilience.StateOpen {
		return nil, resilience.ErrCircuitOpen
	}

	c.Mu.RLock()
	limiter := c.Limiter
	c.Mu.RUnlock()

	if err := limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit error: %w", err)
	}

	c.Mu.RLock()
	defer c.Mu.RUnlock()
	return c.Resty.R().SetContext(ctx), nil
}

// Get issues a single GET. Transport failures come back as errors; any
// HTTP status, including 5xx, comes back as a response.
func (c *Client) Get(ctx context.Context, url string) (*resty.Response, error) {
	req, err := c.Request(ctx)
	if err != nil {
		return nil, err
	}

	var resp *resty.Response
	err = c.Breaker.Execute(func() error {
		r, err := req.Get(url)
		if err != nil {
			return err
		}
		resp = r
		if r.StatusCode() >= http.StatusInternalServerError {
			return errServerStatus
		}
		return nil
	})
	if errors.Is(err, errServerStatus) {
		return resp, nil
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// BreakerState returns the current circuit breaker state
func (c *Client) BreakerState() resilience.State {
	return c.Breaker.State()
}
