// =============================================
// File: internal/egress/client.go
// =============================================
package egress

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/rovshanmuradov/swap-builder/internal/utils/metrics"
)

// ErrTransient marks a call that kept failing after all retries.
var ErrTransient = errors.New("egress: transient failure")

const maxBodySize = 4 << 20

// StatusError is a non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// Retryable reports whether the status is worth another attempt.
func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// JSONClient is the port consumed by vendor venue APIs.
type JSONClient interface {
	GetJSON(ctx context.Context, route, url string, out any) error
	PostJSON(ctx context.Context, route, url string, body, out any) error
}

// Config holds the egress settings.
type Config struct {
	MaxRetries          int
	AttemptTimeout      time.Duration
	RetryDelay          time.Duration
	Proxies             []string
	ProxiedRoutes       []string
	ProxyBlacklistReset time.Duration
	RateLimit           float64 // requests per second per host, 0 disables
	RateBurst           int
	BreakerFailures     uint32
	BreakerTimeout      time.Duration
	UserAgent           string
}

// DefaultConfig returns the egress defaults.
func DefaultConfig() Config {
	return Config{
		MaxRetries:          3,
		AttemptTimeout:      5 * time.Second,
		RetryDelay:          200 * time.Millisecond,
		ProxyBlacklistReset: 5 * time.Minute,
		RateLimit:           10,
		RateBurst:           5,
		BreakerFailures:     5,
		BreakerTimeout:      30 * time.Second,
		UserAgent:           "swap-builder/1.0",
	}
}

// Client performs retried, timeout-bounded HTTP calls.
type Client struct {
	cfg     Config
	direct  *http.Client
	proxies *ProxyPool
	proxied map[string]bool
	logger  *zap.Logger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	breakers map[string]*gobreaker.CircuitBreaker
}

var _ JSONClient = (*Client)(nil)

// NewClient создаёт egress-клиент.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	def := DefaultConfig()
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = def.MaxRetries
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = def.AttemptTimeout
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = def.BreakerFailures
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = def.BreakerTimeout
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 1
	}

	pool, err := NewProxyPool(cfg.Proxies, cfg.ProxyBlacklistReset, logger)
	if err != nil {
		return nil, err
	}

	proxied := make(map[string]bool, len(cfg.ProxiedRoutes))
	for _, r := range cfg.ProxiedRoutes {
		proxied[r] = true
	}

	return &Client{
		cfg:      cfg,
		direct:   &http.Client{Transport: http.DefaultTransport},
		proxies:  pool,
		proxied:  proxied,
		logger:   logger.Named("egress"),
		limiters: make(map[string]*rate.Limiter),
		breakers: make(map[string]*gobreaker.CircuitBreaker),
	}, nil
}

// GetJSON performs a GET and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, route, rawURL string, out any) error {
	data, err := c.Do(ctx, route, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	return decode(data, out)
}

// PostJSON marshals body, performs a POST and decodes the response into out.
func (c *Client) PostJSON(ctx context.Context, route, rawURL string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}
	data, err := c.Do(ctx, route, http.MethodPost, rawURL, payload)
	if err != nil {
		return err
	}
	return decode(data, out)
}

func decode(data []byte, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Do performs the request with retry. Non-retryable statuses are returned
// as *StatusError, everything else that exhausts retries wraps ErrTransient.
func (c *Client) Do(ctx context.Context, route, method, rawURL string, body []byte) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	limiter := c.limiter(u.Host)
	breaker := c.breaker(route)

	attempt := 0
	operation := func() ([]byte, error) {
		attempt++
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return nil, backoff.Permanent(err)
			}
		}

		res, err := breaker.Execute(func() (any, error) {
			return c.attempt(ctx, route, method, u, body)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				metrics.RecordEgressAttempt(route, "breaker_open")
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		return res.([]byte), nil
	}

	notify := func(err error, d time.Duration) {
		c.logger.Debug("Retrying egress call",
			zap.String("route", route),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", d),
			zap.Error(err))
	}

	data, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(c.cfg.RetryDelay)),
		backoff.WithMaxTries(uint(c.cfg.MaxRetries)),
		backoff.WithNotify(notify))
	if err == nil {
		return data, nil
	}

	var se *StatusError
	if errors.As(err, &se) && !se.Retryable() {
		return nil, err
	}
	c.logger.Warn("Egress call failed",
		zap.String("route", route),
		zap.Int("attempts", attempt),
		zap.Error(err))
	return nil, fmt.Errorf("%w: %s: %w", ErrTransient, route, err)
}

// attempt runs one request under its own timeout.
func (c *Client) attempt(ctx context.Context, route, method string, u *url.URL, body []byte) ([]byte, error) {
	actx, cancel := context.WithTimeout(ctx, c.cfg.AttemptTimeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(actx, method, u.String(), reader)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	httpClient := c.direct
	var proxy *proxyEntry
	if c.proxied[route] && c.proxies.Len() > 0 {
		proxy, err = c.proxies.Next()
		if err != nil {
			return nil, err
		}
		httpClient = proxy.client
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		if proxy != nil && ctx.Err() == nil && isConnectionError(err) {
			c.proxies.Blacklist(proxy)
		}
		metrics.RecordEgressAttempt(route, "error")
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		metrics.RecordEgressAttempt(route, "error")
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.RecordEgressAttempt(route, "status_"+strconv.Itoa(resp.StatusCode))
		se := &StatusError{Code: resp.StatusCode, Body: truncate(string(data), 256)}
		if !se.Retryable() {
			return nil, backoff.Permanent(se)
		}
		return nil, se
	}

	metrics.RecordEgressAttempt(route, "ok")
	return data, nil
}

func (c *Client) limiter(host string) *rate.Limiter {
	if c.cfg.RateLimit <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Limit(c.cfg.RateLimit), c.cfg.RateBurst)
		c.limiters[host] = l
	}
	return l
}

func (c *Client) breaker(route string) *gobreaker.CircuitBreaker {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.breakers[route]
	if ok {
		return b
	}
	threshold := c.cfg.BreakerFailures
	b = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    route,
		Timeout: c.cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// client errors say nothing about the health of the vendor
		IsSuccessful: func(err error) bool {
			var se *StatusError
			if errors.As(err, &se) {
				return !se.Retryable()
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("Circuit breaker state changed",
				zap.String("route", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	c.breakers[route] = b
	return b
}

func isConnectionError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return !urlErr.Timeout()
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
