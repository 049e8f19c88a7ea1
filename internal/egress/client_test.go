package egress

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.RetryDelay = time.Millisecond
	cfg.AttemptTimeout = 200 * time.Millisecond
	cfg.RateLimit = 0
	return cfg
}

func newTestClient(t *testing.T, cfg Config) *Client {
	t.Helper()
	c, err := NewClient(cfg, zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, testConfig())
	var out struct {
		Status string `json:"status"`
	}
	require.NoError(t, c.GetJSON(context.Background(), "test", srv.URL, &out))
	assert.Equal(t, "ok", out.Status)
	assert.Equal(t, int32(3), hits.Load())
}

func TestClient_ClientErrorIsNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "bad mint", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := newTestClient(t, testConfig())
	err := c.GetJSON(context.Background(), "test", srv.URL, nil)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.Code)
	assert.False(t, errors.Is(err, ErrTransient))
	assert.Equal(t, int32(1), hits.Load())
}

func TestClient_ExhaustedRetriesAreTransient(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newTestClient(t, testConfig())
	err := c.GetJSON(context.Background(), "test", srv.URL, nil)
	assert.ErrorIs(t, err, ErrTransient)
	assert.Equal(t, int32(3), hits.Load())
}

func TestClient_AttemptTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.AttemptTimeout = 20 * time.Millisecond
	cfg.MaxRetries = 2
	c := newTestClient(t, cfg)

	start := time.Now()
	err := c.GetJSON(context.Background(), "slow", srv.URL, nil)
	assert.ErrorIs(t, err, ErrTransient)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestClient_PostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`{"echo":true}`))
	}))
	defer srv.Close()

	c := newTestClient(t, testConfig())
	var out map[string]bool
	require.NoError(t, c.PostJSON(context.Background(), "test", srv.URL, map[string]string{"a": "b"}, &out))
	assert.True(t, out["echo"])
}

func TestClient_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.MaxRetries = 1
	cfg.BreakerFailures = 2
	cfg.BreakerTimeout = time.Minute
	c := newTestClient(t, cfg)

	for i := 0; i < 2; i++ {
		require.Error(t, c.GetJSON(context.Background(), "flaky", srv.URL, nil))
	}
	err := c.GetJSON(context.Background(), "flaky", srv.URL, nil)
	assert.ErrorIs(t, err, ErrTransient)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(2), hits.Load())
}

func TestClient_ProxiedRouteSkipsDeadProxy(t *testing.T) {
	var proxied atomic.Int32
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		proxied.Add(1)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer proxy.Close()

	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	cfg := testConfig()
	cfg.Proxies = []string{deadURL, proxy.URL}
	cfg.ProxiedRoutes = []string{"vendor"}
	c := newTestClient(t, cfg)

	require.NoError(t, c.GetJSON(context.Background(), "vendor", "http://vendor.invalid/token", nil))
	assert.Equal(t, int32(1), proxied.Load())
	assert.Equal(t, 1, c.proxies.Blacklisted())
}

func TestProxyPool_RotationAndReset(t *testing.T) {
	pool, err := NewProxyPool([]string{"http://a:1", "http://b:1", "http://c:1"}, time.Minute, zap.NewNop())
	require.NoError(t, err)
	now := time.Now()
	pool.now = func() time.Time { return now }
	pool.lastReset = now

	first, _ := pool.Next()
	second, _ := pool.Next()
	third, _ := pool.Next()
	fourth, _ := pool.Next()
	assert.Equal(t, "a:1", first.url.Host)
	assert.Equal(t, "b:1", second.url.Host)
	assert.Equal(t, "c:1", third.url.Host)
	assert.Equal(t, "a:1", fourth.url.Host)

	pool.Blacklist(second)
	e, _ := pool.Next() // b skipped
	assert.Equal(t, "c:1", e.url.Host)
	assert.Equal(t, 1, pool.Blacklisted())

	now = now.Add(2 * time.Minute)
	_, _ = pool.Next()
	assert.Zero(t, pool.Blacklisted())
}

func TestProxyPool_ResetsWhenAllBlacklisted(t *testing.T) {
	pool, err := NewProxyPool([]string{"http://a:1", "http://b:1"}, time.Hour, zap.NewNop())
	require.NoError(t, err)

	a, _ := pool.Next()
	b, _ := pool.Next()
	pool.Blacklist(a)
	pool.Blacklist(b)

	e, err := pool.Next()
	require.NoError(t, err)
	assert.NotNil(t, e)
	assert.Zero(t, pool.Blacklisted())
}

func TestProxyPool_Invalid(t *testing.T) {
	_, err := NewProxyPool([]string{"::"}, time.Minute, zap.NewNop())
	assert.Error(t, err)

	empty, err := NewProxyPool(nil, time.Minute, zap.NewNop())
	require.NoError(t, err)
	_, err = empty.Next()
	assert.ErrorIs(t, err, ErrNoProxies)
}
