// internal/egress/proxy.go
package egress

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/swap-builder/internal/utils/metrics"
)

// ErrNoProxies is returned by an empty pool.
var ErrNoProxies = errors.New("no egress proxies configured")

type proxyEntry struct {
	url    *url.URL
	client *http.Client
}

// ProxyPool rotates requests over a fixed proxy list. A proxy that fails at
// the connection level is skipped until the blacklist is reset.
type ProxyPool struct {
	mu          sync.Mutex
	entries     []*proxyEntry
	next        int
	blacklisted map[string]struct{}
	resetEvery  time.Duration
	lastReset   time.Time
	now         func() time.Time
	logger      *zap.Logger
}

// NewProxyPool создаёт пул прокси. Для каждого прокси создаётся свой
// http.Transport, чтобы переиспользовать соединения.
func NewProxyPool(rawURLs []string, resetEvery time.Duration, logger *zap.Logger) (*ProxyPool, error) {
	entries := make([]*proxyEntry, 0, len(rawURLs))
	for _, raw := range rawURLs {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("invalid proxy url %q", raw)
		}
		entries = append(entries, &proxyEntry{
			url: u,
			client: &http.Client{
				Transport: &http.Transport{
					Proxy:               http.ProxyURL(u),
					MaxIdleConnsPerHost: 4,
					IdleConnTimeout:     90 * time.Second,
					TLSHandshakeTimeout: 5 * time.Second,
				},
			},
		})
	}

	return &ProxyPool{
		entries:     entries,
		blacklisted: make(map[string]struct{}),
		resetEvery:  resetEvery,
		lastReset:   time.Now(),
		now:         time.Now,
		logger:      logger.Named("proxy-pool"),
	}, nil
}

// Len returns the number of configured proxies.
func (p *ProxyPool) Len() int {
	return len(p.entries)
}

// Next returns the next usable proxy in round-robin order.
func (p *ProxyPool) Next() (*proxyEntry, error) {
	if len(p.entries) == 0 {
		return nil, ErrNoProxies
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.resetEvery > 0 && p.now().Sub(p.lastReset) >= p.resetEvery {
		p.resetLocked("interval")
	}
	if len(p.blacklisted) >= len(p.entries) {
		p.resetLocked("all proxies blacklisted")
	}

	for range p.entries {
		e := p.entries[p.next]
		p.next = (p.next + 1) % len(p.entries)
		if _, bad := p.blacklisted[e.url.String()]; !bad {
			return e, nil
		}
	}
	return nil, ErrNoProxies
}

// Blacklist marks a proxy unusable until the next reset.
func (p *ProxyPool) Blacklist(e *proxyEntry) {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := e.url.String()
	if _, ok := p.blacklisted[key]; ok {
		return
	}
	p.blacklisted[key] = struct{}{}
	metrics.SetBlacklistedProxies(len(p.blacklisted))
	p.logger.Warn("Proxy blacklisted", zap.String("proxy", e.url.Redacted()), zap.Int("blacklisted", len(p.blacklisted)))
}

// Blacklisted returns the number of proxies currently skipped.
func (p *ProxyPool) Blacklisted() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.blacklisted)
}

func (p *ProxyPool) resetLocked(reason string) {
	if len(p.blacklisted) > 0 {
		p.logger.Info("Resetting proxy blacklist", zap.String("reason", reason), zap.Int("cleared", len(p.blacklisted)))
	}
	p.blacklisted = make(map[string]struct{})
	p.lastReset = p.now()
	metrics.SetBlacklistedProxies(0)
}
