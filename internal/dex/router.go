// =============================================
// File: internal/dex/router.go
// =============================================
package dex

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/swap-builder/internal/cache"
	"github.com/rovshanmuradov/swap-builder/internal/utils/metrics"
)

// DefaultSelectionTTL is used for venues without an explicit TTL.
const DefaultSelectionTTL = 30 * time.Second

// Router picks the venue strategy for a request.
type Router struct {
	strategies map[Venue]Strategy
	priority   []Venue
	store      cache.Store
	ttls       map[Venue]time.Duration
	logger     *zap.Logger
}

// NewRouter создаёт роутер. priority задаёт фиксированный порядок выбора и
// должен содержать только зарегистрированные площадки.
func NewRouter(strategies []Strategy, priority []Venue, store cache.Store, ttls map[Venue]time.Duration, logger *zap.Logger) (*Router, error) {
	byVenue := make(map[Venue]Strategy, len(strategies))
	for _, s := range strategies {
		if _, dup := byVenue[s.Venue()]; dup {
			return nil, fmt.Errorf("duplicate strategy for venue %s", s.Venue())
		}
		byVenue[s.Venue()] = s
	}

	if len(priority) == 0 {
		priority = DefaultPriority
	}
	ordered := make([]Venue, 0, len(priority))
	for _, v := range priority {
		if _, ok := byVenue[v]; ok {
			ordered = append(ordered, v)
		}
	}
	if len(ordered) != len(byVenue) {
		return nil, fmt.Errorf("priority list %v does not cover all registered venues", priority)
	}

	if store == nil {
		store = cache.Noop{}
	}

	return &Router{
		strategies: byVenue,
		priority:   ordered,
		store:      store,
		ttls:       ttls,
		logger:     logger.Named("router"),
	}, nil
}

// SelectionKey is the cache key for a memoized venue choice.
func SelectionKey(req *SwapRequest) string {
	return fmt.Sprintf("swap:venue:%s:%s", req.TokenMint(), req.Side)
}

// Select returns the strategy for req. Eligibility predicates run
// concurrently, but the winner is the first eligible venue in priority order.
func (r *Router) Select(ctx context.Context, req *SwapRequest) (Strategy, error) {
	key := SelectionKey(req)

	if s := r.fromCache(ctx, key); s != nil {
		metrics.RecordSelection(string(s.Venue()), true)
		return s, nil
	}

	eligible := make([]bool, len(r.priority))
	g, gctx := errgroup.WithContext(ctx)
	for i, venue := range r.priority {
		strategy := r.strategies[venue]
		g.Go(func() error {
			ok, err := strategy.CanHandle(gctx, req)
			if err != nil {
				r.logger.Warn("Eligibility check failed, treating as not eligible",
					zap.String("venue", string(venue)),
					zap.String("token", req.TokenMint().String()),
					zap.Error(err))
				return nil
			}
			eligible[i] = ok
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, NewTransientNetworkError("route", err)
	}

	for i, venue := range r.priority {
		if !eligible[i] {
			continue
		}
		r.remember(ctx, key, venue)
		metrics.RecordSelection(string(venue), false)
		r.logger.Debug("Venue selected",
			zap.String("venue", string(venue)),
			zap.String("token", req.TokenMint().String()),
			zap.String("side", string(req.Side)))
		return r.strategies[venue], nil
	}

	metrics.RecordSelection("none", false)
	return nil, NewUnsupportedVenueError(req.TokenMint().String(), req.Side)
}

func (r *Router) fromCache(ctx context.Context, key string) Strategy {
	value, found, err := r.store.Get(ctx, key)
	if err != nil {
		r.logger.Debug("Selection cache read failed", zap.String("key", key), zap.Error(err))
		return nil
	}
	if !found {
		return nil
	}
	venue, err := ParseVenue(value)
	if err != nil {
		r.logger.Debug("Ignoring unknown cached venue", zap.String("key", key), zap.String("value", value))
		return nil
	}
	s, ok := r.strategies[venue]
	if !ok {
		return nil
	}
	return s
}

func (r *Router) remember(ctx context.Context, key string, venue Venue) {
	ttl, ok := r.ttls[venue]
	if !ok || ttl <= 0 {
		ttl = DefaultSelectionTTL
	}
	if err := r.store.Set(ctx, key, string(venue), ttl); err != nil {
		r.logger.Debug("Selection cache write failed", zap.String("key", key), zap.Error(err))
	}
}
