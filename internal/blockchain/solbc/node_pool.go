// internal/blockchain/solbc/node_pool.go
package solbc

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/swap-builder/internal/utils/metrics"
)

// DefaultNodeCooldown is how long a failing RPC node sits out.
const DefaultNodeCooldown = 30 * time.Second

var ErrNoNodes = errors.New("no RPC nodes configured")

// node is one RPC endpoint of the pool.
type node struct {
	url string
	rpc *rpc.Client

	mu        sync.RWMutex
	downUntil time.Time
	latency   time.Duration // скользящее среднее

	successCount atomic.Uint64
	errorCount   atomic.Uint64
}

func (n *node) available(now time.Time) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return !now.Before(n.downUntil)
}

func (n *node) record(err error, latency time.Duration) {
	if err == nil {
		n.successCount.Add(1)
	} else {
		n.errorCount.Add(1)
	}
	n.mu.Lock()
	if n.latency == 0 {
		n.latency = latency
	} else {
		n.latency = (n.latency + latency) / 2
	}
	n.mu.Unlock()
}

func (n *node) markDown(until time.Time) {
	n.mu.Lock()
	n.downUntil = until
	n.mu.Unlock()
}

// Stats returns success and error counts and the average latency.
func (n *node) Stats() (success, errs uint64, latency time.Duration) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.successCount.Load(), n.errorCount.Load(), n.latency
}

// nodePool rotates over RPC nodes, skipping those that recently failed.
type nodePool struct {
	nodes    []*node
	cooldown time.Duration
	next     atomic.Uint32
	now      func() time.Time
	logger   *zap.Logger
}

func newNodePool(nodes []*node, cooldown time.Duration, logger *zap.Logger) *nodePool {
	return &nodePool{
		nodes:    nodes,
		cooldown: cooldown,
		now:      time.Now,
		logger:   logger,
	}
}

// pick returns the next available node. When every node is cooling down the
// next one in order is used anyway.
func (p *nodePool) pick() *node {
	start := int(p.next.Add(1)-1) % len(p.nodes)
	now := p.now()
	for i := 0; i < len(p.nodes); i++ {
		n := p.nodes[(start+i)%len(p.nodes)]
		if n.available(now) {
			return n
		}
	}
	return p.nodes[start]
}

// do runs call against up to every node of the pool. Not-found answers and
// context errors end the attempt chain.
func (p *nodePool) do(ctx context.Context, method string, call func(*rpc.Client) error) error {
	if len(p.nodes) == 0 {
		return ErrNoNodes
	}

	var lastErr error
	for attempt := 0; attempt < len(p.nodes); attempt++ {
		n := p.pick()
		start := time.Now()
		err := call(n.rpc)
		elapsed := time.Since(start)
		metrics.RecordRPCLatency(method, elapsed)

		if err == nil || errors.Is(err, rpc.ErrNotFound) {
			n.record(nil, elapsed)
			return err
		}
		n.record(err, elapsed)
		if ctx.Err() != nil {
			return err
		}

		lastErr = err
		if len(p.nodes) > 1 {
			n.markDown(p.now().Add(p.cooldown))
			p.logger.Warn("RPC node failed, switching",
				zap.String("node", n.url),
				zap.String("method", method),
				zap.Error(err))
		}
	}
	return fmt.Errorf("%s failed on all RPC nodes: %w", method, lastErr)
}
