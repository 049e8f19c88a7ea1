package solbc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testPool(urls ...string) *nodePool {
	nodes := make([]*node, len(urls))
	for i, u := range urls {
		nodes[i] = &node{url: u, rpc: rpc.New(u)}
	}
	return newNodePool(nodes, time.Minute, zap.NewNop())
}

func TestNodePool_FailsOverAndCoolsDown(t *testing.T) {
	p := testPool("http://a", "http://b")
	bad := p.nodes[0].rpc

	var used []*rpc.Client
	call := func(r *rpc.Client) error {
		used = append(used, r)
		if r == bad {
			return errors.New("connection refused")
		}
		return nil
	}

	require.NoError(t, p.do(context.Background(), "getSlot", call))
	require.Len(t, used, 2)
	assert.Same(t, bad, used[0])

	// a is cooling down, so the next calls go straight to b
	used = nil
	require.NoError(t, p.do(context.Background(), "getSlot", call))
	require.NoError(t, p.do(context.Background(), "getSlot", call))
	assert.Equal(t, []*rpc.Client{p.nodes[1].rpc, p.nodes[1].rpc}, used)

	success, errs, _ := p.nodes[0].Stats()
	assert.Zero(t, success)
	assert.Equal(t, uint64(1), errs)
}

func TestNodePool_RecoversAfterCooldown(t *testing.T) {
	p := testPool("http://a", "http://b")
	now := time.Now()
	p.now = func() time.Time { return now }

	p.nodes[0].markDown(now.Add(time.Minute))
	assert.Same(t, p.nodes[1], p.pick())
	assert.Same(t, p.nodes[1], p.pick())

	now = now.Add(2 * time.Minute)
	picked := map[*node]bool{p.pick(): true, p.pick(): true}
	assert.True(t, picked[p.nodes[0]])
}

func TestNodePool_NotFoundIsNotAFailure(t *testing.T) {
	p := testPool("http://a", "http://b")
	calls := 0
	err := p.do(context.Background(), "getAccountInfo", func(*rpc.Client) error {
		calls++
		return rpc.ErrNotFound
	})
	assert.ErrorIs(t, err, rpc.ErrNotFound)
	assert.Equal(t, 1, calls)
	assert.True(t, p.nodes[0].available(time.Now()))
}

func TestNodePool_AllFail(t *testing.T) {
	p := testPool("http://a", "http://b", "http://c")
	calls := 0
	err := p.do(context.Background(), "getSlot", func(*rpc.Client) error {
		calls++
		return errors.New("503")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all RPC nodes")
	assert.Equal(t, 3, calls)
}

func TestNodePool_StopsOnCancelledContext(t *testing.T) {
	p := testPool("http://a", "http://b")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := p.do(ctx, "getSlot", func(*rpc.Client) error {
		calls++
		return context.Canceled
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestNodePool_Empty(t *testing.T) {
	err := newNodePool(nil, time.Minute, zap.NewNop()).do(context.Background(), "getSlot", func(*rpc.Client) error { return nil })
	assert.ErrorIs(t, err, ErrNoNodes)
}
