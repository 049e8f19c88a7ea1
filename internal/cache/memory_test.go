package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryStore_Expiry(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	store := NewMemoryStore()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	_ = store.Set(ctx, "k", "boop", 15*time.Second)

	v, found, _ := store.Get(ctx, "k")
	assert.True(t, found)
	assert.Equal(t, "boop", v)

	now = now.Add(15 * time.Second)
	_, found, _ = store.Get(ctx, "k")
	assert.False(t, found, "entry must expire exactly at its TTL")

	hits, misses := store.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
}

func TestNoop(t *testing.T) {
	var s Store = Noop{}
	assert.NoError(t, s.Set(context.Background(), "k", "v", time.Minute))
	_, found, err := s.Get(context.Background(), "k")
	assert.NoError(t, err)
	assert.False(t, found)
}
