package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRedisStore_Get(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := newRedisStore(db, zap.NewNop())
	ctx := context.Background()

	t.Run("hit", func(t *testing.T) {
		mock.ExpectGet("swap:venue:mint:buy").SetVal("pumpfun")

		v, found, err := store.Get(ctx, "swap:venue:mint:buy")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "pumpfun", v)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("miss is not an error", func(t *testing.T) {
		mock.ExpectGet("swap:venue:mint:sell").RedisNil()

		v, found, err := store.Get(ctx, "swap:venue:mint:sell")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Empty(t, v)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("backend failure", func(t *testing.T) {
		mock.ExpectGet("k").SetErr(errors.New("connection refused"))

		_, found, err := store.Get(ctx, "k")
		assert.Error(t, err)
		assert.False(t, found)
	})
}

func TestRedisStore_Set(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := newRedisStore(db, zap.NewNop())

	mock.ExpectSet("swap:venue:mint:buy", "pumpswap", 5*time.Minute).SetVal("OK")
	require.NoError(t, store.Set(context.Background(), "swap:venue:mint:buy", "pumpswap", 5*time.Minute))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisOptionsFromURL(t *testing.T) {
	o, err := RedisOptionsFromURL("redis://:secret@cache.local:6380/3")
	require.NoError(t, err)
	assert.Equal(t, RedisOptions{Addr: "cache.local:6380", Password: "secret", DB: 3}, o)

	_, err = RedisOptionsFromURL("http://nope")
	assert.Error(t, err)
}
