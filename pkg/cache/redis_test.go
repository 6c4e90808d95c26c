package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisCacheFromClient(client, "test:"), s
}

func TestRedisCache(t *testing.T) {
	c, s := newTestCache(t)
	ctx := context.Background()

	t.Run("SetAndGet", func(t *testing.T) {
		type payload struct {
			Name string `json:"name"`
		}
		require.NoError(t, c.Set(ctx, "vehicle", payload{Name: "Civic"}, time.Minute))

		var got payload
		require.NoError(t, c.Get(ctx, "vehicle", &got))
		assert.Equal(t, "Civic", got.Name)
		assert.True(t, s.Exists("test:vehicle"))
	})

	t.Run("GetMissing", func(t *testing.T) {
		var got string
		assert.ErrorIs(t, c.Get(ctx, "missing", &got), ErrCacheMiss)
	})

	t.Run("SetNXOnlyOnce", func(t *testing.T) {
		first, err := c.SetNX(ctx, "webhook_event:evt_1", 1, time.Hour)
		require.NoError(t, err)
		assert.True(t, first)

		second, err := c.SetNX(ctx, "webhook_event:evt_1", 1, time.Hour)
		require.NoError(t, err)
		assert.False(t, second)

		require.NoError(t, c.Delete(ctx, "webhook_event:evt_1"))
		third, err := c.SetNX(ctx, "webhook_event:evt_1", 1, time.Hour)
		require.NoError(t, err)
		assert.True(t, third)
	})

	t.Run("IncrementWindow", func(t *testing.T) {
		for i := int64(1); i <= 3; i++ {
			n, err := c.IncrementWindow(ctx, "rl:login:1.2.3.4", time.Minute)
			require.NoError(t, err)
			assert.Equal(t, i, n)
		}

		assert.Equal(t, time.Minute, s.TTL("test:rl:login:1.2.3.4"))

		s.FastForward(2 * time.Minute)
		n, err := c.IncrementWindow(ctx, "rl:login:1.2.3.4", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}
