package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, opts ...RedisOption) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewRedisCache(append([]RedisOption{WithRedisAddr(mr.Addr())}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestNewRedisCache_RequiresHost(t *testing.T) {
	_, err := NewRedisCache(WithRedisHost(""))
	assert.Error(t, err)
}

func TestRedisCache_IncrementExpire(t *testing.T) {
	c, mr := newTestCache(t, WithRedisPrefix("test"))
	ctx := context.Background()

	for want := int64(1); want <= 2; want++ {
		n, err := c.Increment(ctx, "hits")
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}
	assert.True(t, mr.Exists("test:hits"))

	ok, err := c.Expire(ctx, "hits", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Second)
	assert.False(t, mr.Exists("test:hits"))

	ok, err = c.Expire(ctx, "hits", time.Second)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_EmptyPrefix(t *testing.T) {
	c, mr := newTestCache(t, WithRedisPrefix(""))
	_, err := c.Increment(context.Background(), "bare")
	require.NoError(t, err)
	assert.True(t, mr.Exists("bare"))
}

func TestRedisCache_PingFailsWhenDown(t *testing.T) {
	c, mr := newTestCache(t, WithRedisDialTimeout(200*time.Millisecond))
	require.NoError(t, c.Ping(context.Background()))
	mr.Close()
	assert.Error(t, c.Ping(context.Background()))
}

func TestGenerateKeyWithParams(t *testing.T) {
	assert.Equal(t, "ratelimit:10.0.0.1:42", GenerateKeyWithParams("ratelimit", "10.0.0.1", 42))
	assert.Equal(t, "ratelimit", GenerateKeyWithParams("ratelimit"))
}
