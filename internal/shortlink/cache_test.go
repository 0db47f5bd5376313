package shortlink

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingShortener struct {
	calls int
	short string
	err   error
}

func (c *countingShortener) Shorten(_ context.Context, _ string) (string, error) {
	c.calls++
	return c.short, c.err
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestCachedShortenerHitsProviderOnce(t *testing.T) {
	mr, client := newTestRedis(t)
	next := &countingShortener{short: "https://sho.rt/x"}
	cached := NewCachedShortener(next, client, time.Hour, nil)

	for i := 0; i < 3; i++ {
		out, err := cached.Shorten(context.Background(), "https://dealer.example.com/inventory/A1/")
		require.NoError(t, err)
		assert.Equal(t, "https://sho.rt/x", out)
	}
	assert.Equal(t, 1, next.calls)

	key := cacheKey("https://dealer.example.com/inventory/A1/")
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Hour, mr.TTL(key))
}

func TestCachedShortenerExpires(t *testing.T) {
	mr, client := newTestRedis(t)
	next := &countingShortener{short: "https://sho.rt/y"}
	cached := NewCachedShortener(next, client, time.Minute, nil)

	_, err := cached.Shorten(context.Background(), "https://example.com/b")
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)
	_, err = cached.Shorten(context.Background(), "https://example.com/b")
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestCachedShortenerDoesNotCacheFailures(t *testing.T) {
	mr, client := newTestRedis(t)
	boom := errors.New("provider down")
	next := &countingShortener{err: boom}
	cached := NewCachedShortener(next, client, time.Hour, nil)

	_, err := cached.Shorten(context.Background(), "https://example.com/c")
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists(cacheKey("https://example.com/c")))
}

func TestCachedShortenerFallsThroughWhenRedisIsDown(t *testing.T) {
	mr, client := newTestRedis(t)
	mr.Close()
	next := &countingShortener{short: "https://sho.rt/z"}
	cached := NewCachedShortener(next, client, time.Hour, nil)

	out, err := cached.Shorten(context.Background(), "https://example.com/d")
	require.NoError(t, err)
	assert.Equal(t, "https://sho.rt/z", out)
	assert.Equal(t, 1, next.calls)
}
