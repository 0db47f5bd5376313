package shortlink

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/autolead-platform/pkg/logging"
)

const cacheKeyPrefix = "shortlink:"

// CachedShortener remembers short links in Redis so repeat shares of the same
// vehicle do not hit the provider. Redis failures fall through to the
// wrapped shortener.
type CachedShortener struct {
	next   Shortener
	redis  redis.Cmdable
	ttl    time.Duration
	logger *logging.Logger
}

// NewCachedShortener wraps next with a Redis cache.
func NewCachedShortener(next Shortener, client redis.Cmdable, ttl time.Duration, logger *logging.Logger) *CachedShortener {
	if next == nil {
		panic("shortlink: shortener required")
	}
	if client == nil {
		panic("shortlink: redis client required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CachedShortener{next: next, redis: client, ttl: ttl, logger: logger}
}

func (c *CachedShortener) Shorten(ctx context.Context, longURL string) (string, error) {
	key := cacheKey(longURL)
	cached, err := c.redis.Get(ctx, key).Result()
	switch {
	case err == nil && cached != "":
		return cached, nil
	case err != nil && !errors.Is(err, redis.Nil):
		c.logger.Warn("shortlink cache read failed", "error", err)
	}

	short, err := c.next.Shorten(ctx, longURL)
	if err != nil {
		return "", err
	}
	if err := c.redis.Set(ctx, key, short, c.ttl).Err(); err != nil {
		c.logger.Warn("shortlink cache write failed", "error", err)
	}
	return short, nil
}

func cacheKey(longURL string) string {
	sum := sha256.Sum256([]byte(longURL))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}
