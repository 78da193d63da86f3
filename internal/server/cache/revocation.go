// Package cache provides an optional Redis lookaside for the refresh-token
// blacklist. Postgres stays the source of truth; the cache only spares a DB
// round trip on hot refresh paths. The token service works without it.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationCache answers "has this jti been revoked" fast.
type RevocationCache interface {
	// MarkRevoked records a jti as revoked for ttl (normally expiry-now).
	MarkRevoked(ctx context.Context, jti string, ttl time.Duration) error
	// IsRevoked reports (revoked, found). found=false means the cache has
	// no opinion and the caller must consult the blacklist store.
	IsRevoked(ctx context.Context, jti string) (revoked, found bool, err error)
	// Close releases the underlying client.
	Close() error
}

type redisCache struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisCache creates a RevocationCache from a Redis URL
// (e.g. redis://:pass@host:6379/0). The connection is pinged at startup so
// a misconfigured cache fails fast instead of at the first refresh.
func NewRedisCache(ctx context.Context, redisURL, prefix string) (RevocationCache, error) {
	if prefix == "" {
		prefix = "mv:bl:"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &redisCache{rdb: rdb, prefix: prefix}, nil
}

func (c *redisCache) key(jti string) string { return c.prefix + jti }

func (c *redisCache) MarkRevoked(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		// Token already expired; nothing to protect.
		return nil
	}
	return c.rdb.Set(ctx, c.key(jti), "1", ttl).Err()
}

func (c *redisCache) IsRevoked(ctx context.Context, jti string) (bool, bool, error) {
	_, err := c.rdb.Get(ctx, c.key(jti)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, false, nil
		}
		return false, false, err
	}
	return true, true, nil
}

func (c *redisCache) Close() error {
	return c.rdb.Close()
}
