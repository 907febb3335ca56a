package oracle

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/certhub/internal/logging"
	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "oracle:identity:"

// CachedClient remembers conclusive oracle answers in Redis. Unknown is never
// cached, and Redis failures only cost a cache miss.
type CachedClient struct {
	next   Client
	rdb    redis.Cmdable
	ttl    time.Duration
	logger logging.Logger
}

func NewCachedClient(next Client, rdb redis.Cmdable, ttl time.Duration, logger logging.Logger) *CachedClient {
	return &CachedClient{
		next:   next,
		rdb:    rdb,
		ttl:    ttl,
		logger: logger.With("module", "oracle_cache"),
	}
}

func (c *CachedClient) Check(ctx context.Context, identifier string) (Signal, error) {
	key := cacheKey(identifier)

	cached, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		switch cached {
		case Exists.String():
			return Exists, nil
		case NotExists.String():
			return NotExists, nil
		}
		c.logger.Warn(ctx, "discarding malformed cache entry", "value", cached)
	case !errors.Is(err, redis.Nil):
		c.logger.Warn(ctx, "oracle cache read failed", "error", err)
	}

	sig, err := c.next.Check(ctx, identifier)
	if err != nil || sig == Unknown {
		return sig, err
	}

	if err := c.rdb.Set(ctx, key, sig.String(), c.ttl).Err(); err != nil {
		c.logger.Warn(ctx, "oracle cache write failed", "error", err)
	}
	return sig, nil
}

// cacheKey hashes the identifier so raw emails and phones never appear as
// Redis keys.
func cacheKey(identifier string) string {
	sum := sha256.Sum256([]byte(identifier))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

// NewRedisClient connects to Redis and verifies it with a PING bounded by
// two seconds.
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}
