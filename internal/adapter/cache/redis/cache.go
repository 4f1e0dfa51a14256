// Package redis stores computed match scores in Redis.
package redis

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/job-matcher/internal/domain"
)

// MatchCache implements domain.MatchCache with JSON values under a key prefix.
type MatchCache struct {
	rdb    goredis.UniversalClient
	prefix string
}

// NewMatchCache returns a cache storing keys under prefix.
func NewMatchCache(rdb goredis.UniversalClient, prefix string) *MatchCache {
	return &MatchCache{rdb: rdb, prefix: prefix}
}

// NewClient parses a redis:// URL and returns a client.
func NewClient(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("op=redis.NewClient: %w", err)
	}
	return goredis.NewClient(opts), nil
}

// Get returns the cached score for key. A missing key is (zero, false, nil).
func (c *MatchCache) Get(ctx domain.Context, key string) (domain.MatchScore, bool, error) {
	tracer := otel.Tracer("cache.redis")
	ctx, span := tracer.Start(ctx, "MatchCache.Get")
	defer span.End()

	b, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return domain.MatchScore{}, false, nil
	}
	if err != nil {
		span.RecordError(err)
		return domain.MatchScore{}, false, fmt.Errorf("op=cache.Get: %w", err)
	}
	var ms domain.MatchScore
	if err := json.Unmarshal(b, &ms); err != nil {
		return domain.MatchScore{}, false, fmt.Errorf("op=cache.Get: decode: %w", err)
	}
	return ms, true, nil
}

// Set stores score for ttl. A non-positive ttl stores nothing.
func (c *MatchCache) Set(ctx domain.Context, key string, score domain.MatchScore, ttl time.Duration) error {
	tracer := otel.Tracer("cache.redis")
	ctx, span := tracer.Start(ctx, "MatchCache.Set")
	defer span.End()

	if ttl <= 0 {
		return nil
	}
	b, err := json.Marshal(score)
	if err != nil {
		return fmt.Errorf("op=cache.Set: encode: %w", err)
	}
	if err := c.rdb.Set(ctx, c.prefix+key, b, ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("op=cache.Set: %w", err)
	}
	return nil
}
