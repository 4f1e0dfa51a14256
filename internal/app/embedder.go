package app

import (
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/job-matcher/internal/adapter/ai"
	"github.com/fairyhunter13/job-matcher/internal/adapter/ai/openai"
	"github.com/fairyhunter13/job-matcher/internal/config"
	"github.com/fairyhunter13/job-matcher/internal/domain"
	"github.com/fairyhunter13/job-matcher/internal/service/ratelimiter"
)

// embedRateKey is the shared token bucket for every process calling the embeddings API.
const embedRateKey = "embeddings"

// NewEmbedder builds the embedding chain: in-process cache, then the shared
// rate limit, then the provider. The limit is skipped without Redis or when
// EMBED_RATE_PER_MIN is zero.
func NewEmbedder(cfg config.Config, rdb goredis.UniversalClient) domain.EmbeddingProvider {
	return newEmbedder(cfg, openai.New(cfg), rdb)
}

func newEmbedder(cfg config.Config, base domain.EmbeddingProvider, rdb goredis.UniversalClient) domain.EmbeddingProvider {
	if cfg.EmbedRatePerMin > 0 && rdb != nil {
		limiter := ratelimiter.NewRedisLuaLimiter(rdb, map[string]ratelimiter.BucketConfig{
			embedRateKey: ratelimiter.NewBucketConfigFromPerMinute(cfg.EmbedRatePerMin),
		})
		base = ai.NewRateLimitedEmbedder(base, limiter, embedRateKey)
		slog.Info("embedding rate limit enabled", slog.Int("per_min", cfg.EmbedRatePerMin))
	}
	return ai.NewEmbedCache(base, cfg.EmbeddingsModel, cfg.EmbedCacheSize)
}
