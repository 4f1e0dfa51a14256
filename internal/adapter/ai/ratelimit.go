package ai

import (
	"fmt"

	"github.com/fairyhunter13/job-matcher/internal/domain"
	"github.com/fairyhunter13/job-matcher/internal/service/ratelimiter"
)

// rateLimitedEmbedder takes one token per text from a shared bucket before each call.
type rateLimitedEmbedder struct {
	base    domain.EmbeddingProvider
	limiter ratelimiter.Limiter
	key     string
}

// NewRateLimitedEmbedder wraps base with limiter. Calls wait for tokens until
// ctx ends; a nil limiter returns base unmodified.
func NewRateLimitedEmbedder(base domain.EmbeddingProvider, limiter ratelimiter.Limiter, key string) domain.EmbeddingProvider {
	if limiter == nil || base == nil {
		return base
	}
	return &rateLimitedEmbedder{base: base, limiter: limiter, key: key}
}

func (r *rateLimitedEmbedder) Embed(ctx domain.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	if err := ratelimiter.Wait(ctx, r.limiter, r.key, int64(len(texts))); err != nil {
		return nil, fmt.Errorf("op=ai.Embed: %w: %w", domain.ErrUpstreamTimeout, err)
	}
	return r.base.Embed(ctx, texts)
}
