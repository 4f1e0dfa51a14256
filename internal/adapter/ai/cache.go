// Package ai holds the embedding provider adapters and the wrappers around them.
package ai

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"

	"github.com/fairyhunter13/job-matcher/internal/domain"
)

// embedCache wraps an EmbeddingProvider and caches vectors by model and text hash.
// Eviction is FIFO. Safe for concurrent use.
type embedCache struct {
	base     domain.EmbeddingProvider
	model    string
	capacity int
	mu       sync.RWMutex
	m        map[string][]float32
	ord      []string
}

// NewEmbedCache wraps base with a cache of capacity entries. Vectors are only
// comparable within one model, so model is part of every key.
// If capacity <= 0, base is returned unmodified.
func NewEmbedCache(base domain.EmbeddingProvider, model string, capacity int) domain.EmbeddingProvider {
	if capacity <= 0 || base == nil {
		return base
	}
	return &embedCache{base: base, model: model, capacity: capacity, m: make(map[string][]float32), ord: make([]string, 0, capacity)}
}

func (c *embedCache) Embed(ctx domain.Context, texts []string) ([][]float32, error) {
	res := make([][]float32, len(texts))
	missIdx := make([]int, 0)
	missTexts := make([]string, 0)
	for i, t := range texts {
		c.mu.RLock()
		v, ok := c.m[c.keyFor(t)]
		c.mu.RUnlock()
		if ok {
			res[i] = v
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, t)
	}
	if len(missIdx) == 0 {
		return res, nil
	}
	vecs, err := c.base.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	for j, idx := range missIdx {
		if j >= len(vecs) {
			break
		}
		res[idx] = vecs[j]
		c.put(missTexts[j], vecs[j])
	}
	return res, nil
}

func (c *embedCache) put(text string, vec []float32) {
	k := c.keyFor(text)
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.m[k]; exists {
		c.m[k] = vec
		return
	}
	if len(c.ord) >= c.capacity {
		delete(c.m, c.ord[0])
		c.ord = c.ord[1:]
	}
	c.m[k] = vec
	c.ord = append(c.ord, k)
}

func (c *embedCache) keyFor(text string) string {
	h := sha256.Sum256([]byte(c.model + "\x00" + strings.TrimSpace(text)))
	return hex.EncodeToString(h[:])
}
