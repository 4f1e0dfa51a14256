package app

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/job-matcher/internal/config"
	"github.com/fairyhunter13/job-matcher/internal/domain"
	"github.com/fairyhunter13/job-matcher/internal/skills"
)

type countingEmbedder struct{ calls atomic.Int32 }

func (c *countingEmbedder) Embed(_ domain.Context, texts []string) ([][]float32, error) {
	c.calls.Add(1)
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(len(texts[i]))}
	}
	return out, nil
}

func TestNewEmbedder_CachesAndLimits(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	base := &countingEmbedder{}
	cfg := config.Config{EmbeddingsModel: "m", EmbedCacheSize: 8, EmbedRatePerMin: 60}
	e := newEmbedder(cfg, base, rdb)

	for range 3 {
		v, err := e.Embed(context.Background(), []string{"golang"})
		require.NoError(t, err)
		assert.Equal(t, [][]float32{{6}}, v)
	}
	assert.Equal(t, int32(1), base.calls.Load())
}

func TestNewEmbedder_NoCacheNoLimit(t *testing.T) {
	base := &countingEmbedder{}
	e := newEmbedder(config.Config{}, base, nil)
	assert.Same(t, base, e)
}

func TestReloadTaxonomy(t *testing.T) {
	ex := skills.NewExtractor(nil)
	before := ex.Version()

	dir := t.TempDir()
	good := filepath.Join(dir, "skills.yaml")
	require.NoError(t, os.WriteFile(good, []byte("version: v9\nskills:\n  - {name: Zig, category: languages}\n"), 0o600))
	require.NoError(t, ReloadTaxonomy(good, ex))
	assert.Equal(t, "v9", ex.Version())
	assert.Equal(t, []string{"Zig"}, ex.Extract("we write zig"))

	err := ReloadTaxonomy(filepath.Join(dir, "missing.yaml"), ex)
	assert.Error(t, err)
	assert.Equal(t, "v9", ex.Version())
	assert.NotEqual(t, before, ex.Version())
}
