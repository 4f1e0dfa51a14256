package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/job-matcher/internal/config"
	"github.com/fairyhunter13/job-matcher/internal/domain"
)

type embedReq struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

func fastBackoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 5 * time.Millisecond
	b.MaxInterval = 20 * time.Millisecond
	b.MaxElapsedTime = 500 * time.Millisecond
	return b
}

func newTestClient(url string) *Client {
	c := New(config.Config{AppEnv: "test", OpenAIAPIKey: "sk-test", OpenAIBaseURL: url, EmbeddingsModel: "text-embedding-3-small"})
	c.backoff = fastBackoff
	return c
}

func TestEmbed_OrdersByIndex(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		var er embedReq
		require.NoError(t, json.NewDecoder(r.Body).Decode(&er))
		assert.Equal(t, "text-embedding-3-small", er.Model)
		assert.Equal(t, []string{"a", "b"}, er.Input)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"index": 1, "embedding": []float64{0.4}},
				{"index": 0, "embedding": []float64{0.1, 0.2, 0.3}},
			},
		})
	}))
	defer ts.Close()

	vecs, err := newTestClient(ts.URL).Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{0.1, 0.2, 0.3}, {0.4}}, vecs)
}

func TestEmbed_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{{"index": 0, "embedding": []float64{1}}}})
	}))
	defer ts.Close()

	vecs, err := newTestClient(ts.URL).Embed(context.Background(), []string{"x"})
	require.NoError(t, err)
	assert.Len(t, vecs, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestEmbed_ClientErrorIsPermanent(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad input"}`))
	}))
	defer ts.Close()

	_, err := newTestClient(ts.URL).Embed(context.Background(), []string{"x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embed status 400")
	assert.Equal(t, int32(1), calls.Load())
}

func TestEmbed_CountMismatch(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{}})
	}))
	defer ts.Close()

	_, err := newTestClient(ts.URL).Embed(context.Background(), []string{"x"})
	assert.ErrorContains(t, err, "expected 1 embeddings")
}

func TestEmbed_Timeout(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := newTestClient(ts.URL).Embed(ctx, []string{"x"})
	assert.ErrorIs(t, err, domain.ErrUpstreamTimeout)
}

func TestEmbed_MissingConfig(t *testing.T) {
	t.Parallel()

	_, err := New(config.Config{}).Embed(context.Background(), []string{"x"})
	assert.ErrorIs(t, err, domain.ErrConfigurationMissing)

	vecs, err := newTestClient("http://unused").Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vecs)
}
