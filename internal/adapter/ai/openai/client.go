// Package openai implements domain.EmbeddingProvider over the OpenAI embeddings API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fairyhunter13/job-matcher/internal/adapter/observability"
	"github.com/fairyhunter13/job-matcher/internal/config"
	"github.com/fairyhunter13/job-matcher/internal/domain"
)

// Client calls the embeddings endpoint with retries on 429 and 5xx.
type Client struct {
	cfg     config.Config
	hc      *http.Client
	backoff func() *backoff.ExponentialBackOff
}

// New constructs an embeddings client with a traced HTTP transport.
func New(cfg config.Config) *Client {
	transport := otelhttp.NewTransport(http.DefaultTransport,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return fmt.Sprintf("OpenAI %s %s", r.Method, r.URL.Path)
		}),
	)
	c := &Client{
		cfg: cfg,
		hc:  &http.Client{Timeout: 30 * time.Second, Transport: transport},
	}
	c.backoff = c.defaultBackoff
	return c
}

func (c *Client) defaultBackoff() *backoff.ExponentialBackOff {
	expo := backoff.NewExponentialBackOff()
	maxElapsedTime, initialInterval, maxInterval, multiplier := c.cfg.GetAIBackoffConfig()
	expo.MaxElapsedTime = maxElapsedTime
	expo.InitialInterval = initialInterval
	expo.MaxInterval = maxInterval
	expo.Multiplier = multiplier
	return expo
}

type embedResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// Embed returns one vector per text, in input order.
func (c *Client) Embed(ctx domain.Context, texts []string) ([][]float32, error) {
	if c.cfg.OpenAIAPIKey == "" || c.cfg.EmbeddingsModel == "" {
		slog.Error("OpenAI API key or model missing", slog.String("provider", "openai"), slog.Bool("has_api_key", c.cfg.OpenAIAPIKey != ""), slog.String("model", c.cfg.EmbeddingsModel))
		return nil, fmt.Errorf("op=openai.Embed: %w: OPENAI_API_KEY or EMBEDDINGS_MODEL missing", domain.ErrConfigurationMissing)
	}
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	b, err := json.Marshal(map[string]any{"model": c.cfg.EmbeddingsModel, "input": texts})
	if err != nil {
		return nil, fmt.Errorf("op=openai.Embed: %w", err)
	}
	endpoint := c.cfg.OpenAIBaseURL + "/embeddings"

	var out embedResponse
	op := func() error {
		start := time.Now()
		r, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
		if err != nil {
			return backoff.Permanent(err)
		}
		r.Header.Set("Authorization", "Bearer "+c.cfg.OpenAIAPIKey)
		r.Header.Set("Content-Type", "application/json")
		resp, err := c.hc.Do(r)
		observability.AIRequestsTotal.WithLabelValues("openai", "embed").Inc()
		observability.AIRequestDuration.WithLabelValues("openai", "embed").Observe(time.Since(start).Seconds())
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			slog.Warn("ai provider rate limited", slog.String("provider", "openai"), slog.String("op", "embed"), slog.String("x_request_id", resp.Header.Get("X-Request-Id")))
			return fmt.Errorf("rate limited: %d", resp.StatusCode)
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			slog.Warn("ai provider 4xx", slog.String("provider", "openai"), slog.String("op", "embed"), slog.Int("status", resp.StatusCode), slog.String("model", c.cfg.EmbeddingsModel), slog.String("body", readSnippet(resp.Body, 512)))
			return backoff.Permanent(fmt.Errorf("embed status %d", resp.StatusCode))
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			slog.Error("ai provider non-2xx", slog.String("provider", "openai"), slog.String("op", "embed"), slog.Int("status", resp.StatusCode), slog.String("body", readSnippet(resp.Body, 512)))
			return fmt.Errorf("embed status %d", resp.StatusCode)
		}
		out = embedResponse{}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode embeddings: %w", err))
		}
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(c.backoff(), ctx)); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("op=openai.Embed: %w: %w", domain.ErrUpstreamTimeout, err)
		}
		return nil, fmt.Errorf("op=openai.Embed: %w", err)
	}
	if len(out.Data) != len(texts) {
		return nil, fmt.Errorf("op=openai.Embed: expected %d embeddings, got %d", len(texts), len(out.Data))
	}

	res := make([][]float32, len(texts))
	for _, d := range out.Data {
		if d.Index < 0 || d.Index >= len(texts) || res[d.Index] != nil {
			return nil, fmt.Errorf("op=openai.Embed: bad embedding index %d", d.Index)
		}
		v := make([]float32, len(d.Embedding))
		for j, f := range d.Embedding {
			v[j] = float32(f)
		}
		res[d.Index] = v
	}
	slog.Debug("embeddings computed", slog.String("provider", "openai"), slog.Int("count", len(res)))
	return res, nil
}

// readSnippet reads up to n bytes of r for logging.
func readSnippet(r io.Reader, n int64) string {
	b, _ := io.ReadAll(io.LimitReader(r, n))
	return string(b)
}
