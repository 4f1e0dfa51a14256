// Package retrieval narrows the job corpus to a semantically relevant shortlist.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/job-matcher/internal/domain"
)

// Candidate is a job id with its similarity and 1-based retrieval rank.
type Candidate struct {
	JobID      string
	Similarity float64
	Rank       int
}

// Breaker guards calls to the index and embedding provider.
type Breaker interface {
	Call(fn func() error) error
}

// Truncator trims query text to what the embedding model accepts.
type Truncator interface {
	Truncate(text string) string
}

type passBreaker struct{}

func (passBreaker) Call(fn func() error) error { return fn() }

// Retriever embeds a profile and queries the vector index.
type Retriever struct {
	index     domain.VectorIndex
	embedder  domain.EmbeddingProvider
	breaker   Breaker
	truncator Truncator
	timeout   time.Duration
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithBreaker routes index and embedding calls through b.
func WithBreaker(b Breaker) Option { return func(r *Retriever) { r.breaker = b } }

// WithTruncator bounds query text before embedding.
func WithTruncator(t Truncator) Option { return func(r *Retriever) { r.truncator = t } }

// WithTimeout bounds the whole embed+query round trip.
func WithTimeout(d time.Duration) Option { return func(r *Retriever) { r.timeout = d } }

// New builds a retriever.
func New(index domain.VectorIndex, embedder domain.EmbeddingProvider, opts ...Option) *Retriever {
	r := &Retriever{index: index, embedder: embedder, breaker: passBreaker{}}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Retrieve returns up to topN candidates for the profile, most similar first.
// Every failure wraps domain.ErrRetrievalUnavailable.
func (r *Retriever) Retrieve(ctx domain.Context, p domain.Profile, topN int) ([]Candidate, error) {
	tracer := otel.Tracer("retrieval")
	ctx, span := tracer.Start(ctx, "Retriever.Retrieve")
	defer span.End()
	span.SetAttributes(attribute.Int("retrieval.top_n", topN))

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	text := QueryText(p)
	if r.truncator != nil {
		text = r.truncator.Truncate(text)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("op=retrieval.retrieve: %w: empty profile query", domain.ErrRetrievalUnavailable)
	}

	var vec []float32
	err := r.breaker.Call(func() error {
		vecs, err := r.embedder.Embed(ctx, []string{text})
		if err != nil {
			return err
		}
		if len(vecs) != 1 || len(vecs[0]) == 0 {
			return fmt.Errorf("embedding provider returned %d vectors", len(vecs))
		}
		vec = vecs[0]
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, unavailable(ctx, "op=retrieval.embed", err)
	}

	cands, err := r.Candidates(ctx, vec, topN)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("retrieval.candidates", len(cands)))
	return cands, nil
}

// Candidates queries the index with vector and ranks the hits by descending similarity.
// Duplicate job ids keep their best hit.
func (r *Retriever) Candidates(ctx domain.Context, vector []float32, topN int) ([]Candidate, error) {
	if topN <= 0 {
		return []Candidate{}, nil
	}
	var hits []domain.ScoredCandidate
	err := r.breaker.Call(func() error {
		var err error
		hits, err = r.index.Query(ctx, vector, topN)
		return err
	})
	if err != nil {
		return nil, unavailable(ctx, "op=retrieval.query", err)
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Similarity > hits[j].Similarity })
	out := make([]Candidate, 0, len(hits))
	seen := make(map[string]struct{}, len(hits))
	for _, h := range hits {
		if h.JobID == "" {
			continue
		}
		if _, dup := seen[h.JobID]; dup {
			continue
		}
		seen[h.JobID] = struct{}{}
		out = append(out, Candidate{JobID: h.JobID, Similarity: h.Similarity, Rank: len(out) + 1})
		if len(out) == topN {
			break
		}
	}
	return out, nil
}

func unavailable(ctx domain.Context, op string, err error) error {
	if errors.Is(err, domain.ErrRetrievalUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w: %w", op, domain.ErrRetrievalUnavailable, domain.ErrUpstreamTimeout, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrRetrievalUnavailable, err)
}
