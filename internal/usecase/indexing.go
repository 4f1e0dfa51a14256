package usecase

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/job-matcher/internal/adapter/observability"
	"github.com/fairyhunter13/job-matcher/internal/domain"
	"github.com/fairyhunter13/job-matcher/internal/retrieval"
)

// Indexer outcomes reported to metrics.
const (
	IndexResultIndexed  = "indexed"
	IndexResultNotFound = "not_found"
	IndexResultEmpty    = "empty"
	IndexResultFailed   = "failed"
)

// IndexService embeds job postings and writes them to the vector index.
type IndexService struct {
	Jobs      domain.JobRepository
	Embedder  domain.EmbeddingProvider
	Index     domain.VectorIndex
	Truncator retrieval.Truncator
	// Backoff returns a fresh policy for each job; nil means a single attempt.
	Backoff func() backoff.BackOff
}

// NewIndexService constructs an IndexService with its dependencies.
func NewIndexService(jobs domain.JobRepository, e domain.EmbeddingProvider, idx domain.VectorIndex, t retrieval.Truncator, b func() backoff.BackOff) IndexService {
	return IndexService{Jobs: jobs, Embedder: e, Index: idx, Truncator: t, Backoff: b}
}

// RetryBackoff builds an exponential policy capped at maxRetries attempts after the first.
func RetryBackoff(maxRetries int, initial, maxDelay time.Duration, multiplier float64) func() backoff.BackOff {
	return func() backoff.BackOff {
		expo := backoff.NewExponentialBackOff()
		expo.InitialInterval = initial
		expo.MaxInterval = maxDelay
		expo.Multiplier = multiplier
		expo.MaxElapsedTime = 0
		return backoff.WithMaxRetries(expo, uint64(max(maxRetries, 0)))
	}
}

// IndexJob loads jobID, embeds its text and upserts the vector. A missing job
// or a job without indexable text returns an error wrapping domain.ErrNotFound
// or domain.ErrInvalidArgument without retrying.
func (s IndexService) IndexJob(ctx domain.Context, jobID string) error {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "IndexService.IndexJob")
	defer span.End()
	span.SetAttributes(attribute.String("job.id", jobID))
	lg := observability.LoggerFromContext(ctx)

	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		observability.RecordJobIndexed(IndexResultEmpty)
		return fmt.Errorf("op=index.IndexJob: %w: job_id required", domain.ErrInvalidArgument)
	}

	var job domain.Job
	var vec []float32
	op := func() error {
		var err error
		if job.ID == "" {
			job, err = s.Jobs.Get(ctx, jobID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return backoff.Permanent(err)
				}
				return err
			}
		}
		if vec == nil {
			text := retrieval.JobText(job)
			if s.Truncator != nil {
				text = s.Truncator.Truncate(text)
			}
			if strings.TrimSpace(text) == "" {
				return backoff.Permanent(fmt.Errorf("%w: job %s has no indexable text", domain.ErrInvalidArgument, jobID))
			}
			vecs, err := s.Embedder.Embed(ctx, []string{text})
			if err != nil {
				return err
			}
			if len(vecs) != 1 || len(vecs[0]) == 0 {
				return fmt.Errorf("embedding provider returned %d vectors", len(vecs))
			}
			vec = vecs[0]
		}
		return s.Index.Upsert(ctx, jobID, vec)
	}

	var policy backoff.BackOff = &backoff.StopBackOff{}
	if s.Backoff != nil {
		policy = s.Backoff()
	}
	err := backoff.Retry(op, backoff.WithContext(policy, ctx))
	switch {
	case err == nil:
		observability.RecordJobIndexed(IndexResultIndexed)
		lg.Info("job indexed", slog.String("job_id", jobID))
		return nil
	case errors.Is(err, domain.ErrNotFound):
		observability.RecordJobIndexed(IndexResultNotFound)
	case errors.Is(err, domain.ErrInvalidArgument):
		observability.RecordJobIndexed(IndexResultEmpty)
	default:
		observability.RecordJobIndexed(IndexResultFailed)
	}
	span.RecordError(err)
	lg.Warn("job not indexed", slog.String("job_id", jobID), slog.Any("error", err))
	return fmt.Errorf("op=index.IndexJob: %w", err)
}
