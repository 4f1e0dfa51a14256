package qdrant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/job-matcher/internal/domain"
)

// jobNamespace derives stable point ids from job ids, so re-indexing a job overwrites its point.
var jobNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("job-matcher/jobs"))

// PointID returns the Qdrant point id for jobID.
func PointID(jobID string) string {
	return uuid.NewSHA1(jobNamespace, []byte(jobID)).String()
}

// Index implements domain.VectorIndex over one collection. Payloads carry job_id.
type Index struct {
	client     *Client
	collection string
}

// NewIndex returns an index over collection.
func NewIndex(client *Client, collection string) *Index {
	return &Index{client: client, collection: collection}
}

// Ensure creates the collection with cosine distance when missing.
func (i *Index) Ensure(ctx context.Context, vectorSize int) error {
	if err := i.client.EnsureCollection(ctx, i.collection, vectorSize, "Cosine"); err != nil {
		return fmt.Errorf("op=qdrant.Ensure: %w", err)
	}
	return nil
}

// Upsert stores the vector for jobID.
func (i *Index) Upsert(ctx domain.Context, jobID string, vector []float32) error {
	tracer := otel.Tracer("qdrant")
	ctx, span := tracer.Start(ctx, "Index.Upsert")
	defer span.End()
	span.SetAttributes(attribute.String("job.id", jobID))

	if strings.TrimSpace(jobID) == "" || len(vector) == 0 {
		return fmt.Errorf("op=qdrant.Upsert: %w: job id and vector required", domain.ErrInvalidArgument)
	}
	err := i.client.UpsertPoints(ctx, i.collection, []Point{{
		ID:      PointID(jobID),
		Vector:  vector,
		Payload: map[string]any{"job_id": jobID},
	}})
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("op=qdrant.Upsert: %w", mapErr(err))
	}
	return nil
}

// Query returns the topN most similar jobs. A missing collection is
// domain.ErrIndexNotInitialized; hits without a job_id payload are dropped.
func (i *Index) Query(ctx domain.Context, vector []float32, topN int) ([]domain.ScoredCandidate, error) {
	tracer := otel.Tracer("qdrant")
	ctx, span := tracer.Start(ctx, "Index.Query")
	defer span.End()
	span.SetAttributes(attribute.Int("qdrant.top_n", topN))

	if topN <= 0 {
		return []domain.ScoredCandidate{}, nil
	}
	hits, err := i.client.Search(ctx, i.collection, vector, topN)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("op=qdrant.Query: %w", mapErr(err))
	}
	out := make([]domain.ScoredCandidate, 0, len(hits))
	for _, h := range hits {
		id, _ := h.Payload["job_id"].(string)
		if id == "" {
			continue
		}
		out = append(out, domain.ScoredCandidate{JobID: id, Similarity: h.Score})
	}
	span.SetAttributes(attribute.Int("qdrant.hits", len(out)))
	return out, nil
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, ErrCollectionNotFound):
		return fmt.Errorf("%w: %w", domain.ErrIndexNotInitialized, err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", domain.ErrUpstreamTimeout, err)
	default:
		return err
	}
}
