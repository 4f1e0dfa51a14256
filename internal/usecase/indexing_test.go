package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/job-matcher/internal/domain"
	domainmocks "github.com/fairyhunter13/job-matcher/internal/domain/mocks"
	"github.com/fairyhunter13/job-matcher/internal/usecase"
)

type cutTruncator struct{ n int }

func (c cutTruncator) Truncate(s string) string {
	if len(s) > c.n {
		return s[:c.n]
	}
	return s
}

var fastRetry = usecase.RetryBackoff(3, time.Millisecond, 2*time.Millisecond, 2)

func TestIndexJob_EmbedsAndUpserts(t *testing.T) {
	t.Parallel()
	jobs := domainmocks.NewJobRepository(t)
	emb := domainmocks.NewEmbeddingProvider(t)
	idx := domainmocks.NewVectorIndex(t)

	jobs.On("Get", mock.Anything, "j1").Return(domain.Job{ID: "j1", Title: "Go Engineer", Description: "Build APIs"}, nil).Once()
	emb.On("Embed", mock.Anything, []string{"Go Engineer\nBuild"}).Return([][]float32{{0.1, 0.2}}, nil).Once()
	idx.On("Upsert", mock.Anything, "j1", []float32{0.1, 0.2}).Return(nil).Once()

	svc := usecase.NewIndexService(jobs, emb, idx, cutTruncator{n: 17}, fastRetry)
	require.NoError(t, svc.IndexJob(context.Background(), " j1 "))
}

func TestIndexJob_RetriesTransientUpsert(t *testing.T) {
	t.Parallel()
	jobs := domainmocks.NewJobRepository(t)
	emb := domainmocks.NewEmbeddingProvider(t)
	idx := domainmocks.NewVectorIndex(t)

	jobs.On("Get", mock.Anything, "j1").Return(domain.Job{ID: "j1", Title: "SRE"}, nil).Once()
	emb.On("Embed", mock.Anything, mock.Anything).Return([][]float32{{1}}, nil).Once()
	idx.On("Upsert", mock.Anything, "j1", []float32{1}).Return(errors.New("qdrant status 503")).Twice()
	idx.On("Upsert", mock.Anything, "j1", []float32{1}).Return(nil).Once()

	svc := usecase.NewIndexService(jobs, emb, idx, nil, fastRetry)
	require.NoError(t, svc.IndexJob(context.Background(), "j1"))
}

func TestIndexJob_GivesUpAfterRetries(t *testing.T) {
	t.Parallel()
	jobs := domainmocks.NewJobRepository(t)
	emb := domainmocks.NewEmbeddingProvider(t)
	idx := domainmocks.NewVectorIndex(t)

	jobs.On("Get", mock.Anything, "j1").Return(domain.Job{ID: "j1", Title: "SRE"}, nil).Once()
	emb.On("Embed", mock.Anything, mock.Anything).Return(nil, errors.New("embed status 500")).Times(4)

	svc := usecase.NewIndexService(jobs, emb, idx, nil, fastRetry)
	err := svc.IndexJob(context.Background(), "j1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "op=index.IndexJob")
}

func TestIndexJob_PermanentFailures(t *testing.T) {
	t.Parallel()

	t.Run("missing job", func(t *testing.T) {
		t.Parallel()
		jobs := domainmocks.NewJobRepository(t)
		jobs.On("Get", mock.Anything, "gone").Return(domain.Job{}, domain.ErrNotFound).Once()

		svc := usecase.NewIndexService(jobs, domainmocks.NewEmbeddingProvider(t), domainmocks.NewVectorIndex(t), nil, fastRetry)
		assert.ErrorIs(t, svc.IndexJob(context.Background(), "gone"), domain.ErrNotFound)
	})

	t.Run("no text", func(t *testing.T) {
		t.Parallel()
		jobs := domainmocks.NewJobRepository(t)
		jobs.On("Get", mock.Anything, "blank").Return(domain.Job{ID: "blank", Title: "  "}, nil).Once()

		svc := usecase.NewIndexService(jobs, domainmocks.NewEmbeddingProvider(t), domainmocks.NewVectorIndex(t), nil, fastRetry)
		assert.ErrorIs(t, svc.IndexJob(context.Background(), "blank"), domain.ErrInvalidArgument)
	})

	t.Run("empty id", func(t *testing.T) {
		t.Parallel()
		svc := usecase.NewIndexService(domainmocks.NewJobRepository(t), domainmocks.NewEmbeddingProvider(t), domainmocks.NewVectorIndex(t), nil, nil)
		assert.ErrorIs(t, svc.IndexJob(context.Background(), " "), domain.ErrInvalidArgument)
	})
}
