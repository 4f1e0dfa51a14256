package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/job-matcher/internal/domain"
)

func TestFilters_Validate(t *testing.T) {
	t.Parallel()

	neg := -5.0
	require.NoError(t, Filters{}.Validate())
	require.NoError(t, Filters{Limit: 100, RemoteType: domain.RemoteTypeHybrid}.Validate())

	err := Filters{SalaryMin: &neg}.Validate()
	require.ErrorIs(t, err, domain.ErrValidationFailed)
	assert.Contains(t, err.Error(), "salary_min")

	err = Filters{RemoteType: "anywhere"}.Validate()
	assert.Contains(t, err.Error(), "remote_type failed oneof")
}

func TestFilters_Limit(t *testing.T) {
	t.Parallel()
	assert.Equal(t, DefaultLimit, Filters{}.limit())
	assert.Equal(t, 7, Filters{Limit: 7}.limit())
}

func TestApplyFilters_Steps(t *testing.T) {
	t.Parallel()

	score := 70
	items := []scoredJob{
		{score: domain.MatchScore{JobID: "a", OverallScore: 90}, job: domain.Job{Location: "Remote"}},
		{score: domain.MatchScore{JobID: "b", OverallScore: 65}, job: domain.Job{Location: "Jakarta", RemoteType: domain.RemoteTypeOnsite}},
		{score: domain.MatchScore{JobID: "c", OverallScore: 40}, job: domain.Job{Location: "Bandung", RemoteType: domain.RemoteTypeHybrid}},
	}
	kept, steps := applyFilters(context.Background(), items, buildFilters(Filters{RemoteType: domain.RemoteTypeRemote, MinMatchScore: &score}))
	require.Len(t, kept, 1)
	assert.Equal(t, "a", kept[0].score.JobID)
	assert.Equal(t, []FilterStep{
		{Name: "remote_type", Initial: 3, Dropped: 2, Left: 1},
		{Name: "min_match_score", Initial: 1, Dropped: 0, Left: 1},
	}, steps)
	assert.Len(t, items, 3)
}

func TestMatchOptions_TopN(t *testing.T) {
	t.Parallel()

	o := MatchOptions{TopNMultiplier: 5, TopNMax: 200}
	assert.Equal(t, 50, o.topN(10))
	assert.Equal(t, 200, o.topN(100))
	assert.Equal(t, 60, MatchOptions{TopNMultiplier: 5, TopNMax: 20}.withDefaults().topN(60))
	assert.Equal(t, 20, MatchOptions{TopNMultiplier: 1, TopNMax: 5}.topN(20))
}
