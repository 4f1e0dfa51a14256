package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/job-matcher/internal/domain"
	"github.com/fairyhunter13/job-matcher/internal/skills"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	agg, err := NewAggregator(DefaultWeights())
	require.NoError(t, err)
	return NewEngine(skills.NewExtractor(nil), agg)
}

func sampleProfile() domain.Profile {
	return domain.Profile{
		ID:      "user-1",
		Version: 3,
		Skills: []domain.ProfileSkill{
			{Name: "Go", Level: 5, Years: 6},
			{Name: "PostgreSQL", Level: 4, Years: 5},
			{Name: "Docker", Level: 3, Years: 3},
		},
		Experience: []domain.ExperienceEntry{
			{Title: "Backend Engineer", StartDate: date(2019, time.March)},
		},
		Preferences: domain.Preferences{
			Locations:  []string{"Jakarta"},
			RemoteWork: domain.RemotePreferenceHybrid,
			SalaryMin:  ptr(3000),
			SalaryMax:  ptr(4500),
			Currency:   "USD",
			Industries: []string{"Fintech"},
		},
		CareerGoal: &domain.CareerGoal{TargetRole: "Staff Backend Engineer", TargetIndustry: "Fintech"},
	}
}

func sampleJobs() []domain.Job {
	return []domain.Job{
		{
			ID: "job-1", Title: "Senior Backend Engineer", Location: "Jakarta, Indonesia", RemoteType: domain.RemoteTypeHybrid,
			Description:  "Build payment services in Go with PostgreSQL and Kafka on AWS.",
			Requirements: "5+ years of backend experience. Kubernetes and Docker.",
			Salary:       domain.SalaryRange{Min: ptr(3000), Max: ptr(6000), Currency: "USD"},
			Industry:     "Fintech",
		},
		{
			ID: "job-2", Title: "Frontend Developer", Location: "Remote", RemoteType: domain.RemoteTypeRemote,
			Description: "React and TypeScript.",
		},
		{ID: "job-3", Title: "Office Manager"},
	}
}

func TestEngine_Score(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)
	in := Input{Profile: sampleProfile(), Job: sampleJobs()[0], AsOf: date(2026, time.March)}
	ms := e.Score(in)

	assert.Equal(t, "job-1", ms.JobID)
	assert.Equal(t, "user-1", ms.UserID)
	assert.Equal(t, []string{"Docker", "Go", "PostgreSQL"}, ms.MatchingSkills)
	assert.Equal(t, []string{"AWS", "Kafka", "Kubernetes"}, ms.MissingSkills)
	// (3+5+4)/(5*6) = 40
	assert.Equal(t, 40, ms.Breakdown.Skill)
	// 7 years against 5, plus related title
	assert.Equal(t, 100, ms.Breakdown.Experience)
	assert.Equal(t, 100, ms.Breakdown.Location)
	assert.Equal(t, 100, ms.Breakdown.Salary)
	assert.Equal(t, 100, ms.Breakdown.Culture)
	// 0.35*40 + 0.65*100 = 79
	assert.Equal(t, 79, ms.OverallScore)
	require.Len(t, ms.Evidence, 5)
	assert.Equal(t, domain.SignalScored, ms.Evidence[domain.FactorSkill].Signal)
	assert.NotEmpty(t, ms.Recommendations)
}

func TestEngine_Idempotent(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)
	for _, job := range sampleJobs() {
		in := Input{Profile: sampleProfile(), Job: job, AsOf: date(2026, time.March)}
		assert.Equal(t, e.Score(in), e.Score(in), job.ID)
	}
}

func TestEngine_InvariantsHold(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)
	for _, job := range sampleJobs() {
		ms := e.Score(Input{Profile: sampleProfile(), Job: job, AsOf: date(2026, time.March)})

		missing := make(map[string]struct{}, len(ms.MissingSkills))
		for _, s := range ms.MissingSkills {
			missing[s] = struct{}{}
		}
		for _, s := range ms.MatchingSkills {
			_, clash := missing[s]
			assert.False(t, clash, "%s both matching and missing in %s", s, job.ID)
		}

		for _, f := range domain.Factors {
			v := ms.Breakdown.Get(f)
			assert.GreaterOrEqual(t, v, 0)
			assert.LessOrEqual(t, v, 100)
		}
		assert.Equal(t, e.agg.Aggregate(ms.Breakdown), ms.OverallScore)
		assert.NotNil(t, ms.MatchingSkills)
		assert.NotNil(t, ms.MissingSkills)
	}
}

func TestEngine_NeutralWhenNoData(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)
	ms := e.Score(Input{Profile: domain.Profile{ID: "u"}, Job: sampleJobs()[2]})

	assert.Equal(t, domain.Breakdown{Skill: 100, Experience: 50, Location: 50, Salary: 50, Culture: 50}, ms.Breakdown)
	for _, f := range domain.Factors {
		assert.Equal(t, domain.SignalInsufficientData, ms.Evidence[f].Signal, f)
	}
}

func TestEngine_MissingScorerIsNeutral(t *testing.T) {
	t.Parallel()
	agg, err := NewAggregator(DefaultWeights())
	require.NoError(t, err)
	e := NewEngineWith(skills.NewExtractor(nil), agg, LocationScorer{})

	ms := e.Score(Input{Job: domain.Job{ID: "j", RemoteType: domain.RemoteTypeRemote}})
	assert.Equal(t, domain.Breakdown{Skill: 50, Experience: 50, Location: 100, Salary: 50, Culture: 50}, ms.Breakdown)
	assert.Empty(t, ms.MatchingSkills)
	assert.Equal(t, domain.SignalInsufficientData, ms.Evidence[domain.FactorSkill].Signal)
}

func TestEngine_Fingerprint(t *testing.T) {
	t.Parallel()
	ex := skills.NewExtractor(nil)
	a1, err := NewAggregator(DefaultWeights())
	require.NoError(t, err)
	a2, err := NewAggregator(Weights{Skill: 0.5, Experience: 0.2, Location: 0.1, Salary: 0.1, Culture: 0.1})
	require.NoError(t, err)

	e1, e2 := NewEngine(ex, a1), NewEngine(ex, a2)
	assert.Equal(t, e1.Fingerprint(), NewEngine(ex, a1).Fingerprint())
	assert.NotEqual(t, e1.Fingerprint(), e2.Fingerprint())
	assert.Contains(t, e1.Fingerprint(), ex.Version())
}
