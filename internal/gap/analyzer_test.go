package gap

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/job-matcher/internal/domain"
	"github.com/fairyhunter13/job-matcher/internal/skills"
)

func TestAnalyze_KubernetesAWS(t *testing.T) {
	t.Parallel()
	a := NewAnalyzer(skills.NewExtractor(nil))
	p := domain.Profile{Skills: []domain.ProfileSkill{{Name: "aws", Level: 1}}}
	goal := domain.CareerGoal{RequiredSkills: []domain.SkillRequirement{
		{Name: "AWS", Level: 3},
		{Name: "k8s", Level: 4},
	}}

	rep := a.Analyze(p, goal)
	require.Len(t, rep.Gaps, 2)

	k8s := rep.Gaps[0]
	assert.Equal(t, "Kubernetes", k8s.Skill)
	assert.Equal(t, 4, k8s.Gap)
	assert.Equal(t, 0, k8s.CurrentLevel)
	assert.Equal(t, domain.PriorityHigh, k8s.Priority)
	assert.Equal(t, skills.CategoryDevOps, k8s.Category)
	assert.Equal(t, 16, k8s.EstimatedWeeks)
	assert.Equal(t, "4 months", k8s.EstimatedLearningTime)

	aws := rep.Gaps[1]
	assert.Equal(t, "AWS", aws.Skill)
	assert.Equal(t, 2, aws.Gap)
	assert.Equal(t, 1, aws.CurrentLevel)
	assert.Equal(t, domain.PriorityMedium, aws.Priority)
	assert.Equal(t, "8 weeks", aws.EstimatedLearningTime)

	assert.Equal(t, 0, rep.MatchPercentage)
	assert.Empty(t, rep.MatchingSkills)
}

func TestAnalyze_ZeroRequirements(t *testing.T) {
	t.Parallel()
	a := NewAnalyzer(skills.NewExtractor(nil))
	rep := a.Analyze(domain.Profile{}, domain.CareerGoal{TargetRole: "Astronaut"})
	assert.Equal(t, 100, rep.MatchPercentage)
	assert.Empty(t, rep.Gaps)
	assert.NotNil(t, rep.Gaps)
}

func TestAnalyze_DescriptionAndPercentage(t *testing.T) {
	t.Parallel()
	a := NewAnalyzer(skills.NewExtractor(nil))
	p := domain.Profile{Skills: []domain.ProfileSkill{
		{Name: "Go", Level: 5},
		{Name: "Scrum", Level: 2},
	}}
	goal := domain.CareerGoal{
		Description:    "Lead Go teams running Scrum, with Terraform on GCP.",
		RequiredSkills: []domain.SkillRequirement{{Name: "golang", Level: 4}, {Name: "Underwater Welding"}},
	}

	rep := a.Analyze(p, goal)
	// Go 4 (met), Underwater Welding 3, Scrum 3, Terraform 3, GCP 3
	assert.Equal(t, []string{"Go"}, rep.MatchingSkills)
	assert.Equal(t, 20, rep.MatchPercentage)

	var names []string
	for _, g := range rep.Gaps {
		names = append(names, g.Skill)
	}
	assert.Equal(t, []string{"GCP", "Terraform", "Underwater Welding", "Scrum"}, names)

	byName := map[string]domain.SkillGap{}
	for _, g := range rep.Gaps {
		byName[g.Skill] = g
	}
	assert.Equal(t, domain.PriorityLow, byName["Scrum"].Priority)
	assert.Equal(t, "2 weeks", byName["Scrum"].EstimatedLearningTime)
	assert.Equal(t, skills.CategoryOther, byName["Underwater Welding"].Category)
	assert.Equal(t, "3 months", byName["Underwater Welding"].EstimatedLearningTime)
	assert.Equal(t, domain.PriorityHigh, byName["GCP"].Priority)
}

func TestAnalyze_SortedProperty(t *testing.T) {
	t.Parallel()
	a := NewAnalyzer(skills.NewExtractor(nil))
	reqs := []domain.SkillRequirement{
		{Name: "Rust", Level: 5}, {Name: "Go", Level: 2}, {Name: "Docker", Level: 4},
		{Name: "AWS", Level: 4}, {Name: "Kafka", Level: 1}, {Name: "TDD", Level: 3},
		{Name: "Redis", Level: 2}, {Name: "Azure", Level: 5},
	}
	for lvl := 0; lvl <= 5; lvl++ {
		p := domain.Profile{Skills: []domain.ProfileSkill{
			{Name: "Go", Level: lvl}, {Name: "Docker", Level: lvl}, {Name: "AWS", Level: 1},
		}}
		rep := a.Analyze(p, domain.CareerGoal{RequiredSkills: reqs})
		ok := sort.SliceIsSorted(rep.Gaps, func(i, j int) bool {
			if rep.Gaps[i].Gap != rep.Gaps[j].Gap {
				return rep.Gaps[i].Gap > rep.Gaps[j].Gap
			}
			return rep.Gaps[i].Skill < rep.Gaps[j].Skill
		})
		assert.True(t, ok, "level %d", lvl)
		for _, g := range rep.Gaps {
			assert.Positive(t, g.Gap)
			assert.Equal(t, g.RequiredLevel-g.CurrentLevel, g.Gap)
		}
	}
}

func TestPriorityAndDuration(t *testing.T) {
	t.Parallel()
	assert.Equal(t, domain.PriorityHigh, priority(3, 2, 5))
	assert.Equal(t, domain.PriorityHigh, priority(1, 0, 3))
	assert.Equal(t, domain.PriorityLow, priority(1, 0, 1))
	assert.Equal(t, domain.PriorityMedium, priority(2, 0, 2))
	assert.Equal(t, domain.PriorityLow, priority(1, 3, 4))

	assert.Equal(t, "1 week", formatDuration(1))
	assert.Equal(t, "8 weeks", formatDuration(8))
	assert.Equal(t, "3 months", formatDuration(9))
	assert.Equal(t, "5 months", formatDuration(18))
}
