package scoring

import (
	"fmt"

	"github.com/fairyhunter13/job-matcher/internal/domain"
	"github.com/fairyhunter13/job-matcher/internal/skills"
)

// MaxLevel is the top of the proficiency scale.
const MaxLevel = 5

// SkillMatch is the overlap of a profile's skills with a set of required skills.
type SkillMatch struct {
	Matching []string
	Missing  []string
	// Levels holds the profile level of every matching skill, keyed by canonical name.
	Levels map[string]int
	// LevelSum is the sum of clamped levels over Matching.
	LevelSum int
}

// MatchSkills compares profile skills to canonical required names.
// Profile names are canonicalized first; a duplicated skill keeps its highest level.
// Matching and Missing follow the order of required and never intersect.
func MatchSkills(ex *skills.Extractor, have []domain.ProfileSkill, required []string) SkillMatch {
	levels := make(map[string]int, len(have))
	for _, s := range have {
		name := ex.Canonical(s.Name)
		if name == "" {
			continue
		}
		lvl := clamp(s.Level, 1, MaxLevel)
		if cur, ok := levels[name]; !ok || lvl > cur {
			levels[name] = lvl
		}
	}

	m := SkillMatch{
		Matching: make([]string, 0, len(required)),
		Missing:  make([]string, 0, len(required)),
		Levels:   make(map[string]int, len(required)),
	}
	seen := make(map[string]struct{}, len(required))
	for _, req := range required {
		if _, dup := seen[req]; dup {
			continue
		}
		seen[req] = struct{}{}
		if lvl, ok := levels[req]; ok {
			m.Matching = append(m.Matching, req)
			m.Levels[req] = lvl
			m.LevelSum += lvl
			continue
		}
		m.Missing = append(m.Missing, req)
	}
	return m
}

// SkillScorer credits each skill the job asks for by the profile's proficiency.
type SkillScorer struct {
	extractor *skills.Extractor
}

// NewSkillScorer builds the skill factor over ex.
func NewSkillScorer(ex *skills.Extractor) SkillScorer { return SkillScorer{extractor: ex} }

// Factor implements FactorScorer.
func (SkillScorer) Factor() domain.Factor { return domain.FactorSkill }

// Score implements FactorScorer. A job with no recognizable skills does not penalize anyone.
func (s SkillScorer) Score(in Input) FactorResult {
	required := s.extractor.Extract(in.Job.Description + "\n" + in.Job.Requirements)
	if len(required) == 0 {
		return insufficient(100, "no recognizable skills in job text")
	}
	m := MatchSkills(s.extractor, in.Profile.Skills, required)

	// 100 * sum(level/5) / n
	score := divRoundHalfUp(100*m.LevelSum, MaxLevel*len(required))
	res := scored(score, fmt.Sprintf("%d of %d required skills present", len(m.Matching), len(required)))
	res.Evidence.MatchingSkills = m.Matching
	res.Evidence.MissingSkills = m.Missing
	return res
}
