package scoring

import (
	"fmt"

	"github.com/fairyhunter13/job-matcher/internal/domain"
	"github.com/fairyhunter13/job-matcher/internal/skills"
)

// Engine runs the factor scorers and the aggregator for one profile/job pair.
type Engine struct {
	scorers   []FactorScorer
	agg       *Aggregator
	extractor *skills.Extractor
}

// NewEngine wires the five standard scorers over ex.
func NewEngine(ex *skills.Extractor, agg *Aggregator) *Engine {
	return NewEngineWith(ex, agg,
		NewSkillScorer(ex),
		ExperienceScorer{},
		LocationScorer{},
		SalaryScorer{},
		CultureScorer{},
	)
}

// NewEngineWith builds an engine over explicit scorers. Factors without a scorer score Neutral.
func NewEngineWith(ex *skills.Extractor, agg *Aggregator, scorers ...FactorScorer) *Engine {
	return &Engine{scorers: scorers, agg: agg, extractor: ex}
}

// Extractor returns the skill extractor the engine scores with.
func (e *Engine) Extractor() *skills.Extractor { return e.extractor }

// Fingerprint identifies the non-input state Score depends on: the taxonomy
// snapshot and the weights. Cached scores are only valid under the same value.
func (e *Engine) Fingerprint() string {
	return fmt.Sprintf("%s/%v", e.extractor.Version(), e.agg.bp)
}

// Score computes the full match. It is pure: equal inputs give equal outputs.
func (e *Engine) Score(in Input) domain.MatchScore {
	var bd domain.Breakdown
	evidence := make(map[domain.Factor]domain.Evidence, len(domain.Factors))
	for _, f := range domain.Factors {
		bd.Set(f, Neutral)
		evidence[f] = domain.Evidence{Signal: domain.SignalInsufficientData, Reason: "no scorer"}
	}
	for _, s := range e.scorers {
		r := s.Score(in)
		bd.Set(s.Factor(), clamp(r.Score, 0, 100))
		evidence[s.Factor()] = r.Evidence
	}

	skillEv := evidence[domain.FactorSkill]
	matching := nonNil(skillEv.MatchingSkills)
	missing := nonNil(skillEv.MissingSkills)
	overall := e.agg.Aggregate(bd)

	return domain.MatchScore{
		JobID:           in.Job.ID,
		UserID:          in.Profile.ID,
		OverallScore:    overall,
		Breakdown:       bd,
		MatchingSkills:  matching,
		MissingSkills:   missing,
		Recommendations: Recommendations(overall, bd, missing),
		Evidence:        evidence,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
