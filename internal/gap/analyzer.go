// Package gap turns a career goal into a prioritized list of skills to learn.
package gap

import (
	"fmt"
	"sort"

	"github.com/fairyhunter13/job-matcher/internal/domain"
	"github.com/fairyhunter13/job-matcher/internal/scoring"
	"github.com/fairyhunter13/job-matcher/internal/skills"
)

// DefaultRequiredLevel applies to skills named only in a goal's free-text description.
const DefaultRequiredLevel = 3

// weeks of study per missing proficiency level, by category
var weeksPerLevel = map[string]int{
	skills.CategoryLanguages:     6,
	skills.CategoryFrameworks:    4,
	skills.CategoryDatabases:     3,
	skills.CategoryCloud:         4,
	skills.CategoryDevOps:        4,
	skills.CategoryMethodologies: 2,
	skills.CategoryOther:         4,
}

// Report is the outcome of a gap analysis.
type Report struct {
	Gaps            []domain.SkillGap `json:"gaps"`
	MatchPercentage int               `json:"match_percentage"`
	MatchingSkills  []string          `json:"matching_skills"`
}

// Analyzer compares a profile with a career goal.
type Analyzer struct {
	extractor *skills.Extractor
}

// NewAnalyzer returns an analyzer over ex.
func NewAnalyzer(ex *skills.Extractor) *Analyzer {
	return &Analyzer{extractor: ex}
}

type requirement struct {
	name  string
	level int
}

// Analyze lists every requirement of goal the profile does not meet, sorted by
// gap descending then skill name ascending. A goal with no requirements is a 100% match.
func (a *Analyzer) Analyze(p domain.Profile, goal domain.CareerGoal) Report {
	reqs := a.requirements(goal)
	rep := Report{Gaps: []domain.SkillGap{}, MatchingSkills: []string{}, MatchPercentage: 100}
	if len(reqs) == 0 {
		return rep
	}

	names := make([]string, len(reqs))
	for i, r := range reqs {
		names[i] = r.name
	}
	have := scoring.MatchSkills(a.extractor, p.Skills, names).Levels

	met := 0
	for _, r := range reqs {
		cur := have[r.name]
		if cur >= r.level {
			met++
			rep.MatchingSkills = append(rep.MatchingSkills, r.name)
			continue
		}
		rep.Gaps = append(rep.Gaps, a.newGap(r, cur))
	}
	rep.MatchPercentage = (200*met + len(reqs)) / (2 * len(reqs))

	sort.Slice(rep.Gaps, func(i, j int) bool {
		if rep.Gaps[i].Gap != rep.Gaps[j].Gap {
			return rep.Gaps[i].Gap > rep.Gaps[j].Gap
		}
		return rep.Gaps[i].Skill < rep.Gaps[j].Skill
	})
	sort.Strings(rep.MatchingSkills)
	return rep
}

// requirements merges explicit goal skills with skills mentioned in the goal description.
// Explicit entries win; duplicates keep the highest level.
func (a *Analyzer) requirements(goal domain.CareerGoal) []requirement {
	levels := make(map[string]int)
	order := make([]string, 0, len(goal.RequiredSkills))
	add := func(name string, level int) {
		cur, ok := levels[name]
		if !ok {
			order = append(order, name)
		}
		if !ok || level > cur {
			levels[name] = level
		}
	}
	for _, rs := range goal.RequiredSkills {
		name := a.extractor.Canonical(rs.Name)
		if name == "" {
			continue
		}
		lvl := rs.Level
		if lvl <= 0 {
			lvl = DefaultRequiredLevel
		}
		add(name, min(lvl, scoring.MaxLevel))
	}
	for _, name := range a.extractor.Extract(goal.Description) {
		if _, ok := levels[name]; !ok {
			add(name, DefaultRequiredLevel)
		}
	}

	out := make([]requirement, 0, len(order))
	for _, name := range order {
		out = append(out, requirement{name: name, level: levels[name]})
	}
	return out
}

func (a *Analyzer) newGap(r requirement, cur int) domain.SkillGap {
	gap := r.level - cur
	category := a.extractor.Category(r.name)
	weeks := gap * weeksPerLevel[category]
	return domain.SkillGap{
		Skill:                 r.name,
		RequiredLevel:         r.level,
		CurrentLevel:          cur,
		Gap:                   gap,
		Priority:              priority(gap, cur, r.level),
		EstimatedLearningTime: formatDuration(weeks),
		EstimatedWeeks:        weeks,
		Category:              category,
	}
}

// priority: a gap of 3+ levels, or a core skill (level 3+) missing entirely, is high.
func priority(gap, cur, required int) domain.Priority {
	switch {
	case gap >= 3 || (cur == 0 && required >= 3):
		return domain.PriorityHigh
	case gap == 2:
		return domain.PriorityMedium
	default:
		return domain.PriorityLow
	}
}

func formatDuration(weeks int) string {
	switch {
	case weeks == 1:
		return "1 week"
	case weeks <= 8:
		return fmt.Sprintf("%d weeks", weeks)
	}
	months := (weeks + 3) / 4
	return fmt.Sprintf("%d months", months)
}
