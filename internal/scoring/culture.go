package scoring

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/fairyhunter13/job-matcher/internal/domain"
)

const (
	industryMatch    = 100
	industryMismatch = 30
)

// CultureScorer weighs industry fit against the profile's preferences and goal,
// plus how much of the goal's target role shows up in the job text.
type CultureScorer struct{}

// Factor implements FactorScorer.
func (CultureScorer) Factor() domain.Factor { return domain.FactorCulture }

// Score implements FactorScorer.
func (CultureScorer) Score(in Input) FactorResult {
	industry, hasIndustry := industrySignal(in.Profile, in.Job)
	role, hasRole := roleSignal(in.Profile.CareerGoal, in.Job)

	switch {
	case hasIndustry && hasRole:
		// 0.7 industry, 0.3 role keywords
		return scored(divRoundHalfUp(7*industry+3*role, 10), fmt.Sprintf("industry %d, role keywords %d", industry, role))
	case hasIndustry:
		return scored(industry, fmt.Sprintf("industry %d", industry))
	case hasRole:
		return scored(role, fmt.Sprintf("role keywords %d", role))
	}
	return insufficient(Neutral, "no industry or career goal signal")
}

func industrySignal(p domain.Profile, job domain.Job) (int, bool) {
	jobInd := industryWords(job.Industry)
	if len(jobInd) == 0 {
		return 0, false
	}
	wanted := make([][]string, 0, len(p.Preferences.Industries)+1)
	for _, ind := range p.Preferences.Industries {
		if w := industryWords(ind); len(w) > 0 {
			wanted = append(wanted, w)
		}
	}
	if p.CareerGoal != nil {
		if w := industryWords(p.CareerGoal.TargetIndustry); len(w) > 0 {
			wanted = append(wanted, w)
		}
	}
	if len(wanted) == 0 {
		return 0, false
	}
	for _, w := range wanted {
		if containsWords(jobInd, w) || containsWords(w, jobInd) {
			return industryMatch, true
		}
	}
	return industryMismatch, true
}

// industryWords lowercases an industry name and splits it into words.
func industryWords(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// containsWords reports whether needle occurs in hay as a run of whole words.
func containsWords(hay, needle []string) bool {
	for i := 0; i+len(needle) <= len(hay); i++ {
		if slices.Equal(hay[i:i+len(needle)], needle) {
			return true
		}
	}
	return false
}

// roleSignal is the share of target-role keywords present in the job title and description.
func roleSignal(goal *domain.CareerGoal, job domain.Job) (int, bool) {
	if goal == nil {
		return 0, false
	}
	want := roleKeywords(goal.TargetRole)
	text := job.Title + "\n" + job.Description
	if len(want) == 0 || strings.TrimSpace(text) == "" {
		return 0, false
	}
	have := wordSet(keywords(text))
	hits := 0
	for _, k := range want {
		if _, ok := have[k]; ok {
			hits++
		}
	}
	return divRoundHalfUp(100*hits, len(want)), true
}
