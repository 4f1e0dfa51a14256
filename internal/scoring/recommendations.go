package scoring

import (
	"fmt"
	"strings"

	"github.com/fairyhunter13/job-matcher/internal/domain"
)

const (
	excellentThreshold = 80
	goodThreshold      = 60
	improveThreshold   = 70
	maxListedMissing   = 5
)

var factorHints = map[domain.Factor]string{
	domain.FactorSkill:      "Build hands-on experience with the skills this job lists to raise your skill match.",
	domain.FactorExperience: "Highlight projects and responsibilities that show experience at this level.",
	domain.FactorLocation:   "Check whether relocation or a remote arrangement is possible for this role.",
	domain.FactorSalary:     "The salary range differs from your expectations; review compensation before applying.",
	domain.FactorCulture:    "Research the company and its industry to confirm it fits your career goals.",
}

// Recommendations returns deterministic advice for a scored match.
// The list always has a headline, then a missing-skills line, then a hint for the weakest factor.
func Recommendations(overall int, b domain.Breakdown, missing []string) []string {
	out := make([]string, 0, 3)
	switch {
	case overall >= excellentThreshold:
		out = append(out, "Excellent match! Your profile aligns strongly with this role.")
	case overall >= goodThreshold:
		out = append(out, "Good match. A few improvements could make you a stronger candidate.")
	default:
		out = append(out, "This role is a stretch today; close the gaps below before applying.")
	}

	if len(missing) > 0 {
		listed := missing
		if len(listed) > maxListedMissing {
			listed = listed[:maxListedMissing]
		}
		line := "Consider developing these skills: " + strings.Join(listed, ", ")
		if extra := len(missing) - len(listed); extra > 0 {
			line += fmt.Sprintf(" and %d more", extra)
		}
		out = append(out, line)
	}

	if f, ok := weakestFactor(b); ok {
		out = append(out, factorHints[f])
	}
	return out
}

// weakestFactor returns the lowest factor under the improvement threshold, ties in factor order.
func weakestFactor(b domain.Breakdown) (domain.Factor, bool) {
	var (
		lowest domain.Factor
		low    = improveThreshold
		found  bool
	)
	for _, f := range domain.Factors {
		if v := b.Get(f); v < low {
			lowest, low, found = f, v, true
		}
	}
	return lowest, found
}
