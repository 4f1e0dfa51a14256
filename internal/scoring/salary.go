package scoring

import (
	"math"
	"strings"

	"github.com/fairyhunter13/job-matcher/internal/domain"
)

const (
	salaryFloor     = 15
	salaryNearFloor = 35
	// a job topping out within this fraction below the desired minimum is "near"
	salaryNearMargin = 0.10
)

type band struct{ lo, hi float64 }

func newBand(min, max *float64) (band, bool) {
	switch {
	case min == nil && max == nil:
		return band{}, false
	case min == nil:
		return band{*max, *max}, true
	case max == nil:
		return band{*min, *min}, true
	}
	if *min > *max {
		return band{*max, *min}, true
	}
	return band{*min, *max}, true
}

// SalaryScorer measures how much of the desired salary band the job covers.
// A job band entirely above the desired band counts as full coverage.
type SalaryScorer struct{}

// Factor implements FactorScorer.
func (SalaryScorer) Factor() domain.Factor { return domain.FactorSalary }

// Score implements FactorScorer.
func (SalaryScorer) Score(in Input) FactorResult {
	prefs := in.Profile.Preferences
	want, okWant := newBand(prefs.SalaryMin, prefs.SalaryMax)
	offer, okOffer := newBand(in.Job.Salary.Min, in.Job.Salary.Max)
	if !okWant || !okOffer {
		return insufficient(Neutral, "salary data missing")
	}
	if prefs.Currency != "" && in.Job.Salary.Currency != "" && !strings.EqualFold(prefs.Currency, in.Job.Salary.Currency) {
		return insufficient(Neutral, "salary currencies differ")
	}

	switch {
	case offer.lo <= want.lo && offer.hi >= want.hi:
		return scored(100, "job band contains the desired band")
	case offer.lo >= want.hi:
		return scored(100, "job band is above the desired band")
	case offer.hi >= want.lo:
		// overlap as a share of the desired width; width is positive here
		overlap := math.Min(offer.hi, want.hi) - math.Max(offer.lo, want.lo)
		score := roundHalfUp(100 * overlap / (want.hi - want.lo))
		if score < salaryFloor {
			score = salaryFloor
		}
		return scored(score, "job band partially overlaps the desired band")
	case offer.hi >= want.lo*(1-salaryNearMargin):
		return scored(salaryNearFloor, "job band just below the desired band")
	default:
		return scored(salaryFloor, "job band below the desired band")
	}
}
