package scoring

import (
	"fmt"
	"math"

	"github.com/fairyhunter13/job-matcher/internal/domain"
)

const basisPoints = 10000

// Weights is the relative importance of each factor. Weights must be non-negative and sum to 1.
type Weights struct {
	Skill      float64
	Experience float64
	Location   float64
	Salary     float64
	Culture    float64
}

// DefaultWeights returns the standard weight vector.
func DefaultWeights() Weights {
	return Weights{Skill: 0.35, Experience: 0.25, Location: 0.15, Salary: 0.10, Culture: 0.15}
}

func (w Weights) get(f domain.Factor) float64 {
	switch f {
	case domain.FactorSkill:
		return w.Skill
	case domain.FactorExperience:
		return w.Experience
	case domain.FactorLocation:
		return w.Location
	case domain.FactorSalary:
		return w.Salary
	case domain.FactorCulture:
		return w.Culture
	}
	return 0
}

// Validate checks the weights are usable.
func (w Weights) Validate() error {
	var sum float64
	for _, f := range domain.Factors {
		v := w.get(f)
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("op=scoring.weights: %w: %s weight %v", domain.ErrInvalidArgument, f, v)
		}
		sum += v
	}
	if math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("op=scoring.weights: %w: weights sum to %v", domain.ErrInvalidArgument, sum)
	}
	return nil
}

// Aggregator turns a breakdown into an overall score with exact integer arithmetic.
type Aggregator struct {
	weights Weights
	bp      [5]int
}

// NewAggregator validates w and converts it to basis points.
func NewAggregator(w Weights) (*Aggregator, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	a := &Aggregator{weights: w}
	total, largest := 0, 0
	for i, f := range domain.Factors {
		a.bp[i] = int(math.Round(w.get(f) * basisPoints))
		total += a.bp[i]
		if a.bp[i] > a.bp[largest] {
			largest = i
		}
	}
	// absorb rounding drift so the vector sums to exactly 10000
	a.bp[largest] += basisPoints - total
	return a, nil
}

// Weights returns the configured weights.
func (a *Aggregator) Weights() Weights { return a.weights }

// Aggregate returns round_half_up(sum(w_i * b_i)) clamped to [0,100].
// Out-of-range sub-scores are clamped before weighting.
func (a *Aggregator) Aggregate(b domain.Breakdown) int {
	sum := 0
	for i, f := range domain.Factors {
		sum += a.bp[i] * clamp(b.Get(f), 0, 100)
	}
	return clamp((sum+basisPoints/2)/basisPoints, 0, 100)
}
