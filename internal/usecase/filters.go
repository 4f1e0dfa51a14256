package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fairyhunter13/job-matcher/internal/adapter/observability"
	"github.com/fairyhunter13/job-matcher/internal/domain"
	"github.com/fairyhunter13/job-matcher/internal/scoring"
)

// DefaultLimit is used when a request leaves Filters.Limit at zero.
const DefaultLimit = 10

// MaxLimit caps Filters.Limit.
const MaxLimit = 100

// Filters are the caller's exclusion criteria for Recommend.
type Filters struct {
	Limit         int               `json:"limit" validate:"gte=0,lte=100"`
	Location      string            `json:"location,omitempty" validate:"max=200"`
	RemoteType    domain.RemoteType `json:"remote_type,omitempty" validate:"omitempty,oneof=remote hybrid onsite"`
	JobType       string            `json:"job_type,omitempty" validate:"max=50"`
	SalaryMin     *float64          `json:"salary_min,omitempty" validate:"omitempty,gte=0"`
	MinMatchScore *int              `json:"min_match_score,omitempty" validate:"omitempty,gte=0,lte=100"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate rejects malformed filters with domain.ErrValidationFailed.
func (f Filters) Validate() error {
	if err := validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed %s", domain.ErrValidationFailed, fe.Field(), fe.Tag())
		}
		return fmt.Errorf("%w: %v", domain.ErrValidationFailed, err)
	}
	return nil
}

func (f Filters) limit() int {
	if f.Limit <= 0 {
		return DefaultLimit
	}
	return f.Limit
}

// scoredJob is a scored candidate with the job it was computed from.
type scoredJob struct {
	score domain.MatchScore
	job   domain.Job
	rank  int
}

// FilterStep describes the result of one exclusion step.
type FilterStep struct {
	Name    string `json:"name"`
	Initial int    `json:"initial"`
	Dropped int    `json:"dropped"`
	Left    int    `json:"left"`
}

type matchFilter struct {
	name string
	keep func(scoredJob) bool
}

// buildFilters returns only the steps the caller asked for.
func buildFilters(f Filters) []matchFilter {
	var out []matchFilter
	if loc := strings.ToLower(strings.TrimSpace(f.Location)); loc != "" {
		out = append(out, matchFilter{name: "location", keep: func(s scoredJob) bool {
			return strings.Contains(strings.ToLower(s.job.Location), loc)
		}})
	}
	if f.RemoteType != "" {
		want := f.RemoteType
		out = append(out, matchFilter{name: "remote_type", keep: func(s scoredJob) bool {
			return effectiveRemoteType(s.job) == want
		}})
	}
	if jt := strings.TrimSpace(f.JobType); jt != "" {
		out = append(out, matchFilter{name: "job_type", keep: func(s scoredJob) bool {
			return strings.EqualFold(strings.TrimSpace(s.job.EmploymentType), jt)
		}})
	}
	if f.SalaryMin != nil {
		floor := *f.SalaryMin
		out = append(out, matchFilter{name: "salary_min", keep: func(s scoredJob) bool {
			top, ok := salaryTop(s.job.Salary)
			return ok && top >= floor
		}})
	}
	if f.MinMatchScore != nil {
		threshold := *f.MinMatchScore
		out = append(out, matchFilter{name: "min_match_score", keep: func(s scoredJob) bool {
			return s.score.OverallScore >= threshold
		}})
	}
	return out
}

// applyFilters runs the steps in order and logs each one at debug level.
func applyFilters(ctx context.Context, items []scoredJob, filters []matchFilter) ([]scoredJob, []FilterStep) {
	lg := observability.LoggerFromContext(ctx)
	steps := make([]FilterStep, 0, len(filters))
	for _, f := range filters {
		initial := len(items)
		kept := items[:0:0]
		for _, it := range items {
			if f.keep(it) {
				kept = append(kept, it)
			}
		}
		items = kept
		step := FilterStep{Name: f.name, Initial: initial, Dropped: initial - len(items), Left: len(items)}
		steps = append(steps, step)
		lg.Debug("match filter applied",
			slog.String("filter", step.Name),
			slog.Int("initial", step.Initial),
			slog.Int("dropped", step.Dropped),
			slog.Int("left", step.Left))
	}
	return items, steps
}

// effectiveRemoteType resolves postings that only say "remote" in their location.
func effectiveRemoteType(j domain.Job) domain.RemoteType {
	if scoring.IsRemote(j) {
		return domain.RemoteTypeRemote
	}
	return j.RemoteType
}

// salaryTop is the highest salary the posting advertises. Postings without a
// salary cannot satisfy a minimum.
func salaryTop(s domain.SalaryRange) (float64, bool) {
	switch {
	case s.Max != nil:
		return *s.Max, true
	case s.Min != nil:
		return *s.Min, true
	default:
		return 0, false
	}
}
