package scoring

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fairyhunter13/job-matcher/internal/domain"
)

const (
	maxRequiredYears   = 20
	experienceFloor    = 40
	titleOverlapBonus  = 10
	hoursPerYear       = 24 * 365.25
	yearsUnitsPattern  = `(?:years?|yrs?)`
	experienceScoreCap = 100
	// bytes searched on each side of a year mention for experience wording
	experienceWindow = 40
)

var (
	yearsRangeRe = regexp.MustCompile(`(?i)\b(\d{1,2})\s*(?:-|–|to)\s*(\d{1,2})\s*(\+|plus)?\s*` + yearsUnitsPattern + `\b`)
	yearsPlusRe  = regexp.MustCompile(`(?i)\b(\d{1,2})\s*(\+|plus)?\s*` + yearsUnitsPattern + `\b`)
	experienceRe = regexp.MustCompile(`(?i)\bexp(?:erience[sd]?)?\b`)
	minimumRe    = regexp.MustCompile(`(?i)\b(?:at least|minimum(?: of)?|min)\s*$`)
)

// seniorityYears maps level keywords to required years.
var seniorityYears = map[string]int{
	"intern": 0, "internship": 0,
	"junior": 1, "jr": 1, "entry": 1, "graduate": 1,
	"mid": 3, "intermediate": 3,
	"senior": 5, "sr": 5,
	"lead": 8, "principal": 8, "staff": 8, "head": 8,
}

// ExperienceScorer compares total years of experience with what the job asks for.
type ExperienceScorer struct{}

// Factor implements FactorScorer.
func (ExperienceScorer) Factor() domain.Factor { return domain.FactorExperience }

// Score implements FactorScorer.
func (ExperienceScorer) Score(in Input) FactorResult {
	required, ok := RequiredYears(in.Job)
	if !ok {
		return insufficient(Neutral, "no experience requirement found in job text")
	}
	have := ProfileYears(in.Profile, asOf(in))

	var score int
	switch {
	case have >= float64(required):
		score = experienceScoreCap
	default:
		score = roundHalfUp(experienceFloor + float64(experienceScoreCap-experienceFloor)*have/float64(required))
	}
	reason := fmt.Sprintf("%.1f years against %d required", have, required)
	if titleOverlaps(in.Job.Title, in.Profile.Experience) {
		score += titleOverlapBonus
		reason += ", related title"
	}
	return scored(score, reason)
}

// RequiredYears extracts the years of experience a job asks for.
// A number of years counts only in an experience context: "N+ years", "at least N years",
// or the word experience in the same sentence close by. Counted mentions win over seniority
// keywords; ranges count by their lower bound and the largest mention wins, capped at 20.
func RequiredYears(job domain.Job) (int, bool) {
	text := job.Title + "\n" + job.Description + "\n" + job.Requirements

	best, found := -1, false
	for _, m := range yearsRangeRe.FindAllStringSubmatchIndex(text, -1) {
		if !experienceContext(text, m[0], m[1], m[6] >= 0) {
			continue
		}
		if n, err := strconv.Atoi(text[m[2]:m[3]]); err == nil && n > best {
			best, found = n, true
		}
	}
	rest := yearsRangeRe.ReplaceAllString(text, " ")
	for _, m := range yearsPlusRe.FindAllStringSubmatchIndex(rest, -1) {
		if !experienceContext(rest, m[0], m[1], m[4] >= 0) {
			continue
		}
		if n, err := strconv.Atoi(rest[m[2]:m[3]]); err == nil && n > best {
			best, found = n, true
		}
	}
	if found {
		return clamp(best, 0, maxRequiredYears), true
	}

	if y, ok := seniorityFrom(job.Title); ok {
		return y, true
	}
	return seniorityFrom(job.Requirements)
}

// experienceContext reports whether the year mention at text[start:end] is about experience.
// The search stays inside the mention's sentence.
func experienceContext(text string, start, end int, plus bool) bool {
	if plus {
		return true
	}
	before := text[max(0, start-experienceWindow):start]
	if i := strings.LastIndexAny(before, ".;!?\n"); i >= 0 {
		before = before[i+1:]
	}
	after := text[end:min(len(text), end+experienceWindow)]
	if i := strings.IndexAny(after, ".;!?\n"); i >= 0 {
		after = after[:i]
	}
	return experienceRe.MatchString(before) || experienceRe.MatchString(after) || minimumRe.MatchString(before)
}

func seniorityFrom(s string) (int, bool) {
	best, found := -1, false
	for _, k := range keywords(s) {
		if y, ok := seniorityYears[k]; ok && y > best {
			best, found = y, true
		}
	}
	return best, found
}

// ProfileYears sums the durations of all experience entries.
// DurationMonths wins when positive; open entries run until asOf, or are skipped when asOf is zero.
func ProfileYears(p domain.Profile, asOf time.Time) float64 {
	var total float64
	for _, e := range p.Experience {
		if e.DurationMonths > 0 {
			total += float64(e.DurationMonths) / 12
			continue
		}
		if e.StartDate.IsZero() {
			continue
		}
		end := asOf
		if e.EndDate != nil {
			end = *e.EndDate
		}
		if end.IsZero() || !end.After(e.StartDate) {
			continue
		}
		total += end.Sub(e.StartDate).Hours() / hoursPerYear
	}
	return total
}

func titleOverlaps(jobTitle string, entries []domain.ExperienceEntry) bool {
	role := wordSet(roleKeywords(jobTitle))
	if len(role) == 0 {
		return false
	}
	for _, e := range entries {
		for _, k := range roleKeywords(e.Title) {
			if _, ok := role[k]; ok {
				return true
			}
		}
	}
	return false
}

func asOf(in Input) time.Time {
	if !in.AsOf.IsZero() {
		return in.AsOf
	}
	return in.Job.PostedAt
}
