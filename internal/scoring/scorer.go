// Package scoring computes explainable profile/job compatibility scores.
//
// Every scorer is a pure function of its Input: no I/O, no clocks, no shared
// mutable state. Missing or unparsable data yields a neutral sub-score tagged
// with SignalInsufficientData instead of an error.
package scoring

import (
	"strings"
	"time"
	"unicode"

	"github.com/fairyhunter13/job-matcher/internal/domain"
)

// Neutral is the sub-score used when a factor has no usable signal.
const Neutral = 50

// Input is one profile/job pair to score.
// AsOf closes ongoing experience entries; a zero AsOf falls back to Job.PostedAt.
type Input struct {
	Profile domain.Profile
	Job     domain.Job
	AsOf    time.Time
}

// FactorResult is a sub-score in [0,100] and the evidence behind it.
type FactorResult struct {
	Score    int
	Evidence domain.Evidence
}

// FactorScorer scores one dimension of a match.
type FactorScorer interface {
	Factor() domain.Factor
	Score(in Input) FactorResult
}

func scored(score int, reason string) FactorResult {
	return FactorResult{Score: clamp(score, 0, 100), Evidence: domain.Evidence{Signal: domain.SignalScored, Reason: reason}}
}

func insufficient(score int, reason string) FactorResult {
	return FactorResult{Score: score, Evidence: domain.Evidence{Signal: domain.SignalInsufficientData, Reason: reason}}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// divRoundHalfUp returns num/den rounded half-up for non-negative operands.
func divRoundHalfUp(num, den int) int {
	if den <= 0 {
		return 0
	}
	return (2*num + den) / (2 * den)
}

// roundHalfUp rounds a non-negative float half-up.
func roundHalfUp(v float64) int {
	if v < 0 {
		return 0
	}
	return int(v + 0.5)
}

var stopwords = map[string]struct{}{
	"and": {}, "the": {}, "for": {}, "with": {}, "of": {}, "to": {}, "in": {}, "on": {}, "at": {},
	"a": {}, "an": {}, "or": {}, "our": {}, "we": {}, "you": {}, "your": {}, "as": {}, "is": {}, "are": {},
	"be": {}, "will": {}, "who": {}, "this": {}, "that": {}, "from": {}, "by": {},
}

// seniority words describe level, not role family.
var seniorityWords = map[string]struct{}{
	"intern": {}, "internship": {}, "junior": {}, "jr": {}, "entry": {}, "graduate": {}, "mid": {},
	"intermediate": {}, "senior": {}, "sr": {}, "lead": {}, "principal": {}, "staff": {}, "head": {},
	"i": {}, "ii": {}, "iii": {}, "iv": {},
}

// keywords returns the distinct lowercase content words of s in first-seen order.
func keywords(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 2 {
			continue
		}
		if _, stop := stopwords[f]; stop {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// roleKeywords drops seniority words from keywords(s).
func roleKeywords(s string) []string {
	kw := keywords(s)
	out := kw[:0]
	for _, k := range kw {
		if _, ok := seniorityWords[k]; ok {
			continue
		}
		out = append(out, k)
	}
	return out
}

func wordSet(words []string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
