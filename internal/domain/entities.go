package domain

import (
	"context"
	"errors"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrValidationFailed     = errors.New("validation failed")
	ErrNotFound             = errors.New("not found")
	ErrConfigurationMissing = errors.New("configuration missing")
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")
	ErrIndexNotInitialized  = errors.New("index not initialized")
	ErrPartialResult        = errors.New("partial result")
	ErrUpstreamTimeout      = errors.New("upstream timeout")
	ErrInternal             = errors.New("internal error")
)

// RemoteType enumerates job remote-work categories.
type RemoteType string

// Remote-work categories of a job posting.
const (
	RemoteTypeRemote RemoteType = "remote"
	RemoteTypeHybrid RemoteType = "hybrid"
	RemoteTypeOnsite RemoteType = "onsite"
)

// RemotePreference is a profile's tolerance for remote, hybrid, or onsite work.
type RemotePreference string

// Remote-work tolerances of a profile. An empty value means unspecified.
const (
	RemotePreferenceRemoteOnly RemotePreference = "remote_only"
	RemotePreferenceHybrid     RemotePreference = "hybrid"
	RemotePreferenceOnsite     RemotePreference = "onsite"
	RemotePreferenceFlexible   RemotePreference = "flexible"
)

// ProfileSkill is a skill claimed by a job seeker.
// Level is proficiency on a 1..5 scale.
type ProfileSkill struct {
	Name  string  `json:"name"`
	Level int     `json:"level"`
	Years float64 `json:"years"`
}

// ExperienceEntry is one position in a profile's work history.
// DurationMonths wins over StartDate/EndDate when positive; a nil EndDate means ongoing.
type ExperienceEntry struct {
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	StartDate      time.Time  `json:"start_date"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	DurationMonths int        `json:"duration_months"`
}

// EducationEntry is one degree held by a job seeker.
type EducationEntry struct {
	Degree string   `json:"degree"`
	Field  string   `json:"field"`
	GPA    *float64 `json:"gpa,omitempty"`
}

// Preferences holds what a job seeker is looking for.
type Preferences struct {
	Locations  []string         `json:"locations"`
	RemoteWork RemotePreference `json:"remote_work"`
	SalaryMin  *float64         `json:"salary_min,omitempty"`
	SalaryMax  *float64         `json:"salary_max,omitempty"`
	Currency   string           `json:"currency,omitempty"`
	Industries []string         `json:"industries"`
}

// SkillRequirement is a target skill at a target level (1..5).
type SkillRequirement struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
}

// CareerGoal is the role a job seeker is working towards.
type CareerGoal struct {
	ID             string             `json:"id"`
	UserID         string             `json:"user_id"`
	TargetRole     string             `json:"target_role"`
	TargetIndustry string             `json:"target_industry"`
	Description    string             `json:"description"`
	RequiredSkills []SkillRequirement `json:"required_skills"`
}

// Profile is a read-only snapshot of a job seeker.
// Version changes whenever the owning service mutates the profile.
type Profile struct {
	ID          string            `json:"id"`
	Version     int64             `json:"version"`
	Skills      []ProfileSkill    `json:"skills"`
	Experience  []ExperienceEntry `json:"experience"`
	Education   []EducationEntry  `json:"education"`
	Preferences Preferences       `json:"preferences"`
	CareerGoal  *CareerGoal       `json:"career_goal,omitempty"`
}

// SalaryRange is a nullable salary band.
type SalaryRange struct {
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Currency string   `json:"currency,omitempty"`
}

// Job is a read-only snapshot of a job posting.
type Job struct {
	ID             string      `json:"id"`
	Title          string      `json:"title"`
	Company        string      `json:"company"`
	Description    string      `json:"description"`
	Requirements   string      `json:"requirements"`
	Location       string      `json:"location"`
	RemoteType     RemoteType  `json:"remote_type"`
	EmploymentType string      `json:"employment_type"`
	Salary         SalaryRange `json:"salary"`
	Industry       string      `json:"industry,omitempty"`
	PostedAt       time.Time   `json:"posted_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// Factor names one of the five scoring dimensions.
type Factor string

// Scoring dimensions in aggregation order.
const (
	FactorSkill      Factor = "skill"
	FactorExperience Factor = "experience"
	FactorLocation   Factor = "location"
	FactorSalary     Factor = "salary"
	FactorCulture    Factor = "culture"
)

// Factors lists all scoring dimensions in their canonical order.
var Factors = []Factor{FactorSkill, FactorExperience, FactorLocation, FactorSalary, FactorCulture}

// Breakdown holds the five sub-scores, each in [0,100].
type Breakdown struct {
	Skill      int `json:"skill"`
	Experience int `json:"experience"`
	Location   int `json:"location"`
	Salary     int `json:"salary"`
	Culture    int `json:"culture"`
}

// Get returns the sub-score for f.
func (b Breakdown) Get(f Factor) int {
	switch f {
	case FactorSkill:
		return b.Skill
	case FactorExperience:
		return b.Experience
	case FactorLocation:
		return b.Location
	case FactorSalary:
		return b.Salary
	case FactorCulture:
		return b.Culture
	}
	return 0
}

// Set stores v as the sub-score for f.
func (b *Breakdown) Set(f Factor, v int) {
	switch f {
	case FactorSkill:
		b.Skill = v
	case FactorExperience:
		b.Experience = v
	case FactorLocation:
		b.Location = v
	case FactorSalary:
		b.Salary = v
	case FactorCulture:
		b.Culture = v
	}
}

// Signal tells whether a sub-score is backed by data or is a neutral default.
type Signal string

// Evidence signals.
const (
	SignalScored           Signal = "scored"
	SignalInsufficientData Signal = "insufficient_data"
)

// Evidence explains a single sub-score.
type Evidence struct {
	Signal         Signal   `json:"signal"`
	Reason         string   `json:"reason,omitempty"`
	MatchingSkills []string `json:"matching_skills"`
	MissingSkills  []string `json:"missing_skills"`
}

// MatchScore is the explainable compatibility of one profile with one job.
// Invariants: OverallScore is the rounded weighted sum of Breakdown;
// MatchingSkills and MissingSkills are disjoint.
type MatchScore struct {
	JobID           string              `json:"job_id"`
	UserID          string              `json:"user_id"`
	OverallScore    int                 `json:"overall_score"`
	Breakdown       Breakdown           `json:"breakdown"`
	MatchingSkills  []string            `json:"matching_skills"`
	MissingSkills   []string            `json:"missing_skills"`
	Recommendations []string            `json:"recommendations"`
	Evidence        map[Factor]Evidence `json:"evidence,omitempty"`
	Similarity      float64             `json:"similarity,omitempty"`
}

// Priority ranks a skill gap.
type Priority string

// Gap priorities.
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// SkillGap is a required skill/level the profile does not yet satisfy.
type SkillGap struct {
	Skill                 string   `json:"skill"`
	RequiredLevel         int      `json:"required_level"`
	CurrentLevel          int      `json:"current_level"`
	Gap                   int      `json:"gap"`
	Priority              Priority `json:"priority"`
	EstimatedLearningTime string   `json:"estimated_learning_time"`
	EstimatedWeeks        int      `json:"estimated_weeks"`
	Category              string   `json:"category"`
}

// ScoredCandidate is a job id returned by the vector index.
type ScoredCandidate struct {
	JobID      string
	Similarity float64
}

// Repositories (ports)

type ProfileRepository interface {
	Get(ctx Context, id string) (Profile, error)
}

type JobRepository interface {
	Get(ctx Context, id string) (Job, error)
}

// CandidatePool supplies job ids when semantic retrieval is unavailable.
type CandidatePool interface {
	RecentJobIDs(ctx Context, limit int) ([]string, error)
}

type CareerGoalRepository interface {
	Get(ctx Context, id string) (CareerGoal, error)
}

// EmbeddingProvider (port)
type EmbeddingProvider interface {
	// Embed returns one vector per input text, in order.
	Embed(ctx Context, texts []string) ([][]float32, error)
}

// VectorIndex (port)
// Query returns ErrIndexNotInitialized when the backing collection does not exist.
type VectorIndex interface {
	Upsert(ctx Context, jobID string, vector []float32) error
	Query(ctx Context, vector []float32, topN int) ([]ScoredCandidate, error)
}

// MatchCache is an optional caller-side cache of computed scores.
type MatchCache interface {
	Get(ctx Context, key string) (MatchScore, bool, error)
	Set(ctx Context, key string, score MatchScore, ttl time.Duration) error
}

// Context is an alias to allow decoupling from std context in domain.
type Context = context.Context
