package scoring

import (
	"strings"

	"github.com/fairyhunter13/job-matcher/internal/domain"
)

type locationKey struct {
	job     domain.RemoteType
	pref    domain.RemotePreference
	matched bool
}

// locationTable holds every non-remote outcome. No cell is zero: relocation stays possible.
var locationTable = map[locationKey]int{
	{domain.RemoteTypeHybrid, domain.RemotePreferenceRemoteOnly, true}: 70,
	{domain.RemoteTypeHybrid, domain.RemotePreferenceHybrid, true}:     100,
	{domain.RemoteTypeHybrid, domain.RemotePreferenceOnsite, true}:     90,
	{domain.RemoteTypeHybrid, domain.RemotePreferenceFlexible, true}:   100,
	{domain.RemoteTypeHybrid, "", true}:                                100,
	{domain.RemoteTypeOnsite, domain.RemotePreferenceRemoteOnly, true}: 40,
	{domain.RemoteTypeOnsite, domain.RemotePreferenceHybrid, true}:     85,
	{domain.RemoteTypeOnsite, domain.RemotePreferenceOnsite, true}:     100,
	{domain.RemoteTypeOnsite, domain.RemotePreferenceFlexible, true}:   100,
	{domain.RemoteTypeOnsite, "", true}:                                100,

	{domain.RemoteTypeHybrid, domain.RemotePreferenceRemoteOnly, false}: 30,
	{domain.RemoteTypeHybrid, domain.RemotePreferenceHybrid, false}:     45,
	{domain.RemoteTypeHybrid, domain.RemotePreferenceOnsite, false}:     35,
	{domain.RemoteTypeHybrid, domain.RemotePreferenceFlexible, false}:   50,
	{domain.RemoteTypeHybrid, "", false}:                                40,
	{domain.RemoteTypeOnsite, domain.RemotePreferenceRemoteOnly, false}: 10,
	{domain.RemoteTypeOnsite, domain.RemotePreferenceHybrid, false}:     20,
	{domain.RemoteTypeOnsite, domain.RemotePreferenceOnsite, false}:     20,
	{domain.RemoteTypeOnsite, domain.RemotePreferenceFlexible, false}:   30,
	{domain.RemoteTypeOnsite, "", false}:                                25,
}

// LocationScorer compares where the job is with where the profile wants to work.
type LocationScorer struct{}

// Factor implements FactorScorer.
func (LocationScorer) Factor() domain.Factor { return domain.FactorLocation }

// Score implements FactorScorer. Fully remote jobs always score 100.
func (LocationScorer) Score(in Input) FactorResult {
	if IsRemote(in.Job) {
		return scored(100, "remote job")
	}
	jobLoc := normalizeLocation(in.Job.Location)
	prefs := in.Profile.Preferences
	if jobLoc == "" || len(prefs.Locations) == 0 {
		return insufficient(Neutral, "job location or preferred locations missing")
	}

	jobType := domain.RemoteTypeOnsite
	if in.Job.RemoteType == domain.RemoteTypeHybrid {
		jobType = domain.RemoteTypeHybrid
	}
	pref := prefs.RemoteWork
	switch pref {
	case domain.RemotePreferenceRemoteOnly, domain.RemotePreferenceHybrid, domain.RemotePreferenceOnsite, domain.RemotePreferenceFlexible:
	default:
		pref = ""
	}

	matched := false
	for _, p := range prefs.Locations {
		if locationsMatch(jobLoc, normalizeLocation(p)) {
			matched = true
			break
		}
	}

	reason := string(jobType) + " job outside preferred locations"
	if matched {
		reason = string(jobType) + " job in a preferred location"
	}
	return scored(locationTable[locationKey{job: jobType, pref: pref, matched: matched}], reason)
}

// IsRemote reports whether a job is fully remote by category or by its location text.
func IsRemote(job domain.Job) bool {
	if job.RemoteType == domain.RemoteTypeRemote {
		return true
	}
	return job.RemoteType == "" && strings.Contains(normalizeLocation(job.Location), "remote")
}

func normalizeLocation(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// locationsMatch accepts substring matches either way, or a shared comma-separated part
// such as the region in "Berlin, Germany" and "Munich, Germany".
func locationsMatch(job, pref string) bool {
	if pref == "" {
		return false
	}
	if strings.Contains(job, pref) || strings.Contains(pref, job) {
		return true
	}
	parts := make(map[string]struct{})
	for _, p := range strings.Split(pref, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts[p] = struct{}{}
		}
	}
	for _, p := range strings.Split(job, ",") {
		if _, ok := parts[strings.TrimSpace(p)]; ok {
			return true
		}
	}
	return false
}
