package retrieval

import (
	"sort"
	"strings"

	"github.com/fairyhunter13/job-matcher/internal/domain"
)

// QueryText renders the parts of a profile that describe the jobs it wants.
// Skills are listed strongest first so truncation drops the weakest signal.
func QueryText(p domain.Profile) string {
	var b strings.Builder
	write := func(label string, items []string) {
		if len(items) == 0 {
			return
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(strings.Join(items, ", "))
	}

	if g := p.CareerGoal; g != nil {
		write("Target role", nonEmpty(g.TargetRole))
		write("Target industry", nonEmpty(g.TargetIndustry))
	}

	sk := make([]domain.ProfileSkill, 0, len(p.Skills))
	for _, s := range p.Skills {
		if strings.TrimSpace(s.Name) != "" {
			sk = append(sk, s)
		}
	}
	sort.SliceStable(sk, func(i, j int) bool { return sk[i].Level > sk[j].Level })
	names := make([]string, len(sk))
	for i, s := range sk {
		names[i] = strings.TrimSpace(s.Name)
	}
	write("Skills", names)

	titles := make([]string, 0, len(p.Experience))
	for _, e := range p.Experience {
		titles = append(titles, nonEmpty(e.Title)...)
	}
	write("Experience", titles)
	write("Industries", p.Preferences.Industries)
	return b.String()
}

// JobText renders the indexed representation of a job.
func JobText(j domain.Job) string {
	parts := make([]string, 0, 4)
	for _, s := range []string{j.Title, j.Industry, j.Description, j.Requirements} {
		parts = append(parts, nonEmpty(s)...)
	}
	return strings.Join(parts, "\n")
}

func nonEmpty(s string) []string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return []string{s}
}
