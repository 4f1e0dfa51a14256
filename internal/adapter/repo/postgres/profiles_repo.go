package postgres

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/job-matcher/internal/domain"
)

// ProfileRepo loads profile snapshots together with their active career goal.
type ProfileRepo struct{ Pool PgxPool }

// NewProfileRepo constructs a ProfileRepo with the given pool.
func NewProfileRepo(p PgxPool) *ProfileRepo { return &ProfileRepo{Pool: p} }

const selectProfile = `SELECT p.id, p.version, p.skills, p.experience, p.education, p.preferences,
	COALESCE(g.id, ''), COALESCE(g.user_id, ''), COALESCE(g.target_role, ''), COALESCE(g.target_industry, ''),
	COALESCE(g.description, ''), COALESCE(g.required_skills, '[]'::jsonb)
	FROM profiles p LEFT JOIN career_goals g ON g.id = p.career_goal_id
	WHERE p.id=$1`

// Get loads a profile by id.
func (r *ProfileRepo) Get(ctx domain.Context, id string) (domain.Profile, error) {
	tracer := otel.Tracer("repo.profiles")
	ctx, span := tracer.Start(ctx, "profiles.Get")
	defer span.End()
	span.SetAttributes(attribute.String("profile.id", id))

	var p domain.Profile
	var goal domain.CareerGoal
	var skills, experience, education, prefs, goalSkills []byte
	row := r.Pool.QueryRow(ctx, selectProfile, id)
	err := row.Scan(&p.ID, &p.Version, &skills, &experience, &education, &prefs,
		&goal.ID, &goal.UserID, &goal.TargetRole, &goal.TargetIndustry, &goal.Description, &goalSkills)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Profile{}, fmt.Errorf("op=profile.get: %w", domain.ErrNotFound)
		}
		return domain.Profile{}, fmt.Errorf("op=profile.get: %w", err)
	}
	if err := decodeJSON(skills, &p.Skills); err != nil {
		return domain.Profile{}, fmt.Errorf("op=profile.get: skills: %w", err)
	}
	if err := decodeJSON(experience, &p.Experience); err != nil {
		return domain.Profile{}, fmt.Errorf("op=profile.get: experience: %w", err)
	}
	if err := decodeJSON(education, &p.Education); err != nil {
		return domain.Profile{}, fmt.Errorf("op=profile.get: education: %w", err)
	}
	if err := decodeJSON(prefs, &p.Preferences); err != nil {
		return domain.Profile{}, fmt.Errorf("op=profile.get: preferences: %w", err)
	}
	if goal.ID != "" {
		if err := decodeJSON(goalSkills, &goal.RequiredSkills); err != nil {
			return domain.Profile{}, fmt.Errorf("op=profile.get: career goal: %w", err)
		}
		p.CareerGoal = &goal
	}
	return p, nil
}

// decodeJSON treats an empty column as the zero value.
func decodeJSON(b []byte, v any) error {
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, v)
}
