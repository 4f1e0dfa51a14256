package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/job-matcher/internal/domain"
)

// GoalRepo loads career goals.
type GoalRepo struct{ Pool PgxPool }

// NewGoalRepo constructs a GoalRepo with the given pool.
func NewGoalRepo(p PgxPool) *GoalRepo { return &GoalRepo{Pool: p} }

// Get loads a career goal by id.
func (r *GoalRepo) Get(ctx domain.Context, id string) (domain.CareerGoal, error) {
	tracer := otel.Tracer("repo.goals")
	ctx, span := tracer.Start(ctx, "goals.Get")
	defer span.End()

	q := `SELECT id, user_id, target_role, target_industry, description, required_skills FROM career_goals WHERE id=$1`
	var g domain.CareerGoal
	var skills []byte
	if err := r.Pool.QueryRow(ctx, q, id).Scan(&g.ID, &g.UserID, &g.TargetRole, &g.TargetIndustry, &g.Description, &skills); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.CareerGoal{}, fmt.Errorf("op=goal.get: %w", domain.ErrNotFound)
		}
		return domain.CareerGoal{}, fmt.Errorf("op=goal.get: %w", err)
	}
	if err := decodeJSON(skills, &g.RequiredSkills); err != nil {
		return domain.CareerGoal{}, fmt.Errorf("op=goal.get: required skills: %w", err)
	}
	return g, nil
}
