package usecase

import (
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/job-matcher/internal/adapter/observability"
	"github.com/fairyhunter13/job-matcher/internal/domain"
	"github.com/fairyhunter13/job-matcher/internal/gap"
)

// GapService compares a stored profile with one of the user's career goals.
type GapService struct {
	Profiles domain.ProfileRepository
	Goals    domain.CareerGoalRepository
	Analyzer *gap.Analyzer
}

// NewGapService constructs a GapService with its dependencies.
func NewGapService(p domain.ProfileRepository, g domain.CareerGoalRepository, a *gap.Analyzer) GapService {
	return GapService{Profiles: p, Goals: g, Analyzer: a}
}

// Analyze returns the skill gaps between the user's profile and goalID.
// A goal owned by another user is reported as domain.ErrNotFound.
func (s GapService) Analyze(ctx domain.Context, userID, goalID string) (gap.Report, error) {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "GapService.Analyze")
	defer span.End()

	userID, goalID = strings.TrimSpace(userID), strings.TrimSpace(goalID)
	if userID == "" || goalID == "" {
		return gap.Report{}, fmt.Errorf("op=gap.Analyze: %w: user_id and goal_id required", domain.ErrValidationFailed)
	}
	goal, err := s.Goals.Get(ctx, goalID)
	if err != nil {
		span.RecordError(err)
		return gap.Report{}, fmt.Errorf("op=gap.Analyze: %w", err)
	}
	if goal.UserID != userID {
		return gap.Report{}, fmt.Errorf("op=gap.Analyze: %w: career goal %s", domain.ErrNotFound, goalID)
	}
	profile, err := s.Profiles.Get(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return gap.Report{}, fmt.Errorf("op=gap.Analyze: %w", err)
	}

	report := s.Analyzer.Analyze(profile, goal)
	span.SetAttributes(
		attribute.Int("gap.count", len(report.Gaps)),
		attribute.Int("gap.match_percentage", report.MatchPercentage),
	)
	observability.LoggerFromContext(ctx).Info("skill gaps analyzed",
		slog.String("user_id", userID),
		slog.String("goal_id", goalID),
		slog.Int("gaps", len(report.Gaps)),
		slog.Int("match_percentage", report.MatchPercentage))
	return report, nil
}
