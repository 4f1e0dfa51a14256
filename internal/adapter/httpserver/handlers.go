package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fairyhunter13/job-matcher/internal/adapter/observability"
	"github.com/fairyhunter13/job-matcher/internal/domain"
	"github.com/fairyhunter13/job-matcher/internal/gap"
	"github.com/fairyhunter13/job-matcher/internal/usecase"
)

// maxBodyBytes bounds request bodies; a batch of 100 inline-profile matches fits comfortably.
const maxBodyBytes = 1 << 20

// Matcher is the matching service surface used by the handlers.
type Matcher interface {
	Recommend(ctx domain.Context, req usecase.RecommendRequest) (usecase.RecommendResult, error)
	AnalyzeBatch(ctx domain.Context, req usecase.BatchRequest) (usecase.BatchResult, error)
}

// GapAnalyzer compares a stored profile with one of its career goals.
type GapAnalyzer interface {
	Analyze(ctx domain.Context, userID, goalID string) (gap.Report, error)
}

// Check reports the health of one dependency.
type Check func(ctx domain.Context) error

// Server holds the handlers' dependencies.
type Server struct {
	Matcher Matcher
	Gaps    GapAnalyzer
	// Checks are run by ReadyzHandler, keyed by dependency name.
	Checks map[string]Check
}

// NewServer constructs a Server.
func NewServer(m Matcher, g GapAnalyzer, checks map[string]Check) *Server {
	return &Server{Matcher: m, Gaps: g, Checks: checks}
}

type recommendResponse struct {
	Matches        []domain.MatchScore `json:"matches"`
	Count          int                 `json:"count"`
	Degraded       bool                `json:"degraded"`
	DegradedReason string              `json:"degraded_reason,omitempty"`
	Partial        bool                `json:"partial"`
	Skipped        []usecase.Skipped   `json:"skipped"`
}

type batchResponse struct {
	Matches []domain.MatchScore `json:"matches"`
	Count   int                 `json:"count"`
	Partial bool                `json:"partial"`
	Skipped []usecase.Skipped   `json:"skipped"`
}

// RecommendHandler handles POST /v1/recommendations.
func (s *Server) RecommendHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req usecase.RecommendRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		if req.UserID != "" {
			if err := validateID("user_id", req.UserID); err != nil {
				writeError(w, r, err, nil)
				return
			}
		}
		res, err := s.Matcher.Recommend(r.Context(), req)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		if res.Degraded {
			w.Header().Set("X-Degraded", res.DegradedReason)
		}
		if res.Partial {
			w.Header().Set("X-Partial-Result", "true")
		}
		observability.LoggerFromContext(r.Context()).Debug("recommendations served",
			slog.Int("count", len(res.Matches)),
			slog.Any("filter_steps", res.Steps))
		writeJSON(w, http.StatusOK, recommendResponse{
			Matches:        nonNil(res.Matches),
			Count:          len(res.Matches),
			Degraded:       res.Degraded,
			DegradedReason: res.DegradedReason,
			Partial:        res.Partial,
			Skipped:        nonNil(res.Skipped),
		})
	}
}

// BatchHandler handles POST /v1/matches/batch.
func (s *Server) BatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req usecase.BatchRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		if req.UserID != "" {
			if err := validateID("user_id", req.UserID); err != nil {
				writeError(w, r, err, nil)
				return
			}
		}
		for i, id := range req.JobIDs {
			if err := validateID(fmt.Sprintf("job_ids[%d]", i), id); err != nil {
				writeError(w, r, err, nil)
				return
			}
		}
		res, err := s.Matcher.AnalyzeBatch(r.Context(), req)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		if res.Partial {
			w.Header().Set("X-Partial-Result", "true")
		}
		writeJSON(w, http.StatusOK, batchResponse{
			Matches: nonNil(res.Matches),
			Count:   len(res.Matches),
			Partial: res.Partial,
			Skipped: nonNil(res.Skipped),
		})
	}
}

// GapHandler handles GET /v1/users/{userID}/career-goals/{goalID}/gaps.
func (s *Server) GapHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")
		goalID := chi.URLParam(r, "goalID")
		for _, p := range [][2]string{{"user_id", userID}, {"goal_id", goalID}} {
			if err := validateID(p[0], p[1]); err != nil {
				writeError(w, r, err, nil)
				return
			}
		}
		report, err := s.Gaps.Analyze(r.Context(), userID, goalID)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

// ReadyzHandler runs every dependency check and answers 503 if any fails.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results := make(map[string]string, len(s.Checks))
		ready := true
		for name, check := range s.Checks {
			if check == nil {
				continue
			}
			if err := check(r.Context()); err != nil {
				ready = false
				results[name] = "unavailable"
				observability.LoggerFromContext(r.Context()).Warn("readiness check failed",
					slog.String("dependency", name),
					slog.Any("error", err))
				continue
			}
			results[name] = "ok"
		}
		status, body := http.StatusOK, "ready"
		if !ready {
			status, body = http.StatusServiceUnavailable, "not_ready"
		}
		writeJSON(w, status, map[string]any{"status": body, "checks": results})
	}
}

// decodeJSON reads a single JSON object from a bounded body.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil || mt != "application/json" {
			return fmt.Errorf("%w: content type must be application/json", domain.ErrInvalidArgument)
		}
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return fmt.Errorf("%w: body exceeds %d bytes", domain.ErrInvalidArgument, maxErr.Limit)
		case errors.Is(err, io.EOF):
			return fmt.Errorf("%w: empty body", domain.ErrInvalidArgument)
		default:
			return fmt.Errorf("%w: malformed json: %v", domain.ErrInvalidArgument, err)
		}
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after json object", domain.ErrInvalidArgument)
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
