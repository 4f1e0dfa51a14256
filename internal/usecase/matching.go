// Package usecase contains the matching and gap-analysis application services.
package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/job-matcher/internal/adapter/observability"
	"github.com/fairyhunter13/job-matcher/internal/domain"
	"github.com/fairyhunter13/job-matcher/internal/retrieval"
	"github.com/fairyhunter13/job-matcher/internal/scoring"
)

// Candidate modes reported in metrics.
const (
	modeSemantic = "semantic"
	modeDegraded = "degraded"
	modeExplicit = "explicit"
)

// Skip reasons.
const (
	SkipNotFound     = "not_found"
	SkipFetchTimeout = "fetch_timeout"
	SkipFetchFailed  = "fetch_failed"
)

// Retriever yields semantically ranked candidates for a profile.
type Retriever interface {
	Retrieve(ctx domain.Context, p domain.Profile, topN int) ([]retrieval.Candidate, error)
}

// MatchOptions bounds the work done per request.
type MatchOptions struct {
	Deadline         time.Duration
	FetchTimeout     time.Duration
	TopNMultiplier   int
	TopNMax          int
	FallbackPoolSize int
	MaxBatch         int
	Workers          int
	CacheTTL         time.Duration
}

// DefaultMatchOptions returns the limits used when a field is left zero.
func DefaultMatchOptions() MatchOptions {
	return MatchOptions{
		Deadline:         3 * time.Second,
		FetchTimeout:     500 * time.Millisecond,
		TopNMultiplier:   5,
		TopNMax:          200,
		FallbackPoolSize: 200,
		MaxBatch:         100,
		Workers:          runtime.GOMAXPROCS(0),
		CacheTTL:         15 * time.Minute,
	}
}

func (o MatchOptions) withDefaults() MatchOptions {
	d := DefaultMatchOptions()
	if o.Deadline <= 0 {
		o.Deadline = d.Deadline
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = d.FetchTimeout
	}
	if o.TopNMultiplier <= 0 {
		o.TopNMultiplier = d.TopNMultiplier
	}
	if o.TopNMax <= 0 {
		o.TopNMax = d.TopNMax
	}
	if o.FallbackPoolSize <= 0 {
		o.FallbackPoolSize = d.FallbackPoolSize
	}
	if o.MaxBatch <= 0 {
		o.MaxBatch = d.MaxBatch
	}
	if o.Workers <= 0 {
		o.Workers = d.Workers
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = d.CacheTTL
	}
	return o
}

// topN asks the retriever for several multiples of limit so filtering still leaves enough results.
func (o MatchOptions) topN(limit int) int {
	n := limit * o.TopNMultiplier
	if n > o.TopNMax {
		n = o.TopNMax
	}
	if n < limit {
		n = limit
	}
	return n
}

// Skipped reports a candidate that could not be scored.
type Skipped struct {
	JobID  string `json:"job_id"`
	Reason string `json:"reason"`
}

// RecommendRequest identifies the profile by UserID or carries it inline. Exactly one must be set.
type RecommendRequest struct {
	UserID  string          `json:"user_id,omitempty"`
	Profile *domain.Profile `json:"profile,omitempty"`
	Filters Filters         `json:"filters"`
}

// RecommendResult is the ranked outcome of Recommend.
type RecommendResult struct {
	Matches        []domain.MatchScore `json:"matches"`
	Degraded       bool                `json:"degraded"`
	DegradedReason string              `json:"degraded_reason,omitempty"`
	Partial        bool                `json:"partial"`
	Skipped        []Skipped           `json:"skipped"`
	Steps          []FilterStep        `json:"-"`
}

// Err returns domain.ErrPartialResult when the deadline cut scoring short.
func (r RecommendResult) Err() error {
	if r.Partial {
		return domain.ErrPartialResult
	}
	return nil
}

// BatchRequest scores an explicit list of jobs.
type BatchRequest struct {
	UserID  string          `json:"user_id,omitempty"`
	Profile *domain.Profile `json:"profile,omitempty"`
	JobIDs  []string        `json:"job_ids"`
}

// BatchResult holds one score per scored job, in request order.
type BatchResult struct {
	Matches []domain.MatchScore `json:"matches"`
	Partial bool                `json:"partial"`
	Skipped []Skipped           `json:"skipped"`
}

// Err returns domain.ErrPartialResult when the deadline cut scoring short.
func (r BatchResult) Err() error {
	if r.Partial {
		return domain.ErrPartialResult
	}
	return nil
}

// MatchingService retrieves candidate jobs, scores them and ranks the result.
type MatchingService struct {
	Profiles  domain.ProfileRepository
	Jobs      domain.JobRepository
	Pool      domain.CandidatePool
	Retriever Retriever
	Engine    *scoring.Engine
	// Cache is optional; lookups fail open.
	Cache   domain.MatchCache
	Options MatchOptions

	now func() time.Time
}

// NewMatchingService constructs a MatchingService with its dependencies.
func NewMatchingService(profiles domain.ProfileRepository, jobs domain.JobRepository, pool domain.CandidatePool, r Retriever, engine *scoring.Engine, cache domain.MatchCache, opts MatchOptions) MatchingService {
	return MatchingService{
		Profiles:  profiles,
		Jobs:      jobs,
		Pool:      pool,
		Retriever: r,
		Engine:    engine,
		Cache:     cache,
		Options:   opts.withDefaults(),
		now:       time.Now,
	}
}

// Recommend returns the best matching jobs for a profile, best first.
// A retrieval failure switches to the recent-jobs pool and sets Degraded.
func (s MatchingService) Recommend(ctx domain.Context, req RecommendRequest) (RecommendResult, error) {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "MatchingService.Recommend")
	defer span.End()

	if err := req.Filters.Validate(); err != nil {
		span.RecordError(err)
		return RecommendResult{}, fmt.Errorf("op=matching.Recommend: %w", err)
	}
	opts := s.Options.withDefaults()
	ctx, cancel := context.WithTimeout(ctx, opts.Deadline)
	defer cancel()

	profile, cacheable, err := s.resolveProfile(ctx, req.UserID, req.Profile)
	if err != nil {
		span.RecordError(err)
		return RecommendResult{}, fmt.Errorf("op=matching.Recommend: %w", err)
	}
	lg := observability.LoggerFromContext(ctx).With(slog.String("user_id", profile.ID))
	limit := req.Filters.limit()
	res := RecommendResult{Matches: []domain.MatchScore{}, Skipped: []Skipped{}}

	cands, err := s.retrieve(ctx, profile, opts.topN(limit))
	mode := modeSemantic
	if err != nil {
		reason := degradedReason(err)
		lg.Warn("candidate retrieval unavailable; scoring recent jobs",
			slog.String("reason", reason),
			slog.Any("error", err))
		res.Degraded, res.DegradedReason, mode = true, reason, modeDegraded
		cands, err = s.fallback(ctx, opts)
		if err != nil {
			if ctx.Err() != nil {
				// the deadline expired before anything could be scored
				res.Partial = true
				observability.RecordMatchRequest("recommend", mode)
				observability.RecordPartialResult()
				return res, nil
			}
			span.RecordError(err)
			return RecommendResult{}, fmt.Errorf("op=matching.Recommend: %w", err)
		}
	}
	observability.RecordMatchRequest("recommend", mode)

	batch := s.scoreAll(ctx, profile, cacheable, cands, opts)
	items, steps := applyFilters(ctx, batch.items, buildFilters(req.Filters))
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].score.OverallScore != items[j].score.OverallScore {
			return items[i].score.OverallScore > items[j].score.OverallScore
		}
		return items[i].rank < items[j].rank
	})
	if len(items) > limit {
		items = items[:limit]
	}
	for _, it := range items {
		res.Matches = append(res.Matches, it.score)
	}
	res.Partial = batch.partial
	res.Skipped = batch.skipped
	res.Steps = steps

	span.SetAttributes(
		attribute.String("match.mode", mode),
		attribute.Int("match.candidates", len(cands)),
		attribute.Int("match.returned", len(res.Matches)),
		attribute.Bool("match.partial", res.Partial),
	)
	lg.Info("recommendations computed",
		slog.String("mode", mode),
		slog.Int("candidates", len(cands)),
		slog.Int("scored", len(batch.items)),
		slog.Int("skipped", len(res.Skipped)),
		slog.Int("returned", len(res.Matches)),
		slog.Bool("partial", res.Partial))
	return res, nil
}

// AnalyzeBatch scores the given jobs without consulting the vector index.
// Duplicate ids are scored once; results keep request order.
func (s MatchingService) AnalyzeBatch(ctx domain.Context, req BatchRequest) (BatchResult, error) {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "MatchingService.AnalyzeBatch")
	defer span.End()

	opts := s.Options.withDefaults()
	ids := dedupeIDs(req.JobIDs)
	if len(ids) == 0 {
		return BatchResult{}, fmt.Errorf("op=matching.AnalyzeBatch: %w: job_ids required", domain.ErrValidationFailed)
	}
	if len(ids) > opts.MaxBatch {
		return BatchResult{}, fmt.Errorf("op=matching.AnalyzeBatch: %w: at most %d job_ids", domain.ErrValidationFailed, opts.MaxBatch)
	}
	ctx, cancel := context.WithTimeout(ctx, opts.Deadline)
	defer cancel()

	profile, cacheable, err := s.resolveProfile(ctx, req.UserID, req.Profile)
	if err != nil {
		span.RecordError(err)
		return BatchResult{}, fmt.Errorf("op=matching.AnalyzeBatch: %w", err)
	}
	observability.RecordMatchRequest("analyze_batch", modeExplicit)

	batch := s.scoreAll(ctx, profile, cacheable, rankIDs(ids), opts)
	res := BatchResult{Matches: make([]domain.MatchScore, 0, len(batch.items)), Partial: batch.partial, Skipped: batch.skipped}
	for _, it := range batch.items {
		res.Matches = append(res.Matches, it.score)
	}
	span.SetAttributes(attribute.Int("match.requested", len(ids)), attribute.Bool("match.partial", res.Partial))
	observability.LoggerFromContext(ctx).Info("batch scored",
		slog.String("user_id", profile.ID),
		slog.Int("requested", len(ids)),
		slog.Int("scored", len(res.Matches)),
		slog.Int("skipped", len(res.Skipped)),
		slog.Bool("partial", res.Partial))
	return res, nil
}

// resolveProfile loads the profile by id or takes the inline one. Only stored
// profiles are cacheable since inline ones carry no trustworthy version.
func (s MatchingService) resolveProfile(ctx domain.Context, userID string, inline *domain.Profile) (domain.Profile, bool, error) {
	userID = strings.TrimSpace(userID)
	switch {
	case userID != "" && inline != nil:
		return domain.Profile{}, false, fmt.Errorf("%w: user_id and profile are mutually exclusive", domain.ErrValidationFailed)
	case inline != nil:
		return *inline, false, nil
	case userID == "":
		return domain.Profile{}, false, fmt.Errorf("%w: user_id or profile required", domain.ErrValidationFailed)
	case s.Profiles == nil:
		return domain.Profile{}, false, fmt.Errorf("%w: profile repository not configured", domain.ErrInternal)
	}
	fctx, cancel := context.WithTimeout(ctx, s.Options.withDefaults().FetchTimeout)
	defer cancel()
	p, err := s.Profiles.Get(fctx, userID)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, domain.ErrUpstreamTimeout) {
			err = fmt.Errorf("%w: %w", domain.ErrUpstreamTimeout, err)
		}
		return domain.Profile{}, false, err
	}
	if p.ID == "" {
		p.ID = userID
	}
	return p, true, nil
}

func (s MatchingService) retrieve(ctx domain.Context, p domain.Profile, topN int) ([]retrieval.Candidate, error) {
	if s.Retriever == nil {
		return nil, fmt.Errorf("%w: retriever not configured", domain.ErrRetrievalUnavailable)
	}
	return s.Retriever.Retrieve(ctx, p, topN)
}

// fallback ranks the externally supplied recent-jobs pool in the order given.
func (s MatchingService) fallback(ctx domain.Context, opts MatchOptions) ([]retrieval.Candidate, error) {
	if s.Pool == nil {
		return nil, fmt.Errorf("%w: no fallback candidate pool", domain.ErrRetrievalUnavailable)
	}
	ids, err := s.Pool.RecentJobIDs(ctx, opts.FallbackPoolSize)
	if err != nil {
		return nil, fmt.Errorf("op=matching.fallback: %w: %w", domain.ErrRetrievalUnavailable, err)
	}
	return rankIDs(dedupeIDs(ids)), nil
}

func degradedReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrIndexNotInitialized):
		return "index_not_initialized"
	case errors.Is(err, observability.ErrCircuitOpen):
		return "circuit_open"
	case errors.Is(err, domain.ErrUpstreamTimeout), errors.Is(err, context.DeadlineExceeded):
		return "retrieval_timeout"
	default:
		return "retrieval_unavailable"
	}
}

type slot struct {
	done bool
	item scoredJob
	skip *Skipped
}

type batchOutcome struct {
	items   []scoredJob
	skipped []Skipped
	partial bool
}

// scoreAll fetches and scores candidates on a bounded pool. Slots the deadline
// prevented from finishing make the outcome partial; order follows cands.
func (s MatchingService) scoreAll(ctx domain.Context, p domain.Profile, cacheable bool, cands []retrieval.Candidate, opts MatchOptions) batchOutcome {
	out := batchOutcome{items: []scoredJob{}, skipped: []Skipped{}}
	if len(cands) == 0 {
		return out
	}
	slots := make([]slot, len(cands))
	pool := NewWorkerPool(min(opts.Workers, len(cands)), len(cands))
	for i := range cands {
		pool.Submit(func(ctx context.Context) error {
			slots[i] = s.scoreOne(ctx, p, cacheable, cands[i], opts)
			return nil
		})
	}
	pool.Close()
	for range pool.Run(ctx) {
	}

	unfinished := 0
	for _, sl := range slots {
		switch {
		case !sl.done:
			unfinished++
		case sl.skip != nil:
			out.skipped = append(out.skipped, *sl.skip)
		default:
			out.items = append(out.items, sl.item)
		}
	}
	out.partial = unfinished > 0
	observability.RecordCandidates(len(out.items), len(out.skipped))
	if out.partial {
		observability.RecordPartialResult()
		observability.LoggerFromContext(ctx).Warn("match deadline reached; returning partial results",
			slog.Int("unfinished", unfinished),
			slog.Int("scored", len(out.items)))
	}
	return out
}

func (s MatchingService) scoreOne(ctx domain.Context, p domain.Profile, cacheable bool, c retrieval.Candidate, opts MatchOptions) slot {
	if ctx.Err() != nil {
		return slot{}
	}
	fctx, cancel := context.WithTimeout(ctx, opts.FetchTimeout)
	job, err := s.Jobs.Get(fctx, c.JobID)
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			return slot{}
		}
		reason := SkipFetchFailed
		switch {
		case errors.Is(err, domain.ErrNotFound):
			reason = SkipNotFound
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, domain.ErrUpstreamTimeout):
			reason = SkipFetchTimeout
		}
		observability.LoggerFromContext(ctx).Debug("candidate skipped",
			slog.String("job_id", c.JobID),
			slog.String("reason", reason),
			slog.Any("error", err))
		return slot{done: true, skip: &Skipped{JobID: c.JobID, Reason: reason}}
	}
	if job.ID == "" {
		job.ID = c.JobID
	}
	ms := s.score(ctx, p, cacheable, job, opts)
	ms.Similarity = c.Similarity
	return slot{done: true, item: scoredJob{score: ms, job: job, rank: c.Rank}}
}

// score consults the cache before running the engine. Cache failures only cost a recompute.
func (s MatchingService) score(ctx domain.Context, p domain.Profile, cacheable bool, j domain.Job, opts MatchOptions) domain.MatchScore {
	asOf := s.asOf()
	key := ""
	if cacheable && s.Cache != nil {
		key = s.cacheKey(p, j, asOf)
		ms, ok, err := s.Cache.Get(ctx, key)
		switch {
		case err != nil:
			observability.RecordCacheLookup("error")
			observability.LoggerFromContext(ctx).Debug("match cache get failed", slog.Any("error", err))
		case ok:
			observability.RecordCacheLookup("hit")
			return ms
		default:
			observability.RecordCacheLookup("miss")
		}
	}
	ms := s.Engine.Score(scoring.Input{Profile: p, Job: j, AsOf: asOf})
	observability.ObserveMatchScore(ms.OverallScore)
	if key != "" {
		if err := s.Cache.Set(ctx, key, ms, opts.CacheTTL); err != nil {
			observability.LoggerFromContext(ctx).Debug("match cache set failed", slog.Any("error", err))
		}
	}
	return ms
}

// asOf is the reference date for open-ended experience. It is truncated to the
// day so scores, and cache keys, are stable within a day.
func (s MatchingService) asOf() time.Time {
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	return now().UTC().Truncate(24 * time.Hour)
}

// cacheKey covers every input Score depends on.
func (s MatchingService) cacheKey(p domain.Profile, j domain.Job, asOf time.Time) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%d|%d|%s|%s", p.Version, j.UpdatedAt.UnixNano(), s.Engine.Fingerprint(), asOf.Format(time.DateOnly))))
	return "match:" + p.ID + ":" + j.ID + ":" + hex.EncodeToString(h[:8])
}

func dedupeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func rankIDs(ids []string) []retrieval.Candidate {
	out := make([]retrieval.Candidate, len(ids))
	for i, id := range ids {
		out[i] = retrieval.Candidate{JobID: id, Rank: i + 1}
	}
	return out
}
