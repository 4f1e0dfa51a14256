// Command server starts the job matching HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/job-matcher/internal/adapter/ai/tokencount"
	rediscache "github.com/fairyhunter13/job-matcher/internal/adapter/cache/redis"
	"github.com/fairyhunter13/job-matcher/internal/adapter/httpserver"
	"github.com/fairyhunter13/job-matcher/internal/adapter/observability"
	"github.com/fairyhunter13/job-matcher/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/job-matcher/internal/adapter/vector/qdrant"
	"github.com/fairyhunter13/job-matcher/internal/app"
	"github.com/fairyhunter13/job-matcher/internal/config"
	"github.com/fairyhunter13/job-matcher/internal/domain"
	"github.com/fairyhunter13/job-matcher/internal/gap"
	"github.com/fairyhunter13/job-matcher/internal/retrieval"
	"github.com/fairyhunter13/job-matcher/internal/scoring"
	"github.com/fairyhunter13/job-matcher/internal/skills"
	"github.com/fairyhunter13/job-matcher/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Skill taxonomy, hot-reloaded on SIGHUP
	tax, err := config.LoadSkillTaxonomy(cfg.SkillTaxonomyPath)
	if err != nil {
		slog.Error("skill taxonomy load failed", slog.Any("error", err))
		os.Exit(1)
	}
	extractor := skills.NewExtractor(tax)
	go app.WatchTaxonomy(ctx, cfg.SkillTaxonomyPath, extractor)

	// Infra: DB pool
	pool, err := postgres.NewPool(ctx, cfg.DBURL)
	if err != nil {
		slog.Error("db connect failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		slog.Error("db migrate failed", slog.Any("error", err))
		os.Exit(1)
	}
	profiles := postgres.NewProfileRepo(pool)
	jobs := postgres.NewJobRepo(pool)
	goals := postgres.NewGoalRepo(pool)

	// Redis backs the score cache and the shared embedding rate limit; both are optional.
	var (
		rdb        goredis.UniversalClient
		matchCache domain.MatchCache
	)
	if client, err := rediscache.NewClient(cfg.RedisURL); err != nil {
		slog.Warn("redis disabled; scoring without cache", slog.Any("error", err))
	} else {
		defer func() { _ = client.Close() }()
		rdb = client
		matchCache = rediscache.NewMatchCache(client, "match:")
	}

	embedder := app.NewEmbedder(cfg, rdb)

	// Vector index behind a circuit breaker; failures degrade to the recent-jobs pool.
	qcli := qdrant.New(cfg.QdrantURL, cfg.QdrantAPIKey)
	index := qdrant.NewIndex(qcli, cfg.QdrantCollection)
	if err := index.Ensure(ctx, cfg.VectorSize); err != nil {
		slog.Warn("vector index not ready; recommendations will be degraded", slog.Any("error", err))
	}
	breaker := observability.NewCircuitBreaker("qdrant", cfg.BreakerMaxFailures, cfg.BreakerOpenTimeout)
	retriever := retrieval.New(index, embedder,
		retrieval.WithBreaker(breaker),
		retrieval.WithTruncator(tokencount.NewTruncator(cfg.EmbeddingsModel, cfg.EmbeddingsMaxTokens)),
		retrieval.WithTimeout(cfg.MatchRetrievalTimeout),
	)

	agg, err := scoring.NewAggregator(cfg.MatchWeights())
	if err != nil {
		slog.Error("invalid scoring weights", slog.Any("error", err))
		os.Exit(1)
	}
	engine := scoring.NewEngine(extractor, agg)

	// Usecases
	matchSvc := usecase.NewMatchingService(profiles, jobs, jobs, retriever, engine, matchCache, usecase.MatchOptions{
		Deadline:         cfg.MatchDeadline,
		FetchTimeout:     cfg.MatchFetchTimeout,
		TopNMultiplier:   cfg.MatchTopNMultiplier,
		TopNMax:          cfg.MatchTopNMax,
		FallbackPoolSize: cfg.FallbackPoolSize,
		MaxBatch:         cfg.MatchMaxBatch,
		Workers:          cfg.MatchWorkers,
		CacheTTL:         cfg.MatchCacheTTL,
	})
	gapSvc := usecase.NewGapService(profiles, goals, gap.NewAnalyzer(extractor))

	checks := app.BuildReadinessChecks(pool, app.RedisPinger(rdb), qcli)
	srv := httpserver.NewServer(matchSvc, gapSvc, checks)
	handler := app.BuildRouter(cfg, srv)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port), slog.String("taxonomy", extractor.Version()))
		errCh <- srvHTTP.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
}
