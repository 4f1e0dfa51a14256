// Command indexer consumes job events and keeps the vector index in sync with
// the jobs table. With -seed it first loads postings from a YAML file.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/job-matcher/internal/adapter/ai/tokencount"
	rediscache "github.com/fairyhunter13/job-matcher/internal/adapter/cache/redis"
	"github.com/fairyhunter13/job-matcher/internal/adapter/observability"
	"github.com/fairyhunter13/job-matcher/internal/adapter/queue/redpanda"
	"github.com/fairyhunter13/job-matcher/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/job-matcher/internal/adapter/vector/qdrant"
	"github.com/fairyhunter13/job-matcher/internal/app"
	"github.com/fairyhunter13/job-matcher/internal/config"
	"github.com/fairyhunter13/job-matcher/internal/usecase"
)

const metricsAddr = ":9090"

func main() {
	seedPath := flag.String("seed", "", "YAML file of job postings to upsert and publish before consuming")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// The indexer has no API; expose /metrics on its own port.
	observability.InitMetrics()
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("indexer metrics server error", slog.Any("error", err))
		}
	}()

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

	slog.Info("starting indexer", slog.String("env", cfg.AppEnv), slog.String("topic", cfg.JobsTopic))

	pool, err := postgres.NewPool(ctx, cfg.DBURL)
	if err != nil {
		slog.Error("database connection failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		slog.Error("db migrate failed", slog.Any("error", err))
		os.Exit(1)
	}
	jobs := postgres.NewJobRepo(pool)

	var rdb goredis.UniversalClient
	if client, err := rediscache.NewClient(cfg.RedisURL); err != nil {
		slog.Warn("redis disabled; embedding rate limit off", slog.Any("error", err))
	} else {
		defer func() { _ = client.Close() }()
		rdb = client
	}
	embedder := app.NewEmbedder(cfg, rdb)

	index := qdrant.NewIndex(qdrant.New(cfg.QdrantURL, cfg.QdrantAPIKey), cfg.QdrantCollection)
	if err := index.Ensure(ctx, cfg.VectorSize); err != nil {
		slog.Error("vector index bootstrap failed", slog.Any("error", err))
		os.Exit(1)
	}

	retry := cfg.GetRetryConfig()
	svc := usecase.NewIndexService(jobs, embedder, index,
		tokencount.NewTruncator(cfg.EmbeddingsModel, cfg.EmbeddingsMaxTokens),
		usecase.RetryBackoff(retry.MaxRetries, retry.InitialDelay, retry.MaxDelay, retry.Multiplier),
	)

	if *seedPath != "" {
		producer, err := redpanda.NewProducer(ctx, cfg.KafkaBrokers, cfg.JobsTopic)
		if err != nil {
			slog.Error("redpanda producer init failed", slog.Any("error", err))
			os.Exit(1)
		}
		n, err := seedJobs(ctx, *seedPath, jobs, producer)
		producer.Close()
		if err != nil {
			slog.Error("seeding jobs failed", slog.String("path", *seedPath), slog.Any("error", err))
			os.Exit(1)
		}
		slog.Info("jobs seeded", slog.String("path", *seedPath), slog.Int("count", n))
	}

	consumer, err := redpanda.NewConsumer(ctx, redpanda.ConsumerConfig{
		Brokers: cfg.KafkaBrokers,
		GroupID: cfg.IndexerGroup,
		Topic:   cfg.JobsTopic,
	}, svc)
	if err != nil {
		slog.Error("redpanda consumer init failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer consumer.Close()

	if err := consumer.Run(ctx); err != nil {
		slog.Error("indexer stopped with error", slog.Any("error", err))
		return
	}
	slog.Info("indexer stopped")
}
