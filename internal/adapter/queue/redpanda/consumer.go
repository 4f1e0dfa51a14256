// Package redpanda carries job-ingested events between the catalog and the indexer.
package redpanda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kotel"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/job-matcher/internal/adapter/observability"
)

// JobEvent announces that a job posting was created or changed.
type JobEvent struct {
	JobID     string `json:"job_id"`
	RequestID string `json:"request_id,omitempty"`
}

// Handler indexes one job.
type Handler interface {
	IndexJob(ctx context.Context, jobID string) error
}

// ConsumerConfig describes the subscription.
type ConsumerConfig struct {
	Brokers    []string
	GroupID    string
	Topic      string
	Partitions int32
}

// Consumer reads job events and hands each to a Handler. Offsets are marked
// after the handler returns and committed by the client in the background.
type Consumer struct {
	client  *kgo.Client
	handler Handler
	topic   string
	groupID string
}

// NewConsumer constructs a Consumer and makes sure the topic exists.
func NewConsumer(ctx context.Context, cfg ConsumerConfig, h Handler) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("no seed brokers provided")
	}
	if cfg.GroupID == "" {
		return nil, fmt.Errorf("missing required group ID")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("missing required topic")
	}
	if h == nil {
		return nil, fmt.Errorf("missing handler")
	}
	if cfg.Partitions <= 0 {
		cfg.Partitions = 3
	}
	if err := ensureTopic(ctx, cfg.Brokers, cfg.Topic, cfg.Partitions); err != nil {
		slog.Warn("failed to create topic, it may already exist", slog.String("topic", cfg.Topic), slog.Any("error", err))
	}

	kotelService := kotel.NewKotel(kotel.WithTracer(kotel.NewTracer(kotel.TracerProvider(otel.GetTracerProvider()))))
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(cfg.GroupID),
		kgo.ConsumeTopics(cfg.Topic),
		kgo.WithHooks(kotelService.Hooks()...),
		kgo.DialTimeout(10*time.Second),
		kgo.SessionTimeout(30*time.Second),
		kgo.HeartbeatInterval(3*time.Second),
		kgo.FetchMaxWait(5*time.Second),
		kgo.AutoCommitMarks(),
		kgo.AutoCommitInterval(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("redpanda consumer client: %w", err)
	}
	slog.Info("redpanda consumer created", slog.Any("brokers", cfg.Brokers), slog.String("group_id", cfg.GroupID), slog.String("topic", cfg.Topic))
	return &Consumer{client: client, handler: h, topic: cfg.Topic, groupID: cfg.GroupID}, nil
}

// Run polls until ctx ends. Records are processed in partition order.
func (c *Consumer) Run(ctx context.Context) error {
	slog.Info("starting redpanda consumer", slog.String("group_id", c.groupID), slog.String("topic", c.topic))
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return nil
		}
		if ctx.Err() != nil {
			c.commit()
			return nil
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			if errors.Is(err, context.Canceled) {
				return
			}
			slog.Error("fetch error", slog.String("topic", topic), slog.Int("partition", int(partition)), slog.Any("error", err))
		})
		fetches.EachRecord(func(r *kgo.Record) {
			_ = c.processRecord(ctx, r)
			c.client.MarkCommitRecords(r)
		})
	}
}

func (c *Consumer) commit() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.client.CommitMarkedOffsets(ctx); err != nil {
		slog.Warn("commit marked offsets failed", slog.Any("error", err))
	}
}

// processRecord decodes and handles one record. Failures are logged and
// reported to the caller; the record is not redelivered.
func (c *Consumer) processRecord(ctx context.Context, record *kgo.Record) error {
	tracer := otel.Tracer("queue.consumer")
	ctx, span := tracer.Start(ctx, "Consumer.processRecord")
	defer span.End()
	span.SetAttributes(
		attribute.String("messaging.topic", record.Topic),
		attribute.Int64("messaging.offset", record.Offset),
	)

	ev, err := DecodeJobEvent(record.Key, record.Value)
	if err != nil {
		slog.Error("undecodable job event",
			slog.String("topic", record.Topic),
			slog.Int64("offset", record.Offset),
			slog.Any("error", err))
		observability.RecordJobIndexed("invalid")
		return err
	}
	lg := observability.LoggerFromContext(ctx).With(slog.String("job_id", ev.JobID), slog.Int64("offset", record.Offset))
	if ev.RequestID != "" {
		ctx = observability.ContextWithRequestID(ctx, ev.RequestID)
		lg = lg.With(slog.String("request_id", ev.RequestID))
	}
	ctx = observability.ContextWithLogger(ctx, lg)

	if err := c.handler.IndexJob(ctx, ev.JobID); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// DecodeJobEvent reads a JSON event body, falling back to the record key for the job id.
func DecodeJobEvent(key, value []byte) (JobEvent, error) {
	var ev JobEvent
	if len(value) > 0 {
		if err := json.Unmarshal(value, &ev); err != nil {
			return JobEvent{}, fmt.Errorf("unmarshal job event: %w", err)
		}
	}
	ev.JobID = strings.TrimSpace(ev.JobID)
	if ev.JobID == "" {
		ev.JobID = strings.TrimSpace(string(key))
	}
	if ev.JobID == "" {
		return JobEvent{}, fmt.Errorf("job event without job_id")
	}
	return ev, nil
}

// Close leaves the group and closes the client.
func (c *Consumer) Close() {
	if c.client != nil {
		c.client.Close()
	}
}
