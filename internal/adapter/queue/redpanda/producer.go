package redpanda

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kotel"
	"go.opentelemetry.io/otel"
)

// Producer publishes job events keyed by job id, so events for one job stay ordered.
type Producer struct {
	client *kgo.Client
	topic  string
}

// NewProducer constructs a Producer for topic.
func NewProducer(ctx context.Context, brokers []string, topic string) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("no seed brokers provided")
	}
	if err := ensureTopic(ctx, brokers, topic, 3); err != nil {
		slog.Warn("failed to create topic, it may already exist", slog.String("topic", topic), slog.Any("error", err))
	}
	kotelService := kotel.NewKotel(kotel.WithTracer(kotel.NewTracer(kotel.TracerProvider(otel.GetTracerProvider()))))
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequestRetries(10),
		kgo.WithHooks(kotelService.Hooks()...),
	)
	if err != nil {
		return nil, fmt.Errorf("redpanda producer client: %w", err)
	}
	return &Producer{client: client, topic: topic}, nil
}

// PublishJobIngested emits one event per job id and waits for all acks.
func (p *Producer) PublishJobIngested(ctx context.Context, jobIDs ...string) error {
	records := make([]*kgo.Record, 0, len(jobIDs))
	for _, id := range jobIDs {
		b, err := json.Marshal(JobEvent{JobID: id})
		if err != nil {
			return fmt.Errorf("marshal job event: %w", err)
		}
		records = append(records, &kgo.Record{Topic: p.topic, Key: []byte(id), Value: b})
	}
	if err := p.client.ProduceSync(ctx, records...).FirstErr(); err != nil {
		return fmt.Errorf("produce: %w", err)
	}
	slog.Info("job events published", slog.String("topic", p.topic), slog.Int("count", len(records)))
	return nil
}

// Close flushes and closes the producer.
func (p *Producer) Close() {
	if p.client != nil {
		p.client.Close()
	}
}
