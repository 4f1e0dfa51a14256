package redpanda

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/fairyhunter13/job-matcher/internal/adapter/observability"
)

type recordingHandler struct {
	ids       []string
	requestID string
	err       error
}

func (h *recordingHandler) IndexJob(ctx context.Context, jobID string) error {
	h.ids = append(h.ids, jobID)
	h.requestID = observability.RequestIDFromContext(ctx)
	return h.err
}

func TestDecodeJobEvent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		key     string
		value   string
		want    JobEvent
		wantErr bool
	}{
		{name: "json body", value: `{"job_id":"j1","request_id":"r1"}`, want: JobEvent{JobID: "j1", RequestID: "r1"}},
		{name: "trims id", value: `{"job_id":"  j2 "}`, want: JobEvent{JobID: "j2"}},
		{name: "key fallback", key: "j3", value: `{}`, want: JobEvent{JobID: "j3"}},
		{name: "key only", key: "j4", want: JobEvent{JobID: "j4"}},
		{name: "bad json", value: `{`, wantErr: true},
		{name: "no id", value: `{"job_id":""}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := DecodeJobEvent([]byte(tt.key), []byte(tt.value))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConsumer_ProcessRecord(t *testing.T) {
	t.Parallel()
	h := &recordingHandler{}
	c := &Consumer{handler: h, topic: "jobs-ingested"}

	err := c.processRecord(context.Background(), &kgo.Record{Topic: "jobs-ingested", Value: []byte(`{"job_id":"j1","request_id":"req-9"}`)})
	require.NoError(t, err)
	assert.Equal(t, []string{"j1"}, h.ids)
	assert.Equal(t, "req-9", h.requestID)

	err = c.processRecord(context.Background(), &kgo.Record{Topic: "jobs-ingested", Value: []byte(`not json`)})
	require.Error(t, err)
	assert.Len(t, h.ids, 1)
}

func TestConsumer_ProcessRecordHandlerError(t *testing.T) {
	t.Parallel()
	h := &recordingHandler{err: errors.New("qdrant down")}
	c := &Consumer{handler: h}

	err := c.processRecord(context.Background(), &kgo.Record{Key: []byte("j1")})
	assert.EqualError(t, err, "qdrant down")
}

func TestNewConsumer_Validation(t *testing.T) {
	t.Parallel()
	h := &recordingHandler{}
	tests := []struct {
		name string
		cfg  ConsumerConfig
		h    Handler
	}{
		{"no brokers", ConsumerConfig{GroupID: "g", Topic: "t"}, h},
		{"no group", ConsumerConfig{Brokers: []string{"b:9092"}, Topic: "t"}, h},
		{"no topic", ConsumerConfig{Brokers: []string{"b:9092"}, GroupID: "g"}, h},
		{"no handler", ConsumerConfig{Brokers: []string{"b:9092"}, GroupID: "g", Topic: "t"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewConsumer(context.Background(), tt.cfg, tt.h)
			require.Error(t, err)
		})
	}
}

func TestNewProducer_NoBrokers(t *testing.T) {
	_, err := NewProducer(context.Background(), nil, "t")
	require.Error(t, err)
}
