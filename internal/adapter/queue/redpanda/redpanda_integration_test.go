//go:build integration

package redpanda

import (
	"context"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	containerTypes "github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type syncHandler struct {
	mu  sync.Mutex
	ids []string
}

func (h *syncHandler) IndexJob(_ context.Context, jobID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ids = append(h.ids, jobID)
	return nil
}

func (h *syncHandler) seen() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.ids...)
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = l.Close() }()
	return l.Addr().(*net.TCPAddr).Port
}

// startRedpanda runs a single-node broker advertised on a fixed host port.
func startRedpanda(t *testing.T) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	port := freePort(t)
	req := tc.ContainerRequest{
		Image:        "redpandadata/redpanda:v24.3.7",
		ExposedPorts: []string{"9092/tcp"},
		Cmd: []string{
			"redpanda", "start",
			"--overprovisioned",
			"--smp", "1",
			"--memory", "256M",
			"--reserve-memory", "0M",
			"--check=false",
			"--kafka-addr", "PLAINTEXT://0.0.0.0:9092",
			"--advertise-kafka-addr", fmt.Sprintf("PLAINTEXT://127.0.0.1:%d", port),
			"--mode", "dev-container",
		},
		WaitingFor: wait.ForListeningPort("9092/tcp").WithStartupTimeout(60 * time.Second),
		HostConfigModifier: func(hc *containerTypes.HostConfig) {
			if hc.PortBindings == nil {
				hc.PortBindings = nat.PortMap{}
			}
			hc.PortBindings[nat.Port("9092/tcp")] = []nat.PortBinding{{HostIP: "0.0.0.0", HostPort: fmt.Sprintf("%d", port)}}
		},
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })
	return fmt.Sprintf("127.0.0.1:%d", port)
}

func TestProducerConsumer_RoundTrip(t *testing.T) {
	broker := startRedpanda(t)
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	topic := fmt.Sprintf("jobs-ingested-%d", time.Now().UnixNano())
	p, err := NewProducer(ctx, []string{broker}, topic)
	require.NoError(t, err)
	defer p.Close()
	require.NoError(t, p.PublishJobIngested(ctx, "j1", "j2", "j3"))

	h := &syncHandler{}
	c, err := NewConsumer(ctx, ConsumerConfig{Brokers: []string{broker}, GroupID: "it-" + topic, Topic: topic, Partitions: 1}, h)
	require.NoError(t, err)
	defer c.Close()

	runCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- c.Run(runCtx) }()

	require.Eventually(t, func() bool { return len(h.seen()) == 3 }, 60*time.Second, 200*time.Millisecond)
	stop()
	require.NoError(t, <-done)
	require.ElementsMatch(t, []string{"j1", "j2", "j3"}, h.seen())
}
