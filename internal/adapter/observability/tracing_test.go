package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/job-matcher/internal/config"
)

func TestSetupTracing_Disabled(t *testing.T) {
	shutdown, err := SetupTracing(config.Config{})
	require.NoError(t, err)
	assert.Nil(t, shutdown)
}

func TestSetupTracing_WithEndpoint(t *testing.T) {
	// the grpc exporter dials lazily, so no collector is needed
	shutdown, err := SetupTracing(config.Config{OTLPEndpoint: "localhost:4317", OTELServiceName: "job-matcher", AppEnv: "test"})
	if err != nil {
		assert.Nil(t, shutdown)
		return
	}
	require.NotNil(t, shutdown)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}

func TestSamplingRatio(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0.1, samplingRatio(config.Config{AppEnv: "prod"}))
	assert.Equal(t, 1.0, samplingRatio(config.Config{AppEnv: "dev"}))
}
