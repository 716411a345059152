package tracing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customeros/mailsift/internal/logger"
)

func TestJaegerConfig_ReportsToAgentByDefault(t *testing.T) {
	cfg := (&JaegerConfig{ServiceName: "mailsift", AgentHost: "jaeger", AgentPort: "6831", SamplerParam: 1}).configuration()

	assert.True(t, cfg.Disabled)
	assert.Equal(t, "mailsift", cfg.ServiceName)
	assert.Equal(t, "jaeger:6831", cfg.Reporter.LocalAgentHostPort)
	assert.Empty(t, cfg.Reporter.CollectorEndpoint)
	assert.Equal(t, "const", cfg.Sampler.Type)
}

func TestJaegerConfig_CollectorEndpointWins(t *testing.T) {
	cfg := (&JaegerConfig{
		Enabled:     true,
		ServiceName: "mailsift",
		Endpoint:    "http://collector:14268/api/traces",
		AgentHost:   "jaeger",
		AgentPort:   "6831",
		SamplerType: "probabilistic",
	}).configuration()

	assert.False(t, cfg.Disabled)
	assert.Equal(t, "http://collector:14268/api/traces", cfg.Reporter.CollectorEndpoint)
	assert.Empty(t, cfg.Reporter.LocalAgentHostPort)
	assert.Equal(t, "probabilistic", cfg.Sampler.Type)
}

func TestNewJaegerTracer_Disabled(t *testing.T) {
	tracer, closer, err := NewJaegerTracer(&JaegerConfig{ServiceName: "mailsift"}, logger.NewNopLogger())

	require.NoError(t, err)
	require.NotNil(t, tracer)
	assert.NoError(t, closer.Close())
}
