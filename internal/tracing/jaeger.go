package tracing

import (
	"io"
	"os"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/uber/jaeger-client-go"
	"github.com/uber/jaeger-client-go/config"
	"github.com/uber/jaeger-client-go/log/zap"

	"github.com/customeros/mailsift/internal/logger"
)

const defaultFlushInterval = time.Second

type JaegerConfig struct {
	Enabled      bool    `env:"JAEGER_ENABLED" envDefault:"false"`
	ServiceName  string  `env:"JAEGER_SERVICE_NAME" envDefault:"mailsift"`
	Endpoint     string  `env:"JAEGER_ENDPOINT"`
	AgentHost    string  `env:"JAEGER_AGENT_HOST" envDefault:"localhost"`
	AgentPort    string  `env:"JAEGER_AGENT_PORT" envDefault:"6831"`
	SamplerType  string  `env:"JAEGER_SAMPLER_TYPE" envDefault:"const"`
	SamplerParam float64 `env:"JAEGER_SAMPLER_PARAM" envDefault:"1"`
	LogSpans     bool    `env:"JAEGER_REPORTER_LOG_SPANS" envDefault:"false"`
}

// NewJaegerTracer builds the process tracer. A disabled config still returns
// a usable no-op tracer so spans can be started unconditionally.
func NewJaegerTracer(jaegerConfig *JaegerConfig, log logger.Logger) (opentracing.Tracer, io.Closer, error) {
	return jaegerConfig.configuration().NewTracer(
		config.Logger(zap.NewLogger(log.Logger())),
	)
}

// configuration reports to the collector endpoint when one is set and to the
// local agent otherwise. Every span carries the host it ran on.
func (c *JaegerConfig) configuration() *config.Configuration {
	samplerType := c.SamplerType
	if samplerType == "" {
		samplerType = jaeger.SamplerTypeConst
	}

	reporter := &config.ReporterConfig{
		LogSpans:            c.LogSpans,
		BufferFlushInterval: defaultFlushInterval,
	}
	if c.Endpoint != "" {
		reporter.CollectorEndpoint = c.Endpoint
	} else {
		reporter.LocalAgentHostPort = c.AgentHost + ":" + c.AgentPort
	}

	cfg := &config.Configuration{
		ServiceName: c.ServiceName,
		Disabled:    !c.Enabled,
		Sampler:     &config.SamplerConfig{Type: samplerType, Param: c.SamplerParam},
		Reporter:    reporter,
	}
	if host, err := os.Hostname(); err == nil {
		cfg.Tags = []opentracing.Tag{{Key: "hostname", Value: host}}
	}
	return cfg
}
