// Package telemetry wires an OTLP trace exporter into the global OpenTelemetry
// tracer provider. Tracing stays disabled unless an endpoint is configured, so
// the bot's spans become no-ops by default.
package telemetry

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"gopkg.in/yaml.v3"

	"github.com/faqbot/faqbot/internal/core"
)

func init() {
	core.RegisterModule(&Module{})
}

// Config holds tracing configuration.
type Config struct {
	// Endpoint is the OTLP/HTTP collector endpoint (host:port or URL).
	// Empty disables tracing entirely.
	Endpoint string `yaml:"endpoint"`

	// Insecure uses plain HTTP instead of TLS.
	Insecure bool `yaml:"insecure"`

	// TLSSkipVerify skips certificate verification for internal CAs.
	TLSSkipVerify bool `yaml:"tls_skip_verify"`

	// SampleRate in [0,1]. Zero means always sample; tracing that is
	// enabled but never sampled is just overhead.
	SampleRate float64 `yaml:"sample_rate"`

	// ServiceName reported in the resource attributes.
	ServiceName string `yaml:"service_name"`
}

// Module manages the tracer provider lifecycle.
type Module struct {
	config   Config
	logger   *slog.Logger
	provider *trace.TracerProvider
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "telemetry",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	if err := node.Decode(&m.config); err != nil {
		return err
	}
	if m.config.ServiceName == "" {
		m.config.ServiceName = "faqbot"
	}
	return nil
}

// Validate implements core.Validator.
func (m *Module) Validate() error {
	if m.config.SampleRate < 0 || m.config.SampleRate > 1 {
		return fmt.Errorf("telemetry: sample_rate %v out of [0,1]", m.config.SampleRate)
	}
	return nil
}

// Provision implements core.Provisioner.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.logger = ctx.Logger
	return nil
}

// Start implements core.Starter.
func (m *Module) Start() error {
	if m.config.Endpoint == "" {
		m.logger.Debug("telemetry disabled, no endpoint configured")
		return nil
	}

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(stripScheme(m.config.Endpoint)),
	}
	if m.config.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	} else if m.config.TLSSkipVerify {
		opts = append(opts, otlptracehttp.WithTLSClientConfig(&tls.Config{
			InsecureSkipVerify: true, //nolint:gosec // explicit opt-in
		}))
	}

	exporter, err := otlptracehttp.New(context.Background(), opts...)
	if err != nil {
		return fmt.Errorf("telemetry: creating trace exporter: %w", err)
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(m.config.ServiceName),
	)

	sampler := trace.AlwaysSample()
	if m.config.SampleRate > 0 && m.config.SampleRate < 1 {
		sampler = trace.TraceIDRatioBased(m.config.SampleRate)
	}

	m.provider = trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
		trace.WithSampler(trace.ParentBased(sampler)),
	)
	otel.SetTracerProvider(m.provider)

	m.logger.Info("telemetry enabled", "endpoint", m.config.Endpoint)
	return nil
}

// Stop implements core.Stopper. Flushes buffered spans.
func (m *Module) Stop(ctx context.Context) error {
	if m.provider == nil {
		return nil
	}
	return m.provider.Shutdown(ctx)
}

// stripScheme drops an http:// or https:// prefix; the exporter option
// wants a bare host:port.
func stripScheme(endpoint string) string {
	endpoint = strings.TrimPrefix(endpoint, "https://")
	return strings.TrimPrefix(endpoint, "http://")
}

// Interface guards.
var (
	_ core.Module       = (*Module)(nil)
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Validator    = (*Module)(nil)
	_ core.Starter      = (*Module)(nil)
	_ core.Stopper      = (*Module)(nil)
)
