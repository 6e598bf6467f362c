package observability

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/nova-migration/migrate-go/internal/temporal/versioning"
)

// ServicePrefix namespaces every binary's service.name.
const ServicePrefix = "nova-migrate-"

// TracerConfig selects the exporter and sampling for one binary.
type TracerConfig struct {
	// Component is the binary name, e.g. "worker" or "api".
	Component string
	// Endpoint is a full OTLP/HTTP URL. Empty falls back to the
	// OTEL_EXPORTER_OTLP_* environment defaults.
	Endpoint string
	// SampleRatio is the fraction of root traces kept, in [0, 1].
	SampleRatio float64
}

// ServiceName returns the namespaced service.name for the component.
func (c TracerConfig) ServiceName() string {
	return ServicePrefix + c.Component
}

func (c TracerConfig) resource(ctx context.Context) (*resource.Resource, error) {
	return resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			semconv.ServiceName(c.ServiceName()),
			semconv.ServiceVersion(versioning.MigrationV1),
			attribute.String("migration.component", c.Component),
		),
	)
}

// sampler keeps child spans with their parent so a run's agent calls are
// sampled together with the workflow span that started them.
func (c TracerConfig) sampler() sdktrace.Sampler {
	switch {
	case c.SampleRatio >= 1:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case c.SampleRatio <= 0:
		return sdktrace.ParentBased(sdktrace.NeverSample())
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(c.SampleRatio))
}

// InitTracer installs the global trace provider and W3C propagators.
// Returns a shutdown function that should be deferred.
func InitTracer(ctx context.Context, cfg TracerConfig) (func(context.Context) error, error) {
	var opts []otlptracehttp.Option
	if cfg.Endpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpointURL(cfg.Endpoint))
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("otel: create exporter: %w", err)
	}

	res, err := cfg.resource(ctx)
	if err != nil {
		return nil, fmt.Errorf("otel: create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(cfg.sampler()),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	slog.Info("OpenTelemetry tracing initialized",
		"service", cfg.ServiceName(), "endpoint", cfg.Endpoint, "sample_ratio", cfg.SampleRatio)
	return tp.Shutdown, nil
}
