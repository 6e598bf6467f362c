package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/nova-migration/migrate-go/internal/temporal/versioning"
)

func TestTracerConfig_Resource(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "")
	t.Setenv("OTEL_RESOURCE_ATTRIBUTES", "")

	res, err := TracerConfig{Component: "worker"}.resource(context.Background())
	require.NoError(t, err)

	set := res.Set()
	name, ok := set.Value(semconv.ServiceNameKey)
	require.True(t, ok)
	assert.Equal(t, "nova-migrate-worker", name.AsString())

	version, ok := set.Value(semconv.ServiceVersionKey)
	require.True(t, ok)
	assert.Equal(t, versioning.MigrationV1, version.AsString())

	component, ok := set.Value(attribute.Key("migration.component"))
	require.True(t, ok)
	assert.Equal(t, "worker", component.AsString())
}

func TestTracerConfig_Sampler(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{1, "root:AlwaysOnSampler"},
		{0, "root:AlwaysOffSampler"},
		{0.25, "root:TraceIDRatioBased{0.25}"},
	}
	for _, tt := range tests {
		got := TracerConfig{SampleRatio: tt.ratio}.sampler().Description()
		assert.Contains(t, got, "ParentBased")
		assert.Contains(t, got, tt.want)
	}
}

func TestInitTracer(t *testing.T) {
	prevTP := otel.GetTracerProvider()
	prevProp := otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})

	shutdown, err := InitTracer(context.Background(), TracerConfig{
		Component:   "api",
		Endpoint:    "http://127.0.0.1:4318/v1/traces",
		SampleRatio: 1,
	})
	require.NoError(t, err)

	_, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	assert.True(t, ok, "global provider should be the SDK provider")
	assert.Contains(t, otel.GetTextMapPropagator().Fields(), "traceparent")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, shutdown(ctx))
}
