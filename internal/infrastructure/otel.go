package infrastructure

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"

	"exopanel/pkg/contracts"
)

// TracerName identifies the panel builder's tracer.
const TracerName = "exopanel.pipeline"

// TracerProvider wraps the OpenTelemetry SDK provider so main can shut it
// down after the run and flush the exported spans.
type TracerProvider struct {
	provider *sdktrace.TracerProvider
}

// InitTracer configures a stdout span exporter and registers the global
// tracer provider. Span output is disabled by passing enabled=false, in
// which case the no-op global provider stays in place.
func InitTracer(enabled bool) (*TracerProvider, error) {
	if !enabled {
		return &TracerProvider{}, nil
	}

	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceName("exopanel"),
			semconv.ServiceVersion(contracts.Version),
		),
	)
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	return &TracerProvider{provider: provider}, nil
}

// Shutdown flushes and stops the provider.
func (t *TracerProvider) Shutdown(ctx context.Context) error {
	if t == nil || t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}

// Tracer returns the pipeline tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}
