package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Tracer is the process-wide tracer used around scan, per-file pipeline,
// prewarm and interface builds.
var Tracer trace.Tracer = otel.Tracer("swiftsight")

// InitTracing installs an OTLP/gRPC trace exporter when endpoint is
// non-empty and returns a shutdown func. Tracing stays a no-op otherwise.
func InitTracing(ctx context.Context, endpoint string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(provider)
	Tracer = provider.Tracer("swiftsight")

	slog.Info("tracing enabled", "endpoint", endpoint)
	return provider.Shutdown, nil
}
