// Package tracing wires Fae's render/compile path into OpenTelemetry,
// exporting spans to stdout (for local development) or an OTLP
// collector (for production).
//
// Grounded on the teacher's pkg/tracing/tracing.go: a Config selecting
// "stdout" vs "otlp", an InitTracing that builds the matching exporter
// and installs a sdktrace.TracerProvider as the global provider, and a
// StartSpan convenience wrapper. Trimmed of the HTTP-specific
// propagation/attribute helpers (GLYPHLANG's tracing wrapped an HTTP
// server; Fae's only inbound HTTP server, pkg/preview, starts no spans
// and propagates no trace context) and
// resurfaced as the library.Tracer shape library.Library expects.
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// Config selects and configures the OpenTelemetry exporter.
type Config struct {
	ServiceName  string
	Exporter     string // "stdout" or "otlp"
	OTLPEndpoint string
}

// Tracer implements library.Tracer on top of an OpenTelemetry
// TracerProvider.
type Tracer struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// Init builds the exporter named by cfg.Exporter, installs its
// TracerProvider globally, and returns a Tracer plus a shutdown func
// the caller must run (typically deferred) before exiting.
func Init(ctx context.Context, cfg Config) (*Tracer, func(context.Context) error, error) {
	var exporter sdktrace.SpanExporter
	var err error

	switch cfg.Exporter {
	case "", "stdout":
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	case "otlp":
		endpoint := cfg.OTLPEndpoint
		if endpoint == "" {
			endpoint = "localhost:4317"
		}
		client := otlptracegrpc.NewClient(
			otlptracegrpc.WithEndpoint(endpoint),
			otlptracegrpc.WithInsecure(),
		)
		exporter, err = otlptrace.New(ctx, client)
	default:
		return nil, nil, fmt.Errorf("tracing: unsupported exporter %q", cfg.Exporter)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("tracing: creating exporter: %w", err)
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "fae"
	}
	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("tracing: building resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	t := &Tracer{provider: provider, tracer: provider.Tracer("fae")}
	return t, provider.Shutdown, nil
}

// Start implements library.Tracer, starting a span named op and
// tagging it with the template it concerns. The returned end func
// records err (if non-nil) on the span and closes it.
func (t *Tracer) Start(ctx context.Context, op, template string) (context.Context, func(err error)) {
	ctx, span := t.tracer.Start(ctx, op, trace.WithAttributes(
		attribute.String("fae.template", template),
	))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}
