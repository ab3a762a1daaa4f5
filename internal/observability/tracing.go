package observability

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func resourceAttributes(serviceName, serviceVersion string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", serviceName),
		attribute.String("service.version", serviceVersion),
	}
}

// TracingConfig controls how evaluation spans are sampled and exported.
type TracingConfig struct {
	ServiceName    string
	ServiceVersion string
	SamplingRatio  float64 // 0 disables, 1 traces every request
	Writer         io.Writer // nil defaults to stdouttrace's own default (stdout)
}

// NewTracerProvider builds a TracerProvider exporting spans via stdouttrace:
// a pretty-printed, dependency-free exporter that is enough for an operator
// to confirm tracing is wired before pointing a real collector at it (the
// exporter is the one piece deliberately swappable -- every span-naming
// convention below is otherwise collector-agnostic).
func NewTracerProvider(cfg TracingConfig) (*sdktrace.TracerProvider, error) {
	opts := []stdouttrace.Option{stdouttrace.WithPrettyPrint()}
	if cfg.Writer != nil {
		opts = append(opts, stdouttrace.WithWriter(cfg.Writer))
	}
	exporter, err := stdouttrace.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("observability: creating trace exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			resourceAttributes(cfg.ServiceName, cfg.ServiceVersion)...,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("observability: building resource: %w", err)
	}

	ratio := cfg.SamplingRatio
	if ratio <= 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
	)
	otel.SetTracerProvider(tp)
	return tp, nil
}

// StartEvaluation starts a span named "pdp.evaluate", the name Service gives
// each individual request's span; spans started from the returned context
// nest under it. Service does not call it: it starts its span itself on the
// tracer passed to WithTracer.
func StartEvaluation(ctx context.Context, tracer trace.Tracer) (context.Context, trace.Span) {
	return tracer.Start(ctx, "pdp.evaluate")
}
