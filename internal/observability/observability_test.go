package observability

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewMetricsRegistersWithoutCollision(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.DecisionsTotal.WithLabelValues("Permit").Inc()
	m.CacheHitsTotal.Inc()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("unexpected error gathering metrics: %v", err)
	}
	if len(families) == 0 {
		t.Fatalf("expected at least one metric family registered")
	}
}

func TestNewTracerProviderBuildsAndStartsSpan(t *testing.T) {
	tp, err := NewTracerProvider(TracingConfig{ServiceName: "xacml-pdp", ServiceVersion: "test", SamplingRatio: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	tracer := tp.Tracer("xacml-pdp-test")
	_, span := StartEvaluation(context.Background(), tracer)
	defer span.End()

	if !span.SpanContext().IsValid() {
		t.Fatalf("expected a valid span context")
	}
}
