package tracing

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInitProvider_RequiresServiceName(t *testing.T) {
	if _, err := InitProvider(ProviderConfig{}); err == nil {
		t.Fatal("expected error for empty service name")
	}
}

func TestInitProvider_ExportsSampledSpans(t *testing.T) {
	defer otel.SetTracerProvider(sdktrace.NewTracerProvider())

	exporter := tracetest.NewInMemoryExporter()
	shutdown, err := InitProvider(ProviderConfig{
		ServiceName:    "literary-analysis-test",
		ServiceVersion: "test",
		SampleRatio:    5, // clamped to 1
		Exporters:      []sdktrace.SpanExporter{exporter},
	})
	if err != nil {
		t.Fatalf("InitProvider() error = %v", err)
	}

	defer func() { _ = shutdown(context.Background()) }()

	_, span := otel.Tracer("provider-test").Start(context.Background(), "unit")
	span.End()

	tp, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	if !ok {
		t.Fatalf("global provider is %T", otel.GetTracerProvider())
	}
	if err := tp.ForceFlush(context.Background()); err != nil {
		t.Fatalf("flush error = %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 exported span, got %d", len(spans))
	}
	found := false
	for _, attr := range spans[0].Resource.Attributes() {
		if attr.Key == "service.name" && attr.Value.AsString() == "literary-analysis-test" {
			found = true
		}
	}
	if !found {
		t.Error("service.name resource attribute missing")
	}
}

func TestInitProvider_ZeroRatioDropsRootSpans(t *testing.T) {
	defer otel.SetTracerProvider(sdktrace.NewTracerProvider())

	exporter := tracetest.NewInMemoryExporter()
	shutdown, err := InitProvider(ProviderConfig{
		ServiceName: "literary-analysis-test",
		SampleRatio: -1,
		Exporters:   []sdktrace.SpanExporter{exporter},
	})
	if err != nil {
		t.Fatalf("InitProvider() error = %v", err)
	}

	defer func() { _ = shutdown(context.Background()) }()

	_, span := otel.Tracer("provider-test").Start(context.Background(), "unit")
	span.End()
	_ = otel.GetTracerProvider().(*sdktrace.TracerProvider).ForceFlush(context.Background())

	if n := len(exporter.GetSpans()); n != 0 {
		t.Errorf("expected no exported spans, got %d", n)
	}
}
