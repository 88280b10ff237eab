package observability

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/tbourn/go-lead-backend/internal/config"
)

func keepOTelGlobals(t *testing.T) {
	t.Helper()
	tp, prop := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(prop)
	})
}

// withMemoryExporter swaps the OTLP exporter for an in-memory one.
func withMemoryExporter(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	mem := tracetest.NewInMemoryExporter()
	orig := newSpanExporter
	newSpanExporter = func(context.Context, ...otlptracegrpc.Option) (sdktrace.SpanExporter, error) {
		return mem, nil
	}
	t.Cleanup(func() { newSpanExporter = orig })
	return mem
}

func enabledCfg(name string) config.OTELConfig {
	return config.OTELConfig{Enabled: true, Insecure: true, Endpoint: "localhost:4317", ServiceName: name, SampleRatio: 1}
}

func TestStartTracing_DisabledLeavesGlobals(t *testing.T) {
	keepOTelGlobals(t)
	before := otel.GetTracerProvider()

	shutdown, err := StartTracing(context.Background(), config.OTELConfig{Enabled: false}, "v0")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("noop shutdown: %v", err)
	}
	if otel.GetTracerProvider() != before {
		t.Fatal("disabled tracing replaced the provider")
	}
}

func TestStartTracing_ExportsSpansWithServiceResource(t *testing.T) {
	keepOTelGlobals(t)
	mem := withMemoryExporter(t)

	shutdown, err := StartTracing(context.Background(), enabledCfg("lead-api"), "v1.2.3")
	if err != nil {
		t.Fatalf("StartTracing: %v", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	_, span := otel.Tracer("test").Start(context.Background(), "HandleMessage")
	span.End()
	tp, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	if !ok {
		t.Fatalf("provider is %T", otel.GetTracerProvider())
	}
	if err := tp.ForceFlush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}

	spans := mem.GetSpans()
	if len(spans) != 1 || spans[0].Name != "HandleMessage" {
		t.Fatalf("exported spans = %+v", spans)
	}
	var service, version string
	for _, kv := range spans[0].Resource.Attributes() {
		switch kv.Key {
		case "service.name":
			service = kv.Value.AsString()
		case "service.version":
			version = kv.Value.AsString()
		}
	}
	if service != "lead-api" || version != "v1.2.3" {
		t.Fatalf("resource service=%q version=%q", service, version)
	}
}

func TestStartTracing_InstallsW3CPropagator(t *testing.T) {
	keepOTelGlobals(t)
	withMemoryExporter(t)

	shutdown, err := StartTracing(context.Background(), enabledCfg("svc"), "v1")
	if err != nil {
		t.Fatalf("StartTracing: %v", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	ctx, span := otel.Tracer("test").Start(context.Background(), "root")
	defer span.End()
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	if !strings.HasPrefix(carrier.Get("traceparent"), "00-") {
		t.Fatalf("traceparent not injected: %v", carrier)
	}
}

func TestStartTracing_TLSBranchBuilds(t *testing.T) {
	keepOTelGlobals(t)
	cfg := enabledCfg("svc-tls")
	cfg.Insecure = false

	// The real exporter connects lazily, so construction succeeds offline.
	shutdown, err := StartTracing(context.Background(), cfg, "v1")
	if err != nil {
		t.Fatalf("StartTracing: %v", err)
	}
	_ = shutdown(context.Background())
}

func TestStartTracing_ErrorsKeepGlobals(t *testing.T) {
	t.Run("exporter", func(t *testing.T) {
		keepOTelGlobals(t)
		orig := newSpanExporter
		t.Cleanup(func() { newSpanExporter = orig })
		newSpanExporter = func(context.Context, ...otlptracegrpc.Option) (sdktrace.SpanExporter, error) {
			return nil, errors.New("dial refused")
		}
		before := otel.GetTracerProvider()
		if _, err := StartTracing(context.Background(), enabledCfg("svc"), "v0"); err == nil {
			t.Fatal("expected error")
		}
		if otel.GetTracerProvider() != before {
			t.Fatal("provider replaced on failure")
		}
	})

	t.Run("resource", func(t *testing.T) {
		keepOTelGlobals(t)
		withMemoryExporter(t)
		orig := newResource
		t.Cleanup(func() { newResource = orig })
		newResource = func(context.Context, string, string) (*resource.Resource, error) {
			return nil, errors.New("bad resource")
		}
		before := otel.GetTracerProvider()
		if _, err := StartTracing(context.Background(), enabledCfg("svc"), "v0"); err == nil {
			t.Fatal("expected error")
		}
		if otel.GetTracerProvider() != before {
			t.Fatal("provider replaced on failure")
		}
	})
}

func TestSampler_Clamps(t *testing.T) {
	cases := map[float64]string{
		2:    "AlwaysOnSampler",
		1:    "AlwaysOnSampler",
		0:    "AlwaysOffSampler",
		-1:   "AlwaysOffSampler",
		0.25: "TraceIDRatioBased{0.25}",
	}
	for ratio, want := range cases {
		if got := sampler(ratio).Description(); !strings.HasPrefix(got, "ParentBased{root:"+want) {
			t.Fatalf("sampler(%v) = %q, want root %q", ratio, got, want)
		}
	}
}
