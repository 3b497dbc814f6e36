package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// Tracer wraps an OpenTelemetry tracer with the three suspension-heavy spans
// named in SPEC_FULL.md §5: a stream completion round trip to an LLM
// provider, a single tool dispatch, and a plan step execution. Each of those
// operations can block for tens of seconds; spans are how an operator tells
// a slow provider apart from a slow tool apart from a slow symbol edit.
type Tracer struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// TraceConfig configures the OTLP gRPC exporter. Endpoint empty disables
// export and Start still returns usable (non-recording) spans.
type TraceConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	// SampleOneIn samples 1 trace in N; 1 means always-sample, matching
	// config.ObservabilityConfig.TraceSampleOne.
	SampleOneIn    int
	EnableInsecure bool
}

// NewTracer builds a Tracer and a shutdown func that flushes and closes the
// exporter. If config.Endpoint is empty, or exporter construction fails, a
// no-op tracer backed by the global otel.Tracer is returned instead of
// failing startup, the way the teacher degrades tracing to a no-op rather
// than refusing to boot.
func NewTracer(config TraceConfig) (*Tracer, func(context.Context) error) {
	noop := func() (*Tracer, func(context.Context) error) {
		return &Tracer{tracer: otel.Tracer(config.ServiceName)}, func(context.Context) error { return nil }
	}
	if config.Endpoint == "" {
		return noop()
	}
	if config.SampleOneIn <= 0 {
		config.SampleOneIn = 1
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(config.Endpoint)}
	if config.EnableInsecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptrace.New(context.Background(), otlptracegrpc.NewClient(opts...))
	if err != nil {
		t, shutdown := noop()
		return t, shutdown
	}

	res, err := resource.New(context.Background(), resource.WithAttributes(
		semconv.ServiceName(config.ServiceName),
		semconv.ServiceVersion(config.ServiceVersion),
	))
	if err != nil {
		res = resource.Default()
	}

	var sampler sdktrace.Sampler
	if config.SampleOneIn == 1 {
		sampler = sdktrace.AlwaysSample()
	} else {
		sampler = sdktrace.TraceIDRatioBased(1.0 / float64(config.SampleOneIn))
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))

	return &Tracer{provider: provider, tracer: provider.Tracer(config.ServiceName)},
		provider.Shutdown
}

// Start opens a span, matching trace.Tracer.Start's signature minus options
// most call sites here don't need.
func (t *Tracer) Start(ctx context.Context, name string, kind trace.SpanKind, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, trace.WithSpanKind(kind), trace.WithAttributes(attrs...))
}

// RecordError records err on span and marks it failed, a no-op if err is nil.
func (t *Tracer) RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// TraceStreamCompletion opens a span around llmbroker.Broker's streaming
// completion round trip (spec.md §4.A).
func (t *Tracer) TraceStreamCompletion(ctx context.Context, provider, model string) (context.Context, trace.Span) {
	return t.Start(ctx, fmt.Sprintf("llm.stream_completion %s", provider), trace.SpanKindClient,
		attribute.String("llm.provider", provider),
		attribute.String("llm.model", model),
	)
}

// TraceToolDispatch opens a span around a single tooldispatch.Dispatcher
// invocation (spec.md §4.B).
func (t *Tracer) TraceToolDispatch(ctx context.Context, toolType string) (context.Context, trace.Span) {
	return t.Start(ctx, fmt.Sprintf("dispatch.%s", toolType), trace.SpanKindInternal,
		attribute.String("tool.type", toolType),
	)
}

// TracePlanStepExecution opens a span around planservice.Service executing
// one step of a plan (spec.md §4.E).
func (t *Tracer) TracePlanStepExecution(ctx context.Context, planID string, stepIndex int) (context.Context, trace.Span) {
	return t.Start(ctx, "plan.execute_step", trace.SpanKindInternal,
		attribute.String("plan.id", planID),
		attribute.Int("plan.step_index", stepIndex),
	)
}

// TraceHTTPRequest opens a span for an inbound symborchd HTTP request,
// installed by the chi middleware in cmd/symborchd.
func (t *Tracer) TraceHTTPRequest(ctx context.Context, method, route string) (context.Context, trace.Span) {
	return t.Start(ctx, fmt.Sprintf("http.%s %s", method, route), trace.SpanKindServer,
		attribute.String("http.method", method),
		attribute.String("http.route", route),
	)
}

// WithSpan runs fn inside a span named name, recording any returned error.
func WithSpan(ctx context.Context, tracer *Tracer, name string, fn func(context.Context, trace.Span) error) error {
	ctx, span := tracer.Start(ctx, name, trace.SpanKindInternal)
	defer span.End()
	err := fn(ctx, span)
	tracer.RecordError(span, err)
	return err
}
