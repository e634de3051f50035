// Package telemetry wires the OTLP/HTTP trace exporter the same way the
// teacher's tracer.go does, and provides a span-wrapping helper the
// rtree package uses around Insert/Search instead of the teacher's
// gorm-callback tracing plugin (this module has no ORM query boundary to
// hook; the R-tree traversal is the equivalent hot path).
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Config holds OpenTelemetry configuration.
type Config struct {
	ServiceName  string
	Environment  string
	OTLPEndpoint string
	Enabled      bool
	SamplingRate float64 // 1.0 = 100%, 0.1 = 10%
}

// InitTracer initializes the OpenTelemetry tracer provider with an OTLP
// HTTP exporter. Returns (nil, nil) when tracing is disabled.
func InitTracer(cfg Config) (*sdktrace.TracerProvider, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			attribute.String("service.name", cfg.ServiceName),
			attribute.String("deployment.environment", cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: failed to create resource: %w", err)
	}

	exporter, err := otlptracehttp.New(context.Background(),
		otlptracehttp.WithEndpoint(cfg.OTLPEndpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: failed to create OTLP exporter: %w", err)
	}

	sampler := sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SamplingRate))

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp, nil
}

// tracerName is the fixed instrumentation scope for every span this
// package starts.
const tracerName = "github.com/pdtgct/music-fingerprint/internal/rtree"

// StartSpan opens a span named op (e.g. "rtree.Insert", "rtree.Search")
// tagged with pageID, mirroring the teacher's per-operation span helpers
// in internal/telemetry/database.go. Callers must call the returned
// end func, typically via defer.
func StartSpan(ctx context.Context, op, pageID string) (context.Context, func(err *error)) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, op, trace.WithAttributes(
		attribute.String("fp.page_id", pageID),
	))
	return ctx, func(err *error) {
		if err != nil && *err != nil {
			span.RecordError(*err)
		}
		span.End()
	}
}
