// Package otel wires OpenTelemetry tracing for the client and daemon
package otel

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourorg/swapkit-go/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/yourorg/swapkit-go"

// InitTracer installs an OTLP/HTTP tracer provider when an endpoint is
// configured and returns its shutdown function
func InitTracer(cfg config.Config) func() {
	if cfg.OtelEndpoint == "" {
		return func() {}
	}

	ctx := context.Background()
	client := otlptracehttp.NewClient(
		otlptracehttp.WithEndpoint(cfg.OtelEndpoint),
		otlptracehttp.WithInsecure(),
	)

	exporter, err := otlptrace.New(ctx, client)
	if err != nil {
		logrus.Warnf("Failed to create OTLP exporter: %v", err)
		return func() {}
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
		)),
	)
	otel.SetTracerProvider(tp)
	logrus.Infof("Tracing enabled, exporting to %s", cfg.OtelEndpoint)

	return func() {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(ctx)
	}
}

// Tracer returns the module tracer from the global provider
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// RecordError marks the span in ctx as failed
func RecordError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
