// Package telemetry wraps the OpenTelemetry trace API around the
// orchestrator's LLM and search calls, adapted from the teacher's
// internal/tracing/tracing.go. Unlike the teacher, it wires only the core
// go.opentelemetry.io/otel trace API (Tracer/Span/SpanContext) and never
// registers an SDK or OTLP exporter: the spec's Non-goals exclude the
// distributed-workflow/observability-backend surface the teacher's
// otlptracegrpc wiring exists to feed, but spans are still useful as an
// in-process call-tree a caller's own provider can pick up via
// otel.SetTracerProvider, so the API stays wired rather than dropped.
package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer oteltrace.Tracer

// Config names the service for the tracer handle. Enabled is honored only
// as a log message here; an actual exporter is the caller's concern.
type Config struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
}

// Initialize acquires a named tracer handle from whatever TracerProvider is
// globally registered (a no-op provider if none was set), so Start* helpers
// never panic regardless of whether the caller wired a real backend.
func Initialize(cfg Config, logger *zap.Logger) error {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "research-orchestrator"
	}
	tracer = otel.Tracer(cfg.ServiceName)
	if cfg.Enabled {
		logger.Info("tracing enabled", zap.String("service", cfg.ServiceName))
	} else {
		logger.Info("tracing using no-op provider", zap.String("service", cfg.ServiceName))
	}
	return nil
}

// W3CTraceparent generates a W3C traceparent header value for the span in ctx.
func W3CTraceparent(ctx context.Context) string {
	span := oteltrace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return ""
	}
	sc := span.SpanContext()
	return fmt.Sprintf("00-%s-%s-%02x", sc.TraceID().String(), sc.SpanID().String(), sc.TraceFlags())
}

// InjectTraceparent adds the W3C traceparent header to an outbound LLM or
// search HTTP request.
func InjectTraceparent(ctx context.Context, req *http.Request) {
	if traceparent := W3CTraceparent(ctx); traceparent != "" {
		req.Header.Set("traceparent", traceparent)
	}
}

// StartSpan starts a span named spanName, falling back to a fresh no-op
// tracer if Initialize was never called (e.g. in tests).
func StartSpan(ctx context.Context, spanName string) (context.Context, oteltrace.Span) {
	if tracer == nil {
		tracer = otel.Tracer("research-orchestrator")
	}
	return tracer.Start(ctx, spanName)
}

// StartHTTPSpan starts a span for an outbound LLM/search HTTP call.
func StartHTTPSpan(ctx context.Context, method, url string) (context.Context, oteltrace.Span) {
	if tracer == nil {
		tracer = otel.Tracer("research-orchestrator")
	}
	ctx, span := tracer.Start(ctx, fmt.Sprintf("HTTP %s", method))
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("url.full", url),
	)
	return ctx, span
}

// ParseTraceparent parses a W3C traceparent header.
func ParseTraceparent(traceparent string) (traceID, spanID string, flags byte, valid bool) {
	parts := strings.Split(traceparent, "-")
	if len(parts) != 4 || parts[0] != "00" {
		return "", "", 0, false
	}
	traceID = parts[1]
	spanID = parts[2]
	var flagsInt int
	if _, err := fmt.Sscanf(parts[3], "%02x", &flagsInt); err != nil {
		return "", "", 0, false
	}
	return traceID, spanID, byte(flagsInt), true
}
