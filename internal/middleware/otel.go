package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	"msacli/internal/infrastructure"
)

// OTelMiddleware creates a server span per request and records the
// HTTP request counter and latency histogram.
type OTelMiddleware struct {
	tracer          trace.Tracer
	requestCounter  metric.Int64Counter
	requestDuration metric.Float64Histogram
}

// NewOTelMiddleware builds the middleware from the initialized
// providers.
func NewOTelMiddleware(providers *infrastructure.OTelProviders) (*OTelMiddleware, error) {
	m := &OTelMiddleware{tracer: providers.Tracer}

	if providers.Meter != nil {
		var err error
		m.requestCounter, err = providers.Meter.Int64Counter(
			"http_requests_total",
			metric.WithDescription("Total number of HTTP requests"),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create request counter: %w", err)
		}
		m.requestDuration, err = providers.Meter.Float64Histogram(
			"http_request_duration_seconds",
			metric.WithDescription("HTTP request latency in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create request histogram: %w", err)
		}
	}

	return m, nil
}

// Handler is the chi middleware entrypoint.
func (m *OTelMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

		if m.tracer == nil {
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		ctx, span := m.tracer.Start(ctx, r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				semconv.HTTPRequestMethodKey.String(r.Method),
				semconv.HTTPRouteKey.String(r.URL.Path),
				semconv.UserAgentOriginalKey.String(r.UserAgent()),
			),
		)
		defer span.End()

		ctx = infrastructure.WithTraceID(ctx, span.SpanContext().TraceID().String())

		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r.WithContext(ctx))

		span.SetAttributes(semconv.HTTPResponseStatusCodeKey.Int(ww.status))
		if ww.status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(ww.status))
		}

		if m.requestCounter != nil {
			attrs := metric.WithAttributes(
				attribute.String("method", r.Method),
				attribute.String("path", r.URL.Path),
				attribute.String("status", strconv.Itoa(ww.status)),
			)
			m.requestCounter.Add(ctx, 1, attrs)
			m.requestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
		}
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
