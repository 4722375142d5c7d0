package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics holds OpenTelemetry metric instruments
type OTelMetrics struct {
	// Tool metrics
	toolCallsTotal   metric.Int64Counter
	toolCallDuration metric.Float64Histogram

	// Upstream analytics API metrics
	upstreamRequestsTotal   metric.Int64Counter
	upstreamRequestDuration metric.Float64Histogram
}

// NewOTelMetrics creates a new OTel metrics instance
func NewOTelMetrics() (*OTelMetrics, error) {
	meter := otel.Meter("github.com/marmotbyte/spyglass")

	m := &OTelMetrics{}
	var err error

	// Tool metrics
	m.toolCallsTotal, err = meter.Int64Counter(
		"rpc.tool.calls",
		metric.WithDescription("Total number of tool invocations"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tool_calls counter: %w", err)
	}

	m.toolCallDuration, err = meter.Float64Histogram(
		"rpc.tool.duration",
		metric.WithDescription("Tool invocation duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tool_duration histogram: %w", err)
	}

	// Upstream analytics API metrics
	m.upstreamRequestsTotal, err = meter.Int64Counter(
		"analytics.upstream.requests",
		metric.WithDescription("Total number of requests to the analytics Data API"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create upstream_requests counter: %w", err)
	}

	m.upstreamRequestDuration, err = meter.Float64Histogram(
		"analytics.upstream.duration",
		metric.WithDescription("Analytics Data API request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create upstream_duration histogram: %w", err)
	}

	return m, nil
}

// RecordToolCall records a tool invocation metric
func (m *OTelMetrics) RecordToolCall(ctx context.Context, tool, outcome string, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("rpc.tool", tool),
		attribute.String("rpc.outcome", outcome),
	}

	m.toolCallsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolCallDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordUpstreamRequest records an analytics Data API request metric
func (m *OTelMetrics) RecordUpstreamRequest(ctx context.Context, operation string, statusCode int, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("analytics.operation", operation),
		attribute.Int("http.status_code", statusCode),
	}

	m.upstreamRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.upstreamRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}
