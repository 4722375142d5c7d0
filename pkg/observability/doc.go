// Package observability provides structured logging, Prometheus metrics, and OpenTelemetry tracing.
//
// # Overview
//
// This package centralizes observability infrastructure including JSON logging, metrics
// collection, health checks, graceful shutdown, and distributed tracing integration.
//
// # Structured Logging
//
// Create logger:
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.Infof("Server started on port %s", port)
//
// Context-aware logging:
//
//	logger.WithField("request_id", reqID).WithError(err).Error("Dispatch failed")
//
// # Prometheus Metrics
//
// Initialize metrics:
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	metrics.ToolCallsTotal.WithLabelValues("run_report", "success").Inc()
//	metrics.UpstreamRequestDuration.WithLabelValues("runReport").Observe(0.123)
//
// # Health Checks
//
// Configure health checker:
//
//	checker := observability.NewHealthChecker(version)
//	checker.RegisterOptionalCheck("ga4_credentials", probe)
//	status := checker.Check(ctx)
//
// # OpenTelemetry
//
// Initialize tracing:
//
//	providers, err := observability.InitOTel(ctx, observability.OTelConfig{
//		Enabled:     true,
//		ServiceName: "spyglass",
//		Endpoint:    "otel-collector:4317",
//	}, logger)
//	defer observability.ShutdownOTel(ctx, providers, logger)
//
// # Related Packages
//
//   - pkg/config: Observability configuration
//   - pkg/httputil: Request logging and metrics middleware
package observability
