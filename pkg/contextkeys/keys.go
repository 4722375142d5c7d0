// Package contextkeys provides centralized context key definitions
//
// IMPORTANT: All context keys used across the application must be defined here.
// This prevents typos, documents dependencies, and makes key usage discoverable.
//
// USAGE PATTERN:
//   import "github.com/marmotbyte/spyglass/pkg/contextkeys"
//   ctx = contextkeys.WithRequestID(ctx, requestID)
//   requestID := contextkeys.GetRequestID(ctx)
package contextkeys

import "context"

// Key is the type for context keys to prevent collisions
type Key string

const (
	// RequestIDKey contains request ID string (UUID)
	// Set by: httputil.RequestIDMiddleware through observability.WithRequestID
	// Used by: observability.FromContext, response headers
	// Type: string
	RequestIDKey Key = "request_id"

	// LoggerKey contains *observability.Logger
	// Set by: httputil.LoggingMiddleware through observability.WithLogger
	// Used by: observability.GetLogger / FromContext
	// Type: *observability.Logger
	LoggerKey Key = "logger"

	// RequestStartTimeKey contains request start timestamp
	// Set by: httputil.LoggingMiddleware
	// Used by: Duration calculation in request logs
	// Type: time.Time
	RequestStartTimeKey Key = "request_start_time"
)

// Helper functions for type-safe context operations

// WithRequestID adds request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// WithLogger adds logger to the context. Typed as interface{} here so the
// package stays import-free; observability asserts the concrete type back.
func WithLogger(ctx context.Context, logger interface{}) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// WithRequestStartTime adds request start time to the context
func WithRequestStartTime(ctx context.Context, startTime interface{}) context.Context {
	return context.WithValue(ctx, RequestStartTimeKey, startTime)
}

// GetRequestID retrieves request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}
