// Package httputil provides HTTP utilities for standardized request/response handling.
//
// # Overview
//
// This package offers helper functions for JSON encoding/decoding, error responses,
// and the middleware stack shared by the API and operations servers.
//
// # Response Helpers
//
// JSON responses:
//
//	httputil.WriteJSON(w, http.StatusOK, data)
//
// Error responses:
//
//	httputil.WriteErrorMessage(w, http.StatusInternalServerError, "internal server error")
//	httputil.WriteMethodNotAllowed(w, "GET", "POST", "OPTIONS")
//
// WriteErrorMessage produces the {"error": message} body shape, which is
// also the bare error envelope returned by the dispatch endpoint for
// requests that did not declare a JSON-RPC version.
//
// # Request Parsing
//
//	var env mcp.Envelope
//	if err := httputil.ParseJSON(r, &env); err != nil {
//		httputil.WriteErrorMessage(w, http.StatusInternalServerError, "internal server error")
//		return
//	}
//
//	method := httputil.ParseQueryString(r, "method", "")
//
// # Middleware
//
//	httputil.Chain(
//		httputil.RequestIDMiddleware,
//		httputil.LoggingMiddleware(logger),
//		httputil.RecoveryMiddleware(logger),
//		httputil.CORSMiddleware([]string{"*"}),
//		httputil.RateLimitMiddleware(limiter),
//		httputil.MaxBytesMiddleware(1*1024*1024),
//	)
//
// RequestIDMiddleware honors a caller-supplied X-Request-ID header and
// otherwise assigns a UUID; the ID is echoed in the response headers and
// attached to the request context for logging.
//
// RateLimitMiddleware enforces a per-client token bucket keyed by IP
// (first X-Forwarded-For hop, X-Real-IP, then the socket address) and
// answers exhausted budgets with 429 plus Retry-After.
//
// # Related Packages
//
//   - pkg/observability: Logger carried through the request context
//   - pkg/contextkeys: Context key definitions used by the middleware
package httputil
