package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/marmotbyte/spyglass/pkg/config"
	"github.com/marmotbyte/spyglass/pkg/httputil"
	"github.com/marmotbyte/spyglass/pkg/mcp"
	"github.com/marmotbyte/spyglass/pkg/observability"
)

// Server exposes the dispatcher over HTTP. Both "/" and "/mcp" accept the
// same traffic so that clients configured with either endpoint work without
// a redirect.
type Server struct {
	dispatcher *mcp.Dispatcher
	router     *mux.Router
	logger     *observability.Logger
	metrics    *observability.Metrics
	limiter    *httputil.RateLimiter
	cfg        config.ServerConfig
}

// NewServer creates an HTTP server around the given dispatcher
func NewServer(dispatcher *mcp.Dispatcher, cfg config.ServerConfig, logger *observability.Logger, metrics *observability.Metrics) *Server {
	s := &Server{
		dispatcher: dispatcher,
		router:     mux.NewRouter(),
		logger:     logger,
		metrics:    metrics,
		cfg:        cfg,
	}

	if cfg.RateLimitPerMinute > 0 {
		s.limiter = httputil.NewRateLimiter(httputil.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimitPerMinute,
			WindowDuration:    time.Minute,
			BurstSize:         cfg.RateLimitBurst,
		})
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	for _, path := range []string{"/", "/mcp"} {
		s.router.HandleFunc(path, s.handlePost).Methods("POST")
		s.router.HandleFunc(path, s.handleGet).Methods("GET")
	}

	// OPTIONS never reaches these handlers; the CORS middleware answers
	// preflight requests with 204 before routing.
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteMethodNotAllowed(w, "GET", "POST", "OPTIONS")
	})
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteErrorMessage(w, http.StatusNotFound, "not found")
	})
}

// Handler returns the router wrapped in the middleware chain
func (s *Server) Handler() http.Handler {
	middlewares := []func(http.Handler) http.Handler{
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware(s.logger),
		observability.HTTPMetricsMiddleware(s.metrics),
		httputil.RecoveryMiddleware(s.logger),
		httputil.CORSMiddleware(s.cfg.CORSAllowedOrigins),
	}
	if s.limiter != nil {
		middlewares = append(middlewares, httputil.RateLimitMiddleware(s.limiter))
	}
	middlewares = append(middlewares, httputil.MaxBytesMiddleware(s.cfg.MaxBodyBytes))

	return httputil.Chain(middlewares...)(s.router)
}

// RateLimiter returns the per-client request limiter, or nil when rate
// limiting is disabled.
func (s *Server) RateLimiter() *httputil.RateLimiter {
	return s.limiter
}

// Router returns the underlying router without middleware
func (s *Server) Router() *mux.Router {
	return s.router
}

// handlePost answers JSON-RPC and tool-call requests. Dispatch outcomes,
// including tool errors, ride an HTTP 200; only an unreadable body produces
// a 500 so that callers can always distinguish transport faults from
// in-band errors.
func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	var env mcp.Envelope
	if err := httputil.ParseJSON(r, &env); err != nil {
		observability.FromContext(r.Context()).WithError(err).Warn("failed to parse request body")
		httputil.WriteErrorMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}

	reply := s.dispatcher.Dispatch(r.Context(), &env)
	httputil.WriteJSON(w, http.StatusOK, reply)
}

// handleGet serves probe requests. The optional method query parameter is
// dispatched as if it had arrived in a POST body, so a plain browser visit
// or a curl without a body still yields the tool listing.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	env := &mcp.Envelope{Method: httputil.ParseQueryString(r, "method", "")}

	reply := s.dispatcher.Dispatch(r.Context(), env)
	httputil.WriteJSON(w, http.StatusOK, reply)
}
