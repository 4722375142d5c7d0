// Package api provides the HTTP server that exposes the spyglass dispatch
// endpoint.
//
// # Overview
//
// This package implements the outward-facing HTTP layer. It accepts tool
// calls and JSON-RPC requests on "/" and "/mcp", hands every decoded
// envelope to the dispatcher in pkg/mcp, and writes whatever reply the
// dispatcher produced. The server itself holds no protocol knowledge; verb
// classification, tool resolution, and response dialect selection all live
// behind the Dispatcher.
//
// # HTTP Contract
//
// The endpoint surface is intentionally small:
//
//	POST /      - Dispatch a JSON body (tool call, enumeration, handshake)
//	POST /mcp   - Identical to POST /
//	GET  /      - Probe; an optional ?method= parameter selects the verb
//	GET  /mcp   - Identical to GET /
//	OPTIONS *   - CORS preflight, answered with 204 by middleware
//
// Every dispatch outcome, including tool errors and unknown-tool errors,
// is written with HTTP status 200; the error travels inside the body in
// the dialect the caller used. The only 500 this server produces by itself
// is for a request body that cannot be decoded at all. Unsupported verbs
// receive a 405 with an Allow header listing GET, POST, and OPTIONS.
//
// # Middleware
//
// Handler wraps the router in the shared middleware chain from pkg/httputil:
// request IDs, request logging, Prometheus metrics, panic recovery, CORS,
// an optional per-client rate limit (enabled when RateLimitPerMinute is set
// in the server config), and a request body size cap. Handlers therefore run
// with a request-scoped logger already present in the context.
//
// # Usage Example
//
//	registry := tools.NewRegistry(provider)
//	dispatcher := mcp.NewDispatcher(registry, mcp.DispatcherOptions{})
//	server := api.NewServer(dispatcher, cfg.Server, logger, metrics)
//	http.ListenAndServe(":8080", server.Handler())
//
// # Related Packages
//
//   - pkg/mcp: Envelope decoding, verb classification, and dispatch
//   - pkg/tools: The operations served by the dispatcher
//   - pkg/httputil: Response helpers and the middleware chain
//   - pkg/cli: Subcommands for driving a running gateway from a terminal
package api
