// Package mcp implements the request-normalization and dispatch layer
// of the gateway.
//
// # Overview
//
// Conversational-assistant clients speak several dialects of the same
// two-verb tool protocol. Method names vary (tools/list, actions/list,
// list, tools.call, invoke), the operation name may live at the
// envelope top level or inside params, and arguments may arrive under
// arguments, params.arguments, or args. The dispatcher accepts any of
// these spellings and maps them deterministically onto a fixed set of
// registered operations.
//
// # Envelope Handling
//
// Envelope models one incoming call. Its accessor methods resolve the
// operation name and arguments from their priority-ordered candidate
// locations. Replies mirror the request dialect: envelopes that
// declared a JSON-RPC version receive {jsonrpc, id, result|error}
// wrapping, all others receive the bare result or a bare {error}
// object.
//
// # Dispatch Policy
//
// The initialize and notifications/initialized handshake methods are
// short-circuited before verb normalization. Every other method is
// case-folded, whitespace-stripped, and namespace-normalized, then
// matched against the list-verb and call-verb alias sets. Methods that
// match neither are answered with the enumeration listing rather than
// an error.
//
// Operations execute only after their own validation passes.
// Validation failures, unknown operation names, and upstream failures
// all surface as in-band error replies with JSON-RPC codes -32602,
// -32601, and -32603 respectively.
//
// # Registry
//
// Registry is an immutable lookup table built once at startup from
// Operation values. Name lookups are separator-insensitive, so
// run_report and runReport address the same operation.
//
// # Related Packages
//
//   - pkg/tools: the registered analytics operations
//   - pkg/api: HTTP transport in front of the dispatcher
//   - pkg/cli: client subcommands speaking to a running gateway
package mcp
