// Package cli provides the spyglass-cli command-line client for the gateway.
//
// # Overview
//
// This package implements the `spyglass-cli` tool for developers to inspect
// and exercise a running gateway from the terminal: list the served tools,
// read their input schemas, invoke them one at a time, or replay a file of
// recorded envelopes concurrently.
//
// # Commands
//
// list: Show the tools the gateway serves
//
//	spyglass-cli list --gateway http://localhost:8080
//
// describe: Show one tool's description and input schema
//
//	spyglass-cli describe --tool run_report
//
// call: Invoke a tool
//
//	spyglass-cli call \
//		--tool run_report \
//		--args '{"dimensions":["pagePath"],"metrics":["activeUsers"],"limit":25}'
//
// Arguments can also come from a file, or stdin with "-":
//
//	spyglass-cli call --tool run_realtime --args-file query.json
//	cat query.json | spyglass-cli call --tool run_report --args-file -
//
// A JSON-RPC wrapped response can be requested:
//
//	spyglass-cli call --tool run_report --jsonrpc --id 42
//
// batch: Replay a JSONL file of envelopes, one response line per input line
//
//	spyglass-cli batch --file calls.jsonl --concurrency 8
//
// Each input line is either a full envelope or the {"name": ...,
// "arguments": ...} shorthand, which is wrapped into a call envelope.
// Replies print in input order regardless of completion order.
//
// # Configuration
//
// Gateway URL:
//
//	export SPYGLASS_GATEWAY_URL="https://gateway.example.com"
//	# Or use --gateway flag
//
// # Related Packages
//
//   - pkg/api: The HTTP surface this client speaks to
//   - pkg/async: Worker pool driving concurrent batch calls
package cli
