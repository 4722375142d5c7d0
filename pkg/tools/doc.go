// Package tools defines the analytics operations exposed through the
// gateway.
//
// # Overview
//
// Exactly two operations are registered: run_report, a windowed and
// paginated report, and run_realtime, a snapshot of current activity.
// Each operation bundles its advertised JSON-Schema, a validator that
// applies defaults and rejects out-of-range arguments, and an executor
// that issues one Analytics Data API call and shapes the response.
//
// Every argument of both operations has a default or is optional, so
// a call with an empty argument object succeeds. Validators name the
// offending field in their errors and never let an invalid call reach
// the remote API.
//
// # Related Packages
//
//   - pkg/mcp: the registry and dispatcher these operations plug into
//   - pkg/ga4: the analytics client and response shaping
package tools
