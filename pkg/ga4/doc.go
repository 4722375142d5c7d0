// Package ga4 talks to the Google Analytics Data API v1beta for a single
// GA4 property.
//
// # Overview
//
// This package covers credential resolution, the authenticated HTTP
// client, the two query operations (runReport and runRealtimeReport), and
// the shaping of raw API responses into the flat header/row form served
// to callers.
//
// # Credentials
//
// Credentials resolve from either a full service-account key document or
// a split email/key pair, in that order of precedence:
//
//	creds, err := cfg.ResolveCredentials()
//	if err != nil {
//		// *ConfigError: nothing resolvable or malformed document
//	}
//
// Resolution is lazy. A process without credentials starts fine and
// serves enumeration and handshake calls; only an operation call fails,
// with the ConfigError surfaced in that call's error envelope.
//
// # Client
//
// The Provider memoizes one client per process and tolerates racing
// first constructions:
//
//	provider := ga4.NewProvider(cfg, ga4.ClientOptions{Logger: logger, Metrics: metrics})
//
//	client, err := provider.Client()
//	resp, err := client.RunReport(ctx, &ga4.ReportRequest{...})
//
// Remote failures of any kind (transport, auth, quota, malformed request)
// surface as *UpstreamError with the remote response carried verbatim.
// The client never retries.
//
// # Shaping
//
// ShapeReport and ShapeRealtime flatten responses into an ordered header
// list (dimensions then metrics, in server order) and string-valued rows:
//
//	result := ga4.ShapeReport(resp)
//	// result.Headers: [{kind:"dimension", name:"pagePath"}, {kind:"metric", name:"activeUsers"}]
//	// result.Rows:    [["/" , "123"], ...]
//
// result.Sampled reports whether the server matched more rows than it
// returned.
//
// # Related Packages
//
//   - pkg/tools: Operation definitions built on this client
//   - pkg/observability: Upstream request metrics
package ga4
