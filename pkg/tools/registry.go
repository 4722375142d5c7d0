package tools

import (
	"github.com/marmotbyte/spyglass/pkg/ga4"
	"github.com/marmotbyte/spyglass/pkg/mcp"
)

// ClientProvider supplies the analytics client. Resolution happens per
// call, so a process without credentials still serves enumeration and
// handshake requests; only invocations fail, with a ConfigError.
type ClientProvider interface {
	Client() (*ga4.Client, error)
}

// NewRegistry builds the operation registry. The operation set is
// fixed at the two analytics queries for the lifetime of the process.
func NewRegistry(provider ClientProvider) *mcp.Registry {
	return mcp.NewRegistry(
		NewReportOperation(provider),
		NewRealtimeOperation(provider),
	)
}
