package mcp

import "encoding/json"

// Envelope is one incoming call in any recognized dialect. Clients
// disagree on where the operation name and arguments live, so the
// accessor methods resolve each from a fixed priority order rather
// than trusting a single field.
type Envelope struct {
	JSONRPC  string          `json:"jsonrpc,omitempty"`
	ID       json.RawMessage `json:"id,omitempty"`
	Method   string          `json:"method,omitempty"`
	Name     string          `json:"name,omitempty"`
	ToolName string          `json:"tool_name,omitempty"`
	Params   *Params         `json:"params,omitempty"`

	Arguments map[string]interface{} `json:"arguments,omitempty"`
	Args      map[string]interface{} `json:"args,omitempty"`
}

// Params is the nested parameter object of JSON-RPC shaped envelopes.
type Params struct {
	Name            string                 `json:"name,omitempty"`
	ToolName        string                 `json:"tool_name,omitempty"`
	Arguments       map[string]interface{} `json:"arguments,omitempty"`
	ProtocolVersion string                 `json:"protocolVersion,omitempty"`
}

// WantsJSONRPC reports whether the envelope declared a JSON-RPC
// version. Declaring one forces the wrapped response shape; every
// reply mirrors this choice.
func (e *Envelope) WantsJSONRPC() bool {
	return e.JSONRPC != ""
}

// OperationName resolves the operation name for call-verb envelopes.
// Locations are checked in priority order: name, tool_name,
// params.name, params.tool_name. Returns "" when none is present.
func (e *Envelope) OperationName() string {
	if e.Name != "" {
		return e.Name
	}
	if e.ToolName != "" {
		return e.ToolName
	}
	if e.Params != nil {
		if e.Params.Name != "" {
			return e.Params.Name
		}
		if e.Params.ToolName != "" {
			return e.Params.ToolName
		}
	}
	return ""
}

// OperationArguments resolves the argument object for call-verb
// envelopes, checking arguments, params.arguments, then args. Absent
// arguments resolve to an empty map, never nil.
func (e *Envelope) OperationArguments() map[string]interface{} {
	if e.Arguments != nil {
		return e.Arguments
	}
	if e.Params != nil && e.Params.Arguments != nil {
		return e.Params.Arguments
	}
	if e.Args != nil {
		return e.Args
	}
	return map[string]interface{}{}
}

// RequestedProtocolVersion returns the protocol revision the client
// asked for during initialize, or "" when unspecified.
func (e *Envelope) RequestedProtocolVersion() string {
	if e.Params == nil {
		return ""
	}
	return e.Params.ProtocolVersion
}
