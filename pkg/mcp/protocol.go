package mcp

import (
	"encoding/json"
	"fmt"
)

const (
	// JSONRPCVersion is the protocol version stamped on wrapped
	// responses.
	JSONRPCVersion = "2.0"

	// DefaultProtocolVersion is offered to clients that do not request
	// a specific protocol revision during the initialize handshake.
	DefaultProtocolVersion = "2024-11-05"
)

// JSON-RPC error codes surfaced to clients.
const (
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternal       = -32603
)

// RPCError is the error member of a JSON-RPC response.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("rpc error %d", e.Code)
	}
	return e.Message
}

// RPCResponse is a JSON-RPC wrapped reply. Exactly one of Result or
// Error is set.
type RPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// ErrorBody is the bare error reply for envelopes that did not declare
// a JSON-RPC version.
type ErrorBody struct {
	Error string `json:"error"`
}

// ServerInfo identifies this server during the initialize handshake.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ToolCapabilities declares which tool interactions the server
// supports. ListChanged is always false; the operation set never
// changes after startup, so no change notifications are emitted.
type ToolCapabilities struct {
	List        bool `json:"list"`
	Call        bool `json:"call"`
	ListChanged bool `json:"listChanged"`
}

// Capabilities is the capability declaration returned by initialize.
type Capabilities struct {
	Tools ToolCapabilities `json:"tools"`
}

// InitializeResult acknowledges an initialize handshake.
type InitializeResult struct {
	ProtocolVersion string       `json:"protocolVersion"`
	Capabilities    Capabilities `json:"capabilities"`
	ServerInfo      ServerInfo   `json:"serverInfo"`
}

// ToolDescriptor describes one registered operation in enumeration
// responses.
type ToolDescriptor struct {
	Name        string                 `json:"name"`
	Title       string                 `json:"title,omitempty"`
	Description string                 `json:"description,omitempty"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// EnumerationResult lists every registered operation. Tools and
// Actions carry identical descriptors; client dialects differ on which
// field they read.
type EnumerationResult struct {
	Tools   []ToolDescriptor `json:"tools"`
	Actions []ToolDescriptor `json:"actions"`

	// UnrecognizedMethod echoes a method that matched neither verb and
	// was answered with this listing instead of an error.
	UnrecognizedMethod string `json:"unrecognizedMethod,omitempty"`
}
