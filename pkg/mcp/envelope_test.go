package mcp

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEnvelope(t *testing.T, raw string) *Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(raw), &env))
	return &env
}

// TestEnvelope_OperationName tests that the operation name resolves
// from every recognized location.
func TestEnvelope_OperationName(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{
			name:     "top-level name",
			raw:      `{"method":"tools/call","name":"run_report"}`,
			expected: "run_report",
		},
		{
			name:     "top-level tool_name",
			raw:      `{"method":"tools/call","tool_name":"run_report"}`,
			expected: "run_report",
		},
		{
			name:     "params name",
			raw:      `{"method":"tools/call","params":{"name":"run_report"}}`,
			expected: "run_report",
		},
		{
			name:     "params tool_name",
			raw:      `{"method":"tools/call","params":{"tool_name":"run_report"}}`,
			expected: "run_report",
		},
		{
			name:     "absent",
			raw:      `{"method":"tools/call"}`,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := decodeEnvelope(t, tt.raw)
			assert.Equal(t, tt.expected, env.OperationName())
		})
	}
}

// TestEnvelope_OperationNamePriority tests that higher-priority
// locations win when several carry a name.
func TestEnvelope_OperationNamePriority(t *testing.T) {
	env := decodeEnvelope(t, `{
		"name": "first",
		"tool_name": "second",
		"params": {"name": "third", "tool_name": "fourth"}
	}`)
	assert.Equal(t, "first", env.OperationName())

	env = decodeEnvelope(t, `{
		"tool_name": "second",
		"params": {"name": "third", "tool_name": "fourth"}
	}`)
	assert.Equal(t, "second", env.OperationName())

	env = decodeEnvelope(t, `{
		"params": {"name": "third", "tool_name": "fourth"}
	}`)
	assert.Equal(t, "third", env.OperationName())
}

// TestEnvelope_OperationArguments tests that arguments resolve from
// every recognized location and default to an empty map.
func TestEnvelope_OperationArguments(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected map[string]interface{}
	}{
		{
			name:     "top-level arguments",
			raw:      `{"arguments":{"limit":5}}`,
			expected: map[string]interface{}{"limit": float64(5)},
		},
		{
			name:     "params arguments",
			raw:      `{"params":{"arguments":{"limit":5}}}`,
			expected: map[string]interface{}{"limit": float64(5)},
		},
		{
			name:     "top-level args",
			raw:      `{"args":{"limit":5}}`,
			expected: map[string]interface{}{"limit": float64(5)},
		},
		{
			name:     "absent",
			raw:      `{}`,
			expected: map[string]interface{}{},
		},
		{
			name:     "present but empty",
			raw:      `{"arguments":{}}`,
			expected: map[string]interface{}{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := decodeEnvelope(t, tt.raw)
			args := env.OperationArguments()
			require.NotNil(t, args)
			assert.Equal(t, tt.expected, args)
		})
	}
}

// TestEnvelope_OperationArgumentsPriority tests that the arguments
// location priority is arguments, params.arguments, args.
func TestEnvelope_OperationArgumentsPriority(t *testing.T) {
	env := decodeEnvelope(t, `{
		"arguments": {"from": "arguments"},
		"params": {"arguments": {"from": "params"}},
		"args": {"from": "args"}
	}`)
	assert.Equal(t, "arguments", env.OperationArguments()["from"])

	env = decodeEnvelope(t, `{
		"params": {"arguments": {"from": "params"}},
		"args": {"from": "args"}
	}`)
	assert.Equal(t, "params", env.OperationArguments()["from"])

	env = decodeEnvelope(t, `{
		"args": {"from": "args"}
	}`)
	assert.Equal(t, "args", env.OperationArguments()["from"])
}

// TestEnvelope_WantsJSONRPC tests that only envelopes declaring a
// JSON-RPC version request wrapped responses.
func TestEnvelope_WantsJSONRPC(t *testing.T) {
	env := decodeEnvelope(t, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	assert.True(t, env.WantsJSONRPC())

	env = decodeEnvelope(t, `{"method":"tools/list"}`)
	assert.False(t, env.WantsJSONRPC())

	// An id alone does not opt in to wrapping.
	env = decodeEnvelope(t, `{"id":1,"method":"tools/list"}`)
	assert.False(t, env.WantsJSONRPC())
}

// TestEnvelope_RequestedProtocolVersion tests protocol version
// extraction from initialize params.
func TestEnvelope_RequestedProtocolVersion(t *testing.T) {
	env := decodeEnvelope(t, `{"method":"initialize","params":{"protocolVersion":"2025-03-26"}}`)
	assert.Equal(t, "2025-03-26", env.RequestedProtocolVersion())

	env = decodeEnvelope(t, `{"method":"initialize"}`)
	assert.Equal(t, "", env.RequestedProtocolVersion())
}

// TestEnvelope_PreservesRawID tests that request identifiers survive
// decoding without type coercion.
func TestEnvelope_PreservesRawID(t *testing.T) {
	env := decodeEnvelope(t, `{"jsonrpc":"2.0","id":7}`)
	assert.Equal(t, json.RawMessage(`7`), env.ID)

	env = decodeEnvelope(t, `{"jsonrpc":"2.0","id":"abc-123"}`)
	assert.Equal(t, json.RawMessage(`"abc-123"`), env.ID)
}
