package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmotbyte/spyglass/pkg/config"
	"github.com/marmotbyte/spyglass/pkg/mcp"
	"github.com/marmotbyte/spyglass/pkg/observability"
)

func testOperation(name string, executeErr error) *mcp.Operation {
	return &mcp.Operation{
		Name:        name,
		Description: "Operation for server tests",
		InputSchema: map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{},
		},
		Validate: func(args map[string]interface{}) (interface{}, error) {
			return args, nil
		},
		Execute: func(ctx context.Context, validated interface{}) (interface{}, error) {
			if executeErr != nil {
				return nil, executeErr
			}
			return map[string]interface{}{"rows": name}, nil
		},
	}
}

func newTestServer(t *testing.T, executeErr error) *httptest.Server {
	t.Helper()

	registry := mcp.NewRegistry(
		testOperation("run_report", executeErr),
		testOperation("run_realtime", executeErr),
	)
	dispatcher := mcp.NewDispatcher(registry, mcp.DispatcherOptions{
		ServerName:    "spyglass-test",
		ServerVersion: "0.0.0-test",
	})

	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	cfg := config.ServerConfig{
		MaxBodyBytes:       1 << 20,
		CORSAllowedOrigins: []string{"*"},
	}

	server := httptest.NewServer(NewServer(dispatcher, cfg, logger, metrics).Handler())
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, server *httptest.Server, path, body string) (*http.Response, string) {
	t.Helper()

	resp, err := http.Post(server.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(data)
}

// TestServer_ListTools tests that a POST enumeration request returns both
// registered operations under the tools and actions keys.
func TestServer_ListTools(t *testing.T) {
	server := newTestServer(t, nil)

	resp, body := postJSON(t, server, "/", `{"method":"tools/list"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var enum struct {
		Tools   []map[string]interface{} `json:"tools"`
		Actions []map[string]interface{} `json:"actions"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &enum))
	require.Len(t, enum.Tools, 2)
	require.Len(t, enum.Actions, 2)
	assert.Equal(t, "run_report", enum.Tools[0]["name"])
	assert.Equal(t, "run_realtime", enum.Tools[1]["name"])
	assert.Equal(t, enum.Tools, enum.Actions)
}

// TestServer_BothPathsServeDispatch tests that "/" and "/mcp" accept the
// same traffic.
func TestServer_BothPathsServeDispatch(t *testing.T) {
	server := newTestServer(t, nil)

	for _, path := range []string{"/", "/mcp"} {
		resp, body := postJSON(t, server, path, `{"method":"tools/list"}`)
		require.Equal(t, http.StatusOK, resp.StatusCode, "path %q", path)
		assert.Contains(t, body, `"run_report"`, "path %q", path)
	}
}

// TestServer_GetProbe tests that a body-less GET serves the enumeration,
// and that the method query parameter selects other verbs.
func TestServer_GetProbe(t *testing.T) {
	server := newTestServer(t, nil)

	resp, err := http.Get(server.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var enum struct {
		Tools []map[string]interface{} `json:"tools"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&enum))
	assert.Len(t, enum.Tools, 2)

	resp, err = http.Get(server.URL + "/mcp?method=initialize")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var init struct {
		ProtocolVersion string `json:"protocolVersion"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&init))
	assert.Equal(t, "2024-11-05", init.ProtocolVersion)
}

// TestServer_Initialize tests the JSON-RPC handshake over HTTP, echoing
// the client's protocol version inside a wrapped response.
func TestServer_Initialize(t *testing.T) {
	server := newTestServer(t, nil)

	resp, body := postJSON(t, server, "/mcp",
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26"}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var wrapped struct {
		JSONRPC string          `json:"jsonrpc"`
		ID      json.RawMessage `json:"id"`
		Result  struct {
			ProtocolVersion string `json:"protocolVersion"`
			ServerInfo      struct {
				Name string `json:"name"`
			} `json:"serverInfo"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &wrapped))
	assert.Equal(t, "2.0", wrapped.JSONRPC)
	assert.Equal(t, "1", string(wrapped.ID))
	assert.Equal(t, "2025-03-26", wrapped.Result.ProtocolVersion)
	assert.Equal(t, "spyglass-test", wrapped.Result.ServerInfo.Name)
}

// TestServer_ToolCall tests a successful tool invocation over HTTP in both
// response dialects.
func TestServer_ToolCall(t *testing.T) {
	server := newTestServer(t, nil)

	resp, body := postJSON(t, server, "/",
		`{"jsonrpc":"2.0","id":42,"method":"tools/call","params":{"name":"run_report","arguments":{}}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":42,"result":{"rows":"run_report"}}`, body)

	resp, body = postJSON(t, server, "/", `{"method":"tools/call","name":"run_realtime"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"rows":"run_realtime"}`, body)
}

// TestServer_MissingToolName tests the exact error envelope for a call
// without a tool name.
func TestServer_MissingToolName(t *testing.T) {
	server := newTestServer(t, nil)

	resp, body := postJSON(t, server, "/", `{"jsonrpc":"2.0","id":7,"method":"tools/call"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":7,"error":{"code":-32602,"message":"Missing tool name"}}`, body)

	resp, body = postJSON(t, server, "/", `{"method":"tools/call"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Missing tool name"}`, body)
}

// TestServer_UnknownTool tests that unknown tools surface the method-not-
// found code over HTTP 200.
func TestServer_UnknownTool(t *testing.T) {
	server := newTestServer(t, nil)

	resp, body := postJSON(t, server, "/",
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","name":"no_such_tool"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":3,"error":{"code":-32601,"message":"unknown tool: no_such_tool"}}`, body)
}

// TestServer_ExecuteErrorRidesHTTP200 tests that tool failures stay
// in-band rather than surfacing as HTTP errors.
func TestServer_ExecuteErrorRidesHTTP200(t *testing.T) {
	server := newTestServer(t, errors.New("upstream unreachable"))

	resp, body := postJSON(t, server, "/",
		`{"jsonrpc":"2.0","id":9,"method":"tools/call","name":"run_report"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":9,"error":{"code":-32603,"message":"upstream unreachable"}}`, body)
}

// TestServer_UnknownMethodFallsBack tests the enumeration fallback for
// methods the dispatcher does not recognize.
func TestServer_UnknownMethodFallsBack(t *testing.T) {
	server := newTestServer(t, nil)

	resp, body := postJSON(t, server, "/", `{"method":"resources/list"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var enum struct {
		Tools              []map[string]interface{} `json:"tools"`
		UnrecognizedMethod string                   `json:"unrecognizedMethod"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &enum))
	assert.Len(t, enum.Tools, 2)
	assert.Equal(t, "resources/list", enum.UnrecognizedMethod)
}

// TestServer_MalformedBody tests that an unreadable body is the one case
// answered with a 500.
func TestServer_MalformedBody(t *testing.T) {
	server := newTestServer(t, nil)

	resp, body := postJSON(t, server, "/", `{not valid json`)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"error":"internal server error"}`, body)
}

// TestServer_MethodNotAllowed tests that unsupported verbs receive a 405
// listing the allowed set.
func TestServer_MethodNotAllowed(t *testing.T) {
	server := newTestServer(t, nil)

	req, err := http.NewRequest(http.MethodDelete, server.URL+"/mcp", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, "GET, POST, OPTIONS", resp.Header.Get("Allow"))
}

// TestServer_Preflight tests that OPTIONS requests are answered with 204
// and CORS headers before reaching the router.
func TestServer_Preflight(t *testing.T) {
	server := newTestServer(t, nil)

	req, err := http.NewRequest(http.MethodOptions, server.URL+"/mcp", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "POST")
}

// TestServer_RequestIDHeader tests that every response carries a request
// ID, honoring one supplied by the caller.
func TestServer_RequestIDHeader(t *testing.T) {
	server := newTestServer(t, nil)

	resp, _ := postJSON(t, server, "/", `{"method":"tools/list"}`)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	req, err := http.NewRequest(http.MethodPost, server.URL+"/", strings.NewReader(`{}`))
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "req-1234")

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "req-1234", resp.Header.Get("X-Request-ID"))
}

// TestServer_NotFound tests that unknown paths are rejected rather than
// dispatched.
func TestServer_NotFound(t *testing.T) {
	server := newTestServer(t, nil)

	resp, body := postJSON(t, server, "/nope", `{"method":"tools/list"}`)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"not found"}`, body)
}

// TestServer_BodySizeLimit tests that oversized bodies fail decoding and
// surface as the generic 500.
func TestServer_BodySizeLimit(t *testing.T) {
	registry := mcp.NewRegistry(testOperation("run_report", nil))
	dispatcher := mcp.NewDispatcher(registry, mcp.DispatcherOptions{})
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	cfg := config.ServerConfig{
		MaxBodyBytes:       64,
		CORSAllowedOrigins: []string{"*"},
	}

	server := httptest.NewServer(NewServer(dispatcher, cfg, logger, metrics).Handler())
	defer server.Close()

	oversized := `{"method":"tools/call","name":"run_report","arguments":{"filler":"` +
		strings.Repeat("x", 256) + `"}}`
	resp, err := http.Post(server.URL+"/", "application/json", bytes.NewReader([]byte(oversized)))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

// TestServer_Router tests that the raw router is reachable for callers
// that assemble their own middleware.
func TestServer_Router(t *testing.T) {
	registry := mcp.NewRegistry(testOperation("run_report", nil))
	dispatcher := mcp.NewDispatcher(registry, mcp.DispatcherOptions{})
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	metrics := observability.NewMetrics(prometheus.NewRegistry())

	server := NewServer(dispatcher, config.ServerConfig{CORSAllowedOrigins: []string{"*"}, MaxBodyBytes: 1 << 20}, logger, metrics)
	require.NotNil(t, server.Router())
	require.Nil(t, server.RateLimiter())

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	server.Router().ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusOK, recorder.Code)
}

// TestServer_RateLimit tests that a configured per-client budget rejects
// requests past the limit with 429.
func TestServer_RateLimit(t *testing.T) {
	registry := mcp.NewRegistry(testOperation("run_report", nil))
	dispatcher := mcp.NewDispatcher(registry, mcp.DispatcherOptions{})
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	cfg := config.ServerConfig{
		MaxBodyBytes:       1 << 20,
		CORSAllowedOrigins: []string{"*"},
		RateLimitPerMinute: 1,
	}

	apiServer := NewServer(dispatcher, cfg, logger, metrics)
	require.NotNil(t, apiServer.RateLimiter())

	server := httptest.NewServer(apiServer.Handler())
	defer server.Close()

	resp, _ := postJSON(t, server, "/", `{"method":"tools/list"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get("X-RateLimit-Limit"))

	resp, body := postJSON(t, server, "/", `{"method":"tools/list"}`)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, body)
}
