package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
)

// defaultGateway resolves the gateway URL flag default, honoring the
// SPYGLASS_GATEWAY_URL environment variable.
func defaultGateway() string {
	if url := os.Getenv("SPYGLASS_GATEWAY_URL"); url != "" {
		return url
	}
	return "http://localhost:8080"
}

// dispatch posts one envelope to the gateway and returns the raw response
// body. The gateway answers dispatch outcomes with HTTP 200; any other
// status is a transport fault.
func dispatch(gateway string, payload []byte) ([]byte, error) {
	resp, err := http.Post(gateway+"/mcp", "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to reach gateway: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway error: %s: %s", resp.Status, string(body))
	}

	return body, nil
}

// toolListing is the descriptor shape served by the enumeration verb
type toolListing struct {
	Name        string          `json:"name"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// fetchTools asks the gateway for its tool listing
func fetchTools(gateway string) ([]toolListing, error) {
	body, err := dispatch(gateway, []byte(`{"method":"tools/list"}`))
	if err != nil {
		return nil, err
	}

	var enumeration struct {
		Tools []toolListing `json:"tools"`
	}
	if err := json.Unmarshal(body, &enumeration); err != nil {
		return nil, fmt.Errorf("failed to parse tool listing: %w", err)
	}

	return enumeration.Tools, nil
}

// replyError extracts an in-band error from a dispatch reply, covering
// both the bare {"error": "..."} shape and the JSON-RPC wrapped one.
// Returns the empty string when the reply is a success.
func replyError(body []byte) string {
	var probe struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &probe); err != nil || len(probe.Error) == 0 {
		return ""
	}

	var message string
	if err := json.Unmarshal(probe.Error, &message); err == nil {
		return message
	}

	var wrapped struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(probe.Error, &wrapped); err == nil && wrapped.Message != "" {
		return wrapped.Message
	}

	return string(probe.Error)
}
