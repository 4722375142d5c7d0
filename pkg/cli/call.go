package cli

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
)

func newCallCommand() *Command {
	cmd := &Command{
		Name:        "call",
		Description: "Invoke a tool on the gateway",
		Flags:       flag.NewFlagSet("call", flag.ExitOnError),
		Run:         runCall,
	}

	cmd.Flags.String("gateway", defaultGateway(), "Gateway URL")
	cmd.Flags.String("tool", "", "Tool name")
	cmd.Flags.String("args", "", "Tool arguments as inline JSON")
	cmd.Flags.String("args-file", "", "Read tool arguments from a JSON file (\"-\" for stdin)")
	cmd.Flags.Bool("jsonrpc", false, "Request a JSON-RPC wrapped response")
	cmd.Flags.String("id", "1", "JSON-RPC request id, used with -jsonrpc")

	return cmd
}

// loadArguments resolves the tool arguments from the inline flag or the
// file flag. Both empty means no arguments, letting every field default.
func loadArguments(inline, file string) (map[string]interface{}, error) {
	if inline != "" && file != "" {
		return nil, fmt.Errorf("args and args-file are mutually exclusive")
	}

	var raw []byte
	switch {
	case inline != "":
		raw = []byte(inline)
	case file == "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read arguments from stdin: %w", err)
		}
		raw = data
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read arguments file: %w", err)
		}
		raw = data
	default:
		return map[string]interface{}{}, nil
	}

	var arguments map[string]interface{}
	if err := json.Unmarshal(raw, &arguments); err != nil {
		return nil, fmt.Errorf("arguments must be a JSON object: %w", err)
	}

	return arguments, nil
}

func runCall(args []string) error {
	cmd := newCallCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	gateway := cmd.Flags.Lookup("gateway").Value.String()
	tool := cmd.Flags.Lookup("tool").Value.String()
	inlineArgs := cmd.Flags.Lookup("args").Value.String()
	argsFile := cmd.Flags.Lookup("args-file").Value.String()
	wantJSONRPC := cmd.Flags.Lookup("jsonrpc").Value.String() == "true"
	requestID := cmd.Flags.Lookup("id").Value.String()

	if tool == "" {
		return fmt.Errorf("tool is required")
	}

	arguments, err := loadArguments(inlineArgs, argsFile)
	if err != nil {
		return err
	}

	envelope := map[string]interface{}{
		"method":    "tools/call",
		"name":      tool,
		"arguments": arguments,
	}
	if wantJSONRPC {
		envelope["jsonrpc"] = "2.0"
		envelope["id"] = json.RawMessage(encodeRequestID(requestID))
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	body, err := dispatch(gateway, payload)
	if err != nil {
		return err
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		// Not JSON; print as received
		fmt.Println(string(body))
	} else {
		fmt.Println(pretty.String())
	}

	if message := replyError(body); message != "" {
		return fmt.Errorf("tool call failed: %s", message)
	}

	return nil
}

// encodeRequestID renders the id flag as a JSON value, keeping numeric
// ids numeric on the wire.
func encodeRequestID(id string) []byte {
	if json.Valid([]byte(id)) {
		return []byte(id)
	}
	quoted, _ := json.Marshal(id)
	return quoted
}
