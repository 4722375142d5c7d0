package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/marmotbyte/spyglass/pkg/async"
	"github.com/marmotbyte/spyglass/pkg/observability"
)

func newBatchCommand() *Command {
	cmd := &Command{
		Name:        "batch",
		Description: "Invoke tools from a JSONL file, one envelope per line",
		Flags:       flag.NewFlagSet("batch", flag.ExitOnError),
		Run:         runBatch,
	}

	cmd.Flags.String("gateway", defaultGateway(), "Gateway URL")
	cmd.Flags.String("file", "-", "JSONL input file (\"-\" for stdin)")
	cmd.Flags.Int("concurrency", 4, "Number of concurrent calls")
	cmd.Flags.Duration("timeout", 30*time.Second, "Per-call timeout")

	return cmd
}

// batchItem pairs an input line with its position so that replies can be
// printed in input order regardless of completion order.
type batchItem struct {
	index   int
	payload []byte
}

// readBatchLines parses the JSONL input. Blank lines are skipped; a line
// without a method field is treated as the {name, arguments} shorthand and
// wrapped into a call envelope.
func readBatchLines(r io.Reader) ([]batchItem, error) {
	var items []batchItem

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var envelope map[string]interface{}
		if err := json.Unmarshal(line, &envelope); err != nil {
			return nil, fmt.Errorf("line %d: invalid JSON: %w", lineNo, err)
		}

		if _, hasMethod := envelope["method"]; !hasMethod {
			envelope["method"] = "tools/call"
		}

		payload, err := json.Marshal(envelope)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		items = append(items, batchItem{index: len(items), payload: payload})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	return items, nil
}

func runBatch(args []string) error {
	cmd := newBatchCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	gateway := cmd.Flags.Lookup("gateway").Value.String()
	file := cmd.Flags.Lookup("file").Value.String()
	concurrency, err := strconv.Atoi(cmd.Flags.Lookup("concurrency").Value.String())
	if err != nil || concurrency < 1 {
		return fmt.Errorf("concurrency must be a positive integer")
	}
	timeout, err := time.ParseDuration(cmd.Flags.Lookup("timeout").Value.String())
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}

	var input io.Reader = os.Stdin
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return fmt.Errorf("failed to open input file: %w", err)
		}
		defer f.Close()
		input = f
	}

	items, err := readBatchLines(input)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return fmt.Errorf("no envelopes found in input")
	}

	logger := observability.NewLogger(observability.ErrorLevel, os.Stderr)
	replies := make([][]byte, len(items))

	errs := async.Batch(context.Background(), items, concurrency, "batch call", timeout, logger,
		func(ctx context.Context, item batchItem) error {
			body, err := dispatch(gateway, item.payload)
			if err != nil {
				return fmt.Errorf("call %d: %w", item.index+1, err)
			}
			replies[item.index] = body
			if message := replyError(body); message != "" {
				return fmt.Errorf("call %d: %s", item.index+1, message)
			}
			return nil
		})

	// Replies print in input order, one line each, so output is itself
	// valid JSONL.
	for _, reply := range replies {
		if reply == nil {
			fmt.Println(`{"error":"call failed before a reply was received"}`)
			continue
		}

		var compact bytes.Buffer
		if err := json.Compact(&compact, reply); err != nil {
			fmt.Println(string(reply))
			continue
		}
		fmt.Println(compact.String())
	}

	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return fmt.Errorf("%d of %d calls failed", len(errs), len(items))
	}

	fmt.Fprintf(os.Stderr, "Completed %d calls\n", len(items))
	return nil
}
