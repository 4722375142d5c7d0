package cli

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"strings"
)

func newDescribeCommand() *Command {
	cmd := &Command{
		Name:        "describe",
		Description: "Show a tool's description and input schema",
		Flags:       flag.NewFlagSet("describe", flag.ExitOnError),
		Run:         runDescribe,
	}

	cmd.Flags.String("gateway", defaultGateway(), "Gateway URL")
	cmd.Flags.String("tool", "", "Tool name")

	return cmd
}

func runDescribe(args []string) error {
	cmd := newDescribeCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	gateway := cmd.Flags.Lookup("gateway").Value.String()
	tool := cmd.Flags.Lookup("tool").Value.String()

	if tool == "" {
		return fmt.Errorf("tool is required")
	}

	tools, err := fetchTools(gateway)
	if err != nil {
		return err
	}

	for _, listing := range tools {
		if !strings.EqualFold(listing.Name, tool) {
			continue
		}

		fmt.Printf("Name:        %s\n", listing.Name)
		if listing.Title != "" {
			fmt.Printf("Title:       %s\n", listing.Title)
		}
		if listing.Description != "" {
			fmt.Printf("Description: %s\n", listing.Description)
		}

		if len(listing.InputSchema) > 0 {
			var schema bytes.Buffer
			if err := json.Indent(&schema, listing.InputSchema, "", "  "); err != nil {
				return fmt.Errorf("failed to format input schema: %w", err)
			}
			fmt.Printf("\nInput schema:\n%s\n", schema.String())
		}

		return nil
	}

	return fmt.Errorf("unknown tool: %s", tool)
}
