package cli

import (
	"flag"
	"fmt"
)

func newListCommand() *Command {
	cmd := &Command{
		Name:        "list",
		Description: "List the tools served by the gateway",
		Flags:       flag.NewFlagSet("list", flag.ExitOnError),
		Run:         runList,
	}

	cmd.Flags.String("gateway", defaultGateway(), "Gateway URL")

	return cmd
}

func runList(args []string) error {
	cmd := newListCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	gateway := cmd.Flags.Lookup("gateway").Value.String()

	tools, err := fetchTools(gateway)
	if err != nil {
		return err
	}

	fmt.Printf("Tools served by %s:\n\n", gateway)
	for _, tool := range tools {
		fmt.Printf("  %-15s %s\n", tool.Name, tool.Description)
	}
	fmt.Printf("\n%d tool(s)\n", len(tools))

	return nil
}
