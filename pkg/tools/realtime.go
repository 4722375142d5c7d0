package tools

import (
	"context"
	"strconv"

	"github.com/marmotbyte/spyglass/pkg/ga4"
	"github.com/marmotbyte/spyglass/pkg/mcp"
)

// RealtimeArgs are the validated arguments of the run_realtime
// operation. Realtime queries carry no window, ordering, filter, or
// quota options.
type RealtimeArgs struct {
	Dimensions []string
	Metrics    []string
	Limit      int
}

// NewRealtimeOperation builds the run_realtime operation over the
// given client provider.
func NewRealtimeOperation(provider ClientProvider) *mcp.Operation {
	return &mcp.Operation{
		Name:        "run_realtime",
		Title:       "Run realtime snapshot",
		Description: "Runs a Google Analytics 4 realtime report of current activity. Defaults to activeUsers by country.",
		InputSchema: realtimeSchema(),
		Validate:    validateRealtimeArgs,
		Execute: func(ctx context.Context, validated interface{}) (interface{}, error) {
			client, err := provider.Client()
			if err != nil {
				return nil, err
			}
			return runRealtime(ctx, client, validated.(*RealtimeArgs))
		},
	}
}

func validateRealtimeArgs(args map[string]interface{}) (interface{}, error) {
	dimensions, err := stringSliceArg(args, "dimensions")
	if err != nil {
		return nil, err
	}
	if dimensions == nil {
		dimensions = []string{"country"}
	}

	metrics, err := stringSliceArg(args, "metrics")
	if err != nil {
		return nil, err
	}
	if metrics == nil {
		metrics = []string{"activeUsers"}
	}

	limit, err := intArg(args, "limit", defaultLimit)
	if err != nil {
		return nil, err
	}
	if limit < minLimit || limit > maxLimit {
		return nil, mcp.NewValidationError("limit", "limit must be between %d and %d", minLimit, maxLimit)
	}

	return &RealtimeArgs{
		Dimensions: dimensions,
		Metrics:    metrics,
		Limit:      limit,
	}, nil
}

func runRealtime(ctx context.Context, client *ga4.Client, args *RealtimeArgs) (*ga4.RealtimeResult, error) {
	req := &ga4.RealtimeRequest{
		Dimensions: dimensionNames(args.Dimensions),
		Metrics:    metricNames(args.Metrics),
		Limit:      strconv.Itoa(args.Limit),
	}

	resp, err := client.RunRealtimeReport(ctx, req)
	if err != nil {
		return nil, err
	}
	return ga4.ShapeRealtime(resp), nil
}

func realtimeSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"dimensions": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "Dimension names. Defaults to [\"country\"].",
			},
			"metrics": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "Metric names. Defaults to [\"activeUsers\"].",
			},
			"limit": map[string]interface{}{
				"type":        "integer",
				"minimum":     minLimit,
				"maximum":     maxLimit,
				"description": "Maximum rows to return. Defaults to 100.",
			},
		},
	}
}
