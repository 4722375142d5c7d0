package tools

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/marmotbyte/spyglass/pkg/ga4"
	"github.com/marmotbyte/spyglass/pkg/mcp"
)

// Windowed report defaults. Every field has either a default or is
// optional, so the advertised schema carries no required list.
const (
	defaultStartDate = "7daysAgo"
	defaultEndDate   = "today"
	defaultLimit     = 100
	minLimit         = 1
	maxLimit         = 10000
)

// ReportArgs are the validated arguments of the run_report operation.
type ReportArgs struct {
	DateRanges       []ga4.DateRange
	Dimensions       []string
	Metrics          []string
	Limit            int
	Offset           int
	OrderByMetric    string
	OrderDescending  bool
	FilterExpression json.RawMessage
	IncludeQuota     bool
}

// NewReportOperation builds the run_report operation over the given
// client provider.
func NewReportOperation(provider ClientProvider) *mcp.Operation {
	return &mcp.Operation{
		Name:        "run_report",
		Title:       "Run analytics report",
		Description: "Runs a windowed, paginated Google Analytics 4 report. Defaults to activeUsers by pagePath over the last 7 days.",
		InputSchema: reportSchema(),
		Validate:    validateReportArgs,
		Execute: func(ctx context.Context, validated interface{}) (interface{}, error) {
			client, err := provider.Client()
			if err != nil {
				return nil, err
			}
			return runReport(ctx, client, validated.(*ReportArgs))
		},
	}
}

func validateReportArgs(args map[string]interface{}) (interface{}, error) {
	dateRanges, err := dateRangesArg(args, "dateRanges")
	if err != nil {
		return nil, err
	}
	if dateRanges == nil {
		dateRanges = []ga4.DateRange{{StartDate: defaultStartDate, EndDate: defaultEndDate}}
	}

	dimensions, err := stringSliceArg(args, "dimensions")
	if err != nil {
		return nil, err
	}
	if dimensions == nil {
		dimensions = []string{"pagePath"}
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

	offset, err := intArg(args, "offset", 0)
	if err != nil {
		return nil, err
	}
	if offset < 0 {
		return nil, mcp.NewValidationError("offset", "offset must be non-negative")
	}

	orderByMetric, err := stringArg(args, "orderByMetric")
	if err != nil {
		return nil, err
	}

	orderDescending, err := boolArg(args, "orderDescending", true)
	if err != nil {
		return nil, err
	}

	filter, err := rawArg(args, "filterExpression")
	if err != nil {
		return nil, err
	}

	includeQuota, err := boolArg(args, "includeQuota", true)
	if err != nil {
		return nil, err
	}

	return &ReportArgs{
		DateRanges:       dateRanges,
		Dimensions:       dimensions,
		Metrics:          metrics,
		Limit:            limit,
		Offset:           offset,
		OrderByMetric:    orderByMetric,
		OrderDescending:  orderDescending,
		FilterExpression: filter,
		IncludeQuota:     includeQuota,
	}, nil
}

// runReport issues one report request and shapes the response. Paging
// parameters travel as strings on the wire.
func runReport(ctx context.Context, client *ga4.Client, args *ReportArgs) (*ga4.ReportResult, error) {
	req := &ga4.ReportRequest{
		DateRanges:          args.DateRanges,
		Dimensions:          dimensionNames(args.Dimensions),
		Metrics:             metricNames(args.Metrics),
		DimensionFilter:     args.FilterExpression,
		Limit:               strconv.Itoa(args.Limit),
		Offset:              strconv.Itoa(args.Offset),
		ReturnPropertyQuota: args.IncludeQuota,
	}

	if args.OrderByMetric != "" {
		req.OrderBys = []ga4.OrderBy{{
			Metric: &ga4.MetricOrderBy{MetricName: args.OrderByMetric},
			Desc:   args.OrderDescending,
		}}
	}

	resp, err := client.RunReport(ctx, req)
	if err != nil {
		return nil, err
	}
	return ga4.ShapeReport(resp), nil
}

func dimensionNames(names []string) []ga4.Dimension {
	out := make([]ga4.Dimension, 0, len(names))
	for _, name := range names {
		out = append(out, ga4.Dimension{Name: name})
	}
	return out
}

func metricNames(names []string) []ga4.Metric {
	out := make([]ga4.Metric, 0, len(names))
	for _, name := range names {
		out = append(out, ga4.Metric{Name: name})
	}
	return out
}

func reportSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"dateRanges": map[string]interface{}{
				"type":        "array",
				"description": "Date ranges to query. Defaults to one range from 7daysAgo through today.",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"startDate": map[string]interface{}{"type": "string"},
						"endDate":   map[string]interface{}{"type": "string"},
					},
					"required": []string{"startDate", "endDate"},
				},
			},
			"dimensions": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "Dimension names. Defaults to [\"pagePath\"].",
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
			"offset": map[string]interface{}{
				"type":        "integer",
				"minimum":     0,
				"description": "Row offset for pagination. Defaults to 0.",
			},
			"orderByMetric": map[string]interface{}{
				"type":        "string",
				"description": "Metric name to order rows by. Unordered when omitted.",
			},
			"orderDescending": map[string]interface{}{
				"type":        "boolean",
				"description": "Sort direction for orderByMetric. Defaults to true.",
			},
			"filterExpression": map[string]interface{}{
				"type":        "object",
				"description": "Analytics Data API FilterExpression, passed through verbatim as the dimension filter.",
			},
			"includeQuota": map[string]interface{}{
				"type":        "boolean",
				"description": "Include the property quota snapshot in the result. Defaults to true.",
			},
		},
	}
}
