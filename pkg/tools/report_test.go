package tools

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmotbyte/spyglass/pkg/ga4"
	"github.com/marmotbyte/spyglass/pkg/mcp"
	"github.com/marmotbyte/spyglass/pkg/observability"
)

type stubProvider struct {
	client *ga4.Client
	err    error
}

func (p *stubProvider) Client() (*ga4.Client, error) {
	return p.client, p.err
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testContext() context.Context {
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	return observability.WithLogger(context.Background(), logger)
}

// stubClient builds a real analytics client pointed at a local stub of
// the Data API.
func stubClient(t *testing.T, handler http.Handler) *ga4.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := ga4.NewClient(ga4.Config{PropertyID: "123456"}, ga4.ClientOptions{
		HTTPClient: server.Client(),
		BaseURL:    server.URL,
		Logger:     testLogger(),
	})
	require.NoError(t, err)
	return client
}

const cannedReportResponse = `{
	"dimensionHeaders": [{"name": "pagePath"}],
	"metricHeaders": [{"name": "activeUsers", "type": "TYPE_INTEGER"}],
	"rows": [
		{"dimensionValues": [{"value": "/"}], "metricValues": [{"value": "42"}]},
		{"dimensionValues": [{"value": "/docs"}], "metricValues": [{"value": "7"}]}
	],
	"rowCount": 2,
	"propertyQuota": {"tokensPerDay": {"consumed": 1, "remaining": 24999}}
}`

// TestValidateReportArgs_Defaults tests that an empty argument object
// validates to the documented defaults.
func TestValidateReportArgs_Defaults(t *testing.T) {
	validated, err := validateReportArgs(map[string]interface{}{})
	require.NoError(t, err)

	args, ok := validated.(*ReportArgs)
	require.True(t, ok)
	assert.Equal(t, []ga4.DateRange{{StartDate: "7daysAgo", EndDate: "today"}}, args.DateRanges)
	assert.Equal(t, []string{"pagePath"}, args.Dimensions)
	assert.Equal(t, []string{"activeUsers"}, args.Metrics)
	assert.Equal(t, 100, args.Limit)
	assert.Equal(t, 0, args.Offset)
	assert.Empty(t, args.OrderByMetric)
	assert.True(t, args.OrderDescending)
	assert.Nil(t, args.FilterExpression)
	assert.True(t, args.IncludeQuota)
}

// TestValidateReportArgs_Overrides tests that supplied arguments
// replace the defaults.
func TestValidateReportArgs_Overrides(t *testing.T) {
	validated, err := validateReportArgs(map[string]interface{}{
		"dateRanges": []interface{}{
			map[string]interface{}{"startDate": "2026-01-01", "endDate": "2026-01-31"},
		},
		"dimensions":      []interface{}{"country", "deviceCategory"},
		"metrics":         []interface{}{"sessions"},
		"limit":           float64(250),
		"offset":          float64(50),
		"orderByMetric":   "sessions",
		"orderDescending": false,
		"filterExpression": map[string]interface{}{
			"filter": map[string]interface{}{"fieldName": "country"},
		},
		"includeQuota": false,
	})
	require.NoError(t, err)

	args := validated.(*ReportArgs)
	assert.Equal(t, []ga4.DateRange{{StartDate: "2026-01-01", EndDate: "2026-01-31"}}, args.DateRanges)
	assert.Equal(t, []string{"country", "deviceCategory"}, args.Dimensions)
	assert.Equal(t, []string{"sessions"}, args.Metrics)
	assert.Equal(t, 250, args.Limit)
	assert.Equal(t, 50, args.Offset)
	assert.Equal(t, "sessions", args.OrderByMetric)
	assert.False(t, args.OrderDescending)
	assert.JSONEq(t, `{"filter":{"fieldName":"country"}}`, string(args.FilterExpression))
	assert.False(t, args.IncludeQuota)
}

// TestValidateReportArgs_LimitBounds tests the limit range check.
func TestValidateReportArgs_LimitBounds(t *testing.T) {
	for _, limit := range []interface{}{float64(0), float64(10001), float64(-5)} {
		_, err := validateReportArgs(map[string]interface{}{"limit": limit})
		require.Error(t, err, "limit %v", limit)
		assert.True(t, mcp.IsValidationError(err))
		assert.Contains(t, err.Error(), "limit")
	}

	for _, limit := range []interface{}{float64(1), float64(10000), "250"} {
		_, err := validateReportArgs(map[string]interface{}{"limit": limit})
		assert.NoError(t, err, "limit %v", limit)
	}
}

// TestValidateReportArgs_BadTypes tests that mistyped arguments are
// rejected with errors naming the field.
func TestValidateReportArgs_BadTypes(t *testing.T) {
	tests := []struct {
		field string
		args  map[string]interface{}
	}{
		{"limit", map[string]interface{}{"limit": "plenty"}},
		{"limit", map[string]interface{}{"limit": float64(2.5)}},
		{"offset", map[string]interface{}{"offset": true}},
		{"dimensions", map[string]interface{}{"dimensions": "pagePath"}},
		{"dimensions", map[string]interface{}{"dimensions": []interface{}{1, 2}}},
		{"metrics", map[string]interface{}{"metrics": map[string]interface{}{}}},
		{"dateRanges", map[string]interface{}{"dateRanges": "last week"}},
		{"dateRanges", map[string]interface{}{"dateRanges": []interface{}{map[string]interface{}{"startDate": "2026-01-01"}}}},
		{"orderByMetric", map[string]interface{}{"orderByMetric": float64(3)}},
		{"orderDescending", map[string]interface{}{"orderDescending": "sideways"}},
		{"includeQuota", map[string]interface{}{"includeQuota": float64(1)}},
	}

	for _, tt := range tests {
		_, err := validateReportArgs(tt.args)
		require.Error(t, err, "args %v", tt.args)
		assert.True(t, mcp.IsValidationError(err), "args %v", tt.args)
		assert.Contains(t, err.Error(), tt.field)
	}
}

// TestValidateReportArgs_NegativeOffset tests the offset floor.
func TestValidateReportArgs_NegativeOffset(t *testing.T) {
	_, err := validateReportArgs(map[string]interface{}{"offset": float64(-1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "offset")
}

// TestReportOperation_Execute tests the wire request construction and
// response shaping end to end against a stub Data API.
func TestReportOperation_Execute(t *testing.T) {
	var gotPath string
	var gotBody map[string]interface{}
	client := stubClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(cannedReportResponse))
	}))

	op := NewReportOperation(&stubProvider{client: client})

	validated, err := op.Validate(map[string]interface{}{})
	require.NoError(t, err)

	result, err := op.Execute(testContext(), validated)
	require.NoError(t, err)

	assert.Equal(t, "/properties/123456:runReport", gotPath)
	assert.Equal(t, "100", gotBody["limit"], "limit travels as a string")
	assert.Equal(t, "0", gotBody["offset"], "offset travels as a string")
	assert.Equal(t, true, gotBody["returnPropertyQuota"])
	assert.Equal(t, []interface{}{map[string]interface{}{"startDate": "7daysAgo", "endDate": "today"}}, gotBody["dateRanges"])
	assert.Equal(t, []interface{}{map[string]interface{}{"name": "pagePath"}}, gotBody["dimensions"])
	assert.Equal(t, []interface{}{map[string]interface{}{"name": "activeUsers"}}, gotBody["metrics"])
	_, hasOrder := gotBody["orderBys"]
	assert.False(t, hasOrder, "no ordering directive without orderByMetric")

	report, ok := result.(*ga4.ReportResult)
	require.True(t, ok)
	assert.Equal(t, []ga4.Header{
		{Kind: ga4.HeaderKindDimension, Name: "pagePath"},
		{Kind: ga4.HeaderKindMetric, Name: "activeUsers"},
	}, report.Headers)
	assert.Equal(t, [][]string{{"/", "42"}, {"/docs", "7"}}, report.Rows)
	assert.Equal(t, 2, report.RowCount)
	assert.False(t, report.Sampled)
	assert.JSONEq(t, `{"tokensPerDay":{"consumed":1,"remaining":24999}}`, string(report.Quota))
}

// TestReportOperation_OrderingAndFilter tests that the ordering
// directive and the pass-through filter reach the wire verbatim.
func TestReportOperation_OrderingAndFilter(t *testing.T) {
	var gotBody map[string]interface{}
	client := stubClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(cannedReportResponse))
	}))

	op := NewReportOperation(&stubProvider{client: client})

	validated, err := op.Validate(map[string]interface{}{
		"orderByMetric":   "activeUsers",
		"orderDescending": false,
		"filterExpression": map[string]interface{}{
			"filter": map[string]interface{}{
				"fieldName":    "pagePath",
				"stringFilter": map[string]interface{}{"value": "/docs"},
			},
		},
		"includeQuota": false,
	})
	require.NoError(t, err)

	_, err = op.Execute(testContext(), validated)
	require.NoError(t, err)

	assert.Equal(t, []interface{}{
		map[string]interface{}{
			"metric": map[string]interface{}{"metricName": "activeUsers"},
			"desc":   false,
		},
	}, gotBody["orderBys"])

	filter, err := json.Marshal(gotBody["dimensionFilter"])
	require.NoError(t, err)
	assert.JSONEq(t, `{"filter":{"fieldName":"pagePath","stringFilter":{"value":"/docs"}}}`, string(filter))

	_, hasQuota := gotBody["returnPropertyQuota"]
	assert.False(t, hasQuota, "quota flag omitted when includeQuota is false")
}

// TestReportOperation_ValidationBlocksRemoteCall tests that an
// out-of-range limit never reaches the Data API, through the full
// dispatch path.
func TestReportOperation_ValidationBlocksRemoteCall(t *testing.T) {
	remoteCalls := 0
	client := stubClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		remoteCalls++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(cannedReportResponse))
	}))

	registry := NewRegistry(&stubProvider{client: client})
	dispatcher := mcp.NewDispatcher(registry, mcp.DispatcherOptions{})

	for _, tool := range []string{"run_report", "run_realtime"} {
		reply := dispatcher.Dispatch(testContext(), &mcp.Envelope{
			Method:    "tools/call",
			Name:      tool,
			Arguments: map[string]interface{}{"limit": float64(99999)},
		})

		bare, ok := reply.(*mcp.ErrorBody)
		require.True(t, ok, "tool %s", tool)
		assert.Contains(t, bare.Error, "limit")
	}

	assert.Zero(t, remoteCalls, "remote collaborator must observe zero invocations")
}

// TestReportOperation_ConfigError tests that a provider without
// credentials surfaces its ConfigError from the call.
func TestReportOperation_ConfigError(t *testing.T) {
	providerErr := &ga4.ConfigError{Reason: "credentials not configured"}
	op := NewReportOperation(&stubProvider{err: providerErr})

	validated, err := op.Validate(map[string]interface{}{})
	require.NoError(t, err)

	_, err = op.Execute(testContext(), validated)
	require.Error(t, err)
	assert.True(t, ga4.IsConfigError(err))
	assert.Equal(t, "credentials not configured", err.Error())
}

// TestReportOperation_UpstreamError tests that remote failures surface
// as upstream errors with the response detail preserved.
func TestReportOperation_UpstreamError(t *testing.T) {
	client := stubClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"insufficient permissions"}}`, http.StatusForbidden)
	}))

	op := NewReportOperation(&stubProvider{client: client})

	validated, err := op.Validate(map[string]interface{}{})
	require.NoError(t, err)

	_, err = op.Execute(testContext(), validated)
	require.Error(t, err)
	assert.True(t, ga4.IsUpstreamError(err))
	assert.Contains(t, err.Error(), "insufficient permissions")
}
