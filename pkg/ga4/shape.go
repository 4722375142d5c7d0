package ga4

import "encoding/json"

// Header kinds.
const (
	HeaderKindDimension = "dimension"
	HeaderKindMetric    = "metric"
)

// Header describes one column of a shaped result. Column order is the
// server's response order, dimensions first, and is never re-sorted.
type Header struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
}

// ReportResult is the client-facing shape of a report call.
type ReportResult struct {
	Headers []Header   `json:"headers"`
	Rows    [][]string `json:"rows"`

	// RowCount is the number of rows actually returned, not the server's
	// total matching count.
	RowCount int `json:"rowCount"`

	// Sampled is true when the server matched more rows than it returned.
	Sampled bool `json:"sampled"`

	// Quota is the server-reported quota object, or null when not
	// requested or not reported.
	Quota json.RawMessage `json:"quota"`
}

// RealtimeResult is the client-facing shape of a realtime call.
type RealtimeResult struct {
	Headers  []Header   `json:"headers"`
	Rows     [][]string `json:"rows"`
	RowCount int        `json:"rowCount"`
}

// ShapeReport flattens a report response into headers and string rows.
func ShapeReport(resp *ReportResponse) *ReportResult {
	headers, rows := shapeRows(resp.DimensionHeaders, resp.MetricHeaders, resp.Rows)

	quota := resp.PropertyQuota
	if len(quota) == 0 {
		quota = json.RawMessage("null")
	}

	return &ReportResult{
		Headers:  headers,
		Rows:     rows,
		RowCount: len(rows),
		Sampled:  resp.RowCount > len(resp.Rows),
		Quota:    quota,
	}
}

// ShapeRealtime flattens a realtime response into headers and string rows.
func ShapeRealtime(resp *RealtimeResponse) *RealtimeResult {
	headers, rows := shapeRows(resp.DimensionHeaders, resp.MetricHeaders, resp.Rows)

	return &RealtimeResult{
		Headers:  headers,
		Rows:     rows,
		RowCount: len(rows),
	}
}

// shapeRows builds the header list by concatenating dimension headers then
// metric headers in server order, and emits each row's cells in the same
// order. Cell values are already strings on the wire.
func shapeRows(dims []DimensionHeader, mets []MetricHeader, in []ReportRow) ([]Header, [][]string) {
	headers := make([]Header, 0, len(dims)+len(mets))
	for _, d := range dims {
		headers = append(headers, Header{Kind: HeaderKindDimension, Name: d.Name})
	}
	for _, m := range mets {
		headers = append(headers, Header{Kind: HeaderKindMetric, Name: m.Name})
	}

	rows := make([][]string, 0, len(in))
	for _, r := range in {
		row := make([]string, 0, len(r.DimensionValues)+len(r.MetricValues))
		for _, v := range r.DimensionValues {
			row = append(row, v.Value)
		}
		for _, v := range r.MetricValues {
			row = append(row, v.Value)
		}
		rows = append(rows, row)
	}

	return headers, rows
}
