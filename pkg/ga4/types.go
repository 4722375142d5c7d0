package ga4

import "encoding/json"

// Wire types for the Analytics Data API v1beta. Field names and the
// string representation of numeric paging parameters follow the remote
// API, not local conventions.

// DateRange bounds a report query. Values are ISO dates or the API's
// relative forms such as "7daysAgo" and "today".
type DateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// Dimension names a dimension to group by.
type Dimension struct {
	Name string `json:"name"`
}

// Metric names a metric to aggregate.
type Metric struct {
	Name string `json:"name"`
}

// MetricOrderBy sorts rows by the named metric.
type MetricOrderBy struct {
	MetricName string `json:"metricName"`
}

// OrderBy is one ordering directive of a report request.
type OrderBy struct {
	Metric *MetricOrderBy `json:"metric,omitempty"`
	Desc   bool           `json:"desc"`
}

// ReportRequest is the runReport request body. DimensionFilter is carried
// verbatim; its internal structure is the caller's responsibility.
type ReportRequest struct {
	DateRanges          []DateRange     `json:"dateRanges,omitempty"`
	Dimensions          []Dimension     `json:"dimensions,omitempty"`
	Metrics             []Metric        `json:"metrics,omitempty"`
	DimensionFilter     json.RawMessage `json:"dimensionFilter,omitempty"`
	Limit               string          `json:"limit,omitempty"`
	Offset              string          `json:"offset,omitempty"`
	OrderBys            []OrderBy       `json:"orderBys,omitempty"`
	ReturnPropertyQuota bool            `json:"returnPropertyQuota,omitempty"`
}

// RealtimeRequest is the runRealtimeReport request body.
type RealtimeRequest struct {
	Dimensions []Dimension `json:"dimensions,omitempty"`
	Metrics    []Metric    `json:"metrics,omitempty"`
	Limit      string      `json:"limit,omitempty"`
}

// DimensionHeader describes one dimension column of a response.
type DimensionHeader struct {
	Name string `json:"name"`
}

// MetricHeader describes one metric column of a response.
type MetricHeader struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// DimensionValue holds one dimension cell.
type DimensionValue struct {
	Value string `json:"value"`
}

// MetricValue holds one metric cell.
type MetricValue struct {
	Value string `json:"value"`
}

// ReportRow is one row of a response, dimension cells then metric cells.
type ReportRow struct {
	DimensionValues []DimensionValue `json:"dimensionValues"`
	MetricValues    []MetricValue    `json:"metricValues"`
}

// ReportResponse is the runReport response body. RowCount is the total
// number of matching rows on the server, which can exceed the number of
// rows actually returned.
type ReportResponse struct {
	DimensionHeaders []DimensionHeader `json:"dimensionHeaders"`
	MetricHeaders    []MetricHeader    `json:"metricHeaders"`
	Rows             []ReportRow       `json:"rows"`
	RowCount         int               `json:"rowCount"`
	PropertyQuota    json.RawMessage   `json:"propertyQuota,omitempty"`
}

// RealtimeResponse is the runRealtimeReport response body.
type RealtimeResponse struct {
	DimensionHeaders []DimensionHeader `json:"dimensionHeaders"`
	MetricHeaders    []MetricHeader    `json:"metricHeaders"`
	Rows             []ReportRow       `json:"rows"`
	RowCount         int               `json:"rowCount"`
}
