package ga4

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2/jwt"

	"github.com/marmotbyte/spyglass/pkg/observability"
)

const (
	// DefaultBaseURL is the Analytics Data API v1beta endpoint.
	DefaultBaseURL = "https://analyticsdata.googleapis.com/v1beta"

	tokenURL = "https://oauth2.googleapis.com/token"
	scope    = "https://www.googleapis.com/auth/analytics.readonly"
)

// Client issues Analytics Data API calls for a single GA4 property.
// It is read-only after construction and safe for concurrent use.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	propertyPath string
	logger       *logrus.Logger
	metrics      *observability.Metrics
	otelMetrics  *observability.OTelMetrics
}

// ClientOptions configures optional collaborators of a Client. Zero
// values select defaults.
type ClientOptions struct {
	// HTTPClient overrides the authenticated transport. When set, no
	// credential resolution happens; tests inject a stub server's client
	// here.
	HTTPClient *http.Client

	// BaseURL overrides the Data API endpoint.
	BaseURL string

	Logger      *logrus.Logger
	Metrics     *observability.Metrics
	OTelMetrics *observability.OTelMetrics
}

// NewClient builds a Client for the configured property. Unless an HTTP
// client override is supplied, credentials are resolved and a
// JWT-authenticated transport is constructed; the first token exchange
// happens on the first request, not here.
func NewClient(cfg Config, opts ClientOptions) (*Client, error) {
	propertyPath, err := cfg.PropertyPath()
	if err != nil {
		return nil, err
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		creds, err := cfg.ResolveCredentials()
		if err != nil {
			return nil, err
		}

		jwtConfig := &jwt.Config{
			Email:      creds.ClientEmail,
			PrivateKey: []byte(creds.PrivateKey),
			Scopes:     []string{scope},
			TokenURL:   tokenURL,
		}
		httpClient = jwtConfig.Client(context.Background())
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
	}

	return &Client{
		httpClient:   httpClient,
		baseURL:      strings.TrimRight(baseURL, "/"),
		propertyPath: propertyPath,
		logger:       logger,
		metrics:      opts.Metrics,
		otelMetrics:  opts.OTelMetrics,
	}, nil
}

// PropertyPath returns the API resource name the client queries.
func (c *Client) PropertyPath() string {
	return c.propertyPath
}

// RunReport executes a windowed report query against the property.
func (c *Client) RunReport(ctx context.Context, req *ReportRequest) (*ReportResponse, error) {
	var resp ReportResponse
	if err := c.post(ctx, "runReport", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RunRealtimeReport executes a realtime snapshot query against the
// property.
func (c *Client) RunRealtimeReport(ctx context.Context, req *RealtimeRequest) (*RealtimeResponse, error) {
	var resp RealtimeResponse
	if err := c.post(ctx, "runRealtimeReport", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// post issues one Data API call and decodes the response into out.
// Failures of any kind surface as UpstreamError; no retries.
func (c *Client) post(ctx context.Context, operation string, payload, out interface{}) error {
	start := time.Now()

	body, err := json.Marshal(payload)
	if err != nil {
		return &UpstreamError{Operation: operation, Err: fmt.Errorf("encode request: %w", err)}
	}

	url := fmt.Sprintf("%s/%s:%s", c.baseURL, c.propertyPath, operation)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &UpstreamError{Operation: operation, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	c.logger.WithFields(logrus.Fields{
		"operation": operation,
		"property":  c.propertyPath,
	}).Debug("Calling analytics data API")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.record(ctx, operation, 0, time.Since(start))
		return &UpstreamError{Operation: operation, Err: err}
	}
	defer resp.Body.Close()

	c.record(ctx, operation, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return &UpstreamError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &UpstreamError{Operation: operation, Err: fmt.Errorf("decode response: %w", err)}
	}

	return nil
}

// record reports one upstream call to whichever metric sinks are wired.
// A status of 0 means the request never produced a response.
func (c *Client) record(ctx context.Context, operation string, status int, elapsed time.Duration) {
	if c.metrics != nil {
		c.metrics.UpstreamRequestsTotal.WithLabelValues(operation, strconv.Itoa(status)).Inc()
		c.metrics.UpstreamRequestDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
	}
	if c.otelMetrics != nil {
		c.otelMetrics.RecordUpstreamRequest(ctx, operation, status, elapsed)
	}
}

// Provider hands out the lazily constructed, memoized Client.
//
// Two overlapping first requests may both construct a client; one publish
// wins and the loser's client is discarded. Clients are stateless beyond
// their transport, so the duplicate construction is harmless.
type Provider struct {
	cfg     Config
	opts    ClientOptions
	current atomic.Pointer[Client]
}

// NewProvider prepares a Provider. No credential work happens until the
// first Client call.
func NewProvider(cfg Config, opts ClientOptions) *Provider {
	return &Provider{cfg: cfg, opts: opts}
}

// Client returns the memoized client, constructing it on first use.
func (p *Provider) Client() (*Client, error) {
	if c := p.current.Load(); c != nil {
		return c, nil
	}

	c, err := NewClient(p.cfg, p.opts)
	if err != nil {
		return nil, err
	}

	if !p.current.CompareAndSwap(nil, c) {
		return p.current.Load(), nil
	}
	return c, nil
}

// Ready reports whether a client can be constructed from the current
// configuration. Registered as an optional readiness probe; failure means
// degraded, not down, because enumeration and handshake calls work
// without credentials.
func (p *Provider) Ready(ctx context.Context) error {
	_, err := p.Client()
	return err
}
