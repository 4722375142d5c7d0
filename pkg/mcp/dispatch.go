package mcp

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/marmotbyte/spyglass/pkg/observability"
)

// Dispatch verbs, used for routing and metric labels.
const (
	verbInitialize  = "initialize"
	verbInitialized = "initialized"
	verbList        = "list"
	verbCall        = "call"
	verbUnknown     = "unknown"
)

// Recognized method spellings after normalization. An empty method is
// treated as an enumeration probe.
var (
	listVerbs = map[string]struct{}{
		"":             {},
		"tools/list":   {},
		"actions/list": {},
		"list":         {},
		"get/actions":  {},
	}
	callVerbs = map[string]struct{}{
		"tools/call":   {},
		"actions/call": {},
		"call":         {},
		"invoke":       {},
	}
)

// Dispatcher maps loosely specified client envelopes onto registry
// operations. Unrecognized methods fall back to enumeration rather
// than an error; client compatibility wins over strictness.
type Dispatcher struct {
	registry      *Registry
	serverName    string
	serverVersion string
	transport     string
	metrics       *observability.Metrics
	otelMetrics   *observability.OTelMetrics
}

// DispatcherOptions configures optional dispatcher collaborators.
type DispatcherOptions struct {
	// ServerName and ServerVersion identify the server during the
	// initialize handshake.
	ServerName    string
	ServerVersion string

	// Transport labels dispatch metrics, e.g. "http" or "stdio".
	Transport string

	Metrics     *observability.Metrics
	OTelMetrics *observability.OTelMetrics
}

// NewDispatcher creates a dispatcher over the given registry.
func NewDispatcher(registry *Registry, opts DispatcherOptions) *Dispatcher {
	if opts.ServerName == "" {
		opts.ServerName = "spyglass"
	}
	if opts.ServerVersion == "" {
		opts.ServerVersion = "dev"
	}
	if opts.Transport == "" {
		opts.Transport = "http"
	}

	return &Dispatcher{
		registry:      registry,
		serverName:    opts.ServerName,
		serverVersion: opts.ServerVersion,
		transport:     opts.Transport,
		metrics:       opts.Metrics,
		otelMetrics:   opts.OTelMetrics,
	}
}

// Dispatch handles one envelope and returns the reply body to
// serialize. The reply shape mirrors the request dialect: wrapped when
// the envelope declared a JSON-RPC version, bare otherwise. Dispatch
// never panics; faults inside an operation surface as internal error
// replies.
func (d *Dispatcher) Dispatch(ctx context.Context, env *Envelope) (reply interface{}) {
	if env == nil {
		env = &Envelope{}
	}

	start := time.Now()
	verb := classifyVerb(env.Method)

	defer func() {
		if r := recover(); r != nil {
			observability.FromContext(ctx).WithFields(map[string]interface{}{
				"panic":  r,
				"method": env.Method,
			}).Error("panic during dispatch")
			reply = wrapError(env, errors.New("internal error"))
		}
		d.recordDispatch(verb, outcomeOf(reply), time.Since(start))
	}()

	switch verb {
	case verbInitialize:
		return wrapResult(env, d.initializeResult(env))
	case verbInitialized:
		return wrapResult(env, struct{}{})
	case verbCall:
		return d.call(ctx, env)
	case verbList:
		return wrapResult(env, d.enumeration(""))
	default:
		observability.FromContext(ctx).WithField("method", env.Method).
			Debug("unrecognized method, answering with enumeration")
		return wrapResult(env, d.enumeration(env.Method))
	}
}

// call resolves and invokes one operation. The operation never runs
// unless its own validation passed.
func (d *Dispatcher) call(ctx context.Context, env *Envelope) interface{} {
	name := env.OperationName()
	if name == "" {
		return wrapError(env, &ValidationError{Message: "Missing tool name"})
	}

	op, ok := d.registry.Resolve(name)
	if !ok {
		return wrapError(env, &NotFoundError{Name: name})
	}

	logger := observability.FromContext(ctx).WithField("tool", op.Name)

	validated, err := op.Validate(env.OperationArguments())
	if err != nil {
		logger.WithError(err).Warn("tool arguments rejected")
		d.recordToolCall(ctx, op.Name, "validation_error", 0)
		return wrapError(env, err)
	}

	start := time.Now()
	result, err := op.Execute(ctx, validated)
	elapsed := time.Since(start)
	if err != nil {
		logger.WithError(err).Error("tool call failed")
		d.recordToolCall(ctx, op.Name, "error", elapsed)
		return wrapError(env, err)
	}

	logger.WithField("duration_ms", elapsed.Milliseconds()).Info("tool call completed")
	d.recordToolCall(ctx, op.Name, "ok", elapsed)
	return wrapResult(env, result)
}

// initializeResult acknowledges the handshake, echoing the client's
// requested protocol revision when one was supplied.
func (d *Dispatcher) initializeResult(env *Envelope) InitializeResult {
	version := env.RequestedProtocolVersion()
	if version == "" {
		version = DefaultProtocolVersion
	}

	return InitializeResult{
		ProtocolVersion: version,
		Capabilities:    Capabilities{Tools: ToolCapabilities{List: true, Call: true}},
		ServerInfo:      ServerInfo{Name: d.serverName, Version: d.serverVersion},
	}
}

// enumeration builds the operation listing. unrecognized, when
// non-empty, echoes the method that fell back to this listing.
func (d *Dispatcher) enumeration(unrecognized string) *EnumerationResult {
	descriptors := d.registry.Descriptors()
	return &EnumerationResult{
		Tools:              descriptors,
		Actions:            descriptors,
		UnrecognizedMethod: unrecognized,
	}
}

func (d *Dispatcher) recordDispatch(verb, outcome string, elapsed time.Duration) {
	if d.metrics == nil {
		return
	}
	d.metrics.RPCRequestsTotal.WithLabelValues(d.transport, verb, outcome).Inc()
	d.metrics.RPCRequestDuration.WithLabelValues(verb).Observe(elapsed.Seconds())
}

func (d *Dispatcher) recordToolCall(ctx context.Context, tool, outcome string, elapsed time.Duration) {
	if d.metrics != nil {
		d.metrics.ToolCallsTotal.WithLabelValues(tool, outcome).Inc()
		d.metrics.ToolCallDuration.WithLabelValues(tool).Observe(elapsed.Seconds())
	}
	if d.otelMetrics != nil {
		d.otelMetrics.RecordToolCall(ctx, tool, outcome, elapsed)
	}
}

// classifyVerb maps a raw method string onto one dispatch verb. The
// handshake methods match literally, before normalization; everything
// else is normalized and looked up against the recognized spellings.
func classifyVerb(method string) string {
	switch method {
	case "initialize":
		return verbInitialize
	case "notifications/initialized":
		return verbInitialized
	}

	normalized := normalizeMethod(method)
	if _, ok := listVerbs[normalized]; ok {
		return verbList
	}
	if _, ok := callVerbs[normalized]; ok {
		return verbCall
	}
	return verbUnknown
}

// normalizeMethod case-folds a method name, strips whitespace, and
// treats "." as the namespace separator "/".
func normalizeMethod(method string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return -1
		case r == '.':
			return '/'
		default:
			return unicode.ToLower(r)
		}
	}, method)
}

// wrapResult shapes a success reply to mirror the request dialect.
func wrapResult(env *Envelope, result interface{}) interface{} {
	if !env.WantsJSONRPC() {
		return result
	}
	return &RPCResponse{JSONRPC: JSONRPCVersion, ID: env.ID, Result: result}
}

// wrapError shapes an error reply to mirror the request dialect.
func wrapError(env *Envelope, err error) interface{} {
	if !env.WantsJSONRPC() {
		return &ErrorBody{Error: err.Error()}
	}
	return &RPCResponse{
		JSONRPC: JSONRPCVersion,
		ID:      env.ID,
		Error:   &RPCError{Code: errorCode(err), Message: err.Error()},
	}
}

// errorCode maps the error taxonomy onto JSON-RPC codes. Anything
// outside the taxonomy, including upstream and configuration
// failures, maps to the internal error code.
func errorCode(err error) int {
	switch {
	case IsNotFoundError(err):
		return CodeMethodNotFound
	case IsValidationError(err):
		return CodeInvalidParams
	default:
		return CodeInternal
	}
}

// outcomeOf labels a reply for dispatch metrics.
func outcomeOf(reply interface{}) string {
	switch r := reply.(type) {
	case *RPCResponse:
		if r.Error != nil {
			return "error"
		}
	case *ErrorBody:
		return "error"
	}
	return "ok"
}
