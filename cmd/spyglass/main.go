package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/marmotbyte/spyglass/pkg/api"
	"github.com/marmotbyte/spyglass/pkg/config"
	"github.com/marmotbyte/spyglass/pkg/ga4"
	"github.com/marmotbyte/spyglass/pkg/mcp"
	"github.com/marmotbyte/spyglass/pkg/observability"
	"github.com/marmotbyte/spyglass/pkg/tools"
)

const version = "1.0.0"

func main() {
	stdio := flag.Bool("stdio", false, "Serve newline-delimited envelopes on stdin/stdout instead of HTTP")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// In stdio mode stdout carries the protocol, so logs go to stderr
	logOutput := os.Stdout
	transport := "http"
	if *stdio {
		logOutput = os.Stderr
		transport = "stdio"
	}
	logger := observability.NewLogger(cfg.Observability.LogLevel, logOutput)

	promRegistry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(promRegistry)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	otelProviders, err := observability.InitOTel(ctx, observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
	}, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize OpenTelemetry")
		os.Exit(1)
	}

	var otelMetrics *observability.OTelMetrics
	if otelProviders != nil {
		otelMetrics, err = observability.NewOTelMetrics()
		if err != nil {
			logger.WithError(err).Error("Failed to create OpenTelemetry metrics")
			os.Exit(1)
		}
	}

	provider := ga4.NewProvider(cfg.Analytics, ga4.ClientOptions{
		Logger:      newUpstreamLogger(cfg.Observability.LogLevel, logOutput),
		Metrics:     metrics,
		OTelMetrics: otelMetrics,
	})

	registry := tools.NewRegistry(provider)
	dispatcher := mcp.NewDispatcher(registry, mcp.DispatcherOptions{
		ServerName:    "spyglass",
		ServerVersion: version,
		Transport:     transport,
		Metrics:       metrics,
		OTelMetrics:   otelMetrics,
	})

	if *stdio {
		if err := serveStdio(dispatcher, logger); err != nil {
			logger.WithError(err).Error("Stdio transport failed")
			os.Exit(1)
		}
		return
	}

	if err := runServers(ctx, cfg, logger, dispatcher, metrics, promRegistry, provider, otelProviders); err != nil {
		logger.WithError(err).Error("Server exited with error")
		os.Exit(1)
	}
}

// runServers runs the API listener and the ops listener until a signal or
// a listener failure, then drains both.
func runServers(ctx context.Context, cfg *config.Config, logger *observability.Logger,
	dispatcher *mcp.Dispatcher, metrics *observability.Metrics, promRegistry *prometheus.Registry,
	provider *ga4.Provider, otelProviders *observability.OTelProviders) error {

	server := api.NewServer(dispatcher, cfg.Server, logger, metrics)
	if rl := server.RateLimiter(); rl != nil {
		rl.StartCleanup(ctx)
	}
	handler := otelhttp.NewHandler(server.Handler(), "spyglass")

	apiServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	healthChecker := observability.NewHealthChecker(version)
	healthChecker.RegisterOptionalCheck("ga4_credentials", provider.Ready)

	opsMux := http.NewServeMux()
	observability.RegisterHealthRoutes(opsMux, healthChecker)
	if cfg.Observability.MetricsEnabled {
		observability.RegisterMetricsEndpoint(opsMux, promRegistry)
	}

	opsServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.OpsPort,
		Handler:      opsMux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdownManager := observability.NewShutdownManager(logger, cfg.Server.ShutdownTimeout)
	shutdownManager.RegisterServer("api", apiServer)
	shutdownManager.RegisterServer("ops", opsServer)
	shutdownManager.RegisterShutdownFunc(func(ctx context.Context) error {
		return observability.ShutdownOTel(ctx, otelProviders, logger)
	})

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Infof("Starting spyglass API server on %s", apiServer.Addr)
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Infof("Starting ops server on %s", opsServer.Addr)
		if err := opsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("ops server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		// Signal arrival or a listener failure cancels the group context
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownManager.Timeout())
		defer cancel()
		return shutdownManager.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// serveStdio reads one envelope per line from stdin and writes one reply
// per line to stdout. JSON-RPC notifications, envelopes declaring jsonrpc
// without an id, produce no output line.
func serveStdio(dispatcher *mcp.Dispatcher, logger *observability.Logger) error {
	ctx := observability.WithLogger(context.Background(), logger)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	encoder := json.NewEncoder(os.Stdout)

	logger.Info("Serving on stdio")

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var env mcp.Envelope
		if err := json.Unmarshal(line, &env); err != nil {
			logger.WithError(err).Warn("Failed to parse envelope")
			if err := encoder.Encode(&mcp.ErrorBody{Error: "internal server error"}); err != nil {
				return fmt.Errorf("write reply: %w", err)
			}
			continue
		}

		reply := dispatcher.Dispatch(ctx, &env)

		if env.WantsJSONRPC() && len(env.ID) == 0 {
			continue
		}

		if err := encoder.Encode(reply); err != nil {
			return fmt.Errorf("write reply: %w", err)
		}
	}

	return scanner.Err()
}

// newUpstreamLogger builds the logrus logger handed to the GA4 client
func newUpstreamLogger(level observability.LogLevel, output *os.File) *logrus.Logger {
	upstream := logrus.New()
	upstream.SetOutput(output)
	upstream.SetFormatter(&logrus.JSONFormatter{})

	switch level {
	case observability.DebugLevel:
		upstream.SetLevel(logrus.DebugLevel)
	case observability.WarnLevel:
		upstream.SetLevel(logrus.WarnLevel)
	case observability.ErrorLevel:
		upstream.SetLevel(logrus.ErrorLevel)
	default:
		upstream.SetLevel(logrus.InfoLevel)
	}

	return upstream
}
