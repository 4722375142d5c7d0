package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/marmotbyte/spyglass/pkg/ga4"
	"github.com/marmotbyte/spyglass/pkg/observability"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Analytics configuration (GA4 property and credentials)
	Analytics ga4.Config

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Ops server (separate port for k8s probes and metrics scraping)
	OpsPort string

	// Maximum accepted request body size in bytes
	MaxBodyBytes int64

	// CORS allowed origins; "*" permits any origin
	CORSAllowedOrigins []string

	// Per-client request budget per minute; 0 disables rate limiting
	RateLimitPerMinute int

	// Extra burst capacity above the per-minute budget
	RateLimitBurst int
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel observability.LogLevel

	// Metrics
	MetricsEnabled bool

	// OpenTelemetry
	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool // Use insecure gRPC connection
}

// fileConfig is the YAML overlay shape. Values fill fields the environment
// leaves unset; the environment always wins.
type fileConfig struct {
	Server struct {
		Host               string `yaml:"host"`
		Port               string `yaml:"port"`
		OpsPort            string `yaml:"ops_port"`
		ReadTimeout        string `yaml:"read_timeout"`
		WriteTimeout       string `yaml:"write_timeout"`
		IdleTimeout        string `yaml:"idle_timeout"`
		ShutdownTimeout    string `yaml:"shutdown_timeout"`
		MaxBodyBytes       int64  `yaml:"max_body_bytes"`
		CORSOrigins        string `yaml:"cors_allowed_origins"`
		RateLimitPerMinute int    `yaml:"rate_limit_per_minute"`
		RateLimitBurst     int    `yaml:"rate_limit_burst"`
	} `yaml:"server"`
	Analytics struct {
		PropertyID  string `yaml:"property_id"`
		ProjectID   string `yaml:"project_id"`
		ClientEmail string `yaml:"client_email"`
		PrivateKey  string `yaml:"private_key"`
	} `yaml:"analytics"`
	Observability struct {
		LogLevel        string `yaml:"log_level"`
		MetricsEnabled  *bool  `yaml:"metrics_enabled"`
		OTelEnabled     *bool  `yaml:"otel_enabled"`
		OTelEndpoint    string `yaml:"otel_endpoint"`
		OTelServiceName string `yaml:"otel_service_name"`
	} `yaml:"observability"`
}

// LoadConfig loads configuration from environment variables, with an
// optional YAML overlay file named by SPYGLASS_CONFIG supplying values the
// environment leaves unset.
func LoadConfig() (*Config, error) {
	overlay, err := loadFileOverlay(os.Getenv("SPYGLASS_CONFIG"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server:        loadServerConfig(overlay),
		Analytics:     loadAnalyticsConfig(overlay),
		Observability: loadObservabilityConfig(overlay),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadFileOverlay reads the YAML overlay file, if configured
func loadFileOverlay(path string) (*fileConfig, error) {
	if path == "" {
		return &fileConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var overlay fileConfig
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return &overlay, nil
}

// loadServerConfig loads server configuration from environment
func loadServerConfig(overlay *fileConfig) ServerConfig {
	corsOrigins := getEnv("SPYGLASS_CORS_ALLOWED_ORIGINS", fallback(overlay.Server.CORSOrigins, "*"))

	return ServerConfig{
		Host:               getEnv("SPYGLASS_HOST", fallback(overlay.Server.Host, "0.0.0.0")),
		Port:               getEnv("SPYGLASS_PORT", fallback(overlay.Server.Port, "8080")),
		ReadTimeout:        getEnvDuration("SPYGLASS_READ_TIMEOUT", fallbackDuration(overlay.Server.ReadTimeout, 15*time.Second)),
		WriteTimeout:       getEnvDuration("SPYGLASS_WRITE_TIMEOUT", fallbackDuration(overlay.Server.WriteTimeout, 30*time.Second)),
		IdleTimeout:        getEnvDuration("SPYGLASS_IDLE_TIMEOUT", fallbackDuration(overlay.Server.IdleTimeout, 60*time.Second)),
		ShutdownTimeout:    getEnvDuration("SPYGLASS_SHUTDOWN_TIMEOUT", fallbackDuration(overlay.Server.ShutdownTimeout, 30*time.Second)),
		OpsPort:            getEnv("SPYGLASS_OPS_PORT", fallback(overlay.Server.OpsPort, "9090")),
		MaxBodyBytes:       getEnvInt64("SPYGLASS_MAX_BODY_BYTES", fallbackInt64(overlay.Server.MaxBodyBytes, 1<<20)),
		CORSAllowedOrigins: splitAndTrim(corsOrigins),
		RateLimitPerMinute: getEnvInt("SPYGLASS_RATE_LIMIT_PER_MINUTE", overlay.Server.RateLimitPerMinute),
		RateLimitBurst:     getEnvInt("SPYGLASS_RATE_LIMIT_BURST", overlay.Server.RateLimitBurst),
	}
}

// loadAnalyticsConfig loads GA4 configuration from environment.
//
// The variable names are part of the deployment contract and carry no
// SPYGLASS_ prefix: GA4_PROPERTY_ID, GOOGLE_CLOUD_CREDENTIALS, CLIENT_EMAIL,
// PRIVATE_KEY, GCP_PROJECT_ID. None of them are required at load time; a
// process without credentials still serves enumeration and handshake calls.
func loadAnalyticsConfig(overlay *fileConfig) ga4.Config {
	return ga4.Config{
		PropertyID:      getEnv("GA4_PROPERTY_ID", overlay.Analytics.PropertyID),
		ProjectID:       getEnv("GCP_PROJECT_ID", overlay.Analytics.ProjectID),
		CredentialsJSON: getEnv("GOOGLE_CLOUD_CREDENTIALS", ""),
		ClientEmail:     getEnv("CLIENT_EMAIL", overlay.Analytics.ClientEmail),
		PrivateKey:      getEnv("PRIVATE_KEY", overlay.Analytics.PrivateKey),
	}
}

// loadObservabilityConfig loads observability configuration from environment
func loadObservabilityConfig(overlay *fileConfig) ObservabilityConfig {
	metricsDefault := true
	if overlay.Observability.MetricsEnabled != nil {
		metricsDefault = *overlay.Observability.MetricsEnabled
	}
	otelDefault := false
	if overlay.Observability.OTelEnabled != nil {
		otelDefault = *overlay.Observability.OTelEnabled
	}

	return ObservabilityConfig{
		LogLevel:           observability.ParseLevel(getEnv("SPYGLASS_LOG_LEVEL", fallback(overlay.Observability.LogLevel, "info"))),
		MetricsEnabled:     getEnvBool("SPYGLASS_METRICS_ENABLED", metricsDefault),
		OTelEnabled:        getEnvBool("SPYGLASS_OTEL_ENABLED", otelDefault),
		OTelEndpoint:       getEnv("SPYGLASS_OTEL_ENDPOINT", fallback(overlay.Observability.OTelEndpoint, "localhost:4317")),
		OTelServiceName:    getEnv("SPYGLASS_OTEL_SERVICE_NAME", fallback(overlay.Observability.OTelServiceName, "spyglass")),
		OTelServiceVersion: getEnv("SPYGLASS_OTEL_SERVICE_VERSION", "1.0.0"),
		OTelInsecure:       getEnvBool("SPYGLASS_OTEL_INSECURE", true),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.OpsPort == "" {
		return fmt.Errorf("ops port is required")
	}
	if c.Server.Port == c.Server.OpsPort {
		return fmt.Errorf("server port and ops port must be different")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("max body bytes must be positive")
	}
	if len(c.Server.CORSAllowedOrigins) == 0 {
		return fmt.Errorf("at least one CORS origin is required")
	}
	if c.Server.RateLimitPerMinute < 0 || c.Server.RateLimitBurst < 0 {
		return fmt.Errorf("rate limit settings must be non-negative")
	}

	// Analytics config is intentionally not validated here. Credentials are
	// resolved lazily on the first operation call so that an unconfigured
	// process can still answer enumeration and handshake requests.

	// Validate OpenTelemetry config
	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

// fallback returns the overlay value if non-empty, else the default
func fallback(overlayValue, defaultValue string) string {
	if overlayValue != "" {
		return overlayValue
	}
	return defaultValue
}

// fallbackDuration parses an overlay duration string, else the default
func fallbackDuration(overlayValue string, defaultValue time.Duration) time.Duration {
	if overlayValue != "" {
		if d, err := time.ParseDuration(overlayValue); err == nil {
			return d
		}
	}
	return defaultValue
}

// fallbackInt64 returns the overlay value if positive, else the default
func fallbackInt64(overlayValue, defaultValue int64) int64 {
	if overlayValue > 0 {
		return overlayValue
	}
	return defaultValue
}

// splitAndTrim splits a comma-separated list and trims whitespace
func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an int environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvInt64 returns an int64 environment variable or a default
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
