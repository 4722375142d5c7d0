package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"
)

// CheckFunc probes a single dependency. A nil return means healthy.
type CheckFunc func(ctx context.Context) error

// dependencyCheck is a registered dependency probe
type dependencyCheck struct {
	name string
	fn   CheckFunc

	// optional dependencies degrade the service instead of failing readiness
	optional bool
}

// HealthChecker provides health check functionality
type HealthChecker struct {
	version string
	checks  []dependencyCheck
}

// NewHealthChecker creates a new health checker
func NewHealthChecker(version string) *HealthChecker {
	return &HealthChecker{version: version}
}

// RegisterCheck registers a required dependency probe. A failing required
// dependency makes readiness report unhealthy (HTTP 503).
func (h *HealthChecker) RegisterCheck(name string, fn CheckFunc) {
	h.checks = append(h.checks, dependencyCheck{name: name, fn: fn})
}

// RegisterOptionalCheck registers an optional dependency probe. A failing
// optional dependency degrades the service but keeps readiness at HTTP 200.
func (h *HealthChecker) RegisterOptionalCheck(name string, fn CheckFunc) {
	h.checks = append(h.checks, dependencyCheck{name: name, fn: fn, optional: true})
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status       string                      `json:"status"`
	Timestamp    time.Time                   `json:"timestamp"`
	Version      string                      `json:"version,omitempty"`
	Dependencies map[string]DependencyStatus `json:"dependencies,omitempty"`
}

// DependencyStatus represents the health of a single dependency
type DependencyStatus struct {
	Status    string        `json:"status"`
	Message   string        `json:"message,omitempty"`
	Latency   time.Duration `json:"latency_ms,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// Liveness returns a simple liveness probe (always returns 200 if server is running)
func (h *HealthChecker) Liveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    StatusHealthy,
		"timestamp": time.Now(),
	})
}

// Readiness returns a readiness probe (checks all registered dependencies)
func (h *HealthChecker) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := h.Check(ctx)

	w.Header().Set("Content-Type", "application/json")

	// Return 503 if unhealthy, 200 if healthy or degraded
	if status.Status == StatusUnhealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	json.NewEncoder(w).Encode(status)
}

// Check runs every registered dependency probe
func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:       StatusHealthy,
		Timestamp:    time.Now(),
		Version:      h.version,
		Dependencies: make(map[string]DependencyStatus),
	}

	// Deterministic probe order keeps responses stable for tests and diffing
	checks := make([]dependencyCheck, len(h.checks))
	copy(checks, h.checks)
	sort.Slice(checks, func(i, j int) bool { return checks[i].name < checks[j].name })

	for _, check := range checks {
		depStatus := runCheck(ctx, check)
		status.Dependencies[check.name] = depStatus

		switch depStatus.Status {
		case StatusUnhealthy:
			status.Status = StatusUnhealthy
		case StatusDegraded:
			if status.Status != StatusUnhealthy {
				status.Status = StatusDegraded
			}
		}
	}

	return status
}

// runCheck executes a single probe and classifies the outcome
func runCheck(ctx context.Context, check dependencyCheck) DependencyStatus {
	start := time.Now()
	status := DependencyStatus{
		Status:    StatusHealthy,
		Timestamp: time.Now(),
	}

	err := check.fn(ctx)
	status.Latency = time.Since(start)

	if err != nil {
		if check.optional {
			status.Status = StatusDegraded
		} else {
			status.Status = StatusUnhealthy
		}
		status.Message = err.Error()
	}

	return status
}

// RegisterHealthRoutes registers health check endpoints
func RegisterHealthRoutes(mux *http.ServeMux, checker *HealthChecker) {
	mux.HandleFunc("/health", checker.Liveness)
	mux.HandleFunc("/health/live", checker.Liveness)
	mux.HandleFunc("/health/ready", checker.Readiness)
}
