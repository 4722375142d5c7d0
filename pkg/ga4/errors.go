package ga4

import (
	"errors"
	"fmt"
)

// ConfigError represents missing or malformed analytics credential
// configuration. It is raised on the first call that needs credentials,
// never at process start.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return e.Reason
}

// IsConfigError checks if an error is a credential configuration error
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// UpstreamError represents a failed Analytics Data API call. The remote
// failure is surfaced verbatim; no retry is attempted.
type UpstreamError struct {
	Operation  string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("%s failed with status %d: %s", e.Operation, e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsUpstreamError checks if an error came from the remote analytics call
func IsUpstreamError(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
