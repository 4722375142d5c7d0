package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ParseJSON decodes the request body into dest. The body must carry
// exactly one JSON value; an empty body or trailing content fails.
func ParseJSON(r *http.Request, dest interface{}) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("invalid JSON: empty body")
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if dec.More() {
		return fmt.Errorf("invalid JSON: trailing content after envelope")
	}
	return nil
}

// ParseQueryString extracts a string query parameter, empty meaning absent
func ParseQueryString(r *http.Request, key, defaultVal string) string {
	if val := r.URL.Query().Get(key); val != "" {
		return val
	}
	return defaultVal
}
