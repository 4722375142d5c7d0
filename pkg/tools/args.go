package tools

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/marmotbyte/spyglass/pkg/ga4"
	"github.com/marmotbyte/spyglass/pkg/mcp"
)

// Argument coercion helpers. Values arrive as decoded JSON, so numbers
// are float64 unless a transport opted into json.Number. Numeric
// strings are accepted for integer fields; assistant clients routinely
// stringify them.

func intArg(args map[string]interface{}, key string, fallback int) (int, error) {
	value, ok := args[key]
	if !ok || value == nil {
		return fallback, nil
	}

	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, mcp.NewValidationError(key, "%s must be an integer", key)
		}
		return int(v), nil
	case json.Number:
		parsed, err := v.Int64()
		if err != nil {
			return 0, mcp.NewValidationError(key, "%s must be an integer", key)
		}
		return int(parsed), nil
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, mcp.NewValidationError(key, "%s must be an integer", key)
		}
		return parsed, nil
	default:
		return 0, mcp.NewValidationError(key, "%s must be an integer", key)
	}
}

func boolArg(args map[string]interface{}, key string, fallback bool) (bool, error) {
	value, ok := args[key]
	if !ok || value == nil {
		return fallback, nil
	}

	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, mcp.NewValidationError(key, "%s must be a boolean", key)
		}
		return parsed, nil
	default:
		return false, mcp.NewValidationError(key, "%s must be a boolean", key)
	}
}

func stringArg(args map[string]interface{}, key string) (string, error) {
	value, ok := args[key]
	if !ok || value == nil {
		return "", nil
	}

	v, ok := value.(string)
	if !ok {
		return "", mcp.NewValidationError(key, "%s must be a string", key)
	}
	return v, nil
}

// stringSliceArg returns nil when the key is absent so callers can
// distinguish "not supplied" from an explicit empty list.
func stringSliceArg(args map[string]interface{}, key string) ([]string, error) {
	value, ok := args[key]
	if !ok || value == nil {
		return nil, nil
	}

	items, ok := value.([]interface{})
	if !ok {
		return nil, mcp.NewValidationError(key, "%s must be an array of strings", key)
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, mcp.NewValidationError(key, "%s must be an array of strings", key)
		}
		out = append(out, s)
	}
	return out, nil
}

// dateRangesArg parses a list of {startDate, endDate} objects,
// returning nil when the key is absent.
func dateRangesArg(args map[string]interface{}, key string) ([]ga4.DateRange, error) {
	value, ok := args[key]
	if !ok || value == nil {
		return nil, nil
	}

	items, ok := value.([]interface{})
	if !ok {
		return nil, mcp.NewValidationError(key, "%s must be an array of date ranges", key)
	}

	out := make([]ga4.DateRange, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]interface{})
		if !ok {
			return nil, mcp.NewValidationError(key, "%s entries must be objects with startDate and endDate", key)
		}
		start, _ := entry["startDate"].(string)
		end, _ := entry["endDate"].(string)
		if start == "" || end == "" {
			return nil, mcp.NewValidationError(key, "%s entries must be objects with startDate and endDate", key)
		}
		out = append(out, ga4.DateRange{StartDate: start, EndDate: end})
	}
	return out, nil
}

// rawArg re-encodes an argument verbatim for pass-through fields. The
// value's internal structure is not inspected.
func rawArg(args map[string]interface{}, key string) (json.RawMessage, error) {
	value, ok := args[key]
	if !ok || value == nil {
		return nil, nil
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, mcp.NewValidationError(key, "%s is not serializable", key)
	}
	return encoded, nil
}
