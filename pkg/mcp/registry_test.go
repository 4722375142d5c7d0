package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func namedOperation(name string) *Operation {
	return &Operation{
		Name:        name,
		Title:       "Test operation",
		Description: "An operation used in registry tests",
		InputSchema: map[string]interface{}{"type": "object"},
		Validate: func(args map[string]interface{}) (interface{}, error) {
			return args, nil
		},
		Execute: func(ctx context.Context, validated interface{}) (interface{}, error) {
			return map[string]interface{}{"ok": true}, nil
		},
	}
}

// TestRegistry_ResolveAliases tests that separator and case variants
// of a registered name resolve to the same operation.
func TestRegistry_ResolveAliases(t *testing.T) {
	op := namedOperation("run_report")
	registry := NewRegistry(op)

	for _, alias := range []string{
		"run_report",
		"runReport",
		"RunReport",
		"run-report",
		"RUN_REPORT",
		"run report",
	} {
		resolved, ok := registry.Resolve(alias)
		require.True(t, ok, "alias %q should resolve", alias)
		assert.Same(t, op, resolved)
	}
}

// TestRegistry_ResolveUnknown tests that unregistered names do not
// resolve.
func TestRegistry_ResolveUnknown(t *testing.T) {
	registry := NewRegistry(namedOperation("run_report"))

	_, ok := registry.Resolve("run_realtime")
	assert.False(t, ok)

	_, ok = registry.Resolve("")
	assert.False(t, ok)
}

// TestRegistry_Descriptors tests that descriptors preserve
// registration order and advertise each operation's schema.
func TestRegistry_Descriptors(t *testing.T) {
	registry := NewRegistry(namedOperation("run_report"), namedOperation("run_realtime"))

	descriptors := registry.Descriptors()
	require.Len(t, descriptors, 2)
	assert.Equal(t, "run_report", descriptors[0].Name)
	assert.Equal(t, "run_realtime", descriptors[1].Name)

	for _, d := range descriptors {
		assert.NotEmpty(t, d.Title)
		assert.NotEmpty(t, d.Description)
		assert.Equal(t, "object", d.InputSchema["type"])
	}
}

// TestRegistry_OperationsReturnsCopy tests that mutating the returned
// slice does not affect the registry.
func TestRegistry_OperationsReturnsCopy(t *testing.T) {
	registry := NewRegistry(namedOperation("run_report"), namedOperation("run_realtime"))

	ops := registry.Operations()
	require.Len(t, ops, 2)
	ops[0] = nil

	again := registry.Operations()
	require.NotNil(t, again[0])
	assert.Equal(t, "run_report", again[0].Name)
}

// TestNewRegistry_DuplicateNamePanics tests that two operations whose
// names collapse to the same canonical form are rejected.
func TestNewRegistry_DuplicateNamePanics(t *testing.T) {
	assert.Panics(t, func() {
		NewRegistry(namedOperation("run_report"), namedOperation("runReport"))
	})
}

// TestCanonicalName tests the name canonicalization rules.
func TestCanonicalName(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"run_report", "runreport"},
		{"runReport", "runreport"},
		{"run-report", "runreport"},
		{"Run Report", "runreport"},
		{"run.report", "runreport"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, canonicalName(tt.in), "canonicalName(%q)", tt.in)
	}
}
