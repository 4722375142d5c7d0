package mcp

import (
	"context"
	"fmt"
	"strings"
	"unicode"
)

// Operation is one named analytics query exposed through the gateway.
type Operation struct {
	// Name is the externally advertised operation name.
	Name        string
	Title       string
	Description string

	// InputSchema is the JSON-Schema document advertised for the
	// operation's arguments.
	InputSchema map[string]interface{}

	// Validate normalizes raw arguments, applying defaults and
	// rejecting out-of-range values. Nothing executes unless it
	// succeeds.
	Validate func(args map[string]interface{}) (interface{}, error)

	// Execute runs the operation with the value produced by Validate.
	Execute func(ctx context.Context, validated interface{}) (interface{}, error)
}

// Descriptor returns the enumeration entry for the operation.
func (o *Operation) Descriptor() ToolDescriptor {
	return ToolDescriptor{
		Name:        o.Name,
		Title:       o.Title,
		Description: o.Description,
		InputSchema: o.InputSchema,
	}
}

// Registry is an immutable name-to-operation table built once at
// startup. Lookups tolerate either word-separator convention, so
// "run_report" and "runReport" resolve to the same operation.
type Registry struct {
	ops   []*Operation
	index map[string]*Operation
}

// NewRegistry builds a registry from the given operations.
// Registration order drives enumeration order. Operations whose names
// collapse to the same canonical form panic.
func NewRegistry(ops ...*Operation) *Registry {
	r := &Registry{
		ops:   make([]*Operation, 0, len(ops)),
		index: make(map[string]*Operation, len(ops)),
	}

	for _, op := range ops {
		key := canonicalName(op.Name)
		if key == "" {
			panic("mcp: operation registered with empty name")
		}
		if _, exists := r.index[key]; exists {
			panic(fmt.Sprintf("mcp: duplicate operation name %q", op.Name))
		}
		r.ops = append(r.ops, op)
		r.index[key] = op
	}

	return r
}

// Resolve finds the operation registered under any alias of name.
func (r *Registry) Resolve(name string) (*Operation, bool) {
	op, ok := r.index[canonicalName(name)]
	return op, ok
}

// Operations returns the registered operations in registration order.
func (r *Registry) Operations() []*Operation {
	out := make([]*Operation, len(r.ops))
	copy(out, r.ops)
	return out
}

// Descriptors returns enumeration entries for every registered
// operation in registration order.
func (r *Registry) Descriptors() []ToolDescriptor {
	out := make([]ToolDescriptor, 0, len(r.ops))
	for _, op := range r.ops {
		out = append(out, op.Descriptor())
	}
	return out
}

// canonicalName lowercases a name and drops separator punctuation and
// whitespace, collapsing snake_case, kebab-case, and camelCase
// spellings of the same operation to one key.
func canonicalName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '_' || r == '-' || r == '.':
			return -1
		case unicode.IsSpace(r):
			return -1
		default:
			return unicode.ToLower(r)
		}
	}, name)
}
