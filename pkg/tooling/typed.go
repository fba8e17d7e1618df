package tooling

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/kimi-cli/kimi/pkg/message"
)

// TypedTool wraps a function taking a declared parameter struct. Arguments
// are validated against the schema derived from T before the function runs;
// invalid arguments produce a ParseError result without invoking it.
type TypedTool[T any] struct {
	name        string
	description string
	schema      *jsonschema.Schema
	resolved    *jsonschema.Resolved
	fn          func(ctx context.Context, call *message.ToolCall, params T) (ReturnValue, error)
}

// NewTypedTool derives the parameter schema from T. It fails when T cannot
// be expressed as a JSON schema, which is a programming error at
// registration time, not at call time.
func NewTypedTool[T any](name, description string, fn func(ctx context.Context, call *message.ToolCall, params T) (ReturnValue, error)) (*TypedTool[T], error) {
	schema, err := jsonschema.For[T](nil)
	if err != nil {
		return nil, fmt.Errorf("derive parameter schema for tool %q: %w", name, err)
	}
	resolved, err := schema.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("resolve parameter schema for tool %q: %w", name, err)
	}
	return &TypedTool[T]{
		name:        name,
		description: description,
		schema:      schema,
		resolved:    resolved,
		fn:          fn,
	}, nil
}

func (t *TypedTool[T]) Name() string                   { return t.name }
func (t *TypedTool[T]) Description() string            { return t.description }
func (t *TypedTool[T]) Parameters() *jsonschema.Schema { return t.schema }

func (t *TypedTool[T]) Call(ctx context.Context, call *message.ToolCall, args json.RawMessage) (ReturnValue, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	var instance any
	if err := json.Unmarshal(args, &instance); err != nil {
		return ParseError{Message: err.Error()}, nil
	}
	if err := t.resolved.Validate(instance); err != nil {
		return ParseError{Message: err.Error()}, nil
	}

	var params T
	if err := json.Unmarshal(args, &params); err != nil {
		return ParseError{Message: err.Error()}, nil
	}
	return t.fn(ctx, call, params)
}
