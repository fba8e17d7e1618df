package tooling

import (
	"context"
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/kimi-cli/kimi/pkg/message"
)

// Tool is a callable capability exposed to the model. Call receives the tool
// call it is serving as an explicit parameter so that concurrently executing
// invocations each observe only their own identity (no ambient state).
//
// A nil error with any ReturnValue is an ordinary outcome, including Error
// variants. A non-nil error or a panic is converted by the dispatcher into a
// RuntimeError result; it never propagates to the caller of Handle.
type Tool interface {
	Name() string
	Description() string
	Parameters() *jsonschema.Schema
	Call(ctx context.Context, call *message.ToolCall, args json.RawMessage) (ReturnValue, error)
}

// Descriptor is the model-facing declaration of a tool.
type Descriptor struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Parameters  *jsonschema.Schema `json:"parameters"`
}

// Describe builds the model-facing declaration for a tool.
func Describe(t Tool) Descriptor {
	return Descriptor{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters:  t.Parameters(),
	}
}

// Func adapts a plain function into a raw-JSON-argument Tool.
type Func struct {
	ToolName        string
	ToolDescription string
	ToolParameters  *jsonschema.Schema
	Fn              func(ctx context.Context, call *message.ToolCall, args json.RawMessage) (ReturnValue, error)
}

func (f *Func) Name() string                   { return f.ToolName }
func (f *Func) Description() string            { return f.ToolDescription }
func (f *Func) Parameters() *jsonschema.Schema { return f.ToolParameters }

func (f *Func) Call(ctx context.Context, call *message.ToolCall, args json.RawMessage) (ReturnValue, error) {
	return f.Fn(ctx, call, args)
}
