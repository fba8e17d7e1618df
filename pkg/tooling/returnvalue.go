// Package tooling defines the Tool calling conventions and the closed set of
// tool return values that the dispatcher reports back to the model.
package tooling

import (
	"encoding/json"
	"fmt"

	"github.com/kimi-cli/kimi/pkg/message"
)

// ReturnValue is the closed union of possible tool outcomes.
type ReturnValue interface {
	isReturnValue()
	returnType() string
}

// Ok is a successful tool result carrying output content parts.
type Ok struct {
	Output message.Parts `json:"output"`
}

// Error is a tool-reported failure. Output may carry partial output or
// diagnostics; Brief is a short form suitable for a status line.
type Error struct {
	Output  message.Parts `json:"output"`
	Message string        `json:"message"`
	Brief   string        `json:"brief"`
}

// RuntimeError wraps a panic or unexpected error from inside tool execution.
type RuntimeError struct {
	Message string `json:"message"`
}

// ParseError reports malformed tool-call arguments.
type ParseError struct {
	Message string `json:"message"`
}

// NotFoundError reports a tool-call naming an unregistered tool.
type NotFoundError struct {
	Name string `json:"name"`
}

func (Ok) isReturnValue()            {}
func (Error) isReturnValue()         {}
func (RuntimeError) isReturnValue()  {}
func (ParseError) isReturnValue()    {}
func (NotFoundError) isReturnValue() {}

func (Ok) returnType() string            { return "ok" }
func (Error) returnType() string         { return "error" }
func (RuntimeError) returnType() string  { return "runtime_error" }
func (ParseError) returnType() string    { return "parse_error" }
func (NotFoundError) returnType() string { return "not_found_error" }

// OkText is shorthand for a successful result with a single text part.
func OkText(text string) Ok {
	return Ok{Output: message.Parts{message.NewTextPart(text)}}
}

// Rejected is the canonical result for a tool call the user refused to
// authorize.
func Rejected() Error {
	return Error{
		Output:  message.Parts{},
		Message: "The user rejected the tool call.",
		Brief:   "rejected",
	}
}

// Result correlates a tool outcome with the tool call that produced it.
// Consumers must correlate by ToolCallID; results for concurrently running
// calls arrive in completion order, not issue order.
type Result struct {
	ToolCallID  string
	ReturnValue ReturnValue
}

func (Result) MessageType() string { return "ToolResult" }

type resultEnvelope struct {
	ToolCallID  string       `json:"tool_call_id"`
	ReturnValue taggedReturn `json:"return_value"`
}

type taggedReturn struct {
	Type    string        `json:"type"`
	Output  message.Parts `json:"output"`
	Message string        `json:"message,omitempty"`
	Brief   string        `json:"brief,omitempty"`
	Name    string        `json:"name,omitempty"`
}

func (r Result) MarshalJSON() ([]byte, error) {
	env := resultEnvelope{ToolCallID: r.ToolCallID}
	if r.ReturnValue == nil {
		return nil, fmt.Errorf("tool result %q has no return value", r.ToolCallID)
	}
	env.ReturnValue.Type = r.ReturnValue.returnType()
	switch v := r.ReturnValue.(type) {
	case Ok:
		env.ReturnValue.Output = v.Output
	case Error:
		env.ReturnValue.Output = v.Output
		env.ReturnValue.Message = v.Message
		env.ReturnValue.Brief = v.Brief
	case RuntimeError:
		env.ReturnValue.Message = v.Message
	case ParseError:
		env.ReturnValue.Message = v.Message
	case NotFoundError:
		env.ReturnValue.Name = v.Name
	default:
		return nil, fmt.Errorf("unknown tool return value type: %T", r.ReturnValue)
	}
	return json.Marshal(env)
}

func (r *Result) UnmarshalJSON(data []byte) error {
	var env resultEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	r.ToolCallID = env.ToolCallID
	switch env.ReturnValue.Type {
	case "ok":
		r.ReturnValue = Ok{Output: env.ReturnValue.Output}
	case "error":
		r.ReturnValue = Error{
			Output:  env.ReturnValue.Output,
			Message: env.ReturnValue.Message,
			Brief:   env.ReturnValue.Brief,
		}
	case "runtime_error":
		r.ReturnValue = RuntimeError{Message: env.ReturnValue.Message}
	case "parse_error":
		r.ReturnValue = ParseError{Message: env.ReturnValue.Message}
	case "not_found_error":
		r.ReturnValue = NotFoundError{Name: env.ReturnValue.Name}
	default:
		return fmt.Errorf("unknown tool return value type: %q", env.ReturnValue.Type)
	}
	return nil
}
