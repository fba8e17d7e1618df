package message

// FunctionCall names a tool and carries its raw JSON arguments.
type FunctionCall struct {
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// ToolCall is a complete tool invocation emitted by the model. During
// streaming, later argument fragments arrive as ToolCallPart messages and are
// merged into the ToolCall sharing their id.
type ToolCall struct {
	ID       string       `json:"id,omitempty"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

func NewToolCall(id, name, arguments string) *ToolCall {
	return &ToolCall{
		ID:   id,
		Type: "function",
		Function: FunctionCall{
			Name:      name,
			Arguments: arguments,
		},
	}
}

func (tc *ToolCall) MessageType() string { return "ToolCall" }

// MergeInPlace accepts argument fragments for this call. A fragment with a
// different id belongs to another call and is rejected.
func (tc *ToolCall) MergeInPlace(other Mergeable) bool {
	o, ok := other.(*ToolCallPart)
	if !ok {
		return false
	}
	if o.ID != "" && o.ID != tc.ID {
		return false
	}
	tc.Function.Arguments += o.Arguments
	return true
}

func (tc *ToolCall) Clone() Mergeable {
	c := *tc
	return &c
}

// ToolCallPart is a streaming fragment of a tool call's arguments.
type ToolCallPart struct {
	ID        string `json:"id,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

func NewToolCallPart(id, arguments string) *ToolCallPart {
	return &ToolCallPart{ID: id, Arguments: arguments}
}

func (p *ToolCallPart) MessageType() string { return "ToolCallPart" }

func (p *ToolCallPart) MergeInPlace(other Mergeable) bool {
	o, ok := other.(*ToolCallPart)
	if !ok {
		return false
	}
	if o.ID != "" && p.ID != "" && o.ID != p.ID {
		return false
	}
	p.Arguments += o.Arguments
	return true
}

func (p *ToolCallPart) Clone() Mergeable {
	c := *p
	return &c
}
