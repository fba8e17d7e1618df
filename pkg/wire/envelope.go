package wire

import (
	"encoding/json"
	"fmt"

	"github.com/kimi-cli/kimi/pkg/message"
	"github.com/kimi-cli/kimi/pkg/tooling"
)

// Envelope is the serialized form of a wire message: the concrete type name
// and its type-specific payload.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// decoders is the static table of every concrete wire message type. The
// closed set is auditable here; nothing is discovered by reflection.
var decoders = map[string]func() Message{
	"StepBegin":       func() Message { return &StepBegin{} },
	"StepInterrupted": func() Message { return &StepInterrupted{} },
	"CompactionBegin": func() Message { return &CompactionBegin{} },
	"CompactionEnd":   func() Message { return &CompactionEnd{} },
	"StatusUpdate":    func() Message { return &StatusUpdate{} },
	"TextPart":        func() Message { return &message.TextPart{} },
	"ThinkPart":       func() Message { return &message.ThinkPart{} },
	"ImageURLPart":    func() Message { return &message.ImageURLPart{} },
	"AudioURLPart":    func() Message { return &message.AudioURLPart{} },
	"ToolCall":        func() Message { return &message.ToolCall{} },
	"ToolCallPart":    func() Message { return &message.ToolCallPart{} },
	"ToolResult":      func() Message { return &tooling.Result{} },
	"SubagentEvent":   func() Message { return &SubagentEvent{} },
	"ApprovalRequest": func() Message { return &ApprovalRequest{} },
}

// Serialize encodes msg into an envelope. A message type missing from the
// static table is a programming error surfaced as an error, not silently
// accepted.
func Serialize(msg Message) (Envelope, error) {
	name := msg.MessageType()
	if _, ok := decoders[name]; !ok {
		return Envelope{}, fmt.Errorf("unknown wire message type: %q", name)
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", name, err)
	}
	return Envelope{Type: name, Payload: payload}, nil
}

// Deserialize decodes an envelope back into a message. An unrecognized type
// name is a hard error: the two halves of the system have diverged and there
// is no forward-compatible ignore.
func Deserialize(env Envelope) (Message, error) {
	construct, ok := decoders[env.Type]
	if !ok {
		return nil, fmt.Errorf("unknown wire message type: %q", env.Type)
	}
	msg := construct()
	if err := json.Unmarshal(env.Payload, msg); err != nil {
		return nil, fmt.Errorf("unmarshal %s payload: %w", env.Type, err)
	}
	return msg, nil
}
