// Package wire is the channel connecting the agent loop ("the soul") to its
// consumers: the interactive UI, the recorder, and parent agents observing a
// sub-agent. It defines the closed set of messages that travel on the
// channel, the envelope serialization for durable recording, the broadcast
// bus itself, and the streaming-delta coalescer.
package wire

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Message is anything that may travel on the wire. The set of concrete types
// is closed; Serialize and Deserialize enumerate it via a static table, and
// an unknown type name on decode is a hard error.
//
// Messages split into events, which expect no response, and requests, which
// expect exactly one. ApprovalRequest is currently the only request.
type Message interface {
	MessageType() string
}

// IsRequest reports whether msg expects a response.
func IsRequest(msg Message) bool {
	_, ok := msg.(*ApprovalRequest)
	return ok
}

// IsEvent reports whether msg is a plain event.
func IsEvent(msg Message) bool {
	return !IsRequest(msg)
}

// StepBegin marks the beginning of an agent step. It must precede any other
// event in the step.
type StepBegin struct {
	N int `json:"n"`
}

func (*StepBegin) MessageType() string { return "StepBegin" }

// StepInterrupted marks a step that ended abnormally, either by user
// intervention or an error.
type StepInterrupted struct{}

func (*StepInterrupted) MessageType() string { return "StepInterrupted" }

// CompactionBegin marks the start of a context compaction. It must appear
// within a step and be directly followed by CompactionEnd.
type CompactionBegin struct{}

func (*CompactionBegin) MessageType() string { return "CompactionBegin" }

type CompactionEnd struct{}

func (*CompactionEnd) MessageType() string { return "CompactionEnd" }

// StatusUpdate reports the soul's current status. Nil fields mean "no change
// from the previous status".
type StatusUpdate struct {
	ContextUsage *float64 `json:"context_usage"`
}

func (*StatusUpdate) MessageType() string { return "StatusUpdate" }

// SubagentEvent wraps an event produced by a nested agent running as a tool.
// Nesting wraps once per level; consumers unwrap recursively.
type SubagentEvent struct {
	TaskToolCallID string
	Event          Message
}

func (*SubagentEvent) MessageType() string { return "SubagentEvent" }

type subagentEventJSON struct {
	TaskToolCallID string   `json:"task_tool_call_id"`
	Event          Envelope `json:"event"`
}

func (e *SubagentEvent) MarshalJSON() ([]byte, error) {
	env, err := Serialize(e.Event)
	if err != nil {
		return nil, err
	}
	return json.Marshal(subagentEventJSON{
		TaskToolCallID: e.TaskToolCallID,
		Event:          env,
	})
}

func (e *SubagentEvent) UnmarshalJSON(data []byte) error {
	var raw subagentEventJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	inner, err := Deserialize(raw.Event)
	if err != nil {
		return err
	}
	if !IsEvent(inner) {
		return fmt.Errorf("subagent event must wrap an event, got %s", inner.MessageType())
	}
	e.TaskToolCallID = raw.TaskToolCallID
	e.Event = inner
	return nil
}

// ApprovalResponse is the decision resolving an ApprovalRequest.
type ApprovalResponse string

const (
	Approve           ApprovalResponse = "approve"
	ApproveForSession ApprovalResponse = "approve_for_session"
	Reject            ApprovalResponse = "reject"
)

// ApprovalRequest asks an external resolver to authorize a tool action. It
// carries a single-assignment result slot: Resolve sets it exactly once and
// a second Resolve panics, since double-resolution means the two halves of
// the system have diverged.
type ApprovalRequest struct {
	ID          string `json:"id"`
	ToolCallID  string `json:"tool_call_id"`
	Sender      string `json:"sender"`
	Action      string `json:"action"`
	Description string `json:"description"`

	mu       sync.Mutex
	done     chan struct{}
	response ApprovalResponse
	resolved bool
}

func NewApprovalRequest(toolCallID, sender, action, description string) *ApprovalRequest {
	return &ApprovalRequest{
		ID:          uuid.NewString(),
		ToolCallID:  toolCallID,
		Sender:      sender,
		Action:      action,
		Description: description,
	}
}

func (*ApprovalRequest) MessageType() string { return "ApprovalRequest" }

// Wait suspends until the request is resolved or ctx is done. A ctx error
// abandons the request: it stays unresolved and a later Resolve is a no-op
// for the vanished waiter.
func (r *ApprovalRequest) Wait(ctx context.Context) (ApprovalResponse, error) {
	r.mu.Lock()
	if r.resolved {
		resp := r.response
		r.mu.Unlock()
		return resp, nil
	}
	if r.done == nil {
		r.done = make(chan struct{})
	}
	done := r.done
	r.mu.Unlock()

	select {
	case <-done:
		r.mu.Lock()
		resp := r.response
		r.mu.Unlock()
		return resp, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Resolve settles the request. Resolving an already-resolved request panics.
// Resolve is safe to call from any goroutine, including one running on a
// foreign event loop thread.
func (r *ApprovalRequest) Resolve(response ApprovalResponse) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.resolved {
		panic(fmt.Sprintf("approval request %s resolved twice", r.ID))
	}
	r.response = response
	r.resolved = true
	if r.done != nil {
		close(r.done)
	}
}

// Resolved reports whether the result slot is set.
func (r *ApprovalRequest) Resolved() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolved
}
