package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kimi-cli/kimi/pkg/message"
	"github.com/kimi-cli/kimi/pkg/tooling"
)

func floatPtr(f float64) *float64 { return &f }

func allMessageSamples() []Message {
	return []Message{
		&StepBegin{N: 3},
		&StepInterrupted{},
		&CompactionBegin{},
		&CompactionEnd{},
		&StatusUpdate{ContextUsage: floatPtr(0.42)},
		&StatusUpdate{},
		message.NewTextPart("hello"),
		message.NewThinkPart("hmm"),
		message.NewImageURLPart("data:image/png;base64,AAAA"),
		message.NewAudioURLPart("http://example.com/a.mp3"),
		message.NewToolCall("c1", "shell", `{"cmd":"ls"}`),
		message.NewToolCallPart("c1", `{"cmd`),
		&tooling.Result{ToolCallID: "c1", ReturnValue: tooling.OkText("ok")},
		&tooling.Result{ToolCallID: "c2", ReturnValue: tooling.NotFoundError{Name: "gone"}},
		&SubagentEvent{
			TaskToolCallID: "task-1",
			Event:          message.NewTextPart("nested"),
		},
		&SubagentEvent{
			TaskToolCallID: "task-1",
			Event: &SubagentEvent{
				TaskToolCallID: "task-2",
				Event:          &StepBegin{N: 1},
			},
		},
		&ApprovalRequest{
			ID:          "req-1",
			ToolCallID:  "c1",
			Sender:      "shell",
			Action:      "run",
			Description: "Run a command.",
		},
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	for _, msg := range allMessageSamples() {
		t.Run(msg.MessageType(), func(t *testing.T) {
			env, err := Serialize(msg)
			require.NoError(t, err)
			require.Equal(t, msg.MessageType(), env.Type)

			got, err := Deserialize(env)
			require.NoError(t, err)
			assert.Equal(t, msg, got)
		})
	}
}

func TestDeserializeUnknownTypeIsHardError(t *testing.T) {
	_, err := Deserialize(Envelope{Type: "FancyNewEvent", Payload: []byte(`{}`)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FancyNewEvent")
}

func TestDeserializeInvalidPayload(t *testing.T) {
	_, err := Deserialize(Envelope{Type: "StepBegin", Payload: []byte(`{"n":"not a number"}`)})
	require.Error(t, err)
}

func TestSubagentEventMustWrapEvent(t *testing.T) {
	inner, err := Serialize(&ApprovalRequest{ID: "r", ToolCallID: "c", Sender: "s", Action: "a", Description: "d"})
	require.NoError(t, err)

	outer, err := Serialize(&SubagentEvent{TaskToolCallID: "t", Event: message.NewTextPart("x")})
	require.NoError(t, err)

	// Splice the request into the wrapper's payload by hand.
	payload := []byte(`{"task_tool_call_id":"t","event":{"type":"` + inner.Type + `","payload":` + string(inner.Payload) + `}}`)
	_, err = Deserialize(Envelope{Type: outer.Type, Payload: payload})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must wrap an event")
}

func TestIsEventIsRequest(t *testing.T) {
	assert.True(t, IsEvent(&StepBegin{N: 1}))
	assert.True(t, IsEvent(message.NewTextPart("x")))
	req := NewApprovalRequest("c1", "shell", "run", "d")
	assert.True(t, IsRequest(req))
	assert.False(t, IsEvent(req))
}
