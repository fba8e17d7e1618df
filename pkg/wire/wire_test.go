package wire

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kimi-cli/kimi/pkg/message"
)

func TestWireFanOut(t *testing.T) {
	w, err := New()
	require.NoError(t, err)

	extra := w.Subscribe()

	msgs := []Message{
		&StepBegin{N: 1},
		message.NewTextPart("hi"),
		&StepInterrupted{},
	}
	for _, msg := range msgs {
		w.SoulSide().Send(msg)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for i, want := range msgs {
		got, err := w.UISide().Receive(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got, "ui message %d", i)
	}
	for i, want := range msgs {
		got, err := extra.Receive(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got, "extra subscriber message %d", i)
	}
}

func TestWireReceiveNoWait(t *testing.T) {
	w, err := New()
	require.NoError(t, err)

	msg, err := w.UISide().ReceiveNoWait()
	require.NoError(t, err)
	assert.Nil(t, msg)

	w.SoulSide().Send(&StepBegin{N: 1})
	msg, err = w.UISide().ReceiveNoWait()
	require.NoError(t, err)
	assert.Equal(t, &StepBegin{N: 1}, msg)
}

func TestWireShutdownTerminatesReceive(t *testing.T) {
	w, err := New()
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() {
		_, err := w.UISide().Receive(context.Background())
		errCh <- err
	}()

	time.Sleep(10 * time.Millisecond)
	w.Shutdown()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrShutDown)
	case <-time.After(time.Second):
		t.Fatal("Receive did not terminate after Shutdown")
	}

	// Sending after shutdown neither blocks nor panics.
	w.SoulSide().Send(&StepBegin{N: 9})
}

func TestRecorderWritesCoalescedLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wire.jsonl")
	w, err := New(WithFileBackend(path))
	require.NoError(t, err)

	w.SoulSide().Send(&StepBegin{N: 1})
	w.SoulSide().Send(message.NewTextPart("Hel"))
	w.SoulSide().Send(message.NewTextPart("lo, "))
	w.SoulSide().Send(message.NewTextPart("world"))
	w.Shutdown()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	entries, err := ReadLog(data)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, &StepBegin{N: 1}, entries[0].Message)
	assert.Equal(t, message.NewTextPart("Hello, world"), entries[1].Message)

	now := float64(time.Now().UnixNano()) / 1e9
	for _, entry := range entries {
		assert.InDelta(t, now, entry.Timestamp, 60)
	}
}

func TestRecorderFlushOrderAroundControlFlow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wire.jsonl")
	w, err := New(WithFileBackend(path))
	require.NoError(t, err)

	w.SoulSide().Send(message.NewTextPart("Hel"))
	w.SoulSide().Send(message.NewTextPart("lo"))
	w.SoulSide().Send(&StepInterrupted{})
	w.Shutdown()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	entries, err := ReadLog(data)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, message.NewTextPart("Hello"), entries[0].Message)
	assert.Equal(t, &StepInterrupted{}, entries[1].Message)
}

func TestRecorderLogIsValidJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wire.jsonl")
	w, err := New(WithFileBackend(path))
	require.NoError(t, err)

	w.SoulSide().Send(&StepBegin{N: 1})
	w.SoulSide().Send(&CompactionBegin{})
	w.SoulSide().Send(&CompactionEnd{})
	w.Shutdown()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var count int
	for line := range bytes.Lines(data) {
		var rec Record
		require.NoError(t, json.Unmarshal(line, &rec))
		count++
	}
	assert.Equal(t, 3, count)
}

func TestReadLogUnknownTypeIsHardError(t *testing.T) {
	_, err := ReadLog([]byte(`{"timestamp":1.5,"message":{"type":"Mystery","payload":{}}}` + "\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Mystery")
}
