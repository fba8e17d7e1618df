package wire

import (
	"context"
	"errors"
	"log/slog"

	"github.com/kimi-cli/kimi/pkg/broadcast"
	"github.com/kimi-cli/kimi/pkg/message"
)

// Re-exported sentinels so wire consumers need not import broadcast.
var (
	ErrShutDown  = broadcast.ErrShutDown
	ErrNoMessage = broadcast.ErrNoMessage
)

// Subscriber is one independent, ordered view of the wire.
type Subscriber = broadcast.Subscriber[Message]

// Wire is the broadcast channel for one agent run. The soul holds the
// producer side; the UI, the recorder, and any parent agent hold independent
// consumer sides. It is created per run and shut down exactly once at the
// end of the run.
type Wire struct {
	queue    *broadcast.Queue[Message]
	soulSide *SoulSide
	uiSide   *UISide
	recorder *Recorder
}

type options struct {
	fileBackend string
}

type Option func(*options)

// WithFileBackend attaches a Recorder appending every coalesced message to
// the given JSONL file.
func WithFileBackend(path string) Option {
	return func(o *options) {
		o.fileBackend = path
	}
}

func New(opts ...Option) (*Wire, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	queue := broadcast.NewQueue[Message]()
	w := &Wire{
		queue:    queue,
		soulSide: &SoulSide{queue: queue},
		uiSide:   &UISide{sub: queue.Subscribe()},
	}
	if o.fileBackend != "" {
		recorder, err := NewRecorder(o.fileBackend, queue.Subscribe())
		if err != nil {
			return nil, err
		}
		w.recorder = recorder
	}
	return w, nil
}

func (w *Wire) SoulSide() *SoulSide { return w.soulSide }
func (w *Wire) UISide() *UISide    { return w.uiSide }

// Subscribe returns an additional independent consumer view. It observes
// only messages sent after this call.
func (w *Wire) Subscribe() *Subscriber {
	return w.queue.Subscribe()
}

// Shutdown terminates all receive operations and waits for the recorder to
// drain and flush. Calling it again is a no-op.
func (w *Wire) Shutdown() {
	slog.Debug("Shutting down wire")
	w.queue.Shutdown()
	if w.recorder != nil {
		w.recorder.Wait()
	}
}

// SoulSide is the producer handle held by the agent loop. Send is safe to
// call from any goroutine and never blocks on consumers.
type SoulSide struct {
	queue *broadcast.Queue[Message]
}

// Send publishes msg to all subscribers. Sending after shutdown drops the
// message: the producer may not know its last consumers are gone, and that
// is not its problem.
func (s *SoulSide) Send(msg Message) {
	if !isStreamFragment(msg) {
		slog.Debug("Sending wire message", "type", msg.MessageType())
	}
	if err := s.queue.Publish(msg); err != nil {
		slog.Info("Dropping wire message, wire is shut down", "type", msg.MessageType())
	}
}

// UISide is the primary consumer handle.
type UISide struct {
	sub *Subscriber
}

// Receive blocks until a message arrives, the wire shuts down, or ctx is
// done.
func (u *UISide) Receive(ctx context.Context) (Message, error) {
	msg, err := u.sub.Receive(ctx)
	if err != nil {
		return nil, err
	}
	if !isStreamFragment(msg) {
		slog.Debug("Receiving wire message", "type", msg.MessageType())
	}
	return msg, nil
}

// ReceiveNoWait polls for a message, for UI loops that must stay responsive
// to other input sources. It returns nil, nil when no message is pending.
func (u *UISide) ReceiveNoWait() (Message, error) {
	msg, err := u.sub.ReceiveNoWait()
	if errors.Is(err, broadcast.ErrNoMessage) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// isStreamFragment reports whether msg is a high-volume streaming delta not
// worth a debug log line each.
func isStreamFragment(msg Message) bool {
	switch msg.(type) {
	case *message.TextPart, *message.ThinkPart, *message.ImageURLPart,
		*message.AudioURLPart, *message.ToolCallPart:
		return true
	default:
		return false
	}
}
