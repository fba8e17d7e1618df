// Package approval mediates per-tool-call authorization between tool
// execution and an external resolver (the UI, or a chat-platform adapter).
// A request is a single-shot promise: exactly one resolver settles it with
// approve, approve-for-session, or reject.
package approval

import (
	"context"
	"log/slog"
	"sync"

	"github.com/kimi-cli/kimi/pkg/broadcast"
	"github.com/kimi-cli/kimi/pkg/wire"
)

type sessionKey struct {
	sender string
	action string
}

// Publisher delivers an approval request to whoever can resolve it,
// typically the wire's soul side.
type Publisher interface {
	Send(msg wire.Message)
}

// Gate decides whether a tool action may proceed. Decisions come from three
// layers, in order: YOLO mode auto-approves everything, the session cache
// auto-approves (sender, action) pairs previously approved for the session,
// and otherwise an ApprovalRequest is published and the caller suspends
// until an external actor resolves it.
type Gate struct {
	mu        sync.Mutex
	yolo      bool
	session   map[sessionKey]struct{}
	pending   map[string]*wire.ApprovalRequest
	publisher Publisher
	fetchable *broadcast.Queue[*wire.ApprovalRequest]
	fetchSub  *broadcast.Subscriber[*wire.ApprovalRequest]
}

type Option func(*Gate)

// WithYOLO starts the gate in auto-approve-all mode.
func WithYOLO(yolo bool) Option {
	return func(g *Gate) {
		g.yolo = yolo
	}
}

// WithPublisher routes created requests to a wire producer so that wire
// subscribers observe them.
func WithPublisher(p Publisher) Option {
	return func(g *Gate) {
		g.publisher = p
	}
}

func NewGate(opts ...Option) *Gate {
	queue := broadcast.NewQueue[*wire.ApprovalRequest]()
	g := &Gate{
		session:   make(map[sessionKey]struct{}),
		pending:   make(map[string]*wire.ApprovalRequest),
		fetchable: queue,
		fetchSub:  queue.Subscribe(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// YOLO reports whether the gate auto-approves every request.
func (g *Gate) YOLO() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.yolo
}

// SetYOLO toggles auto-approve-all mode for subsequent requests.
func (g *Gate) SetYOLO(yolo bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.yolo = yolo
}

// Request asks for authorization and suspends until a decision arrives or
// ctx is done. It returns true when the action may proceed. A ctx error
// abandons the pending request; a resolver arriving later finds nothing to
// settle and that is not an error.
func (g *Gate) Request(ctx context.Context, toolCallID, sender, action, description string) (bool, error) {
	g.mu.Lock()
	if g.yolo {
		g.mu.Unlock()
		return true, nil
	}
	if _, ok := g.session[sessionKey{sender, action}]; ok {
		g.mu.Unlock()
		slog.Debug("Auto-approving from session cache", "sender", sender, "action", action)
		return true, nil
	}

	req := wire.NewApprovalRequest(toolCallID, sender, action, description)
	g.pending[req.ID] = req
	g.mu.Unlock()

	slog.Debug("Requesting approval", "id", req.ID, "sender", sender, "action", action)
	if g.publisher != nil {
		g.publisher.Send(req)
	}
	if err := g.fetchable.Publish(req); err != nil {
		slog.Warn("Approval fetch queue rejected request", "id", req.ID, "error", err)
	}

	response, err := req.Wait(ctx)
	if err != nil {
		// Abandoned: drop it so a late Resolve becomes a no-op.
		g.mu.Lock()
		delete(g.pending, req.ID)
		g.mu.Unlock()
		slog.Debug("Approval request abandoned", "id", req.ID, "error", err)
		return false, err
	}

	switch response {
	case wire.Approve:
		return true, nil
	case wire.ApproveForSession:
		g.mu.Lock()
		g.session[sessionKey{sender, action}] = struct{}{}
		g.mu.Unlock()
		return true, nil
	default:
		return false, nil
	}
}

// Resolve settles the pending request with the given id. It is safe to call
// from any goroutine or foreign thread. Resolving an id whose waiter has
// vanished is a logged no-op; resolving the same request twice panics, since
// that is a caller bug, not a race to paper over.
func (g *Gate) Resolve(id string, response wire.ApprovalResponse) {
	g.mu.Lock()
	req, ok := g.pending[id]
	g.mu.Unlock()
	if !ok {
		slog.Warn("Resolving unknown approval request", "id", id)
		return
	}
	slog.Debug("Resolving approval request", "id", id, "response", response)
	req.Resolve(response)
}

// FetchRequest pulls the next unresolved request, for resolvers that cannot
// subscribe to the wire. It blocks until a request is created or ctx is
// done.
func (g *Gate) FetchRequest(ctx context.Context) (*wire.ApprovalRequest, error) {
	for {
		req, err := g.fetchSub.Receive(ctx)
		if err != nil {
			return nil, err
		}
		if req.Resolved() {
			continue
		}
		return req, nil
	}
}
