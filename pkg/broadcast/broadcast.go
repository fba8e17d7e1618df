// Package broadcast provides an unbounded in-process fan-out queue: one
// producer, N independent subscribers, each seeing every message published
// after it subscribed, in publish order.
package broadcast

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrShutDown is returned once a queue has been shut down and the
	// subscriber's backlog is drained.
	ErrShutDown = errors.New("broadcast: queue is shut down")
	// ErrNoMessage is returned by ReceiveNoWait when no message is pending.
	ErrNoMessage = errors.New("broadcast: no message available")
)

// Queue fans published messages out to all current subscribers. Publish
// never blocks on consumers: each subscriber owns an unbounded backlog.
// Message volume is bounded by model token throughput, so no backpressure
// policy is needed.
type Queue[T any] struct {
	mu       sync.Mutex
	subs     []*Subscriber[T]
	shutDown bool
}

func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Publish delivers msg to every current subscriber. It is safe to call from
// any goroutine. After Shutdown it returns ErrShutDown and drops the message.
func (q *Queue[T]) Publish(msg T) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.shutDown {
		return ErrShutDown
	}
	for _, sub := range q.subs {
		sub.push(msg)
	}
	return nil
}

// Subscribe registers a new subscriber. It only observes messages published
// after this call. Subscribing to a shut-down queue yields a subscriber
// whose Receive immediately reports ErrShutDown.
func (q *Queue[T]) Subscribe() *Subscriber[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	sub := &Subscriber[T]{wake: make(chan struct{}, 1)}
	if q.shutDown {
		sub.shutDown = true
		return sub
	}
	q.subs = append(q.subs, sub)
	return sub
}

// Shutdown signals all current and future receive operations. Pending
// backlogs remain drainable; once empty, Receive returns ErrShutDown.
// Calling Shutdown again is a no-op.
func (q *Queue[T]) Shutdown() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.shutDown {
		return
	}
	q.shutDown = true
	for _, sub := range q.subs {
		sub.close()
	}
	q.subs = nil
}

// Subscriber is one independent, ordered view of the queue. It is intended
// for a single consuming goroutine.
type Subscriber[T any] struct {
	mu       sync.Mutex
	backlog  []T
	shutDown bool
	wake     chan struct{}
}

// Receive blocks until a message is available, the queue shuts down, or ctx
// is done. Remaining backlog is delivered before ErrShutDown is reported.
func (s *Subscriber[T]) Receive(ctx context.Context) (T, error) {
	for {
		s.mu.Lock()
		if len(s.backlog) > 0 {
			msg := s.backlog[0]
			s.backlog = s.backlog[1:]
			s.mu.Unlock()
			return msg, nil
		}
		if s.shutDown {
			s.mu.Unlock()
			var zero T
			return zero, ErrShutDown
		}
		s.mu.Unlock()

		select {
		case <-s.wake:
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}

// ReceiveNoWait polls for a message without blocking. It returns
// ErrNoMessage when the backlog is empty, or ErrShutDown when additionally
// the queue has shut down.
func (s *Subscriber[T]) ReceiveNoWait() (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.backlog) > 0 {
		msg := s.backlog[0]
		s.backlog = s.backlog[1:]
		return msg, nil
	}
	var zero T
	if s.shutDown {
		return zero, ErrShutDown
	}
	return zero, ErrNoMessage
}

func (s *Subscriber[T]) push(msg T) {
	s.mu.Lock()
	s.backlog = append(s.backlog, msg)
	s.mu.Unlock()
	s.signal()
}

func (s *Subscriber[T]) close() {
	s.mu.Lock()
	s.shutDown = true
	s.mu.Unlock()
	s.signal()
}

func (s *Subscriber[T]) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}
