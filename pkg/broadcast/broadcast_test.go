package broadcast

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receiveAll(t *testing.T, sub *Subscriber[int], n int) []int {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out := make([]int, 0, n)
	for range n {
		msg, err := sub.Receive(ctx)
		require.NoError(t, err)
		out = append(out, msg)
	}
	return out
}

func TestFanOut(t *testing.T) {
	q := NewQueue[int]()

	subs := []*Subscriber[int]{q.Subscribe(), q.Subscribe(), q.Subscribe()}
	want := []int{1, 2, 3, 4, 5}
	for _, msg := range want {
		require.NoError(t, q.Publish(msg))
	}

	for _, sub := range subs {
		assert.Equal(t, want, receiveAll(t, sub, len(want)))
	}
}

func TestNoReplayForLateSubscriber(t *testing.T) {
	q := NewQueue[int]()
	early := q.Subscribe()

	require.NoError(t, q.Publish(1))
	require.NoError(t, q.Publish(2))

	late := q.Subscribe()
	require.NoError(t, q.Publish(3))

	assert.Equal(t, []int{1, 2, 3}, receiveAll(t, early, 3))
	assert.Equal(t, []int{3}, receiveAll(t, late, 1))
}

func TestShutdownUnblocksPendingReceive(t *testing.T) {
	q := NewQueue[int]()
	sub := q.Subscribe()

	errCh := make(chan error, 1)
	go func() {
		_, err := sub.Receive(context.Background())
		errCh <- err
	}()

	// Give the receiver a chance to block first.
	time.Sleep(10 * time.Millisecond)
	q.Shutdown()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrShutDown)
	case <-time.After(time.Second):
		t.Fatal("pending Receive did not terminate after Shutdown")
	}
}

func TestPublishAfterShutdownIsDropped(t *testing.T) {
	q := NewQueue[int]()
	sub := q.Subscribe()
	q.Shutdown()
	q.Shutdown() // second shutdown is a no-op

	err := q.Publish(42)
	assert.ErrorIs(t, err, ErrShutDown)

	_, err = sub.Receive(context.Background())
	assert.ErrorIs(t, err, ErrShutDown)
}

func TestBacklogDrainsBeforeShutdownSignal(t *testing.T) {
	q := NewQueue[int]()
	sub := q.Subscribe()

	require.NoError(t, q.Publish(1))
	require.NoError(t, q.Publish(2))
	q.Shutdown()

	assert.Equal(t, []int{1, 2}, receiveAll(t, sub, 2))
	_, err := sub.Receive(context.Background())
	assert.ErrorIs(t, err, ErrShutDown)
}

func TestReceiveNoWait(t *testing.T) {
	q := NewQueue[int]()
	sub := q.Subscribe()

	_, err := sub.ReceiveNoWait()
	assert.ErrorIs(t, err, ErrNoMessage)

	require.NoError(t, q.Publish(7))
	msg, err := sub.ReceiveNoWait()
	require.NoError(t, err)
	assert.Equal(t, 7, msg)

	q.Shutdown()
	_, err = sub.ReceiveNoWait()
	assert.ErrorIs(t, err, ErrShutDown)
}

func TestReceiveContextCancel(t *testing.T) {
	q := NewQueue[int]()
	sub := q.Subscribe()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := sub.Receive(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConcurrentPublishers(t *testing.T) {
	q := NewQueue[int]()
	sub := q.Subscribe()

	const perPublisher = 100
	var wg sync.WaitGroup
	for p := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perPublisher {
				assert.NoError(t, q.Publish(p*perPublisher+i))
			}
		}()
	}
	wg.Wait()

	got := receiveAll(t, sub, 4*perPublisher)
	seen := make(map[int]bool, len(got))
	for _, v := range got {
		assert.False(t, seen[v], "duplicate delivery of %d", v)
		seen[v] = true
	}
	assert.Len(t, seen, 4*perPublisher)
}

func TestSubscribeAfterShutdown(t *testing.T) {
	q := NewQueue[int]()
	q.Shutdown()

	sub := q.Subscribe()
	_, err := sub.Receive(context.Background())
	assert.ErrorIs(t, err, ErrShutDown)
}
