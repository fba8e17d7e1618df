package wire

import (
	"github.com/kimi-cli/kimi/pkg/message"
)

// Coalescer collapses consecutive streaming fragments of the same logical
// item into one accumulated message. It holds at most one pending mergeable
// message. State is per consumer: two consumers wanting coalesced views each
// run their own Coalescer.
type Coalescer struct {
	pending message.Mergeable
}

// Feed processes one incoming message and returns the messages that are now
// complete, in order. A mergeable message is buffered or merged into the
// pending buffer; a merge that does not apply flushes the buffer and starts
// a new one. A non-mergeable message flushes the buffer and passes through.
func (c *Coalescer) Feed(msg Message) []Message {
	m, ok := msg.(message.Mergeable)
	if !ok {
		out := c.flush()
		return append(out, msg)
	}

	if c.pending == nil {
		// Clone so accumulation never mutates a message other
		// subscribers also received.
		c.pending = m.Clone()
		return nil
	}
	if c.pending.MergeInPlace(m) {
		return nil
	}
	out := c.flush()
	c.pending = m.Clone()
	return out
}

// Flush returns the pending buffered message, if any. Call it when the
// stream ends.
func (c *Coalescer) Flush() (Message, bool) {
	out := c.flush()
	if len(out) == 0 {
		return nil, false
	}
	return out[0], true
}

func (c *Coalescer) flush() []Message {
	if c.pending == nil {
		return nil
	}
	msg, ok := c.pending.(Message)
	if !ok {
		// Every Mergeable in the closed set is a Message.
		panic("coalescer: pending buffer is not a wire message")
	}
	c.pending = nil
	return []Message{msg}
}
