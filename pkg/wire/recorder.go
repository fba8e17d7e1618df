package wire

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"
)

// Record is one line of the recorder log.
type Record struct {
	Timestamp float64  `json:"timestamp"`
	Message   Envelope `json:"message"`
}

// Recorder consumes one wire subscriber, coalesces streaming fragments, and
// appends each resulting message to an append-only JSONL file, one record
// per line, flushed per write. The file is the durable resume and audit
// record for the run; a crash loses at most the message being written.
type Recorder struct {
	file *os.File
	sub  *Subscriber
	done chan struct{}
}

func NewRecorder(path string, sub *Subscriber) (*Recorder, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open wire record file: %w", err)
	}
	r := &Recorder{
		file: file,
		sub:  sub,
		done: make(chan struct{}),
	}
	go r.consume()
	return r, nil
}

// Wait blocks until the recorder has drained its subscriber, flushed the
// pending merge buffer, and closed the file. It returns only after the wire
// has shut down.
func (r *Recorder) Wait() {
	<-r.done
}

func (r *Recorder) consume() {
	defer close(r.done)
	defer r.file.Close()

	var coalescer Coalescer
	for {
		msg, err := r.sub.Receive(context.Background())
		if err != nil {
			if !errors.Is(err, ErrShutDown) {
				slog.Error("Wire recorder receive failed", "error", err)
			}
			if last, ok := coalescer.Flush(); ok {
				r.record(last)
			}
			return
		}
		for _, out := range coalescer.Feed(msg) {
			r.record(out)
		}
	}
}

func (r *Recorder) record(msg Message) {
	env, err := Serialize(msg)
	if err != nil {
		slog.Error("Failed to serialize wire message for recording", "type", msg.MessageType(), "error", err)
		return
	}
	line, err := json.Marshal(Record{
		Timestamp: float64(time.Now().UnixNano()) / 1e9,
		Message:   env,
	})
	if err != nil {
		slog.Error("Failed to marshal wire record", "type", msg.MessageType(), "error", err)
		return
	}
	if _, err := r.file.Write(append(line, '\n')); err != nil {
		slog.Error("Failed to append wire record", "error", err)
	}
}

// LogEntry is one decoded line of a recorder log.
type LogEntry struct {
	Timestamp float64
	Message   Message
}

// ReadLog decodes a recorder log written by Recorder. Decoding stops with an
// error on the first malformed line or unknown message type.
func ReadLog(data []byte) ([]LogEntry, error) {
	var entries []LogEntry
	dec := json.NewDecoder(bytes.NewReader(data))
	for dec.More() {
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("decode wire record %d: %w", len(entries), err)
		}
		msg, err := Deserialize(rec.Message)
		if err != nil {
			return nil, fmt.Errorf("decode wire record %d: %w", len(entries), err)
		}
		entries = append(entries, LogEntry{Timestamp: rec.Timestamp, Message: msg})
	}
	return entries, nil
}
