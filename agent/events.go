package agent

import (
	"sync"
	"time"
)

// EventKind identifies the type of session event.
type EventKind string

const (
	EventSessionStart    EventKind = "session_start"
	EventSessionEnd      EventKind = "session_end"
	EventUserInput       EventKind = "user_input"
	EventDecisionRetry   EventKind = "decision_retry"
	EventToolCallStart   EventKind = "tool_call_start"
	EventToolCallEnd     EventKind = "tool_call_end"
	EventDetachedFailure EventKind = "detached_failure"
	EventError           EventKind = "error"
)

// SessionEvent is a typed event emitted by the session machinery. The
// event stream is the central sink for failures that would otherwise be
// lost in fire-and-forget work.
type SessionEvent struct {
	Kind      EventKind      `json:"kind"`
	Timestamp time.Time      `json:"timestamp"`
	SessionID string         `json:"session_id"`
	UserID    int64          `json:"user_id"`
	Data      map[string]any `json:"data,omitempty"`
}

// EventEmitter delivers typed events to the host application via a
// buffered channel. A full channel drops events rather than blocking the
// session loop.
type EventEmitter struct {
	ch     chan SessionEvent
	closed bool
	mu     sync.Mutex
}

// NewEventEmitter creates an EventEmitter with the given buffer size.
func NewEventEmitter(bufferSize int) *EventEmitter {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &EventEmitter{ch: make(chan SessionEvent, bufferSize)}
}

// Emit sends an event to the channel. Emitting on a closed emitter is a
// no-op.
func (e *EventEmitter) Emit(kind EventKind, sessionID string, userID int64, data map[string]any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	event := SessionEvent{
		Kind:      kind,
		Timestamp: time.Now(),
		SessionID: sessionID,
		UserID:    userID,
		Data:      data,
	}
	select {
	case e.ch <- event:
	default:
		// Channel full; drop rather than block a session loop.
	}
}

// Events returns the read-only event channel.
func (e *EventEmitter) Events() <-chan SessionEvent {
	return e.ch
}

// Close closes the event channel. Safe to call multiple times.
func (e *EventEmitter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closed {
		e.closed = true
		close(e.ch)
	}
}
