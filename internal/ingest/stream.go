package ingest

import (
	"context"
	"sync"
	"time"
)

// Stream delivers the ordered progress events of a single ingest run.
// Events are strictly ordered and percentages never decrease. Once closed,
// further sends are dropped.
type Stream struct {
	events chan ProgressEvent

	mu          sync.Mutex
	closed      bool
	lastPercent int
	terminal    bool
}

// NewStream creates a stream with the given channel buffer size.
func NewStream(bufferSize int) *Stream {
	return &Stream{
		events: make(chan ProgressEvent, bufferSize),
	}
}

// Events returns the receive side of the progress channel. The channel is
// closed when the run reaches a terminal stage or is cancelled.
func (s *Stream) Events() <-chan ProgressEvent {
	return s.events
}

// Close closes the event channel. Safe to call more than once.
func (s *Stream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.events)
	}
}

// send emits an event, clamping its percentage so the sequence never
// decreases. Terminal events (complete, error) are emitted at most once;
// nothing follows them. A cancelled context stops emission entirely.
// Returns whether the event was accepted for delivery.
func (s *Stream) send(ctx context.Context, event ProgressEvent) bool {
	s.mu.Lock()
	if s.closed || s.terminal {
		s.mu.Unlock()
		return false
	}

	if event.Percent < s.lastPercent {
		event.Percent = s.lastPercent
	}
	s.lastPercent = event.Percent

	if event.Stage == StageComplete || event.Stage == StageError {
		s.terminal = true
	}
	s.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case s.events <- event:
		return true
	case <-ctx.Done():
		return false
	}
}
