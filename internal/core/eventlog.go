package core

import (
	"sync"
	"time"
)

// EventLog is a bounded FIFO of recent security events. When full, appending
// evicts the oldest entry. The log is backed by a ring buffer so the hot path
// never copies or reallocates.
type EventLog struct {
	mu       sync.Mutex
	events   []SecurityEvent
	head     int
	size     int
	capacity int
}

// NewEventLog creates an event log holding up to capacity entries.
func NewEventLog(capacity int) *EventLog {
	if capacity <= 0 {
		capacity = 1
	}
	return &EventLog{
		events:   make([]SecurityEvent, capacity),
		capacity: capacity,
	}
}

// Append records a verdict with the current time, evicting the oldest event
// if the log is full.
func (l *EventLog) Append(verdict Verdict) {
	l.append(SecurityEvent{Verdict: verdict, Timestamp: time.Now()})
}

func (l *EventLog) append(event SecurityEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events[(l.head+l.size)%l.capacity] = event
	if l.size < l.capacity {
		l.size++
	} else {
		l.head = (l.head + 1) % l.capacity
	}
}

// Recent returns the last n events in insertion order, oldest first. Asking
// for more events than are held returns everything.
func (l *EventLog) Recent(n int) []SecurityEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n > l.size {
		n = l.size
	}
	if n <= 0 {
		return nil
	}
	out := make([]SecurityEvent, n)
	start := l.head + l.size - n
	for i := 0; i < n; i++ {
		out[i] = l.events[(start+i)%l.capacity]
	}
	return out
}

// Len returns the number of events currently held.
func (l *EventLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.size
}
