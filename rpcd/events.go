// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpcd

import "sync"

// EventQueue is the FIFO event stream drained by take_event()/GET /events.
// It has no capacity limit: producers are RPC write methods, transport
// callbacks, and the announce scheduler, and a slow consumer is the
// caller's problem, not the daemon's.
type EventQueue struct {
	mu     sync.Mutex
	events []Event
}

// NewEventQueue creates an empty EventQueue.
func NewEventQueue() *EventQueue {
	return &EventQueue{}
}

// Push appends an event to the tail of the queue.
func (q *EventQueue) Push(eventType string, payload interface{}) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = append(q.events, Event{EventType: eventType, Payload: payload})
}

// Take pops the oldest event from the queue, if any.
func (q *EventQueue) Take() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.events) == 0 {
		return Event{}, false
	}
	e := q.events[0]
	q.events = q.events[1:]
	return e, true
}

// Len reports the number of events currently queued.
func (q *EventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Clear empties the queue, as used by the RPC clear_all method.
func (q *EventQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = nil
}
