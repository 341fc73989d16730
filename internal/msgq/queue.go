// Package msgq is a bounded FIFO of fixed-size messages shared between tasks.
package msgq

import (
	"sync"

	"github.com/emirpasic/gods/queues/circularbuffer"
)

// Queue is a bounded FIFO. Its capacity is fixed at creation. The zero value
// is not usable; call New.
type Queue[T any] struct {
	mu       sync.Mutex
	buf      *circularbuffer.Queue
	capacity int
}

// New creates a queue holding at most capacity messages (minimum 1).
func New[T any](capacity int) *Queue[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue[T]{
		buf:      circularbuffer.New(capacity),
		capacity: capacity,
	}
}

// TrySend appends msg unless the queue is full. A full queue is left untouched.
func (q *Queue[T]) TrySend(msg T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	// the circular buffer overwrites its oldest element when full
	if q.buf.Full() {
		return false
	}
	q.buf.Enqueue(msg)
	return true
}

// TryReceive removes the oldest message, if any.
func (q *Queue[T]) TryReceive() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	v, ok := q.buf.Dequeue()
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// Len returns the number of queued messages.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.buf.Size()
}

// Spaces returns the number of free slots.
func (q *Queue[T]) Spaces() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.capacity - q.buf.Size()
}

func (q *Queue[T]) Cap() int { return q.capacity }

// Reset drops every queued message.
func (q *Queue[T]) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.buf.Clear()
}
