package sched

import "edfrt/internal/msgq"

// Forever as a timeout blocks until the queue operation can complete.
const Forever = ^uint32(0)

// Send puts msg on q. With a zero timeout it never blocks; otherwise the
// task blocks until space is available or timeout ticks have passed.
// After a successful send the task yields, so a receiver with an earlier
// deadline runs first.
func Send[T any](h *Handle, q *msgq.Queue[T], msg T, timeout uint32) bool {
	until, timed := h.timeout(timeout)
	for {
		if q.TrySend(msg) {
			h.Yield()
			return true
		}
		if timeout == 0 || (timed && !h.s.clock.Before(h.Now(), until)) {
			return false
		}
		h.block(func() bool { return q.Spaces() > 0 }, until, timed)
	}
}

// Receive takes the oldest message from q, blocking like Send.
func Receive[T any](h *Handle, q *msgq.Queue[T], timeout uint32) (T, bool) {
	until, timed := h.timeout(timeout)
	for {
		if msg, ok := q.TryReceive(); ok {
			h.Yield()
			return msg, true
		}
		if timeout == 0 || (timed && !h.s.clock.Before(h.Now(), until)) {
			var zero T
			return zero, false
		}
		h.block(func() bool { return q.Len() > 0 }, until, timed)
	}
}

func (h *Handle) timeout(timeout uint32) (Tick, bool) {
	if timeout == 0 || timeout == Forever {
		return 0, false
	}
	return h.s.clock.Add(h.Now(), timeout), true
}
