package sched

import (
	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/pkg/errors"
)

// readyKey orders the ready structure: earliest deadline first, then
// registration order.
type readyKey struct {
	deadline Tick
	id       TaskID
}

// ReadyQueue is the EDF ready structure. Deadlines are compared modulo the
// tick width, which is a total order as long as all queued deadlines lie
// within half the counter range of each other.
type ReadyQueue struct {
	clock *TickClock
	tree  *redblacktree.Tree
	keys  map[TaskID]readyKey
}

func NewReadyQueue(clock *TickClock) *ReadyQueue {
	q := &ReadyQueue{
		clock: clock,
		keys:  make(map[TaskID]readyKey),
	}
	q.tree = redblacktree.NewWith(func(a, b any) int {
		return q.compare(a.(readyKey), b.(readyKey))
	})
	return q
}

func (q *ReadyQueue) compare(a, b readyKey) int {
	d := q.clock.Diff(a.deadline, b.deadline)
	switch {
	case d < 0:
		return -1
	case d > 0:
		return 1
	case a.id < b.id:
		return -1
	case a.id > b.id:
		return 1
	default:
		return 0
	}
}

// Insert adds id with the given absolute deadline.
func (q *ReadyQueue) Insert(id TaskID, deadline Tick) error {
	if _, dup := q.keys[id]; dup {
		return errors.Wrapf(ErrDuplicateReady, "task %d", id)
	}
	k := readyKey{deadline: deadline, id: id}
	q.tree.Put(k, id)
	q.keys[id] = k
	return nil
}

// Rekey moves id to a new deadline.
func (q *ReadyQueue) Rekey(id TaskID, deadline Tick) error {
	if !q.Remove(id) {
		return errors.Wrapf(ErrNotReady, "rekey task %d", id)
	}
	return q.Insert(id, deadline)
}

// Remove drops id and reports whether it was present.
func (q *ReadyQueue) Remove(id TaskID) bool {
	k, ok := q.keys[id]
	if !ok {
		return false
	}
	q.tree.Remove(k)
	delete(q.keys, id)
	return true
}

// Peek returns the earliest-deadline entry without removing it.
func (q *ReadyQueue) Peek() (TaskID, Tick, bool) {
	node := q.tree.Left()
	if node == nil {
		return IdleID, 0, false
	}
	k := node.Key.(readyKey)
	return k.id, k.deadline, true
}

// PopMin removes and returns the earliest-deadline entry.
func (q *ReadyQueue) PopMin() (TaskID, bool) {
	id, _, ok := q.Peek()
	if !ok {
		return IdleID, false
	}
	q.Remove(id)
	return id, true
}

func (q *ReadyQueue) Contains(id TaskID) bool {
	_, ok := q.keys[id]
	return ok
}

func (q *ReadyQueue) Len() int { return q.tree.Size() }

// precedes reports whether (da, a) should run before (db, b).
func (q *ReadyQueue) precedes(a TaskID, da Tick, b TaskID, db Tick) bool {
	return q.compare(readyKey{deadline: da, id: a}, readyKey{deadline: db, id: b}) < 0
}
