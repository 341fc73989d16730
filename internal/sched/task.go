package sched

import "context"

// TaskID identifies a registered task. IDs are handed out in registration
// order and double as the tie-break order between equal deadlines.
type TaskID int

// IdleID is the ID of the idle task, which runs when nothing is ready.
const IdleID TaskID = -1

// State is the scheduling state of a task.
type State int

const (
	StateReady State = iota
	StateRunning
	StateBlocked
	StateSuspended
)

func (st State) String() string {
	switch st {
	case StateReady:
		return "Ready"
	case StateRunning:
		return "Running"
	case StateBlocked:
		return "Blocked"
	case StateSuspended:
		return "Suspended"
	default:
		return "Unknown"
	}
}

type blockReason int

const (
	blockNone blockReason = iota
	blockPeriod
	blockQueue
)

// TaskFunc is a task entry point. It normally loops forever, suspending
// through the Handle; returning moves the task to Suspended.
type TaskFunc func(ctx context.Context, h *Handle) error

// Task is a task descriptor.
type Task struct {
	ID       TaskID
	Name     string // reporting only
	Period   uint32 // ticks between releases
	Deadline uint32 // relative deadline, 0 < Deadline <= Period
	Run      TaskFunc

	state       State
	release     Tick // tick of the current (or next, while blocked) release
	absDeadline Tick

	block     blockReason
	wakeAt    Tick
	waitCond  func() bool
	timeoutAt Tick
	timed     bool

	busy     uint64
	runStart uint64 // clock.Elapsed() at switch-in
	running  bool   // runStart is valid

	jobs    uint64
	misses  uint64
	skipped uint64
	missed  bool // current job already counted as a miss

	suspendPending bool // administrative suspend at the next tick

	resume  chan struct{}
	exitErr error
}

// NewTask creates a task descriptor. A zero or oversized relative deadline
// is clamped to the period.
func NewTask(name string, period, deadline uint32, run TaskFunc) *Task {
	if deadline == 0 || deadline > period {
		deadline = period
	}

	return &Task{
		ID:       IdleID,
		Name:     name,
		Period:   period,
		Deadline: deadline,
		Run:      run,
		state:    StateSuspended,
	}
}
