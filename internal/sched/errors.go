package sched

import "github.com/pkg/errors"

var (
	ErrRegistryFull   = errors.New("sched: task table full")
	ErrBadPeriod      = errors.New("sched: period must be positive")
	ErrDuplicateName  = errors.New("sched: duplicate task name")
	ErrUnknownTask    = errors.New("sched: unknown task")
	ErrDuplicateReady = errors.New("sched: task already in ready structure")
	ErrNotReady       = errors.New("sched: task not in ready structure")
	ErrReadyCorrupt   = errors.New("sched: ready structure corrupt")
	ErrStarted        = errors.New("sched: scheduler already started")
	ErrNotStarted     = errors.New("sched: scheduler not started")
	ErrStopped        = errors.New("sched: scheduler stopped")

	// ErrHalted wraps every fatal condition. Once returned, the scheduler
	// refuses further ticks.
	ErrHalted = errors.New("sched: scheduler halted")
)
