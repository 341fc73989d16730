package sched

import (
	"context"
	"fmt"
	"runtime"
)

// Handle is the task-side view of the scheduler. Its methods may only be
// called from the task's own goroutine.
type Handle struct {
	s *Scheduler
	t *Task
}

func (h *Handle) ID() TaskID     { return h.t.ID }
func (h *Handle) Name() string   { return h.t.Name }
func (h *Handle) Period() uint32 { return h.t.Period }
func (h *Handle) Now() Tick      { return h.s.clock.Now() }

// Deadline returns the absolute deadline of the current job.
func (h *Handle) Deadline() Tick { return h.t.absDeadline }

// Compute consumes n ticks of CPU time. The task can be preempted at any
// tick boundary in between.
func (h *Handle) Compute(n uint32) {
	for i := uint32(0); i < n; i++ {
		h.call(request{kind: reqCompute})
	}
}

// Yield offers the CPU to an earlier-deadline task, if one is ready.
func (h *Handle) Yield() {
	h.call(request{kind: reqYield})
}

// WaitForNextPeriod blocks until the task's next release.
func (h *Handle) WaitForNextPeriod() {
	h.call(request{kind: reqWait})
}

// block suspends the task until cond holds or, if timed, until the tick
// counter reaches timeoutAt.
func (h *Handle) block(cond func() bool, timeoutAt Tick, timed bool) {
	h.call(request{kind: reqBlock, cond: cond, timeoutAt: timeoutAt, timed: timed})
}

// call hands the CPU back to the scheduler and parks until redispatched.
func (h *Handle) call(r request) {
	r.task = h.t
	select {
	case h.s.req <- r:
	case <-h.s.quit:
		runtime.Goexit()
	}
	h.park()
}

func (h *Handle) park() {
	select {
	case <-h.t.resume:
	case <-h.s.quit:
		runtime.Goexit()
	}
}

// spawn starts the goroutine backing t. It waits for its first dispatch
// before entering the task body.
func (s *Scheduler) spawn(t *Task) {
	h := &Handle{s: s, t: t}
	ctx := s.ctx

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		select {
		case <-t.resume:
		case <-s.quit:
			return
		}

		err := runTask(ctx, t, h)
		select {
		case s.req <- request{kind: reqExit, task: t, err: err}:
		case <-s.quit:
		}
	}()
}

// runTask runs the body and turns a panic into an error. runtime.Goexit
// passes straight through.
func runTask(ctx context.Context, t *Task, h *Handle) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v", t.Name, r)
		}
	}()
	return t.Run(ctx, h)
}
