// internal/sched/scheduler.go

package sched

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/pkg/errors"
)

type requestKind int

const (
	reqCompute requestKind = iota // task consumed the rest of this tick
	reqYield
	reqWait // wait for the next period
	reqBlock
	reqExit
)

// request is sent by the running task's goroutine when it gives the CPU back.
type request struct {
	kind      requestKind
	task      *Task
	cond      func() bool
	timeoutAt Tick
	timed     bool
	err       error
}

// Scheduler is a single-core EDF kernel for a fixed set of periodic tasks.
//
// Every task runs in its own goroutine, but only the task holding the CPU
// token executes; the token is passed over unbuffered channels so that a
// run is fully deterministic. Tick and Start must be called from one
// goroutine; Snapshot may be called from any goroutine.
type Scheduler struct {
	mu       sync.Mutex // protects everything below except clock and req
	clock    *TickClock
	registry *Registry
	ready    *ReadyQueue
	recorder *Recorder
	hooks    Hooks
	logger   *slog.Logger

	idle      *Task
	current   *Task // nil only transiently inside a switch
	startTick Tick
	started   bool
	stopped   bool
	haltErr   error
	misses    uint64

	req    chan request
	quit   chan struct{}
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	observers []func(Event)
	pending   []Event

	// logging-related
	csvFile *os.File
	csvSink *CSVSink
}

// New creates a new Scheduler instance with the given configuration.
func New(cfg Config, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	clock := NewTickClock(cfg.TickWidth)
	clock.set(Tick(cfg.StartTick))

	return &Scheduler{
		clock:    clock,
		registry: NewRegistry(cfg.MaxTasks),
		ready:    NewReadyQueue(clock),
		recorder: NewRecorder(clock),
		logger:   logger.With("component", "sched"),
		idle:     &Task{ID: IdleID, Name: "IDLE", state: StateReady},
		req:      make(chan request),
		quit:     make(chan struct{}),
	}
}

// Clock exposes the tick service.
func (s *Scheduler) Clock() *TickClock { return s.clock }

// Register adds a task to the task table. Tasks can only be added before Start.
func (s *Scheduler) Register(t *Task) (TaskID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return IdleID, ErrStarted
	}
	id, err := s.registry.Add(t)
	if err != nil {
		return IdleID, err
	}
	s.logger.Debug("task registered", "task", t.Name, "id", id, "period", t.Period, "deadline", t.Deadline)
	return id, nil
}

// SetHooks installs context-switch callbacks. Must be called before Start.
func (s *Scheduler) SetHooks(h Hooks) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrStarted
	}
	s.hooks = h
	return nil
}

// Subscribe registers fn to receive every event. Events are delivered on the
// ticking goroutine after the scheduler lock is released. Must be called
// before Start.
func (s *Scheduler) Subscribe(fn func(Event)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrStarted
	}
	s.observers = append(s.observers, fn)
	return nil
}

// EnableCSVLogging opens the given file path for CSV logging of events.
// Must be called before Start.
func (s *Scheduler) EnableCSVLogging(path, runID string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "open csv log")
	}
	sink, err := NewCSVSink(f, runID)
	if err != nil {
		f.Close()
		return errors.Wrap(err, "write csv header")
	}
	if err := s.Subscribe(sink.Handle); err != nil {
		f.Close()
		return err
	}
	s.csvFile = f
	s.csvSink = sink
	return nil
}

// Start releases every task at the current tick and dispatches the first one.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.unlock()
		return ErrStarted
	}
	s.started = true
	s.ctx, s.cancel = context.WithCancel(ctx)

	now := s.clock.Now()
	s.startTick = now
	s.recorder.reset()
	s.logger.Info("scheduler started", "tasks", s.registry.Len(), "tick", now)

	s.switchIn(s.idle, now)
	var err error
	for _, t := range s.registry.All() {
		t.resume = make(chan struct{})
		s.spawn(t)
		s.startJob(t, now)
		t.state = StateReady
		t.jobs++
		if err = s.ready.Insert(t.ID, t.absDeadline); err != nil {
			break
		}
		s.emit(EventRelease, t, now)
	}
	if err == nil {
		err = s.reschedule(now)
	}
	if err != nil {
		err = s.halt(err)
	}
	s.unlock()
	if err != nil {
		return err
	}
	return s.runQuantum()
}

// Tick is the timer interrupt: advance time by one tick, release due tasks,
// account deadline misses, preempt if needed, then run the selected task
// until it has consumed the tick.
func (s *Scheduler) Tick() error {
	s.mu.Lock()
	if err := s.usable(); err != nil {
		s.unlock()
		return err
	}

	now := s.clock.advance()
	s.suspendCurrent(now)
	err := s.releaseDue(now)
	if err == nil {
		s.wakeBlocked(now)
		s.checkDeadlines(now)
		err = s.reschedule(now)
	}
	if err != nil {
		err = s.halt(err)
	}
	s.unlock()
	if err != nil {
		return err
	}
	return s.runQuantum()
}

// Run starts the scheduler and drives n ticks as fast as possible.
func (s *Scheduler) Run(ctx context.Context, n int) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Tick(); err != nil {
			return err
		}
	}
	return nil
}

// RunRealtime starts the scheduler and drives n ticks (n <= 0: until ctx is
// done) paced by a wall-clock timer.
func (s *Scheduler) RunRealtime(ctx context.Context, cfg Config, n int) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	return Drive(ctx, cfg.TickInterval(), n, s.Tick)
}

// Suspend administratively removes a task from scheduling. It is terminal.
// It must be called between ticks, never from a task body or an observer.
//
// The running task has already consumed the current tick's quantum, so its
// suspension takes effect at the next tick boundary; until then it still
// reports Running.
func (s *Scheduler) Suspend(id TaskID) error {
	s.mu.Lock()
	if err := s.usable(); err != nil {
		s.unlock()
		return err
	}
	t := s.registry.Get(id)
	if t == nil {
		s.unlock()
		return errors.Wrapf(ErrUnknownTask, "suspend %d", id)
	}

	switch t.state {
	case StateRunning:
		t.suspendPending = true
	case StateReady:
		s.ready.Remove(id)
		s.suspend(t, s.clock.Now())
	case StateBlocked:
		s.suspend(t, s.clock.Now())
	}
	s.unlock()
	return nil
}

// suspend moves a task that is not running to Suspended.
func (s *Scheduler) suspend(t *Task, now Tick) {
	t.state = StateSuspended
	t.block = blockNone
	t.waitCond = nil
	t.suspendPending = false
	s.emit(EventSuspend, t, now)
}

// suspendCurrent applies a pending suspension of the running task at a
// tick boundary. The following reschedule picks its successor.
func (s *Scheduler) suspendCurrent(now Tick) {
	t := s.current
	if t == nil || !t.suspendPending {
		return
	}
	s.switchOut(t, now)
	s.suspend(t, now)
}

// Stop closes the accounting for the running task, terminates all task
// goroutines, and flushes the CSV log.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if s.stopped {
		s.unlock()
		return nil
	}
	s.stopped = true
	if s.started && s.current != nil {
		if s.current.suspendPending {
			s.suspendCurrent(s.clock.Now())
		} else {
			s.switchOut(s.current, s.clock.Now())
		}
	}
	if s.cancel != nil {
		s.cancel()
	}
	close(s.quit)
	s.unlock()

	s.wg.Wait()
	s.logger.Info("scheduler stopped", "tick", s.clock.Now(), "load", s.recorder.Load(), "deadline_misses", s.misses)

	if s.csvFile != nil {
		err := s.csvSink.Flush()
		if cerr := s.csvFile.Close(); err == nil {
			err = cerr
		}
		return err
	}
	return nil
}

// runQuantum lets the running task execute until it consumes the current
// tick. Every time a task gives the CPU back without consuming the tick,
// the scheduler picks again.
func (s *Scheduler) runQuantum() error {
	for {
		s.mu.Lock()
		t := s.current
		s.mu.Unlock()
		if t == nil || t == s.idle {
			return nil
		}

		t.resume <- struct{}{}
		r := <-s.req

		s.mu.Lock()
		now := s.clock.Now()
		var err error
		switch r.kind {
		case reqCompute:
			s.unlock()
			return nil
		case reqYield:
			s.wakeBlocked(now)
			err = s.reschedule(now)
		case reqWait:
			s.switchOut(t, now)
			err = s.waitNextPeriod(t, now)
			if err == nil {
				s.wakeBlocked(now)
				err = s.reschedule(now)
			}
		case reqBlock:
			s.switchOut(t, now)
			t.state = StateBlocked
			t.block = blockQueue
			t.waitCond = r.cond
			t.timeoutAt, t.timed = r.timeoutAt, r.timed
			s.emit(EventBlock, t, now)
			s.wakeBlocked(now)
			err = s.reschedule(now)
		case reqExit:
			s.switchOut(t, now)
			t.state = StateSuspended
			t.exitErr = r.err
			if r.err != nil {
				s.logger.Warn("task exited with error", "task", t.Name, "error", r.err)
			} else {
				s.logger.Info("task exited", "task", t.Name)
			}
			s.emit(EventExit, t, now)
			s.wakeBlocked(now)
			err = s.reschedule(now)
		}
		if err != nil {
			err = s.halt(err)
		}
		s.unlock()
		if err != nil {
			return err
		}
	}
}

// reschedule dispatches the earliest-deadline ready task if it should
// displace the current one. Must be called with mu held.
func (s *Scheduler) reschedule(now Tick) error {
	cur := s.current
	id, dl, ok := s.ready.Peek()
	if !ok {
		if cur == nil {
			s.switchIn(s.idle, now)
		}
		return nil
	}
	if cur != nil && cur != s.idle && !s.ready.precedes(id, dl, cur.ID, cur.absDeadline) {
		return nil
	}

	s.ready.PopMin()
	next := s.registry.Get(id)
	if next == nil || next.state != StateReady {
		state := "missing"
		if next != nil {
			state = next.state.String()
		}
		return fmt.Errorf("%w: popped task %d is %s", ErrReadyCorrupt, id, state)
	}

	if cur != nil {
		s.switchOut(cur, now)
		if cur != s.idle {
			cur.state = StateReady
			if err := s.ready.Insert(cur.ID, cur.absDeadline); err != nil {
				return err
			}
			s.emit(EventPreempt, cur, now)
		}
	}
	s.switchIn(next, now)
	return nil
}

// releaseDue moves tasks whose release tick has arrived back to Ready.
func (s *Scheduler) releaseDue(now Tick) error {
	for _, t := range s.registry.All() {
		if t.state != StateBlocked || t.block != blockPeriod || s.clock.Before(now, t.wakeAt) {
			continue
		}
		t.state = StateReady
		t.block = blockNone
		t.jobs++
		if err := s.ready.Insert(t.ID, t.absDeadline); err != nil {
			return err
		}
		s.emit(EventRelease, t, now)
	}
	return nil
}

// wakeBlocked readies queue waiters whose condition holds or whose timeout
// has expired.
func (s *Scheduler) wakeBlocked(now Tick) {
	for _, t := range s.registry.All() {
		if t.state != StateBlocked || t.block != blockQueue {
			continue
		}
		if !t.waitCond() && !(t.timed && !s.clock.Before(now, t.timeoutAt)) {
			continue
		}
		t.state = StateReady
		t.block = blockNone
		t.waitCond = nil
		// A waiter is never in the ready structure, so this cannot fail.
		_ = s.ready.Insert(t.ID, t.absDeadline)
		s.emit(EventWake, t, now)
	}
}

// checkDeadlines counts, once per job, every ready or running task whose
// absolute deadline has passed. A job that completes at its deadline tick
// does so in that tick's quantum, after this check, so now == deadline is
// not a miss. Misses are logged, never fatal.
func (s *Scheduler) checkDeadlines(now Tick) {
	for _, t := range s.registry.All() {
		if t.missed || (t.state != StateRunning && t.state != StateReady) {
			continue
		}
		if s.clock.Diff(now, t.absDeadline) <= 0 {
			continue
		}
		t.missed = true
		t.misses++
		s.misses++
		s.logger.Warn("deadline miss", "task", t.Name, "deadline", t.absDeadline, "tick", now, "state", t.state)
		s.emit(EventDeadlineMiss, t, now)
	}
}

func (s *Scheduler) switchOut(t *Task, now Tick) {
	s.recorder.OnSwitchOut(t)
	if s.hooks.OnSwitchOut != nil {
		s.hooks.OnSwitchOut(t.ID, t.Name, now)
	}
	s.current = nil
}

func (s *Scheduler) switchIn(t *Task, now Tick) {
	s.recorder.OnSwitchIn(t)
	if s.hooks.OnSwitchIn != nil {
		s.hooks.OnSwitchIn(t.ID, t.Name, now)
	}
	s.current = t
	if t == s.idle {
		s.emit(EventIdle, t, now)
		return
	}
	t.state = StateRunning
	s.emit(EventDispatch, t, now)
}

// usable reports why the scheduler cannot take a tick, if it cannot.
func (s *Scheduler) usable() error {
	switch {
	case s.haltErr != nil:
		return s.haltErr
	case s.stopped:
		return ErrStopped
	case !s.started:
		return ErrNotStarted
	}
	return nil
}

// halt records a fatal condition. Must be called with mu held.
func (s *Scheduler) halt(cause error) error {
	s.haltErr = fmt.Errorf("%w: %w", ErrHalted, cause)
	s.logger.Error("scheduler halted", "tick", s.clock.Now(), "error", cause)
	return s.haltErr
}

func (s *Scheduler) emit(kind EventKind, t *Task, now Tick) {
	s.pending = append(s.pending, Event{
		Tick:      now,
		Kind:      kind,
		TaskID:    t.ID,
		Task:      t.Name,
		Deadline:  t.absDeadline,
		BusyTicks: t.busy,
	})
}

// unlock releases mu and then delivers the events queued while it was held.
func (s *Scheduler) unlock() {
	evs := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, ev := range evs {
		if ev.Kind != EventIdle {
			s.logger.Debug("event", "kind", ev.Kind.String(), "task", ev.Task, "tick", ev.Tick, "deadline", ev.Deadline)
		}
		for _, fn := range s.observers {
			fn(ev)
		}
	}
}
