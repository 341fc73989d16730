package sched

// Hooks are called on every context switch, right after the recorder has
// updated its counters and while the scheduler lock is held. They must not
// call back into the Scheduler.
type Hooks struct {
	OnSwitchOut func(id TaskID, name string, now Tick)
	OnSwitchIn  func(id TaskID, name string, now Tick)
}

// Recorder attributes running time to tasks at context-switch boundaries
// and keeps the aggregate CPU load.
type Recorder struct {
	clock *TickClock
	base  uint64 // clock.Elapsed() at system start

	busy      uint64 // sum over all tasks, idle excluded
	idle      uint64
	idleStart uint64 // clock.Elapsed() at idle switch-in
	idleOn    bool
	load      float64
}

func NewRecorder(clock *TickClock) *Recorder {
	return &Recorder{clock: clock}
}

// reset marks the system start.
func (r *Recorder) reset() {
	r.base = r.clock.Elapsed()
	r.busy, r.idle, r.load = 0, 0, 0
	r.idleOn = false
}

// OnSwitchOut adds the ticks t has held the CPU since its switch-in and
// recomputes the load. Run lengths are taken from the 64-bit elapsed count,
// not the wrapping tick counter, so runs longer than half the counter range
// are measured correctly.
func (r *Recorder) OnSwitchOut(t *Task) {
	now := r.clock.Elapsed()
	if t.ID == IdleID {
		if r.idleOn {
			r.idle += now - r.idleStart
			r.idleOn = false
		}
	} else if t.running {
		d := now - t.runStart
		t.busy += d
		r.busy += d
		t.running = false
	}
	r.load = LoadPercent(r.busy, r.elapsed())
}

// OnSwitchIn stamps the start of t's run.
func (r *Recorder) OnSwitchIn(t *Task) {
	now := r.clock.Elapsed()
	if t.ID == IdleID {
		r.idleStart, r.idleOn = now, true
		return
	}
	t.runStart, t.running = now, true
}

func (r *Recorder) elapsed() uint64 {
	return r.clock.Elapsed() - r.base
}

// Load returns the CPU load computed at the last switch-out.
func (r *Recorder) Load() float64 { return r.load }

// BusyTicks returns the ticks accumulated by all tasks, idle excluded.
func (r *Recorder) BusyTicks() uint64 { return r.busy }

// IdleTicks returns the ticks accumulated by the idle task.
func (r *Recorder) IdleTicks() uint64 { return r.idle }

// LoadPercent returns 100*busy/elapsed clamped to [0, 100], or 0 when no
// time has elapsed.
func LoadPercent(busy, elapsed uint64) float64 {
	if elapsed == 0 {
		return 0
	}
	p := 100 * float64(busy) / float64(elapsed)
	if p > 100 {
		p = 100
	}
	return p
}
