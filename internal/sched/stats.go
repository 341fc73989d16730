package sched

// TaskStats is the telemetry of one task.
type TaskStats struct {
	ID        TaskID `json:"id"`
	Name      string `json:"name"`
	Period    uint32 `json:"period"`
	State     string `json:"state"`
	Deadline  Tick   `json:"deadline"`
	BusyTicks uint64 `json:"busy_ticks"`
	Jobs      uint64 `json:"jobs"`
	Misses    uint64 `json:"deadline_misses"`
	Skipped   uint64 `json:"skipped_periods"`
	ExitError string `json:"exit_error,omitempty"`
}

// Stats is a consistent snapshot of the scheduler telemetry.
type Stats struct {
	Now            Tick        `json:"now"`
	StartTick      Tick        `json:"start_tick"`
	Elapsed        uint64      `json:"elapsed_ticks"`
	Running        string      `json:"running"`
	BusyTicks      uint64      `json:"busy_ticks"`
	IdleTicks      uint64      `json:"idle_ticks"`
	Load           float64     `json:"load_percent"`
	DeadlineMisses uint64      `json:"deadline_misses"`
	Halted         bool        `json:"halted"`
	Tasks          []TaskStats `json:"tasks"`
}

// Snapshot returns the current telemetry. Busy ticks and load are as of the
// last context switch.
func (s *Scheduler) Snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{
		Now:            s.clock.Now(),
		StartTick:      s.startTick,
		Elapsed:        s.recorder.elapsed(),
		BusyTicks:      s.recorder.BusyTicks(),
		IdleTicks:      s.recorder.IdleTicks(),
		Load:           s.recorder.Load(),
		DeadlineMisses: s.misses,
		Halted:         s.haltErr != nil,
		Tasks:          make([]TaskStats, 0, s.registry.Len()),
	}
	if s.current != nil {
		st.Running = s.current.Name
	}
	for _, t := range s.registry.All() {
		ts := TaskStats{
			ID:        t.ID,
			Name:      t.Name,
			Period:    t.Period,
			State:     t.state.String(),
			Deadline:  t.absDeadline,
			BusyTicks: t.busy,
			Jobs:      t.jobs,
			Misses:    t.misses,
			Skipped:   t.skipped,
		}
		if t.exitErr != nil {
			ts.ExitError = t.exitErr.Error()
		}
		st.Tasks = append(st.Tasks, ts)
	}
	return st
}
