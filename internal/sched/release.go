package sched

// startJob opens the job released at the given tick.
func (s *Scheduler) startJob(t *Task, release Tick) {
	t.release = release
	t.absDeadline = s.clock.Add(release, t.Deadline)
	t.missed = false
}

// waitNextPeriod implements "wait until next period" for t, which has just
// been switched out. The next release is always the previous release plus
// one period, never now plus one period, so releases do not drift.
//
// A task that calls in at or after its next release has overrun. It is
// released immediately at the latest period boundary not after now; the
// boundaries it ran past are skipped and counted, so its new deadline is
// never in the past.
func (s *Scheduler) waitNextPeriod(t *Task, now Tick) error {
	next := s.clock.Add(t.release, t.Period)

	late := s.clock.Diff(now, next)
	if late < 0 {
		s.startJob(t, next)
		t.state = StateBlocked
		t.block = blockPeriod
		t.wakeAt = next
		s.emit(EventBlock, t, now)
		return nil
	}

	skip := uint32(uint64(late) / uint64(t.Period))
	if skip > 0 {
		next = s.clock.Add(next, skip*t.Period)
		t.skipped += uint64(skip)
		s.logger.Warn("periods skipped", "task", t.Name, "skipped", skip, "tick", now)
		s.pending = append(s.pending, Event{
			Tick:      now,
			Kind:      EventSkip,
			TaskID:    t.ID,
			Task:      t.Name,
			Deadline:  t.absDeadline,
			BusyTicks: t.busy,
			Skipped:   skip,
		})
	}
	s.startJob(t, next)
	t.state = StateReady
	t.block = blockNone
	t.jobs++
	if err := s.ready.Insert(t.ID, t.absDeadline); err != nil {
		return err
	}
	s.emit(EventRelease, t, now)
	return nil
}
