package sched

import "testing"

func TestLoadPercent(t *testing.T) {
	tests := []struct {
		busy, elapsed uint64
		want          float64
	}{
		{0, 0, 0},
		{5, 0, 0},
		{0, 100, 0},
		{25, 100, 25},
		{100, 100, 100},
		{150, 100, 100},
	}
	for _, tt := range tests {
		if got := LoadPercent(tt.busy, tt.elapsed); got != tt.want {
			t.Errorf("LoadPercent(%d, %d) = %f, want %f", tt.busy, tt.elapsed, got, tt.want)
		}
	}
}

func TestRecorder_AttributesTicks(t *testing.T) {
	c := NewTickClock(32)
	r := NewRecorder(c)
	r.reset()
	task := &Task{ID: 0, Name: "A"}
	idle := &Task{ID: IdleID, Name: "IDLE"}

	r.OnSwitchIn(task)
	for i := 0; i < 3; i++ {
		c.advance()
	}
	r.OnSwitchOut(task)
	r.OnSwitchIn(idle)
	c.advance()
	r.OnSwitchOut(idle)

	if task.busy != 3 || r.BusyTicks() != 3 || r.IdleTicks() != 1 {
		t.Errorf("task busy=%d total=%d idle=%d, want 3, 3, 1", task.busy, r.BusyTicks(), r.IdleTicks())
	}
	if r.Load() != 75 {
		t.Errorf("Load() = %f, want 75", r.Load())
	}

	// switching out a task that is not running adds nothing
	r.OnSwitchOut(task)
	if task.busy != 3 {
		t.Errorf("busy = %d after spurious switch-out", task.busy)
	}
}

func TestFeasibility(t *testing.T) {
	cfg := defaultConfig()
	if u := Utilization(cfg.Tasks); u < 0.619 || u > 0.621 {
		t.Errorf("Utilization(defaults) = %f, want 0.62", u)
	}
	if !Feasible(cfg.Tasks) {
		t.Error("default task set should be feasible")
	}

	over := []TaskConfig{
		{Name: "a", Period: 10, Cost: 6},
		{Name: "b", Period: 20, Cost: 9},
	}
	if Feasible(over) {
		t.Errorf("utilization %.2f reported feasible", Utilization(over))
	}

	constrained := []TaskConfig{{Name: "c", Period: 10, Deadline: 4, Cost: 3}, {Name: "d", Period: 10, Cost: 3}}
	if d := Density(constrained); d < 1.049 || d > 1.051 {
		t.Errorf("Density = %f, want 1.05", d)
	}
	if u := Utilization(constrained); u < 0.599 || u > 0.601 {
		t.Errorf("Utilization = %f, want 0.6", u)
	}
	if Feasible(constrained) {
		t.Error("density above 1 reported feasible")
	}
}
