package job

import (
	"context"
	"testing"

	"edfrt/internal/sched"
)

func TestLoadAndOverrun(t *testing.T) {
	s := sched.New(sched.Config{TickWidth: 32}, nil)
	t.Cleanup(func() { s.Stop() })

	if _, err := s.Register(sched.NewTask("steady", 10, 0, Load(3))); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Register(sched.NewTask("spiky", 20, 0, Overrun(2, 30, 3))); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Register(sched.NewTask("idle", 50, 0, Idle())); err != nil {
		t.Fatal(err)
	}

	if err := s.Run(context.Background(), 200); err != nil {
		t.Fatalf("Run: %v", err)
	}
	st := s.Snapshot()

	if st.Tasks[0].BusyTicks < 50 {
		t.Errorf("steady busy = %d, want at least 50", st.Tasks[0].BusyTicks)
	}
	if st.Tasks[1].Misses == 0 {
		t.Error("spiky should have missed a deadline")
	}
	if st.Tasks[2].BusyTicks != 0 {
		t.Errorf("idle busy = %d, want 0", st.Tasks[2].BusyTicks)
	}
	if st.Halted {
		t.Error("scheduler halted")
	}
}
