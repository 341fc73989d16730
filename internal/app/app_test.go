package app

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"edfrt/internal/sched"
)

func TestBuild_DefaultTaskSet(t *testing.T) {
	cfg, err := sched.Load("")
	if err != nil {
		t.Fatal(err)
	}
	s := sched.New(cfg, nil)
	t.Cleanup(func() { s.Stop() })

	var uart bytes.Buffer
	q, err := Build(s, cfg, &uart)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if q.Cap() != 3 {
		t.Errorf("queue capacity = %d, want 3", q.Cap())
	}

	if err := s.Run(context.Background(), 1000); err != nil {
		t.Fatalf("Run: %v", err)
	}
	s.Stop()

	out := uart.String()
	for _, want := range []string{"BT1=F\n", "BT1=R\n", "BT2=f\n", "BT2=r\n", "PT=P\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("uart output missing %q:\n%s", want, out)
		}
	}

	st := s.Snapshot()
	if st.DeadlineMisses != 0 {
		t.Errorf("DeadlineMisses = %d, want 0", st.DeadlineMisses)
	}
	// LS1 burns 5 of every 10 ticks and LS2 12 of every 100.
	if st.Load < 61 || st.Load > 63 {
		t.Errorf("Load = %.2f, want about 62", st.Load)
	}
}

func TestBuild_UnknownKind(t *testing.T) {
	cfg := sched.Config{TickWidth: 32, Tasks: []sched.TaskConfig{{Name: "x", Kind: "teleport", Period: 10}}}
	s := sched.New(cfg, nil)
	t.Cleanup(func() { s.Stop() })

	if _, err := Build(s, cfg, &bytes.Buffer{}); err == nil {
		t.Error("expected an error for an unknown task kind")
	}
}

func TestFormatMessage(t *testing.T) {
	tests := map[byte]string{
		'R': "BT1=R\n",
		'f': "BT2=f\n",
		'P': "PT=P\n",
		'?': "??='?'\n",
	}
	for in, want := range tests {
		if got := FormatMessage(in); got != want {
			t.Errorf("FormatMessage(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestScriptedPins(t *testing.T) {
	cfg := sched.Config{TickWidth: 32}
	s := sched.New(cfg, nil)
	t.Cleanup(func() { s.Stop() })
	pins := NewScriptedPins(s.Clock())
	pins.Toggle(0, 5)

	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	var levels []bool
	for i := 0; i < 12; i++ {
		levels = append(levels, pins.Read(0))
		if err := s.Tick(); err != nil {
			t.Fatal(err)
		}
	}
	if levels[0] || levels[4] || !levels[5] || !levels[9] || levels[10] {
		t.Errorf("unexpected pin levels %v", levels)
	}
	if pins.Read(3) {
		t.Error("unconfigured pin should read low")
	}
}
