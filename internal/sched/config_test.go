package sched

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, path := range []string{"", filepath.Join(t.TempDir(), "missing.yml")} {
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load(%q): %v", path, err)
		}
		if cfg.TickHz != 1000 || cfg.QueueCapacity != 3 || len(cfg.Tasks) != 6 {
			t.Errorf("Load(%q) = %+v, want defaults", path, cfg)
		}
		for _, tc := range cfg.Tasks {
			if tc.Deadline != tc.Period {
				t.Errorf("task %s: deadline %d, want period %d", tc.Name, tc.Deadline, tc.Period)
			}
		}
	}
}

func TestLoad_OverridesAndClamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	data := `
tick_hz: 500
tick_width: 12
queue_capacity: -1
run_ticks: 200
tasks:
  - name: A
    kind: load
    period: 10
    deadline: 40
    cost: 3
  - name: B
    kind: load
    period: 20
    deadline: 15
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TickHz != 500 || cfg.RunTicks != 200 {
		t.Errorf("TickHz=%d RunTicks=%d", cfg.TickHz, cfg.RunTicks)
	}
	if cfg.TickWidth != 32 || cfg.QueueCapacity != 3 {
		t.Errorf("TickWidth=%d QueueCapacity=%d, want clamped 32 and 3", cfg.TickWidth, cfg.QueueCapacity)
	}
	if len(cfg.Tasks) != 2 {
		t.Fatalf("got %d tasks, want 2", len(cfg.Tasks))
	}
	if cfg.Tasks[0].Deadline != 10 || cfg.Tasks[1].Deadline != 15 {
		t.Errorf("deadlines = %d, %d, want 10 and 15", cfg.Tasks[0].Deadline, cfg.Tasks[1].Deadline)
	}
	if cfg.TickInterval() != 2*time.Millisecond {
		t.Errorf("TickInterval() = %v, want 2ms", cfg.TickInterval())
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	if err := os.WriteFile(path, []byte("tick_hz: [1, 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected an error for malformed YAML")
	}
}
