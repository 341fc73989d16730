package report

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"edfrt/internal/sched"
)

type staticSource struct{ st sched.Stats }

func (s staticSource) Snapshot() sched.Stats { return s.st }

func sampleStats() sched.Stats {
	return sched.Stats{
		Now:            100,
		Elapsed:        100,
		Running:        "IDLE",
		BusyTicks:      62,
		IdleTicks:      38,
		Load:           62,
		DeadlineMisses: 1,
		Tasks: []sched.TaskStats{
			{ID: 0, Name: "LS1", Period: 10, State: "Blocked", Deadline: 110, BusyTicks: 50, Jobs: 10},
			{ID: 1, Name: "LS2", Period: 100, State: "Blocked", Deadline: 200, BusyTicks: 12, Jobs: 1, Misses: 1},
			{ID: 2, Name: "UR", Period: 20, State: "Suspended", Deadline: 20, Jobs: 1, ExitError: "uart closed"},
		},
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, sampleStats(), false); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"load=62.00%", "LS1", "LS2", "50.0%", "misses=1", "UR exited: uart closed"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("uncolored output contains escape codes:\n%s", out)
	}
}

func TestWriteText_Colorized(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, sampleStats(), true); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("expected escape codes around the missing task, got:\n%s", buf.String())
	}
}

func TestHandler_Stats(t *testing.T) {
	h := NewHandler(staticSource{st: sampleStats()})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got sched.Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.BusyTicks != 62 || len(got.Tasks) != 3 || got.Tasks[1].Misses != 1 {
		t.Errorf("unexpected snapshot: %+v", got)
	}
}

func TestHandler_Health(t *testing.T) {
	st := sampleStats()
	st.Halted = true
	h := NewHandler(staticSource{st: st})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats/text", nil))
	if !strings.Contains(rec.Body.String(), "scheduler halted") {
		t.Errorf("text stats missing halt line:\n%s", rec.Body.String())
	}
}
