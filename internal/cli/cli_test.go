package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRunCmd_DefaultTaskSet(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "events.csv")
	out, err := execute(t, "run", "--config", filepath.Join(t.TempDir(), "none.yml"), "--ticks", "200", "--csv", csvPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, want := range []string{"PT=P", "BT1=F", "load=", "LS1", "UR"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got:\n%s", want, out)
		}
	}

	data, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if !strings.Contains(string(data), ",Dispatch,") {
		t.Errorf("csv log has no dispatch rows:\n%s", data)
	}
}

func TestCheckCmd(t *testing.T) {
	out, err := execute(t, "check", "--config", "")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !strings.Contains(out, "utilization=0.620") || !strings.Contains(out, "feasible") {
		t.Errorf("unexpected output:\n%s", out)
	}

	path := filepath.Join(t.TempDir(), "over.yml")
	cfg := "tasks:\n  - {name: a, kind: load, period: 10, cost: 8}\n  - {name: b, kind: load, period: 20, cost: 8}\n"
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err = execute(t, "check", "--config", path)
	if !errors.Is(err, errInfeasible) {
		t.Errorf("check err = %v, want errInfeasible", err)
	}
	if !strings.Contains(out, "utilization=1.200") {
		t.Errorf("unexpected output:\n%s", out)
	}
}
