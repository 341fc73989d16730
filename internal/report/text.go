// Package report renders scheduler telemetry for an external reader.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"edfrt/internal/sched"
)

// WriteText prints the telemetry table. With colorize set, tasks that
// missed a deadline are highlighted.
func WriteText(w io.Writer, st sched.Stats, colorize bool) error {
	miss := color.New(color.FgRed, color.Bold)
	if colorize {
		miss.EnableColor()
	} else {
		miss.DisableColor()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "tick=%d elapsed=%d running=%s load=%.2f%% busy=%d idle=%d misses=%d\n",
		st.Now, st.Elapsed, st.Running, st.Load, st.BusyTicks, st.IdleTicks, st.DeadlineMisses)
	fmt.Fprintf(&b, "%-8s %6s %-9s %10s %10s %6s %6s %6s %7s\n",
		"TASK", "PERIOD", "STATE", "DEADLINE", "BUSY", "SHARE", "JOBS", "MISSES", "SKIPPED")
	for _, t := range st.Tasks {
		share := sched.LoadPercent(t.BusyTicks, st.Elapsed)
		line := fmt.Sprintf("%-8s %6d %-9s %10d %10d %5.1f%% %6d %6d %7d",
			t.Name, t.Period, t.State, t.Deadline, t.BusyTicks, share, t.Jobs, t.Misses, t.Skipped)
		if t.Misses > 0 {
			line = miss.Sprint(line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	for _, t := range st.Tasks {
		if t.ExitError != "" {
			fmt.Fprintf(&b, "%s exited: %s\n", t.Name, t.ExitError)
		}
	}
	if st.Halted {
		b.WriteString(miss.Sprint("scheduler halted"))
		b.WriteByte('\n')
	}

	_, err := io.WriteString(w, b.String())
	return err
}
