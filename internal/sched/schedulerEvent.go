// internal/sched/schedulerEvent.go

package sched

import (
	"encoding/csv"
	"io"
	"strconv"
)

// EventKind represents the type of scheduler event.
type EventKind int

const (
	EventIdle EventKind = iota
	EventRelease
	EventDispatch
	EventPreempt
	EventBlock
	EventWake
	EventDeadlineMiss
	EventSkip
	EventExit
	EventSuspend
)

// Event is emitted on every scheduling action.
type Event struct {
	Tick      Tick
	Kind      EventKind
	TaskID    TaskID
	Task      string
	Deadline  Tick
	BusyTicks uint64
	Skipped   uint32 // EventSkip only
}

func (ek EventKind) String() string {
	switch ek {
	case EventIdle:
		return "Idle"
	case EventRelease:
		return "Release"
	case EventDispatch:
		return "Dispatch"
	case EventPreempt:
		return "Preempt"
	case EventBlock:
		return "Block"
	case EventWake:
		return "Wake"
	case EventDeadlineMiss:
		return "DeadlineMiss"
	case EventSkip:
		return "Skip"
	case EventExit:
		return "Exit"
	case EventSuspend:
		return "Suspend"
	default:
		return "Unknown"
	}
}

// CSVSink writes events as CSV rows tagged with a run id.
type CSVSink struct {
	w     *csv.Writer
	runID string
	err   error
}

// NewCSVSink writes the header row and returns the sink.
func NewCSVSink(w io.Writer, runID string) (*CSVSink, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"run_id", "tick", "event", "task_id", "task", "deadline", "busy_ticks"}); err != nil {
		return nil, err
	}
	cw.Flush()
	return &CSVSink{w: cw, runID: runID}, cw.Error()
}

// Handle writes one event. The first write error sticks and is reported by Flush.
func (c *CSVSink) Handle(ev Event) {
	if c.err != nil {
		return
	}
	c.err = c.w.Write([]string{
		c.runID,
		strconv.FormatUint(uint64(ev.Tick), 10),
		ev.Kind.String(),
		strconv.FormatInt(int64(ev.TaskID), 10),
		ev.Task,
		strconv.FormatUint(uint64(ev.Deadline), 10),
		strconv.FormatUint(ev.BusyTicks, 10),
	})
}

// Flush pushes buffered rows to the underlying writer.
func (c *CSVSink) Flush() error {
	c.w.Flush()
	if c.err != nil {
		return c.err
	}
	return c.w.Error()
}
