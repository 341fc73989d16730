package app

import (
	"io"

	"github.com/pkg/errors"

	"edfrt/internal/job"
	"edfrt/internal/msgq"
	"edfrt/internal/sched"
)

// Build registers the configured task set with s. All tasks share one
// message queue, which is returned.
func Build(s *sched.Scheduler, cfg sched.Config, uart io.Writer) (*msgq.Queue[byte], error) {
	q := msgq.New[byte](cfg.QueueCapacity)
	pins := NewScriptedPins(s.Clock())

	for _, tc := range cfg.Tasks {
		var run sched.TaskFunc
		switch tc.Kind {
		case "button":
			high, low := byte('H'), byte('L')
			if len(tc.Tags) == 2 {
				high, low = tc.Tags[0], tc.Tags[1]
			}
			pins.Toggle(tc.Pin, tc.ToggleEvery)
			run = ButtonMonitor(q, pins, tc.Pin, high, low)
		case "transmitter":
			run = PeriodicTransmitter(q)
		case "receiver":
			run = UartReceiver(q, uart)
		case "load":
			run = job.Load(tc.Cost)
		default:
			return nil, errors.Errorf("task %q: unknown kind %q", tc.Name, tc.Kind)
		}

		if _, err := s.Register(sched.NewTask(tc.Name, tc.Period, tc.Deadline, run)); err != nil {
			return nil, errors.Wrap(err, "register task set")
		}
	}
	return q, nil
}
