package job

import (
	"context"

	"edfrt/internal/sched"
)

// Load returns a task body that burns cost ticks of CPU every period,
// standing in for a busy-loop load generator.
func Load(cost uint32) sched.TaskFunc {
	return func(ctx context.Context, h *sched.Handle) error {
		for ctx.Err() == nil {
			h.Compute(cost)
			h.WaitForNextPeriod()
		}
		return ctx.Err()
	}
}

// Overrun returns a load task that burns cost ticks, except on every nth job
// where it burns overrun ticks instead.
func Overrun(cost, overrun uint32, every int) sched.TaskFunc {
	return func(ctx context.Context, h *sched.Handle) error {
		for job := 1; ctx.Err() == nil; job++ {
			if every > 0 && job%every == 0 {
				h.Compute(overrun)
			} else {
				h.Compute(cost)
			}
			h.WaitForNextPeriod()
		}
		return ctx.Err()
	}
}

// Idle returns a task body with negligible execution time.
func Idle() sched.TaskFunc {
	return Load(0)
}
