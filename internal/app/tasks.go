// Package app holds the demo application tasks: two button monitors, a
// periodic transmitter, a UART receiver and two load simulators sharing one
// message queue.
package app

import (
	"context"
	"fmt"
	"io"

	"edfrt/internal/msgq"
	"edfrt/internal/sched"
)

// ButtonMonitor samples pin once per period and posts high or low without
// blocking; a full queue drops the sample.
func ButtonMonitor(q *msgq.Queue[byte], pins PinReader, pin int, high, low byte) sched.TaskFunc {
	return func(ctx context.Context, h *sched.Handle) error {
		for ctx.Err() == nil {
			tag := low
			if pins.Read(pin) {
				tag = high
			}
			sched.Send(h, q, tag, 0)
			h.WaitForNextPeriod()
		}
		return ctx.Err()
	}
}

// PeriodicTransmitter posts 'P' once per period, waiting up to one period
// for room in the queue.
func PeriodicTransmitter(q *msgq.Queue[byte]) sched.TaskFunc {
	return func(ctx context.Context, h *sched.Handle) error {
		for ctx.Err() == nil {
			if q.Spaces() > 0 {
				sched.Send(h, q, 'P', h.Period())
			}
			h.WaitForNextPeriod()
		}
		return ctx.Err()
	}
}

// UartReceiver drains the queue once per period and writes one line per
// message to uart.
func UartReceiver(q *msgq.Queue[byte], uart io.Writer) sched.TaskFunc {
	return func(ctx context.Context, h *sched.Handle) error {
		for ctx.Err() == nil {
			for {
				msg, ok := sched.Receive(h, q, 0)
				if !ok {
					break
				}
				if _, err := io.WriteString(uart, FormatMessage(msg)); err != nil {
					return err
				}
			}
			h.WaitForNextPeriod()
		}
		return ctx.Err()
	}
}

// FormatMessage renders a queue message the way the receiver prints it.
func FormatMessage(msg byte) string {
	switch msg {
	case 'R', 'F':
		return fmt.Sprintf("BT1=%c\n", msg)
	case 'r', 'f':
		return fmt.Sprintf("BT2=%c\n", msg)
	case 'P':
		return "PT=P\n"
	default:
		return fmt.Sprintf("??=%q\n", msg)
	}
}
