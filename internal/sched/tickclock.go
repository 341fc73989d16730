// internal/sched/tickclock.go

package sched

import (
	"context"
	"sync/atomic"
	"time"
)

// Tick is a value of the kernel tick counter. It wraps at the configured
// tick width, so ticks must only be compared through a TickClock.
type Tick uint32

// TickClock is the kernel time source. The tick counter wraps at the
// configured width; elapsed keeps counting so load figures survive a wrap.
type TickClock struct {
	mask    uint32
	count   atomic.Uint32
	elapsed atomic.Uint64
}

// NewTickClock creates a clock for a 16 or 32 bit tick counter.
// Any other width falls back to 32 bits.
func NewTickClock(width int) *TickClock {
	mask := uint32(0xFFFFFFFF)
	if width == 16 {
		mask = 0xFFFF
	}
	return &TickClock{mask: mask}
}

// Now returns the current tick.
func (c *TickClock) Now() Tick {
	return Tick(c.count.Load())
}

// Elapsed returns the number of ticks advanced since the clock was created.
func (c *TickClock) Elapsed() uint64 {
	return c.elapsed.Load()
}

// set positions the counter. Only valid before the scheduler starts.
func (c *TickClock) set(t Tick) {
	c.count.Store(uint32(t) & c.mask)
}

// advance increments the counter by exactly one and returns the new tick.
func (c *TickClock) advance() Tick {
	n := (c.count.Load() + 1) & c.mask
	c.count.Store(n)
	c.elapsed.Add(1)
	return Tick(n)
}

// Add returns t+n modulo the tick width.
func (c *TickClock) Add(t Tick, n uint32) Tick {
	return Tick((uint32(t) + n) & c.mask)
}

// Diff returns the signed distance a-b. The result is only meaningful
// while the two ticks are less than half the counter range apart.
func (c *TickClock) Diff(a, b Tick) int64 {
	d := (uint32(a) - uint32(b)) & c.mask
	half := (c.mask >> 1) + 1
	if d >= half {
		return int64(d) - int64(c.mask) - 1
	}
	return int64(d)
}

// Before reports whether a comes strictly before b.
func (c *TickClock) Before(a, b Tick) bool {
	return c.Diff(a, b) < 0
}

// Drive calls fn once per interval, standing in for the hardware timer
// interrupt. It returns when ctx is done, fn fails, or fn has run n times
// (n <= 0 means no limit).
func Drive(ctx context.Context, interval time.Duration, n int, fn func() error) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for i := 0; n <= 0 || i < n; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := fn(); err != nil {
				return err
			}
		}
	}
	return nil
}
