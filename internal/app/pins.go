package app

import "edfrt/internal/sched"

// PinReader reads a digital input. Board GPIO drivers implement it.
type PinReader interface {
	Read(pin int) bool
}

// ScriptedPins simulates push buttons: each pin flips level every
// configured number of ticks.
type ScriptedPins struct {
	clock  *sched.TickClock
	toggle map[int]uint32
}

func NewScriptedPins(clock *sched.TickClock) *ScriptedPins {
	return &ScriptedPins{clock: clock, toggle: make(map[int]uint32)}
}

// Toggle makes pin flip every n ticks. Zero keeps it low.
func (p *ScriptedPins) Toggle(pin int, n uint32) {
	p.toggle[pin] = n
}

func (p *ScriptedPins) Read(pin int) bool {
	n := p.toggle[pin]
	if n == 0 {
		return false
	}
	return (p.clock.Elapsed()/uint64(n))%2 == 1
}
