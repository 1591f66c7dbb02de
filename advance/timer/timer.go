// Package timer implements the GBA's four cascading hardware timers: the
// prescaled counters, reload latching, cascade "count-up" chaining, IRQ on
// overflow, and the audio FIFO pump coupling on timers 0 and 1. Adapted from
// the teacher's DIV/TIMA/TMA/TAC timer (memory/timer.go), which ticks a
// single edge-detected counter, into the GBA's four independent
// nextEvent-scheduled counters.
package timer

import "math"

// prescaleShift maps the 2-bit TAC-style selector to its bit-shift divider.
var prescaleShift = [4]uint{0, 6, 8, 10}

// Timer is one of the four hardware timer channels.
type Timer struct {
	enable       bool
	countUp      bool
	doIrq        bool
	prescale     uint8 // raw 2-bit selector, kept to recompute overflowInterval
	prescaleBits uint

	reload    uint16
	oldReload uint16
	counter   uint16 // visible REG_TMxCNT_LO value

	overflowInterval int
	nextEvent        int
	lastEvent        int
}

func (t *Timer) Enabled() bool   { return t.enable }
func (t *Timer) CountUp() bool   { return t.countUp }
func (t *Timer) Counter() uint16 { return t.counter }

// Bank owns the four timer channels and the callbacks the Machine wired in
// at construction time: raising an IRQ on overflow, and pumping an audio
// FIFO for the two DMA-sound-capable channels.
type Bank struct {
	timers [4]Timer

	// EnabledMask mirrors invariant 1: bit i set iff timers[i].enable.
	EnabledMask uint8

	RaiseIRQ func(timerIndex int)
	// OnOverflow is invoked only for timer 0 and 1, with the post-overflow
	// slack (lastEvent) the audio FIFO pump needs as its sub-cycle offset.
	OnOverflow func(timerIndex int, lastEvent int)
	// OnAnyOverflow is invoked for every timer's overflow regardless of
	// doIrq, for observers (metrics) that want the raw overflow rate.
	OnAnyOverflow func(timerIndex int)

	cyclesNow func() int
}

// New returns a bank with all four timers disabled.
func New(cyclesNow func() int) *Bank {
	return &Bank{cyclesNow: cyclesNow}
}

func (b *Bank) Timer(i int) *Timer { return &b.timers[i] }

const noEvent = math.MaxInt

// ProcessEvents advances every enabled timer by cycles and folds each
// timer's next-event prediction into the returned cycles-until-next-event,
// per spec 4.2.
func (b *Bank) ProcessEvents(cycles int) int {
	nextEvent := noEvent

	for i := range b.timers {
		t := &b.timers[i]
		if !t.enable {
			continue
		}

		t.nextEvent -= cycles
		t.lastEvent -= cycles

		if t.nextEvent <= 0 {
			t.lastEvent = t.nextEvent
			t.nextEvent += t.overflowInterval
			t.counter = t.reload
			t.oldReload = t.reload

			if t.doIrq && b.RaiseIRQ != nil {
				b.RaiseIRQ(i)
			}

			if b.OnAnyOverflow != nil {
				b.OnAnyOverflow(i)
			}

			if i == 0 || i == 1 {
				if b.OnOverflow != nil {
					b.OnOverflow(i, t.lastEvent)
				}
			}

			if i+1 < len(b.timers) {
				next := &b.timers[i+1]
				if next.countUp {
					next.counter++
					if next.counter == 0 {
						next.nextEvent = 0
					}
				}
			}

			// Own count-up handling: timer 0 is documented as always
			// cycle-driven, so this only applies to timers 1-3 (see
			// the open question on countUp semantics for timer 0).
			if i >= 1 && t.countUp {
				t.nextEvent = noEvent
			}
		}

		if i == 0 || t.nextEvent < nextEvent {
			nextEvent = t.nextEvent
		}
	}

	return nextEvent
}

// visibleCounter materializes the live counter for a running, non-cascade
// timer without waiting for its next overflow (spec invariant 5).
func (t *Timer) visibleCounter(cyclesNow int) uint16 {
	if t.countUp {
		return t.counter
	}
	elapsed := (cyclesNow - t.lastEvent) >> t.prescaleBits
	return t.oldReload + uint16(elapsed)
}

// ReadCounter returns the visible counter register for timer i, materializing
// it lazily if the timer is running.
func (b *Bank) ReadCounter(i int) uint16 {
	t := &b.timers[i]
	if t.enable && !t.countUp {
		t.counter = t.visibleCounter(b.cyclesNow())
	}
	return t.counter
}

// WriteReload handles a write to REG_TMxCNT_LO: store the reload value.
// Does not start the timer or recompute intervals.
func (b *Bank) WriteReload(i int, reload uint16) {
	b.timers[i].reload = reload
}

// WriteControl handles a write to REG_TMxCNT_HI and returns the new absolute
// nextEvent for timer i, so the Machine can pull cpu.nextEvent in if needed.
func (b *Bank) WriteControl(i int, control uint16) int {
	t := &b.timers[i]
	cyclesNow := b.cyclesNow()

	wasEnabled := t.enable
	oldPrescaleBits := t.prescaleBits

	// Freeze the visible counter at current time before changing any
	// timing parameters.
	b.updateRegister(i, cyclesNow)

	prescaleSel := uint8(control & 0x3)
	t.prescale = prescaleSel
	t.prescaleBits = prescaleShift[prescaleSel]
	t.countUp = control&0x4 != 0
	t.doIrq = control&0x40 != 0
	newEnable := control&0x80 != 0

	t.overflowInterval = (0x10000 - int(t.reload)) << t.prescaleBits

	switch {
	case !wasEnabled && newEnable:
		if !t.countUp {
			t.nextEvent = cyclesNow + t.overflowInterval
		} else {
			t.nextEvent = noEvent
		}
		t.counter = t.reload
		t.oldReload = t.reload
		t.lastEvent = 0
		b.EnabledMask |= 1 << uint(i)

	case wasEnabled && !newEnable:
		if !t.countUp {
			elapsed := (cyclesNow - t.lastEvent) >> oldPrescaleBits
			t.counter = t.oldReload + uint16(elapsed)
		}
		b.EnabledMask &^= 1 << uint(i)

	case wasEnabled && newEnable:
		// On->on with a prescale (or other control) change, non-cascade:
		// this may land nextEvent in the past; the next dispatcher sweep
		// treats that as an immediate overflow, per spec.
		if !t.countUp {
			t.nextEvent = t.lastEvent + t.overflowInterval
		}
	}

	t.enable = newEnable
	return t.nextEvent
}

// updateRegister refreshes the visible counter word for a running,
// non-cascade timer without altering any scheduling state.
func (b *Bank) updateRegister(i int, cyclesNow int) {
	t := &b.timers[i]
	if t.enable && !t.countUp {
		t.counter = t.visibleCounter(cyclesNow)
	}
}
