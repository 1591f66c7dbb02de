// Package irq implements the GBA interrupt controller: the IE/IF/IME
// register trio, raising interrupts, and the springIRQ deferred-recheck
// mechanism the CPU's CPSR-read callback uses to re-test pending interrupts
// on the next dispatcher sweep.
package irq

import "github.com/handheld-retro/advance/cpu"

// Kind is the closed, ordered set of interrupt sources.
type Kind uint8

const (
	VBlank Kind = iota
	HBlank
	VCount
	Timer0
	Timer1
	Timer2
	Timer3
	SIO
	DMA0
	DMA1
	DMA2
	DMA3
	Keypad
	GamePak
)

func (k Kind) bit() uint16 { return 1 << uint16(k) }

// Controller owns IE, IF and IME, and the springIRQ latch. It holds the CPU
// it drives directly rather than through an interface, since both live in
// the same module and the CPU exposes exactly the mutable fields (Halted,
// NextEvent) the controller needs to touch.
type Controller struct {
	IE, IF, IME uint16

	// SpringIRQ is the pending re-test latch the event dispatcher clears
	// at the top of every sweep after forcing an immediate recheck.
	SpringIRQ bool

	// IRQLine mirrors the CPU's asserted-interrupt wire: true whenever
	// the controller has signaled an enabled, unmasked, pending interrupt.
	IRQLine bool

	c *cpu.CPU

	// warnedKeypad/warnedGamePak log a stub warning exactly once per source,
	// mirroring the "log-stub for KEYPAD and GAMEPAK" contract without
	// spamming on every write.
	warnedKeypad, warnedGamePak bool
	logStub                     func(source string)
}

// New returns a controller bound to c. logStub is called (at most once per
// source) when the guest writes to the not-implemented KEYPAD/GAMEPAK IRQ
// sources; it is normally wired to the logging package.
func New(c *cpu.CPU, logStub func(source string)) *Controller {
	return &Controller{c: c, logStub: logStub}
}

// RaiseIRQ ORs the interrupt's bit into IF, clears Halted, and signals the
// CPU's IRQ line if the interrupt is both enabled and globally unmasked.
func (ctl *Controller) RaiseIRQ(kind Kind) {
	ctl.IF |= kind.bit()
	ctl.c.Halted = false
	if ctl.IME != 0 && ctl.IE&kind.bit() != 0 {
		ctl.signal()
	}
}

// WriteIE updates the interrupt-enable mask. Writes that newly enable a
// source with KEYPAD or GAMEPAK bits set are logged as unimplemented; any
// pending interrupt that becomes newly enabled fires immediately.
func (ctl *Controller) WriteIE(v uint16) {
	if v&Keypad.bit() != 0 && !ctl.warnedKeypad {
		ctl.warnedKeypad = true
		if ctl.logStub != nil {
			ctl.logStub("KEYPAD")
		}
	}
	if v&GamePak.bit() != 0 && !ctl.warnedGamePak {
		ctl.warnedGamePak = true
		if ctl.logStub != nil {
			ctl.logStub("GAMEPAK")
		}
	}

	ctl.IE = v
	if ctl.IME != 0 && v&ctl.IF != 0 {
		ctl.signal()
	}
}

// WriteIME updates the master interrupt enable. Enabling it while an
// interrupt is already pending and unmasked signals the CPU immediately.
func (ctl *Controller) WriteIME(v uint16) {
	ctl.IME = v
	if v != 0 && ctl.IE&ctl.IF != 0 {
		ctl.signal()
	}
}

// TestIRQ is the callback the CPU invokes on a CPSR read (readCPSR is
// wired to testIRQ, per spec): if an enabled interrupt is pending, latch
// springIRQ and force an immediate dispatcher sweep.
func (ctl *Controller) TestIRQ() {
	if ctl.IME != 0 && ctl.IE&ctl.IF != 0 {
		ctl.SpringIRQ = true
		ctl.c.NextEvent = ctl.c.Cycles
	}
}

// Halt forces an immediate dispatcher sweep and marks the CPU halted.
func (ctl *Controller) Halt() {
	ctl.c.NextEvent = ctl.c.Cycles
	ctl.c.Halted = true
}

func (ctl *Controller) signal() {
	ctl.IRQLine = true
	ctl.c.Halted = false
	ctl.c.NextEvent = ctl.c.Cycles
}
