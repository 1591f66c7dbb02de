package irq

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/handheld-retro/advance/cpu"
)

func TestRaiseIRQSetsIFAndClearsHalted(t *testing.T) {
	c := cpu.New()
	c.Halted = true
	ctl := New(c, nil)

	ctl.IME = 1
	ctl.IE = Timer0.bit()

	ctl.RaiseIRQ(Timer0)

	assert.Equal(t, Timer0.bit(), ctl.IF)
	assert.False(t, c.Halted)
	assert.True(t, ctl.IRQLine)
}

func TestRaiseIRQDoesNotAssertWhenMasked(t *testing.T) {
	c := cpu.New()
	ctl := New(c, nil)

	ctl.IME = 0
	ctl.IE = Timer0.bit()

	ctl.RaiseIRQ(Timer0)

	assert.Equal(t, Timer0.bit(), ctl.IF)
	assert.False(t, ctl.IRQLine)
}

func TestWriteIEFiresNewlyEnabledPending(t *testing.T) {
	c := cpu.New()
	ctl := New(c, nil)

	ctl.IME = 1
	ctl.IF = VBlank.bit()

	ctl.WriteIE(VBlank.bit())

	assert.True(t, ctl.IRQLine)
}

func TestWriteIMEFiresPendingUnmasked(t *testing.T) {
	c := cpu.New()
	ctl := New(c, nil)

	ctl.IE = VBlank.bit()
	ctl.IF = VBlank.bit()

	ctl.WriteIME(1)

	assert.True(t, ctl.IRQLine)
}

func TestWriteIELogsUnimplementedSourcesOnce(t *testing.T) {
	c := cpu.New()
	var stubs []string
	ctl := New(c, func(source string) { stubs = append(stubs, source) })

	ctl.WriteIE(Keypad.bit())
	ctl.WriteIE(Keypad.bit())
	ctl.WriteIE(GamePak.bit() | Keypad.bit())

	assert.Equal(t, []string{"KEYPAD", "GAMEPAK"}, stubs)
}

func TestTestIRQLatchesSpringAndForcesSweep(t *testing.T) {
	c := cpu.New()
	c.Cycles = 500
	c.NextEvent = 1000
	ctl := New(c, nil)

	ctl.IME = 1
	ctl.IE = VBlank.bit()
	ctl.IF = VBlank.bit()

	ctl.TestIRQ()

	assert.True(t, ctl.SpringIRQ)
	assert.Equal(t, 500, c.NextEvent)
}

func TestHaltForcesImmediateSweepAndHalts(t *testing.T) {
	c := cpu.New()
	c.Cycles = 42
	c.NextEvent = 9999
	ctl := New(c, nil)

	ctl.Halt()

	assert.True(t, c.Halted)
	assert.Equal(t, 42, c.NextEvent)
}
