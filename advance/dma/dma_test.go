package dma

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeBus struct {
	mem map[uint32]uint32
}

func newFakeBus() *fakeBus { return &fakeBus{mem: map[uint32]uint32{}} }

func (b *fakeBus) Read32(addr uint32) uint32     { return b.mem[addr] }
func (b *fakeBus) Write32(addr uint32, v uint32) { b.mem[addr] = v }

func TestImmediateTransferRunsEveryCall(t *testing.T) {
	bus := newFakeBus()
	bus.mem[0x1000] = 0xCAFEBABE
	u := New(bus)

	u.Channels[0] = Channel{Src: 0x1000, Dst: 0x2000, Count: 1, Trigger: Immediate, Enable: true, Repeat: true}

	u.RunDMAs(0)

	assert.Equal(t, uint32(0xCAFEBABE), bus.mem[0x2000])
}

func TestNonRepeatingTransferDisablesAfterOneRun(t *testing.T) {
	bus := newFakeBus()
	u := New(bus)
	u.Channels[0] = Channel{Src: 0x1000, Dst: 0x2000, Count: 1, Trigger: Immediate, Enable: true}

	u.RunDMAs(0)

	assert.False(t, u.Channels[0].Enable)
}

func TestVBlankTriggeredChannelWaitsForNotification(t *testing.T) {
	bus := newFakeBus()
	u := New(bus)
	bus.mem[0x1000] = 0x5A
	u.Channels[0] = Channel{Src: 0x1000, Dst: 0x2000, Count: 1, Trigger: VBlank, Enable: true, Repeat: true}

	u.RunDMAs(0)
	assert.True(t, u.Channels[0].Enable) // not notified yet, stays armed
	assert.Equal(t, uint32(0), bus.mem[0x2000])

	u.NotifyVBlank()
	u.RunDMAs(0)
	assert.True(t, u.Channels[0].Enable)
	assert.Equal(t, uint32(0x5A), bus.mem[0x2000])
}

func TestRaiseIRQFiresWithChannelIndex(t *testing.T) {
	bus := newFakeBus()
	u := New(bus)
	var fired []int
	u.RaiseIRQ = func(ch int) { fired = append(fired, ch) }
	u.Channels[2] = Channel{Trigger: Immediate, Enable: true, RaiseIRQ: true}

	u.RunDMAs(0)

	assert.Equal(t, []int{2}, fired)
}

func TestRequestFIFOOnlyRunsFIFOTriggeredChannel(t *testing.T) {
	bus := newFakeBus()
	u := New(bus)
	u.Channels[1] = Channel{Src: 0x1000, Dst: 0x3000, Count: 1, Trigger: FIFORequest, Enable: true, Repeat: true}
	bus.mem[0x1000] = 7

	u.RequestFIFO(0) // channel 0 isn't armed for FIFO, no-op
	assert.Equal(t, uint32(0), bus.mem[0x3000])

	u.RequestFIFO(1)
	assert.Equal(t, uint32(7), bus.mem[0x3000])
}
