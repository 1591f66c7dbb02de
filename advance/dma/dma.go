// Package dma implements the four GBA DMA channels, triggered immediately,
// at VBlank, at HBlank, or by an audio FIFO's sound-request line. Actual
// byte copying against the memory bus is delegated to a Bus callback so
// this package stays independent of the memory package's layout.
package dma

// Trigger is the condition that starts a channel's transfer.
type Trigger uint8

const (
	Immediate Trigger = iota
	VBlank
	HBlank
	FIFORequest
)

// Bus is the minimal memory access the DMA unit needs to perform a
// transfer; implemented by the memory package.
type Bus interface {
	Read32(addr uint32) uint32
	Write32(addr uint32, v uint32)
}

// Channel is one DMA channel's configuration.
type Channel struct {
	Src, Dst uint32
	Count    uint16
	Trigger  Trigger
	Enable   bool
	RaiseIRQ bool
	Repeat   bool

	irqIndex int // DMA0..DMA3 offset into the IRQ enum
}

// Unit owns the four DMA channels.
type Unit struct {
	Channels [4]Channel
	Bus      Bus
	RaiseIRQ func(channel int)

	pendingVBlank bool
	pendingHBlank bool
}

func New(bus Bus) *Unit {
	u := &Unit{Bus: bus}
	for i := range u.Channels {
		u.Channels[i].irqIndex = i
	}
	return u
}

// NotifyVBlank and NotifyHBlank are called by the Machine from the video
// unit's IRQ callbacks, arming any channel configured for that trigger.
func (u *Unit) NotifyVBlank() { u.pendingVBlank = true }
func (u *Unit) NotifyHBlank() { u.pendingHBlank = true }

// RequestFIFO runs channel c at once if it is enabled with the FIFORequest
// trigger. It is the entry point for a FIFO refill request; the audio unit
// in this module does not call it.
func (u *Unit) RequestFIFO(c int) {
	ch := &u.Channels[c]
	if ch.Enable && ch.Trigger == FIFORequest {
		u.run(c)
	}
}

// RunDMAs services any channel armed by a pending VBlank/HBlank notification
// or an Immediate trigger, then reports it has nothing more to predict: DMA
// transfers are not cycle-scheduled by this model, only event-triggered.
func (u *Unit) RunDMAs(cycles int) int {
	for i := range u.Channels {
		ch := &u.Channels[i]
		if !ch.Enable {
			continue
		}
		switch ch.Trigger {
		case Immediate:
			u.run(i)
		case VBlank:
			if u.pendingVBlank {
				u.run(i)
			}
		case HBlank:
			if u.pendingHBlank {
				u.run(i)
			}
		}
	}
	u.pendingVBlank = false
	u.pendingHBlank = false
	return 1 << 30
}

func (u *Unit) run(i int) {
	ch := &u.Channels[i]
	if u.Bus != nil {
		for w := uint16(0); w < ch.Count; w++ {
			v := u.Bus.Read32(ch.Src + uint32(w)*4)
			u.Bus.Write32(ch.Dst+uint32(w)*4, v)
		}
	}
	if ch.RaiseIRQ && u.RaiseIRQ != nil {
		u.RaiseIRQ(ch.irqIndex)
	}
	if !ch.Repeat {
		ch.Enable = false
	}
}
