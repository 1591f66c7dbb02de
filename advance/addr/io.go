// Package addr holds the GBA I/O register addresses and timer control
// bits the core needs to know about. Only the registers the
// scheduler itself touches are named here; video/audio pixel- and
// sample-level registers belong to their own collaborator packages.
package addr

// Interrupt-controller registers (0x4000200 region).
const (
	IE  uint32 = 0x04000200
	IF  uint32 = 0x04000202
	IME uint32 = 0x04000208
)

// Timer registers. Each timer has a 16-bit counter/reload register (LO)
// and a 16-bit control register (HI), four bytes apart.
const (
	TM0CNT_L uint32 = 0x04000100
	TM0CNT_H uint32 = 0x04000102
	TM1CNT_L uint32 = 0x04000104
	TM1CNT_H uint32 = 0x04000106
	TM2CNT_L uint32 = 0x04000108
	TM2CNT_H uint32 = 0x0400010A
	TM3CNT_L uint32 = 0x0400010C
	TM3CNT_H uint32 = 0x0400010E
)

// TimerControlAddr returns the LO/HI register pair for timer index t (0-3).
func TimerControlAddr(t int) (lo, hi uint32) {
	base := TM0CNT_L + uint32(t)*4
	return base, base + 2
}

// Timer control bits, per spec: 0x3 selects the prescaler, 0x4 is the
// count-up (cascade) flag, 0x40 enables IRQ-on-overflow, 0x80 enables
// the timer.
const (
	TimerPrescaleMask = 0x0003
	TimerCountUp      = 0x0004
	TimerIRQEnable    = 0x0040
	TimerEnable       = 0x0080
)

// DMA registers (four channels, 12 bytes apart starting at channel 0's
// source-address register).
const (
	DMA0SAD          uint32 = 0x040000B0
	DMA0CNT_H        uint32 = 0x040000BA
	dmaChannelStride uint32 = 0x0C
)

// DMAChannelBase returns the base address of DMA channel c's register block.
func DMAChannelBase(c int) uint32 {
	return DMA0SAD + uint32(c)*dmaChannelStride
}

// Video registers relevant to IRQ scheduling (pixel composition itself
// is out of scope).
const (
	DISPCNT  uint32 = 0x04000000
	DISPSTAT uint32 = 0x04000004
	VCOUNT   uint32 = 0x04000006
)

// Keypad.
const (
	KEYINPUT uint32 = 0x04000130
	KEYCNT   uint32 = 0x04000132
)

// Serial I/O.
const (
	SIOCNT  uint32 = 0x04000128
	SIODATA uint32 = 0x0400012A
)

// RegIndex converts a byte address in the I/O region to the index into the
// 16-bit-word register bank (spec invariant 5: addressed by byte-offset/2).
func RegIndex(address uint32) int {
	return int((address - 0x04000000) >> 1)
}
