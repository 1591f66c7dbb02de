// Package audio models the GBA sound hardware only to the extent the core
// scheduler needs: two DMA-fed FIFO channels (A and B), each bound to one of
// the two cycle timers that drive it. Sample mixing and speaker output are a
// host concern; this unit exists to be ticked for cycles-until-next-event and
// to accept a FIFO pump call when its bound timer overflows.
package audio

// Unit is the Audio collaborator the Machine drives every dispatcher sweep.
// It mirrors the shape of Video: processEvents(cycles) -> cycles_until_next,
// plus the FIFO pump the Timer Bank invokes on overflow.
type Unit struct {
	Enable bool

	ChAEnableLeft, ChAEnableRight bool
	ChBEnableLeft, ChBEnableRight bool

	// ChATimer/ChBTimer select which of timer 0 or timer 1 drains this FIFO.
	ChATimer int
	ChBTimer int

	fifoA, fifoB fifo

	// pumps counts FIFO samples taken since the unit was created, exposed
	// through Pumps for tests.
	pumps uint64
}

// fifo is a bare 32-byte ring, the depth of the real GBA DMA sound FIFO.
type fifo struct {
	buf   [32]int8
	head  int
	count int
}

func (f *fifo) push(sample int8) {
	if f.count == len(f.buf) {
		return
	}
	tail := (f.head + f.count) % len(f.buf)
	f.buf[tail] = sample
	f.count++
}

func (f *fifo) pop() (int8, bool) {
	if f.count == 0 {
		return 0, false
	}
	v := f.buf[f.head]
	f.head = (f.head + 1) % len(f.buf)
	f.count--
	return v, true
}

// New returns a disabled Audio unit with both FIFOs bound to timer 0.
func New() *Unit {
	return &Unit{}
}

// Push queues a byte for DMA channel (0=A, 1=B); the DMA unit calls this
// when a FIFO-triggered transfer lands.
func (u *Unit) Push(channel int, sample int8) {
	if channel == 0 {
		u.fifoA.push(sample)
		return
	}
	u.fifoB.push(sample)
}

// SampleFIFO drains one sample from the channel whose timer selector
// matches the overflowing timer, per spec 4.2's audio FIFO coupling. lastEvent
// is the sub-cycle slack carried from the overflow and is only meaningful to
// a real mixer; this unit just counts the pump.
func (u *Unit) SampleFIFO(channel int, lastEvent int) {
	if !u.Enable {
		return
	}
	if channel == 0 {
		if !(u.ChAEnableLeft || u.ChAEnableRight) {
			return
		}
		if _, ok := u.fifoA.pop(); ok {
			u.pumps++
		}
		return
	}
	if !(u.ChBEnableLeft || u.ChBEnableRight) {
		return
	}
	if _, ok := u.fifoB.pop(); ok {
		u.pumps++
	}
}

// ProcessEvents has nothing of its own to schedule (the Timer Bank drives
// its pump), so it never predicts a nearer event than "don't ask again soon".
func (u *Unit) ProcessEvents(cycles int) int {
	return 1 << 30
}

// Pumps reports the number of FIFO samples consumed so far, for metrics.
func (u *Unit) Pumps() uint64 { return u.pumps }
