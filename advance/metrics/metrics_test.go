package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestRecorder() *Recorder {
	return &Recorder{}
}

func TestAddCyclesAccumulates(t *testing.T) {
	r := newTestRecorder()

	r.AddCycles(10)
	r.AddCycles(5)

	assert.Equal(t, int64(15), r.Cycles())
}

func TestAddTimerOverflowTracksPerTimer(t *testing.T) {
	r := newTestRecorder()

	r.AddTimerOverflow(0)
	r.AddTimerOverflow(0)
	r.AddTimerOverflow(3)

	assert.Equal(t, int64(2), r.TimerOverflows(0))
	assert.Equal(t, int64(1), r.TimerOverflows(3))
	assert.Equal(t, int64(0), r.TimerOverflows(1))
}

func TestTimerOverflowsOutOfRangeReturnsZero(t *testing.T) {
	r := newTestRecorder()
	assert.Equal(t, int64(0), r.TimerOverflows(99))
	assert.Equal(t, int64(0), r.TimerOverflows(-1))
}
