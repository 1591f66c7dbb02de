package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHBlankFiresOncePerScanline(t *testing.T) {
	u := New()
	fired := 0
	u.RaiseHBlank = func() { fired++ }

	u.ProcessEvents(HBlankStartCycle)
	assert.Equal(t, 1, fired)

	u.ProcessEvents(1)
	assert.Equal(t, 1, fired) // still within the same HBlank period
}

func TestVBlankFiresAtScanline160(t *testing.T) {
	u := New()
	fired := 0
	u.RaiseVBlank = func() { fired++ }

	u.ProcessEvents(CyclesPerScanline * VisibleScanlines)

	assert.Equal(t, 1, fired)
	assert.Equal(t, VisibleScanlines, u.Scanline())
}

func TestFrameReadyFiresAfterTotalScanlines(t *testing.T) {
	u := New()
	frames := 0
	u.FrameReady = func() { frames++ }

	u.ProcessEvents(CyclesPerScanline * TotalScanlines)

	assert.Equal(t, 1, frames)
	assert.Equal(t, 0, u.Scanline())
}

func TestVCountMatchFiresOnTargetLine(t *testing.T) {
	u := New()
	u.VCountTarget = 10
	matched := 0
	u.RaiseVCount = func() { matched++ }

	u.ProcessEvents(CyclesPerScanline * 10)

	assert.Equal(t, 1, matched)
}

func TestProcessEventsPredictsNextBoundary(t *testing.T) {
	u := New()

	next := u.ProcessEvents(10)

	assert.Equal(t, HBlankStartCycle-10, next)
}
