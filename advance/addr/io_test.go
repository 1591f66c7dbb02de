package addr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegIndexConvertsByteAddressToWordIndex(t *testing.T) {
	assert.Equal(t, 0, RegIndex(0x04000000))
	assert.Equal(t, 0x100, RegIndex(IE))
}

func TestTimerControlAddrSpacing(t *testing.T) {
	lo, hi := TimerControlAddr(0)
	assert.Equal(t, TM0CNT_L, lo)
	assert.Equal(t, TM0CNT_H, hi)

	lo, hi = TimerControlAddr(3)
	assert.Equal(t, TM3CNT_L, lo)
	assert.Equal(t, TM3CNT_H, hi)
}

func TestDMAChannelBaseSpacing(t *testing.T) {
	assert.Equal(t, DMA0SAD, DMAChannelBase(0))
	assert.Equal(t, DMA0SAD+12, DMAChannelBase(1))
}
