package cartridge

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/handheld-retro/advance/gpio"
	"github.com/handheld-retro/advance/savedata"
)

func header(gameCode string) []byte {
	data := make([]byte, headerMinSize)
	copy(data[gameCodeOffset:], gameCode)
	return data
}

func TestNewReadsGameCode(t *testing.T) {
	c := New(header("BPEE"))
	assert.Equal(t, "BPEE", c.GameCode)
}

func TestNewLeavesGameCodeEmptyOnShortData(t *testing.T) {
	c := New([]byte{0x01, 0x02})
	assert.Equal(t, "", c.GameCode)
	assert.Equal(t, uint32(0), c.ID())
}

func TestApplyPokemonEmeraldGetsFlash1MAndRTCOnly(t *testing.T) {
	c := New(header("BPEE"))
	sd := savedata.New()
	gp := gpio.New()

	Apply(c, sd, gp)

	assert.Equal(t, savedata.Flash1M, sd.Type())
	assert.True(t, gp.HasRTC())
	assert.False(t, gp.HasGyro())
	assert.False(t, gp.HasRumble())
}

func TestApplyRubyAndSapphireBothGetFlash1MAndRTC(t *testing.T) {
	for _, code := range []string{"AXVE", "AXPE"} {
		c := New(header(code))
		sd := savedata.New()
		gp := gpio.New()

		Apply(c, sd, gp)

		assert.Equal(t, savedata.Flash1M, sd.Type(), code)
		assert.True(t, gp.HasRTC(), code)
	}
}

func TestApplyWarioWareTwistedGetsSRAMAndGyroAndRumble(t *testing.T) {
	c := New(header("RWZE"))
	sd := savedata.New()
	gp := gpio.New()

	Apply(c, sd, gp)

	assert.Equal(t, savedata.SRAM, sd.Type())
	assert.True(t, gp.HasGyro())
	assert.True(t, gp.HasRumble())
	assert.False(t, gp.HasRTC())
}

func TestApplyUnknownGameCodeIsNoOp(t *testing.T) {
	c := New(header("ZZZZ"))
	sd := savedata.New()
	gp := gpio.New()

	Apply(c, sd, gp)

	assert.Equal(t, savedata.None, sd.Type())
	assert.Equal(t, gpio.Feature(0), gp.Features())
}
