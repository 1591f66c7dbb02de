package savedata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewUnitHasNoBackingStore(t *testing.T) {
	u := New()
	assert.Equal(t, None, u.Type())
	assert.False(t, u.HasBattery())
	assert.Nil(t, u.Bytes())
}

func TestInitSRAMAttachesBatteryBackedFlatStore(t *testing.T) {
	u := New()
	u.InitSRAM()

	assert.Equal(t, SRAM, u.Type())
	assert.True(t, u.HasBattery())
	assert.Len(t, u.Bytes(), sramSize)
}

func TestInitFlashSelectsTypeBySize(t *testing.T) {
	u := New()
	u.InitFlash(flash512Size)
	assert.Equal(t, Flash512, u.Type())

	u.InitFlash(flash1MSize)
	assert.Equal(t, Flash1M, u.Type())
}

func TestWriteMarksDirtyAndReadRoundtrips(t *testing.T) {
	u := New()
	u.InitSRAM()

	assert.False(t, u.Dirty())
	u.Write(10, 0x42)
	assert.True(t, u.Dirty())
	assert.Equal(t, byte(0x42), u.Read(10))

	u.MarkClean()
	assert.False(t, u.Dirty())
}

func TestReadOutOfRangeReturnsFF(t *testing.T) {
	u := New()
	u.InitSRAM()
	assert.Equal(t, byte(0xFF), u.Read(-1))
	assert.Equal(t, byte(0xFF), u.Read(sramSize))
}

func TestWriteWithoutBackingStoreIsNoOp(t *testing.T) {
	u := New()
	assert.NotPanics(t, func() { u.Write(0, 1) })
	assert.False(t, u.Dirty())
}

func TestLoadFillsShortSaveWithEraseByte(t *testing.T) {
	u := New()
	u.InitSRAM()

	u.Load([]byte{0x01, 0x02, 0x03})

	assert.Equal(t, byte(0x01), u.Read(0))
	assert.Equal(t, byte(0x02), u.Read(1))
	assert.Equal(t, byte(0x03), u.Read(2))
	assert.Equal(t, byte(0xFF), u.Read(3))
}

func TestStringNamesEveryType(t *testing.T) {
	assert.Equal(t, "NONE", None.String())
	assert.Equal(t, "SRAM", SRAM.String())
	assert.Equal(t, "EEPROM", EEPROM.String())
	assert.Equal(t, "FLASH512", Flash512.String())
	assert.Equal(t, "FLASH1M", Flash1M.String())
}
