// Package cartridge parses the GBA ROM header and holds the static override
// table that maps a cartridge's 4-character game code to its savedata type
// and GPIO feature set, adapted from the teacher's header-parsing cartridge
// type (memory/cartridge.go) to the GBA header layout and the spec's
// override-table semantics.
package cartridge

import (
	"encoding/binary"

	"github.com/handheld-retro/advance/gpio"
	"github.com/handheld-retro/advance/savedata"
)

const (
	gameCodeOffset = 0xAC
	gameCodeLen    = 4
	headerMinSize  = gameCodeOffset + gameCodeLen
)

// Cartridge wraps a loaded ROM image and the header fields the core cares
// about for scheduling purposes; pixel/palette/title metadata is a host
// rendering concern and lives outside this package.
type Cartridge struct {
	data     []byte
	GameCode string
}

// New wraps romData as a Cartridge, reading its 4-character game code. The
// caller is responsible for memory-mapping romData; this type does not own
// the mapping.
func New(romData []byte) *Cartridge {
	c := &Cartridge{data: romData}
	if len(romData) >= headerMinSize {
		c.GameCode = string(romData[gameCodeOffset : gameCodeOffset+gameCodeLen])
	}
	return c
}

// ID returns the game code as a little-endian 32-bit word (the 4 game-code
// bytes at header offset 0xAC read as one word). Apply matches on GameCode,
// not on this word.
func (c *Cartridge) ID() uint32 {
	if len(c.data) < headerMinSize {
		return 0
	}
	return binary.LittleEndian.Uint32(c.data[gameCodeOffset : gameCodeOffset+gameCodeLen])
}

// override describes one entry of the cartridge override table: a savedata
// type and a GPIO feature mask to apply when a ROM's game code matches.
type override struct {
	savedata savedata.Type
	gpio     gpio.Feature
}

// table is the spec's concrete cartridge override table, reproduced
// verbatim by game code for compatibility with titles that rely on
// autodetected savedata/GPIO wiring.
var table = map[string]override{
	"U3IE": {savedata.EEPROM, gpio.RTC | gpio.LightSensor},
	"U3IP": {savedata.EEPROM, gpio.RTC | gpio.LightSensor},
	"U32E": {savedata.EEPROM, gpio.RTC | gpio.LightSensor},
	"U32P": {savedata.EEPROM, gpio.RTC | gpio.LightSensor},

	"V49J": {savedata.SRAM, gpio.Rumble},
	"V49E": {savedata.SRAM, gpio.Rumble},

	// Pokemon Ruby
	"AXVJ": {savedata.Flash1M, gpio.RTC},
	"AXVE": {savedata.Flash1M, gpio.RTC},
	"AXVP": {savedata.Flash1M, gpio.RTC},
	"AXVI": {savedata.Flash1M, gpio.RTC},
	"AXVS": {savedata.Flash1M, gpio.RTC},
	"AXVD": {savedata.Flash1M, gpio.RTC},
	"AXVF": {savedata.Flash1M, gpio.RTC},

	// Pokemon Sapphire
	"AXPJ": {savedata.Flash1M, gpio.RTC},
	"AXPE": {savedata.Flash1M, gpio.RTC},
	"AXPP": {savedata.Flash1M, gpio.RTC},
	"AXPI": {savedata.Flash1M, gpio.RTC},
	"AXPS": {savedata.Flash1M, gpio.RTC},
	"AXPD": {savedata.Flash1M, gpio.RTC},
	"AXPF": {savedata.Flash1M, gpio.RTC},

	// Pokemon Emerald
	"BPEJ": {savedata.Flash1M, gpio.RTC},
	"BPEE": {savedata.Flash1M, gpio.RTC},
	"BPEP": {savedata.Flash1M, gpio.RTC},
	"BPEI": {savedata.Flash1M, gpio.RTC},
	"BPES": {savedata.Flash1M, gpio.RTC},
	"BPED": {savedata.Flash1M, gpio.RTC},
	"BPEF": {savedata.Flash1M, gpio.RTC},

	// Pokemon FireRed
	"BPRJ": {savedata.Flash1M, 0},
	"BPRE": {savedata.Flash1M, 0},
	"BPRP": {savedata.Flash1M, 0},

	// Pokemon LeafGreen
	"BPGJ": {savedata.Flash1M, 0},
	"BPGE": {savedata.Flash1M, 0},
	"BPGP": {savedata.Flash1M, 0},

	"BR4J": {savedata.Flash512, gpio.RTC},

	"AX4J": {savedata.Flash1M, 0},
	"AX4E": {savedata.Flash1M, 0},
	"AX4P": {savedata.Flash1M, 0},

	"RWZJ": {savedata.SRAM, gpio.Rumble | gpio.Gyro},
	"RWZE": {savedata.SRAM, gpio.Rumble | gpio.Gyro},
	"RWZP": {savedata.SRAM, gpio.Rumble | gpio.Gyro},
}

// Apply looks up c's game code in the override table and, on a match,
// initializes sd and gp accordingly. It is a no-op if the game code is not
// in the table, leaving savedata/GPIO detection to whatever the host or a
// later savefile-driven path decides.
func Apply(c *Cartridge, sd *savedata.Unit, gp *gpio.Unit) {
	entry, ok := table[c.GameCode]
	if !ok {
		return
	}

	switch entry.savedata {
	case savedata.Flash512:
		sd.InitFlash(64 * 1024)
	case savedata.Flash1M:
		sd.InitFlash(128 * 1024)
	case savedata.EEPROM:
		sd.InitEEPROM()
	case savedata.SRAM:
		sd.InitSRAM()
	case savedata.None:
		// no-op
	}

	if entry.gpio&gpio.RTC != 0 {
		gp.InitRTC()
	}
	if entry.gpio&gpio.Gyro != 0 {
		gp.InitGyro()
	}
	if entry.gpio&gpio.Rumble != 0 {
		gp.InitRumble()
	}
	// LightSensor is declarative metadata only; no initializer exists for it.
}
