// Package memory is the GBA memory bus: BIOS/ROM/patched-ROM attachment,
// the I/O register bank the Event Dispatcher and Timer Bank read and write,
// and the flat work-RAM regions. Adapted from the teacher's MMU
// (memory/mem.go), which dispatches DMG addresses through an 8-region,
// byte-page lookup table, to the GBA's coarser top-byte-addressed regions
// and its word-indexed I/O register bank.
package memory

import (
	"fmt"
	"log/slog"

	"golang.org/x/sys/unix"

	"github.com/handheld-retro/advance/addr"
	"github.com/handheld-retro/advance/bit"
	"github.com/handheld-retro/advance/gpio"
	"github.com/handheld-retro/advance/savedata"
)

const (
	biosSize   = 0x4000
	ewramSize  = 0x40000
	iwramSize  = 0x8000
	ioSize     = 0x400
	romCeiling = 32 * 1024 * 1024

	gpioHeaderOffset = 0xC4
)

// region is the top address byte a GBA access falls into.
type region uint8

const (
	regionBIOS  region = 0x00
	regionEWRAM region = 0x02
	regionIWRAM region = 0x03
	regionIO    region = 0x04
	regionROM0  region = 0x08
	regionROM1  region = 0x09
	regionSRAM  region = 0x0E
)

// Memory is the bus the CPU's load/store path, the Timer Bank's register
// writes and the DMA unit's copies all go through.
type Memory struct {
	bios   []byte
	ewram  []byte
	iwram  []byte
	ioRegs [ioSize / 2]uint16

	rom             []byte
	pristineRom     []byte
	pristineRomSize int
	romSize         int

	patchedRom       []byte
	patchedRomMapped bool

	fullBios     bool
	biosChecksum uint32

	Savedata *savedata.Unit
	GPIO     *gpio.Unit
}

// New returns an empty Memory unit; ROM/BIOS must be attached before use.
func New() *Memory {
	return &Memory{
		ewram:    make([]byte, ewramSize),
		iwram:    make([]byte, iwramSize),
		Savedata: savedata.New(),
		GPIO:     gpio.New(),
	}
}

func (m *Memory) Init()   {}
func (m *Memory) Deinit() { m.releasePatchedRom() }

// AttachROM maps romData as the active and pristine ROM image, up to the
// 32 MiB cartridge ceiling.
func (m *Memory) AttachROM(romData []byte) error {
	size := len(romData)
	if size > romCeiling {
		size = romCeiling
	}
	m.pristineRom = romData[:size]
	m.rom = m.pristineRom
	m.pristineRomSize = size
	m.romSize = size
	m.GPIO.Init(gpioHeaderOffset)
	return nil
}

// knownBiosChecksums are the official GBA BIOS and its GBA-via-DS variant;
// anything else is accepted but warned about.
var knownBiosChecksums = map[uint32]string{
	0xBAAE187F: "GBA",
	0x09F3FDB3: "GBA-via-DS",
}

// AttachBIOS maps biosData as the BIOS image and records its checksum
// against the known-good set.
func (m *Memory) AttachBIOS(biosData []byte) error {
	m.bios = biosData
	m.fullBios = len(biosData) >= biosSize
	m.biosChecksum = crc32ish(biosData)
	if _, ok := knownBiosChecksums[m.biosChecksum]; !ok {
		slog.Warn("unrecognized BIOS checksum", "checksum", fmt.Sprintf("0x%08X", m.biosChecksum))
	}
	return nil
}

// crc32ish is a cheap rolling checksum; BIOS identification only needs to
// distinguish a handful of known images, not cryptographic integrity.
func crc32ish(data []byte) uint32 {
	var h uint32 = 0xFFFFFFFF
	for _, b := range data {
		h ^= uint32(b)
		for i := 0; i < 8; i++ {
			if h&1 != 0 {
				h = (h >> 1) ^ 0xEDB88320
			} else {
				h >>= 1
			}
		}
	}
	return ^h
}

// Patch is the collaborator contract for binary ROM patches: compute the
// output size for a given input size, then apply the patch into a
// caller-provided destination buffer.
type Patch interface {
	OutputSize(origSize int) int
	ApplyPatch(dst []byte) bool
}

// ApplyPatch allocates an anonymous RW mapping of the patch's declared
// output size, seeds it with the pristine ROM bytes, and applies the patch.
// On failure the mapping is released and the active ROM falls back to the
// pristine image; on success the active ROM swaps to the patched buffer.
func (m *Memory) ApplyPatch(p Patch) error {
	patchedSize := p.OutputSize(m.pristineRomSize)
	if patchedSize == 0 {
		return nil
	}

	buf, err := unix.Mmap(-1, 0, patchedSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return fmt.Errorf("patch: allocate buffer: %w", err)
	}

	copy(buf, m.pristineRom)

	if !p.ApplyPatch(buf) {
		_ = unix.Munmap(buf)
		m.rom = m.pristineRom
		m.romSize = m.pristineRomSize
		return nil
	}

	m.releasePatchedRom()
	m.patchedRom = buf
	m.patchedRomMapped = true
	m.rom = buf
	m.romSize = patchedSize
	return nil
}

func (m *Memory) releasePatchedRom() {
	if m.patchedRomMapped {
		_ = unix.Munmap(m.patchedRom)
		m.patchedRomMapped = false
		m.patchedRom = nil
	}
}

// Destroy releases all mappings. The pristine ROM pointer is never
// double-freed: if the active ROM view is the pristine one, it is nulled
// first so only the pristine map (owned by the caller/host, not mmap'd by
// this package) is considered released.
func (m *Memory) Destroy() {
	if len(m.rom) > 0 && len(m.pristineRom) > 0 && &m.rom[0] == &m.pristineRom[0] {
		m.rom = nil
	}
	m.releasePatchedRom()
	m.pristineRom = nil
}

// RomSize reports the active ROM's size in bytes.
func (m *Memory) RomSize() int { return m.romSize }

// IsPatched reports whether the active ROM view is the mmap'd patched
// buffer rather than the pristine image.
func (m *Memory) IsPatched() bool {
	return len(m.rom) > 0 && m.patchedRomMapped && len(m.patchedRom) > 0 && &m.rom[0] == &m.patchedRom[0]
}

func regionOf(address uint32) region { return region(address >> 24) }

// ReadIO reads an I/O register word by byte address (spec invariant 5:
// addressed by byte-offset/2).
func (m *Memory) ReadIO(address uint32) uint16 {
	return m.ioRegs[addr.RegIndex(address)]
}

// WriteIO writes an I/O register word directly; collaborators with their
// own register semantics (timers, IRQ, DMA) intercept the relevant
// addresses before falling through to this raw store.
func (m *Memory) WriteIO(address uint32, v uint16) {
	m.ioRegs[addr.RegIndex(address)] = v
}

// Read32/Write32 give the DMA unit a minimal bus to copy through, spanning
// the regions a real transfer could target (work RAM and I/O; VRAM/OAM/
// palette RAM are host rendering concerns out of this core's scope).
func (m *Memory) Read32(address uint32) uint32 {
	switch regionOf(address) {
	case regionEWRAM:
		return readWord(m.ewram, address&(ewramSize-1))
	case regionIWRAM:
		return readWord(m.iwram, address&(iwramSize-1))
	case regionIO:
		lo := m.ReadIO(address)
		hi := m.ReadIO(address + 2)
		return uint32(lo) | uint32(hi)<<16
	case regionROM0, regionROM1:
		off := address & 0x01FFFFFF
		if int(off)+4 <= len(m.rom) {
			return readWord(m.rom, off)
		}
		return 0
	default:
		return 0
	}
}

func (m *Memory) Write32(address uint32, v uint32) {
	switch regionOf(address) {
	case regionEWRAM:
		writeWord(m.ewram, address&(ewramSize-1), v)
	case regionIWRAM:
		writeWord(m.iwram, address&(iwramSize-1), v)
	case regionIO:
		m.WriteIO(address, uint16(v))
		m.WriteIO(address+2, uint16(v>>16))
	}
}

// readWord/writeWord assemble/split a 32-bit bus word from byte-addressed
// storage two halves at a time via the teacher's bit.Combine helper, the
// same 8-bit-pair-to-16-bit composition the teacher uses for DMG register
// pairs, here chained twice to build a 32-bit GBA bus word.
func readWord(buf []byte, offset uint32) uint32 {
	if int(offset)+4 > len(buf) {
		return 0
	}
	lo := bit.Combine(buf[offset+1], buf[offset])
	hi := bit.Combine(buf[offset+3], buf[offset+2])
	return uint32(lo) | uint32(hi)<<16
}

func writeWord(buf []byte, offset uint32, v uint32) {
	if int(offset)+4 > len(buf) {
		return
	}
	buf[offset] = bit.Low(uint16(v))
	buf[offset+1] = bit.High(uint16(v))
	buf[offset+2] = bit.Low(uint16(v >> 16))
	buf[offset+3] = bit.High(uint16(v >> 16))
}
