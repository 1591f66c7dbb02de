// Package advance is the GBA core: the Machine that owns a CPU and the
// Video/Audio/Timer/DMA/SIO/IRQ subsystems, and drives them forward in
// lockstep with the shared cycle counter. Adapted from the teacher's
// Emulator/core.go, which runs a DMG CPU-GPU-MMU loop keyed off frames,
// into the GBA's callback-driven cooperative scheduler keyed off a shared
// cycle clock and an explicit capability table installed on the CPU.
package advance

import (
	"fmt"
	"os"

	"github.com/handheld-retro/advance/audio"
	"github.com/handheld-retro/advance/cartridge"
	"github.com/handheld-retro/advance/cpu"
	"github.com/handheld-retro/advance/dma"
	"github.com/handheld-retro/advance/irq"
	"github.com/handheld-retro/advance/logging"
	"github.com/handheld-retro/advance/memory"
	"github.com/handheld-retro/advance/metrics"
	"github.com/handheld-retro/advance/sio"
	"github.com/handheld-retro/advance/timer"
	"github.com/handheld-retro/advance/video"
)

// DebugReason is why control is being handed to an attached Debugger.
type DebugReason int

const (
	ReasonIllegalOp DebugReason = iota
)

// Debugger is the optional observer invoked on illegal/stub opcodes.
type Debugger interface {
	Enter(reason DebugReason)
}

// ScriptHook is the optional scripted observer invoked on illegal/stub
// opcodes alongside (or instead of) an interactive Debugger, with the
// CPU's general-purpose registers exposed for inspection.
type ScriptHook interface {
	OnIllegal(gprs [16]uint32)
	OnStub(gprs [16]uint32)
}

// Machine is the core: one CPU, one Memory unit, the Video/Audio/SIO
// bindings, the four-timer bank, the IRQ controller, and the DMA unit,
// wired together at Init and driven by repeated calls into processEvents.
type Machine struct {
	cpu *cpu.CPU
	mem *memory.Memory

	video  *video.Unit
	audio  *audio.Unit
	sio    *sio.Unit
	dma    *dma.Unit
	timers *timer.Bank
	irqc   *irq.Controller

	keySource      func() uint16
	rotationSource func() int16
	rumble         func(bool)

	logLevel   logging.Level
	logHandler func(level logging.Level, msg string)

	activeFile string
	savefile   string
	debugger   Debugger
	scriptHook ScriptHook

	metrics *metrics.Recorder

	destroyed bool
}

// SetMetrics wires an optional metrics recorder; once set, every
// dispatcher sweep and timer overflow is reported to it.
func (m *Machine) SetMetrics(r *metrics.Recorder) { m.metrics = r }

// CPU returns the Machine's CPU handle, for a host driver that advances the
// shared cycle clock directly in place of a real ARM7TDMI decoder.
func (m *Machine) CPU() *cpu.CPU { return m.cpu }

// New allocates a Machine with no CPU, ROM, or BIOS attached yet. Call Init
// to bind a CPU and wire every subsystem's capability callbacks.
func New() *Machine {
	return &Machine{
		logLevel: logging.LevelWarn | logging.LevelError | logging.LevelFatal,
	}
}

// Init binds c as the Machine's CPU, allocates every subsystem, and fills
// in the CPU's interrupt-handler capability table with closures over this
// Machine, per the design note on polymorphic component registration: an
// explicit record of function values, not inheritance.
func (m *Machine) Init(c *cpu.CPU) {
	m.cpu = c
	m.mem = memory.New()
	m.video = video.New()
	m.audioInit()
	m.sio = sio.New(func() { m.irqc.RaiseIRQ(irq.SIO) })
	m.dma = dma.New(m.mem)
	m.timers = timer.New(func() int { return m.cpu.Cycles })
	m.irqc = irq.New(c, func(source string) {
		logging.Log(m, logging.LevelWarn, "unimplemented IRQ source written to IE", "source", source)
	})

	m.video.RaiseVBlank = func() {
		m.irqc.RaiseIRQ(irq.VBlank)
		m.dma.NotifyVBlank()
	}
	m.video.RaiseHBlank = func() {
		m.irqc.RaiseIRQ(irq.HBlank)
		m.dma.NotifyHBlank()
	}
	m.video.RaiseVCount = func() { m.irqc.RaiseIRQ(irq.VCount) }

	m.timers.RaiseIRQ = func(t int) { m.irqc.RaiseIRQ(irq.Kind(int(irq.Timer0) + t)) }
	m.timers.OnAnyOverflow = func(t int) {
		if m.metrics != nil {
			m.metrics.AddTimerOverflow(t)
		}
	}
	m.timers.OnOverflow = func(t int, lastEvent int) {
		if m.audio.ChATimer == t {
			m.audio.SampleFIFO(0, lastEvent)
		}
		if m.audio.ChBTimer == t {
			m.audio.SampleFIFO(1, lastEvent)
		}
	}

	m.dma.RaiseIRQ = func(channel int) {
		if m.metrics != nil {
			m.metrics.AddDMATransfer()
		}
		m.irqc.RaiseIRQ(irq.Kind(int(irq.DMA0) + channel))
	}

	c.IRQH = cpu.InterruptHandlers{
		Reset:         m.Reset,
		ProcessEvents: m.processEvents,
		SWI16:         func(comment uint8) {},
		SWI32:         func(comment uint32) {},
		HitIllegal:    m.hitIllegal,
		ReadCPSR:      m.irqc.TestIRQ,
		HitStub:       m.hitStub,
	}
}

func (m *Machine) audioInit() {
	m.audio = audio.New()
}

// AttachROM loads romData, runs the cartridge override table against its
// game code, and wires savedata/GPIO accordingly.
func (m *Machine) AttachROM(romData []byte) error {
	if err := m.mem.AttachROM(romData); err != nil {
		return fmt.Errorf("attach rom: %w", err)
	}
	cart := cartridge.New(romData)
	cartridge.Apply(cart, m.mem.Savedata, m.mem.GPIO)
	m.activeFile = cart.GameCode
	return nil
}

// AttachBIOS loads biosData as the Machine's BIOS image.
func (m *Machine) AttachBIOS(biosData []byte) error {
	if err := m.mem.AttachBIOS(biosData); err != nil {
		return fmt.Errorf("attach bios: %w", err)
	}
	return nil
}

// ApplyPatch runs a binary patch collaborator against the pristine ROM,
// falling back transparently if the patch reports failure.
func (m *Machine) ApplyPatch(p memory.Patch) error {
	return m.mem.ApplyPatch(p)
}

// Reset re-establishes the canonical stack pointers for SYSTEM, IRQ and
// SUPERVISOR privilege modes, leaving the CPU in SYSTEM mode.
func (m *Machine) Reset() {
	m.cpu.SetPrivilegeMode(cpu.ModeIRQ)
	m.cpu.SetPrivilegeMode(cpu.ModeSupervisor)
	m.cpu.SetPrivilegeMode(cpu.ModeSystem)
}

// Destroy tears down Memory and Video and unmaps the patched ROM mapping;
// the Audio unit holds nothing to release. Calls after the first are no-ops.
func (m *Machine) Destroy() {
	if m.destroyed {
		return
	}
	m.mem.Destroy()
	m.video.Deinit()
	m.destroyed = true
}

// processEvents is the Event Dispatcher: invoked whenever cpu.Cycles >=
// cpu.NextEvent, it repeatedly distributes the consumed cycle budget to
// Video, Audio, Timers, DMA and SIO in that order, folds their
// cycles-until-next-event predictions via min, and fast-forwards through
// halted stretches until an event actually fires.
func (m *Machine) processEvents() {
	for m.cpu.Cycles >= m.cpu.NextEvent {
		cycles := m.cpu.Cycles
		nextEvent := 1 << 30

		if m.irqc.SpringIRQ {
			m.irqc.SpringIRQ = false
			// Re-test: any interrupt still pending and enabled signals
			// the CPU line again on this very sweep.
			if m.irqc.IME != 0 && m.irqc.IE&m.irqc.IF != 0 {
				m.irqc.IRQLine = true
				m.cpu.Halted = false
			}
		}

		if v := m.video.ProcessEvents(cycles); v < nextEvent {
			nextEvent = v
		}
		if v := m.audio.ProcessEvents(cycles); v < nextEvent {
			nextEvent = v
		}
		if v := m.timers.ProcessEvents(cycles); v < nextEvent {
			nextEvent = v
		}
		if v := m.dma.RunDMAs(cycles); v < nextEvent {
			nextEvent = v
		}
		if v := m.sio.ProcessEvents(cycles); v < nextEvent {
			nextEvent = v
		}

		m.cpu.Cycles -= cycles
		m.cpu.NextEvent = nextEvent

		if m.metrics != nil {
			m.metrics.AddCycles(cycles)
		}

		if m.cpu.Halted {
			m.cpu.Cycles = m.cpu.NextEvent
		}
	}
}

// WriteIE handles a guest write to the IE register.
func (m *Machine) WriteIE(v uint16) { m.irqc.WriteIE(v) }

// WriteIME handles a guest write to the IME register.
func (m *Machine) WriteIME(v uint16) { m.irqc.WriteIME(v) }

// WriteIF clears acknowledged interrupt bits; the core only ever sets IF
// bits on raise (invariant 6), guest writes clear them.
func (m *Machine) WriteIF(v uint16) { m.irqc.IF &^= v }

// WriteTMCNT_LO and WriteTMCNT_HI forward timer register writes to the
// bank and pull cpu.NextEvent in immediately if the write scheduled a
// nearer event.
func (m *Machine) WriteTMCNT_LO(t int, reload uint16) {
	m.timers.WriteReload(t, reload)
}

func (m *Machine) WriteTMCNT_HI(t int, control uint16) {
	next := m.timers.WriteControl(t, control)
	if next < m.cpu.NextEvent {
		m.cpu.NextEvent = next
	}
}

func (m *Machine) ReadTMCNT_LO(t int) uint16 { return m.timers.ReadCounter(t) }

func (m *Machine) hitIllegal(opcode uint32) {
	logging.Log(m, logging.LevelWarn, "illegal opcode", "opcode", fmt.Sprintf("0x%08X", opcode))
	if m.scriptHook != nil {
		m.scriptHook.OnIllegal(m.cpu.GPRs)
	}
	if m.debugger != nil {
		m.debugger.Enter(ReasonIllegalOp)
	}
}

func (m *Machine) hitStub(opcode uint32) {
	if m.scriptHook != nil {
		m.scriptHook.OnStub(m.cpu.GPRs)
	}
	if m.debugger != nil {
		logging.Log(m, logging.LevelStub, "stub opcode", "opcode", fmt.Sprintf("0x%08X", opcode))
		m.debugger.Enter(ReasonIllegalOp)
		return
	}
	if m.scriptHook != nil {
		logging.Log(m, logging.LevelStub, "stub opcode handled by script", "opcode", fmt.Sprintf("0x%08X", opcode))
		return
	}
	logging.Log(m, logging.LevelFatal, "stub opcode with no debugger attached", "opcode", fmt.Sprintf("0x%08X", opcode))
	os.Exit(1)
}

// SetDebugger attaches an optional Debugger, invoked on illegal/stub opcodes.
func (m *Machine) SetDebugger(d Debugger) { m.debugger = d }

// SetScriptHook attaches an optional ScriptHook, invoked on illegal/stub
// opcodes alongside any attached Debugger.
func (m *Machine) SetScriptHook(h ScriptHook) { m.scriptHook = h }

// SetLogLevel sets the bitmask of log levels this Machine passes through.
func (m *Machine) SetLogLevel(level logging.Level) { m.logLevel = level }

// SetLogHandler installs an optional log handler delegate; when set, it
// receives every log call regardless of the level mask.
func (m *Machine) SetLogHandler(h func(level logging.Level, msg string)) { m.logHandler = h }

// LogLevel and LogHandlerFunc satisfy logging.Target, letting the logging
// package resolve per-Machine gating and the optional handler delegate
// without importing this package (that import would run the other way and
// cycle).
func (m *Machine) LogLevel() logging.Level                     { return m.logLevel }
func (m *Machine) LogHandlerFunc() func(logging.Level, string) { return m.logHandler }

// Bind registers m in the logging package's single process-wide slot, so
// logging.Log calls made without an explicit target resolve to it.
func (m *Machine) Bind() { logging.Bind(m) }

// Unbind clears the bound Machine.
func (m *Machine) Unbind() { logging.Unbind() }

// ActiveFile returns the 4-character cartridge game code read from the
// attached ROM's header (empty if the ROM is too short to hold one).
func (m *Machine) ActiveFile() string { return m.activeFile }

// RomSize reports the active ROM's size in bytes.
func (m *Machine) RomSize() int { return m.mem.RomSize() }

// IsPatched reports whether the active ROM view is the patched buffer.
func (m *Machine) IsPatched() bool { return m.mem.IsPatched() }

// KeyInput reads the live joypad state via the host-supplied keySource.
func (m *Machine) KeyInput() uint16 {
	if m.keySource == nil {
		return 0x03FF // all released
	}
	return m.keySource()
}

// SetKeySource wires the opaque external key-input handle.
func (m *Machine) SetKeySource(f func() uint16) { m.keySource = f }

// SetRotationSource wires the opaque external gyro/tilt handle.
func (m *Machine) SetRotationSource(f func() int16) { m.rotationSource = f }

// SetRumble wires the opaque external rumble handle.
func (m *Machine) SetRumble(f func(bool)) { m.rumble = f }
