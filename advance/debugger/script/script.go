// Package script wires a user-supplied Lua callback into the debugger's
// illegal/stub opcode hook, the same scriptable-breakpoint role gopher-lua
// plays in IntuitionEngine's scripting console: a TAS-style hook that can
// inspect (and eventually drive) emulator state from a small embedded
// script rather than a compiled plugin.
package script

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// Hook loads a Lua script once and exposes on_illegal/on_stub globals as
// callbacks, invoked with the CPU's general-purpose registers as a Lua
// table (indexed 0-15) passed as the first argument.
type Hook struct {
	state *lua.LState
}

// Load compiles and runs source and returns a Hook bound to the resulting
// Lua state; the caller attaches it with Machine.SetScriptHook.
func Load(source string) (*Hook, error) {
	l := lua.NewState()
	if err := l.DoString(source); err != nil {
		l.Close()
		return nil, fmt.Errorf("script: load: %w", err)
	}
	return &Hook{state: l}, nil
}

// Close releases the Lua interpreter.
func (h *Hook) Close() {
	if h.state != nil {
		h.state.Close()
	}
}

// call invokes a global Lua function by name with the register file
// exposed as a table, swallowing the case where the guest script defines
// no such hook.
func (h *Hook) call(name string, gprs [16]uint32, reasonText string) {
	fn, ok := h.state.GetGlobal(name).(*lua.LFunction)
	if !ok {
		return
	}

	regs := h.state.NewTable()
	for i, v := range gprs {
		regs.RawSetInt(i, lua.LNumber(v))
	}

	h.state.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, regs, lua.LString(reasonText))
}

// OnIllegal invokes the script's on_illegal(regs, reason) callback, if defined.
func (h *Hook) OnIllegal(gprs [16]uint32) { h.call("on_illegal", gprs, "illegal") }

// OnStub invokes the script's on_stub(regs, reason) callback, if defined.
func (h *Hook) OnStub(gprs [16]uint32) { h.call("on_stub", gprs, "stub") }
