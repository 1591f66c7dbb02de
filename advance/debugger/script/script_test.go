package script

import (
	"testing"

	lua "github.com/yuin/gopher-lua"

	"github.com/stretchr/testify/assert"
)

func TestOnIllegalInvokesLuaCallback(t *testing.T) {
	h, err := Load(`
		calls = 0
		function on_illegal(regs, reason)
			calls = calls + 1
			last_reason = reason
			last_r0 = regs[0]
		end
	`)
	assert.NoError(t, err)
	defer h.Close()

	var gprs [16]uint32
	gprs[0] = 0xDEADBEEF
	h.OnIllegal(gprs)

	calls, ok := h.state.GetGlobal("calls").(lua.LNumber)
	assert.True(t, ok)
	assert.Equal(t, lua.LNumber(1), calls)

	reason, ok := h.state.GetGlobal("last_reason").(lua.LString)
	assert.True(t, ok)
	assert.Equal(t, lua.LString("illegal"), reason)
}

func TestOnStubIsANoOpWhenUndefined(t *testing.T) {
	h, err := Load(`x = 1`)
	assert.NoError(t, err)
	defer h.Close()

	var gprs [16]uint32
	assert.NotPanics(t, func() { h.OnStub(gprs) })
}
