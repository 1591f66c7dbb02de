package debugger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/handheld-retro/advance"
)

func TestEnterReturnsOnEmptyLine(t *testing.T) {
	in := strings.NewReader("\n")
	var out strings.Builder

	c := New(in, &out)
	c.Enter(advance.ReasonIllegalOp)

	assert.Contains(t, out.String(), "debugger: stopped")
}

func TestEnterReportsUnknownCommand(t *testing.T) {
	in := strings.NewReader("bogus\n\n")
	var out strings.Builder

	c := New(in, &out)
	c.Enter(advance.ReasonIllegalOp)

	assert.Contains(t, out.String(), `unknown command: "bogus"`)
}

func TestDumpGraphWithoutInspectReportsNoState(t *testing.T) {
	in := strings.NewReader("graph\n\n")
	var out strings.Builder

	c := New(in, &out)
	c.Enter(advance.ReasonIllegalOp)

	assert.Contains(t, out.String(), "no inspectable state bound")
}

func TestDumpGraphRendersInspectedState(t *testing.T) {
	in := strings.NewReader("graph\n\n")
	var out strings.Builder

	c := New(in, &out)
	c.Inspect = func() any { return struct{ Cycles int }{Cycles: 42} }
	c.Enter(advance.ReasonIllegalOp)

	assert.NotContains(t, out.String(), "no inspectable state bound")
}
