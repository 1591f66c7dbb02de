// Package debugger implements the optional observer the core enters on
// illegal/stub opcodes (spec 4.6), plus two enrichments grounded on sibling
// emulators in the retrieval pack: a Lua scripting hook (debugger/script,
// modeled on IntuitionEngine's gopher-lua scripting console) and a
// Graphviz state dump (modeled on Gopher2600's memviz wiring).
package debugger

import (
	"bufio"
	"fmt"
	"io"

	"github.com/bradleyjkemp/memviz"
	"golang.org/x/term"

	"github.com/handheld-retro/advance"
)

// Console is a minimal REPL-style Debugger: it satisfies advance.Debugger
// and, on Enter, prints the reason and reads operator commands until a
// continue command (or an empty line) returns control to the core.
type Console struct {
	in  *bufio.Reader
	out io.Writer

	// Inspect, if set, is called to fetch a snapshot of the live
	// Machine/Timer/IRQ state for the "graph" command.
	Inspect func() any

	rawFd    int
	rawState *term.State
}

// New returns a Console reading commands from in and writing to out.
func New(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out}
}

// EnableRawMode puts the terminal backing file descriptor fd into raw mode,
// so the console can step one keystroke at a time instead of waiting on a
// line. A no-op if fd is not a real terminal (e.g. redirected input in a
// headless run or a test).
func (c *Console) EnableRawMode(fd int) error {
	if !term.IsTerminal(fd) {
		return nil
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("debugger: enable raw mode: %w", err)
	}
	c.rawFd = fd
	c.rawState = state
	return nil
}

// DisableRawMode restores the terminal to its prior mode, if raw mode was
// ever enabled.
func (c *Console) DisableRawMode() error {
	if c.rawState == nil {
		return nil
	}
	err := term.Restore(c.rawFd, c.rawState)
	c.rawState = nil
	return err
}

func (c *Console) Enter(reason advance.DebugReason) {
	fmt.Fprintf(c.out, "debugger: stopped (reason=%d)\n", reason)
	for {
		fmt.Fprint(c.out, "(advance) ")
		cmd, err := c.readCommand()
		if err != nil {
			return
		}
		switch cmd {
		case "", "c", "continue":
			return
		case "graph":
			c.dumpGraph()
		default:
			fmt.Fprintf(c.out, "unknown command: %q\n", cmd)
		}
	}
}

// readCommand reads one command: a single keystroke in raw mode (c continues,
// g dumps the graph, anything else is reported unknown), or a full line
// otherwise.
func (c *Console) readCommand() (string, error) {
	if c.rawState != nil {
		b, err := c.in.ReadByte()
		if err != nil {
			return "", err
		}
		fmt.Fprintln(c.out)
		switch b {
		case '\r', '\n', 'c':
			return "c", nil
		case 'g':
			return "graph", nil
		default:
			return string(b), nil
		}
	}

	line, err := c.in.ReadString('\n')
	if err != nil {
		return "", err
	}
	return trimNewline(line), nil
}

// dumpGraph writes a Graphviz DOT rendering of the live inspected state,
// the same role memviz.Map plays in Gopher2600's own debugger tooling.
func (c *Console) dumpGraph() {
	if c.Inspect == nil {
		fmt.Fprintln(c.out, "no inspectable state bound")
		return
	}
	memviz.Map(c.out, c.Inspect())
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
