// Package terminal renders the framebuffer and a live register/IRQ status
// bar to a terminal using tcell, the teacher's terminal rendering library
// (render.NewTerminalRenderer), adapted from the teacher's half-block pixel
// renderer to a coarse downsampled preview plus a status line, since a GBA's 240x160
// frame vastly exceeds practical terminal-cell resolution.
package terminal

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/handheld-retro/advance/display"
)

// Frontend renders to a tcell terminal screen.
type Frontend struct {
	screen tcell.Screen
	status string
}

// New initializes a tcell screen in raw, fullscreen mode.
func New() (*Frontend, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("terminal: new screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("terminal: init: %w", err)
	}
	screen.SetStyle(tcell.StyleDefault)
	screen.Clear()
	return &Frontend{screen: screen}, nil
}

var blockStyle = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)

// SetStatus sets the text shown on the bottom status row (register/IRQ
// state, frame counters), refreshed on the next Present.
func (f *Frontend) SetStatus(s string) { f.status = s }

// Present scales frame to fill every screen row but the last, sampling one
// source pixel per terminal cell and drawing a full-block glyph for any
// non-zero pixel, and draws the status bar on the last row.
func (f *Frontend) Present(frame display.Frame) error {
	w, h := f.screen.Size()
	if w == 0 || h == 0 {
		return nil
	}

	cellsWide := w
	cellsHigh := h - 1
	if cellsHigh < 1 {
		cellsHigh = 1
	}

	for cy := 0; cy < cellsHigh; cy++ {
		for cx := 0; cx < cellsWide; cx++ {
			sx := cx * frame.Width / cellsWide
			sy := cy * frame.Height / cellsHigh
			idx := sy*frame.Width + sx
			ch := ' '
			if idx >= 0 && idx < len(frame.Pixels) && frame.Pixels[idx] != 0 {
				ch = '█'
			}
			f.screen.SetContent(cx, cy, ch, nil, blockStyle)
		}
	}

	for i, r := range f.status {
		if i >= w {
			break
		}
		f.screen.SetContent(i, h-1, r, nil, blockStyle)
	}

	f.screen.Show()
	return nil
}

// PollInput translates tcell key events into joypad button transitions.
func (f *Frontend) PollInput() []display.ButtonEvent {
	var events []display.ButtonEvent
	for f.screen.HasPendingEvent() {
		switch ev := f.screen.PollEvent().(type) {
		case *tcell.EventKey:
			btn, ok := keyToButton(ev.Key(), ev.Rune())
			if ok {
				events = append(events, display.ButtonEvent{Button: btn, Pressed: true})
			}
		}
	}
	return events
}

func keyToButton(key tcell.Key, r rune) (int, bool) {
	switch {
	case r == 'z':
		return 0, true // A
	case r == 'x':
		return 1, true // B
	case key == tcell.KeyUp:
		return 6, true
	case key == tcell.KeyDown:
		return 7, true
	case key == tcell.KeyLeft:
		return 5, true
	case key == tcell.KeyRight:
		return 4, true
	default:
		return 0, false
	}
}

func (f *Frontend) Close() error {
	f.screen.Fini()
	return nil
}
