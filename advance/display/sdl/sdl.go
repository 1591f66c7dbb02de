// Package sdl renders to a real window via SDL2, adapted from the teacher's
// backend/sdl2.go: the same window+texture-streaming approach, sized for
// the GBA's 240x160 frame instead of the DMG's 160x144.
package sdl

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/handheld-retro/advance/display"
)

const (
	screenWidth  = 240
	screenHeight = 160
)

// Frontend is a real SDL2 window rendering upscaled GBA frames.
type Frontend struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	scale    int
}

// New opens an SDL2 window scaled by the given integer factor.
func New(scale int) (*Frontend, error) {
	if scale < 1 {
		scale = 1
	}
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("sdl: init: %w", err)
	}

	window, err := sdl.CreateWindow("advance", sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(screenWidth*scale), int32(screenHeight*scale), sdl.WINDOW_SHOWN)
	if err != nil {
		return nil, fmt.Errorf("sdl: create window: %w", err)
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		window.Destroy()
		return nil, fmt.Errorf("sdl: create renderer: %w", err)
	}

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_RGB555, sdl.TEXTUREACCESS_STREAMING, screenWidth, screenHeight)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		return nil, fmt.Errorf("sdl: create texture: %w", err)
	}

	return &Frontend{window: window, renderer: renderer, texture: texture, scale: scale}, nil
}

// Present streams frame's RGB555 pixels into the texture and blits it
// scaled to the window.
func (f *Frontend) Present(frame display.Frame) error {
	pixels := make([]byte, len(frame.Pixels)*2)
	for i, p := range frame.Pixels {
		pixels[i*2] = byte(p)
		pixels[i*2+1] = byte(p >> 8)
	}

	if err := f.texture.Update(nil, pixels, screenWidth*2); err != nil {
		return fmt.Errorf("sdl: update texture: %w", err)
	}

	f.renderer.Clear()
	f.renderer.Copy(f.texture, nil, nil)
	f.renderer.Present()
	return nil
}

// PollInput translates SDL keyboard events into joypad button transitions.
func (f *Frontend) PollInput() []display.ButtonEvent {
	var events []display.ButtonEvent
	for {
		e := sdl.PollEvent()
		if e == nil {
			break
		}
		if ke, ok := e.(*sdl.KeyboardEvent); ok {
			btn, ok := keyToButton(ke.Keysym.Sym)
			if ok {
				events = append(events, display.ButtonEvent{
					Button:  btn,
					Pressed: ke.State == sdl.PRESSED,
				})
			}
		}
	}
	return events
}

func keyToButton(sym sdl.Keycode) (int, bool) {
	switch sym {
	case sdl.K_z:
		return 0, true
	case sdl.K_x:
		return 1, true
	case sdl.K_UP:
		return 6, true
	case sdl.K_DOWN:
		return 7, true
	case sdl.K_LEFT:
		return 5, true
	case sdl.K_RIGHT:
		return 4, true
	default:
		return 0, false
	}
}

func (f *Frontend) Close() error {
	f.texture.Destroy()
	f.renderer.Destroy()
	f.window.Destroy()
	sdl.Quit()
	return nil
}
