// Package display is the pixelgl host adapter: it owns the window, blits the
// expanded framebuffer, and translates keyboard events into keypad edges.
package display

import (
	"fmt"

	"github.com/faiface/pixel"
	"github.com/faiface/pixel/imdraw"
	"github.com/faiface/pixel/pixelgl"
	"golang.org/x/image/colornames"

	"github.com/okto-vm/okto/internal/chip8"
)

// keyMap is the conventional QWERTY layout for the hex keypad:
//  1 2 3 4   ->  1 2 3 C
//  Q W E R   ->  4 5 6 D
//  A S D F   ->  7 8 9 E
//  Z X C V   ->  A 0 B F
var keyMap = map[byte]pixelgl.Button{
	0x1: pixelgl.Key1, 0x2: pixelgl.Key2, 0x3: pixelgl.Key3, 0xC: pixelgl.Key4,
	0x4: pixelgl.KeyQ, 0x5: pixelgl.KeyW, 0x6: pixelgl.KeyE, 0xD: pixelgl.KeyR,
	0x7: pixelgl.KeyA, 0x8: pixelgl.KeyS, 0x9: pixelgl.KeyD, 0xE: pixelgl.KeyF,
	0xA: pixelgl.KeyZ, 0x0: pixelgl.KeyX, 0xB: pixelgl.KeyC, 0xF: pixelgl.KeyV,
}

// KeyEvent is one keypad edge observed since the last poll.
type KeyEvent struct {
	Key     byte
	Pressed bool
}

// Window wraps a pixelgl window scaled up from the 64x32 framebuffer.
type Window struct {
	*pixelgl.Window
	scale float64
}

// NewWindow opens the emulator window at the given pixel scale factor.
func NewWindow(scale int) (*Window, error) {
	cfg := pixelgl.WindowConfig{
		Title:  "okto",
		Bounds: pixel.R(0, 0, float64(chip8.ScreenWidth*scale), float64(chip8.ScreenHeight*scale)),
		VSync:  true,
	}
	w, err := pixelgl.NewWindow(cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating new window: %v", err)
	}
	return &Window{Window: w, scale: float64(scale)}, nil
}

// PollKeys reports the keypad edges since the last input update. The caller
// must have called UpdateInput or Draw since the previous poll.
func (w *Window) PollKeys() []KeyEvent {
	var evs []KeyEvent
	for key, btn := range keyMap {
		if w.JustPressed(btn) {
			evs = append(evs, KeyEvent{Key: key, Pressed: true})
		}
		if w.JustReleased(btn) {
			evs = append(evs, KeyEvent{Key: key, Pressed: false})
		}
	}
	return evs
}

// ExitRequested reports whether the user closed the window or hit Escape.
func (w *Window) ExitRequested() bool {
	return w.Closed() || w.JustPressed(pixelgl.KeyEscape)
}

// Draw blits the expanded one-byte-per-pixel bitmap (row-major, top-left
// origin) as scaled rectangles and swaps buffers.
func (w *Window) Draw(screen []byte) {
	w.Clear(colornames.Black)
	imDraw := imdraw.New(nil)
	imDraw.Color = pixel.RGB(1, 1, 1)

	for y := 0; y < chip8.ScreenHeight; y++ {
		for x := 0; x < chip8.ScreenWidth; x++ {
			if screen[y*chip8.ScreenWidth+x] == 0 {
				continue
			}
			// pixel's origin is bottom-left, the framebuffer's is top-left
			px := float64(x) * w.scale
			py := float64(chip8.ScreenHeight-1-y) * w.scale
			imDraw.Push(pixel.V(px, py))
			imDraw.Push(pixel.V(px+w.scale, py+w.scale))
			imDraw.Rectangle(0)
		}
	}

	imDraw.Draw(w)
	w.Update()
}
