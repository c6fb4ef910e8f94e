package main

import (
	"fmt"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-hero/engine/hero"
	"github.com/Carmen-Shannon/oxy-hero/engine/input"
	"github.com/gdamore/tcell/v2"
)

// controls is the part of the engine the terminal host drives from key presses.
type controls interface {
	SimulateContextLoss()
	Quit()
	Remounts() int
}

// host maps terminal events onto the shared input state and draws the HUD row.
type host struct {
	screen tcell.Screen
	input  *input.State
	ctl    controls
	held   *atomic.Bool

	scrollStep   float64
	scrollLength float64
}

// syncViewport records the screen size in cells so pointer positions normalise against it.
func (h *host) syncViewport() {
	cols, rows := h.screen.Size()
	h.input.SetViewport(float64(cols), float64(max(rows-1, 1)))
}

// handleEvent applies one terminal event. It returns false once the host should quit.
func (h *host) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC:
			h.ctl.Quit()
			return false
		case ev.Key() != tcell.KeyRune:
		case ev.Rune() == 'q':
			h.ctl.Quit()
			return false
		case ev.Rune() == 'l':
			h.held.Store(true)
			h.ctl.SimulateContextLoss()
		case ev.Rune() == 'r':
			h.held.Store(false)
		case ev.Rune() == 'j':
			h.input.ScrollBy(h.scrollStep, h.scrollLength)
		case ev.Rune() == 'k':
			h.input.ScrollBy(-h.scrollStep, h.scrollLength)
		}

	case *tcell.EventMouse:
		x, y := ev.Position()
		h.input.MovePointer(float64(x)+0.5, float64(y)+0.5)
		h.input.SetHovered(true)
		buttons := ev.Buttons()
		if buttons&tcell.WheelDown != 0 {
			h.input.ScrollBy(h.scrollStep, h.scrollLength)
		}
		if buttons&tcell.WheelUp != 0 {
			h.input.ScrollBy(-h.scrollStep, h.scrollLength)
		}

	case *tcell.EventFocus:
		h.input.SetVisible(ev.Focused)
		if !ev.Focused {
			h.input.SetHovered(false)
		}

	case *tcell.EventResize:
		h.syncViewport()
		h.screen.Sync()
	}
	return true
}

// drawHUD writes the status row and presents the screen. It runs for every frame,
// including frames skipped while the device is lost.
func (h *host) drawHUD(f hero.Frame) {
	cols, rows := h.screen.Size()
	if rows <= 0 {
		return
	}
	state := "live"
	switch {
	case h.held.Load() && !f.Drawable:
		state = "LOST (r restores)"
	case !f.Drawable:
		state = "restoring"
	}
	snap := h.input.Snapshot()
	text := fmt.Sprintf(" %s  scroll %3.0f%%  pointer %+.2f,%+.2f  shadow %.2f  reloads %d  device %s  [jk] scroll [l]ose [q]uit",
		f.Phase, f.Progress*100, snap.Pointer.X, snap.Pointer.Y, f.Shadow.Strength, h.ctl.Remounts(), state)

	style := tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorSilver)
	runes := []rune(text)
	for x := range cols {
		r := ' '
		if x < len(runes) {
			r = runes[x]
		}
		h.screen.SetContent(x, rows-1, r, nil, style)
	}
	h.screen.Show()
}
