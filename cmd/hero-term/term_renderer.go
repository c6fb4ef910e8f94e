package main

import (
	"errors"
	"fmt"
	"image/color"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-hero/engine/hero"
	"github.com/Carmen-Shannon/oxy-hero/engine/preview"
	"github.com/Carmen-Shannon/oxy-hero/engine/renderer"
	"github.com/gdamore/tcell/v2"
)

// halfBlock paints the upper half of a cell in the foreground colour and the lower half
// in the background colour, giving two pixel rows per terminal row.
const halfBlock = '▀'

// errTermHeld is returned while the simulated device is held lost.
var errTermHeld = errors.New("terminal device held")

// boundsColor marks the corners of the object's projected bounding box.
var boundsColor = tcell.NewRGBColor(255, 196, 0)

// termRenderer draws frames into a tcell screen. The bottom row is left for the HUD.
type termRenderer struct {
	screen tcell.Screen
	raster preview.Rasterizer
	// held simulates a lost device: draws and recovery fail while it is set.
	held     *atomic.Bool
	released bool
}

var _ renderer.Renderer = &termRenderer{}

func newTermRenderer(screen tcell.Screen, held *atomic.Bool, supersample int) *termRenderer {
	return &termRenderer{
		screen: screen,
		raster: preview.NewRasterizer(preview.WithSupersample(supersample)),
		held:   held,
	}
}

// Resize is a no-op; the screen size is read on every draw.
func (r *termRenderer) Resize(int, int) {}

func (r *termRenderer) Draw(frame hero.Frame) error {
	if r.released || !frame.Drawable || frame.Empty() {
		return nil
	}
	if r.held.Load() {
		return fmt.Errorf("%w: terminal device held", renderer.ErrSurfaceLost)
	}

	cols, rows := r.screen.Size()
	rows--
	if cols <= 0 || rows <= 0 {
		return nil
	}
	r.raster.SetSize(cols, rows*2)
	img, err := r.raster.Render(frame)
	if err != nil {
		return err
	}

	for y := range rows {
		for x := range cols {
			top := img.RGBAAt(x, 2*y)
			bottom := img.RGBAAt(x, 2*y+1)
			style := tcell.StyleDefault.Foreground(cellColor(top)).Background(cellColor(bottom))
			r.screen.SetContent(x, y, halfBlock, nil, style)
		}
	}

	if b, ok := preview.ProjectBounds(frame, cols, rows*2); ok {
		x0, y0 := b.Min.X, b.Min.Y/2
		x1, y1 := b.Max.X-1, (b.Max.Y-1)/2
		corners := []struct {
			x, y int
			r    rune
		}{{x0, y0, '┌'}, {x1, y0, '┐'}, {x0, y1, '└'}, {x1, y1, '┘'}}
		for _, c := range corners {
			if c.x < 0 || c.y < 0 || c.x >= cols || c.y >= rows {
				continue
			}
			bg := cellColor(img.RGBAAt(c.x, 2*c.y+1))
			r.screen.SetContent(c.x, c.y, c.r, nil, tcell.StyleDefault.Foreground(boundsColor).Background(bg))
		}
	}
	return nil
}

func (r *termRenderer) Recover() error {
	if r.released {
		return fmt.Errorf("terminal renderer released")
	}
	if r.held.Load() {
		return errTermHeld
	}
	return nil
}

func (r *termRenderer) Release() {
	r.released = true
}

func cellColor(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
