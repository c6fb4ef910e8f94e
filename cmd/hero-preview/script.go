package main

import (
	"math"

	"github.com/Carmen-Shannon/oxy-hero/engine/input"
	"github.com/Carmen-Shannon/oxy-hero/engine/scroll"
)

// scriptRegion is the scroll extent the scripted offsets are expressed in.
const scriptRegion = 1000

// script is the scripted host input for an offline render: the pointer traces a
// figure eight, hovering starts a quarter of the way in and the page scrolls linearly
// from the top to scrollTo.
type script struct {
	frames   int
	dt       float64
	scrollTo float64 // final scroll progress in [0, 1]
	orbit    float64 // seconds per pointer loop
}

// apply writes the input for frame i to st.
func (s script) apply(st *input.State, i int) {
	if i == 0 {
		st.SetRegion(scroll.Region{Top: 0, Bottom: scriptRegion})
	}
	t := float64(i) * s.dt
	phase := 2 * math.Pi * t / math.Max(s.orbit, 1e-3)
	st.SetPointer(input.PointerVector{
		X: float32(0.6 * math.Sin(phase)),
		Y: float32(0.4 * math.Sin(2*phase)),
	})
	st.SetHovered(i >= s.frames/4)

	progress := 0.0
	if s.frames > 1 {
		progress = s.scrollTo * float64(i) / float64(s.frames-1)
	}
	st.SetScroll(progress * scriptRegion)
}
