package input

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-hero/engine/scroll"
)

// Source provides a consistent view of the event-driven state.
// The render loop reads it exactly once per tick.
type Source interface {
	// Snapshot returns a copy of the current state.
	Snapshot() Snapshot
}

// Snapshot is an immutable copy of everything event listeners have written.
type Snapshot struct {
	Pointer  PointerVector
	Hovered  bool
	Visible  bool
	Scroll   float64
	Region   scroll.Region
	Width    float64
	Height   float64
	Revision uint64
}

// State is the lightweight shared state written by host event listeners.
// Writers may run on any goroutine; the last write wins.
type State struct {
	mu   sync.Mutex
	snap Snapshot
}

var _ Source = &State{}

// NewState returns a State that starts visible with the pointer centred.
func NewState() *State {
	return &State{snap: Snapshot{Visible: true}}
}

// Snapshot returns a copy of the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// SetViewport records the viewport size used to normalize pointer positions.
//
// Parameters:
//   - width, height: viewport size in pixels
func (s *State) SetViewport(width, height float64) {
	s.update(func(sn *Snapshot) {
		sn.Width, sn.Height = width, height
	})
}

// MovePointer normalizes a pixel position against the current viewport and stores it.
//
// Parameters:
//   - px, py: pointer position in pixels from the top-left of the viewport
func (s *State) MovePointer(px, py float64) {
	s.update(func(sn *Snapshot) {
		sn.Pointer = NormalizePointer(px, py, sn.Width, sn.Height)
	})
}

// SetPointer stores an already normalized pointer vector.
func (s *State) SetPointer(p PointerVector) {
	s.update(func(sn *Snapshot) { sn.Pointer = p })
}

// SetHovered records whether the pointer is over the scene container.
func (s *State) SetHovered(hovered bool) {
	s.update(func(sn *Snapshot) { sn.Hovered = hovered })
}

// SetVisible records whether the host surface is visible (not hidden or minimized).
func (s *State) SetVisible(visible bool) {
	s.update(func(sn *Snapshot) { sn.Visible = visible })
}

// SetScroll stores the host scroll offset in the same units as the region.
func (s *State) SetScroll(offset float64) {
	s.update(func(sn *Snapshot) { sn.Scroll = offset })
}

// ScrollBy adds delta to the scroll offset, clamped to [0, max].
//
// Parameters:
//   - delta: scroll change in host units
//   - max: largest reachable offset; values <= 0 disable the upper clamp
//
// Returns:
//   - float64: the new offset
func (s *State) ScrollBy(delta, max float64) float64 {
	var out float64
	s.update(func(sn *Snapshot) {
		v := sn.Scroll + delta
		if v < 0 {
			v = 0
		}
		if max > 0 && v > max {
			v = max
		}
		sn.Scroll = v
		out = v
	})
	return out
}

// SetRegion stores the trigger region supplied by the host layout.
func (s *State) SetRegion(r scroll.Region) {
	s.update(func(sn *Snapshot) { sn.Region = r })
}

func (s *State) update(fn func(*Snapshot)) {
	s.mu.Lock()
	fn(&s.snap)
	s.snap.Revision++
	s.mu.Unlock()
}
