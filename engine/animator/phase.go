// Package animator sequences the hero object's choreography: the one-shot entrance,
// the scroll-linked orientation phases and the per-tick pointer reactions.
package animator

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-hero/common"
)

// ErrTransition is returned for a phase change that the state machine does not allow.
var ErrTransition = errors.New("animator: illegal phase transition")

// Phase is the hero object's animation phase.
type Phase uint8

const (
	Preparing Phase = iota
	EnteringDrop
	EnteringScale
	EnteringRotate
	Settling
	Idle
	Flipping
	Returning
)

var phaseNames = [...]string{
	"Preparing", "EnteringDrop", "EnteringScale", "EnteringRotate",
	"Settling", "Idle", "Flipping", "Returning",
}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("Phase(%d)", p)
}

// Entrance reports whether p belongs to the one-shot entrance path.
func (p Phase) Entrance() bool {
	return p <= Settling
}

// Scrolling reports whether p is one of the post-entrance phases driven by scroll.
func (p Phase) Scrolling() bool {
	return p == Idle || p == Flipping || p == Returning
}

// allowed reports whether from -> to is a legal edge.
func allowed(from, to Phase) bool {
	if from.Entrance() {
		return to == from+1
	}
	return from.Scrolling() && to.Scrolling()
}

// Machine holds the current Phase. Every phase change goes through Transition.
// It is owned by the render loop and is not safe for concurrent use.
type Machine struct {
	phase    Phase
	history  []Phase
	complete bool
	onChange func(from, to Phase)
}

// NewMachine returns a Machine in Preparing.
func NewMachine() *Machine {
	return &Machine{phase: Preparing, history: []Phase{Preparing}}
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	return m.phase
}

// EntranceComplete reports whether Idle has ever been reached.
func (m *Machine) EntranceComplete() bool {
	return m.complete
}

// History returns every phase entered so far, in order, starting with Preparing.
func (m *Machine) History() []Phase {
	return append([]Phase(nil), m.history...)
}

// OnChange registers a hook run after every successful phase change.
func (m *Machine) OnChange(fn func(from, to Phase)) {
	m.onChange = fn
}

// Transition moves to the given phase. Transitioning to the current phase is a no-op.
// Illegal edges leave the phase unchanged, are logged, and return an error wrapping ErrTransition.
//
// Parameters:
//   - to: the requested phase
//
// Returns:
//   - error: nil on success or no-op
func (m *Machine) Transition(to Phase) error {
	from := m.phase
	if from == to {
		return nil
	}
	if !allowed(from, to) {
		err := fmt.Errorf("%w: %s -> %s", ErrTransition, from, to)
		common.Logger().Error("phase transition rejected", "from", from.String(), "to", to.String())
		return err
	}
	m.phase = to
	m.history = append(m.history, to)
	if to == Idle {
		m.complete = true
	}
	common.Logger().Debug("phase", "from", from.String(), "to", to.String())
	if m.onChange != nil {
		m.onChange(from, to)
	}
	return nil
}
