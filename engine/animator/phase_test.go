package animator

import (
	"errors"
	"testing"
)

// advanceTo walks the entrance path up to and including target.
func advanceTo(t *testing.T, m *Machine, target Phase) {
	t.Helper()
	for p := m.Phase() + 1; p <= target && p <= Idle; p++ {
		if err := m.Transition(p); err != nil {
			t.Fatalf("Transition(%s): %v", p, err)
		}
	}
}

func TestMachineEntrancePath(t *testing.T) {
	m := NewMachine()
	advanceTo(t, m, Idle)
	want := []Phase{Preparing, EnteringDrop, EnteringScale, EnteringRotate, Settling, Idle}
	got := m.History()
	if len(got) != len(want) {
		t.Fatalf("history = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("history = %v, want %v", got, want)
		}
	}
	if !m.EntranceComplete() {
		t.Fatal("entrance not complete after reaching Idle")
	}
}

func TestMachineRejectsIllegalEdges(t *testing.T) {
	tests := []struct {
		name string
		from Phase
		to   Phase
	}{
		{"skip entrance step", Preparing, EnteringScale},
		{"flip during entrance", EnteringRotate, Flipping},
		{"idle before settling", EnteringDrop, Idle},
		{"re-enter entrance", Idle, Settling},
		{"back to preparing", Flipping, Preparing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine()
			advanceTo(t, m, tt.from)
			if tt.from == Flipping {
				advanceTo(t, m, Idle)
				if err := m.Transition(Flipping); err != nil {
					t.Fatal(err)
				}
			}
			before := m.Phase()
			if err := m.Transition(tt.to); !errors.Is(err, ErrTransition) {
				t.Fatalf("Transition(%s -> %s) = %v, want ErrTransition", before, tt.to, err)
			}
			if m.Phase() != before {
				t.Fatalf("rejected transition changed phase to %s", m.Phase())
			}
		})
	}
}

func TestMachineScrollPhasesInterchange(t *testing.T) {
	m := NewMachine()
	advanceTo(t, m, Idle)
	var changes int
	m.OnChange(func(from, to Phase) { changes++ })
	for _, p := range []Phase{Flipping, Returning, Idle, Returning, Flipping, Flipping, Idle} {
		if err := m.Transition(p); err != nil {
			t.Fatalf("Transition(%s): %v", p, err)
		}
	}
	if changes != 6 {
		t.Fatalf("OnChange fired %d times, want 6 (same-phase is a no-op)", changes)
	}
}

func TestPhaseString(t *testing.T) {
	if Returning.String() != "Returning" || Phase(42).String() != "Phase(42)" {
		t.Fatalf("unexpected names %q %q", Returning, Phase(42))
	}
}
