package tween

import (
	"math"
	"testing"
)

type box struct{ v []float32 }

func (b *box) acc() Accessor {
	return Accessor{
		Get: func() []float32 { return append([]float32(nil), b.v...) },
		Set: func(v []float32) { b.v = append(b.v[:0], v...) },
	}
}

func near(a, b float32) bool { return math.Abs(float64(a-b)) < 1e-5 }

func TestEaseEndpoints(t *testing.T) {
	eases := map[string]Ease{
		"linear":      Linear,
		"power2InOut": Power2InOut,
		"power3Out":   Power3Out,
		"backOut":     BackOut(1.2),
	}
	for name, e := range eases {
		if got := e(0, 2, 3, 1.5); !near(got, 2) {
			t.Errorf("%s at start = %v", name, got)
		}
		if got := e(1.5, 2, 3, 1.5); !near(got, 5) {
			t.Errorf("%s at end = %v", name, got)
		}
	}
	if got := Power2InOut(0.5, 0, 1, 1); !near(got, 0.5) {
		t.Errorf("power2InOut midpoint = %v", got)
	}
}

func TestBackOutOvershoots(t *testing.T) {
	e := BackOut(1.2)
	var peak float32
	for i := 0; i <= 100; i++ {
		peak = max(peak, e(float32(i)/100, 0, 1, 1))
	}
	if peak <= 1 {
		t.Fatalf("backOut never overshot: peak %v", peak)
	}
}

func TestToReachesTargetAndFiresHooks(t *testing.T) {
	m := NewManager()
	b := &box{v: []float32{0, 10}}
	key := Key{Object: 1, Property: PropertyPosition}
	completed := 0
	tw := m.To(key, b.acc(), []float32{1, 20}, 0.5, Linear).OnComplete(func() { completed++ })

	m.Advance(0.25)
	if !near(b.v[0], 0.5) || !near(b.v[1], 15) {
		t.Fatalf("halfway value = %v", b.v)
	}
	if m.InFlight(key) != tw {
		t.Fatal("running tween does not hold its claim")
	}

	m.Advance(0.5)
	if b.v[0] != 1 || b.v[1] != 20 {
		t.Fatalf("final value = %v", b.v)
	}
	if completed != 1 || tw.Active() || !tw.Finished() {
		t.Fatalf("completion state: completed=%d active=%v", completed, tw.Active())
	}
	if m.InFlight(key) != nil || m.Active() != 0 {
		t.Fatal("finished tween left a claim or runner behind")
	}
}

func TestNewTweenCancelsPriorOnSameKey(t *testing.T) {
	m := NewManager()
	b := &box{v: []float32{0}}
	key := Key{Object: 1, Property: PropertyRotation}

	first := m.To(key, b.acc(), []float32{10}, 1, Linear)
	m.Advance(0.5)
	second := m.To(key, b.acc(), []float32{0}, 1, Linear)

	if first.Active() {
		t.Fatal("prior tween still active after a new tween claimed its key")
	}
	if m.InFlight(key) != second {
		t.Fatal("new tween does not hold the claim")
	}
	before := b.v[0]
	m.Advance(0.5)
	if b.v[0] >= before {
		t.Fatalf("value kept moving toward the cancelled target: %v -> %v", before, b.v[0])
	}
}

func TestDifferentKeysRunConcurrently(t *testing.T) {
	m := NewManager()
	a, b := &box{v: []float32{0}}, &box{v: []float32{0}}
	ta := m.To(Key{1, PropertyPosition}, a.acc(), []float32{1}, 1, Linear)
	tb := m.To(Key{1, PropertyScale}, b.acc(), []float32{1}, 1, Linear)
	m.Advance(0.5)
	if !ta.Active() || !tb.Active() {
		t.Fatal("tweens on different properties interfered")
	}
}

func TestTimelineOffsetsAndOrder(t *testing.T) {
	m := NewManager()
	pos, scale := &box{v: []float32{5}}, &box{v: []float32{0.3}}
	var events []string
	record := func(s string) func() { return func() { events = append(events, s) } }

	tl := m.NewTimeline(0.1).OnStart(record("start")).OnComplete(record("complete"))
	tl.Add(0, Key{1, PropertyPosition}, pos.acc(), []float32{0}, 1.0, Power3Out).OnStart(record("drop"))
	tl.Add(0, Key{1, PropertyScale}, scale.acc(), []float32{1.05}, 0.5, BackOut(1.2)).OnStart(record("scale"))
	tl.Add(0.8, Key{1, PropertyScale}, scale.acc(), []float32{1}, 0.3, Power2InOut).OnStart(record("settle"))

	if got := tl.Duration(); math.Abs(got-1.1) > 1e-12 {
		t.Fatalf("Duration = %v", got)
	}

	m.Advance(0.05)
	if len(events) != 0 || pos.v[0] != 5 {
		t.Fatalf("timeline moved during its delay: %v %v", events, pos.v)
	}

	for i := 0; i < 200 && tl.Active(); i++ {
		m.Advance(1.0 / 60)
	}

	want := []string{"start", "drop", "scale", "settle", "complete"}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("events = %v, want %v", events, want)
		}
	}
	if pos.v[0] != 0 || scale.v[0] != 1 {
		t.Fatalf("final values pos=%v scale=%v", pos.v, scale.v)
	}
}

func TestTimelineKillStopsMutationAndCompletion(t *testing.T) {
	m := NewManager()
	b := &box{v: []float32{0}}
	completed := false
	tl := m.NewTimeline(0).OnComplete(func() { completed = true })
	tl.Add(0, Key{1, PropertyPosition}, b.acc(), []float32{1}, 1, Linear)

	m.Advance(0.25)
	tl.Kill()
	frozen := b.v[0]
	m.Advance(2)

	if b.v[0] != frozen {
		t.Fatalf("killed timeline kept writing: %v -> %v", frozen, b.v[0])
	}
	if completed {
		t.Fatal("killed timeline ran OnComplete")
	}
	if m.InFlight(Key{1, PropertyPosition}) != nil {
		t.Fatal("killed entry kept its claim")
	}
}

func TestKillAll(t *testing.T) {
	m := NewManager()
	b := &box{v: []float32{0}}
	m.To(Key{1, PropertyOpacity}, b.acc(), []float32{1}, 1, Linear)
	tl := m.NewTimeline(0)
	tl.Add(0, Key{1, PropertyScale}, b.acc(), []float32{1}, 1, Linear)

	m.KillAll()
	m.Advance(0.5)
	if b.v[0] != 0 {
		t.Fatalf("value changed after KillAll: %v", b.v)
	}
	if m.Active() != 0 {
		t.Fatalf("Active() = %d after KillAll", m.Active())
	}
}

func TestZeroDurationCompletesImmediately(t *testing.T) {
	m := NewManager()
	b := &box{v: []float32{3}}
	tw := m.To(Key{2, PropertyRotation}, b.acc(), []float32{7}, 0, Power2InOut)
	m.Advance(1.0 / 60)
	if b.v[0] != 7 || !tw.Finished() {
		t.Fatalf("zero-length tween: v=%v finished=%v", b.v, tw.Finished())
	}
}
