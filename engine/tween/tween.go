// Package tween drives timed interpolations of object properties.
//
// A Manager owns every tween and timeline created through it and enforces a single
// writer per property: claiming a Key kills whichever tween held it before.
// Nothing in this package is safe for concurrent use; drive it from the render loop.
package tween

import "github.com/tanema/gween"

// Property names an animatable transform property.
type Property uint8

const (
	PropertyPosition Property = iota
	PropertyRotation
	PropertyScale
	PropertyOpacity
)

var propertyNames = [...]string{"position", "rotation", "scale", "opacity"}

func (p Property) String() string {
	if int(p) < len(propertyNames) {
		return propertyNames[p]
	}
	return "unknown"
}

// Key identifies one property of one object.
type Key struct {
	Object   uint64
	Property Property
}

// Accessor reads and writes the components a tween animates.
type Accessor struct {
	Get func() []float32
	Set func([]float32)
}

// Handle is a cancellable animation.
type Handle interface {
	// Kill stops the animation where it is. Completion hooks do not run. Safe to call more than once.
	Kill()

	// Active reports whether the animation is scheduled or running.
	Active() bool
}

// runner is a Handle the Manager can advance.
type runner interface {
	Handle
	advance(dt float64) (done bool)
}

// Tween interpolates one Key from its value at start time to a target.
type Tween struct {
	mgr      *Manager
	key      Key
	acc      Accessor
	from     []float32
	to       []float32
	lanes    []*gween.Tween
	duration float64
	ease     Ease

	elapsed  float64
	started  bool
	finished bool
	killed   bool

	onStart    func()
	onComplete func()
}

var _ Handle = &Tween{}

func newTween(m *Manager, key Key, acc Accessor, to []float32, duration float64, ease Ease) *Tween {
	if ease == nil {
		ease = Linear
	}
	if duration < 0 {
		duration = 0
	}
	return &Tween{
		mgr:      m,
		key:      key,
		acc:      acc,
		to:       append([]float32(nil), to...),
		duration: duration,
		ease:     ease,
	}
}

// OnStart registers a hook run once when the tween starts writing.
func (t *Tween) OnStart(fn func()) *Tween {
	t.onStart = fn
	return t
}

// OnComplete registers a hook run once when the tween reaches its target.
func (t *Tween) OnComplete(fn func()) *Tween {
	t.onComplete = fn
	return t
}

// Key returns the property the tween writes.
func (t *Tween) Key() Key { return t.key }

// Target returns a copy of the target value.
func (t *Tween) Target() []float32 { return append([]float32(nil), t.to...) }

// Duration returns the tween length in seconds.
func (t *Tween) Duration() float64 { return t.duration }

// Active reports whether the tween is scheduled or running.
func (t *Tween) Active() bool { return !t.finished && !t.killed }

// Finished reports whether the tween reached its target.
func (t *Tween) Finished() bool { return t.finished }

// Kill stops the tween and releases its claim.
func (t *Tween) Kill() {
	if t.finished || t.killed {
		return
	}
	t.killed = true
	if t.started {
		t.mgr.release(t)
	}
}

// start claims the key, cancelling any prior holder, and captures the start value.
func (t *Tween) start() {
	if t.started || t.killed {
		return
	}
	t.started = true
	t.mgr.claim(t)
	t.from = append([]float32(nil), t.acc.Get()...)
	t.lanes = make([]*gween.Tween, len(t.to))
	for i := range t.to {
		var from float32
		if i < len(t.from) {
			from = t.from[i]
		}
		t.lanes[i] = gween.New(from, t.to[i], float32(t.duration), t.ease)
	}
	if t.onStart != nil {
		t.onStart()
	}
}

func (t *Tween) advance(dt float64) bool {
	return t.seek(t.elapsed + dt)
}

// seek moves the tween to an absolute local time and writes the eased value.
func (t *Tween) seek(local float64) bool {
	if t.killed || t.finished {
		return true
	}
	if !t.started {
		t.start()
		if t.killed {
			return true
		}
	}
	t.elapsed = local
	if local < 0 {
		local = 0
	}
	done := t.duration <= 0 || local >= t.duration

	out := make([]float32, len(t.to))
	for i, lane := range t.lanes {
		if done {
			out[i] = t.to[i]
			continue
		}
		out[i], _ = lane.Set(float32(local))
	}
	t.acc.Set(out)

	if !done {
		return false
	}
	t.finished = true
	t.mgr.release(t)
	if t.onComplete != nil {
		t.onComplete()
	}
	return true
}
