package tween

// Manager owns tweens and timelines and arbitrates property claims.
// Each scene keeps its own Manager; there is no package-level registry.
type Manager struct {
	claims  map[Key]*Tween
	running []runner
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{claims: make(map[Key]*Tween)}
}

// To starts a standalone tween immediately. Any in-flight tween holding key is killed first.
//
// Parameters:
//   - key: the property to animate
//   - acc: accessor for the property
//   - to: target value
//   - duration: length in seconds
//   - ease: easing function (nil means Linear)
//
// Returns:
//   - *Tween: the running tween
func (m *Manager) To(key Key, acc Accessor, to []float32, duration float64, ease Ease) *Tween {
	tw := newTween(m, key, acc, to, duration, ease)
	tw.start()
	m.running = append(m.running, tw)
	return tw
}

// NewTimeline creates a timeline that starts playing on the next Advance.
//
// Parameters:
//   - delay: seconds before the first entry may start
//
// Returns:
//   - *Timeline: the timeline, ready for Add calls
func (m *Manager) NewTimeline(delay float64) *Timeline {
	tl := &Timeline{mgr: m, delay: delay}
	m.running = append(m.running, tl)
	return tl
}

// Advance moves every running animation forward by dt seconds.
// Animations created by hooks during this call first advance on the next call.
func (m *Manager) Advance(dt float64) {
	current := m.running
	m.running = nil
	kept := current[:0:0]
	for _, r := range current {
		if !r.advance(dt) {
			kept = append(kept, r)
		}
	}
	m.running = append(kept, m.running...)
}

// InFlight returns the tween currently claiming key, or nil.
func (m *Manager) InFlight(key Key) *Tween {
	return m.claims[key]
}

// Kill stops the tween claiming key, if any.
func (m *Manager) Kill(key Key) {
	if tw := m.claims[key]; tw != nil {
		tw.Kill()
	}
}

// KillAll stops every animation owned by the Manager.
func (m *Manager) KillAll() {
	for _, r := range m.running {
		r.Kill()
	}
	for _, tw := range m.claims {
		tw.Kill()
	}
	m.running = nil
	m.claims = make(map[Key]*Tween)
}

// Active returns the number of scheduled or running animations.
func (m *Manager) Active() int {
	n := 0
	for _, r := range m.running {
		if r.Active() {
			n++
		}
	}
	return n
}

func (m *Manager) claim(tw *Tween) {
	if prev := m.claims[tw.key]; prev != nil && prev != tw {
		prev.Kill()
	}
	m.claims[tw.key] = tw
}

func (m *Manager) release(tw *Tween) {
	if m.claims[tw.key] == tw {
		delete(m.claims, tw.key)
	}
}
