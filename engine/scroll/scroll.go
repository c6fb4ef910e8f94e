// Package scroll derives a normalized progress value from the scroll position of a bounded region.
package scroll

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-hero/common"
	"github.com/charmbracelet/harmonica"
)

// snapEpsilon is the distance below which the smoothed progress jumps to the raw value.
const snapEpsilon = 1e-4

// Region is the trigger region in host scroll units.
// Progress is 0 when the scroll offset reaches Top and 1 when it reaches Bottom.
type Region struct {
	Top    float64
	Bottom float64
}

// Progress maps a scroll offset into [0, 1] relative to the region.
// A region with no extent reports 0.
//
// Parameters:
//   - offset: the host scroll offset
//
// Returns:
//   - float64: the clamped progress
func (r Region) Progress(offset float64) float64 {
	span := r.Bottom - r.Top
	if span <= 0 {
		return 0
	}
	return common.Clamp01((offset - r.Top) / span)
}

// Signal holds raw and smoothed scroll progress and fans the smoothed value out to subscribers.
// It is driven from the render loop; only subscription management is goroutine-safe.
type Signal struct {
	scrub float64

	raw      float64
	smoothed float64
	velocity float64
	primed   bool

	spring   harmonica.Spring
	springDt float64

	mu     sync.Mutex
	subs   []*Subscription
	nextID uint64
}

// NewSignal creates a Signal.
//
// Parameters:
//   - scrub: smoothing time in seconds; 0 makes the smoothed value follow the raw value exactly
//
// Returns:
//   - *Signal: the signal
func NewSignal(scrub float64) *Signal {
	return &Signal{scrub: scrub}
}

// Raw returns the most recent unsmoothed progress.
func (s *Signal) Raw() float64 { return s.raw }

// Progress returns the current smoothed progress.
func (s *Signal) Progress() float64 { return s.smoothed }

// Advance recomputes raw progress from the offset and moves the smoothed progress toward it.
// Subscribers are notified when the smoothed value changes, and any newly activated
// subscription receives the current value once.
//
// Parameters:
//   - offset: host scroll offset
//   - region: trigger region
//   - dt: seconds since the last call
//
// Returns:
//   - float64: the smoothed progress
func (s *Signal) Advance(offset float64, region Region, dt float64) float64 {
	s.raw = region.Progress(offset)
	prev := s.smoothed

	switch {
	case !s.primed:
		// first sample: no history to smooth from
		s.smoothed = s.raw
		s.primed = true
	case s.scrub <= 0 || dt <= 0:
		if s.scrub <= 0 {
			s.smoothed = s.raw
		}
	default:
		s.step(dt)
	}

	for _, fn := range s.deliveries(s.smoothed != prev) {
		fn(s.smoothed)
	}
	return s.smoothed
}

// step moves the smoothed value with a critically damped spring.
func (s *Signal) step(dt float64) {
	if dt != s.springDt {
		// angular frequency chosen so the spring settles in roughly the scrub time
		s.spring = harmonica.NewSpring(dt, 4/s.scrub, 1.0)
		s.springDt = dt
	}
	s.smoothed, s.velocity = s.spring.Update(s.smoothed, s.velocity, s.raw)
	if math.Abs(s.smoothed-s.raw) < snapEpsilon {
		s.smoothed, s.velocity = s.raw, 0
	}
	if s.smoothed < 0 || s.smoothed > 1 {
		s.smoothed = common.Clamp01(s.smoothed)
		s.velocity = 0
	}
}

// Subscribe registers fn to receive smoothed progress. The subscription starts active
// and fn is called with the current value on the next Advance.
//
// Parameters:
//   - fn: the callback, invoked from Advance
//
// Returns:
//   - *Subscription: handle used to cancel or pause delivery
func (s *Signal) Subscribe(fn func(progress float64)) *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	sub := &Subscription{id: s.nextID, fn: fn, signal: s, pending: true}
	s.subs = append(s.subs, sub)
	return sub
}

// Subscribers returns the number of live subscriptions.
func (s *Signal) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// deliveries collects the callbacks owed a value this Advance and clears their pending flags.
func (s *Signal) deliveries(changed bool) []func(float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]func(float64), 0, len(s.subs))
	for _, sub := range s.subs {
		if sub.paused || !(changed || sub.pending) {
			continue
		}
		sub.pending = false
		out = append(out, sub.fn)
	}
	return out
}

func (s *Signal) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

// Subscription is a handle on a Signal subscriber.
type Subscription struct {
	id      uint64
	fn      func(float64)
	signal  *Signal
	pending bool
	paused  bool
	done    bool
}

// Cancel removes the subscription. Safe to call more than once.
func (sub *Subscription) Cancel() {
	if sub == nil {
		return
	}
	sub.signal.mu.Lock()
	done := sub.done
	sub.done = true
	sub.signal.mu.Unlock()
	if !done {
		sub.signal.remove(sub.id)
	}
}

// Pause stops delivery without removing the subscription.
func (sub *Subscription) Pause() {
	if sub == nil {
		return
	}
	sub.signal.mu.Lock()
	sub.paused = true
	sub.signal.mu.Unlock()
}

// Resume restarts delivery; the current value is delivered on the next Advance.
func (sub *Subscription) Resume() {
	if sub == nil {
		return
	}
	sub.signal.mu.Lock()
	if !sub.done {
		sub.paused = false
		sub.pending = true
	}
	sub.signal.mu.Unlock()
}

// Active reports whether the subscription is live and not paused.
func (sub *Subscription) Active() bool {
	if sub == nil {
		return false
	}
	sub.signal.mu.Lock()
	defer sub.signal.mu.Unlock()
	return !sub.done && !sub.paused
}
