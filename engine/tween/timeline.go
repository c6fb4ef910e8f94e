package tween

type timelineEntry struct {
	at    float64
	tween *Tween
}

// Timeline plays tweens at fixed offsets from its start. It only moves forward.
type Timeline struct {
	mgr     *Manager
	delay   float64
	time    float64
	entries []timelineEntry

	started  bool
	finished bool
	killed   bool

	onStart    func()
	onComplete func()
}

var _ Handle = &Timeline{}

// Add schedules a tween at the given offset (seconds after the timeline starts).
// Entries sharing an offset start in the order they were added.
//
// Parameters:
//   - at: offset from the timeline start in seconds
//   - key: the property the tween claims when it starts
//   - acc: accessor for the property
//   - to: target value
//   - duration: tween length in seconds
//   - ease: easing function (nil means Linear)
//
// Returns:
//   - *Tween: the scheduled tween, for attaching hooks
func (tl *Timeline) Add(at float64, key Key, acc Accessor, to []float32, duration float64, ease Ease) *Tween {
	tw := newTween(tl.mgr, key, acc, to, duration, ease)
	tl.entries = append(tl.entries, timelineEntry{at: at, tween: tw})
	return tw
}

// OnStart registers a hook run once when the playhead passes the delay.
func (tl *Timeline) OnStart(fn func()) *Timeline {
	tl.onStart = fn
	return tl
}

// OnComplete registers a hook run once when every entry has ended.
func (tl *Timeline) OnComplete(fn func()) *Timeline {
	tl.onComplete = fn
	return tl
}

// Duration returns the time from start to the end of the last entry, excluding the delay.
func (tl *Timeline) Duration() float64 {
	var d float64
	for _, e := range tl.entries {
		if end := e.at + e.tween.duration; end > d {
			d = end
		}
	}
	return d
}

// Active reports whether the timeline is scheduled or running.
func (tl *Timeline) Active() bool { return !tl.finished && !tl.killed }

// Finished reports whether the timeline ran to completion.
func (tl *Timeline) Finished() bool { return tl.finished }

// Kill stops the timeline and every entry. OnComplete will not run.
func (tl *Timeline) Kill() {
	if tl.finished || tl.killed {
		return
	}
	tl.killed = true
	for _, e := range tl.entries {
		e.tween.Kill()
	}
}

func (tl *Timeline) advance(dt float64) bool {
	if tl.killed || tl.finished {
		return true
	}
	tl.time += dt
	if tl.time < tl.delay {
		return false
	}
	if !tl.started {
		tl.started = true
		if tl.onStart != nil {
			tl.onStart()
		}
	}

	local := tl.time - tl.delay
	done := true
	for _, e := range tl.entries {
		if tl.killed {
			return true
		}
		if local < e.at {
			done = false
			continue
		}
		if !e.tween.seek(local - e.at) {
			done = false
		}
	}
	if tl.killed {
		return true
	}
	if !done {
		return false
	}

	tl.finished = true
	if tl.onComplete != nil {
		tl.onComplete()
	}
	return true
}
