package animator

import (
	"math"

	"github.com/Carmen-Shannon/oxy-hero/common"
	"github.com/Carmen-Shannon/oxy-hero/engine/game_object"
	"github.com/Carmen-Shannon/oxy-hero/engine/tween"
	"github.com/go-gl/mathgl/mgl32"
)

// Entrance poses and timings. Offsets and durations are nominal seconds for an
// entrance of NominalEntranceLength and are scaled to the configured length.
var (
	StartPosition = mgl32.Vec3{0, 15, -8}
	StartRotation = mgl32.Vec3{-0.5, math.Pi * 1.3, 0.3}
	RestPosition  = mgl32.Vec3{0, 0, 0}
	RestRotation  = mgl32.Vec3{0, math.Pi, 0}
)

const (
	StartScale     = 0.3
	OvershootScale = 1.05

	dropDuration   = 1.2
	scaleDuration  = 1.0
	rotateDuration = 1.3
	settleAt       = 1.1
	settleDuration = 0.3

	// NominalEntranceLength is the end of the settle step.
	NominalEntranceLength = settleAt + settleDuration

	backOvershoot = 1.2
)

// Entrance is the one-shot sequencer that brings the object from its hidden
// start pose to its resting pose.
type Entrance struct {
	obj     game_object.GameObject
	mgr     *tween.Manager
	machine *Machine

	delay    float64
	duration float64
	onSettle func()

	timeline  *tween.Timeline
	baseline  float32
	started   bool
	cancelled bool
	done      bool
}

// NewEntrance creates an Entrance for obj. Tweens are created on mgr and phases are
// driven through machine.
//
// Parameters:
//   - obj: the hero object
//   - mgr: the tween manager owned by the scene
//   - machine: the phase machine
//   - options: functional options (delay, length, settle hook)
//
// Returns:
//   - *Entrance: the sequencer, not yet started
func NewEntrance(obj game_object.GameObject, mgr *tween.Manager, machine *Machine, options ...EntranceOption) *Entrance {
	e := &Entrance{
		obj:      obj,
		mgr:      mgr,
		machine:  machine,
		duration: NominalEntranceLength,
	}
	for _, opt := range options {
		opt(e)
	}
	return e
}

// Prepare places the object in its start pose, hidden and fully transparent.
// Call it before the first frame is produced.
func (e *Entrance) Prepare() {
	e.obj.SetPosition(StartPosition)
	e.obj.SetRotation(StartRotation)
	e.obj.SetScale(mgl32.Vec3{StartScale, StartScale, StartScale})
	e.obj.SetVisible(false)
	e.obj.SetOpacity(0)
}

// Start builds and schedules the entrance timeline. It runs at most once; later calls
// and calls after Cancel return nil.
//
// Returns:
//   - *tween.Timeline: the owned timeline handle, or nil
func (e *Entrance) Start() *tween.Timeline {
	if e.started || e.cancelled {
		return nil
	}
	e.started = true

	k := e.duration / NominalEntranceLength
	enter := func(p Phase) func() {
		return func() { _ = e.machine.Transition(p) }
	}
	key := e.obj.Key
	acc := e.obj.Accessor
	vec := func(v mgl32.Vec3) []float32 { return []float32{v[0], v[1], v[2]} }
	uniform := func(s float32) []float32 { return []float32{s, s, s} }

	tl := e.mgr.NewTimeline(e.delay)
	tl.OnStart(func() {
		_ = e.machine.Transition(EnteringDrop)
		e.obj.SetVisible(true)
	})
	tl.Add(0, key(tween.PropertyPosition), acc(tween.PropertyPosition),
		vec(RestPosition), dropDuration*k, tween.Power3Out).
		OnStart(enter(EnteringDrop))
	tl.Add(0, key(tween.PropertyScale), acc(tween.PropertyScale),
		uniform(OvershootScale), scaleDuration*k, tween.BackOut(backOvershoot)).
		OnStart(enter(EnteringScale))
	tl.Add(0, key(tween.PropertyRotation), acc(tween.PropertyRotation),
		vec(RestRotation), rotateDuration*k, tween.Power2InOut).
		OnStart(enter(EnteringRotate))
	tl.Add(settleAt*k, key(tween.PropertyScale), acc(tween.PropertyScale),
		uniform(1), settleDuration*k, tween.Power2InOut).
		OnStart(enter(Settling))
	tl.Add(0, key(tween.PropertyOpacity), acc(tween.PropertyOpacity),
		[]float32{1}, NominalEntranceLength*k, tween.Power2InOut)
	tl.OnComplete(e.complete)

	e.timeline = tl
	return tl
}

// complete runs once when the timeline ends: the rotation is released, the float
// baseline recorded, the settle hook run while still Settling, and the phase moved to Idle.
func (e *Entrance) complete() {
	if e.cancelled {
		return
	}
	e.mgr.Kill(e.obj.Key(tween.PropertyRotation))
	e.baseline = e.obj.Position().Y()
	if e.onSettle != nil {
		e.onSettle()
	}
	if err := e.machine.Transition(Idle); err != nil {
		common.Logger().Error("entrance completion", "err", err)
	}
	e.done = true
	common.Logger().Info("entrance complete", "baseline", e.baseline)
}

// Cancel kills the timeline. The settle hook will never run afterwards. Safe to call more than once.
func (e *Entrance) Cancel() {
	if e.cancelled {
		return
	}
	e.cancelled = true
	if e.timeline != nil {
		e.timeline.Kill()
	}
}

// Done reports whether the entrance ran to completion.
func (e *Entrance) Done() bool { return e.done }

// Baseline returns the resting Y recorded at completion.
func (e *Entrance) Baseline() float32 { return e.baseline }

// Length returns the configured entrance length in seconds, excluding the delay.
func (e *Entrance) Length() float64 { return e.duration }
