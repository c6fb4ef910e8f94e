package animator

import (
	"math"

	"github.com/Carmen-Shannon/oxy-hero/common"
	"github.com/Carmen-Shannon/oxy-hero/engine/game_object"
	"github.com/Carmen-Shannon/oxy-hero/engine/scroll"
	"github.com/Carmen-Shannon/oxy-hero/engine/tween"
)

// Commanded yaw targets.
const (
	FrontFacing float32 = 0
	BackFacing  float32 = math.Pi
)

const yawEpsilon = 1e-4

// Thresholds are the scroll-progress boundaries of the orientation phases.
type Thresholds struct {
	FlipStart  float64
	FlipEnd    float64
	FlipReturn float64
}

// Classify maps scroll progress to a post-entrance phase:
// [FlipStart, FlipEnd] is Flipping, (FlipEnd, FlipReturn] is Returning, anything else is Idle.
//
// Parameters:
//   - progress: scroll progress in [0, 1]
//
// Returns:
//   - Phase: Idle, Flipping or Returning
func (t Thresholds) Classify(progress float64) Phase {
	switch {
	case progress >= t.FlipStart && progress <= t.FlipEnd:
		return Flipping
	case progress > t.FlipEnd && progress <= t.FlipReturn:
		return Returning
	default:
		return Idle
	}
}

// Orientation maps scroll progress onto the object's yaw once the entrance has settled.
type Orientation struct {
	obj     game_object.GameObject
	mgr     *tween.Manager
	machine *Machine
	signal  *scroll.Signal

	thresholds    Thresholds
	duration      float64
	rotationSpeed float64

	sub          *scroll.Subscription
	tw           *tween.Tween
	commanded    float32
	hasCommand   bool
	installed    bool
	installPhase Phase
	suspended    bool
	torndown     bool
}

// NewOrientation creates an Orientation controller. It does nothing until Install.
//
// Parameters:
//   - obj: the hero object
//   - mgr: the tween manager owned by the scene
//   - machine: the phase machine
//   - signal: the scroll progress signal to bind to
//   - options: functional options (thresholds, tween duration, idle drift)
//
// Returns:
//   - *Orientation: the controller
func NewOrientation(obj game_object.GameObject, mgr *tween.Manager, machine *Machine, signal *scroll.Signal, options ...OrientationOption) *Orientation {
	o := &Orientation{
		obj:        obj,
		mgr:        mgr,
		machine:    machine,
		signal:     signal,
		thresholds: Thresholds{FlipStart: 0.2, FlipEnd: 0.3, FlipReturn: 0.4},
		duration:   0.1,
	}
	for _, opt := range options {
		opt(o)
	}
	return o
}

// Install creates the scroll binding. It succeeds once, only while the phase is
// Settling or Idle, and never after Teardown; every other call is logged and ignored.
//
// Returns:
//   - bool: true if this call created the binding
func (o *Orientation) Install() bool {
	phase := o.machine.Phase()
	switch {
	case o.torndown:
		common.Logger().Error("orientation install after teardown")
		return false
	case o.installed:
		common.Logger().Error("orientation already installed")
		return false
	case phase != Settling && phase != Idle:
		common.Logger().Error("orientation install before entrance settled", "phase", phase.String())
		return false
	}
	o.installed = true
	o.installPhase = phase
	o.sub = o.signal.Subscribe(o.apply)
	if o.suspended {
		o.sub.Pause()
	}
	common.Logger().Debug("orientation installed", "phase", phase.String())
	return true
}

// Installed reports whether the binding has been created.
func (o *Orientation) Installed() bool { return o.installed }

// InstallPhase returns the phase observed when the binding was created.
func (o *Orientation) InstallPhase() Phase { return o.installPhase }

// Commanded returns the last commanded yaw and whether any command has been issued.
func (o *Orientation) Commanded() (float32, bool) { return o.commanded, o.hasCommand }

// Tween returns the in-flight yaw tween, or nil.
func (o *Orientation) Tween() *tween.Tween {
	if o.tw != nil && o.tw.Active() {
		return o.tw
	}
	return nil
}

// Suspend pauses the binding while the host is hidden and stops any in-flight yaw tween.
func (o *Orientation) Suspend() {
	if o.torndown || o.suspended {
		return
	}
	o.suspended = true
	o.sub.Pause()
	if o.tw != nil {
		o.tw.Kill()
	}
}

// Resume re-activates the same binding; the current progress is applied on the next scroll update.
func (o *Orientation) Resume() {
	if o.torndown || !o.suspended {
		return
	}
	o.suspended = false
	o.sub.Resume()
}

// Suspended reports whether the binding is paused.
func (o *Orientation) Suspended() bool { return o.suspended }

// Teardown cancels the binding and any in-flight tween for good. Safe to call more than once.
func (o *Orientation) Teardown() {
	if o.torndown {
		return
	}
	o.torndown = true
	o.sub.Cancel()
	if o.tw != nil {
		o.tw.Kill()
	}
}

// Drift applies the idle yaw drift while Idle with no tween in flight.
//
// Parameters:
//   - dt: seconds since the last tick
func (o *Orientation) Drift(dt float64) {
	if o.rotationSpeed == 0 || !o.installed || o.suspended || o.torndown {
		return
	}
	if o.machine.Phase() != Idle || o.Tween() != nil {
		return
	}
	r := o.obj.Rotation()
	r[1] += float32(o.rotationSpeed * dt)
	o.obj.SetRotation(r)
}

// apply is the binding callback.
func (o *Orientation) apply(progress float64) {
	if o.torndown {
		return
	}
	phase := o.thresholds.Classify(progress)
	if err := o.machine.Transition(phase); err != nil {
		return
	}
	switch phase {
	case Flipping:
		o.rotateTo(FrontFacing)
	case Returning:
		o.rotateTo(BackFacing)
	}
}

// rotateTo tweens yaw toward target unless that is already happening or done.
func (o *Orientation) rotateTo(target float32) {
	if tw := o.Tween(); tw != nil && tw.Target()[0] == target {
		return
	}
	if o.Tween() == nil && common.ApproxEqual(o.obj.Rotation().Y(), target, yawEpsilon) {
		o.commanded, o.hasCommand = target, true
		return
	}
	o.commanded, o.hasCommand = target, true
	o.tw = o.mgr.To(o.obj.Key(tween.PropertyRotation), o.yaw(), []float32{target}, o.duration, tween.Power2InOut)
}

// yaw is an accessor over rotation.y only, leaving tilt and roll to other writers.
func (o *Orientation) yaw() tween.Accessor {
	return tween.Accessor{
		Get: func() []float32 { return []float32{o.obj.Rotation().Y()} },
		Set: func(v []float32) {
			r := o.obj.Rotation()
			r[1] = v[0]
			o.obj.SetRotation(r)
		},
	}
}
