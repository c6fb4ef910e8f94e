package animator

import (
	"math"

	"github.com/Carmen-Shannon/oxy-hero/common"
	"github.com/Carmen-Shannon/oxy-hero/engine/camera"
	"github.com/Carmen-Shannon/oxy-hero/engine/game_object"
	"github.com/Carmen-Shannon/oxy-hero/engine/input"
	"github.com/go-gl/mathgl/mgl32"
)

// ReactiveParams are the gains and per-tick rates of the pointer reactions.
type ReactiveParams struct {
	FloatSpeed      float32
	FloatAmplitude  float32
	FloatBlend      float32
	TiltInfluence   float32
	TiltLerp        float32
	HoverDistance   float32
	HoverLerp       float32
	CameraInfluence float32
	CameraLerp      float32
}

// DefaultReactiveParams returns the stock gains and rates.
func DefaultReactiveParams() ReactiveParams {
	return ReactiveParams{
		FloatSpeed:      0.8,
		FloatAmplitude:  0.15,
		FloatBlend:      0.05,
		TiltInfluence:   0.15,
		TiltLerp:        0.05,
		HoverDistance:   0.5,
		HoverLerp:       0.1,
		CameraInfluence: 0.5,
		CameraLerp:      0.05,
	}
}

// Reactive runs the per-tick pointer reactions: idle float, parallax tilt,
// hover-forward displacement and camera parallax. Every write is a lerp step.
type Reactive struct {
	obj     game_object.GameObject
	cam     camera.Camera
	machine *Machine
	params  ReactiveParams

	idleTime float64
	envelope float32
}

// NewReactive creates the pointer reactions for obj and cam.
//
// Parameters:
//   - obj: the hero object
//   - cam: the scene camera
//   - machine: the phase machine, read to gate the float
//   - params: gains and rates
//
// Returns:
//   - *Reactive: the reactions
func NewReactive(obj game_object.GameObject, cam camera.Camera, machine *Machine, params ReactiveParams) *Reactive {
	return &Reactive{obj: obj, cam: cam, machine: machine, params: params}
}

// Envelope returns the current idle float weight in [0, 1]. It is 0 outside Idle.
func (r *Reactive) Envelope() float32 { return r.envelope }

// Update advances the reactions by one tick.
//
// Parameters:
//   - pointer: the pointer snapshot for this tick
//   - hovered: whether the pointer is over the scene
//   - baseline: resting Y recorded by the entrance
//   - dt: seconds since the last tick
func (r *Reactive) Update(pointer input.PointerVector, hovered bool, baseline float32, dt float64) {
	p := r.params

	if r.machine.EntranceComplete() {
		pos := r.obj.Position()
		if r.machine.Phase() == Idle {
			r.idleTime += dt
			r.envelope = common.Lerp(r.envelope, 1, p.FloatBlend)
			pos[1] = baseline + r.envelope*p.FloatAmplitude*float32(math.Sin(float64(p.FloatSpeed)*r.idleTime))
		} else {
			// The sine restarts at zero offset when Idle resumes.
			r.idleTime = 0
			r.envelope = 0
			pos[1] = baseline
		}
		hoverTarget := float32(0)
		if hovered {
			hoverTarget = p.HoverDistance
		}
		pos[2] = common.Lerp(pos[2], hoverTarget, p.HoverLerp)
		r.obj.SetPosition(pos)

		rot := r.obj.Rotation()
		rot[0] = common.Lerp(rot[0], pointer.Y*p.TiltInfluence, p.TiltLerp)
		r.obj.SetRotation(rot)
	}

	eye := r.cam.Position()
	target := mgl32.Vec3{pointer.X * p.CameraInfluence, pointer.Y * p.CameraInfluence, eye.Z()}
	r.cam.SetPosition(common.LerpVec3(eye, target, p.CameraLerp))
}
