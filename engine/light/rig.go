package light

import (
	"github.com/Carmen-Shannon/oxy-hero/common"
	"github.com/Carmen-Shannon/oxy-hero/engine/input"
	"github.com/go-gl/mathgl/mgl32"
)

// Fixed rig colours and rim placements.
var (
	AmbientColor = common.MustHexColor("#f0f4ff")
	RimColors    = [2]mgl32.Vec3{common.MustHexColor("#e0e7ff"), common.MustHexColor("#fff5e1")}
	RimPositions = [2]mgl32.Vec3{{-5, 5, -5}, {5, -3, -5}}
	RimIntensity = [2]float32{0.8, 0.5}
)

// RigParams are the gains and rates of the pointer-driven spotlight.
type RigParams struct {
	Follow           float32
	PositionLerp     float32
	DefaultIntensity float32
	HoverIntensity   float32
	IntensityLerp    float32
	Angle            float32
	Penumbra         float32
	AmbientIntensity float32
}

// DefaultRigParams returns the stock rig parameters.
func DefaultRigParams() RigParams {
	return RigParams{
		Follow:           8,
		PositionLerp:     0.08,
		DefaultIntensity: 250,
		HoverIntensity:   350,
		IntensityLerp:    0.1,
		Angle:            0.6,
		Penumbra:         0.8,
		AmbientIntensity: 0.4,
	}
}

// RigState is an immutable copy of every light in the rig.
type RigState struct {
	Ambient State
	Spot    State
	Rims    [2]State
}

// Rig holds the hero lighting: a pointer-following spotlight, ambient fill and two fixed rim lights.
type Rig struct {
	params  RigParams
	ambient Light
	spot    Light
	rims    [2]Light

	target          mgl32.Vec3
	targetIntensity float32
}

// NewRig creates the lighting rig. The spotlight starts centred in front of the object
// at the default intensity.
//
// Parameters:
//   - params: gains and rates
//
// Returns:
//   - *Rig: the rig
func NewRig(params RigParams) *Rig {
	start := mgl32.Vec3{0, 0, params.Follow}
	r := &Rig{
		params: params,
		ambient: NewLight(LightTypeAmbient,
			WithColor(AmbientColor),
			WithIntensity(params.AmbientIntensity)),
		spot: NewLight(LightTypeSpot,
			WithPosition(start),
			WithDirection(start.Mul(-1)),
			WithIntensity(params.DefaultIntensity),
			WithSpotCone(params.Angle, params.Penumbra)),
		target:          start,
		targetIntensity: params.DefaultIntensity,
	}
	for i := range r.rims {
		r.rims[i] = NewLight(LightTypeDirectional,
			WithPosition(RimPositions[i]),
			WithDirection(RimPositions[i].Mul(-1)),
			WithColor(RimColors[i]),
			WithIntensity(RimIntensity[i]))
	}
	return r
}

// Update moves the spotlight one lerp step toward the pointer-derived target and
// its intensity toward the hover-dependent target. The spotlight keeps aiming at the origin.
//
// Parameters:
//   - pointer: the pointer snapshot for this tick
//   - hovered: whether the pointer is over the scene
func (r *Rig) Update(pointer input.PointerVector, hovered bool) {
	p := r.params
	r.target = mgl32.Vec3{pointer.X * p.Follow, pointer.Y * p.Follow, p.Follow}
	r.targetIntensity = p.DefaultIntensity
	if hovered {
		r.targetIntensity = p.HoverIntensity
	}

	pos := common.LerpVec3(r.spot.Position(), r.target, p.PositionLerp)
	r.spot.SetPosition(pos)
	r.spot.SetDirection(pos.Mul(-1))
	r.spot.SetIntensity(common.Lerp(r.spot.Intensity(), r.targetIntensity, p.IntensityLerp))
}

// Spot returns the pointer-following spotlight.
func (r *Rig) Spot() Light { return r.spot }

// Ambient returns the ambient fill light.
func (r *Rig) Ambient() Light { return r.ambient }

// Rims returns the two fixed rim lights.
func (r *Rig) Rims() [2]Light { return r.rims }

// SpotTarget returns the position the spotlight is converging on.
func (r *Rig) SpotTarget() mgl32.Vec3 { return r.target }

// IntensityTarget returns the intensity the spotlight is converging on.
func (r *Rig) IntensityTarget() float32 { return r.targetIntensity }

// State returns an immutable copy of the rig.
func (r *Rig) State() RigState {
	return RigState{
		Ambient: r.ambient.State(),
		Spot:    r.spot.State(),
		Rims:    [2]State{r.rims[0].State(), r.rims[1].State()},
	}
}
