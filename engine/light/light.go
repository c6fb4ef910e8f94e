package light

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// LightType identifies the kind of light source.
type LightType int

const (
	// LightTypeDirectional represents a light with no position, only direction.
	// The rim lights are directional.
	LightTypeDirectional LightType = iota

	// LightTypeSpot represents a light that emits in a cone from a position along a direction.
	// The cone has a hard outer edge at the angle and a soft inner edge set by the penumbra.
	LightTypeSpot

	// LightTypeAmbient represents uniform fill light with no position or direction.
	LightTypeAmbient
)

func (t LightType) String() string {
	switch t {
	case LightTypeDirectional:
		return "directional"
	case LightTypeSpot:
		return "spot"
	case LightTypeAmbient:
		return "ambient"
	}
	return "unknown"
}

// State is an immutable copy of a light's parameters, handed to renderers.
type State struct {
	Type      LightType
	Position  mgl32.Vec3
	Direction mgl32.Vec3
	Color     mgl32.Vec3
	Intensity float32
	InnerCone float32 // cos(inner half-angle)
	OuterCone float32 // cos(outer half-angle)
}

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	lightType LightType
	position  mgl32.Vec3
	direction mgl32.Vec3
	color     mgl32.Vec3
	intensity float32
	angle     float32
	penumbra  float32
}

// Light defines a light source of the hero rig.
// Type-specific properties return zero values when not applicable.
// Lights are owned by the render loop and are not safe for concurrent use.
type Light interface {
	// Type returns the kind of light source.
	//
	// Returns:
	//   - LightType: the light type
	Type() LightType

	// Position returns the world-space position of the light.
	// Meaningless for directional and ambient lights.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// Direction returns the normalized direction the light travels.
	//
	// Returns:
	//   - mgl32.Vec3: the direction
	Direction() mgl32.Vec3

	// Color returns the RGB color of the light.
	Color() mgl32.Vec3

	// Intensity returns the scalar intensity multiplier.
	Intensity() float32

	// InnerCone returns cos of the half-angle inside which a spot light is at full strength.
	InnerCone() float32

	// OuterCone returns cos of the half-angle outside which a spot light contributes nothing.
	OuterCone() float32

	// SetPosition moves the light.
	SetPosition(p mgl32.Vec3)

	// SetDirection sets the travel direction; it is normalized before storing.
	SetDirection(d mgl32.Vec3)

	// SetIntensity sets the intensity multiplier.
	SetIntensity(intensity float32)

	// SetSpotCone sets the cone half-angle and the softened fraction of it.
	//
	// Parameters:
	//   - angle: outer half-angle in radians
	//   - penumbra: fraction of the cone, from the edge inward, that fades out; in [0, 1]
	SetSpotCone(angle, penumbra float32)

	// State returns an immutable copy of the light.
	State() State
}

var _ Light = &lightImpl{}

// NewLight creates a light of the given type.
//
// Parameters:
//   - lightType: the kind of light
//   - opts: functional options
//
// Returns:
//   - Light: the light
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		lightType: lightType,
		direction: mgl32.Vec3{0, -1, 0},
		color:     mgl32.Vec3{1, 1, 1},
		intensity: 1.0,
		angle:     math.Pi / 3,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Position() mgl32.Vec3 {
	return l.position
}

func (l *lightImpl) Direction() mgl32.Vec3 {
	return l.direction
}

func (l *lightImpl) Color() mgl32.Vec3 {
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	return l.intensity
}

func (l *lightImpl) InnerCone() float32 {
	if l.lightType != LightTypeSpot {
		return 0
	}
	return float32(math.Cos(float64(l.angle * (1 - l.penumbra))))
}

func (l *lightImpl) OuterCone() float32 {
	if l.lightType != LightTypeSpot {
		return 0
	}
	return float32(math.Cos(float64(l.angle)))
}

func (l *lightImpl) SetPosition(p mgl32.Vec3) {
	l.position = p
}

func (l *lightImpl) SetDirection(d mgl32.Vec3) {
	l.direction = normalize(d)
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.intensity = intensity
}

func (l *lightImpl) SetSpotCone(angle, penumbra float32) {
	l.angle = angle
	l.penumbra = clampUnit(penumbra)
}

func (l *lightImpl) State() State {
	return State{
		Type:      l.lightType,
		Position:  l.position,
		Direction: l.direction,
		Color:     l.color,
		Intensity: l.intensity,
		InnerCone: l.InnerCone(),
		OuterCone: l.OuterCone(),
	}
}
