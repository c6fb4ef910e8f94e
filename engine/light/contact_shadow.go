package light

import (
	"fmt"
	"image"
	"math"

	"github.com/Carmen-Shannon/oxy-hero/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"
)

// DefaultShadowColor is the tint of the contact shadow.
var DefaultShadowColor = common.MustHexColor("#2a3240")

// ShadowParams configure the contact shadow beneath the hero object.
type ShadowParams struct {
	PlaneY     float32
	Opacity    float32
	Scale      float32
	Blur       float32
	Far        float32
	Resolution int
	Interval   float64
	Color      mgl32.Vec3
}

// DefaultShadowParams returns the stock contact shadow parameters.
func DefaultShadowParams() ShadowParams {
	return ShadowParams{
		PlaneY:     -1.5,
		Opacity:    0.4,
		Scale:      8,
		Blur:       2,
		Far:        4,
		Resolution: 512,
		Interval:   0.1,
		Color:      DefaultShadowColor,
	}
}

// ShadowState is an immutable copy of the contact shadow for renderers.
type ShadowState struct {
	Position mgl32.Vec3 // centre on the ground plane
	Strength float32    // opacity after height fade
	Softness float32    // fraction of the radius that is feathered, in [0, 1]
	Scale    float32
	Color    mgl32.Vec3
	Updates  int
}

// ContactShadow is an approximate shadow on a ground plane that follows the object.
// Its placement is recomputed at a throttled rate rather than every tick.
type ContactShadow struct {
	params ShadowParams

	state   ShadowState
	acc     float64
	primed  bool
	bakeKey [2]int
	baked   *image.RGBA
}

// NewContactShadow creates a contact shadow centred at the origin of the plane.
//
// Parameters:
//   - params: shadow parameters
//
// Returns:
//   - *ContactShadow: the shadow
func NewContactShadow(params ShadowParams) *ContactShadow {
	return &ContactShadow{
		params: params,
		state: ShadowState{
			Position: mgl32.Vec3{0, params.PlaneY, 0},
			Strength: params.Opacity,
			Scale:    params.Scale,
			Color:    params.Color,
		},
		bakeKey: [2]int{-1, -1},
	}
}

// Update accumulates dt and, once per interval, recomputes the shadow from the object's position.
// The first call always recomputes.
//
// Parameters:
//   - object: the object's current world position
//   - dt: seconds since the last call
//
// Returns:
//   - bool: true if the shadow was recomputed
func (s *ContactShadow) Update(object mgl32.Vec3, dt float64) bool {
	if s.primed {
		s.acc += dt
		if s.acc < s.params.Interval {
			return false
		}
		s.acc = math.Mod(s.acc, math.Max(s.params.Interval, 1e-9))
	}
	s.primed = true

	height := object.Y() - s.params.PlaneY
	if height < 0 {
		height = 0
	}
	fade := float32(1)
	if s.params.Far > 0 {
		fade = common.Clamp(1-height/s.params.Far, 0, 1)
	}
	softness := common.Clamp(s.params.Blur/s.params.Scale*(1+height), 0, 1)

	s.state.Position = mgl32.Vec3{object.X(), s.params.PlaneY, object.Z()}
	s.state.Strength = s.params.Opacity * fade
	s.state.Softness = softness
	s.state.Updates++
	return true
}

// State returns the current shadow placement.
func (s *ContactShadow) State() ShadowState {
	return s.state
}

// Bake renders the shadow texture at the configured resolution: a tinted radial
// falloff whose feathered rim widens with softness. Results are cached until the
// strength or softness changes visibly.
//
// Returns:
//   - *image.RGBA: the texture (owned by the shadow; do not modify)
//   - error: error if rasterisation fails
func (s *ContactShadow) Bake() (*image.RGBA, error) {
	key := [2]int{int(s.state.Strength * 255), int(s.state.Softness * 255)}
	if s.baked != nil && key == s.bakeKey {
		return s.baked, nil
	}

	res := s.params.Resolution
	dc := gg.NewContext(res, res)
	defer dc.Close()

	c := s.params.Color
	r, g, b := float64(c.X()), float64(c.Y()), float64(c.Z())
	a := float64(s.state.Strength)
	half := float64(res) / 2
	core := 1 - float64(s.state.Softness)

	brush := gg.NewRadialGradientBrush(half, half, 0, half).
		AddColorStop(0, gg.RGBA2(r, g, b, a)).
		AddColorStop(core*0.999, gg.RGBA2(r, g, b, a*0.7)).
		AddColorStop(1, gg.RGBA2(r, g, b, 0))
	dc.SetFillBrush(brush)
	dc.DrawCircle(half, half, half)
	if err := dc.Fill(); err != nil {
		return nil, fmt.Errorf("contact shadow: fill: %w", err)
	}

	src := dc.Image()
	dst := image.NewRGBA(image.Rect(0, 0, res, res))
	xdraw.Copy(dst, image.Point{}, src, src.Bounds(), xdraw.Src, nil)

	s.baked, s.bakeKey = dst, key
	common.Logger().Debug("contact shadow baked", "resolution", res, "strength", s.state.Strength)
	return dst, nil
}
