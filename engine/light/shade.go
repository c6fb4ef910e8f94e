package light

import (
	"math"

	"github.com/Carmen-Shannon/oxy-hero/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Albedo is the base colour of the hero object's surfaces.
var Albedo = mgl32.Vec3{0.86, 0.88, 0.93}

// Shade evaluates the rig at one surface point on the CPU and returns the lit colour
// before tone mapping. It follows the same model as the GPU shader: ambient fill, a
// spotlight with a smooth cone edge and inverse-square falloff, and rim lights with a
// view-dependent fresnel boost.
//
// Parameters:
//   - rig: the lights for this frame
//   - eye: camera position in world space
//   - p: surface point in world space
//   - n: surface normal in world space (need not be normalised)
//
// Returns:
//   - mgl32.Vec3: linear colour
func Shade(rig RigState, eye, p, n mgl32.Vec3) mgl32.Vec3 {
	n = safeNormalize(n)
	v := safeNormalize(eye.Sub(p))
	radiance := rig.Ambient.Color.Mul(rig.Ambient.Intensity)

	toSpot := rig.Spot.Position.Sub(p)
	dist := max(toSpot.Len(), 0.001)
	l := toSpot.Mul(1 / dist)
	cosAngle := l.Mul(-1).Dot(safeNormalize(rig.Spot.Direction))
	cone := smoothstep(rig.Spot.OuterCone, rig.Spot.InnerCone, cosAngle)
	falloff := rig.Spot.Intensity / (4 * math.Pi * dist * dist)
	radiance = radiance.Add(rig.Spot.Color.Mul(max(n.Dot(l), 0) * cone * falloff))

	fresnel := float32(math.Pow(float64(1-max(n.Dot(v), 0)), 2))
	for _, rim := range rig.Rims {
		lr := safeNormalize(rim.Position.Sub(p))
		radiance = radiance.Add(rim.Color.Mul(rim.Intensity * (max(n.Dot(lr), 0) + 0.5*fresnel)))
	}

	return mgl32.Vec3{Albedo[0] * radiance[0], Albedo[1] * radiance[1], Albedo[2] * radiance[2]}
}

// Tonemap applies the ACES filmic curve to each channel, mapping linear colour into [0, 1].
func Tonemap(c mgl32.Vec3) mgl32.Vec3 {
	aces := func(x float32) float32 {
		return common.Clamp((x*(2.51*x+0.03))/(x*(2.43*x+0.59)+0.14), 0, 1)
	}
	return mgl32.Vec3{aces(c[0]), aces(c[1]), aces(c[2])}
}

func smoothstep(edge0, edge1, x float32) float32 {
	if edge0 == edge1 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := common.Clamp((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}

func safeNormalize(v mgl32.Vec3) mgl32.Vec3 {
	if v.Len() < 1e-6 {
		return v
	}
	return v.Normalize()
}
