package common

import (
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// Lerp moves current toward target by the given rate and returns the result.
// This is the per-tick smoothing step used by every reactive system: current += (target - current) * rate.
//
// Parameters:
//   - current: the value being smoothed
//   - target: the value being approached
//   - rate: fraction of the remaining distance covered this tick, expected in (0, 1]
//
// Returns:
//   - float32: the smoothed value
func Lerp(current, target, rate float32) float32 {
	return current + (target-current)*rate
}

// LerpVec3 applies Lerp component-wise to a vector.
//
// Parameters:
//   - current: the vector being smoothed
//   - target: the vector being approached
//   - rate: fraction of the remaining distance covered this tick
//
// Returns:
//   - mgl32.Vec3: the smoothed vector
func LerpVec3(current, target mgl32.Vec3, rate float32) mgl32.Vec3 {
	return current.Add(target.Sub(current).Mul(rate))
}

// Clamp limits v to the closed range [lo, hi].
func Clamp[T ~float32 | ~float64](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 limits v to [0, 1]. NaN maps to 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return Clamp(v, 0, 1)
}

// ModelMatrix composes translation, Euler rotation and scale into a model matrix.
// The rotation order is Y * X * Z (yaw-pitch-roll), applied after scale.
//
// Parameters:
//   - position: translation in world space
//   - rotation: Euler angles in radians around X, Y and Z
//   - scale: per-axis scale factors
//
// Returns:
//   - mgl32.Mat4: the column-major model matrix
func ModelMatrix(position, rotation, scale mgl32.Vec3) mgl32.Mat4 {
	r := mgl32.HomogRotate3DY(rotation.Y()).
		Mul4(mgl32.HomogRotate3DX(rotation.X())).
		Mul4(mgl32.HomogRotate3DZ(rotation.Z()))
	return mgl32.Translate3D(position.X(), position.Y(), position.Z()).
		Mul4(r).
		Mul4(mgl32.Scale3D(scale.X(), scale.Y(), scale.Z()))
}

// ApproxEqual reports whether a and b differ by no more than eps.
func ApproxEqual(a, b, eps float32) bool {
	return float32(math.Abs(float64(a-b))) <= eps
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// The returned slice shares memory with the input and must not be modified.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), int(size)*len(data))
}

// StructToBytes reinterprets a pointer to a struct as a raw byte slice.
//
// Parameters:
//   - v: pointer to the struct to reinterpret
//
// Returns:
//   - []byte: byte slice view of the struct's memory
func StructToBytes[T any](v *T) []byte {
	size := unsafe.Sizeof(*v)
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), int(size))
}
