package game_object

import "github.com/go-gl/mathgl/mgl32"

// GameObjectBuilderOption is a functional option for configuring a GameObject during construction.
type GameObjectBuilderOption func(*gameObject)

// WithID sets the ID of the GameObject.
//
// Parameters:
//   - id: unique identifier for the GameObject
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the ID
func WithID(id uint64) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.id = id
	}
}

// WithPosition sets the initial position.
//
// Parameters:
//   - p: the position
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the position
func WithPosition(p mgl32.Vec3) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.position = p
	}
}

// WithRotation sets the initial Euler rotation in radians.
//
// Parameters:
//   - r: the rotation
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the rotation
func WithRotation(r mgl32.Vec3) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.rotation = r
	}
}

// WithScale sets the initial scale.
//
// Parameters:
//   - s: the scale
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the scale
func WithScale(s mgl32.Vec3) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.scale = s
	}
}

// WithSurfaces sets the number of surfaces and their starting opacity.
//
// Parameters:
//   - n: number of surfaces (at least one)
//   - opacity: starting opacity of every surface
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the surface table
func WithSurfaces(n int, opacity float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		if n < 1 {
			n = 1
		}
		obj.opacity = make([]float32, n)
		for i := range obj.opacity {
			obj.opacity[i] = opacity
		}
	}
}
