package hero

import (
	"github.com/Carmen-Shannon/oxy-hero/engine/animator"
	"github.com/Carmen-Shannon/oxy-hero/engine/game_object"
	"github.com/Carmen-Shannon/oxy-hero/engine/light"
	"github.com/Carmen-Shannon/oxy-hero/engine/loader"
	"github.com/go-gl/mathgl/mgl32"
)

// Frame is everything a renderer needs for one tick. It is a value copy; later
// ticks never mutate it. The zero Frame draws nothing.
type Frame struct {
	Tick uint64

	Object game_object.Snapshot
	// Model is the object's model matrix with the presentation scale applied.
	Model mgl32.Mat4

	CameraPosition mgl32.Vec3
	View           mgl32.Mat4
	Projection     mgl32.Mat4

	Lights light.RigState
	Shadow light.ShadowState

	Phase    animator.Phase
	Progress float64

	// Mesh is nil until the mesh resource arrives, and stays nil if it failed.
	Mesh *loader.Mesh

	// Drawable is false while the render device is lost or a reload is pending.
	Drawable   bool
	Background mgl32.Vec3
}

// Empty reports whether f is the zero frame returned by an unmounted stage.
func (f Frame) Empty() bool {
	return f.Tick == 0
}

// ViewProjection returns Projection * View.
func (f Frame) ViewProjection() mgl32.Mat4 {
	return f.Projection.Mul4(f.View)
}

// ShowObject reports whether the object should be drawn this frame.
func (f Frame) ShowObject() bool {
	return f.Drawable && f.Mesh != nil && f.Object.Visible && f.Object.MaxOpacity() > 0
}
