package game_object

import (
	"github.com/Carmen-Shannon/oxy-hero/common"
	"github.com/Carmen-Shannon/oxy-hero/engine/tween"
	"github.com/go-gl/mathgl/mgl32"
)

type gameObject struct {
	id       uint64
	position mgl32.Vec3
	rotation mgl32.Vec3
	scale    mgl32.Vec3
	visible  bool
	opacity  []float32
}

// Snapshot is an immutable copy of a GameObject's transform and visibility.
type Snapshot struct {
	ID       uint64
	Position mgl32.Vec3
	Rotation mgl32.Vec3
	Scale    mgl32.Vec3
	Visible  bool
	Opacity  []float32
	Model    mgl32.Mat4
}

// MaxOpacity returns the largest per-surface opacity, or 0 with no surfaces.
func (s Snapshot) MaxOpacity() float32 {
	var m float32
	for _, o := range s.Opacity {
		if o > m {
			m = o
		}
	}
	return m
}

// GameObject is the transform record of the hero object.
// It is owned by the render loop and is not safe for concurrent use.
type GameObject interface {
	// ID returns the object's unique identifier.
	//
	// Returns:
	//   - uint64: the object ID
	ID() uint64

	// Position returns the current position.
	Position() mgl32.Vec3

	// Rotation returns the current Euler rotation in radians.
	Rotation() mgl32.Vec3

	// Scale returns the current per-axis scale.
	Scale() mgl32.Vec3

	// Visible reports the visibility flag.
	Visible() bool

	// Opacity returns a copy of the per-surface opacities.
	Opacity() []float32

	// SetPosition replaces the position.
	SetPosition(p mgl32.Vec3)

	// SetRotation replaces the Euler rotation.
	SetRotation(r mgl32.Vec3)

	// SetScale replaces the scale.
	SetScale(s mgl32.Vec3)

	// SetVisible sets the visibility flag.
	SetVisible(v bool)

	// SetOpacity sets every surface to the same opacity.
	//
	// Parameters:
	//   - o: opacity in [0, 1]
	SetOpacity(o float32)

	// SetSurfaceCount resizes the per-surface opacity table. New surfaces inherit
	// the opacity of the first existing surface so a late-loaded mesh matches the fade.
	//
	// Parameters:
	//   - n: number of surfaces (at least one is always kept)
	SetSurfaceCount(n int)

	// Key returns the tween key for one of this object's properties.
	//
	// Parameters:
	//   - p: the property
	//
	// Returns:
	//   - tween.Key: the key used to claim the property
	Key(p tween.Property) tween.Key

	// Accessor returns a tween accessor for one of this object's properties.
	// Opacity reads the first surface and writes all surfaces.
	//
	// Parameters:
	//   - p: the property
	//
	// Returns:
	//   - tween.Accessor: getter and setter over the property's components
	Accessor(p tween.Property) tween.Accessor

	// ModelMatrix composes the current transform.
	ModelMatrix() mgl32.Mat4

	// Snapshot returns an immutable copy of the current state.
	Snapshot() Snapshot
}

var _ GameObject = &gameObject{}

// NewGameObject creates a new GameObject configured with the given options.
// The default object sits at the origin with unit scale, hidden, with one fully transparent surface.
//
// Parameters:
//   - options: functional options to configure the object
//
// Returns:
//   - GameObject: the newly created object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	obj := &gameObject{
		scale:   mgl32.Vec3{1, 1, 1},
		opacity: []float32{0},
	}
	for _, option := range options {
		option(obj)
	}
	return obj
}

func (g *gameObject) ID() uint64 {
	return g.id
}

func (g *gameObject) Position() mgl32.Vec3 {
	return g.position
}

func (g *gameObject) Rotation() mgl32.Vec3 {
	return g.rotation
}

func (g *gameObject) Scale() mgl32.Vec3 {
	return g.scale
}

func (g *gameObject) Visible() bool {
	return g.visible
}

func (g *gameObject) Opacity() []float32 {
	return append([]float32(nil), g.opacity...)
}

func (g *gameObject) SetPosition(p mgl32.Vec3) {
	g.position = p
}

func (g *gameObject) SetRotation(r mgl32.Vec3) {
	g.rotation = r
}

func (g *gameObject) SetScale(s mgl32.Vec3) {
	g.scale = s
}

func (g *gameObject) SetVisible(v bool) {
	g.visible = v
}

func (g *gameObject) SetOpacity(o float32) {
	o = common.Clamp(o, 0, 1)
	for i := range g.opacity {
		g.opacity[i] = o
	}
}

func (g *gameObject) SetSurfaceCount(n int) {
	if n < 1 {
		n = 1
	}
	fill := g.opacity[0]
	next := make([]float32, n)
	for i := range next {
		if i < len(g.opacity) {
			next[i] = g.opacity[i]
		} else {
			next[i] = fill
		}
	}
	g.opacity = next
}

func (g *gameObject) Key(p tween.Property) tween.Key {
	return tween.Key{Object: g.id, Property: p}
}

func (g *gameObject) Accessor(p tween.Property) tween.Accessor {
	vec := func(v *mgl32.Vec3) tween.Accessor {
		return tween.Accessor{
			Get: func() []float32 { return []float32{v[0], v[1], v[2]} },
			Set: func(x []float32) { copy(v[:], x) },
		}
	}
	switch p {
	case tween.PropertyPosition:
		return vec(&g.position)
	case tween.PropertyRotation:
		return vec(&g.rotation)
	case tween.PropertyScale:
		return vec(&g.scale)
	default:
		return tween.Accessor{
			Get: func() []float32 { return []float32{g.opacity[0]} },
			Set: func(x []float32) {
				if len(x) > 0 {
					g.SetOpacity(x[0])
				}
			},
		}
	}
}

func (g *gameObject) ModelMatrix() mgl32.Mat4 {
	return common.ModelMatrix(g.position, g.rotation, g.scale)
}

func (g *gameObject) Snapshot() Snapshot {
	return Snapshot{
		ID:       g.id,
		Position: g.position,
		Rotation: g.rotation,
		Scale:    g.scale,
		Visible:  g.visible,
		Opacity:  g.Opacity(),
		Model:    g.ModelMatrix(),
	}
}
