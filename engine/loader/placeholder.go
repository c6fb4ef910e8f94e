package loader

import "github.com/go-gl/mathgl/mgl32"

// PlaceholderPath names the built-in card mesh served without touching the filesystem.
const PlaceholderPath = "builtin:card"

// Card dimensions: a thin portrait slab, wider than deep.
const (
	cardWidth  = 2.0
	cardHeight = 2.8
	cardDepth  = 0.08
)

// newPlaceholderMesh builds the card as two surfaces: the front/back faces and the rim.
func newPlaceholderMesh() *Mesh {
	hx, hy, hz := float32(cardWidth/2), float32(cardHeight/2), float32(cardDepth/2)

	faces := &Surface{Name: "faces"}
	rim := &Surface{Name: "rim"}

	quad := func(s *Surface, n mgl32.Vec3, a, b, c, d mgl32.Vec3) {
		base := uint32(len(s.Positions))
		s.Positions = append(s.Positions, a, b, c, d)
		s.Normals = append(s.Normals, n, n, n, n)
		s.Indices = append(s.Indices, base, base+1, base+2, base, base+2, base+3)
	}

	quad(faces, mgl32.Vec3{0, 0, 1},
		mgl32.Vec3{-hx, -hy, hz}, mgl32.Vec3{hx, -hy, hz}, mgl32.Vec3{hx, hy, hz}, mgl32.Vec3{-hx, hy, hz})
	quad(faces, mgl32.Vec3{0, 0, -1},
		mgl32.Vec3{hx, -hy, -hz}, mgl32.Vec3{-hx, -hy, -hz}, mgl32.Vec3{-hx, hy, -hz}, mgl32.Vec3{hx, hy, -hz})

	quad(rim, mgl32.Vec3{1, 0, 0},
		mgl32.Vec3{hx, -hy, hz}, mgl32.Vec3{hx, -hy, -hz}, mgl32.Vec3{hx, hy, -hz}, mgl32.Vec3{hx, hy, hz})
	quad(rim, mgl32.Vec3{-1, 0, 0},
		mgl32.Vec3{-hx, -hy, -hz}, mgl32.Vec3{-hx, -hy, hz}, mgl32.Vec3{-hx, hy, hz}, mgl32.Vec3{-hx, hy, -hz})
	quad(rim, mgl32.Vec3{0, 1, 0},
		mgl32.Vec3{-hx, hy, hz}, mgl32.Vec3{hx, hy, hz}, mgl32.Vec3{hx, hy, -hz}, mgl32.Vec3{-hx, hy, -hz})
	quad(rim, mgl32.Vec3{0, -1, 0},
		mgl32.Vec3{-hx, -hy, -hz}, mgl32.Vec3{hx, -hy, -hz}, mgl32.Vec3{hx, -hy, hz}, mgl32.Vec3{-hx, -hy, hz})

	m := &Mesh{Name: PlaceholderPath, Surfaces: []Surface{*faces, *rim}}
	m.finalize()
	return m
}
