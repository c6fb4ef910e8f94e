package loader

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Surface is one drawable primitive of a mesh. Each surface fades independently.
type Surface struct {
	Name      string
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	Indices   []uint32
}

// Mesh is decoded geometry for the hero object, recentred on the centre of its bounds.
// A Mesh is immutable once returned by the Loader and may be shared across stages.
type Mesh struct {
	Name     string
	Surfaces []Surface
	Min      mgl32.Vec3
	Max      mgl32.Vec3
}

// VertexCount returns the number of vertices across all surfaces.
func (m *Mesh) VertexCount() int {
	n := 0
	for _, s := range m.Surfaces {
		n += len(s.Positions)
	}
	return n
}

// TriangleCount returns the number of triangles across all surfaces.
func (m *Mesh) TriangleCount() int {
	n := 0
	for _, s := range m.Surfaces {
		n += len(s.Indices) / 3
	}
	return n
}

// Size returns the extent of the bounding box.
func (m *Mesh) Size() mgl32.Vec3 {
	return m.Max.Sub(m.Min)
}

// Radius returns the distance from the origin to the furthest bounding box corner.
func (m *Mesh) Radius() float32 {
	return float32(math.Max(float64(m.Min.Len()), float64(m.Max.Len())))
}

// Corners returns the eight corners of the bounding box.
func (m *Mesh) Corners() [8]mgl32.Vec3 {
	var c [8]mgl32.Vec3
	for i := range c {
		x, y, z := m.Min.X(), m.Min.Y(), m.Min.Z()
		if i&1 != 0 {
			x = m.Max.X()
		}
		if i&2 != 0 {
			y = m.Max.Y()
		}
		if i&4 != 0 {
			z = m.Max.Z()
		}
		c[i] = mgl32.Vec3{x, y, z}
	}
	return c
}

// finalize computes bounds over every surface and translates the mesh so the
// bounds are centred on the origin.
func (m *Mesh) finalize() {
	lo := mgl32.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	hi := lo.Mul(-1)
	found := false
	for _, s := range m.Surfaces {
		for _, p := range s.Positions {
			found = true
			for j := 0; j < 3; j++ {
				lo[j] = min(lo[j], p[j])
				hi[j] = max(hi[j], p[j])
			}
		}
	}
	if !found {
		m.Min, m.Max = mgl32.Vec3{}, mgl32.Vec3{}
		return
	}

	centre := lo.Add(hi).Mul(0.5)
	for si := range m.Surfaces {
		for pi := range m.Surfaces[si].Positions {
			m.Surfaces[si].Positions[pi] = m.Surfaces[si].Positions[pi].Sub(centre)
		}
	}
	m.Min, m.Max = lo.Sub(centre), hi.Sub(centre)
}

// generateNormals computes smooth vertex normals by accumulating area-weighted face normals.
func generateNormals(positions []mgl32.Vec3, indices []uint32) []mgl32.Vec3 {
	n := len(positions)
	accum := make([]mgl32.Vec3, n)

	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		if int(i0) >= n || int(i1) >= n || int(i2) >= n {
			continue
		}
		face := positions[i1].Sub(positions[i0]).Cross(positions[i2].Sub(positions[i0]))
		accum[i0] = accum[i0].Add(face)
		accum[i1] = accum[i1].Add(face)
		accum[i2] = accum[i2].Add(face)
	}

	for i := range accum {
		if accum[i].Len() < 1e-6 {
			accum[i] = mgl32.Vec3{0, 1, 0}
			continue
		}
		accum[i] = accum[i].Normalize()
	}
	return accum
}
