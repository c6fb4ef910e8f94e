package renderer

import (
	_ "embed"
	"encoding/binary"
	"math"

	"github.com/Carmen-Shannon/oxy-hero/engine/hero"
	"github.com/Carmen-Shannon/oxy-hero/engine/light"
	"github.com/Carmen-Shannon/oxy-hero/engine/loader"
	"github.com/go-gl/mathgl/mgl32"
)

// heroShaderSource lights the hero mesh with the ambient, spot and rim lights.
//
//go:embed assets/hero.wgsl
var heroShaderSource string

// shadowShaderSource draws the contact shadow as a feathered disc on the ground plane.
//
//go:embed assets/shadow.wgsl
var shadowShaderSource string

const (
	// sceneUniformSize matches the Scene struct in hero.wgsl.
	sceneUniformSize = 64 + 64 + 16*5 + 32*2 + 16*3

	// surfaceUniformSize matches the Surface struct in hero.wgsl.
	surfaceUniformSize = 16

	// vertexStride is position (vec3) followed by normal (vec3).
	vertexStride = 24
)

// SurfaceRange locates one surface inside the shared index buffer.
type SurfaceRange struct {
	FirstIndex uint32
	IndexCount uint32
}

// uniformWriter appends little-endian float32 values into a fixed-size buffer.
type uniformWriter struct {
	buf []byte
	off int
}

func (w *uniformWriter) f32(v float32) {
	binary.LittleEndian.PutUint32(w.buf[w.off:w.off+4], math.Float32bits(v))
	w.off += 4
}

func (w *uniformWriter) vec4(v mgl32.Vec3, tail float32) {
	w.f32(v[0])
	w.f32(v[1])
	w.f32(v[2])
	w.f32(tail)
}

func (w *uniformWriter) mat4(m mgl32.Mat4) {
	for _, v := range m {
		w.f32(v)
	}
}

// packScene encodes the per-frame Scene uniform block.
//
// Parameters:
//   - f: the frame to encode
//
// Returns:
//   - []byte: sceneUniformSize bytes laid out for std140-compatible WGSL uniforms
func packScene(f hero.Frame) []byte {
	w := &uniformWriter{buf: make([]byte, sceneUniformSize)}
	w.mat4(f.ViewProjection())
	w.mat4(f.Model)
	w.vec4(f.CameraPosition, 1)

	lights := f.Lights
	w.vec4(lights.Ambient.Color, lights.Ambient.Intensity)
	w.vec4(lights.Spot.Position, lights.Spot.Intensity)
	w.vec4(lights.Spot.Direction, lights.Spot.InnerCone)
	w.vec4(lights.Spot.Color, lights.Spot.OuterCone)
	for _, rim := range lights.Rims {
		packRim(w, rim)
	}

	s := f.Shadow
	w.vec4(s.Position, s.Scale)
	w.vec4(s.Color, s.Strength)
	w.vec4(mgl32.Vec3{s.Softness, 0, 0}, 0)
	return w.buf
}

func packRim(w *uniformWriter, rim light.State) {
	w.vec4(rim.Position, rim.Intensity)
	w.vec4(rim.Color, 0)
}

// packSurfaces encodes one Surface uniform block per opacity entry.
func packSurfaces(opacity []float32) [][]byte {
	out := make([][]byte, len(opacity))
	for i, o := range opacity {
		w := &uniformWriter{buf: make([]byte, surfaceUniformSize)}
		w.vec4(mgl32.Vec3{o, 0, 0}, 0)
		out[i] = w.buf
	}
	return out
}

// packMesh interleaves every surface into one vertex buffer and one index buffer.
// Indices are rebased so each draw can use a base vertex of zero.
//
// Parameters:
//   - m: the mesh to pack
//
// Returns:
//   - []byte: vertex data, vertexStride bytes per vertex
//   - []byte: uint32 index data
//   - []SurfaceRange: the index range of each surface, in surface order
func packMesh(m *loader.Mesh) ([]byte, []byte, []SurfaceRange) {
	var vertexCount, indexCount int
	for _, s := range m.Surfaces {
		vertexCount += len(s.Positions)
		indexCount += len(s.Indices)
	}

	vw := &uniformWriter{buf: make([]byte, vertexCount*vertexStride)}
	indices := make([]byte, indexCount*4)
	ranges := make([]SurfaceRange, 0, len(m.Surfaces))

	var base, cursor uint32
	for _, s := range m.Surfaces {
		for i, p := range s.Positions {
			vw.f32(p[0])
			vw.f32(p[1])
			vw.f32(p[2])
			var n mgl32.Vec3
			if i < len(s.Normals) {
				n = s.Normals[i]
			}
			vw.f32(n[0])
			vw.f32(n[1])
			vw.f32(n[2])
		}
		ranges = append(ranges, SurfaceRange{FirstIndex: cursor, IndexCount: uint32(len(s.Indices))})
		for _, idx := range s.Indices {
			binary.LittleEndian.PutUint32(indices[cursor*4:], idx+base)
			cursor++
		}
		base += uint32(len(s.Positions))
	}
	return vw.buf, indices, ranges
}
