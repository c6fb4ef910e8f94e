package loader

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// extractMesh converts every triangle primitive of every mesh in a parsed document
// into one Surface. Missing normals are generated and missing indices are sequential.
func extractMesh(parser gltfParser, name string) (*Mesh, error) {
	doc := parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}

	out := &Mesh{Name: name}
	for mi := range doc.Meshes {
		mesh := &doc.Meshes[mi]
		for pi := range mesh.Primitives {
			surface, err := extractPrimitive(parser, &mesh.Primitives[pi])
			if err != nil {
				return nil, fmt.Errorf("mesh %d primitive %d: %w", mi, pi, err)
			}

			surface.Name = mesh.Name
			if surface.Name == "" {
				surface.Name = fmt.Sprintf("mesh_%d", mi)
			}
			if pi > 0 {
				surface.Name = fmt.Sprintf("%s_prim%d", surface.Name, pi)
			}
			out.Surfaces = append(out.Surfaces, *surface)
		}
	}

	if len(out.Surfaces) == 0 {
		return nil, fmt.Errorf("%w: document has no mesh primitives", ErrUnsupported)
	}
	out.finalize()
	return out, nil
}

func extractPrimitive(parser gltfParser, prim *gltfPrimitive) (*Surface, error) {
	if prim.Mode != nil && *prim.Mode != gltfPrimitiveModeTriangles {
		return nil, fmt.Errorf("%w: primitive mode %d (only triangles supported)", ErrUnsupported, *prim.Mode)
	}

	posAccessor, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("primitive has no POSITION attribute")
	}
	raw, err := parser.ReadVec3Accessor(posAccessor)
	if err != nil {
		return nil, fmt.Errorf("failed to read positions: %w", err)
	}
	positions := toVec3(raw)

	var indices []uint32
	if prim.Indices != nil {
		indices, err = parser.ReadIndicesAccessor(*prim.Indices)
		if err != nil {
			return nil, fmt.Errorf("failed to read indices: %w", err)
		}
		for _, idx := range indices {
			if int(idx) >= len(positions) {
				return nil, fmt.Errorf("index %d out of range for %d vertices", idx, len(positions))
			}
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	var normals []mgl32.Vec3
	if normalAccessor, ok := prim.Attributes["NORMAL"]; ok {
		raw, err := parser.ReadVec3Accessor(normalAccessor)
		if err != nil {
			return nil, fmt.Errorf("failed to read normals: %w", err)
		}
		if len(raw) == len(positions) {
			normals = toVec3(raw)
		}
	}
	if normals == nil {
		normals = generateNormals(positions, indices)
	}

	return &Surface{Positions: positions, Normals: normals, Indices: indices}, nil
}

func toVec3(raw [][3]float32) []mgl32.Vec3 {
	out := make([]mgl32.Vec3, len(raw))
	for i, v := range raw {
		out[i] = mgl32.Vec3(v)
	}
	return out
}
