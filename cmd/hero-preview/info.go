package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/Carmen-Shannon/oxy-hero/engine/loader"
)

// writeInfo loads the mesh at path and prints its statistics to w.
func writeInfo(w io.Writer, l loader.Loader, path string, modelScale float64) error {
	mesh, err := l.Load(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	size := mesh.Size()
	fmt.Fprintf(tw, "Mesh:\t%s\n", mesh.Name)
	fmt.Fprintf(tw, "Source:\t%s\n", path)
	fmt.Fprintf(tw, "Surfaces:\t%d\n", len(mesh.Surfaces))
	fmt.Fprintf(tw, "Vertices:\t%d\n", mesh.VertexCount())
	fmt.Fprintf(tw, "Triangles:\t%d\n", mesh.TriangleCount())
	fmt.Fprintf(tw, "Size:\t%.3f x %.3f x %.3f\n", size.X(), size.Y(), size.Z())
	fmt.Fprintf(tw, "Radius:\t%.3f (%.3f at modelScale %.2f)\n", mesh.Radius(), float64(mesh.Radius())*modelScale, modelScale)
	for i, s := range mesh.Surfaces {
		name := s.Name
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(tw, "  [%d] %s\t%d vertices, %d triangles\n", i, name, len(s.Positions), len(s.Indices)/3)
	}
	return tw.Flush()
}
