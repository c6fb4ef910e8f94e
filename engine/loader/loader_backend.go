package loader

import "io"

// loaderBackend decodes one file format into a Mesh.
// Concrete implementations (e.g., gltfLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Load decodes the file at path.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - *Mesh: the decoded, recentred mesh
	//   - error: error if loading fails
	Load(path string) (*Mesh, error)

	// LoadReader decodes a stream. Relative resources resolve against baseDir.
	//
	// Parameters:
	//   - name: the mesh name
	//   - r: the reader providing file data
	//   - baseDir: directory for sibling resources
	//
	// Returns:
	//   - *Mesh: the decoded, recentred mesh
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader, baseDir string) (*Mesh, error)
}
