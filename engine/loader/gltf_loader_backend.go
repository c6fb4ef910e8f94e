package loader

import "io"

// gltfLoaderBackendImpl is the loaderBackend for glTF and GLB files.
type gltfLoaderBackendImpl struct{}

var _ loaderBackend = &gltfLoaderBackendImpl{}

func newGLTFLoaderBackend() loaderBackend {
	return &gltfLoaderBackendImpl{}
}

func (b *gltfLoaderBackendImpl) Load(path string) (*Mesh, error) {
	p := newGLTFParser()
	if err := p.Parse(path); err != nil {
		return nil, err
	}
	return extractMesh(p, path)
}

func (b *gltfLoaderBackendImpl) LoadReader(name string, r io.Reader, baseDir string) (*Mesh, error) {
	p := newGLTFParser()
	if err := p.ParseReader(r, baseDir); err != nil {
		return nil, err
	}
	return extractMesh(p, name)
}
