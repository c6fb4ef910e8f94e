package loader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-hero/common"
)

var (
	// ErrNotFound is returned when the mesh file does not exist.
	ErrNotFound = errors.New("mesh not found")
	// ErrUnsupported is returned for file formats or glTF features the loader cannot decode.
	ErrUnsupported = errors.New("unsupported mesh")
)

// Result is the outcome of an asynchronous load.
type Result struct {
	Path string
	Mesh *Mesh
	Err  error
}

// cacheEntry is one path's load. done is closed once mesh/err are set.
type cacheEntry struct {
	done chan struct{}
	mesh *Mesh
	err  error
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu    sync.Mutex
	cache map[string]*cacheEntry

	backends map[string]loaderBackend

	workers int
	pool    worker.DynamicWorkerPool
	taskID  atomic.Int64
}

// Loader fetches and decodes the hero mesh. Every path is decoded at most once per
// process: later requests, including those from a remounted scene, share the cached
// mesh or the cached failure.
type Loader interface {
	// Load decodes the mesh at path, or returns the cached result.
	// Concurrent calls for the same path share one decode.
	//
	// Parameters:
	//   - path: a .glb/.gltf path, or PlaceholderPath
	//
	// Returns:
	//   - *Mesh: the mesh
	//   - error: ErrNotFound, ErrUnsupported or a decode error
	Load(path string) (*Mesh, error)

	// LoadAsync decodes the mesh on the loader's worker pool. The returned channel
	// receives exactly one Result and is never closed, so callers may poll it.
	//
	// Parameters:
	//   - path: a .glb/.gltf path, or PlaceholderPath
	//
	// Returns:
	//   - <-chan Result: receives the result once available
	LoadAsync(path string) <-chan Result

	// LoadReader decodes a glTF or GLB stream and caches it under name.
	//
	// Parameters:
	//   - name: the cache key
	//   - r: the stream
	//
	// Returns:
	//   - *Mesh: the mesh
	//   - error: error if decoding fails
	LoadReader(name string, r io.Reader) (*Mesh, error)

	// Get returns a completed cache entry without loading.
	//
	// Parameters:
	//   - path: the cache key
	//
	// Returns:
	//   - *Mesh: the cached mesh, or nil
	//   - bool: true if a successful load is cached
	Get(path string) (*Mesh, bool)

	// Forget drops a cache entry so the next request decodes again.
	Forget(path string)
}

var _ Loader = &loader{}

// NewLoader creates a Loader with the glTF backend registered for .gltf and .glb.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - Loader: the loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	gltf := newGLTFLoaderBackend()
	l := &loader{
		cache: make(map[string]*cacheEntry),
		backends: map[string]loaderBackend{
			".gltf": gltf,
			".glb":  gltf,
		},
		workers: 2,
	}
	for _, option := range options {
		option(l)
	}
	if l.pool == nil {
		l.pool = worker.NewDynamicWorkerPool(l.workers, 256, 1*time.Second)
	}
	return l
}

func (l *loader) Load(path string) (*Mesh, error) {
	e, owner := l.claim(path)
	if !owner {
		<-e.done
		return e.mesh, e.err
	}

	start := time.Now()
	e.mesh, e.err = l.decode(path)
	close(e.done)

	if e.err != nil {
		common.Logger().Warn("mesh load failed", "path", path, "error", e.err)
	} else {
		common.Logger().Info("mesh loaded", "path", path,
			"surfaces", len(e.mesh.Surfaces),
			"vertices", e.mesh.VertexCount(),
			"triangles", e.mesh.TriangleCount(),
			"elapsed", time.Since(start))
	}
	return e.mesh, e.err
}

func (l *loader) LoadAsync(path string) <-chan Result {
	ch := make(chan Result, 1)

	if e := l.finished(path); e != nil {
		ch <- Result{Path: path, Mesh: e.mesh, Err: e.err}
		return ch
	}

	id := int(l.taskID.Add(1))
	l.pool.SubmitTask(worker.Task{
		ID: id,
		Do: func() (any, error) {
			m, err := l.Load(path)
			ch <- Result{Path: path, Mesh: m, Err: err}
			return m, err
		},
	})
	return ch
}

func (l *loader) LoadReader(name string, r io.Reader) (*Mesh, error) {
	e, owner := l.claim(name)
	if !owner {
		<-e.done
		return e.mesh, e.err
	}

	e.mesh, e.err = l.gltfBackend().LoadReader(name, r, ".")
	close(e.done)
	return e.mesh, e.err
}

func (l *loader) Get(path string) (*Mesh, bool) {
	e := l.finished(path)
	if e == nil || e.err != nil {
		return nil, false
	}
	return e.mesh, true
}

func (l *loader) Forget(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.cache, path)
}

// claim returns the cache entry for key and whether the caller must fill it.
func (l *loader) claim(key string) (*cacheEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.cache[key]; ok {
		return e, false
	}
	e := &cacheEntry{done: make(chan struct{})}
	l.cache[key] = e
	return e, true
}

// finished returns the entry for key if its load has completed, or nil.
func (l *loader) finished(key string) *cacheEntry {
	l.mu.Lock()
	e, ok := l.cache[key]
	l.mu.Unlock()
	if !ok {
		return nil
	}
	select {
	case <-e.done:
		return e
	default:
		return nil
	}
}

func (l *loader) decode(path string) (*Mesh, error) {
	if path == PlaceholderPath {
		return newPlaceholderMesh(), nil
	}

	ext := strings.ToLower(filepath.Ext(path))
	backend, ok := l.backends[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, path)
	}

	m, err := backend.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, path, err)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return m, nil
}

func (l *loader) gltfBackend() loaderBackend {
	return l.backends[".glb"]
}
