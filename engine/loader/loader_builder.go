package loader

import "github.com/Carmen-Shannon/automation/tools/worker"

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithWorkers sets the number of decode workers.
//
// Parameters:
//   - n: worker count; values below 1 are ignored
//
// Returns:
//   - LoaderBuilderOption: a function that applies the worker option to a loader
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithWorkerPool runs asynchronous loads on an existing pool instead of a private one.
//
// Parameters:
//   - pool: the worker pool
//
// Returns:
//   - LoaderBuilderOption: a function that applies the pool option to a loader
func WithWorkerPool(pool worker.DynamicWorkerPool) LoaderBuilderOption {
	return func(l *loader) {
		l.pool = pool
	}
}

// WithMesh pre-populates the cache with a decoded mesh.
//
// Parameters:
//   - key: the cache key
//   - mesh: the mesh
//
// Returns:
//   - LoaderBuilderOption: a function that applies the mesh option to a loader
func WithMesh(key string, mesh *Mesh) LoaderBuilderOption {
	return func(l *loader) {
		e := &cacheEntry{done: make(chan struct{}), mesh: mesh}
		close(e.done)
		l.cache[key] = e
	}
}
