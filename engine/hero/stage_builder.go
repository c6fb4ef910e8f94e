package hero

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-hero/engine/config"
	"github.com/Carmen-Shannon/oxy-hero/engine/input"
	"github.com/Carmen-Shannon/oxy-hero/engine/loader"
	"github.com/Carmen-Shannon/oxy-hero/engine/supervisor"
)

// StageBuilderOption is a function that configures a Stage during construction.
type StageBuilderOption func(*Stage)

// sharedLoader is the process-wide mesh cache used when no loader is supplied,
// so a remounted stage reuses the mesh fetched by the previous one.
var sharedLoader = sync.OnceValue(func() loader.Loader {
	return loader.NewLoader()
})

// WithConfig sets the tunables.
//
// Parameters:
//   - cfg: the tunables; validated by Mount
//
// Returns:
//   - StageBuilderOption: a function that applies the config option to a Stage
func WithConfig(cfg config.Tunables) StageBuilderOption {
	return func(s *Stage) {
		s.cfg = cfg
	}
}

// WithInput sets the event-driven input source read once per tick.
//
// Parameters:
//   - src: the input source
//
// Returns:
//   - StageBuilderOption: a function that applies the input option to a Stage
func WithInput(src input.Source) StageBuilderOption {
	return func(s *Stage) {
		s.source = src
	}
}

// WithLoader sets the mesh loader.
//
// Parameters:
//   - l: the loader
//
// Returns:
//   - StageBuilderOption: a function that applies the loader option to a Stage
func WithLoader(l loader.Loader) StageBuilderOption {
	return func(s *Stage) {
		s.loader = l
	}
}

// WithMeshPath sets the mesh to request on mount. An empty path mounts without a mesh.
//
// Parameters:
//   - path: a .glb/.gltf path or loader.PlaceholderPath
//
// Returns:
//   - StageBuilderOption: a function that applies the mesh path option to a Stage
func WithMeshPath(path string) StageBuilderOption {
	return func(s *Stage) {
		s.meshPath = path
	}
}

// WithReload sets the action the context-loss supervisor runs at most once.
// It may be called from a timer goroutine.
//
// Parameters:
//   - fn: the reload action
//
// Returns:
//   - StageBuilderOption: a function that applies the reload option to a Stage
func WithReload(fn func()) StageBuilderOption {
	return func(s *Stage) {
		s.reload = fn
	}
}

// WithClock sets the clock driving the supervisor's timers.
//
// Parameters:
//   - c: the clock
//
// Returns:
//   - StageBuilderOption: a function that applies the clock option to a Stage
func WithClock(c supervisor.Clock) StageBuilderOption {
	return func(s *Stage) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithListener adds a host listener acquired as the last step of Mount. attach
// registers the listener and returns its detach function, which Unmount calls.
// An attach error aborts the mount and releases everything acquired before it.
//
// Parameters:
//   - attach: registers the listener
//
// Returns:
//   - StageBuilderOption: a function that applies the listener option to a Stage
func WithListener(attach func() (detach func(), err error)) StageBuilderOption {
	return func(s *Stage) {
		s.attach = append(s.attach, attach)
	}
}
