package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-hero/engine/hero"
	"github.com/Carmen-Shannon/oxy-hero/engine/input"
	"github.com/Carmen-Shannon/oxy-hero/engine/profiler"
	"github.com/Carmen-Shannon/oxy-hero/engine/renderer"
	"github.com/Carmen-Shannon/oxy-hero/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables frame statistics.
//
// Parameters:
//   - enabled: if true, enables profiling
//   - options: options for the profiler
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool, options ...profiler.ProfilerBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
		if len(options) > 0 {
			e.profiler = profiler.NewProfiler(options...)
		}
	}
}

// WithWindow sets the window the engine presents to and reads host events from.
// Without a window the engine runs headless.
//
// Parameters:
//   - w: the window
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithInput replaces the shared input state, for hosts that write events themselves.
//
// Parameters:
//   - s: the input state
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithInput(s *input.State) EngineBuilderOption {
	return func(e *engine) {
		e.input = s
	}
}

// WithStageOptions adds options applied to every Stage the engine mounts.
// Input, reload and listener options are always supplied by the engine.
//
// Parameters:
//   - options: the stage options
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithStageOptions(options ...hero.StageBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.stageOptions = append(e.stageOptions, options...)
	}
}

// WithRendererFactory sets how a renderer is created for each mount.
// A nil factory with no window runs the scene without drawing.
//
// Parameters:
//   - factory: returns a fresh renderer
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRendererFactory(factory func() (renderer.Renderer, error)) EngineBuilderOption {
	return func(e *engine) {
		e.newRenderer = factory
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap.
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
	}
}

// WithScrollLength sets how far the host can scroll, which is also the trigger region.
//
// Parameters:
//   - length: the scrollable extent in host units
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScrollLength(length float64) EngineBuilderOption {
	return func(e *engine) {
		if length > 0 {
			e.scrollLength = length
		}
	}
}

// WithScrollStep sets how far one wheel notch scrolls.
//
// Parameters:
//   - step: host units per notch
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScrollStep(step float64) EngineBuilderOption {
	return func(e *engine) {
		if step > 0 {
			e.scrollStep = step
		}
	}
}

// WithRecoverInterval sets how often a lost device is probed for recovery.
//
// Parameters:
//   - d: the retry interval
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRecoverInterval(d time.Duration) EngineBuilderOption {
	return func(e *engine) {
		if d > 0 {
			e.recoverInterval = d.Seconds()
		}
	}
}
