package engine

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-hero/common"
	"github.com/Carmen-Shannon/oxy-hero/engine/hero"
	"github.com/Carmen-Shannon/oxy-hero/engine/input"
	"github.com/Carmen-Shannon/oxy-hero/engine/profiler"
	"github.com/Carmen-Shannon/oxy-hero/engine/renderer"
	"github.com/Carmen-Shannon/oxy-hero/engine/scroll"
	"github.com/Carmen-Shannon/oxy-hero/engine/window"
)

// engine implements the Engine interface.
// Coordinates the window thread and the render goroutine.
type engine struct {
	wg sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once

	window window.Window
	input  *input.State

	stageOptions []hero.StageBuilderOption
	newRenderer  func() (renderer.Renderer, error)

	// Owned by the render goroutine once Run starts.
	stage     *hero.Stage
	rend      renderer.Renderer
	lost      bool
	recoverIn float64

	remounts        atomic.Int32
	attached        atomic.Bool
	reloadRequested atomic.Bool
	lossRequested   atomic.Bool
	pendingSize     atomic.Pointer[[2]int]

	profiler         *profiler.Profiler
	profilingEnabled bool

	frameCallback    func(frame hero.Frame)
	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
	scrollLength     float64       // host units spanned by the hero section
	scrollStep       float64       // host units per wheel notch
	recoverInterval  float64       // seconds between device recovery attempts
}

// Engine hosts one hero scene: it owns the shared input state, mounts the Stage, ticks it
// once per rendered frame and hands each frame to the renderer.
//
// A lost render surface is reported to the Stage's supervisor and recovery is retried
// periodically. When the supervisor decides a reload is needed the Stage and renderer are
// torn down and a fresh pair is mounted.
type Engine interface {
	// Window returns the underlying window, or nil for a headless engine.
	Window() window.Window

	// Input returns the shared input state written by host events.
	Input() *input.State

	// EnableProfiler enables frame statistics at Debug level.
	EnableProfiler()

	// DisableProfiler disables frame statistics.
	DisableProfiler()

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// SetFrameCallback registers a function called with every frame after it is drawn.
	// It runs on the render goroutine.
	//
	// Parameters:
	//   - callback: the function to call
	SetFrameCallback(callback func(frame hero.Frame))

	// SimulateContextLoss makes the next frame behave as though the render surface was lost.
	// Safe to call from any goroutine.
	SimulateContextLoss()

	// Remounts returns how many times the scene has been reloaded.
	Remounts() int

	// Run mounts the scene and blocks until the window closes or Quit is called.
	//
	// Returns:
	//   - error: a mount error, or the error that stopped the render loop
	Run() error

	// Quit signals the render goroutine to stop. Safe to call multiple times.
	Quit()
}

// NewEngine creates a new Engine with the provided options.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		quitChannel:     make(chan struct{}),
		input:           input.NewState(),
		profiler:        profiler.NewProfiler(),
		scrollLength:    2400,
		scrollStep:      60,
		recoverInterval: 0.5,
	}

	for _, opt := range options {
		opt(e)
	}

	e.input.SetRegion(scroll.Region{Top: 0, Bottom: e.scrollLength})
	if e.window != nil {
		e.input.SetViewport(float64(e.window.Width()), float64(e.window.Height()))
		if e.newRenderer == nil {
			w := e.window
			e.newRenderer = func() (renderer.Renderer, error) {
				return renderer.NewRenderer(renderer.BackendTypeWGPU, w)
			}
		}
		e.bindWindow()
	}

	return e
}

// bindWindow installs the window callbacks once. Pointer, hover and wheel events only reach
// the input state while a mounted Stage has its listeners attached.
func (e *engine) bindWindow() {
	e.window.SetUpdateCallback(func() {
		select {
		case <-e.quitChannel:
			_ = e.window.Close()
		default:
		}
	})
	e.window.SetResizeCallback(func(width, height int) {
		e.input.SetViewport(float64(width), float64(height))
		e.pendingSize.Store(&[2]int{width, height})
	})
	e.window.SetVisibilityCallback(e.input.SetVisible)
	e.window.SetMouseMoveCallback(func(x, y float64) {
		if e.attached.Load() {
			e.input.MovePointer(x, y)
		}
	})
	e.window.SetHoverCallback(func(hovered bool) {
		if e.attached.Load() {
			e.input.SetHovered(hovered)
		}
	})
	e.window.SetScrollCallback(func(delta float32) {
		if e.attached.Load() {
			e.input.ScrollBy(-float64(delta)*e.scrollStep, e.scrollLength)
		}
	})
	e.window.SetKeyDownCallback(func(keyCode uint32) {
		if keyCode == common.KeyF9 {
			e.SimulateContextLoss()
		}
	})
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Input() *input.State {
	return e.input
}

func (e *engine) Run() error {
	if err := e.mount(); err != nil {
		return err
	}
	var loopErr error
	e.handle(&loopErr)
	if e.window != nil {
		e.window.ProcessMessages()
		e.signalQuit()
	}
	e.wg.Wait()
	e.unmount()
	return loopErr
}

// Quit signals all engine goroutines to stop.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// handle launches the render and quit goroutines.
func (e *engine) handle(loopErr *error) {
	e.wg.Add(2)
	go e.handleRender(loopErr)
	go e.handleQuit()
}

// handleRender runs the uncapped (or frame-limited) render loop in its own goroutine.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleRender(loopErr *error) {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			common.Logger().Error("render goroutine recovered from panic", "panic", r)
			*loopErr = fmt.Errorf("render loop panic: %v", r)
			e.signalQuit()
		}
	}()

	lastRender := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
			now := time.Now()
			dt := now.Sub(lastRender).Seconds()
			lastRender = now

			if err := e.step(dt); err != nil {
				common.Logger().Error("render loop stopped", "error", err)
				*loopErr = err
				e.signalQuit()
				return
			}

			if e.profilingEnabled && e.profiler != nil {
				e.profiler.Tick()
			}

			if e.renderFrameLimit > 0 {
				elapsed := time.Since(lastRender)
				if remaining := e.renderFrameLimit - elapsed; remaining > 0 {
					time.Sleep(remaining)
				}
			}
		}
	}
}

// handleQuit blocks until the quit channel is closed, then decrements the WaitGroup.
func (e *engine) handleQuit() {
	defer e.wg.Done()
	<-e.quitChannel
}

// step runs one render-loop iteration: pending reload, resize and loss requests first,
// then one Stage tick and one draw.
func (e *engine) step(dt float64) error {
	if e.reloadRequested.Swap(false) {
		deviceLost := e.lost
		e.unmount()
		e.remounts.Add(1)
		if err := e.remount(deviceLost); err != nil {
			return fmt.Errorf("reload: %w", err)
		}
		common.Logger().Info("scene reloaded", "remounts", e.remounts.Load())
	}
	if size := e.pendingSize.Swap(nil); size != nil && e.rend != nil {
		e.rend.Resize(size[0], size[1])
	}
	if e.lossRequested.Swap(false) && !e.lost {
		e.loseDevice("simulated")
	}

	frame := e.stage.Tick(dt)

	switch {
	case e.lost:
		e.tryRecover(dt)
	case e.rend != nil:
		err := e.rend.Draw(frame)
		if errors.Is(err, renderer.ErrSurfaceLost) {
			e.loseDevice(err.Error())
		} else if err != nil {
			common.Logger().Warn("draw failed", "tick", frame.Tick, "error", err)
		}
	}

	if e.frameCallback != nil {
		e.frameCallback(frame)
	}
	return nil
}

func (e *engine) loseDevice(reason string) {
	e.lost = true
	e.recoverIn = e.recoverInterval
	e.stage.DeviceLost(reason)
}

func (e *engine) tryRecover(dt float64) {
	e.recoverIn -= dt
	if e.recoverIn > 0 {
		return
	}
	e.recoverIn = e.recoverInterval
	if e.rend == nil && e.newRenderer != nil {
		r, err := e.newRenderer()
		if err != nil {
			common.Logger().Debug("renderer creation failed", "error", err)
			return
		}
		e.rend = r
		e.lost = false
		common.Logger().Info("renderer created after reload")
		return
	}
	if e.rend != nil {
		if err := e.rend.Recover(); err != nil {
			common.Logger().Debug("device recovery failed", "error", err)
			return
		}
	}
	e.lost = false
	e.stage.DeviceRestored()
}

// mount builds a renderer and a Stage and mounts the Stage. On failure nothing stays acquired.
func (e *engine) mount() error {
	if e.newRenderer != nil {
		r, err := e.newRenderer()
		if err != nil {
			return fmt.Errorf("renderer: %w", err)
		}
		e.rend = r
	}
	return e.mountStage()
}

// remount mounts a fresh Stage after a reload. If the device never came back, or a renderer
// cannot be created, the Stage runs without one and creation is retried every recover interval.
func (e *engine) remount(deviceLost bool) error {
	if e.newRenderer != nil && !deviceLost {
		r, err := e.newRenderer()
		if err != nil {
			common.Logger().Warn("renderer unavailable after reload, retrying", "error", err)
		} else {
			e.rend = r
		}
	}
	if err := e.mountStage(); err != nil {
		return err
	}
	if e.newRenderer != nil && e.rend == nil {
		e.lost = true
		e.recoverIn = e.recoverInterval
	}
	return nil
}

func (e *engine) mountStage() error {
	opts := append(slices.Clone(e.stageOptions),
		hero.WithInput(e.input),
		hero.WithReload(func() { e.reloadRequested.Store(true) }),
		hero.WithListener(e.attachInput),
	)
	st := hero.NewStage(opts...)
	if err := st.Mount(); err != nil {
		if e.rend != nil {
			e.rend.Release()
			e.rend = nil
		}
		return err
	}
	e.stage = st
	e.lost = false
	return nil
}

func (e *engine) unmount() {
	if e.stage != nil {
		e.stage.Unmount()
	}
	if e.rend != nil {
		e.rend.Release()
		e.rend = nil
	}
}

func (e *engine) attachInput() (func(), error) {
	e.attached.Store(true)
	return func() { e.attached.Store(false) }, nil
}

func (e *engine) SimulateContextLoss() {
	e.lossRequested.Store(true)
}

func (e *engine) Remounts() int {
	return int(e.remounts.Load())
}

// EnableProfiler enables frame statistics at Debug level.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables frame statistics.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetFrameCallback(callback func(frame hero.Frame)) {
	e.frameCallback = callback
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}
