package hero

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-hero/common"
	"github.com/Carmen-Shannon/oxy-hero/engine/animator"
	"github.com/Carmen-Shannon/oxy-hero/engine/camera"
	"github.com/Carmen-Shannon/oxy-hero/engine/config"
	"github.com/Carmen-Shannon/oxy-hero/engine/game_object"
	"github.com/Carmen-Shannon/oxy-hero/engine/input"
	"github.com/Carmen-Shannon/oxy-hero/engine/light"
	"github.com/Carmen-Shannon/oxy-hero/engine/loader"
	"github.com/Carmen-Shannon/oxy-hero/engine/scroll"
	"github.com/Carmen-Shannon/oxy-hero/engine/supervisor"
	"github.com/Carmen-Shannon/oxy-hero/engine/tween"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrMounted is returned by Mount on a stage that is already mounted.
	ErrMounted = errors.New("stage already mounted")
	// ErrUnmounted is returned by Mount on a stage that has been unmounted.
	// A stage is single-use; a remount builds a new Stage.
	ErrUnmounted = errors.New("stage unmounted")
)

// heroObjectID is the tween key namespace of the single hero object.
const heroObjectID = 1

// Stage owns one mount of the hero scene: the object, camera, lights, tween manager,
// phase machine, scroll signal and context-loss supervisor. It is driven by Tick from
// a single render goroutine; only DeviceLost and DeviceRestored may be called from others.
type Stage struct {
	cfg      config.Tunables
	source   input.Source
	loader   loader.Loader
	meshPath string
	reload   func()
	clock    supervisor.Clock
	attach   []func() (func(), error)

	mounted   bool
	unmounted bool
	release   []func()

	obj         game_object.GameObject
	cam         camera.Camera
	mgr         *tween.Manager
	machine     *animator.Machine
	signal      *scroll.Signal
	entrance    *animator.Entrance
	orientation *animator.Orientation
	reactive    *animator.Reactive
	rig         *light.Rig
	shadow      *light.ContactShadow
	sup         supervisor.Supervisor

	meshCh     <-chan loader.Result
	mesh       *loader.Mesh
	meshErr    error
	visible    bool
	background mgl32.Vec3
	ticks      uint64
}

// NewStage creates an unmounted Stage.
//
// Parameters:
//   - options: functional options (config, input source, loader, mesh path, reload action, clock)
//
// Returns:
//   - *Stage: the stage
func NewStage(options ...StageBuilderOption) *Stage {
	s := &Stage{
		cfg:      config.Default(),
		meshPath: loader.PlaceholderPath,
		clock:    supervisor.RealClock(),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.source == nil {
		s.source = input.NewState()
	}
	return s
}

// Mount builds the scene and acquires its resources in order: context-loss
// supervisor, entrance timeline, scroll binding slot, mesh request and host listeners.
// If any step fails, everything already acquired is released and the stage is unusable.
// On success the object is already in its hidden start pose.
//
// Returns:
//   - error: ErrMounted, ErrUnmounted, a config error, or a listener attach error
func (s *Stage) Mount() error {
	switch {
	case s.unmounted:
		return ErrUnmounted
	case s.mounted:
		return ErrMounted
	}
	if err := s.cfg.Validate(); err != nil {
		return err
	}
	bg, err := common.ParseHexColor(s.cfg.Background)
	if err != nil {
		return fmt.Errorf("%w: background: %w", config.ErrInvalid, err)
	}
	s.background = bg
	s.build()

	steps := []func() (func(), error){
		s.acquireSupervisor,
		s.acquireEntrance,
		s.acquireOrientation,
		s.acquireMesh,
	}
	steps = append(steps, s.attach...)

	for _, step := range steps {
		release, err := step()
		if err != nil {
			s.releaseAll()
			s.unmounted = true
			common.Logger().Error("stage mount failed", "error", err)
			return fmt.Errorf("mount: %w", err)
		}
		if release != nil {
			s.release = append(s.release, release)
		}
	}

	s.mounted = true
	s.visible = s.source.Snapshot().Visible
	if !s.visible {
		s.orientation.Suspend()
	}
	common.Logger().Info("stage mounted", "mesh", s.meshPath, "intro_duration", s.cfg.IntroDuration)
	return nil
}

// build creates the scene graph from the tunables. Nothing here needs releasing.
func (s *Stage) build() {
	c := s.cfg
	s.obj = game_object.NewGameObject(game_object.WithID(heroObjectID))
	s.cam = camera.NewCamera(
		camera.WithPosition(mgl32.Vec3{0, 0, float32(c.CameraDistance)}),
		camera.WithFovDegrees(float32(c.CameraFov)))
	s.mgr = tween.NewManager()
	s.machine = animator.NewMachine()
	s.signal = scroll.NewSignal(c.Scrub)

	s.reactive = animator.NewReactive(s.obj, s.cam, s.machine, animator.ReactiveParams{
		FloatSpeed:      float32(c.FloatSpeed),
		FloatAmplitude:  float32(c.FloatAmplitude),
		FloatBlend:      float32(c.FloatBlend),
		TiltInfluence:   float32(c.TiltInfluence),
		TiltLerp:        float32(c.TiltLerp),
		HoverDistance:   float32(c.HoverDistance),
		HoverLerp:       float32(c.HoverLerp),
		CameraInfluence: float32(c.CameraInfluence),
		CameraLerp:      float32(c.CameraLerp),
	})

	rp := light.DefaultRigParams()
	rp.Follow = float32(c.SpotlightFollow)
	rp.PositionLerp = float32(c.SpotlightLerp)
	rp.DefaultIntensity = float32(c.SpotlightDefaultIntensity)
	rp.HoverIntensity = float32(c.SpotlightHoverIntensity)
	rp.IntensityLerp = float32(c.IntensityLerp)
	rp.Angle = float32(c.SpotlightAngle)
	rp.Penumbra = float32(c.SpotlightPenumbra)
	rp.AmbientIntensity = float32(c.AmbientIntensity)
	s.rig = light.NewRig(rp)

	sp := light.DefaultShadowParams()
	sp.PlaneY = float32(c.ShadowPlaneY)
	sp.Opacity = float32(c.ShadowOpacity)
	sp.Scale = float32(c.ShadowScale)
	sp.Blur = float32(c.ShadowBlur)
	sp.Far = float32(c.ShadowFar)
	sp.Resolution = c.ShadowResolution
	sp.Interval = c.ShadowInterval
	s.shadow = light.NewContactShadow(sp)
}

func (s *Stage) acquireSupervisor() (func(), error) {
	s.sup = supervisor.NewSupervisor(s.reload,
		supervisor.WithClock(s.clock),
		supervisor.WithRestoreTimeout(config.Seconds(s.cfg.RestoreTimeout)),
		supervisor.WithReloadDelay(config.Seconds(s.cfg.ReloadDelay)))
	return s.sup.Close, nil
}

func (s *Stage) acquireEntrance() (func(), error) {
	s.entrance = animator.NewEntrance(s.obj, s.mgr, s.machine,
		animator.WithDelay(s.cfg.IntroDelay),
		animator.WithLength(s.cfg.IntroDuration),
		animator.WithSettleHook(func() { s.orientation.Install() }))
	s.entrance.Prepare()
	s.entrance.Start()
	return func() {
		s.entrance.Cancel()
		s.mgr.KillAll()
	}, nil
}

func (s *Stage) acquireOrientation() (func(), error) {
	s.orientation = animator.NewOrientation(s.obj, s.mgr, s.machine, s.signal,
		animator.WithThresholds(animator.Thresholds{
			FlipStart:  s.cfg.FlipStart,
			FlipEnd:    s.cfg.FlipEnd,
			FlipReturn: s.cfg.FlipReturn,
		}),
		animator.WithFlipDuration(s.cfg.FlipDuration),
		animator.WithRotationSpeed(s.cfg.RotationSpeed))
	return s.orientation.Teardown, nil
}

func (s *Stage) acquireMesh() (func(), error) {
	if s.meshPath == "" {
		return nil, nil
	}
	if s.loader == nil {
		s.loader = sharedLoader()
	}
	s.meshCh = s.loader.LoadAsync(s.meshPath)
	return func() { s.meshCh = nil }, nil
}

// releaseAll runs the acquired releases in reverse order.
func (s *Stage) releaseAll() {
	for i := len(s.release) - 1; i >= 0; i-- {
		s.release[i]()
	}
	s.release = nil
}

// Unmount releases everything Mount acquired. After Unmount no tween, binding or
// timer mutates the scene and Tick returns the zero Frame. Safe to call more than once.
func (s *Stage) Unmount() {
	if s.unmounted {
		return
	}
	s.unmounted = true
	if !s.mounted {
		return
	}
	s.releaseAll()
	common.Logger().Info("stage unmounted", "ticks", s.ticks, "phase", s.machine.Phase().String())
}

// Tick advances the scene by dt seconds and returns the frame to draw. Input is read
// once, up front, so every system in the tick sees the same snapshot. While the
// host is hidden nothing advances.
//
// Parameters:
//   - dt: seconds since the previous tick
//
// Returns:
//   - Frame: the frame, or the zero Frame when not mounted
func (s *Stage) Tick(dt float64) Frame {
	if !s.mounted || s.unmounted {
		return Frame{}
	}
	snap := s.source.Snapshot()
	s.ticks++

	if snap.Visible != s.visible {
		s.visible = snap.Visible
		if s.visible {
			s.orientation.Resume()
		} else {
			s.orientation.Suspend()
		}
	}

	if s.visible {
		s.signal.Advance(snap.Scroll, snap.Region, dt)
		s.mgr.Advance(dt)
		s.reactive.Update(snap.Pointer, snap.Hovered, s.entrance.Baseline(), dt)
		s.orientation.Drift(dt)
		if snap.Width > 0 && snap.Height > 0 {
			s.cam.SetAspect(float32(snap.Width / snap.Height))
		}
		s.rig.Update(snap.Pointer, snap.Hovered)
		s.shadow.Update(s.obj.Position(), dt)
	}
	s.receiveMesh()

	return s.frame()
}

// receiveMesh polls the pending mesh request without blocking.
func (s *Stage) receiveMesh() {
	if s.meshCh == nil {
		return
	}
	select {
	case res := <-s.meshCh:
		s.meshCh = nil
		if res.Err != nil {
			s.meshErr = res.Err
			common.Logger().Warn("hero mesh unavailable, continuing without it", "path", res.Path, "error", res.Err)
			return
		}
		s.mesh = res.Mesh
		s.obj.SetSurfaceCount(len(res.Mesh.Surfaces))
	default:
	}
}

func (s *Stage) frame() Frame {
	obj := s.obj.Snapshot()
	ms := float32(s.cfg.ModelScale)
	return Frame{
		Tick:           s.ticks,
		Object:         obj,
		Model:          obj.Model.Mul4(mgl32.Scale3D(ms, ms, ms)),
		CameraPosition: s.cam.Position(),
		View:           s.cam.ViewMatrix(),
		Projection:     s.cam.ProjectionMatrix(),
		Lights:         s.rig.State(),
		Shadow:         s.shadow.State(),
		Phase:          s.machine.Phase(),
		Progress:       s.signal.Progress(),
		Mesh:           s.mesh,
		Drawable:       s.sup.CanDraw(),
		Background:     s.background,
	}
}

// DeviceLost reports a render device loss to the supervisor.
//
// Parameters:
//   - reason: a description for the log
//
// Returns:
//   - bool: true if the loss was accepted (the stage was Active)
func (s *Stage) DeviceLost(reason string) bool {
	if s.sup == nil {
		return false
	}
	ev := &supervisor.LossEvent{Reason: reason}
	s.sup.DeviceLost(ev)
	return ev.DefaultPrevented()
}

// DeviceRestored reports that the render device is usable again.
func (s *Stage) DeviceRestored() {
	if s.sup != nil {
		s.sup.DeviceRestored()
	}
}

// ContextState returns the supervisor state, or Active before Mount.
func (s *Stage) ContextState() supervisor.State {
	if s.sup == nil {
		return supervisor.Active
	}
	return s.sup.State()
}

// Mounted reports whether the stage is mounted and not yet unmounted.
func (s *Stage) Mounted() bool { return s.mounted && !s.unmounted }

// Phase returns the current animation phase.
func (s *Stage) Phase() animator.Phase {
	if s.machine == nil {
		return animator.Preparing
	}
	return s.machine.Phase()
}

// Mesh returns the mesh if it has arrived.
func (s *Stage) Mesh() *loader.Mesh { return s.mesh }

// MeshErr returns the mesh load failure, if any.
func (s *Stage) MeshErr() error { return s.meshErr }

// Config returns the tunables the stage was built with.
func (s *Stage) Config() config.Tunables { return s.cfg }
