package engine

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-hero/engine/hero"
	"github.com/Carmen-Shannon/oxy-hero/engine/loader"
	"github.com/Carmen-Shannon/oxy-hero/engine/renderer"
	"github.com/Carmen-Shannon/oxy-hero/engine/supervisor"
)

const tick = 1.0 / 60

type fakeTimer struct {
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

type fakeClock struct {
	now    time.Duration
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) supervisor.Timer {
	t := &fakeTimer{at: c.now + d, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now += d
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			t.fn()
		}
	}
}

type fakeRenderer struct {
	mu         sync.Mutex
	draws      int
	recovers   int
	releases   int
	loseNext   bool
	recoverErr error
}

func (r *fakeRenderer) Resize(int, int) {}

func (r *fakeRenderer) Draw(hero.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loseNext {
		r.loseNext = false
		return fmt.Errorf("%w: acquire failed", renderer.ErrSurfaceLost)
	}
	r.draws++
	return nil
}

func (r *fakeRenderer) Recover() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recovers++
	return r.recoverErr
}

func (r *fakeRenderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.releases++
}

type engineRig struct {
	engine    *engine
	clock     *fakeClock
	renderers []*fakeRenderer
	next      func() *fakeRenderer
	// failures is how many upcoming renderer creations fail.
	failures int
}

func newEngineRig(t *testing.T, opts ...EngineBuilderOption) *engineRig {
	t.Helper()
	card, err := loader.NewLoader().Load(loader.PlaceholderPath)
	if err != nil {
		t.Fatal(err)
	}
	r := &engineRig{clock: &fakeClock{}}
	r.next = func() *fakeRenderer { return &fakeRenderer{} }
	base := []EngineBuilderOption{
		WithStageOptions(
			hero.WithClock(r.clock),
			hero.WithLoader(loader.NewLoader(loader.WithMesh(loader.PlaceholderPath, card))),
		),
		WithRendererFactory(func() (renderer.Renderer, error) {
			if r.failures > 0 {
				r.failures--
				return nil, errors.New("no adapter")
			}
			fr := r.next()
			r.renderers = append(r.renderers, fr)
			return fr, nil
		}),
	}
	r.engine = NewEngine(append(base, opts...)...).(*engine)
	return r
}

func (r *engineRig) steps(t *testing.T, n int) {
	t.Helper()
	for range n {
		if err := r.engine.step(tick); err != nil {
			t.Fatalf("step: %v", err)
		}
	}
}

func TestStepTicksAndDraws(t *testing.T) {
	r := newEngineRig(t)
	if err := r.engine.mount(); err != nil {
		t.Fatal(err)
	}
	defer r.engine.unmount()

	var frames []hero.Frame
	r.engine.SetFrameCallback(func(f hero.Frame) { frames = append(frames, f) })
	r.steps(t, 10)

	if r.renderers[0].draws != 10 {
		t.Errorf("expected 10 draws, got %d", r.renderers[0].draws)
	}
	if len(frames) != 10 || frames[9].Tick != 10 {
		t.Errorf("expected frames numbered through 10, got %d frames", len(frames))
	}
	if !r.engine.attached.Load() {
		t.Error("expected input listeners attached while mounted")
	}
}

func TestSurfaceLossRecoversThenReloads(t *testing.T) {
	r := newEngineRig(t, WithRecoverInterval(500*time.Millisecond))
	if err := r.engine.mount(); err != nil {
		t.Fatal(err)
	}
	defer r.engine.unmount()

	first := r.renderers[0]
	first.loseNext = true
	r.steps(t, 1)
	if !r.engine.lost || r.engine.stage.ContextState() != supervisor.StateLost {
		t.Fatalf("expected lost context, got lost=%v state=%v", r.engine.lost, r.engine.stage.ContextState())
	}

	r.steps(t, 29)
	if first.recovers != 0 || first.draws != 0 {
		t.Fatalf("expected no draws or recovery before the interval, got draws=%d recovers=%d", first.draws, first.recovers)
	}
	r.steps(t, 2)
	if first.recovers != 1 || r.engine.lost {
		t.Fatalf("expected one successful recovery, got recovers=%d lost=%v", first.recovers, r.engine.lost)
	}

	r.clock.Advance(100 * time.Millisecond)
	r.steps(t, 1)
	if r.engine.Remounts() != 1 || len(r.renderers) != 2 {
		t.Fatalf("expected one reload with a fresh renderer, got remounts=%d renderers=%d", r.engine.Remounts(), len(r.renderers))
	}
	if first.releases != 1 {
		t.Errorf("expected the old renderer released once, got %d", first.releases)
	}
	if r.renderers[1].draws != 1 {
		t.Errorf("expected the new renderer to draw, got %d", r.renderers[1].draws)
	}
}

func TestSimulatedLossTimesOutToReload(t *testing.T) {
	r := newEngineRig(t)
	r.next = func() *fakeRenderer { return &fakeRenderer{recoverErr: errors.New("no adapter")} }
	if err := r.engine.mount(); err != nil {
		t.Fatal(err)
	}
	defer r.engine.unmount()

	r.engine.SimulateContextLoss()
	r.steps(t, 60)
	if !r.engine.lost {
		t.Fatal("expected the device to stay lost")
	}

	r.clock.Advance(3 * time.Second)
	r.steps(t, 1)
	if r.engine.Remounts() != 1 {
		t.Fatalf("expected a reload after the restore timeout, got %d", r.engine.Remounts())
	}
	if !r.engine.lost || r.engine.rend != nil || len(r.renderers) != 1 {
		t.Fatalf("expected the reload to carry the lost device, got lost=%v renderers=%d", r.engine.lost, len(r.renderers))
	}
	if !r.engine.stage.Mounted() {
		t.Fatal("expected a fresh Stage mounted while the device is gone")
	}

	r.steps(t, 32)
	if r.engine.lost || len(r.renderers) != 2 {
		t.Fatalf("expected a renderer created on the recover interval, got lost=%v renderers=%d", r.engine.lost, len(r.renderers))
	}
	r.steps(t, 1)
	if r.renderers[1].draws == 0 {
		t.Error("expected the new renderer to draw")
	}

	r.clock.Advance(10 * time.Second)
	r.steps(t, 1)
	if r.engine.Remounts() != 1 {
		t.Errorf("expected exactly one reload, got %d", r.engine.Remounts())
	}
}

func TestReloadSurvivesRendererCreationFailure(t *testing.T) {
	r := newEngineRig(t, WithRecoverInterval(500*time.Millisecond))
	if err := r.engine.mount(); err != nil {
		t.Fatal(err)
	}
	defer r.engine.unmount()

	r.renderers[0].loseNext = true
	r.steps(t, 32)
	if r.engine.lost {
		t.Fatal("expected the first renderer to recover")
	}

	r.failures = 2
	r.clock.Advance(100 * time.Millisecond)
	for range 40 {
		if err := r.engine.step(tick); err != nil {
			t.Fatalf("reload with no renderer stopped the loop: %v", err)
		}
	}
	if r.engine.Remounts() != 1 || !r.engine.stage.Mounted() {
		t.Fatalf("expected one reload with a mounted Stage, got remounts=%d", r.engine.Remounts())
	}
	if !r.engine.lost || r.engine.rend != nil || r.failures != 0 {
		t.Fatalf("expected headless retries, got lost=%v failures left=%d", r.engine.lost, r.failures)
	}

	r.steps(t, 32)
	if r.engine.lost || len(r.renderers) != 2 {
		t.Fatalf("expected a renderer once creation succeeds, got lost=%v renderers=%d", r.engine.lost, len(r.renderers))
	}
	r.steps(t, 1)
	if r.renderers[1].draws == 0 {
		t.Error("expected the new renderer to draw")
	}
	if r.engine.Remounts() != 1 {
		t.Errorf("expected no further reloads, got %d", r.engine.Remounts())
	}
}

func TestUnmountDetachesInput(t *testing.T) {
	r := newEngineRig(t)
	if err := r.engine.mount(); err != nil {
		t.Fatal(err)
	}
	r.engine.unmount()
	if r.engine.attached.Load() {
		t.Error("expected listeners detached after unmount")
	}
	if r.renderers[0].releases != 1 {
		t.Errorf("expected renderer released, got %d", r.renderers[0].releases)
	}
}

func TestMountFailureReleasesRenderer(t *testing.T) {
	r := newEngineRig(t, WithStageOptions(hero.WithListener(func() (func(), error) {
		return nil, errors.New("host refused")
	})))
	if err := r.engine.mount(); err == nil {
		t.Fatal("expected mount failure")
	}
	if r.renderers[0].releases != 1 || r.engine.rend != nil {
		t.Error("expected renderer released after a failed mount")
	}
}

func TestRunHeadlessUntilQuit(t *testing.T) {
	r := newEngineRig(t)
	e := r.engine

	var n int
	e.SetFrameCallback(func(hero.Frame) {
		n++
		if n == 5 {
			e.Quit()
		}
	})

	done := make(chan error, 1)
	go func() { done <- e.Run() }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Quit")
	}
	if r.renderers[0].releases != 1 {
		t.Errorf("expected renderer released on exit, got %d", r.renderers[0].releases)
	}
	e.Quit()
}

func TestSetRenderFrameLimit(t *testing.T) {
	e := NewEngine().(*engine)
	e.SetRenderFrameLimit(50)
	if e.renderFrameLimit != 20*time.Millisecond {
		t.Errorf("expected 20ms, got %v", e.renderFrameLimit)
	}
	e.SetRenderFrameLimit(0)
	if e.renderFrameLimit != 0 {
		t.Errorf("expected uncapped, got %v", e.renderFrameLimit)
	}
}
