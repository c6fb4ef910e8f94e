package main

import (
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/Carmen-Shannon/oxy-hero/engine/game_object"
	"github.com/Carmen-Shannon/oxy-hero/engine/hero"
	"github.com/Carmen-Shannon/oxy-hero/engine/input"
	"github.com/Carmen-Shannon/oxy-hero/engine/light"
	"github.com/Carmen-Shannon/oxy-hero/engine/loader"
	"github.com/Carmen-Shannon/oxy-hero/engine/renderer"
	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl32"
)

type fakeControls struct {
	losses int
	quits  int
}

func (c *fakeControls) SimulateContextLoss() { c.losses++ }
func (c *fakeControls) Quit()                { c.quits++ }
func (c *fakeControls) Remounts() int        { return 2 }

func newSimScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	s.SetSize(40, 11)
	t.Cleanup(s.Fini)
	return s
}

func newTestHost(t *testing.T) (*host, *fakeControls) {
	t.Helper()
	ctl := &fakeControls{}
	h := &host{
		screen:       newSimScreen(t),
		input:        input.NewState(),
		ctl:          ctl,
		held:         &atomic.Bool{},
		scrollStep:   10,
		scrollLength: 100,
	}
	h.syncViewport()
	return h, ctl
}

func rowText(s tcell.Screen, y int) string {
	cols, _ := s.Size()
	var b strings.Builder
	for x := range cols {
		r, _, _, _ := s.GetContent(x, y)
		b.WriteRune(r)
	}
	return b.String()
}

func TestMouseMovesPointerAndHovers(t *testing.T) {
	h, _ := newTestHost(t)
	h.handleEvent(tcell.NewEventMouse(39, 0, tcell.ButtonNone, tcell.ModNone))
	snap := h.input.Snapshot()
	if !snap.Hovered {
		t.Error("expected mouse motion to hover")
	}
	if snap.Pointer.X < 0.9 || snap.Pointer.Y < 0.8 {
		t.Errorf("expected the top-right corner, got %+v", snap.Pointer)
	}
}

func TestWheelScrollsWithinLength(t *testing.T) {
	h, _ := newTestHost(t)
	for range 15 {
		h.handleEvent(tcell.NewEventMouse(0, 0, tcell.WheelDown, tcell.ModNone))
	}
	if got := h.input.Snapshot().Scroll; got != 100 {
		t.Errorf("expected scroll clamped to 100, got %v", got)
	}
	h.handleEvent(tcell.NewEventMouse(0, 0, tcell.WheelUp, tcell.ModNone))
	if got := h.input.Snapshot().Scroll; got != 90 {
		t.Errorf("expected 90 after one notch up, got %v", got)
	}
}

func TestFocusMapsToVisibility(t *testing.T) {
	h, _ := newTestHost(t)
	h.input.SetHovered(true)
	h.handleEvent(tcell.NewEventFocus(false))
	snap := h.input.Snapshot()
	if snap.Visible || snap.Hovered {
		t.Errorf("expected hidden and unhovered after focus loss, got %+v", snap)
	}
	h.handleEvent(tcell.NewEventFocus(true))
	if !h.input.Snapshot().Visible {
		t.Error("expected visible after focus returns")
	}
}

func TestLossKeysHoldAndRelease(t *testing.T) {
	h, ctl := newTestHost(t)
	h.handleEvent(tcell.NewEventKey(tcell.KeyRune, 'l', tcell.ModNone))
	if !h.held.Load() || ctl.losses != 1 {
		t.Fatalf("expected a held loss, held=%v losses=%d", h.held.Load(), ctl.losses)
	}
	h.handleEvent(tcell.NewEventKey(tcell.KeyRune, 'r', tcell.ModNone))
	if h.held.Load() {
		t.Error("expected r to release the device")
	}
}

func TestQuitKeys(t *testing.T) {
	h, ctl := newTestHost(t)
	if h.handleEvent(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)) {
		t.Error("expected q to stop the host")
	}
	if h.handleEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)) {
		t.Error("expected Esc to stop the host")
	}
	if ctl.quits != 2 {
		t.Errorf("expected two quits, got %d", ctl.quits)
	}
}

func TestHUDRow(t *testing.T) {
	h, _ := newTestHost(t)
	h.drawHUD(hero.Frame{Tick: 1, Drawable: true, Progress: 0.5})
	if text := rowText(h.screen, 10); !strings.Contains(text, "scroll") {
		t.Errorf("expected the HUD on the last row, got %q", text)
	}
}

func cardFrame(t *testing.T) hero.Frame {
	t.Helper()
	mesh, err := loader.NewLoader().Load(loader.PlaceholderPath)
	if err != nil {
		t.Fatal(err)
	}
	eye := mgl32.Vec3{0, 0, 6}
	return hero.Frame{
		Tick:           1,
		Model:          mgl32.Ident4(),
		CameraPosition: eye,
		View:           mgl32.LookAtV(eye, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}),
		Projection:     mgl32.Perspective(mgl32.DegToRad(50), 40.0/20, 0.1, 100),
		Object:         game_object.Snapshot{Visible: true, Opacity: []float32{1}},
		Lights:         light.NewRig(light.DefaultRigParams()).State(),
		Mesh:           mesh,
		Drawable:       true,
		Background:     mgl32.Vec3{0.85, 0.86, 0.91},
	}
}

func TestTermRendererFillsCells(t *testing.T) {
	s := newSimScreen(t)
	held := &atomic.Bool{}
	r := newTermRenderer(s, held, 1)
	if err := r.Draw(cardFrame(t)); err != nil {
		t.Fatal(err)
	}
	if c, _, _, _ := s.GetContent(20, 5); c != halfBlock {
		t.Errorf("expected a half block in the middle, got %q", c)
	}
	if c, _, _, _ := s.GetContent(0, 10); c == halfBlock {
		t.Error("expected the HUD row left alone")
	}
}

func TestTermRendererHeldIsSurfaceLost(t *testing.T) {
	s := newSimScreen(t)
	held := &atomic.Bool{}
	held.Store(true)
	r := newTermRenderer(s, held, 1)
	if err := r.Draw(cardFrame(t)); !errors.Is(err, renderer.ErrSurfaceLost) {
		t.Fatalf("expected ErrSurfaceLost, got %v", err)
	}
	if err := r.Recover(); err == nil {
		t.Fatal("expected recovery to fail while held")
	}
	held.Store(false)
	if err := r.Recover(); err != nil {
		t.Fatalf("expected recovery once released, got %v", err)
	}
	r.Release()
	if err := r.Recover(); err == nil {
		t.Fatal("expected recovery to fail after release")
	}
}
