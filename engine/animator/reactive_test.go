package animator

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-hero/engine/camera"
	"github.com/Carmen-Shannon/oxy-hero/engine/game_object"
	"github.com/Carmen-Shannon/oxy-hero/engine/input"
	"github.com/go-gl/mathgl/mgl32"
)

func newReactiveRig(t *testing.T, phase Phase) (*Reactive, game_object.GameObject, camera.Camera, *Machine) {
	t.Helper()
	obj := game_object.NewGameObject(game_object.WithID(1))
	cam := camera.NewCamera(camera.WithPosition(mgl32.Vec3{0, 0, 12}))
	m := NewMachine()
	advanceTo(t, m, phase)
	return NewReactive(obj, cam, m, DefaultReactiveParams()), obj, cam, m
}

func TestReactiveIdleFloatOscillatesAroundBaseline(t *testing.T) {
	r, obj, _, _ := newReactiveRig(t, Idle)
	const baseline = 0.2
	var lo, hi float32 = 10, -10
	for i := 0; i < 60*20; i++ {
		r.Update(input.PointerVector{}, false, baseline, tick)
		y := obj.Position().Y()
		if i > 60*10 {
			lo = float32(math.Min(float64(lo), float64(y)))
			hi = float32(math.Max(float64(hi), float64(y)))
		}
	}
	amp := DefaultReactiveParams().FloatAmplitude
	if hi-baseline < amp*0.9 || baseline-lo < amp*0.9 {
		t.Fatalf("float range [%v, %v] too narrow around %v", lo, hi, baseline)
	}
	if hi-baseline > amp+1e-4 || baseline-lo > amp+1e-4 {
		t.Fatalf("float range [%v, %v] exceeds amplitude %v", lo, hi, amp)
	}
}

func TestReactiveFloatDisabledOutsideIdle(t *testing.T) {
	const baseline = 0.3
	for _, phase := range []Phase{Flipping, Returning} {
		t.Run(phase.String(), func(t *testing.T) {
			r, obj, _, m := newReactiveRig(t, Idle)
			for i := 0; i < 600; i++ {
				r.Update(input.PointerVector{}, false, baseline, tick)
			}
			if err := m.Transition(Flipping); err != nil {
				t.Fatal(err)
			}
			if phase == Returning {
				if err := m.Transition(Returning); err != nil {
					t.Fatal(err)
				}
			}
			for i := 0; i < 120; i++ {
				r.Update(input.PointerVector{X: 0.4, Y: -0.7}, true, baseline, tick)
				if y := obj.Position().Y(); y != baseline {
					t.Fatalf("tick %d in %v: Y = %v, want baseline %v", i, phase, y, baseline)
				}
				if r.Envelope() != 0 {
					t.Fatalf("tick %d in %v: envelope = %v", i, phase, r.Envelope())
				}
			}
		})
	}
}

func TestReactiveFloatResumesFromBaseline(t *testing.T) {
	const baseline = -0.1
	r, obj, _, m := newReactiveRig(t, Idle)
	for i := 0; i < 600; i++ {
		r.Update(input.PointerVector{}, false, baseline, tick)
	}
	for _, to := range []Phase{Flipping, Idle} {
		if err := m.Transition(to); err != nil {
			t.Fatal(err)
		}
		r.Update(input.PointerVector{}, false, baseline, tick)
	}
	// One tick into Idle the offset is a small fraction of the amplitude.
	params := DefaultReactiveParams()
	first := float32(math.Abs(float64(obj.Position().Y() - baseline)))
	limit := params.FloatBlend * params.FloatAmplitude * params.FloatSpeed * float32(tick)
	if first > limit+1e-7 {
		t.Fatalf("first Idle offset %v exceeds %v", first, limit)
	}
}

func TestReactiveIgnoresObjectDuringEntrance(t *testing.T) {
	r, obj, cam, _ := newReactiveRig(t, EnteringRotate)
	obj.SetPosition(mgl32.Vec3{0, 7, -3})
	before := obj.Snapshot()
	for i := 0; i < 30; i++ {
		r.Update(input.PointerVector{X: 1, Y: 1}, true, 0, tick)
	}
	after := obj.Snapshot()
	if after.Position != before.Position || after.Rotation != before.Rotation {
		t.Fatal("pointer reactions wrote the object before the entrance completed")
	}
	if cam.Position().X() <= 0 {
		t.Fatal("camera parallax should run during the entrance")
	}
}

func TestReactiveTiltHoverAndCameraConverge(t *testing.T) {
	r, obj, cam, _ := newReactiveRig(t, Idle)
	p := input.PointerVector{X: -0.6, Y: 0.8}
	for i := 0; i < 600; i++ {
		r.Update(p, true, 0, tick)
	}
	params := DefaultReactiveParams()
	if got, want := obj.Rotation().X(), p.Y*params.TiltInfluence; !mgl32.FloatEqualThreshold(got, want, 1e-4) {
		t.Fatalf("tilt = %v, want %v", got, want)
	}
	if got := obj.Position().Z(); !mgl32.FloatEqualThreshold(got, params.HoverDistance, 1e-4) {
		t.Fatalf("hover z = %v", got)
	}
	want := mgl32.Vec3{p.X * params.CameraInfluence, p.Y * params.CameraInfluence, 12}
	if got := cam.Position(); !got.ApproxEqualThreshold(want, 1e-4) {
		t.Fatalf("camera = %v, want %v", got, want)
	}

	for i := 0; i < 600; i++ {
		r.Update(p, false, 0, tick)
	}
	if got := obj.Position().Z(); !mgl32.FloatEqualThreshold(got, 0, 1e-4) {
		t.Fatalf("hover z after leaving = %v", got)
	}
}

func TestReactiveLerpIsContinuous(t *testing.T) {
	r, obj, _, _ := newReactiveRig(t, Idle)
	rate := DefaultReactiveParams().TiltLerp
	maxStep := DefaultReactiveParams().TiltInfluence * 2 * rate
	prev := obj.Rotation().X()
	for i := 0; i < 120; i++ {
		y := float32(1)
		if i%2 == 0 {
			y = -1
		}
		r.Update(input.PointerVector{Y: y}, false, 0, tick)
		cur := obj.Rotation().X()
		if d := float32(math.Abs(float64(cur - prev))); d > maxStep+1e-6 {
			t.Fatalf("tilt jumped %v in one tick (max %v)", d, maxStep)
		}
		prev = cur
	}
}
