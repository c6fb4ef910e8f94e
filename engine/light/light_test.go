package light

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-hero/common"
	"github.com/Carmen-Shannon/oxy-hero/engine/input"
	"github.com/go-gl/mathgl/mgl32"
)

func TestSpotConeCosines(t *testing.T) {
	l := NewLight(LightTypeSpot, WithSpotCone(0.6, 0.8))
	if !common.ApproxEqual(l.OuterCone(), float32(math.Cos(0.6)), 1e-6) {
		t.Fatalf("outer cone %v", l.OuterCone())
	}
	if !common.ApproxEqual(l.InnerCone(), float32(math.Cos(0.6*0.2)), 1e-6) {
		t.Fatalf("inner cone %v", l.InnerCone())
	}
	if l.InnerCone() < l.OuterCone() {
		t.Fatal("inner cone must be narrower than the outer cone")
	}
}

func TestNonSpotLightsHaveNoCone(t *testing.T) {
	l := NewLight(LightTypeDirectional, WithSpotCone(0.6, 0.8))
	if l.InnerCone() != 0 || l.OuterCone() != 0 {
		t.Fatalf("directional light reported cone %v/%v", l.InnerCone(), l.OuterCone())
	}
}

func TestDirectionIsNormalized(t *testing.T) {
	l := NewLight(LightTypeDirectional, WithDirection(mgl32.Vec3{0, 0, -10}))
	if !common.ApproxEqual(l.Direction().Len(), 1, 1e-6) {
		t.Fatalf("direction length %v", l.Direction().Len())
	}
}

func TestRigDefaults(t *testing.T) {
	r := NewRig(DefaultRigParams())
	s := r.State()
	if s.Spot.Position != (mgl32.Vec3{0, 0, 8}) {
		t.Fatalf("spot starts at %v", s.Spot.Position)
	}
	if s.Spot.Intensity != 250 {
		t.Fatalf("spot intensity %v", s.Spot.Intensity)
	}
	if s.Ambient.Intensity != 0.4 || s.Ambient.Color != AmbientColor {
		t.Fatalf("ambient %+v", s.Ambient)
	}
	if s.Rims[0].Intensity != 0.8 || s.Rims[1].Intensity != 0.5 {
		t.Fatalf("rim intensities %v %v", s.Rims[0].Intensity, s.Rims[1].Intensity)
	}
	if s.Spot.Type != LightTypeSpot || s.Rims[0].Type != LightTypeDirectional {
		t.Fatalf("rig light types %v %v", s.Spot.Type, s.Rims[0].Type)
	}
}

func TestRigSpotConvergesOnPointerTarget(t *testing.T) {
	r := NewRig(DefaultRigParams())
	p := input.PointerVector{X: 0.5, Y: -0.25}
	for i := 0; i < 300; i++ {
		r.Update(p, false)
	}
	want := mgl32.Vec3{4, -2, 8}
	if got := r.Spot().Position(); got.Sub(want).Len() > 1e-3 {
		t.Fatalf("spot at %v, want %v", got, want)
	}
	if r.SpotTarget() != want {
		t.Fatalf("target %v", r.SpotTarget())
	}
	dir := r.Spot().Direction()
	if dot := dir.Dot(want.Mul(-1).Normalize()); dot < 0.9999 {
		t.Fatalf("spot not aimed at origin: %v", dir)
	}
}

func TestRigSpotStepIsPartial(t *testing.T) {
	r := NewRig(DefaultRigParams())
	r.Update(input.PointerVector{X: 1, Y: 0}, false)
	if got := r.Spot().Position().X(); !common.ApproxEqual(got, 8*0.08, 1e-5) {
		t.Fatalf("first step x = %v", got)
	}
}

func TestRigIntensityConvergesMonotonically(t *testing.T) {
	r := NewRig(DefaultRigParams())
	prev := r.Spot().Intensity()
	for i := 0; i < 200; i++ {
		r.Update(input.PointerVector{}, true)
		cur := r.Spot().Intensity()
		if cur < prev || cur > 350 {
			t.Fatalf("hover tick %d: intensity %v after %v", i, cur, prev)
		}
		prev = cur
	}
	if !common.ApproxEqual(prev, 350, 1e-2) {
		t.Fatalf("hover intensity settled at %v", prev)
	}
	for i := 0; i < 200; i++ {
		r.Update(input.PointerVector{}, false)
		cur := r.Spot().Intensity()
		if cur > prev || cur < 250 {
			t.Fatalf("leave tick %d: intensity %v after %v", i, cur, prev)
		}
		prev = cur
	}
	if !common.ApproxEqual(prev, 250, 1e-2) {
		t.Fatalf("idle intensity settled at %v", prev)
	}
}

func TestContactShadowThrottled(t *testing.T) {
	s := NewContactShadow(DefaultShadowParams())
	updates := 0
	for i := 0; i < 60; i++ {
		if s.Update(mgl32.Vec3{0, 0, 0}, 1.0/60) {
			updates++
		}
	}
	if updates < 9 || updates > 11 {
		t.Fatalf("%d updates in one second", updates)
	}
	if s.State().Updates != updates {
		t.Fatalf("state counted %d updates", s.State().Updates)
	}
}

func TestContactShadowFirstUpdateImmediate(t *testing.T) {
	s := NewContactShadow(DefaultShadowParams())
	if !s.Update(mgl32.Vec3{1, 0, 2}, 0) {
		t.Fatal("first update was throttled")
	}
	if got := s.State().Position; got != (mgl32.Vec3{1, -1.5, 2}) {
		t.Fatalf("shadow at %v", got)
	}
}

func TestContactShadowFadesWithHeight(t *testing.T) {
	p := DefaultShadowParams()
	s := NewContactShadow(p)
	s.Update(mgl32.Vec3{0, p.PlaneY, 0}, 0)
	if s.State().Strength != p.Opacity {
		t.Fatalf("grounded strength %v", s.State().Strength)
	}
	s.Update(mgl32.Vec3{0, p.PlaneY + p.Far/2, 0}, p.Interval)
	if !common.ApproxEqual(s.State().Strength, p.Opacity/2, 1e-5) {
		t.Fatalf("half-height strength %v", s.State().Strength)
	}
	s.Update(mgl32.Vec3{0, p.PlaneY + p.Far*2, 0}, p.Interval)
	if s.State().Strength != 0 {
		t.Fatalf("far strength %v", s.State().Strength)
	}
}

func TestContactShadowBake(t *testing.T) {
	p := DefaultShadowParams()
	p.Resolution = 64
	s := NewContactShadow(p)
	s.Update(mgl32.Vec3{0, p.PlaneY, 0}, 0)

	img, err := s.Bake()
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 64 {
		t.Fatalf("bake bounds %v", b)
	}
	if centre, corner := img.RGBAAt(32, 32).A, img.RGBAAt(0, 0).A; centre <= corner {
		t.Fatalf("centre alpha %d not above corner alpha %d", centre, corner)
	}

	again, err := s.Bake()
	if err != nil {
		t.Fatal(err)
	}
	if again != img {
		t.Fatal("unchanged shadow was re-baked")
	}
}

func TestShadeBrighterUnderSpot(t *testing.T) {
	rig := NewRig(DefaultRigParams()).State()
	eye := mgl32.Vec3{0, 0, 5}
	lit := Shade(rig, eye, mgl32.Vec3{}, mgl32.Vec3{0, 0, 1})
	rig.Spot.Intensity = 0
	unlit := Shade(rig, eye, mgl32.Vec3{}, mgl32.Vec3{0, 0, 1})
	if lit.Len() <= unlit.Len() {
		t.Fatalf("expected the spot to add light, got %v vs %v", lit, unlit)
	}
}

func TestShadeOutsideConeIsAmbientAndRims(t *testing.T) {
	rig := NewRig(DefaultRigParams()).State()
	rig.Spot.Direction = mgl32.Vec3{0, 0, 1}
	eye := mgl32.Vec3{0, 0, 5}
	n := mgl32.Vec3{0, 0, 1}
	off := Shade(rig, eye, mgl32.Vec3{}, n)
	rig.Spot.Intensity = 0
	dark := Shade(rig, eye, mgl32.Vec3{}, n)
	if !off.ApproxEqualThreshold(dark, 1e-6) {
		t.Fatalf("spot pointing away should not contribute: %v vs %v", off, dark)
	}
}

func TestTonemapRange(t *testing.T) {
	c := Tonemap(mgl32.Vec3{0, 0.5, 100})
	if c[0] != 0 || c[1] <= 0 || c[1] >= 1 || c[2] != 1 {
		t.Fatalf("unexpected tonemap %v", c)
	}
}
