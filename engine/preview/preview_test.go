package preview

import (
	"bytes"
	"image"
	"testing"

	"github.com/Carmen-Shannon/oxy-hero/engine/game_object"
	"github.com/Carmen-Shannon/oxy-hero/engine/hero"
	"github.com/Carmen-Shannon/oxy-hero/engine/light"
	"github.com/Carmen-Shannon/oxy-hero/engine/loader"
	"github.com/go-gl/mathgl/mgl32"
)

func quadMesh() *loader.Mesh {
	return &loader.Mesh{
		Name: "quad",
		Surfaces: []loader.Surface{{
			Name:      "face",
			Positions: []mgl32.Vec3{{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0}},
			Normals:   []mgl32.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
			Indices:   []uint32{0, 1, 2, 0, 2, 3},
		}},
		Min: mgl32.Vec3{-1, -1, 0},
		Max: mgl32.Vec3{1, 1, 0},
	}
}

func testFrame(mesh *loader.Mesh) hero.Frame {
	eye := mgl32.Vec3{0, 0, 5}
	return hero.Frame{
		Tick:           1,
		Model:          mgl32.Ident4(),
		CameraPosition: eye,
		View:           mgl32.LookAtV(eye, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}),
		Projection:     mgl32.Perspective(mgl32.DegToRad(45), 16.0/9, 0.1, 100),
		Object:         game_object.Snapshot{Visible: true, Opacity: []float32{1}},
		Lights:         light.NewRig(light.DefaultRigParams()).State(),
		Mesh:           mesh,
		Drawable:       true,
	}
}

func rgbAt(img *image.RGBA, x, y int) [3]uint8 {
	c := img.RGBAAt(x, y)
	return [3]uint8{c.R, c.G, c.B}
}

func TestRenderDrawsObjectOverBackground(t *testing.T) {
	r := NewRasterizer(WithSize(160, 90))
	img, err := r.Render(testFrame(quadMesh()))
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 160 || img.Bounds().Dy() != 90 {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
	if c := rgbAt(img, 80, 45); c[0] < 50 {
		t.Errorf("expected a lit centre, got %v", c)
	}
	if c := rgbAt(img, 2, 2); c != [3]uint8{0, 0, 0} {
		t.Errorf("expected background in the corner, got %v", c)
	}
}

func TestRenderUndrawableIsBackground(t *testing.T) {
	r := NewRasterizer(WithSize(32, 18), WithSupersample(1))
	f := testFrame(quadMesh())
	f.Drawable = false
	f.Background = mgl32.Vec3{1, 0, 0}
	img, err := r.Render(f)
	if err != nil {
		t.Fatal(err)
	}
	if c := rgbAt(img, 16, 9); c != [3]uint8{255, 0, 0} {
		t.Errorf("expected only the background, got %v", c)
	}
}

func TestRenderHiddenObjectSkipsMesh(t *testing.T) {
	r := NewRasterizer(WithSize(32, 18), WithSupersample(1))
	f := testFrame(quadMesh())
	f.Object.Opacity = []float32{0}
	img, err := r.Render(f)
	if err != nil {
		t.Fatal(err)
	}
	if c := rgbAt(img, 16, 9); c != [3]uint8{0, 0, 0} {
		t.Errorf("expected a transparent object to leave the background, got %v", c)
	}
}

func TestRenderShadowDarkensGround(t *testing.T) {
	r := NewRasterizer(WithSize(160, 90), WithSupersample(1)).(*rasterizer)
	f := testFrame(nil)
	f.Background = mgl32.Vec3{1, 1, 1}
	f.Shadow = light.ShadowState{
		Position: mgl32.Vec3{0, -1.5, 0},
		Strength: 0.5,
		Softness: 0.2,
		Scale:    8,
	}
	img, err := r.Render(f)
	if err != nil {
		t.Fatal(err)
	}
	p, ok := project(f.ViewProjection(), f.Shadow.Position, 160, 90)
	if !ok {
		t.Fatal("shadow centre should be in front of the camera")
	}
	if c := rgbAt(img, int(p[0]), int(p[1])); c[0] > 160 {
		t.Errorf("expected the shadow to darken its centre, got %v", c)
	}
	if c := rgbAt(img, 80, 2); c != [3]uint8{255, 255, 255} {
		t.Errorf("expected the sky untouched, got %v", c)
	}
}

func TestTrianglesSortedFarFirst(t *testing.T) {
	mesh := quadMesh()
	back := loader.Surface{
		Name:      "back",
		Positions: []mgl32.Vec3{{-1, -1, -2}, {1, -1, -2}, {0, 1, -2}},
		Normals:   []mgl32.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		Indices:   []uint32{0, 1, 2},
	}
	mesh.Surfaces = append(mesh.Surfaces, back)
	f := testFrame(mesh)
	f.Object.Opacity = []float32{1, 0.5}

	r := NewRasterizer().(*rasterizer)
	tris := r.triangles(f, f.ViewProjection(), 640, 360)
	if len(tris) != 3 {
		t.Fatalf("expected 3 triangles, got %d", len(tris))
	}
	if tris[0].alpha != 0.5 {
		t.Errorf("expected the far surface first, got alpha %v", tris[0].alpha)
	}
	for i := 1; i < len(tris); i++ {
		if tris[i].depth > tris[i-1].depth {
			t.Fatalf("triangles out of order at %d", i)
		}
	}
}

func TestToneMappingKeepsColoursInRange(t *testing.T) {
	f := testFrame(quadMesh())
	f.Lights.Spot.Intensity = 1e5
	r := NewRasterizer(WithToneMapping(true)).(*rasterizer)
	for _, tri := range r.triangles(f, f.ViewProjection(), 640, 360) {
		for _, v := range tri.color {
			if v < 0 || v > 1 {
				t.Fatalf("colour out of range %v", tri.color)
			}
		}
	}
}

func TestEncodeWebP(t *testing.T) {
	img, err := NewRasterizer(WithSize(16, 16)).Render(testFrame(quadMesh()))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := EncodeWebP(&buf, img); err != nil {
		t.Fatal(err)
	}
	b := buf.Bytes()
	if len(b) < 12 || string(b[0:4]) != "RIFF" || string(b[8:12]) != "WEBP" {
		t.Fatalf("expected a RIFF/WEBP container, got % x", b[:min(len(b), 12)])
	}
}

func TestSetSizeIgnoresInvalid(t *testing.T) {
	r := NewRasterizer(WithSize(100, 50))
	r.SetSize(0, 10)
	if w, h := r.Size(); w != 100 || h != 50 {
		t.Errorf("expected size unchanged, got %dx%d", w, h)
	}
}

func TestProjectBounds(t *testing.T) {
	f := testFrame(quadMesh())
	r, ok := ProjectBounds(f, 160, 90)
	if !ok {
		t.Fatal("expected bounds for a visible object")
	}
	if !r.Overlaps(image.Rect(0, 0, 160, 90)) || !(image.Point{X: 80, Y: 45}).In(r) {
		t.Errorf("expected bounds around the centre, got %v", r)
	}
	if r.Dx() >= 160 || r.Dy() >= 90 {
		t.Errorf("expected the quad smaller than the view, got %v", r)
	}

	f.Object.Visible = false
	if _, ok := ProjectBounds(f, 160, 90); ok {
		t.Error("expected no bounds for a hidden object")
	}
}
