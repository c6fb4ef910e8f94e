package renderer

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-hero/engine/game_object"
	"github.com/Carmen-Shannon/oxy-hero/engine/hero"
	"github.com/Carmen-Shannon/oxy-hero/engine/light"
	"github.com/Carmen-Shannon/oxy-hero/engine/loader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

type fakeBackend struct {
	configured [][2]int
	uploads    int
	ranges     []SurfaceRange
	releases   int
	scenes     int
	surfaces   [][]byte
	frames     int
	shadows    int
	draws      int
	rebuilds   int
	failBegin  error
	failUpload error
}

func (f *fakeBackend) ConfigureSurface(w, h int) error {
	f.configured = append(f.configured, [2]int{w, h})
	return nil
}
func (f *fakeBackend) SetPresentMode(PresentMode) {}
func (f *fakeBackend) UploadMesh(_, _ []byte, ranges []SurfaceRange) error {
	if f.failUpload != nil {
		return f.failUpload
	}
	f.uploads++
	f.ranges = ranges
	return nil
}
func (f *fakeBackend) ReleaseMesh()             { f.ranges = nil }
func (f *fakeBackend) WriteScene([]byte)        { f.scenes++ }
func (f *fakeBackend) WriteSurfaces(s [][]byte) { f.surfaces = s }
func (f *fakeBackend) BeginFrame(mgl32.Vec3) error {
	if f.failBegin != nil {
		return f.failBegin
	}
	f.frames++
	return nil
}
func (f *fakeBackend) DrawShadow()   { f.shadows++ }
func (f *fakeBackend) DrawSurfaces() { f.draws++ }
func (f *fakeBackend) EndFrame()     {}
func (f *fakeBackend) Present()      {}
func (f *fakeBackend) Rebuild(w, h int) error {
	f.rebuilds++
	return nil
}
func (f *fakeBackend) Release() { f.releases++ }

type fakeSurface struct{}

func (fakeSurface) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (fakeSurface) Width() int                                 { return 640 }
func (fakeSurface) Height() int                                { return 360 }

func twoSurfaceMesh() *loader.Mesh {
	tri := []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	up := []mgl32.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}}
	return &loader.Mesh{
		Name: "pair",
		Surfaces: []loader.Surface{
			{Name: "a", Positions: tri, Normals: up, Indices: []uint32{0, 1, 2}},
			{Name: "b", Positions: tri, Normals: up, Indices: []uint32{0, 2, 1}},
		},
	}
}

func drawableFrame(mesh *loader.Mesh) hero.Frame {
	return hero.Frame{
		Tick:       1,
		Model:      mgl32.Ident4(),
		View:       mgl32.Ident4(),
		Projection: mgl32.Ident4(),
		Object: game_object.Snapshot{
			Visible: true,
			Opacity: []float32{1, 0.5},
		},
		Shadow:   light.ShadowState{Strength: 0.3, Scale: 8},
		Mesh:     mesh,
		Drawable: true,
	}
}

func newTestRenderer(t *testing.T, b *fakeBackend) Renderer {
	t.Helper()
	r, err := NewRenderer(BackendTypeWGPU, fakeSurface{}, WithBackend(b))
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return r
}

func TestNewRendererConfiguresSurface(t *testing.T) {
	b := &fakeBackend{}
	r := newTestRenderer(t, b)
	r.Resize(800, 600)
	if len(b.configured) != 2 || b.configured[0] != [2]int{640, 360} || b.configured[1] != [2]int{800, 600} {
		t.Errorf("unexpected configure calls %v", b.configured)
	}
}

func TestDrawUploadsMeshOnce(t *testing.T) {
	b := &fakeBackend{}
	r := newTestRenderer(t, b)
	mesh := twoSurfaceMesh()

	for range 3 {
		if err := r.Draw(drawableFrame(mesh)); err != nil {
			t.Fatalf("Draw: %v", err)
		}
	}
	if b.uploads != 1 {
		t.Errorf("expected one upload, got %d", b.uploads)
	}
	if b.frames != 3 || b.draws != 3 || b.shadows != 3 {
		t.Errorf("expected 3 frames with mesh and shadow, got frames=%d draws=%d shadows=%d", b.frames, b.draws, b.shadows)
	}
	if len(b.surfaces) != 2 {
		t.Fatalf("expected 2 surface blocks, got %d", len(b.surfaces))
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(b.surfaces[1])); got != 0.5 {
		t.Errorf("expected second surface opacity 0.5, got %v", got)
	}
}

func TestDrawSkipsUndrawableFrames(t *testing.T) {
	b := &fakeBackend{}
	r := newTestRenderer(t, b)

	f := drawableFrame(twoSurfaceMesh())
	f.Drawable = false
	if err := r.Draw(f); err != nil {
		t.Fatal(err)
	}
	if err := r.Draw(hero.Frame{}); err != nil {
		t.Fatal(err)
	}
	if b.frames != 0 || b.uploads != 0 {
		t.Errorf("expected nothing drawn, got frames=%d uploads=%d", b.frames, b.uploads)
	}
}

func TestDrawWithoutMeshStillClears(t *testing.T) {
	b := &fakeBackend{}
	r := newTestRenderer(t, b)

	f := drawableFrame(nil)
	f.Shadow.Strength = 0
	if err := r.Draw(f); err != nil {
		t.Fatal(err)
	}
	if b.frames != 1 || b.draws != 0 || b.shadows != 0 {
		t.Errorf("expected a clear-only frame, got frames=%d draws=%d shadows=%d", b.frames, b.draws, b.shadows)
	}
}

func TestSurfaceFailureIsSurfaceLost(t *testing.T) {
	b := &fakeBackend{failBegin: errors.New("outdated")}
	r := newTestRenderer(t, b)

	err := r.Draw(drawableFrame(twoSurfaceMesh()))
	if !errors.Is(err, ErrSurfaceLost) {
		t.Fatalf("expected ErrSurfaceLost, got %v", err)
	}
}

func TestRecoverReuploadsMesh(t *testing.T) {
	b := &fakeBackend{}
	r := newTestRenderer(t, b)
	mesh := twoSurfaceMesh()

	_ = r.Draw(drawableFrame(mesh))
	if err := r.Recover(); err != nil {
		t.Fatal(err)
	}
	_ = r.Draw(drawableFrame(mesh))
	if b.rebuilds != 1 || b.uploads != 2 {
		t.Errorf("expected rebuild then re-upload, got rebuilds=%d uploads=%d", b.rebuilds, b.uploads)
	}
}

func TestUploadFailureIsReported(t *testing.T) {
	b := &fakeBackend{failUpload: errors.New("oom")}
	r := newTestRenderer(t, b)
	if err := r.Draw(drawableFrame(twoSurfaceMesh())); err == nil {
		t.Fatal("expected upload error")
	}
	if b.frames != 0 {
		t.Error("expected no frame after a failed upload")
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	b := &fakeBackend{}
	r := newTestRenderer(t, b)
	r.Release()
	r.Release()
	if b.releases != 1 {
		t.Errorf("expected one backend release, got %d", b.releases)
	}
	if err := r.Draw(drawableFrame(twoSurfaceMesh())); err != nil || b.frames != 0 {
		t.Errorf("expected released renderer to ignore draws, err=%v frames=%d", err, b.frames)
	}
	if err := r.Recover(); err == nil {
		t.Error("expected Recover to fail after Release")
	}
}

func TestPackMeshRebasesIndices(t *testing.T) {
	vertices, indices, ranges := packMesh(twoSurfaceMesh())
	if len(vertices) != 6*vertexStride {
		t.Fatalf("expected %d vertex bytes, got %d", 6*vertexStride, len(vertices))
	}
	if len(ranges) != 2 || ranges[1].FirstIndex != 3 || ranges[1].IndexCount != 3 {
		t.Fatalf("unexpected ranges %+v", ranges)
	}
	want := []uint32{0, 1, 2, 3, 5, 4}
	for i, w := range want {
		if got := binary.LittleEndian.Uint32(indices[i*4:]); got != w {
			t.Errorf("index %d: expected %d, got %d", i, w, got)
		}
	}
	// normal of the first vertex starts after its position
	if got := math.Float32frombits(binary.LittleEndian.Uint32(vertices[20:])); got != 1 {
		t.Errorf("expected normal z 1, got %v", got)
	}
}

func TestPackSceneLayout(t *testing.T) {
	f := drawableFrame(nil)
	f.Lights.Spot = light.State{Position: mgl32.Vec3{1, 2, 3}, Intensity: 250}
	f.Shadow.Softness = 0.25

	buf := packScene(f)
	if len(buf) != sceneUniformSize {
		t.Fatalf("expected %d bytes, got %d", sceneUniformSize, len(buf))
	}
	read := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
	}
	// view_proj, model, camera, ambient precede the spot position
	spot := 64 + 64 + 16 + 16
	if read(spot) != 1 || read(spot+12) != 250 {
		t.Errorf("spot block misplaced: pos.x=%v intensity=%v", read(spot), read(spot+12))
	}
	if read(sceneUniformSize-16) != 0.25 {
		t.Errorf("expected softness in the last block, got %v", read(sceneUniformSize-16))
	}
}
