package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-hero/common"
	"github.com/Carmen-Shannon/oxy-hero/engine/hero"
	"github.com/Carmen-Shannon/oxy-hero/engine/loader"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrSurfaceLost is returned by Draw when the swapchain could not be acquired. The render
// device should be treated as lost until Recover succeeds.
var ErrSurfaceLost = errors.New("renderer: surface lost")

// SurfaceSource is anything that can describe a presentable surface, typically a window.Window.
type SurfaceSource interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// Renderer draws hero frames.
//
// Draw skips frames that are not drawable, uploads the frame's mesh the first time it is seen,
// and reports swapchain failures as ErrSurfaceLost. Recover rebuilds every device resource.
type Renderer interface {
	// Resize reconfigures the surface for a new size.
	//
	// Parameters:
	//   - width: the new surface width in pixels
	//   - height: the new surface height in pixels
	Resize(width, height int)

	// Draw renders one frame.
	//
	// Parameters:
	//   - frame: the frame to draw
	//
	// Returns:
	//   - error: ErrSurfaceLost (wrapped) when the surface could not be acquired, or an upload error
	Draw(frame hero.Frame) error

	// Recover reacquires the device and surface after a loss.
	//
	// Returns:
	//   - error: an error if the device is still unavailable
	Recover() error

	// Release frees every device resource. The renderer is unusable afterwards.
	Release()
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     RendererBackend

	width  int
	height int

	// resident is the mesh currently uploaded to the backend.
	resident *loader.Mesh
	released bool

	forceFallbackAdapter bool
	presentMode          PresentMode
	msaa                 MSAASampleCount
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer that presents to the given surface.
//
// Parameters:
//   - backendType: the GPU backend to use
//   - source: the surface to present to
//   - options: functional options applied before the device is requested
//
// Returns:
//   - Renderer: the ready renderer
//   - error: an error if no device could be acquired
func NewRenderer(backendType RendererBackendType, source SurfaceSource, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:          &sync.Mutex{},
		backendType: backendType,
		width:       source.Width(),
		height:      source.Height(),
		presentMode: PresentModeVSync,
		msaa:        MSAA4x,
	}
	for _, opt := range options {
		opt(r)
	}

	if r.backend == nil {
		switch backendType {
		case BackendTypeWGPU:
			fallthrough
		default:
			b, err := newWGPURendererBackend(source.SurfaceDescriptor(), r.forceFallbackAdapter, r.msaa, r.presentMode)
			if err != nil {
				return nil, err
			}
			r.backend = b
		}
	}

	if err := r.backend.ConfigureSurface(r.width, r.height); err != nil {
		r.backend.Release()
		return nil, err
	}
	return r, nil
}

func (r *renderer) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.width, r.height = width, height
	if r.released {
		return
	}
	if err := r.backend.ConfigureSurface(width, height); err != nil {
		common.Logger().Warn("surface resize failed", "width", width, "height", height, "error", err)
	}
}

func (r *renderer) Draw(frame hero.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released || !frame.Drawable || frame.Empty() {
		return nil
	}

	if frame.Mesh != r.resident {
		if err := r.upload(frame.Mesh); err != nil {
			return fmt.Errorf("upload mesh: %w", err)
		}
	}

	r.backend.WriteScene(packScene(frame))
	if r.resident != nil {
		r.backend.WriteSurfaces(packSurfaces(frame.Object.Opacity))
	}

	if err := r.backend.BeginFrame(frame.Background); err != nil {
		return fmt.Errorf("%w: %v", ErrSurfaceLost, err)
	}
	if frame.Shadow.Strength > 0 {
		r.backend.DrawShadow()
	}
	if frame.ShowObject() {
		r.backend.DrawSurfaces()
	}
	r.backend.EndFrame()
	r.backend.Present()
	return nil
}

func (r *renderer) upload(mesh *loader.Mesh) error {
	if mesh == nil {
		r.backend.ReleaseMesh()
		r.resident = nil
		return nil
	}
	vertices, indices, ranges := packMesh(mesh)
	if err := r.backend.UploadMesh(vertices, indices, ranges); err != nil {
		r.resident = nil
		return err
	}
	r.resident = mesh
	common.Logger().Debug("mesh uploaded", "name", mesh.Name, "surfaces", len(ranges), "vertices", mesh.VertexCount())
	return nil
}

func (r *renderer) Recover() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released {
		return errors.New("renderer: released")
	}
	if err := r.backend.Rebuild(r.width, r.height); err != nil {
		return err
	}
	r.resident = nil
	return nil
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released {
		return
	}
	r.released = true
	r.resident = nil
	r.backend.Release()
}
