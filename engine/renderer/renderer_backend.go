package renderer

import "github.com/go-gl/mathgl/mgl32"

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing.
// WebGPU guarantees support for 1 (off) and 4.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing.
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4x multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4
)

// RendererBackend is the GPU-facing half of the Renderer. The Renderer decides what to draw;
// the backend owns every device resource and encodes the commands.
//
// A frame is BeginFrame, any number of draws, EndFrame, then Present. Uniform writes happen
// before BeginFrame.
type RendererBackend interface {
	// ConfigureSurface (re)configures the swapchain and its attachments for a new size.
	//
	// Parameters:
	//   - width: the surface width in pixels
	//   - height: the surface height in pixels
	//
	// Returns:
	//   - error: an error if an attachment could not be created
	ConfigureSurface(width, height int) error

	// SetPresentMode selects the present mode used by the next ConfigureSurface.
	SetPresentMode(mode PresentMode)

	// UploadMesh replaces the resident mesh buffers and creates one surface binding per range.
	//
	// Parameters:
	//   - vertices: interleaved position and normal data
	//   - indices: uint32 index data
	//   - ranges: the index range of each surface
	//
	// Returns:
	//   - error: an error if a buffer or bind group could not be created
	UploadMesh(vertices, indices []byte, ranges []SurfaceRange) error

	// ReleaseMesh drops the resident mesh, if any.
	ReleaseMesh()

	// WriteScene uploads the per-frame scene uniform block.
	WriteScene(scene []byte)

	// WriteSurfaces uploads one surface uniform block per resident surface. Extra blocks are ignored.
	WriteSurfaces(surfaces [][]byte)

	// BeginFrame acquires the next swapchain texture and begins the main render pass.
	//
	// Parameters:
	//   - clear: the background color
	//
	// Returns:
	//   - error: an error if the swapchain texture could not be acquired
	BeginFrame(clear mgl32.Vec3) error

	// DrawShadow encodes the contact shadow quad.
	DrawShadow()

	// DrawSurfaces encodes one draw per resident surface.
	DrawSurfaces()

	// EndFrame ends the render pass and submits the command buffer.
	EndFrame()

	// Present presents the surface and releases the frame's swapchain texture.
	Present()

	// Rebuild releases every device resource and reacquires adapter, device, surface and pipelines.
	// The resident mesh is dropped and must be uploaded again.
	//
	// Parameters:
	//   - width: the surface width in pixels
	//   - height: the surface height in pixels
	//
	// Returns:
	//   - error: an error if the device could not be reacquired
	Rebuild(width, height int) error

	// Release frees every device resource. The backend is unusable afterwards.
	Release()
}
