package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// surfaceBinding is the per-surface uniform buffer and bind group of the resident mesh.
type surfaceBinding struct {
	rng       SurfaceRange
	buffer    *wgpu.Buffer
	bindGroup *wgpu.BindGroup
}

type wgpuRendererBackendImpl struct {
	mu *sync.Mutex

	surfaceDescriptor    *wgpu.SurfaceDescriptor
	forceFallbackAdapter bool

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	surfaceFormat        wgpu.TextureFormat
	alphaMode            wgpu.CompositeAlphaMode
	msaaTexture          *wgpu.Texture
	msaaTextureView      *wgpu.TextureView
	depthTexture         *wgpu.Texture
	depthTextureView     *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor

	presentMode wgpu.PresentMode
	sampleCount MSAASampleCount

	sceneLayout    *wgpu.BindGroupLayout
	surfaceLayout  *wgpu.BindGroupLayout
	heroPipeline   *wgpu.RenderPipeline
	shadowPipeline *wgpu.RenderPipeline
	sceneBuffer    *wgpu.Buffer
	sceneBindGroup *wgpu.BindGroup

	vertexBuffer *wgpu.Buffer
	indexBuffer  *wgpu.Buffer
	surfaces     []surfaceBinding

	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount, presentMode PresentMode) (*wgpuRendererBackendImpl, error) {
	if surfaceDescriptor == nil {
		return nil, errors.New("renderer: nil surface descriptor")
	}
	runtime.LockOSThread()
	b := &wgpuRendererBackendImpl{
		mu:                   &sync.Mutex{},
		surfaceDescriptor:    surfaceDescriptor,
		forceFallbackAdapter: forceFallbackAdapter,
		sampleCount:          sampleCount,
	}
	b.SetPresentMode(presentMode)
	if err := b.acquire(); err != nil {
		b.releaseLocked()
		return nil, err
	}
	return b, nil
}

// acquire creates the instance, surface, adapter, device and every size-independent resource.
func (b *wgpuRendererBackendImpl) acquire() error {
	b.instance = wgpu.CreateInstance(nil)
	b.surface = b.instance.CreateSurface(b.surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: b.forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		return fmt.Errorf("request adapter: %w", err)
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Hero Device",
	})
	if err != nil {
		return fmt.Errorf("request device: %w", err)
	}
	b.device = d
	b.queue = d.GetQueue()

	capabilities := b.surface.GetCapabilities(b.adapter)
	if len(capabilities.Formats) == 0 || len(capabilities.AlphaModes) == 0 {
		return errors.New("surface reports no supported formats")
	}
	b.surfaceFormat = capabilities.Formats[0]
	b.alphaMode = capabilities.AlphaModes[0]

	return b.createPipelines()
}

func (b *wgpuRendererBackendImpl) createPipelines() error {
	var err error
	b.sceneLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Scene Layout",
		Entries: []wgpu.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
			Buffer: wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeUniform,
				MinBindingSize: sceneUniformSize,
			},
		}},
	})
	if err != nil {
		return fmt.Errorf("scene layout: %w", err)
	}
	b.surfaceLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Surface Layout",
		Entries: []wgpu.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: wgpu.ShaderStageFragment,
			Buffer: wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeUniform,
				MinBindingSize: surfaceUniformSize,
			},
		}},
	})
	if err != nil {
		return fmt.Errorf("surface layout: %w", err)
	}

	b.sceneBuffer, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Scene Uniforms",
		Size:  sceneUniformSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	b.sceneBindGroup, err = b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Scene Bind Group",
		Layout: b.sceneLayout,
		Entries: []wgpu.BindGroupEntry{{
			Binding: 0,
			Buffer:  b.sceneBuffer,
			Size:    wgpu.WholeSize,
		}},
	})
	if err != nil {
		return err
	}

	heroModule, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "hero.wgsl",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: heroShaderSource},
	})
	if err != nil {
		return fmt.Errorf("hero shader: %w", err)
	}
	defer heroModule.Release()
	shadowModule, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "shadow.wgsl",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shadowShaderSource},
	})
	if err != nil {
		return fmt.Errorf("shadow shader: %w", err)
	}
	defer shadowModule.Release()

	heroLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Hero Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{b.sceneLayout, b.surfaceLayout},
	})
	if err != nil {
		return err
	}
	defer heroLayout.Release()
	shadowLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Shadow Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{b.sceneLayout},
	})
	if err != nil {
		return err
	}
	defer shadowLayout.Release()

	b.heroPipeline, err = b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Hero Render Pipeline",
		Layout: heroLayout,
		Vertex: wgpu.VertexState{
			Module:     heroModule,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: vertexStride,
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
					{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
				},
			}},
		},
		Fragment: &wgpu.FragmentState{
			Module:     heroModule,
			EntryPoint: "fs_main",
			Targets:    []wgpu.ColorTargetState{b.blendTarget()},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample:  b.multisample(),
		DepthStencil: depthState(true),
	})
	if err != nil {
		return fmt.Errorf("hero pipeline: %w", err)
	}

	b.shadowPipeline, err = b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Shadow Render Pipeline",
		Layout: shadowLayout,
		Vertex: wgpu.VertexState{
			Module:     shadowModule,
			EntryPoint: "vs_shadow",
		},
		Fragment: &wgpu.FragmentState{
			Module:     shadowModule,
			EntryPoint: "fs_shadow",
			Targets:    []wgpu.ColorTargetState{b.blendTarget()},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample:  b.multisample(),
		DepthStencil: depthState(false),
	})
	if err != nil {
		return fmt.Errorf("shadow pipeline: %w", err)
	}
	return nil
}

func (b *wgpuRendererBackendImpl) blendTarget() wgpu.ColorTargetState {
	return wgpu.ColorTargetState{
		Format:    b.surfaceFormat,
		WriteMask: wgpu.ColorWriteMaskAll,
		Blend: &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		},
	}
}

func (b *wgpuRendererBackendImpl) multisample() wgpu.MultisampleState {
	return wgpu.MultisampleState{
		Count: uint32(b.sampleCount),
		Mask:  0xFFFFFFFF,
	}
}

// depthState tests against the depth buffer; the shadow disc sits on the ground and never writes depth.
func depthState(write bool) *wgpu.DepthStencilState {
	return &wgpu.DepthStencilState{
		Format:            wgpu.TextureFormatDepth24Plus,
		DepthWriteEnabled: write,
		DepthCompare:      wgpu.CompareFunctionLess,
		StencilFront: wgpu.StencilFaceState{
			Compare: wgpu.CompareFunctionAlways,
		},
		StencilBack: wgpu.StencilFaceState{
			Compare: wgpu.CompareFunctionAlways,
		},
	}
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.configureLocked(width, height)
}

func (b *wgpuRendererBackendImpl) configureLocked(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   b.alphaMode,
	})
	b.releaseAttachments()

	count := uint32(b.sampleCount)
	msaaEnabled := count > 1
	size := wgpu.Extent3D{
		Width:              uint32(width),
		Height:             uint32(height),
		DepthOrArrayLayers: 1,
	}

	var err error
	if msaaEnabled {
		// The MSAA texture is drawn into and resolved to the swapchain view.
		b.msaaTexture, err = b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label:         "MSAA Texture",
			Size:          size,
			MipLevelCount: 1,
			SampleCount:   count,
			Dimension:     wgpu.TextureDimension2D,
			Format:        b.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			return err
		}
		b.msaaTextureView, err = b.msaaTexture.CreateView(nil)
		if err != nil {
			return err
		}
	}

	// Depth sample count must match the color attachment.
	b.depthTexture, err = b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Depth Texture",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   count,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return err
	}
	b.depthTextureView, err = b.depthTexture.CreateView(nil)
	if err != nil {
		return err
	}

	storeOp := wgpu.StoreOpStore
	if msaaEnabled {
		storeOp = wgpu.StoreOpDiscard
	}
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:    b.msaaTextureView, // nil when MSAA is off; set in BeginFrame
				LoadOp:  wgpu.LoadOpClear,
				StoreOp: storeOp,
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}
	return nil
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeVSync:
		b.presentMode = wgpu.PresentModeFifo
	default:
		b.presentMode = wgpu.PresentModeImmediate
	}
}

func (b *wgpuRendererBackendImpl) UploadMesh(vertices, indices []byte, ranges []SurfaceRange) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.releaseMeshLocked()
	if len(vertices) == 0 || len(indices) == 0 {
		return nil
	}

	var err error
	b.vertexBuffer, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Hero Vertex Buffer",
		Size:  uint64(len(vertices)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	b.queue.WriteBuffer(b.vertexBuffer, 0, vertices)

	b.indexBuffer, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Hero Index Buffer",
		Size:  uint64(len(indices)),
		Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		b.releaseMeshLocked()
		return err
	}
	b.queue.WriteBuffer(b.indexBuffer, 0, indices)

	for i, rng := range ranges {
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: fmt.Sprintf("Surface %d Uniforms", i),
			Size:  surfaceUniformSize,
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			b.releaseMeshLocked()
			return err
		}
		bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  fmt.Sprintf("Surface %d Bind Group", i),
			Layout: b.surfaceLayout,
			Entries: []wgpu.BindGroupEntry{{
				Binding: 0,
				Buffer:  buf,
				Size:    wgpu.WholeSize,
			}},
		})
		if err != nil {
			buf.Release()
			b.releaseMeshLocked()
			return err
		}
		b.surfaces = append(b.surfaces, surfaceBinding{rng: rng, buffer: buf, bindGroup: bg})
	}
	return nil
}

func (b *wgpuRendererBackendImpl) ReleaseMesh() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.releaseMeshLocked()
}

func (b *wgpuRendererBackendImpl) releaseMeshLocked() {
	for _, s := range b.surfaces {
		s.bindGroup.Release()
		s.buffer.Release()
	}
	b.surfaces = nil
	if b.indexBuffer != nil {
		b.indexBuffer.Release()
		b.indexBuffer = nil
	}
	if b.vertexBuffer != nil {
		b.vertexBuffer.Release()
		b.vertexBuffer = nil
	}
}

func (b *wgpuRendererBackendImpl) WriteScene(scene []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queue.WriteBuffer(b.sceneBuffer, 0, scene)
}

func (b *wgpuRendererBackendImpl) WriteSurfaces(surfaces [][]byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, data := range surfaces {
		if i >= len(b.surfaces) {
			return
		}
		b.queue.WriteBuffer(b.surfaces[i].buffer, 0, data)
	}
}

func (b *wgpuRendererBackendImpl) BeginFrame(clear mgl32.Vec3) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface != nil {
		return errors.New("previous frame surface not yet presented")
	}
	if b.renderPassDescriptor == nil {
		return errors.New("surface not configured")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}
	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	attachment := &b.renderPassDescriptor.ColorAttachments[0]
	if b.sampleCount > 1 {
		attachment.ResolveTarget = view
	} else {
		attachment.View = view
	}
	attachment.ClearValue = wgpu.Color{
		R: float64(clear[0]),
		G: float64(clear[1]),
		B: float64(clear[2]),
		A: 1.0,
	}

	b.frameEncoder = encoder
	b.framePass = encoder.BeginRenderPass(b.renderPassDescriptor)
	b.frameSurface = surfaceTexture
	b.frameView = view
	return nil
}

func (b *wgpuRendererBackendImpl) DrawShadow() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return
	}
	b.framePass.SetPipeline(b.shadowPipeline)
	b.framePass.SetBindGroup(0, b.sceneBindGroup, nil)
	b.framePass.Draw(6, 1, 0, 0)
}

func (b *wgpuRendererBackendImpl) DrawSurfaces() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil || b.vertexBuffer == nil {
		return
	}
	b.framePass.SetPipeline(b.heroPipeline)
	b.framePass.SetBindGroup(0, b.sceneBindGroup, nil)
	b.framePass.SetVertexBuffer(0, b.vertexBuffer, 0, wgpu.WholeSize)
	b.framePass.SetIndexBuffer(b.indexBuffer, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	for _, s := range b.surfaces {
		b.framePass.SetBindGroup(1, s.bindGroup, nil)
		b.framePass.DrawIndexed(s.rng.IndexCount, 1, s.rng.FirstIndex, 0, 0)
	}
}

func (b *wgpuRendererBackendImpl) EndFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return
	}
	b.framePass.End()
	b.framePass.Release()
	b.framePass = nil

	commandBuffer, err := b.frameEncoder.Finish(nil)
	b.frameEncoder.Release()
	b.frameEncoder = nil
	if err != nil {
		b.releaseFrameLocked()
		return
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}
	b.surface.Present()
	b.releaseFrameLocked()
}

func (b *wgpuRendererBackendImpl) releaseFrameLocked() {
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

func (b *wgpuRendererBackendImpl) Rebuild(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.releaseLocked()
	if err := b.acquire(); err != nil {
		b.releaseLocked()
		return err
	}
	return b.configureLocked(width, height)
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.releaseLocked()
}

func (b *wgpuRendererBackendImpl) releaseAttachments() {
	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTextureView = nil
	}
	if b.msaaTexture != nil {
		b.msaaTexture.Release()
		b.msaaTexture = nil
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTextureView = nil
	}
	if b.depthTexture != nil {
		b.depthTexture.Release()
		b.depthTexture = nil
	}
	b.renderPassDescriptor = nil
}

// releaseLocked frees resources in reverse order of acquisition. Safe on a partially acquired backend.
func (b *wgpuRendererBackendImpl) releaseLocked() {
	if b.framePass != nil {
		b.framePass.Release()
		b.framePass = nil
	}
	if b.frameEncoder != nil {
		b.frameEncoder.Release()
		b.frameEncoder = nil
	}
	b.releaseFrameLocked()
	b.releaseMeshLocked()
	b.releaseAttachments()

	if b.shadowPipeline != nil {
		b.shadowPipeline.Release()
		b.shadowPipeline = nil
	}
	if b.heroPipeline != nil {
		b.heroPipeline.Release()
		b.heroPipeline = nil
	}
	if b.sceneBindGroup != nil {
		b.sceneBindGroup.Release()
		b.sceneBindGroup = nil
	}
	if b.sceneBuffer != nil {
		b.sceneBuffer.Release()
		b.sceneBuffer = nil
	}
	if b.surfaceLayout != nil {
		b.surfaceLayout.Release()
		b.surfaceLayout = nil
	}
	if b.sceneLayout != nil {
		b.sceneLayout.Release()
		b.sceneLayout = nil
	}
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}
