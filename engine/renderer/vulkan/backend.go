package vulkan

import (
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/avenir/engine/core"
	amath "github.com/spaghettifunk/avenir/engine/math"
	"github.com/spaghettifunk/avenir/engine/platform"
	"github.com/spaghettifunk/avenir/engine/renderer/metadata"
)

// Window is what the backend needs from the platform window.
type Window interface {
	surfaceSource
	FramebufferSize() (int, int)
	RequiredInstanceExtensions() []string
	IsOpen() bool
}

type VulkanRendererConfig struct {
	AppName    string
	Validation bool
	Shader     *metadata.ShaderResourceData
	Texture    *metadata.ImageResourceData
	// LoadShader reads the shader again after it changed on disk. Nil disables hot reload.
	LoadShader func() (*metadata.ShaderResourceData, error)
}

type VulkanRenderer struct {
	context *VulkanContext
	window  Window

	loadShader func() (*metadata.ShaderResourceData, error)
	shader     *metadata.ShaderResourceData

	pipeline     *VulkanPipeline
	descriptors  *VulkanDescriptors
	vertexBuffer *VulkanBuffer
	indexBuffer  *VulkanBuffer
	indexCount   uint32
	texture      *VulkanTexture
	uniforms     []*VulkanBuffer
	sync         *frameSync

	cursor frameCursor
	state  FrameState

	resized       atomic.Bool
	shaderChanged atomic.Bool
}

// NewVulkanRenderer brings up the whole backend. On failure everything created so far is released.
func NewVulkanRenderer(window Window, cfg VulkanRendererConfig) (*VulkanRenderer, error) {
	r := &VulkanRenderer{
		context:    newVulkanContext(),
		window:     window,
		loadShader: cfg.LoadShader,
		shader:     cfg.Shader,
	}
	if err := r.initialize(cfg); err != nil {
		core.LogError("%s", err)
		r.destroy()
		return nil, err
	}
	core.LogInfo("Vulkan renderer initialized successfully.")
	return r, nil
}

func (r *VulkanRenderer) initialize(cfg VulkanRendererConfig) error {
	if cfg.Shader == nil || cfg.Texture == nil {
		return errors.New("renderer needs a shader and a texture")
	}
	ctx := r.context

	if err := loadVulkan(platform.GetInstanceProcAddress()); err != nil {
		return err
	}
	err := createInstance(ctx, instanceConfig{
		AppName:          cfg.AppName,
		Validation:       cfg.Validation,
		WindowExtensions: r.window.RequiredInstanceExtensions(),
	})
	if err != nil {
		return err
	}
	if err := createSurface(ctx, r.window); err != nil {
		return err
	}
	if err := SelectPhysicalDevice(ctx); err != nil {
		return err
	}
	if err := DeviceCreate(ctx); err != nil {
		return err
	}

	width, height := r.window.FramebufferSize()
	swapchain, err := SwapchainCreate(ctx, width, height)
	if err != nil {
		return err
	}
	ctx.Swapchain = swapchain
	ctx.FramebufferWidth = swapchain.Extent.Width
	ctx.FramebufferHeight = swapchain.Extent.Height

	if r.descriptors, err = NewDescriptors(ctx); err != nil {
		return err
	}
	if r.pipeline, err = r.newPipeline(cfg.Shader); err != nil {
		return err
	}

	mesh := metadata.QuadMesh()
	if r.vertexBuffer, err = UploadBuffer(ctx, mesh.VertexBytes(), vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit)); err != nil {
		return err
	}
	if r.indexBuffer, err = UploadBuffer(ctx, mesh.IndexBytes(), vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit)); err != nil {
		return err
	}
	r.indexCount = mesh.IndexCount()

	if r.texture, err = NewTexture(ctx, cfg.Texture.Pixels, cfg.Texture.Width, cfg.Texture.Height); err != nil {
		return err
	}
	if err := r.createUniformBuffers(); err != nil {
		return err
	}
	r.descriptors.Write(ctx, r.uniforms, r.texture)

	if r.sync, err = newFrameSync(ctx, swapchain.ImageCount()); err != nil {
		return err
	}
	return nil
}

func (r *VulkanRenderer) newPipeline(shader *metadata.ShaderResourceData) (*VulkanPipeline, error) {
	return NewGraphicsPipeline(r.context, &VulkanPipelineConfig{
		ColorFormat:          r.context.Swapchain.ImageFormat.Format,
		Shader:               shader,
		DescriptorSetLayouts: []vk.DescriptorSetLayout{r.descriptors.SetLayout},
	})
}

// createUniformBuffers makes one persistently mapped uniform buffer per frame in flight.
func (r *VulkanRenderer) createUniformBuffers() error {
	for i := 0; i < MaxFramesInFlight; i++ {
		buffer, err := NewBuffer(r.context,
			vk.DeviceSize(metadata.UniformBufferObjectSize),
			vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit),
			vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
		if err != nil {
			return err
		}
		r.uniforms = append(r.uniforms, buffer)
		if _, err := buffer.Map(r.context); err != nil {
			return err
		}
	}
	return nil
}

// State is the step of the frame sequence the renderer is in.
func (r *VulkanRenderer) State() FrameState {
	return r.state
}

// OnFramebufferResize only flags the swapchain for recreation after the next present.
func (r *VulkanRenderer) OnFramebufferResize(width, height int) {
	core.LogDebug("framebuffer resized to %dx%d", width, height)
	r.resized.Store(true)
}

// OnShaderChanged schedules a pipeline rebuild at the start of the next frame.
// It is safe to call from any goroutine.
func (r *VulkanRenderer) OnShaderChanged() {
	if r.loadShader != nil {
		r.shaderChanged.Store(true)
	}
}

// frameUniforms fills the uniform block for one frame: identity model, the camera view and a Y flipped projection.
func frameUniforms(view mgl32.Mat4, extent vk.Extent2D) metadata.UniformBufferObject {
	aspect := float32(1)
	if extent.Height != 0 {
		aspect = float32(extent.Width) / float32(extent.Height)
	}
	return metadata.UniformBufferObject{
		Model: mgl32.Ident4(),
		View:  view,
		Proj:  amath.PerspectiveVulkan(45, aspect, 0.1, 10),
	}
}

// DrawFrame records and submits one frame. A stale swapchain skips the frame without an error.
func (r *VulkanRenderer) DrawFrame(view mgl32.Mat4) error {
	ctx := r.context
	if err := r.reloadShaderIfChanged(); err != nil {
		return err
	}

	frame := r.cursor.frame
	fence := r.sync.inFlight[frame]
	cmd := r.sync.commandBuffers[frame]

	if err := fence.Wait(ctx); err != nil {
		core.LogError("%s", err)
		return err
	}

	r.state = FrameAcquiring
	imageIndex, res := ctx.Swapchain.AcquireNextImage(ctx, r.sync.presentComplete[r.cursor.semaphore])
	switch {
	case res == vk.ErrorOutOfDate:
		r.state = FrameIdle
		return r.recreateSwapchain()
	case res != vk.Success && res != vk.Suboptimal:
		err := errors.Wrapf(core.ErrSwapchainAcquire, "%s", VulkanResultString(res, true))
		core.LogError("%s", err)
		return err
	}

	ubo := frameUniforms(view, ctx.Swapchain.Extent)
	if err := r.uniforms[frame].Write(ctx, ubo.Bytes()); err != nil {
		return err
	}

	// Only reset once work is certain to be submitted.
	if err := fence.Reset(ctx); err != nil {
		core.LogError("%s", err)
		return err
	}

	r.state = FrameRecording
	if err := cmd.Reset(); err != nil {
		return err
	}
	if err := cmd.Begin(false); err != nil {
		return err
	}
	r.recordCommands(cmd, imageIndex)
	if err := cmd.End(); err != nil {
		return err
	}

	if err := r.submit(cmd, fence, r.sync.presentComplete[r.cursor.semaphore], r.sync.renderFinished[imageIndex]); err != nil {
		return err
	}

	r.state = FramePresenting
	res = ctx.Swapchain.Present(ctx, r.sync.renderFinished[imageIndex], imageIndex)
	// Advance before a possible rebuild so the next acquire uses a fresh semaphore.
	r.cursor.advance(ctx.Swapchain.ImageCount())
	r.state = FrameIdle

	if presentFailed(res) {
		err := errors.Wrapf(core.ErrSwapchainPresent, "%s", VulkanResultString(res, true))
		core.LogError("%s", err)
		return err
	}
	if swapchainIsStale(res) || r.resized.Load() {
		return r.recreateSwapchain()
	}
	return nil
}

// presentFailed reports a present result that a swapchain rebuild cannot fix.
func presentFailed(res vk.Result) bool {
	return res != vk.Success && !swapchainIsStale(res)
}

func (r *VulkanRenderer) submit(cmd *VulkanCommandBuffer, fence *VulkanFence, wait, signal vk.Semaphore) error {
	device := r.context.Device
	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{wait},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{cmd.Handle},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{signal},
	}
	err := r.context.lockPool.SafeQueueCall(device.QueueFamilyIndex, func() error {
		if res := vk.QueueSubmit(device.Queue, 1, []vk.SubmitInfo{submitInfo}, fence.Handle); res != vk.Success {
			return vulkanError("vkQueueSubmit", res)
		}
		return nil
	})
	if err != nil {
		return err
	}
	cmd.UpdateSubmitted()
	r.state = FrameSubmitted
	return fence.MarkSubmitted()
}

// swapchainBarrier is one side of the layout change wrapped around rendering.
type swapchainBarrier struct {
	srcStage  vk.PipelineStageFlags2
	srcAccess vk.AccessFlags2
	dstStage  vk.PipelineStageFlags2
	dstAccess vk.AccessFlags2
	oldLayout vk.ImageLayout
	newLayout vk.ImageLayout
}

// Discarding the previous contents is fine, every frame clears.
var toColorAttachment = swapchainBarrier{
	srcStage:  pipelineStage2TopOfPipe,
	srcAccess: access2None,
	dstStage:  pipelineStage2ColorAttachmentOutput,
	dstAccess: access2ColorAttachmentWrite,
	oldLayout: vk.ImageLayoutUndefined,
	newLayout: vk.ImageLayoutColorAttachmentOptimal,
}

var toPresent = swapchainBarrier{
	srcStage:  pipelineStage2ColorAttachmentOutput,
	srcAccess: access2ColorAttachmentWrite,
	dstStage:  pipelineStage2BottomOfPipe,
	dstAccess: access2None,
	oldLayout: vk.ImageLayoutColorAttachmentOptimal,
	newLayout: vk.ImageLayoutPresentSrc,
}

func (b swapchainBarrier) record(cmd vk.CommandBuffer, image vk.Image) {
	barrier := vk.ImageMemoryBarrier2{
		SType:               vk.StructureTypeImageMemoryBarrier2,
		SrcStageMask:        b.srcStage,
		SrcAccessMask:       b.srcAccess,
		DstStageMask:        b.dstStage,
		DstAccessMask:       b.dstAccess,
		OldLayout:           b.oldLayout,
		NewLayout:           b.newLayout,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               image,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LevelCount: 1,
			LayerCount: 1,
		},
	}
	dependency := vk.DependencyInfo{
		SType:                   vk.StructureTypeDependencyInfo,
		ImageMemoryBarrierCount: 1,
		PImageMemoryBarriers:    []vk.ImageMemoryBarrier2{barrier},
	}
	cmdPipelineBarrier2(cmd, &dependency)
}

func (r *VulkanRenderer) recordCommands(cmd *VulkanCommandBuffer, imageIndex uint32) {
	swapchain := r.context.Swapchain
	handle := cmd.Handle
	extent := swapchain.Extent

	toColorAttachment.record(handle, swapchain.Images[imageIndex])

	colorAttachment := vk.RenderingAttachmentInfo{
		SType:       vk.StructureTypeRenderingAttachmentInfo,
		ImageView:   swapchain.Views[imageIndex],
		ImageLayout: vk.ImageLayoutColorAttachmentOptimal,
		LoadOp:      vk.AttachmentLoadOpClear,
		StoreOp:     vk.AttachmentStoreOpStore,
		ClearValue:  vk.NewClearValue(clearColor[:]),
	}
	renderingInfo := vk.RenderingInfo{
		SType: vk.StructureTypeRenderingInfo,
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: extent,
		},
		LayerCount:           1,
		ColorAttachmentCount: 1,
		PColorAttachments:    []vk.RenderingAttachmentInfo{colorAttachment},
	}
	cmdBeginRendering(handle, &renderingInfo)

	r.pipeline.Bind(cmd, vk.PipelineBindPointGraphics)
	vk.CmdSetViewport(handle, 0, 1, []vk.Viewport{{
		X:        0,
		Y:        0,
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0,
		MaxDepth: 1,
	}})
	vk.CmdSetScissor(handle, 0, 1, []vk.Rect2D{{Extent: extent}})

	vk.CmdBindVertexBuffers(handle, 0, 1, []vk.Buffer{r.vertexBuffer.Handle}, []vk.DeviceSize{0})
	vk.CmdBindIndexBuffer(handle, r.indexBuffer.Handle, 0, vk.IndexTypeUint16)
	vk.CmdBindDescriptorSets(handle, vk.PipelineBindPointGraphics, r.pipeline.PipelineLayout,
		0, 1, []vk.DescriptorSet{r.descriptors.Sets[r.cursor.frame]}, 0, nil)
	vk.CmdDrawIndexed(handle, r.indexCount, 1, 0, 0, 0)

	cmdEndRendering(handle)

	toPresent.record(handle, swapchain.Images[imageIndex])
}

// recreateSwapchain rebuilds the swapchain for the current framebuffer size. Calling it twice in a row is harmless.
func (r *VulkanRenderer) recreateSwapchain() error {
	ctx := r.context
	width, height := r.window.FramebufferSize()
	// Minimized: nothing to present into until the window comes back.
	for (width == 0 || height == 0) && r.window.IsOpen() {
		platform.WaitEvents()
		width, height = r.window.FramebufferSize()
	}
	if width == 0 || height == 0 {
		return nil
	}

	vk.DeviceWaitIdle(ctx.Device.LogicalDevice)

	oldFormat := ctx.Swapchain.ImageFormat.Format
	ctx.Swapchain.Destroy(ctx)
	swapchain, err := SwapchainCreate(ctx, width, height)
	if err != nil {
		core.LogError("%s", err)
		return err
	}
	ctx.Swapchain = swapchain
	ctx.FramebufferWidth = swapchain.Extent.Width
	ctx.FramebufferHeight = swapchain.Extent.Height

	if err := r.sync.resizeSemaphores(ctx, swapchain.ImageCount()); err != nil {
		return err
	}
	r.cursor.semaphore = 0
	r.resized.Store(false)

	if swapchain.ImageFormat.Format != oldFormat {
		core.LogInfo("swapchain format changed, rebuilding pipeline")
		pipeline, err := r.newPipeline(r.shader)
		if err != nil {
			return err
		}
		r.pipeline.Destroy(ctx)
		r.pipeline = pipeline
	}
	return nil
}

// reloadShaderIfChanged swaps in a pipeline built from the new shader. A broken shader keeps the old pipeline.
func (r *VulkanRenderer) reloadShaderIfChanged() error {
	if !r.shaderChanged.Swap(false) {
		return nil
	}
	shader, err := r.loadShader()
	if err != nil {
		core.LogWarn("shader reload skipped: %s", err)
		return nil
	}

	vk.DeviceWaitIdle(r.context.Device.LogicalDevice)
	pipeline, err := r.newPipeline(shader)
	if err != nil {
		core.LogWarn("shader reload failed, keeping the previous pipeline: %s", err)
		return nil
	}
	r.pipeline.Destroy(r.context)
	r.pipeline = pipeline
	r.shader = shader
	core.LogInfo("shader reloaded")
	return nil
}

// Shutdown waits for the GPU and releases everything in reverse creation order.
func (r *VulkanRenderer) Shutdown() error {
	core.LogInfo("Shutting down the Vulkan renderer...")
	r.destroy()
	return nil
}

func (r *VulkanRenderer) destroy() {
	ctx := r.context
	if ctx.Device != nil && ctx.Device.LogicalDevice != nil {
		vk.DeviceWaitIdle(ctx.Device.LogicalDevice)

		if r.sync != nil {
			r.sync.destroy(ctx)
			r.sync = nil
		}
		if r.descriptors != nil {
			r.descriptors.Destroy(ctx)
			r.descriptors = nil
		}
		for _, u := range r.uniforms {
			u.Destroy(ctx)
		}
		r.uniforms = nil
		if r.texture != nil {
			r.texture.Destroy(ctx)
			r.texture = nil
		}
		if r.indexBuffer != nil {
			r.indexBuffer.Destroy(ctx)
			r.indexBuffer = nil
		}
		if r.vertexBuffer != nil {
			r.vertexBuffer.Destroy(ctx)
			r.vertexBuffer = nil
		}
		if r.pipeline != nil {
			r.pipeline.Destroy(ctx)
			r.pipeline = nil
		}
		if ctx.Swapchain != nil {
			ctx.Swapchain.Destroy(ctx)
			ctx.Swapchain = nil
		}
		DeviceDestroy(ctx)
	}
	destroyInstance(ctx)
}
