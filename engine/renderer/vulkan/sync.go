package vulkan

import (
	vk "github.com/goki/vulkan"
)

type FrameState int32

const (
	FrameIdle FrameState = iota
	FrameAcquiring
	FrameRecording
	FrameSubmitted
	FramePresenting
)

func (s FrameState) String() string {
	switch s {
	case FrameIdle:
		return "idle"
	case FrameAcquiring:
		return "acquiring"
	case FrameRecording:
		return "recording"
	case FrameSubmitted:
		return "submitted"
	case FramePresenting:
		return "presenting"
	}
	return "unknown"
}

// frameCursor holds the two indices that advance once per drawn frame.
// frame selects the fence, command buffer and uniform buffer; semaphore selects the acquire semaphore.
type frameCursor struct {
	frame     uint32
	semaphore uint32
}

func (c *frameCursor) advance(imageCount uint32) {
	c.frame = (c.frame + 1) % MaxFramesInFlight
	if imageCount > 0 {
		c.semaphore = (c.semaphore + 1) % imageCount
	}
}

// frameSync owns the per frame and per swapchain image synchronization objects.
type frameSync struct {
	// one per swapchain image
	presentComplete []vk.Semaphore
	renderFinished  []vk.Semaphore

	// one per frame in flight
	inFlight       []*VulkanFence
	commandBuffers []*VulkanCommandBuffer
}

func newSemaphore(context *VulkanContext) (vk.Semaphore, error) {
	info := vk.SemaphoreCreateInfo{SType: vk.StructureTypeSemaphoreCreateInfo}
	var semaphore vk.Semaphore
	if res := vk.CreateSemaphore(context.Device.LogicalDevice, &info, context.Allocator, &semaphore); res != vk.Success {
		return vk.NullSemaphore, vulkanError("vkCreateSemaphore", res)
	}
	return semaphore, nil
}

func newFrameSync(context *VulkanContext, imageCount uint32) (*frameSync, error) {
	fs := &frameSync{}
	err := context.lockPool.SafeCall(SynchronizationManagement, func() error {
		if err := fs.createSemaphores(context, imageCount); err != nil {
			return err
		}
		for i := 0; i < MaxFramesInFlight; i++ {
			// Signaled so the first wait on each slot returns at once.
			fence, err := NewFence(context, true)
			if err != nil {
				return err
			}
			fs.inFlight = append(fs.inFlight, fence)
		}
		return nil
	})
	if err != nil {
		fs.destroy(context)
		return nil, err
	}

	buffers, err := NewVulkanCommandBuffers(context, context.Device.CommandPool, MaxFramesInFlight)
	if err != nil {
		fs.destroy(context)
		return nil, err
	}
	fs.commandBuffers = buffers
	return fs, nil
}

func (fs *frameSync) createSemaphores(context *VulkanContext, imageCount uint32) error {
	for i := uint32(0); i < imageCount; i++ {
		acquired, err := newSemaphore(context)
		if err != nil {
			return err
		}
		fs.presentComplete = append(fs.presentComplete, acquired)

		finished, err := newSemaphore(context)
		if err != nil {
			return err
		}
		fs.renderFinished = append(fs.renderFinished, finished)
	}
	return nil
}

func (fs *frameSync) destroySemaphores(context *VulkanContext) {
	device := context.Device.LogicalDevice
	for _, s := range fs.presentComplete {
		vk.DestroySemaphore(device, s, context.Allocator)
	}
	for _, s := range fs.renderFinished {
		vk.DestroySemaphore(device, s, context.Allocator)
	}
	fs.presentComplete = nil
	fs.renderFinished = nil
}

// resizeSemaphores rebuilds the per image semaphores after the swapchain image count changed.
// The device must be idle.
func (fs *frameSync) resizeSemaphores(context *VulkanContext, imageCount uint32) error {
	if uint32(len(fs.presentComplete)) == imageCount {
		return nil
	}
	return context.lockPool.SafeCall(SynchronizationManagement, func() error {
		fs.destroySemaphores(context)
		return fs.createSemaphores(context, imageCount)
	})
}

func (fs *frameSync) destroy(context *VulkanContext) {
	for _, cb := range fs.commandBuffers {
		cb.Free(context, context.Device.CommandPool)
	}
	fs.commandBuffers = nil
	_ = context.lockPool.SafeCall(SynchronizationManagement, func() error {
		fs.destroySemaphores(context)
		for _, f := range fs.inFlight {
			f.Destroy(context)
		}
		fs.inFlight = nil
		return nil
	})
}
