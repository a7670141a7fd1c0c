package vulkan

import (
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
)

type VulkanCommandBufferState int

const (
	COMMAND_BUFFER_STATE_NOT_ALLOCATED VulkanCommandBufferState = iota
	COMMAND_BUFFER_STATE_READY
	COMMAND_BUFFER_STATE_RECORDING
	COMMAND_BUFFER_STATE_RECORDING_ENDED
	COMMAND_BUFFER_STATE_SUBMITTED
)

type VulkanCommandBuffer struct {
	Handle vk.CommandBuffer
	State  VulkanCommandBufferState
}

// NewVulkanCommandBuffers allocates count primary command buffers from pool.
func NewVulkanCommandBuffers(context *VulkanContext, pool vk.CommandPool, count uint32) ([]*VulkanCommandBuffer, error) {
	allocateInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		CommandBufferCount: count,
		Level:              vk.CommandBufferLevelPrimary,
	}

	handles := make([]vk.CommandBuffer, count)
	err := context.lockPool.SafeCall(CommandBufferManagement, func() error {
		if res := vk.AllocateCommandBuffers(context.Device.LogicalDevice, &allocateInfo, handles); res != vk.Success {
			return vulkanError("vkAllocateCommandBuffers", res)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	buffers := make([]*VulkanCommandBuffer, count)
	for i := range handles {
		buffers[i] = &VulkanCommandBuffer{Handle: handles[i], State: COMMAND_BUFFER_STATE_READY}
	}
	return buffers, nil
}

func (v *VulkanCommandBuffer) Free(context *VulkanContext, pool vk.CommandPool) {
	if v.Handle == nil {
		return
	}
	_ = context.lockPool.SafeCall(CommandBufferManagement, func() error {
		vk.FreeCommandBuffers(context.Device.LogicalDevice, pool, 1, []vk.CommandBuffer{v.Handle})
		return nil
	})
	v.Handle = nil
	v.State = COMMAND_BUFFER_STATE_NOT_ALLOCATED
}

func (v *VulkanCommandBuffer) Begin(isSingleUse bool) error {
	if v.State != COMMAND_BUFFER_STATE_READY {
		return errors.AssertionFailedf("begin on command buffer in state %d", v.State)
	}
	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
	}
	if isSingleUse {
		beginInfo.Flags = vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit)
	}
	if res := vk.BeginCommandBuffer(v.Handle, &beginInfo); res != vk.Success {
		return vulkanError("vkBeginCommandBuffer", res)
	}
	v.State = COMMAND_BUFFER_STATE_RECORDING
	return nil
}

func (v *VulkanCommandBuffer) End() error {
	if res := vk.EndCommandBuffer(v.Handle); res != vk.Success {
		return vulkanError("vkEndCommandBuffer", res)
	}
	v.State = COMMAND_BUFFER_STATE_RECORDING_ENDED
	return nil
}

func (v *VulkanCommandBuffer) UpdateSubmitted() {
	v.State = COMMAND_BUFFER_STATE_SUBMITTED
}

// Reset returns the buffer to the initial state. The pool must allow individual resets.
func (v *VulkanCommandBuffer) Reset() error {
	if res := vk.ResetCommandBuffer(v.Handle, 0); res != vk.Success {
		return vulkanError("vkResetCommandBuffer", res)
	}
	v.State = COMMAND_BUFFER_STATE_READY
	return nil
}

// AllocateAndBeginSingleUse allocates a command buffer from the device pool and starts recording.
func AllocateAndBeginSingleUse(context *VulkanContext) (*VulkanCommandBuffer, error) {
	buffers, err := NewVulkanCommandBuffers(context, context.Device.CommandPool, 1)
	if err != nil {
		return nil, err
	}
	cb := buffers[0]
	if err := cb.Begin(true); err != nil {
		cb.Free(context, context.Device.CommandPool)
		return nil, err
	}
	return cb, nil
}

// EndSingleUse ends recording, submits, waits for the queue to idle and frees the buffer.
func (v *VulkanCommandBuffer) EndSingleUse(context *VulkanContext) error {
	defer v.Free(context, context.Device.CommandPool)

	if err := v.End(); err != nil {
		return err
	}

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{v.Handle},
	}

	device := context.Device
	return context.lockPool.SafeQueueCall(device.QueueFamilyIndex, func() error {
		if res := vk.QueueSubmit(device.Queue, 1, []vk.SubmitInfo{submitInfo}, vk.NullFence); res != vk.Success {
			return vulkanError("vkQueueSubmit", res)
		}
		v.UpdateSubmitted()
		if res := vk.QueueWaitIdle(device.Queue); res != vk.Success {
			return vulkanError("vkQueueWaitIdle", res)
		}
		return nil
	})
}

// runSingleUse records the commands of fn into a one-shot buffer and executes them synchronously.
func runSingleUse(context *VulkanContext, fn func(cmd vk.CommandBuffer)) error {
	cb, err := AllocateAndBeginSingleUse(context)
	if err != nil {
		return err
	}
	fn(cb.Handle)
	return cb.EndSingleUse(context)
}
