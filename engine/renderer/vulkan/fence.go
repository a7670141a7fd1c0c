package vulkan

import (
	"math"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/avenir/engine/core"
)

type fenceState int

const (
	fenceSignaled fenceState = iota
	fenceReset
	fenceSubmitted
)

func (s fenceState) String() string {
	switch s {
	case fenceSignaled:
		return "signaled"
	case fenceReset:
		return "reset"
	case fenceSubmitted:
		return "submitted"
	}
	return "unknown"
}

// fenceLedger tracks the host side view of a fence so misuse is caught before it reaches the driver.
type fenceLedger struct {
	state fenceState
}

func (l *fenceLedger) wait() error {
	switch l.state {
	case fenceSubmitted, fenceSignaled:
		l.state = fenceSignaled
		return nil
	}
	return errors.AssertionFailedf("waiting on a fence that was reset and never submitted")
}

func (l *fenceLedger) reset() error {
	if l.state != fenceSignaled {
		return errors.Wrapf(core.ErrFenceNotWaited, "fence is %s", l.state)
	}
	l.state = fenceReset
	return nil
}

func (l *fenceLedger) submit() error {
	if l.state != fenceReset {
		return errors.AssertionFailedf("submitting a fence that is %s", l.state)
	}
	l.state = fenceSubmitted
	return nil
}

type VulkanFence struct {
	Handle vk.Fence
	ledger fenceLedger
}

func NewFence(context *VulkanContext, createSignaled bool) (*VulkanFence, error) {
	fence := &VulkanFence{ledger: fenceLedger{state: fenceReset}}

	fenceCreateInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}
	if createSignaled {
		fenceCreateInfo.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
		fence.ledger.state = fenceSignaled
	}

	var pFence vk.Fence
	if res := vk.CreateFence(context.Device.LogicalDevice, &fenceCreateInfo, context.Allocator, &pFence); res != vk.Success {
		return nil, vulkanError("vkCreateFence", res)
	}
	fence.Handle = pFence
	return fence, nil
}

func (vf *VulkanFence) Destroy(context *VulkanContext) {
	if vf.Handle != nil {
		vk.DestroyFence(context.Device.LogicalDevice, vf.Handle, context.Allocator)
		vf.Handle = nil
	}
}

// Wait blocks until the GPU signals the fence. A fence known to be signaled returns immediately.
func (vf *VulkanFence) Wait(context *VulkanContext) error {
	if vf.ledger.state == fenceSignaled {
		return nil
	}
	if vf.ledger.state == fenceReset {
		return vf.ledger.wait()
	}
	result := vk.WaitForFences(context.Device.LogicalDevice, 1, []vk.Fence{vf.Handle}, vk.True, math.MaxUint64)
	switch result {
	case vk.Success:
		return vf.ledger.wait()
	case vk.Timeout:
		core.LogWarn("vk_fence_wait - timed out")
	}
	return vulkanError("vkWaitForFences", result)
}

// Reset unsignals the fence. It must have been waited on first.
func (vf *VulkanFence) Reset(context *VulkanContext) error {
	if err := vf.ledger.reset(); err != nil {
		return err
	}
	if res := vk.ResetFences(context.Device.LogicalDevice, 1, []vk.Fence{vf.Handle}); res != vk.Success {
		return vulkanError("vkResetFences", res)
	}
	return nil
}

// MarkSubmitted records that the fence was handed to a queue submission.
func (vf *VulkanFence) MarkSubmitted() error {
	return vf.ledger.submit()
}
