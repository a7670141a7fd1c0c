package vulkan

import (
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/avenir/engine/core"
)

// VulkanContext owns the handles every other part of the backend is created from.
type VulkanContext struct {
	// The framebuffer's current size, in pixels.
	FramebufferWidth  uint32
	FramebufferHeight uint32

	Instance  vk.Instance
	Allocator *vk.AllocationCallbacks
	Surface   vk.Surface

	debugCallback vk.DebugReportCallback

	Device    *VulkanDevice
	Swapchain *VulkanSwapchain

	lockPool *VulkanLockPool
}

func newVulkanContext() *VulkanContext {
	return &VulkanContext{lockPool: NewVulkanLockPool()}
}

// FindMemoryIndex returns the memory type of the selected device matching typeFilter and flags.
func (vc *VulkanContext) FindMemoryIndex(typeFilter uint32, flags vk.MemoryPropertyFlags) (uint32, error) {
	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(vc.Device.PhysicalDevice, &memoryProperties)
	memoryProperties.Deref()

	types := make([]vk.MemoryPropertyFlags, memoryProperties.MemoryTypeCount)
	for i := range types {
		memoryProperties.MemoryTypes[i].Deref()
		types[i] = memoryProperties.MemoryTypes[i].PropertyFlags
	}
	idx, err := findMemoryType(types, typeFilter, flags)
	if err != nil {
		core.LogWarn("unable to find suitable memory type (filter 0x%x, flags 0x%x)", typeFilter, uint32(flags))
	}
	return idx, err
}

// findMemoryType picks the lowest index allowed by typeFilter whose flags are a superset of want.
func findMemoryType(types []vk.MemoryPropertyFlags, typeFilter uint32, want vk.MemoryPropertyFlags) (uint32, error) {
	for i := uint32(0); i < uint32(len(types)) && i < 32; i++ {
		if typeFilter&(1<<i) != 0 && types[i]&want == want {
			return i, nil
		}
	}
	return 0, errors.Wrapf(core.ErrNoSuitableMemoryType, "filter 0x%x", typeFilter)
}
