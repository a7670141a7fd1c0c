package vulkan

import (
	"math"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/avenir/engine/core"
	amath "github.com/spaghettifunk/avenir/engine/math"
)

type VulkanSwapchain struct {
	Handle      vk.Swapchain
	ImageFormat vk.SurfaceFormat
	PresentMode vk.PresentMode
	Extent      vk.Extent2D
	Images      []vk.Image
	Views       []vk.ImageView
}

type VulkanSwapchainSupportInfo struct {
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

// adequate reports whether the surface can be presented to at all.
func (si *VulkanSwapchainSupportInfo) adequate() bool {
	return len(si.Formats) > 0 && len(si.PresentModes) > 0
}

// chooseSwapSurfaceFormat prefers 8 bit sRGB BGRA with a non linear color space.
func chooseSwapSurfaceFormat(formats []vk.SurfaceFormat) vk.SurfaceFormat {
	for _, f := range formats {
		if f.Format == vk.FormatB8g8r8a8Srgb && f.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return f
		}
	}
	if len(formats) == 0 {
		return vk.SurfaceFormat{}
	}
	return formats[0]
}

// chooseSwapPresentMode prefers mailbox. FIFO is always available.
func chooseSwapPresentMode(modes []vk.PresentMode) vk.PresentMode {
	for _, m := range modes {
		if m == vk.PresentModeMailbox {
			return m
		}
	}
	return vk.PresentModeFifo
}

// chooseSwapExtent uses the surface extent unless the surface leaves it to the application.
func chooseSwapExtent(caps vk.SurfaceCapabilities, fbWidth, fbHeight int) vk.Extent2D {
	if caps.CurrentExtent.Width != math.MaxUint32 {
		return caps.CurrentExtent
	}
	return vk.Extent2D{
		Width:  amath.Clamp(uint32(max(fbWidth, 0)), caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: amath.Clamp(uint32(max(fbHeight, 0)), caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// chooseSwapMinImageCount asks for triple buffering when the surface allows it. A max of 0 means unbounded.
func chooseSwapMinImageCount(caps vk.SurfaceCapabilities) uint32 {
	count := max(minSwapchainImages, caps.MinImageCount)
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

func querySwapchainSupport(physicalDevice vk.PhysicalDevice, surface vk.Surface) (*VulkanSwapchainSupportInfo, error) {
	info := &VulkanSwapchainSupportInfo{}

	if res := vk.GetPhysicalDeviceSurfaceCapabilities(physicalDevice, surface, &info.Capabilities); res != vk.Success {
		return nil, vulkanError("vkGetPhysicalDeviceSurfaceCapabilitiesKHR", res)
	}
	info.Capabilities.Deref()
	info.Capabilities.CurrentExtent.Deref()
	info.Capabilities.MinImageExtent.Deref()
	info.Capabilities.MaxImageExtent.Deref()

	var formatCount uint32
	if res := vk.GetPhysicalDeviceSurfaceFormats(physicalDevice, surface, &formatCount, nil); res != vk.Success {
		return nil, vulkanError("vkGetPhysicalDeviceSurfaceFormatsKHR", res)
	}
	if formatCount != 0 {
		info.Formats = make([]vk.SurfaceFormat, formatCount)
		if res := vk.GetPhysicalDeviceSurfaceFormats(physicalDevice, surface, &formatCount, info.Formats); res != vk.Success {
			return nil, vulkanError("vkGetPhysicalDeviceSurfaceFormatsKHR", res)
		}
		for i := range info.Formats {
			info.Formats[i].Deref()
		}
	}

	var modeCount uint32
	if res := vk.GetPhysicalDeviceSurfacePresentModes(physicalDevice, surface, &modeCount, nil); res != vk.Success {
		return nil, vulkanError("vkGetPhysicalDeviceSurfacePresentModesKHR", res)
	}
	if modeCount != 0 {
		info.PresentModes = make([]vk.PresentMode, modeCount)
		if res := vk.GetPhysicalDeviceSurfacePresentModes(physicalDevice, surface, &modeCount, info.PresentModes); res != vk.Success {
			return nil, vulkanError("vkGetPhysicalDeviceSurfacePresentModesKHR", res)
		}
	}
	return info, nil
}

// swapchainPlan is everything the choosers decide for one surface and framebuffer size.
type swapchainPlan struct {
	Format        vk.SurfaceFormat
	PresentMode   vk.PresentMode
	Extent        vk.Extent2D
	MinImageCount uint32
	Transform     vk.SurfaceTransformFlagBits
}

func planSwapchain(support *VulkanSwapchainSupportInfo, fbWidth, fbHeight int) swapchainPlan {
	return swapchainPlan{
		Format:        chooseSwapSurfaceFormat(support.Formats),
		PresentMode:   chooseSwapPresentMode(support.PresentModes),
		Extent:        chooseSwapExtent(support.Capabilities, fbWidth, fbHeight),
		MinImageCount: chooseSwapMinImageCount(support.Capabilities),
		Transform:     support.Capabilities.CurrentTransform,
	}
}

func (p swapchainPlan) createInfo(surface vk.Surface) vk.SwapchainCreateInfo {
	return vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          surface,
		MinImageCount:    p.MinImageCount,
		ImageFormat:      p.Format.Format,
		ImageColorSpace:  p.Format.ColorSpace,
		ImageExtent:      p.Extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     p.Transform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      p.PresentMode,
		Clipped:          vk.True,
		OldSwapchain:     vk.NullSwapchain,
	}
}

// SwapchainCreate builds the swapchain and its image views for a framebuffer of the given size.
func SwapchainCreate(context *VulkanContext, fbWidth, fbHeight int) (*VulkanSwapchain, error) {
	support, err := querySwapchainSupport(context.Device.PhysicalDevice, context.Surface)
	if err != nil {
		return nil, err
	}
	context.Device.SwapchainSupport = support

	plan := planSwapchain(support, fbWidth, fbHeight)
	swapchain := &VulkanSwapchain{
		ImageFormat: plan.Format,
		PresentMode: plan.PresentMode,
		Extent:      plan.Extent,
	}
	createInfo := plan.createInfo(context.Surface)

	err = context.lockPool.SafeCall(SwapchainManagement, func() error {
		var handle vk.Swapchain
		if res := vk.CreateSwapchain(context.Device.LogicalDevice, &createInfo, context.Allocator, &handle); res != vk.Success {
			return vulkanError("vkCreateSwapchainKHR", res)
		}
		swapchain.Handle = handle

		var imageCount uint32
		if res := vk.GetSwapchainImages(context.Device.LogicalDevice, handle, &imageCount, nil); res != vk.Success {
			return vulkanError("vkGetSwapchainImagesKHR", res)
		}
		swapchain.Images = make([]vk.Image, imageCount)
		if res := vk.GetSwapchainImages(context.Device.LogicalDevice, handle, &imageCount, swapchain.Images); res != vk.Success {
			return vulkanError("vkGetSwapchainImagesKHR", res)
		}
		return nil
	})
	if err != nil {
		swapchain.Destroy(context)
		return nil, err
	}

	if err := swapchain.createImageViews(context); err != nil {
		swapchain.Destroy(context)
		return nil, err
	}

	core.LogInfo("swapchain created: %dx%d, %d images, present mode %d",
		swapchain.Extent.Width, swapchain.Extent.Height, len(swapchain.Images), swapchain.PresentMode)
	return swapchain, nil
}

// createImageViews makes one color view per swapchain image. It refuses to run twice.
func (vs *VulkanSwapchain) createImageViews(context *VulkanContext) error {
	if len(vs.Views) != 0 {
		return errors.Wrapf(core.ErrImageViewsNotEmpty, "%d views still alive", len(vs.Views))
	}
	views := make([]vk.ImageView, 0, len(vs.Images))
	for _, image := range vs.Images {
		view, err := NewImageView(context, image, vs.ImageFormat.Format)
		if err != nil {
			for _, v := range views {
				vk.DestroyImageView(context.Device.LogicalDevice, v, context.Allocator)
			}
			return err
		}
		views = append(views, view)
	}
	vs.Views = views
	return nil
}

func (vs *VulkanSwapchain) ImageCount() uint32 {
	return uint32(len(vs.Images))
}

// Destroy releases the views and the swapchain. The images belong to the swapchain.
func (vs *VulkanSwapchain) Destroy(context *VulkanContext) {
	_ = context.lockPool.SafeCall(SwapchainManagement, func() error {
		for _, view := range vs.Views {
			vk.DestroyImageView(context.Device.LogicalDevice, view, context.Allocator)
		}
		vs.Views = nil
		vs.Images = nil
		if vs.Handle != vk.NullSwapchain {
			vk.DestroySwapchain(context.Device.LogicalDevice, vs.Handle, context.Allocator)
			vs.Handle = vk.NullSwapchain
		}
		return nil
	})
}

// AcquireNextImage returns the raw result so the caller can tell a stale swapchain from a failure.
func (vs *VulkanSwapchain) AcquireNextImage(context *VulkanContext, imageAvailable vk.Semaphore) (uint32, vk.Result) {
	var imageIndex uint32
	res := vk.AcquireNextImage(context.Device.LogicalDevice, vs.Handle, math.MaxUint64, imageAvailable, vk.NullFence, &imageIndex)
	return imageIndex, res
}

func (vs *VulkanSwapchain) Present(context *VulkanContext, renderComplete vk.Semaphore, imageIndex uint32) vk.Result {
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{renderComplete},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{vs.Handle},
		PImageIndices:      []uint32{imageIndex},
	}

	var res vk.Result
	device := context.Device
	_ = context.lockPool.SafeQueueCall(device.QueueFamilyIndex, func() error {
		res = vk.QueuePresent(device.Queue, &presentInfo)
		return nil
	})
	return res
}

// swapchainIsStale reports results that call for a rebuild rather than an error.
func swapchainIsStale(res vk.Result) bool {
	return res == vk.ErrorOutOfDate || res == vk.Suboptimal
}
