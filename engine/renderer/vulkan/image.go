package vulkan

import (
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/avenir/engine/core"
)

// VulkanImage is an image, its memory and its default view.
type VulkanImage struct {
	Handle vk.Image
	Memory vk.DeviceMemory
	View   vk.ImageView
	Width  uint32
	Height uint32
	Format vk.Format
}

func NewImage(context *VulkanContext, width, height uint32, format vk.Format, tiling vk.ImageTiling, usage vk.ImageUsageFlags, properties vk.MemoryPropertyFlags) (*VulkanImage, error) {
	image := &VulkanImage{Width: width, Height: height, Format: format}
	device := context.Device.LogicalDevice

	err := context.lockPool.SafeCall(ImageManagement, func() error {
		imageInfo := vk.ImageCreateInfo{
			SType:         vk.StructureTypeImageCreateInfo,
			ImageType:     vk.ImageType2d,
			Format:        format,
			Extent:        vk.Extent3D{Width: width, Height: height, Depth: 1},
			MipLevels:     1,
			ArrayLayers:   1,
			Samples:       vk.SampleCount1Bit,
			Tiling:        tiling,
			Usage:         usage,
			SharingMode:   vk.SharingModeExclusive,
			InitialLayout: vk.ImageLayoutUndefined,
		}
		var handle vk.Image
		if res := vk.CreateImage(device, &imageInfo, context.Allocator, &handle); res != vk.Success {
			return vulkanError("vkCreateImage", res)
		}
		image.Handle = handle

		var requirements vk.MemoryRequirements
		vk.GetImageMemoryRequirements(device, handle, &requirements)
		requirements.Deref()

		memoryType, err := context.FindMemoryIndex(requirements.MemoryTypeBits, properties)
		if err != nil {
			return err
		}
		allocInfo := vk.MemoryAllocateInfo{
			SType:           vk.StructureTypeMemoryAllocateInfo,
			AllocationSize:  requirements.Size,
			MemoryTypeIndex: memoryType,
		}
		var memory vk.DeviceMemory
		if res := vk.AllocateMemory(device, &allocInfo, context.Allocator, &memory); res != vk.Success {
			return vulkanError("vkAllocateMemory", res)
		}
		image.Memory = memory

		if res := vk.BindImageMemory(device, handle, memory, 0); res != vk.Success {
			return vulkanError("vkBindImageMemory", res)
		}
		return nil
	})
	if err != nil {
		image.Destroy(context)
		return nil, err
	}
	return image, nil
}

// NewImageView creates a 2D color view with one mip level and one layer.
func NewImageView(context *VulkanContext, image vk.Image, format vk.Format) (vk.ImageView, error) {
	viewInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}
	var view vk.ImageView
	if res := vk.CreateImageView(context.Device.LogicalDevice, &viewInfo, context.Allocator, &view); res != vk.Success {
		return vk.NullImageView, vulkanError("vkCreateImageView", res)
	}
	return view, nil
}

func (img *VulkanImage) CreateView(context *VulkanContext) error {
	view, err := NewImageView(context, img.Handle, img.Format)
	if err != nil {
		return err
	}
	img.View = view
	return nil
}

func (img *VulkanImage) Destroy(context *VulkanContext) {
	device := context.Device.LogicalDevice
	if img.View != vk.NullImageView {
		vk.DestroyImageView(device, img.View, context.Allocator)
		img.View = vk.NullImageView
	}
	if img.Handle != vk.NullImage {
		vk.DestroyImage(device, img.Handle, context.Allocator)
		img.Handle = vk.NullImage
	}
	if img.Memory != vk.NullDeviceMemory {
		vk.FreeMemory(device, img.Memory, context.Allocator)
		img.Memory = vk.NullDeviceMemory
	}
}

type layoutBarrier struct {
	srcAccess vk.AccessFlags
	dstAccess vk.AccessFlags
	srcStage  vk.PipelineStageFlags
	dstStage  vk.PipelineStageFlags
}

// layoutTransition returns the masks for the upload transitions. Nothing else is supported.
func layoutTransition(oldLayout, newLayout vk.ImageLayout) (layoutBarrier, error) {
	switch {
	case oldLayout == vk.ImageLayoutUndefined && newLayout == vk.ImageLayoutTransferDstOptimal:
		return layoutBarrier{
			srcAccess: 0,
			dstAccess: vk.AccessFlags(vk.AccessTransferWriteBit),
			srcStage:  vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
			dstStage:  vk.PipelineStageFlags(vk.PipelineStageTransferBit),
		}, nil
	case oldLayout == vk.ImageLayoutTransferDstOptimal && newLayout == vk.ImageLayoutShaderReadOnlyOptimal:
		return layoutBarrier{
			srcAccess: vk.AccessFlags(vk.AccessTransferWriteBit),
			dstAccess: vk.AccessFlags(vk.AccessShaderReadBit),
			srcStage:  vk.PipelineStageFlags(vk.PipelineStageTransferBit),
			dstStage:  vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit),
		}, nil
	}
	return layoutBarrier{}, errors.Wrapf(core.ErrUnsupportedLayoutTransition, "%d -> %d", oldLayout, newLayout)
}

// TransitionLayout moves the image between layouts with a one-shot command buffer.
func (img *VulkanImage) TransitionLayout(context *VulkanContext, oldLayout, newLayout vk.ImageLayout) error {
	b, err := layoutTransition(oldLayout, newLayout)
	if err != nil {
		return err
	}
	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		SrcAccessMask:       b.srcAccess,
		DstAccessMask:       b.dstAccess,
		OldLayout:           oldLayout,
		NewLayout:           newLayout,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               img.Handle,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LevelCount: 1,
			LayerCount: 1,
		},
	}
	return runSingleUse(context, func(cmd vk.CommandBuffer) {
		vk.CmdPipelineBarrier(cmd, b.srcStage, b.dstStage, 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
	})
}

// CopyFromBuffer copies tightly packed pixels into the image, which must be in transfer-dst layout.
func (img *VulkanImage) CopyFromBuffer(context *VulkanContext, buffer vk.Buffer) error {
	region := vk.BufferImageCopy{
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LayerCount: 1,
		},
		ImageExtent: vk.Extent3D{Width: img.Width, Height: img.Height, Depth: 1},
	}
	return runSingleUse(context, func(cmd vk.CommandBuffer) {
		vk.CmdCopyBufferToImage(cmd, buffer, img.Handle, vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{region})
	})
}
