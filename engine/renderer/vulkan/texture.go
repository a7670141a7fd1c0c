package vulkan

import (
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/avenir/engine/core"
)

const textureFormat = vk.FormatR8g8b8a8Srgb

// VulkanTexture is a sampled image ready for the fragment shader.
type VulkanTexture struct {
	Image   *VulkanImage
	Sampler vk.Sampler
}

// NewTexture uploads RGBA8 pixels and leaves the image in shader-read-only layout.
func NewTexture(context *VulkanContext, pixels []byte, width, height uint32) (*VulkanTexture, error) {
	if uint64(len(pixels)) != uint64(width)*uint64(height)*4 {
		return nil, errors.Newf("texture of %dx%d needs %d bytes, got %d", width, height, width*height*4, len(pixels))
	}

	staging, err := newStagingBuffer(context, pixels)
	if err != nil {
		return nil, err
	}
	defer staging.Destroy(context)

	image, err := NewImage(context, width, height, textureFormat,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageTransferDstBit|vk.ImageUsageSampledBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		return nil, err
	}
	texture := &VulkanTexture{Image: image}

	steps := []func() error{
		func() error {
			return image.TransitionLayout(context, vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal)
		},
		func() error { return image.CopyFromBuffer(context, staging.Handle) },
		func() error {
			return image.TransitionLayout(context, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal)
		},
		func() error { return image.CreateView(context) },
		func() error {
			sampler, err := newSampler(context)
			texture.Sampler = sampler
			return err
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			texture.Destroy(context)
			return nil, err
		}
	}

	core.LogDebug("texture uploaded: %dx%d", width, height)
	return texture, nil
}

func newSampler(context *VulkanContext) (vk.Sampler, error) {
	samplerInfo := vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vk.FilterLinear,
		MinFilter:               vk.FilterLinear,
		MipmapMode:              vk.SamplerMipmapModeLinear,
		AddressModeU:            vk.SamplerAddressModeRepeat,
		AddressModeV:            vk.SamplerAddressModeRepeat,
		AddressModeW:            vk.SamplerAddressModeRepeat,
		AnisotropyEnable:        vk.True,
		MaxAnisotropy:           context.Device.MaxAnisotropy,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		BorderColor:             vk.BorderColorIntOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
	}
	var sampler vk.Sampler
	if res := vk.CreateSampler(context.Device.LogicalDevice, &samplerInfo, context.Allocator, &sampler); res != vk.Success {
		return vk.NullSampler, vulkanError("vkCreateSampler", res)
	}
	return sampler, nil
}

func (t *VulkanTexture) Destroy(context *VulkanContext) {
	if t.Sampler != vk.NullSampler {
		vk.DestroySampler(context.Device.LogicalDevice, t.Sampler, context.Allocator)
		t.Sampler = vk.NullSampler
	}
	if t.Image != nil {
		t.Image.Destroy(context)
		t.Image = nil
	}
}
