package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/avenir/engine/renderer/metadata"
)

// VulkanDescriptors holds the layout, pool and one set per frame in flight.
type VulkanDescriptors struct {
	SetLayout vk.DescriptorSetLayout
	Pool      vk.DescriptorPool
	Sets      []vk.DescriptorSet
}

// descriptorSetLayoutBindings: the uniform buffer for the vertex stage and the texture for the fragment stage.
func descriptorSetLayoutBindings() []vk.DescriptorSetLayoutBinding {
	return []vk.DescriptorSetLayoutBinding{
		{
			Binding:         uniformBinding,
			DescriptorType:  vk.DescriptorTypeUniformBuffer,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		},
		{
			Binding:         samplerBinding,
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		},
	}
}

func descriptorPoolSizes() []vk.DescriptorPoolSize {
	return []vk.DescriptorPoolSize{
		{Type: vk.DescriptorTypeUniformBuffer, DescriptorCount: MaxFramesInFlight},
		{Type: vk.DescriptorTypeCombinedImageSampler, DescriptorCount: MaxFramesInFlight},
	}
}

func NewDescriptors(context *VulkanContext) (*VulkanDescriptors, error) {
	d := &VulkanDescriptors{}
	device := context.Device.LogicalDevice

	err := context.lockPool.SafeCall(DescriptorManagement, func() error {
		bindings := descriptorSetLayoutBindings()
		layoutInfo := vk.DescriptorSetLayoutCreateInfo{
			SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
			BindingCount: uint32(len(bindings)),
			PBindings:    bindings,
		}
		var layout vk.DescriptorSetLayout
		if res := vk.CreateDescriptorSetLayout(device, &layoutInfo, context.Allocator, &layout); res != vk.Success {
			return vulkanError("vkCreateDescriptorSetLayout", res)
		}
		d.SetLayout = layout

		sizes := descriptorPoolSizes()
		poolInfo := vk.DescriptorPoolCreateInfo{
			SType:         vk.StructureTypeDescriptorPoolCreateInfo,
			Flags:         vk.DescriptorPoolCreateFlags(vk.DescriptorPoolCreateFreeDescriptorSetBit),
			MaxSets:       MaxFramesInFlight,
			PoolSizeCount: uint32(len(sizes)),
			PPoolSizes:    sizes,
		}
		var pool vk.DescriptorPool
		if res := vk.CreateDescriptorPool(device, &poolInfo, context.Allocator, &pool); res != vk.Success {
			return vulkanError("vkCreateDescriptorPool", res)
		}
		d.Pool = pool

		layouts := make([]vk.DescriptorSetLayout, MaxFramesInFlight)
		for i := range layouts {
			layouts[i] = layout
		}
		allocInfo := vk.DescriptorSetAllocateInfo{
			SType:              vk.StructureTypeDescriptorSetAllocateInfo,
			DescriptorPool:     pool,
			DescriptorSetCount: MaxFramesInFlight,
			PSetLayouts:        layouts,
		}
		sets := make([]vk.DescriptorSet, MaxFramesInFlight)
		if res := vk.AllocateDescriptorSets(device, &allocInfo, &sets[0]); res != vk.Success {
			return vulkanError("vkAllocateDescriptorSets", res)
		}
		d.Sets = sets
		return nil
	})
	if err != nil {
		d.Destroy(context)
		return nil, err
	}
	return d, nil
}

// Write points every set at its frame's uniform buffer and at the shared texture.
func (d *VulkanDescriptors) Write(context *VulkanContext, uniforms []*VulkanBuffer, texture *VulkanTexture) {
	for i, set := range d.Sets {
		bufferInfo := vk.DescriptorBufferInfo{
			Buffer: uniforms[i].Handle,
			Offset: 0,
			Range:  vk.DeviceSize(metadata.UniformBufferObjectSize),
		}
		imageInfo := vk.DescriptorImageInfo{
			Sampler:     texture.Sampler,
			ImageView:   texture.Image.View,
			ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
		}
		writes := []vk.WriteDescriptorSet{
			{
				SType:           vk.StructureTypeWriteDescriptorSet,
				DstSet:          set,
				DstBinding:      uniformBinding,
				DescriptorCount: 1,
				DescriptorType:  vk.DescriptorTypeUniformBuffer,
				PBufferInfo:     []vk.DescriptorBufferInfo{bufferInfo},
			},
			{
				SType:           vk.StructureTypeWriteDescriptorSet,
				DstSet:          set,
				DstBinding:      samplerBinding,
				DescriptorCount: 1,
				DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
				PImageInfo:      []vk.DescriptorImageInfo{imageInfo},
			},
		}
		vk.UpdateDescriptorSets(context.Device.LogicalDevice, uint32(len(writes)), writes, 0, nil)
	}
}

func (d *VulkanDescriptors) Destroy(context *VulkanContext) {
	device := context.Device.LogicalDevice
	_ = context.lockPool.SafeCall(DescriptorManagement, func() error {
		if d.Pool != vk.NullDescriptorPool {
			if len(d.Sets) > 0 {
				vk.FreeDescriptorSets(device, d.Pool, uint32(len(d.Sets)), &d.Sets[0])
			}
			vk.DestroyDescriptorPool(device, d.Pool, context.Allocator)
			d.Pool = vk.NullDescriptorPool
		}
		d.Sets = nil
		if d.SetLayout != vk.NullDescriptorSetLayout {
			vk.DestroyDescriptorSetLayout(device, d.SetLayout, context.Allocator)
			d.SetLayout = vk.NullDescriptorSetLayout
		}
		return nil
	})
}
