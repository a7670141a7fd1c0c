package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/avenir/engine/renderer/metadata"
)

// VulkanShaderStage is one entry point of a shader module.
type VulkanShaderStage struct {
	Module                vk.ShaderModule
	ShaderStageCreateInfo vk.PipelineShaderStageCreateInfo
}

// NewShaderModule wraps SPIR-V code in a shader module.
func NewShaderModule(context *VulkanContext, shader *metadata.ShaderResourceData) (vk.ShaderModule, error) {
	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint64(len(shader.Code) * 4),
		PCode:    shader.Code,
	}
	var module vk.ShaderModule
	if res := vk.CreateShaderModule(context.Device.LogicalDevice, &createInfo, context.Allocator, &module); res != vk.Success {
		return vk.NullShaderModule, vulkanError("vkCreateShaderModule", res)
	}
	return module, nil
}

// shaderStages returns the vertex and fragment stages compiled into one module.
func shaderStages(module vk.ShaderModule) []vk.PipelineShaderStageCreateInfo {
	return []vk.PipelineShaderStageCreateInfo{
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageVertexBit,
			Module: module,
			PName:  VulkanSafeString(metadata.VertexEntryPoint),
		},
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageFragmentBit,
			Module: module,
			PName:  VulkanSafeString(metadata.FragmentEntryPoint),
		},
	}
}

func destroyShaderModule(context *VulkanContext, module vk.ShaderModule) {
	if module != vk.NullShaderModule {
		vk.DestroyShaderModule(context.Device.LogicalDevice, module, context.Allocator)
	}
}
