package vulkan

import (
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/avenir/engine/core"
	"github.com/spaghettifunk/avenir/engine/renderer/metadata"
)

/**
 * @brief Holds a Vulkan pipeline and its layout.
 */
type VulkanPipeline struct {
	/** @brief The internal pipeline handle. */
	Handle vk.Pipeline
	/** @brief The pipeline layout. */
	PipelineLayout vk.PipelineLayout
}

type VulkanPipelineConfig struct {
	/** @brief The format of the single color attachment rendered into. */
	ColorFormat vk.Format
	/** @brief The compiled shader holding both entry points. */
	Shader *metadata.ShaderResourceData
	/** @brief The descriptor set layouts bound by the pipeline. */
	DescriptorSetLayouts []vk.DescriptorSetLayout
	/** @brief Indicates if this pipeline should use wireframe mode. */
	IsWireframe bool
}

// rasterizationState culls back faces, counter clockwise is front.
func rasterizationState(wireframe bool) vk.PipelineRasterizationStateCreateInfo {
	info := vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             vk.PolygonModeFill,
		CullMode:                vk.CullModeFlags(vk.CullModeBackBit),
		FrontFace:               vk.FrontFaceCounterClockwise,
		DepthBiasEnable:         vk.False,
		LineWidth:               1.0,
	}
	if wireframe {
		info.PolygonMode = vk.PolygonModeLine
	}
	return info
}

func colorBlendAttachment() vk.PipelineColorBlendAttachmentState {
	return vk.PipelineColorBlendAttachmentState{
		BlendEnable: vk.False,
		ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit) | vk.ColorComponentFlags(vk.ColorComponentGBit) |
			vk.ColorComponentFlags(vk.ColorComponentBBit) | vk.ColorComponentFlags(vk.ColorComponentABit),
	}
}

func pipelineDynamicStates() []vk.DynamicState {
	return []vk.DynamicState{
		vk.DynamicStateViewport,
		vk.DynamicStateScissor,
	}
}

// NewGraphicsPipeline builds a pipeline for dynamic rendering: no render pass, one color attachment.
func NewGraphicsPipeline(context *VulkanContext, config *VulkanPipelineConfig) (*VulkanPipeline, error) {
	outPipeline := &VulkanPipeline{}

	module, err := NewShaderModule(context, config.Shader)
	if err != nil {
		return nil, err
	}
	// The module is only needed until the pipeline exists.
	defer destroyShaderModule(context, module)
	stages := shaderStages(module)

	// Viewport and scissor are set while recording.
	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}

	rasterizerCreateInfo := rasterizationState(config.IsWireframe)

	multisamplingCreateInfo := vk.PipelineMultisampleStateCreateInfo{
		SType:                 vk.StructureTypePipelineMultisampleStateCreateInfo,
		SampleShadingEnable:   vk.False,
		RasterizationSamples:  vk.SampleCount1Bit,
		MinSampleShading:      1.0,
		AlphaToCoverageEnable: vk.False,
		AlphaToOneEnable:      vk.False,
	}

	colorBlendStateCreateInfo := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: 1,
		PAttachments:    []vk.PipelineColorBlendAttachmentState{colorBlendAttachment()},
	}

	dynamicStates := pipelineDynamicStates()
	dynamicStateCreateInfo := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(dynamicStates)),
		PDynamicStates:    dynamicStates,
	}

	attributes := vertexAttributeDescriptions()
	vertexInputInfo := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   1,
		PVertexBindingDescriptions:      []vk.VertexInputBindingDescription{vertexBindingDescription()},
		VertexAttributeDescriptionCount: uint32(len(attributes)),
		PVertexAttributeDescriptions:    attributes,
	}

	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               vk.PrimitiveTopologyTriangleList,
		PrimitiveRestartEnable: vk.False,
	}

	pipelineLayoutCreateInfo := vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: uint32(len(config.DescriptorSetLayouts)),
		PSetLayouts:    config.DescriptorSetLayouts,
	}

	renderingInfo := vk.PipelineRenderingCreateInfo{
		SType:                   vk.StructureTypePipelineRenderingCreateInfo,
		ColorAttachmentCount:    1,
		PColorAttachmentFormats: []vk.Format{config.ColorFormat},
	}
	renderingRef, renderingAllocs := renderingInfo.PassRef()
	if renderingAllocs != nil {
		defer renderingAllocs.Free()
	}

	err = context.lockPool.SafeCall(PipelineManagement, func() error {
		var layout vk.PipelineLayout
		if res := vk.CreatePipelineLayout(context.Device.LogicalDevice, &pipelineLayoutCreateInfo, context.Allocator, &layout); res != vk.Success {
			return vulkanError("vkCreatePipelineLayout", res)
		}
		outPipeline.PipelineLayout = layout

		pipelineCreateInfo := vk.GraphicsPipelineCreateInfo{
			SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
			PNext:               unsafe.Pointer(renderingRef),
			StageCount:          uint32(len(stages)),
			PStages:             stages,
			PVertexInputState:   &vertexInputInfo,
			PInputAssemblyState: &inputAssembly,
			PViewportState:      &viewportState,
			PRasterizationState: &rasterizerCreateInfo,
			PMultisampleState:   &multisamplingCreateInfo,
			PColorBlendState:    &colorBlendStateCreateInfo,
			PDynamicState:       &dynamicStateCreateInfo,
			Layout:              layout,
			RenderPass:          vk.NullRenderPass,
			Subpass:             0,
			BasePipelineHandle:  vk.NullPipeline,
			BasePipelineIndex:   -1,
		}
		pipelines := make([]vk.Pipeline, 1)
		if res := vk.CreateGraphicsPipelines(context.Device.LogicalDevice, vk.NullPipelineCache, 1,
			[]vk.GraphicsPipelineCreateInfo{pipelineCreateInfo}, context.Allocator, pipelines); res != vk.Success {
			return vulkanError("vkCreateGraphicsPipelines", res)
		}
		outPipeline.Handle = pipelines[0]
		return nil
	})
	if err != nil {
		outPipeline.Destroy(context)
		return nil, err
	}

	core.LogDebug("Graphics pipeline created!")
	return outPipeline, nil
}

func (pipeline *VulkanPipeline) Destroy(context *VulkanContext) {
	_ = context.lockPool.SafeCall(PipelineManagement, func() error {
		if pipeline.Handle != vk.NullPipeline {
			vk.DestroyPipeline(context.Device.LogicalDevice, pipeline.Handle, context.Allocator)
			pipeline.Handle = vk.NullPipeline
		}
		if pipeline.PipelineLayout != vk.NullPipelineLayout {
			vk.DestroyPipelineLayout(context.Device.LogicalDevice, pipeline.PipelineLayout, context.Allocator)
			pipeline.PipelineLayout = vk.NullPipelineLayout
		}
		return nil
	})
}

func (pipeline *VulkanPipeline) Bind(commandBuffer *VulkanCommandBuffer, bindPoint vk.PipelineBindPoint) {
	vk.CmdBindPipeline(commandBuffer.Handle, bindPoint, pipeline.Handle)
}
