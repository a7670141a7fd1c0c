package vulkan

import (
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/avenir/engine/renderer/metadata"
)

func vertexBindingDescription() vk.VertexInputBindingDescription {
	return vk.VertexInputBindingDescription{
		Binding:   0,
		Stride:    metadata.VertexSize,
		InputRate: vk.VertexInputRateVertex,
	}
}

func vertexAttributeDescriptions() []vk.VertexInputAttributeDescription {
	var v metadata.Vertex
	return []vk.VertexInputAttributeDescription{
		{Location: 0, Binding: 0, Format: vk.FormatR32g32Sfloat, Offset: uint32(unsafe.Offsetof(v.Pos))},
		{Location: 1, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: uint32(unsafe.Offsetof(v.Color))},
		{Location: 2, Binding: 0, Format: vk.FormatR32g32Sfloat, Offset: uint32(unsafe.Offsetof(v.TexCoord))},
	}
}
