package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
)

func TestRasterizationState(t *testing.T) {
	fill := rasterizationState(false)
	if fill.PolygonMode != vk.PolygonModeFill {
		t.Errorf("polygon mode = %d", fill.PolygonMode)
	}
	if fill.CullMode != vk.CullModeFlags(vk.CullModeBackBit) || fill.FrontFace != vk.FrontFaceCounterClockwise {
		t.Errorf("cull %d front %d", fill.CullMode, fill.FrontFace)
	}
	if rasterizationState(true).PolygonMode != vk.PolygonModeLine {
		t.Error("wireframe should draw lines")
	}
}

func TestColorBlendAttachment(t *testing.T) {
	a := colorBlendAttachment()
	if a.BlendEnable != vk.False {
		t.Error("blending should be off")
	}
	all := vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit | vk.ColorComponentBBit | vk.ColorComponentABit)
	if a.ColorWriteMask != all {
		t.Errorf("write mask = %#x", a.ColorWriteMask)
	}
}

func TestPipelineDynamicStates(t *testing.T) {
	states := pipelineDynamicStates()
	if len(states) != 2 || states[0] != vk.DynamicStateViewport || states[1] != vk.DynamicStateScissor {
		t.Fatalf("dynamic states = %v", states)
	}
}
