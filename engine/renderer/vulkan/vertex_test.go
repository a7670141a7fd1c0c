package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/avenir/engine/renderer/metadata"
)

func TestVertexLayout(t *testing.T) {
	binding := vertexBindingDescription()
	if binding.Stride != 28 || binding.InputRate != vk.VertexInputRateVertex {
		t.Fatalf("binding = stride %d rate %d", binding.Stride, binding.InputRate)
	}

	attrs := vertexAttributeDescriptions()
	want := []struct {
		offset uint32
		format vk.Format
	}{
		{0, vk.FormatR32g32Sfloat},
		{8, vk.FormatR32g32b32Sfloat},
		{20, vk.FormatR32g32Sfloat},
	}
	if len(attrs) != len(want) {
		t.Fatalf("%d attributes", len(attrs))
	}
	for i, a := range attrs {
		if a.Location != uint32(i) || a.Offset != want[i].offset || a.Format != want[i].format {
			t.Errorf("attribute %d = location %d offset %d format %d", i, a.Location, a.Offset, a.Format)
		}
	}
	last := attrs[len(attrs)-1]
	if last.Offset+8 != metadata.VertexSize {
		t.Fatalf("attributes do not cover the vertex: %d + 8 != %d", last.Offset, metadata.VertexSize)
	}
}
