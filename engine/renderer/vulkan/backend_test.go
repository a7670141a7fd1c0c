package vulkan

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/goki/vulkan"
)

func TestFrameUniforms(t *testing.T) {
	view := mgl32.Translate3D(0, 0, -3)
	ubo := frameUniforms(view, vk.Extent2D{Width: 800, Height: 600})

	if ubo.Model != mgl32.Ident4() {
		t.Errorf("model = %v", ubo.Model)
	}
	if ubo.View != view {
		t.Errorf("view = %v", ubo.View)
	}
	if ubo.Proj[5] >= 0 {
		t.Errorf("projection y is not flipped: %v", ubo.Proj[5])
	}
	// x scale is y scale over the aspect ratio
	want := -ubo.Proj[5] / (800.0 / 600.0)
	if d := ubo.Proj[0] - want; d > 1e-5 || d < -1e-5 {
		t.Errorf("x scale = %v, want %v", ubo.Proj[0], want)
	}
}

func TestFrameUniformsZeroHeight(t *testing.T) {
	ubo := frameUniforms(mgl32.Ident4(), vk.Extent2D{Width: 800})
	if ubo.Proj[0] != -ubo.Proj[5] {
		t.Errorf("zero height should fall back to a square aspect, got %v and %v", ubo.Proj[0], ubo.Proj[5])
	}
}

func TestSwapchainBarriers(t *testing.T) {
	if toColorAttachment.oldLayout != vk.ImageLayoutUndefined || toColorAttachment.newLayout != vk.ImageLayoutColorAttachmentOptimal {
		t.Errorf("attachment barrier %d -> %d", toColorAttachment.oldLayout, toColorAttachment.newLayout)
	}
	if toPresent.oldLayout != toColorAttachment.newLayout || toPresent.newLayout != vk.ImageLayoutPresentSrc {
		t.Errorf("present barrier %d -> %d", toPresent.oldLayout, toPresent.newLayout)
	}
	// the present barrier waits on the writes the first one made available
	if toPresent.srcStage != toColorAttachment.dstStage || toPresent.srcAccess != toColorAttachment.dstAccess {
		t.Error("present barrier does not wait on color attachment writes")
	}
}

func TestPresentFailedIgnoresRebuildableResults(t *testing.T) {
	tests := []struct {
		res  vk.Result
		want bool
	}{
		{vk.Success, false},
		{vk.Suboptimal, false},
		{vk.ErrorOutOfDate, false},
		{vk.ErrorDeviceLost, true},
		{vk.ErrorSurfaceLost, true},
		{vk.ErrorOutOfHostMemory, true},
	}
	for _, tt := range tests {
		if got := presentFailed(tt.res); got != tt.want {
			t.Errorf("%s: got %v, want %v", VulkanResultString(tt.res, false), got, tt.want)
		}
	}
}
