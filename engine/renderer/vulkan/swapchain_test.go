package vulkan

import (
	"math"
	"testing"

	vk "github.com/goki/vulkan"
)

func TestChooseSwapSurfaceFormat(t *testing.T) {
	srgb := vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear}
	unorm := vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}
	rgba := vk.SurfaceFormat{Format: vk.FormatR8g8b8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear}

	tests := []struct {
		name    string
		formats []vk.SurfaceFormat
		want    vk.SurfaceFormat
	}{
		{"preferred first", []vk.SurfaceFormat{srgb, unorm}, srgb},
		{"preferred last", []vk.SurfaceFormat{unorm, rgba, srgb}, srgb},
		{"fallback to first", []vk.SurfaceFormat{rgba, unorm}, rgba},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := chooseSwapSurfaceFormat(tt.formats)
			if got.Format != tt.want.Format || got.ColorSpace != tt.want.ColorSpace {
				t.Fatalf("got %v/%v, want %v/%v", got.Format, got.ColorSpace, tt.want.Format, tt.want.ColorSpace)
			}
		})
	}
}

func TestChooseSwapPresentMode(t *testing.T) {
	if got := chooseSwapPresentMode([]vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox}); got != vk.PresentModeMailbox {
		t.Errorf("got %v, want mailbox", got)
	}
	if got := chooseSwapPresentMode([]vk.PresentMode{vk.PresentModeImmediate, vk.PresentModeFifo}); got != vk.PresentModeFifo {
		t.Errorf("got %v, want fifo", got)
	}
	if got := chooseSwapPresentMode(nil); got != vk.PresentModeFifo {
		t.Errorf("got %v, want fifo", got)
	}
}

func TestChooseSwapExtent(t *testing.T) {
	bounds := func(current vk.Extent2D) vk.SurfaceCapabilities {
		return vk.SurfaceCapabilities{
			CurrentExtent:  current,
			MinImageExtent: vk.Extent2D{Width: 100, Height: 100},
			MaxImageExtent: vk.Extent2D{Width: 1920, Height: 1080},
		}
	}
	undefined := vk.Extent2D{Width: math.MaxUint32, Height: math.MaxUint32}

	tests := []struct {
		name   string
		caps   vk.SurfaceCapabilities
		w, h   int
		expect vk.Extent2D
	}{
		{"defined extent wins", bounds(vk.Extent2D{Width: 800, Height: 600}), 1024, 768, vk.Extent2D{Width: 800, Height: 600}},
		{"framebuffer inside bounds", bounds(undefined), 1024, 768, vk.Extent2D{Width: 1024, Height: 768}},
		{"clamped to max", bounds(undefined), 4000, 3000, vk.Extent2D{Width: 1920, Height: 1080}},
		{"clamped to min", bounds(undefined), 10, 20, vk.Extent2D{Width: 100, Height: 100}},
		{"mixed clamp", bounds(undefined), 50, 2000, vk.Extent2D{Width: 100, Height: 1080}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := chooseSwapExtent(tt.caps, tt.w, tt.h)
			if got.Width != tt.expect.Width || got.Height != tt.expect.Height {
				t.Fatalf("got %dx%d, want %dx%d", got.Width, got.Height, tt.expect.Width, tt.expect.Height)
			}
		})
	}
}

func TestChooseSwapMinImageCount(t *testing.T) {
	tests := []struct {
		min, max, want uint32
	}{
		{2, 8, 3},
		{4, 8, 4},
		{1, 2, 2},
		{2, 0, 3},
		{5, 0, 5},
	}
	for _, tt := range tests {
		caps := vk.SurfaceCapabilities{MinImageCount: tt.min, MaxImageCount: tt.max}
		if got := chooseSwapMinImageCount(caps); got != tt.want {
			t.Errorf("min %d max %d: got %d, want %d", tt.min, tt.max, got, tt.want)
		}
	}
}

func TestSwapchainPlanIsStableAcrossRecreation(t *testing.T) {
	support := &VulkanSwapchainSupportInfo{
		Capabilities: vk.SurfaceCapabilities{
			CurrentExtent:    vk.Extent2D{Width: math.MaxUint32, Height: math.MaxUint32},
			MinImageExtent:   vk.Extent2D{Width: 1, Height: 1},
			MaxImageExtent:   vk.Extent2D{Width: 4096, Height: 4096},
			MinImageCount:    2,
			MaxImageCount:    8,
			CurrentTransform: vk.SurfaceTransformIdentityBit,
		},
		Formats: []vk.SurfaceFormat{
			{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
			{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		},
		PresentModes: []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox},
	}

	first := planSwapchain(support, 960, 720)
	second := planSwapchain(support, 960, 720)
	if first != second {
		t.Fatalf("plan changed between calls: %+v vs %+v", first, second)
	}
	if first.Extent.Width != 960 || first.Extent.Height != 720 {
		t.Fatalf("extent = %dx%d", first.Extent.Width, first.Extent.Height)
	}
	if first.Format.Format != vk.FormatB8g8r8a8Srgb || first.PresentMode != vk.PresentModeMailbox || first.MinImageCount != 3 {
		t.Fatalf("unexpected plan %+v", first)
	}

	info := first.createInfo(vk.NullSurface)
	if info.ImageExtent != first.Extent || info.MinImageCount != first.MinImageCount || info.PreTransform != first.Transform {
		t.Fatalf("create info does not follow the plan: %+v", info)
	}
	if info.ImageFormat != first.Format.Format || info.ImageColorSpace != first.Format.ColorSpace || info.PresentMode != first.PresentMode {
		t.Fatalf("create info does not follow the plan: %+v", info)
	}
}

func TestSwapchainIsStale(t *testing.T) {
	if !swapchainIsStale(vk.ErrorOutOfDate) || !swapchainIsStale(vk.Suboptimal) {
		t.Fatal("out of date and suboptimal must trigger a rebuild")
	}
	if swapchainIsStale(vk.Success) || swapchainIsStale(vk.ErrorDeviceLost) {
		t.Fatal("only stale results trigger a rebuild")
	}
}
