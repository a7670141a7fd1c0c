package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
)

func TestDebugCallbackNeverAborts(t *testing.T) {
	flags := []vk.DebugReportFlagBits{
		vk.DebugReportErrorBit,
		vk.DebugReportWarningBit,
		vk.DebugReportPerformanceWarningBit,
		vk.DebugReportInformationBit,
		vk.DebugReportDebugBit,
	}
	for _, f := range flags {
		if got := dbgCallbackFunc(vk.DebugReportFlags(f), 0, 0, 0, 1, "layer", "message", nil); got != vk.Bool32(vk.False) {
			t.Fatalf("flag %d returned %d", f, got)
		}
	}
}

func TestLoadVulkanWithoutLoader(t *testing.T) {
	if err := loadVulkan(nil); err == nil {
		t.Fatal("expected an error without a proc address")
	}
}
