package vulkan

import vk "github.com/goki/vulkan"

// MaxFramesInFlight is the number of frames the CPU may record ahead of the GPU.
const MaxFramesInFlight = 2

// minSwapchainImages is the image count requested when the surface allows it.
const minSwapchainImages uint32 = 3

const ValidationLayerName = "VK_LAYER_KHRONOS_validation"

// Sky blue.
var clearColor = [4]float32{0.529, 0.807, 0.921, 1.0}

const (
	uniformBinding uint32 = 0
	samplerBinding uint32 = 1
)

// synchronization2 flags are 64 bit and not part of the generated enums.
const (
	pipelineStage2None                  vk.PipelineStageFlags2 = 0
	pipelineStage2TopOfPipe             vk.PipelineStageFlags2 = 0x00000001
	pipelineStage2ColorAttachmentOutput vk.PipelineStageFlags2 = 0x00000400
	pipelineStage2BottomOfPipe          vk.PipelineStageFlags2 = 0x00002000

	access2None                 vk.AccessFlags2 = 0
	access2ColorAttachmentWrite vk.AccessFlags2 = 0x00000100
)

const (
	extSwapchain         = "VK_KHR_swapchain"
	extSpirv14           = "VK_KHR_spirv_1_4"
	extSynchronization2  = "VK_KHR_synchronization2"
	extCreateRenderpass2 = "VK_KHR_create_renderpass2"
	extPortabilitySubset = "VK_KHR_portability_subset"
	extPortabilityEnum   = "VK_KHR_portability_enumeration"
	extDebugReport       = "VK_EXT_debug_report"
)

const instanceCreateEnumeratePortability vk.InstanceCreateFlags = 0x00000001

// requiredDeviceExtensions lists the device extensions needed on goos.
func requiredDeviceExtensions(goos string) []string {
	exts := []string{extSwapchain, extSpirv14, extSynchronization2, extCreateRenderpass2}
	if goos == "darwin" {
		exts = append(exts, extPortabilitySubset)
	}
	return exts
}

// requiredInstanceExtensions combines the window system extensions with the ones the renderer adds.
func requiredInstanceExtensions(windowExts []string, validation bool, goos string) []string {
	exts := append([]string{}, windowExts...)
	if goos == "darwin" {
		exts = append(exts, extPortabilityEnum)
	}
	if validation {
		exts = append(exts, extDebugReport)
	}
	return exts
}
