package vulkan

import (
	"fmt"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/avenir/engine/core"
)

type resultDescription struct {
	name     string
	extended string
}

// From: https://www.khronos.org/registry/vulkan/specs/1.3-extensions/man/html/VkResult.html
var resultDescriptions = map[vk.Result]resultDescription{
	vk.Success:                    {"VK_SUCCESS", "Command successfully completed"},
	vk.NotReady:                   {"VK_NOT_READY", "A fence or query has not yet completed"},
	vk.Timeout:                    {"VK_TIMEOUT", "A wait operation has not completed in the specified time"},
	vk.EventSet:                   {"VK_EVENT_SET", "An event is signaled"},
	vk.EventReset:                 {"VK_EVENT_RESET", "An event is unsignaled"},
	vk.Incomplete:                 {"VK_INCOMPLETE", "A return array was too small for the result"},
	vk.Suboptimal:                 {"VK_SUBOPTIMAL_KHR", "A swapchain no longer matches the surface properties exactly, but can still be used to present"},
	vk.ErrorOutOfHostMemory:       {"VK_ERROR_OUT_OF_HOST_MEMORY", "A host memory allocation has failed"},
	vk.ErrorOutOfDeviceMemory:     {"VK_ERROR_OUT_OF_DEVICE_MEMORY", "A device memory allocation has failed"},
	vk.ErrorInitializationFailed:  {"VK_ERROR_INITIALIZATION_FAILED", "Initialization of an object could not be completed"},
	vk.ErrorDeviceLost:            {"VK_ERROR_DEVICE_LOST", "The logical or physical device has been lost"},
	vk.ErrorMemoryMapFailed:       {"VK_ERROR_MEMORY_MAP_FAILED", "Mapping of a memory object has failed"},
	vk.ErrorLayerNotPresent:       {"VK_ERROR_LAYER_NOT_PRESENT", "A requested layer is not present or could not be loaded"},
	vk.ErrorExtensionNotPresent:   {"VK_ERROR_EXTENSION_NOT_PRESENT", "A requested extension is not supported"},
	vk.ErrorFeatureNotPresent:     {"VK_ERROR_FEATURE_NOT_PRESENT", "A requested feature is not supported"},
	vk.ErrorIncompatibleDriver:    {"VK_ERROR_INCOMPATIBLE_DRIVER", "The requested version of Vulkan is not supported by the driver"},
	vk.ErrorTooManyObjects:        {"VK_ERROR_TOO_MANY_OBJECTS", "Too many objects of the type have already been created"},
	vk.ErrorFormatNotSupported:    {"VK_ERROR_FORMAT_NOT_SUPPORTED", "A requested format is not supported on this device"},
	vk.ErrorFragmentedPool:        {"VK_ERROR_FRAGMENTED_POOL", "A pool allocation has failed due to fragmentation of the pool's memory"},
	vk.ErrorSurfaceLost:           {"VK_ERROR_SURFACE_LOST_KHR", "A surface is no longer available"},
	vk.ErrorNativeWindowInUse:     {"VK_ERROR_NATIVE_WINDOW_IN_USE_KHR", "The requested window is already in use"},
	vk.ErrorOutOfDate:             {"VK_ERROR_OUT_OF_DATE_KHR", "A surface has changed and is no longer compatible with the swapchain"},
	vk.ErrorIncompatibleDisplay:   {"VK_ERROR_INCOMPATIBLE_DISPLAY_KHR", "The display used by a swapchain is incompatible"},
	vk.ErrorOutOfPoolMemory:       {"VK_ERROR_OUT_OF_POOL_MEMORY", "A pool memory allocation has failed"},
	vk.ErrorInvalidExternalHandle: {"VK_ERROR_INVALID_EXTERNAL_HANDLE", "An external handle is not a valid handle of the specified type"},
	vk.ErrorFragmentation:         {"VK_ERROR_FRAGMENTATION", "A descriptor pool creation has failed due to fragmentation"},
	vk.ErrorUnknown:               {"VK_ERROR_UNKNOWN", "An unknown error has occurred"},
}

// VulkanResultString returns the result name, plus its description when getExtended is set.
func VulkanResultString(result vk.Result, getExtended bool) string {
	d, ok := resultDescriptions[result]
	if !ok {
		d = resultDescription{fmt.Sprintf("VkResult(%d)", int32(result)), "Unrecognized result code"}
	}
	if !getExtended {
		return d.name
	}
	return d.name + " " + d.extended
}

// VulkanResultIsSuccess reports whether result is one of the non-error codes.
func VulkanResultIsSuccess(result vk.Result) bool {
	return result >= 0
}

// vulkanError builds and logs the error for a failed call.
func vulkanError(op string, res vk.Result) error {
	err := errors.Newf("%s failed: %s", op, VulkanResultString(res, true))
	core.LogError("%s", err)
	return err
}

var end = "\x00"
var endChar byte = '\x00'

func VulkanSafeString(s string) string {
	if len(s) == 0 {
		return end
	}
	if s[len(s)-1] != endChar {
		return s + end
	}
	return s
}

// VulkanSafeStrings returns a null terminated copy of list.
func VulkanSafeStrings(list []string) []string {
	out := make([]string, len(list))
	for i := range list {
		out[i] = VulkanSafeString(list[i])
	}
	return out
}

// FindFirstZeroInByteArray returns the index of the first zero byte, or len(arr) if there is none.
func FindFirstZeroInByteArray(arr []byte) int {
	for i, b := range arr {
		if b == 0 {
			return i
		}
	}
	return len(arr)
}

// byteArrayString converts a fixed size, null padded name field into a Go string.
func byteArrayString(arr []byte) string {
	return string(arr[:FindFirstZeroInByteArray(arr)])
}

// missingNames returns the entries of required absent from available, in order.
func missingNames(available, required []string) []string {
	have := make(map[string]struct{}, len(available))
	for _, name := range available {
		have[name] = struct{}{}
	}
	var out []string
	for _, name := range required {
		if _, ok := have[name]; !ok {
			out = append(out, name)
		}
	}
	return out
}
