package vulkan

import (
	"runtime"
	"unsafe"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/avenir/engine/core"
)

const engineName = "Avenir"

type instanceConfig struct {
	AppName          string
	Validation       bool
	WindowExtensions []string
}

// surfaceSource is the part of the window the instance needs.
type surfaceSource interface {
	CreateSurface(instance interface{}) (uintptr, error)
}

// loadVulkan resolves the loader through the windowing library.
func loadVulkan(procAddr unsafe.Pointer) error {
	if procAddr == nil {
		return errors.New("vkGetInstanceProcAddr is not available")
	}
	vk.SetGetInstanceProcAddr(procAddr)
	dispatch.getInstanceProcAddr = procAddr
	if err := vk.Init(); err != nil {
		return errors.Wrap(err, "failed to initialize vulkan")
	}
	return nil
}

func createInstance(context *VulkanContext, cfg instanceConfig) error {
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         vk.MakeVersion(1, 3, 0),
		ApplicationVersion: vk.MakeVersion(1, 0, 0),
		EngineVersion:      vk.MakeVersion(1, 0, 0),
		PApplicationName:   VulkanSafeString(cfg.AppName),
		PEngineName:        VulkanSafeString(engineName),
	}

	extensions := requiredInstanceExtensions(cfg.WindowExtensions, cfg.Validation, runtime.GOOS)
	createInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: VulkanSafeStrings(extensions),
	}
	if runtime.GOOS == "darwin" {
		createInfo.Flags |= instanceCreateEnumeratePortability
	}
	core.LogDebug("Required instance extensions: %v", extensions)

	if cfg.Validation {
		layers := []string{ValidationLayerName}
		if err := checkValidationLayers(layers); err != nil {
			return err
		}
		createInfo.EnabledLayerCount = uint32(len(layers))
		createInfo.PpEnabledLayerNames = VulkanSafeStrings(layers)
	}

	var instance vk.Instance
	if res := vk.CreateInstance(&createInfo, context.Allocator, &instance); res != vk.Success {
		return vulkanError("vkCreateInstance", res)
	}
	if err := vk.InitInstance(instance); err != nil {
		return errors.Wrap(err, "failed to load instance functions")
	}
	if err := loadInstanceCommands(instance); err != nil {
		vk.DestroyInstance(instance, context.Allocator)
		return err
	}
	context.Instance = instance
	core.LogInfo("Vulkan Instance created.")

	if cfg.Validation {
		return createDebugCallback(context)
	}
	return nil
}

func checkValidationLayers(required []string) error {
	core.LogInfo("Validation layers enabled. Enumerating...")

	var count uint32
	if res := vk.EnumerateInstanceLayerProperties(&count, nil); res != vk.Success {
		return vulkanError("vkEnumerateInstanceLayerProperties", res)
	}
	layers := make([]vk.LayerProperties, count)
	if res := vk.EnumerateInstanceLayerProperties(&count, layers); res != vk.Success {
		return vulkanError("vkEnumerateInstanceLayerProperties", res)
	}

	available := make([]string, 0, count)
	for i := range layers {
		layers[i].Deref()
		available = append(available, byteArrayString(layers[i].LayerName[:]))
	}
	if missing := missingNames(available, required); len(missing) > 0 {
		return errors.Wrapf(core.ErrValidationLayerMissing, "%v", missing)
	}
	core.LogInfo("All required validation layers are present.")
	return nil
}

func createDebugCallback(context *VulkanContext) error {
	core.LogDebug("Creating Vulkan debugger...")
	debugCreateInfo := vk.DebugReportCallbackCreateInfo{
		SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit | vk.DebugReportInformationBit),
		PfnCallback: dbgCallbackFunc,
	}

	var dbg vk.DebugReportCallback
	if res := vk.CreateDebugReportCallback(context.Instance, &debugCreateInfo, context.Allocator, &dbg); res != vk.Success {
		return vulkanError("vkCreateDebugReportCallbackEXT", res)
	}
	context.debugCallback = dbg
	core.LogDebug("Vulkan debugger created.")
	return nil
}

func createSurface(context *VulkanContext, window surfaceSource) error {
	core.LogDebug("Creating Vulkan surface...")
	surface, err := window.CreateSurface(context.Instance)
	if err != nil {
		return errors.Mark(err, core.ErrSurfaceCreation)
	}
	context.Surface = vk.SurfaceFromPointer(surface)
	core.LogDebug("Vulkan surface created.")
	return nil
}

// destroyInstance tears down the surface, the debug callback and the instance, in that order.
func destroyInstance(context *VulkanContext) {
	if context.Surface != vk.NullSurface {
		core.LogDebug("Destroying Vulkan surface...")
		vk.DestroySurface(context.Instance, context.Surface, context.Allocator)
		context.Surface = vk.NullSurface
	}
	if context.debugCallback != vk.NullDebugReportCallback {
		core.LogDebug("Destroying Vulkan debugger...")
		vk.DestroyDebugReportCallback(context.Instance, context.debugCallback, context.Allocator)
		context.debugCallback = vk.NullDebugReportCallback
	}
	if context.Instance != nil {
		core.LogDebug("Destroying Vulkan instance...")
		vk.DestroyInstance(context.Instance, context.Allocator)
		context.Instance = nil
	}
}

// dbgCallbackFunc forwards validation output to the logger. It never aborts the call.
func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("ERROR: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		core.LogWarn("WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		core.LogWarn("PERFORMANCE WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	default:
		core.LogDebug("INFORMATION: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	}
	return vk.Bool32(vk.False)
}
