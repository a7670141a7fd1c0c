package vulkan

import (
	"runtime"
	"strings"
	"unsafe"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/avenir/engine/core"
)

type VulkanDevice struct {
	PhysicalDevice vk.PhysicalDevice
	LogicalDevice  vk.Device

	// The single graphics + present family and its queue.
	QueueFamilyIndex uint32
	Queue            vk.Queue

	CommandPool vk.CommandPool

	Properties       vk.PhysicalDeviceProperties
	Memory           vk.PhysicalDeviceMemoryProperties
	MaxAnisotropy    float32
	SwapchainSupport *VulkanSwapchainSupportInfo
}

type deviceFeatureSet struct {
	SamplerAnisotropy    bool
	ShaderDrawParameters bool
	Synchronization2     bool
	DynamicRendering     bool
	ExtendedDynamicState bool
}

// missing lists the features requested in required that f lacks.
func (f deviceFeatureSet) missing(required deviceFeatureSet) []string {
	var out []string
	check := func(name string, want, have bool) {
		if want && !have {
			out = append(out, name)
		}
	}
	check("samplerAnisotropy", required.SamplerAnisotropy, f.SamplerAnisotropy)
	check("shaderDrawParameters", required.ShaderDrawParameters, f.ShaderDrawParameters)
	check("synchronization2", required.Synchronization2, f.Synchronization2)
	check("dynamicRendering", required.DynamicRendering, f.DynamicRendering)
	check("extendedDynamicState", required.ExtendedDynamicState, f.ExtendedDynamicState)
	return out
}

type VulkanPhysicalDeviceRequirements struct {
	MinAPIVersion        uint32
	Graphics             bool
	DeviceExtensionNames []string
	Features             deviceFeatureSet
}

func defaultDeviceRequirements() VulkanPhysicalDeviceRequirements {
	return VulkanPhysicalDeviceRequirements{
		MinAPIVersion:        vk.MakeVersion(1, 3, 0),
		Graphics:             true,
		DeviceExtensionNames: requiredDeviceExtensions(runtime.GOOS),
		Features: deviceFeatureSet{
			SamplerAnisotropy:    true,
			ShaderDrawParameters: true,
			Synchronization2:     true,
			DynamicRendering:     true,
			ExtendedDynamicState: true,
		},
	}
}

type queueFamilySupport struct {
	Graphics bool
	Present  bool
}

// physicalDeviceSummary is what selection needs to know about a candidate.
type physicalDeviceSummary struct {
	Name          string
	APIVersion    uint32
	QueueFamilies []queueFamilySupport
	Extensions    []string
	Features      deviceFeatureSet
}

// check returns nil when the candidate satisfies every requirement, or the first reason it does not.
func (r *VulkanPhysicalDeviceRequirements) check(s physicalDeviceSummary) error {
	if s.APIVersion < r.MinAPIVersion {
		v := vk.Version(s.APIVersion)
		return errors.Newf("api version %d.%d is too old", v.Major(), v.Minor())
	}
	if r.Graphics {
		found := false
		for _, qf := range s.QueueFamilies {
			if qf.Graphics {
				found = true
				break
			}
		}
		if !found {
			return errors.New("no graphics queue family")
		}
	}
	if missing := missingNames(s.Extensions, r.DeviceExtensionNames); len(missing) > 0 {
		return errors.Newf("missing extensions: %s", strings.Join(missing, ", "))
	}
	if missing := s.Features.missing(r.Features); len(missing) > 0 {
		return errors.Newf("missing features: %s", strings.Join(missing, ", "))
	}
	return nil
}

// graphicsPresentFamily returns the first family that can both draw and present.
func graphicsPresentFamily(families []queueFamilySupport) (uint32, error) {
	for i, qf := range families {
		if qf.Graphics && qf.Present {
			return uint32(i), nil
		}
	}
	return 0, core.ErrNoQueueFamily
}

// SelectPhysicalDevice picks the first device meeting the requirements.
func SelectPhysicalDevice(context *VulkanContext) error {
	var physicalDeviceCount uint32
	if res := vk.EnumeratePhysicalDevices(context.Instance, &physicalDeviceCount, nil); res != vk.Success {
		return vulkanError("vkEnumeratePhysicalDevices", res)
	}
	if physicalDeviceCount == 0 {
		return errors.Wrap(core.ErrNoSuitableDevice, "no devices which support Vulkan were found")
	}
	physicalDevices := make([]vk.PhysicalDevice, physicalDeviceCount)
	if res := vk.EnumeratePhysicalDevices(context.Instance, &physicalDeviceCount, physicalDevices); res != vk.Success {
		return vulkanError("vkEnumeratePhysicalDevices", res)
	}

	requirements := defaultDeviceRequirements()
	for _, pd := range physicalDevices {
		summary, err := summarizePhysicalDevice(pd, context.Surface)
		if err != nil {
			return err
		}
		if err := requirements.check(summary); err != nil {
			core.LogInfo("skipping device '%s': %v", summary.Name, err)
			continue
		}

		device := &VulkanDevice{PhysicalDevice: pd}
		vk.GetPhysicalDeviceProperties(pd, &device.Properties)
		device.Properties.Deref()
		device.Properties.Limits.Deref()
		device.MaxAnisotropy = device.Properties.Limits.MaxSamplerAnisotropy

		vk.GetPhysicalDeviceMemoryProperties(pd, &device.Memory)
		device.Memory.Deref()

		context.Device = device
		logDeviceInfo(summary.Name, device)
		return nil
	}
	return errors.Wrap(core.ErrNoSuitableDevice, "no physical device meets the requirements")
}

func summarizePhysicalDevice(pd vk.PhysicalDevice, surface vk.Surface) (physicalDeviceSummary, error) {
	var properties vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(pd, &properties)
	properties.Deref()

	summary := physicalDeviceSummary{
		Name:       byteArrayString(properties.DeviceName[:]),
		APIVersion: properties.ApiVersion,
		Features:   queryDeviceFeatures(pd),
	}

	var queueFamilyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &queueFamilyCount, nil)
	queueFamilies := make([]vk.QueueFamilyProperties, queueFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &queueFamilyCount, queueFamilies)
	for i := range queueFamilies {
		queueFamilies[i].Deref()
		var supportsPresent vk.Bool32
		if res := vk.GetPhysicalDeviceSurfaceSupport(pd, uint32(i), surface, &supportsPresent); res != vk.Success {
			return summary, vulkanError("vkGetPhysicalDeviceSurfaceSupportKHR", res)
		}
		summary.QueueFamilies = append(summary.QueueFamilies, queueFamilySupport{
			Graphics: queueFamilies[i].QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0,
			Present:  supportsPresent == vk.True,
		})
	}

	var extensionCount uint32
	if res := vk.EnumerateDeviceExtensionProperties(pd, "", &extensionCount, nil); res != vk.Success {
		return summary, vulkanError("vkEnumerateDeviceExtensionProperties", res)
	}
	if extensionCount != 0 {
		available := make([]vk.ExtensionProperties, extensionCount)
		if res := vk.EnumerateDeviceExtensionProperties(pd, "", &extensionCount, available); res != vk.Success {
			return summary, vulkanError("vkEnumerateDeviceExtensionProperties", res)
		}
		for i := range available {
			available[i].Deref()
			summary.Extensions = append(summary.Extensions, byteArrayString(available[i].ExtensionName[:]))
		}
	}
	return summary, nil
}

// featureChain is the PhysicalDeviceFeatures2 chain used both to query and to enable features.
type featureChain struct {
	root         vk.PhysicalDeviceFeatures2
	vulkan11     vk.PhysicalDeviceVulkan11Features
	vulkan13     vk.PhysicalDeviceVulkan13Features
	dynamicState vk.PhysicalDeviceExtendedDynamicStateFeatures
}

// link wires root -> 1.1 -> 1.3 -> extended dynamic state, innermost first, and returns the root.
// The C copies stay alive until free is called.
func (fc *featureChain) link() (root unsafe.Pointer, free func()) {
	fc.dynamicState.SType = vk.StructureTypePhysicalDeviceExtendedDynamicStateFeatures
	dynamicRef, dynamicAllocs := fc.dynamicState.PassRef()

	fc.vulkan13.SType = vk.StructureTypePhysicalDeviceVulkan13Features
	fc.vulkan13.PNext = unsafe.Pointer(dynamicRef)
	v13Ref, v13Allocs := fc.vulkan13.PassRef()

	fc.vulkan11.SType = vk.StructureTypePhysicalDeviceVulkan11Features
	fc.vulkan11.PNext = unsafe.Pointer(v13Ref)
	v11Ref, v11Allocs := fc.vulkan11.PassRef()

	fc.root.SType = vk.StructureTypePhysicalDeviceFeatures2
	fc.root.PNext = unsafe.Pointer(v11Ref)
	rootRef, rootAllocs := fc.root.PassRef()

	// PassRef hands back no allocations for a struct it already copied.
	return unsafe.Pointer(rootRef), func() {
		if rootAllocs != nil {
			rootAllocs.Free()
		}
		if v11Allocs != nil {
			v11Allocs.Free()
		}
		if v13Allocs != nil {
			v13Allocs.Free()
		}
		if dynamicAllocs != nil {
			dynamicAllocs.Free()
		}
	}
}

func queryDeviceFeatures(pd vk.PhysicalDevice) deviceFeatureSet {
	var fc featureChain
	root, free := fc.link()
	defer free()
	getPhysicalDeviceFeatures2(pd, root)
	fc.root.Deref()
	fc.root.Features.Deref()
	fc.vulkan11.Deref()
	fc.vulkan13.Deref()
	fc.dynamicState.Deref()

	return deviceFeatureSet{
		SamplerAnisotropy:    fc.root.Features.SamplerAnisotropy == vk.True,
		ShaderDrawParameters: fc.vulkan11.ShaderDrawParameters == vk.True,
		Synchronization2:     fc.vulkan13.Synchronization2 == vk.True,
		DynamicRendering:     fc.vulkan13.DynamicRendering == vk.True,
		ExtendedDynamicState: fc.dynamicState.ExtendedDynamicState == vk.True,
	}
}

func enabledFeatureChain() *featureChain {
	fc := &featureChain{}
	fc.root.Features.SamplerAnisotropy = vk.True
	fc.vulkan11.ShaderDrawParameters = vk.True
	fc.vulkan13.Synchronization2 = vk.True
	fc.vulkan13.DynamicRendering = vk.True
	fc.dynamicState.ExtendedDynamicState = vk.True
	return fc
}

// DeviceCreate creates the logical device with one queue and a resettable command pool.
func DeviceCreate(context *VulkanContext) error {
	device := context.Device

	var queueFamilyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(device.PhysicalDevice, &queueFamilyCount, nil)
	queueFamilies := make([]vk.QueueFamilyProperties, queueFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(device.PhysicalDevice, &queueFamilyCount, queueFamilies)

	families := make([]queueFamilySupport, queueFamilyCount)
	for i := range queueFamilies {
		queueFamilies[i].Deref()
		var supportsPresent vk.Bool32
		vk.GetPhysicalDeviceSurfaceSupport(device.PhysicalDevice, uint32(i), context.Surface, &supportsPresent)
		families[i] = queueFamilySupport{
			Graphics: queueFamilies[i].QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0,
			Present:  supportsPresent == vk.True,
		}
	}
	familyIndex, err := graphicsPresentFamily(families)
	if err != nil {
		return err
	}
	device.QueueFamilyIndex = familyIndex
	context.lockPool.SetQueueFamily(familyIndex)

	core.LogInfo("Creating logical device...")

	queueCreateInfo := vk.DeviceQueueCreateInfo{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: familyIndex,
		QueueCount:       1,
		PQueuePriorities: []float32{1.0},
	}

	features, freeFeatures := enabledFeatureChain().link()
	defer freeFeatures()
	extensions := requiredDeviceExtensions(runtime.GOOS)
	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		PNext:                   features,
		QueueCreateInfoCount:    1,
		PQueueCreateInfos:       []vk.DeviceQueueCreateInfo{queueCreateInfo},
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: VulkanSafeStrings(extensions),
	}
	var logical vk.Device
	if res := vk.CreateDevice(device.PhysicalDevice, &deviceCreateInfo, context.Allocator, &logical); res != vk.Success {
		return vulkanError("vkCreateDevice", res)
	}
	device.LogicalDevice = logical
	if err := loadDeviceCommands(logical); err != nil {
		return err
	}
	core.LogInfo("Logical device created.")

	var queue vk.Queue
	vk.GetDeviceQueue(logical, familyIndex, 0, &queue)
	device.Queue = queue

	poolCreateInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: familyIndex,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}
	var pool vk.CommandPool
	if res := vk.CreateCommandPool(logical, &poolCreateInfo, context.Allocator, &pool); res != vk.Success {
		return vulkanError("vkCreateCommandPool", res)
	}
	device.CommandPool = pool
	core.LogInfo("Graphics command pool created.")
	return nil
}

func DeviceDestroy(context *VulkanContext) {
	device := context.Device
	if device == nil {
		return
	}
	device.Queue = nil

	if device.CommandPool != vk.NullCommandPool {
		core.LogInfo("Destroying command pool...")
		vk.DestroyCommandPool(device.LogicalDevice, device.CommandPool, context.Allocator)
		device.CommandPool = vk.NullCommandPool
	}
	if device.LogicalDevice != nil {
		core.LogInfo("Destroying logical device...")
		vk.DestroyDevice(device.LogicalDevice, context.Allocator)
		device.LogicalDevice = nil
	}
	// Physical devices are not destroyed.
	device.PhysicalDevice = nil
	device.SwapchainSupport = nil
}

func gpuTypeName(t vk.PhysicalDeviceType) string {
	switch t {
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return "Integrated"
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return "Discrete"
	case vk.PhysicalDeviceTypeVirtualGpu:
		return "Virtual"
	case vk.PhysicalDeviceTypeCpu:
		return "CPU"
	}
	return "Unknown"
}

func logDeviceInfo(name string, device *VulkanDevice) {
	core.LogInfo("Selected device: '%s'.", name)
	core.LogInfo("GPU type is %s.", gpuTypeName(device.Properties.DeviceType))

	driver := vk.Version(device.Properties.DriverVersion)
	core.LogInfo("GPU Driver version: %d.%d.%d", driver.Major(), driver.Minor(), driver.Patch())
	api := vk.Version(device.Properties.ApiVersion)
	core.LogInfo("Vulkan API version: %d.%d.%d", api.Major(), api.Minor(), api.Patch())

	for j := uint32(0); j < device.Memory.MemoryHeapCount; j++ {
		heap := device.Memory.MemoryHeaps[j]
		heap.Deref()
		sizeGib := float64(heap.Size) / 1024.0 / 1024.0 / 1024.0
		if heap.Flags&vk.MemoryHeapFlags(vk.MemoryHeapDeviceLocalBit) != 0 {
			core.LogInfo("Local GPU memory: %.2f GiB", sizeGib)
		} else {
			core.LogInfo("Shared System memory: %.2f GiB", sizeGib)
		}
	}
}
