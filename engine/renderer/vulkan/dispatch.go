package vulkan

/*
#include <stdlib.h>

typedef void (*avenirVoidFunction)(void);
typedef avenirVoidFunction (*avenirGetProcAddr)(void* handle, const char* name);

static void* avenirGetProc(void* getProcAddr, void* handle, const char* name) {
	return (void*)((avenirGetProcAddr)getProcAddr)(handle, name);
}

static void avenirCallHandle(void* fn, void* handle) {
	((void (*)(void*))fn)(handle);
}

static void avenirCallHandleInfo(void* fn, void* handle, void* info) {
	((void (*)(void*, void*))fn)(handle, info);
}
*/
import "C"

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
)

// The bindings ship the 1.3 structs but not these entry points, so they are loaded here.

// commandName is a core entry point plus the extension alias tried when the core name is missing.
type commandName struct {
	core  string
	alias string
}

var (
	getDeviceProcAddrCmd          = commandName{core: "vkGetDeviceProcAddr"}
	getPhysicalDeviceFeatures2Cmd = commandName{core: "vkGetPhysicalDeviceFeatures2", alias: "vkGetPhysicalDeviceFeatures2KHR"}
	cmdBeginRenderingCmd          = commandName{core: "vkCmdBeginRendering", alias: "vkCmdBeginRenderingKHR"}
	cmdEndRenderingCmd            = commandName{core: "vkCmdEndRendering", alias: "vkCmdEndRenderingKHR"}
	cmdPipelineBarrier2Cmd        = commandName{core: "vkCmdPipelineBarrier2", alias: "vkCmdPipelineBarrier2KHR"}
)

var (
	instanceCommandNames = []commandName{getDeviceProcAddrCmd, getPhysicalDeviceFeatures2Cmd}
	deviceCommandNames   = []commandName{cmdBeginRenderingCmd, cmdEndRenderingCmd, cmdPipelineBarrier2Cmd}
)

// procLookup returns the address for name, or nil.
type procLookup func(name string) unsafe.Pointer

func resolveCommand(lookup procLookup, cmd commandName) (unsafe.Pointer, error) {
	if fn := lookup(cmd.core); fn != nil {
		return fn, nil
	}
	if cmd.alias != "" {
		if fn := lookup(cmd.alias); fn != nil {
			return fn, nil
		}
	}
	return nil, errors.Newf("vulkan entry point %s is not available", cmd.core)
}

func resolveCommands(lookup procLookup, names []commandName) (map[string]unsafe.Pointer, error) {
	table := make(map[string]unsafe.Pointer, len(names))
	for _, name := range names {
		fn, err := resolveCommand(lookup, name)
		if err != nil {
			return nil, err
		}
		table[name.core] = fn
	}
	return table, nil
}

// One renderer per process, like the loader state held by the bindings.
var dispatch struct {
	getInstanceProcAddr unsafe.Pointer
	instance            map[string]unsafe.Pointer
	device              map[string]unsafe.Pointer
}

func getProcLookup(getProcAddr, handle unsafe.Pointer) procLookup {
	return func(name string) unsafe.Pointer {
		cname := C.CString(name)
		defer C.free(unsafe.Pointer(cname))
		return C.avenirGetProc(getProcAddr, handle, cname)
	}
}

func loadInstanceCommands(instance vk.Instance) error {
	if dispatch.getInstanceProcAddr == nil {
		return errors.New("vkGetInstanceProcAddr is not available")
	}
	table, err := resolveCommands(getProcLookup(dispatch.getInstanceProcAddr, unsafe.Pointer(instance)), instanceCommandNames)
	if err != nil {
		return err
	}
	dispatch.instance = table
	return nil
}

func loadDeviceCommands(device vk.Device) error {
	getDeviceProcAddr := dispatch.instance[getDeviceProcAddrCmd.core]
	if getDeviceProcAddr == nil {
		return errors.New("instance commands are not loaded")
	}
	table, err := resolveCommands(getProcLookup(getDeviceProcAddr, unsafe.Pointer(device)), deviceCommandNames)
	if err != nil {
		return err
	}
	dispatch.device = table
	return nil
}

func getPhysicalDeviceFeatures2(pd vk.PhysicalDevice, features unsafe.Pointer) {
	C.avenirCallHandleInfo(dispatch.instance[getPhysicalDeviceFeatures2Cmd.core], unsafe.Pointer(pd), features)
}

func cmdBeginRendering(cmd vk.CommandBuffer, info *vk.RenderingInfo) {
	ref, allocs := info.PassRef()
	if allocs != nil {
		defer allocs.Free()
	}
	C.avenirCallHandleInfo(dispatch.device[cmdBeginRenderingCmd.core], unsafe.Pointer(cmd), unsafe.Pointer(ref))
}

func cmdEndRendering(cmd vk.CommandBuffer) {
	C.avenirCallHandle(dispatch.device[cmdEndRenderingCmd.core], unsafe.Pointer(cmd))
}

func cmdPipelineBarrier2(cmd vk.CommandBuffer, info *vk.DependencyInfo) {
	ref, allocs := info.PassRef()
	if allocs != nil {
		defer allocs.Free()
	}
	C.avenirCallHandleInfo(dispatch.device[cmdPipelineBarrier2Cmd.core], unsafe.Pointer(cmd), unsafe.Pointer(ref))
}
