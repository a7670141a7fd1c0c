package platform

import (
	"runtime"
	"sync"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spaghettifunk/avenir/engine/core"
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

// windowRegistry maps native handles to their Window so GLFW callbacks can be routed.
type windowRegistry struct {
	mu      sync.RWMutex
	windows map[*glfw.Window]*Window
}

var registry = &windowRegistry{windows: make(map[*glfw.Window]*Window)}

func (r *windowRegistry) add(handle *glfw.Window, w *Window) {
	r.mu.Lock()
	r.windows[handle] = w
	r.mu.Unlock()
}

func (r *windowRegistry) remove(handle *glfw.Window) {
	r.mu.Lock()
	delete(r.windows, handle)
	r.mu.Unlock()
}

func (r *windowRegistry) lookup(handle *glfw.Window) (*Window, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.windows[handle]
	return w, ok
}

// Window is a GLFW window without a client API, ready for a Vulkan surface.
type Window struct {
	handle *glfw.Window
	events *core.EventBus
}

func NewWindow(width, height uint32, title string) (*Window, error) {
	if err := glfw.Init(); err != nil {
		core.LogError("failed to initialize glfw: %s", err)
		return nil, errors.Wrap(err, "failed to initialize glfw")
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return nil, errors.New("glfw reports no Vulkan loader")
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // Required for Vulkan.
	glfw.WindowHint(glfw.Resizable, glfw.True)

	handle, err := glfw.CreateWindow(int(width), int(height), title, nil, nil)
	if err != nil {
		core.LogError("failed to create window: %s", err)
		glfw.Terminate()
		return nil, errors.Wrap(err, "failed to create window")
	}

	w := &Window{
		handle: handle,
		events: core.NewEventBus(),
	}
	registry.add(handle, w)

	handle.SetKeyCallback(keyCallback)
	handle.SetCursorPosCallback(cursorPosCallback)
	handle.SetFramebufferSizeCallback(framebufferSizeCallback)

	core.LogInfo("Window %q created (%dx%d).", title, width, height)
	return w, nil
}

func (w *Window) Destroy() {
	if w.handle == nil {
		return
	}
	registry.remove(w.handle)
	w.events.Shutdown()
	w.handle.Destroy()
	w.handle = nil
	glfw.Terminate()
}

func (w *Window) Handle() *glfw.Window {
	return w.handle
}

func (w *Window) Events() *core.EventBus {
	return w.events
}

func (w *Window) IsOpen() bool {
	return !w.handle.ShouldClose()
}

// Close asks the window to close; IsOpen reports false afterwards.
func (w *Window) Close() {
	w.handle.SetShouldClose(true)
}

func PollEvents() {
	glfw.PollEvents()
}

// WaitEvents blocks until at least one event is available.
func WaitEvents() {
	glfw.WaitEvents()
}

func (w *Window) Size() (int, int) {
	return w.handle.GetSize()
}

func (w *Window) FramebufferSize() (int, int) {
	return w.handle.GetFramebufferSize()
}

func (w *Window) SetCursorMode(mode core.CursorMode) {
	w.handle.SetInputMode(glfw.CursorMode, glfwCursorMode(mode))
}

func glfwCursorMode(mode core.CursorMode) int {
	switch mode {
	case core.CURSOR_MODE_HIDDEN:
		return glfw.CursorHidden
	case core.CURSOR_MODE_DISABLED:
		return glfw.CursorDisabled
	case core.CURSOR_MODE_CAPTURED:
		// GLFW 3.3 has no captured mode; disabled also confines the cursor.
		return glfw.CursorDisabled
	}
	return glfw.CursorNormal
}

// RequiredInstanceExtensions lists the Vulkan instance extensions GLFW needs for surfaces.
func (w *Window) RequiredInstanceExtensions() []string {
	return w.handle.GetRequiredInstanceExtensions()
}

// GetInstanceProcAddress returns vkGetInstanceProcAddr as resolved by GLFW.
func GetInstanceProcAddress() unsafe.Pointer {
	return glfw.GetVulkanGetInstanceProcAddress()
}

// CreateSurface creates a VkSurfaceKHR for the window and returns it as a raw handle.
func (w *Window) CreateSurface(instance interface{}) (uintptr, error) {
	surface, err := w.handle.CreateWindowSurface(instance, nil)
	if err != nil {
		return 0, errors.Wrap(core.ErrSurfaceCreation, err.Error())
	}
	return surface, nil
}

// RegisterFramebufferSizeListener calls fn with the new framebuffer size on every resize.
func (w *Window) RegisterFramebufferSizeListener(listener interface{}, fn func(width, height int)) bool {
	return w.events.Register(core.EVENT_CODE_RESIZED, listener,
		func(code core.SystemEventCode, sender interface{}, listenerInst interface{}, data core.EventContext) bool {
			fn(int(data.Data.U32[0]), int(data.Data.U32[1]))
			return false
		})
}

// RegisterKeyListener calls fn for presses, repeats and releases.
func (w *Window) RegisterKeyListener(listener interface{}, fn func(key core.KeyCode, state core.KeyState)) bool {
	cb := func(code core.SystemEventCode, sender interface{}, listenerInst interface{}, data core.EventContext) bool {
		fn(core.KeyCode(data.Data.I32[0]), core.KeyState(data.Data.I32[1]))
		return false
	}
	ok := w.events.Register(core.EVENT_CODE_KEY_PRESSED, listener, cb)
	return w.events.Register(core.EVENT_CODE_KEY_RELEASED, listener, cb) && ok
}

// RegisterCursorPosListener calls fn with the cursor position in screen coordinates.
func (w *Window) RegisterCursorPosListener(listener interface{}, fn func(x, y float64)) bool {
	return w.events.Register(core.EVENT_CODE_MOUSE_MOVED, listener,
		func(code core.SystemEventCode, sender interface{}, listenerInst interface{}, data core.EventContext) bool {
			fn(data.Data.F64[0], data.Data.F64[1])
			return false
		})
}

func (w *Window) UnregisterListener(listener interface{}) {
	for _, code := range []core.SystemEventCode{core.EVENT_CODE_RESIZED, core.EVENT_CODE_KEY_PRESSED, core.EVENT_CODE_KEY_RELEASED, core.EVENT_CODE_MOUSE_MOVED} {
		w.events.Unregister(code, listener)
	}
}

func (w *Window) dispatchKey(key int, action int) {
	if key < 0 {
		// unknown key
		return
	}
	var ctx core.EventContext
	ctx.Data.I32[0] = int32(key)
	ctx.Data.I32[1] = int32(action)
	code := core.EVENT_CODE_KEY_PRESSED
	if core.KeyState(action) == core.KEY_STATE_RELEASE {
		code = core.EVENT_CODE_KEY_RELEASED
	}
	w.events.Fire(code, w, ctx)
}

func (w *Window) dispatchCursorPos(x, y float64) {
	var ctx core.EventContext
	ctx.Data.F64[0] = x
	ctx.Data.F64[1] = y
	w.events.Fire(core.EVENT_CODE_MOUSE_MOVED, w, ctx)
}

func (w *Window) dispatchFramebufferSize(width, height int) {
	var ctx core.EventContext
	ctx.Data.U32[0] = uint32(width)
	ctx.Data.U32[1] = uint32(height)
	w.events.Fire(core.EVENT_CODE_RESIZED, w, ctx)
}

func keyCallback(gw *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if w, ok := registry.lookup(gw); ok {
		w.dispatchKey(int(key), int(action))
	}
}

func cursorPosCallback(gw *glfw.Window, xpos, ypos float64) {
	if w, ok := registry.lookup(gw); ok {
		w.dispatchCursorPos(xpos, ypos)
	}
}

func framebufferSizeCallback(gw *glfw.Window, width, height int) {
	if w, ok := registry.lookup(gw); ok {
		w.dispatchFramebufferSize(width, height)
	}
}
