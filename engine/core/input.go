package core

import "github.com/go-gl/mathgl/mgl32"

// Key code definitions. Values match the GLFW key tokens.
type KeyCode uint16

const (
	KEY_SPACE     KeyCode = 32
	KEY_0         KeyCode = 48
	KEY_1         KeyCode = 49
	KEY_2         KeyCode = 50
	KEY_3         KeyCode = 51
	KEY_4         KeyCode = 52
	KEY_5         KeyCode = 53
	KEY_6         KeyCode = 54
	KEY_7         KeyCode = 55
	KEY_8         KeyCode = 56
	KEY_9         KeyCode = 57
	KEY_A         KeyCode = 0x41
	KEY_B         KeyCode = 0x42
	KEY_C         KeyCode = 0x43
	KEY_D         KeyCode = 0x44
	KEY_E         KeyCode = 0x45
	KEY_F         KeyCode = 0x46
	KEY_G         KeyCode = 0x47
	KEY_H         KeyCode = 0x48
	KEY_I         KeyCode = 0x49
	KEY_J         KeyCode = 0x4A
	KEY_K         KeyCode = 0x4B
	KEY_L         KeyCode = 0x4C
	KEY_M         KeyCode = 0x4D
	KEY_N         KeyCode = 0x4E
	KEY_O         KeyCode = 0x4F
	KEY_P         KeyCode = 0x50
	KEY_Q         KeyCode = 0x51
	KEY_R         KeyCode = 0x52
	KEY_S         KeyCode = 0x53
	KEY_T         KeyCode = 0x54
	KEY_U         KeyCode = 0x55
	KEY_V         KeyCode = 0x56
	KEY_W         KeyCode = 0x57
	KEY_X         KeyCode = 0x58
	KEY_Y         KeyCode = 0x59
	KEY_Z         KeyCode = 0x5A
	KEY_ESCAPE    KeyCode = 256
	KEY_ENTER     KeyCode = 257
	KEY_TAB       KeyCode = 258
	KEY_BACKSPACE KeyCode = 259
	KEY_RIGHT     KeyCode = 262
	KEY_LEFT      KeyCode = 263
	KEY_DOWN      KeyCode = 264
	KEY_UP        KeyCode = 265
	KEY_F1        KeyCode = 290
	KEY_F2        KeyCode = 291
	KEY_F3        KeyCode = 292
	KEY_F4        KeyCode = 293
	KEY_LSHIFT    KeyCode = 340
	KEY_LCONTROL  KeyCode = 341
	KEY_LALT      KeyCode = 342
	KEY_RSHIFT    KeyCode = 344
	KEY_RCONTROL  KeyCode = 345
	KEY_RALT      KeyCode = 346
	KEYS_MAX_KEYS KeyCode = 349
)

// KeyState matches the GLFW action values.
type KeyState int

const (
	KEY_STATE_RELEASE KeyState = iota
	KEY_STATE_PRESS
	KEY_STATE_REPEAT
)

type CursorMode int

const (
	CURSOR_MODE_NORMAL CursorMode = iota
	CURSOR_MODE_HIDDEN
	CURSOR_MODE_DISABLED
	CURSOR_MODE_CAPTURED
)

func (m CursorMode) String() string {
	switch m {
	case CURSOR_MODE_NORMAL:
		return "normal"
	case CURSOR_MODE_HIDDEN:
		return "hidden"
	case CURSOR_MODE_DISABLED:
		return "disabled"
	case CURSOR_MODE_CAPTURED:
		return "captured"
	}
	return "unknown"
}

// InputSource is the window side of the input manager.
type InputSource interface {
	Events() *EventBus
	Size() (width, height int)
	SetCursorMode(mode CursorMode)
}

type keyboardState struct {
	keys [KEYS_MAX_KEYS]KeyState
}

// InputManager tracks keyboard state and accumulates mouse deltas between reads.
type InputManager struct {
	source InputSource

	keyboardCurrent  keyboardState
	keyboardPrevious keyboardState

	isFirstMouse bool
	lastX, lastY float32
	offsetX      float32
	offsetY      float32
}

func NewInputManager(source InputSource) *InputManager {
	w, h := source.Size()
	im := &InputManager{
		source:       source,
		isFirstMouse: true,
		// seed to the window center
		lastX: float32(w) / 2.0,
		lastY: float32(h) / 2.0,
	}

	bus := source.Events()
	bus.Register(EVENT_CODE_KEY_PRESSED, im, im.onKey)
	bus.Register(EVENT_CODE_KEY_RELEASED, im, im.onKey)
	bus.Register(EVENT_CODE_MOUSE_MOVED, im, im.onMouseMoved)

	LogInfo("Input subsystem initialized.")
	return im
}

func (im *InputManager) Shutdown() {
	bus := im.source.Events()
	bus.Unregister(EVENT_CODE_KEY_PRESSED, im)
	bus.Unregister(EVENT_CODE_KEY_RELEASED, im)
	bus.Unregister(EVENT_CODE_MOUSE_MOVED, im)
}

// Update copies the current keyboard state into the previous one. Call once per frame.
func (im *InputManager) Update() {
	im.keyboardPrevious = im.keyboardCurrent
}

func (im *InputManager) Key(code KeyCode) KeyState {
	if code >= KEYS_MAX_KEYS {
		return KEY_STATE_RELEASE
	}
	return im.keyboardCurrent.keys[code]
}

func (im *InputManager) IsKeyDown(code KeyCode) bool {
	return im.Key(code) != KEY_STATE_RELEASE
}

func (im *InputManager) WasKeyDown(code KeyCode) bool {
	if code >= KEYS_MAX_KEYS {
		return false
	}
	return im.keyboardPrevious.keys[code] != KEY_STATE_RELEASE
}

// MouseDeltas returns the offsets accumulated since the previous call and clears them.
// Y grows upwards.
func (im *InputManager) MouseDeltas() mgl32.Vec2 {
	d := mgl32.Vec2{im.offsetX, im.offsetY}
	im.offsetX = 0
	im.offsetY = 0
	return d
}

func (im *InputManager) SetCursorMode(mode CursorMode) {
	im.source.SetCursorMode(mode)
}

func (im *InputManager) ProcessKey(code KeyCode, state KeyState) {
	if code >= KEYS_MAX_KEYS {
		return
	}
	im.keyboardCurrent.keys[code] = state
}

func (im *InputManager) ProcessMouseMove(x, y float64) {
	px, py := float32(x), float32(y)
	if im.isFirstMouse {
		im.lastX = px
		im.lastY = py
		im.isFirstMouse = false
	}

	im.offsetX = px - im.lastX
	im.offsetY = im.lastY - py

	im.lastX = px
	im.lastY = py
}

func (im *InputManager) onKey(code SystemEventCode, sender interface{}, listenerInst interface{}, data EventContext) bool {
	key := KeyCode(data.Data.I32[0])
	if code == EVENT_CODE_KEY_RELEASED {
		im.ProcessKey(key, KEY_STATE_RELEASE)
	} else {
		im.ProcessKey(key, KeyState(data.Data.I32[1]))
	}
	return false
}

func (im *InputManager) onMouseMoved(code SystemEventCode, sender interface{}, listenerInst interface{}, data EventContext) bool {
	im.ProcessMouseMove(data.Data.F64[0], data.Data.F64[1])
	return false
}
