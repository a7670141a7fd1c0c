package engine

import (
	"github.com/spaghettifunk/avenir/engine/core"
	"github.com/spaghettifunk/avenir/engine/platform"
	"github.com/spaghettifunk/avenir/engine/scene"
)

// Game holds the callbacks the engine drives. The engine fills Window, Input
// and Scene before FnInitialize runs; the game sets Camera to the entity the
// frame is drawn from.
type Game struct {
	Window *platform.Window
	Input  *core.InputManager
	Scene  *scene.Scene
	Camera uint32

	State        interface{}
	FnInitialize Initialize
	FnUpdate     Update
	FnOnResize   OnResize
	FnShutdown   Shutdown
}

type Initialize func() error
type Update func(deltaTime float32) error
type OnResize func(width, height int)
type Shutdown func() error
