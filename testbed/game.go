package testbed

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/avenir/engine"
	"github.com/spaghettifunk/avenir/engine/core"
	"github.com/spaghettifunk/avenir/engine/scene"
)

type TestGame struct {
	*engine.Game
}

type gameState struct {
	controller *FPSController
	player     uint32
	enemy      uint32
}

func NewTestGame() *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			State: &gameState{},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg
}

// Initialize places a camera two units back from the quad and a couple of placeholder entities.
func (g *TestGame) Initialize() error {
	core.LogDebug("TestGame Initialize fn....")
	state := g.State.(*gameState)

	camera := g.Scene.CreateEntity()
	cameraTransform := scene.NewTransformFromPosition(mgl32.Vec3{0, 0, 2})
	if err := camera.AddComponent(cameraTransform); err != nil {
		return err
	}
	if err := camera.AddComponent(scene.NewCamera()); err != nil {
		return err
	}
	g.Camera = camera.ID()

	player := g.Scene.CreateEntity()
	if err := player.AddComponent(scene.NewTransform()); err != nil {
		return err
	}
	state.player = player.ID()

	enemy := g.Scene.CreateEntity()
	if err := enemy.AddComponent(scene.NewTransform()); err != nil {
		return err
	}
	if err := enemy.AddComponent(scene.NewMeshRenderer("quad")); err != nil {
		return err
	}
	state.enemy = enemy.ID()

	state.controller = NewFPSController(g.Input, cameraTransform)
	return nil
}

func (g *TestGame) Update(deltaTime float32) error {
	if g.Input.Key(core.KEY_ESCAPE) == core.KEY_STATE_PRESS {
		g.Window.Close()
		return nil
	}
	g.State.(*gameState).controller.Update(deltaTime)
	return nil
}

func (g *TestGame) OnResize(width, height int) {
	core.LogDebug("window resized to %dx%d", width, height)
}

func (g *TestGame) Shutdown() error {
	core.LogInfo("testbed shutting down")
	return nil
}
