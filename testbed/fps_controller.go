package testbed

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/avenir/engine/core"
	amath "github.com/spaghettifunk/avenir/engine/math"
	"github.com/spaghettifunk/avenir/engine/scene"
)

const (
	movementSpeed    float32 = 2.5
	mouseSensitivity float32 = 0.1
)

// controllerInput is the part of the input manager the controller reads.
type controllerInput interface {
	Key(code core.KeyCode) core.KeyState
	MouseDeltas() mgl32.Vec2
	SetCursorMode(mode core.CursorMode)
}

// FPSController flies a transform around with WASD and the mouse.
type FPSController struct {
	input  controllerInput
	camera *scene.Transform

	yaw, pitch float32

	constrainPitch bool
}

func NewFPSController(input controllerInput, camera *scene.Transform) *FPSController {
	input.SetCursorMode(core.CURSOR_MODE_DISABLED)
	return &FPSController{
		input:          input,
		camera:         camera,
		constrainPitch: true,
	}
}

func (c *FPSController) Update(deltaTime float32) {
	c.handleKeyboard(deltaTime)
	c.handleMouse()
}

func (c *FPSController) handleKeyboard(deltaTime float32) {
	velocity := movementSpeed * deltaTime
	t := c.camera

	if c.input.Key(core.KEY_W) == core.KEY_STATE_PRESS {
		t.Position = t.Position.Add(t.Forward().Mul(velocity))
	}
	if c.input.Key(core.KEY_S) == core.KEY_STATE_PRESS {
		t.Position = t.Position.Sub(t.Forward().Mul(velocity))
	}
	if c.input.Key(core.KEY_A) == core.KEY_STATE_PRESS {
		t.Position = t.Position.Sub(t.Right().Mul(velocity))
	}
	if c.input.Key(core.KEY_D) == core.KEY_STATE_PRESS {
		t.Position = t.Position.Add(t.Right().Mul(velocity))
	}
}

func (c *FPSController) handleMouse() {
	offsets := c.input.MouseDeltas()
	c.yaw += offsets.X() * mouseSensitivity
	c.pitch += offsets.Y() * mouseSensitivity

	if c.constrainPitch {
		c.pitch = amath.Clamp(c.pitch, -90, 90)
	}

	// yaw turns around world Y (negative is up), pitch around local X
	yaw := amath.AngleAxis(c.yaw, mgl32.Vec3{0, -1, 0})
	pitch := amath.AngleAxis(c.pitch, mgl32.Vec3{1, 0, 0})
	c.camera.Rotation = yaw.Mul(pitch).Normalize()
}
