package testbed

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/avenir/engine/core"
	"github.com/spaghettifunk/avenir/engine/scene"
)

type fakeInput struct {
	keys   map[core.KeyCode]core.KeyState
	deltas mgl32.Vec2
	mode   core.CursorMode
}

func newFakeInput() *fakeInput {
	return &fakeInput{keys: make(map[core.KeyCode]core.KeyState), mode: core.CURSOR_MODE_NORMAL}
}

func (f *fakeInput) Key(code core.KeyCode) core.KeyState { return f.keys[code] }

func (f *fakeInput) MouseDeltas() mgl32.Vec2 {
	d := f.deltas
	f.deltas = mgl32.Vec2{}
	return d
}

func (f *fakeInput) SetCursorMode(mode core.CursorMode) { f.mode = mode }

func vecClose(a, b mgl32.Vec3) bool {
	return a.ApproxEqualThreshold(b, 1e-4)
}

func TestFPSControllerDisablesCursor(t *testing.T) {
	in := newFakeInput()
	NewFPSController(in, scene.NewTransform())
	if in.mode != core.CURSOR_MODE_DISABLED {
		t.Fatalf("cursor mode = %s", in.mode)
	}
}

func TestFPSControllerMovement(t *testing.T) {
	tests := []struct {
		key  core.KeyCode
		want mgl32.Vec3
	}{
		{core.KEY_W, mgl32.Vec3{0, 0, -2.5}},
		{core.KEY_S, mgl32.Vec3{0, 0, 2.5}},
		{core.KEY_A, mgl32.Vec3{-2.5, 0, 0}},
		{core.KEY_D, mgl32.Vec3{2.5, 0, 0}},
	}
	for _, tt := range tests {
		in := newFakeInput()
		cam := scene.NewTransform()
		c := NewFPSController(in, cam)

		in.keys[tt.key] = core.KEY_STATE_PRESS
		c.Update(1)
		if !vecClose(cam.Position, tt.want) {
			t.Errorf("key %d: position = %v, want %v", tt.key, cam.Position, tt.want)
		}
	}
}

func TestFPSControllerIgnoresRepeat(t *testing.T) {
	in := newFakeInput()
	cam := scene.NewTransform()
	c := NewFPSController(in, cam)

	in.keys[core.KEY_W] = core.KEY_STATE_REPEAT
	c.Update(1)
	if cam.Position != (mgl32.Vec3{}) {
		t.Fatalf("position = %v", cam.Position)
	}
}

func TestFPSControllerYaw(t *testing.T) {
	in := newFakeInput()
	cam := scene.NewTransform()
	c := NewFPSController(in, cam)

	// 900 pixels at 0.1 degrees each is a quarter turn to the right
	in.deltas = mgl32.Vec2{900, 0}
	c.Update(0)
	if !vecClose(cam.Forward(), mgl32.Vec3{1, 0, 0}) {
		t.Fatalf("forward = %v", cam.Forward())
	}
}

func TestFPSControllerPitchClamp(t *testing.T) {
	in := newFakeInput()
	cam := scene.NewTransform()
	c := NewFPSController(in, cam)

	in.deltas = mgl32.Vec2{0, 5000}
	c.Update(0)
	if c.pitch != 90 {
		t.Fatalf("pitch = %v, want 90", c.pitch)
	}
	if !vecClose(cam.Forward(), mgl32.Vec3{0, 1, 0}) {
		t.Fatalf("forward = %v, want straight up", cam.Forward())
	}

	in.deltas = mgl32.Vec2{0, -10000}
	c.Update(0)
	if c.pitch != -90 {
		t.Fatalf("pitch = %v, want -90", c.pitch)
	}
}
