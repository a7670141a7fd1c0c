package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/avenir/engine/math"
)

const (
	DefaultCameraFOV  float32 = 45.0
	DefaultCameraNear float32 = 0.1
	DefaultCameraFar  float32 = 10.0
)

// Camera marks an entity as a point of view. The view matrix comes from the
// entity's transform; the camera only carries projection parameters.
type Camera struct {
	// vertical field of view in degrees
	FOV  float32
	Near float32
	Far  float32
}

func NewCamera() *Camera {
	return &Camera{
		FOV:  DefaultCameraFOV,
		Near: DefaultCameraNear,
		Far:  DefaultCameraFar,
	}
}

func (c *Camera) Type() ComponentType {
	return ComponentCamera
}

func (c *Camera) Clone() Component {
	cp := *c
	return &cp
}

func (c *Camera) Projection(aspect float32) mgl32.Mat4 {
	return math.PerspectiveVulkan(c.FOV, aspect, c.Near, c.Far)
}
