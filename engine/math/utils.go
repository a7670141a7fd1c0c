package math

import (
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/exp/constraints"
)

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// PerspectiveVulkan builds a right handed perspective projection with Y pointing down in clip space.
// fovY is in degrees.
func PerspectiveVulkan(fovY, aspect, near, far float32) mgl32.Mat4 {
	proj := mgl32.Perspective(mgl32.DegToRad(fovY), aspect, near, far)
	// column major: [1][1] is element 5
	proj[5] *= -1
	return proj
}

// AngleAxis returns the rotation of angle degrees around axis.
func AngleAxis(angle float32, axis mgl32.Vec3) mgl32.Quat {
	return mgl32.QuatRotate(mgl32.DegToRad(angle), axis.Normalize())
}
