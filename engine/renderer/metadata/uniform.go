package metadata

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// UniformBufferObject is bound at binding 0 of the vertex stage.
// Three column major mat4 values, 192 bytes, std140 compatible.
type UniformBufferObject struct {
	Model mgl32.Mat4
	View  mgl32.Mat4
	Proj  mgl32.Mat4
}

const UniformBufferObjectSize = uint64(unsafe.Sizeof(UniformBufferObject{}))

func (u *UniformBufferObject) Bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(u)), UniformBufferObjectSize)
}
