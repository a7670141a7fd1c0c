package metadata

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// Vertex matches the shader input layout: location 0 position, 1 color, 2 texture coordinates.
type Vertex struct {
	Pos      mgl32.Vec2
	Color    mgl32.Vec3
	TexCoord mgl32.Vec2
}

const VertexSize = uint32(unsafe.Sizeof(Vertex{}))

type Mesh struct {
	Name     string
	Vertices []Vertex
	Indices  []uint16
}

func (m *Mesh) IndexCount() uint32 {
	return uint32(len(m.Indices))
}

// VertexBytes returns the vertex data as laid out in GPU memory.
func (m *Mesh) VertexBytes() []byte {
	if len(m.Vertices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&m.Vertices[0])), len(m.Vertices)*int(VertexSize))
}

func (m *Mesh) IndexBytes() []byte {
	if len(m.Indices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&m.Indices[0])), len(m.Indices)*2)
}

// QuadMesh is the unit quad centered at the origin, one color per corner.
func QuadMesh() *Mesh {
	return &Mesh{
		Name: "quad",
		Vertices: []Vertex{
			{Pos: mgl32.Vec2{-0.5, -0.5}, Color: mgl32.Vec3{1, 0, 0}, TexCoord: mgl32.Vec2{0, 1}},
			{Pos: mgl32.Vec2{0.5, -0.5}, Color: mgl32.Vec3{0, 1, 0}, TexCoord: mgl32.Vec2{1, 1}},
			{Pos: mgl32.Vec2{0.5, 0.5}, Color: mgl32.Vec3{0, 0, 1}, TexCoord: mgl32.Vec2{1, 0}},
			{Pos: mgl32.Vec2{-0.5, 0.5}, Color: mgl32.Vec3{1, 1, 1}, TexCoord: mgl32.Vec2{0, 0}},
		},
		Indices: []uint16{0, 1, 2, 2, 3, 0},
	}
}
