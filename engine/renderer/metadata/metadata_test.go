package metadata

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestVertexLayout(t *testing.T) {
	if VertexSize != 28 {
		t.Fatalf("vertex size = %d, want 28", VertexSize)
	}
	m := QuadMesh()
	if got := len(m.VertexBytes()); got != 4*28 {
		t.Fatalf("vertex bytes = %d", got)
	}
	// second vertex color starts at 28 + 8
	b := m.VertexBytes()
	g := math.Float32frombits(binary.LittleEndian.Uint32(b[28+8+4:]))
	if g != 1 {
		t.Fatalf("green channel of vertex 1 = %v", g)
	}
}

func TestQuadMesh(t *testing.T) {
	m := QuadMesh()
	if m.IndexCount() != 6 {
		t.Fatalf("index count = %d", m.IndexCount())
	}
	want := []uint16{0, 1, 2, 2, 3, 0}
	for i, idx := range want {
		if m.Indices[i] != idx {
			t.Fatalf("indices = %v", m.Indices)
		}
	}
	if len(m.IndexBytes()) != 12 {
		t.Fatalf("index bytes = %d", len(m.IndexBytes()))
	}
	if m.Vertices[3].Color != (mgl32.Vec3{1, 1, 1}) || m.Vertices[3].TexCoord != (mgl32.Vec2{0, 0}) {
		t.Fatalf("last vertex = %+v", m.Vertices[3])
	}
	empty := &Mesh{}
	if empty.VertexBytes() != nil || empty.IndexBytes() != nil {
		t.Fatal("empty mesh should have no bytes")
	}
}

func TestUniformBufferObjectBytes(t *testing.T) {
	if UniformBufferObjectSize != 192 {
		t.Fatalf("ubo size = %d", UniformBufferObjectSize)
	}
	ubo := UniformBufferObject{
		Model: mgl32.Ident4(),
		View:  mgl32.Translate3D(1, 2, 3),
		Proj:  mgl32.Ident4(),
	}
	b := ubo.Bytes()
	// view translation x lives in column 3, row 0: float index 16 + 12
	x := math.Float32frombits(binary.LittleEndian.Uint32(b[(16+12)*4:]))
	if x != 1 {
		t.Fatalf("view translation x = %v", x)
	}
}
