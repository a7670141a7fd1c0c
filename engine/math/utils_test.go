package math

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestClamp(t *testing.T) {
	if got := Clamp(5, 0, 3); got != 3 {
		t.Errorf("Clamp(5, 0, 3) = %d", got)
	}
	if got := Clamp(-1, 0, 3); got != 0 {
		t.Errorf("Clamp(-1, 0, 3) = %d", got)
	}
	if got := Clamp(uint32(2), 1, 3); got != 2 {
		t.Errorf("Clamp(2, 1, 3) = %d", got)
	}
	if got := Clamp(float32(95), -90, 90); got != 90 {
		t.Errorf("Clamp(95, -90, 90) = %v", got)
	}
}

func TestPerspectiveVulkanFlipsY(t *testing.T) {
	gl := mgl32.Perspective(mgl32.DegToRad(45), 4.0/3.0, 0.1, 10)
	vk := PerspectiveVulkan(45, 4.0/3.0, 0.1, 10)

	if vk.At(1, 1) != -gl.At(1, 1) {
		t.Fatalf("[1][1] = %v, want %v", vk.At(1, 1), -gl.At(1, 1))
	}
	for i := range gl {
		if i == 5 {
			continue
		}
		if vk[i] != gl[i] {
			t.Fatalf("element %d changed: %v != %v", i, vk[i], gl[i])
		}
	}

	// a point above the camera ends up with negative clip space Y
	clip := vk.Mul4x1(mgl32.Vec4{0, 1, -2, 1})
	if clip.Y() >= 0 {
		t.Fatalf("expected negative y, got %v", clip)
	}
}

func TestAngleAxis(t *testing.T) {
	q := AngleAxis(90, mgl32.Vec3{0, 2, 0})
	v := q.Rotate(mgl32.Vec3{1, 0, 0})
	if !v.ApproxEqualThreshold(mgl32.Vec3{0, 0, -1}, 1e-5) {
		t.Fatalf("rotated = %v, want (0, 0, -1)", v)
	}
}
