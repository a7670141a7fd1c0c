package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Transform holds the local position, rotation and scale of an entity.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

func NewTransform() *Transform {
	return NewTransformFromPositionRotationScale(mgl32.Vec3{}, mgl32.QuatIdent(), mgl32.Vec3{1, 1, 1})
}

func NewTransformFromPosition(position mgl32.Vec3) *Transform {
	return NewTransformFromPositionRotationScale(position, mgl32.QuatIdent(), mgl32.Vec3{1, 1, 1})
}

func NewTransformFromPositionRotationScale(position mgl32.Vec3, rotation mgl32.Quat, scale mgl32.Vec3) *Transform {
	return &Transform{
		Position: position,
		Rotation: rotation,
		Scale:    scale,
	}
}

func (t *Transform) Type() ComponentType {
	return ComponentTransform
}

func (t *Transform) Clone() Component {
	c := *t
	return &c
}

func (t *Transform) Translate(translation mgl32.Vec3) {
	t.Position = t.Position.Add(translation)
}

func (t *Transform) Rotate(rotation mgl32.Quat) {
	t.Rotation = t.Rotation.Mul(rotation)
}

// Forward is the local -Z axis in world space.
func (t *Transform) Forward() mgl32.Vec3 {
	return t.Rotation.Rotate(mgl32.Vec3{0, 0, -1}).Normalize()
}

func (t *Transform) Up() mgl32.Vec3 {
	return t.Rotation.Rotate(mgl32.Vec3{0, 1, 0}).Normalize()
}

func (t *Transform) Right() mgl32.Vec3 {
	return t.Rotation.Rotate(mgl32.Vec3{1, 0, 0}).Normalize()
}

// WorldMatrix composes translation, rotation and scale (T * R * S).
// It ignores any parent; use Scene.EntityWorldMatrix for the hierarchy.
func (t *Transform) WorldMatrix() mgl32.Mat4 {
	tr := mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	r := t.Rotation.Normalize().Mat4()
	s := mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())
	return tr.Mul4(r).Mul4(s)
}

func (t *Transform) InverseWorldMatrix() mgl32.Mat4 {
	return t.WorldMatrix().Inv()
}
