package scene

// ComponentType tags the component variants an entity can carry.
type ComponentType uint8

const (
	ComponentTransform ComponentType = iota
	ComponentCamera
	ComponentMeshRenderer
)

func (t ComponentType) String() string {
	switch t {
	case ComponentTransform:
		return "Transform"
	case ComponentCamera:
		return "Camera"
	case ComponentMeshRenderer:
		return "MeshRenderer"
	}
	return "Unknown"
}

// Component is implemented by *Transform, *Camera and *MeshRenderer.
// Type must not dereference the receiver so it can be called on a nil value.
type Component interface {
	Type() ComponentType
	Clone() Component
}
