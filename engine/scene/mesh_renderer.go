package scene

// MeshRenderer marks an entity for drawing with the named mesh.
type MeshRenderer struct {
	Mesh    string
	Visible bool
}

func NewMeshRenderer(mesh string) *MeshRenderer {
	return &MeshRenderer{Mesh: mesh, Visible: true}
}

func (m *MeshRenderer) Type() ComponentType {
	return ComponentMeshRenderer
}

func (m *MeshRenderer) Clone() Component {
	cp := *m
	return &cp
}
