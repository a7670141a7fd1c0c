package scene

import (
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/spaghettifunk/avenir/engine/core"
)

// Entity is an identifier plus at most one component of each type.
// Parent/child links are managed by the owning Scene.
type Entity struct {
	id   uint32
	guid uuid.UUID

	components map[ComponentType]Component
	// insertion order, for listing
	order []ComponentType

	parent    uint32
	hasParent bool
	children  []uint32
}

func newEntity(id uint32) *Entity {
	return &Entity{
		id:         id,
		guid:       uuid.New(),
		components: make(map[ComponentType]Component),
	}
}

func (e *Entity) ID() uint32 {
	return e.id
}

func (e *Entity) GUID() uuid.UUID {
	return e.guid
}

// AddComponent attaches c. An entity holds at most one component per type.
func (e *Entity) AddComponent(c Component) error {
	t := c.Type()
	if _, ok := e.components[t]; ok {
		return errors.Wrapf(core.ErrComponentExists, "entity %d: %s", e.id, t)
	}
	e.components[t] = c
	e.order = append(e.order, t)
	return nil
}

func (e *Entity) HasComponent(t ComponentType) bool {
	_, ok := e.components[t]
	return ok
}

func (e *Entity) Component(t ComponentType) (Component, error) {
	c, ok := e.components[t]
	if !ok {
		return nil, errors.Wrapf(core.ErrComponentMissing, "entity %d: %s", e.id, t)
	}
	return c, nil
}

// GetComponent returns the component of type T, e.g. GetComponent[*Transform](e).
func GetComponent[T Component](e *Entity) (T, error) {
	var zero T
	c, err := e.Component(zero.Type())
	if err != nil {
		return zero, err
	}
	return c.(T), nil
}

func (e *Entity) Transform() (*Transform, error) {
	return GetComponent[*Transform](e)
}

func (e *Entity) Camera() (*Camera, error) {
	return GetComponent[*Camera](e)
}

func (e *Entity) MeshRenderer() (*MeshRenderer, error) {
	return GetComponent[*MeshRenderer](e)
}

// ComponentNames lists the attached components in the order they were added.
func (e *Entity) ComponentNames() []string {
	names := make([]string, 0, len(e.order))
	for _, t := range e.order {
		names = append(names, t.String())
	}
	return names
}

func (e *Entity) Parent() (uint32, bool) {
	return e.parent, e.hasParent
}

func (e *Entity) Children() []uint32 {
	out := make([]uint32, len(e.children))
	copy(out, e.children)
	return out
}

func (e *Entity) setParent(id uint32, ok bool) {
	e.parent = id
	e.hasParent = ok
}

func (e *Entity) addChild(id uint32) {
	for _, c := range e.children {
		if c == id {
			return
		}
	}
	e.children = append(e.children, id)
}

func (e *Entity) removeChild(id uint32) {
	out := e.children[:0]
	for _, c := range e.children {
		if c != id {
			out = append(out, c)
		}
	}
	e.children = out
}

// Clone copies the entity and deep copies its components.
func (e *Entity) Clone() *Entity {
	c := &Entity{
		id:         e.id,
		guid:       e.guid,
		components: make(map[ComponentType]Component, len(e.components)),
		order:      append([]ComponentType(nil), e.order...),
		parent:     e.parent,
		hasParent:  e.hasParent,
		children:   e.Children(),
	}
	for t, comp := range e.components {
		c.components[t] = comp.Clone()
	}
	return c
}
