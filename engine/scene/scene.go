package scene

import (
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/spaghettifunk/avenir/engine/core"
)

// Scene owns its entities and hands out ids from nextID.
type Scene struct {
	guid     uuid.UUID
	nextID   uint32
	entities map[uint32]*Entity
}

func NewScene() *Scene {
	return &Scene{
		guid:     uuid.New(),
		entities: make(map[uint32]*Entity),
	}
}

func (s *Scene) GUID() uuid.UUID {
	return s.guid
}

func (s *Scene) CreateEntity() *Entity {
	e := newEntity(s.nextID)
	s.entities[e.id] = e
	s.nextID++
	return e
}

func (s *Scene) FindEntityByID(id uint32) (*Entity, bool) {
	e, ok := s.entities[id]
	return e, ok
}

func (s *Scene) mustFind(id uint32) (*Entity, error) {
	e, ok := s.entities[id]
	if !ok {
		return nil, errors.Wrapf(core.ErrEntityNotFound, "id %d", id)
	}
	return e, nil
}

// SetEntityParent moves child under parent, removing it from its previous parent first.
func (s *Scene) SetEntityParent(child, parent uint32) error {
	if child == parent {
		return errors.Wrapf(core.ErrSelfParent, "id %d", child)
	}
	if _, err := s.mustFind(parent); err != nil {
		return err
	}
	// walking up from parent must never reach child
	for cur := parent; ; {
		up, ok := s.entities[cur].Parent()
		if !ok {
			break
		}
		if up == child {
			return errors.Wrapf(core.ErrParentCycle, "%d under %d", child, parent)
		}
		cur = up
	}
	return s.setEntityParent(child, parent, true)
}

// DetachEntityFromParent makes child a root entity.
func (s *Scene) DetachEntityFromParent(child uint32) error {
	return s.setEntityParent(child, 0, false)
}

func (s *Scene) setEntityParent(child, parent uint32, hasParent bool) error {
	e, err := s.mustFind(child)
	if err != nil {
		return err
	}

	if prev, ok := e.Parent(); ok {
		if p, found := s.entities[prev]; found {
			p.removeChild(child)
		}
	}

	e.setParent(parent, hasParent)

	if hasParent {
		s.entities[parent].addChild(child)
	}
	return nil
}

// EntityWorldMatrix returns parentWorld * local, recursively up to the root.
func (s *Scene) EntityWorldMatrix(id uint32) (mgl32.Mat4, error) {
	e, err := s.mustFind(id)
	if err != nil {
		return mgl32.Ident4(), err
	}
	t, err := e.Transform()
	if err != nil {
		return mgl32.Ident4(), err
	}

	local := t.WorldMatrix()
	parent, ok := e.Parent()
	if !ok {
		return local, nil
	}
	pw, err := s.EntityWorldMatrix(parent)
	if err != nil {
		return mgl32.Ident4(), err
	}
	return pw.Mul4(local), nil
}

func (s *Scene) EntityInverseWorldMatrix(id uint32) (mgl32.Mat4, error) {
	m, err := s.EntityWorldMatrix(id)
	if err != nil {
		return m, err
	}
	return m.Inv(), nil
}

// EntityIDs returns the ids of every entity in ascending order.
func (s *Scene) EntityIDs() []uint32 {
	ids := make([]uint32, 0, len(s.entities))
	for id := range s.entities {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *Scene) LogEntities() {
	for _, id := range s.EntityIDs() {
		e := s.entities[id]
		core.LogInfo("[Scene %s] Entity ID: %d (%s) components=%v", s.guid, id, e.guid, e.ComponentNames())
	}
}
