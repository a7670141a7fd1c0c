package scene

import (
	"reflect"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/avenir/engine/core"
)

func newTestScene(t *testing.T, n int) (*Scene, []*Entity) {
	t.Helper()
	s := NewScene()
	ents := make([]*Entity, n)
	for i := range ents {
		ents[i] = s.CreateEntity()
		if err := ents[i].AddComponent(NewTransform()); err != nil {
			t.Fatal(err)
		}
	}
	return s, ents
}

func TestCreateEntityIDsAreSequentialPerScene(t *testing.T) {
	a := NewScene()
	for want := uint32(0); want < 3; want++ {
		if got := a.CreateEntity().ID(); got != want {
			t.Fatalf("id = %d, want %d", got, want)
		}
	}
	// a new scene starts over
	b := NewScene()
	if got := b.CreateEntity().ID(); got != 0 {
		t.Fatalf("fresh scene id = %d, want 0", got)
	}
	if !reflect.DeepEqual(a.EntityIDs(), []uint32{0, 1, 2}) {
		t.Fatalf("ids = %v", a.EntityIDs())
	}
}

func TestSetEntityParentSelfFails(t *testing.T) {
	s, e := newTestScene(t, 1)
	err := s.SetEntityParent(e[0].ID(), e[0].ID())
	if !errors.Is(err, core.ErrSelfParent) {
		t.Fatalf("expected ErrSelfParent, got %v", err)
	}
	if _, ok := e[0].Parent(); ok {
		t.Fatal("entity must stay a root")
	}
}

func TestReparentMovesChildExactlyOnce(t *testing.T) {
	s, e := newTestScene(t, 3)
	a, b, c := e[0], e[1], e[2]

	if err := s.SetEntityParent(a.ID(), b.ID()); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(b.Children(), []uint32{a.ID()}) {
		t.Fatalf("b children = %v", b.Children())
	}

	for i := 0; i < 3; i++ {
		if err := s.SetEntityParent(a.ID(), c.ID()); err != nil {
			t.Fatal(err)
		}
	}
	if len(b.Children()) != 0 {
		t.Fatalf("b should have no children, got %v", b.Children())
	}
	if !reflect.DeepEqual(c.Children(), []uint32{a.ID()}) {
		t.Fatalf("c children = %v", c.Children())
	}
	if p, ok := a.Parent(); !ok || p != c.ID() {
		t.Fatalf("a parent = %d, %v", p, ok)
	}
}

func TestDetachEntityFromParent(t *testing.T) {
	s, e := newTestScene(t, 2)
	if err := s.SetEntityParent(e[1].ID(), e[0].ID()); err != nil {
		t.Fatal(err)
	}
	if err := s.DetachEntityFromParent(e[1].ID()); err != nil {
		t.Fatal(err)
	}
	if _, ok := e[1].Parent(); ok {
		t.Fatal("detached entity still has a parent")
	}
	if len(e[0].Children()) != 0 {
		t.Fatalf("old parent children = %v", e[0].Children())
	}
}

func TestSetEntityParentErrors(t *testing.T) {
	s, e := newTestScene(t, 3)
	if err := s.SetEntityParent(e[0].ID(), 42); !errors.Is(err, core.ErrEntityNotFound) {
		t.Fatalf("unknown parent: %v", err)
	}
	if err := s.SetEntityParent(42, e[0].ID()); !errors.Is(err, core.ErrEntityNotFound) {
		t.Fatalf("unknown child: %v", err)
	}

	// 0 <- 1 <- 2, then 0 under 2 would loop
	if err := s.SetEntityParent(e[1].ID(), e[0].ID()); err != nil {
		t.Fatal(err)
	}
	if err := s.SetEntityParent(e[2].ID(), e[1].ID()); err != nil {
		t.Fatal(err)
	}
	if err := s.SetEntityParent(e[0].ID(), e[2].ID()); !errors.Is(err, core.ErrParentCycle) {
		t.Fatalf("expected ErrParentCycle, got %v", err)
	}
}

func TestEntityWorldMatrixComposesParent(t *testing.T) {
	s := NewScene()
	root := s.CreateEntity()
	child := s.CreateEntity()
	if err := root.AddComponent(NewTransformFromPosition(mgl32.Vec3{1, 0, 0})); err != nil {
		t.Fatal(err)
	}
	if err := child.AddComponent(NewTransformFromPosition(mgl32.Vec3{0, 1, 0})); err != nil {
		t.Fatal(err)
	}
	if err := s.SetEntityParent(child.ID(), root.ID()); err != nil {
		t.Fatal(err)
	}

	w, err := s.EntityWorldMatrix(child.ID())
	if err != nil {
		t.Fatal(err)
	}
	if pos := w.Col(3).Vec3(); !pos.ApproxEqual(mgl32.Vec3{1, 1, 0}) {
		t.Fatalf("child world position = %v, want (1, 1, 0)", pos)
	}

	rw, _ := s.EntityWorldMatrix(root.ID())
	if pos := rw.Col(3).Vec3(); !pos.ApproxEqual(mgl32.Vec3{1, 0, 0}) {
		t.Fatalf("root world position = %v", pos)
	}

	inv, err := s.EntityInverseWorldMatrix(child.ID())
	if err != nil {
		t.Fatal(err)
	}
	if !inv.Mul4(w).ApproxEqualThreshold(mgl32.Ident4(), 1e-5) {
		t.Fatalf("inverse * world != identity: %v", inv.Mul4(w))
	}
}

func TestEntityWorldMatrixWithParentRotation(t *testing.T) {
	s := NewScene()
	root := s.CreateEntity()
	child := s.CreateEntity()
	rot := mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 0, 1})
	_ = root.AddComponent(NewTransformFromPositionRotationScale(mgl32.Vec3{}, rot, mgl32.Vec3{2, 2, 2}))
	_ = child.AddComponent(NewTransformFromPosition(mgl32.Vec3{1, 0, 0}))
	_ = s.SetEntityParent(child.ID(), root.ID())

	w, err := s.EntityWorldMatrix(child.ID())
	if err != nil {
		t.Fatal(err)
	}
	if pos := w.Col(3).Vec3(); !pos.ApproxEqualThreshold(mgl32.Vec3{0, 2, 0}, 1e-5) {
		t.Fatalf("child world position = %v, want (0, 2, 0)", pos)
	}
}

func TestEntityWorldMatrixRequiresTransform(t *testing.T) {
	s := NewScene()
	e := s.CreateEntity()
	if _, err := s.EntityWorldMatrix(e.ID()); !errors.Is(err, core.ErrComponentMissing) {
		t.Fatalf("expected ErrComponentMissing, got %v", err)
	}
	if _, err := s.EntityWorldMatrix(99); !errors.Is(err, core.ErrEntityNotFound) {
		t.Fatalf("expected ErrEntityNotFound, got %v", err)
	}
}
