package contact_test

import (
	"testing"

	"github.com/ByteArena/box2d-collision/broadphase"
	"github.com/ByteArena/box2d-collision/collision"
	"github.com/ByteArena/box2d-collision/contact"
	"github.com/ByteArena/box2d-collision/math2d"
)

func colliderNames(c *contact.Contact) string {
	a, b := c.Colliders()
	na, nb := a.UserData.(string), b.UserData.(string)
	if nb < na {
		na, nb = nb, na
	}
	return na + "-" + nb
}

func TestManagerLifecycle(t *testing.T) {
	rec := &recorder{name: colliderNames}
	mgr := contact.NewManager(broadphase.New(), rec)

	add := func(name string, shape collision.Shape, x, y float64) *contact.Collider {
		c := mgr.AddCollider(shape, at(x, y), false)
		c.UserData = name
		return c
	}
	step := func(name string) {
		rec.step(name)
		mgr.FindNewContacts()
		mgr.Collide()
	}

	a := add("A", collision.NewBox(0.5, 0.5), 0, 0)
	add("B", collision.NewBox(0.5, 0.5), 0.9, 0)
	c := add("C", collision.NewCircle(math2d.Zero, 0.5), 5, 0)

	step("step 1")
	if mgr.ContactCount() != 1 {
		t.Fatalf("ContactCount() = %d after step 1", mgr.ContactCount())
	}

	mgr.MoveCollider(c, at(1.8, 0))
	step("step 2")

	mgr.MoveCollider(a, at(-10, 0))
	step("step 3")
	if mgr.ContactCount() != 1 {
		t.Fatalf("ContactCount() = %d after step 3", mgr.ContactCount())
	}

	rec.step("remove C")
	mgr.RemoveCollider(c)
	step("step 4")

	checkTrace(t, `step 1:
  begin A-B
  presolve A-B points 0->2
step 2:
  presolve A-B points 2->2
  begin B-C
  presolve B-C points 0->1
step 3:
  end A-B
  presolve B-C points 1->1
remove C:
  end B-C
step 4:
`, rec.sb.String())

	if mgr.ContactCount() != 0 || len(mgr.Contacts()) != 0 {
		t.Errorf("ContactCount() = %d after removing C", mgr.ContactCount())
	}
	if mgr.BroadPhase().ProxyCount() != 2 {
		t.Errorf("ProxyCount() = %d, want 2", mgr.BroadPhase().ProxyCount())
	}
	if c.ProxyID(0) != broadphase.NullProxy {
		t.Errorf("removed collider kept proxy %d", c.ProxyID(0))
	}
}

func TestManagerChainAndSensor(t *testing.T) {
	mgr := contact.NewManager(broadphase.New(), nil)

	ground, err := collision.NewChain([]math2d.Vec2{math2d.V(-4, 0), math2d.V(-2, 0), math2d.V(0, 0), math2d.V(2, 0)})
	if err != nil {
		t.Fatal(err)
	}
	g := mgr.AddCollider(ground, math2d.Identity, false)
	box := mgr.AddCollider(collision.NewBox(0.5, 0.5), at(-1, 0.45), false)
	sensor := mgr.AddCollider(collision.NewCircle(math2d.Zero, 2), at(-1, 2.5), true)

	// Chain children never pair with each other.
	mgr.FindNewContacts()
	mgr.Collide()

	var boxChildren []int
	var sensorTouching bool
	for _, c := range mgr.Contacts() {
		a, b := c.Colliders()
		if a == g && b == g {
			t.Fatal("contact between children of the same chain")
		}
		switch {
		case a == g && b == box:
			if c.IsTouching() {
				boxChildren = append(boxChildren, c.ChildIndexA())
			}
		case a == box && b == sensor, a == sensor && b == box:
			if !c.IsSensor() || c.Manifold().PointCount != 0 {
				t.Errorf("sensor contact: sensor=%v points=%d", c.IsSensor(), c.Manifold().PointCount)
			}
			sensorTouching = c.IsTouching()
		}
	}

	if len(boxChildren) != 1 || boxChildren[0] != 1 {
		t.Errorf("box touches chain children %v, want [1]", boxChildren)
	}
	if !sensorTouching {
		t.Error("sensor does not report the box")
	}
	if g.ProxyID(2) == broadphase.NullProxy || g.Shape() != collision.Shape(ground) || !sensor.IsSensor() {
		t.Error("collider accessors")
	}
}
