package contact

import (
	"errors"
	"fmt"
	"time"

	"github.com/ByteArena/box2d-collision/collision"
	"github.com/ByteArena/box2d-collision/math2d"
)

var (
	// ErrUnsupportedPair is returned by New for shape pairs without a
	// manifold generator, such as two edges.
	ErrUnsupportedPair = errors.New("contact: unsupported shape pair")

	// ErrChildIndex is returned by New for a child index outside the shape.
	ErrChildIndex = errors.New("contact: child index out of range")
)

// Listener receives touching transitions from Update. Any method may be
// left as a no-op.
type Listener interface {
	// BeginContact is called when two shapes begin to touch.
	BeginContact(c *Contact)

	// EndContact is called when two shapes cease to touch.
	EndContact(c *Contact)

	// PreSolve is called after a touching, non-sensor contact is updated,
	// with the manifold from before the update.
	PreSolve(c *Contact, oldManifold collision.Manifold)
}

// Contact manages the manifold of one child of one shape against one child
// of another. A contact may exist with no points when the fat boxes of the
// shapes overlap but the shapes do not.
type Contact struct {
	shapeA, shapeB collision.Shape
	indexA, indexB int
	reversed       bool

	evaluate evaluateFunc

	manifold    collision.Manifold
	oldManifold collision.Manifold

	touching bool
	enabled  bool
	sensor   bool

	toiCount int
	toi      float64

	// Set when the contact is owned by a Manager.
	proxyA, proxyB *childProxy
}

// New creates the contact for child indexA of shapeA and child indexB of
// shapeB. Pairs registered in the opposite order are swapped, so ShapeA
// may be the second argument; Reversed reports when that happened.
func New(shapeA collision.Shape, indexA int, shapeB collision.Shape, indexB int) (*Contact, error) {
	typeA, typeB := shapeA.GetType(), shapeB.GetType()
	if !Supported(typeA, typeB) {
		return nil, fmt.Errorf("%v/%v: %w", typeA, typeB, ErrUnsupportedPair)
	}
	if indexA < 0 || indexA >= shapeA.GetChildCount() {
		return nil, fmt.Errorf("%v child %d of %d: %w", typeA, indexA, shapeA.GetChildCount(), ErrChildIndex)
	}
	if indexB < 0 || indexB >= shapeB.GetChildCount() {
		return nil, fmt.Errorf("%v child %d of %d: %w", typeB, indexB, shapeB.GetChildCount(), ErrChildIndex)
	}

	reg := registers[typeA][typeB]
	c := &Contact{evaluate: reg.evaluate, enabled: true}
	if reg.primary {
		c.shapeA, c.indexA = shapeA, indexA
		c.shapeB, c.indexB = shapeB, indexB
	} else {
		c.shapeA, c.indexA = shapeB, indexB
		c.shapeB, c.indexB = shapeA, indexA
		c.reversed = true
	}
	return c, nil
}

func (c *Contact) ShapeA() collision.Shape { return c.shapeA }

func (c *Contact) ShapeB() collision.Shape { return c.shapeB }

func (c *Contact) ChildIndexA() int { return c.indexA }

func (c *Contact) ChildIndexB() int { return c.indexB }

// Colliders returns the colliders owning ShapeA and ShapeB, or nils for a
// contact made with New.
func (c *Contact) Colliders() (a, b *Collider) {
	if c.proxyA == nil {
		return nil, nil
	}
	return c.proxyA.collider, c.proxyB.collider
}

// Reversed reports whether New swapped its arguments.
func (c *Contact) Reversed() bool { return c.reversed }

// Manifold returns the current manifold. The pointer stays valid for the
// life of the contact.
func (c *Contact) Manifold() *collision.Manifold { return &c.manifold }

// IsTouching reports whether the last Update found contact points, or an
// overlap for sensors.
func (c *Contact) IsTouching() bool { return c.touching }

// SetEnabled disables the contact for the current step. Update re-enables
// it.
func (c *Contact) SetEnabled(flag bool) { c.enabled = flag }

func (c *Contact) IsEnabled() bool { return c.enabled }

// SetSensor makes the contact report overlap only. Sensor contacts never
// carry manifold points.
func (c *Contact) SetSensor(flag bool) { c.sensor = flag }

func (c *Contact) IsSensor() bool { return c.sensor }

// TOI returns the last time of impact fraction and how many times
// TimeOfImpact ran.
func (c *Contact) TOI() (t float64, count int) { return c.toi, c.toiCount }

// Update recomputes the manifold for the given transforms of ShapeA and
// ShapeB, carries impulses over to points whose ContactID survived, and
// reports touching transitions to listener, which may be nil. Fat boxes
// are not assumed to overlap.
func (c *Contact) Update(xfA, xfB math2d.Transform, listener Listener) {
	c.oldManifold = c.manifold

	// Re-enable this contact.
	c.enabled = true

	wasTouching := c.touching
	touching := false

	if c.sensor {
		touching = collision.TestOverlapShapes(c.shapeA, c.indexA, c.shapeB, c.indexB, xfA, xfB)

		// Sensors don't generate manifolds.
		c.manifold.PointCount = 0
	} else {
		c.evaluate(&c.manifold, c.shapeA, c.indexA, xfA, c.shapeB, c.indexB, xfB)
		touching = c.manifold.PointCount > 0

		// Match old contact ids to new contact ids and copy the stored
		// impulses to warm start the solver.
		for i := 0; i < c.manifold.PointCount; i++ {
			mp2 := &c.manifold.Points[i]
			mp2.NormalImpulse = 0.0
			mp2.TangentImpulse = 0.0

			for j := 0; j < c.oldManifold.PointCount; j++ {
				mp1 := &c.oldManifold.Points[j]
				if mp1.ID.Key() == mp2.ID.Key() {
					mp2.NormalImpulse = mp1.NormalImpulse
					mp2.TangentImpulse = mp1.TangentImpulse
					break
				}
			}
		}
	}

	c.touching = touching

	if listener == nil {
		return
	}

	if !wasTouching && touching {
		listener.BeginContact(c)
	}

	if wasTouching && !touching {
		listener.EndContact(c)
	}

	if !c.sensor && touching {
		listener.PreSolve(c, c.oldManifold)
	}
}

// PointStates compares the manifold before and after the last Update.
// oldStates describes the previous points (persist or remove), newStates
// the current ones (add or persist).
func (c *Contact) PointStates() (oldStates, newStates [2]collision.PointState) {
	return collision.GetPointStates(&c.oldManifold, &c.manifold)
}

// WorldManifold resolves the manifold into world space.
func (c *Contact) WorldManifold(xfA, xfB math2d.Transform) collision.WorldManifold {
	return collision.NewWorldManifold(&c.manifold, xfA, c.shapeA.GetRadius(), xfB, c.shapeB.GetRadius())
}

// TimeOfImpact runs continuous collision for the two children over their
// sweeps. The result is recorded on the contact and, when profile is not
// nil, folded into profile.
func (c *Contact) TimeOfImpact(sweepA, sweepB math2d.Sweep, tMax float64, profile *collision.Profile) collision.TOIOutput {
	input := collision.TOIInput{
		ProxyA: collision.NewDistanceProxy(c.shapeA, c.indexA),
		ProxyB: collision.NewDistanceProxy(c.shapeB, c.indexB),
		SweepA: sweepA,
		SweepB: sweepB,
		TMax:   tMax,
	}

	start := time.Now()
	out := collision.TimeOfImpact(&input)
	if profile != nil {
		profile.AddTOI(out, time.Since(start))
	}

	c.toi = out.T
	c.toiCount++
	return out
}
