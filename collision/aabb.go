package collision

import (
	"math"

	"github.com/ByteArena/box2d-collision/math2d"
	"github.com/ByteArena/box2d-collision/settings"
)

// RayCastInput is a ray from P1 to P1 + MaxFraction*(P2-P1).
type RayCastInput struct {
	P1, P2      math2d.Vec2
	MaxFraction float64
}

// RayCastOutput is a ray hit at P1 + Fraction*(P2-P1), with P1 and P2 taken
// from the RayCastInput.
type RayCastOutput struct {
	Normal   math2d.Vec2
	Fraction float64
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	LowerBound math2d.Vec2
	UpperBound math2d.Vec2
}

// NewAABB builds a box from two corners given in any order.
func NewAABB(a, b math2d.Vec2) AABB {
	return AABB{LowerBound: math2d.Min(a, b), UpperBound: math2d.Max(a, b)}
}

func (bb AABB) Center() math2d.Vec2 {
	return math2d.Mid(bb.LowerBound, bb.UpperBound)
}

// Extents returns the half-widths.
func (bb AABB) Extents() math2d.Vec2 {
	return bb.UpperBound.Sub(bb.LowerBound).Mul(0.5)
}

// Perimeter is the tree cost metric.
func (bb AABB) Perimeter() float64 {
	wx := bb.UpperBound[0] - bb.LowerBound[0]
	wy := bb.UpperBound[1] - bb.LowerBound[1]
	return 2.0 * (wx + wy)
}

// Combine returns the smallest box containing bb and other.
func (bb AABB) Combine(other AABB) AABB {
	return Combine(bb, other)
}

// Combine returns the smallest box containing a and b.
func Combine(a, b AABB) AABB {
	return AABB{
		LowerBound: math2d.Min(a.LowerBound, b.LowerBound),
		UpperBound: math2d.Max(a.UpperBound, b.UpperBound),
	}
}

// Contains reports whether bb encloses other.
func (bb AABB) Contains(other AABB) bool {
	return bb.LowerBound[0] <= other.LowerBound[0] &&
		bb.LowerBound[1] <= other.LowerBound[1] &&
		other.UpperBound[0] <= bb.UpperBound[0] &&
		other.UpperBound[1] <= bb.UpperBound[1]
}

func (bb AABB) IsValid() bool {
	d := bb.UpperBound.Sub(bb.LowerBound)
	return d[0] >= 0.0 && d[1] >= 0.0 &&
		math2d.IsValidVec(bb.LowerBound) && math2d.IsValidVec(bb.UpperBound)
}

// Extend grows the box by r on every side.
func (bb AABB) Extend(r float64) AABB {
	rv := math2d.V(r, r)
	return AABB{LowerBound: bb.LowerBound.Sub(rv), UpperBound: bb.UpperBound.Add(rv)}
}

// Shift translates the box by -origin.
func (bb AABB) Shift(origin math2d.Vec2) AABB {
	return AABB{LowerBound: bb.LowerBound.Sub(origin), UpperBound: bb.UpperBound.Sub(origin)}
}

// TestOverlap reports whether two boxes overlap. Touching boxes overlap.
func TestOverlap(a, b AABB) bool {
	d1 := b.LowerBound.Sub(a.UpperBound)
	d2 := a.LowerBound.Sub(b.UpperBound)

	if d1[0] > 0.0 || d1[1] > 0.0 {
		return false
	}

	if d2[0] > 0.0 || d2[1] > 0.0 {
		return false
	}

	return true
}

// RayCast clips the ray against the box with the slab method.
// From Real-time Collision Detection, p179.
func (bb AABB) RayCast(input RayCastInput) (RayCastOutput, bool) {
	tmin := -settings.MaxFloat
	tmax := settings.MaxFloat

	p := input.P1
	d := input.P2.Sub(input.P1)
	absD := math2d.Abs(d)

	var normal math2d.Vec2

	for i := 0; i < 2; i++ {
		if absD[i] < settings.Epsilon {
			// Parallel.
			if p[i] < bb.LowerBound[i] || bb.UpperBound[i] < p[i] {
				return RayCastOutput{}, false
			}
			continue
		}

		invD := 1.0 / d[i]
		t1 := (bb.LowerBound[i] - p[i]) * invD
		t2 := (bb.UpperBound[i] - p[i]) * invD

		// Sign of the normal vector.
		s := -1.0

		if t1 > t2 {
			t1, t2 = t2, t1
			s = 1.0
		}

		// Push the min up
		if t1 > tmin {
			normal = math2d.Zero
			normal[i] = s
			tmin = t1
		}

		// Pull the max down
		tmax = math.Min(tmax, t2)

		if tmin > tmax {
			return RayCastOutput{}, false
		}
	}

	// Does the ray start inside the box?
	// Does the ray intersect beyond the max fraction?
	if tmin < 0.0 || input.MaxFraction < tmin {
		return RayCastOutput{}, false
	}

	return RayCastOutput{Normal: normal, Fraction: tmin}, true
}
