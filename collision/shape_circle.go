package collision

import (
	"math"

	"github.com/ByteArena/box2d-collision/math2d"
	"github.com/ByteArena/box2d-collision/settings"
)

// CircleShape is a solid circle.
type CircleShape struct {
	Radius float64
	P      math2d.Vec2 // center in the shape frame
}

// NewCircle returns a circle of radius r centered on p.
func NewCircle(p math2d.Vec2, r float64) *CircleShape {
	return &CircleShape{Radius: r, P: p}
}

func (c *CircleShape) sealed() {}

func (c *CircleShape) GetType() ShapeType { return ShapeCircle }

func (c *CircleShape) GetRadius() float64 { return c.Radius }

func (c *CircleShape) GetChildCount() int { return 1 }

func (c *CircleShape) Clone() Shape {
	clone := *c
	return &clone
}

func (c *CircleShape) TestPoint(xf math2d.Transform, p math2d.Vec2) bool {
	center := xf.Apply(c.P)
	d := p.Sub(center)
	return d.Dot(d) <= c.Radius*c.Radius
}

// RayCast follows Collision Detection in Interactive 3D Environments by
// Gino van den Bergen, section 3.1.2:
//
//	x = s + a * r
//	norm(x) = radius
func (c *CircleShape) RayCast(input RayCastInput, xf math2d.Transform, childIndex int) (RayCastOutput, bool) {
	position := xf.Apply(c.P)
	s := input.P1.Sub(position)
	b := s.Dot(s) - c.Radius*c.Radius

	// Solve quadratic equation.
	r := input.P2.Sub(input.P1)
	cc := s.Dot(r)
	rr := r.Dot(r)
	sigma := cc*cc - rr*b

	// Check for negative discriminant and short segment.
	if sigma < 0.0 || rr < settings.Epsilon {
		return RayCastOutput{}, false
	}

	// Find the point of intersection of the line with the circle.
	a := -(cc + math.Sqrt(sigma))

	// Is the intersection point on the segment?
	if 0.0 <= a && a <= input.MaxFraction*rr {
		a /= rr
		return RayCastOutput{
			Fraction: a,
			Normal:   math2d.Unit(s.Add(r.Mul(a))),
		}, true
	}

	return RayCastOutput{}, false
}

func (c *CircleShape) ComputeAABB(xf math2d.Transform, childIndex int) AABB {
	p := xf.Apply(c.P)
	return AABB{
		LowerBound: math2d.V(p[0]-c.Radius, p[1]-c.Radius),
		UpperBound: math2d.V(p[0]+c.Radius, p[1]+c.Radius),
	}
}

func (c *CircleShape) ComputeMass(density float64) MassData {
	mass := density * settings.Pi * c.Radius * c.Radius
	return MassData{
		Mass:   mass,
		Center: c.P,
		// inertia about the local origin
		I: mass * (0.5*c.Radius*c.Radius + c.P.Dot(c.P)),
	}
}
