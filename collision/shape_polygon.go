package collision

import (
	"fmt"

	"github.com/ByteArena/box2d-collision/math2d"
	"github.com/ByteArena/box2d-collision/settings"
)

// PolygonShape is a convex polygon. The interior is to the left of each
// edge. A polygon holds at most settings.MaxPolygonVertices vertices.
type PolygonShape struct {
	Radius   float64
	Centroid math2d.Vec2
	Vertices [settings.MaxPolygonVertices]math2d.Vec2
	Normals  [settings.MaxPolygonVertices]math2d.Vec2
	Count    int
}

// NewPolygon computes the convex hull of vs. See Set.
func NewPolygon(vs []math2d.Vec2) (*PolygonShape, error) {
	p := &PolygonShape{Radius: settings.PolygonRadius}
	if err := p.Set(vs); err != nil {
		return nil, err
	}
	return p, nil
}

// NewBox returns an axis-aligned box with half-widths hx and hy.
func NewBox(hx, hy float64) *PolygonShape {
	p := &PolygonShape{Radius: settings.PolygonRadius}
	p.SetAsBox(hx, hy)
	return p
}

// NewOrientedBox returns a box with half-widths hx and hy, centered on
// center and rotated by angle.
func NewOrientedBox(hx, hy float64, center math2d.Vec2, angle float64) *PolygonShape {
	p := &PolygonShape{Radius: settings.PolygonRadius}
	p.SetAsOrientedBox(hx, hy, center, angle)
	return p
}

func (p *PolygonShape) sealed() {}

func (p *PolygonShape) GetType() ShapeType { return ShapePolygon }

func (p *PolygonShape) GetRadius() float64 { return p.Radius }

func (p *PolygonShape) GetChildCount() int { return 1 }

func (p *PolygonShape) Clone() Shape {
	clone := *p
	return &clone
}

// Vertex returns vertex i.
func (p *PolygonShape) Vertex(i int) math2d.Vec2 {
	settings.Assert(0 <= i && i < p.Count, "PolygonShape.Vertex", "index out of range")
	return p.Vertices[i]
}

// SetAsBox builds an axis-aligned box centered on the origin.
func (p *PolygonShape) SetAsBox(hx, hy float64) {
	p.Count = 4
	p.Vertices[0] = math2d.V(-hx, -hy)
	p.Vertices[1] = math2d.V(hx, -hy)
	p.Vertices[2] = math2d.V(hx, hy)
	p.Vertices[3] = math2d.V(-hx, hy)
	p.Normals[0] = math2d.V(0.0, -1.0)
	p.Normals[1] = math2d.V(1.0, 0.0)
	p.Normals[2] = math2d.V(0.0, 1.0)
	p.Normals[3] = math2d.V(-1.0, 0.0)
	p.Centroid = math2d.Zero
}

// SetAsOrientedBox builds a box centered on center and rotated by angle.
func (p *PolygonShape) SetAsOrientedBox(hx, hy float64, center math2d.Vec2, angle float64) {
	p.SetAsBox(hx, hy)
	p.Centroid = center

	xf := math2d.NewTransform(center, angle)

	// Transform vertices and normals.
	for i := 0; i < p.Count; i++ {
		p.Vertices[i] = xf.Apply(p.Vertices[i])
		p.Normals[i] = xf.Q.Apply(p.Normals[i])
	}
}

// Set creates a convex hull from the given points. Points closer than half
// the linear slop are welded. If the hull collapses to fewer than 3 points
// the polygon falls back to a 1x1 half-extent box.
func (p *PolygonShape) Set(vs []math2d.Vec2) error {
	if len(vs) < 3 || len(vs) > settings.MaxPolygonVertices {
		return fmt.Errorf("polygon with %d vertices: %w", len(vs), ErrPolygonVertexCount)
	}

	// Perform welding and copy vertices into a local buffer.
	var ps [settings.MaxPolygonVertices]math2d.Vec2
	n := 0
	weld := (0.5 * settings.LinearSlop) * (0.5 * settings.LinearSlop)

	for _, v := range vs {
		unique := true
		for j := 0; j < n; j++ {
			if math2d.DistanceSquared(v, ps[j]) < weld {
				unique = false
				break
			}
		}

		if unique {
			ps[n] = v
			n++
		}
	}

	if n < 3 {
		// Polygon is degenerate.
		p.SetAsBox(1.0, 1.0)
		return nil
	}

	// Create the convex hull using the gift wrapping algorithm.

	// Find the right most point on the hull.
	i0 := 0
	x0 := ps[0][0]
	for i := 1; i < n; i++ {
		x := ps[i][0]
		if x > x0 || (x == x0 && ps[i][1] < ps[i0][1]) {
			i0 = i
			x0 = x
		}
	}

	var hull [settings.MaxPolygonVertices]int
	m := 0
	ih := i0

	for {
		hull[m] = ih

		ie := 0
		for j := 1; j < n; j++ {
			if ie == ih {
				ie = j
				continue
			}

			r := ps[ie].Sub(ps[hull[m]])
			v := ps[j].Sub(ps[hull[m]])
			c := math2d.Cross(r, v)
			if c < 0.0 {
				ie = j
			}

			// Collinearity check
			if c == 0.0 && v.LenSqr() > r.LenSqr() {
				ie = j
			}
		}

		m++
		ih = ie

		if ie == i0 || m == settings.MaxPolygonVertices {
			break
		}
	}

	if m < 3 {
		// Polygon is degenerate.
		p.SetAsBox(1.0, 1.0)
		return nil
	}

	p.Count = m

	for i := 0; i < m; i++ {
		p.Vertices[i] = ps[hull[i]]
	}

	// Compute normals. Hull edges have non-zero length after welding.
	for i := 0; i < m; i++ {
		i2 := 0
		if i+1 < m {
			i2 = i + 1
		}

		edge := p.Vertices[i2].Sub(p.Vertices[i])
		p.Normals[i] = math2d.Unit(math2d.CrossVS(edge, 1.0))
	}

	p.Centroid = computeCentroid(p.Vertices[:m])
	return nil
}

func computeCentroid(vs []math2d.Vec2) math2d.Vec2 {
	var c math2d.Vec2
	area := 0.0

	// pRef is the reference point for forming triangles. Its location
	// doesn't change the result (except for rounding error).
	var pRef math2d.Vec2
	for _, v := range vs {
		pRef = pRef.Add(v)
	}
	pRef = pRef.Mul(1.0 / float64(len(vs)))

	const inv3 = 1.0 / 3.0

	for i := range vs {
		// Triangle vertices.
		p1 := pRef
		p2 := vs[i]
		p3 := vs[0]
		if i+1 < len(vs) {
			p3 = vs[i+1]
		}

		e1 := p2.Sub(p1)
		e2 := p3.Sub(p1)

		triangleArea := 0.5 * math2d.Cross(e1, e2)
		area += triangleArea

		// Area weighted centroid
		c = c.Add(p1.Add(p2).Add(p3).Mul(triangleArea * inv3))
	}

	if area <= settings.Epsilon {
		return pRef
	}
	return c.Mul(1.0 / area)
}

func (p *PolygonShape) TestPoint(xf math2d.Transform, point math2d.Vec2) bool {
	pLocal := xf.ApplyT(point)

	for i := 0; i < p.Count; i++ {
		if p.Normals[i].Dot(pLocal.Sub(p.Vertices[i])) > 0.0 {
			return false
		}
	}

	return true
}

func (p *PolygonShape) RayCast(input RayCastInput, xf math2d.Transform, childIndex int) (RayCastOutput, bool) {
	// Put the ray into the polygon's frame of reference.
	p1 := xf.ApplyT(input.P1)
	p2 := xf.ApplyT(input.P2)
	d := p2.Sub(p1)

	lower := 0.0
	upper := input.MaxFraction

	index := -1

	for i := 0; i < p.Count; i++ {
		// p = p1 + a * d
		// dot(normal, p - v) = 0
		// dot(normal, p1 - v) + a * dot(normal, d) = 0
		numerator := p.Normals[i].Dot(p.Vertices[i].Sub(p1))
		denominator := p.Normals[i].Dot(d)

		if denominator == 0.0 {
			if numerator < 0.0 {
				return RayCastOutput{}, false
			}
		} else {
			// lower < numerator / denominator, where denominator < 0,
			// flips to denominator * lower > numerator.
			if denominator < 0.0 && numerator < lower*denominator {
				// The segment enters this half-space.
				lower = numerator / denominator
				index = i
			} else if denominator > 0.0 && numerator < upper*denominator {
				// The segment exits this half-space.
				upper = numerator / denominator
			}
		}

		if upper < lower {
			return RayCastOutput{}, false
		}
	}

	if index >= 0 {
		return RayCastOutput{
			Fraction: lower,
			Normal:   xf.Q.Apply(p.Normals[index]),
		}, true
	}

	return RayCastOutput{}, false
}

func (p *PolygonShape) ComputeAABB(xf math2d.Transform, childIndex int) AABB {
	lower := xf.Apply(p.Vertices[0])
	upper := lower

	for i := 1; i < p.Count; i++ {
		v := xf.Apply(p.Vertices[i])
		lower = math2d.Min(lower, v)
		upper = math2d.Max(upper, v)
	}

	return AABB{LowerBound: lower, UpperBound: upper}.Extend(p.Radius)
}

// ComputeMass integrates over the triangles fanned from the vertex average.
// For a triangle with edges e1, e2 from the reference point s:
//
//	mass = rho * int(dA)
//	centroid = (1/mass) * rho * int(x * dA)
//	I = rho * int((x*x + y*y) * dA)
//
// using the Jacobian D = cross(e1, e2).
func (p *PolygonShape) ComputeMass(density float64) MassData {
	settings.Assert(p.Count >= 3, "PolygonShape.ComputeMass", "polygon has fewer than 3 vertices")

	var center math2d.Vec2
	area := 0.0
	I := 0.0

	var s math2d.Vec2
	for i := 0; i < p.Count; i++ {
		s = s.Add(p.Vertices[i])
	}
	s = s.Mul(1.0 / float64(p.Count))

	const inv3 = 1.0 / 3.0

	for i := 0; i < p.Count; i++ {
		// Triangle vertices.
		e1 := p.Vertices[i].Sub(s)
		e2 := p.Vertices[0].Sub(s)
		if i+1 < p.Count {
			e2 = p.Vertices[i+1].Sub(s)
		}

		D := math2d.Cross(e1, e2)

		triangleArea := 0.5 * D
		area += triangleArea

		// Area weighted centroid
		center = center.Add(e1.Add(e2).Mul(triangleArea * inv3))

		ex1, ey1 := e1[0], e1[1]
		ex2, ey2 := e2[0], e2[1]

		intx2 := ex1*ex1 + ex2*ex1 + ex2*ex2
		inty2 := ey1*ey1 + ey2*ey1 + ey2*ey2

		I += (0.25 * inv3 * D) * (intx2 + inty2)
	}

	settings.Assert(area > settings.Epsilon, "PolygonShape.ComputeMass", "polygon has no area")

	var md MassData
	md.Mass = density * area
	center = center.Mul(1.0 / area)
	md.Center = center.Add(s)

	// Inertia relative to s, shifted to the center of mass and then to the
	// shape origin.
	md.I = density*I + md.Mass*(md.Center.Dot(md.Center)-center.Dot(center))
	return md
}

// Validate reports whether the polygon is convex with counter-clockwise
// winding.
func (p *PolygonShape) Validate() bool {
	for i := 0; i < p.Count; i++ {
		i1 := i
		i2 := 0
		if i < p.Count-1 {
			i2 = i1 + 1
		}

		pt := p.Vertices[i1]
		e := p.Vertices[i2].Sub(pt)

		for j := 0; j < p.Count; j++ {
			if j == i1 || j == i2 {
				continue
			}

			if math2d.Cross(e, p.Vertices[j].Sub(pt)) < 0.0 {
				return false
			}
		}
	}

	return true
}
