package collision

import (
	"github.com/ByteArena/box2d-collision/math2d"
	"github.com/ByteArena/box2d-collision/settings"
)

// EdgeShape is a line segment. Edges can be connected in chains or loops to
// other edges; the optional adjacent vertices Vertex0 and Vertex3 are used
// to produce smooth contact normals across the connection.
type EdgeShape struct {
	Radius float64

	// Vertex1 and Vertex2 are the segment end points.
	Vertex1, Vertex2 math2d.Vec2

	// Optional adjacent vertices.
	Vertex0, Vertex3       math2d.Vec2
	HasVertex0, HasVertex3 bool
}

// NewEdge returns an isolated edge from v1 to v2.
func NewEdge(v1, v2 math2d.Vec2) *EdgeShape {
	e := &EdgeShape{Radius: settings.PolygonRadius}
	e.Set(v1, v2)
	return e
}

// Set replaces the segment and clears adjacency.
func (e *EdgeShape) Set(v1, v2 math2d.Vec2) {
	e.Vertex1 = v1
	e.Vertex2 = v2
	e.HasVertex0 = false
	e.HasVertex3 = false
}

// SetAdjacent sets the previous neighbor v0 and the next neighbor v3.
func (e *EdgeShape) SetAdjacent(v0, v3 math2d.Vec2) {
	e.Vertex0 = v0
	e.Vertex3 = v3
	e.HasVertex0 = true
	e.HasVertex3 = true
}

func (e *EdgeShape) sealed() {}

func (e *EdgeShape) GetType() ShapeType { return ShapeEdge }

func (e *EdgeShape) GetRadius() float64 { return e.Radius }

func (e *EdgeShape) GetChildCount() int { return 1 }

func (e *EdgeShape) Clone() Shape {
	clone := *e
	return &clone
}

// TestPoint always reports false; an edge has no area.
func (e *EdgeShape) TestPoint(xf math2d.Transform, p math2d.Vec2) bool {
	return false
}

// RayCast solves
//
//	p = p1 + t * d
//	v = v1 + s * e
//	p1 + t * d = v1 + s * e
//	s * e - t * d = p1 - v1
func (e *EdgeShape) RayCast(input RayCastInput, xf math2d.Transform, childIndex int) (RayCastOutput, bool) {
	return raycastSegment(input, xf, e.Vertex1, e.Vertex2)
}

func raycastSegment(input RayCastInput, xf math2d.Transform, v1, v2 math2d.Vec2) (RayCastOutput, bool) {
	// Put the ray into the edge's frame of reference.
	p1 := xf.ApplyT(input.P1)
	p2 := xf.ApplyT(input.P2)
	d := p2.Sub(p1)

	e := v2.Sub(v1)
	normal := math2d.Unit(math2d.V(e[1], -e[0]))

	// q = p1 + t * d
	// dot(normal, q - v1) = 0
	// dot(normal, p1 - v1) + t * dot(normal, d) = 0
	numerator := normal.Dot(v1.Sub(p1))
	denominator := normal.Dot(d)

	if denominator == 0.0 {
		return RayCastOutput{}, false
	}

	t := numerator / denominator
	if t < 0.0 || input.MaxFraction < t {
		return RayCastOutput{}, false
	}

	q := p1.Add(d.Mul(t))

	// q = v1 + s * r
	// s = dot(q - v1, r) / dot(r, r)
	r := v2.Sub(v1)
	rr := r.Dot(r)
	if rr == 0.0 {
		return RayCastOutput{}, false
	}

	s := q.Sub(v1).Dot(r) / rr
	if s < 0.0 || 1.0 < s {
		return RayCastOutput{}, false
	}

	out := RayCastOutput{Fraction: t, Normal: xf.Q.Apply(normal)}
	if numerator > 0.0 {
		out.Normal = math2d.Neg(out.Normal)
	}
	return out, true
}

func (e *EdgeShape) ComputeAABB(xf math2d.Transform, childIndex int) AABB {
	v1 := xf.Apply(e.Vertex1)
	v2 := xf.Apply(e.Vertex2)
	return NewAABB(v1, v2).Extend(e.Radius)
}

// ComputeMass returns zero mass centered on the segment midpoint.
func (e *EdgeShape) ComputeMass(density float64) MassData {
	return MassData{Center: math2d.Mid(e.Vertex1, e.Vertex2)}
}
