package collision

import (
	"math"

	"github.com/ByteArena/box2d-collision/math2d"
	"github.com/ByteArena/box2d-collision/settings"
)

// CollideEdgeAndCircle computes the manifold of an edge and a circle,
// taking edge connectivity into account: a circle in the Voronoi region
// of a neighboring edge is left to that edge.
func CollideEdgeAndCircle(m *Manifold, edgeA *EdgeShape, xfA math2d.Transform, circleB *CircleShape, xfB math2d.Transform) {
	m.PointCount = 0

	// Compute circle in frame of edge
	Q := xfA.ApplyT(xfB.Apply(circleB.P))

	A := edgeA.Vertex1
	B := edgeA.Vertex2
	e := B.Sub(A)

	// Barycentric coordinates
	u := e.Dot(B.Sub(Q))
	v := e.Dot(Q.Sub(A))

	radius := edgeA.Radius + circleB.Radius

	id := ContactID{IndexB: 0, TypeB: FeatureVertex}

	// Region A
	if v <= 0.0 {
		P := A
		if math2d.DistanceSquared(Q, P) > radius*radius {
			return
		}

		// Is there an edge connected to A?
		if edgeA.HasVertex0 {
			A1 := edgeA.Vertex0
			B1 := A
			e1 := B1.Sub(A1)
			u1 := e1.Dot(B1.Sub(Q))

			// Is the circle in Region AB of the previous edge?
			if u1 > 0.0 {
				return
			}
		}

		id.IndexA = 0
		id.TypeA = FeatureVertex
		m.PointCount = 1
		m.Type = ManifoldCircles
		m.LocalNormal = math2d.Zero
		m.LocalPoint = P
		m.Points[0].ID = id
		m.Points[0].LocalPoint = circleB.P
		return
	}

	// Region B
	if u <= 0.0 {
		P := B
		if math2d.DistanceSquared(Q, P) > radius*radius {
			return
		}

		// Is there an edge connected to B?
		if edgeA.HasVertex3 {
			B2 := edgeA.Vertex3
			A2 := B
			e2 := B2.Sub(A2)
			v2 := e2.Dot(Q.Sub(A2))

			// Is the circle in Region AB of the next edge?
			if v2 > 0.0 {
				return
			}
		}

		id.IndexA = 1
		id.TypeA = FeatureVertex
		m.PointCount = 1
		m.Type = ManifoldCircles
		m.LocalNormal = math2d.Zero
		m.LocalPoint = P
		m.Points[0].ID = id
		m.Points[0].LocalPoint = circleB.P
		return
	}

	// Region AB
	den := e.Dot(e)
	settings.Assert(den > 0.0, "CollideEdgeAndCircle", "degenerate edge")
	P := A.Mul(u).Add(B.Mul(v)).Mul(1.0 / den)
	if math2d.DistanceSquared(Q, P) > radius*radius {
		return
	}

	n := math2d.V(-e[1], e[0])
	if n.Dot(Q.Sub(A)) < 0.0 {
		n = math2d.Neg(n)
	}
	n = math2d.Unit(n)

	id.IndexA = 0
	id.TypeA = FeatureFace
	m.PointCount = 1
	m.Type = ManifoldFaceA
	m.LocalNormal = n
	m.LocalPoint = A
	m.Points[0].ID = id
	m.Points[0].LocalPoint = circleB.P
}

// epAxisType tracks which shape owns the best separating axis.
type epAxisType uint8

const (
	epAxisUnknown epAxisType = iota
	epAxisEdgeA
	epAxisEdgeB
)

type epAxis struct {
	typ        epAxisType
	index      int
	separation float64
}

// tempPolygon holds polygon B expressed in the frame of the edge.
type tempPolygon struct {
	vertices [settings.MaxPolygonVertices]math2d.Vec2
	normals  [settings.MaxPolygonVertices]math2d.Vec2
	count    int
}

// referenceFace is the face used for clipping.
type referenceFace struct {
	i1, i2 int

	v1, v2 math2d.Vec2

	normal math2d.Vec2

	sideNormal1 math2d.Vec2
	sideOffset1 float64

	sideNormal2 math2d.Vec2
	sideOffset2 float64
}

// epCollider collides an edge and a polygon, taking edge adjacency into
// account. It lives on the stack of CollideEdgeAndPolygon.
type epCollider struct {
	polygonB tempPolygon

	xf                        math2d.Transform
	centroidB                 math2d.Vec2
	v0, v1, v2, v3            math2d.Vec2
	normal0, normal1, normal2 math2d.Vec2
	normal                    math2d.Vec2
	lowerLimit, upperLimit    math2d.Vec2
	radius                    float64
	front                     bool
}

// CollideEdgeAndPolygon computes the manifold of an edge and a polygon.
// Polygon axes outside the normal cone allowed by the neighbor edges are
// ignored, which suppresses collisions with the back of a chain.
func CollideEdgeAndPolygon(m *Manifold, edgeA *EdgeShape, xfA math2d.Transform, polygonB *PolygonShape, xfB math2d.Transform) {
	var c epCollider
	c.collide(m, edgeA, xfA, polygonB, xfB)
}

// collide works in these steps:
//  1. classify v1 and v2
//  2. classify the polygon centroid as front or back
//  3. flip the normal if necessary
//  4. initialize the normal range to [-pi, pi] about the face normal
//  5. adjust the normal range according to adjacent edges
//  6. visit each separating axis, only accepting axes within the range
//  7. return if any axis indicates separation
//  8. clip
func (c *epCollider) collide(m *Manifold, edgeA *EdgeShape, xfA math2d.Transform, polygonB *PolygonShape, xfB math2d.Transform) {
	c.xf = xfA.MulT(xfB)

	c.centroidB = c.xf.Apply(polygonB.Centroid)

	c.v0 = edgeA.Vertex0
	c.v1 = edgeA.Vertex1
	c.v2 = edgeA.Vertex2
	c.v3 = edgeA.Vertex3

	hasVertex0 := edgeA.HasVertex0
	hasVertex3 := edgeA.HasVertex3

	edge1 := math2d.Unit(c.v2.Sub(c.v1))
	c.normal1 = math2d.V(edge1[1], -edge1[0])
	offset1 := c.normal1.Dot(c.centroidB.Sub(c.v1))
	offset0 := 0.0
	offset2 := 0.0
	convex1 := false
	convex2 := false

	// Is there a preceding edge?
	if hasVertex0 {
		edge0 := math2d.Unit(c.v1.Sub(c.v0))
		c.normal0 = math2d.V(edge0[1], -edge0[0])
		convex1 = math2d.Cross(edge0, edge1) >= 0.0
		offset0 = c.normal0.Dot(c.centroidB.Sub(c.v0))
	}

	// Is there a following edge?
	if hasVertex3 {
		edge2 := math2d.Unit(c.v3.Sub(c.v2))
		c.normal2 = math2d.V(edge2[1], -edge2[0])
		convex2 = math2d.Cross(edge1, edge2) > 0.0
		offset2 = c.normal2.Dot(c.centroidB.Sub(c.v2))
	}

	c.classify(hasVertex0, hasVertex3, convex1, convex2, offset0, offset1, offset2)

	// Get polygonB in frameA
	c.polygonB.count = polygonB.Count
	for i := 0; i < polygonB.Count; i++ {
		c.polygonB.vertices[i] = c.xf.Apply(polygonB.Vertices[i])
		c.polygonB.normals[i] = c.xf.Q.Apply(polygonB.Normals[i])
	}

	c.radius = polygonB.Radius + edgeA.Radius

	m.PointCount = 0

	edgeAxis := c.computeEdgeSeparation()

	// If no valid normal can be found then this edge should not collide.
	if edgeAxis.typ == epAxisUnknown {
		return
	}

	if edgeAxis.separation > c.radius {
		return
	}

	polygonAxis := c.computePolygonSeparation()
	if polygonAxis.typ != epAxisUnknown && polygonAxis.separation > c.radius {
		return
	}

	// Use hysteresis for jitter reduction.
	primaryAxis := edgeAxis
	if polygonAxis.typ != epAxisUnknown &&
		polygonAxis.separation > settings.RelativeTolerance*edgeAxis.separation+settings.AbsoluteTolerance {
		primaryAxis = polygonAxis
	}

	var ie [2]ClipVertex
	var rf referenceFace
	if primaryAxis.typ == epAxisEdgeA {
		m.Type = ManifoldFaceA

		// Search for the polygon normal that is most anti-parallel to the
		// edge normal.
		bestIndex := 0
		bestValue := c.normal.Dot(c.polygonB.normals[0])
		for i := 1; i < c.polygonB.count; i++ {
			value := c.normal.Dot(c.polygonB.normals[i])
			if value < bestValue {
				bestValue = value
				bestIndex = i
			}
		}

		i1 := bestIndex
		i2 := 0
		if i1+1 < c.polygonB.count {
			i2 = i1 + 1
		}

		ie[0] = ClipVertex{
			V:  c.polygonB.vertices[i1],
			ID: ContactID{IndexA: 0, IndexB: uint8(i1), TypeA: FeatureFace, TypeB: FeatureVertex},
		}
		ie[1] = ClipVertex{
			V:  c.polygonB.vertices[i2],
			ID: ContactID{IndexA: 0, IndexB: uint8(i2), TypeA: FeatureFace, TypeB: FeatureVertex},
		}

		if c.front {
			rf.i1, rf.i2 = 0, 1
			rf.v1, rf.v2 = c.v1, c.v2
			rf.normal = c.normal1
		} else {
			rf.i1, rf.i2 = 1, 0
			rf.v1, rf.v2 = c.v2, c.v1
			rf.normal = math2d.Neg(c.normal1)
		}
	} else {
		m.Type = ManifoldFaceB

		ie[0] = ClipVertex{
			V:  c.v1,
			ID: ContactID{IndexA: 0, IndexB: uint8(primaryAxis.index), TypeA: FeatureVertex, TypeB: FeatureFace},
		}
		ie[1] = ClipVertex{
			V:  c.v2,
			ID: ContactID{IndexA: 0, IndexB: uint8(primaryAxis.index), TypeA: FeatureVertex, TypeB: FeatureFace},
		}

		rf.i1 = primaryAxis.index
		rf.i2 = 0
		if rf.i1+1 < c.polygonB.count {
			rf.i2 = rf.i1 + 1
		}

		rf.v1 = c.polygonB.vertices[rf.i1]
		rf.v2 = c.polygonB.vertices[rf.i2]
		rf.normal = c.polygonB.normals[rf.i1]
	}

	rf.sideNormal1 = math2d.V(rf.normal[1], -rf.normal[0])
	rf.sideNormal2 = math2d.Neg(rf.sideNormal1)
	rf.sideOffset1 = rf.sideNormal1.Dot(rf.v1)
	rf.sideOffset2 = rf.sideNormal2.Dot(rf.v2)

	// Clip incident edge against extruded edge1 side edges.
	var clipPoints1, clipPoints2 [2]ClipVertex

	// Clip to box side 1
	if np := ClipSegmentToLine(&clipPoints1, ie, rf.sideNormal1, rf.sideOffset1, rf.i1); np < settings.MaxManifoldPoints {
		return
	}

	// Clip to negative box side 1
	if np := ClipSegmentToLine(&clipPoints2, clipPoints1, rf.sideNormal2, rf.sideOffset2, rf.i2); np < settings.MaxManifoldPoints {
		return
	}

	// Now clipPoints2 contains the clipped points.
	if primaryAxis.typ == epAxisEdgeA {
		m.LocalNormal = rf.normal
		m.LocalPoint = rf.v1
	} else {
		m.LocalNormal = polygonB.Normals[rf.i1]
		m.LocalPoint = polygonB.Vertices[rf.i1]
	}

	pointCount := 0
	for i := 0; i < settings.MaxManifoldPoints; i++ {
		separation := rf.normal.Dot(clipPoints2[i].V.Sub(rf.v1))

		if separation <= c.radius {
			cp := &m.Points[pointCount]
			cp.NormalImpulse = 0.0
			cp.TangentImpulse = 0.0

			if primaryAxis.typ == epAxisEdgeA {
				cp.LocalPoint = c.xf.ApplyT(clipPoints2[i].V)
				cp.ID = clipPoints2[i].ID
			} else {
				cp.LocalPoint = clipPoints2[i].V
				cp.ID = clipPoints2[i].ID.Flip()
			}

			pointCount++
		}
	}

	m.PointCount = pointCount
}

// classify decides front or back collision and the normal limits from the
// vertex convexity and the centroid offsets.
func (c *epCollider) classify(hasVertex0, hasVertex3, convex1, convex2 bool, offset0, offset1, offset2 float64) {
	n0, n1, n2 := c.normal0, c.normal1, c.normal2
	neg := math2d.Neg

	switch {
	case hasVertex0 && hasVertex3:
		switch {
		case convex1 && convex2:
			c.front = offset0 >= 0.0 || offset1 >= 0.0 || offset2 >= 0.0
			if c.front {
				c.normal, c.lowerLimit, c.upperLimit = n1, n0, n2
			} else {
				c.normal, c.lowerLimit, c.upperLimit = neg(n1), neg(n1), neg(n1)
			}
		case convex1:
			c.front = offset0 >= 0.0 || (offset1 >= 0.0 && offset2 >= 0.0)
			if c.front {
				c.normal, c.lowerLimit, c.upperLimit = n1, n0, n1
			} else {
				c.normal, c.lowerLimit, c.upperLimit = neg(n1), neg(n2), neg(n1)
			}
		case convex2:
			c.front = offset2 >= 0.0 || (offset0 >= 0.0 && offset1 >= 0.0)
			if c.front {
				c.normal, c.lowerLimit, c.upperLimit = n1, n1, n2
			} else {
				c.normal, c.lowerLimit, c.upperLimit = neg(n1), neg(n1), neg(n0)
			}
		default:
			c.front = offset0 >= 0.0 && offset1 >= 0.0 && offset2 >= 0.0
			if c.front {
				c.normal, c.lowerLimit, c.upperLimit = n1, n1, n1
			} else {
				c.normal, c.lowerLimit, c.upperLimit = neg(n1), neg(n2), neg(n0)
			}
		}

	case hasVertex0:
		if convex1 {
			c.front = offset0 >= 0.0 || offset1 >= 0.0
			if c.front {
				c.normal, c.lowerLimit, c.upperLimit = n1, n0, neg(n1)
			} else {
				c.normal, c.lowerLimit, c.upperLimit = neg(n1), n1, neg(n1)
			}
		} else {
			c.front = offset0 >= 0.0 && offset1 >= 0.0
			if c.front {
				c.normal, c.lowerLimit, c.upperLimit = n1, n1, neg(n1)
			} else {
				c.normal, c.lowerLimit, c.upperLimit = neg(n1), n1, neg(n0)
			}
		}

	case hasVertex3:
		if convex2 {
			c.front = offset1 >= 0.0 || offset2 >= 0.0
			if c.front {
				c.normal, c.lowerLimit, c.upperLimit = n1, neg(n1), n2
			} else {
				c.normal, c.lowerLimit, c.upperLimit = neg(n1), neg(n1), n1
			}
		} else {
			c.front = offset1 >= 0.0 && offset2 >= 0.0
			if c.front {
				c.normal, c.lowerLimit, c.upperLimit = n1, neg(n1), n1
			} else {
				c.normal, c.lowerLimit, c.upperLimit = neg(n1), neg(n2), n1
			}
		}

	default:
		c.front = offset1 >= 0.0
		if c.front {
			c.normal, c.lowerLimit, c.upperLimit = n1, neg(n1), neg(n1)
		} else {
			c.normal, c.lowerLimit, c.upperLimit = neg(n1), n1, n1
		}
	}
}

func (c *epCollider) computeEdgeSeparation() epAxis {
	axis := epAxis{typ: epAxisEdgeA, index: 1, separation: settings.MaxFloat}
	if c.front {
		axis.index = 0
	}

	for i := 0; i < c.polygonB.count; i++ {
		s := c.normal.Dot(c.polygonB.vertices[i].Sub(c.v1))
		if s < axis.separation {
			axis.separation = s
		}
	}

	return axis
}

func (c *epCollider) computePolygonSeparation() epAxis {
	axis := epAxis{typ: epAxisUnknown, index: -1, separation: -settings.MaxFloat}

	perp := math2d.V(-c.normal[1], c.normal[0])

	for i := 0; i < c.polygonB.count; i++ {
		n := math2d.Neg(c.polygonB.normals[i])

		s1 := n.Dot(c.polygonB.vertices[i].Sub(c.v1))
		s2 := n.Dot(c.polygonB.vertices[i].Sub(c.v2))
		s := math.Min(s1, s2)

		if s > c.radius {
			// No collision
			return epAxis{typ: epAxisEdgeB, index: i, separation: s}
		}

		// Adjacency
		if n.Dot(perp) >= 0.0 {
			if n.Sub(c.upperLimit).Dot(c.normal) < -settings.AngularSlop {
				continue
			}
		} else {
			if n.Sub(c.lowerLimit).Dot(c.normal) < -settings.AngularSlop {
				continue
			}
		}

		if s > axis.separation {
			axis = epAxis{typ: epAxisEdgeB, index: i, separation: s}
		}
	}

	return axis
}
