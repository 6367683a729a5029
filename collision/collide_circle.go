package collision

import (
	"github.com/ByteArena/box2d-collision/math2d"
	"github.com/ByteArena/box2d-collision/settings"
)

// CollideCircles computes the manifold of two circles.
func CollideCircles(m *Manifold, circleA *CircleShape, xfA math2d.Transform, circleB *CircleShape, xfB math2d.Transform) {
	m.PointCount = 0

	pA := xfA.Apply(circleA.P)
	pB := xfB.Apply(circleB.P)

	d := pB.Sub(pA)
	distSqr := d.Dot(d)
	radius := circleA.Radius + circleB.Radius
	if distSqr > radius*radius {
		return
	}

	m.Type = ManifoldCircles
	m.LocalPoint = circleA.P
	m.LocalNormal = math2d.Zero
	m.PointCount = 1

	m.Points[0].LocalPoint = circleB.P
	m.Points[0].ID = ContactID{}
}

// CollidePolygonAndCircle computes the manifold of a polygon and a circle.
func CollidePolygonAndCircle(m *Manifold, polygonA *PolygonShape, xfA math2d.Transform, circleB *CircleShape, xfB math2d.Transform) {
	m.PointCount = 0

	// Compute circle position in the frame of the polygon.
	c := xfB.Apply(circleB.P)
	cLocal := xfA.ApplyT(c)

	// Find the min separating edge.
	normalIndex := 0
	separation := -settings.MaxFloat
	radius := polygonA.Radius + circleB.Radius
	vertexCount := polygonA.Count
	vertices := &polygonA.Vertices
	normals := &polygonA.Normals

	for i := 0; i < vertexCount; i++ {
		s := normals[i].Dot(cLocal.Sub(vertices[i]))

		if s > radius {
			// Early out.
			return
		}

		if s > separation {
			separation = s
			normalIndex = i
		}
	}

	// Vertices that subtend the incident face.
	vertIndex1 := normalIndex
	vertIndex2 := 0
	if vertIndex1+1 < vertexCount {
		vertIndex2 = vertIndex1 + 1
	}

	v1 := vertices[vertIndex1]
	v2 := vertices[vertIndex2]

	m.Type = ManifoldFaceA
	m.Points[0].LocalPoint = circleB.P
	m.Points[0].ID = ContactID{}

	// If the center is inside the polygon ...
	if separation < settings.Epsilon {
		m.PointCount = 1
		m.LocalNormal = normals[normalIndex]
		m.LocalPoint = math2d.Mid(v1, v2)
		return
	}

	// Compute barycentric coordinates
	u1 := cLocal.Sub(v1).Dot(v2.Sub(v1))
	u2 := cLocal.Sub(v2).Dot(v1.Sub(v2))

	switch {
	case u1 <= 0.0:
		if math2d.DistanceSquared(cLocal, v1) > radius*radius {
			return
		}

		m.PointCount = 1
		m.LocalNormal = math2d.Unit(cLocal.Sub(v1))
		m.LocalPoint = v1

	case u2 <= 0.0:
		if math2d.DistanceSquared(cLocal, v2) > radius*radius {
			return
		}

		m.PointCount = 1
		m.LocalNormal = math2d.Unit(cLocal.Sub(v2))
		m.LocalPoint = v2

	default:
		faceCenter := math2d.Mid(v1, v2)
		if cLocal.Sub(faceCenter).Dot(normals[vertIndex1]) > radius {
			return
		}

		m.PointCount = 1
		m.LocalNormal = normals[vertIndex1]
		m.LocalPoint = faceCenter
	}
}
