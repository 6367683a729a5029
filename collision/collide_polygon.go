package collision

import (
	"github.com/ByteArena/box2d-collision/math2d"
	"github.com/ByteArena/box2d-collision/settings"
)

// findMaxSeparation finds the max separation between poly1 and poly2 using
// edge normals from poly1.
func findMaxSeparation(poly1 *PolygonShape, xf1 math2d.Transform, poly2 *PolygonShape, xf2 math2d.Transform) (edgeIndex int, maxSeparation float64) {
	count1 := poly1.Count
	count2 := poly2.Count
	n1s := &poly1.Normals
	v1s := &poly1.Vertices
	v2s := &poly2.Vertices

	xf := xf2.MulT(xf1)

	maxSeparation = -settings.MaxFloat
	for i := 0; i < count1; i++ {
		// Get poly1 normal in frame2.
		n := xf.Q.Apply(n1s[i])
		v1 := xf.Apply(v1s[i])

		// Find deepest point for normal i.
		si := settings.MaxFloat
		for j := 0; j < count2; j++ {
			sij := n.Dot(v2s[j].Sub(v1))
			if sij < si {
				si = sij
			}
		}

		if si > maxSeparation {
			maxSeparation = si
			edgeIndex = i
		}
	}

	return edgeIndex, maxSeparation
}

// findIncidentEdge returns the edge of poly2 most anti-parallel to the
// reference normal edge1 of poly1, in world space.
func findIncidentEdge(poly1 *PolygonShape, xf1 math2d.Transform, edge1 int, poly2 *PolygonShape, xf2 math2d.Transform) [2]ClipVertex {
	settings.Assert(0 <= edge1 && edge1 < poly1.Count, "findIncidentEdge", "reference edge out of range")

	count2 := poly2.Count

	// Get the normal of the reference edge in poly2's frame.
	normal1 := xf2.Q.ApplyT(xf1.Q.Apply(poly1.Normals[edge1]))

	// Find the incident edge on poly2.
	index := 0
	minDot := settings.MaxFloat
	for i := 0; i < count2; i++ {
		dot := normal1.Dot(poly2.Normals[i])
		if dot < minDot {
			minDot = dot
			index = i
		}
	}

	// Build the clip vertices for the incident edge.
	i1 := index
	i2 := 0
	if i1+1 < count2 {
		i2 = i1 + 1
	}

	return [2]ClipVertex{
		{
			V:  xf2.Apply(poly2.Vertices[i1]),
			ID: ContactID{IndexA: uint8(edge1), IndexB: uint8(i1), TypeA: FeatureFace, TypeB: FeatureVertex},
		},
		{
			V:  xf2.Apply(poly2.Vertices[i2]),
			ID: ContactID{IndexA: uint8(edge1), IndexB: uint8(i2), TypeA: FeatureFace, TypeB: FeatureVertex},
		},
	}
}

// CollidePolygons computes the manifold of two polygons:
//   - find the edge normal of max separation on A, return if separating
//   - find the edge normal of max separation on B, return if separating
//   - choose the reference edge, favoring A to keep the normal stable
//   - find the incident edge
//   - clip
//
// The normal points from A to B.
func CollidePolygons(m *Manifold, polyA *PolygonShape, xfA math2d.Transform, polyB *PolygonShape, xfB math2d.Transform) {
	m.PointCount = 0
	totalRadius := polyA.Radius + polyB.Radius

	edgeA, separationA := findMaxSeparation(polyA, xfA, polyB, xfB)
	if separationA > totalRadius {
		return
	}

	edgeB, separationB := findMaxSeparation(polyB, xfB, polyA, xfA)
	if separationB > totalRadius {
		return
	}

	poly1, poly2 := polyA, polyB // reference and incident polygons
	xf1, xf2 := xfA, xfB
	edge1 := edgeA
	flip := false
	m.Type = ManifoldFaceA

	if separationB > settings.RelativeTolerance*separationA+settings.AbsoluteTolerance {
		poly1, poly2 = polyB, polyA
		xf1, xf2 = xfB, xfA
		edge1 = edgeB
		flip = true
		m.Type = ManifoldFaceB
	}

	incidentEdge := findIncidentEdge(poly1, xf1, edge1, poly2, xf2)

	count1 := poly1.Count

	iv1 := edge1
	iv2 := 0
	if edge1+1 < count1 {
		iv2 = edge1 + 1
	}

	v11 := poly1.Vertices[iv1]
	v12 := poly1.Vertices[iv2]

	localTangent := math2d.Unit(v12.Sub(v11))

	localNormal := math2d.CrossVS(localTangent, 1.0)
	planePoint := math2d.Mid(v11, v12)

	tangent := xf1.Q.Apply(localTangent)
	normal := math2d.CrossVS(tangent, 1.0)

	v11 = xf1.Apply(v11)
	v12 = xf1.Apply(v12)

	// Face offset.
	frontOffset := normal.Dot(v11)

	// Side offsets, extended by polytope skin thickness.
	sideOffset1 := -tangent.Dot(v11) + totalRadius
	sideOffset2 := tangent.Dot(v12) + totalRadius

	// Clip incident edge against extruded edge1 side edges.
	var clipPoints1, clipPoints2 [2]ClipVertex

	// Clip to box side 1
	if np := ClipSegmentToLine(&clipPoints1, incidentEdge, math2d.Neg(tangent), sideOffset1, iv1); np < 2 {
		return
	}

	// Clip to negative box side 1
	if np := ClipSegmentToLine(&clipPoints2, clipPoints1, tangent, sideOffset2, iv2); np < 2 {
		return
	}

	// Now clipPoints2 contains the clipped points.
	m.LocalNormal = localNormal
	m.LocalPoint = planePoint

	pointCount := 0
	for i := 0; i < settings.MaxManifoldPoints; i++ {
		separation := normal.Dot(clipPoints2[i].V) - frontOffset

		if separation <= totalRadius {
			cp := &m.Points[pointCount]
			cp.LocalPoint = xf2.ApplyT(clipPoints2[i].V)
			cp.ID = clipPoints2[i].ID
			cp.NormalImpulse = 0.0
			cp.TangentImpulse = 0.0
			if flip {
				cp.ID = cp.ID.Flip()
			}
			pointCount++
		}
	}

	m.PointCount = pointCount
}
