package collision

import (
	"fmt"
	"math"

	"github.com/ByteArena/box2d-collision/math2d"
	"github.com/ByteArena/box2d-collision/settings"
)

// NullFeature marks an unused feature index.
const NullFeature uint8 = math.MaxUint8

// FeatureType tells whether a contact feature is a vertex or a face.
type FeatureType uint8

const (
	FeatureVertex FeatureType = iota
	FeatureFace
)

func (t FeatureType) String() string {
	switch t {
	case FeatureVertex:
		return "vertex"
	case FeatureFace:
		return "face"
	}
	return fmt.Sprintf("FeatureType(%d)", uint8(t))
}

// ContactID identifies the pair of features that intersect to form a
// contact point. It is stable across steps for the same feature pair and
// is the key used to match points for warm starting.
type ContactID struct {
	IndexA uint8       // feature index on shape A
	IndexB uint8       // feature index on shape B
	TypeA  FeatureType // feature type on shape A
	TypeB  FeatureType // feature type on shape B
}

// Key packs the identity into 32 bits.
func (id ContactID) Key() uint32 {
	return uint32(id.IndexA) |
		uint32(id.IndexB)<<8 |
		uint32(id.TypeA)<<16 |
		uint32(id.TypeB)<<24
}

// ContactIDFromKey is the inverse of Key.
func ContactIDFromKey(key uint32) ContactID {
	return ContactID{
		IndexA: uint8(key),
		IndexB: uint8(key >> 8),
		TypeA:  FeatureType(key >> 16),
		TypeB:  FeatureType(key >> 24),
	}
}

func (id ContactID) Equal(other ContactID) bool {
	return id == other
}

// Flip swaps the A and B sides.
func (id ContactID) Flip() ContactID {
	return ContactID{IndexA: id.IndexB, IndexB: id.IndexA, TypeA: id.TypeB, TypeB: id.TypeA}
}

func (id ContactID) String() string {
	return fmt.Sprintf("%s%d/%s%d", id.TypeA, id.IndexA, id.TypeB, id.IndexB)
}

// ManifoldPoint is a contact point belonging to a manifold.
// LocalPoint usage depends on the manifold type:
//   - ManifoldCircles: the local center of circle B
//   - ManifoldFaceA: the local center of circle B or the clip point of polygon B
//   - ManifoldFaceB: the clip point of polygon A
//
// The impulses are cached by the solver and may not be reliable contact
// forces for high speed collisions.
type ManifoldPoint struct {
	LocalPoint     math2d.Vec2
	NormalImpulse  float64
	TangentImpulse float64
	ID             ContactID
}

// ManifoldType selects how LocalNormal and LocalPoint are interpreted.
type ManifoldType uint8

const (
	ManifoldCircles ManifoldType = iota
	ManifoldFaceA
	ManifoldFaceB
)

func (t ManifoldType) String() string {
	switch t {
	case ManifoldCircles:
		return "circles"
	case ManifoldFaceA:
		return "faceA"
	case ManifoldFaceB:
		return "faceB"
	}
	return fmt.Sprintf("ManifoldType(%d)", uint8(t))
}

// Manifold describes the contact region of two touching convex shapes.
//
// LocalPoint is the local center of circle A for ManifoldCircles and the
// center of the reference face otherwise. LocalNormal is unused for
// ManifoldCircles and is the reference face normal otherwise. Storing the
// contact in local frames lets position correction account for movement.
type Manifold struct {
	Points      [settings.MaxManifoldPoints]ManifoldPoint
	LocalNormal math2d.Vec2
	LocalPoint  math2d.Vec2
	Type        ManifoldType
	PointCount  int
}

// WorldManifold is the world-space view of a manifold.
type WorldManifold struct {
	Normal      math2d.Vec2 // points from A to B
	Points      [settings.MaxManifoldPoints]math2d.Vec2
	Separations [settings.MaxManifoldPoints]float64 // negative means overlap
}

// NewWorldManifold evaluates a manifold with the given transforms and shape
// radii.
func NewWorldManifold(m *Manifold, xfA math2d.Transform, radiusA float64, xfB math2d.Transform, radiusB float64) WorldManifold {
	var wm WorldManifold
	wm.Initialize(m, xfA, radiusA, xfB, radiusB)
	return wm
}

// Initialize recomputes wm from the manifold. The points are the midpoints
// between the two surfaces.
func (wm *WorldManifold) Initialize(m *Manifold, xfA math2d.Transform, radiusA float64, xfB math2d.Transform, radiusB float64) {
	if m.PointCount == 0 {
		return
	}

	switch m.Type {
	case ManifoldCircles:
		wm.Normal = math2d.V(1.0, 0.0)
		pointA := xfA.Apply(m.LocalPoint)
		pointB := xfB.Apply(m.Points[0].LocalPoint)
		if math2d.DistanceSquared(pointA, pointB) > settings.Epsilon*settings.Epsilon {
			wm.Normal = math2d.Unit(pointB.Sub(pointA))
		}

		cA := pointA.Add(wm.Normal.Mul(radiusA))
		cB := pointB.Sub(wm.Normal.Mul(radiusB))
		wm.Points[0] = math2d.Mid(cA, cB)
		wm.Separations[0] = cB.Sub(cA).Dot(wm.Normal)

	case ManifoldFaceA:
		wm.Normal = xfA.Q.Apply(m.LocalNormal)
		planePoint := xfA.Apply(m.LocalPoint)

		for i := 0; i < m.PointCount; i++ {
			clipPoint := xfB.Apply(m.Points[i].LocalPoint)
			cA := clipPoint.Add(wm.Normal.Mul(radiusA - clipPoint.Sub(planePoint).Dot(wm.Normal)))
			cB := clipPoint.Sub(wm.Normal.Mul(radiusB))
			wm.Points[i] = math2d.Mid(cA, cB)
			wm.Separations[i] = cB.Sub(cA).Dot(wm.Normal)
		}

	case ManifoldFaceB:
		wm.Normal = xfB.Q.Apply(m.LocalNormal)
		planePoint := xfB.Apply(m.LocalPoint)

		for i := 0; i < m.PointCount; i++ {
			clipPoint := xfA.Apply(m.Points[i].LocalPoint)
			cB := clipPoint.Add(wm.Normal.Mul(radiusB - clipPoint.Sub(planePoint).Dot(wm.Normal)))
			cA := clipPoint.Sub(wm.Normal.Mul(radiusA))
			wm.Points[i] = math2d.Mid(cA, cB)
			wm.Separations[i] = cA.Sub(cB).Dot(wm.Normal)
		}

		// Ensure normal points from A to B.
		wm.Normal = math2d.Neg(wm.Normal)
	}
}

// PointState is the lifecycle of a manifold point across an update.
type PointState uint8

const (
	NullState    PointState = iota // point does not exist
	AddState                       // point was added in the update
	PersistState                   // point persisted across the update
	RemoveState                    // point was removed in the update
)

func (s PointState) String() string {
	switch s {
	case NullState:
		return "null"
	case AddState:
		return "add"
	case PersistState:
		return "persist"
	case RemoveState:
		return "remove"
	}
	return fmt.Sprintf("PointState(%d)", uint8(s))
}

// GetPointStates compares the points of two manifolds by contact ID. state1
// describes the points of m1 and state2 the points of m2.
func GetPointStates(m1, m2 *Manifold) (state1, state2 [settings.MaxManifoldPoints]PointState) {
	// Detect persists and removes.
	for i := 0; i < m1.PointCount; i++ {
		key := m1.Points[i].ID.Key()
		state1[i] = RemoveState

		for j := 0; j < m2.PointCount; j++ {
			if m2.Points[j].ID.Key() == key {
				state1[i] = PersistState
				break
			}
		}
	}

	// Detect persists and adds.
	for i := 0; i < m2.PointCount; i++ {
		key := m2.Points[i].ID.Key()
		state2[i] = AddState

		for j := 0; j < m1.PointCount; j++ {
			if m1.Points[j].ID.Key() == key {
				state2[i] = PersistState
				break
			}
		}
	}

	return state1, state2
}

// ClipVertex is a clipped point used when building manifolds.
type ClipVertex struct {
	V  math2d.Vec2
	ID ContactID
}

// ClipSegmentToLine clips the segment vIn against the half plane
// dot(normal, v) <= offset (Sutherland-Hodgman). A point created on the
// plane takes vertexIndexA as its A feature. It returns the number of
// points written to vOut.
func ClipSegmentToLine(vOut *[2]ClipVertex, vIn [2]ClipVertex, normal math2d.Vec2, offset float64, vertexIndexA int) int {
	numOut := 0

	// Distance of end points to the line.
	distance0 := normal.Dot(vIn[0].V) - offset
	distance1 := normal.Dot(vIn[1].V) - offset

	// Points behind the plane.
	if distance0 <= 0.0 {
		vOut[numOut] = vIn[0]
		numOut++
	}

	if distance1 <= 0.0 {
		vOut[numOut] = vIn[1]
		numOut++
	}

	// Points on different sides of the plane.
	if distance0*distance1 < 0.0 {
		interp := distance0 / (distance0 - distance1)
		vOut[numOut].V = vIn[0].V.Add(vIn[1].V.Sub(vIn[0].V).Mul(interp))

		// VertexA is hitting edgeB.
		vOut[numOut].ID = ContactID{
			IndexA: uint8(vertexIndexA),
			IndexB: vIn[0].ID.IndexB,
			TypeA:  FeatureVertex,
			TypeB:  FeatureFace,
		}
		numOut++
	}

	return numOut
}
