package collision

import (
	"errors"
	"fmt"

	"github.com/ByteArena/box2d-collision/math2d"
)

var (
	// ErrPolygonVertexCount is returned when a polygon is given fewer than 3
	// or more than settings.MaxPolygonVertices vertices.
	ErrPolygonVertexCount = errors.New("polygon vertex count out of range")

	// ErrChainVertexCount is returned when a chain has too few vertices.
	ErrChainVertexCount = errors.New("chain vertex count too small")

	// ErrChainVerticesTooClose is returned when two consecutive chain
	// vertices are within settings.LinearSlop of each other.
	ErrChainVerticesTooClose = errors.New("chain vertices too close together")

	// ErrChainAlreadyCreated is returned when CreateChain or CreateLoop is
	// called on a chain that already holds vertices.
	ErrChainAlreadyCreated = errors.New("chain already created")
)

// ShapeType is the discriminant of the closed set of shapes.
type ShapeType uint8

const (
	ShapeCircle ShapeType = iota
	ShapeEdge
	ShapePolygon
	ShapeChain

	ShapeTypeCount
)

func (t ShapeType) String() string {
	switch t {
	case ShapeCircle:
		return "circle"
	case ShapeEdge:
		return "edge"
	case ShapePolygon:
		return "polygon"
	case ShapeChain:
		return "chain"
	}
	return fmt.Sprintf("ShapeType(%d)", uint8(t))
}

// MassData holds the mass properties computed for a shape.
type MassData struct {
	// Mass of the shape, usually in kilograms.
	Mass float64

	// Center is the centroid relative to the shape's origin.
	Center math2d.Vec2

	// I is the rotational inertia about the local origin.
	I float64
}

// Shape is a geometric object used for collision detection. The set of
// shapes is closed: *CircleShape, *EdgeShape, *PolygonShape and
// *ChainShape. A shape may hold several child primitives (a chain has one
// child per edge).
type Shape interface {
	// GetType returns the concrete shape kind.
	GetType() ShapeType

	// GetRadius returns the rounding radius. Polygonal shapes use
	// settings.PolygonRadius.
	GetRadius() float64

	// GetChildCount returns the number of child primitives.
	GetChildCount() int

	// TestPoint tests a world point for containment. This only works for
	// convex shapes.
	TestPoint(xf math2d.Transform, p math2d.Vec2) bool

	// RayCast casts a ray against a child shape placed with xf.
	RayCast(input RayCastInput, xf math2d.Transform, childIndex int) (RayCastOutput, bool)

	// ComputeAABB returns the bounding box of a child shape placed with xf.
	ComputeAABB(xf math2d.Transform, childIndex int) AABB

	// ComputeMass computes the mass properties for the given density in
	// kilograms per square meter. Inertia is about the local origin.
	ComputeMass(density float64) MassData

	// Clone returns a deep copy.
	Clone() Shape

	sealed()
}
