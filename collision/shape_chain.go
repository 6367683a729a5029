package collision

import (
	"fmt"

	"github.com/ByteArena/box2d-collision/math2d"
	"github.com/ByteArena/box2d-collision/settings"
)

// ChainShape is a free form sequence of line segments with two-sided
// collision, so any winding order works. Connectivity information is used
// to create smooth collisions. A chain does not collide properly if it
// self-intersects.
type ChainShape struct {
	Radius float64

	// Vertices holds the chain points. A loop repeats its first vertex at
	// the end.
	Vertices []math2d.Vec2

	PrevVertex, NextVertex       math2d.Vec2
	HasPrevVertex, HasNextVertex bool
}

// NewChain builds an open chain. See CreateChain.
func NewChain(vs []math2d.Vec2) (*ChainShape, error) {
	c := &ChainShape{Radius: settings.PolygonRadius}
	if err := c.CreateChain(vs); err != nil {
		return nil, err
	}
	return c, nil
}

// NewLoop builds a closed chain. See CreateLoop.
func NewLoop(vs []math2d.Vec2) (*ChainShape, error) {
	c := &ChainShape{Radius: settings.PolygonRadius}
	if err := c.CreateLoop(vs); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *ChainShape) sealed() {}

func (c *ChainShape) GetType() ShapeType { return ShapeChain }

func (c *ChainShape) GetRadius() float64 { return c.Radius }

// GetChildCount returns the edge count.
func (c *ChainShape) GetChildCount() int {
	if len(c.Vertices) < 2 {
		return 0
	}
	return len(c.Vertices) - 1
}

// Clear removes all vertices so the chain can be created again.
func (c *ChainShape) Clear() {
	c.Vertices = nil
	c.HasPrevVertex = false
	c.HasNextVertex = false
}

func checkChainSpacing(vs []math2d.Vec2) error {
	for i := 1; i < len(vs); i++ {
		if math2d.DistanceSquared(vs[i-1], vs[i]) <= settings.LinearSlop*settings.LinearSlop {
			return fmt.Errorf("vertices %d and %d: %w", i-1, i, ErrChainVerticesTooClose)
		}
	}
	return nil
}

// CreateLoop creates a closed loop; the last vertex connects back to the
// first. At least 3 vertices are required.
func (c *ChainShape) CreateLoop(vs []math2d.Vec2) error {
	if c.Vertices != nil {
		return ErrChainAlreadyCreated
	}
	if len(vs) < 3 {
		return fmt.Errorf("loop with %d vertices: %w", len(vs), ErrChainVertexCount)
	}
	if err := checkChainSpacing(vs); err != nil {
		return err
	}

	count := len(vs) + 1
	c.Vertices = make([]math2d.Vec2, count)
	copy(c.Vertices, vs)
	c.Vertices[count-1] = c.Vertices[0]

	c.PrevVertex = c.Vertices[count-2]
	c.NextVertex = c.Vertices[1]
	c.HasPrevVertex = true
	c.HasNextVertex = true
	return nil
}

// CreateChain creates an open chain with isolated end vertices. At least 2
// vertices are required.
func (c *ChainShape) CreateChain(vs []math2d.Vec2) error {
	if c.Vertices != nil {
		return ErrChainAlreadyCreated
	}
	if len(vs) < 2 {
		return fmt.Errorf("chain with %d vertices: %w", len(vs), ErrChainVertexCount)
	}
	if err := checkChainSpacing(vs); err != nil {
		return err
	}

	c.Vertices = make([]math2d.Vec2, len(vs))
	copy(c.Vertices, vs)

	c.HasPrevVertex = false
	c.HasNextVertex = false
	c.PrevVertex = math2d.Zero
	c.NextVertex = math2d.Zero
	return nil
}

// SetPrevVertex establishes connectivity to a vertex that precedes the
// first vertex.
func (c *ChainShape) SetPrevVertex(v math2d.Vec2) {
	c.PrevVertex = v
	c.HasPrevVertex = true
}

// SetNextVertex establishes connectivity to a vertex that follows the last
// vertex.
func (c *ChainShape) SetNextVertex(v math2d.Vec2) {
	c.NextVertex = v
	c.HasNextVertex = true
}

func (c *ChainShape) Clone() Shape {
	clone := *c
	clone.Vertices = append([]math2d.Vec2(nil), c.Vertices...)
	return &clone
}

// ChildEdge returns edge index as an EdgeShape carrying its neighbors.
func (c *ChainShape) ChildEdge(index int) EdgeShape {
	count := len(c.Vertices)
	settings.Assert(0 <= index && index < count-1, "ChainShape.ChildEdge", "child index out of range")

	e := EdgeShape{
		Radius:  c.Radius,
		Vertex1: c.Vertices[index],
		Vertex2: c.Vertices[index+1],
	}

	if index > 0 {
		e.Vertex0 = c.Vertices[index-1]
		e.HasVertex0 = true
	} else {
		e.Vertex0 = c.PrevVertex
		e.HasVertex0 = c.HasPrevVertex
	}

	if index < count-2 {
		e.Vertex3 = c.Vertices[index+2]
		e.HasVertex3 = true
	} else {
		e.Vertex3 = c.NextVertex
		e.HasVertex3 = c.HasNextVertex
	}

	return e
}

// TestPoint always reports false; a chain has no area.
func (c *ChainShape) TestPoint(xf math2d.Transform, p math2d.Vec2) bool {
	return false
}

func (c *ChainShape) RayCast(input RayCastInput, xf math2d.Transform, childIndex int) (RayCastOutput, bool) {
	settings.Assert(0 <= childIndex && childIndex < c.GetChildCount(), "ChainShape.RayCast", "child index out of range")
	return raycastSegment(input, xf, c.Vertices[childIndex], c.Vertices[childIndex+1])
}

func (c *ChainShape) ComputeAABB(xf math2d.Transform, childIndex int) AABB {
	settings.Assert(0 <= childIndex && childIndex < c.GetChildCount(), "ChainShape.ComputeAABB", "child index out of range")
	v1 := xf.Apply(c.Vertices[childIndex])
	v2 := xf.Apply(c.Vertices[childIndex+1])
	return NewAABB(v1, v2).Extend(c.Radius)
}

// ComputeMass returns zero mass; chains are static geometry.
func (c *ChainShape) ComputeMass(density float64) MassData {
	return MassData{}
}
