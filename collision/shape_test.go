package collision_test

import (
	"errors"
	"math"
	"testing"

	"github.com/ByteArena/box2d-collision/collision"
	"github.com/ByteArena/box2d-collision/math2d"
	"github.com/go-gl/mathgl/mgl64"
)

func TestNewPolygonHull(t *testing.T) {
	tests := []struct {
		name  string
		vs    []math2d.Vec2
		count int
	}{
		{
			"shuffled square",
			[]math2d.Vec2{math2d.V(1, 1), math2d.V(-1, -1), math2d.V(1, -1), math2d.V(-1, 1)},
			4,
		},
		{
			"collinear midpoint",
			[]math2d.Vec2{math2d.V(-1, -1), math2d.V(0, -1), math2d.V(1, -1), math2d.V(1, 1), math2d.V(-1, 1)},
			4,
		},
		{
			"interior point",
			[]math2d.Vec2{math2d.V(0, 0), math2d.V(2, 0), math2d.V(0.5, 0.5), math2d.V(0, 2)},
			3,
		},
		{
			"clockwise triangle",
			[]math2d.Vec2{math2d.V(0, 0), math2d.V(0, 1), math2d.V(1, 0)},
			3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := collision.NewPolygon(tt.vs)
			if err != nil {
				t.Fatal(err)
			}
			if p.Count != tt.count {
				t.Fatalf("Count = %d, want %d", p.Count, tt.count)
			}
			if !p.Validate() {
				t.Fatalf("hull not convex and counter-clockwise: %v", p.Vertices[:p.Count])
			}
			for i := 0; i < p.Count; i++ {
				if !mgl64.FloatEqualThreshold(p.Normals[i].Len(), 1, 1e-12) {
					t.Errorf("normal %d not unit: %v", i, p.Normals[i])
				}
			}
		})
	}
}

func TestNewPolygonVertexCount(t *testing.T) {
	for _, n := range []int{0, 2, 9} {
		vs := make([]math2d.Vec2, n)
		for i := range vs {
			a := 2 * math.Pi * float64(i) / float64(n)
			vs[i] = math2d.V(math.Cos(a), math.Sin(a))
		}
		_, err := collision.NewPolygon(vs)
		if !errors.Is(err, collision.ErrPolygonVertexCount) {
			t.Errorf("%d vertices: err = %v", n, err)
		}
	}
}

func TestNewPolygonWeldFallback(t *testing.T) {
	p, err := collision.NewPolygon([]math2d.Vec2{math2d.V(0, 0), math2d.V(0.001, 0), math2d.V(0, 0.001)})
	if err != nil {
		t.Fatal(err)
	}
	if p.Count != 4 || p.Vertices[2] != math2d.V(1, 1) {
		t.Fatalf("expected unit box fallback, got %v", p.Vertices[:p.Count])
	}
}

func TestComputeMass(t *testing.T) {
	box := collision.NewBox(2, 1)
	md := box.ComputeMass(3)
	if !mgl64.FloatEqualThreshold(md.Mass, 24, 1e-9) {
		t.Errorf("box mass = %v, want 24", md.Mass)
	}
	if !mgl64.FloatEqualThreshold(md.I, 40, 1e-9) {
		t.Errorf("box inertia = %v, want 40", md.I)
	}
	if !md.Center.ApproxEqualThreshold(math2d.Zero, 1e-12) {
		t.Errorf("box center = %v", md.Center)
	}

	shifted := collision.NewOrientedBox(2, 1, math2d.V(1, 2), 0.5)
	md = shifted.ComputeMass(3)
	if !md.Center.ApproxEqualThreshold(math2d.V(1, 2), 1e-9) {
		t.Errorf("oriented box center = %v", md.Center)
	}
	if !mgl64.FloatEqualThreshold(md.I, 40+24*5, 1e-9) {
		t.Errorf("oriented box inertia = %v, want %v", md.I, 40+24*5)
	}

	circle := collision.NewCircle(math2d.V(1, 0), 2)
	md = circle.ComputeMass(1)
	wantMass := 4 * math.Pi
	if !mgl64.FloatEqualThreshold(md.Mass, wantMass, 1e-9) {
		t.Errorf("circle mass = %v, want %v", md.Mass, wantMass)
	}
	if !mgl64.FloatEqualThreshold(md.I, wantMass*(2+1), 1e-9) {
		t.Errorf("circle inertia = %v", md.I)
	}

	edge := collision.NewEdge(math2d.V(0, 0), math2d.V(2, 2))
	md = edge.ComputeMass(1)
	if md.Mass != 0 || md.Center != math2d.V(1, 1) {
		t.Errorf("edge mass data = %+v", md)
	}
}

func TestShapeRayCast(t *testing.T) {
	ray := collision.RayCastInput{P1: math2d.V(-3, 0), P2: math2d.V(3, 0), MaxFraction: 1}
	loop, err := collision.NewLoop([]math2d.Vec2{math2d.V(-1, -1), math2d.V(1, -1), math2d.V(1, 1), math2d.V(-1, 1)})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		shape    collision.Shape
		child    int
		xf       math2d.Transform
		hit      bool
		fraction float64
		normal   math2d.Vec2
	}{
		{"box", collision.NewBox(1, 1), 0, math2d.Identity, true, 1.0 / 3.0, math2d.V(-1, 0)},
		{"circle", collision.NewCircle(math2d.Zero, 1), 0, math2d.Identity, true, 1.0 / 3.0, math2d.V(-1, 0)},
		{"shifted circle", collision.NewCircle(math2d.Zero, 1), 0, math2d.NewTransform(math2d.V(1, 0), 0), true, 0.5, math2d.V(-1, 0)},
		{"edge", collision.NewEdge(math2d.V(0, -1), math2d.V(0, 1)), 0, math2d.Identity, true, 0.5, math2d.V(-1, 0)},
		{"reversed edge", collision.NewEdge(math2d.V(0, 1), math2d.V(0, -1)), 0, math2d.Identity, true, 0.5, math2d.V(-1, 0)},
		{"loop left side", loop, 3, math2d.Identity, true, 1.0 / 3.0, math2d.V(-1, 0)},
		{"loop right side", loop, 1, math2d.Identity, true, 2.0 / 3.0, math2d.V(-1, 0)},
		{"loop bottom misses", loop, 0, math2d.Identity, false, 0, math2d.Zero},
		{"box out of reach", collision.NewBox(1, 1), 0, math2d.NewTransform(math2d.V(0, 5), 0), false, 0, math2d.Zero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, hit := tt.shape.RayCast(ray, tt.xf, tt.child)
			if hit != tt.hit {
				t.Fatalf("hit = %v, want %v", hit, tt.hit)
			}
			if !hit {
				return
			}
			if !mgl64.FloatEqualThreshold(out.Fraction, tt.fraction, 1e-9) {
				t.Errorf("Fraction = %v, want %v", out.Fraction, tt.fraction)
			}
			if !out.Normal.ApproxEqualThreshold(tt.normal, 1e-9) {
				t.Errorf("Normal = %v, want %v", out.Normal, tt.normal)
			}
		})
	}
}

func TestShapeTestPoint(t *testing.T) {
	xf := math2d.NewTransform(math2d.V(2, 0), math.Pi/4)
	box := collision.NewBox(1, 1)
	circle := collision.NewCircle(math2d.Zero, 1)
	edge := collision.NewEdge(math2d.V(-1, 0), math2d.V(1, 0))

	if !box.TestPoint(xf, math2d.V(2, 1.3)) {
		t.Error("box should contain a point inside its rotated corner")
	}
	if box.TestPoint(xf, math2d.V(3, 1)) {
		t.Error("box should not contain a point outside its rotated side")
	}
	if !circle.TestPoint(xf, math2d.V(2.5, 0.5)) || circle.TestPoint(xf, math2d.V(3, 1)) {
		t.Error("circle containment wrong")
	}
	if edge.TestPoint(math2d.Identity, math2d.Zero) {
		t.Error("edges have no interior")
	}
}

func TestShapeComputeAABB(t *testing.T) {
	edge := collision.NewEdge(math2d.V(2, 0), math2d.V(0, 1))
	bb := edge.ComputeAABB(math2d.Identity, 0)
	r := edge.Radius
	want := collision.AABB{LowerBound: math2d.V(-r, -r), UpperBound: math2d.V(2+r, 1+r)}
	if !bb.LowerBound.ApproxEqualThreshold(want.LowerBound, 1e-12) || !bb.UpperBound.ApproxEqualThreshold(want.UpperBound, 1e-12) {
		t.Errorf("edge AABB = %+v, want %+v", bb, want)
	}

	box := collision.NewBox(1, 1)
	bb = box.ComputeAABB(math2d.NewTransform(math2d.V(5, 5), math.Pi/4), 0)
	h := math.Sqrt2 + box.Radius
	if !bb.LowerBound.ApproxEqualThreshold(math2d.V(5-h, 5-h), 1e-9) || !bb.UpperBound.ApproxEqualThreshold(math2d.V(5+h, 5+h), 1e-9) {
		t.Errorf("rotated box AABB = %+v", bb)
	}

	chain, err := collision.NewChain([]math2d.Vec2{math2d.V(0, 0), math2d.V(1, 0), math2d.V(1, 3)})
	if err != nil {
		t.Fatal(err)
	}
	bb = chain.ComputeAABB(math2d.Identity, 1)
	if !bb.Contains(collision.AABB{LowerBound: math2d.V(1, 0), UpperBound: math2d.V(1, 3)}) {
		t.Errorf("chain child AABB = %+v", bb)
	}
}

func TestChainErrors(t *testing.T) {
	var c collision.ChainShape
	if err := c.CreateChain([]math2d.Vec2{math2d.V(0, 0)}); !errors.Is(err, collision.ErrChainVertexCount) {
		t.Errorf("single vertex chain: err = %v", err)
	}
	if err := c.CreateLoop([]math2d.Vec2{math2d.V(0, 0), math2d.V(1, 0)}); !errors.Is(err, collision.ErrChainVertexCount) {
		t.Errorf("two vertex loop: err = %v", err)
	}
	if err := c.CreateChain([]math2d.Vec2{math2d.V(0, 0), math2d.V(0.001, 0)}); !errors.Is(err, collision.ErrChainVerticesTooClose) {
		t.Errorf("close vertices: err = %v", err)
	}
	if err := c.CreateChain([]math2d.Vec2{math2d.V(0, 0), math2d.V(1, 0)}); err != nil {
		t.Fatal(err)
	}
	if err := c.CreateChain([]math2d.Vec2{math2d.V(0, 0), math2d.V(1, 0)}); !errors.Is(err, collision.ErrChainAlreadyCreated) {
		t.Errorf("second create: err = %v", err)
	}
	c.Clear()
	if err := c.CreateLoop([]math2d.Vec2{math2d.V(0, 0), math2d.V(1, 0), math2d.V(0, 1)}); err != nil {
		t.Errorf("create after clear: %v", err)
	}
}

func TestChainChildEdges(t *testing.T) {
	loop, err := collision.NewLoop([]math2d.Vec2{math2d.V(0, 0), math2d.V(1, 0), math2d.V(1, 1), math2d.V(0, 1)})
	if err != nil {
		t.Fatal(err)
	}
	if loop.GetChildCount() != 4 {
		t.Fatalf("loop child count = %d, want 4", loop.GetChildCount())
	}

	first := loop.ChildEdge(0)
	if !first.HasVertex0 || first.Vertex0 != math2d.V(0, 1) || !first.HasVertex3 || first.Vertex3 != math2d.V(1, 1) {
		t.Errorf("first loop edge adjacency = %+v", first)
	}
	last := loop.ChildEdge(3)
	if last.Vertex1 != math2d.V(0, 1) || last.Vertex2 != math2d.V(0, 0) || last.Vertex3 != math2d.V(1, 0) {
		t.Errorf("closing loop edge = %+v", last)
	}

	chain, err := collision.NewChain([]math2d.Vec2{math2d.V(0, 0), math2d.V(1, 0), math2d.V(2, 0)})
	if err != nil {
		t.Fatal(err)
	}
	if e := chain.ChildEdge(0); e.HasVertex0 || !e.HasVertex3 {
		t.Errorf("open chain start adjacency = %+v", e)
	}
	chain.SetPrevVertex(math2d.V(-1, 1))
	if e := chain.ChildEdge(0); !e.HasVertex0 || e.Vertex0 != math2d.V(-1, 1) {
		t.Errorf("prev vertex ignored: %+v", e)
	}

	clone := chain.Clone().(*collision.ChainShape)
	clone.Vertices[0] = math2d.V(5, 5)
	if chain.Vertices[0] != math2d.V(0, 0) {
		t.Error("Clone shares vertex storage")
	}
}

func TestShapeTypes(t *testing.T) {
	chain, _ := collision.NewChain([]math2d.Vec2{math2d.V(0, 0), math2d.V(1, 0)})
	shapes := map[collision.ShapeType]collision.Shape{
		collision.ShapeCircle:  collision.NewCircle(math2d.Zero, 1),
		collision.ShapeEdge:    collision.NewEdge(math2d.Zero, math2d.V(1, 0)),
		collision.ShapePolygon: collision.NewBox(1, 1),
		collision.ShapeChain:   chain,
	}
	for typ, s := range shapes {
		if s.GetType() != typ {
			t.Errorf("%v: GetType() = %v", typ, s.GetType())
		}
		if s.Clone().GetType() != typ {
			t.Errorf("%v: clone changed type", typ)
		}
	}
	if collision.ShapePolygon.String() != "polygon" {
		t.Errorf("ShapePolygon.String() = %q", collision.ShapePolygon.String())
	}
}
